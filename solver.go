package nonogrid

import (
	"context"
	"fmt"
	"iter"

	"crosswarped.com/nonogrid/internal"
	"crosswarped.com/nonogrid/pkg/primitives"
)

// Move assigns a single board cell a definite value, derived from unanimous
// agreement across a line's surviving candidates.
type Move struct {
	Row   int
	Col   int
	Value primitives.Cell
}

// Solution is the outcome of a whole-board solve. Board is always populated,
// holding every derivable cell even when the puzzle could not be finished.
type Solution struct {
	Board        *Board
	Solved       bool
	UnsolvedRows []int
	UnsolvedCols []int
}

// lineState tracks one dimension's candidate sets: a fixed-size array indexed
// by line number plus explicit active markers, so iteration order stays
// stable as lines retire.
type lineState struct {
	sets      []primitives.Candidates
	active    []bool
	remaining int
}

func newLineState(clues []primitives.Clue, length int, palette *primitives.Palette) lineState {
	sets := make([]primitives.Candidates, len(clues))
	active := make([]bool, len(clues))
	for i, clue := range clues {
		sets[i] = internal.CandidateLines(clue, length, palette)
		active[i] = true
	}
	return lineState{sets: sets, active: active, remaining: len(clues)}
}

func (s *lineState) retire(i int) {
	if s.active[i] {
		s.active[i] = false
		s.remaining--
	}
}

// unsolved returns the indices of lines that are still active.
func (s *lineState) unsolved() []int {
	var idxs []int
	for i, a := range s.active {
		if a {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// Solver is a cursor over the forced moves of one puzzle. All working state
// (candidate sets, round bookkeeping) lives inside the cursor; only the board
// outlives it. Progress is made exclusively by pulling from Moves.
type Solver struct {
	board   *Board
	palette *primitives.Palette
	rows    lineState
	cols    lineState

	pending []Move
	failure *UnsolvableError
	done    bool
}

// NewSolver builds a solver for the given rules. If board is nil a fresh
// all-unknown board is created; otherwise the board is mutated in place and
// its already-decided cells constrain the initial candidate sets.
func NewSolver(rules Rules, board *Board) (*Solver, error) {
	if err := rules.validate(); err != nil {
		return nil, err
	}
	palette, err := primitives.NewPalette(rules.Rows, rules.Cols)
	if err != nil {
		return nil, err
	}

	if board == nil {
		board = NewBoard(len(rules.Rows), len(rules.Cols))
	} else if board.Rows() != len(rules.Rows) || board.Cols() != len(rules.Cols) {
		return nil, fmt.Errorf("board is %dx%d but rules describe %dx%d",
			board.Rows(), board.Cols(), len(rules.Rows), len(rules.Cols))
	}

	s := &Solver{
		board:   board,
		palette: palette,
		rows:    newLineState(rules.Rows, len(rules.Cols), palette),
		cols:    newLineState(rules.Cols, len(rules.Rows), palette),
	}
	s.seedFromBoard()
	return s, nil
}

// seedFromBoard treats cells already decided on a caller-provided board as
// applied moves.
func (s *Solver) seedFromBoard() {
	for r := 0; r < s.board.Rows(); r++ {
		for c := 0; c < s.board.Cols(); c++ {
			v := s.board.At(r, c)
			if v == primitives.Unknown {
				continue
			}
			s.rows.sets[r] = s.rows.sets[r].Filter(v, c)
			s.cols.sets[c] = s.cols.sets[c].Filter(v, r)
		}
	}
}

// Moves returns the lazy stream of forced cell assignments. Each move has
// already been applied to the board by the time it is yielded, so a caller
// can render between pulls; ceasing to pull simply leaves the board in its
// current (internally consistent) partial state. The stream ends when the
// puzzle is solved, when no deterministic progress remains (see Err), or when
// ctx is done.
func (s *Solver) Moves(ctx context.Context) iter.Seq[Move] {
	return func(yield func(Move) bool) {
		for {
			if ctx.Err() != nil {
				return
			}

			for len(s.pending) > 0 {
				m := s.pending[0]
				s.pending = s.pending[1:]
				s.board.Set(m.Row, m.Col, m.Value)
				if !yield(m) {
					return
				}
			}

			if s.done || s.failure != nil {
				s.verify()
				return
			}

			s.round()
		}
	}
}

// Solved reports whether every cell of the board has been determined.
func (s *Solver) Solved() bool {
	return s.done && s.failure == nil
}

// Err returns the *UnsolvableError describing why the move stream stopped
// short, or nil while progress is still possible or after success.
func (s *Solver) Err() error {
	if s.failure != nil {
		return s.failure
	}
	return nil
}

func (s *Solver) Board() *Board {
	return s.board
}

// round advances the solver by one propagation round: extract forced moves
// from every active line, retire solved lines (failing on contradictions),
// then prune. Cheap move-consistency pruning runs first; the quadratic
// mutual arc-consistency pass runs only when move pruning removed nothing,
// and if that too removes nothing the puzzle has stagnated.
func (s *Solver) round() {
	seen := make(map[[2]int]bool)
	rowMoves := s.extract(&s.rows, &s.cols, false, seen)
	colMoves := s.extract(&s.cols, &s.rows, true, seen)

	if !s.retireSolved() {
		return
	}
	if s.rows.remaining == 0 || s.cols.remaining == 0 {
		s.done = true
		return
	}

	removed := s.pruneByMoves(&s.cols, rowMoves, true)
	removed += s.pruneByMoves(&s.rows, colMoves, false)
	if removed > 0 {
		return
	}

	if s.pruneArcConsistency() > 0 {
		return
	}
	if len(rowMoves)+len(colMoves) > 0 {
		// The round produced board progress even though no candidate fell
		// away; the next extraction pass decides whether anything follows.
		return
	}

	s.fail("no pruning strategy removes any candidate and no line is forced, finishing requires search")
}

// extract collects a move for every cell where all of a line's surviving
// candidates agree. Positions whose perpendicular line is already solved are
// skipped: their cells are fully reflected on the board. Cells already
// decided, or already claimed this round, are skipped too, so each cell is
// assigned at most once.
func (s *Solver) extract(dim *lineState, perp *lineState, dimIsCols bool, seen map[[2]int]bool) []Move {
	var moves []Move
	for i, set := range dim.sets {
		if !dim.active[i] {
			continue
		}
		for j := 0; j < set.Length(); j++ {
			if !perp.active[j] {
				continue
			}
			row, col := i, j
			if dimIsCols {
				row, col = j, i
			}
			if s.board.At(row, col) != primitives.Unknown || seen[[2]int{row, col}] {
				continue
			}
			v, ok := set.ForcedAt(j)
			if !ok {
				continue
			}
			seen[[2]int{row, col}] = true
			moves = append(moves, Move{Row: row, Col: col, Value: v})
		}
	}
	s.pending = append(s.pending, moves...)
	return moves
}

// retireSolved removes solved lines from the active sets. It returns false
// after recording a failure if any candidate set is empty.
func (s *Solver) retireSolved() bool {
	for i, set := range s.rows.sets {
		if !s.rows.active[i] {
			continue
		}
		switch set.Count() {
		case 0:
			s.fail(fmt.Sprintf("row %d has no candidate coloring left", i))
			return false
		case 1:
			s.rows.retire(i)
		}
	}
	for i, set := range s.cols.sets {
		if !s.cols.active[i] {
			continue
		}
		switch set.Count() {
		case 0:
			s.fail(fmt.Sprintf("column %d has no candidate coloring left", i))
			return false
		case 1:
			s.cols.retire(i)
		}
	}
	return true
}

// pruneByMoves discards candidates of dim's lines that disagree with moves
// discovered in the perpendicular dimension, returning the number of
// candidates removed.
func (s *Solver) pruneByMoves(dim *lineState, moves []Move, dimIsCols bool) int {
	removed := 0
	for _, m := range moves {
		idx, pos := m.Row, m.Col
		if dimIsCols {
			idx, pos = m.Col, m.Row
		}
		if !dim.active[idx] {
			continue
		}
		before := dim.sets[idx].Count()
		filtered := dim.sets[idx].Filter(m.Value, pos)
		if filtered != dim.sets[idx] {
			dim.sets[idx] = filtered
			removed += before - filtered.Count()
		}
	}
	return removed
}

// pruneArcConsistency enforces bidirectional consistency at every active
// (row, column) intersection: each dimension may only keep candidates whose
// value at the cell is allowed by the other dimension as well. Strictly more
// powerful than move pruning, but quadratic in active lines x cells.
func (s *Solver) pruneArcConsistency() int {
	removed := 0
	for r := range s.rows.sets {
		if !s.rows.active[r] {
			continue
		}
		for c := range s.cols.sets {
			if !s.cols.active[c] {
				continue
			}

			allowed := s.palette.NewSet()
			s.rows.sets[r].ColorsAt(allowed, c)
			byColumn := s.palette.NewSet()
			s.cols.sets[c].ColorsAt(byColumn, r)
			allowed.Intersect(byColumn)

			before := s.rows.sets[r].Count()
			if filtered := s.rows.sets[r].FilterAny(allowed, c); filtered != s.rows.sets[r] {
				s.rows.sets[r] = filtered
				removed += before - filtered.Count()
			}

			before = s.cols.sets[c].Count()
			if filtered := s.cols.sets[c].FilterAny(allowed, r); filtered != s.cols.sets[c] {
				s.cols.sets[c] = filtered
				removed += before - filtered.Count()
			}
		}
	}
	return removed
}

func (s *Solver) fail(reason string) {
	s.failure = &UnsolvableError{
		Reason:       reason,
		UnsolvedRows: s.rows.unsolved(),
		UnsolvedCols: s.cols.unsolved(),
	}
}

// verify asserts the success invariant: the loop exits as solved when either
// dimension runs out of unsolved lines, which must always coincide with a
// fully determined board.
func (s *Solver) verify() {
	if !s.Solved() {
		return
	}
	for r := 0; r < s.board.Rows(); r++ {
		for c := 0; c < s.board.Cols(); c++ {
			if s.board.At(r, c) == primitives.Unknown {
				panic(fmt.Sprintf("solver reported success with undecided cell (%d,%d) -- this should never happen", r, c))
			}
		}
	}
}

// Solve runs propagation to completion for the given rules. The returned
// Solution always carries the board with every derivable cell filled; when
// the puzzle cannot be finished without search the error is an
// *UnsolvableError and the Solution lists the undetermined line indices.
func Solve(ctx context.Context, rules Rules) (*Solution, error) {
	s, err := NewSolver(rules, nil)
	if err != nil {
		return nil, err
	}

	for range s.Moves(ctx) {
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sol := &Solution{
		Board:  s.board,
		Solved: s.Solved(),
	}
	if !sol.Solved {
		sol.UnsolvedRows = s.rows.unsolved()
		sol.UnsolvedCols = s.cols.unsolved()
	}
	return sol, s.Err()
}
