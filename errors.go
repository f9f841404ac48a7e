package nonogrid

import "fmt"

// UnsolvableError reports that constraint propagation alone cannot finish a
// puzzle: either a line's candidate set became empty (a contradiction between
// its clue and already-decided cells) or no pruning strategy removes anything
// anymore (the remaining ambiguity requires search, which this engine does
// not attempt). It carries the row and column indices still undetermined at
// the point of failure.
type UnsolvableError struct {
	Reason       string
	UnsolvedRows []int
	UnsolvedCols []int
}

func (e *UnsolvableError) Error() string {
	return fmt.Sprintf("puzzle is unsolvable without search: %s (unsolved rows %v, unsolved columns %v)",
		e.Reason, e.UnsolvedRows, e.UnsolvedCols)
}
