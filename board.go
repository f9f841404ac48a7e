package nonogrid

import (
	"fmt"
	"strings"

	"crosswarped.com/nonogrid/pkg/primitives"
)

// Board is a 2D grid of cell values.
//
// A zero cell is still undecided; decided cells hold Blank or a color id.
// The board is the only solver state that outlives a solve.
type Board struct {
	cells [][]primitives.Cell
}

func NewBoard(rows, cols int) *Board {
	cells := make([][]primitives.Cell, rows)
	for r := range cells {
		cells[r] = make([]primitives.Cell, cols)
	}
	return &Board{cells: cells}
}

func (b *Board) Rows() int {
	return len(b.cells)
}

func (b *Board) Cols() int {
	if len(b.cells) == 0 {
		return 0
	}
	return len(b.cells[0])
}

func (b *Board) At(row, col int) primitives.Cell {
	return b.cells[row][col]
}

func (b *Board) Set(row, col int, v primitives.Cell) {
	b.cells[row][col] = v
}

// Repr renders the board as text, one row per line: '.' for blank cells,
// '?' for undecided cells, and a distinct symbol per color id.
func (b *Board) Repr() string {
	lines := make([]string, b.Rows())
	for r := range b.cells {
		lines[r] = primitives.Line(b.cells[r]).String()
	}
	return strings.Join(lines, "\n")
}

func (b *Board) DebugString() string {
	return fmt.Sprintf("Board{rows: %d, cols: %d, cells: %v}", b.Rows(), b.Cols(), b.cells)
}
