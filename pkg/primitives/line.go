package primitives

import "strings"

// Cell is a single board value. Zero means the cell is still undecided,
// Blank means the cell is definitely empty, and any value >= 1 is a color id.
type Cell int

const (
	Unknown Cell = 0
	Blank   Cell = -1
)

const glyphs = "123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Glyph maps a cell value to a printable symbol: '.' for Blank, '?' for
// Unknown, and a distinct character per color id.
func Glyph(c Cell) rune {
	switch {
	case c == Blank:
		return '.'
	case c == Unknown:
		return '?'
	case int(c) <= len(glyphs):
		return rune(glyphs[c-1])
	default:
		return '#'
	}
}

// Run is one clue entry: Count consecutive cells of color Value.
type Run struct {
	Count int  `json:"count"`
	Value Cell `json:"val"`
}

// Clue describes the colored runs one line must contain, in order.
type Clue []Run

// Line represents a single fully decided coloring of a row or column.
// Every cell is Blank or a color id, never Unknown: a Line is one complete
// hypothesis, not a partial state.
type Line []Cell

// Length returns the number of cells in the line.
func (l Line) Length() int {
	return len(l)
}

// Runs parses the line back into clue form.
func (l Line) Runs() Clue {
	var clue Clue
	for i := 0; i < len(l); {
		v := l[i]
		if v == Blank || v == Unknown {
			i++
			continue
		}
		j := i
		for j < len(l) && l[j] == v {
			j++
		}
		clue = append(clue, Run{Count: j - i, Value: v})
		i = j
	}
	return clue
}

func (l Line) String() string {
	var sb strings.Builder
	sb.Grow(len(l))
	for _, c := range l {
		sb.WriteRune(Glyph(c))
	}
	return sb.String()
}
