package primitives

import (
	"fmt"
	"slices"
)

// Palette is the ordered set of cell values one puzzle can use: Blank plus
// every color id appearing in any of its clues. All ColorSets of a puzzle
// share one palette so they can be intersected cheaply.
type Palette struct {
	values []Cell
	index  map[Cell]int
}

// NewPalette builds a palette from the given clue dimensions. Color ids must
// be >= 1; the board representation reserves 0 for undecided cells.
func NewPalette(dimensions ...[]Clue) (*Palette, error) {
	seen := map[Cell]bool{Blank: true}
	for _, clues := range dimensions {
		for _, clue := range clues {
			for _, run := range clue {
				if run.Value < 1 {
					return nil, fmt.Errorf("color id %d is out of range, color ids start at 1", run.Value)
				}
				seen[run.Value] = true
			}
		}
	}

	values := make([]Cell, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	slices.Sort(values)

	index := make(map[Cell]int, len(values))
	for i, v := range values {
		index[v] = i
	}
	return &Palette{values: values, index: index}, nil
}

// Size returns the number of values in the palette, including Blank.
func (p *Palette) Size() int {
	return len(p.values)
}

// Contains reports whether v is a value this puzzle can produce.
func (p *Palette) Contains(v Cell) bool {
	_, ok := p.index[v]
	return ok
}

// NewSet returns an empty ColorSet over this palette.
func (p *Palette) NewSet() *ColorSet {
	return &ColorSet{
		palette:   p,
		available: make([]bool, len(p.values)),
	}
}

// ColorSet efficiently represents a set of cell values drawn from a palette.
type ColorSet struct {
	palette   *Palette
	available []bool
	count     int
}

// Add adds a value to the set.
func (c *ColorSet) Add(v Cell) error {
	i, ok := c.palette.index[v]
	if !ok {
		return fmt.Errorf("value %d is not in the puzzle palette", v)
	}
	if c.available[i] {
		return nil
	}
	c.count++
	c.available[i] = true
	return nil
}

// AddAll adds all values from another set to this set.
func (c *ColorSet) AddAll(other *ColorSet) {
	if c.palette != other.palette {
		panic("cannot add all: color sets belong to different palettes")
	}

	if c.IsFull() {
		return
	}

	for i, oa := range other.available {
		if !oa || c.available[i] {
			continue
		}
		c.available[i] = true
		c.count++
	}
}

// Intersect removes every value not also present in other.
func (c *ColorSet) Intersect(other *ColorSet) {
	if c.palette != other.palette {
		panic("cannot intersect: color sets belong to different palettes")
	}

	for i, a := range c.available {
		if a && !other.available[i] {
			c.available[i] = false
			c.count--
		}
	}
}

// Contains checks if a value is in the set.
func (c *ColorSet) Contains(v Cell) bool {
	i, ok := c.palette.index[v]
	if !ok {
		return false
	}
	return c.available[i]
}

// Single returns the set's only value, if the set has exactly one.
func (c *ColorSet) Single() (Cell, bool) {
	if c.count != 1 {
		return Unknown, false
	}
	for i, a := range c.available {
		if a {
			return c.palette.values[i], true
		}
	}
	panic("color set count is 1 but no value is available")
}

// Values returns the values in the set in palette order.
func (c *ColorSet) Values() []Cell {
	values := make([]Cell, 0, c.count)
	for i, a := range c.available {
		if a {
			values = append(values, c.palette.values[i])
		}
	}
	return values
}

// IsFull checks if the set holds every palette value.
func (c *ColorSet) IsFull() bool {
	return c.count == len(c.available)
}

// Capacity returns the number of values the set can hold.
func (c *ColorSet) Capacity() int {
	return len(c.available)
}

// Count returns the number of values in the set.
func (c *ColorSet) Count() int {
	return c.count
}
