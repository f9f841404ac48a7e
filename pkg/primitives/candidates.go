package primitives

import (
	"fmt"
	"iter"
	"math/bits"
	"sync"
)

type sealed = any

// Candidates represents the set of line colorings still possible for a single
// row or column. A set only ever shrinks: filters return a narrowed set (or
// the receiver itself when nothing changed), collapsing to Definite at one
// survivor and to Impossible at zero.
type Candidates interface {
	sealed // This interface is not meant to be implemented by anything other than the types below.

	// Length returns the number of cells in each candidate line.
	Length() int

	// Count returns the number of surviving candidate lines.
	Count() int

	// ColorsAt adds the values that can appear at the given index to the set.
	ColorsAt(accumulate *ColorSet, index int)

	// ForcedAt returns the value every surviving candidate agrees on at the
	// given index, if such a value exists.
	ForcedAt(index int) (Cell, bool)

	// Filter narrows the set to candidates holding the given value at the
	// given index.
	Filter(value Cell, index int) Candidates

	// FilterAny narrows the set to candidates whose value at the given index
	// is in the allowed set.
	FilterAny(allowed *ColorSet, index int) Candidates

	// Iterate returns a sequence of all surviving candidate lines, in the
	// order they were enumerated.
	Iterate() iter.Seq[Line]

	// First returns the first surviving candidate line, or nil if there are
	// no surviving candidates.
	First() Line

	String() string
}

// Impossible represents an empty set of candidate lines.
type Impossible struct {
	length int
}

var ic [64]*Impossible

func MakeImpossible(length int) *Impossible {
	if length >= 0 && length < len(ic) {
		if ic[length] == nil {
			ic[length] = &Impossible{length: length}
		}
		return ic[length]
	}
	return &Impossible{length: length}
}

func (i *Impossible) Length() int {
	return i.length
}

func (i *Impossible) Count() int {
	return 0
}

func (i *Impossible) ColorsAt(accumulate *ColorSet, index int) {
}

func (i *Impossible) ForcedAt(index int) (Cell, bool) {
	return Unknown, false
}

func (i *Impossible) Filter(value Cell, index int) Candidates {
	return i
}

func (i *Impossible) FilterAny(allowed *ColorSet, index int) Candidates {
	return i
}

func (i *Impossible) Iterate() iter.Seq[Line] {
	return func(yield func(Line) bool) {}
}

func (i *Impossible) First() Line {
	return nil
}

func (i *Impossible) String() string {
	return fmt.Sprintf("Impossible(%d)", i.length)
}

// Definite represents a single surviving candidate line: the row or column
// it belongs to is solved.
type Definite struct {
	line Line
}

func MakeDefinite(line Line) *Definite {
	return &Definite{line: line}
}

func (d *Definite) Length() int {
	return len(d.line)
}

func (d *Definite) Count() int {
	return 1
}

func (d *Definite) ColorsAt(accumulate *ColorSet, index int) {
	accumulate.Add(d.line[index])
}

func (d *Definite) ForcedAt(index int) (Cell, bool) {
	return d.line[index], true
}

func (d *Definite) Filter(value Cell, index int) Candidates {
	if d.line[index] == value {
		return d
	}
	return MakeImpossible(d.Length())
}

func (d *Definite) FilterAny(allowed *ColorSet, index int) Candidates {
	if allowed.IsFull() {
		return d
	}
	if allowed.Contains(d.line[index]) {
		return d
	}
	return MakeImpossible(d.Length())
}

func (d *Definite) Iterate() iter.Seq[Line] {
	return func(yield func(Line) bool) {
		yield(d.line)
	}
}

func (d *Definite) First() Line {
	return d.line
}

func (d *Definite) String() string {
	return fmt.Sprintf("Definite(%s)", d.line.String())
}

// LineSet represents two or more surviving candidate lines. The enumerated
// lines live in a shared universe; the surviving subset is a bitset over it.
type LineSet struct {
	u     *lineUniverse
	set   []uint64 // bitset over u.lines; 1 => line is still possible
	count int      // cached count of bits set in set
}

// MakeLineSet wraps a freshly enumerated list of candidate lines. The lines
// must all have the given length and belong to the given palette.
func MakeLineSet(length int, lines []Line, palette *Palette) Candidates {
	if len(lines) == 0 {
		return MakeImpossible(length)
	}
	if len(lines) == 1 {
		return MakeDefinite(lines[0])
	}

	u := newLineUniverse(length, lines, palette)
	return &LineSet{
		u:     u,
		set:   u.fullSet(),
		count: len(lines),
	}
}

func (s *LineSet) Length() int {
	return s.u.length
}

func (s *LineSet) Count() int {
	return s.count
}

func (s *LineSet) ColorsAt(accumulate *ColorSet, index int) {
	if accumulate.IsFull() {
		return
	}

	// For each palette value, check whether any surviving line supports it at
	// this position. This is intentionally implemented without scanning every
	// line.
	s.u.ensureMasks()
	for vi, v := range s.u.palette.values {
		if accumulate.available[vi] {
			continue
		}
		base := s.u.maskBase(index, vi)
		if hasIntersectionAt(s.set, s.u.masks, base, s.u.blocks) {
			accumulate.Add(v)
		}
	}
}

func (s *LineSet) ForcedAt(index int) (Cell, bool) {
	s.u.ensureMasks()
	forced := Unknown
	found := false
	for vi, v := range s.u.palette.values {
		base := s.u.maskBase(index, vi)
		if !hasIntersectionAt(s.set, s.u.masks, base, s.u.blocks) {
			continue
		}
		if found {
			return Unknown, false
		}
		forced, found = v, true
	}
	return forced, found
}

// reduce wraps a filtered bitset as a Candidates value, collapsing to
// Impossible or Definite at the usual thresholds.
func (s *LineSet) reduce(newSet []uint64, newCount int) Candidates {
	if newCount == 0 {
		return MakeImpossible(s.Length())
	}
	if newCount == 1 {
		idx := firstSetBit(newSet)
		if idx < 0 {
			return MakeImpossible(s.Length())
		}
		return MakeDefinite(s.u.lines[idx])
	}
	return &LineSet{u: s.u, set: newSet, count: newCount}
}

func (s *LineSet) Filter(value Cell, index int) Candidates {
	vi, ok := s.u.palette.index[value]
	if !ok {
		return MakeImpossible(s.Length())
	}

	s.u.ensureMasks()
	base := s.u.maskBase(index, vi)

	newSet := make([]uint64, len(s.set))
	newCount := 0
	unchanged := true
	for i := range s.set {
		ns := s.set[i] & s.u.masks[base+i]
		newSet[i] = ns
		if ns != s.set[i] {
			unchanged = false
		}
		newCount += bits.OnesCount64(ns)
	}

	if unchanged {
		return s
	}
	return s.reduce(newSet, newCount)
}

func (s *LineSet) FilterAny(allowed *ColorSet, index int) Candidates {
	if allowed.IsFull() {
		return s
	}
	if allowed.Count() == 0 {
		return MakeImpossible(s.Length())
	}

	s.u.ensureMasks()

	newSet := make([]uint64, len(s.set))
	newCount := 0
	unchanged := true
	for i := range s.set {
		pass := uint64(0)
		for vi, a := range allowed.available {
			if !a {
				continue
			}
			base := s.u.maskBase(index, vi)
			pass |= s.u.masks[base+i]
		}

		ns := s.set[i] & pass
		newSet[i] = ns
		if ns != s.set[i] {
			unchanged = false
		}
		newCount += bits.OnesCount64(ns)
	}

	if unchanged {
		return s
	}
	return s.reduce(newSet, newCount)
}

func (s *LineSet) Iterate() iter.Seq[Line] {
	return func(yield func(Line) bool) {
		for idx := range iterateSetBits(s.set) {
			if !yield(s.u.lines[idx]) {
				return
			}
		}
	}
}

func (s *LineSet) First() Line {
	idx := firstSetBit(s.set)
	if idx < 0 {
		return nil
	}
	return s.u.lines[idx]
}

func (s *LineSet) String() string {
	return fmt.Sprintf("LineSet(%d of %d)", s.count, len(s.u.lines))
}

type lineUniverse struct {
	lines   []Line
	palette *Palette
	length  int

	blocks int

	masksOnce sync.Once
	// masks is a flattened 3D tensor of line-membership bitsets.
	//
	// Conceptually it is:
	//   masks[pos][valueIdx] = BitSet(lines that hold palette.values[valueIdx] at position pos)
	//
	// Each BitSet is stored as `blocks` uint64s so filtering is a plain AND
	// against a LineSet.set bitset, without scanning the full line list.
	//
	// Layout:
	//   base := (pos*len(palette.values) + valueIdx) * blocks
	//   masks[base + block] is the uint64 for that block.
	masks []uint64
}

func newLineUniverse(length int, lines []Line, palette *Palette) *lineUniverse {
	return &lineUniverse{
		lines:   lines,
		palette: palette,
		length:  length,
		blocks:  (len(lines) + 63) / 64,
	}
}

func (u *lineUniverse) ensureMasks() {
	u.masksOnce.Do(func() {
		total := u.length * u.palette.Size() * u.blocks
		u.masks = make([]uint64, total)

		for li, line := range u.lines {
			block := li / 64
			bit := uint(li % 64)
			for pos, v := range line {
				vi, ok := u.palette.index[v]
				if !ok {
					panic(fmt.Sprintf("line %s holds value %d outside the puzzle palette", line, v))
				}
				base := (pos*u.palette.Size() + vi) * u.blocks
				u.masks[base+block] |= 1 << bit
			}
		}
	})
}

// maskBase returns the base index into u.masks for (pos,valueIdx).
//
// The caller can then index u.masks[base+i] for i in [0, blocks).
func (u *lineUniverse) maskBase(pos int, valueIdx int) int {
	return (pos*u.palette.Size() + valueIdx) * u.blocks
}

func (u *lineUniverse) fullSet() []uint64 {
	set := make([]uint64, u.blocks)
	n := len(u.lines)
	for i := range set {
		set[i] = ^uint64(0)
	}
	// clear unused bits in last word
	if rem := n % 64; rem != 0 {
		set[len(set)-1] = (uint64(1) << uint(rem)) - 1
	}
	return set
}

func firstSetBit(set []uint64) int {
	for bi, block := range set {
		if block == 0 {
			continue
		}
		return bi*64 + bits.TrailingZeros64(block)
	}
	return -1
}

func iterateSetBits(set []uint64) iter.Seq[int] {
	return func(yield func(int) bool) {
		for bi, block := range set {
			b := block
			for b != 0 {
				tz := bits.TrailingZeros64(b)
				idx := bi*64 + tz
				if !yield(idx) {
					return
				}
				b &= b - 1
			}
		}
	}
}

func hasIntersectionAt(set []uint64, masks []uint64, base int, blocks int) bool {
	for i := 0; i < blocks; i++ {
		if set[i]&masks[base+i] != 0 {
			return true
		}
	}
	return false
}
