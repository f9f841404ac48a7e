package internal

import (
	"crosswarped.com/nonogrid/pkg/primitives"
)

// CandidateLines enumerates every coloring of a single line that satisfies
// the clue on its own, and wraps the result as a candidate set. An empty
// result (the clue cannot fit in the line) wraps to Impossible.
func CandidateLines(clue primitives.Clue, length int, palette *primitives.Palette) primitives.Candidates {
	return primitives.MakeLineSet(length, EnumerateLines(clue, length), palette)
}

// EnumerateLines returns all distinct lines of the given length satisfying
// the clue, in lexicographic order of run placement.
//
// The enumeration is the stars-and-bars bijection: after one blank is
// reserved before every run whose color matches the run before it, the
// remaining blanks are free to sit anywhere around the runs. Placing the
// runs is then choosing which of freeSpaces+len(clue) abstract slots each
// run occupies, in order.
func EnumerateLines(clue primitives.Clue, length int) []primitives.Line {
	if len(clue) == 0 {
		return []primitives.Line{blankLine(length)}
	}

	mandatory := 0
	colored := 0
	for i, run := range clue {
		colored += run.Count
		if i > 0 && run.Value == clue[i-1].Value {
			mandatory++
		}
	}

	free := length - mandatory - colored
	if free < 0 {
		return nil
	}
	slots := free + len(clue)

	var lines []primitives.Line
	comb := make([]int, len(clue))
	for i := range comb {
		comb[i] = i
	}
	for {
		lines = append(lines, decodeLine(clue, length, comb, slots))
		if !nextCombination(comb, slots) {
			break
		}
	}
	return lines
}

func blankLine(length int) primitives.Line {
	line := make(primitives.Line, length)
	for i := range line {
		line[i] = primitives.Blank
	}
	return line
}

// decodeLine turns one combination of occupied slots into a concrete line.
// An unoccupied slot contributes a single blank; an occupied slot contributes
// its run's cells, prefixed by the run's mandatory separator blank if its
// color matches the previous run's.
func decodeLine(clue primitives.Clue, length int, comb []int, slots int) primitives.Line {
	line := make(primitives.Line, 0, length)
	g := 0
	for slot := 0; slot < slots; slot++ {
		if g < len(comb) && comb[g] == slot {
			run := clue[g]
			if g > 0 && run.Value == clue[g-1].Value {
				line = append(line, primitives.Blank)
			}
			for k := 0; k < run.Count; k++ {
				line = append(line, run.Value)
			}
			g++
		} else {
			line = append(line, primitives.Blank)
		}
	}
	if len(line) != length {
		panic("decoded line has the wrong length -- this should never happen")
	}
	return line
}

// nextCombination advances comb to the next k-combination of {0..n-1} in
// lexicographic order, returning false once the last combination is reached.
func nextCombination(comb []int, n int) bool {
	k := len(comb)
	i := k - 1
	for i >= 0 && comb[i] == n-k+i {
		i--
	}
	if i < 0 {
		return false
	}
	comb[i]++
	for j := i + 1; j < k; j++ {
		comb[j] = comb[j-1] + 1
	}
	return true
}
