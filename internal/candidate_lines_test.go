package internal

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"crosswarped.com/nonogrid/pkg/primitives"
)

func binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	r := 1
	for i := 0; i < k; i++ {
		r = r * (n - i) / (i + 1)
	}
	return r
}

// expectedCount computes the stars-and-bars prediction C(freeSpaces+nGroups, nGroups).
func expectedCount(clue primitives.Clue, length int) int {
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
		return 0
	}
	return binomial(free+len(clue), len(clue))
}

func TestEnumerateLines_EmptyClue(t *testing.T) {
	lines := EnumerateLines(nil, 4)
	if len(lines) != 1 {
		t.Fatalf("expected a single all-blank line, got %d lines", len(lines))
	}
	if got := lines[0].String(); got != "...." {
		t.Errorf("expected '....', got %q", got)
	}
}

func TestEnumerateLines(t *testing.T) {
	tests := []struct {
		name   string
		clue   primitives.Clue
		length int
		want   []string
	}{
		{
			name:   "single run with slack",
			clue:   primitives.Clue{{Count: 3, Value: 1}},
			length: 5,
			want:   []string{"111..", ".111.", "..111"},
		},
		{
			name:   "exact fit",
			clue:   primitives.Clue{{Count: 2, Value: 1}, {Count: 2, Value: 1}},
			length: 5,
			want:   []string{"11.11"},
		},
		{
			name:   "same color runs need a separator",
			clue:   primitives.Clue{{Count: 1, Value: 1}, {Count: 1, Value: 1}},
			length: 4,
			want:   []string{"1.1.", "1..1", ".1.1"},
		},
		{
			name:   "different colors can touch",
			clue:   primitives.Clue{{Count: 1, Value: 1}, {Count: 1, Value: 2}},
			length: 3,
			want:   []string{"12.", "1.2", ".12"},
		},
		{
			name:   "two colors exact fit",
			clue:   primitives.Clue{{Count: 1, Value: 1}, {Count: 2, Value: 2}},
			length: 3,
			want:   []string{"122"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := EnumerateLines(tt.clue, tt.length)

			got := make([]string, len(lines))
			for i, line := range lines {
				got[i] = line.String()
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("EnumerateLines mismatch (-want +got):\n%s", diff)
			}

			if want := expectedCount(tt.clue, tt.length); len(lines) != want {
				t.Errorf("got %d lines, stars-and-bars predicts %d", len(lines), want)
			}

			for _, line := range lines {
				if line.Length() != tt.length {
					t.Errorf("line %s has length %d, want %d", line, line.Length(), tt.length)
				}
				if diff := cmp.Diff(tt.clue, line.Runs()); diff != "" {
					t.Errorf("line %s does not parse back to its clue (-want +got):\n%s", line, diff)
				}
			}
		})
	}
}

func TestEnumerateLines_CountMatchesFormula(t *testing.T) {
	tests := []struct {
		name   string
		clue   primitives.Clue
		length int
	}{
		{"one short run, long line", primitives.Clue{{Count: 1, Value: 1}}, 10},
		{"three runs", primitives.Clue{{Count: 2, Value: 1}, {Count: 1, Value: 2}, {Count: 2, Value: 1}}, 10},
		{"repeated colors", primitives.Clue{{Count: 1, Value: 3}, {Count: 1, Value: 3}, {Count: 1, Value: 3}}, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := EnumerateLines(tt.clue, tt.length)
			if want := expectedCount(tt.clue, tt.length); len(lines) != want {
				t.Fatalf("got %d lines, stars-and-bars predicts %d", len(lines), want)
			}

			distinct := make(map[string]bool, len(lines))
			for _, line := range lines {
				key := line.String()
				if distinct[key] {
					t.Errorf("duplicate line %s", key)
				}
				distinct[key] = true
			}
		})
	}
}

func TestEnumerateLines_ClueCannotFit(t *testing.T) {
	clue := primitives.Clue{{Count: 2, Value: 1}, {Count: 2, Value: 1}}
	if lines := EnumerateLines(clue, 3); lines != nil {
		t.Errorf("expected no lines for an oversized clue, got %d", len(lines))
	}
}

func TestEnumerateLines_Deterministic(t *testing.T) {
	clue := primitives.Clue{{Count: 2, Value: 1}, {Count: 1, Value: 2}}
	first := EnumerateLines(clue, 8)
	second := EnumerateLines(clue, 8)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("enumeration is not deterministic (-first +second):\n%s", diff)
	}
}

func TestCandidateLines(t *testing.T) {
	palette, err := primitives.NewPalette([]primitives.Clue{{{Count: 1, Value: 1}}})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("oversized clue wraps to Impossible", func(t *testing.T) {
		c := CandidateLines(primitives.Clue{{Count: 4, Value: 1}}, 3, palette)
		if _, ok := c.(*primitives.Impossible); !ok {
			t.Errorf("expected Impossible, got %s", c)
		}
	})

	t.Run("exact fit wraps to Definite", func(t *testing.T) {
		c := CandidateLines(primitives.Clue{{Count: 3, Value: 1}}, 3, palette)
		if _, ok := c.(*primitives.Definite); !ok {
			t.Errorf("expected Definite, got %s", c)
		}
	})

	t.Run("several placements", func(t *testing.T) {
		c := CandidateLines(primitives.Clue{{Count: 1, Value: 1}}, 4, palette)
		if c.Count() != 4 {
			t.Errorf("expected 4 candidates, got %d", c.Count())
		}
		if c.Length() != 4 {
			t.Errorf("expected length 4, got %d", c.Length())
		}
	})
}
