package nonogrid

import (
	"fmt"

	"crosswarped.com/nonogrid/pkg/primitives"
)

// Rules holds the row and column clues of one puzzle. The board implied by
// the rules has len(Rows) rows and len(Cols) columns.
type Rules struct {
	Rows []primitives.Clue `json:"rows"`
	Cols []primitives.Clue `json:"cols"`
}

func (r Rules) validate() error {
	if len(r.Rows) == 0 {
		return fmt.Errorf("rules must have at least one row clue")
	}
	if len(r.Cols) == 0 {
		return fmt.Errorf("rules must have at least one column clue")
	}
	if err := validateClues(r.Rows, "row"); err != nil {
		return err
	}
	return validateClues(r.Cols, "column")
}

func validateClues(clues []primitives.Clue, dimension string) error {
	for i, clue := range clues {
		for _, run := range clue {
			if run.Count < 1 {
				return fmt.Errorf("%s %d: run length %d is out of range, runs hold at least one cell", dimension, i, run.Count)
			}
		}
	}
	return nil
}
