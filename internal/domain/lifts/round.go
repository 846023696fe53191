package lifts

import (
	"github.com/okian/liftsheet/internal/domain/table"
)

// TotalColumn names the meet total.
const TotalColumn = "TotalKg"

// roundedColumns lists every weight column RoundKg normalizes, in the order
// the cells of a row are visited.
var roundedColumns = func() []string {
	var cols []string
	for _, d := range Disciplines {
		for n := 1; n <= 4; n++ {
			cols = append(cols, d.AttemptColumn(n))
		}
		cols = append(cols, d.BestColumn())
	}
	return append(cols, TotalColumn)
}()

type roundTarget struct {
	name string
	idx  int
}

// RoundKg returns a copy of src with every weight column rounded to the
// nearest 0.5 kg. Every row of a present column is rewritten, so empty cells
// become "0".
//
// A weight column sitting at position 0 is left alone; only columns after
// the first are considered present.
//
// The first cell that is not a number aborts the call with a *CellError.
func RoundKg(src *table.Table) (*table.Table, error) {
	t := src.ShallowClone()

	targets := make([]roundTarget, 0, len(roundedColumns))
	for _, name := range roundedColumns {
		if idx := t.Index(name); idx > 0 {
			targets = append(targets, roundTarget{name: name, idx: idx})
		}
	}

	for i, row := range t.Rows {
		for _, tg := range targets {
			kg, err := ParseWeight(row[tg.idx])
			if err != nil {
				return nil, &CellError{Column: tg.name, Row: i + 1, Value: row[tg.idx]}
			}
			row[tg.idx] = FormatKg(RoundHalfKg(kg))
		}
	}
	return t, nil
}
