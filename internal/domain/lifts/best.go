package lifts

import (
	"errors"

	"github.com/okian/liftsheet/internal/domain/table"
)

// attemptsPerBest is how many attempts feed a Best3 column.
const attemptsPerBest = 3

// CalcBestLifts returns a copy of src with Best3SquatKg, Best3BenchKg and
// Best3DeadliftKg recalculated from the attempt columns.
//
// A discipline is processed only when its first attempt column exists.
// Missing second or third attempt columns are collected across all
// disciplines and returned together; src is never modified and no table is
// returned on error.
func CalcBestLifts(src *table.Table) (*table.Table, error) {
	t := src.ShallowClone()

	eventIdx := t.Index(EventColumn)
	if eventIdx == table.NotFound {
		return nil, &MissingColumnError{Column: EventColumn}
	}

	events := make([]EventSet, len(t.Rows))
	for i, row := range t.Rows {
		events[i] = ParseEvent(row[eventIdx])
	}

	var errs []error
	for _, d := range Disciplines {
		if !t.Has(d.AttemptColumn(1)) {
			continue
		}
		if err := addBestColumn(t, d, events); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return t, nil
}

// addBestColumn fills d's Best3 column in place.
func addBestColumn(t *table.Table, d Discipline, events []EventSet) error {
	var attempts [attemptsPerBest]int
	for n := range attempts {
		name := d.AttemptColumn(n + 1)
		attempts[n] = t.Index(name)
		if attempts[n] == table.NotFound {
			return &MissingColumnError{Column: name}
		}
	}

	bestIdx := t.Index(d.BestColumn())
	if bestIdx == table.NotFound {
		t.AppendColumn(d.BestColumn())
		bestIdx = len(t.Columns) - 1
	}

	for i, row := range t.Rows {
		if !events[i].Has(d) {
			row[bestIdx] = ""
			continue
		}
		if best, ok := bestAttempt(row, attempts); ok {
			row[bestIdx] = best
		}
	}
	return nil
}

// bestAttempt returns the text of the heaviest attempt in row. Attempts are
// scanned in order and replace the current best only when strictly heavier,
// so ties keep the earlier attempt. Unreadable cells never win. ok is false
// when no attempt is above zero.
func bestAttempt(row []string, attempts [attemptsPerBest]int) (best string, ok bool) {
	var bestKg float64
	for _, idx := range attempts {
		kg, err := ParseWeight(row[idx])
		if err != nil {
			continue
		}
		if kg > bestKg {
			best, bestKg = row[idx], kg
		}
	}
	return best, bestKg > 0
}
