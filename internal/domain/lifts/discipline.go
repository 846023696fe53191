// Package lifts derives and normalizes the weight columns of a meet-result table.
package lifts

import "strconv"

// EventColumn names the column listing which disciplines a row competed in.
const EventColumn = "Event"

// Discipline is one of the three powerlifting lifts.
type Discipline string

// Known disciplines, in the order transforms visit them.
const (
	Squat    Discipline = "Squat"
	Bench    Discipline = "Bench"
	Deadlift Discipline = "Deadlift"
)

// Disciplines lists every discipline in processing order.
var Disciplines = []Discipline{Squat, Bench, Deadlift}

// Letter is the discipline's code inside an Event value.
func (d Discipline) Letter() byte { return d[0] }

// AttemptColumn names the column for attempt n, e.g. "Bench2Kg".
func (d Discipline) AttemptColumn(n int) string {
	return string(d) + strconv.Itoa(n) + "Kg"
}

// BestColumn names the derived best-of-three column, e.g. "Best3BenchKg".
func (d Discipline) BestColumn() string {
	return "Best3" + string(d) + "Kg"
}

// EventSet is the set of disciplines encoded by an Event value.
type EventSet uint8

const (
	eventSquat EventSet = 1 << iota
	eventBench
	eventDeadlift
)

// ParseEvent reads an Event value such as "SBD" or "B". Each of the letters
// S, B and D adds its discipline; all other characters are ignored.
func ParseEvent(s string) EventSet {
	var set EventSet
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case Squat.Letter():
			set |= eventSquat
		case Bench.Letter():
			set |= eventBench
		case Deadlift.Letter():
			set |= eventDeadlift
		}
	}
	return set
}

// Has reports whether the set includes d.
func (s EventSet) Has(d Discipline) bool {
	switch d {
	case Squat:
		return s&eventSquat != 0
	case Bench:
		return s&eventBench != 0
	case Deadlift:
		return s&eventDeadlift != 0
	}
	return false
}

// String renders the set in canonical S, B, D order.
func (s EventSet) String() string {
	var b []byte
	for _, d := range Disciplines {
		if s.Has(d) {
			b = append(b, d.Letter())
		}
	}
	return string(b)
}
