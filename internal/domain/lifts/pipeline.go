package lifts

import (
	"fmt"
	"strings"

	"github.com/okian/liftsheet/internal/domain/table"
)

// Stage names accepted by StageByName and ParseStages.
const (
	StageBest  = "best"
	StageRound = "round"
)

// Stage is one named transform. Apply never mutates its input and returns
// either a new table or an error, never both.
type Stage struct {
	Name  string
	Apply func(*table.Table) (*table.Table, error)
}

var registry = map[string]Stage{
	StageBest:  {Name: StageBest, Apply: CalcBestLifts},
	StageRound: {Name: StageRound, Apply: RoundKg},
}

// DefaultStages is the usual order: derive the bests, then round everything.
func DefaultStages() []Stage {
	return []Stage{registry[StageBest], registry[StageRound]}
}

// StageByName looks up a stage.
func StageByName(name string) (Stage, error) {
	s, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Stage{}, fmt.Errorf("%w: %q", ErrUnknownStage, name)
	}
	return s, nil
}

// ParseStages reads a comma separated list such as "best,round".
// An empty list yields DefaultStages.
func ParseStages(list string) ([]Stage, error) {
	if strings.TrimSpace(list) == "" {
		return DefaultStages(), nil
	}
	return StagesByName(strings.Split(list, ",")...)
}

// StagesByName resolves each name in order. An empty slice yields DefaultStages.
func StagesByName(names ...string) ([]Stage, error) {
	if len(names) == 0 {
		return DefaultStages(), nil
	}
	out := make([]Stage, 0, len(names))
	for _, n := range names {
		s, err := StageByName(n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// StageError attributes a transform failure to the stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Run applies stages in order. The first failing stage ends the run with a
// *StageError and no table.
func Run(t *table.Table, stages ...Stage) (*table.Table, error) {
	if len(stages) == 0 {
		return t.ShallowClone(), nil
	}
	cur := t
	for _, s := range stages {
		next, err := s.Apply(cur)
		if err != nil {
			return nil, &StageError{Stage: s.Name, Err: err}
		}
		cur = next
	}
	return cur, nil
}
