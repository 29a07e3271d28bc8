package optimizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/fplsquad/internal/domain/model"
)

// Optimizer errors.
var (
	ErrInvalidLock    = errors.New("invalid locked player")
	ErrInvalidOptions = errors.New("invalid optimizer options")
)

// IncompleteError reports a run that could not fill every quota. It carries the
// partial squad so callers can show what was built.
type IncompleteError struct {
	Squad model.Squad
	Unmet []model.Position
}

func (e *IncompleteError) Error() string {
	labels := make([]string, 0, len(e.Unmet))
	for _, p := range e.Unmet {
		labels = append(labels, p.Label())
	}
	return fmt.Sprintf("%s: unmet positions %s", model.ErrSquadIncomplete, strings.Join(labels, ", "))
}

// Unwrap allows errors.Is(err, model.ErrSquadIncomplete).
func (e *IncompleteError) Unwrap() error { return model.ErrSquadIncomplete }
