package builder

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-relations/pkg/graph"
)

// BuildError reports a processor failure for one record.
type BuildError struct {
	Category  string
	Processor string
	Recid     string
	Err       error
}

func (e *BuildError) Error() string {
	if e.Recid != "" {
		return fmt.Sprintf("build %s record %s: processor %s: %v", e.Category, e.Recid, e.Processor, e.Err)
	}
	return fmt.Sprintf("build %s record: processor %s: %v", e.Category, e.Processor, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err must stop the whole run rather than skip the
// record. Identity violations and a missing identity processor point at a
// builder bug.
func IsFatal(err error) bool {
	return graph.IsStructural(err) || errors.Is(err, ErrNoIdentity)
}
