package analysis

import (
	"fmt"

	"github.com/ternarybob/statera/internal/models"
)

// UndefinedCorrelationError marks degenerate statistical input: the result is
// explicitly absent rather than silently zeroed, and the run continues.
type UndefinedCorrelationError struct {
	N      int
	Reason string
}

func (e *UndefinedCorrelationError) Error() string {
	return fmt.Sprintf("correlation undefined (n=%d): %s", e.N, e.Reason)
}

// DegenerateAxisError means the classifier cannot split an axis because every
// value equals the threshold. The quadrant output for that run is withheld;
// the correlation output is still returned.
type DegenerateAxisError struct {
	Axis models.Dimension
}

func (e *DegenerateAxisError) Error() string {
	return fmt.Sprintf("cannot split axis %s: all values identical", e.Axis)
}
