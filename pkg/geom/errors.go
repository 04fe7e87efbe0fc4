package geom

import (
	"errors"
	"fmt"
)

// Recoverable geometry errors. A feature that fails with one of these is
// skipped; the batch carries on.
var (
	ErrDegenerateGeometry = errors.New("degenerate geometry")
	ErrInsufficientPoints = fmt.Errorf("%w: insufficient points", ErrDegenerateGeometry)
	ErrDegenerateNormal   = errors.New("degenerate normal")
	ErrDegenerateVertex   = errors.New("degenerate vertex")
	ErrInvalidBoundary    = errors.New("invalid boundary")
	ErrHoleSkipped        = errors.New("hole skipped")
)

// Severity tells a caller what to do with an error returned by an engine.
type Severity int

const (
	SeverityNone        Severity = iota // success
	SeverityRecoverable                 // skip the feature
	SeverityFatal                       // abort the run
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityRecoverable:
		return "recoverable"
	case SeverityFatal:
		return "fatal"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Classify maps an error onto a Severity. Anything that is not one of the
// geometry sentinels is fatal.
func Classify(err error) Severity {
	switch {
	case err == nil:
		return SeverityNone
	case errors.Is(err, ErrDegenerateGeometry),
		errors.Is(err, ErrDegenerateNormal),
		errors.Is(err, ErrDegenerateVertex),
		errors.Is(err, ErrInvalidBoundary),
		errors.Is(err, ErrHoleSkipped):
		return SeverityRecoverable
	default:
		return SeverityFatal
	}
}

// Kind returns a short stable label for a recoverable error, used to group
// failures in reports. Unknown errors map to "other".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrHoleSkipped):
		return "hole skipped"
	case errors.Is(err, ErrInsufficientPoints):
		return "insufficient points"
	case errors.Is(err, ErrDegenerateGeometry):
		return "degenerate geometry"
	case errors.Is(err, ErrDegenerateNormal):
		return "degenerate normal"
	case errors.Is(err, ErrDegenerateVertex):
		return "degenerate vertex"
	case errors.Is(err, ErrInvalidBoundary):
		return "invalid boundary"
	default:
		return "other"
	}
}
