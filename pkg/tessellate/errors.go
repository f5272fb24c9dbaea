package tessellate

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrMixedPillarOrder reports corner depths along a pillar that are
	// neither ascending nor descending.
	ErrMixedPillarOrder = errors.New("pillar depths are neither ascending nor descending")

	// ErrInvariant reports an internal topology check that failed, either
	// because the input is corrupt or because of a bug.
	ErrInvariant = errors.New("topology invariant violated")
)

// ColumnError wraps a failure with the pillar (i,j) the sweep was on and
// the step that failed.
type ColumnError struct {
	I, J int
	Op   string
	Err  error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("tessellate: %s at pillar (%d,%d): %v", e.Op, e.I, e.J, e.Err)
}

func (e *ColumnError) Unwrap() error {
	return e.Err
}

// InvariantMode selects how topology invariants are checked.
type InvariantMode int

const (
	// InvariantsStrict checks everything and aborts on the first violation.
	InvariantsStrict InvariantMode = iota
	// InvariantsLog checks everything, logs violations and carries on,
	// dropping the faces it cannot build.
	InvariantsLog
	// InvariantsOff skips the consistency scans. Violations met while
	// walking chains are still logged and their faces dropped.
	InvariantsOff
)

func (m InvariantMode) String() string {
	switch m {
	case InvariantsStrict:
		return "strict"
	case InvariantsLog:
		return "log"
	case InvariantsOff:
		return "off"
	default:
		return "unknown"
	}
}

// ParseInvariantMode is the inverse of InvariantMode.String.
func ParseInvariantMode(s string) (InvariantMode, error) {
	for _, m := range []InvariantMode{InvariantsStrict, InvariantsLog, InvariantsOff} {
		if m.String() == s {
			return m, nil
		}
	}
	return InvariantsStrict, fmt.Errorf("unknown invariant mode %q", s)
}

// scanning reports whether the optional consistency scans run.
func (s *sweep) scanning() bool {
	return s.opts.Invariants != InvariantsOff
}

// invariant returns an ErrInvariant error when ok is false and invariants
// are strict. Otherwise the violation is logged and nil is returned; the
// caller then drops whatever it was building.
func (s *sweep) invariant(ok bool, format string, args ...any) error {
	if ok {
		return nil
	}
	err := fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
	if s.opts.Invariants == InvariantsStrict {
		return err
	}
	s.violations++
	s.log.Warn("invariant violated",
		zap.Int("i", s.i),
		zap.Int("j", s.j),
		zap.Error(err))
	return nil
}
