package grid

import (
	"errors"
	"fmt"
	"math"
)

// ValidationError describes one malformed part of a grid description.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrInvalidGrid is matched by every error returned from Validate.
var ErrInvalidGrid = errors.New("invalid grid")

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidGrid
}

// Validate checks dimensions, array lengths and that every coordinate and
// depth is finite. All problems are reported together; a nil return means
// the arrays can be indexed safely.
func (g *Grid) Validate() error {
	var errs []error

	if g.NX <= 0 || g.NY <= 0 || g.NZ <= 0 {
		errs = append(errs, &ValidationError{
			Code:    "DIMENSIONS",
			Message: fmt.Sprintf("dimensions must be positive, got %dx%dx%d", g.NX, g.NY, g.NZ),
		})
		// Lengths are meaningless without valid dimensions.
		return errors.Join(errs...)
	}

	if want := 6 * g.PillarCount(); len(g.Coord) != want {
		errs = append(errs, &ValidationError{
			Code:    "COORD_LENGTH",
			Message: fmt.Sprintf("coord has %d values, want %d", len(g.Coord), want),
		})
	}
	if want := 8 * g.CellCount(); len(g.ZCorn) != want {
		errs = append(errs, &ValidationError{
			Code:    "ZCORN_LENGTH",
			Message: fmt.Sprintf("zcorn has %d values, want %d", len(g.ZCorn), want),
		})
	}
	if want := g.CellCount(); len(g.ActNum) != want {
		errs = append(errs, &ValidationError{
			Code:    "ACTNUM_LENGTH",
			Message: fmt.Sprintf("actnum has %d values, want %d", len(g.ActNum), want),
		})
	}
	if err := nonFinite("COORD_NONFINITE", "coord", g.Coord); err != nil {
		errs = append(errs, err)
	}
	if err := nonFinite("ZCORN_NONFINITE", "zcorn", g.ZCorn); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// nonFinite reports the NaN and infinite entries of values, naming the
// first one.
func nonFinite(code, name string, values []float64) error {
	first, count := -1, 0
	for n, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if first < 0 {
				first = n
			}
			count++
		}
	}
	if count == 0 {
		return nil
	}
	return &ValidationError{
		Code:    code,
		Message: fmt.Sprintf("%s has %d non-finite values, first %v at index %d", name, count, values[first], first),
	}
}
