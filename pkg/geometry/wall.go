package geometry

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// WallSampler samples the ruled surface between pillars A (u=0) and B (u=1).
// A point of the wall is (1-u)·A.At(z) + u·B.At(z).
type WallSampler struct {
	A, B Pillar
}

// NewWallSampler returns a sampler for the wall between two coord records.
func NewWallSampler(a, b [6]float64) WallSampler {
	return WallSampler{A: NewPillar(a), B: NewPillar(b)}
}

// Point returns the wall point at (u, z).
func (w WallSampler) Point(u, z float64) v3.Vec {
	return lerp(w.A.At(z), w.B.At(z), u)
}

// Intersect finds where line P, running from depth p0 on A to p1 on B,
// crosses line Q, running from q0 on A to q1 on B. It returns the wall
// point of the crossing and its parameter u, clamped to [0,1]. Depths are
// centered before solving so that large absolute depths do not swamp the
// throw.
func (w WallSampler) Intersect(p0, p1, q0, q1 float64) (v3.Vec, float64) {
	m := 0.25 * (p0 + p1 + q0 + q1)
	p0, p1, q0, q1 = p0-m, p1-m, q0-m, q1-m

	d := (p1 - p0) - (q1 - q0)
	u := 0.5 // parallel lines
	if d != 0 {
		u = (q0 - p0) / d
	}
	u = math.Max(0, math.Min(1, u))

	z := m + (1-u)*p0 + u*p1
	return w.Point(u, z), u
}

// Normal returns the unit normal ∂P/∂u × ∂P/∂z at (u, z).
func (w WallSampler) Normal(u, z float64) v3.Vec {
	du := w.B.At(z).Sub(w.A.At(z))
	dz := lerp(w.A.Dz(), w.B.Dz(), u)
	return unit(du.Cross(dz))
}
