// Package geometry samples positions and normals on the ruled surfaces
// spanned by corner-point pillars: vertical walls between two pillars and
// (possibly warped) cell floors between four. Everything here is a pure
// function of its inputs.
package geometry

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// flatPillar is the depth span below which a pillar is treated as vertical.
const flatPillar = 1e-12

// Pillar is the straight line through two points. Points on it are
// addressed by depth (their z coordinate).
type Pillar struct {
	P1, P2 v3.Vec
}

// NewPillar builds a pillar from a coord record (x1,y1,z1, x2,y2,z2).
func NewPillar(c [6]float64) Pillar {
	return Pillar{
		P1: v3.Vec{X: c[0], Y: c[1], Z: c[2]},
		P2: v3.Vec{X: c[3], Y: c[4], Z: c[5]},
	}
}

// At returns the point of the pillar at depth z. A pillar whose endpoints
// share a depth is treated as vertical through P1.
func (p Pillar) At(z float64) v3.Vec {
	dz := p.P2.Z - p.P1.Z
	if math.Abs(dz) < flatPillar {
		return v3.Vec{X: p.P1.X, Y: p.P1.Y, Z: z}
	}
	t := (z - p.P1.Z) / dz
	return v3.Vec{
		X: p.P1.X + t*(p.P2.X-p.P1.X),
		Y: p.P1.Y + t*(p.P2.Y-p.P1.Y),
		Z: z,
	}
}

// Dz returns the derivative of At with respect to depth.
func (p Pillar) Dz() v3.Vec {
	dz := p.P2.Z - p.P1.Z
	if math.Abs(dz) < flatPillar {
		return v3.Vec{Z: 1}
	}
	return v3.Vec{X: (p.P2.X - p.P1.X) / dz, Y: (p.P2.Y - p.P1.Y) / dz, Z: 1}
}

// unit normalizes v, returning the zero vector for degenerate input.
func unit(v v3.Vec) v3.Vec {
	l := v.Length()
	if l == 0 || math.IsNaN(l) {
		return v3.Vec{}
	}
	return v.MulScalar(1 / l)
}

func lerp(a, b v3.Vec, t float64) v3.Vec {
	return a.MulScalar(1 - t).Add(b.MulScalar(t))
}
