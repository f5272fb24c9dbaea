package geometry

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// FloorSampler samples the top or bottom surface of a cell. Corner c
// (c = di + 2·dj) lies on Pillars[c] at depth Depths[c]; the depth field
// is bilinear in (u, v) and each point is placed on the bilinear blend of
// the four pillars at that depth, so warped faces are handled.
type FloorSampler struct {
	Pillars [4]Pillar
	Depths  [4]float64
}

// weights returns the bilinear weights and their u and v derivatives.
func weights(u, v float64) (w, wu, wv [4]float64) {
	w = [4]float64{(1 - u) * (1 - v), u * (1 - v), (1 - u) * v, u * v}
	wu = [4]float64{-(1 - v), 1 - v, -v, v}
	wv = [4]float64{-(1 - u), -u, 1 - u, u}
	return w, wu, wv
}

// Depth returns the interpolated depth at (u, v).
func (f FloorSampler) Depth(u, v float64) float64 {
	w, _, _ := weights(u, v)
	return w[0]*f.Depths[0] + w[1]*f.Depths[1] + w[2]*f.Depths[2] + w[3]*f.Depths[3]
}

// Position returns the surface point at (u, v).
func (f FloorSampler) Position(u, v float64) v3.Vec {
	w, _, _ := weights(u, v)
	z := f.Depth(u, v)
	var p v3.Vec
	for c := 0; c < 4; c++ {
		p = p.Add(f.Pillars[c].At(z).MulScalar(w[c]))
	}
	return p
}

// Normal returns the unit normal ∂P/∂u × ∂P/∂v at (u, v).
func (f FloorSampler) Normal(u, v float64) v3.Vec {
	w, wu, wv := weights(u, v)
	z := f.Depth(u, v)

	var zu, zv float64
	for c := 0; c < 4; c++ {
		zu += wu[c] * f.Depths[c]
		zv += wv[c] * f.Depths[c]
	}

	var du, dv v3.Vec
	for c := 0; c < 4; c++ {
		at := f.Pillars[c].At(z)
		slope := f.Pillars[c].Dz().MulScalar(w[c])
		du = du.Add(at.MulScalar(wu[c])).Add(slope.MulScalar(zu))
		dv = dv.Add(at.MulScalar(wv[c])).Add(slope.MulScalar(zv))
	}
	return unit(du.Cross(dv))
}
