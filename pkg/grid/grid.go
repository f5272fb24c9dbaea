// Package grid defines the corner-point grid input of the tessellator.
// A grid is a set of straight pillars, one depth per cell corner and an
// active flag per cell. The arrays are flat and follow the Eclipse layout;
// all index arithmetic into them lives in this package.
package grid

// Corner identifies one of the eight corners of a cell. Bit 0 selects the
// i+1 side, bit 1 the j+1 side and bit 2 the bottom (k+1) side.
type Corner int

// NewCorner packs the three corner offsets (each 0 or 1).
func NewCorner(di, dj, dk int) Corner {
	return Corner(di | dj<<1 | dk<<2)
}

// DI returns the offset along i.
func (c Corner) DI() int { return int(c) & 1 }

// DJ returns the offset along j.
func (c Corner) DJ() int { return (int(c) >> 1) & 1 }

// DK returns the offset along k: 0 for the top, 1 for the bottom.
func (c Corner) DK() int { return (int(c) >> 2) & 1 }

// Grid is a corner-point grid description.
//
//	Coord  6 reals per pillar, (NX+1)·(NY+1) pillars: (x1,y1,z1, x2,y2,z2)
//	ZCorn  one depth per cell corner, 2NX · 2NY · 2NZ reals
//	ActNum one flag per cell, non-zero means active
type Grid struct {
	NX, NY, NZ int
	Coord      []float64
	ZCorn      []float64
	ActNum     []int32
}

// CellCount returns NX·NY·NZ.
func (g *Grid) CellCount() int {
	return g.NX * g.NY * g.NZ
}

// PillarCount returns (NX+1)·(NY+1).
func (g *Grid) PillarCount() int {
	return (g.NX + 1) * (g.NY + 1)
}

// CellIndex returns the global (logical) index of cell (i,j,k).
func (g *Grid) CellIndex(i, j, k int) int {
	return i + g.NX*(j+g.NY*k)
}

// CellCoords is the inverse of CellIndex.
func (g *Grid) CellCoords(index int) (i, j, k int) {
	i = index % g.NX
	j = (index / g.NX) % g.NY
	k = index / (g.NX * g.NY)
	return i, j, k
}

// Active reports whether cell (i,j,k) is active.
func (g *Grid) Active(i, j, k int) bool {
	return g.ActNum[g.CellIndex(i, j, k)] != 0
}

// Pillar returns the two endpoints of pillar (i,j), 0 <= i <= NX, 0 <= j <= NY.
func (g *Grid) Pillar(i, j int) [6]float64 {
	var p [6]float64
	o := 6 * (i + (g.NX+1)*j)
	copy(p[:], g.Coord[o:o+6])
	return p
}

// Corners returns a CornerGrid view over g.
func (g *Grid) Corners() CornerGrid {
	return CornerGrid{g: g}
}

// CornerGrid addresses ZCorn by cell and corner so callers never derive
// the doubled-coordinate stride themselves.
type CornerGrid struct {
	g *Grid
}

// offset returns the ZCorn index of corner c of cell (i,j,k).
func (cg CornerGrid) offset(i, j, k int, c Corner) int {
	g := cg.g
	x := 2*i + c.DI()
	y := 2*j + c.DJ()
	z := 2*k + c.DK()
	return x + 2*g.NX*(y+2*g.NY*z)
}

// Depth returns the depth of corner c of cell (i,j,k).
func (cg CornerGrid) Depth(i, j, k int, c Corner) float64 {
	return cg.g.ZCorn[cg.offset(i, j, k, c)]
}

// SetDepth overwrites the depth of corner c of cell (i,j,k).
func (cg CornerGrid) SetDepth(i, j, k int, c Corner, z float64) {
	cg.g.ZCorn[cg.offset(i, j, k, c)] = z
}

// Thickness returns the bottom-minus-top depth of cell (i,j,k) at the
// pillar selected by di, dj.
func (cg CornerGrid) Thickness(i, j, k, di, dj int) float64 {
	return cg.Depth(i, j, k, NewCorner(di, dj, 1)) - cg.Depth(i, j, k, NewCorner(di, dj, 0))
}
