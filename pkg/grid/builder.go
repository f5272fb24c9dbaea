package grid

// NewBox returns an axis-aligned grid of nx·ny·nz active cells of size
// dx·dy·dz. Pillars are vertical, depth increases with k and the top of
// the grid is at depth 0.
func NewBox(nx, ny, nz int, dx, dy, dz float64) *Grid {
	g := &Grid{
		NX:     nx,
		NY:     ny,
		NZ:     nz,
		Coord:  make([]float64, 6*(nx+1)*(ny+1)),
		ZCorn:  make([]float64, 8*nx*ny*nz),
		ActNum: make([]int32, nx*ny*nz),
	}

	bottom := float64(nz) * dz
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			o := 6 * (i + (nx+1)*j)
			x, y := float64(i)*dx, float64(j)*dy
			copy(g.Coord[o:o+6], []float64{x, y, 0, x, y, bottom})
		}
	}

	cg := g.Corners()
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				for c := Corner(0); c < 8; c++ {
					cg.SetDepth(i, j, k, c, float64(k+c.DK())*dz)
				}
				g.ActNum[g.CellIndex(i, j, k)] = 1
			}
		}
	}
	return g
}

// SetActive sets the active flag of cell (i,j,k).
func (g *Grid) SetActive(i, j, k int, active bool) {
	var v int32
	if active {
		v = 1
	}
	g.ActNum[g.CellIndex(i, j, k)] = v
}

// ShiftColumn adds dz to every corner depth of column (i,j), producing a
// vertical fault throw against the neighbouring columns.
func (g *Grid) ShiftColumn(i, j int, dz float64) {
	for di := 0; di < 2; di++ {
		for dj := 0; dj < 2; dj++ {
			g.ShiftColumnPillar(i, j, di, dj, dz)
		}
	}
}

// ShiftColumnPillar adds dz to the corner depths of column (i,j) that lie
// on pillar (i+di, j+dj) only. Throws that differ between the two pillars
// of a wall make the wall lines of the two columns cross.
func (g *Grid) ShiftColumnPillar(i, j, di, dj int, dz float64) {
	cg := g.Corners()
	for k := 0; k < g.NZ; k++ {
		for dk := 0; dk < 2; dk++ {
			c := NewCorner(di, dj, dk)
			cg.SetDepth(i, j, k, c, cg.Depth(i, j, k, c)+dz)
		}
	}
}

// InsertZeroLayer returns a copy of g with an extra, active, zero-thickness
// layer inserted before layer k. The new layer sits at the top depth of the
// old layer k, so the geometry of the other cells is unchanged.
func (g *Grid) InsertZeroLayer(k int) *Grid {
	out := &Grid{
		NX:     g.NX,
		NY:     g.NY,
		NZ:     g.NZ + 1,
		Coord:  append([]float64(nil), g.Coord...),
		ZCorn:  make([]float64, 8*g.NX*g.NY*(g.NZ+1)),
		ActNum: make([]int32, g.NX*g.NY*(g.NZ+1)),
	}

	src, dst := g.Corners(), out.Corners()
	for nk := 0; nk < out.NZ; nk++ {
		for j := 0; j < g.NY; j++ {
			for i := 0; i < g.NX; i++ {
				switch {
				case nk < k:
					copyCell(src, dst, i, j, nk, nk)
					out.ActNum[out.CellIndex(i, j, nk)] = g.ActNum[g.CellIndex(i, j, nk)]
				case nk > k:
					copyCell(src, dst, i, j, nk-1, nk)
					out.ActNum[out.CellIndex(i, j, nk)] = g.ActNum[g.CellIndex(i, j, nk-1)]
				default:
					for c := Corner(0); c < 8; c++ {
						// Below the last layer the new layer hangs off its bottom.
						sk, dk := k, 0
						if k >= g.NZ {
							sk, dk = g.NZ-1, 1
						}
						dst.SetDepth(i, j, nk, c, src.Depth(i, j, sk, NewCorner(c.DI(), c.DJ(), dk)))
					}
					out.ActNum[out.CellIndex(i, j, nk)] = 1
				}
			}
		}
	}
	return out
}

func copyCell(src, dst CornerGrid, i, j, sk, dk int) {
	for c := Corner(0); c < 8; c++ {
		dst.SetDepth(i, j, dk, c, src.Depth(i, j, sk, c))
	}
}
