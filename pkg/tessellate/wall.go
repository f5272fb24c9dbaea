package tessellate

import (
	"cmp"
	"slices"

	"github.com/chazu/cpgrid/pkg/bridge"
	"github.com/chazu/cpgrid/pkg/geometry"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Side flags of a wall line.
const (
	sideFirst  uint8 = 1
	sideSecond uint8 = 2
	sidesBoth  uint8 = sideFirst | sideSecond
)

// wallLine is a cell top or bottom edge running across a wall from pillar
// a to pillar b. over and under hold the cell above and below the line on
// each side; on a side the line does not belong to, both hold the cell
// containing the line at pillar a.
type wallLine struct {
	a, b        bridge.Index
	na, nb      bridge.Index // endpoint normals
	sides       uint8
	fault       bool
	over, under [2]bridge.CellRef
}

func (l *wallLine) has(side int) bool {
	return l.sides&(1<<side) != 0
}

// sideLine is a wall line seen from one side only.
type sideLine struct {
	a, b        bridge.Index
	over, under bridge.CellRef
}

func compareSideLines(x, y sideLine) int {
	return cmp.Or(cmp.Compare(x.a, y.a), cmp.Compare(x.b, y.b))
}

// wallSide is the column on one side of a wall and the pillar corners of
// that column at the wall's pillars a and b.
type wallSide struct {
	col    *column
	ca, cb int
}

// wall is the vertical surface between two adjacent pillars.
type wall struct {
	orient  bridge.Orientation
	sampler geometry.WallSampler
	flip    float64

	lines []wallLine
	// top[s][n] and bot[s][n] index the lines of the n-th active cell of
	// the column on side s.
	top, bot [2][]int

	isects       []intersection
	chains       []int
	chainOffsets []int
}

func (w *wall) reset(orient bridge.Orientation, a, b [6]float64, flip float64) {
	w.orient = orient
	w.sampler = geometry.NewWallSampler(a, b)
	w.flip = flip
	w.lines = w.lines[:0]
	w.isects = w.isects[:0]
	w.chains = w.chains[:0]
	w.chainOffsets = w.chainOffsets[:0]
}

// normal returns the wall normal at (u,z) oriented along the polygon
// winding of this wall.
func (w *wall) normal(u, z float64) v3.Vec {
	return w.sampler.Normal(u, z).MulScalar(w.flip)
}

func (s *sweep) depth(v bridge.Index) float64 {
	return s.b.Vertex(v).Pos.Z
}

// extractWallLines collects the top and bottom edges of the active cells
// on both sides of w and merges them into one list ordered by their
// vertices at pillar a, then pillar b.
func (s *sweep) extractWallLines(w *wall, sides [2]wallSide) error {
	for side := range sides {
		sl := s.sideLines[side][:0]
		w.top[side] = w.top[side][:0]
		w.bot[side] = w.bot[side][:0]
		if col := sides[side].col; col != nil {
			va, vb := col.verts[sides[side].ca], col.verts[sides[side].cb]
			for n := range col.cells {
				cell := col.global(s, n)
				ta, tb := va[2*n], vb[2*n]
				ba, bb := va[2*n+1], vb[2*n+1]
				flat := ta == ba && tb == bb
				if last := len(sl) - 1; last >= 0 && sl[last].a == ta && sl[last].b == tb {
					if !flat {
						sl[last].under = cell
					}
				} else {
					under := cell
					if flat {
						under = bridge.Outside
					}
					sl = append(sl, sideLine{a: ta, b: tb, over: bridge.Outside, under: under})
				}
				w.top[side] = append(w.top[side], len(sl)-1)
				if !flat {
					sl = append(sl, sideLine{a: ba, b: bb, over: cell, under: bridge.Outside})
				}
				w.bot[side] = append(w.bot[side], len(sl)-1)
			}
		}
		s.sideLines[side] = sl
	}

	l0, l1 := s.sideLines[0], s.sideLines[1]
	for side, sl := range s.sideLines {
		s.lineMap[side] = slices.Grow(s.lineMap[side][:0], len(sl))[:len(sl)]
	}
	cur := [2]bridge.CellRef{bridge.Outside, bridge.Outside}
	var pos [2]int
	for pos[0] < len(l0) || pos[1] < len(l1) {
		var take uint8
		switch {
		case pos[1] == len(l1):
			take = sideFirst
		case pos[0] == len(l0):
			take = sideSecond
		default:
			switch c := compareSideLines(l0[pos[0]], l1[pos[1]]); {
			case c < 0:
				take = sideFirst
			case c > 0:
				take = sideSecond
			default:
				take = sidesBoth
			}
		}
		line := wallLine{sides: take}
		for side := range 2 {
			if take&(1<<side) == 0 {
				line.over[side], line.under[side] = cur[side], cur[side]
				continue
			}
			sl := s.sideLines[side][pos[side]]
			line.a, line.b = sl.a, sl.b
			line.over[side], line.under[side] = sl.over, sl.under
			cur[side] = sl.under
			s.lineMap[side][pos[side]] = len(w.lines)
			pos[side]++
		}
		// A line on one side only is a fault unless the other side is
		// empty, which makes it plain boundary.
		line.fault = take != sidesBoth && len(l0) > 0 && len(l1) > 0
		line.na = s.b.AddNormal(w.normal(0, s.depth(line.a)))
		line.nb = s.b.AddNormal(w.normal(1, s.depth(line.b)))
		w.lines = append(w.lines, line)
	}
	for side := range 2 {
		for n := range w.top[side] {
			w.top[side][n] = s.lineMap[side][w.top[side][n]]
			w.bot[side][n] = s.lineMap[side][w.bot[side][n]]
		}
	}

	if !s.scanning() || len(w.lines) == 0 {
		return nil
	}
	outside := [2]bridge.CellRef{bridge.Outside, bridge.Outside}
	if err := s.invariant(w.lines[0].over == outside && w.lines[len(w.lines)-1].under == outside,
		"%s wall does not start and end outside the grid", w.orient); err != nil {
		return err
	}
	for n := 1; n < len(w.lines); n++ {
		if err := s.invariant(w.lines[n-1].under == w.lines[n].over,
			"%s wall lines %d and %d disagree on the cells between them", w.orient, n-1, n); err != nil {
			return err
		}
	}
	return nil
}
