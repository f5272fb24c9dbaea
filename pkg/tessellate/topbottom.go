package tessellate

import (
	"github.com/chazu/cpgrid/pkg/bridge"
	"github.com/chazu/cpgrid/pkg/geometry"
	"github.com/chazu/cpgrid/pkg/grid"
)

// floorPoint is a corner of a top or bottom polygon with its position in
// the cell's (u,v) parameter square.
type floorPoint struct {
	vertex   bridge.Index
	u, v     float64
	crossing bool
}

func (p floorPoint) id() bridge.Index { return p.vertex }

// floorEdge is one side of a cell's top or bottom polygon: a line of the
// wall on that side, walked forward (pillar a to b) or back.
type floorEdge struct {
	w       *wall
	side    int
	forward bool
	place   func(t float64) (u, v float64)
}

// columnWalls are the four walls around a column. The column is side 1 of
// west and south and side 0 of north and east.
type columnWalls struct {
	west, north, east, south *wall
}

func (cw columnWalls) edges() [4]floorEdge {
	return [4]floorEdge{
		{w: cw.west, side: 1, forward: true, place: func(t float64) (float64, float64) { return 0, t }},
		{w: cw.north, side: 0, forward: true, place: func(t float64) (float64, float64) { return t, 1 }},
		{w: cw.east, side: 0, forward: false, place: func(t float64) (float64, float64) { return 1, t }},
		{w: cw.south, side: 1, forward: false, place: func(t float64) (float64, float64) { return t, 0 }},
	}
}

// stitchTopBottom registers the cells of a column with the bridge and
// emits their top faces, and their bottom faces where no cell lies
// directly below. Faces of flat cells are skipped; a face across them
// joins the cells above and below.
func (s *sweep) stitchTopBottom(col *column, cw columnWalls) {
	var pillars [4]geometry.Pillar
	for c := range pillars {
		pillars[c] = geometry.NewPillar(s.g.Pillar(col.i+c&1, col.j+c>>1))
	}
	edges := cw.edges()
	for n := range col.cells {
		cell := col.global(s, n)
		var corners [8]bridge.Index
		for c := range corners {
			corners[c] = col.verts[c&3][2*n+c>>2]
		}
		id := s.b.AddCell()
		s.b.SetCell(id, int(cell), corners)

		if col.flat(n) {
			continue
		}
		above := bridge.Outside
		if m := col.above(n); m >= 0 {
			above = col.global(s, m)
		}
		s.emitFloor(col, n, 0, pillars, edges, [2]bridge.CellRef{above, cell})
		if col.below(n) < 0 {
			s.emitFloor(col, n, 1, pillars, edges, [2]bridge.CellRef{cell, bridge.Outside})
		}
	}
}

// emitFloor emits the top (dk 0) or bottom (dk 1) polygon of cell n. The
// corners run west, north, east, south around the cell, picking up every
// crossing on the wall lines in between.
func (s *sweep) emitFloor(col *column, n, dk int, pillars [4]geometry.Pillar, edges [4]floorEdge, cells [2]bridge.CellRef) {
	cg := s.g.Corners()
	fs := geometry.FloorSampler{Pillars: pillars}
	for c := range fs.Depths {
		fs.Depths[c] = cg.Depth(col.i, col.j, col.cells[n], grid.NewCorner(c&1, c>>1, dk))
	}

	pts := s.floor[:0]
	for _, e := range edges {
		line := e.w.top[e.side][n]
		if dk == 1 {
			line = e.w.bot[e.side][n]
		}
		pts = appendFloorEdge(pts, e, line)
	}
	s.floor = pts

	pts = dedupe(pts)
	if len(pts) < 3 {
		return
	}
	corners := s.corners[:0]
	for k, p := range pts {
		next := pts[(k+1)%len(pts)]
		corners = append(corners, bridge.Corner{
			Vertex: p.vertex,
			Normal: s.b.AddNormal(fs.Normal(p.u, p.v).MulScalar(-1)),
			Grid:   !p.crossing && !next.crossing,
		})
	}
	s.corners = corners
	s.b.AddPolygon(bridge.Interface{
		Cell0:       cells[0],
		Cell1:       cells[1],
		Orientation: bridge.OrientationK,
	}, corners)
}

func appendFloorEdge(pts []floorPoint, e floorEdge, line int) []floorPoint {
	w := e.w
	l := &w.lines[line]
	lo, hi := w.chainOffsets[line], w.chainOffsets[line+1]
	add := func(vertex bridge.Index, t float64, crossing bool) {
		u, v := e.place(t)
		pts = append(pts, floorPoint{vertex: vertex, u: u, v: v, crossing: crossing})
	}
	if e.forward {
		add(l.a, 0, false)
		for p := lo; p < hi; p++ {
			x := &w.isects[w.chains[p]]
			add(x.vertex, x.u, true)
		}
		add(l.b, 1, false)
	} else {
		add(l.b, 1, false)
		for p := hi - 1; p >= lo; p-- {
			x := &w.isects[w.chains[p]]
			add(x.vertex, x.u, true)
		}
		add(l.a, 0, false)
	}
	return pts
}
