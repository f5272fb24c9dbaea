package tessellate

import (
	"slices"

	"github.com/chazu/cpgrid/pkg/bridge"
)

// wallPoint is a polygon corner on a wall before it reaches the bridge.
type wallPoint struct {
	vertex, normal bridge.Index
	crossing       bool
}

func crossingPoint(x *intersection) wallPoint {
	return wallPoint{vertex: x.vertex, normal: x.normal, crossing: true}
}

// wallEdges emits the pieces of every wall line between consecutive
// crossings. Edge cells are [over0, under0, over1, under1]; on a side the
// line does not belong to, both entries hold the cell containing the
// piece.
func (s *sweep) wallEdges(w *wall) {
	for n := range w.lines {
		l := &w.lines[n]
		cells := [4]bridge.CellRef{l.over[0], l.under[0], l.over[1], l.under[1]}
		prev := l.a
		for p := w.chainOffsets[n]; p < w.chainOffsets[n+1]; p++ {
			x := &w.isects[w.chains[p]]
			s.addEdge(prev, x.vertex, cells, l.fault)
			prev = x.vertex
			m := &w.lines[x.other(n)]
			for side := range 2 {
				if l.has(side) || !m.has(side) {
					continue
				}
				cell := m.over[side]
				if x.down == n {
					cell = m.under[side]
				}
				cells[2*side], cells[2*side+1] = cell, cell
			}
		}
		s.addEdge(prev, l.b, cells, l.fault)
	}
}

func (s *sweep) addEdge(v0, v1 bridge.Index, cells [4]bridge.CellRef, fault bool) {
	if v0 == v1 {
		return
	}
	for _, c := range cells {
		if c.IsCell() {
			s.b.AddEdge(v0, v1, cells, fault)
			return
		}
	}
}

// faceCells returns the cells on both sides of the face directly below
// line top and above line bottom, adjacent lines at pillar a.
func faceCells(top, bottom *wallLine) [2]bridge.CellRef {
	var cells [2]bridge.CellRef
	for side := range 2 {
		switch {
		case top.has(side):
			cells[side] = top.under[side]
		case bottom.has(side):
			cells[side] = bottom.over[side]
		default:
			cells[side] = top.under[side]
		}
	}
	return cells
}

func bothOutside(cells [2]bridge.CellRef) bool {
	return !cells[0].IsCell() && !cells[1].IsCell()
}

// stitchPillarsNoIntersections emits one polygon between every pair of
// consecutive lines of a wall without crossings.
func (s *sweep) stitchPillarsNoIntersections(w *wall) {
	for n := 0; n+1 < len(w.lines); n++ {
		u, l := &w.lines[n], &w.lines[n+1]
		cells := faceCells(u, l)
		if bothOutside(cells) {
			continue
		}
		top := append(s.top[:0], wallPoint{vertex: u.a, normal: u.na}, wallPoint{vertex: u.b, normal: u.nb})
		bottom := append(s.bottom[:0], wallPoint{vertex: l.a, normal: l.na}, wallPoint{vertex: l.b, normal: l.nb})
		s.emitWallPolygon(w, cells, u.fault || l.fault, top, bottom)
		s.top, s.bottom = top, bottom
	}
}

// face is the starting state of a polygon traced across a wall: the line
// bounding it from above and below, and the next chain position on each.
type face struct {
	top, bottom       int
	topPos, bottomPos int
	cells             [2]bridge.CellRef
}

// stitchPillarsHandleIntersections emits the polygons of a wall whose
// lines cross. Every polygon starts either between two consecutive lines
// at pillar a or just right of a crossing, and is traced by following its
// upper and lower boundary to the next crossing until both reach pillar b
// or meet.
func (s *sweep) stitchPillarsHandleIntersections(w *wall) error {
	for n := 0; n+1 < len(w.lines); n++ {
		u, l := &w.lines[n], &w.lines[n+1]
		f := face{
			top: n, bottom: n + 1,
			topPos: w.chainOffsets[n], bottomPos: w.chainOffsets[n+1],
			cells: faceCells(u, l),
		}
		if bothOutside(f.cells) {
			continue
		}
		top := append(s.top[:0], wallPoint{vertex: u.a, normal: u.na})
		bottom := append(s.bottom[:0], wallPoint{vertex: l.a, normal: l.na})
		if err := s.traceFace(w, f, top, bottom); err != nil {
			return err
		}
	}
	for id := range w.isects {
		x := &w.isects[id]
		u, l := &w.lines[x.up], &w.lines[x.down]
		f := face{top: x.up, bottom: x.down, topPos: x.atUp + 1, bottomPos: x.atDown + 1}
		for side := range 2 {
			if u.has(side) {
				f.cells[side] = u.under[side]
			} else {
				f.cells[side] = l.over[side]
			}
		}
		if bothOutside(f.cells) {
			continue
		}
		pt := crossingPoint(x)
		top := append(s.top[:0], pt)
		bottom := append(s.bottom[:0], pt)
		if err := s.traceFace(w, f, top, bottom); err != nil {
			return err
		}
	}
	return nil
}

func (s *sweep) traceFace(w *wall, f face, top, bottom []wallPoint) error {
	defer func() { s.top, s.bottom = top[:0], bottom[:0] }()
	u, l := f.top, f.bottom
	pu, pl := f.topPos, f.bottomPos
	fault := w.lines[u].fault || w.lines[l].fault
	for closed := false; !closed; {
		nu, nl := w.next(u, pu), w.next(l, pl)
		switch {
		case nu.kind == stepEnd && nl.kind == stepEnd:
			top = append(top, wallPoint{vertex: nu.index, normal: w.lines[u].nb})
			bottom = append(bottom, wallPoint{vertex: nl.index, normal: w.lines[l].nb})
			closed = true

		case nu.kind == stepCrossing && nl.kind == stepCrossing && nu.index == nl.index:
			x := &w.isects[nu.index]
			if x.down != u || x.up != l {
				return s.invariant(false, "%s wall face closes on crossing %d with swapped lines", w.orient, nu.index)
			}
			top = append(top, crossingPoint(x))
			bottom = append(bottom, crossingPoint(x))
			closed = true

		case nl.kind == stepEnd || (nu.kind == stepCrossing && w.isects[nu.index].u <= w.isects[nl.index].u):
			// a line enters from above and becomes the upper boundary
			x := &w.isects[nu.index]
			if x.up != u {
				return s.invariant(false, "%s wall line %d leaves a face through its upper boundary", w.orient, x.up)
			}
			top = append(top, crossingPoint(x))
			u, pu = x.down, x.atDown+1
			fault = true

		default:
			// a line enters from below and becomes the lower boundary
			x := &w.isects[nl.index]
			if x.down != l {
				return s.invariant(false, "%s wall line %d leaves a face through its lower boundary", w.orient, x.down)
			}
			bottom = append(bottom, crossingPoint(x))
			l, pl = x.up, x.atUp+1
			fault = true
		}
	}

	if s.scanning() {
		ul, ll := &w.lines[u], &w.lines[l]
		for side := range 2 {
			ok := (!ul.has(side) || ul.under[side] == f.cells[side]) &&
				(!ll.has(side) || ll.over[side] == f.cells[side])
			if !ok {
				return s.invariant(false, "%s wall face ends between cells other than it started", w.orient)
			}
		}
	}
	s.emitWallPolygon(w, f.cells, fault, top, bottom)
	return nil
}

// emitWallPolygon closes the boundary given by top and bottom, both left to
// right, with the pillar vertices in between on either end and sends it to
// the bridge.
func (s *sweep) emitWallPolygon(w *wall, cells [2]bridge.CellRef, fault bool, top, bottom []wallPoint) {
	poly := append(s.poly[:0], top...)
	tr, br := top[len(top)-1], bottom[len(bottom)-1]
	if !tr.crossing && !br.crossing {
		poly = s.pillarRun(w, poly, tr.vertex, br.vertex, 1)
	}
	for n := len(bottom) - 1; n >= 0; n-- {
		poly = append(poly, bottom[n])
	}
	tl, bl := top[0], bottom[0]
	if !tl.crossing && !bl.crossing {
		poly = s.pillarRun(w, poly, bl.vertex, tl.vertex, 0)
	}
	s.poly = poly

	poly = dedupe(poly)
	if len(poly) < 3 {
		return
	}
	// I walls run the other way round so that both orientations wind
	// towards Cell0.
	if w.orient == bridge.OrientationI {
		slices.Reverse(poly)
	}
	corners := s.corners[:0]
	for n, p := range poly {
		next := poly[(n+1)%len(poly)]
		corners = append(corners, bridge.Corner{
			Vertex: p.vertex,
			Normal: p.normal,
			Grid:   !p.crossing && !next.crossing,
		})
	}
	s.corners = corners
	s.b.AddPolygon(bridge.Interface{
		Cell0:       cells[0],
		Cell1:       cells[1],
		Orientation: w.orient,
		Fault:       fault,
	}, corners)
}

// pillarRun appends the pillar vertices strictly between from and to.
// Vertex ids on one pillar are contiguous and ordered by depth, so the run
// is an id range.
func (s *sweep) pillarRun(w *wall, poly []wallPoint, from, to bridge.Index, u float64) []wallPoint {
	step := 1
	if to < from {
		step = -1
	}
	for v := from + step; v != to && from != to; v += step {
		poly = append(poly, wallPoint{vertex: v, normal: s.b.AddNormal(w.normal(u, s.depth(v)))})
	}
	return poly
}

// dedupe drops consecutive repeats of a vertex, including the wrap from
// the last corner to the first.
func dedupe[P interface{ id() bridge.Index }](poly []P) []P {
	out := poly[:0]
	for _, p := range poly {
		if len(out) == 0 || out[len(out)-1].id() != p.id() {
			out = append(out, p)
		}
	}
	for len(out) > 1 && out[0].id() == out[len(out)-1].id() {
		out = out[:len(out)-1]
	}
	return out
}

func (p wallPoint) id() bridge.Index { return p.vertex }
