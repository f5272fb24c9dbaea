package tessellate

import (
	"fmt"
	"slices"

	"github.com/chazu/cpgrid/pkg/bridge"
	"github.com/chazu/cpgrid/pkg/geometry"
	"github.com/chazu/cpgrid/pkg/grid"
)

// pillarSpan is the contiguous range of vertex ids created on one pillar,
// ordered by depth.
type pillarSpan struct {
	first, count int
}

// uniquePillarVertices merges the corner depths of the four quadrants
// around pillar (i,j) into one ordered vertex list and writes the vertex
// of every corner back into its column.
func (s *sweep) uniquePillarVertices(i, j int, quads [4]quadrant) (pillarSpan, error) {
	cg := s.g.Corners()
	dir := float64(s.dir)
	for q := range quads {
		keys := s.keys[q][:0]
		if !quads[q].empty() {
			col := quads[q].col
			c := grid.Corner(quads[q].corner)
			for _, k := range col.cells {
				keys = append(keys,
					dir*cg.Depth(col.i, col.j, k, grid.NewCorner(c.DI(), c.DJ(), 0)),
					dir*cg.Depth(col.i, col.j, k, grid.NewCorner(c.DI(), c.DJ(), 1)))
			}
			for n := 1; n < len(keys); n++ {
				if keys[n] >= keys[n-1] {
					continue
				}
				if keys[n-1]-keys[n] > s.opts.Epsilon {
					return pillarSpan{}, fmt.Errorf("%w: pillar (%d,%d), column (%d,%d) layer %d runs against the depth direction of cell (%d,%d,%d)",
						ErrMixedPillarOrder, i, j, col.i, col.j, col.cells[n/2], s.ref[0], s.ref[1], s.ref[2])
				}
				keys[n] = keys[n-1]
			}
		}
		s.keys[q] = keys
	}

	p := geometry.NewPillar(s.g.Pillar(i, j))
	span := pillarSpan{first: s.b.VertexCount()}
	var cursor [4]int
	var open bool
	var openKey float64
	var openVertex bridge.Index
	for {
		q := -1
		for r := range quads {
			if cursor[r] == len(s.keys[r]) {
				continue
			}
			if q < 0 || s.keys[r][cursor[r]] < s.keys[q][cursor[q]] {
				q = r
			}
		}
		if q < 0 {
			break
		}
		n := cursor[q]
		key := s.keys[q][n]
		col := quads[q].col
		verts := col.verts[quads[q].corner]
		var v bridge.Index
		switch {
		case s.opts.SnapNeighbours && n%2 == 0 && n > 0 && col.cells[n/2-1]+1 == col.cells[n/2] &&
			key-s.keys[q][n-1] <= s.opts.SnapTolerance:
			// top of a cell sitting directly on the previous active one
			v = verts[n-1]
		case open && key-openKey <= s.opts.Epsilon:
			v = openVertex
		default:
			v = s.b.AddVertex(p.At(dir*key), 0)
			open, openKey, openVertex = true, key, v
		}
		verts[n] = v
		cursor[q]++
	}
	span.count = s.b.VertexCount() - span.first
	return span, nil
}

// pillarEdges emits one edge per pair of consecutive vertices on the
// pillar, tagged with the cell of each quadrant it runs along.
func (s *sweep) pillarEdges(quads [4]quadrant, span pillarSpan) {
	if span.count < 2 {
		return
	}
	segs := span.count - 1
	inside := slices.Grow(s.inside[:0], 4*segs)[:4*segs]
	for n := range inside {
		inside[n] = bridge.Outside
	}
	corner := slices.Grow(s.cornerMask[:0], span.count)[:span.count]
	clear(corner)
	for q := range quads {
		if quads[q].empty() {
			continue
		}
		col := quads[q].col
		verts := col.verts[quads[q].corner]
		for n := range col.cells {
			top, bot := verts[2*n]-span.first, verts[2*n+1]-span.first
			corner[top] |= 1 << q
			corner[bot] |= 1 << q
			cell := col.global(s, n)
			for v := top; v < bot; v++ {
				inside[4*v+q] = cell
			}
		}
	}
	s.inside, s.cornerMask = inside, corner

	for v := 0; v < segs; v++ {
		var cells [4]bridge.CellRef
		copy(cells[:], inside[4*v:4*v+4])
		used, fault := false, false
		for q, cell := range cells {
			if !cell.IsCell() {
				continue
			}
			used = true
			bit := uint8(1) << q
			if corner[v]&bit == 0 || corner[v+1]&bit == 0 {
				fault = true
			}
		}
		if used {
			s.b.AddEdge(span.first+v, span.first+v+1, cells, fault)
		}
	}
}
