package tessellate

import (
	"slices"

	"github.com/chazu/cpgrid/pkg/bridge"
)

// column holds the active cells of grid column (i,j) and the pillar
// vertex assigned to each of their corners.
type column struct {
	i, j  int
	cells []int // active layers, top to bottom

	// verts[c][2n+dk] is the vertex at pillar corner c = di+2dj of the
	// n-th active cell, dk 0 for its top and 1 for its bottom.
	verts [4][]bridge.Index
}

func (c *column) load(s *sweep, i, j int) {
	c.i, c.j = i, j
	c.cells = c.cells[:0]
	for k := 0; k < s.g.NZ; k++ {
		if s.g.Active(i, j, k) {
			c.cells = append(c.cells, k)
		}
	}
	n := 2 * len(c.cells)
	for q := range c.verts {
		c.verts[q] = slices.Grow(c.verts[q][:0], n)[:n]
	}
}

func (c *column) global(s *sweep, n int) bridge.CellRef {
	return bridge.CellRef(s.g.CellIndex(c.i, c.j, c.cells[n]))
}

// flat reports whether the top and bottom of cell n share all four
// vertices.
func (c *column) flat(n int) bool {
	for q := range c.verts {
		if c.verts[q][2*n] != c.verts[q][2*n+1] {
			return false
		}
	}
	return true
}

// joined reports whether the bottom of cell upper and the top of cell
// lower share all four vertices.
func (c *column) joined(upper, lower int) bool {
	for q := range c.verts {
		if c.verts[q][2*upper+1] != c.verts[q][2*lower] {
			return false
		}
	}
	return true
}

// above returns the nearest cell over n that shares its top face, looking
// through flat cells, or -1.
func (c *column) above(n int) int {
	for m := n - 1; m >= 0 && c.joined(m, n); m-- {
		if !c.flat(m) {
			return m
		}
	}
	return -1
}

// below is the downward counterpart of above.
func (c *column) below(n int) int {
	for m := n + 1; m < len(c.cells) && c.joined(n, m); m++ {
		if !c.flat(m) {
			return m
		}
	}
	return -1
}

// column returns the buffered column (i,j), or nil outside the grid. Row j
// lives in buffer j&1, so only rows j-1 and j are addressable while the
// sweep is on pillar row j.
func (s *sweep) column(i, j int) *column {
	if i < 0 || i >= s.g.NX || j < 0 || j >= s.g.NY {
		return nil
	}
	return &s.rows[j&1][i]
}

// quadrant is one of the up to four columns around a pillar together with
// the pillar corner the pillar occupies in it.
type quadrant struct {
	col    *column
	corner int
}

func (q quadrant) empty() bool {
	return q.col == nil || len(q.col.cells) == 0
}

// quadrants returns the columns around pillar (i,j). Quadrant q has bit 0
// set for the column at i (else i-1) and bit 1 for the column at j (else
// j-1); the pillar is corner 3-q of that column.
func (s *sweep) quadrants(i, j int) [4]quadrant {
	var qs [4]quadrant
	for q := range qs {
		ci := i - 1 + q&1
		cj := j - 1 + q>>1
		qs[q] = quadrant{col: s.column(ci, cj), corner: 3 - q}
	}
	return qs
}
