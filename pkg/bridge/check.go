package bridge

import (
	"cmp"
	"fmt"
	"slices"
)

type directedEdge struct {
	cell CellRef
	from Index
	to   Index
}

// CheckAdjacency verifies that the boundary of every cell is closed and
// consistently oriented. Each polygon is viewed from both of its cells,
// reversing it when seen from Cell1; every directed edge collected for a
// cell must then be matched by the same number of edges running the
// other way.
func (m *PolygonMesh) CheckAdjacency() error {
	count := make(map[directedEdge]int)
	for p := range m.Polygons {
		poly := m.Polygons[p]
		corners := m.PolygonCorners(p)
		for _, c := range [2]CellRef{poly.Cell0, poly.Cell1} {
			if !c.IsCell() {
				continue
			}
			reverse := c == poly.Cell1
			for n := range corners {
				a := corners[n].Vertex
				b := corners[(n+1)%len(corners)].Vertex
				if a == b {
					continue
				}
				if reverse {
					a, b = b, a
				}
				count[directedEdge{cell: c, from: a, to: b}]++
			}
		}
	}

	var open []directedEdge
	for e, n := range count {
		if count[directedEdge{cell: e.cell, from: e.to, to: e.from}] != n {
			open = append(open, e)
		}
	}
	if len(open) == 0 {
		return nil
	}

	slices.SortFunc(open, func(a, b directedEdge) int {
		return cmp.Or(cmp.Compare(a.cell, b.cell), cmp.Compare(a.from, b.from), cmp.Compare(a.to, b.to))
	})
	e := open[0]
	return fmt.Errorf("bridge: %d unmatched boundary edges, first is %d->%d around cell %d",
		len(open), e.from, e.to, e.cell)
}
