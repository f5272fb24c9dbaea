package bridge

import (
	"slices"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Compile-time interface check.
var _ Bridge = (*PolygonMesh)(nil)

// Polygon is a face of the mesh. Its corners are Corners[Offset:Offset+Count]
// of the owning PolygonMesh.
type Polygon struct {
	Interface
	Offset int
	Count  int
}

// Edge is a line segment of the wireframe.
type Edge struct {
	V0, V1 Index
	Cells  [4]CellRef
	Fault  bool
}

// Cell maps a cell record to its global index and corner vertices,
// ordered like grid.Corner (di + 2·dj + 4·dk).
type Cell struct {
	Global  int
	Corners [8]Index
}

// PolygonMesh keeps everything it is given in flat slices.
type PolygonMesh struct {
	Vertices []Vertex
	Normals  []v3.Vec
	Polygons []Polygon
	Corners  []Corner
	Edges    []Edge
	Cells    []Cell
}

// NewPolygonMesh returns an empty mesh.
func NewPolygonMesh() *PolygonMesh {
	return &PolygonMesh{}
}

func (m *PolygonMesh) AddVertex(pos v3.Vec, param float64) Index {
	m.Vertices = append(m.Vertices, Vertex{Pos: pos, Param: param})
	return len(m.Vertices) - 1
}

func (m *PolygonMesh) AddNormal(dir v3.Vec) Index {
	m.Normals = append(m.Normals, dir)
	return len(m.Normals) - 1
}

func (m *PolygonMesh) AddPolygon(iface Interface, corners []Corner) Index {
	m.Polygons = append(m.Polygons, Polygon{
		Interface: iface,
		Offset:    len(m.Corners),
		Count:     len(corners),
	})
	m.Corners = append(m.Corners, corners...)
	return len(m.Polygons) - 1
}

func (m *PolygonMesh) AddEdge(v0, v1 Index, cells [4]CellRef, fault bool) {
	m.Edges = append(m.Edges, Edge{V0: v0, V1: v1, Cells: cells, Fault: fault})
}

func (m *PolygonMesh) AddCell() Index {
	m.Cells = append(m.Cells, Cell{Global: -1})
	return len(m.Cells) - 1
}

func (m *PolygonMesh) SetCell(id Index, global int, corners [8]Index) {
	m.Cells[id] = Cell{Global: global, Corners: corners}
}

func (m *PolygonMesh) VertexCount() int { return len(m.Vertices) }

func (m *PolygonMesh) CellCount() int { return len(m.Cells) }

func (m *PolygonMesh) Vertex(ix Index) Vertex { return m.Vertices[ix] }

func (m *PolygonMesh) ReserveVertices(n int) {
	m.Vertices = slices.Grow(m.Vertices, n)
	m.Normals = slices.Grow(m.Normals, n)
}

func (m *PolygonMesh) ReserveEdges(n int) {
	m.Edges = slices.Grow(m.Edges, n)
}

// ReserveTriangles reserves room for n triangles' worth of polygon corners.
func (m *PolygonMesh) ReserveTriangles(n int) {
	m.Polygons = slices.Grow(m.Polygons, n)
	m.Corners = slices.Grow(m.Corners, 3*n)
}

// PolygonCorners returns the corners of polygon p.
func (m *PolygonMesh) PolygonCorners(p Index) []Corner {
	poly := m.Polygons[p]
	return m.Corners[poly.Offset : poly.Offset+poly.Count]
}

// Stats summarises a mesh.
type Stats struct {
	Vertices      int
	Normals       int
	Polygons      int
	Corners       int
	Edges         int
	Cells         int
	FaultPolygons int
	FaultEdges    int
	ByOrientation map[Orientation]int
}

// Stats counts the contents of m.
func (m *PolygonMesh) Stats() Stats {
	return Stats{
		Vertices:      len(m.Vertices),
		Normals:       len(m.Normals),
		Polygons:      len(m.Polygons),
		Corners:       lo.SumBy(m.Polygons, func(p Polygon) int { return p.Count }),
		Edges:         len(m.Edges),
		Cells:         len(m.Cells),
		FaultPolygons: lo.CountBy(m.Polygons, func(p Polygon) bool { return p.Fault }),
		FaultEdges:    lo.CountBy(m.Edges, func(e Edge) bool { return e.Fault }),
		ByOrientation: lo.CountValuesBy(m.Polygons, func(p Polygon) Orientation { return p.Orientation }),
	}
}
