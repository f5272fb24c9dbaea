// Package bridge defines the sink the tessellator writes into. A Bridge
// receives vertices, normals, polygons, edges and cell records; it can
// upload them to a GPU, export them to a file or keep them for tests.
// PolygonMesh is the in-memory implementation.
package bridge

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Index addresses a vertex, normal, polygon or cell inside a Bridge.
type Index = int

// CellRef is a global cell index, or Outside.
type CellRef int

// Outside marks the absence of a cell on one side of a face or edge.
const Outside CellRef = -1

// IsCell reports whether r refers to a real cell.
func (r CellRef) IsCell() bool {
	return r >= 0
}

// Orientation tells which logical direction a face separates cells in.
type Orientation uint8

const (
	OrientationI Orientation = iota // wall between columns (i-1,j) and (i,j)
	OrientationJ                    // wall between columns (i,j-1) and (i,j)
	OrientationK                    // top or bottom face
)

func (o Orientation) String() string {
	switch o {
	case OrientationI:
		return "I"
	case OrientationJ:
		return "J"
	case OrientationK:
		return "K"
	default:
		return "unknown"
	}
}

// Interface describes what a polygon separates. For walls Cell0 is the
// column with the lower i (or j) index; for K faces Cell0 is the upper
// cell. Fault is set when the two sides are not aligned.
type Interface struct {
	Cell0, Cell1 CellRef
	Orientation  Orientation
	Fault        bool
}

// Corner is one polygon corner. Grid is set when the edge from this corner
// to the next runs between two pillar vertices, that is, it lies on an
// original grid line and touches no fault intersection.
type Corner struct {
	Vertex Index
	Normal Index
	Grid   bool
}

// Vertex is a mesh position. Param carries the wall parameter u for
// vertices created at wall-line intersections and is zero otherwise.
type Vertex struct {
	Pos   v3.Vec
	Param float64
}

// Bridge is the output contract of the tessellator. Implementations only
// ever see appends, except for SetCell, which fills in a slot obtained
// from AddCell.
type Bridge interface {
	AddVertex(pos v3.Vec, param float64) Index
	AddNormal(dir v3.Vec) Index
	AddPolygon(iface Interface, corners []Corner) Index
	// AddEdge records a line segment between two vertices together with
	// the (up to) four cells around it.
	AddEdge(v0, v1 Index, cells [4]CellRef, fault bool)
	AddCell() Index
	SetCell(id Index, global int, corners [8]Index)

	VertexCount() int
	CellCount() int
	Vertex(ix Index) Vertex

	ReserveVertices(n int)
	ReserveEdges(n int)
	ReserveTriangles(n int)
}
