// Package stl exports a tessellated mesh as an STL file using the
// github.com/deadsy/sdfx renderer. Polygons are fanned into triangles.
package stl

import (
	"errors"
	"fmt"

	"github.com/chazu/cpgrid/pkg/bridge"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// degenerateArea is the doubled triangle area below which a fan triangle
// is dropped.
const degenerateArea = 1e-18

// ErrEmpty is returned by Save when no triangle survives the filter.
var ErrEmpty = errors.New("stl: no triangles to export")

// Filter selects which polygons are exported.
type Filter func(iface bridge.Interface) bool

// All exports every polygon.
func All(bridge.Interface) bool { return true }

// Boundary exports polygons with a cell on one side only: the outer hull
// of the active region.
func Boundary(iface bridge.Interface) bool {
	return iface.Cell0.IsCell() != iface.Cell1.IsCell()
}

// Faults exports polygons on fault surfaces.
func Faults(iface bridge.Interface) bool {
	return iface.Fault
}

// Triangles fans the polygons of m selected by keep into triangles.
func Triangles(m *bridge.PolygonMesh, keep Filter) []*sdf.Triangle3 {
	var tris []*sdf.Triangle3
	for p, poly := range m.Polygons {
		if !keep(poly.Interface) {
			continue
		}
		corners := m.PolygonCorners(p)
		if len(corners) < 3 {
			continue
		}
		a := m.Vertex(corners[0].Vertex).Pos
		for n := 1; n+1 < len(corners); n++ {
			b := m.Vertex(corners[n].Vertex).Pos
			c := m.Vertex(corners[n+1].Vertex).Pos
			if area2(a, b, c) < degenerateArea {
				continue
			}
			tris = append(tris, &sdf.Triangle3{a, b, c})
		}
	}
	return tris
}

func area2(a, b, c v3.Vec) float64 {
	return b.Sub(a).Cross(c.Sub(a)).Length()
}

// Save writes the polygons of m selected by keep to an STL file.
func Save(path string, m *bridge.PolygonMesh, keep Filter) error {
	tris := Triangles(m, keep)
	if len(tris) == 0 {
		return ErrEmpty
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("stl: writing %s: %w", path, err)
	}
	return nil
}
