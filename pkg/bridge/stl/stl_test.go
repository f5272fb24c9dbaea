package stl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/cpgrid/pkg/bridge"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// quadMesh returns a mesh with one unit quad on a fault and one collapsed
// quad whose corners coincide.
func quadMesh() *bridge.PolygonMesh {
	m := bridge.NewPolygonMesh()
	m.AddVertex(v3.Vec{}, 0)
	m.AddVertex(v3.Vec{X: 1}, 0)
	m.AddVertex(v3.Vec{X: 1, Y: 1}, 0)
	m.AddVertex(v3.Vec{Y: 1}, 0)
	quad := []bridge.Corner{{Vertex: 0}, {Vertex: 1}, {Vertex: 2}, {Vertex: 3}}
	m.AddPolygon(bridge.Interface{Cell0: 0, Cell1: 1, Fault: true}, quad)
	flat := []bridge.Corner{{Vertex: 0}, {Vertex: 0}, {Vertex: 0}, {Vertex: 0}}
	m.AddPolygon(bridge.Interface{Cell0: 0, Cell1: bridge.Outside}, flat)
	return m
}

func TestTriangles(t *testing.T) {
	m := quadMesh()
	tests := []struct {
		name string
		keep Filter
		want int
	}{
		{"all", All, 2},
		{"faults", Faults, 2},
		{"boundary drops degenerate", Boundary, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(Triangles(m, tt.keep)); got != tt.want {
				t.Errorf("got %d triangles, want %d", got, tt.want)
			}
		})
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.stl")
	if err := Save(path, quadMesh(), All); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("empty STL file")
	}
}

func TestSaveEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.stl")
	err := Save(path, quadMesh(), Boundary)
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("Save = %v, want ErrEmpty", err)
	}
}
