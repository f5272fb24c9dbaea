package grid

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}

func TestScenarioBuild(t *testing.T) {
	path := writeScenario(t, `
nx: 2
ny: 1
nz: 2
cell: [10, 20, 5]
throws:
  - {i: 1, j: 0, dz: 3}
  - {i: 0, j: 0, dz: -1, pillar: [1, 0]}
inactive:
  - [0, 0, 1]
zero_layers: [1]
`)
	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	g, err := s.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("built grid is invalid: %v", err)
	}
	if g.NZ != 3 {
		t.Fatalf("NZ = %d, want 3 after one zero layer", g.NZ)
	}

	cg := g.Corners()
	if got := cg.Depth(1, 0, 0, 0); got != 3 {
		t.Errorf("thrown column top = %g, want 3", got)
	}
	if got := cg.Depth(0, 0, 0, NewCorner(1, 0, 0)); got != -1 {
		t.Errorf("pillar-only throw = %g, want -1", got)
	}
	if got := cg.Depth(0, 0, 0, NewCorner(0, 0, 0)); got != 0 {
		t.Errorf("untouched corner moved to %g", got)
	}
	// Old layer 1 is now layer 2; the zero layer sits on its top.
	if g.Active(0, 0, 2) {
		t.Error("inactive cell became active")
	}
	if !g.Active(0, 0, 1) || cg.Thickness(0, 0, 1, 0, 0) != 0 {
		t.Error("zero layer missing")
	}
	if got := cg.Depth(1, 0, 2, NewCorner(0, 0, 1)); got != 13 {
		t.Errorf("bottom of thrown column = %g, want 13", got)
	}
}

func TestScenarioDefaultsCellSize(t *testing.T) {
	s := &Scenario{NX: 1, NY: 1, NZ: 1}
	g, err := s.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := g.Corners().Depth(0, 0, 0, NewCorner(0, 0, 1)); got != 1 {
		t.Errorf("default layer thickness = %g, want 1", got)
	}
}

func TestScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		s    Scenario
	}{
		{"no layers", Scenario{NX: 1, NY: 1}},
		{"throw outside", Scenario{NX: 1, NY: 1, NZ: 1, Throws: []Throw{{I: 3}}}},
		{"bad pillar", Scenario{NX: 1, NY: 1, NZ: 1, Throws: []Throw{{Pillar: &[2]int{2, 0}}}}},
		{"inactive outside", Scenario{NX: 1, NY: 1, NZ: 1, Inactive: [][3]int{{0, 0, 1}}}},
		{"zero layer outside", Scenario{NX: 1, NY: 1, NZ: 1, ZeroLayers: []int{2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.s.Build(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// Every bad entry is reported, zero layers included.
func TestScenarioErrorsCollected(t *testing.T) {
	s := Scenario{
		NX: 1, NY: 1, NZ: 2,
		Throws:     []Throw{{I: 5}},
		Inactive:   [][3]int{{0, 0, 4}},
		ZeroLayers: []int{-1, 1, 3},
	}
	_, err := s.Build()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"throw 0", "inactive cell", "zero layer -1", "zero layer 3"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
	if strings.Contains(err.Error(), "zero layer 1 ") {
		t.Errorf("valid zero layer reported: %q", err)
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
	if _, err := LoadScenario(writeScenario(t, "nx: [")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
