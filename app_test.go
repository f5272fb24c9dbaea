package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/cpgrid/pkg/config"
	"github.com/chazu/cpgrid/pkg/grid"
)

func loadExample(t *testing.T, name string) *grid.Grid {
	t.Helper()
	s, err := grid.LoadScenario(filepath.Join("examples", name))
	if err != nil {
		t.Fatalf("failed to load %s: %v", name, err)
	}
	g, err := s.Build()
	if err != nil {
		t.Fatalf("failed to build %s: %v", name, err)
	}
	return g
}

// TestE2EFaultedExample runs the whole pipeline on the faulted example:
// scenario → grid → tessellate → meshes.
func TestE2EFaultedExample(t *testing.T) {
	app := NewApp(config.DefaultConfig(), nil)
	result, err := app.Tessellate(context.Background(), loadExample(t, "faulted.yaml"))
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if err := result.mesh.CheckAdjacency(); err != nil {
		t.Fatalf("mesh is not closed: %v", err)
	}

	// 6x4x5 minus two inactive cells, plus a 24 cell zero layer.
	if result.Stats.Cells != 142 {
		t.Errorf("expected 142 cells, got %d", result.Stats.Cells)
	}
	if result.Stats.FaultPolygons == 0 {
		t.Error("expected polygons on the fault")
	}
	if result.RunID == "" {
		t.Error("missing run id")
	}

	surfaces := map[string]bool{}
	for _, m := range result.Meshes {
		surfaces[m.Surface] = true
		if m.Color != surfaceColors[m.Surface] {
			t.Errorf("surface %q: color %q", m.Surface, m.Color)
		}
		if len(m.Vertices) == 0 || len(m.Vertices)%3 != 0 {
			t.Errorf("surface %q: %d vertex floats", m.Surface, len(m.Vertices))
		}
		if len(m.Normals) != len(m.Vertices) {
			t.Errorf("surface %q: %d normal floats for %d vertex floats", m.Surface, len(m.Normals), len(m.Vertices))
		}
		if len(m.Indices)%3 != 0 {
			t.Errorf("surface %q: %d indices", m.Surface, len(m.Indices))
		}
		for _, ix := range m.Indices {
			if int(ix) >= len(m.Vertices)/3 {
				t.Fatalf("surface %q: index %d out of range", m.Surface, ix)
			}
		}
	}
	for _, s := range []string{SurfaceBoundary, SurfaceFault, SurfaceInterior} {
		if !surfaces[s] {
			t.Errorf("no %s surface", s)
		}
	}
}

func TestE2ECrossingExample(t *testing.T) {
	app := NewApp(config.DefaultConfig(), nil)
	result, err := app.Tessellate(context.Background(), loadExample(t, "crossing.yaml"))
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if err := result.mesh.CheckAdjacency(); err != nil {
		t.Fatalf("mesh is not closed: %v", err)
	}
	if result.Stats.Cells != 6 {
		t.Errorf("expected 6 cells, got %d", result.Stats.Cells)
	}
	if result.Stats.FaultPolygons == 0 {
		t.Error("expected polygons on the crossing wall")
	}
	// Split pillars and crossings add vertices beyond the nz+1 per pillar of a box.
	if result.Stats.Vertices <= 6*4 {
		t.Errorf("expected crossing vertices, got %d vertices", result.Stats.Vertices)
	}
}

func TestE2EBadInvariantMode(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Tessellation.Invariants = "sometimes"
	if _, err := NewApp(cfg, nil).Tessellate(context.Background(), grid.NewBox(1, 1, 1, 1, 1, 1)); err == nil {
		t.Fatal("expected an error for an unknown invariant mode")
	}
}

func TestE2ECanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewApp(config.DefaultConfig(), nil).Tessellate(ctx, grid.NewBox(2, 2, 2, 1, 1, 1))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExport(t *testing.T) {
	tests := []struct {
		name    string
		filter  string
		wantErr bool
	}{
		{"all", config.FilterAll, false},
		{"boundary", config.FilterBoundary, false},
		{"faults", config.FilterFaults, false},
		{"unknown", "pretty", true},
	}
	g := loadExample(t, "faulted.yaml")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Export.STL = filepath.Join(t.TempDir(), "grid.stl")
			cfg.Export.Filter = tt.filter
			app := NewApp(cfg, nil)
			result, err := app.Tessellate(context.Background(), g)
			if err != nil {
				t.Fatalf("Tessellate: %v", err)
			}

			path, err := app.Export(result)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Export: %v", err)
			}
			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("stat %s: %v", path, err)
			}
			if info.Size() == 0 {
				t.Error("empty STL file")
			}
		})
	}
}

func TestExportWithoutPath(t *testing.T) {
	app := NewApp(config.DefaultConfig(), nil)
	result, err := app.Tessellate(context.Background(), grid.NewBox(1, 1, 1, 1, 1, 1))
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	path, err := app.Export(result)
	if err != nil || path != "" {
		t.Fatalf("Export = %q, %v; want nothing written", path, err)
	}
}

// A box has no faults, so a fault-only export has nothing to write.
func TestExportNothingToWrite(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Export.STL = filepath.Join(t.TempDir(), "faults.stl")
	cfg.Export.Filter = config.FilterFaults
	app := NewApp(cfg, nil)
	result, err := app.Tessellate(context.Background(), grid.NewBox(2, 1, 1, 1, 1, 1))
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	path, err := app.Export(result)
	if err != nil || path != "" {
		t.Fatalf("Export = %q, %v; want nothing written", path, err)
	}
	if _, err := os.Stat(cfg.Export.STL); !os.IsNotExist(err) {
		t.Errorf("expected no file, stat returned %v", err)
	}
}

func TestWriteJSON(t *testing.T) {
	app := NewApp(config.DefaultConfig(), nil)
	result, err := app.Tessellate(context.Background(), loadExample(t, "crossing.yaml"))
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	path := filepath.Join(t.TempDir(), "mesh.json")
	if err := app.WriteJSON(path, result); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		RunID  string     `json:"runId"`
		Meshes []MeshData `json:"meshes"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.RunID != result.RunID {
		t.Errorf("runId = %q, want %q", decoded.RunID, result.RunID)
	}
	if len(decoded.Meshes) != len(result.Meshes) {
		t.Errorf("decoded %d meshes, want %d", len(decoded.Meshes), len(result.Meshes))
	}
}

func TestBoxScenario(t *testing.T) {
	g, err := boxScenario(4, 2, 3, 0.5, 0.25).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	result, err := NewApp(config.DefaultConfig(), nil).Tessellate(context.Background(), g)
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if err := result.mesh.CheckAdjacency(); err != nil {
		t.Fatalf("mesh is not closed: %v", err)
	}
	if result.Stats.FaultPolygons == 0 {
		t.Error("expected polygons on the fault")
	}
}

func TestCLI(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cpgrid.yaml")
	stlPath := filepath.Join(dir, "out.stl")
	t.Setenv("CPGRID_LOG_LEVEL", "error")
	t.Setenv("CPGRID_STL", "")

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
		if err := cmd.Execute(); err != nil {
			t.Fatalf("cpgrid %s: %v\n%s", strings.Join(args, " "), err, out.String())
		}
		return out.String()
	}

	run("config", "init")
	if _, err := os.Stat(cfgPath); err != nil {
		t.Fatalf("config init wrote nothing: %v", err)
	}

	out := run("tessellate", "--nx", "3", "--ny", "2", "--nz", "2", "-o", stlPath)
	for _, want := range []string{"polygons", "wrote " + stlPath} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	crossing := filepath.Join("examples", "crossing.yaml")
	out = run("tessellate", crossing)
	if !strings.Contains(out, "cells     6") {
		t.Errorf("unexpected output:\n%s", out)
	}

	faulted := filepath.Join("examples", "faulted.yaml")
	out = run("tessellate", faulted, crossing)
	first, second := strings.Index(out, "== "+faulted), strings.Index(out, "== "+crossing)
	if first < 0 || second < first {
		t.Errorf("batch output out of order:\n%s", out)
	}
}
