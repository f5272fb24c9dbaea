package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chazu/cpgrid/pkg/bridge"
	"github.com/chazu/cpgrid/pkg/bridge/stl"
	"github.com/chazu/cpgrid/pkg/config"
	"github.com/chazu/cpgrid/pkg/grid"
	"github.com/chazu/cpgrid/pkg/tessellate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Surface kinds a polygon is sorted into for display.
const (
	SurfaceBoundary = "boundary"
	SurfaceFault    = "fault"
	SurfaceInterior = "interior"
)

// surfaceColors assigns a display color to each surface kind.
var surfaceColors = map[string]string{
	SurfaceBoundary: "#4A90D9",
	SurfaceFault:    "#E74C3C",
	SurfaceInterior: "#2ECC71",
}

// App runs the tessellation pipeline: grid, mesh, stats, exports.
type App struct {
	cfg *config.Config
	log *zap.Logger
}

// MeshData is a triangulated surface in flat arrays, ready for a viewer.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Surface  string    `json:"surface"`
	Color    string    `json:"color"`
}

// Result is the outcome of one run.
type Result struct {
	RunID  string       `json:"runId"`
	Stats  bridge.Stats `json:"stats"`
	Meshes []MeshData   `json:"meshes"`

	mesh *bridge.PolygonMesh
}

// NewApp creates an App. A nil logger is replaced by a no-op.
func NewApp(cfg *config.Config, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{cfg: cfg, log: log}
}

// Tessellate meshes g and summarises the result.
func (a *App) Tessellate(ctx context.Context, g *grid.Grid) (*Result, error) {
	runID := uuid.NewString()
	log := a.log.With(zap.String("run", runID))

	opts, err := a.cfg.Tessellation.Options(log)
	if err != nil {
		return nil, err
	}
	opts.Progress = tessellate.LogProgress{Logger: log}

	m := bridge.NewPolygonMesh()
	start := time.Now()
	if err := tessellate.New(opts).Tessellate(ctx, g, m); err != nil {
		log.Error("tessellation failed", zap.Error(err))
		return nil, err
	}
	if err := m.CheckAdjacency(); err != nil {
		log.Warn("mesh is not closed", zap.Error(err))
	}

	result := &Result{
		RunID:  runID,
		Stats:  m.Stats(),
		Meshes: meshData(m),
		mesh:   m,
	}
	log.Info("tessellated grid",
		zap.Int("cells", result.Stats.Cells),
		zap.Int("polygons", result.Stats.Polygons),
		zap.Int("fault_polygons", result.Stats.FaultPolygons),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// Export writes the configured STL file, if any, and returns its path.
func (a *App) Export(r *Result) (string, error) {
	path := a.cfg.Export.STL
	if path == "" {
		return "", nil
	}
	keep, err := filter(a.cfg.Export.Filter)
	if err != nil {
		return "", err
	}
	if err := stl.Save(path, r.mesh, keep); err != nil {
		if errors.Is(err, stl.ErrEmpty) {
			a.log.Warn("nothing to export", zap.String("path", path), zap.String("filter", a.cfg.Export.Filter))
			return "", nil
		}
		return "", err
	}
	a.log.Info("exported STL", zap.String("path", path), zap.String("run", r.RunID))
	return path, nil
}

// WriteJSON writes r to path.
func (a *App) WriteJSON(path string, r *Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

func filter(name string) (stl.Filter, error) {
	switch name {
	case config.FilterAll, "":
		return stl.All, nil
	case config.FilterBoundary:
		return stl.Boundary, nil
	case config.FilterFaults:
		return stl.Faults, nil
	default:
		return nil, fmt.Errorf("unknown export filter %q", name)
	}
}

func surface(iface bridge.Interface) string {
	switch {
	case iface.Fault:
		return SurfaceFault
	case iface.Cell0.IsCell() && iface.Cell1.IsCell():
		return SurfaceInterior
	default:
		return SurfaceBoundary
	}
}

// meshData fans every polygon into triangles and groups them by surface
// kind. Surfaces without polygons are left out.
func meshData(m *bridge.PolygonMesh) []MeshData {
	groups := map[string]*MeshData{}
	var order []string
	for p, poly := range m.Polygons {
		kind := surface(poly.Interface)
		md, ok := groups[kind]
		if !ok {
			md = &MeshData{Surface: kind, Color: surfaceColors[kind]}
			groups[kind] = md
			order = append(order, kind)
		}
		corners := m.PolygonCorners(p)
		base := uint32(len(md.Vertices) / 3)
		for _, c := range corners {
			pos := m.Vertex(c.Vertex).Pos
			n := m.Normals[c.Normal]
			md.Vertices = append(md.Vertices, float32(pos.X), float32(pos.Y), float32(pos.Z))
			md.Normals = append(md.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
		for k := 1; k+1 < len(corners); k++ {
			md.Indices = append(md.Indices, base, base+uint32(k), base+uint32(k+1))
		}
	}

	meshes := []MeshData{}
	for _, kind := range order {
		meshes = append(meshes, *groups[kind])
	}
	return meshes
}
