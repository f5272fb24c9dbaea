// Package tessellate turns a corner-point grid into a polygon mesh of the
// interfaces between its active cells. Faulted walls are split where the
// cell boundaries on either side cross, so every polygon separates exactly
// two cells (or a cell and the outside).
//
// The grid is swept one pillar at a time, row by row. Only two rows of
// column state are alive at once, so memory grows with NX and the number
// of layers, not with the grid size.
package tessellate

import (
	"context"
	"fmt"
	"time"

	"github.com/chazu/cpgrid/pkg/bridge"
	"github.com/chazu/cpgrid/pkg/grid"
	"go.uber.org/zap"
)

// Options configures a Tessellator.
type Options struct {
	// Epsilon is the depth difference below which two corners on a pillar
	// share a vertex.
	Epsilon float64
	// SnapNeighbours makes the top of a cell reuse the bottom vertex of
	// the active cell directly above it when the two depths differ by at
	// most SnapTolerance.
	SnapNeighbours bool
	SnapTolerance  float64
	Invariants     InvariantMode
	Logger         *zap.Logger
	Progress       Progress
}

// DefaultOptions returns strict options with a 1e-9 epsilon that snap
// neighbouring layers less than 1e-6 apart.
func DefaultOptions() Options {
	return Options{
		Epsilon:        1e-9,
		SnapNeighbours: true,
		SnapTolerance:  1e-6,
		Invariants:     InvariantsStrict,
	}
}

// Tessellator converts grids into meshes. Each call owns its working
// buffers, so a Tessellator may be shared between goroutines.
type Tessellator struct {
	opts Options
	log  *zap.Logger
}

// New returns a Tessellator. A nil logger or progress sink is replaced by
// a no-op.
func New(opts Options) *Tessellator {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Progress == nil {
		opts.Progress = nopProgress{}
	}
	return &Tessellator{opts: opts, log: opts.Logger}
}

// Tessellate writes the mesh of g into b. The grid is validated first and
// nothing is written if that fails. Any later failure is a *ColumnError
// and leaves b partially filled.
func (t *Tessellator) Tessellate(ctx context.Context, g *grid.Grid, b bridge.Bridge) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("tessellate: %w", err)
	}
	s := newSweep(t, g, b)
	start := time.Now()
	if err := s.run(ctx); err != nil {
		return err
	}
	t.log.Debug("tessellation finished",
		zap.Int("nx", g.NX), zap.Int("ny", g.NY), zap.Int("nz", g.NZ),
		zap.Int("vertices", b.VertexCount()),
		zap.Int("cells", b.CellCount()),
		zap.Int("violations", s.violations),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// sweep is the state of one Tessellate call.
type sweep struct {
	opts Options
	log  *zap.Logger
	g    *grid.Grid
	b    bridge.Bridge

	dir        int    // +1 when depth grows down the pillars, -1 otherwise
	ref        [3]int // cell that set dir
	i, j       int // current pillar
	violations int

	rows   [2][]column // column rows, row j in rows[j&1]
	jwalls [2][]wall   // J walls on pillar row j in jwalls[j&1]
	iwalls []wall      // I walls of the current row, indexed by pillar i

	// scratch
	keys       [4][]float64
	inside     []bridge.CellRef
	cornerMask []uint8
	sideLines  [2][]sideLine
	lineMap    [2][]int
	cutoff     []bridge.Index
	fill       []int
	top        []wallPoint
	bottom     []wallPoint
	poly       []wallPoint
	floor      []floorPoint
	corners    []bridge.Corner
}

func newSweep(t *Tessellator, g *grid.Grid, b bridge.Bridge) *sweep {
	s := &sweep{
		opts:   t.opts,
		log:    t.log,
		g:      g,
		b:      b,
		iwalls: make([]wall, g.NX+1),
	}
	s.dir, s.ref = depthDirection(g)
	for r := range s.rows {
		s.rows[r] = make([]column, g.NX)
		s.jwalls[r] = make([]wall, g.NX)
	}
	return s
}

// depthDirection returns +1 if the first active cell with any thickness
// has its bottom deeper than its top, -1 if shallower, and +1 when every
// active cell is flat. The deciding cell is returned with it.
func depthDirection(g *grid.Grid) (int, [3]int) {
	cg := g.Corners()
	for k := 0; k < g.NZ; k++ {
		for j := 0; j < g.NY; j++ {
			for i := 0; i < g.NX; i++ {
				if !g.Active(i, j, k) {
					continue
				}
				for c := 0; c < 4; c++ {
					switch d := cg.Thickness(i, j, k, c&1, c>>1); {
					case d > 0:
						return 1, [3]int{i, j, k}
					case d < 0:
						return -1, [3]int{i, j, k}
					}
				}
			}
		}
	}
	return 1, [3]int{}
}

func (s *sweep) reserve() {
	active := 0
	for _, a := range s.g.ActNum {
		if a != 0 {
			active++
		}
	}
	s.b.ReserveVertices(2*active + s.g.PillarCount())
	s.b.ReserveEdges(12 * active)
	s.b.ReserveTriangles(12 * active)
}

func (s *sweep) run(ctx context.Context) error {
	s.reserve()
	nx, ny := s.g.NX, s.g.NY
	for j := 0; j <= ny; j++ {
		if err := ctx.Err(); err != nil {
			return &ColumnError{I: 0, J: j, Op: "sweep", Err: err}
		}
		for i := 0; i <= nx; i++ {
			s.i, s.j = i, j
			if i < nx && j < ny {
				s.rows[j&1][i].load(s, i, j)
			}
			if err := s.pillar(i, j); err != nil {
				return err
			}
		}
		s.opts.Progress.OnProgress(100*(j+1)/(ny+1), fmt.Sprintf("row %d of %d", j+1, ny+1))
	}
	return nil
}

// pillar processes pillar (i,j) and everything that becomes complete with
// it: the J wall to its left, the I wall below it and the column to its
// lower left.
func (s *sweep) pillar(i, j int) error {
	quads := s.quadrants(i, j)
	span, err := s.uniquePillarVertices(i, j, quads)
	if err != nil {
		return &ColumnError{I: i, J: j, Op: "pillar", Err: err}
	}
	s.pillarEdges(quads, span)

	if i > 0 {
		w := &s.jwalls[j&1][i-1]
		w.reset(bridge.OrientationJ, s.g.Pillar(i-1, j), s.g.Pillar(i, j), float64(s.dir))
		sides := [2]wallSide{
			{col: s.column(i-1, j-1), ca: 2, cb: 3},
			{col: s.column(i-1, j), ca: 0, cb: 1},
		}
		if err := s.processWall(w, sides); err != nil {
			return &ColumnError{I: i, J: j, Op: "J wall", Err: err}
		}
	}
	if j > 0 {
		w := &s.iwalls[i]
		w.reset(bridge.OrientationI, s.g.Pillar(i, j-1), s.g.Pillar(i, j), -float64(s.dir))
		sides := [2]wallSide{
			{col: s.column(i-1, j-1), ca: 1, cb: 3},
			{col: s.column(i, j-1), ca: 0, cb: 2},
		}
		if err := s.processWall(w, sides); err != nil {
			return &ColumnError{I: i, J: j, Op: "I wall", Err: err}
		}
	}
	if i > 0 && j > 0 {
		s.stitchTopBottom(s.column(i-1, j-1), columnWalls{
			west:  &s.iwalls[i-1],
			north: &s.jwalls[j&1][i-1],
			east:  &s.iwalls[i],
			south: &s.jwalls[(j-1)&1][i-1],
		})
	}
	return nil
}

func (s *sweep) processWall(w *wall, sides [2]wallSide) error {
	if err := s.extractWallLines(w, sides); err != nil {
		return err
	}
	if err := s.intersectWallLines(w); err != nil {
		return err
	}
	s.wallEdges(w)
	if len(w.isects) == 0 {
		s.stitchPillarsNoIntersections(w)
		return nil
	}
	return s.stitchPillarsHandleIntersections(w)
}
