package grid

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestCornerPacking(t *testing.T) {
	for di := 0; di < 2; di++ {
		for dj := 0; dj < 2; dj++ {
			for dk := 0; dk < 2; dk++ {
				c := NewCorner(di, dj, dk)
				if c.DI() != di || c.DJ() != dj || c.DK() != dk {
					t.Errorf("NewCorner(%d,%d,%d) unpacked to (%d,%d,%d)",
						di, dj, dk, c.DI(), c.DJ(), c.DK())
				}
			}
		}
	}
}

func TestCornerGridStride(t *testing.T) {
	g := NewBox(3, 2, 2, 1, 1, 1)
	for i := range g.ZCorn {
		g.ZCorn[i] = float64(i)
	}
	cg := g.Corners()

	tests := []struct {
		name    string
		i, j, k int
		c       Corner
		want    int
	}{
		{"origin", 0, 0, 0, 0, 0},
		{"i+1 side", 0, 0, 0, NewCorner(1, 0, 0), 1},
		{"second cell along i", 1, 0, 0, 0, 2},
		{"j+1 side", 0, 0, 0, NewCorner(0, 1, 0), 6},
		{"bottom", 0, 0, 0, NewCorner(0, 0, 1), 24},
		{"last corner", 2, 1, 1, NewCorner(1, 1, 1), 95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cg.Depth(tt.i, tt.j, tt.k, tt.c); got != float64(tt.want) {
				t.Errorf("Depth = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCellIndexRoundTrip(t *testing.T) {
	g := NewBox(4, 3, 2, 1, 1, 1)
	for idx := 0; idx < g.CellCount(); idx++ {
		i, j, k := g.CellCoords(idx)
		if got := g.CellIndex(i, j, k); got != idx {
			t.Fatalf("CellIndex(CellCoords(%d)) = %d", idx, got)
		}
	}
}

func TestNewBoxGeometry(t *testing.T) {
	g := NewBox(2, 1, 3, 10, 20, 5)
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	p := g.Pillar(2, 1)
	want := [6]float64{20, 20, 0, 20, 20, 15}
	if p != want {
		t.Errorf("Pillar(2,1) = %v, want %v", p, want)
	}
	cg := g.Corners()
	if got := cg.Thickness(1, 0, 2, 1, 1); got != 5 {
		t.Errorf("Thickness = %v, want 5", got)
	}
	for idx, a := range g.ActNum {
		if a != 1 {
			t.Fatalf("cell %d inactive", idx)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		grid  func() *Grid
		codes []string
	}{
		{"valid", func() *Grid { return NewBox(2, 2, 2, 1, 1, 1) }, nil},
		{"zero dimension", func() *Grid { return &Grid{NX: 0, NY: 1, NZ: 1} }, []string{"DIMENSIONS"}},
		{"short coord", func() *Grid {
			g := NewBox(1, 1, 1, 1, 1, 1)
			g.Coord = g.Coord[:6]
			return g
		}, []string{"COORD_LENGTH"}},
		{"short zcorn and actnum", func() *Grid {
			g := NewBox(2, 1, 1, 1, 1, 1)
			g.ZCorn = g.ZCorn[:3]
			g.ActNum = nil
			return g
		}, []string{"ZCORN_LENGTH", "ACTNUM_LENGTH"}},
		{"nan depth", func() *Grid {
			g := NewBox(1, 1, 2, 1, 1, 1)
			g.Corners().SetDepth(0, 0, 1, NewCorner(0, 0, 1), math.NaN())
			return g
		}, []string{"ZCORN_NONFINITE"}},
		{"infinite coord", func() *Grid {
			g := NewBox(1, 1, 1, 1, 1, 1)
			g.Coord[5] = math.Inf(1)
			return g
		}, []string{"COORD_NONFINITE"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grid().Validate()
			if len(tt.codes) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidGrid) {
				t.Errorf("error %v does not match ErrInvalidGrid", err)
			}
			for _, code := range tt.codes {
				if !strings.Contains(err.Error(), code) {
					t.Errorf("error %q missing code %s", err, code)
				}
			}
		})
	}
}

func TestShiftColumn(t *testing.T) {
	g := NewBox(2, 1, 1, 1, 1, 1)
	g.ShiftColumn(1, 0, 2.5)
	cg := g.Corners()
	for c := Corner(0); c < 8; c++ {
		if got, want := cg.Depth(1, 0, 0, c), float64(c.DK())+2.5; got != want {
			t.Errorf("shifted corner %d = %v, want %v", c, got, want)
		}
		if got, want := cg.Depth(0, 0, 0, c), float64(c.DK()); got != want {
			t.Errorf("untouched corner %d = %v, want %v", c, got, want)
		}
	}
}

func TestShiftColumnPillar(t *testing.T) {
	g := NewBox(1, 1, 1, 1, 1, 1)
	g.ShiftColumnPillar(0, 0, 1, 0, -0.5)
	cg := g.Corners()
	if got := cg.Depth(0, 0, 0, NewCorner(1, 0, 0)); got != -0.5 {
		t.Errorf("shifted top = %v, want -0.5", got)
	}
	if got := cg.Depth(0, 0, 0, NewCorner(1, 1, 0)); got != 0 {
		t.Errorf("other pillar top = %v, want 0", got)
	}
}

func TestInsertZeroLayer(t *testing.T) {
	g := NewBox(1, 1, 2, 1, 1, 1)
	out := g.InsertZeroLayer(1)
	if err := out.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if out.NZ != 3 {
		t.Fatalf("NZ = %d, want 3", out.NZ)
	}
	cg := out.Corners()
	for c := Corner(0); c < 8; c++ {
		if got := cg.Depth(0, 0, 1, c); got != 1 {
			t.Errorf("zero layer corner %d = %v, want 1", c, got)
		}
		if got, want := cg.Depth(0, 0, 2, c), float64(1+c.DK()); got != want {
			t.Errorf("moved layer corner %d = %v, want %v", c, got, want)
		}
	}
	if !out.Active(0, 0, 1) {
		t.Error("zero layer should be active")
	}

	tail := g.InsertZeroLayer(2)
	if got := tail.Corners().Depth(0, 0, 2, 0); got != 2 {
		t.Errorf("appended zero layer depth = %v, want 2", got)
	}
}
