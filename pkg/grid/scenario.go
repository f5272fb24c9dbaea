package grid

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Scenario describes a synthetic grid: a box with fault throws, inactive
// cells and zero-thickness layers applied in that order.
type Scenario struct {
	NX         int        `yaml:"nx"`
	NY         int        `yaml:"ny"`
	NZ         int        `yaml:"nz"`
	Cell       [3]float64 `yaml:"cell"` // dx, dy, dz
	Throws     []Throw    `yaml:"throws"`
	Inactive   [][3]int   `yaml:"inactive"`
	ZeroLayers []int      `yaml:"zero_layers"`
}

// Throw shifts column (I,J) by DZ. With Pillar set only the corners on
// pillar (I+Pillar[0], J+Pillar[1]) move.
type Throw struct {
	I      int     `yaml:"i"`
	J      int     `yaml:"j"`
	DZ     float64 `yaml:"dz"`
	Pillar *[2]int `yaml:"pillar,omitempty"`
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario %s: %w", path, err)
	}
	return &s, nil
}

func (s *Scenario) inColumn(i, j int) bool {
	return i >= 0 && i < s.NX && j >= 0 && j < s.NY
}

// Build creates the grid.
func (s *Scenario) Build() (*Grid, error) {
	if s.NX <= 0 || s.NY <= 0 || s.NZ <= 0 {
		return nil, &ValidationError{Code: "DIMENSIONS", Message: fmt.Sprintf("scenario dimensions %dx%dx%d", s.NX, s.NY, s.NZ)}
	}
	cell := s.Cell
	if cell == [3]float64{} {
		cell = [3]float64{1, 1, 1}
	}
	g := NewBox(s.NX, s.NY, s.NZ, cell[0], cell[1], cell[2])

	var errs []error
	for n, t := range s.Throws {
		if !s.inColumn(t.I, t.J) {
			errs = append(errs, fmt.Errorf("throw %d: column (%d,%d) outside the grid", n, t.I, t.J))
			continue
		}
		if t.Pillar == nil {
			g.ShiftColumn(t.I, t.J, t.DZ)
			continue
		}
		di, dj := t.Pillar[0], t.Pillar[1]
		if di < 0 || di > 1 || dj < 0 || dj > 1 {
			errs = append(errs, fmt.Errorf("throw %d: pillar offset (%d,%d) must be 0 or 1", n, di, dj))
			continue
		}
		g.ShiftColumnPillar(t.I, t.J, di, dj, t.DZ)
	}
	for _, c := range s.Inactive {
		if !s.inColumn(c[0], c[1]) || c[2] < 0 || c[2] >= s.NZ {
			errs = append(errs, fmt.Errorf("inactive cell %v outside the grid", c))
			continue
		}
		g.SetActive(c[0], c[1], c[2], false)
	}
	for _, k := range s.ZeroLayers {
		if k < 0 || k > s.NZ {
			errs = append(errs, fmt.Errorf("zero layer %d outside 0..%d", k, s.NZ))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	// Zero layers are numbered against the original layers, so insert the
	// deepest first.
	layers := slices.Sorted(slices.Values(s.ZeroLayers))
	for n := len(layers) - 1; n >= 0; n-- {
		g = g.InsertZeroLayer(layers[n])
	}
	return g, nil
}
