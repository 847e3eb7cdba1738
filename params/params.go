// Package params holds the physical parameters of the reference disk
// electrode cell and derived double layer quantities.
package params

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

// SI constants
const (
	ElementaryCharge   = 1.602e-19 // C
	Boltzmann          = 1.38e-23  // J/K
	Avogadro           = 6.022e23  // 1/mol
	VacuumPermittivity = 8.854e-12 // F/m
)

// ErrInvalid is returned for parameter tables that fail validation
var ErrInvalid = errors.New("params: invalid parameter")

// Table is the parameter set of one cell. Units are SI except Concentration,
// which is in mol/L.
type Table struct {
	NMax int `yaml:"nmax"`

	Conductivity            float64 `yaml:"conductivity"`             // S/m, measured
	TheoreticalConductivity float64 `yaml:"theoretical_conductivity"` // S/m
	Capacitance             float64 `yaml:"capacitance"`              // F/m²
	Radius                  float64 `yaml:"radius"`                   // m
	Faradaic                float64 `yaml:"faradaic"`                 // dimensionless admittance

	FreqMin float64 `yaml:"freq_min"` // Hz
	FreqMax float64 `yaml:"freq_max"` // Hz

	Temperature          float64 `yaml:"temperature"`           // K
	Concentration        float64 `yaml:"concentration"`         // mol/L
	RelativePermittivity float64 `yaml:"relative_permittivity"` // water
}

// Default returns the reference cell: a 1.5 mm disk in 0.1 mM electrolyte
// with a 35 µF/cm² double layer, swept from 0.5 Hz to 1 kHz.
func Default() *Table {
	return &Table{
		NMax:                    10,
		Conductivity:            2.8e-3,
		TheoreticalConductivity: 4.1782e-3,
		Capacitance:             35e-6 * 1e4,
		Radius:                  1.5e-3,
		FreqMin:                 0.5,
		FreqMax:                 1000,
		Temperature:             298,
		Concentration:           1e-4,
		RelativePermittivity:    80,
	}
}

// Parse reads YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Table, error) {
	t := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(t); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse parameters: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Load reads a YAML parameter file
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load parameters: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Validate checks that every quantity is finite and physically meaningful
func (t *Table) Validate() error {
	if t.NMax < 1 {
		return fmt.Errorf("%w: nmax %d", ErrInvalid, t.NMax)
	}
	positive := []struct {
		name string
		v    float64
	}{
		{"conductivity", t.Conductivity},
		{"theoretical_conductivity", t.TheoreticalConductivity},
		{"capacitance", t.Capacitance},
		{"radius", t.Radius},
		{"freq_min", t.FreqMin},
		{"freq_max", t.FreqMax},
		{"temperature", t.Temperature},
		{"concentration", t.Concentration},
		{"relative_permittivity", t.RelativePermittivity},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return fmt.Errorf("%w: %s must be positive and finite, got %g", ErrInvalid, p.name, p.v)
		}
	}
	if !(t.Faradaic >= 0) || math.IsInf(t.Faradaic, 0) {
		return fmt.Errorf("%w: faradaic must be non-negative, got %g", ErrInvalid, t.Faradaic)
	}
	if t.FreqMax < t.FreqMin {
		return fmt.Errorf("%w: freq_max %g below freq_min %g", ErrInvalid, t.FreqMax, t.FreqMin)
	}
	return nil
}

// Frequencies returns n log-spaced frequencies from FreqMin to FreqMax
func (t *Table) Frequencies(n int) ([]float64, error) {
	switch {
	case n < 1:
		return nil, fmt.Errorf("%w: %d sweep points", ErrInvalid, n)
	case n == 1:
		return []float64{t.FreqMin}, nil
	}
	return floats.LogSpan(make([]float64, n), t.FreqMin, t.FreqMax), nil
}

// NumberDensity is the ion number density in 1/m³
func (t *Table) NumberDensity() float64 {
	return t.Concentration * 1e3 * Avogadro
}

// DebyeLength of a symmetric monovalent electrolyte, in m
func (t *Table) DebyeLength() float64 {
	eps := t.RelativePermittivity * VacuumPermittivity
	return math.Sqrt(eps * Boltzmann * t.Temperature /
		(2 * t.NumberDensity() * ElementaryCharge * ElementaryCharge))
}

// GouyChapmanCapacitance is the diffuse layer capacitance at zero potential,
// ε/λ_D, in F/m²
func (t *Table) GouyChapmanCapacitance() float64 {
	return t.RelativePermittivity * VacuumPermittivity / t.DebyeLength()
}
