// Package params holds the simulator parameters and the coherence metric
// derived from them.
package params

import (
	"fmt"
	"math"

	"github.com/starford/cfreality/internal/apperr"
	"github.com/starford/cfreality/internal/models"
)

// Bounds of every parameter.
const (
	Min = 0
	Max = 100

	// Default is the value each parameter starts at.
	Default = 50
)

// Clamp limits v to [Min, Max].
func Clamp(v int) int {
	if v < Min {
		return Min
	}
	if v > Max {
		return Max
	}
	return v
}

// ClampFloat rounds v to the nearest integer and clamps it.
func ClampFloat(v float64) int {
	if math.IsNaN(v) {
		return Min
	}
	if v <= Min {
		return Min
	}
	if v >= Max {
		return Max
	}
	return int(math.Round(v))
}

// Defaults returns the starting triple.
func Defaults() models.Parameters {
	return models.Parameters{Distinctions: Default, Ideation: Default, Complexity: Default}
}

// State is the mutable parameter triple. Values are clamped on every write,
// never rejected or wrapped. The zero value is all zeros; use New for defaults.
type State struct {
	p models.Parameters
}

// New returns a State initialised from p, clamping each field.
func New(p models.Parameters) *State {
	s := &State{}
	s.Replace(p)
	return s
}

// Read returns the current triple.
func (s *State) Read() models.Parameters {
	return s.p
}

// Replace overwrites all three parameters.
func (s *State) Replace(p models.Parameters) {
	s.p = models.Parameters{
		Distinctions: Clamp(p.Distinctions),
		Ideation:     Clamp(p.Ideation),
		Complexity:   Clamp(p.Complexity),
	}
}

// Set clamps value and stores it under name.
// Only an unknown name is an error.
func (s *State) Set(name string, value int) error {
	field, err := s.field(name)
	if err != nil {
		return err
	}
	*field = Clamp(value)
	return nil
}

// Add increments name by delta (rounded), clamping the result.
func (s *State) Add(name string, delta float64) error {
	field, err := s.field(name)
	if err != nil {
		return err
	}
	*field = ClampFloat(float64(*field) + delta)
	return nil
}

// Get returns the value of name.
func (s *State) Get(name string) (int, error) {
	field, err := s.field(name)
	if err != nil {
		return 0, err
	}
	return *field, nil
}

func (s *State) field(name string) (*int, error) {
	switch name {
	case models.ParamDistinctions:
		return &s.p.Distinctions, nil
	case models.ParamIdeation:
		return &s.p.Ideation, nil
	case models.ParamComplexity:
		return &s.p.Complexity, nil
	}
	return nil, fmt.Errorf("%w: unknown parameter %q", apperr.ErrInvalidParameter, name)
}

// Valid reports whether name is one of the simulator parameters.
func Valid(name string) bool {
	for _, n := range models.ParameterNames {
		if n == name {
			return true
		}
	}
	return false
}

// Coherence (Φ) is sqrt(vortexStability * nestingDepth) * 10 where
// vortexStability = distinctions*ideation/100 and
// nestingDepth = log2(complexity+1).
// It is zero when complexity is zero and never NaN for in-range input.
func Coherence(p models.Parameters) float64 {
	return CoherenceOf(float64(p.Distinctions), float64(p.Ideation), float64(p.Complexity))
}

// CoherenceOf is Coherence over raw values. Negative inputs are treated as 0.
func CoherenceOf(distinctions, ideation, complexity float64) float64 {
	distinctions = math.Max(distinctions, 0)
	ideation = math.Max(ideation, 0)
	complexity = math.Max(complexity, 0)

	vortexStability := distinctions * ideation / 100
	nestingDepth := math.Log2(complexity + 1)
	return math.Sqrt(vortexStability*nestingDepth) * 10
}
