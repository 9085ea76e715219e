package params

import (
	"errors"
	"math"
	"testing"

	"github.com/starford/cfreality/internal/apperr"
	"github.com/starford/cfreality/internal/models"
)

func TestSet_Clamps(t *testing.T) {
	s := New(Defaults())

	cases := []struct {
		in, want int
	}{
		{-5, 0},
		{0, 0},
		{42, 42},
		{100, 100},
		{250, 100},
	}
	for _, c := range cases {
		if err := s.Set(models.ParamIdeation, c.in); err != nil {
			t.Fatalf("Set(%d): %v", c.in, err)
		}
		if got := s.Read().Ideation; got != c.want {
			t.Errorf("Set(%d) -> %d, want %d", c.in, got, c.want)
		}
	}
}

func TestSet_UnknownName(t *testing.T) {
	s := New(Defaults())
	err := s.Set("entropy", 10)
	if !errors.Is(err, apperr.ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
	if s.Read() != Defaults() {
		t.Errorf("state changed on invalid set: %+v", s.Read())
	}
}

func TestAdd_RoundsAndClamps(t *testing.T) {
	s := New(models.Parameters{Distinctions: 10, Ideation: 10, Complexity: 10})
	_ = s.Add(models.ParamIdeation, 59.5)
	if got := s.Read().Ideation; got != 70 {
		t.Errorf("ideation = %d, want 70", got)
	}
	_ = s.Add(models.ParamDistinctions, 1000)
	if got := s.Read().Distinctions; got != 100 {
		t.Errorf("distinctions = %d, want 100", got)
	}
}

func TestNew_ClampsInput(t *testing.T) {
	s := New(models.Parameters{Distinctions: -1, Ideation: 101, Complexity: 7})
	want := models.Parameters{Distinctions: 0, Ideation: 100, Complexity: 7}
	if s.Read() != want {
		t.Errorf("got %+v, want %+v", s.Read(), want)
	}
}

func TestCoherence_KnownValues(t *testing.T) {
	// d=50 i=50 c=50: vs=25, nd=log2(51)
	want := math.Sqrt(25*math.Log2(51)) * 10
	got := Coherence(Defaults())
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("coherence = %v, want %v", got, want)
	}

	// d=100 i=100 c=100: vs=100, nd=log2(101)
	max := Coherence(models.Parameters{Distinctions: 100, Ideation: 100, Complexity: 100})
	if max < 140 || max > 141 {
		t.Errorf("max coherence = %v, expected ~140", max)
	}
}

func TestCoherence_ZeroComplexity(t *testing.T) {
	for d := 0; d <= 100; d += 10 {
		for i := 0; i <= 100; i += 10 {
			got := Coherence(models.Parameters{Distinctions: d, Ideation: i, Complexity: 0})
			if got != 0 {
				t.Fatalf("coherence(%d,%d,0) = %v, want 0", d, i, got)
			}
		}
	}
}

func TestCoherence_NonNegativeAndFinite(t *testing.T) {
	for d := 0; d <= 100; d += 5 {
		for i := 0; i <= 100; i += 5 {
			for c := 0; c <= 100; c += 5 {
				got := Coherence(models.Parameters{Distinctions: d, Ideation: i, Complexity: c})
				if got < 0 || math.IsNaN(got) || math.IsInf(got, 0) {
					t.Fatalf("coherence(%d,%d,%d) = %v", d, i, c, got)
				}
			}
		}
	}
}

func TestCoherence_Monotonic(t *testing.T) {
	fixed := []int{0, 1, 37, 50, 100}
	for _, a := range fixed {
		for _, b := range fixed {
			prevD, prevI, prevC := -1.0, -1.0, -1.0
			for v := 0; v <= 100; v++ {
				d := Coherence(models.Parameters{Distinctions: v, Ideation: a, Complexity: b})
				i := Coherence(models.Parameters{Distinctions: a, Ideation: v, Complexity: b})
				c := Coherence(models.Parameters{Distinctions: a, Ideation: b, Complexity: v})
				if d < prevD || i < prevI || c < prevC {
					t.Fatalf("not monotonic at v=%d (a=%d b=%d)", v, a, b)
				}
				prevD, prevI, prevC = d, i, c
			}
		}
	}
}

func TestValid(t *testing.T) {
	for _, n := range models.ParameterNames {
		if !Valid(n) {
			t.Errorf("%q should be valid", n)
		}
	}
	if Valid("Distinctions") {
		t.Error("names are case-sensitive")
	}
}
