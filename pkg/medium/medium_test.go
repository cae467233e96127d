package medium

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-photon-mapper/pkg/core"
)

func TestIsotropic_Eval(t *testing.T) {
	p := Isotropic{}
	want := 1.0 / (4.0 * math.Pi)

	dirs := []core.Vec3{
		core.NewVec3(0, 0, 1),
		core.NewVec3(1, 0, 0),
		core.NewVec3(-1, -1, -1).Normalize(),
	}
	for _, wi := range dirs {
		for _, wo := range dirs {
			if got := p.Eval(wi, wo); math.Abs(got-want) > 1e-12 {
				t.Errorf("Eval(%v, %v) = %f, want %f", wi, wo, got, want)
			}
		}
	}
}

func TestHenyeyGreenstein_ReducesToIsotropic(t *testing.T) {
	p := NewHenyeyGreenstein(0)
	want := 1.0 / (4.0 * math.Pi)

	wi := core.NewVec3(0, 1, 0)
	wo := core.NewVec3(1, 0, 0)
	if got := p.Eval(wi, wo); math.Abs(got-want) > 1e-9 {
		t.Errorf("Expected g=0 to match isotropic %f, got %f", want, got)
	}
}

func TestHenyeyGreenstein_ForwardPeak(t *testing.T) {
	p := NewHenyeyGreenstein(0.8)
	wo := core.NewVec3(0, 0, 1)

	forward := p.Eval(core.NewVec3(0, 0, 1), wo)
	backward := p.Eval(core.NewVec3(0, 0, -1), wo)
	if forward <= backward {
		t.Errorf("Expected forward scattering peak for g=0.8: forward %f, backward %f", forward, backward)
	}
}

func TestHenyeyGreenstein_Normalization(t *testing.T) {
	// Integrate the phase function over the sphere with a uniform
	// Monte Carlo estimate; it must come out close to one
	p := NewHenyeyGreenstein(0.5)
	wo := core.NewVec3(0, 0, 1)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(5)))

	const n = 200000
	sum := 0.0
	for i := 0; i < n; i++ {
		wi := core.SampleOnUnitSphere(sampler.Get2D())
		sum += p.Eval(wi, wo) * 4 * math.Pi
	}
	if integral := sum / n; math.Abs(integral-1.0) > 0.02 {
		t.Errorf("Expected phase function to integrate to 1, got %f", integral)
	}
}

func TestHenyeyGreenstein_SampleMatchesEval(t *testing.T) {
	p := NewHenyeyGreenstein(0.3)
	wo := core.NewVec3(0, 0, 1)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(6)))

	for i := 0; i < 100; i++ {
		wi, pdf := p.Sample(wo, sampler.Get2D())
		if math.Abs(wi.Length()-1.0) > 1e-9 {
			t.Fatalf("Sampled direction %v is not unit length", wi)
		}
		if want := p.Eval(wi, wo); math.Abs(pdf-want) > 1e-9 {
			t.Fatalf("Sample pdf %f does not match Eval %f", pdf, want)
		}
	}
}

func TestMedium_Transmittance(t *testing.T) {
	m := NewMedium(core.NewVec3(0.5, 0.5, 0.5), core.NewVec3(0.5, 0.5, 0.5), Isotropic{})

	if got := m.Transmittance(0); got != core.NewVec3(1, 1, 1) {
		t.Errorf("Expected full transmittance at distance 0, got %v", got)
	}

	got := m.Transmittance(1.0)
	want := math.Exp(-1.0)
	if math.Abs(got.X-want) > 1e-12 {
		t.Errorf("Expected transmittance %f at unit distance, got %v", want, got)
	}
}

func TestMedium_SampleDistance(t *testing.T) {
	m := NewMedium(core.NewVec3(1, 1, 1), core.NewVec3(0, 0, 0), Isotropic{})
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(7)))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))

	inside := 0
	const n = 10000
	for i := 0; i < n; i++ {
		rec := m.SampleDistance(ray, 1.0, sampler)
		if rec.Distance > 1.0 {
			t.Fatalf("Sampled distance %f beyond the surface clip", rec.Distance)
		}
		if rec.Inside {
			inside++
		}
	}

	// P(interaction before t=1) = 1 - e^-1 for unit extinction
	want := 1 - math.Exp(-1.0)
	if got := float64(inside) / n; math.Abs(got-want) > 0.02 {
		t.Errorf("Expected interaction fraction %f, got %f", want, got)
	}
}

func TestMedium_VacuumNeverScatters(t *testing.T) {
	m := NewMedium(core.Vec3{}, core.Vec3{}, Isotropic{})
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(8)))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))

	rec := m.SampleDistance(ray, 5.0, sampler)
	if rec.Inside || rec.Distance != 5.0 {
		t.Errorf("Expected vacuum to pass through to the surface, got %+v", rec)
	}
}
