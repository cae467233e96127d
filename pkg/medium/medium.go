package medium

import (
	"math"

	"github.com/df07/go-photon-mapper/pkg/core"
)

// PhaseFunction describes directional scattering inside a participating
// medium. Both directions are world space; wi points toward the photon
// origin, wo toward the viewer.
type PhaseFunction interface {
	Eval(wi, wo core.Vec3) float64
	Sample(wo core.Vec3, sample core.Vec2) (wi core.Vec3, pdf float64)
}

// Isotropic scatters uniformly over the sphere
type Isotropic struct{}

// Eval returns the constant isotropic phase value 1/(4 pi)
func (Isotropic) Eval(wi, wo core.Vec3) float64 {
	return 1.0 / (4.0 * math.Pi)
}

// Sample draws a uniform spherical direction
func (Isotropic) Sample(wo core.Vec3, sample core.Vec2) (core.Vec3, float64) {
	return core.SampleOnUnitSphere(sample), 1.0 / (4.0 * math.Pi)
}

// HenyeyGreenstein is the standard single-parameter anisotropic phase
// function. g in (-1, 1); positive values scatter forward.
type HenyeyGreenstein struct {
	G float64
}

// NewHenyeyGreenstein creates a phase function with the given asymmetry
func NewHenyeyGreenstein(g float64) *HenyeyGreenstein {
	return &HenyeyGreenstein{G: g}
}

// Eval returns the phase value for the angle between wi and wo
func (h *HenyeyGreenstein) Eval(wi, wo core.Vec3) float64 {
	cosTheta := wi.Dot(wo)
	denom := 1 + h.G*h.G + 2*h.G*cosTheta
	return (1 - h.G*h.G) / (4 * math.Pi * denom * math.Sqrt(denom))
}

// Sample draws a direction from the phase distribution around wo
func (h *HenyeyGreenstein) Sample(wo core.Vec3, sample core.Vec2) (core.Vec3, float64) {
	var cosTheta float64
	if math.Abs(h.G) < 1e-3 {
		cosTheta = 1 - 2*sample.X
	} else {
		sqr := (1 - h.G*h.G) / (1 + h.G*(2*sample.X-1))
		cosTheta = -(1 + h.G*h.G - sqr*sqr) / (2 * h.G)
	}

	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * sample.Y

	frame := core.NewFrame(wo)
	wi := frame.ToWorld(core.NewVec3(
		sinTheta*math.Cos(phi),
		sinTheta*math.Sin(phi),
		cosTheta,
	))
	return wi, h.Eval(wi, wo)
}

// Medium bundles a phase function with homogeneous scattering and
// absorption coefficients
type Medium struct {
	SigmaS core.Vec3 // Scattering coefficient
	SigmaA core.Vec3 // Absorption coefficient
	phase  PhaseFunction
}

// NewMedium creates a homogeneous medium with the given coefficients
// and phase function
func NewMedium(sigmaS, sigmaA core.Vec3, phase PhaseFunction) *Medium {
	return &Medium{SigmaS: sigmaS, SigmaA: sigmaA, phase: phase}
}

// Phase returns the medium's phase function
func (m *Medium) Phase() PhaseFunction {
	return m.phase
}

// SigmaT returns the extinction coefficient
func (m *Medium) SigmaT() core.Vec3 {
	return m.SigmaS.Add(m.SigmaA)
}

// Transmittance returns Beer-Lambert attenuation over a path of the
// given length
func (m *Medium) Transmittance(distance float64) core.Vec3 {
	st := m.SigmaT()
	return core.NewVec3(
		math.Exp(-st.X*distance),
		math.Exp(-st.Y*distance),
		math.Exp(-st.Z*distance),
	)
}

// ScatterRecord describes a medium interaction sampled along a ray
type ScatterRecord struct {
	Point    core.Vec3 // Interaction point
	Distance float64   // Distance along the ray
	Inside   bool      // Whether the interaction happened before the surface
}

// SampleDistance samples a free-flight distance along the ray against
// the extinction coefficient, clipped to the surface distance tMax
func (m *Medium) SampleDistance(ray core.Ray, tMax float64, sampler core.Sampler) ScatterRecord {
	// Channel-average extinction drives the exponential
	st := m.SigmaT()
	sigma := (st.X + st.Y + st.Z) / 3.0
	if sigma <= 0 {
		return ScatterRecord{Point: ray.At(tMax), Distance: tMax, Inside: false}
	}

	d := -math.Log(1-sampler.Get1D()) / sigma
	if d >= tMax {
		return ScatterRecord{Point: ray.At(tMax), Distance: tMax, Inside: false}
	}
	return ScatterRecord{Point: ray.At(d), Distance: d, Inside: true}
}
