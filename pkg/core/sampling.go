package core

import (
	"math"
	"math/rand"

	"github.com/valyala/fastrand"
)

// Sampler provides random sampling for tracing algorithms.
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// FastSampler is a lock-free sampler for per-worker particle tracing.
// Each worker owns one, so emission batches never contend on a shared
// generator the way math/rand's global source does.
type FastSampler struct {
	rng fastrand.RNG
}

// NewFastSampler creates a FastSampler with the given seed
func NewFastSampler(seed uint32) *FastSampler {
	s := &FastSampler{}
	s.rng.Seed(seed)
	return s
}

const inv32 = 1.0 / (1 << 32)

// Get1D returns a random float64 in [0, 1)
func (s *FastSampler) Get1D() float64 {
	return float64(s.rng.Uint32()) * inv32
}

// Get2D returns two random float64 values in [0, 1)
func (s *FastSampler) Get2D() Vec2 {
	return NewVec2(s.Get1D(), s.Get1D())
}

// Get3D returns three random float64 values in [0, 1)
func (s *FastSampler) Get3D() Vec3 {
	return NewVec3(s.Get1D(), s.Get1D(), s.Get1D())
}

// SampleCosineHemisphere generates a cosine-weighted random direction in hemisphere around normal
func SampleCosineHemisphere(normal Vec3, sample Vec2) Vec3 {
	// Generate point in unit disk using uniform random sampling
	a := 2.0 * math.Pi * sample.X
	z := sample.Y
	r := math.Sqrt(z)

	x := r * math.Cos(a)
	y := r * math.Sin(a)
	zCoord := math.Sqrt(1.0 - z)

	frame := NewFrame(normal)
	return frame.ToWorld(NewVec3(x, y, zCoord))
}

// SampleOnUnitSphere generates a uniform random direction on the unit sphere
func SampleOnUnitSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X // z in [-1, 1]
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}
