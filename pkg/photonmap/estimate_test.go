package photonmap

import (
	"math"
	"testing"

	"github.com/df07/go-photon-mapper/pkg/core"
)

type constantBRDF struct {
	value core.Vec3
}

func (b constantBRDF) EvaluateBRDF(incomingDir, outgoingDir, normal core.Vec3) core.Vec3 {
	return b.value
}

type isotropicPhase struct{}

func (isotropicPhase) Eval(wi, wo core.Vec3) float64 {
	return 1.0 / (4.0 * math.Pi)
}

type testMedium struct{}

func (testMedium) Phase() PhaseFunction {
	return isotropicPhase{}
}

// discMap builds a balanced map with four unit-power photons on the
// z=0 plane, all lit from straight above, at float32-exact positions so
// the Simpson weights come out exact: d^2 = 0, 0.0625, 0.25, 0.125
func discMap() *Map {
	m := New(8)
	down := core.NewVec3(0, 0, -1)
	up := core.NewVec3(0, 0, 1)
	one := core.NewVec3(1, 1, 1)
	m.Store(core.NewVec3(0, 0, 0), up, down, one, 0)
	m.Store(core.NewVec3(0.25, 0, 0), up, down, one, 0)
	m.Store(core.NewVec3(0, 0.5, 0), up, down, one, 0)
	m.Store(core.NewVec3(0.25, 0.25, 0), up, down, one, 0)
	m.Balance()
	return m
}

// Sum of (1 - d^2)^2 over the four disc photons with unit search radius
const discKernelSum = 1.0 + 0.87890625 + 0.5625 + 0.765625

func TestEstimateIrradiance(t *testing.T) {
	m := discMap()

	// Unit power round-trips exactly through the shared-exponent
	// encoding, so four photons in a unit disc give exactly 4/pi
	got := m.EstimateIrradiance(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), 1.0, 8)
	want := 4.0 / math.Pi
	if math.Abs(got.X-want) > 1e-12 || math.Abs(got.Y-want) > 1e-12 || math.Abs(got.Z-want) > 1e-12 {
		t.Errorf("Expected irradiance %f, got %v", want, got)
	}
}

func TestEstimateIrradiance_RejectsBackside(t *testing.T) {
	m := New(2)
	up := core.NewVec3(0, 0, 1)
	one := core.NewVec3(1, 1, 1)
	// One photon from above, one arriving through the surface from below
	m.Store(core.NewVec3(0, 0, 0), up, core.NewVec3(0, 0, -1), one, 0)
	m.Store(core.NewVec3(0.25, 0, 0), up, core.NewVec3(0, 0, 1), one, 0)
	m.Balance()

	got := m.EstimateIrradiance(core.NewVec3(0, 0, 0), up, 1.0, 4)
	want := 1.0 / math.Pi
	if math.Abs(got.X-want) > 1e-12 {
		t.Errorf("Expected only the frontside photon to count (%f), got %v", want, got)
	}
}

func TestEstimateIrradiance_Empty(t *testing.T) {
	m := New(4)
	m.Balance()
	if got := m.EstimateIrradiance(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), 1.0, 4); got != (core.Vec3{}) {
		t.Errorf("Expected zero irradiance on an empty map, got %v", got)
	}
}

func TestEstimateIrradianceFiltered(t *testing.T) {
	m := discMap()

	got := m.EstimateIrradianceFiltered(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), 1.0, 8)
	want := discKernelSum * 3.0 / math.Pi
	if math.Abs(got.X-want) > 1e-12 || math.Abs(got.Y-want) > 1e-12 || math.Abs(got.Z-want) > 1e-12 {
		t.Errorf("Expected filtered irradiance %f, got %v", want, got)
	}
}

func TestEstimateIrradianceFiltered_BacksideWeightZero(t *testing.T) {
	m := New(2)
	up := core.NewVec3(0, 0, 1)
	one := core.NewVec3(1, 1, 1)
	m.Store(core.NewVec3(0, 0, 0), up, core.NewVec3(0, 0, -1), one, 0)
	m.Store(core.NewVec3(0, 0, 0), up, core.NewVec3(0, 0, 1), one, 0)
	m.Balance()

	got := m.EstimateIrradianceFiltered(core.NewVec3(0, 0, 0), up, 1.0, 4)
	want := 3.0 / math.Pi // one photon at distance zero, weight 1
	if math.Abs(got.X-want) > 1e-12 {
		t.Errorf("Expected backside photon to carry zero weight (%f), got %v", want, got)
	}
}

func TestEstimateRadianceFiltered(t *testing.T) {
	m := discMap()

	its := Intersection{
		Point:         core.NewVec3(0, 0, 0),
		ShadingNormal: core.NewVec3(0, 0, 1),
		Frame:         core.NewFrame(core.NewVec3(0, 0, 1)),
		OutgoingDir:   core.NewVec3(0, 0, 1),
		BSDF:          constantBRDF{core.NewVec3(0.5, 0.5, 0.5)},
	}

	got := m.EstimateRadianceFiltered(its, 1.0, 8)
	want := 0.5 * discKernelSum * 3.0 / math.Pi
	if math.Abs(got.X-want) > 1e-12 {
		t.Errorf("Expected radiance %f, got %v", want, got)
	}
}

func TestEstimateRadianceRaw(t *testing.T) {
	m := New(8)
	up := core.NewVec3(0, 0, 1)
	down := core.NewVec3(0, 0, -1)
	one := core.NewVec3(1, 1, 1)
	m.Store(core.NewVec3(0, 0, 0), up, down, one, 0)
	m.Store(core.NewVec3(0.25, 0, 0), up, down, one, 1)
	m.Store(core.NewVec3(0, 0.25, 0), up, down, one, 7) // deeper than maxDepth
	m.Store(core.NewVec3(0, 0, 0.25), down, down, one, 0) // normal opposes the query
	m.Balance()

	its := Intersection{
		Point:         core.NewVec3(0, 0, 0),
		ShadingNormal: up,
		Frame:         core.NewFrame(up),
		OutgoingDir:   up,
		BSDF:          constantBRDF{core.NewVec3(1, 1, 1)},
	}

	var result core.Vec3
	count := m.EstimateRadianceRaw(its, 1.0, &result, 3)

	if count != 2 {
		t.Fatalf("Expected 2 accepted photons, got %d", count)
	}

	// Photon normals decode to exactly (0,0,1) here, so the shading
	// normal correction is exactly one and each photon contributes its
	// unit power times the constant lobe
	if math.Abs(result.X-2.0) > 1e-9 {
		t.Errorf("Expected accumulated radiance 2, got %v", result)
	}
}

func TestEstimateRadianceRaw_Empty(t *testing.T) {
	m := New(4)
	m.Balance()

	its := Intersection{
		Point:         core.NewVec3(0, 0, 0),
		ShadingNormal: core.NewVec3(0, 0, 1),
		Frame:         core.NewFrame(core.NewVec3(0, 0, 1)),
		OutgoingDir:   core.NewVec3(0, 0, 1),
		BSDF:          constantBRDF{core.NewVec3(1, 1, 1)},
	}
	var result core.Vec3
	if count := m.EstimateRadianceRaw(its, 1.0, &result, 10); count != 0 {
		t.Errorf("Expected 0 photons on an empty map, got %d", count)
	}
	if result != (core.Vec3{}) {
		t.Errorf("Expected zero radiance, got %v", result)
	}
}

func TestEstimateVolumeRadiance(t *testing.T) {
	m := New(8)
	down := core.NewVec3(0, 0, -1)
	one := core.NewVec3(1, 1, 1)
	m.Store(core.NewVec3(0, 0, 0), down, down, one, 0)
	m.Store(core.NewVec3(0.25, 0, 0), down, down, one, 0)
	m.Store(core.NewVec3(0, 0.5, 0), down, down, one, 0)
	m.Balance()

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))
	got := m.EstimateVolumeRadiance(ray, 1.0, 8, testMedium{})

	// Three unit-power photons, isotropic phase, unit search ball
	want := 3.0 / (4.0 * math.Pi) / ((4.0 / 3.0) * math.Pi)
	if math.Abs(got.X-want) > 1e-12 {
		t.Errorf("Expected in-scattered radiance %f, got %v", want, got)
	}
}

func TestEstimators_ScaleApplied(t *testing.T) {
	m := discMap()
	m.SetScale(0.5)

	got := m.EstimateIrradiance(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), 1.0, 8)
	want := 0.5 * 4.0 / math.Pi
	if math.Abs(got.X-want) > 1e-12 {
		t.Errorf("Expected scaled irradiance %f, got %v", want, got)
	}
}
