package integrator

import (
	"math"
	"testing"

	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/lights"
	"github.com/df07/go-photon-mapper/pkg/photonmap"
	"github.com/df07/go-photon-mapper/pkg/scene"
)

// stubSampler returns the same value for every draw, giving tests
// direct control over probabilistic branches
type stubSampler struct{ v float64 }

func (s stubSampler) Get1D() float64   { return s.v }
func (s stubSampler) Get2D() core.Vec2 { return core.NewVec2(s.v, s.v) }
func (s stubSampler) Get3D() core.Vec3 { return core.NewVec3(s.v, s.v, s.v) }

func TestApplyRussianRoulette(t *testing.T) {
	throughput := core.NewVec3(2, 2, 2)

	// Below the minimum bounce count nothing happens
	got, done := applyRussianRoulette(throughput, 0, stubSampler{0.99})
	if done || got != throughput {
		t.Errorf("Expected early bounces to pass through, got %v done=%t", got, done)
	}

	// Bright paths survive with probability 0.95
	_, done = applyRussianRoulette(throughput, 5, stubSampler{0.99})
	if !done {
		t.Error("Expected termination when the draw exceeds the survival probability")
	}
	got, done = applyRussianRoulette(throughput, 5, stubSampler{0.5})
	if done {
		t.Fatal("Expected survival when the draw is below the survival probability")
	}
	want := throughput.Multiply(1.0 / 0.95)
	if got.Subtract(want).Length() > 1e-12 {
		t.Errorf("Expected compensated throughput %v, got %v", want, got)
	}

	// Dim paths clamp to a 0.5 survival probability
	dim := core.NewVec3(0.1, 0.1, 0.1)
	_, done = applyRussianRoulette(dim, 5, stubSampler{0.6})
	if !done {
		t.Error("Expected dim path to terminate at the 0.5 clamp")
	}
	got, done = applyRussianRoulette(dim, 5, stubSampler{0.3})
	if done {
		t.Fatal("Expected dim path to survive a low draw")
	}
	if got.Subtract(dim.Multiply(2.0)).Length() > 1e-12 {
		t.Errorf("Expected doubled throughput %v, got %v", dim.Multiply(2.0), got)
	}
}

func TestSelectLight(t *testing.T) {
	s := scene.NewScene()
	s.AddLight(lights.NewPointLight(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1)))
	s.AddLight(lights.NewPointLight(core.NewVec3(5, 0, 0), core.NewVec3(3, 3, 3)))
	s.Preprocess()

	pt := NewPhotonTracer(s, PhotonTracerConfig{PhotonCount: 10})

	idx, prob := pt.selectLight(0.1)
	if idx != 0 || math.Abs(prob-0.25) > 1e-9 {
		t.Errorf("Expected light 0 with probability 0.25, got %d with %f", idx, prob)
	}
	idx, prob = pt.selectLight(0.9)
	if idx != 1 || math.Abs(prob-0.75) > 1e-9 {
		t.Errorf("Expected light 1 with probability 0.75, got %d with %f", idx, prob)
	}
	idx, _ = pt.selectLight(1.0)
	if idx != 1 {
		t.Errorf("Expected u=1 to pick the last light, got %d", idx)
	}
}

func TestMergeMap(t *testing.T) {
	src := photonmap.New(10)
	src.Store(core.NewVec3(1, 2, 3), core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0), core.NewVec3(1, 1, 1), 0)
	src.Store(core.NewVec3(4, 5, 6), core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0), core.NewVec3(1, 1, 1), 2)

	dst := photonmap.New(10)
	dst.Store(core.NewVec3(7, 8, 9), core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0), core.NewVec3(1, 1, 1), 1)

	mergeMap(dst, src)
	if dst.Count() != 3 {
		t.Fatalf("Expected 3 photons after merge, got %d", dst.Count())
	}
	if got := dst.PhotonAt(2).Position(); got.Subtract(core.NewVec3(1, 2, 3)).Length() > 1e-6 {
		t.Errorf("Expected merged photon at (1,2,3), got %v", got)
	}
}

func TestPhotonTracer_Cornell(t *testing.T) {
	s := scene.NewCornellScene()
	maps := NewPhotonTracer(s, PhotonTracerConfig{
		PhotonCount: 2000,
		MaxDepth:    8,
		Workers:     2,
		Seed:        1,
	}).Trace()

	if maps.Emitted != 2000 {
		t.Fatalf("Expected 2000 emitted photons, got %d", maps.Emitted)
	}
	if !maps.Global.Balanced() || !maps.Caustic.Balanced() {
		t.Fatal("Expected both maps to be balanced after tracing")
	}
	if maps.Volume != nil {
		t.Error("Expected no volume map for a scene without a medium")
	}

	// Nearly every photon's first hit is a diffuse wall
	if maps.Global.Count() < 1500 {
		t.Errorf("Expected at least 1500 surface deposits, got %d", maps.Global.Count())
	}
	if maps.Caustic.Count() >= maps.Global.Count() {
		t.Errorf("Expected caustic map (%d) to be smaller than global (%d)",
			maps.Caustic.Count(), maps.Global.Count())
	}

	if math.Abs(maps.Global.Scale()-1.0/2000.0) > 1e-15 {
		t.Errorf("Expected scale 1/2000, got %g", maps.Global.Scale())
	}

	// Every deposit lies inside the box
	bounds := maps.Global.Bounds()
	if bounds.Min.X < -1 || bounds.Min.Y < -1 || bounds.Min.Z < -1 ||
		bounds.Max.X > 556 || bounds.Max.Y > 556 || bounds.Max.Z > 556 {
		t.Errorf("Expected deposits inside the box, got bounds [%v, %v]", bounds.Min, bounds.Max)
	}
}

func TestPhotonTracer_Deterministic(t *testing.T) {
	s := scene.NewCornellScene()
	config := PhotonTracerConfig{PhotonCount: 500, MaxDepth: 6, Workers: 2, Seed: 7}

	a := NewPhotonTracer(s, config).Trace()
	b := NewPhotonTracer(s, config).Trace()

	if a.Global.Count() != b.Global.Count() {
		t.Fatalf("Expected identical runs, got %d vs %d photons", a.Global.Count(), b.Global.Count())
	}
	for i := 1; i <= a.Global.Count(); i++ {
		if *a.Global.PhotonAt(i) != *b.Global.PhotonAt(i) {
			t.Fatalf("Photon %d differs between identical runs", i)
		}
	}
}

func TestPhotonTracer_VolumeMap(t *testing.T) {
	s := scene.NewSpheresScene()
	maps := NewPhotonTracer(s, PhotonTracerConfig{
		PhotonCount: 5000,
		MaxDepth:    8,
		Workers:     2,
		Seed:        3,
	}).Trace()

	if maps.Volume == nil {
		t.Fatal("Expected a volume map for a scene with a medium")
	}
	if !maps.Volume.Balanced() {
		t.Fatal("Expected the volume map to be balanced")
	}
	if maps.Volume.Count() == 0 {
		t.Error("Expected some photons to scatter in the haze")
	}
	if maps.Global.Count() == 0 {
		t.Error("Expected surface deposits on the ground plane")
	}
}
