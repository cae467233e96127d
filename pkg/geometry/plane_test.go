package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-photon-mapper/pkg/core"
)

func TestPlane_Hit(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), testMaterial())

	hit, isHit := plane.Hit(core.NewRay(core.NewVec3(0, 2, 0), core.NewVec3(0, -1, 0)), 0.001, 1000.0)
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}
	if math.Abs(hit.T-2.0) > 1e-9 {
		t.Errorf("Expected t=2, got t=%f", hit.T)
	}
	if !hit.FrontFace {
		t.Error("Expected front face for a ray against the normal")
	}
}

func TestPlane_Hit_Parallel(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), testMaterial())

	if _, isHit := plane.Hit(core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0)), 0.001, 1000.0); isHit {
		t.Error("Expected a parallel ray to miss")
	}
}

func TestPlane_BoundingBox_AxisAligned(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, 5, 0), core.NewVec3(0, 1, 0), testMaterial())
	box := plane.BoundingBox()

	if box.Max.Y-box.Min.Y > 1.0 {
		t.Errorf("Expected a thin slab around y=5, got [%v, %v]", box.Min, box.Max)
	}
	if math.Abs((box.Max.Y+box.Min.Y)/2-5.0) > 1e-9 {
		t.Errorf("Expected slab centered at y=5, got [%f, %f]", box.Min.Y, box.Max.Y)
	}
}
