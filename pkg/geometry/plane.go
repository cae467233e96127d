package geometry

import (
	"math"

	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/material"
)

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point    core.Vec3
	Normal   core.Vec3
	Material material.Material
}

// NewPlane creates a new plane
func NewPlane(point, normal core.Vec3, mat material.Material) *Plane {
	return &Plane{Point: point, Normal: normal.Normalize(), Material: mat}
}

// Hit tests if a ray intersects with the plane
func (p *Plane) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	denominator := ray.Direction.Dot(p.Normal)

	// Parallel rays never hit
	if math.Abs(denominator) < 1e-8 {
		return nil, false
	}

	t := p.Point.Subtract(ray.Origin).Dot(p.Normal) / denominator
	if t < tMin || t > tMax {
		return nil, false
	}

	hit := &material.HitRecord{
		T:        t,
		Point:    ray.At(t),
		Material: p.Material,
	}
	hit.SetFaceNormal(ray, p.Normal)

	return hit, true
}

// BoundingBox returns a bounding box for this plane. Axis-aligned
// planes get a thin slab so the BVH can still cull against them.
func (p *Plane) BoundingBox() core.AABB {
	const largeValue = 1e6
	const epsilon = 0.001

	min := core.NewVec3(-largeValue, -largeValue, -largeValue)
	max := core.NewVec3(largeValue, largeValue, largeValue)

	for axis := 0; axis < 3; axis++ {
		if math.Abs(math.Abs(p.Normal.Axis(axis))-1.0) < 1e-9 {
			v := p.Point.Axis(axis)
			min.SetAxis(axis, v-epsilon)
			max.SetAxis(axis, v+epsilon)
			break
		}
	}

	return core.NewAABB(min, max)
}
