package scene

import (
	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/geometry"
	"github.com/df07/go-photon-mapper/pkg/lights"
	"github.com/df07/go-photon-mapper/pkg/medium"
)

// Scene holds the shapes and lights to trace photons through. Call
// Preprocess after the last AddShape to build the acceleration
// structure; tracing without it panics on a nil BVH.
type Scene struct {
	Shapes []geometry.Shape
	Lights []lights.Light
	Medium *medium.Medium // Optional participating medium filling the scene
	BVH    *geometry.BVH
}

// NewScene creates an empty scene
func NewScene() *Scene {
	return &Scene{}
}

// AddShape adds a shape to the scene
func (s *Scene) AddShape(shape geometry.Shape) {
	s.Shapes = append(s.Shapes, shape)
}

// AddLight adds a light to the scene. Area lights are also shapes and
// must be added with AddShape separately to be hittable.
func (s *Scene) AddLight(light lights.Light) {
	s.Lights = append(s.Lights, light)
}

// AddQuadLight adds an area light as both emitter and hittable shape
func (s *Scene) AddQuadLight(light *lights.QuadLight) {
	s.AddShape(light.Quad)
	s.AddLight(light)
}

// Preprocess builds the BVH over the scene's shapes
func (s *Scene) Preprocess() {
	s.BVH = geometry.NewBVH(s.Shapes)
}

// TotalLightPower sums the radiant power of all lights in the scene
func (s *Scene) TotalLightPower() core.Vec3 {
	var total core.Vec3
	for _, light := range s.Lights {
		total = total.Add(light.Power())
	}
	return total
}
