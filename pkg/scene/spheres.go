package scene

import (
	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/geometry"
	"github.com/df07/go-photon-mapper/pkg/lights"
	"github.com/df07/go-photon-mapper/pkg/material"
	"github.com/df07/go-photon-mapper/pkg/medium"
)

// NewSpheresScene creates an open scene: a ground plane with a few
// spheres under a point light, with a thin participating medium
// filling the air
func NewSpheresScene() *Scene {
	s := NewScene()

	ground := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	s.AddShape(geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), ground))

	s.AddShape(geometry.NewSphere(
		core.NewVec3(0, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))))
	s.AddShape(geometry.NewSphere(
		core.NewVec3(2.5, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.05)))
	s.AddShape(geometry.NewSphere(
		core.NewVec3(-2.5, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.8, 0.8, 0.9), 0.0)))

	s.AddLight(lights.NewPointLight(core.NewVec3(0, 8, 2), core.NewVec3(40, 40, 40)))

	// Faint haze so the volume estimator has something to gather in
	s.Medium = medium.NewMedium(
		core.NewVec3(0.01, 0.01, 0.01),
		core.NewVec3(0.002, 0.002, 0.002),
		medium.NewHenyeyGreenstein(0.3),
	)

	s.Preprocess()
	return s
}
