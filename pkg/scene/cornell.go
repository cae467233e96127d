package scene

import (
	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/geometry"
	"github.com/df07/go-photon-mapper/pkg/lights"
	"github.com/df07/go-photon-mapper/pkg/material"
)

// NewCornellScene creates the classic Cornell box: a 555-unit cube
// with colored side walls, two spheres and a ceiling area light
func NewCornellScene() *Scene {
	s := NewScene()

	white := material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	red := material.NewLambertian(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewLambertian(core.NewVec3(0.12, 0.45, 0.15))

	// Floor, ceiling and back wall
	s.AddShape(geometry.NewQuad(
		core.NewVec3(0, 0, 0), core.NewVec3(555, 0, 0), core.NewVec3(0, 0, 555), white))
	s.AddShape(geometry.NewQuad(
		core.NewVec3(0, 555, 0), core.NewVec3(555, 0, 0), core.NewVec3(0, 0, 555), white))
	s.AddShape(geometry.NewQuad(
		core.NewVec3(0, 0, 555), core.NewVec3(555, 0, 0), core.NewVec3(0, 555, 0), white))

	// Side walls
	s.AddShape(geometry.NewQuad(
		core.NewVec3(555, 0, 0), core.NewVec3(0, 555, 0), core.NewVec3(0, 0, 555), green))
	s.AddShape(geometry.NewQuad(
		core.NewVec3(0, 0, 0), core.NewVec3(0, 555, 0), core.NewVec3(0, 0, 555), red))

	// A mirror sphere and a diffuse sphere
	s.AddShape(geometry.NewSphere(
		core.NewVec3(185, 90, 160), 90, material.NewMetal(core.NewVec3(0.9, 0.9, 0.9), 0.0)))
	s.AddShape(geometry.NewSphere(
		core.NewVec3(370, 90, 350), 90, white))

	// Ceiling light, oriented so u cross v points down into the box
	s.AddQuadLight(lights.NewQuadLight(
		core.NewVec3(213, 554, 227),
		core.NewVec3(130, 0, 0),
		core.NewVec3(0, 0, 105),
		core.NewVec3(15, 15, 15),
	))

	s.Preprocess()
	return s
}
