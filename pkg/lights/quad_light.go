package lights

import (
	"math"

	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/geometry"
	"github.com/df07/go-photon-mapper/pkg/material"
)

// QuadLight represents a rectangular area light emitting from its
// front face
type QuadLight struct {
	*geometry.Quad           // Embed quad for hit testing
	Emission       core.Vec3 // Emitted radiance
}

// NewQuadLight creates a new rectangular area light
func NewQuadLight(corner, u, v core.Vec3, emission core.Vec3) *QuadLight {
	return &QuadLight{
		Quad:     geometry.NewQuad(corner, u, v, material.NewEmissive(emission)),
		Emission: emission,
	}
}

func (ql *QuadLight) Type() LightType {
	return LightTypeArea
}

// SampleEmission samples a point uniformly on the quad surface and a
// cosine-weighted direction above it
func (ql *QuadLight) SampleEmission(samplePoint core.Vec2, sampleDirection core.Vec2) EmissionSample {
	point := ql.Corner.Add(ql.U.Multiply(samplePoint.X)).Add(ql.V.Multiply(samplePoint.Y))
	emissionDir := core.SampleCosineHemisphere(ql.Normal, sampleDirection)

	cosTheta := emissionDir.Dot(ql.Normal)

	return EmissionSample{
		Point:        point,
		Normal:       ql.Normal,
		Direction:    emissionDir,
		Emission:     ql.Emission,
		AreaPDF:      1.0 / ql.Area(),
		DirectionPDF: cosTheta / math.Pi,
	}
}

// Power returns the total radiant power of a one-sided Lambertian
// emitter: pi * A * L
func (ql *QuadLight) Power() core.Vec3 {
	return ql.Emission.Multiply(math.Pi * ql.Area())
}
