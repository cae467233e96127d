package lights

import (
	"math"

	"github.com/df07/go-photon-mapper/pkg/core"
)

// PointLight represents an isotropic point emitter with a given
// radiant intensity
type PointLight struct {
	Position  core.Vec3
	Intensity core.Vec3 // Radiant intensity, power per solid angle
}

// NewPointLight creates a new point light
func NewPointLight(position, intensity core.Vec3) *PointLight {
	return &PointLight{Position: position, Intensity: intensity}
}

func (pl *PointLight) Type() LightType {
	return LightTypePoint
}

// SampleEmission samples a uniform spherical emission direction. The
// position is a delta distribution, so the area PDF is one by
// convention and the normal follows the sampled direction.
func (pl *PointLight) SampleEmission(samplePoint core.Vec2, sampleDirection core.Vec2) EmissionSample {
	dir := core.SampleOnUnitSphere(sampleDirection)

	return EmissionSample{
		Point:        pl.Position,
		Normal:       dir,
		Direction:    dir,
		Emission:     pl.Intensity,
		AreaPDF:      1.0,
		DirectionPDF: 1.0 / (4.0 * math.Pi),
	}
}

// Power returns the total radiant power radiated over the full sphere
func (pl *PointLight) Power() core.Vec3 {
	return pl.Intensity.Multiply(4.0 * math.Pi)
}
