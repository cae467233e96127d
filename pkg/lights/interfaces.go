package lights

import "github.com/df07/go-photon-mapper/pkg/core"

type LightType string

const (
	LightTypeArea  LightType = "area"
	LightTypePoint LightType = "point"
)

// Light interface for emission sources that can launch light particles
type Light interface {
	Type() LightType

	// SampleEmission samples a point on the light surface and an
	// outgoing direction for light transport
	SampleEmission(samplePoint core.Vec2, sampleDirection core.Vec2) EmissionSample

	// Power returns the total radiant power of the light, used to
	// weight emission between multiple lights
	Power() core.Vec3
}

// EmissionSample contains information about a sampled emission
type EmissionSample struct {
	Point        core.Vec3 // Point on the light surface
	Normal       core.Vec3 // Surface normal at the emission point (outward facing)
	Direction    core.Vec3 // Emission direction FROM the surface
	Emission     core.Vec3 // Emitted radiance at this point and direction
	AreaPDF      float64   // PDF for position sampling (per unit area)
	DirectionPDF float64   // PDF for direction sampling (per unit solid angle)
}
