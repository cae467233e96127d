package material

import (
	"github.com/df07/go-photon-mapper/pkg/core"
)

// Material interface for surfaces that can scatter light particles
type Material interface {
	// Scatter generates a random scattered ray for the given hit
	Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool)

	// EvaluateBRDF evaluates the BRDF for specific incoming/outgoing directions
	EvaluateBRDF(incomingDir, outgoingDir, normal core.Vec3) core.Vec3

	// PDF returns the sampling density for the direction pair and
	// whether the lobe is a delta function (specular)
	PDF(incomingDir, outgoingDir, normal core.Vec3) (pdf float64, isDelta bool)
}

// Emitter interface for materials that emit light
type Emitter interface {
	Emit(rayIn core.Ray) core.Vec3
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Incoming    core.Ray  // The incoming ray
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // Color attenuation
	PDF         float64   // Probability density, 0 for specular lobes
}

// IsSpecular returns true if this is specular scattering (no PDF)
func (s ScatterResult) IsSpecular() bool {
	return s.PDF <= 0
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point     core.Vec3  // Point of intersection
	Normal    core.Vec3  // Surface normal at intersection
	Frame     core.Frame // Shading frame around the normal
	T         float64    // Parameter t along the ray
	FrontFace bool       // Whether ray hit the front face
	Material  Material   // Material of the hit object
}

// SetFaceNormal sets the normal vector and determines front/back face,
// and rebuilds the shading frame around the oriented normal
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Multiply(-1)
	}
	h.Frame = core.NewFrame(h.Normal)
}

// ToLocal transforms a world-space direction into the shading frame
func (h *HitRecord) ToLocal(v core.Vec3) core.Vec3 {
	return h.Frame.ToLocal(v)
}

// ToWorld transforms a shading-frame direction back to world space
func (h *HitRecord) ToWorld(v core.Vec3) core.Vec3 {
	return h.Frame.ToWorld(v)
}
