package integrator

import (
	"math"

	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/material"
	"github.com/df07/go-photon-mapper/pkg/medium"
	"github.com/df07/go-photon-mapper/pkg/photonmap"
	"github.com/df07/go-photon-mapper/pkg/scene"
)

// GatherConfig controls the radiance estimation pass
type GatherConfig struct {
	GatherRadius     float64 // Search radius for surface estimates
	GatherCount      int     // Photons per surface estimate
	MaxSpecularDepth int     // Bounce budget for mirror reflections
}

// GatherIntegrator evaluates outgoing radiance at camera hits by
// density estimation over the photon maps, following specular chains
// by recursion. This is the second pass of the classic two-pass
// algorithm.
type GatherIntegrator struct {
	scene  *scene.Scene
	maps   *PhotonMaps
	config GatherConfig
}

// NewGatherIntegrator creates a gather pass over previously traced maps
func NewGatherIntegrator(s *scene.Scene, maps *PhotonMaps, config GatherConfig) *GatherIntegrator {
	if config.GatherRadius <= 0 {
		config.GatherRadius = 1.0
	}
	if config.GatherCount <= 0 {
		config.GatherCount = 100
	}
	if config.MaxSpecularDepth <= 0 {
		config.MaxSpecularDepth = 8
	}
	return &GatherIntegrator{scene: s, maps: maps, config: config}
}

// mediumPhase adapts the medium package's richer phase interface to the
// read-only view the volume estimator needs
type mediumPhase struct {
	m *medium.Medium
}

func (a mediumPhase) Phase() photonmap.PhaseFunction {
	return a.m.Phase()
}

// Li returns the radiance arriving along the ray
func (g *GatherIntegrator) Li(ray core.Ray, sampler core.Sampler) core.Vec3 {
	return g.li(ray, sampler, 0)
}

func (g *GatherIntegrator) li(ray core.Ray, sampler core.Sampler, specularDepth int) core.Vec3 {
	hit, isHit := g.scene.BVH.Hit(ray, 0.001, math.Inf(1))
	if !isHit {
		return core.Vec3{}
	}

	radiance := g.surfaceRadiance(ray, hit, sampler, specularDepth)

	// In a participating medium the surface term is attenuated and
	// in-scattered light is added along the camera segment
	if g.scene.Medium != nil && g.maps.Volume != nil {
		radiance = radiance.MultiplyVec(g.scene.Medium.Transmittance(hit.T))
		radiance = radiance.Add(g.inscatter(ray, hit.T, sampler))
	}

	return radiance
}

func (g *GatherIntegrator) surfaceRadiance(ray core.Ray, hit *material.HitRecord, sampler core.Sampler, specularDepth int) core.Vec3 {
	if emitter, ok := hit.Material.(material.Emitter); ok {
		return emitter.Emit(ray)
	}

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if didScatter && scatter.IsSpecular() {
		if specularDepth >= g.config.MaxSpecularDepth {
			return core.Vec3{}
		}
		return g.li(scatter.Scattered, sampler, specularDepth+1).MultiplyVec(scatter.Attenuation)
	}

	its := photonmap.Intersection{
		Point:         hit.Point,
		ShadingNormal: hit.Normal,
		Frame:         hit.Frame,
		OutgoingDir:   ray.Direction.Negate(),
		BSDF:          hit.Material,
	}

	radiance := g.maps.Global.EstimateRadianceFiltered(its, g.config.GatherRadius, g.config.GatherCount)
	if g.maps.Caustic.Count() > 0 {
		radiance = radiance.Add(
			g.maps.Caustic.EstimateRadianceFiltered(its, g.config.GatherRadius, g.config.GatherCount))
	}
	return radiance
}

// inscatter ray-marches the camera segment, estimating in-scattered
// radiance from the volume map at jittered sample points
func (g *GatherIntegrator) inscatter(ray core.Ray, tMax float64, sampler core.Sampler) core.Vec3 {
	const steps = 8
	stepSize := tMax / steps

	var result core.Vec3
	for i := 0; i < steps; i++ {
		t := (float64(i) + sampler.Get1D()) * stepSize
		point := ray.At(t)

		estimate := g.maps.Volume.EstimateVolumeRadiance(
			core.NewRay(point, ray.Direction),
			g.config.GatherRadius, g.config.GatherCount,
			mediumPhase{g.scene.Medium})

		// The estimate is already the scattering source term, so each
		// step contributes source times transmittance times length
		result = result.Add(
			estimate.MultiplyVec(g.scene.Medium.Transmittance(t)).Multiply(stepSize))
	}
	return result
}
