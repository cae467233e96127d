package photonmap

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/df07/go-photon-mapper/pkg/core"
)

const invPi = 1.0 / math.Pi

// BSDF evaluates surface scattering for a pair of world-space
// directions. Materials satisfy this interface; the map never needs to
// know anything else about them.
type BSDF interface {
	EvaluateBRDF(incomingDir, outgoingDir, normal core.Vec3) core.Vec3
}

// PhaseFunction evaluates directional scattering in a participating
// medium for a pair of world-space directions
type PhaseFunction interface {
	Eval(wi, wo core.Vec3) float64
}

// Medium exposes the phase function of a participating medium
type Medium interface {
	Phase() PhaseFunction
}

// Intersection carries the shading geometry the radiance estimators
// consume: the query point, its shading frame, the direction toward the
// viewer and the surface BSDF.
type Intersection struct {
	Point         core.Vec3
	ShadingNormal core.Vec3
	Frame         core.Frame
	OutgoingDir   core.Vec3 // Toward the viewer, world space
	BSDF          BSDF
}

// EstimateIrradiance computes the irradiance at a surface point with
// normal n by summing the power of the nearest photons arriving on the
// same side and dividing by the area of the projected search disc.
func (m *Map) EstimateIrradiance(p, n core.Vec3, searchRadius float64, maxPhotons int) core.Vec3 {
	distSquared := searchRadius * searchRadius
	results := make([]SearchResult, maxPhotons+1)
	resultCount := m.NNSearch(p, &distSquared, maxPhotons, results)
	if resultCount == 0 || distSquared <= 0 {
		return core.Vec3{}
	}

	var result core.Vec3
	for i := 0; i < resultCount; i++ {
		photon := results[i].Photon

		// Don't use samples arriving through the opposite side of a
		// thin surface
		if photon.Direction().Dot(n) < 0 {
			result = result.Add(photon.ResolvedPower())
		}
	}

	// The surface is assumed locally flat, so the spherical search
	// region projects to a disc of the (possibly shrunken) final radius
	return result.Multiply(m.scale * invPi / distSquared)
}

// EstimateIrradianceFiltered computes irradiance like
// EstimateIrradiance but weights every contribution with Simpson's
// kernel (1 - d^2/r^2)^2, trading a little bias for much lower variance
// near the search boundary. The accumulation works directly on the
// compressed mantissa/exponent power representation and folds the
// per-channel products with vectorized dot kernels.
func (m *Map) EstimateIrradianceFiltered(p, n core.Vec3, searchRadius float64, maxPhotons int) core.Vec3 {
	distSquared := searchRadius * searchRadius
	results := make([]SearchResult, maxPhotons+1)
	resultCount := m.NNSearch(p, &distSquared, maxPhotons, results)
	if resultCount == 0 || distSquared <= 0 {
		return core.Vec3{}
	}

	weights := make([]float64, resultCount)
	channels := make([]float64, 3*resultCount)
	red := channels[:resultCount]
	green := channels[resultCount : 2*resultCount]
	blue := channels[2*resultCount:]

	for i := 0; i < resultCount; i++ {
		photon := results[i].Photon
		if photon.Direction().Dot(n) >= 0 {
			continue // opposite side of a thin surface; weight stays 0
		}

		sqrTerm := 1.0 - float64(results[i].DistSquared)/distSquared
		weights[i] = sqrTerm * sqrTerm

		exp := expTable[photon.Power[3]]
		red[i] = float64(photon.Power[0]) * exp
		green[i] = float64(photon.Power[1]) * exp
		blue[i] = float64(photon.Power[2]) * exp
	}

	result := core.NewVec3(
		floats.Dot(weights, red),
		floats.Dot(weights, green),
		floats.Dot(weights, blue),
	)

	// The kernel integrates to (pi r^2)/3 over the disc, hence the
	// extra factor of three relative to the unfiltered estimate
	return result.Multiply(m.scale * 3 * invPi / distSquared)
}

// EstimateRadianceFiltered computes outgoing radiance at an
// intersection by running every nearby photon through the surface BSDF,
// weighted with Simpson's kernel.
func (m *Map) EstimateRadianceFiltered(its Intersection, searchRadius float64, maxPhotons int) core.Vec3 {
	distSquared := searchRadius * searchRadius
	results := make([]SearchResult, maxPhotons+1)
	resultCount := m.NNSearch(its.Point, &distSquared, maxPhotons, results)
	if resultCount == 0 || distSquared <= 0 {
		return core.Vec3{}
	}

	var result core.Vec3
	for i := 0; i < resultCount; i++ {
		photon := results[i].Photon

		wi := photon.Direction().Negate()

		sqrTerm := 1.0 - float64(results[i].DistSquared)/distSquared
		weight := sqrTerm * sqrTerm

		fr := its.BSDF.EvaluateBRDF(wi, its.OutgoingDir, its.ShadingNormal)
		result = result.Add(photon.ResolvedPower().MultiplyVec(fr).Multiply(weight))
	}

	return result.Multiply(m.scale * 3 * invPi / distSquared)
}

// EstimateRadianceRaw accumulates unnormalized radiance from every
// photon inside the fixed search radius, walking the tree directly
// instead of materializing a result buffer. Photons deeper than
// maxDepth, photons whose normal deviates too far from the shading
// normal, and grazing arrivals are rejected. Contributions are
// evaluated under importance transport (query directions swapped) with
// the shading-normal non-symmetry correction applied. Returns the
// number of accepted photons; the caller owns all normalization,
// including the map scale.
func (m *Map) EstimateRadianceRaw(its Intersection, searchRadius float64, result *core.Vec3, maxDepth int) int {
	if !m.balanced {
		panic("photonmap: EstimateRadianceRaw on an unbalanced map")
	}
	*result = core.Vec3{}
	if m.photonCount == 0 {
		return 0
	}

	pos := [3]float32{float32(its.Point.X), float32(its.Point.Y), float32(its.Point.Z)}
	var stack [maxTreeDepth]int
	index, stackPos, resultCount := 1, 1, 0
	distSquared := float32(searchRadius * searchRadius)
	stack[0] = 0

	for index > 0 {
		photon := &m.photons[index]

		if m.isInnerNode(index) {
			distToPlane := pos[photon.Axis] - photon.Pos[photon.Axis]
			searchBoth := distToPlane*distToPlane <= distSquared

			if distToPlane > 0 {
				if m.hasRightChild(index) {
					if searchBoth {
						stack[stackPos] = leftChild(index)
						stackPos++
					}
					index = rightChild(index)
				} else if searchBoth {
					index = leftChild(index)
				} else {
					stackPos--
					index = stack[stackPos]
				}
			} else {
				if searchBoth && m.hasRightChild(index) {
					stack[stackPos] = rightChild(index)
					stackPos++
				}
				index = leftChild(index)
			}
		} else {
			stackPos--
			index = stack[stackPos]
		}

		if photon.DistanceSquared(&pos) < distSquared {
			photonNormal := photon.SurfaceNormal()
			wiWorld := photon.Direction().Negate()

			if int(photon.Depth) > maxDepth ||
				photonNormal.Dot(its.ShadingNormal) < 0.1 ||
				photonNormal.Dot(wiWorld) < 1e-2 {
				continue
			}

			wiLocal := its.Frame.ToLocal(wiWorld)

			// Importance transport: evaluate the BSDF with the query
			// directions swapped, then correct for the non-symmetry
			// introduced by shading normals
			fr := its.BSDF.EvaluateBRDF(its.OutgoingDir, wiWorld, its.ShadingNormal)
			correction := math.Abs(core.CosTheta(wiLocal) / photonNormal.Dot(wiWorld))

			*result = result.Add(photon.ResolvedPower().MultiplyVec(fr).Multiply(correction))
			resultCount++
		}
	}

	return resultCount
}

// EstimateVolumeRadiance computes in-scattered radiance at a point
// inside a participating medium by running nearby volume photons
// through the medium's phase function and normalizing by the search
// ball volume.
func (m *Map) EstimateVolumeRadiance(ray core.Ray, searchRadius float64, maxPhotons int, med Medium) core.Vec3 {
	distSquared := searchRadius * searchRadius
	results := make([]SearchResult, maxPhotons+1)
	resultCount := m.NNSearch(ray.Origin, &distSquared, maxPhotons, results)
	if resultCount == 0 || distSquared <= 0 {
		return core.Vec3{}
	}

	phase := med.Phase()
	wo := ray.Direction.Negate()

	var result core.Vec3
	for i := 0; i < resultCount; i++ {
		photon := results[i].Photon
		wi := photon.Direction().Negate()
		result = result.Add(photon.ResolvedPower().Multiply(phase.Eval(wi, wo)))
	}

	volFactor := (4.0 / 3.0) * math.Pi * distSquared * math.Sqrt(distSquared)
	return result.Multiply(m.scale / volFactor)
}
