package integrator

import (
	"math"
	"sync"

	"github.com/df07/go-photon-mapper/internal/log"
	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/photonmap"
	"github.com/df07/go-photon-mapper/pkg/scene"
)

var logger = log.New("tracer")

// Russian roulette termination kicks in after this many bounces so
// short paths keep their full contribution
const russianRouletteMinBounces = 3

// PhotonTracerConfig controls the emission pass
type PhotonTracerConfig struct {
	PhotonCount int    // Number of photons to emit from the lights
	MaxDepth    int    // Maximum bounces per photon path
	Workers     int    // Parallel emission workers
	Seed        uint32 // Base seed, each worker derives its own stream
}

// PhotonMaps bundles the maps produced by a tracing pass
type PhotonMaps struct {
	Global  *photonmap.Map
	Caustic *photonmap.Map
	Volume  *photonmap.Map // Nil when the scene carries no medium
	Emitted int
}

// PhotonTracer emits photons from the scene's lights and deposits them
// into photon maps as they scatter through the scene
type PhotonTracer struct {
	scene  *scene.Scene
	config PhotonTracerConfig

	// Cumulative light selection probabilities by emitted power
	lightCDF []float64
}

// NewPhotonTracer creates a tracer for the given scene, filling in
// defaults for zero config fields
func NewPhotonTracer(s *scene.Scene, config PhotonTracerConfig) *PhotonTracer {
	if config.PhotonCount <= 0 {
		config.PhotonCount = 100000
	}
	if config.MaxDepth <= 0 {
		config.MaxDepth = 16
	}
	if config.Workers <= 0 {
		config.Workers = 4
	}

	pt := &PhotonTracer{scene: s, config: config}
	pt.buildLightCDF()
	return pt
}

func (pt *PhotonTracer) buildLightCDF() {
	pt.lightCDF = make([]float64, len(pt.scene.Lights))
	total := 0.0
	for i, light := range pt.scene.Lights {
		total += light.Power().Luminance()
		pt.lightCDF[i] = total
	}
	for i := range pt.lightCDF {
		pt.lightCDF[i] /= total
	}
}

// selectLight picks a light proportionally to its power and returns its
// index together with the selection probability
func (pt *PhotonTracer) selectLight(u float64) (int, float64) {
	for i, cdf := range pt.lightCDF {
		if u <= cdf {
			prob := cdf
			if i > 0 {
				prob -= pt.lightCDF[i-1]
			}
			return i, prob
		}
	}
	last := len(pt.lightCDF) - 1
	prob := pt.lightCDF[last]
	if last > 0 {
		prob -= pt.lightCDF[last-1]
	}
	return last, prob
}

// Trace runs the emission pass and returns balanced, scaled maps ready
// for gathering
func (pt *PhotonTracer) Trace() *PhotonMaps {
	if len(pt.scene.Lights) == 0 {
		panic("integrator: photon tracing needs at least one light")
	}

	workers := pt.config.Workers
	logger.Infof("emitting %d photons across %d workers", pt.config.PhotonCount, workers)

	locals := make([]*workerMaps, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		share := pt.config.PhotonCount / workers
		if w < pt.config.PhotonCount%workers {
			share++
		}

		wg.Add(1)
		go func(id, count int) {
			defer wg.Done()
			sampler := core.NewFastSampler(pt.config.Seed + uint32(id)*2654435761)
			locals[id] = pt.traceWorker(count, sampler)
		}(w, share)
	}
	wg.Wait()

	maps := &PhotonMaps{
		Global:  photonmap.New(pt.config.PhotonCount * 4),
		Caustic: photonmap.New(pt.config.PhotonCount),
		Emitted: pt.config.PhotonCount,
	}
	if pt.scene.Medium != nil {
		maps.Volume = photonmap.New(pt.config.PhotonCount)
	}

	for _, local := range locals {
		mergeMap(maps.Global, local.global)
		mergeMap(maps.Caustic, local.caustic)
		if maps.Volume != nil {
			mergeMap(maps.Volume, local.volume)
		}
	}

	logger.Infof("deposited %d surface, %d caustic photons", maps.Global.Count(), maps.Caustic.Count())

	invEmitted := 1.0 / float64(maps.Emitted)
	maps.Global.Balance()
	maps.Global.SetScale(invEmitted)
	maps.Caustic.Balance()
	maps.Caustic.SetScale(invEmitted)
	if maps.Volume != nil {
		maps.Volume.Balance()
		maps.Volume.SetScale(invEmitted)
	}

	return maps
}

// workerMaps holds one worker's private deposit buffers. Workers never
// share state, the merge happens after every goroutine is done.
type workerMaps struct {
	global  *photonmap.Map
	caustic *photonmap.Map
	volume  *photonmap.Map
}

func (pt *PhotonTracer) traceWorker(count int, sampler core.Sampler) *workerMaps {
	local := &workerMaps{
		global:  photonmap.New(count * 4),
		caustic: photonmap.New(count),
	}
	if pt.scene.Medium != nil {
		local.volume = photonmap.New(count)
	}

	for i := 0; i < count; i++ {
		pt.tracePhoton(local, sampler)
	}
	return local
}

// tracePhoton follows a single photon path from emission to
// termination, depositing at every diffuse surface interaction
func (pt *PhotonTracer) tracePhoton(local *workerMaps, sampler core.Sampler) {
	lightIdx, selectProb := pt.selectLight(sampler.Get1D())
	light := pt.scene.Lights[lightIdx]

	emission := light.SampleEmission(sampler.Get2D(), sampler.Get2D())
	cosTheta := emission.Direction.Dot(emission.Normal)
	if cosTheta <= 0 || emission.AreaPDF <= 0 || emission.DirectionPDF <= 0 {
		return
	}

	throughput := emission.Emission.Multiply(
		cosTheta / (emission.AreaPDF * emission.DirectionPDF * selectProb))

	ray := core.NewRay(emission.Point, emission.Direction)
	specularOnly := true
	sawSpecular := false

	for depth := 0; depth < pt.config.MaxDepth; depth++ {
		hit, isHit := pt.scene.BVH.Hit(ray, 0.001, math.Inf(1))
		tMax := math.Inf(1)
		if isHit {
			tMax = hit.T
		}

		// Free-flight sampling against the medium may interrupt the
		// segment before the surface
		if pt.scene.Medium != nil && !math.IsInf(tMax, 1) {
			interaction := pt.scene.Medium.SampleDistance(ray, tMax, sampler)
			if interaction.Inside {
				if local.volume != nil {
					local.volume.Store(interaction.Point, ray.Direction.Negate(),
						ray.Direction, throughput, uint16(depth))
				}

				st := pt.scene.Medium.SigmaT()
				albedo := core.NewVec3(
					pt.scene.Medium.SigmaS.X/st.X,
					pt.scene.Medium.SigmaS.Y/st.Y,
					pt.scene.Medium.SigmaS.Z/st.Z,
				)
				throughput = throughput.MultiplyVec(albedo)

				newDir, pdf := pt.scene.Medium.Phase().Sample(ray.Direction.Negate(), sampler.Get2D())
				if pdf <= 0 {
					return
				}
				ray = core.NewRay(interaction.Point, newDir)
				specularOnly = false

				var done bool
				throughput, done = applyRussianRoulette(throughput, depth, sampler)
				if done {
					return
				}
				continue
			}
		}

		if !isHit {
			return
		}

		scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
		if !didScatter {
			// Absorbed, or the path reached an emitter
			return
		}

		if scatter.IsSpecular() {
			sawSpecular = true
			throughput = throughput.MultiplyVec(scatter.Attenuation)
		} else {
			// Deposit on the diffuse surface before continuing the path
			local.global.Store(hit.Point, hit.Normal, ray.Direction, throughput, uint16(depth))
			if specularOnly && sawSpecular {
				local.caustic.Store(hit.Point, hit.Normal, ray.Direction, throughput, uint16(depth))
			}
			specularOnly = false

			cos := scatter.Scattered.Direction.Dot(hit.Normal)
			if cos <= 0 || scatter.PDF <= 0 {
				return
			}
			throughput = throughput.MultiplyVec(scatter.Attenuation.Multiply(cos / scatter.PDF))
		}

		ray = scatter.Scattered

		var done bool
		throughput, done = applyRussianRoulette(throughput, depth, sampler)
		if done {
			return
		}
	}
}

// applyRussianRoulette probabilistically terminates low-energy paths,
// compensating survivors so the estimate stays unbiased
func applyRussianRoulette(throughput core.Vec3, depth int, sampler core.Sampler) (core.Vec3, bool) {
	if depth < russianRouletteMinBounces {
		return throughput, false
	}

	survivalProb := math.Min(0.95, math.Max(0.5, throughput.Luminance()))
	if sampler.Get1D() > survivalProb {
		return throughput, true
	}
	return throughput.Multiply(1.0 / survivalProb), false
}

func mergeMap(dst, src *photonmap.Map) {
	for i := 1; i <= src.Count(); i++ {
		dst.StorePhoton(*src.PhotonAt(i))
	}
}
