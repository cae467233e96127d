package photonmap

import (
	"math"

	"github.com/df07/go-photon-mapper/pkg/core"
)

// Photon is a fixed-size light sample deposited by the particle tracer.
// Directions are stored as two polar bytes indexing precomputed
// unit-sphere tables, and power as a shared-exponent RGBE quadruple, so
// a record stays small enough to store tens of millions of them.
type Photon struct {
	Pos    [3]float32 // World-space position
	Theta  uint8      // Compressed incident direction, polar angle
	Phi    uint8      // Compressed incident direction, azimuth
	ThetaN uint8      // Compressed surface normal, polar angle
	PhiN   uint8      // Compressed surface normal, azimuth
	Power  [4]uint8   // RGBE radiant power
	Depth  uint16     // Bounce index at deposit time
	Axis   uint8      // Split axis at this node, written during balancing
}

// Precomputed sphere tables for the polar byte codec and the RGBE
// exponent decode table. 256 bins keep the worst-case direction error
// under two degrees.
var (
	cosThetaTable [256]float64
	sinThetaTable [256]float64
	cosPhiTable   [256]float64
	sinPhiTable   [256]float64
	expTable      [256]float64
)

func init() {
	for i := 0; i < 256; i++ {
		angle := float64(i) * math.Pi / 256.0
		cosThetaTable[i] = math.Cos(angle)
		sinThetaTable[i] = math.Sin(angle)
		cosPhiTable[i] = math.Cos(2.0 * angle)
		sinPhiTable[i] = math.Sin(2.0 * angle)
		expTable[i] = math.Ldexp(1.0, i-(128+8))
	}
	expTable[0] = 0
}

// NewPhoton creates a photon from uncompressed world-space quantities.
// dir points toward the surface (the direction the light travelled in),
// normal is the surface normal at the deposit point.
func NewPhoton(pos, normal, dir, power core.Vec3, depth uint16) Photon {
	p := Photon{
		Pos:   [3]float32{float32(pos.X), float32(pos.Y), float32(pos.Z)},
		Depth: depth,
	}
	p.Theta, p.Phi = compressDirection(dir)
	p.ThetaN, p.PhiN = compressDirection(normal)
	p.Power = encodeRGBE(power)
	return p
}

// compressDirection quantizes a unit vector to two polar bytes
func compressDirection(d core.Vec3) (theta, phi uint8) {
	t := int(256.0 * math.Acos(clamp(d.Z, -1, 1)) / math.Pi)
	if t > 255 {
		t = 255
	}

	f := int(256.0 * math.Atan2(d.Y, d.X) / (2.0 * math.Pi))
	if f > 255 {
		f = 255
	} else if f < 0 {
		f += 256
	}

	return uint8(t), uint8(f)
}

// decompressDirection reconstructs a unit vector from two polar bytes
func decompressDirection(theta, phi uint8) core.Vec3 {
	return core.Vec3{
		X: sinThetaTable[theta] * cosPhiTable[phi],
		Y: sinThetaTable[theta] * sinPhiTable[phi],
		Z: cosThetaTable[theta],
	}
}

// encodeRGBE packs an RGB triple into Ward's shared-exponent format
func encodeRGBE(power core.Vec3) [4]uint8 {
	max := power.MaxComponent()
	if max < 1e-32 {
		return [4]uint8{0, 0, 0, 0}
	}

	mantissa, exponent := math.Frexp(max)
	scale := mantissa * 256.0 / max

	return [4]uint8{
		uint8(power.X * scale),
		uint8(power.Y * scale),
		uint8(power.Z * scale),
		uint8(exponent + 128),
	}
}

// decodeRGBE unpacks a shared-exponent quadruple back into an RGB triple
func decodeRGBE(rgbe [4]uint8) core.Vec3 {
	f := expTable[rgbe[3]]
	return core.Vec3{
		X: float64(rgbe[0]) * f,
		Y: float64(rgbe[1]) * f,
		Z: float64(rgbe[2]) * f,
	}
}

// Position returns the photon's world-space position
func (p *Photon) Position() core.Vec3 {
	return core.NewVec3(float64(p.Pos[0]), float64(p.Pos[1]), float64(p.Pos[2]))
}

// Direction returns the decompressed incident light direction
func (p *Photon) Direction() core.Vec3 {
	return decompressDirection(p.Theta, p.Phi)
}

// SurfaceNormal returns the decompressed surface normal at the deposit point
func (p *Photon) SurfaceNormal() core.Vec3 {
	return decompressDirection(p.ThetaN, p.PhiN)
}

// ResolvedPower returns the decoded radiant power
func (p *Photon) ResolvedPower() core.Vec3 {
	return decodeRGBE(p.Power)
}

// DistanceSquared returns the squared distance from the photon to a point
func (p *Photon) DistanceSquared(pos *[3]float32) float32 {
	dx := p.Pos[0] - pos[0]
	dy := p.Pos[1] - pos[1]
	dz := p.Pos[2] - pos[2]
	return dx*dx + dy*dy + dz*dz
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
