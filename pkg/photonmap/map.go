package photonmap

import (
	"fmt"

	"github.com/df07/go-photon-mapper/internal/log"
	"github.com/df07/go-photon-mapper/pkg/core"
)

var logger = log.New("photonmap")

// maxTreeDepth bounds the explicit traversal stack. A left-balanced
// tree of depth d holds at least 2^(d-1) photons, so 64 levels cover
// any photon count addressable on a 64-bit machine.
const maxTreeDepth = 64

// Map stores photons deposited by a particle-tracing pass and answers
// k-nearest-neighbour queries once balanced into an implicit left-
// balanced kd-tree. The photon array is addressed like a binary heap:
// the children of node i live at 2i and 2i+1, which is why storage is
// 1-indexed and slot 0 stays unused as a sentinel.
//
// A Map is single-writer while filling. After Balance it is immutable
// and every query is safe to run concurrently.
type Map struct {
	photons     []Photon // 1-indexed backing array, slot 0 is the sentinel
	photonCount int
	maxPhotons  int
	aabb        core.AABB
	scale       float64
	balanced    bool

	// Cached for O(1) inner-node and right-child tests during traversal
	lastInnerNode  int
	lastRChildNode int
}

// New creates an empty photon map with a fixed capacity
func New(maxPhotons int) *Map {
	return &Map{
		photons:    make([]Photon, maxPhotons+1),
		maxPhotons: maxPhotons,
		aabb:       core.EmptyAABB(),
		scale:      1.0,
	}
}

// Store deposits a photon with the given world-space position, surface
// normal, incident direction, power and bounce depth. Returns false
// without side effects once the map is full. Must not be called after
// Balance.
func (m *Map) Store(pos, normal, dir, power core.Vec3, depth uint16) bool {
	return m.StorePhoton(NewPhoton(pos, normal, dir, power, depth))
}

// StorePhoton deposits an already-compressed photon record. Used by the
// merge step when per-worker maps are folded into one.
func (m *Map) StorePhoton(photon Photon) bool {
	if m.balanced {
		panic("photonmap: Store called on a balanced map")
	}
	if m.photonCount >= m.maxPhotons {
		return false
	}

	// Keep track of the volume covered by all stored photons
	m.aabb.ExpandByPoint(photon.Position())

	m.photonCount++
	m.photons[m.photonCount] = photon

	return true
}

// Count returns the number of stored photons
func (m *Map) Count() int {
	return m.photonCount
}

// Capacity returns the maximum number of photons the map can hold
func (m *Map) Capacity() int {
	return m.maxPhotons
}

// Bounds returns the axis-aligned hull of every stored photon position
func (m *Map) Bounds() core.AABB {
	return m.aabb
}

// Balanced reports whether the map has been frozen into query phase
func (m *Map) Balanced() bool {
	return m.balanced
}

// Scale returns the global estimator scale factor
func (m *Map) Scale() float64 {
	return m.scale
}

// SetScale sets the global multiplier applied to every estimate.
// Callers set this to 1/N after emitting N particles so stored powers
// normalize into radiometric quantities.
func (m *Map) SetScale(scale float64) {
	m.scale = scale
}

// PhotonAt returns the photon stored at heap index i in [1, Count()]
func (m *Map) PhotonAt(i int) *Photon {
	return &m.photons[i]
}

func (m *Map) isInnerNode(i int) bool {
	return i <= m.lastInnerNode
}

func (m *Map) hasRightChild(i int) bool {
	return i <= m.lastRChildNode
}

func leftChild(i int) int {
	return 2 * i
}

func rightChild(i int) int {
	return 2*i + 1
}

// String returns a human-readable summary of the map
func (m *Map) String() string {
	return fmt.Sprintf("PhotonMap[photonCount=%d, maxPhotons=%d, balanced=%t, scale=%g, aabb=[%v, %v]]",
		m.photonCount, m.maxPhotons, m.balanced, m.scale, m.aabb.Min, m.aabb.Max)
}
