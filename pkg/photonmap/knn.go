package photonmap

import (
	"github.com/df07/go-photon-mapper/pkg/core"
)

// SearchResult is one kNN candidate: a photon and its squared distance
// to the query point
type SearchResult struct {
	DistSquared float32
	Photon      *Photon
}

// NNSearch finds up to maxSize photons within the given squared radius
// of p. Results are written into the caller-supplied buffer, which must
// have room for maxSize+1 entries (the extra slot is the transient
// insertion position while the result set runs as a max-heap). Once
// more than maxSize candidates have been seen, searchRadiusSquared is
// written back as the squared distance to the farthest accepted photon;
// otherwise it keeps its input value. It never grows. The result count
// is returned.
//
// The traversal is iterative with an explicit fixed stack, so queries
// allocate nothing and are safe to run concurrently on a balanced map.
func (m *Map) NNSearch(p core.Vec3, searchRadiusSquared *float64, maxSize int, results []SearchResult) int {
	if !m.balanced {
		panic("photonmap: NNSearch on an unbalanced map")
	}
	if m.photonCount == 0 || maxSize == 0 {
		return 0
	}

	pos := [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
	var stack [maxTreeDepth]int
	index, stackPos, fill := 1, 1, 0
	isPriorityQueue := false
	distSquared := float32(*searchRadiusSquared)
	stack[0] = 0

	for index > 0 {
		photon := &m.photons[index]

		if m.isInnerNode(index) {
			distToPlane := pos[photon.Axis] - photon.Pos[photon.Axis]

			// Does the search region overlap with both split half-spaces?
			searchBoth := distToPlane*distToPlane <= distSquared

			if distToPlane > 0 {
				// Query point lies right of the split plane, search
				// that side first
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
				// Query point lies left of the split plane, search
				// that side first
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

		// Check the photon at the visited node against the query region
		photonDistSquared := photon.DistanceSquared(&pos)
		if photonDistSquared < distSquared {
			if fill < maxSize {
				// Plain append while the buffer still has room
				results[fill] = SearchResult{photonDistSquared, photon}
				fill++
			} else {
				// Buffer exhausted: run the result set as a max-heap
				// keyed on distance from here on
				if !isPriorityQueue {
					buildMaxHeap(results[:maxSize])
					isPriorityQueue = true
				}

				// Add the new photon, remove the one farthest away
				results[maxSize] = SearchResult{photonDistSquared, photon}
				siftUp(results[:maxSize+1], maxSize)
				results[0], results[maxSize] = results[maxSize], results[0]
				siftDown(results[:maxSize], 0)

				// Tighten the search radius to the new farthest member
				distSquared = results[0].DistSquared
			}
		}
	}

	*searchRadiusSquared = float64(distSquared)
	return fill
}

// buildMaxHeap establishes the max-heap property over the whole slice
func buildMaxHeap(h []SearchResult) {
	for i := len(h)/2 - 1; i >= 0; i-- {
		siftDown(h, i)
	}
}

// siftUp restores the heap property after appending at index i
func siftUp(h []SearchResult, i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h[parent].DistSquared >= h[i].DistSquared {
			break
		}
		h[i], h[parent] = h[parent], h[i]
		i = parent
	}
}

// siftDown restores the heap property below index i
func siftDown(h []SearchResult, i int) {
	n := len(h)
	for {
		largest := i
		if l := 2*i + 1; l < n && h[l].DistSquared > h[largest].DistSquared {
			largest = l
		}
		if r := 2*i + 2; r < n && h[r].DistSquared > h[largest].DistSquared {
			largest = r
		}
		if largest == i {
			return
		}
		h[i], h[largest] = h[largest], h[i]
		i = largest
	}
}
