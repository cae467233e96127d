package photonmap

import (
	"time"

	"github.com/df07/go-photon-mapper/pkg/core"
)

// Balance permutes the photon array in place into a left-balanced
// implicit kd-tree and freezes the map. Must be called exactly once;
// queries are only legal afterwards. Balancing an empty map just flips
// the flag.
func (m *Map) Balance() {
	if m.photonCount == 0 {
		logger.Infof("photon map: no photons stored, nothing to balance")
		m.balanced = true
		return
	}
	if m.balanced {
		panic("photonmap: Balance called twice")
	}

	// Shuffle an index array instead of copying photons back and forth.
	// order[k] names the photon (by heap slot) currently at sortable
	// position k; heapPermutation[i] receives the photon that must end
	// up at heap position i.
	order := make([]int32, m.photonCount+1)
	heapPermutation := make([]int32, m.photonCount+1)
	for i := range order {
		order[i] = int32(i)
	}

	start := time.Now()
	logger.Infof("photon map: balancing %d photons (%.2f KiB)",
		m.photonCount, float64(m.photonCount+1)*photonRecordSize/1024.0)

	aabb := m.aabb
	m.balanceRecursive(order, 1, m.photonCount+1, heapPermutation, &aabb, 1)

	// heapPermutation now describes the left-balanced layout; apply it
	// to the photon array with cycle following
	m.permuteInPlace(heapPermutation)

	// Cache the node classification boundaries for O(1) traversal tests
	m.lastInnerNode = m.photonCount / 2
	m.lastRChildNode = (m.photonCount - 1) / 2
	m.balanced = true

	logger.Infof("photon map: balancing done (took %v)", time.Since(start).Round(time.Millisecond))
}

// balanceRecursive builds the subtree rooted at heapIndex from the
// sortable range order[sortStart:sortEnd]. The aabb tracks the split
// planes applied on the path from the root; its widest axis picks the
// next split, which keeps query regions compact without a full sort.
func (m *Map) balanceRecursive(order []int32, sortStart, sortEnd int,
	heapPermutation []int32, aabb *core.AABB, heapIndex int) {

	// Pivot position that yields a strictly left-balanced tree
	leftSize := leftSubtreeSize(sortEnd - sortStart)
	pivot := sortStart + leftSize

	// Split along the axis with the widest spread
	splitAxis := aabb.LongestAxis()

	// Quickselect-style partitioning until the entry at 'pivot' imposes
	// an ordering wrt. all other photons in the range
	m.quickPartition(order, sortStart, sortEnd, pivot, splitAxis)
	splitPos := float64(m.photons[order[pivot]].Pos[splitAxis])

	// Record the node and its splitting axis
	heapPermutation[heapIndex] = order[pivot]
	m.photons[order[pivot]].Axis = uint8(splitAxis)

	if pivot > sortStart {
		if pivot > sortStart+1 {
			// Two or more photons on the left: balance them within the
			// tightened bounding volume
			saved := aabb.Max.Axis(splitAxis)
			aabb.Max.SetAxis(splitAxis, splitPos)
			m.balanceRecursive(order, sortStart, pivot, heapPermutation, aabb, leftChild(heapIndex))
			aabb.Max.SetAxis(splitAxis, saved)
		} else {
			// Single photon left subtree: record it directly
			heapPermutation[leftChild(heapIndex)] = order[sortStart]
		}
	}

	if pivot < sortEnd-1 {
		if pivot < sortEnd-2 {
			saved := aabb.Min.Axis(splitAxis)
			aabb.Min.SetAxis(splitAxis, splitPos)
			m.balanceRecursive(order, pivot+1, sortEnd, heapPermutation, aabb, rightChild(heapIndex))
			aabb.Min.SetAxis(splitAxis, saved)
		} else {
			heapPermutation[rightChild(heapIndex)] = order[sortEnd-1]
		}
	}
}

// permuteInPlace applies photons[i] = old photons[perm[i]] for every
// heap index by walking permutation cycles, so balancing needs no
// second photon array. Consumes perm.
func (m *Map) permuteInPlace(perm []int32) {
	for i := 1; i <= m.photonCount; i++ {
		if perm[i] == int32(i) {
			continue
		}

		tmp := m.photons[i]
		j := i
		for {
			k := int(perm[j])
			perm[j] = int32(j)
			if k == i {
				m.photons[j] = tmp
				break
			}
			m.photons[j] = m.photons[k]
			j = k
		}
	}
}
