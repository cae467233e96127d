package photonmap

// guardedPartition rearranges order[start:end] so that every element
// satisfying pred1 ends up left of every element satisfying pred2, and
// returns the first index not satisfying pred1. The predicates must be
// mutually exclusive but need not be exhaustive: elements on which both
// return false may land on either side.
//
// The slack matters. Partitioning around a coordinate pivot with strict
// less-than / greater-than predicates lets the many photons that share
// the pivot coordinate (axis-aligned walls produce thousands of them)
// balance freely between the two sides instead of piling onto one,
// which keeps quickselect from going quadratic on such scenes.
//
// The element at order[end] acts as a guard: it must not satisfy pred1,
// so the left scan never runs past the range. quickPartition arranges
// this by keeping the pivot element at the right boundary.
func guardedPartition(order []int32, start, end int, pred1, pred2 func(int32) bool) int {
	end--
	for {
		for pred1(order[start]) { // guarded by order[end+1]
			start++
		}
		for end > start && pred2(order[end]) {
			end--
		}
		if start >= end {
			break
		}
		order[start], order[end] = order[end], order[start]
		start++
		end--
	}
	return start
}

// quickPartition reorders order[left:right] so that the element at
// index pivot imposes an ordering along the given axis: everything
// before it compares less-or-equal, everything after greater-or-equal
// (up to the duplicate slack described on guardedPartition). Works like
// quickselect: partition around the rightmost element, then iterate
// into whichever half still contains the pivot index.
func (m *Map) quickPartition(order []int32, left, right, pivot, axis int) {
	right--

	for right > left {
		pivotValue := m.photons[order[right]].Pos[axis]

		mid := guardedPartition(order, left, right,
			func(i int32) bool { return m.photons[i].Pos[axis] < pivotValue },
			func(i int32) bool { return m.photons[i].Pos[axis] > pivotValue },
		)

		// Move the pivot in between the two sets
		order[mid], order[right] = order[right], order[mid]

		if mid > pivot {
			right = mid - 1
		} else if mid < pivot {
			left = mid + 1
		} else {
			return
		}
	}
}

// leftSubtreeSize returns the number of nodes in the left subtree of a
// left-balanced tree with n > 1 nodes. Either the bottom level has
// enough nodes to fill the left subtree completely, or the left subtree
// absorbs whatever the partial bottom level holds.
func leftSubtreeSize(n int) int {
	// Largest power of two not exceeding n
	p := 1
	for 2*p <= n {
		p *= 2
	}

	// Nodes on the last, possibly partial level
	remaining := n - p + 1

	if 2*remaining < p {
		// Bottom level is less than half full: all of it belongs to
		// the left subtree
		p = p/2 + remaining
	}

	return p - 1
}
