package photonmap

import (
	"math/rand"
	"testing"

	"github.com/df07/go-photon-mapper/pkg/core"
)

func TestLeftSubtreeSize(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{2, 1}, {3, 1}, {4, 2}, {5, 3}, {6, 3}, {7, 3},
		{8, 4}, {9, 5}, {10, 6}, {11, 7}, {12, 7}, {15, 7}, {16, 8},
	}
	for _, tt := range tests {
		if got := leftSubtreeSize(tt.n); got != tt.want {
			t.Errorf("leftSubtreeSize(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestQuickPartition_OrdersAroundPivot(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := New(100)
	storeRandomPhotons(m, 100, rng)

	order := make([]int32, m.Count()+1)
	for i := range order {
		order[i] = int32(i)
	}

	for _, pivot := range []int{1, 25, 50, 99, 100} {
		for axis := 0; axis < 3; axis++ {
			for i := range order {
				order[i] = int32(i)
			}
			m.quickPartition(order, 1, m.Count()+1, pivot, axis)

			pivotValue := m.photons[order[pivot]].Pos[axis]
			for i := 1; i < pivot; i++ {
				if m.photons[order[i]].Pos[axis] > pivotValue {
					t.Fatalf("pivot %d axis %d: order[%d] has coordinate %f right of pivot %f",
						pivot, axis, i, m.photons[order[i]].Pos[axis], pivotValue)
				}
			}
			for i := pivot + 1; i <= m.Count(); i++ {
				if m.photons[order[i]].Pos[axis] < pivotValue {
					t.Fatalf("pivot %d axis %d: order[%d] has coordinate %f left of pivot %f",
						pivot, axis, i, m.photons[order[i]].Pos[axis], pivotValue)
				}
			}
		}
	}
}

func TestQuickPartition_ManyDuplicates(t *testing.T) {
	// Axis-aligned walls deposit thousands of photons sharing one
	// coordinate. The relaxed predicates must still terminate and
	// produce a valid ordering.
	m := New(64)
	for i := 0; i < 64; i++ {
		x := 0.0
		if i%8 == 0 {
			x = 1.0
		}
		m.Store(core.NewVec3(x, float64(i), 0), core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1), core.NewVec3(1, 1, 1), 0)
	}

	order := make([]int32, m.Count()+1)
	for i := range order {
		order[i] = int32(i)
	}

	pivot := 32
	m.quickPartition(order, 1, m.Count()+1, pivot, 0)

	pivotValue := m.photons[order[pivot]].Pos[0]
	for i := 1; i <= m.Count(); i++ {
		v := m.photons[order[i]].Pos[0]
		if i < pivot && v > pivotValue {
			t.Fatalf("order[%d]=%f right of pivot %f", i, v, pivotValue)
		}
		if i > pivot && v < pivotValue {
			t.Fatalf("order[%d]=%f left of pivot %f", i, v, pivotValue)
		}
	}
}

func TestGuardedPartition_Slack(t *testing.T) {
	// The entries double as values; order[8] is the guard and must not
	// satisfy the first predicate
	order := []int32{0, 5, 3, 3, 7, 1, 3, 9, 3}

	mid := guardedPartition(order, 1, len(order)-1,
		func(i int32) bool { return i < 3 },
		func(i int32) bool { return i > 3 },
	)

	for i := 1; i < mid; i++ {
		if order[i] > 3 {
			t.Errorf("Element %d left of split is %d, expected <= 3", i, order[i])
		}
	}
	for i := mid; i < len(order)-1; i++ {
		if order[i] < 3 {
			t.Errorf("Element %d right of split is %d, expected >= 3", i, order[i])
		}
	}
}
