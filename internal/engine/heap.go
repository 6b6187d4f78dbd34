package engine

import (
	"container/heap"
	"sort"
)

// neighborHeap keeps the k best Neighbor candidates seen so far. The root is
// always the worst currently-kept candidate, so a new candidate only needs
// comparing against the root to decide whether it displaces anything.
//
// Distance is always "lower is closer" by the time it reaches this heap —
// userDistance already folds similarity methods to 1-similarity — so the
// ordering below is the same regardless of which UserMethod produced it.
type neighborHeap struct {
	k    int
	data []Neighbor
}

func newNeighborHeap(k int, isSim bool) *neighborHeap {
	_ = isSim // kept for call-site clarity; ordering doesn't depend on it post-normalisation
	return &neighborHeap{k: k, data: make([]Neighbor, 0, k)}
}

func (h *neighborHeap) Len() int { return len(h.data) }
func (h *neighborHeap) Less(i, j int) bool {
	if h.data[i].Distance != h.data[j].Distance {
		return h.data[i].Distance > h.data[j].Distance // max-heap on distance: root is worst (largest)
	}
	return h.data[i].User > h.data[j].User // worst tie: larger id sits at root
}
func (h *neighborHeap) Swap(i, j int) { h.data[i], h.data[j] = h.data[j], h.data[i] }
func (h *neighborHeap) Push(x any)    { h.data = append(h.data, x.(Neighbor)) }
func (h *neighborHeap) Pop() any {
	old := h.data
	n := len(old)
	v := old[n-1]
	h.data = old[:n-1]
	return v
}

// offer inserts n if the heap has room, or if n beats the current root.
func (h *neighborHeap) offer(n Neighbor) {
	if h.k <= 0 {
		return
	}
	if h.Len() < h.k {
		heap.Push(h, n)
		return
	}
	root := h.data[0]
	if n.Distance < root.Distance || (n.Distance == root.Distance && n.User < root.User) {
		h.data[0] = n
		heap.Fix(h, 0)
	}
}

// sorted drains the heap into ascending-distance order, with UserID
// breaking ties.
func (h *neighborHeap) sorted() []Neighbor {
	out := make([]Neighbor, len(h.data))
	copy(out, h.data)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].User < out[j].User
	})
	return out
}
