// Copyright 2018 Fabian Wenzelmann
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mosaic

import (
	"container/heap"
	"sort"

	log "github.com/sirupsen/logrus"
)

// kdNode is a single node of the k-d tree, keyed on (L, a, b) with the
// index into the owning TileIndex's tile slice as payload.
type kdNode struct {
	point       Lab
	payload     int
	left, right *kdNode
	axis        int
}

// kdTree is a 3-dimensional, read-only-once-built k-d tree over L*a*b*
// points. It is built once after all tiles are known and never mutated
// afterwards. Three fixed dimensions and a query set this small don't
// warrant an external spatial-index dependency.
type kdTree struct {
	root *kdNode
	size int
}

func axisValue(p Lab, axis int) float32 {
	switch axis % 3 {
	case 0:
		return p.L
	case 1:
		return p.A
	default:
		return p.B
	}
}

// buildKDTree builds a balanced k-d tree from points, where points[i]
// carries payload i (i.e. the tile's index in the owning TileIndex).
func buildKDTree(points []Lab) *kdTree {
	if len(points) == 0 {
		return &kdTree{}
	}
	indices := make([]int, len(points))
	for i := range indices {
		indices[i] = i
	}
	root := buildKDNode(points, indices, 0)
	return &kdTree{root: root, size: len(points)}
}

func buildKDNode(points []Lab, indices []int, depth int) *kdNode {
	if len(indices) == 0 {
		return nil
	}
	axis := depth % 3
	sort.Slice(indices, func(i, j int) bool {
		return axisValue(points[indices[i]], axis) < axisValue(points[indices[j]], axis)
	})
	mid := len(indices) / 2
	node := &kdNode{
		point:   points[indices[mid]],
		payload: indices[mid],
		axis:    axis,
	}
	node.left = buildKDNode(points, indices[:mid], depth+1)
	node.right = buildKDNode(points, indices[mid+1:], depth+1)
	return node
}

// kNearestCandidate is one entry of a k-nearest-neighbor query result.
type kNearestCandidate struct {
	Payload int
	Dist2   float64
}

// kNearestMaxHeap implements a bounded max-heap over
// squared distances, so the single farthest of the current k best
// candidates can be evicted in O(log k) when a closer one is found.
type kNearestMaxHeap []kNearestCandidate

func (h kNearestMaxHeap) Len() int            { return len(h) }
func (h kNearestMaxHeap) Less(i, j int) bool  { return h[i].Dist2 > h[j].Dist2 }
func (h kNearestMaxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *kNearestMaxHeap) Push(x interface{}) { *h = append(*h, x.(kNearestCandidate)) }
func (h *kNearestMaxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// kNearest returns the k closest points to target by squared Euclidean
// distance, sorted ascending by distance. If k >= tree size, all points are
// returned sorted.
func (t *kdTree) kNearest(target Lab, k int) []kNearestCandidate {
	if t.root == nil || k <= 0 {
		return nil
	}
	h := &kNearestMaxHeap{}
	var visit func(n *kdNode)
	visit = func(n *kdNode) {
		if n == nil {
			return
		}
		d2 := n.point.Dist2(target)
		if h.Len() < k {
			heap.Push(h, kNearestCandidate{Payload: n.payload, Dist2: d2})
		} else if d2 < (*h)[0].Dist2 {
			heap.Pop(h)
			heap.Push(h, kNearestCandidate{Payload: n.payload, Dist2: d2})
		}

		axisDiff := float64(axisValue(target, n.axis) - axisValue(n.point, n.axis))
		near, far := n.left, n.right
		if axisDiff > 0 {
			near, far = n.right, n.left
		}
		visit(near)
		// only descend into the far side if it could still contain a point
		// closer than our current worst kept candidate (or we don't have k yet)
		if h.Len() < k || axisDiff*axisDiff < (*h)[0].Dist2 {
			visit(far)
		}
	}
	visit(t.root)

	res := make([]kNearestCandidate, h.Len())
	for i := len(res) - 1; i >= 0; i-- {
		res[i] = heap.Pop(h).(kNearestCandidate)
	}
	return res
}

// nearest returns the single closest point to target. It is a thin
// convenience wrapper over kNearest used by the TileIndex invariant check
// (a tile's own color must resolve back to its own id).
func (t *kdTree) nearest(target Lab) (kNearestCandidate, bool) {
	res := t.kNearest(target, 1)
	if len(res) == 0 {
		if Debug {
			log.Warn("nearest() called on empty k-d tree")
		}
		return kNearestCandidate{}, false
	}
	return res[0], true
}
