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

// AdjacencyCost computes the adjacency-similarity penalty of a Grid given a
// SimilarityDatabase. The inverse 1/(distance+1) form bounds every edge's
// penalty to (0, 1], is harshest for identical neighbors and stays finite
// even for distance 0; it is not scale-invariant, so callers tune the
// placer/refiner weight accordingly.
type AdjacencyCost struct {
	DB *SimilarityDatabase
}

// NewAdjacencyCost returns an AdjacencyCost backed by db.
func NewAdjacencyCost(db *SimilarityDatabase) *AdjacencyCost {
	return &AdjacencyCost{DB: db}
}

// edgeContribution returns 1/(sim+1) for the edge between paths a and b, or
// 0 if either is empty or the database has no similarity on record for the
// pair.
func (ac *AdjacencyCost) edgeContribution(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	sim, ok := ac.DB.Get(a, b)
	if !ok {
		return 0
	}
	return 1.0 / (sim + 1.0)
}

// CellCost returns the adjacency cost that placing tile path t at (x, y)
// would contribute, summing 1/(sim+1) over every in-bounds, filled
// 4-neighbor.
func (ac *AdjacencyCost) CellCost(g *Grid, t string, x, y int) float64 {
	if t == "" {
		return 0
	}
	var sum float64
	for _, n := range g.Neighbors4(x, y) {
		if g.Filled(n.X, n.Y) {
			sum += ac.edgeContribution(t, g.Get(n.X, n.Y))
		}
	}
	return sum
}

// TotalCost sums the adjacency cost of every distinct adjacent pair in the
// grid exactly once, by only counting each cell's right and down neighbor.
func (ac *AdjacencyCost) TotalCost(g *Grid) float64 {
	var total float64
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if !g.Filled(x, y) {
				continue
			}
			a := g.Get(x, y)
			if g.InBounds(x+1, y) && g.Filled(x+1, y) {
				total += ac.edgeContribution(a, g.Get(x+1, y))
			}
			if g.InBounds(x, y+1) && g.Filled(x, y+1) {
				total += ac.edgeContribution(a, g.Get(x, y+1))
			}
		}
	}
	return total
}

// SwapDelta returns the change in total adjacency cost that exchanging the
// contents of cells p1 and p2 would cause (new − old), computed from the
// local neighborhoods of p1 and p2 only. O(1) neighbor work is what
// makes the simulated-annealing refiner affordable.
//
// If p1 and p2 are themselves 4-adjacent, their mutual edge is invariant
// under the swap (the same two tiles still face each other, just with
// positions exchanged), so it is added to both the old and new sums and
// nets out to 0 in the delta.
func (ac *AdjacencyCost) SwapDelta(g *Grid, x1, y1, x2, y2 int) float64 {
	t1, t2 := g.Get(x1, y1), g.Get(x2, y2)
	if t1 == t2 {
		return 0
	}
	if t1 == "" || t2 == "" {
		return 0
	}

	isOther := func(n Neighbor) bool {
		return n.X == x2 && n.Y == y2
	}
	isOtherOf1 := func(n Neighbor) bool {
		return n.X == x1 && n.Y == y1
	}

	var oldCost, newCost float64

	for _, n := range g.Neighbors4(x1, y1) {
		if isOther(n) {
			continue
		}
		if !g.Filled(n.X, n.Y) {
			continue
		}
		neighborTile := g.Get(n.X, n.Y)
		oldCost += ac.edgeContribution(t1, neighborTile)
		newCost += ac.edgeContribution(t2, neighborTile)
	}
	for _, n := range g.Neighbors4(x2, y2) {
		if isOtherOf1(n) {
			continue
		}
		if !g.Filled(n.X, n.Y) {
			continue
		}
		neighborTile := g.Get(n.X, n.Y)
		oldCost += ac.edgeContribution(t2, neighborTile)
		newCost += ac.edgeContribution(t1, neighborTile)
	}

	// if p1 and p2 are themselves adjacent, their mutual contribution is
	// unchanged by the swap: add it to both sides so it cancels in the delta.
	for _, n := range g.Neighbors4(x1, y1) {
		if isOther(n) {
			mutual := ac.edgeContribution(t1, t2)
			oldCost += mutual
			newCost += mutual
		}
	}

	return newCost - oldCost
}
