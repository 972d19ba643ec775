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
	"image"

	log "github.com/sirupsen/logrus"
)

// GreedyPlacer fills an empty Grid cell by cell in row-major order, scoring
// each candidate tile by color distance plus an adjacency penalty and
// respecting the usage cap and no-duplicate-adjacent constraints.
//
// Alpha is the adjacency-penalty weight α >= 0; it is not scale-invariant
// (see AdjacencyCost), so callers tune it for their tile library. Candidates
// is the number of nearest tiles queried per cell (K); a value <= 0 means
// "as many as the index has", capped at 100.
type GreedyPlacer struct {
	Index      *TileIndex
	DB         *SimilarityDatabase
	Usage      *UsageTracker
	Alpha      float64
	Candidates int
	cost       *AdjacencyCost
}

// NewGreedyPlacer returns a GreedyPlacer with its candidate pool defaulted
// to min(index size, 100).
func NewGreedyPlacer(index *TileIndex, db *SimilarityDatabase, usage *UsageTracker, alpha float64) *GreedyPlacer {
	k := index.Len()
	if k > 100 {
		k = 100
	}
	return &GreedyPlacer{
		Index:      index,
		DB:         db,
		Usage:      usage,
		Alpha:      alpha,
		Candidates: k,
		cost:       NewAdjacencyCost(db),
	}
}

// noDuplicateAdjacent reports whether placing path at (x, y) would make two
// 4-adjacent cells hold the same path.
func noDuplicateAdjacent(g *Grid, path string, x, y int) bool {
	for _, n := range g.Neighbors4(x, y) {
		if g.Filled(n.X, n.Y) && g.Get(n.X, n.Y) == path {
			return false
		}
	}
	return true
}

// score is the composite score S(t) = d_color(t) + α·P_adj(t, x, y) for
// candidate c at (x, y).
func (p *GreedyPlacer) score(g *Grid, c NearestCandidate, x, y int) float64 {
	path := p.Index.Tile(c.TileIndex).Path
	return c.Dist2 + p.Alpha*p.cost.CellCost(g, path, x, y)
}

// Place fills every cell of g in row-major order, querying the k-d tree for
// the K nearest tiles to each cell's target color and picking the candidate
// minimizing the composite score subject to the usage cap and
// no-duplicate-adjacent constraint. regionColor returns the average L*a*b*
// color of the target region backing cell (x, y); callers pass a function
// rather than an image.Image so tests can exercise the placer without real
// images (a RegionSampler's Lab method is the production implementation).
func (p *GreedyPlacer) Place(g *Grid, regionColor func(x, y int) Lab) {
	n := p.Index.Len()
	if n == 0 {
		log.Warn("Greedy placer: tile library is empty, grid left unfilled")
		return
	}
	k := p.Candidates
	if k <= 0 || k > n {
		k = n
		if k > 100 {
			k = 100
		}
	}

	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			target := regionColor(x, y)
			p.placeCell(g, target, x, y, k)
		}
	}
}

func (p *GreedyPlacer) placeCell(g *Grid, target Lab, x, y, k int) {
	candidates := p.Index.KNearest(target, k)

	// tier 1: full constraints (usage cap + no duplicate adjacent)
	if best, ok := p.bestCandidate(g, candidates, x, y, true); ok {
		p.commit(g, best, x, y)
		return
	}

	// tier 2a: reset usage tracker, keep only no-duplicate-adjacent
	log.WithField("cell", image.Pt(x, y)).Debug("No candidate satisfies usage cap, resetting usage tracker")
	p.Usage.Reset()
	if best, ok := p.bestCandidate(g, candidates, x, y, true); ok {
		p.commit(g, best, x, y)
		return
	}

	// tier 2b: global nearest tile by color, bypassing both constraints
	log.WithField("cell", image.Pt(x, y)).Warn("No candidate satisfies the adjacency constraint, placing the global nearest tile unconditionally")
	if nearest, ok := p.Index.Nearest(target); ok {
		p.commit(g, nearest, x, y)
		return
	}

	// tier 2c: empty library, already handled by the caller, but defensive
	log.WithField("cell", image.Pt(x, y)).Warn("No tile available at all, leaving cell empty")
}

// bestCandidate scans candidates and returns the one minimizing the
// composite score, honoring the usage cap and (if enforceAdjacent) the
// no-duplicate-adjacent rule.
func (p *GreedyPlacer) bestCandidate(g *Grid, candidates []NearestCandidate, x, y int, enforceAdjacent bool) (NearestCandidate, bool) {
	bestScore := 0.0
	var best NearestCandidate
	found := false
	for _, c := range candidates {
		path := p.Index.Tile(c.TileIndex).Path
		if !p.Usage.Allows(path) {
			continue
		}
		if enforceAdjacent && !noDuplicateAdjacent(g, path, x, y) {
			continue
		}
		s := p.score(g, c, x, y)
		if !found || s < bestScore {
			bestScore = s
			best = c
			found = true
		}
	}
	return best, found
}

func (p *GreedyPlacer) commit(g *Grid, c NearestCandidate, x, y int) {
	path := p.Index.Tile(c.TileIndex).Path
	p.Usage.Record(path)
	g.Set(x, y, path)
}
