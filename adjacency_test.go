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
	"fmt"
	"math/rand"
	"testing"
)

func randomFilledGrid(t *testing.T, w, h int, db *SimilarityDatabase, paths []string, seed int64) *Grid {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	g := NewGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Set(x, y, paths[rng.Intn(len(paths))])
		}
	}
	return g
}

func buildRandomDB(t *testing.T, n int) (*SimilarityDatabase, []string) {
	t.Helper()
	rng := rand.New(rand.NewSource(99))
	db := NewSimilarityDatabase(nil)
	paths := make([]string, n)
	for i := 0; i < n; i++ {
		path := fmt.Sprintf("p%02d.png", i)
		paths[i] = path
		lab := Lab{L: float32(rng.Float64() * 100), A: float32(rng.Float64()*256 - 128), B: float32(rng.Float64()*256 - 128)}
		if err := db.Add(path, lab); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	db.Build()
	return db, paths
}

// On a random 5x5 grid, AdjacencyCost.SwapDelta must agree with the
// difference of two full TotalCost recomputations, for every cell pair.
func TestSwapDeltaMatchesRecomputation(t *testing.T) {
	db, paths := buildRandomDB(t, 8)
	cost := NewAdjacencyCost(db)
	g := randomFilledGrid(t, 5, 5, db, paths, 7)

	before := cost.TotalCost(g)
	for y1 := 0; y1 < g.H; y1++ {
		for x1 := 0; x1 < g.W; x1++ {
			for y2 := 0; y2 < g.H; y2++ {
				for x2 := 0; x2 < g.W; x2++ {
					if x1 == x2 && y1 == y2 {
						continue
					}
					delta := cost.SwapDelta(g, x1, y1, x2, y2)

					g.Swap(x1, y1, x2, y2)
					after := cost.TotalCost(g)
					g.Swap(x1, y1, x2, y2) // undo

					wantDelta := after - before
					if diff := delta - wantDelta; diff > 1e-9 || diff < -1e-9 {
						t.Fatalf("SwapDelta(%d,%d,%d,%d) = %v, want %v (from full recomputation)",
							x1, y1, x2, y2, delta, wantDelta)
					}
				}
			}
		}
	}
}

func TestSwapDeltaSamePositionIsZero(t *testing.T) {
	db, paths := buildRandomDB(t, 4)
	cost := NewAdjacencyCost(db)
	g := randomFilledGrid(t, 3, 3, db, paths, 3)
	if d := cost.SwapDelta(g, 1, 1, 1, 1); d != 0 {
		t.Errorf("SwapDelta with identical position = %v, want 0", d)
	}
}

func TestSwapDeltaEmptyCellIsZero(t *testing.T) {
	db, paths := buildRandomDB(t, 4)
	cost := NewAdjacencyCost(db)
	g := randomFilledGrid(t, 3, 3, db, paths, 3)
	g.Set(0, 0, "")
	if d := cost.SwapDelta(g, 0, 0, 1, 1); d != 0 {
		t.Errorf("SwapDelta with an empty cell = %v, want 0", d)
	}
}

func TestCellCostEmptyPathIsZero(t *testing.T) {
	db, _ := buildRandomDB(t, 4)
	cost := NewAdjacencyCost(db)
	g := NewGrid(3, 3)
	if c := cost.CellCost(g, "", 1, 1); c != 0 {
		t.Errorf("CellCost with empty path = %v, want 0", c)
	}
}
