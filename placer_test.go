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
	"testing"
)

// A 2x2 grid with four tiles of sharply distinct colors must place each
// tile in the region its color is closest to when the adjacency weight is
// zero.
func TestGreedyPlacerFourDistinctTiles(t *testing.T) {
	tiles := []Tile{
		{Path: "red.png", Lab: RGBToLab(RGB{220, 20, 20})},
		{Path: "green.png", Lab: RGBToLab(RGB{20, 200, 20})},
		{Path: "blue.png", Lab: RGBToLab(RGB{20, 20, 220})},
		{Path: "yellow.png", Lab: RGBToLab(RGB{230, 230, 20})},
	}
	index := NewTileIndex(tiles)
	db := NewSimilarityDatabase(nil)
	for _, tl := range tiles {
		db.Add(tl.Path, tl.Lab)
	}
	db.Build()
	usage := NewUsageTracker(0)
	placer := NewGreedyPlacer(index, db, usage, 0)

	g := NewGrid(2, 2)
	regionColors := map[[2]int]Lab{
		{0, 0}: tiles[0].Lab,
		{1, 0}: tiles[1].Lab,
		{0, 1}: tiles[2].Lab,
		{1, 1}: tiles[3].Lab,
	}
	placer.Place(g, func(x, y int) Lab { return regionColors[[2]int{x, y}] })

	want := map[[2]int]string{
		{0, 0}: "red.png",
		{1, 0}: "green.png",
		{0, 1}: "blue.png",
		{1, 1}: "yellow.png",
	}
	for pos, path := range want {
		if got := g.Get(pos[0], pos[1]); got != path {
			t.Errorf("cell %v = %q, want %q", pos, got, path)
		}
	}
}

// With a usage cap of 1 and exactly as many tiles as cells, every tile is
// placed exactly once.
func TestGreedyPlacerCapExactPermutation(t *testing.T) {
	const n = 9 // 3x3 grid
	tiles := make([]Tile, n)
	for i := 0; i < n; i++ {
		tiles[i] = Tile{Path: fmt.Sprintf("t%d.png", i), Lab: Lab{L: float32(i * 10)}}
	}
	index := NewTileIndex(tiles)
	db := NewSimilarityDatabase(nil)
	for _, tl := range tiles {
		db.Add(tl.Path, tl.Lab)
	}
	db.Build()
	usage := NewUsageTracker(1)
	placer := NewGreedyPlacer(index, db, usage, 0)

	g := NewGrid(3, 3)
	placer.Place(g, func(x, y int) Lab { return Lab{L: float32((y*3 + x) * 10)} })

	seen := make(map[string]int)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			path := g.Get(x, y)
			if path == "" {
				t.Fatalf("cell (%d,%d) left empty", x, y)
			}
			seen[path]++
		}
	}
	if len(seen) != n {
		t.Fatalf("placement used %d distinct tiles, want %d", len(seen), n)
	}
	for path, count := range seen {
		if count != 1 {
			t.Errorf("tile %s used %d times, want exactly 1 under cap=1", path, count)
		}
	}
}

// When every tile shares the same color, the color term of the score contributes
// nothing, so the no-duplicate-adjacent constraint must still keep
// identical neighbors from touching wherever enough distinct tiles exist.
func TestGreedyPlacerIdenticalColorLibraryRespectsAdjacency(t *testing.T) {
	const n = 6
	tiles := make([]Tile, n)
	for i := 0; i < n; i++ {
		tiles[i] = Tile{Path: fmt.Sprintf("same%d.png", i), Lab: Lab{L: 50, A: 0, B: 0}}
	}
	index := NewTileIndex(tiles)
	db := NewSimilarityDatabase(nil)
	for _, tl := range tiles {
		db.Add(tl.Path, tl.Lab)
	}
	db.Build()
	usage := NewUsageTracker(0)
	placer := NewGreedyPlacer(index, db, usage, 1.0)

	g := NewGrid(3, 2)
	placer.Place(g, func(x, y int) Lab { return Lab{L: 50} })

	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			path := g.Get(x, y)
			for _, nb := range g.Neighbors4(x, y) {
				if g.Filled(nb.X, nb.Y) && g.Get(nb.X, nb.Y) == path {
					t.Errorf("cell (%d,%d)=%q is adjacent to an identical tile at (%d,%d)", x, y, path, nb.X, nb.Y)
				}
			}
		}
	}
}

func TestGreedyPlacerEmptyLibraryLeavesGridEmpty(t *testing.T) {
	index := NewTileIndex(nil)
	db := NewSimilarityDatabase(nil)
	usage := NewUsageTracker(0)
	placer := NewGreedyPlacer(index, db, usage, 0)

	g := NewGrid(2, 2)
	placer.Place(g, func(x, y int) Lab { return Lab{} })

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if g.Get(x, y) != "" {
				t.Errorf("cell (%d,%d) = %q, want empty", x, y, g.Get(x, y))
			}
		}
	}
}
