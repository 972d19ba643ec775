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
	log "github.com/sirupsen/logrus"
)

// TileIndex is an ordered sequence of Tiles plus a k-d tree over their
// L*a*b* colors, keyed on the tile's index in the sequence. The tree is
// built once, after all tiles are known, and is read-only for the rest of
// the job: every tile has exactly one corresponding leaf and vice versa.
type TileIndex struct {
	tiles []Tile
	tree  *kdTree
}

// NewTileIndex builds a TileIndex from tiles. The k-d tree is constructed
// immediately; tiles must not be mutated afterwards.
func NewTileIndex(tiles []Tile) *TileIndex {
	points := make([]Lab, len(tiles))
	for i, t := range tiles {
		points[i] = t.Lab
	}
	return &TileIndex{
		tiles: tiles,
		tree:  buildKDTree(points),
	}
}

// Len returns the number of tiles in the index.
func (idx *TileIndex) Len() int {
	return len(idx.tiles)
}

// Tile returns the tile at position i. i must be a valid index returned by
// a query method; out-of-range access is a programming error and panics
// like a plain slice index would.
func (idx *TileIndex) Tile(i int) Tile {
	return idx.tiles[i]
}

// Tiles returns the underlying tile slice. Callers must treat it as
// read-only.
func (idx *TileIndex) Tiles() []Tile {
	return idx.tiles
}

// NearestCandidate is one result of a nearest-neighbor query: the index of
// a tile in the owning TileIndex and its squared L*a*b* distance to the
// query color.
type NearestCandidate struct {
	TileIndex int
	Dist2     float64
}

// KNearest returns the k tiles whose average color is closest to target,
// ordered by increasing squared distance. If k exceeds the number of
// tiles, every tile is returned.
func (idx *TileIndex) KNearest(target Lab, k int) []NearestCandidate {
	raw := idx.tree.kNearest(target, k)
	if len(raw) == 0 {
		return nil
	}
	res := make([]NearestCandidate, 0, len(raw))
	for _, c := range raw {
		if c.Payload < 0 || c.Payload >= len(idx.tiles) {
			// an out-of-range payload should never happen given the tree is
			// built directly from idx.tiles; log and skip rather than trust
			// the index blindly
			log.WithField("payload", c.Payload).Error("k-d tree returned out-of-range tile index, skipping")
			continue
		}
		res = append(res, NearestCandidate{TileIndex: c.Payload, Dist2: c.Dist2})
	}
	return res
}

// Nearest returns the single closest tile to target.
func (idx *TileIndex) Nearest(target Lab) (NearestCandidate, bool) {
	c, ok := idx.tree.nearest(target)
	if !ok {
		return NearestCandidate{}, false
	}
	return NearestCandidate{TileIndex: c.Payload, Dist2: c.Dist2}, true
}
