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

// Grid is a two-dimensional H×W array of cells, each either empty (path
// == "") or holding the path of one material tile. It is represented as a
// flat row-major slice rather than a slice of slices so that neighbor
// lookups during placement and refinement stay cache-friendly.
type Grid struct {
	W, H  int
	cells []string
}

// NewGrid returns an empty W×H grid (every cell unfilled).
func NewGrid(w, h int) *Grid {
	return &Grid{W: w, H: h, cells: make([]string, w*h)}
}

// InBounds reports whether (x, y) is a valid cell position.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

func (g *Grid) offset(x, y int) int {
	return y*g.W + x
}

// Get returns the tile path at (x, y), or "" if the cell is empty.
func (g *Grid) Get(x, y int) string {
	return g.cells[g.offset(x, y)]
}

// Set writes path into cell (x, y).
func (g *Grid) Set(x, y int, path string) {
	g.cells[g.offset(x, y)] = path
}

// Filled reports whether cell (x, y) holds a tile.
func (g *Grid) Filled(x, y int) bool {
	return g.Get(x, y) != ""
}

// Swap exchanges the contents of two cells, including the case where one
// or both are empty.
func (g *Grid) Swap(x1, y1, x2, y2 int) {
	i, j := g.offset(x1, y1), g.offset(x2, y2)
	g.cells[i], g.cells[j] = g.cells[j], g.cells[i]
}

// Neighbor is one of the at-most-4 in-bounds positions adjacent to a cell.
type Neighbor struct {
	X, Y int
}

// Neighbors4 returns the in-bounds 4-neighborhood of (x, y): {(x±1,y),
// (x,y±1)}, in a fixed order (left, right, up, down).
func (g *Grid) Neighbors4(x, y int) []Neighbor {
	res := make([]Neighbor, 0, 4)
	candidates := [4]Neighbor{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}}
	for _, n := range candidates {
		if g.InBounds(n.X, n.Y) {
			res = append(res, n)
		}
	}
	return res
}
