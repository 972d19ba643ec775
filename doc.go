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

// Package mosaic reconstructs a target image as a grid of tile images drawn
// from a material library.
//
// A TileIndex built from a material directory provides fast nearest-color
// lookups in CIE L*a*b* space. A GreedyPlacer fills a Grid row by row,
// balancing color fidelity against a per-tile usage cap and an adjacency
// penalty computed from a precomputed SimilarityDatabase. A Refiner then
// improves the layout by simulated annealing over pairwise cell swaps,
// scored by a local cost delta rather than a full grid recomputation.
//
// It ships with a command line tool, cmd/mosaic, to generate mosaics from
// the filesystem.
package mosaic
