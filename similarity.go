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
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

// DistanceFunc computes a non-negative scalar distance between two L*a*b*
// colors; 0 means identical. Lab.Dist and DeltaE2000 both satisfy this.
type DistanceFunc func(a, b Lab) float64

// labEntry is the on-disk representation of a single tile's color, kept
// separate from Lab so the persisted field names stay stable even if the
// in-memory Lab type ever changes shape.
type labEntry struct {
	L float32 `json:"l"`
	A float32 `json:"a"`
	B float32 `json:"b"`
}

// similarityDoc is the self-describing text document written to disk. Its
// field names are part of the external file format; unknown fields in a
// loaded file are ignored by encoding/json, giving the forward
// compatibility the format promises.
type similarityDoc struct {
	PathToIndex  map[string]int `json:"path_to_index"`
	IndexToPath  []string       `json:"index_to_path"`
	LabColors    []labEntry     `json:"lab_colors"`
	Similarities []float64      `json:"similarities"`
}

// SimilarityDatabase stores precomputed pairwise perceptual distances
// between material tiles. It is built in two phases: Add every tile, then
// Build the distance matrix once. The matrix is stored as a flat,
// strictly-upper-triangular array indexed by upperIndex, so only n·(n−1)/2
// floats are kept for n tiles.
type SimilarityDatabase struct {
	pathToIndex map[string]int
	indexToPath []string
	colors      []Lab
	dists       []float64 // upper-triangular, populated by Build
	Metric      DistanceFunc
}

// NewSimilarityDatabase returns an empty database using metric to compute
// distances during Build. A nil metric defaults to Lab.Dist.
func NewSimilarityDatabase(metric DistanceFunc) *SimilarityDatabase {
	if metric == nil {
		metric = Lab.Dist
	}
	return &SimilarityDatabase{
		pathToIndex: make(map[string]int),
		Metric:      metric,
	}
}

// upperIndex computes the flat-array offset for the strictly-upper
// triangular entry (i, j), i < j, n total ids: pos = i·n − i·(i+1)/2 + j −
// i − 1. This is a bijection onto [0, n·(n−1)/2).
func upperIndex(i, j, n int) int {
	return i*n - i*(i+1)/2 + j - i - 1
}

// Len returns the number of tiles registered in the database.
func (db *SimilarityDatabase) Len() int {
	return len(db.indexToPath)
}

// Add registers a new tile path with its L*a*b* color and must be called
// before Build. It is an error to add a path that is already present; the
// caller is responsible for deduplicating its tile list first.
func (db *SimilarityDatabase) Add(path string, lab Lab) error {
	if _, exists := db.pathToIndex[path]; exists {
		return fmt.Errorf("similarity database: path already registered: %s", path)
	}
	id := len(db.indexToPath)
	db.pathToIndex[path] = id
	db.indexToPath = append(db.indexToPath, path)
	db.colors = append(db.colors, lab)
	return nil
}

// Build (re)computes the full upper-triangular distance matrix from the
// currently registered colors. It is idempotent in result and quadratic in
// work, and safe to call again after further Adds (it rebuilds fully
// rather than patching incrementally).
func (db *SimilarityDatabase) Build() {
	n := len(db.indexToPath)
	if n < 2 {
		db.dists = nil
		return
	}
	db.dists = make([]float64, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			db.dists[upperIndex(i, j, n)] = db.Metric(db.colors[i], db.colors[j])
		}
	}
}

// Get returns the stored distance between p1 and p2: 0 if p1 == p2, the
// stored value if both are registered, or ok == false if either path is
// unknown.
func (db *SimilarityDatabase) Get(p1, p2 string) (dist float64, ok bool) {
	if p1 == p2 {
		if _, has := db.pathToIndex[p1]; has {
			return 0, true
		}
		return 0, false
	}
	i, iOk := db.pathToIndex[p1]
	j, jOk := db.pathToIndex[p2]
	if !iOk || !jOk {
		return 0, false
	}
	n := len(db.indexToPath)
	if i > j {
		i, j = j, i
	}
	pos := upperIndex(i, j, n)
	if pos < 0 || pos >= len(db.dists) {
		return 0, false
	}
	return db.dists[pos], true
}

// Save persists the database as a self-describing JSON document to path.
// Callers wanting atomic replacement should write to a temp file and
// rename over path themselves; Save itself does a direct create-and-write.
func (db *SimilarityDatabase) Save(path string) error {
	doc := similarityDoc{
		PathToIndex:  db.pathToIndex,
		IndexToPath:  db.indexToPath,
		LabColors:    make([]labEntry, len(db.colors)),
		Similarities: db.dists,
	}
	for i, c := range db.colors {
		doc.LabColors[i] = labEntry{L: c.L, A: c.A, B: c.B}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saving similarity database: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding similarity database: %w", err)
	}
	return nil
}

// Load reads a similarity database previously written by Save. metric is
// used for any later Build call on the loaded database, but is not
// required to match the metric that produced the stored distances.
func Load(path string, metric DistanceFunc) (*SimilarityDatabase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var doc similarityDoc
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, err
	}
	db := NewSimilarityDatabase(metric)
	db.pathToIndex = doc.PathToIndex
	db.indexToPath = doc.IndexToPath
	db.colors = make([]Lab, len(doc.LabColors))
	for i, e := range doc.LabColors {
		db.colors[i] = Lab{L: e.L, A: e.A, B: e.B}
	}
	db.dists = doc.Similarities
	if db.pathToIndex == nil {
		db.pathToIndex = make(map[string]int)
	}
	return db, nil
}

// LoadOrEmpty loads the database at path, returning a fresh empty database
// (logged, not an error) if the file is absent or can't be parsed. This is
// the entry point CLI code should use: "load-or-empty never fails".
func LoadOrEmpty(path string, metric DistanceFunc) *SimilarityDatabase {
	db, err := Load(path, metric)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("Can't load similarity database, starting with an empty one")
		return NewSimilarityDatabase(metric)
	}
	return db
}

// Patch adds every tile in tiles that isn't already registered, so a
// similarity database loaded from disk can be brought up to date with a
// material library that has since grown. It does not call Build; the
// caller must do that once patching is complete.
func (db *SimilarityDatabase) Patch(tiles []Tile) (added int) {
	for _, t := range tiles {
		if _, has := db.pathToIndex[t.Path]; has {
			continue
		}
		if err := db.Add(t.Path, t.Lab); err != nil {
			// Add only errors on a duplicate, which the has-check above
			// already ruled out; defensive logging in case that invariant
			// ever breaks.
			log.WithError(err).Warn("Unexpected error patching similarity database")
			continue
		}
		added++
	}
	return added
}
