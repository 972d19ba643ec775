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
	"image"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Tile is an immutable record describing one material image: its
// filesystem path (identity), its average color in L*a*b* space and its
// aspect ratio (source width / source height). Tiles are constructed once
// during loading and never mutated afterwards; every subsystem that needs a
// tile refers to it by Path.
type Tile struct {
	Path        string
	Lab         Lab
	AspectRatio float64
}

// tileExtensions is the set of file extensions the loader considers
// material candidates.
var tileExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// SupportedTileExt reports whether ext (as returned by filepath.Ext, so
// including the leading dot) names a supported material image format.
func SupportedTileExt(ext string) bool {
	return tileExtensions[strings.ToLower(ext)]
}

// TileLoader scans a material directory and builds Tile records from the
// images it contains.
//
// TargetRatio and Tolerance implement the two-pass aspect-ratio policy: the
// first pass only accepts files whose aspect ratio is within Tolerance of
// TargetRatio; if that pass accepts nothing, a second pass admits the first
// min(numEntries, 2*MaxTiles) directory entries regardless of aspect ratio.
// MaxTiles truncates the final accepted list. NumRoutines controls the
// parallelism of the decode-and-average-color step.
type TileLoader struct {
	Dir         string
	TargetRatio float64
	Tolerance   float64
	MaxTiles    int
	NumRoutines int
}

// NewTileLoader returns a TileLoader with the given parameters. A
// NumRoutines <= 0 is replaced by 1.
func NewTileLoader(dir string, targetRatio, tolerance float64, maxTiles, numRoutines int) *TileLoader {
	if numRoutines <= 0 {
		numRoutines = 1
	}
	return &TileLoader{
		Dir:         dir,
		TargetRatio: targetRatio,
		Tolerance:   tolerance,
		MaxTiles:    maxTiles,
		NumRoutines: numRoutines,
	}
}

// candidateEntry is a directory entry that looks like a supported image,
// before it has been decoded.
type candidateEntry struct {
	path string
}

// listCandidates scans Dir non-recursively for files with a supported
// extension, in directory order.
func (l *TileLoader) listCandidates() ([]candidateEntry, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, err
	}
	res := make([]candidateEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !SupportedTileExt(filepath.Ext(e.Name())) {
			continue
		}
		res = append(res, candidateEntry{path: filepath.Join(l.Dir, e.Name())})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].path < res[j].path })
	return res, nil
}

// decodeResult is what a worker produces for a single candidate.
type decodeResult struct {
	tile  Tile
	ratio float64
	ok    bool
}

func decodeTile(path string) (Tile, bool) {
	f, err := os.Open(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("Can't open tile, skipping")
		return Tile{}, false
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("Can't decode tile, skipping")
		return Tile{}, false
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		log.WithField("path", path).Warn("Tile has empty bounds, skipping")
		return Tile{}, false
	}
	ratio := float64(bounds.Dx()) / float64(bounds.Dy())
	lab := ComputeAverageLab(img)
	return Tile{Path: path, Lab: lab, AspectRatio: ratio}, true
}

// decodeAll decodes every candidate concurrently using l.NumRoutines
// workers, following the job/done channel pattern used throughout this
// codebase for data-parallel phases. Order of the returned slice matches
// the order of candidates.
func (l *TileLoader) decodeAll(candidates []candidateEntry, progress ProgressFunc) []decodeResult {
	results := make([]decodeResult, len(candidates))

	type job struct {
		idx  int
		path string
	}
	jobs := make(chan job, BufferSize)
	done := make(chan bool, BufferSize)

	for w := 0; w < l.NumRoutines; w++ {
		go func() {
			for next := range jobs {
				tile, ok := decodeTile(next.path)
				results[next.idx] = decodeResult{tile: tile, ratio: tile.AspectRatio, ok: ok}
				done <- true
			}
		}()
	}

	go func() {
		for i, c := range candidates {
			jobs <- job{idx: i, path: c.path}
		}
		close(jobs)
	}()

	for i := range candidates {
		<-done
		if progress != nil {
			progress(i + 1)
		}
	}
	return results
}

// Load scans the material directory and returns the accepted Tiles,
// applying the two-pass aspect-ratio policy and the MaxTiles cap. A
// per-file decode failure is logged and the file skipped; Load only
// returns an error if the directory itself can't be read.
func (l *TileLoader) Load(progress ProgressFunc) ([]Tile, error) {
	candidates, err := l.listCandidates()
	if err != nil {
		return nil, fmt.Errorf("scanning material directory: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	decoded := l.decodeAll(candidates, progress)

	firstPass := make([]Tile, 0, len(decoded))
	for _, r := range decoded {
		if !r.ok {
			continue
		}
		if math.Abs(r.tile.AspectRatio-l.TargetRatio) <= l.Tolerance {
			firstPass = append(firstPass, r.tile)
		}
	}

	var accepted []Tile
	if len(firstPass) > 0 {
		accepted = firstPass
	} else {
		log.Warn("No tile matched the requested aspect ratio, falling back to an unfiltered selection")
		limit := len(candidates)
		if l.MaxTiles > 0 && 2*l.MaxTiles < limit {
			limit = 2 * l.MaxTiles
		}
		accepted = make([]Tile, 0, limit)
		for i := 0; i < limit && i < len(decoded); i++ {
			if decoded[i].ok {
				accepted = append(accepted, decoded[i].tile)
			}
		}
	}

	if l.MaxTiles > 0 && len(accepted) > l.MaxTiles {
		accepted = accepted[:l.MaxTiles]
	}
	return accepted, nil
}

// LoadTiles is a convenience wrapper creating a TileLoader and loading its
// tiles in one call.
func LoadTiles(dir string, targetRatio, tolerance float64, maxTiles, numRoutines int, progress ProgressFunc) ([]Tile, error) {
	loader := NewTileLoader(dir, targetRatio, tolerance, maxTiles, numRoutines)
	return loader.Load(progress)
}
