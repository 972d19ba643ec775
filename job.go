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

	log "github.com/sirupsen/logrus"
)

// JobConfig collects everything needed to run a full mosaic generation job:
// loading tiles, building/patching the similarity database, placing,
// (optionally) refining and composing. It mirrors the CLI flag surface of
// cmd/mosaic one to one.
type JobConfig struct {
	TargetPath   string
	MaterialDir  string
	OutputPath   string
	GridW, GridH int
	MaxTiles     int
	AspectTol    float64
	UsageCap     int
	Alpha        float64

	Optimize   bool
	AnnealMode AnnealMode
	AnnealCfg  RefinerConfig

	DBPath    string
	RebuildDB bool
	Metric    DistanceFunc

	ColorAdjustStrength float64

	NumRoutines int
}

// Run executes a full generation job and writes the composed mosaic to
// cfg.OutputPath. It returns the OptimizationResult of the refinement pass
// (zero value if cfg.Optimize is false).
func Run(cfg JobConfig) (OptimizationResult, error) {
	target, err := OpenImage(cfg.TargetPath)
	if err != nil {
		return OptimizationResult{}, fmt.Errorf("opening target image: %w", err)
	}

	sampler := NewRegionSampler(target, cfg.GridW, cfg.GridH)
	tw, th := sampler.TileSize()
	targetRatio := float64(tw) / float64(th)

	tiles, err := LoadTiles(cfg.MaterialDir, targetRatio, cfg.AspectTol, cfg.MaxTiles, cfg.NumRoutines, nil)
	if err != nil {
		return OptimizationResult{}, fmt.Errorf("loading material tiles: %w", err)
	}
	if len(tiles) == 0 {
		return OptimizationResult{}, fmt.Errorf("no usable tiles found in %s", cfg.MaterialDir)
	}

	index := NewTileIndex(tiles)

	db := cfg.similarityDatabase(tiles)

	usage := NewUsageTracker(cfg.UsageCap)
	placer := NewGreedyPlacer(index, db, usage, cfg.Alpha)
	grid := NewGrid(cfg.GridW, cfg.GridH)
	placer.Place(grid, sampler.Lab)

	cost := NewAdjacencyCost(db)
	var result OptimizationResult
	if cfg.Optimize {
		refCfg := cfg.AnnealCfg
		refCfg.Mode = cfg.AnnealMode
		refiner := NewRefiner(cost, refCfg)
		result = refiner.Run(grid)
		log.WithFields(log.Fields{
			"initialCost": result.InitialCost,
			"finalCost":   result.FinalCost,
			"bestCost":    result.BestCost,
			"improvement": result.ImprovementPercent(),
		}).Info("Simulated annealing finished")
	}

	composed, err := ComposeMosaic(grid, tw, th, OpenImage, DefaultResizer, ForceResize,
		ColorAdjustment{Strength: cfg.ColorAdjustStrength}, sampler.RGB, cfg.NumRoutines)
	if err != nil {
		return result, fmt.Errorf("composing mosaic: %w", err)
	}
	if err := SaveImage(cfg.OutputPath, composed); err != nil {
		return result, fmt.Errorf("saving mosaic: %w", err)
	}
	return result, nil
}

// similarityDatabase loads (or creates) the similarity database for this
// job, patches it with any newly-loaded tiles and rebuilds the distance
// matrix if requested or required.
func (cfg JobConfig) similarityDatabase(tiles []Tile) *SimilarityDatabase {
	metric := cfg.Metric
	if metric == nil {
		metric = Lab.Dist
	}

	var db *SimilarityDatabase
	if cfg.DBPath != "" {
		db = LoadOrEmpty(cfg.DBPath, metric)
	} else {
		db = NewSimilarityDatabase(metric)
	}

	added := db.Patch(tiles)
	needsBuild := cfg.RebuildDB || added > 0 || db.Len() == 0
	if needsBuild {
		db.Build()
	}

	if cfg.DBPath != "" {
		if err := db.Save(cfg.DBPath); err != nil {
			log.WithError(err).WithField("path", cfg.DBPath).Warn("Can't save similarity database")
		}
	}
	return db
}
