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

package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/photomosaic-go/mosaic"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
)

var (
	targetPath  = flag.String("target", "", "path to the target image")
	materialDir = flag.String("materials", "", "directory of material tile images")
	outputPath  = flag.String("output", "mosaic.png", "path of the generated mosaic")

	gridWidth  = flag.Int("width", 80, "number of tiles per row")
	gridHeight = flag.Int("height", 60, "number of tiles per column")

	maxMaterials = flag.Int("max-materials", 4000, "maximum number of material tiles to load")
	aspectTol    = flag.Float64("aspect-tolerance", 0.15, "allowed deviation from the grid cell's aspect ratio")
	usageCap     = flag.Int("max-usage", 4, "maximum number of times a single tile may be used (0 = unlimited)")
	alpha        = flag.Float64("adjacency-weight", 2000, "weight of the adjacency-similarity penalty")

	optimize    = flag.Bool("optimize", true, "run simulated-annealing refinement after placement")
	annealIters = flag.Int("anneal-iterations", 1000, "number of swap proposals during refinement")
	annealMode  = flag.String("anneal-mode", "metropolis", "refinement acceptance rule: metropolis or greedy")
	annealTemp  = flag.Float64("anneal-temp", 100, "initial annealing temperature")
	annealDecay = flag.Float64("anneal-decay", 0.99995, "per-iteration geometric temperature decay")
	annealSeed  = flag.Int64("anneal-seed", 0, "PRNG seed for refinement (0 = time-seeded)")

	dbPath    = flag.String("similarity-db", "", "path to the similarity database cache (empty = don't persist)")
	rebuildDB = flag.Bool("rebuild-db", false, "force a full rebuild of the similarity database")
	deltaE    = flag.Bool("delta-e-2000", false, "use the CIEDE2000 distance metric instead of plain Euclidean Lab")

	colorAdjust = flag.Float64("color-adjust", 0, "strength in [0,1] of post-selection color adjustment toward the target region")

	numRoutines = flag.Int("routines", 0, "number of worker goroutines for tile loading (0 = 2x NumCPU)")
)

func init() {
	if mosaic.Debug {
		log.SetLevel(log.DebugLevel)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func expandPath(p string) string {
	if p == "" {
		return p
	}
	expanded, err := homedir.Expand(p)
	if err != nil {
		return p
	}
	return expanded
}

func parseAnnealMode(s string) (mosaic.AnnealMode, error) {
	switch s {
	case "metropolis":
		return mosaic.Metropolis, nil
	case "greedy":
		return mosaic.Greedy, nil
	default:
		return 0, fmt.Errorf("unknown anneal mode %q, expected \"metropolis\" or \"greedy\"", s)
	}
}

func main() {
	flag.Parse()

	if *targetPath == "" || *materialDir == "" {
		fatal("Error: -target and -materials are required")
	}
	target := expandPath(*targetPath)
	materials := expandPath(*materialDir)
	output := expandPath(*outputPath)
	db := expandPath(*dbPath)

	if _, err := os.Stat(target); err != nil {
		fatal("Error: target image not found: %v", err)
	}
	if info, err := os.Stat(materials); err != nil || !info.IsDir() {
		fatal("Error: material directory not found: %s", materials)
	}

	mode, err := parseAnnealMode(*annealMode)
	if err != nil {
		fatal("Error: %v", err)
	}

	routines := *numRoutines
	if routines <= 0 {
		routines = runtime.NumCPU() * 2
		if routines <= 0 {
			routines = 4
		}
	}

	metric := mosaic.DistanceFunc(mosaic.Lab.Dist)
	if *deltaE {
		metric = mosaic.DeltaE2000
	}

	cfg := mosaic.JobConfig{
		TargetPath:  target,
		MaterialDir: materials,
		OutputPath:  output,
		GridW:       *gridWidth,
		GridH:       *gridHeight,
		MaxTiles:    *maxMaterials,
		AspectTol:   *aspectTol,
		UsageCap:    *usageCap,
		Alpha:       *alpha,

		Optimize:   *optimize,
		AnnealMode: mode,
		AnnealCfg: mosaic.RefinerConfig{
			MaxIterations: *annealIters,
			InitialTemp:   *annealTemp,
			Decay:         *annealDecay,
			Seed:          *annealSeed,
		},

		DBPath:    db,
		RebuildDB: *rebuildDB,
		Metric:    metric,

		ColorAdjustStrength: *colorAdjust,
		NumRoutines:         routines,
	}

	result, err := mosaic.Run(cfg)
	if err != nil {
		fatal("Error: %v", err)
	}
	if cfg.Optimize {
		fmt.Printf("Refinement: initial=%.2f final=%.2f best=%.2f improvement=%.1f%% (%d iterations, %d accepted)\n",
			result.InitialCost, result.FinalCost, result.BestCost, result.ImprovementPercent(),
			result.Iterations, result.AcceptedProposals)
	}
	fmt.Println("Wrote", output)
}
