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
	"math"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"
)

// AnnealMode selects how the Refiner accepts a proposed swap.
type AnnealMode int

const (
	// Metropolis accepts downhill moves always and uphill moves with
	// probability exp(−Δ/T), the standard simulated-annealing criterion.
	Metropolis AnnealMode = iota
	// Greedy accepts a swap iff it strictly decreases cost, skipping the
	// probabilistic uphill exploration entirely. Useful when probabilistic
	// exploration is undesirable (e.g. deterministic regression tests).
	Greedy
)

// RefinerConfig configures a simulated-annealing refinement run.
type RefinerConfig struct {
	// MaxIterations is M, the number of swap proposals attempted.
	MaxIterations int
	// InitialTemp is T₀.
	InitialTemp float64
	// Decay is ρ, applied geometrically every iteration regardless of
	// whether the proposal was accepted.
	Decay float64
	// ReportInterval controls how often Run logs progress; <= 0 disables
	// logging.
	ReportInterval int
	// Mode selects Metropolis or Greedy acceptance.
	Mode AnnealMode
	// Seed seeds the refiner's PRNG for reproducibility. 0 means
	// time-seeded.
	Seed int64
}

// DefaultRefinerConfig returns the standard defaults: 1000 iterations,
// initial temperature 100, decay 0.99995, Metropolis acceptance, no
// periodic report.
func DefaultRefinerConfig() RefinerConfig {
	return RefinerConfig{
		MaxIterations: 1000,
		InitialTemp:   100,
		Decay:         0.99995,
		Mode:          Metropolis,
	}
}

// OptimizationResult summarizes a refinement run.
type OptimizationResult struct {
	InitialCost        float64
	FinalCost          float64
	BestCost           float64
	StrictImprovements int
	AcceptedProposals  int
	Iterations         int
}

// ImprovementPercent returns (initial − final) / initial × 100, or 0 when
// initial is 0 (avoids a division by zero on an empty or zero-cost grid).
func (r OptimizationResult) ImprovementPercent() float64 {
	if r.InitialCost == 0 {
		return 0
	}
	return (r.InitialCost - r.FinalCost) / r.InitialCost * 100
}

// Refiner improves a placed Grid by simulated annealing over pairwise cell
// swaps, scored by AdjacencyCost.SwapDelta rather than a full
// recomputation of TotalCost.
type Refiner struct {
	Cost   *AdjacencyCost
	Config RefinerConfig
	rng    *rand.Rand
}

// NewRefiner returns a Refiner using cfg, seeding its PRNG from cfg.Seed (or
// the current time if cfg.Seed == 0).
func NewRefiner(cost *AdjacencyCost, cfg RefinerConfig) *Refiner {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Refiner{
		Cost:   cost,
		Config: cfg,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// accept decides whether to take a proposed swap of cost delta given the
// current temperature, using the refiner's configured mode. In Greedy mode
// only a strict improvement (delta < 0) is ever taken. In Metropolis mode
// delta <= 0 is always accepted: at delta == 0, exp(-delta/temp) is
// exp(0) == 1, so the Metropolis criterion always accepts a lateral move,
// same as a strict improvement. Exp underflow to 0 and overflow to +Inf are
// both treated as "never accept an uphill move" for delta > 0; acceptance
// probabilities are never allowed to produce a NaN comparison.
func (r *Refiner) accept(delta, temp float64) bool {
	if r.Config.Mode == Greedy {
		return delta < 0
	}
	if delta <= 0 {
		return true
	}
	if temp <= 0 {
		return false
	}
	p := math.Exp(-delta / temp)
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return false
	}
	return r.rng.Float64() < p
}

// Run executes the configured number of swap proposals against g, using
// positions drawn uniformly over g.W × g.H. A proposal where p1 == p2 or
// either cell is empty is skipped (no swap-delta is computed, no
// accept/reject happens) but still counts as an iteration and the
// temperature still decays.
func (r *Refiner) Run(g *Grid) OptimizationResult {
	initial := r.Cost.TotalCost(g)
	result := OptimizationResult{
		InitialCost: initial,
		FinalCost:   initial,
		BestCost:    initial,
	}
	if g.W*g.H <= 1 {
		return result
	}

	current := initial
	best := initial
	temp := r.Config.InitialTemp

	for it := 0; it < r.Config.MaxIterations; it++ {
		result.Iterations++

		x1, y1 := r.rng.Intn(g.W), r.rng.Intn(g.H)
		x2, y2 := r.rng.Intn(g.W), r.rng.Intn(g.H)

		skip := (x1 == x2 && y1 == y2) || !g.Filled(x1, y1) || !g.Filled(x2, y2)
		if !skip {
			delta := r.Cost.SwapDelta(g, x1, y1, x2, y2)
			if r.accept(delta, temp) {
				g.Swap(x1, y1, x2, y2)
				current += delta
				result.AcceptedProposals++
				if delta < 0 {
					result.StrictImprovements++
				}
				if current < best {
					best = current
				}
			}
		}

		temp *= r.Config.Decay

		if r.Config.ReportInterval > 0 && (it+1)%r.Config.ReportInterval == 0 {
			log.WithFields(log.Fields{
				"iteration":   it + 1,
				"temperature": temp,
				"currentCost": current,
				"bestCost":    best,
			}).Info("Simulated annealing progress")
		}
	}

	if math.IsNaN(current) {
		log.Error("Simulated annealing produced a NaN cost, this is a defect")
	}

	result.FinalCost = current
	result.BestCost = best
	return result
}
