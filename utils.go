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

const (
	// Debug is true if code should be compiled in debug mode, performing
	// additional (and fairly expensive) invariant checks.
	Debug = false
)

var (
	// BufferSize is the default size of the job/done channels used by the
	// parallel regions (tile loading, final composition). Such channels only
	// ever carry small values (bools and small job structs holding a
	// position or index and a path), so a generous buffer is cheap.
	BufferSize = 1000
)

// ProgressFunc is called after each unit of work completes so a caller can
// report progress. num is the number of units processed so far.
type ProgressFunc func(num int)

// ProgressIgnore is a ProgressFunc that does nothing.
func ProgressIgnore(num int) {}

// LoggerProgressFunc returns a ProgressFunc that logs progress via logrus.
// max is the total number of units of work, step controls how often a log
// line is emitted (every step items); step <= 0 disables logging entirely.
func LoggerProgressFunc(prefix string, max, step int) ProgressFunc {
	return func(num int) {
		if step <= 0 || max == 0 {
			return
		}
		if num%step != 0 && num != max {
			return
		}
		percent := (float64(num) / float64(max)) * 100.0
		if percent > 100.0 {
			percent = 100.0
		}
		if prefix == "" {
			log.Infof("Progress: %d of %d (%.1f%%)", num, max, percent)
		} else {
			log.Infof("%s: %d of %d (%.1f%%)", prefix, num, max, percent)
		}
	}
}
