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

import "testing"

func TestUsageTrackerCap(t *testing.T) {
	u := NewUsageTracker(2)
	path := "a.png"
	for i := 0; i < 2; i++ {
		if !u.Allows(path) {
			t.Fatalf("Allows(%s) = false before reaching cap (use %d)", path, i)
		}
		u.Record(path)
	}
	if u.Allows(path) {
		t.Errorf("Allows(%s) = true after reaching cap", path)
	}
}

func TestUsageTrackerUnlimited(t *testing.T) {
	u := NewUsageTracker(0)
	for i := 0; i < 1000; i++ {
		u.Record("x.png")
	}
	if !u.Allows("x.png") {
		t.Errorf("Allows with cap<=0 returned false after many uses")
	}
}

func TestUsageTrackerReset(t *testing.T) {
	u := NewUsageTracker(1)
	u.Record("a.png")
	if u.Allows("a.png") {
		t.Fatalf("Allows(a.png) = true before Reset, cap already reached")
	}
	u.Reset()
	if !u.Allows("a.png") {
		t.Errorf("Allows(a.png) = false after Reset")
	}
	if u.Count("a.png") != 0 {
		t.Errorf("Count(a.png) after Reset = %d, want 0", u.Count("a.png"))
	}
}
