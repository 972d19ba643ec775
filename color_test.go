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
	"image"
	"image/color"
	"math"
	"testing"
)

func TestRGBToLabKnownColors(t *testing.T) {
	tests := []struct {
		name    string
		c       RGB
		wantL   float32
		wantTol float32
	}{
		{"black", RGB{0, 0, 0}, 0, 0.5},
		{"white", RGB{255, 255, 255}, 100, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lab := RGBToLab(tt.c)
			if diff := lab.L - tt.wantL; diff > tt.wantTol || diff < -tt.wantTol {
				t.Errorf("RGBToLab(%v).L = %v, want ~%v", tt.c, lab.L, tt.wantL)
			}
		})
	}
}

func TestLabDistSelfIsZero(t *testing.T) {
	colors := []Lab{
		{L: 0, A: 0, B: 0},
		{L: 50, A: 12, B: -30},
		RGBToLab(RGB{200, 30, 90}),
	}
	for _, c := range colors {
		if d := c.Dist(c); d != 0 {
			t.Errorf("Dist(%v, %v) = %v, want 0", c, c, d)
		}
		if d := c.Dist2(c); d != 0 {
			t.Errorf("Dist2(%v, %v) = %v, want 0", c, c, d)
		}
	}
}

func TestLabDistSymmetric(t *testing.T) {
	a := RGBToLab(RGB{10, 200, 50})
	b := RGBToLab(RGB{220, 20, 140})
	if a.Dist(b) != b.Dist(a) {
		t.Errorf("Dist not symmetric: %v vs %v", a.Dist(b), b.Dist(a))
	}
}

func TestDeltaE2000SelfIsZero(t *testing.T) {
	colors := []Lab{
		{L: 0, A: 0, B: 0},
		RGBToLab(RGB{128, 64, 200}),
		RGBToLab(RGB{5, 250, 5}),
	}
	for _, c := range colors {
		if d := DeltaE2000(c, c); d > 1e-9 {
			t.Errorf("DeltaE2000(%v, %v) = %v, want ~0", c, c, d)
		}
	}
}

func TestDeltaE2000NonNegativeAndFinite(t *testing.T) {
	for r := 0; r < 256; r += 51 {
		for g := 0; g < 256; g += 51 {
			for b := 0; b < 256; b += 51 {
				c1 := RGBToLab(RGB{uint8(r), uint8(g), uint8(b)})
				c2 := RGBToLab(RGB{255 - uint8(r), 255 - uint8(g), 255 - uint8(b)})
				d := DeltaE2000(c1, c2)
				if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
					t.Fatalf("DeltaE2000(%v, %v) = %v, want finite non-negative", c1, c2, d)
				}
			}
		}
	}
}

func TestComputeAverageLabUniformImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fill := RGB{R: 100, G: 150, B: 200}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{R: fill.R, G: fill.G, B: fill.B, A: 255})
		}
	}
	want := RGBToLab(fill)
	got := ComputeAverageLab(img)
	if math.Abs(float64(got.L-want.L)) > 0.01 || math.Abs(float64(got.A-want.A)) > 0.01 || math.Abs(float64(got.B-want.B)) > 0.01 {
		t.Errorf("ComputeAverageLab uniform image = %v, want %v", got, want)
	}
}

func TestComputeAverageLabEmptyImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if got := ComputeAverageLab(img); got != (Lab{}) {
		t.Errorf("ComputeAverageLab empty image = %v, want zero value", got)
	}
}
