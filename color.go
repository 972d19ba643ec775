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
)

// RGB is a color containing r, g and b components in 8-bit sRGB space.
type RGB struct {
	R, G, B uint8
}

// ConvertRGB converts a generic color into the internal RGB representation.
func ConvertRGB(c color.Color) RGB {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return RGB{R: rgba.R, G: rgba.G, B: rgba.B}
}

// Lab is a color in CIE 1976 L*a*b* space. It is the color representation
// used throughout the tile index and similarity database: perceptual
// distances in this space are plain Euclidean.
type Lab struct {
	L, A, B float32
}

// srgbToLinear undoes sRGB gamma encoding for a single 8-bit channel,
// returning a value in [0, 1].
func srgbToLinear(c uint8) float64 {
	v := float64(c) / 255.0
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// D65 reference white in XYZ, normalized so that Y = 1.
const (
	refX = 0.95047
	refY = 1.0
	refZ = 1.08883
)

func labF(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta*delta*delta {
		return math.Cbrt(t)
	}
	return t/(3*delta*delta) + 4.0/29.0
}

// RGBToLab converts an sRGB color to CIE L*a*b*, via the CIE XYZ color
// space under a D65 illuminant.
func RGBToLab(c RGB) Lab {
	r := srgbToLinear(c.R)
	g := srgbToLinear(c.G)
	b := srgbToLinear(c.B)

	x := (0.4124564*r + 0.3575761*g + 0.1804375*b) / refX
	y := (0.2126729*r + 0.7151522*g + 0.0721750*b) / refY
	z := (0.0193339*r + 0.1191920*g + 0.9503041*b) / refZ

	fx, fy, fz := labF(x), labF(y), labF(z)

	l := 116*fy - 16
	a := 500 * (fx - fy)
	bb := 200 * (fy - fz)
	return Lab{L: float32(l), A: float32(a), B: float32(bb)}
}

// ColorToLab converts a generic color.Color into L*a*b*.
func ColorToLab(c color.Color) Lab {
	return RGBToLab(ConvertRGB(c))
}

// ComputeAverageLab computes the average L*a*b* color of an image by
// converting every pixel to Lab and taking the arithmetic mean of the L, a
// and b components. Returns the zero Lab for an empty image.
func ComputeAverageLab(img image.Image) Lab {
	bounds := img.Bounds()
	if bounds.Empty() {
		return Lab{}
	}
	var sumL, sumA, sumB float64
	numPixels := float64(bounds.Dx() * bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			lab := ColorToLab(img.At(x, y))
			sumL += float64(lab.L)
			sumA += float64(lab.A)
			sumB += float64(lab.B)
		}
	}
	return Lab{
		L: float32(sumL / numPixels),
		A: float32(sumA / numPixels),
		B: float32(sumB / numPixels),
	}
}

// Dist2 returns the squared Euclidean distance in L*a*b* space. This is the
// quantity used by the k-d tree, where avoiding the square root keeps
// candidate scoring cheap.
func (c Lab) Dist2(other Lab) float64 {
	dl := float64(c.L - other.L)
	da := float64(c.A - other.A)
	db := float64(c.B - other.B)
	return dl*dl + da*da + db*db
}

// Dist returns the Euclidean distance in L*a*b* space.
func (c Lab) Dist(other Lab) float64 {
	return math.Sqrt(c.Dist2(other))
}

// DeltaE2000 is an alternate, more perceptually faithful distance metric
// between two L*a*b* colors. It is a black-box non-negative scalar like Dist:
// 0 means identical colors, and the rest of the system never inspects its
// internals, so it may be swapped in for Dist in SimilarityDatabase.Build
// without touching the placer or refiner.
func DeltaE2000(c1, c2 Lab) float64 {
	l1, a1, b1 := float64(c1.L), float64(c1.A), float64(c1.B)
	l2, a2, b2 := float64(c2.L), float64(c2.A), float64(c2.B)

	c1s := math.Hypot(a1, b1)
	c2s := math.Hypot(a2, b2)
	cBar := (c1s + c2s) / 2

	cBar7 := math.Pow(cBar, 7)
	g := 0.5 * (1 - math.Sqrt(cBar7/(cBar7+6103515625))) // 25^7

	a1p := a1 * (1 + g)
	a2p := a2 * (1 + g)

	c1p := math.Hypot(a1p, b1)
	c2p := math.Hypot(a2p, b2)

	h1p := hueDeg(a1p, b1)
	h2p := hueDeg(a2p, b2)

	dLp := l2 - l1
	dCp := c2p - c1p

	var dhp float64
	switch {
	case c1p*c2p == 0:
		dhp = 0
	case math.Abs(h1p-h2p) <= 180:
		dhp = h2p - h1p
	case h2p-h1p > 180:
		dhp = h2p - h1p - 360
	default:
		dhp = h2p - h1p + 360
	}
	dHp := 2 * math.Sqrt(c1p*c2p) * math.Sin(radians(dhp)/2)

	lBarP := (l1 + l2) / 2
	cBarP := (c1p + c2p) / 2

	var hBarP float64
	switch {
	case c1p*c2p == 0:
		hBarP = h1p + h2p
	case math.Abs(h1p-h2p) <= 180:
		hBarP = (h1p + h2p) / 2
	case h1p+h2p < 360:
		hBarP = (h1p+h2p+360)/2
	default:
		hBarP = (h1p+h2p-360)/2
	}

	t := 1 - 0.17*math.Cos(radians(hBarP-30)) +
		0.24*math.Cos(radians(2*hBarP)) +
		0.32*math.Cos(radians(3*hBarP+6)) -
		0.20*math.Cos(radians(4*hBarP-63))

	dTheta := 30 * math.Exp(-math.Pow((hBarP-275)/25, 2))
	cBarP7 := math.Pow(cBarP, 7)
	rc := 2 * math.Sqrt(cBarP7/(cBarP7+6103515625))
	sl := 1 + (0.015*math.Pow(lBarP-50, 2))/math.Sqrt(20+math.Pow(lBarP-50, 2))
	sc := 1 + 0.045*cBarP
	sh := 1 + 0.015*cBarP*t
	rt := -math.Sin(radians(2*dTheta)) * rc

	const kl, kc, kh = 1, 1, 1
	dE := math.Sqrt(
		math.Pow(dLp/(kl*sl), 2) +
			math.Pow(dCp/(kc*sc), 2) +
			math.Pow(dHp/(kh*sh), 2) +
			rt*(dCp/(kc*sc))*(dHp/(kh*sh)),
	)
	if math.IsNaN(dE) {
		return 0
	}
	return dE
}

func hueDeg(a, b float64) float64 {
	if a == 0 && b == 0 {
		return 0
	}
	h := math.Atan2(b, a) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return h
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
