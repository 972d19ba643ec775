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
	"context"
	"image"
	"image/color"
	"math"

	"github.com/nfnt/resize"
	"github.com/oov/downscale"
	log "github.com/sirupsen/logrus"
)

// ImageResizer resizes an image to the given width and height.
type ImageResizer interface {
	Resize(width, height uint, img image.Image) image.Image
}

// TieredResizer is the compositor's resampling filter. It tries
// oov/downscale's cache-tiled RGBA downscaler first, the common case since
// a material tile is almost always larger than the grid
// cell it is shrunk into, and falls back to nfnt/resize (which handles
// both directions, at some cost to speed) whenever downscale can't apply:
// upscaling, or a source image that isn't already *image.RGBA.
type TieredResizer struct {
	// InterP is the interpolation function nfnt/resize falls back to.
	InterP resize.InterpolationFunction
}

// NewTieredResizer returns a TieredResizer using interP as its fallback
// interpolation function.
func NewTieredResizer(interP resize.InterpolationFunction) TieredResizer {
	return TieredResizer{InterP: interP}
}

// DefaultResizer is the resizer ComposeMosaic uses unless the caller
// supplies one.
var DefaultResizer = NewTieredResizer(resize.MitchellNetravali)

// Resize implements ImageResizer.
func (r TieredResizer) Resize(width, height uint, img image.Image) image.Image {
	bounds := img.Bounds()
	srcRGBA, isRGBA := img.(*image.RGBA)
	isDownscale := isRGBA && uint(bounds.Dx()) >= width && uint(bounds.Dy()) >= height
	if isDownscale {
		dest := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
		if err := downscale.RGBA(context.Background(), dest, srcRGBA); err == nil {
			return dest
		}
		log.Debug("oov/downscale fast path failed, falling back to nfnt/resize")
	}
	return resize.Resize(width, height, img, r.InterP)
}

// ResizeStrategy decides how to nicely scale an image so it fits a tile
// area, given an ImageResizer that does the actual scaling work.
type ResizeStrategy func(resizer ImageResizer, tileWidth, tileHeight uint, img image.Image) image.Image

// ForceResize resizes to exactly the given width and height, ignoring the
// aspect ratio of the original image.
func ForceResize(resizer ImageResizer, tileWidth, tileHeight uint, img image.Image) image.Image {
	return resizer.Resize(tileWidth, tileHeight, img)
}

// ColorAdjustment describes a post-selection color nudge applied to a tile
// before it is blitted into the mosaic, shifting its mean color towards the
// target region's mean color. The brightness, hue and saturation shifts
// that Apply derives are all damped by Strength, clamped to [0, 1].
type ColorAdjustment struct {
	// Strength in [0, 1] damps every shift Apply computes; 0 disables
	// adjustment entirely, 1 applies it at full effect.
	Strength float64
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// luma returns the perceptual luma of an 8-bit sRGB color in [0, 1].
func luma(c RGB) float64 {
	return (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255.0
}

// Apply shifts img's mean color towards target's mean color: brightness
// from the luma difference, hue and saturation from HSV deltas, all scaled
// by a.Strength clamped to [0, 1]. brightness+contrast are applied in sRGB
// as c' = clamp((c−0.5)·contrast + 0.5 + brightness, 0, 1), with contrast
// left at 1/identity here since the placer/compositor has no
// independent contrast signal, then hue and saturation in HSV, with a
// final clamp to [0, 1] before 8-bit quantization.
func (a ColorAdjustment) Apply(img image.Image, targetMean RGB) image.Image {
	strength := clamp01(a.Strength)
	if strength == 0 {
		return img
	}
	bounds := img.Bounds()
	imgMean := ComputeAverageRGB(img)

	brightness := strength * (luma(targetMean) - luma(imgMean))

	h1, s1, _ := rgbToHSV(imgMean)
	h2, s2, _ := rgbToHSV(targetMean)
	hueShift := strength * angularDelta(h2, h1)
	satMult := 1 + strength*(s2-s1)
	if satMult < 0 {
		satMult = 0
	}
	if satMult > 2 {
		satMult = 2
	}

	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := ConvertRGB(img.At(x, y))
			rgb := adjustPixel(c, brightness, hueShift, satMult)
			out.SetRGBA(x, y, color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255})
		}
	}
	return out
}

func adjustPixel(c RGB, brightness, hueShift, satMult float64) RGB {
	const contrast = 1.0 // identity; see ColorAdjustment.Apply doc comment
	r := clamp01((float64(c.R)/255-0.5)*contrast + 0.5 + brightness)
	g := clamp01((float64(c.G)/255-0.5)*contrast + 0.5 + brightness)
	b := clamp01((float64(c.B)/255-0.5)*contrast + 0.5 + brightness)

	h, s, v := rgbToHSV(RGB{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255)})
	h += hueShift
	for h < 0 {
		h += 360
	}
	for h >= 360 {
		h -= 360
	}
	s = clamp01(s * satMult)

	return hsvToRGB(h, s, v)
}

// ComputeAverageRGB computes the average 8-bit sRGB color of an image.
func ComputeAverageRGB(img image.Image) RGB {
	bounds := img.Bounds()
	if bounds.Empty() {
		return RGB{}
	}
	var r, g, b uint64
	n := uint64(bounds.Dx() * bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := ConvertRGB(img.At(x, y))
			r += uint64(c.R)
			g += uint64(c.G)
			b += uint64(c.B)
		}
	}
	return RGB{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n)}
}

// rgbToHSV converts 8-bit sRGB to HSV with hue in degrees [0,360) and
// saturation/value in [0,1].
func rgbToHSV(c RGB) (h, s, v float64) {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	v = max
	delta := max - min
	if max == 0 {
		return 0, 0, v
	}
	s = delta / max
	if delta == 0 {
		return 0, s, v
	}
	switch max {
	case r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

// hsvToRGB converts HSV (hue degrees, saturation/value in [0,1]) to 8-bit
// sRGB.
func hsvToRGB(h, s, v float64) RGB {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return RGB{
		R: uint8(clamp01(r+m) * 255),
		G: uint8(clamp01(g+m) * 255),
		B: uint8(clamp01(b+m) * 255),
	}
}

// angularDelta returns the signed shortest angular distance from b to a,
// in degrees, in [-180, 180).
func angularDelta(a, b float64) float64 {
	d := math.Mod(a-b+540, 360) - 180
	return d
}

// ComposeMosaic composes the final mosaic image from a filled Grid. tw, th
// are the per-cell tile dimensions. loadTile loads the material image for a
// given path (so tests can supply a synthetic loader); resizer and strategy
// scale it to fit the cell; adjustment (if Strength > 0) nudges its mean
// color towards the crop's mean color, computed from regionRGB. Output
// image dimensions are (g.W*tw) x (g.H*th).
//
// Cells are loaded, resized and blitted by numRoutines worker goroutines
// following the job/done channel pattern used by the tile loader: the
// output rectangles written by each job never overlap, so workers write
// directly into out with no locking. numRoutines <= 0 means 1.
func ComposeMosaic(g *Grid, tw, th int, loadTile func(path string) (image.Image, error),
	resizer ImageResizer, strategy ResizeStrategy, adjustment ColorAdjustment,
	regionRGB func(x, y int) RGB, numRoutines int) (image.Image, error) {
	if resizer == nil {
		resizer = DefaultResizer
	}
	if strategy == nil {
		strategy = ForceResize
	}
	if numRoutines <= 0 {
		numRoutines = 1
	}
	out := image.NewRGBA(image.Rect(0, 0, g.W*tw, g.H*th))

	type cellJob struct {
		x, y int
		path string
	}
	jobs := make(chan cellJob, BufferSize)
	done := make(chan bool, BufferSize)

	worker := func() {
		for next := range jobs {
			img, err := loadTile(next.path)
			if err != nil {
				log.WithError(err).WithField("path", next.path).Warn("Can't load tile for composition, leaving cell blank")
				done <- true
				continue
			}
			scaled := strategy(resizer, uint(tw), uint(th), img)
			if adjustment.Strength > 0 && regionRGB != nil {
				scaled = adjustment.Apply(scaled, regionRGB(next.x, next.y))
			}
			blit(out, scaled, next.x*tw, next.y*th, tw, th)
			done <- true
		}
	}
	for w := 0; w < numRoutines; w++ {
		go worker()
	}

	numJobs := 0
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if g.Get(x, y) != "" {
				numJobs++
			}
		}
	}

	go func() {
		for y := 0; y < g.H; y++ {
			for x := 0; x < g.W; x++ {
				if path := g.Get(x, y); path != "" {
					jobs <- cellJob{x: x, y: y, path: path}
				}
			}
		}
		close(jobs)
	}()
	for i := 0; i < numJobs; i++ {
		<-done
	}
	return out, nil
}

// blit copies a tw x th region of src into dst at (ox, oy).
func blit(dst *image.RGBA, src image.Image, ox, oy, tw, th int) {
	bounds := src.Bounds()
	for y := 0; y < th; y++ {
		for x := 0; x < tw; x++ {
			dst.Set(ox+x, oy+y, src.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
}
