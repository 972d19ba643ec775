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
)

// RegionSampler crops a target image into a W×H grid of regions (tw, th =
// imgWidth/W, imgHeight/H by integer truncation) and reports each region's
// average color. It is the bridge between a real target image and the
// GreedyPlacer/Compositor, both of which only ask for a region's average
// color by grid position so they can be tested without real images.
type RegionSampler struct {
	target image.Image
	tw, th int
}

// NewRegionSampler returns a RegionSampler over target for a W×H grid.
func NewRegionSampler(target image.Image, w, h int) *RegionSampler {
	bounds := target.Bounds()
	return &RegionSampler{
		target: target,
		tw:     bounds.Dx() / w,
		th:     bounds.Dy() / h,
	}
}

// TileSize returns the per-cell crop dimensions (tw, th).
func (s *RegionSampler) TileSize() (tw, th int) {
	return s.tw, s.th
}

func (s *RegionSampler) crop(x, y int) image.Image {
	bounds := s.target.Bounds()
	r := image.Rect(
		bounds.Min.X+x*s.tw, bounds.Min.Y+y*s.th,
		bounds.Min.X+x*s.tw+s.tw, bounds.Min.Y+y*s.th+s.th,
	).Intersect(bounds)
	if sub, ok := s.target.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(r)
	}
	return croppedImage{img: s.target, rect: r}
}

// Lab returns the average L*a*b* color of grid region (x, y).
func (s *RegionSampler) Lab(x, y int) Lab {
	return ComputeAverageLab(s.crop(x, y))
}

// RGB returns the average 8-bit sRGB color of grid region (x, y).
func (s *RegionSampler) RGB(x, y int) RGB {
	return ComputeAverageRGB(s.crop(x, y))
}

// croppedImage is a fallback image.Image view over a sub-rectangle of img,
// used when img doesn't implement the SubImage optimization most standard
// library image types provide.
type croppedImage struct {
	img  image.Image
	rect image.Rectangle
}

func (c croppedImage) ColorModel() color.Model      { return c.img.ColorModel() }
func (c croppedImage) Bounds() image.Rectangle      { return c.rect }
func (c croppedImage) At(x, y int) color.Color      { return c.img.At(x, y) }
