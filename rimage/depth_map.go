// Package rimage defines the depth-image primitives used for grasp candidate
// generation: a floating point DepthMap, binary masks, gradient fields, and
// the filters connecting them.
package rimage

import (
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"go.viam.com/graspgen/utils"
)

// A DepthMap is a 2D array of depth values in meters. A depth of 0 marks a
// pixel with no valid sensor reading.
type DepthMap struct {
	width  int
	height int

	data []float64
}

// NewEmptyDepthMap returns an unset depth map of the given dimensions.
func NewEmptyDepthMap(width, height int) *DepthMap {
	return &DepthMap{
		width:  width,
		height: height,
		data:   make([]float64, width*height),
	}
}

// NewDepthMapFromData returns a depth map of the given dimensions backed by
// the given row-major data. The data is not copied.
func NewDepthMapFromData(width, height int, data []float64) *DepthMap {
	if len(data) != width*height {
		panic("rimage: depth data does not match dimensions")
	}
	return &DepthMap{width: width, height: height, data: data}
}

func (dm *DepthMap) kxy(x, y int) int {
	return (y * dm.width) + x
}

// Width returns the width of the depth map.
func (dm *DepthMap) Width() int {
	return dm.width
}

// Height returns the height of the depth map.
func (dm *DepthMap) Height() int {
	return dm.height
}

// Bounds returns the rectangle of valid coordinates.
func (dm *DepthMap) Bounds() image.Rectangle {
	return image.Rect(0, 0, dm.width, dm.height)
}

// In returns whether the given coordinate is within the map.
func (dm *DepthMap) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < dm.width && y < dm.height
}

// Get returns the depth at the given point in meters.
func (dm *DepthMap) Get(p image.Point) float64 {
	return dm.data[dm.kxy(p.X, p.Y)]
}

// GetDepth returns the depth at (x,y) in meters.
func (dm *DepthMap) GetDepth(x, y int) float64 {
	return dm.data[dm.kxy(x, y)]
}

// Set sets the depth at (x,y) in meters.
func (dm *DepthMap) Set(x, y int, val float64) {
	dm.data[dm.kxy(x, y)] = val
}

// Clone returns a deep copy.
func (dm *DepthMap) Clone() *DepthMap {
	out := NewEmptyDepthMap(dm.width, dm.height)
	copy(out.data, dm.data)
	return out
}

// MinMax returns the minimum and maximum depth over all valid (nonzero)
// pixels. If the map has no valid pixels, both returns are 0.
func (dm *DepthMap) MinMax() (float64, float64) {
	min := math.Inf(1)
	max := 0.0
	for _, z := range dm.data {
		if z == 0 {
			continue
		}
		if z < min {
			min = z
		}
		if z > max {
			max = z
		}
	}
	if max == 0 {
		return 0, 0
	}
	return min, max
}

// NonzeroPixels returns the coordinates of all pixels with a valid depth, in
// row-major order.
func (dm *DepthMap) NonzeroPixels() []image.Point {
	pts := make([]image.Point, 0)
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			if dm.data[dm.kxy(x, y)] != 0 {
				pts = append(pts, image.Point{x, y})
			}
		}
	}
	return pts
}

// MaskBinary returns a copy of the depth map with all pixels outside the
// given mask zeroed out.
func (dm *DepthMap) MaskBinary(mask *BinaryImage) *DepthMap {
	out := NewEmptyDepthMap(dm.width, dm.height)
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			if mask.GetXY(x, y) {
				out.Set(x, y, dm.GetDepth(x, y))
			}
		}
	}
	return out
}

// WindowMin returns the minimum raw depth value inside a window of
// half-height h and half-width w around (x,y), clipped to the image bounds.
// Zero (invalid) pixels participate, so a window touching missing depth
// reports 0.
func (dm *DepthMap) WindowMin(x, y, w, h int) float64 {
	min := math.Inf(1)
	for yy := y - h; yy < y+h; yy++ {
		for xx := x - w; xx < x+w; xx++ {
			if !dm.In(xx, yy) {
				continue
			}
			z := dm.GetDepth(xx, yy)
			if z < min {
				min = z
			}
		}
	}
	if math.IsInf(min, 1) {
		return 0
	}
	return min
}

// Rescale resamples the depth map by the given factor with nearest-neighbor
// interpolation, preserving the zero sentinel exactly.
func (dm *DepthMap) Rescale(factor float64) *DepthMap {
	newWidth := int(math.Max(1, math.Round(float64(dm.width)*factor)))
	newHeight := int(math.Max(1, math.Round(float64(dm.height)*factor)))
	out := NewEmptyDepthMap(newWidth, newHeight)
	for y := 0; y < newHeight; y++ {
		srcY := int(float64(y) / factor)
		if srcY >= dm.height {
			srcY = dm.height - 1
		}
		for x := 0; x < newWidth; x++ {
			srcX := int(float64(x) / factor)
			if srcX >= dm.width {
				srcX = dm.width - 1
			}
			out.Set(x, y, dm.GetDepth(srcX, srcY))
		}
	}
	return out
}

// ToPrettyPicture renders the depth map as a hue ramp for debugging, mapping
// [hardMin, hardMax] meters onto the ramp. Pass 0,0 to use the observed range.
func (dm *DepthMap) ToPrettyPicture(hardMin, hardMax float64) image.Image {
	min, max := dm.MinMax()
	if hardMin > 0 && min < hardMin {
		min = hardMin
	}
	if hardMax > 0 && max > hardMax {
		max = hardMax
	}

	img := image.NewRGBA(image.Rect(0, 0, dm.width, dm.height))
	span := max - min
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			z := dm.GetDepth(x, y)
			if z == 0 {
				continue
			}
			ratio := 0.0
			if span > 0 {
				ratio = (utils.Clamp(z, min, max) - min) / span
			}
			hue := 30 + (200.0 * ratio)
			img.Set(x, y, colorful.Hsv(hue, 1.0, 1.0))
		}
	}
	return img
}
