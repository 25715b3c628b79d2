package rimage

import (
	"image"
	"image/color"
)

// A BinaryImage is a bitmap the size of an image, used both for segmentation
// masks and for thresholded edge maps.
type BinaryImage struct {
	width  int
	height int

	data []bool
}

// NewBinaryImage returns an all-false bitmap of the given dimensions.
func NewBinaryImage(width, height int) *BinaryImage {
	return &BinaryImage{
		width:  width,
		height: height,
		data:   make([]bool, width*height),
	}
}

// NewBinaryImageFromGray converts a grayscale image into a bitmap, treating
// any nonzero luminance as set.
func NewBinaryImageFromGray(img *image.Gray) *BinaryImage {
	bounds := img.Bounds()
	bi := NewBinaryImage(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if img.GrayAt(x, y).Y > 0 {
				bi.SetXY(x-bounds.Min.X, y-bounds.Min.Y, true)
			}
		}
	}
	return bi
}

func (bi *BinaryImage) kxy(x, y int) int {
	return (y * bi.width) + x
}

// Width returns the width of the bitmap.
func (bi *BinaryImage) Width() int {
	return bi.width
}

// Height returns the height of the bitmap.
func (bi *BinaryImage) Height() int {
	return bi.height
}

// In returns whether the given coordinate is within the bitmap.
func (bi *BinaryImage) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < bi.width && y < bi.height
}

// Get returns the bit at the given point.
func (bi *BinaryImage) Get(p image.Point) bool {
	return bi.data[bi.kxy(p.X, p.Y)]
}

// GetXY returns the bit at (x,y).
func (bi *BinaryImage) GetXY(x, y int) bool {
	return bi.data[bi.kxy(x, y)]
}

// SetXY sets the bit at (x,y).
func (bi *BinaryImage) SetXY(x, y int, val bool) {
	bi.data[bi.kxy(x, y)] = val
}

// NonzeroPixels returns the coordinates of all set bits in row-major order.
func (bi *BinaryImage) NonzeroPixels() []image.Point {
	pts := make([]image.Point, 0)
	for y := 0; y < bi.height; y++ {
		for x := 0; x < bi.width; x++ {
			if bi.data[bi.kxy(x, y)] {
				pts = append(pts, image.Point{x, y})
			}
		}
	}
	return pts
}

// ToGray renders the bitmap as a grayscale image with set bits white.
func (bi *BinaryImage) ToGray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, bi.width, bi.height))
	for y := 0; y < bi.height; y++ {
		for x := 0; x < bi.width; x++ {
			if bi.GetXY(x, y) {
				img.SetGray(x, y, color.Gray{255})
			}
		}
	}
	return img
}
