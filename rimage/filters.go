package rimage

import (
	"image"
	"math"

	"go.viam.com/graspgen/utils"
)

// Helper function for convolving kernels with depth maps. When used with
// i, dx := range makeRangeArray(n), i is the position within the kernel and
// dx gives the offset within the depth map.
// If length is even, the origin is to the right of middle i.e. 4 -> {-2, -1, 0, 1}.
func makeRangeArray(length int) []int {
	if length <= 0 {
		return make([]int, 0)
	}
	rangeArray := make([]int, length)
	var span int
	if length%2 == 0 {
		oddArr := makeRangeArray(length - 1)
		span = length / 2
		rangeArray = append([]int{-span}, oddArr...)
	} else {
		span = (length - 1) / 2
		for i := 0; i < span; i++ {
			rangeArray[length-1-i] = span - i
			rangeArray[i] = -span + i
		}
	}
	return rangeArray
}

// GaussianFunction1D takes in a sigma and returns a gaussian function useful
// for weighing averages or blurring.
func GaussianFunction1D(sigma float64) func(p float64) float64 {
	if sigma <= 0. {
		return func(p float64) float64 {
			return 1.
		}
	}
	return func(p float64) float64 {
		return math.Exp(-0.5*utils.Square(p)/utils.Square(sigma)) / (sigma * math.Sqrt(2.*math.Pi))
	}
}

// GaussianFunction2D takes in a sigma and returns an isotropic 2D gaussian.
func GaussianFunction2D(sigma float64) func(p1, p2 float64) float64 {
	if sigma <= 0. {
		return func(p1, p2 float64) float64 {
			return 1.
		}
	}
	return func(p1, p2 float64) float64 {
		return math.Exp(-0.5*(p1*p1+p2*p2)/utils.Square(sigma)) / (sigma * sigma * 2. * math.Pi)
	}
}

// GaussianKernel creates a 2D gaussian kernel. The size of the kernel is
// determined by sigma; it spans 3 sigma worth of the function on either side.
func GaussianKernel(sigma float64) [][]float64 {
	gaus2D := GaussianFunction2D(sigma)
	k := utils.MaxInt(3, 1+2*int(math.Ceil(3.*sigma)))
	xRange := makeRangeArray(k)
	yRange := makeRangeArray(k)
	kernel := make([][]float64, 0, k)
	for _, y := range yRange {
		row := make([]float64, k)
		for i, x := range xRange {
			row[i] = gaus2D(float64(x), float64(y))
		}
		kernel = append(kernel, row)
	}
	return kernel
}

// GaussianFilter returns a function that smooths a depth map around a point
// with a gaussian kernel of the given sigma. Invalid (zero) pixels carry no
// weight, and an invalid center pixel stays invalid so the missing-depth
// sentinel survives the blur.
func GaussianFilter(sigma float64) func(p image.Point, dm *DepthMap) float64 {
	kernel := GaussianKernel(sigma)
	k := len(kernel)
	xRange, yRange := makeRangeArray(k), makeRangeArray(k)
	filter := func(p image.Point, dm *DepthMap) float64 {
		if dm.Get(p) == 0 {
			return 0
		}
		val := 0.0
		weight := 0.0
		for i, dx := range xRange {
			for j, dy := range yRange {
				if !dm.In(p.X+dx, p.Y+dy) {
					continue
				}
				d := dm.GetDepth(p.X+dx, p.Y+dy)
				if d == 0.0 {
					continue
				}
				// rows are height j, columns are width i
				val += kernel[j][i] * d
				weight += kernel[j][i]
			}
		}
		return math.Max(0, val/weight)
	}
	return filter
}

// GaussianBlur smooths the depth map with an isotropic gaussian of the given
// sigma. A sigma of zero or less returns an untouched copy.
func (dm *DepthMap) GaussianBlur(sigma float64) *DepthMap {
	if sigma <= 0. {
		return dm.Clone()
	}
	filter := GaussianFilter(sigma)
	out := NewEmptyDepthMap(dm.width, dm.height)
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			p := image.Point{x, y}
			out.Set(x, y, filter(p, dm))
		}
	}
	return out
}

// Sobel filters are used to approximate the gradient of the depth.
// One filter for each direction.
var (
	sobelX = [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	sobelY = [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
)

// SobelDepthFilter approximates the depth gradient in the X and Y direction
// at a pixel by applying the Sobel kernels over the 3x3 square around it.
// Samples outside the image replicate the border pixel so that a flat depth
// map has zero gradient everywhere, including at the edges of the image.
func SobelDepthFilter() func(p image.Point, dm *DepthMap) (float64, float64) {
	xRange, yRange := makeRangeArray(3), makeRangeArray(3)
	clamp := func(v, max int) int {
		if v < 0 {
			return 0
		}
		if v >= max {
			return max - 1
		}
		return v
	}
	filter := func(p image.Point, dm *DepthMap) (float64, float64) {
		sX, sY := 0.0, 0.0
		for i, dx := range xRange {
			for j, dy := range yRange {
				d := dm.GetDepth(clamp(p.X+dx, dm.width), clamp(p.Y+dy, dm.height))
				// rows are height j, columns are width i
				sX += sobelX[j][i] * d
				sY += sobelY[j][i] * d
			}
		}
		return sX, sY
	}
	return filter
}
