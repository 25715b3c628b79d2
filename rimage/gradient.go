package rimage

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Vec2D represents the gradient of a depth map at a point.
// The gradient has both a magnitude and direction.
// Magnitude has values [0, infinity) and direction is [-pi, pi].
type Vec2D struct {
	magnitude float64
	direction float64
}

// Magnitude returns the magnitude of the gradient.
func (g Vec2D) Magnitude() float64 {
	return g.magnitude
}

// Direction returns the direction of the gradient.
func (g Vec2D) Direction() float64 {
	return g.direction
}

// VectorField2D stores all the gradient vectors of a depth map,
// allowing one to retrieve the gradient for any given (x,y) point.
type VectorField2D struct {
	width  int
	height int

	data         []Vec2D
	maxMagnitude float64
}

func (vf *VectorField2D) kxy(x, y int) int {
	return (y * vf.width) + x
}

// Width returns the width of the field.
func (vf *VectorField2D) Width() int {
	return vf.width
}

// Height returns the height of the field.
func (vf *VectorField2D) Height() int {
	return vf.height
}

// MaxMagnitude returns the largest magnitude in the field.
func (vf *VectorField2D) MaxMagnitude() float64 {
	return vf.maxMagnitude
}

// Get returns the gradient at the given point.
func (vf *VectorField2D) Get(p image.Point) Vec2D {
	return vf.data[vf.kxy(p.X, p.Y)]
}

// GetVec2D returns the gradient at (x,y).
func (vf *VectorField2D) GetVec2D(x, y int) Vec2D {
	return vf.data[vf.kxy(x, y)]
}

// Set sets the gradient at (x,y).
func (vf *VectorField2D) Set(x, y int, val Vec2D) {
	vf.data[vf.kxy(x, y)] = val
	vf.maxMagnitude = math.Max(math.Abs(val.Magnitude()), vf.maxMagnitude)
}

// MakeEmptyVectorField2D returns an unset field of the given dimensions.
func MakeEmptyVectorField2D(width, height int) VectorField2D {
	return VectorField2D{
		width:        width,
		height:       height,
		data:         make([]Vec2D, width*height),
		maxMagnitude: 0.0,
	}
}

// MagnitudeField returns all the magnitudes of the gradients in the field as
// a mat.Dense.
func (vf *VectorField2D) MagnitudeField() *mat.Dense {
	h, w := vf.Height(), vf.Width()
	mag := make([]float64, 0, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mag = append(mag, vf.GetVec2D(x, y).Magnitude())
		}
	}
	return mat.NewDense(h, w, mag)
}

// DirectionField returns all the directions of the gradients in the field as
// a mat.Dense.
func (vf *VectorField2D) DirectionField() *mat.Dense {
	h, w := vf.Height(), vf.Width()
	dir := make([]float64, 0, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dir = append(dir, vf.GetVec2D(x, y).Direction())
		}
	}
	return mat.NewDense(h, w, dir)
}

// VectorField2DFromDense returns a VectorField2D from mat.Dense matrices of
// the magnitude and direction of the gradients of a depth map.
func VectorField2DFromDense(magnitude, direction *mat.Dense) (*VectorField2D, error) {
	magH, magW := magnitude.Dims()
	dirH, dirW := direction.Dims()
	if magW != dirW || magH != dirH {
		return nil, errors.Errorf("cannot make VectorField2D from two matrices of different sizes (%v,%v), (%v,%v)", magW, magH, dirW, dirH)
	}
	maxMag := 0.0
	g := make([]Vec2D, 0, dirW*dirH)
	for y := 0; y < dirH; y++ {
		for x := 0; x < dirW; x++ {
			g = append(g, Vec2D{magnitude.At(y, x), direction.At(y, x)}) // in mat.Dense, indexing is (row, column)
			maxMag = math.Max(math.Abs(magnitude.At(y, x)), maxMag)
		}
	}
	return &VectorField2D{dirW, dirH, g, maxMag}, nil
}

// SobelGradients approximates the depth gradient at every pixel of the depth
// map with the Sobel kernels and returns the gradients as a vector field.
func (dm *DepthMap) SobelGradients() VectorField2D {
	filter := SobelDepthFilter()
	vf := MakeEmptyVectorField2D(dm.width, dm.height)
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			sX, sY := filter(image.Point{x, y}, dm)
			mag, dir := getMagnitudeAndDirection(sX, sY)
			vf.Set(x, y, Vec2D{mag, dir})
		}
	}
	return vf
}

// ThresholdGradients computes the depth gradient field and returns a binary
// edge map with bits set wherever the gradient magnitude exceeds the given
// threshold.
func (dm *DepthMap) ThresholdGradients(thresh float64) *BinaryImage {
	vf := dm.SobelGradients()
	edges := NewBinaryImage(dm.width, dm.height)
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			if vf.GetVec2D(x, y).Magnitude() > thresh {
				edges.SetXY(x, y, true)
			}
		}
	}
	return edges
}

// NumericalGradient computes the central-difference gradient of the depth map
// in the x and y directions, with one-sided differences at the image borders.
// The returned matrices are indexed (row, column).
func (dm *DepthMap) NumericalGradient() (*mat.Dense, *mat.Dense) {
	gradX := mat.NewDense(dm.height, dm.width, nil)
	gradY := mat.NewDense(dm.height, dm.width, nil)
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			gradX.Set(y, x, oneAxisDiff(x, dm.width, func(v int) float64 { return dm.GetDepth(v, y) }))
			gradY.Set(y, x, oneAxisDiff(y, dm.height, func(v int) float64 { return dm.GetDepth(x, v) }))
		}
	}
	return gradX, gradY
}

func oneAxisDiff(v, size int, at func(v int) float64) float64 {
	switch {
	case size < 2:
		return 0
	case v == 0:
		return at(1) - at(0)
	case v == size-1:
		return at(size-1) - at(size-2)
	default:
		return (at(v+1) - at(v-1)) / 2.
	}
}

func getMagnitudeAndDirection(x, y float64) (float64, float64) {
	return math.Hypot(x, y), math.Atan2(y, x)
}

// ToPrettyPicture renders the direction that the gradients point to in the
// original depth map, with brightness scaled by magnitude.
func (vf *VectorField2D) ToPrettyPicture() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, vf.Width(), vf.Height()))
	for y := 0; y < vf.Height(); y++ {
		for x := 0; x < vf.Width(); x++ {
			g := vf.GetVec2D(x, y)
			if g.Magnitude() == 0 {
				img.Set(x, y, color.Black)
				continue
			}
			deg := radZeroTo2Pi(g.Direction()) * (180. / math.Pi)
			img.Set(x, y, colorful.Hsv(deg, 1.0, g.Magnitude()/vf.maxMagnitude))
		}
	}
	return img
}

// changes the radians from between -pi,pi to 0,2pi.
func radZeroTo2Pi(rad float64) float64 {
	if rad < 0. {
		rad += 2. * math.Pi
	}
	return rad
}
