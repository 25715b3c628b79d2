// Package pointcloud defines a minimal in-memory point cloud keyed by
// position, for collaborators that consume deprojected depth data as an
// unorganized cloud.
package pointcloud

import (
	"image/color"

	"github.com/golang/geo/r3"
)

// NewVector is a convenience method for creating a vector.
func NewVector(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}

// Data describes the data associated with a single point within a PointCloud.
type Data interface {
	// HasColor returns whether or not this point is colored.
	HasColor() bool

	// RGB255 returns, if colored, the RGB components of the color.
	RGB255() (uint8, uint8, uint8)

	// Color returns the native color of the point.
	Color() color.Color
}

type basicData struct {
	hasColor bool
	c        color.NRGBA
}

// NewBasicData returns uncolored point data.
func NewBasicData() Data {
	return &basicData{}
}

// NewColoredData returns point data with the given color.
func NewColoredData(c color.NRGBA) Data {
	return &basicData{hasColor: true, c: c}
}

func (bd *basicData) HasColor() bool {
	return bd.hasColor
}

func (bd *basicData) RGB255() (uint8, uint8, uint8) {
	return bd.c.R, bd.c.G, bd.c.B
}

func (bd *basicData) Color() color.Color {
	return bd.c
}
