package pointcloud

import (
	"github.com/golang/geo/r3"
)

// PointCloud is a set of points in 3D space, each optionally carrying data.
type PointCloud interface {
	// Size returns the number of points in the cloud.
	Size() int

	// At returns the data for the point at the given position, if it exists.
	At(x, y, z float64) (Data, bool)

	// Set adds a point with data to the cloud, replacing any point already at
	// that position.
	Set(p r3.Vector, d Data) error

	// Iterate visits every point until fn returns false.
	Iterate(fn func(p r3.Vector, d Data) bool)
}

// basicPointCloud is the basic implementation of the PointCloud interface,
// backed by a slice of points with a position index for lookups.
type basicPointCloud struct {
	points   []pointAndData
	indexMap map[r3.Vector]int
}

type pointAndData struct {
	p r3.Vector
	d Data
}

// New returns an empty PointCloud backed by a basicPointCloud.
func New() PointCloud {
	return NewWithPrealloc(0)
}

// NewWithPrealloc returns an empty, preallocated PointCloud backed by a
// basicPointCloud.
func NewWithPrealloc(size int) PointCloud {
	return &basicPointCloud{
		points:   make([]pointAndData, 0, size),
		indexMap: make(map[r3.Vector]int, size),
	}
}

func (cloud *basicPointCloud) Size() int {
	return len(cloud.points)
}

func (cloud *basicPointCloud) At(x, y, z float64) (Data, bool) {
	if i, ok := cloud.indexMap[r3.Vector{X: x, Y: y, Z: z}]; ok {
		return cloud.points[i].d, true
	}
	return nil, false
}

func (cloud *basicPointCloud) Set(p r3.Vector, d Data) error {
	if i, ok := cloud.indexMap[p]; ok {
		cloud.points[i].d = d
		return nil
	}
	cloud.indexMap[p] = len(cloud.points)
	cloud.points = append(cloud.points, pointAndData{p, d})
	return nil
}

func (cloud *basicPointCloud) Iterate(fn func(p r3.Vector, d Data) bool) {
	for _, pd := range cloud.points {
		if !fn(pd.p, pd.d) {
			return
		}
	}
}
