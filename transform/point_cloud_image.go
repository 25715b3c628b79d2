package transform

import (
	"image"

	"github.com/golang/geo/r3"

	"go.viam.com/graspgen/rimage"
)

// A PointCloudImage is an organized point cloud: the deprojection of a depth
// map, keeping one 3D point per pixel. Pixels without depth hold the zero
// vector.
type PointCloudImage struct {
	width  int
	height int
	frame  string

	points []r3.Vector
}

// DeprojectDepthMap projects every valid pixel of the depth map into 3D,
// returning an organized point cloud in the camera frame.
func (params *PinholeCameraIntrinsics) DeprojectDepthMap(dm *rimage.DepthMap) *PointCloudImage {
	pci := &PointCloudImage{
		width:  dm.Width(),
		height: dm.Height(),
		frame:  params.Frame,
		points: make([]r3.Vector, dm.Width()*dm.Height()),
	}
	for y := 0; y < dm.Height(); y++ {
		for x := 0; x < dm.Width(); x++ {
			z := dm.GetDepth(x, y)
			if z == 0 {
				continue
			}
			px, py, pz := params.PixelToPoint(float64(x), float64(y), z)
			pci.points[pci.kxy(x, y)] = r3.Vector{X: px, Y: py, Z: pz}
		}
	}
	return pci
}

func (pci *PointCloudImage) kxy(x, y int) int {
	return (y * pci.width) + x
}

// Width returns the width of the image.
func (pci *PointCloudImage) Width() int {
	return pci.width
}

// Height returns the height of the image.
func (pci *PointCloudImage) Height() int {
	return pci.height
}

// Frame returns the camera frame the points are expressed in.
func (pci *PointCloudImage) Frame() string {
	return pci.frame
}

// Get returns the 3D point at the given pixel.
func (pci *PointCloudImage) Get(p image.Point) r3.Vector {
	return pci.points[pci.kxy(p.X, p.Y)]
}

// GetXY returns the 3D point at pixel (x,y).
func (pci *PointCloudImage) GetXY(x, y int) r3.Vector {
	return pci.points[pci.kxy(x, y)]
}

// A NormalCloudImage holds a unit surface normal per pixel, derived from a
// PointCloudImage. Normals point toward the camera (negative z component).
// Pixels where the normal is undefined hold the zero vector.
type NormalCloudImage struct {
	width  int
	height int

	normals []r3.Vector
}

// Sobel kernels over the organized cloud give the surface tangents in the
// image x and y directions; their cross product is the surface normal.
var (
	sobelX = [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	sobelY = [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
)

// NormalCloudImage computes the per-pixel surface normal field of the
// organized cloud.
func (pci *PointCloudImage) NormalCloudImage() *NormalCloudImage {
	nci := &NormalCloudImage{
		width:   pci.width,
		height:  pci.height,
		normals: make([]r3.Vector, pci.width*pci.height),
	}
	clamp := func(v, max int) int {
		if v < 0 {
			return 0
		}
		if v >= max {
			return max - 1
		}
		return v
	}
	for y := 0; y < pci.height; y++ {
		for x := 0; x < pci.width; x++ {
			var gx, gy r3.Vector
			for j := -1; j <= 1; j++ {
				for i := -1; i <= 1; i++ {
					pt := pci.GetXY(clamp(x+i, pci.width), clamp(y+j, pci.height))
					gx = gx.Add(pt.Mul(sobelX[j+1][i+1]))
					gy = gy.Add(pt.Mul(sobelY[j+1][i+1]))
				}
			}
			normal := gx.Cross(gy)
			if normal.Norm() == 0 {
				continue
			}
			normal = normal.Normalize()
			// normals face the camera
			if normal.Z > 0 {
				normal = normal.Mul(-1)
			}
			nci.normals[nci.kxy(x, y)] = normal
		}
	}
	return nci
}

func (nci *NormalCloudImage) kxy(x, y int) int {
	return (y * nci.width) + x
}

// Width returns the width of the image.
func (nci *NormalCloudImage) Width() int {
	return nci.width
}

// Height returns the height of the image.
func (nci *NormalCloudImage) Height() int {
	return nci.height
}

// Get returns the unit normal at the given pixel.
func (nci *NormalCloudImage) Get(p image.Point) r3.Vector {
	return nci.normals[nci.kxy(p.X, p.Y)]
}

// GetXY returns the unit normal at pixel (x,y).
func (nci *NormalCloudImage) GetXY(x, y int) r3.Vector {
	return nci.normals[nci.kxy(x, y)]
}
