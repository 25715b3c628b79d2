// Package transform provides camera projection math: pinhole intrinsics,
// deprojection of depth maps into organized point-cloud and normal-cloud
// images, and conversion to unorganized point clouds.
package transform

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/graspgen/pointcloud"
	"go.viam.com/graspgen/rimage"
)

// ErrNoIntrinsics is when a camera does not have intrinsics parameters or
// other parameters.
var ErrNoIntrinsics = errors.New("camera intrinsic parameters are not available")

// NewNoIntrinsicsError is used when the intrinsics are not defined.
func NewNoIntrinsicsError(msg string) error {
	return errors.Wrapf(ErrNoIntrinsics, msg)
}

// PinholeCameraIntrinsics holds the parameters necessary to do a perspective
// projection of a 3D scene to the 2D plane, along with the name of the frame
// the camera reports poses in.
type PinholeCameraIntrinsics struct {
	Width  int     `json:"width_px"`
	Height int     `json:"height_px"`
	Fx     float64 `json:"fx"`
	Fy     float64 `json:"fy"`
	Ppx    float64 `json:"ppx"`
	Ppy    float64 `json:"ppy"`
	Frame  string  `json:"frame"`
}

// CheckValid checks if the fields for PinholeCameraIntrinsics have valid inputs.
func (params *PinholeCameraIntrinsics) CheckValid() error {
	if params == nil {
		return NewNoIntrinsicsError("Intrinsics do not exist")
	}
	if params.Width == 0 || params.Height == 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid size (%#v, %#v)", params.Width, params.Height))
	}
	if params.Fx <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fx = %#v", params.Fx))
	}
	if params.Fy <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fy = %#v", params.Fy))
	}
	if params.Ppx < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid principal X point Ppx = %#v", params.Ppx))
	}
	if params.Ppy < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid principal Y point Ppy = %#v", params.Ppy))
	}
	return nil
}

// NewPinholeCameraIntrinsicsFromJSONFile takes in a file path to a JSON and
// turns it into PinholeCameraIntrinsics.
func NewPinholeCameraIntrinsicsFromJSONFile(jsonPath string) (*PinholeCameraIntrinsics, error) {
	//nolint:gosec
	jsonFile, err := os.Open(jsonPath)
	if err != nil {
		return nil, errors.Wrap(err, "error opening JSON file")
	}
	defer utils.UncheckedErrorFunc(jsonFile.Close)
	byteValue, err := io.ReadAll(jsonFile)
	if err != nil {
		return nil, errors.Wrap(err, "error reading JSON data")
	}
	intrinsics := &PinholeCameraIntrinsics{}
	if err := json.Unmarshal(byteValue, intrinsics); err != nil {
		return nil, errors.Wrap(err, "error parsing JSON string")
	}
	if err := intrinsics.CheckValid(); err != nil {
		return nil, err
	}
	return intrinsics, nil
}

// PixelToPoint transforms a pixel with depth to a 3D point. The intrinsics
// parameters should be the ones of the sensor used to obtain the image that
// contains the pixel.
func (params *PinholeCameraIntrinsics) PixelToPoint(x, y, z float64) (float64, float64, float64) {
	xOverZ := (x - params.Ppx) / params.Fx
	yOverZ := (y - params.Ppy) / params.Fy
	return xOverZ * z, yOverZ * z, z
}

// PointToPixel projects a 3D point to a pixel in an image plane.
// The intrinsics parameters should be the ones of the sensor we want to project to.
func (params *PinholeCameraIntrinsics) PointToPixel(x, y, z float64) (float64, float64) {
	if z != 0. {
		xPx := math.Round((x/z)*params.Fx + params.Ppx)
		yPx := math.Round((y/z)*params.Fy + params.Ppy)
		return xPx, yPx
	}
	// if depth is zero at this pixel, return negative coordinates so that the
	// cropping to image bounds will filter it out
	return -1.0, -1.0
}

// FocalLengthPx returns the mean focal length in pixels, used to convert
// physical widths to pixel widths at a given depth.
func (params *PinholeCameraIntrinsics) FocalLengthPx() float64 {
	return (params.Fx + params.Fy) / 2.
}

// GetCameraMatrix creates a new camera matrix and returns it.
// Camera matrix:
// [[fx 0 ppx],
//
//	[0 fy ppy],
//	[0 0  1]]
func (params *PinholeCameraIntrinsics) GetCameraMatrix() *mat.Dense {
	if params == nil {
		return nil
	}
	cameraMatrix := mat.NewDense(3, 3, nil)
	cameraMatrix.Set(0, 0, params.Fx)
	cameraMatrix.Set(1, 1, params.Fy)
	cameraMatrix.Set(0, 2, params.Ppx)
	cameraMatrix.Set(1, 2, params.Ppy)
	cameraMatrix.Set(2, 2, 1)
	return cameraMatrix
}

// DepthMapToPointCloud uses the camera intrinsics to project a depth map into
// an unorganized point cloud. Pixels with no depth are skipped.
func (params *PinholeCameraIntrinsics) DepthMapToPointCloud(dm *rimage.DepthMap) (pointcloud.PointCloud, error) {
	if dm == nil {
		return nil, errors.New("no depth channel. Cannot project to pointcloud")
	}
	pc := pointcloud.NewWithPrealloc(dm.Width() * dm.Height())
	for y := 0; y < dm.Height(); y++ {
		for x := 0; x < dm.Width(); x++ {
			z := dm.GetDepth(x, y)
			if z == 0 {
				continue
			}
			px, py, pz := params.PixelToPoint(float64(x), float64(y), z)
			if err := pc.Set(pointcloud.NewVector(px, py, pz), pointcloud.NewBasicData()); err != nil {
				return nil, err
			}
		}
	}
	return pc, nil
}

// RGBDToPointCloud takes a color+depth image and uses the camera intrinsics
// to project it to a colored point cloud.
func (params *PinholeCameraIntrinsics) RGBDToPointCloud(iwd *rimage.ImageWithDepth) (pointcloud.PointCloud, error) {
	if iwd == nil || iwd.Depth == nil {
		return nil, errors.New("no depth channel. Cannot project to pointcloud")
	}
	if iwd.Color == nil {
		return nil, errors.New("no rgb channel. Cannot project to pointcloud")
	}
	if iwd.Color.Bounds().Dx() != iwd.Depth.Width() || iwd.Color.Bounds().Dy() != iwd.Depth.Height() {
		return nil, errors.Errorf("depth map and color dimensions don't match Depth(%d,%d) != Color(%d,%d)",
			iwd.Depth.Width(), iwd.Depth.Height(), iwd.Color.Bounds().Dx(), iwd.Color.Bounds().Dy())
	}
	dm := iwd.Depth
	pc := pointcloud.NewWithPrealloc(dm.Width() * dm.Height())
	min := iwd.Color.Bounds().Min
	for y := 0; y < dm.Height(); y++ {
		for x := 0; x < dm.Width(); x++ {
			z := dm.GetDepth(x, y)
			if z == 0 {
				continue
			}
			px, py, pz := params.PixelToPoint(float64(x), float64(y), z)
			r, g, b, _ := iwd.Color.At(min.X+x, min.Y+y).RGBA()
			data := pointcloud.NewColoredData(color.NRGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 255})
			if err := pc.Set(pointcloud.NewVector(px, py, pz), data); err != nil {
				return nil, err
			}
		}
	}
	return pc, nil
}
