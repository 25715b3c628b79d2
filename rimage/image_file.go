package rimage

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// depth images stored as 16-bit grayscale encode depth in tenths of a
// millimeter, giving a range of about 6.5m
const depthPerGrayUnit = 0.0001

// ReadImageFromFile reads an image from the given path.
func ReadImageFromFile(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open image %q", path)
	}
	return img, nil
}

// WriteImageToFile writes an image out to the given path, with the format
// determined by the extension.
func WriteImageToFile(path string, img image.Image) error {
	return imaging.Save(img, path)
}

// ConvertImageToDepthMap reinterprets a 16-bit grayscale image as a depth
// map in meters.
func ConvertImageToDepthMap(img image.Image) (*DepthMap, error) {
	g16, ok := img.(*image.Gray16)
	if !ok {
		return nil, errors.Errorf("cannot convert image type %T to a depth map", img)
	}
	bounds := g16.Bounds()
	dm := NewEmptyDepthMap(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			z := g16.Gray16At(x, y).Y
			dm.Set(x-bounds.Min.X, y-bounds.Min.Y, float64(z)*depthPerGrayUnit)
		}
	}
	return dm, nil
}

// ToGray16Picture renders the depth map as a 16-bit grayscale image in
// tenths of a millimeter, the inverse of ConvertImageToDepthMap.
func (dm *DepthMap) ToGray16Picture() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, dm.width, dm.height))
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			img.SetGray16(x, y, grayFromDepth(dm.GetDepth(x, y)))
		}
	}
	return img
}

func grayFromDepth(z float64) color.Gray16 {
	v := z / depthPerGrayUnit
	if v < 0 {
		v = 0
	}
	if v > 65535 {
		v = 65535
	}
	return color.Gray16{uint16(v)}
}
