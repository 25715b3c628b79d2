package rimage

import (
	"image"
	"image/color"
	"testing"

	"go.viam.com/test"
)

func TestNewBinaryImageFromGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 3))
	img.SetGray(1, 0, color.Gray{255})
	img.SetGray(3, 2, color.Gray{1})

	bi := NewBinaryImageFromGray(img)
	test.That(t, bi.Width(), test.ShouldEqual, 4)
	test.That(t, bi.Height(), test.ShouldEqual, 3)
	test.That(t, bi.GetXY(1, 0), test.ShouldBeTrue)
	test.That(t, bi.GetXY(3, 2), test.ShouldBeTrue)
	test.That(t, bi.GetXY(0, 0), test.ShouldBeFalse)
	test.That(t, bi.NonzeroPixels(), test.ShouldResemble, []image.Point{{1, 0}, {3, 2}})

	// roundtrip through ToGray keeps the same set bits
	again := NewBinaryImageFromGray(bi.ToGray())
	test.That(t, again.NonzeroPixels(), test.ShouldResemble, bi.NonzeroPixels())
}

func TestNewBinaryImageFromGraySubImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 6, 6))
	img.SetGray(3, 4, color.Gray{255})

	sub, ok := img.SubImage(image.Rect(2, 2, 6, 6)).(*image.Gray)
	test.That(t, ok, test.ShouldBeTrue)

	// bitmap coordinates are relative to the subimage origin
	bi := NewBinaryImageFromGray(sub)
	test.That(t, bi.Width(), test.ShouldEqual, 4)
	test.That(t, bi.Height(), test.ShouldEqual, 4)
	test.That(t, bi.GetXY(1, 2), test.ShouldBeTrue)
	test.That(t, bi.NonzeroPixels(), test.ShouldHaveLength, 1)
}
