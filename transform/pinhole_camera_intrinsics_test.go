package transform

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/graspgen/rimage"
)

func testCamera() *PinholeCameraIntrinsics {
	return &PinholeCameraIntrinsics{
		Width:  640,
		Height: 480,
		Fx:     500,
		Fy:     500,
		Ppx:    320,
		Ppy:    240,
		Frame:  "camera",
	}
}

func TestPixelProjectionRoundTrip(t *testing.T) {
	camera := testCamera()

	x, y, z := camera.PixelToPoint(320, 240, 1.0)
	test.That(t, x, test.ShouldEqual, 0.0)
	test.That(t, y, test.ShouldEqual, 0.0)
	test.That(t, z, test.ShouldEqual, 1.0)

	for _, px := range []struct{ u, v, z float64 }{
		{100, 200, 0.5},
		{320, 240, 1.0},
		{639, 479, 2.0},
	} {
		wx, wy, wz := camera.PixelToPoint(px.u, px.v, px.z)
		u, v := camera.PointToPixel(wx, wy, wz)
		test.That(t, u, test.ShouldEqual, px.u)
		test.That(t, v, test.ShouldEqual, px.v)
	}

	u, v := camera.PointToPixel(0.1, 0.1, 0)
	test.That(t, u, test.ShouldEqual, -1.0)
	test.That(t, v, test.ShouldEqual, -1.0)
}

func TestCheckValid(t *testing.T) {
	test.That(t, testCamera().CheckValid(), test.ShouldBeNil)

	var nilCamera *PinholeCameraIntrinsics
	err := nilCamera.CheckValid()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrNoIntrinsics), test.ShouldBeTrue)

	badFocal := testCamera()
	badFocal.Fx = 0
	test.That(t, badFocal.CheckValid(), test.ShouldNotBeNil)

	badSize := testCamera()
	badSize.Width = 0
	test.That(t, badSize.CheckValid(), test.ShouldNotBeNil)
}

func TestIntrinsicsFromJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intrinsics.json")
	body := `{"width_px": 640, "height_px": 480, "fx": 500, "fy": 500, "ppx": 320, "ppy": 240, "frame": "camera"}`
	test.That(t, os.WriteFile(path, []byte(body), 0o600), test.ShouldBeNil)

	intrinsics, err := NewPinholeCameraIntrinsicsFromJSONFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, intrinsics, test.ShouldResemble, testCamera())

	// invalid intrinsics are rejected at load time
	bad := filepath.Join(t.TempDir(), "bad.json")
	test.That(t, os.WriteFile(bad, []byte(`{"width_px": 640}`), 0o600), test.ShouldBeNil)
	_, err = NewPinholeCameraIntrinsicsFromJSONFile(bad)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewPinholeCameraIntrinsicsFromJSONFile(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFocalLengthPx(t *testing.T) {
	camera := testCamera()
	test.That(t, camera.FocalLengthPx(), test.ShouldEqual, 500.0)
	camera.Fy = 600
	test.That(t, camera.FocalLengthPx(), test.ShouldEqual, 550.0)
}

func TestGetCameraMatrix(t *testing.T) {
	camera := testCamera()
	m := camera.GetCameraMatrix()
	test.That(t, m.At(0, 0), test.ShouldEqual, 500.0)
	test.That(t, m.At(1, 1), test.ShouldEqual, 500.0)
	test.That(t, m.At(0, 2), test.ShouldEqual, 320.0)
	test.That(t, m.At(1, 2), test.ShouldEqual, 240.0)
	test.That(t, m.At(2, 2), test.ShouldEqual, 1.0)
	test.That(t, m.At(1, 0), test.ShouldEqual, 0.0)
}

func TestDepthMapToPointCloud(t *testing.T) {
	camera := testCamera()
	dm := rimage.NewEmptyDepthMap(640, 480)
	dm.Set(320, 240, 1.0)
	dm.Set(0, 0, 0.5)

	pc, err := camera.DepthMapToPointCloud(dm)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 2)

	_, got := pc.At(0, 0, 1.0)
	test.That(t, got, test.ShouldBeTrue)

	_, err = camera.DepthMapToPointCloud(nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRGBDToPointCloud(t *testing.T) {
	camera := testCamera()
	dm := rimage.NewEmptyDepthMap(640, 480)
	dm.Set(320, 240, 1.0)

	colorImg := image.NewNRGBA(image.Rect(0, 0, 640, 480))
	colorImg.SetNRGBA(320, 240, color.NRGBA{255, 0, 0, 255})
	iwd := rimage.MakeImageWithDepth(colorImg, dm)

	pc, err := camera.RGBDToPointCloud(iwd)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 1)
	data, got := pc.At(0, 0, 1.0)
	test.That(t, got, test.ShouldBeTrue)
	test.That(t, data.HasColor(), test.ShouldBeTrue)
	r, g, b := data.RGB255()
	test.That(t, r, test.ShouldEqual, uint8(255))
	test.That(t, g, test.ShouldEqual, uint8(0))
	test.That(t, b, test.ShouldEqual, uint8(0))

	// dimension mismatch is an error
	small := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	_, err = camera.RGBDToPointCloud(rimage.MakeImageWithDepth(small, dm))
	test.That(t, err, test.ShouldNotBeNil)
}
