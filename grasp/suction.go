package grasp

import (
	"image"
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/graspgen/rimage"
	"go.viam.com/graspgen/transform"
	"go.viam.com/graspgen/utils"
)

// DepthImageSuctionPointSampler samples single-contact suction point
// candidates from the surface of a depth image.
type DepthImageSuctionPointSampler struct {
	config *SuctionConfig
	logger golog.Logger
}

// NewDepthImageSuctionPointSampler validates the config and returns a
// suction point sampler.
func NewDepthImageSuctionPointSampler(config *SuctionConfig, logger golog.Logger) (*DepthImageSuctionPointSampler, error) {
	if err := config.Validate(SamplerTypeSuction); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = golog.Global()
	}
	return &DepthImageSuctionPointSampler{config: config, logger: logger}, nil
}

// Sample returns up to numSamples suction points from the given image.
func (s *DepthImageSuctionPointSampler) Sample(
	img interface{},
	camera *transform.PinholeCameraIntrinsics,
	numSamples int,
	opts SampleOptions,
) ([]Grasp, error) {
	depthIm, err := extractDepth(img)
	if err != nil {
		return nil, err
	}
	rng := newSampleRNG(opts.Seed)
	return timeSampling(s.logger, SamplerTypeSuction, func() ([]Grasp, error) {
		return s.sampleSuctionPoints(depthIm, camera, numSamples, opts, rng)
	})
}

// suctionSurface is the shared front half of both suction pipelines: smooth
// the depth image, restrict it to the segmask, deproject it to a point cloud
// image with surface normals, and collect the pixels with valid depth.
func suctionSurface(
	rawDepth *rimage.DepthMap,
	camera *transform.PinholeCameraIntrinsics,
	segmask *rimage.BinaryImage,
	sigma float64,
) (*transform.PointCloudImage, *transform.NormalCloudImage, []image.Point) {
	depthIm := rawDepth.GaussianBlur(sigma)
	maskIm := depthIm
	if segmask != nil {
		maskIm = depthIm.MaskBinary(segmask)
	}
	cloud := camera.DeprojectDepthMap(maskIm)
	normals := cloud.NormalCloudImage()
	return cloud, normals, maskIm.NonzeroPixels()
}

// withinBoundary reports whether the pixel keeps the configured margin to
// every image border.
func withinBoundary(p image.Point, width, height int, margin float64) bool {
	return float64(p.X) >= margin &&
		float64(p.Y) >= margin &&
		float64(p.X) <= float64(width)-margin &&
		float64(p.Y) <= float64(height)-margin
}

func (s *DepthImageSuctionPointSampler) sampleSuctionPoints(
	rawDepth *rimage.DepthMap,
	camera *transform.PinholeCameraIntrinsics,
	numSamples int,
	opts SampleOptions,
	rng *sampleRNG,
) ([]Grasp, error) {
	config := s.config
	cloud, normals, surfacePixels := suctionSurface(rawDepth, camera, opts.Segmask, config.DepthGaussianSigma)
	s.logger.Debugf("found %d candidate surface pixels", len(surfacePixels))
	if len(surfacePixels) == 0 {
		return []Grasp{}, nil
	}

	maxAngle := utils.DegToRad(config.MaxSuctionDirOpticalAxisAngle)
	sampleSize := utils.MinInt(config.MaxNumSamples, len(surfacePixels))
	order := rng.subsampleIndices(len(surfacePixels), sampleSize)

	grasps := make([]Grasp, 0, numSamples)
	for k := 0; k < sampleSize && len(grasps) < numSamples; k++ {
		center := surfacePixels[order[k]]
		if !withinBoundary(center, rawDepth.Width(), rawDepth.Height(), config.MinDistFromBoundary) {
			continue
		}

		// approach along the inward surface normal
		axis := normals.Get(center).Mul(-1)
		if axis.Norm() == 0 {
			continue
		}
		depth := cloud.Get(center).Z + rng.Normal(config.MeanDepth, config.SigmaDepth)

		if angleToOpticalAxis(axis) >= maxAngle {
			continue
		}
		candidate := &SuctionPoint2D{
			Center: r2.Point{X: float64(center.X), Y: float64(center.Y)},
			Axis:   axis,
			Depth:  depth,
			Camera: camera,
		}
		if opts.Constraint != nil && !opts.Constraint(candidate) {
			continue
		}
		grasps = append(grasps, candidate)
	}
	return grasps, nil
}

// DepthImageMultiSuctionPointSampler samples full 6-DOF multi-cup suction
// grasp candidates from the surface of a depth image.
type DepthImageMultiSuctionPointSampler struct {
	config *SuctionConfig
	logger golog.Logger
}

// NewDepthImageMultiSuctionPointSampler validates the config and returns a
// multi-cup suction point sampler.
func NewDepthImageMultiSuctionPointSampler(config *SuctionConfig, logger golog.Logger) (*DepthImageMultiSuctionPointSampler, error) {
	if err := config.Validate(SamplerTypeMultiSuction); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = golog.Global()
	}
	return &DepthImageMultiSuctionPointSampler{config: config, logger: logger}, nil
}

// Sample returns up to numSamples multi-cup suction grasps from the given
// image.
func (s *DepthImageMultiSuctionPointSampler) Sample(
	img interface{},
	camera *transform.PinholeCameraIntrinsics,
	numSamples int,
	opts SampleOptions,
) ([]Grasp, error) {
	depthIm, err := extractDepth(img)
	if err != nil {
		return nil, err
	}
	rng := newSampleRNG(opts.Seed)
	return timeSampling(s.logger, SamplerTypeMultiSuction, func() ([]Grasp, error) {
		return s.sampleMultiSuctionPoints(depthIm, camera, numSamples, opts, rng)
	})
}

func (s *DepthImageMultiSuctionPointSampler) sampleMultiSuctionPoints(
	rawDepth *rimage.DepthMap,
	camera *transform.PinholeCameraIntrinsics,
	numSamples int,
	opts SampleOptions,
	rng *sampleRNG,
) ([]Grasp, error) {
	config := s.config
	cloud, normals, surfacePixels := suctionSurface(rawDepth, camera, opts.Segmask, config.DepthGaussianSigma)
	s.logger.Debugf("found %d candidate surface pixels", len(surfacePixels))
	if len(surfacePixels) == 0 {
		return []Grasp{}, nil
	}

	maxAngle := utils.DegToRad(config.MaxSuctionDirOpticalAxisAngle)
	sampleSize := utils.MinInt(config.MaxNumSamples, len(surfacePixels))
	order := rng.subsampleIndices(len(surfacePixels), sampleSize)

	grasps := make([]Grasp, 0, numSamples)
	for k := 0; k < sampleSize && len(grasps) < numSamples; k++ {
		center := surfacePixels[order[k]]
		orientation := rng.Uniform(0, 2*math.Pi)
		if !withinBoundary(center, rawDepth.Width(), rawDepth.Height(), config.MinDistFromBoundary) {
			continue
		}

		axis := normals.Get(center).Mul(-1)
		if axis.Norm() == 0 {
			continue
		}

		rotation := suctionFrame(axis, orientation)
		translation := cloud.Get(center)

		if angleToOpticalAxis(axis) >= maxAngle {
			continue
		}
		candidate := &MultiSuctionPoint2D{
			Rotation:    rotation,
			Translation: translation,
			Camera:      camera,
		}
		if opts.Constraint != nil && !opts.Constraint(candidate) {
			continue
		}
		grasps = append(grasps, candidate)
	}
	return grasps, nil
}

// suctionFrame builds the full grasp orientation for a multi-cup suction
// candidate. The approach axis becomes the x axis of the frame; the y axis is
// chosen in the image plane perpendicular to the approach axis, with an
// arbitrary fixed choice when the approach axis is the optical axis itself;
// the frame is then spun about the approach axis by orientation radians.
func suctionFrame(axis r3.Vector, orientation float64) *mat.Dense {
	xAxis := axis
	yAxis := r3.Vector{X: axis.Y, Y: -axis.X, Z: 0}
	if yAxis.Norm() == 0 {
		yAxis = r3.Vector{X: 1, Y: 0, Z: 0}
	}
	yAxis = yAxis.Normalize()
	zAxis := xAxis.Cross(yAxis)

	rotation := mat.NewDense(3, 3, []float64{
		xAxis.X, yAxis.X, zAxis.X,
		xAxis.Y, yAxis.Y, zAxis.Y,
		xAxis.Z, yAxis.Z, zAxis.Z,
	})
	var spun mat.Dense
	spun.Mul(rotation, rotationAboutX(orientation))
	return &spun
}

// rotationAboutX is the right-handed rotation matrix about the x axis.
func rotationAboutX(theta float64) *mat.Dense {
	c, s := math.Cos(theta), math.Sin(theta)
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	})
}
