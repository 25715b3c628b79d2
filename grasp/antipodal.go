package grasp

import (
	"image"
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/graspgen/rimage"
	"go.viam.com/graspgen/transform"
	"go.viam.com/graspgen/utils"
)

// AntipodalDepthImageGraspSampler samples parallel-jaw grasp candidates from
// antipodal point pairs found on depth image gradients.
type AntipodalDepthImageGraspSampler struct {
	config *AntipodalGraspConfig
	logger golog.Logger
}

// NewAntipodalDepthImageGraspSampler validates the config and returns an
// antipodal grasp sampler.
func NewAntipodalDepthImageGraspSampler(config *AntipodalGraspConfig, logger golog.Logger) (*AntipodalDepthImageGraspSampler, error) {
	if err := config.Validate(SamplerTypeAntipodalDepth); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = golog.Global()
	}
	return &AntipodalDepthImageGraspSampler{config: config, logger: logger}, nil
}

// Sample returns up to numSamples antipodal grasps from the given image.
func (s *AntipodalDepthImageGraspSampler) Sample(
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
	return timeSampling(s.logger, SamplerTypeAntipodalDepth, func() ([]Grasp, error) {
		return s.sampleAntipodalGrasps(depthIm, camera, numSamples, opts, rng)
	})
}

// detectEdgePixels finds candidate contact pixels by thresholding the depth
// gradients of a downsampled copy of the smoothed depth image, upsampling the
// found coordinates back to full resolution. If a segmask is given, edge
// pixels outside it are discarded. If too few edge pixels survive, edge
// detection is retried at full resolution to recover detail lost to
// downsampling on small or thin objects.
func (s *AntipodalDepthImageGraspSampler) detectEdgePixels(
	depthIm *rimage.DepthMap,
	segmask *rimage.BinaryImage,
) []image.Point {
	scale := 1.0 / s.config.DownsampleRate
	downsampled := depthIm.Rescale(scale)
	edges := downsampled.ThresholdGradients(s.config.DepthGradThresh)

	edgePixels := make([]image.Point, 0)
	for _, p := range edges.NonzeroPixels() {
		up := image.Point{
			X: int(float64(p.X) * s.config.DownsampleRate),
			Y: int(float64(p.Y) * s.config.DownsampleRate),
		}
		edgePixels = append(edgePixels, up)
	}
	edgePixels = filterByMask(edgePixels, segmask)

	if len(edgePixels) < s.config.MinNumEdgePixels {
		s.logger.Debugf("only %d edge pixels found, retrying edge detection at full resolution", len(edgePixels))
		edges = depthIm.ThresholdGradients(s.config.DepthGradThresh)
		edgePixels = filterByMask(edges.NonzeroPixels(), segmask)
	}
	return edgePixels
}

func filterByMask(pixels []image.Point, segmask *rimage.BinaryImage) []image.Point {
	if segmask == nil {
		return pixels
	}
	kept := make([]image.Point, 0, len(pixels))
	for _, p := range pixels {
		if segmask.In(p.X, p.Y) && segmask.Get(p) {
			kept = append(kept, p)
		}
	}
	return kept
}

// surfaceNormals returns the local 2D surface orientation at each edge pixel:
// the normalized numerical depth gradient, with a default axis for pixels
// where the gradient vanishes.
func surfaceNormals(depthIm *rimage.DepthMap, edgePixels []image.Point) []r2.Point {
	gradX, gradY := depthIm.NumericalGradient()
	normals := make([]r2.Point, len(edgePixels))
	for i, p := range edgePixels {
		n := r2.Point{X: gradX.At(p.Y, p.X), Y: gradY.At(p.Y, p.X)}
		if n.Norm() == 0 {
			n = r2.Point{X: 1, Y: 0}
		}
		normals[i] = n.Normalize()
	}
	return normals
}

// pairIndices is an ordered candidate contact pair.
type pairIndices struct {
	i, j int
}

// findAntipodalPairs prunes the full pairwise set of edge pixels down to
// pairs that pass the exact force-closure test. The first pass cuts on
// near-antiparallel normals and admissible pixel distance using the full
// pairwise inner-product and distance matrices; the second pass recomputes
// the contact axis per surviving pair and checks cone membership exactly.
func findAntipodalPairs(
	edgePixels []image.Point,
	normals []r2.Point,
	maxWidthPx, frictionCoef float64,
) []pairIndices {
	n := len(edgePixels)
	normalData := make([]float64, 0, 2*n)
	for _, nv := range normals {
		normalData = append(normalData, nv.X, nv.Y)
	}
	normalMat := mat.NewDense(n, 2, normalData)
	var normalIP mat.Dense
	normalIP.Mul(normalMat, normalMat.T())

	antiparallel := -math.Cos(math.Atan(frictionCoef))
	pairs := make([]pairIndices, 0)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if normalIP.At(i, j) >= antiparallel {
				continue
			}
			dist := pixelDist(edgePixels[i], edgePixels[j])
			if dist <= 0 || dist > maxWidthPx {
				continue
			}
			p1 := r2.Point{X: float64(edgePixels[i].X), Y: float64(edgePixels[i].Y)}
			p2 := r2.Point{X: float64(edgePixels[j].X), Y: float64(edgePixels[j].Y)}
			if !ForceClosure(p1, p2, normals[i], normals[j], frictionCoef) {
				continue
			}
			pairs = append(pairs, pairIndices{i, j})
		}
	}
	return pairs
}

func pixelDist(a, b image.Point) float64 {
	return math.Sqrt(utils.Square(float64(a.X-b.X)) + utils.Square(float64(a.Y-b.Y)))
}

// sampleAntipodalGrasps finds depth edges, prunes point pairs down to
// antipodal ones, then materializes grasps from a bounded random subsample of
// the surviving pairs until the requested count is reached or the subsample
// is exhausted.
func (s *AntipodalDepthImageGraspSampler) sampleAntipodalGrasps(
	rawDepth *rimage.DepthMap,
	camera *transform.PinholeCameraIntrinsics,
	numSamples int,
	opts SampleOptions,
	rng *sampleRNG,
) ([]Grasp, error) {
	config := s.config
	depthIm := rawDepth.GaussianBlur(config.DepthGradGaussianSigma)

	edgePixels := s.detectEdgePixels(depthIm, opts.Segmask)
	s.logger.Debugf("found %d edge pixels", len(edgePixels))
	if len(edgePixels) == 0 {
		return []Grasp{}, nil
	}

	maskIm := depthIm
	if opts.Segmask != nil {
		maskIm = depthIm.MaskBinary(opts.Segmask)
	}
	// the pixel span of the gripper is loosest at the closest observed depth
	minDepth, _ := maskIm.MinMax()
	minDepth += config.MinDepthOffset
	maxWidthPx := (&Grasp2D{
		Depth:  minDepth,
		Width:  config.GripperWidth,
		Camera: camera,
	}).WidthPx()

	normals := surfaceNormals(depthIm, edgePixels)

	pairs := findAntipodalPairs(edgePixels, normals, maxWidthPx, config.FrictionCoef)
	s.logger.Debugf("found %d antipodal pairs", len(pairs))
	if len(pairs) == 0 {
		return []Grasp{}, nil
	}

	sampleSize := utils.MinInt(config.MaxRejectionSamples, len(pairs))
	order := rng.subsampleIndices(len(pairs), sampleSize)

	depthSamplesPerGrasp := utils.MaxInt(config.DepthSamplesPerGrasp, 1)
	angleSigma := utils.DegToRad(config.GraspAngleSigma)

	grasps := make([]Grasp, 0, numSamples)
	for k := 0; k < sampleSize && len(grasps) < numSamples; k++ {
		pair := pairs[order[k]]
		p1 := edgePixels[pair.i]
		p2 := edgePixels[pair.j]
		n1 := normals[pair.i]
		n2 := normals[pair.j]

		// integer midpoint: the depth window and boundary check use the
		// unperturbed center pixel
		centerX := (p1.X + p2.X) / 2
		centerY := (p1.Y + p2.Y) / 2

		axis := r2.Point{X: float64(p2.X - p1.X), Y: float64(p2.Y - p1.Y)}.Normalize()
		theta := math.Pi / 2
		if axis.X != 0 {
			theta = math.Atan(axis.Y / axis.X)
		}

		center := r2.Point{X: float64(centerX), Y: float64(centerY)}
		if config.GraspCenterSigma > 0.0 {
			center = center.Add(r2.Point{
				X: rng.Normal(0, config.GraspCenterSigma),
				Y: rng.Normal(0, config.GraspCenterSigma),
			})
		}
		if angleSigma > 0.0 {
			theta += rng.Normal(0, angleSigma)
		}

		if float64(centerX) < config.MinDistFromBoundary ||
			float64(centerY) < config.MinDistFromBoundary ||
			float64(centerX) > float64(depthIm.Width())-config.MinDistFromBoundary ||
			float64(centerY) > float64(depthIm.Height())-config.MinDistFromBoundary {
			continue
		}

		for i := 0; i < depthSamplesPerGrasp && len(grasps) < numSamples; i++ {
			// min depth in the neighborhood of the center pixel
			centerDepth := depthIm.WindowMin(centerX, centerY, config.DepthSampleWinWidth, config.DepthSampleWinHeight)
			if centerDepth == 0 || math.IsNaN(centerDepth) {
				continue
			}
			sampleDepth := s.sampleDepth(centerDepth+config.MinDepthOffset, centerDepth+config.MaxDepthOffset, rng)

			candidate := &Grasp2D{
				Center:         center,
				Angle:          theta,
				Depth:          sampleDepth,
				Width:          config.GripperWidth,
				Camera:         camera,
				ContactPoints:  []image.Point{p1, p2},
				ContactNormals: []r2.Point{n1, n2},
			}
			if opts.Constraint != nil && !opts.Constraint(candidate) {
				continue
			}
			grasps = append(grasps, candidate)
		}
	}
	return grasps, nil
}

// sampleDepth draws a depth value from [minDepth, maxDepth] according to the
// configured depth sampling mode.
func (s *AntipodalDepthImageGraspSampler) sampleDepth(minDepth, maxDepth float64, rng *sampleRNG) float64 {
	switch s.config.DepthSamplingMode {
	case DepthSamplingModeMin:
		return minDepth
	case DepthSamplingModeMax:
		return maxDepth
	default:
		return rng.Uniform(minDepth, maxDepth)
	}
}
