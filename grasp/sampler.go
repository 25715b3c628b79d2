package grasp

import (
	"math/rand"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"go.viam.com/graspgen/rimage"
	"go.viam.com/graspgen/transform"
	"go.viam.com/graspgen/utils"
)

// The supported sampler types for NewImageGraspSampler.
const (
	SamplerTypeAntipodalDepth = "antipodal_depth"
	SamplerTypeSuction        = "suction"
	SamplerTypeMultiSuction   = "multi_suction"
)

// An ImageGraspSampler samples grasp candidates from a single depth image.
// Samplers are safe for concurrent use across independent Sample calls: all
// per-call state, including the random number generators, lives in the call.
type ImageGraspSampler interface {
	// Sample returns up to numSamples grasp candidates from the given image.
	// The image must be a *rimage.DepthMap or a *rimage.ImageWithDepth; the
	// depth channel is extracted uniformly. An image with no usable edges or
	// surface points yields an empty list, not an error.
	Sample(
		img interface{},
		camera *transform.PinholeCameraIntrinsics,
		numSamples int,
		opts SampleOptions,
	) ([]Grasp, error)
}

// SampleOptions carries the optional arguments of a Sample call.
type SampleOptions struct {
	// Segmask, if set, restricts sampling to the masked region.
	Segmask *rimage.BinaryImage
	// Seed, if set, seeds the random number generators used by this call so
	// that identical inputs produce identical candidate lists.
	Seed *int64
	// Constraint, if set, is evaluated once per surviving candidate;
	// candidates it rejects are not returned.
	Constraint func(Grasp) bool
}

// NewImageGraspSampler builds a sampler of the given type from a flat
// attribute map. Missing required attributes and unsupported sampler types
// are construction errors; sampling itself never fails on configuration.
func NewImageGraspSampler(samplerType string, attrs utils.AttributeMap, logger golog.Logger) (ImageGraspSampler, error) {
	switch samplerType {
	case SamplerTypeAntipodalDepth:
		config, err := NewAntipodalGraspConfigFromAttributes(attrs)
		if err != nil {
			return nil, err
		}
		return NewAntipodalDepthImageGraspSampler(config, logger)
	case SamplerTypeSuction:
		config, err := NewSuctionConfigFromAttributes(SamplerTypeSuction, attrs)
		if err != nil {
			return nil, err
		}
		return NewDepthImageSuctionPointSampler(config, logger)
	case SamplerTypeMultiSuction:
		config, err := NewSuctionConfigFromAttributes(SamplerTypeMultiSuction, attrs)
		if err != nil {
			return nil, err
		}
		return NewDepthImageMultiSuctionPointSampler(config, logger)
	default:
		return nil, errors.Errorf("image grasp sampler type %q not supported", samplerType)
	}
}

// A DepthSource supplies the depth map of an otherwise richer image type,
// letting callers pass their own camera image wrappers to Sample.
type DepthSource interface {
	DepthMap() *rimage.DepthMap
}

// extractDepth pulls the depth channel out of a supported image input.
func extractDepth(img interface{}) (*rimage.DepthMap, error) {
	switch im := img.(type) {
	case *rimage.DepthMap:
		return im, nil
	case *rimage.ImageWithDepth:
		if im.Depth == nil {
			return nil, errors.New("image has no depth channel")
		}
		return im.Depth, nil
	case DepthSource:
		dm := im.DepthMap()
		if dm == nil {
			return nil, errors.New("image has no depth channel")
		}
		return dm, nil
	default:
		return nil, errors.Errorf("image type must be one of [*rimage.DepthMap, *rimage.ImageWithDepth, DepthSource], got %T", img)
	}
}

// sampleRNG holds the per-call random number generators: a general-purpose
// source for index subsampling and uniform draws, and a distribution source
// for gaussian perturbations. Both are derived from the same seed so a
// seeded call is fully deterministic.
type sampleRNG struct {
	*rand.Rand
	src *exprand.Rand
}

func newSampleRNG(seed *int64) *sampleRNG {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	return &sampleRNG{
		Rand: rand.New(rand.NewSource(s)),
		src:  exprand.New(exprand.NewSource(uint64(s))),
	}
}

// Normal draws from a gaussian with the given mean and standard deviation.
func (r *sampleRNG) Normal(mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: r.src}.Rand()
}

// Uniform draws uniformly from [min, max).
func (r *sampleRNG) Uniform(min, max float64) float64 {
	return distuv.Uniform{Min: min, Max: max, Src: r.src}.Rand()
}

// subsampleIndices returns sampleSize indices drawn from [0, n) uniformly at
// random without replacement.
func (r *sampleRNG) subsampleIndices(n, sampleSize int) []int {
	return r.Perm(n)[:sampleSize]
}

// timeSampling runs fn and logs how long the sampling phase took and how
// many candidates it produced.
func timeSampling(logger golog.Logger, name string, fn func() ([]Grasp, error)) ([]Grasp, error) {
	start := time.Now()
	grasps, err := fn()
	if err != nil {
		return nil, err
	}
	logger.Debugf("%s sampled %d grasps in %v", name, len(grasps), time.Since(start))
	return grasps, nil
}
