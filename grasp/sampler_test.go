package grasp

import (
	"image"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"go.viam.com/graspgen/rimage"
)

func TestNewImageGraspSampler(t *testing.T) {
	logger := golog.NewTestLogger(t)

	sampler, err := NewImageGraspSampler(SamplerTypeAntipodalDepth, validAntipodalAttributes(), logger)
	test.That(t, err, test.ShouldBeNil)
	_, ok := sampler.(*AntipodalDepthImageGraspSampler)
	test.That(t, ok, test.ShouldBeTrue)

	sampler, err = NewImageGraspSampler(SamplerTypeSuction, validSuctionAttributes(), logger)
	test.That(t, err, test.ShouldBeNil)
	_, ok = sampler.(*DepthImageSuctionPointSampler)
	test.That(t, ok, test.ShouldBeTrue)

	sampler, err = NewImageGraspSampler(SamplerTypeMultiSuction, validSuctionAttributes(), logger)
	test.That(t, err, test.ShouldBeNil)
	_, ok = sampler.(*DepthImageMultiSuctionPointSampler)
	test.That(t, ok, test.ShouldBeTrue)
}

func TestNewImageGraspSamplerNilLogger(t *testing.T) {
	sampler, err := NewImageGraspSampler(SamplerTypeAntipodalDepth, validAntipodalAttributes(), nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sampler.(*AntipodalDepthImageGraspSampler).logger, test.ShouldNotBeNil)

	sampler, err = NewImageGraspSampler(SamplerTypeSuction, validSuctionAttributes(), nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sampler.(*DepthImageSuctionPointSampler).logger, test.ShouldNotBeNil)

	sampler, err = NewImageGraspSampler(SamplerTypeMultiSuction, validSuctionAttributes(), nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sampler.(*DepthImageMultiSuctionPointSampler).logger, test.ShouldNotBeNil)
}

func TestNewImageGraspSamplerUnknownType(t *testing.T) {
	logger := golog.NewTestLogger(t)
	_, err := NewImageGraspSampler("vacuum", validSuctionAttributes(), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "not supported")
}

func TestNewImageGraspSamplerBadAttributes(t *testing.T) {
	logger := golog.NewTestLogger(t)
	_, err := NewImageGraspSampler(SamplerTypeAntipodalDepth, nil, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSampleWithImageWithDepth(t *testing.T) {
	logger := golog.NewTestLogger(t)
	sampler, err := NewImageGraspSampler(SamplerTypeSuction, validSuctionAttributes(), logger)
	test.That(t, err, test.ShouldBeNil)

	color := image.NewRGBA(image.Rect(0, 0, 100, 100))
	iwd := rimage.MakeImageWithDepth(color, flatScene(100, 100, 0.5))
	seed := int64(1)
	grasps, err := sampler.Sample(iwd, testIntrinsics(), 3, SampleOptions{Seed: &seed})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, grasps, test.ShouldHaveLength, 3)

	// the depth channel drives sampling, the color channel is optional
	onlyDepth, err := sampler.Sample(flatScene(100, 100, 0.5), testIntrinsics(), 3, SampleOptions{Seed: &seed})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(onlyDepth), test.ShouldEqual, len(grasps))
}

type depthHolder struct {
	dm *rimage.DepthMap
}

func (dh *depthHolder) DepthMap() *rimage.DepthMap {
	return dh.dm
}

func TestSampleWithDepthSource(t *testing.T) {
	logger := golog.NewTestLogger(t)
	sampler, err := NewImageGraspSampler(SamplerTypeSuction, validSuctionAttributes(), logger)
	test.That(t, err, test.ShouldBeNil)

	seed := int64(1)
	grasps, err := sampler.Sample(&depthHolder{flatScene(100, 100, 0.5)}, testIntrinsics(), 3, SampleOptions{Seed: &seed})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, grasps, test.ShouldHaveLength, 3)

	_, err = sampler.Sample(&depthHolder{}, testIntrinsics(), 3, SampleOptions{})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSubsampleIndices(t *testing.T) {
	seed := int64(99)
	rng := newSampleRNG(&seed)
	indices := rng.subsampleIndices(10, 4)
	test.That(t, indices, test.ShouldHaveLength, 4)
	seen := map[int]bool{}
	for _, idx := range indices {
		test.That(t, idx, test.ShouldBeGreaterThanOrEqualTo, 0)
		test.That(t, idx, test.ShouldBeLessThan, 10)
		test.That(t, seen[idx], test.ShouldBeFalse)
		seen[idx] = true
	}

	all := rng.subsampleIndices(5, 5)
	test.That(t, all, test.ShouldHaveLength, 5)
}
