package grasp

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/graspgen/utils"
)

// DepthSamplingMode is the policy for choosing a grasp's depth value within
// the observed local depth range.
type DepthSamplingMode string

// The supported depth sampling modes.
const (
	DepthSamplingModeUniform = DepthSamplingMode("uniform")
	DepthSamplingModeMin     = DepthSamplingMode("min")
	DepthSamplingModeMax     = DepthSamplingMode("max")
)

func (m DepthSamplingMode) validate(path string) error {
	switch m {
	case DepthSamplingModeUniform, DepthSamplingModeMin, DepthSamplingModeMax:
		return nil
	}
	return utils.NewConfigValidationError(path, errors.Errorf("unsupported depth sampling mode %q", m))
}

// AntipodalGraspConfig configures the antipodal depth-image grasp sampler.
// All fields without a stated default must be present in the attribute map
// the sampler is constructed from.
type AntipodalGraspConfig struct {
	// GripperWidth is the physical opening width of the gripper in meters.
	GripperWidth float64 `json:"gripper_width"`
	// FrictionCoef is the friction coefficient for 2D force closure.
	FrictionCoef float64 `json:"friction_coef"`
	// DepthGradThresh is the depth gradient magnitude above which a pixel
	// counts as an edge.
	DepthGradThresh float64 `json:"depth_grad_thresh"`
	// DepthGradGaussianSigma pre-smooths the depth image for better gradients.
	DepthGradGaussianSigma float64 `json:"depth_grad_gaussian_sigma"`
	// DownsampleRate is the factor to downsample the depth image by before
	// edge detection.
	DownsampleRate float64 `json:"downsample_rate"`
	// MaxRejectionSamples is the ceiling on the number of antipodal pairs
	// considered during rejection sampling.
	MaxRejectionSamples int `json:"max_rejection_samples"`
	// MinNumEdgePixels, when positive, retries edge detection at full
	// resolution if downsampled detection finds fewer edge pixels. Default 0.
	MinNumEdgePixels int `json:"min_num_edge_pixels"`
	// MaxDistFromCenter is the maximum allowable distance of a grasp from the
	// image center.
	MaxDistFromCenter float64 `json:"max_dist_from_center"`
	// MinDistFromBoundary is the margin in pixels within which grasp centers
	// are rejected.
	MinDistFromBoundary float64 `json:"min_dist_from_boundary"`
	// MinGraspDist is the minimum admissible distance between grasps.
	MinGraspDist float64 `json:"min_grasp_dist"`
	// AngleDistWeight weights the angle difference in grasp distance
	// computation.
	AngleDistWeight float64 `json:"angle_dist_weight"`
	// DepthSamplesPerGrasp is the number of depth samples per grasp; values
	// below 1 are treated as 1.
	DepthSamplesPerGrasp int `json:"depth_samples_per_grasp"`
	// MinDepthOffset is added to the window minimum depth to form the lower
	// end of the depth sampling range, in meters.
	MinDepthOffset float64 `json:"min_depth_offset"`
	// MaxDepthOffset is added to the window minimum depth to form the upper
	// end of the depth sampling range, in meters.
	MaxDepthOffset float64 `json:"max_depth_offset"`
	// DepthSampleWinHeight is the half-height of the window around the grasp
	// center used to determine the minimum depth.
	DepthSampleWinHeight int `json:"depth_sample_win_height"`
	// DepthSampleWinWidth is the half-width of that window.
	DepthSampleWinWidth int `json:"depth_sample_win_width"`
	// DepthSamplingMode is one of uniform, min, max.
	DepthSamplingMode DepthSamplingMode `json:"depth_sampling_mode"`
	// GraspCenterSigma is the standard deviation of the 2D gaussian grasp
	// center perturbation, in pixels. Default 0 (no perturbation).
	GraspCenterSigma float64 `json:"grasp_center_sigma"`
	// GraspAngleSigma is the standard deviation of the gaussian grasp angle
	// perturbation, in degrees. Default 0 (no perturbation).
	GraspAngleSigma float64 `json:"grasp_angle_sigma"`
}

// requiredAntipodalKeys are the attribute-map keys without defaults.
var requiredAntipodalKeys = []string{
	"gripper_width",
	"friction_coef",
	"depth_grad_thresh",
	"depth_grad_gaussian_sigma",
	"downsample_rate",
	"max_rejection_samples",
	"max_dist_from_center",
	"min_dist_from_boundary",
	"min_grasp_dist",
	"angle_dist_weight",
	"depth_samples_per_grasp",
	"min_depth_offset",
	"max_depth_offset",
	"depth_sample_win_height",
	"depth_sample_win_width",
	"depth_sampling_mode",
}

// Validate ensures all parts of the config are valid.
func (config *AntipodalGraspConfig) Validate(path string) error {
	if config.FrictionCoef < 0 {
		return utils.NewConfigValidationError(path, errors.New("friction_coef cannot be negative"))
	}
	if config.GripperWidth < 0 {
		return utils.NewConfigValidationError(path, errors.New("gripper_width cannot be negative"))
	}
	if config.DownsampleRate < 1 {
		return utils.NewConfigValidationError(path, errors.New("downsample_rate must be at least 1"))
	}
	if config.MaxRejectionSamples <= 0 {
		return utils.NewConfigValidationError(path, errors.New("max_rejection_samples must be positive"))
	}
	if config.DepthSampleWinHeight <= 0 || config.DepthSampleWinWidth <= 0 {
		return utils.NewConfigValidationError(path, errors.New("depth sample window dimensions must be positive"))
	}
	if config.GraspCenterSigma < 0 || config.GraspAngleSigma < 0 {
		return utils.NewConfigValidationError(path, errors.New("perturbation sigmas cannot be negative"))
	}
	return config.DepthSamplingMode.validate(path)
}

// NewAntipodalGraspConfigFromAttributes reads an AntipodalGraspConfig out of
// a flat attribute map, reporting every missing required key at once.
func NewAntipodalGraspConfigFromAttributes(attrs utils.AttributeMap) (*AntipodalGraspConfig, error) {
	var missing error
	for _, key := range requiredAntipodalKeys {
		if !attrs.Has(key) {
			missing = multierr.Append(missing, utils.NewConfigValidationFieldRequiredError(SamplerTypeAntipodalDepth, key))
		}
	}
	if missing != nil {
		return nil, missing
	}

	config := &AntipodalGraspConfig{}
	var err error
	read := func(dst *float64, key string) {
		if err != nil {
			return
		}
		*dst, err = attrs.Float64(key, 0)
	}
	readInt := func(dst *int, key string) {
		if err != nil {
			return
		}
		*dst, err = attrs.Int(key, 0)
	}
	read(&config.GripperWidth, "gripper_width")
	read(&config.FrictionCoef, "friction_coef")
	read(&config.DepthGradThresh, "depth_grad_thresh")
	read(&config.DepthGradGaussianSigma, "depth_grad_gaussian_sigma")
	read(&config.DownsampleRate, "downsample_rate")
	readInt(&config.MaxRejectionSamples, "max_rejection_samples")
	readInt(&config.MinNumEdgePixels, "min_num_edge_pixels")
	read(&config.MaxDistFromCenter, "max_dist_from_center")
	read(&config.MinDistFromBoundary, "min_dist_from_boundary")
	read(&config.MinGraspDist, "min_grasp_dist")
	read(&config.AngleDistWeight, "angle_dist_weight")
	readInt(&config.DepthSamplesPerGrasp, "depth_samples_per_grasp")
	read(&config.MinDepthOffset, "min_depth_offset")
	read(&config.MaxDepthOffset, "max_depth_offset")
	readInt(&config.DepthSampleWinHeight, "depth_sample_win_height")
	readInt(&config.DepthSampleWinWidth, "depth_sample_win_width")
	read(&config.GraspCenterSigma, "grasp_center_sigma")
	read(&config.GraspAngleSigma, "grasp_angle_sigma")
	if err != nil {
		return nil, err
	}
	mode, err := attrs.String("depth_sampling_mode", "")
	if err != nil {
		return nil, err
	}
	config.DepthSamplingMode = DepthSamplingMode(mode)

	if err := config.Validate(SamplerTypeAntipodalDepth); err != nil {
		return nil, err
	}
	return config, nil
}

// SuctionConfig configures both the single-contact and the multi-contact
// suction point samplers. All fields without a stated default must be present
// in the attribute map the sampler is constructed from.
type SuctionConfig struct {
	// MaxSuctionDirOpticalAxisAngle is the maximum angle, in degrees, between
	// the suction approach axis and the camera optical axis.
	MaxSuctionDirOpticalAxisAngle float64 `json:"max_suction_dir_optical_axis_angle"`
	// MaxDistFromCenter is the maximum allowable distance of a suction point
	// from the image center.
	MaxDistFromCenter float64 `json:"max_dist_from_center"`
	// MinDistFromBoundary is the margin in pixels within which suction
	// centers are rejected.
	MinDistFromBoundary float64 `json:"min_dist_from_boundary"`
	// MaxNumSamples is the ceiling on the number of surface points considered
	// during rejection sampling.
	MaxNumSamples int `json:"max_num_samples"`
	// DeltaTheta is the maximum azimuth deviation, in degrees, of a
	// rotational perturbation to the surface normal.
	DeltaTheta float64 `json:"delta_theta"`
	// DeltaPhi is the maximum elevation deviation, in degrees, of a
	// rotational perturbation to the surface normal.
	DeltaPhi float64 `json:"delta_phi"`
	// MeanDepth is the mean of the gaussian depth perturbation, in meters.
	// Default 0.
	MeanDepth float64 `json:"mean_depth"`
	// SigmaDepth is the standard deviation of the gaussian depth
	// perturbation, in meters.
	SigmaDepth float64 `json:"sigma_depth"`
	// MinSuctionDist is the minimum admissible distance between suction
	// points.
	MinSuctionDist float64 `json:"min_suction_dist"`
	// AngleDistWeight weights the angle difference in suction point distance
	// computation.
	AngleDistWeight float64 `json:"angle_dist_weight"`
	// DepthGaussianSigma pre-smooths the depth image before deprojection.
	DepthGaussianSigma float64 `json:"depth_gaussian_sigma"`
}

// requiredSuctionKeys are the attribute-map keys without defaults.
var requiredSuctionKeys = []string{
	"max_suction_dir_optical_axis_angle",
	"max_dist_from_center",
	"min_dist_from_boundary",
	"max_num_samples",
	"delta_theta",
	"delta_phi",
	"sigma_depth",
	"min_suction_dist",
	"angle_dist_weight",
	"depth_gaussian_sigma",
}

// Validate ensures all parts of the config are valid.
func (config *SuctionConfig) Validate(path string) error {
	if config.MaxSuctionDirOpticalAxisAngle < 0 {
		return utils.NewConfigValidationError(path, errors.New("max_suction_dir_optical_axis_angle cannot be negative"))
	}
	if config.MaxNumSamples <= 0 {
		return utils.NewConfigValidationError(path, errors.New("max_num_samples must be positive"))
	}
	if config.SigmaDepth < 0 {
		return utils.NewConfigValidationError(path, errors.New("sigma_depth cannot be negative"))
	}
	return nil
}

// NewSuctionConfigFromAttributes reads a SuctionConfig out of a flat
// attribute map, reporting every missing required key at once.
func NewSuctionConfigFromAttributes(path string, attrs utils.AttributeMap) (*SuctionConfig, error) {
	var missing error
	for _, key := range requiredSuctionKeys {
		if !attrs.Has(key) {
			missing = multierr.Append(missing, utils.NewConfigValidationFieldRequiredError(path, key))
		}
	}
	if missing != nil {
		return nil, missing
	}

	config := &SuctionConfig{}
	var err error
	read := func(dst *float64, key string) {
		if err != nil {
			return
		}
		*dst, err = attrs.Float64(key, 0)
	}
	read(&config.MaxSuctionDirOpticalAxisAngle, "max_suction_dir_optical_axis_angle")
	read(&config.MaxDistFromCenter, "max_dist_from_center")
	read(&config.MinDistFromBoundary, "min_dist_from_boundary")
	read(&config.DeltaTheta, "delta_theta")
	read(&config.DeltaPhi, "delta_phi")
	read(&config.MeanDepth, "mean_depth")
	read(&config.SigmaDepth, "sigma_depth")
	read(&config.MinSuctionDist, "min_suction_dist")
	read(&config.AngleDistWeight, "angle_dist_weight")
	read(&config.DepthGaussianSigma, "depth_gaussian_sigma")
	if err != nil {
		return nil, err
	}
	config.MaxNumSamples, err = attrs.Int("max_num_samples", 0)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(path); err != nil {
		return nil, err
	}
	return config, nil
}
