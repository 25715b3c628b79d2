package rimage

import (
	"image"
)

// ImageWithDepth pairs a color image with an aligned depth map from the same
// camera. Grasp sampling only reads the depth channel; the color channel is
// carried for visualization and downstream consumers.
type ImageWithDepth struct {
	Color image.Image
	Depth *DepthMap
}

// MakeImageWithDepth pairs up a color image and depth map.
func MakeImageWithDepth(color image.Image, depth *DepthMap) *ImageWithDepth {
	return &ImageWithDepth{Color: color, Depth: depth}
}

// Width returns the width of the depth channel.
func (i *ImageWithDepth) Width() int {
	return i.Depth.Width()
}

// Height returns the height of the depth channel.
func (i *ImageWithDepth) Height() int {
	return i.Depth.Height()
}
