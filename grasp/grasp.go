// Package grasp generates robotic grasp candidates (parallel-jaw and
// suction) directly from depth images, for training-data generation and as
// input to grasp-quality networks. Candidates are produced by geometric
// sampling over depth edges and surface normals, filtered by antipodal
// force-closure analysis.
package grasp

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/graspgen/transform"
	"go.viam.com/graspgen/utils"
)

// A Grasp is a single grasp candidate sampled from a depth image. Candidates
// are immutable once returned by a sampler.
type Grasp interface {
	// Feature returns the candidate as a flat feature vector for downstream
	// learning and quality scoring.
	Feature() []float64
}

// Grasp2D is a parallel-jaw grasp in image space: a center pixel, an approach
// angle in the image plane, a depth along the camera optical axis, and the
// physical gripper opening width. The contact points and normals that
// produced the grasp are retained for later quality analysis.
type Grasp2D struct {
	Center r2.Point
	Angle  float64
	Depth  float64
	Width  float64
	Camera *transform.PinholeCameraIntrinsics

	ContactPoints  []image.Point
	ContactNormals []r2.Point
}

// Axis returns the unit gripper axis in the image plane.
func (g *Grasp2D) Axis() r2.Point {
	return r2.Point{X: math.Cos(g.Angle), Y: math.Sin(g.Angle)}
}

// WidthPx returns the gripper opening width projected into pixels at the
// grasp depth. Width shrinks in image space as depth grows.
func (g *Grasp2D) WidthPx() float64 {
	if g.Depth <= 0 {
		return math.Inf(1)
	}
	return g.Width * g.Camera.Fx / g.Depth
}

// PosePoint deprojects the grasp center to a 3D point in the camera frame.
func (g *Grasp2D) PosePoint() r3.Vector {
	x, y, z := g.Camera.PixelToPoint(g.Center.X, g.Center.Y, g.Depth)
	return r3.Vector{X: x, Y: y, Z: z}
}

// BinAngle wraps the approach angle into (-pi/2, pi/2], flipping its sign to
// match the angle convention of the training pipeline's orientation bins.
func (g *Grasp2D) BinAngle() float64 {
	angle := g.Angle
	neg := angle < 0
	angle = math.Mod(math.Abs(angle), math.Pi)
	if neg {
		angle = -angle
	}
	if angle > math.Pi/2 {
		angle -= math.Pi
	}
	if angle < -math.Pi/2 {
		angle += math.Pi
	}
	// the training data angle convention is reversed
	return -1 * angle
}

// Feature returns [centerX, centerY, cos(angle), sin(angle), depth].
func (g *Grasp2D) Feature() []float64 {
	axis := g.Axis()
	return []float64{g.Center.X, g.Center.Y, axis.X, axis.Y, g.Depth}
}

// SuctionPoint2D is a single-contact suction grasp in image space: a center
// pixel, a unit 3D approach axis in the camera frame, and a depth.
type SuctionPoint2D struct {
	Center r2.Point
	Axis   r3.Vector
	Depth  float64
	Camera *transform.PinholeCameraIntrinsics
}

// opticalAxis is the camera viewing direction in the camera frame.
var opticalAxis = r3.Vector{X: 0, Y: 0, Z: 1}

// Angle returns the angle between the approach axis and the camera optical
// axis.
func (sp *SuctionPoint2D) Angle() float64 {
	return angleToOpticalAxis(sp.Axis)
}

// PosePoint deprojects the suction center to a 3D point in the camera frame.
func (sp *SuctionPoint2D) PosePoint() r3.Vector {
	x, y, z := sp.Camera.PixelToPoint(sp.Center.X, sp.Center.Y, sp.Depth)
	return r3.Vector{X: x, Y: y, Z: z}
}

// Feature returns [centerX, centerY, axisX, axisY, axisZ, depth].
func (sp *SuctionPoint2D) Feature() []float64 {
	return []float64{sp.Center.X, sp.Center.Y, sp.Axis.X, sp.Axis.Y, sp.Axis.Z, sp.Depth}
}

// MultiSuctionPoint2D is a multi-contact suction grasp carrying the full
// 6-DOF pose of the suction contact frame in the camera frame. The rotation
// is orthonormal and its x-axis is the approach direction.
type MultiSuctionPoint2D struct {
	Rotation    *mat.Dense
	Translation r3.Vector
	Camera      *transform.PinholeCameraIntrinsics
}

// Axis returns the approach direction, the x-axis of the contact frame.
func (mp *MultiSuctionPoint2D) Axis() r3.Vector {
	return r3.Vector{
		X: mp.Rotation.At(0, 0),
		Y: mp.Rotation.At(1, 0),
		Z: mp.Rotation.At(2, 0),
	}
}

// Angle returns the angle between the approach axis and the camera optical
// axis.
func (mp *MultiSuctionPoint2D) Angle() float64 {
	return angleToOpticalAxis(mp.Axis())
}

// Feature returns the approach axis followed by the translation.
func (mp *MultiSuctionPoint2D) Feature() []float64 {
	axis := mp.Axis()
	return []float64{
		axis.X, axis.Y, axis.Z,
		mp.Translation.X, mp.Translation.Y, mp.Translation.Z,
	}
}

func angleToOpticalAxis(axis r3.Vector) float64 {
	dot := utils.Clamp(axis.Dot(opticalAxis), -1.0, 1.0)
	return math.Acos(dot)
}
