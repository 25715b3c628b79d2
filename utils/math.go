// Package utils contains small helpers shared across the grasp generation
// packages: angle conversions, integer math, clamping, and the flat
// attribute-map configuration type.
package utils

import (
	"math"
	"math/rand"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// AbsInt returns the absolute value of the given value.
func AbsInt(n int) int {
	if n < 0 {
		return -1 * n
	}
	return n
}

// MaxInt returns the maximum of two values.
func MaxInt(a, b int) int {
	if a < b {
		return b
	}
	return a
}

// MinInt returns the minimum of two values.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Square is faster than math.Pow(x, 2).
func Square(n float64) float64 {
	return n * n
}

// Clamp returns min if value is less than min, max if value is greater
// than max, and value otherwise.
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// SampleRandomIntRange samples a random integer within a range given by [min, max]
// using the given rand.Rand.
func SampleRandomIntRange(min, max int, r *rand.Rand) int {
	return r.Intn(max-min+1) + min
}
