package grasp

import (
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/graspgen/utils"
)

// ForceClosure decides whether two contact points with the given surface
// normals form an antipodal grasp under the given friction coefficient: both
// normals must lie inside the friction cone of half-angle atan(frictionCoef)
// around the line connecting the contacts. The contacts must be distinct;
// callers are responsible for excluding zero-length pairs upstream.
func ForceClosure(p1, p2, n1, n2 r2.Point, frictionCoef float64) bool {
	// line between the contacts
	v := p2.Sub(p1).Normalize()

	// compute cone membership, clamping the dot products against
	// floating-point overshoot before acos
	alpha := math.Atan(frictionCoef)
	dot1 := utils.Clamp(n1.Dot(v.Mul(-1)), -1.0, 1.0)
	dot2 := utils.Clamp(n2.Dot(v), -1.0, 1.0)
	inCone1 := math.Acos(dot1) < alpha
	inCone2 := math.Acos(dot2) < alpha
	return inCone1 && inCone2
}
