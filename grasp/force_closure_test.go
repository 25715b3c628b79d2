package grasp

import (
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestForceClosure(t *testing.T) {
	p1 := r2.Point{X: 0, Y: 0}
	p2 := r2.Point{X: 10, Y: 0}
	inward1 := r2.Point{X: -1, Y: 0}
	inward2 := r2.Point{X: 1, Y: 0}

	// perfectly opposing contacts are in closure for any positive friction
	test.That(t, ForceClosure(p1, p2, inward1, inward2, 0.1), test.ShouldBeTrue)
	test.That(t, ForceClosure(p1, p2, inward1, inward2, 1.0), test.ShouldBeTrue)

	// frictionless cones are degenerate, nothing is strictly inside them
	test.That(t, ForceClosure(p1, p2, inward1, inward2, 0.0), test.ShouldBeFalse)

	// normals pointing the same way cannot oppose
	test.That(t, ForceClosure(p1, p2, inward2, inward2, 1.0), test.ShouldBeFalse)

	// 30 degrees off the contact line: inside a 45 degree cone, outside a 10
	// degree one
	tilted1 := r2.Point{X: -0.8660254, Y: 0.5}
	tilted2 := r2.Point{X: 0.8660254, Y: -0.5}
	test.That(t, ForceClosure(p1, p2, tilted1, tilted2, 1.0), test.ShouldBeTrue)
	test.That(t, ForceClosure(p1, p2, tilted1, tilted2, 0.17632698), test.ShouldBeFalse)
}

func TestForceClosureSymmetry(t *testing.T) {
	p1 := r2.Point{X: 3, Y: 7}
	p2 := r2.Point{X: 15, Y: 2}
	n1 := r2.Point{X: -0.9, Y: 0.43588989}
	n2 := r2.Point{X: 0.9, Y: -0.43588989}
	for _, mu := range []float64{0.2, 0.5, 1.0, 2.0} {
		forward := ForceClosure(p1, p2, n1, n2, mu)
		backward := ForceClosure(p2, p1, n2, n1, mu)
		test.That(t, forward, test.ShouldEqual, backward)
	}
}
