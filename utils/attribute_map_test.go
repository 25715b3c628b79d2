package utils

import (
	"testing"

	"go.viam.com/test"
)

func TestAttributeMapGetters(t *testing.T) {
	attrs := AttributeMap{
		"ratio":   0.5,
		"count":   3,
		"jsonNum": 7.0,
		"name":    "left",
		"enabled": true,
	}

	test.That(t, attrs.Has("ratio"), test.ShouldBeTrue)
	test.That(t, attrs.Has("missing"), test.ShouldBeFalse)

	ratio, err := attrs.Float64("ratio", 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ratio, test.ShouldEqual, 0.5)

	// ints promote to float64
	asFloat, err := attrs.Float64("count", 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, asFloat, test.ShouldEqual, 3.0)

	count, err := attrs.Int("count", 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, count, test.ShouldEqual, 3)

	// JSON decodes numbers as float64
	jsonNum, err := attrs.Int("jsonNum", 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, jsonNum, test.ShouldEqual, 7)

	name, err := attrs.String("name", "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, name, test.ShouldEqual, "left")

	enabled, err := attrs.Bool("enabled", false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, enabled, test.ShouldBeTrue)
}

func TestAttributeMapDefaults(t *testing.T) {
	attrs := AttributeMap{}
	ratio, err := attrs.Float64("ratio", 1.5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ratio, test.ShouldEqual, 1.5)

	count, err := attrs.Int("count", 9)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, count, test.ShouldEqual, 9)

	name, err := attrs.String("name", "default")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, name, test.ShouldEqual, "default")
}

func TestAttributeMapTypeMismatch(t *testing.T) {
	attrs := AttributeMap{"ratio": "a lot"}
	_, err := attrs.Float64("ratio", 0)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = attrs.Int("ratio", 0)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = attrs.Bool("ratio", false)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConfigValidationErrors(t *testing.T) {
	err := NewConfigValidationFieldRequiredError("antipodal_depth", "friction_coef")
	test.That(t, err.Error(), test.ShouldContainSubstring, "friction_coef")
	test.That(t, err.Error(), test.ShouldContainSubstring, "antipodal_depth")

	err = NewUnexpectedTypeError("", 5)
	test.That(t, err.Error(), test.ShouldContainSubstring, "string")
	test.That(t, err.Error(), test.ShouldContainSubstring, "int")
}
