package utils

import (
	"github.com/pkg/errors"
)

// An AttributeMap is a flat key-value mapping of configuration attributes,
// typically decoded from JSON. Numeric values may arrive as float64 (the JSON
// default) and are converted by the typed getters.
type AttributeMap map[string]interface{}

// Has returns whether the given name is in the map.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}

// Float64 returns a float64 by the given name, or the default if absent.
func (am AttributeMap) Float64(name string, def float64) (float64, error) {
	x, has := am[name]
	if !has {
		return def, nil
	}
	switch v := x.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}
	return 0, errors.Errorf("wanted a float64 for %q but got (%v) %T", name, x, x)
}

// Int returns an int by the given name, or the default if absent.
func (am AttributeMap) Int(name string, def int) (int, error) {
	x, has := am[name]
	if !has {
		return def, nil
	}
	switch v := x.(type) {
	case int:
		return v, nil
	case float64:
		// JSON numbers decode to float64
		return int(v), nil
	}
	return 0, errors.Errorf("wanted an int for %q but got (%v) %T", name, x, x)
}

// String returns a string by the given name, or the default if absent.
func (am AttributeMap) String(name, def string) (string, error) {
	x, has := am[name]
	if !has {
		return def, nil
	}
	if v, ok := x.(string); ok {
		return v, nil
	}
	return "", errors.Errorf("wanted a string for %q but got (%v) %T", name, x, x)
}

// Bool returns a bool by the given name, or the default if absent.
func (am AttributeMap) Bool(name string, def bool) (bool, error) {
	x, has := am[name]
	if !has {
		return def, nil
	}
	if v, ok := x.(bool); ok {
		return v, nil
	}
	return false, errors.Errorf("wanted a bool for %q but got (%v) %T", name, x, x)
}
