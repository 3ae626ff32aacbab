package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument indicates malformed numeric input to a math operation:
// NaN or infinite components, or a zero-length vector passed where a
// direction is required. These are caller programming errors and are never
// silently corrected.
var ErrInvalidArgument = errors.New("invalid argument")

// Vec3 is a vector in 3-dimensional world (patient) space, in millimeters.
// Vectors serialize to JSON as plain 3-element number arrays.
type Vec3 [3]float64

// Add returns the sum of vectors a and b.
func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Sub returns the difference of vectors a and b.
func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Scale returns the vector a multiplied by the scalar s.
func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{s * a[0], s * a[1], s * a[2]}
}

// Dot returns the dot product of the vectors a and b.
func (a Vec3) Dot(b Vec3) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Cross returns the cross product of the vectors a and b.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Length returns the Euclidean length of the vector a.
func (a Vec3) Length() float64 {
	return math.Sqrt(a.Dot(a))
}

// IsFinite reports whether every component of a is a finite number.
func (a Vec3) IsFinite() bool {
	for _, c := range a {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Normalized returns the unit vector in the direction of a. It fails with
// ErrInvalidArgument when a is not finite or has (near-)zero length, since a
// direction cannot be derived from it.
func (a Vec3) Normalized() (Vec3, error) {
	if !a.IsFinite() {
		return Vec3{}, fmt.Errorf("normalize %v: %w", a, ErrInvalidArgument)
	}
	l := a.Length()
	if l < 1e-12 {
		return Vec3{}, fmt.Errorf("normalize zero-length vector: %w", ErrInvalidArgument)
	}
	return a.Scale(1 / l), nil
}

// CheckDirection validates that v is usable as a direction: finite and
// unit-length within tolerance.
func CheckDirection(name string, v Vec3) error {
	if !v.IsFinite() {
		return fmt.Errorf("%s %v is not finite: %w", name, v, ErrInvalidArgument)
	}
	if math.Abs(v.Length()-1) > 1e-6 {
		return fmt.Errorf("%s %v is not unit length: %w", name, v, ErrInvalidArgument)
	}
	return nil
}
