// Package camera represents one viewport's viewing transformation and the
// operations that manipulate it: in-plane rotation, pan, zoom and reset to a
// canonical orientation. A Camera is a plain value; operations mutate the
// receiver and fail fast on malformed numeric input.
package camera

import (
	"fmt"
	"math"

	"mprview/pkg/geometry"
)

// Orientation names a canonical slicing orientation of a medical volume.
type Orientation string

const (
	// Axial slices perpendicular to the volume's slice axis.
	Axial Orientation = "axial"
	// Sagittal slices perpendicular to the volume's row axis.
	Sagittal Orientation = "sagittal"
	// Coronal slices perpendicular to the volume's column axis.
	Coronal Orientation = "coronal"
	// Oblique is any orientation that is not axis aligned.
	Oblique Orientation = "oblique"
)

// Camera is an orthographic viewing transformation for one viewport.
//
// Invariants: ViewUp and ViewPlaneNormal are unit length and mutually
// perpendicular; Position - FocalPoint is parallel to ViewPlaneNormal;
// ParallelScale is strictly positive.
type Camera struct {
	// Position is the world-space location of the viewing eye.
	Position geometry.Vec3 `json:"position"`

	// FocalPoint is the world-space point the camera looks at, the center
	// of the visible slice.
	FocalPoint geometry.Vec3 `json:"focalPoint"`

	// ViewUp is the camera's up direction in world space.
	ViewUp geometry.Vec3 `json:"viewUp"`

	// ViewPlaneNormal is perpendicular to the slicing plane and points from
	// the focal point toward the position.
	ViewPlaneNormal geometry.Vec3 `json:"viewPlaneNormal"`

	// ParallelScale is the half-height of the orthographic view volume in
	// world units. Smaller means more zoomed in.
	ParallelScale float64 `json:"parallelScale"`

	// ParallelProjection is true for orthographic projection, the standard
	// for slice viewing.
	ParallelProjection bool `json:"parallelProjection"`
}

// Validate checks the Camera invariants, returning ErrInvalidArgument (via
// geometry) when any is violated.
func (c *Camera) Validate() error {
	if err := checkCameraDirections(c.ViewUp, c.ViewPlaneNormal); err != nil {
		return err
	}
	if !c.Position.IsFinite() || !c.FocalPoint.IsFinite() {
		return fmt.Errorf("camera position/focal point not finite: %w", geometry.ErrInvalidArgument)
	}
	if math.IsNaN(c.ParallelScale) || math.IsInf(c.ParallelScale, 0) || c.ParallelScale <= 0 {
		return fmt.Errorf("parallel scale %v must be finite and strictly positive: %w",
			c.ParallelScale, geometry.ErrInvalidArgument)
	}
	offset := c.Position.Sub(c.FocalPoint)
	if offset.Cross(c.ViewPlaneNormal).Length() > 1e-6*offset.Length() {
		return fmt.Errorf("position-focal offset %v is not parallel to view plane normal %v: %w",
			offset, c.ViewPlaneNormal, geometry.ErrInvalidArgument)
	}
	return nil
}

func checkCameraDirections(up, normal geometry.Vec3) error {
	if err := geometry.CheckDirection("view up", up); err != nil {
		return err
	}
	if err := geometry.CheckDirection("view plane normal", normal); err != nil {
		return err
	}
	if math.Abs(up.Dot(normal)) > 1e-6 {
		return fmt.Errorf("view up %v is not perpendicular to view plane normal %v: %w",
			up, normal, geometry.ErrInvalidArgument)
	}
	return nil
}

// ViewRight returns the second in-plane basis vector, the slice-plane
// horizontal axis: normalize(cross(viewPlaneNormal, viewUp)). Together the
// triple (viewRight, viewUp, -viewPlaneNormal) is right-handed.
func (c *Camera) ViewRight() (geometry.Vec3, error) {
	if err := checkCameraDirections(c.ViewUp, c.ViewPlaneNormal); err != nil {
		return geometry.Vec3{}, err
	}
	return c.ViewPlaneNormal.Cross(c.ViewUp).Normalized()
}

// rodrigues rotates v about the unit axis k by theta radians:
//
//	v' = v·cosθ + (k×v)·sinθ + k·(k·v)·(1−cosθ)
func rodrigues(v, k geometry.Vec3, theta float64) geometry.Vec3 {
	cos, sin := math.Cos(theta), math.Sin(theta)
	return v.Scale(cos).
		Add(k.Cross(v).Scale(sin)).
		Add(k.Scale(k.Dot(v) * (1 - cos)))
}

// Rotate rotates the camera's in-plane frame about the view plane normal by
// the given angle in degrees. ViewUp is re-normalized after rotation to keep
// floating point drift from accumulating over long interaction sequences.
func (c *Camera) Rotate(degrees float64) error {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return fmt.Errorf("rotation angle %v: %w", degrees, geometry.ErrInvalidArgument)
	}
	if err := checkCameraDirections(c.ViewUp, c.ViewPlaneNormal); err != nil {
		return err
	}

	rotated := rodrigues(c.ViewUp, c.ViewPlaneNormal, degrees*math.Pi/180)
	up, err := rotated.Normalized()
	if err != nil {
		return err
	}
	c.ViewUp = up
	return nil
}

// Pan shifts the focal point and position by dx·basis1 + dy·basis2. Both
// points move by the same vector so the viewing direction is unchanged.
// When a rotation and a pan happen in the same interaction the rotation must
// be applied first so the pan is computed in the rotated frame.
func (c *Camera) Pan(basis1, basis2 geometry.Vec3, dx, dy float64) error {
	if math.IsNaN(dx) || math.IsNaN(dy) || math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return fmt.Errorf("pan delta (%v, %v): %w", dx, dy, geometry.ErrInvalidArgument)
	}
	if err := geometry.CheckDirection("pan basis 1", basis1); err != nil {
		return err
	}
	if err := geometry.CheckDirection("pan basis 2", basis2); err != nil {
		return err
	}

	shift := basis1.Scale(dx).Add(basis2.Scale(dy))
	c.FocalPoint = c.FocalPoint.Add(shift)
	c.Position = c.Position.Add(shift)
	return nil
}

// Zoom multiplies the parallel scale by factor. Zero or negative factors
// have no physical meaning and are rejected; no min/max clamp is applied.
func (c *Camera) Zoom(factor float64) error {
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor <= 0 {
		return fmt.Errorf("zoom factor %v must be strictly positive: %w",
			factor, geometry.ErrInvalidArgument)
	}
	c.ParallelScale *= factor
	return nil
}

// ResetToDefault returns the canonical camera for a named axis-aligned
// orientation of the given volume: normal along the corresponding geometry
// axis, focal point at the volume center, position offset along the normal,
// and parallel scale fitting the in-plane extent.
func ResetToDefault(geom *geometry.VolumeGeometry, o Orientation) (Camera, error) {
	var normal, up geometry.Vec3
	var axis int

	switch o {
	case Axial:
		// Screen-up is toward the patient's anterior, the radiological
		// convention for axial slices.
		axis = 2
		normal = geom.Direction[2]
		up = geom.Direction[1].Scale(-1)
	case Sagittal:
		axis = 0
		normal = geom.Direction[0]
		up = geom.Direction[2]
	case Coronal:
		axis = 1
		normal = geom.Direction[1].Scale(-1)
		up = geom.Direction[2]
	default:
		return Camera{}, fmt.Errorf("orientation %q has no default camera: %w",
			o, geometry.ErrInvalidArgument)
	}

	return resetCamera(geom, axis, normal, up)
}

// ResetToNormal returns the default camera for an arbitrary slicing plane.
// The up vector must be unit length and perpendicular to the normal.
func ResetToNormal(geom *geometry.VolumeGeometry, normal, up geometry.Vec3) (Camera, error) {
	if err := checkCameraDirections(up, normal); err != nil {
		return Camera{}, err
	}
	return resetCamera(geom, geom.ClosestAxis(normal), normal, up)
}

func resetCamera(geom *geometry.VolumeGeometry, axis int, normal, up geometry.Vec3) (Camera, error) {
	center := geom.Center()
	width, height := geom.InPlaneExtent(axis)

	// Keep the eye outside the volume regardless of orientation.
	dx, dy, dz := geom.AxisExtent(0), geom.AxisExtent(1), geom.AxisExtent(2)
	distance := math.Sqrt(dx*dx + dy*dy + dz*dz)

	c := Camera{
		Position:           center.Add(normal.Scale(distance)),
		FocalPoint:         center,
		ViewUp:             up,
		ViewPlaneNormal:    normal,
		ParallelScale:      math.Max(width, height) / 2,
		ParallelProjection: true,
	}
	if err := c.Validate(); err != nil {
		return Camera{}, err
	}
	return c, nil
}
