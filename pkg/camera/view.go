package camera

import (
	"fmt"
	"math"

	"mprview/pkg/geometry"
)

// ViewReference identifies exactly which slice of which volume a viewport is
// showing, independent of presentation-level pan/zoom.
type ViewReference struct {
	// FrameOfReferenceID must match the displayed volume's frame of
	// reference.
	FrameOfReferenceID string `json:"frameOfReferenceId"`

	// SliceIndex is the index of the displayed slice along the normal axis,
	// within [0, dimensions[axis]-1].
	SliceIndex int `json:"sliceIndex"`

	// PlaneAnchor is a point on the current slicing plane, typically the
	// camera's focal point.
	PlaneAnchor geometry.Vec3 `json:"planeAnchor"`

	// InPlaneBasis1 and InPlaneBasis2 span the slicing plane. Basis1 is the
	// image row direction (screen right), Basis2 the image column direction
	// (screen down), so Basis1 × Basis2 equals the view plane normal.
	InPlaneBasis1 geometry.Vec3 `json:"inPlaneBasis1"`
	InPlaneBasis2 geometry.Vec3 `json:"inPlaneBasis2"`

	// VolumeID identifies which volume this viewport is displaying.
	VolumeID string `json:"volumeId"`
}

// FlipAxis selects which presentation axis a flip applies to.
type FlipAxis int

const (
	// FlipHorizontal mirrors the image left-right.
	FlipHorizontal FlipAxis = iota
	// FlipVertical mirrors the image top-bottom.
	FlipVertical
)

// ViewPresentation is the UI-level transform layered on top of the camera.
// Flips live here rather than on the camera so the camera's right-handed
// frame is never mirrored.
type ViewPresentation struct {
	// Rotation is the in-plane rotation in degrees applied on top of the
	// base basis vectors.
	Rotation float64 `json:"rotation"`

	// Pan is the offset in world units applied to the focal point along the
	// in-plane basis.
	Pan [2]float64 `json:"pan"`

	// Zoom is a positive multiplier applied to the camera's parallel scale.
	Zoom float64 `json:"zoom"`

	FlipH bool `json:"flipHorizontal"`
	FlipV bool `json:"flipVertical"`
}

// DefaultPresentation returns the neutral presentation transform.
func DefaultPresentation() ViewPresentation {
	return ViewPresentation{Zoom: 1}
}

// Flip toggles the flip flag for the given axis.
func (p *ViewPresentation) Flip(axis FlipAxis) {
	switch axis {
	case FlipHorizontal:
		p.FlipH = !p.FlipH
	case FlipVertical:
		p.FlipV = !p.FlipV
	}
}

// EffectiveScale returns the parallel scale after applying the presentation
// zoom to the camera's base scale. A non-finite or non-positive zoom is
// rejected, never substituted.
func (p ViewPresentation) EffectiveScale(base float64) (float64, error) {
	if math.IsNaN(p.Zoom) || math.IsInf(p.Zoom, 0) || p.Zoom <= 0 {
		return 0, fmt.Errorf("presentation zoom %v must be strictly positive: %w",
			p.Zoom, geometry.ErrInvalidArgument)
	}
	return base / p.Zoom, nil
}

// NewViewReference derives the view reference for a camera looking at the
// given volume: the slice index comes from projecting the focal point into
// index space along the axis closest to the view plane normal, and the
// in-plane bases from the camera's right/up frame.
func NewViewReference(geom *geometry.VolumeGeometry, volumeID string, c Camera) (ViewReference, error) {
	right, err := c.ViewRight()
	if err != nil {
		return ViewReference{}, err
	}

	axis := geom.ClosestAxis(c.ViewPlaneNormal)
	idx := int(math.Round(geom.WorldToIndex(c.FocalPoint)[axis]))
	if idx < 0 || idx >= geom.Dimensions[axis] {
		return ViewReference{}, fmt.Errorf("focal point projects to slice %d outside [0, %d): %w",
			idx, geom.Dimensions[axis], geometry.ErrInvalidArgument)
	}

	return ViewReference{
		FrameOfReferenceID: geom.FrameOfReferenceID,
		SliceIndex:         idx,
		PlaneAnchor:        c.FocalPoint,
		InPlaneBasis1:      right,
		InPlaneBasis2:      c.ViewUp.Scale(-1),
		VolumeID:           volumeID,
	}, nil
}

// SetSliceIndex moves the reference to another slice along the same normal,
// shifting the plane anchor by the slice step. The index must stay within
// the volume.
func (r *ViewReference) SetSliceIndex(geom *geometry.VolumeGeometry, idx int) error {
	normal, err := r.Normal()
	if err != nil {
		return err
	}
	axis := geom.ClosestAxis(normal)
	if idx < 0 || idx >= geom.Dimensions[axis] {
		return fmt.Errorf("slice index %d outside [0, %d): %w",
			idx, geom.Dimensions[axis], geometry.ErrInvalidArgument)
	}

	step := float64(idx-r.SliceIndex) * geom.Spacing[axis]
	sign := 1.0
	if geom.Direction[axis].Dot(normal) < 0 {
		sign = -1
	}
	r.PlaneAnchor = r.PlaneAnchor.Add(normal.Scale(sign * step))
	r.SliceIndex = idx
	return nil
}

// Normal returns the plane normal implied by the in-plane bases,
// basis1 × basis2.
func (r *ViewReference) Normal() (geometry.Vec3, error) {
	return r.InPlaneBasis1.Cross(r.InPlaneBasis2).Normalized()
}

// ValidateAgainst checks the reference's invariants relative to its camera:
// orthonormal in-plane bases whose cross product matches the camera's view
// plane normal in direction and sign.
func (r *ViewReference) ValidateAgainst(c *Camera) error {
	if err := geometry.CheckDirection("in-plane basis 1", r.InPlaneBasis1); err != nil {
		return err
	}
	if err := geometry.CheckDirection("in-plane basis 2", r.InPlaneBasis2); err != nil {
		return err
	}
	if math.Abs(r.InPlaneBasis1.Dot(r.InPlaneBasis2)) > 1e-6 {
		return fmt.Errorf("in-plane bases are not orthogonal: %w", geometry.ErrInvalidArgument)
	}

	normal, err := r.Normal()
	if err != nil {
		return err
	}
	if normal.Sub(c.ViewPlaneNormal).Length() > 1e-6 {
		return fmt.Errorf("basis cross product %v does not match view plane normal %v: %w",
			normal, c.ViewPlaneNormal, geometry.ErrInvalidArgument)
	}
	return nil
}

// PresentationBases returns the in-plane bases after applying the
// presentation's rotation and flips. The rotation is applied first so that
// subsequent pans are computed in the rotated frame.
func PresentationBases(c *Camera, p ViewPresentation) (b1, b2 geometry.Vec3, err error) {
	right, err := c.ViewRight()
	if err != nil {
		return geometry.Vec3{}, geometry.Vec3{}, err
	}
	b1 = right
	b2 = c.ViewUp.Scale(-1)

	if p.Rotation != 0 {
		theta := p.Rotation * math.Pi / 180
		b1 = rodrigues(b1, c.ViewPlaneNormal, theta)
		b2 = rodrigues(b2, c.ViewPlaneNormal, theta)
	}
	if p.FlipH {
		b1 = b1.Scale(-1)
	}
	if p.FlipV {
		b2 = b2.Scale(-1)
	}
	return b1, b2, nil
}
