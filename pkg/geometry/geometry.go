// Package geometry models the relationship between a volume's voxel-index
// space (IJK) and world (patient/LPS) space. The mapping is an affine
// transform derived from per-volume geometry metadata: origin, direction
// cosines and spacing, as produced by the image loading layer.
package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// orthoTolerance is the tolerance used when validating that the direction
// cosine rows form an orthonormal basis at volume-load time. The transform
// operations themselves assume validity and do not re-verify per call.
const orthoTolerance = 1e-6

// VolumeGeometry describes how one 3D image volume is positioned in world
// space. It is created once when a volume is loaded and is immutable
// thereafter.
type VolumeGeometry struct {
	// Origin is the world-space position of voxel (0,0,0).
	Origin Vec3 `json:"origin"`

	// Direction holds the row, column and slice unit axes in world space.
	// The three rows form an orthonormal basis.
	Direction [3]Vec3 `json:"direction"`

	// Spacing is the physical distance between adjacent voxels along each
	// axis, in millimeters. All components are strictly positive.
	Spacing Vec3 `json:"spacing"`

	// Dimensions is the voxel count along each axis.
	Dimensions [3]int `json:"dimensions"`

	// FrameOfReferenceID identifies the shared world coordinate system.
	// Two volumes with the same ID can be spatially compared.
	FrameOfReferenceID string `json:"frameOfReferenceId"`
}

// NewVolumeGeometry validates the supplied metadata and returns an immutable
// geometry. Validation happens here, once, so the per-call transform
// operations can assume an orthonormal direction basis.
func NewVolumeGeometry(origin Vec3, direction [3]Vec3, spacing Vec3, dimensions [3]int, frameOfReference string) (*VolumeGeometry, error) {
	if !origin.IsFinite() {
		return nil, fmt.Errorf("origin %v is not finite: %w", origin, ErrInvalidArgument)
	}
	for i, s := range spacing {
		if math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 {
			return nil, fmt.Errorf("spacing[%d] = %v must be strictly positive: %w", i, s, ErrInvalidArgument)
		}
	}
	for i, d := range dimensions {
		if d <= 0 {
			return nil, fmt.Errorf("dimensions[%d] = %d must be positive: %w", i, d, ErrInvalidArgument)
		}
	}
	if err := checkOrthonormal(direction); err != nil {
		return nil, err
	}

	return &VolumeGeometry{
		Origin:             origin,
		Direction:          direction,
		Spacing:            spacing,
		Dimensions:         dimensions,
		FrameOfReferenceID: frameOfReference,
	}, nil
}

// checkOrthonormal verifies that the direction rows are mutually orthogonal
// unit vectors by computing R·Rᵀ against the identity. Handedness is not
// constrained; acquisition conventions produce both proper and reflected
// bases, and the transpose-as-inverse mapping is valid for either.
func checkOrthonormal(direction [3]Vec3) error {
	for i, row := range direction {
		if err := CheckDirection(fmt.Sprintf("direction row %d", i), row); err != nil {
			return err
		}
	}

	r := mat.NewDense(3, 3, []float64{
		direction[0][0], direction[0][1], direction[0][2],
		direction[1][0], direction[1][1], direction[1][2],
		direction[2][0], direction[2][1], direction[2][2],
	})

	var rrt mat.Dense
	rrt.Mul(r, r.T())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(rrt.At(i, j)-want) > orthoTolerance {
				return fmt.Errorf("direction rows are not orthonormal (R·Rᵀ[%d][%d] = %v): %w",
					i, j, rrt.At(i, j), ErrInvalidArgument)
			}
		}
	}

	if det := mat.Det(r); math.Abs(math.Abs(det)-1) > orthoTolerance {
		return fmt.Errorf("direction basis is degenerate (det = %v): %w", det, ErrInvalidArgument)
	}
	return nil
}

// IndexToWorld converts (possibly fractional) voxel indices to a world
// coordinate:
//
//	world = origin + Σ direction[k] · (ijk[k] · spacing[k])
//
// Out-of-bounds indices are permitted and extrapolate linearly.
func (g *VolumeGeometry) IndexToWorld(ijk Vec3) Vec3 {
	world := g.Origin
	for k := 0; k < 3; k++ {
		world = world.Add(g.Direction[k].Scale(ijk[k] * g.Spacing[k]))
	}
	return world
}

// WorldToIndex is the inverse of IndexToWorld. Because the direction basis
// is orthonormal its transpose is its inverse, so each index component is
// the projection of (world - origin) onto the corresponding axis divided by
// the spacing along that axis.
func (g *VolumeGeometry) WorldToIndex(world Vec3) Vec3 {
	rel := world.Sub(g.Origin)
	var ijk Vec3
	for k := 0; k < 3; k++ {
		ijk[k] = g.Direction[k].Dot(rel) / g.Spacing[k]
	}
	return ijk
}

// SliceNormal returns the unit vector along the slice axis (the third
// direction row), the default view-plane normal for axis-aligned views.
func (g *VolumeGeometry) SliceNormal() Vec3 {
	return g.Direction[2]
}

// Center returns the world coordinate of the volume's geometric center.
func (g *VolumeGeometry) Center() Vec3 {
	return g.IndexToWorld(Vec3{
		float64(g.Dimensions[0]-1) / 2,
		float64(g.Dimensions[1]-1) / 2,
		float64(g.Dimensions[2]-1) / 2,
	})
}

// AxisExtent returns the physical extent of the volume along voxel axis k,
// in millimeters.
func (g *VolumeGeometry) AxisExtent(k int) float64 {
	return float64(g.Dimensions[k]) * g.Spacing[k]
}

// ClosestAxis returns the voxel axis (0, 1 or 2) whose world direction is
// most closely aligned with dir, ignoring sign. Used to map an arbitrary
// view-plane normal back to the slice axis it scrolls through.
func (g *VolumeGeometry) ClosestAxis(dir Vec3) int {
	best, bestDot := 2, 0.0
	for k := 0; k < 3; k++ {
		if d := math.Abs(g.Direction[k].Dot(dir)); d > bestDot {
			best, bestDot = k, d
		}
	}
	return best
}

// InPlaneExtent returns the physical width and height of the slicing plane
// perpendicular to voxel axis normalAxis.
func (g *VolumeGeometry) InPlaneExtent(normalAxis int) (width, height float64) {
	switch normalAxis {
	case 0:
		return g.AxisExtent(1), g.AxisExtent(2)
	case 1:
		return g.AxisExtent(0), g.AxisExtent(2)
	default:
		return g.AxisExtent(0), g.AxisExtent(1)
	}
}
