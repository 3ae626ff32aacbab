// Package models holds the shared domain types of the viewer: the loaded
// image volume and the per-slice metadata the loading layer produces.
package models

import (
	"fmt"
	"image"
	"math"

	"mprview/pkg/geometry"
)

// Slice is one already-parsed 2D image with its geometry metadata, as
// delivered by the data-source layer.
type Slice struct {
	// Image is the decoded slice pixel data.
	Image image.Image

	// Index is the position of this slice in the acquisition sequence.
	Index int

	// Thickness is the physical thickness of the slice in mm.
	Thickness float64

	// Position is the physical position of the slice along the normal axis.
	Position float64
}

// Volume is a loaded 3D image volume: scalar voxel data plus the geometry
// that places it in world space.
type Volume struct {
	// ID identifies the volume within the session.
	ID string

	// Data holds normalized voxel intensities in [0,1], row-major:
	// index = k·(nx·ny) + j·nx + i.
	Data []float64

	// Geometry places the voxel grid in world space. Immutable.
	Geometry *geometry.VolumeGeometry
}

// NewVolume validates that the data length matches the geometry dimensions.
func NewVolume(id string, data []float64, geom *geometry.VolumeGeometry) (*Volume, error) {
	n := geom.Dimensions[0] * geom.Dimensions[1] * geom.Dimensions[2]
	if len(data) != n {
		return nil, fmt.Errorf("volume %q: data length %d does not match dimensions %v (%d voxels)",
			id, len(data), geom.Dimensions, n)
	}
	return &Volume{ID: id, Data: data, Geometry: geom}, nil
}

// At returns the voxel intensity at integer index (i,j,k), or 0 for indices
// outside the volume.
func (v *Volume) At(i, j, k int) float64 {
	nx, ny, nz := v.Geometry.Dimensions[0], v.Geometry.Dimensions[1], v.Geometry.Dimensions[2]
	if i < 0 || j < 0 || k < 0 || i >= nx || j >= ny || k >= nz {
		return 0
	}
	return v.Data[k*nx*ny+j*nx+i]
}

// SampleWorld returns the nearest-neighbor voxel intensity at a world
// coordinate, or 0 outside the volume.
func (v *Volume) SampleWorld(world geometry.Vec3) float64 {
	ijk := v.Geometry.WorldToIndex(world)
	return v.At(roundToInt(ijk[0]), roundToInt(ijk[1]), roundToInt(ijk[2]))
}

func roundToInt(f float64) int {
	if f >= 0 {
		return int(f + 0.5)
	}
	return int(f - 0.5)
}

// SyntheticVolume builds a spherical phantom of the given dimensions with
// identity orientation and unit spacing: intensity falls off linearly from 1
// at the center to 0 at the nearest face. Used by the CLI demo and tests.
func SyntheticVolume(id string, dims [3]int, frameOfReference string) (*Volume, error) {
	geom, err := geometry.NewVolumeGeometry(
		geometry.Vec3{0, 0, 0},
		[3]geometry.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		geometry.Vec3{1, 1, 1},
		dims,
		frameOfReference,
	)
	if err != nil {
		return nil, err
	}

	cx := float64(dims[0]-1) / 2
	cy := float64(dims[1]-1) / 2
	cz := float64(dims[2]-1) / 2
	radius := cx
	if cy < radius {
		radius = cy
	}
	if cz < radius {
		radius = cz
	}
	if radius <= 0 {
		radius = 1
	}

	data := make([]float64, dims[0]*dims[1]*dims[2])
	idx := 0
	for k := 0; k < dims[2]; k++ {
		for j := 0; j < dims[1]; j++ {
			for i := 0; i < dims[0]; i++ {
				dx, dy, dz := float64(i)-cx, float64(j)-cy, float64(k)-cz
				val := 1 - math.Sqrt(dx*dx+dy*dy+dz*dz)/radius
				if val < 0 {
					val = 0
				}
				data[idx] = val
				idx++
			}
		}
	}
	return NewVolume(id, data, geom)
}
