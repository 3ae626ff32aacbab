// Package visualization renders the slice a viewport currently shows as a
// 2D grayscale image. Pixels are mapped through the viewport's camera and
// presentation into world space, then sampled from the volume via the
// inverse geometry transform, so oblique and rotated views come out correct
// without any axis special-casing.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"

	"mprview/internal/models"
	"mprview/pkg/camera"
	"mprview/pkg/geometry"
)

// Viewer extracts slice images from one volume.
type Viewer struct {
	volume *models.Volume
}

// NewViewer creates a viewer over the given volume.
func NewViewer(volume *models.Volume) *Viewer {
	return &Viewer{volume: volume}
}

// RenderSlice rasterizes the slice seen by the given camera and presentation
// into a square grayscale image with the given pixel size. The image spans
// twice the effective parallel scale in world units, centered on the focal
// point, with presentation flips and rotation applied to the in-plane bases.
func (v *Viewer) RenderSlice(c *camera.Camera, p camera.ViewPresentation, sizePx int) (image.Image, error) {
	if sizePx <= 0 {
		return nil, fmt.Errorf("image size %d must be positive: %w", sizePx, geometry.ErrInvalidArgument)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("render slice: %w", err)
	}

	b1, b2, err := camera.PresentationBases(c, p)
	if err != nil {
		return nil, fmt.Errorf("render slice: %w", err)
	}

	scale, err := p.EffectiveScale(c.ParallelScale)
	if err != nil {
		return nil, fmt.Errorf("render slice: %w", err)
	}
	center := c.FocalPoint.Add(b1.Scale(p.Pan[0])).Add(b2.Scale(p.Pan[1]))

	// World units per pixel; the image covers [-scale, scale] on both axes.
	step := 2 * scale / float64(sizePx)
	half := float64(sizePx-1) / 2

	img := image.NewGray16(image.Rect(0, 0, sizePx, sizePx))
	for py := 0; py < sizePx; py++ {
		for px := 0; px < sizePx; px++ {
			world := center.
				Add(b1.Scale((float64(px) - half) * step)).
				Add(b2.Scale((float64(py) - half) * step))
			val := v.volume.SampleWorld(world)
			gray := uint16(math.Max(0, math.Min(65535, val*65535)))
			img.SetGray16(px, py, color.Gray16{Y: gray})
		}
	}
	return img, nil
}

// RenderViewportSlice renders the slice for a full captured viewport state,
// verifying the view reference belongs to this volume's frame of reference.
func (v *Viewer) RenderViewportSlice(c *camera.Camera, p camera.ViewPresentation, ref *camera.ViewReference, sizePx int) (image.Image, error) {
	if ref != nil && ref.FrameOfReferenceID != v.volume.Geometry.FrameOfReferenceID {
		return nil, fmt.Errorf("view reference frame %q does not match volume frame %q: %w",
			ref.FrameOfReferenceID, v.volume.Geometry.FrameOfReferenceID, geometry.ErrInvalidArgument)
	}
	return v.RenderSlice(c, p, sizePx)
}

// SaveSlice writes an extracted slice as a JPEG image.
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}

// SaveSliceSequence renders and saves every slice along the given
// orientation into outputDir, scrolling a default camera through the volume
// slice by slice.
func (v *Viewer) SaveSliceSequence(o camera.Orientation, outputDir string, sizePx int) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	geom := v.volume.Geometry
	cam, err := camera.ResetToDefault(geom, o)
	if err != nil {
		return fmt.Errorf("default %s camera: %w", o, err)
	}
	ref, err := camera.NewViewReference(geom, v.volume.ID, cam)
	if err != nil {
		return fmt.Errorf("default %s view reference: %w", o, err)
	}
	axis := geom.ClosestAxis(cam.ViewPlaneNormal)

	for idx := 0; idx < geom.Dimensions[axis]; idx++ {
		if err := ref.SetSliceIndex(geom, idx); err != nil {
			return fmt.Errorf("slice %d: %w", idx, err)
		}
		// Move the camera with the reference so the focal point stays on
		// the slicing plane.
		shift := ref.PlaneAnchor.Sub(cam.FocalPoint)
		cam.FocalPoint = ref.PlaneAnchor
		cam.Position = cam.Position.Add(shift)

		img, err := v.RenderSlice(&cam, camera.DefaultPresentation(), sizePx)
		if err != nil {
			return fmt.Errorf("render %s slice %d: %w", o, idx, err)
		}
		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.jpg", o, idx))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}
	return nil
}
