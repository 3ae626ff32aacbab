// Package session is the in-process host side of the view-state core: it
// owns the live viewports of one viewer session and implements the
// collaborator interfaces the core consumes: viewport enumeration, render
// state access, the tool-group registry and the annotation source.
package session

import (
	"errors"
	"fmt"
	"sync"

	"mprview/internal/models"
	"mprview/pkg/camera"
	"mprview/pkg/geometry"
	"mprview/pkg/toolcenter"
	"mprview/pkg/viewstate"
)

// ErrViewportNotFound indicates a renderer call referenced a viewport that
// is not (or no longer) part of the session.
var ErrViewportNotFound = errors.New("viewport not found")

// Viewport is one live viewport: a volume, its camera and the layered
// presentation state.
type Viewport struct {
	ID           string
	Kind         string
	Volume       *models.Volume
	Camera       camera.Camera
	Reference    *camera.ViewReference
	Presentation camera.ViewPresentation

	// RenderCount tracks how many times the viewport was asked to redraw.
	RenderCount int
}

// Session owns a set of viewports plus the tool groups and annotations bound
// to them. All access is serialized by one mutex; the render loop is assumed
// to be the only writer of live camera state in production use.
type Session struct {
	mu        sync.Mutex
	viewports map[string]*Viewport
	order     []string

	// groups maps viewport IDs to their owning tool group; annotations are
	// keyed by "toolName|viewportID".
	groups      map[string]*ToolGroup
	annotations map[string][]*CrosshairAnnotation
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{
		viewports:   make(map[string]*Viewport),
		groups:      make(map[string]*ToolGroup),
		annotations: make(map[string][]*CrosshairAnnotation),
	}
}

// NewMPRSession builds the standard multi-planar layout over one volume:
// axial, sagittal and coronal viewports with default cameras and view
// references.
func NewMPRSession(vol *models.Volume) (*Session, error) {
	s := NewSession()
	for _, o := range []camera.Orientation{camera.Axial, camera.Sagittal, camera.Coronal} {
		cam, err := camera.ResetToDefault(vol.Geometry, o)
		if err != nil {
			return nil, fmt.Errorf("default %s camera: %w", o, err)
		}
		ref, err := camera.NewViewReference(vol.Geometry, vol.ID, cam)
		if err != nil {
			return nil, fmt.Errorf("default %s view reference: %w", o, err)
		}
		s.AddViewport(&Viewport{
			ID:           string(o),
			Kind:         viewstate.KindOrthographic,
			Volume:       vol,
			Camera:       cam,
			Reference:    &ref,
			Presentation: camera.DefaultPresentation(),
		})
	}
	return s, nil
}

// AddViewport registers a viewport, replacing any existing one with the
// same ID.
func (s *Session) AddViewport(vp *Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.viewports[vp.ID]; !exists {
		s.order = append(s.order, vp.ID)
	}
	s.viewports[vp.ID] = vp
}

// RemoveViewport tears a viewport down. Snapshots referencing it will skip
// it on restore.
func (s *Session) RemoveViewport(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.viewports[id]; !exists {
		return
	}
	delete(s.viewports, id)
	for i, n := range s.order {
		if n == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Viewport returns the live viewport with the given ID, or nil.
func (s *Session) Viewport(id string) *Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewports[id]
}

// ListViewports implements viewstate.ViewportLister.
func (s *Session) ListViewports() []viewstate.ViewportInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]viewstate.ViewportInfo, 0, len(s.order))
	for _, id := range s.order {
		vp := s.viewports[id]
		out = append(out, viewstate.ViewportInfo{ID: vp.ID, Kind: vp.Kind})
	}
	return out
}

// Camera implements viewstate.ViewportRenderer.
func (s *Session) Camera(id string) (camera.Camera, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vp, ok := s.viewports[id]
	if !ok {
		return camera.Camera{}, fmt.Errorf("viewport %q: %w", id, ErrViewportNotFound)
	}
	return vp.Camera, nil
}

// SetCamera implements viewstate.ViewportRenderer. The camera is validated
// before being applied so a corrupt snapshot cannot poison a live viewport.
func (s *Session) SetCamera(id string, c camera.Camera) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("viewport %q: %w", id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	vp, ok := s.viewports[id]
	if !ok {
		return fmt.Errorf("viewport %q: %w", id, ErrViewportNotFound)
	}
	vp.Camera = c
	return nil
}

// ViewReference implements viewstate.ViewportRenderer.
func (s *Session) ViewReference(id string) (*camera.ViewReference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vp, ok := s.viewports[id]
	if !ok {
		return nil, fmt.Errorf("viewport %q: %w", id, ErrViewportNotFound)
	}
	if vp.Reference == nil {
		return nil, nil
	}
	ref := *vp.Reference
	return &ref, nil
}

// SetViewReference implements viewstate.ViewportRenderer. The reference must
// belong to the same frame of reference as the displayed volume.
func (s *Session) SetViewReference(id string, r camera.ViewReference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	vp, ok := s.viewports[id]
	if !ok {
		return fmt.Errorf("viewport %q: %w", id, ErrViewportNotFound)
	}
	if vp.Volume != nil && r.FrameOfReferenceID != vp.Volume.Geometry.FrameOfReferenceID {
		return fmt.Errorf("viewport %q: view reference frame %q does not match volume frame %q: %w",
			id, r.FrameOfReferenceID, vp.Volume.Geometry.FrameOfReferenceID, geometry.ErrInvalidArgument)
	}
	vp.Reference = &r
	return nil
}

// ViewPresentation implements viewstate.ViewportRenderer.
func (s *Session) ViewPresentation(id string) (*camera.ViewPresentation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vp, ok := s.viewports[id]
	if !ok {
		return nil, fmt.Errorf("viewport %q: %w", id, ErrViewportNotFound)
	}
	pres := vp.Presentation
	return &pres, nil
}

// SetViewPresentation implements viewstate.ViewportRenderer.
func (s *Session) SetViewPresentation(id string, p camera.ViewPresentation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	vp, ok := s.viewports[id]
	if !ok {
		return fmt.Errorf("viewport %q: %w", id, ErrViewportNotFound)
	}
	vp.Presentation = p
	return nil
}

// Render implements viewstate.ViewportRenderer. The session has no real
// rasterizer; it counts redraw requests so tests and the CLI can observe
// them.
func (s *Session) Render(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	vp, ok := s.viewports[id]
	if !ok {
		return fmt.Errorf("viewport %q: %w", id, ErrViewportNotFound)
	}
	vp.RenderCount++
	return nil
}

var _ viewstate.ViewportLister = (*Session)(nil)
var _ viewstate.ViewportRenderer = (*Session)(nil)
var _ toolcenter.ToolGroupRegistry = (*Session)(nil)
var _ toolcenter.AnnotationSource = (*Session)(nil)
