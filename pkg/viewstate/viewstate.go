// Package viewstate captures and restores the complete render state of a set
// of viewports. A snapshot records, per viewport, the camera, the view
// reference (which slice of which volume) and the presentation transform
// (pan/zoom/rotation/flips), and can be restored deterministically later.
//
// The package consumes two narrow collaborator interfaces implemented by the
// host: a ViewportLister enumerating the live viewports and a
// ViewportRenderer reading and writing their state. Snapshots are kept in a
// bounded, insertion-ordered in-memory map mirrored to a Persister on every
// mutation.
package viewstate

import (
	"errors"
	"time"

	"mprview/pkg/camera"
)

// Viewport kinds as reported by the host's viewport enumeration. Only
// orthographic (MPR) viewports participate in snapshots.
const (
	KindOrthographic = "orthographic"
	KindVolume       = "volume3d"
	KindStack        = "stack"
)

// Error taxonomy for snapshot operations. Collaborator failures during a
// batch (a viewport that disappeared, a renderer read that failed) are not
// errors: they are recovered locally by skipping the unit of work.
var (
	// ErrNoViewports indicates SaveSnapshot found zero matching viewports.
	ErrNoViewports = errors.New("no matching viewports")
	// ErrNotFound indicates an operation referenced a snapshot name that
	// does not exist.
	ErrNotFound = errors.New("snapshot not found")
	// ErrInvalidFormat indicates ImportJSON was given malformed input. The
	// import is rejected atomically.
	ErrInvalidFormat = errors.New("invalid snapshot format")
)

// ViewportInfo describes one live viewport as reported by the host.
type ViewportInfo struct {
	ID   string
	Kind string
}

// ViewportLister enumerates the currently active viewports.
type ViewportLister interface {
	ListViewports() []ViewportInfo
}

// ViewportRenderer reads and writes the live render state of a viewport and
// triggers redraws. The view-reference and view-presentation accessors may
// return nil when the viewport does not support them; the corresponding
// setters are then skipped during restore.
type ViewportRenderer interface {
	Camera(viewportID string) (camera.Camera, error)
	SetCamera(viewportID string, c camera.Camera) error

	ViewReference(viewportID string) (*camera.ViewReference, error)
	SetViewReference(viewportID string, r camera.ViewReference) error

	ViewPresentation(viewportID string) (*camera.ViewPresentation, error)
	SetViewPresentation(viewportID string, p camera.ViewPresentation) error

	Render(viewportID string) error
}

// ViewportState is the full captured render state of one viewport.
type ViewportState struct {
	ViewportID       string                   `json:"viewportId"`
	Camera           camera.Camera            `json:"camera"`
	ViewReference    *camera.ViewReference    `json:"viewReference,omitempty"`
	ViewPresentation *camera.ViewPresentation `json:"viewPresentation,omitempty"`
}

// Snapshot is a named, point-in-time capture of one or more viewports'
// complete view state. Snapshots are immutable once created; all entries
// were captured from the same enumeration pass.
type Snapshot struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	CreatedAt      time.Time       `json:"createdAt"`
	ViewportStates []ViewportState `json:"viewportStates"`
}

// clone returns a deep copy so callers cannot mutate stored snapshots.
func (s *Snapshot) clone() *Snapshot {
	cp := *s
	cp.ViewportStates = make([]ViewportState, len(s.ViewportStates))
	for i, vs := range s.ViewportStates {
		cp.ViewportStates[i] = vs
		if vs.ViewReference != nil {
			ref := *vs.ViewReference
			cp.ViewportStates[i].ViewReference = &ref
		}
		if vs.ViewPresentation != nil {
			pres := *vs.ViewPresentation
			cp.ViewportStates[i].ViewPresentation = &pres
		}
	}
	return &cp
}
