package viewstate

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"mprview/internal/logging"
)

// DefaultMaxSnapshots bounds the store when Options.MaxSnapshots is zero.
const DefaultMaxSnapshots = 10

// Options configures a Store. Lister and Renderer are required; Persister
// defaults to NopPersister. The store is constructed once at application
// start and passed explicitly to whatever command layer needs it.
type Options struct {
	// MaxSnapshots bounds the store; the oldest snapshot (by insertion
	// order) is evicted when the limit would be exceeded.
	MaxSnapshots int

	Lister   ViewportLister
	Renderer ViewportRenderer

	// Persister mirrors the snapshot map on every mutation. Persistence
	// failures are logged and recovered, never fatal.
	Persister Persister

	// ClearPersistedOnInit discards previously persisted snapshots instead
	// of loading them.
	ClearPersistedOnInit bool
}

// Store is a bounded, insertion-ordered registry of named snapshots over a
// set of live viewports. All read-modify-write sequences hold one mutex, so
// a Store is safe for use from multiple goroutines; the live viewports
// themselves must only be mutated from the goroutine owning the render loop.
type Store struct {
	mu        sync.Mutex
	snapshots map[string]*Snapshot
	order     []string // insertion order of snapshot names

	max       int
	lister    ViewportLister
	renderer  ViewportRenderer
	persister Persister
}

// NewStore builds a snapshot store. Previously persisted snapshots are
// loaded unless ClearPersistedOnInit is set, in which case the persisted
// state is discarded.
func NewStore(opts Options) (*Store, error) {
	if opts.Lister == nil || opts.Renderer == nil {
		return nil, fmt.Errorf("viewstate: lister and renderer are required")
	}
	max := opts.MaxSnapshots
	if max <= 0 {
		max = DefaultMaxSnapshots
	}
	persister := opts.Persister
	if persister == nil {
		persister = NopPersister{}
	}

	s := &Store{
		snapshots: make(map[string]*Snapshot),
		max:       max,
		lister:    opts.Lister,
		renderer:  opts.Renderer,
		persister: persister,
	}

	if opts.ClearPersistedOnInit {
		if err := persister.Clear(); err != nil {
			logging.Warnf("viewstate: failed to clear persisted snapshots: %v", err)
		}
		return s, nil
	}

	entries, err := persister.LoadAll()
	if err != nil {
		logging.Warnf("viewstate: failed to load persisted snapshots: %v", err)
		return s, nil
	}
	for _, snap := range entries {
		if len(s.order) == s.max {
			break
		}
		if _, dup := s.snapshots[snap.Name]; dup {
			continue
		}
		s.snapshots[snap.Name] = snap.clone()
		s.order = append(s.order, snap.Name)
	}
	return s, nil
}

// SaveSnapshot captures the current state of every orthographic viewport
// into a new named snapshot. Non-orthographic viewports are excluded with a
// warning. The requested name is disambiguated with an " (n)" suffix on
// collision. When the store is full the oldest snapshot is evicted first.
// Fails with ErrNoViewports when no orthographic viewport is live; nothing
// partial is ever stored.
func (s *Store) SaveSnapshot(name string) (*Snapshot, error) {
	states := s.captureAll()
	if len(states) == 0 {
		return nil, fmt.Errorf("save snapshot %q: %w", name, ErrNoViewports)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{
		ID:             uuid.New().String(),
		Name:           s.disambiguateLocked(name),
		CreatedAt:      time.Now(),
		ViewportStates: states,
	}

	if len(s.order) >= s.max {
		oldest := s.order[0]
		logging.Warnf("viewstate: snapshot limit %d reached, evicting oldest snapshot %q", s.max, oldest)
		s.order = s.order[1:]
		delete(s.snapshots, oldest)
	}

	s.snapshots[snap.Name] = snap
	s.order = append(s.order, snap.Name)
	s.persistLocked()

	return snap.clone(), nil
}

// captureAll reads the full state of every matching live viewport. A
// viewport whose state cannot be read is skipped with a warning so one bad
// collaborator does not abort the capture.
func (s *Store) captureAll() []ViewportState {
	var states []ViewportState
	for _, vp := range s.lister.ListViewports() {
		if vp.Kind != KindOrthographic {
			logging.Warnf("viewstate: skipping viewport %q of kind %q (not orthographic)", vp.ID, vp.Kind)
			continue
		}

		cam, err := s.renderer.Camera(vp.ID)
		if err != nil {
			logging.Warnf("viewstate: failed to read camera of viewport %q: %v", vp.ID, err)
			continue
		}
		state := ViewportState{ViewportID: vp.ID, Camera: cam}

		if ref, err := s.renderer.ViewReference(vp.ID); err != nil {
			logging.Warnf("viewstate: failed to read view reference of viewport %q: %v", vp.ID, err)
		} else if ref != nil {
			refCopy := *ref
			state.ViewReference = &refCopy
		}

		if pres, err := s.renderer.ViewPresentation(vp.ID); err != nil {
			logging.Warnf("viewstate: failed to read view presentation of viewport %q: %v", vp.ID, err)
		} else if pres != nil {
			presCopy := *pres
			state.ViewPresentation = &presCopy
		}

		states = append(states, state)
	}
	return states
}

// disambiguateLocked returns name, or the first free "name (n)" variant.
func (s *Store) disambiguateLocked(name string) string {
	if _, taken := s.snapshots[name]; !taken {
		return name
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", name, n)
		if _, taken := s.snapshots[candidate]; !taken {
			return candidate
		}
	}
}

// RestoreSnapshot applies a named snapshot back onto the live viewports.
// Per viewport the order is fixed: camera, then presentation, then view
// reference, then render; the slice reference can only resolve correctly
// once the camera is already positioned in the same frame of reference.
//
// A recorded viewport that no longer exists is skipped with a warning.
// Returns true when at least one viewport was restored; false (without an
// error) when every viewport was skipped. Fails with ErrNotFound when the
// snapshot does not exist.
func (s *Store) RestoreSnapshot(name string) (bool, error) {
	s.mu.Lock()
	snap, ok := s.snapshots[name]
	if ok {
		snap = snap.clone()
	}
	s.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("restore snapshot %q: %w", name, ErrNotFound)
	}

	restored := 0
	for _, state := range snap.ViewportStates {
		if s.restoreViewport(state) {
			restored++
		}
	}
	return restored > 0, nil
}

// restoreViewport applies one viewport's recorded state, reporting success.
// All failures are local: logged and skipped, never propagated, so the rest
// of the batch still restores.
func (s *Store) restoreViewport(state ViewportState) bool {
	if err := s.renderer.SetCamera(state.ViewportID, state.Camera); err != nil {
		logging.Warnf("viewstate: skipping viewport %q: failed to set camera: %v", state.ViewportID, err)
		return false
	}
	if state.ViewPresentation != nil {
		if err := s.renderer.SetViewPresentation(state.ViewportID, *state.ViewPresentation); err != nil {
			logging.Warnf("viewstate: viewport %q: failed to set view presentation: %v", state.ViewportID, err)
		}
	}
	if state.ViewReference != nil {
		if err := s.renderer.SetViewReference(state.ViewportID, *state.ViewReference); err != nil {
			logging.Warnf("viewstate: viewport %q: failed to set view reference: %v", state.ViewportID, err)
		}
	}
	if err := s.renderer.Render(state.ViewportID); err != nil {
		logging.Warnf("viewstate: viewport %q: render failed: %v", state.ViewportID, err)
	}
	return true
}

// GetSnapshot returns a copy of the named snapshot, or nil when absent.
func (s *Store) GetSnapshot(name string) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[name]
	if !ok {
		return nil
	}
	return snap.clone()
}

// HasSnapshot reports whether a snapshot with the given name exists.
func (s *Store) HasSnapshot(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.snapshots[name]
	return ok
}

// GetAllSnapshots returns copies of all snapshots in insertion order.
func (s *Store) GetAllSnapshots() []*Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Snapshot, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.snapshots[name].clone())
	}
	return out
}

// DeleteSnapshot removes the named snapshot, failing with ErrNotFound when
// it does not exist.
func (s *Store) DeleteSnapshot(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snapshots[name]; !ok {
		return fmt.Errorf("delete snapshot %q: %w", name, ErrNotFound)
	}
	delete(s.snapshots, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.persistLocked()
	return nil
}

// ClearAll removes every snapshot.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = make(map[string]*Snapshot)
	s.order = nil
	s.persistLocked()
}

// RemainingSlots returns how many more snapshots fit before eviction starts.
func (s *Store) RemainingSlots() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.max - len(s.order)
}

// persistLocked mirrors the in-memory map to the backing persister. Failures
// are logged, not propagated: losing persistence must not break the
// interactive session.
func (s *Store) persistLocked() {
	entries := make([]*Snapshot, 0, len(s.order))
	for _, name := range s.order {
		entries = append(entries, s.snapshots[name])
	}
	if err := s.persister.SaveAll(entries); err != nil {
		logging.Warnf("viewstate: failed to persist snapshots: %v", err)
	}
}
