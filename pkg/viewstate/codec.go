package viewstate

import (
	"encoding/json"
	"fmt"
)

// namedSnapshot is one ["name", Snapshot] pair of the export format.
type namedSnapshot struct {
	Name     string
	Snapshot *Snapshot
}

func (p namedSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{p.Name, p.Snapshot})
}

func (p *namedSnapshot) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("expected [name, snapshot] pair, got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Name); err != nil {
		return fmt.Errorf("pair name: %v", err)
	}
	p.Snapshot = &Snapshot{}
	if err := json.Unmarshal(raw[1], p.Snapshot); err != nil {
		return fmt.Errorf("pair snapshot: %v", err)
	}
	return nil
}

// ExportJSON serializes the entire snapshot map as an ordered list of
// [name, Snapshot] pairs, preserving insertion order.
func (s *Store) ExportJSON() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairs := make([]namedSnapshot, 0, len(s.order))
	for _, name := range s.order {
		pairs = append(pairs, namedSnapshot{Name: name, Snapshot: s.snapshots[name]})
	}
	data, err := json.Marshal(pairs)
	if err != nil {
		return "", fmt.Errorf("export snapshots: %v", err)
	}
	return string(data), nil
}

// ImportJSON replaces the entire snapshot map with the deserialized content
// of text. The replacement is atomic: on any parse or validation failure the
// store is left untouched and ErrInvalidFormat is returned.
func (s *Store) ImportJSON(text string) error {
	var pairs []namedSnapshot
	if err := json.Unmarshal([]byte(text), &pairs); err != nil {
		return fmt.Errorf("import snapshots: %v: %w", err, ErrInvalidFormat)
	}

	snapshots := make(map[string]*Snapshot, len(pairs))
	order := make([]string, 0, len(pairs))
	for i, p := range pairs {
		if p.Name == "" || p.Snapshot == nil {
			return fmt.Errorf("import snapshots: entry %d has no name: %w", i, ErrInvalidFormat)
		}
		if p.Name != p.Snapshot.Name {
			return fmt.Errorf("import snapshots: entry %d key %q does not match snapshot name %q: %w",
				i, p.Name, p.Snapshot.Name, ErrInvalidFormat)
		}
		if _, dup := snapshots[p.Name]; dup {
			return fmt.Errorf("import snapshots: duplicate name %q: %w", p.Name, ErrInvalidFormat)
		}
		snapshots[p.Name] = p.Snapshot
		order = append(order, p.Name)
	}
	if len(order) > s.max {
		return fmt.Errorf("import snapshots: %d entries exceed the limit of %d: %w",
			len(order), s.max, ErrInvalidFormat)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = snapshots
	s.order = order
	s.persistLocked()
	return nil
}
