package session

import (
	"mprview/pkg/geometry"
	"mprview/pkg/toolcenter"
)

// Tool is one interactive tool's state within a group.
type Tool struct {
	mode toolcenter.ToolMode
}

// Mode implements toolcenter.ToolInstance.
func (t *Tool) Mode() toolcenter.ToolMode { return t.mode }

// ToolGroup owns the tools bound to a set of viewports.
type ToolGroup struct {
	Name  string
	tools map[string]*Tool
}

// NewToolGroup creates an empty tool group.
func NewToolGroup(name string) *ToolGroup {
	return &ToolGroup{Name: name, tools: make(map[string]*Tool)}
}

// AddTool registers a tool in the given mode.
func (g *ToolGroup) AddTool(name string, mode toolcenter.ToolMode) {
	g.tools[name] = &Tool{mode: mode}
}

// SetToolMode changes a registered tool's mode; unknown tools are ignored.
func (g *ToolGroup) SetToolMode(name string, mode toolcenter.ToolMode) {
	if t, ok := g.tools[name]; ok {
		t.mode = mode
	}
}

// ToolInstance implements toolcenter.ToolGroup.
func (g *ToolGroup) ToolInstance(name string) toolcenter.ToolInstance {
	t, ok := g.tools[name]
	if !ok {
		return nil
	}
	return t
}

// CrosshairAnnotation is a tool annotation anchored at a world point. An
// annotation that has not been positioned yet reports no anchor.
type CrosshairAnnotation struct {
	Anchor geometry.Vec3
	Placed bool
}

// WorldAnchor implements toolcenter.Annotation.
func (a *CrosshairAnnotation) WorldAnchor() (geometry.Vec3, bool) {
	if !a.Placed {
		return geometry.Vec3{}, false
	}
	return a.Anchor, true
}

// BindToolGroup assigns a tool group as the owner of the given viewports.
func (s *Session) BindToolGroup(group *ToolGroup, viewportIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range viewportIDs {
		s.groups[id] = group
	}
}

// ToolGroupForViewport implements toolcenter.ToolGroupRegistry.
func (s *Session) ToolGroupForViewport(viewportID string) toolcenter.ToolGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[viewportID]
	if !ok {
		return nil
	}
	return g
}

// PlaceAnnotation records a tool annotation on a viewport's surface.
func (s *Session) PlaceAnnotation(toolName, viewportID string, ann *CrosshairAnnotation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := toolName + "|" + viewportID
	s.annotations[key] = append(s.annotations[key], ann)
}

// AnnotationsForTool implements toolcenter.AnnotationSource.
func (s *Session) AnnotationsForTool(toolName, viewportID string) []toolcenter.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	anns := s.annotations[toolName+"|"+viewportID]
	out := make([]toolcenter.Annotation, 0, len(anns))
	for _, a := range anns {
		out = append(out, a)
	}
	return out
}
