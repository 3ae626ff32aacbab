// Package toolcenter resolves the world-space anchor point of a named
// interactive tool (for example a crosshair) for one or more viewports,
// without knowing anything about the tool's interaction logic. Any tool that
// publishes a world anchor through the tool-group registry and annotation
// source collaborators can be queried uniformly: the resolver depends on the
// capability, not on a tool type.
package toolcenter

import (
	"mprview/internal/logging"
	"mprview/pkg/geometry"
)

// ToolMode is the interaction state of a tool instance within a tool group.
type ToolMode string

const (
	// ModeActive means the tool responds to primary interaction.
	ModeActive ToolMode = "active"
	// ModePassive means the tool is rendered but not interactive.
	ModePassive ToolMode = "passive"
	// ModeEnabled means the tool is rendered without any interaction.
	ModeEnabled ToolMode = "enabled"
	// ModeDisabled means the tool is neither rendered nor interactive.
	ModeDisabled ToolMode = "disabled"
)

// ToolInstance is one tool's state within a tool group.
type ToolInstance interface {
	Mode() ToolMode
}

// ToolGroup owns the tool instances bound to a set of viewports.
type ToolGroup interface {
	// ToolInstance returns the named tool, or nil when the group does not
	// carry it.
	ToolInstance(name string) ToolInstance
}

// ToolGroupRegistry locates the tool group owning a viewport.
type ToolGroupRegistry interface {
	// ToolGroupForViewport returns the owning group, or nil when no group
	// owns the viewport.
	ToolGroupForViewport(viewportID string) ToolGroup
}

// Annotation is a tool-produced annotation that may expose a world anchor.
// A tool that is enabled but not yet positioned reports ok == false.
type Annotation interface {
	WorldAnchor() (geometry.Vec3, bool)
}

// AnnotationSource lists the annotations a named tool has placed on a
// viewport's rendering surface.
type AnnotationSource interface {
	AnnotationsForTool(toolName, viewportID string) []Annotation
}

// ToolCenterInfo is the result of one per-viewport tool query.
type ToolCenterInfo struct {
	// Center is the tool's world-space anchor, or nil when unavailable.
	Center *geometry.Vec3 `json:"center"`
	// IsActive reports whether the tool is interactive on that viewport.
	IsActive bool `json:"isActive"`
}

// Resolver answers tool-center queries against the injected collaborators.
type Resolver struct {
	registry    ToolGroupRegistry
	annotations AnnotationSource
}

// NewResolver builds a resolver over the given collaborators.
func NewResolver(registry ToolGroupRegistry, annotations AnnotationSource) *Resolver {
	return &Resolver{registry: registry, annotations: annotations}
}

// ToolCenter resolves the named tool's anchor and activity for one viewport.
// It never fails: a missing tool group, an absent tool, or a collaborator
// panic all degrade to {center: nil, isActive: false} with a logged warning,
// so one viewport's failure cannot abort a batch query.
func (r *Resolver) ToolCenter(viewportID, toolName string) (info ToolCenterInfo) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.Warnf("toolcenter: collaborator panic resolving %q on viewport %q: %v",
				toolName, viewportID, rec)
			info = ToolCenterInfo{}
		}
	}()

	if r.registry == nil || r.annotations == nil {
		logging.Warnf("toolcenter: no collaborators configured, cannot resolve %q on viewport %q",
			toolName, viewportID)
		return ToolCenterInfo{}
	}

	group := r.registry.ToolGroupForViewport(viewportID)
	if group == nil {
		logging.Debugf("toolcenter: no tool group owns viewport %q", viewportID)
		return ToolCenterInfo{}
	}
	tool := group.ToolInstance(toolName)
	if tool == nil {
		logging.Debugf("toolcenter: tool group for viewport %q has no tool %q", viewportID, toolName)
		return ToolCenterInfo{}
	}

	info.IsActive = tool.Mode() == ModeActive

	// The tool may be enabled without having been positioned yet, in which
	// case there is no annotation and the center stays nil.
	for _, ann := range r.annotations.AnnotationsForTool(toolName, viewportID) {
		if anchor, ok := ann.WorldAnchor(); ok {
			center := anchor
			info.Center = &center
			break
		}
	}
	return info
}

// ToolCentersForAll resolves the named tool independently for each viewport
// ID. Lookups are independent and side-effect free, so no ordering is
// guaranteed.
func (r *Resolver) ToolCentersForAll(viewportIDs []string, toolName string) map[string]ToolCenterInfo {
	out := make(map[string]ToolCenterInfo, len(viewportIDs))
	for _, id := range viewportIDs {
		out[id] = r.ToolCenter(id, toolName)
	}
	return out
}
