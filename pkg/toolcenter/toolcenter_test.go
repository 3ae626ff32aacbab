package toolcenter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mprview/internal/models"
	"mprview/internal/session"
	"mprview/pkg/geometry"
	"mprview/pkg/toolcenter"
)

const crosshairs = "Crosshairs"

func newToolSession(t *testing.T) *session.Session {
	t.Helper()
	vol, err := models.SyntheticVolume("vol-1", [3]int{16, 16, 12}, "frame-1")
	require.NoError(t, err)
	sess, err := session.NewMPRSession(vol)
	require.NoError(t, err)
	return sess
}

func TestToolCenter(t *testing.T) {
	t.Run("no tool group owns the viewport", func(t *testing.T) {
		sess := newToolSession(t)
		resolver := toolcenter.NewResolver(sess, sess)

		info := resolver.ToolCenter("axial", crosshairs)
		assert.Nil(t, info.Center)
		assert.False(t, info.IsActive)
	})

	t.Run("group lacks the requested tool", func(t *testing.T) {
		sess := newToolSession(t)
		group := session.NewToolGroup("mpr")
		group.AddTool("Brush", toolcenter.ModeActive)
		sess.BindToolGroup(group, "axial")
		resolver := toolcenter.NewResolver(sess, sess)

		info := resolver.ToolCenter("axial", crosshairs)
		assert.Nil(t, info.Center)
		assert.False(t, info.IsActive)
	})

	t.Run("active tool without annotation has no center", func(t *testing.T) {
		sess := newToolSession(t)
		group := session.NewToolGroup("mpr")
		group.AddTool(crosshairs, toolcenter.ModeActive)
		sess.BindToolGroup(group, "axial")
		resolver := toolcenter.NewResolver(sess, sess)

		info := resolver.ToolCenter("axial", crosshairs)
		assert.Nil(t, info.Center, "tool enabled but not yet positioned")
		assert.True(t, info.IsActive)
	})

	t.Run("placed annotation yields the world anchor", func(t *testing.T) {
		sess := newToolSession(t)
		group := session.NewToolGroup("mpr")
		group.AddTool(crosshairs, toolcenter.ModeActive)
		sess.BindToolGroup(group, "axial")
		anchor := geometry.Vec3{7.5, 7.5, 5.5}
		sess.PlaceAnnotation(crosshairs, "axial", &session.CrosshairAnnotation{Anchor: anchor, Placed: true})
		resolver := toolcenter.NewResolver(sess, sess)

		info := resolver.ToolCenter("axial", crosshairs)
		require.NotNil(t, info.Center)
		assert.Equal(t, anchor, *info.Center)
		assert.True(t, info.IsActive)
	})

	t.Run("unplaced annotation is skipped", func(t *testing.T) {
		sess := newToolSession(t)
		group := session.NewToolGroup("mpr")
		group.AddTool(crosshairs, toolcenter.ModePassive)
		sess.BindToolGroup(group, "axial")
		sess.PlaceAnnotation(crosshairs, "axial", &session.CrosshairAnnotation{})
		resolver := toolcenter.NewResolver(sess, sess)

		info := resolver.ToolCenter("axial", crosshairs)
		assert.Nil(t, info.Center)
		assert.False(t, info.IsActive, "passive tool is not active")
	})

	t.Run("annotation scoping is per viewport", func(t *testing.T) {
		sess := newToolSession(t)
		group := session.NewToolGroup("mpr")
		group.AddTool(crosshairs, toolcenter.ModeActive)
		sess.BindToolGroup(group, "axial", "sagittal")
		sess.PlaceAnnotation(crosshairs, "axial",
			&session.CrosshairAnnotation{Anchor: geometry.Vec3{1, 2, 3}, Placed: true})
		resolver := toolcenter.NewResolver(sess, sess)

		assert.NotNil(t, resolver.ToolCenter("axial", crosshairs).Center)
		assert.Nil(t, resolver.ToolCenter("sagittal", crosshairs).Center)
	})
}

// panickyRegistry simulates a collaborator blowing up mid-query.
type panickyRegistry struct{}

func (panickyRegistry) ToolGroupForViewport(string) toolcenter.ToolGroup {
	panic("registry exploded")
}

func TestToolCenterRecoversCollaboratorPanic(t *testing.T) {
	sess := newToolSession(t)
	resolver := toolcenter.NewResolver(panickyRegistry{}, sess)

	info := resolver.ToolCenter("axial", crosshairs)
	assert.Nil(t, info.Center)
	assert.False(t, info.IsActive)
}

func TestToolCentersForAll(t *testing.T) {
	sess := newToolSession(t)
	group := session.NewToolGroup("mpr")
	group.AddTool(crosshairs, toolcenter.ModeActive)
	sess.BindToolGroup(group, "axial", "sagittal", "coronal")
	sess.PlaceAnnotation(crosshairs, "sagittal",
		&session.CrosshairAnnotation{Anchor: geometry.Vec3{4, 5, 6}, Placed: true})
	resolver := toolcenter.NewResolver(sess, sess)

	infos := resolver.ToolCentersForAll([]string{"axial", "sagittal", "coronal", "ghost"}, crosshairs)
	require.Len(t, infos, 4)

	assert.Nil(t, infos["axial"].Center)
	assert.True(t, infos["axial"].IsActive)

	require.NotNil(t, infos["sagittal"].Center)
	assert.Equal(t, geometry.Vec3{4, 5, 6}, *infos["sagittal"].Center)

	// A viewport no tool group owns degrades cleanly inside the batch.
	assert.Nil(t, infos["ghost"].Center)
	assert.False(t, infos["ghost"].IsActive)
}
