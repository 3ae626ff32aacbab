package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mprview/internal/models"
	"mprview/pkg/camera"
	"mprview/pkg/geometry"
	"mprview/pkg/viewstate"
)

func newTestVolume(t *testing.T) *models.Volume {
	t.Helper()
	vol, err := models.SyntheticVolume("vol-1", [3]int{16, 16, 12}, "frame-1")
	require.NoError(t, err)
	return vol
}

func TestNewMPRSession(t *testing.T) {
	sess, err := NewMPRSession(newTestVolume(t))
	require.NoError(t, err)

	infos := sess.ListViewports()
	require.Len(t, infos, 3)
	want := []string{"axial", "sagittal", "coronal"}
	for i, info := range infos {
		assert.Equal(t, want[i], info.ID)
		assert.Equal(t, viewstate.KindOrthographic, info.Kind)
	}

	// Every viewport starts with a valid camera and a matching reference.
	for _, id := range want {
		cam, err := sess.Camera(id)
		require.NoError(t, err)
		assert.NoError(t, cam.Validate())

		ref, err := sess.ViewReference(id)
		require.NoError(t, err)
		require.NotNil(t, ref)
		assert.NoError(t, ref.ValidateAgainst(&cam))
	}
}

func TestViewportAddRemove(t *testing.T) {
	sess, err := NewMPRSession(newTestVolume(t))
	require.NoError(t, err)

	sess.RemoveViewport("sagittal")
	assert.Len(t, sess.ListViewports(), 2)
	assert.Nil(t, sess.Viewport("sagittal"))

	_, err = sess.Camera("sagittal")
	assert.ErrorIs(t, err, ErrViewportNotFound)

	// Re-adding appends at the end of the enumeration order.
	vol := newTestVolume(t)
	cam, err := camera.ResetToDefault(vol.Geometry, camera.Sagittal)
	require.NoError(t, err)
	sess.AddViewport(&Viewport{
		ID:           "sagittal",
		Kind:         viewstate.KindOrthographic,
		Volume:       vol,
		Camera:       cam,
		Presentation: camera.DefaultPresentation(),
	})
	infos := sess.ListViewports()
	require.Len(t, infos, 3)
	assert.Equal(t, "sagittal", infos[2].ID)
}

func TestSetCameraRejectsInvalid(t *testing.T) {
	sess, err := NewMPRSession(newTestVolume(t))
	require.NoError(t, err)

	before, err := sess.Camera("axial")
	require.NoError(t, err)

	bad := before
	bad.ParallelScale = -1
	err = sess.SetCamera("axial", bad)
	assert.ErrorIs(t, err, geometry.ErrInvalidArgument)

	after, err := sess.Camera("axial")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSetViewReferenceFrameMismatch(t *testing.T) {
	sess, err := NewMPRSession(newTestVolume(t))
	require.NoError(t, err)

	ref, err := sess.ViewReference("axial")
	require.NoError(t, err)
	ref.FrameOfReferenceID = "other-frame"

	err = sess.SetViewReference("axial", *ref)
	assert.ErrorIs(t, err, geometry.ErrInvalidArgument)
}

func TestViewReferenceReturnsCopy(t *testing.T) {
	sess, err := NewMPRSession(newTestVolume(t))
	require.NoError(t, err)

	ref, err := sess.ViewReference("axial")
	require.NoError(t, err)
	ref.SliceIndex = 999

	again, err := sess.ViewReference("axial")
	require.NoError(t, err)
	assert.NotEqual(t, 999, again.SliceIndex)
}

func TestRenderCountsRedraws(t *testing.T) {
	sess, err := NewMPRSession(newTestVolume(t))
	require.NoError(t, err)

	require.NoError(t, sess.Render("coronal"))
	require.NoError(t, sess.Render("coronal"))
	assert.Equal(t, 2, sess.Viewport("coronal").RenderCount)

	err = sess.Render("nope")
	assert.True(t, errors.Is(err, ErrViewportNotFound))
}

func TestToolGroupBindingAndAnnotations(t *testing.T) {
	sess, err := NewMPRSession(newTestVolume(t))
	require.NoError(t, err)

	group := NewToolGroup("mpr-tools")
	group.AddTool("Crosshairs", "active")
	sess.BindToolGroup(group, "axial", "coronal")

	assert.NotNil(t, sess.ToolGroupForViewport("axial"))
	assert.Nil(t, sess.ToolGroupForViewport("sagittal"))
	assert.Nil(t, group.ToolInstance("Ruler"))

	group.SetToolMode("Crosshairs", "passive")
	assert.Equal(t, "passive", string(group.ToolInstance("Crosshairs").Mode()))

	sess.PlaceAnnotation("Crosshairs", "axial", &CrosshairAnnotation{
		Anchor: geometry.Vec3{1, 2, 3},
		Placed: true,
	})
	anns := sess.AnnotationsForTool("Crosshairs", "axial")
	require.Len(t, anns, 1)
	anchor, ok := anns[0].WorldAnchor()
	assert.True(t, ok)
	assert.Equal(t, geometry.Vec3{1, 2, 3}, anchor)

	// Annotations are scoped per viewport.
	assert.Empty(t, sess.AnnotationsForTool("Crosshairs", "coronal"))
}
