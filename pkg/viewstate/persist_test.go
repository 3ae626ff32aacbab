package viewstate_test

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mprview/pkg/viewstate"
)

func newTestPersister(t *testing.T) *viewstate.SQLitePersister {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshots.db")
	p, err := viewstate.NewSQLitePersister(path)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestSQLitePersisterRoundTrip(t *testing.T) {
	sess := newTestSession(t)
	p := newTestPersister(t)

	store, err := viewstate.NewStore(viewstate.Options{
		Lister:    sess,
		Renderer:  sess,
		Persister: p,
	})
	require.NoError(t, err)

	_, err = store.SaveSnapshot("persisted-1")
	require.NoError(t, err)
	_, err = store.SaveSnapshot("persisted-2")
	require.NoError(t, err)

	entries, err := p.LoadAll()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "persisted-1", entries[0].Name)
	assert.Equal(t, "persisted-2", entries[1].Name)

	// A new store over the same persister sees the same snapshots.
	reloaded, err := viewstate.NewStore(viewstate.Options{
		Lister:    sess,
		Renderer:  sess,
		Persister: p,
	})
	require.NoError(t, err)

	if diff := cmp.Diff(store.GetAllSnapshots(), reloaded.GetAllSnapshots()); diff != "" {
		t.Errorf("reloaded snapshots differ (-want +got):\n%s", diff)
	}

	ok, err := reloaded.RestoreSnapshot("persisted-2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLitePersisterDeleteAndClear(t *testing.T) {
	sess := newTestSession(t)
	p := newTestPersister(t)

	store, err := viewstate.NewStore(viewstate.Options{
		Lister:    sess,
		Renderer:  sess,
		Persister: p,
	})
	require.NoError(t, err)

	_, err = store.SaveSnapshot("a")
	require.NoError(t, err)
	_, err = store.SaveSnapshot("b")
	require.NoError(t, err)

	require.NoError(t, store.DeleteSnapshot("a"))
	entries, err := p.LoadAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].Name)

	store.ClearAll()
	entries, err = p.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClearPersistedOnInit(t *testing.T) {
	sess := newTestSession(t)
	p := newTestPersister(t)

	store, err := viewstate.NewStore(viewstate.Options{
		Lister:    sess,
		Renderer:  sess,
		Persister: p,
	})
	require.NoError(t, err)
	_, err = store.SaveSnapshot("stale")
	require.NoError(t, err)

	fresh, err := viewstate.NewStore(viewstate.Options{
		Lister:               sess,
		Renderer:             sess,
		Persister:            p,
		ClearPersistedOnInit: true,
	})
	require.NoError(t, err)

	assert.Empty(t, fresh.GetAllSnapshots())
	entries, err := p.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, entries, "clear-on-init discards persisted snapshots")
}
