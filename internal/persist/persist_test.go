package persist

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workbench/internal/dock"
	"workbench/internal/errors"
	"workbench/internal/geom"
	"workbench/internal/layout"
	"workbench/internal/store"
)

func newEngine() *dock.Engine {
	e := dock.New(dock.Options{})
	e.Layout(80, 24)
	return e
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "wb.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaver_FlushWritesOnlyWhenDirty(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	e := newEngine()
	s := New(e, st, "default", nil)

	require.NoError(t, s.Flush(ctx))
	assert.Zero(t, s.Saves())

	_, err := e.AddPanel(dock.AddPanelOptions{ID: "a", Component: "view"})
	require.NoError(t, err)
	assert.True(t, s.Dirty())
	require.NoError(t, s.Flush(ctx))
	assert.False(t, s.Dirty())
	assert.Equal(t, 1, s.Saves())
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, 1, s.Saves())

	doc, err := st.LoadLayout(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, e.ToJSON(), doc)
}

func TestSaver_RestoreDoesNotMarkDirty(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	first := newEngine()
	_, err := first.AddPanel(dock.AddPanelOptions{ID: "a", Component: "view"})
	require.NoError(t, err)
	_, err = first.AddPanel(dock.AddPanelOptions{ID: "b", Component: "view", Position: &dock.Position{Direction: geom.Right}})
	require.NoError(t, err)
	require.NoError(t, st.SaveLayout(ctx, "default", first.ToJSON()))

	second := newEngine()
	s := New(second, st, "default", nil)
	ok, err := s.Restore(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, s.Dirty())
	assert.Equal(t, first.ToJSON(), second.ToJSON())

	// Tracking resumes after the restore.
	second.RemovePanel("b")
	assert.True(t, s.Dirty())
	require.NoError(t, s.Close(ctx))
	second.RemovePanel("a")
	assert.False(t, s.Dirty(), "closed savers stop tracking")
}

func TestSaver_RestoreEmptyWorkspace(t *testing.T) {
	s := New(newEngine(), openStore(t), "fresh", nil)
	ok, err := s.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaver_RestoreRejectsInvalidLayout(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	require.NoError(t, st.Put(ctx, "default", store.LayoutKey,
		[]byte(`{"grid":{"root":{"type":"leaf","data":{"views":["x"]}}},"panels":{}}`)))

	e := newEngine()
	s := New(e, st, "default", nil)
	ok, err := s.Restore(ctx)
	assert.False(t, ok)
	assert.Equal(t, errors.KindInvalid, errors.GetKind(err))
	var inv *layout.InvariantError
	assert.True(t, stderrors.As(err, &inv))
	assert.Empty(t, e.Panels())
}

func TestSuspend_Nests(t *testing.T) {
	e := newEngine()
	s := New(e, openStore(t), "default", nil)

	outer := s.Suspend()
	inner := s.Suspend()
	_, err := e.AddPanel(dock.AddPanelOptions{ID: "a", Component: "view"})
	require.NoError(t, err)
	inner()
	inner()
	e.RemovePanel("a")
	assert.False(t, s.Dirty())
	outer()
	_, err = e.AddPanel(dock.AddPanelOptions{ID: "a", Component: "view"})
	require.NoError(t, err)
	assert.True(t, s.Dirty())
}
