package trace

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func newTestProvider(t *testing.T, size int) (*Provider, *Recorder) {
	t.Helper()
	rec := NewRecorder(size)
	p, err := NewProvider(context.Background(), Options{Recorder: rec})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	return p, rec
}

func TestNewProvider_NoEndpointDoesNotExport(t *testing.T) {
	p, _ := newTestProvider(t, 0)
	assert.False(t, p.Exporting())
}

func TestRecorder_RecordsAttributesAndErrors(t *testing.T) {
	p, rec := newTestProvider(t, 10)
	tr := p.Tracer("test")

	_, s := tr.Start(context.Background(), "dock.AddPanel")
	s.SetAttributes(attribute.String("workbench.panel.id", "a"))
	s.End()

	_, s = tr.Start(context.Background(), "dock.FromJSON")
	s.RecordError(errors.New("bad doc"))
	s.SetStatus(codes.Error, "bad doc")
	s.End()

	recent := rec.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "dock.FromJSON", recent[0].Name)
	assert.True(t, recent[0].Failed())
	assert.Equal(t, "bad doc", recent[0].Err)
	assert.Equal(t, "dock.AddPanel", recent[1].Name)
	assert.Equal(t, "a", recent[1].Attributes["panel.id"])
	assert.False(t, recent[1].Failed())
}

func TestRecorder_RingEvictsOldest(t *testing.T) {
	p, rec := newTestProvider(t, 3)
	tr := p.Tracer("test")
	calls := 0
	rec.SetOnChange(func() { calls++ })

	for i := range 5 {
		_, s := tr.Start(context.Background(), fmt.Sprintf("op%d", i))
		s.End()
	}

	var names []string
	for _, s := range rec.Recent() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"op4", "op3", "op2"}, names)
	assert.Equal(t, 5, calls)

	rec.Reset()
	assert.Empty(t, rec.Recent())
}

func TestRecorder_TreesNestChildren(t *testing.T) {
	p, rec := newTestProvider(t, 10)
	tr := p.Tracer("test")

	ctx, root := tr.Start(context.Background(), "ui.drop")
	_, child := tr.Start(ctx, "dock.Apply")
	child.End()
	root.End()
	_, other := tr.Start(context.Background(), "dock.Clear")
	other.End()

	trees := rec.Trees()
	require.Len(t, trees, 2)
	assert.Equal(t, "dock.Clear", trees[0].Name)
	assert.Equal(t, "ui.drop", trees[1].Name)
	require.Len(t, trees[1].Children, 1)
	assert.Equal(t, "dock.Apply", trees[1].Children[0].Name)
}
