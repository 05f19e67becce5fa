package dock

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workbench/internal/bridge"
	"workbench/internal/errors"
	"workbench/internal/layout"
)

type fakeBridge struct {
	live     map[string]bool
	mounts   int
	disposes int
	fail     map[string]error
	updates  map[string][]map[string]any
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		live:    make(map[string]bool),
		fail:    make(map[string]error),
		updates: make(map[string][]map[string]any),
	}
}

func (b *fakeBridge) Mount(n *bridge.Node, d bridge.Descriptor, _ bridge.Props) (bridge.Handle, error) {
	if err := b.fail[d.Component]; err != nil {
		return nil, err
	}
	b.mounts++
	b.live[n.ID] = true
	return &fakeHandle{b: b, id: n.ID}, nil
}

type fakeHandle struct {
	b  *fakeBridge
	id string
}

func (h *fakeHandle) Update(p map[string]any) { h.b.updates[h.id] = append(h.b.updates[h.id], p) }

func (h *fakeHandle) Dispose() {
	h.b.disposes++
	delete(h.b.live, h.id)
}

func newTestEngine(t *testing.T, opts ...func(*Options)) (*Engine, *fakeBridge) {
	t.Helper()
	b := newFakeBridge()
	o := Options{Bridge: b}
	for _, fn := range opts {
		fn(&o)
	}
	e := New(o)
	e.Layout(100, 40)
	return e, b
}

func addPanel(t *testing.T, e *Engine, id string, pos *Position) *Panel {
	t.Helper()
	p, err := e.AddPanel(AddPanelOptions{ID: id, Component: "view", Title: strings.ToUpper(id), Position: pos})
	require.NoError(t, err)
	return p
}

// requireConsistent checks ownership: every panel sits in exactly one group,
// the group it records, and grid leaves match the grid groups.
func requireConsistent(t *testing.T, e *Engine) {
	t.Helper()
	owners := make(map[string]int)
	for id, g := range e.groups {
		for _, pid := range g.panels {
			owners[pid]++
			p := e.panels[pid]
			require.NotNil(t, p, "group %s holds unknown panel %s", id, pid)
			require.Equal(t, id, p.group, "panel %s", pid)
		}
		if g.active != "" {
			require.Contains(t, g.panels, g.active, "group %s", id)
		}
		require.Equal(t, g.location == LocationGrid, e.grid.Has(id), "group %s", id)
	}
	for pid := range e.panels {
		require.Equal(t, 1, owners[pid], "panel %s owners", pid)
	}
	if e.activeGroup != "" {
		require.NotNil(t, e.groups[e.activeGroup])
	}
}

func TestAddPanel_FocusOrCreate(t *testing.T) {
	e, _ := newTestEngine(t)
	var added []string
	e.OnDidAddPanel(func(ev PanelEvent) { added = append(added, ev.Panel) })

	a := addPanel(t, e, "a", nil)
	addPanel(t, e, "b", &Position{Direction: "right"})
	require.Equal(t, "2", e.ActiveGroup().ID())

	again, err := e.AddPanel(AddPanelOptions{ID: "a", Component: "other"})
	require.NoError(t, err)

	assert.Equal(t, a.ID(), again.ID())
	assert.Len(t, e.Panels(), 2)
	assert.Equal(t, []string{"a", "b"}, added)
	assert.Equal(t, "1", e.ActiveGroup().ID())
	assert.Equal(t, "a", e.ActivePanel().ID())
	assert.Equal(t, "view", again.Component())
	requireConsistent(t, e)
}

func TestCreatePanel_DuplicateIsInvalid(t *testing.T) {
	e, _ := newTestEngine(t)
	addPanel(t, e, "a", nil)
	before := e.ToJSON()

	_, err := e.CreatePanel(AddPanelOptions{ID: "a", Component: "view"})
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalid, errors.GetKind(err))
	var dup *DuplicateError
	require.True(t, stderrors.As(err, &dup))
	assert.Equal(t, "a", dup.ID)
	assert.Equal(t, before, e.ToJSON())
}

func TestAddPanel_RejectsBadInput(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.AddPanel(AddPanelOptions{})
	assert.Equal(t, errors.KindInvalid, errors.GetKind(err))

	_, err = e.AddPanel(AddPanelOptions{ID: "a", Renderer: "sometimes"})
	var inv *layout.InvariantError
	require.True(t, stderrors.As(err, &inv))
	assert.Equal(t, layout.InvRenderer, inv.Invariant)

	_, err = e.AddPanel(AddPanelOptions{ID: "a", Position: &Position{ReferencePanel: "ghost"}})
	assert.Equal(t, errors.KindNotFound, errors.GetKind(err))

	assert.Empty(t, e.Panels())
	assert.True(t, e.grid.Empty())
}

func TestRemovePanel_ActiveFallback(t *testing.T) {
	e, _ := newTestEngine(t)
	for _, id := range []string{"a", "b", "c"} {
		addPanel(t, e, id, nil)
	}
	g := e.GetGroup("1")
	require.Equal(t, []string{"a", "b", "c"}, g.PanelIDs())
	e.GetPanel("b").Focus()

	require.True(t, e.RemovePanel("b"))
	assert.Equal(t, "c", g.ActivePanelID(), "panel now at the removed index")

	require.True(t, e.RemovePanel("c"))
	assert.Equal(t, "a", g.ActivePanelID(), "previous panel when the last tab goes")

	require.True(t, e.RemovePanel("a"))
	assert.False(t, g.Exists())
	assert.Nil(t, e.ActiveGroup())
	assert.True(t, e.grid.Empty())

	assert.False(t, e.RemovePanel("a"))
	assert.Nil(t, e.GetPanel("a"))
}

func TestAddPanel_PositionDirectives(t *testing.T) {
	e, _ := newTestEngine(t)
	addPanel(t, e, "a", nil)
	addPanel(t, e, "b", &Position{Direction: "bottom", ReferencePanel: "a"})
	addPanel(t, e, "c", &Position{ReferenceGroup: "1", Index: Index(0)})
	addPanel(t, e, "d", &Position{Direction: "left"})

	assert.Equal(t, []string{"c", "a"}, e.GetGroup("1").PanelIDs())
	assert.Equal(t, "2", e.GetPanel("b").Group().ID())
	assert.Equal(t, []string{"3", "1", "2"}, e.grid.Leaves())

	r1, r2 := e.GetGroup("1").Rect(), e.GetGroup("2").Rect()
	assert.Equal(t, r1.X, r2.X)
	assert.Equal(t, r1.Y+r1.Height, r2.Y)
	requireConsistent(t, e)
}

func TestRenderer_Modes(t *testing.T) {
	e, b := newTestEngine(t)
	_, err := e.AddPanel(AddPanelOptions{ID: "a", Component: "view", Renderer: layout.Always})
	require.NoError(t, err)
	bp := addPanel(t, e, "b", nil)

	assert.True(t, b.live["a/content"], "always stays mounted when hidden")
	assert.True(t, b.live["b/content"])

	e.GetPanel("a").Focus()
	assert.False(t, bp.Mounted())
	assert.False(t, b.live["b/content"])
	assert.True(t, b.live["a/content"])

	bp.SetRenderer(layout.Always)
	assert.True(t, bp.Mounted())
}

func TestMountError_Remount(t *testing.T) {
	e, b := newTestEngine(t)
	b.fail["broken"] = stderrors.New("boom")

	p, err := e.AddPanel(AddPanelOptions{ID: "x", Component: "broken"})
	require.Error(t, err)
	require.NotNil(t, p)
	assert.Equal(t, errors.KindMount, errors.GetKind(err))
	var me *MountError
	require.True(t, stderrors.As(err, &me))
	assert.Equal(t, "x", me.Panel)
	assert.EqualError(t, me.Unwrap(), "boom")

	assert.True(t, p.Exists())
	assert.False(t, p.Mounted())
	assert.Error(t, p.MountErr())

	delete(b.fail, "broken")
	require.NoError(t, p.Remount())
	assert.True(t, p.Mounted())
	assert.NoError(t, p.MountErr())
}

func TestTabMountErrorLeavesContentAlone(t *testing.T) {
	e, b := newTestEngine(t)
	b.fail["badtab"] = stderrors.New("tab boom")

	p, err := e.AddPanel(AddPanelOptions{ID: "a", Component: "view", TabComponent: "badtab"})
	require.Error(t, err)
	assert.Equal(t, errors.KindMount, errors.GetKind(err))
	assert.True(t, p.Mounted())
	assert.NoError(t, p.MountErr())
	assert.EqualError(t, stderrors.Unwrap(p.TabMountErr()), "tab boom")

	addPanel(t, e, "b", nil)
	require.False(t, p.Mounted(), "hidden content is disposed")
	p.Focus()
	assert.True(t, p.Mounted(), "content remounts despite the failed tab")
	assert.True(t, b.live["a/content"])

	delete(b.fail, "badtab")
	require.NoError(t, p.Remount())
	assert.NoError(t, p.TabMountErr())
	assert.True(t, b.live["a/tab"])
}

func TestUpdateParameters_ForwardsWithoutRemount(t *testing.T) {
	e, b := newTestEngine(t)
	p, err := e.AddPanel(AddPanelOptions{ID: "a", Component: "view", Params: map[string]any{"path": "/a", "line": "3"}})
	require.NoError(t, err)
	mounts := b.mounts

	p.UpdateParameters(map[string]any{"path": "/b", "line": nil})

	assert.Equal(t, map[string]any{"path": "/b"}, p.Params())
	assert.Equal(t, mounts, b.mounts)
	require.Len(t, b.updates["a/content"], 1)
	assert.Equal(t, "/b", b.updates["a/content"][0]["path"])
}

func TestEvents_OneLayoutEventPerOperation(t *testing.T) {
	e, _ := newTestEngine(t)
	layouts := 0
	e.OnDidLayoutChange(func(LayoutEvent) { layouts++ })

	addPanel(t, e, "a", nil)
	assert.Equal(t, 1, layouts)
	addPanel(t, e, "b", nil)
	assert.Equal(t, 2, layouts)

	e.GetGroup("1").MovePanel("b", 0)
	assert.Equal(t, 3, layouts, "tab reorder changes the layout")

	e.GetGroup("1").MovePanel("b", 0)
	assert.Equal(t, 3, layouts, "no-op reorder")

	e.GetPanel("a").SetTitle("Alpha")
	assert.Equal(t, 4, layouts)
}

func TestEvents_ListenerOperationsRunAfterCurrentBatch(t *testing.T) {
	e, _ := newTestEngine(t)
	var order []string
	e.OnDidAddPanel(func(ev PanelEvent) {
		order = append(order, "add:"+ev.Panel)
		if ev.Panel == "a" {
			addPanel(t, e, "companion", &Position{Direction: "right"})
		}
	})
	e.OnDidActivePanelChange(func(ev ActivePanelEvent) { order = append(order, "active:"+ev.Panel) })

	addPanel(t, e, "a", nil)

	assert.Equal(t, []string{"add:a", "active:a", "add:companion", "active:companion"}, order)
	assert.Len(t, e.Panels(), 2)
	requireConsistent(t, e)
}

func TestEvents_PanickingListenerDoesNotStopOthers(t *testing.T) {
	e, _ := newTestEngine(t)
	called := false
	e.OnDidAddPanel(func(PanelEvent) { panic("listener bug") })
	e.OnDidAddPanel(func(PanelEvent) { called = true })

	addPanel(t, e, "a", nil)
	assert.True(t, called)
}

func TestEvents_DisposerUnsubscribes(t *testing.T) {
	e, _ := newTestEngine(t)
	n := 0
	dispose := e.OnDidAddPanel(func(PanelEvent) { n++ })
	addPanel(t, e, "a", nil)
	dispose()
	addPanel(t, e, "b", nil)
	assert.Equal(t, 1, n)
}

func TestClear_DisposesEverything(t *testing.T) {
	e, b := newTestEngine(t)
	addPanel(t, e, "a", nil)
	addPanel(t, e, "b", &Position{Direction: "right"})
	_, err := e.AddPanel(AddPanelOptions{ID: "c", Component: "view", Renderer: layout.Always})
	require.NoError(t, err)

	var removed []string
	e.OnDidRemovePanel(func(ev PanelEvent) { removed = append(removed, ev.Panel) })
	e.Clear()

	assert.Empty(t, b.live)
	assert.Empty(t, e.Panels())
	assert.Empty(t, e.Groups())
	assert.True(t, e.grid.Empty())
	assert.ElementsMatch(t, []string{"a", "b", "c"}, removed)
	assert.Nil(t, e.ActiveGroup())
}

func TestStaleHandlesAreInert(t *testing.T) {
	e, _ := newTestEngine(t)
	p := addPanel(t, e, "a", nil)
	g := p.Group()
	e.RemovePanel("a")

	assert.False(t, p.Exists())
	assert.Equal(t, "", p.Title())
	assert.Nil(t, p.Group())
	p.SetTitle("x")
	p.Focus()
	assert.False(t, g.SetActivePanel("a"))
	assert.Nil(t, g.PanelIDs())
}

func TestContainerAPIFollowsPanel(t *testing.T) {
	e, _ := newTestEngine(t)
	addPanel(t, e, "a", nil)
	addPanel(t, e, "b", nil)
	api := containerAPI{e: e, panel: "b"}
	require.Equal(t, "1", api.ID())

	require.NoError(t, e.MoveGroupOrPanel(MoveSource{Panel: "b"}, MoveTarget{Group: "1", Position: "right"}))
	assert.Equal(t, "2", api.ID())
	assert.Equal(t, []string{"b"}, api.PanelIDs())
}

func TestAddGroup_RemoveGroup(t *testing.T) {
	e, b := newTestEngine(t)
	addPanel(t, e, "a", nil)
	var removed []string
	e.OnDidRemoveGroup(func(ev GroupEvent) { removed = append(removed, ev.Group) })

	g, err := e.AddGroup(AddGroupOptions{})
	require.NoError(t, err)
	assert.Equal(t, "2", g.ID())
	assert.Empty(t, g.PanelIDs())
	assert.Equal(t, 50, g.Rect().X, "right edge by default")
	assert.Equal(t, g.ID(), e.ActiveGroup().ID())

	addPanel(t, e, "b", nil)
	assert.Equal(t, []string{"b"}, g.PanelIDs(), "new panels join the active empty group")
	assert.True(t, b.live["b/content"])

	_, err = e.AddGroup(AddGroupOptions{ID: "1"})
	assert.Equal(t, errors.KindInvalid, errors.GetKind(err))

	assert.True(t, e.RemoveGroup("2"))
	assert.Nil(t, e.GetPanel("b"))
	assert.False(t, b.live["b/content"])
	assert.Equal(t, []string{"2"}, removed)
	assert.Equal(t, 100, e.GetGroup("1").Rect().Width)
	assert.False(t, e.RemoveGroup("2"), "unknown ids are a no-op")
	requireConsistent(t, e)
}
