package dock

// PanelEvent reports a panel added to or removed from the layout.
type PanelEvent struct {
	Panel string
	Group string
}

// MoveEvent reports a panel changing groups. It fires once, after the panel
// has left From and joined To.
type MoveEvent struct {
	Panel string
	From  string
	To    string
}

// ActivePanelEvent reports a new active panel of the active group. Panel is
// empty when nothing is active.
type ActivePanelEvent struct {
	Panel string
	Group string
}

// ActiveGroupEvent reports a new active group.
type ActiveGroupEvent struct {
	Group string
}

// TitleEvent reports a panel title change.
type TitleEvent struct {
	Panel string
	Title string
}

// GroupEvent reports a group added or removed.
type GroupEvent struct {
	Group    string
	Location Location
}

// LayoutEvent fires once after any operation that changed structure, sizing
// or serialized panel state.
type LayoutEvent struct{}

// OnDidAddPanel subscribes fn and returns a disposer.
func (e *Engine) OnDidAddPanel(fn func(PanelEvent)) func() { return e.addPanel.Subscribe(fn) }

// OnDidRemovePanel subscribes fn and returns a disposer.
func (e *Engine) OnDidRemovePanel(fn func(PanelEvent)) func() { return e.removePanel.Subscribe(fn) }

// OnDidMovePanel subscribes fn and returns a disposer.
func (e *Engine) OnDidMovePanel(fn func(MoveEvent)) func() { return e.movePanel.Subscribe(fn) }

// OnDidActivePanelChange subscribes fn and returns a disposer.
func (e *Engine) OnDidActivePanelChange(fn func(ActivePanelEvent)) func() {
	return e.activePanel.Subscribe(fn)
}

// OnDidActiveGroupChange subscribes fn and returns a disposer.
func (e *Engine) OnDidActiveGroupChange(fn func(ActiveGroupEvent)) func() {
	return e.activeGroupCh.Subscribe(fn)
}

// OnDidTitleChange subscribes fn and returns a disposer.
func (e *Engine) OnDidTitleChange(fn func(TitleEvent)) func() { return e.titleChange.Subscribe(fn) }

// OnDidAddGroup subscribes fn and returns a disposer.
func (e *Engine) OnDidAddGroup(fn func(GroupEvent)) func() { return e.addGroup.Subscribe(fn) }

// OnDidRemoveGroup subscribes fn and returns a disposer.
func (e *Engine) OnDidRemoveGroup(fn func(GroupEvent)) func() { return e.removeGroup.Subscribe(fn) }

// OnDidLayoutChange subscribes fn and returns a disposer.
func (e *Engine) OnDidLayoutChange(fn func(LayoutEvent)) func() { return e.layoutChange.Subscribe(fn) }

// queue defers fn until the running operation has finished mutating state.
func (e *Engine) queue(fn func()) {
	e.pending = append(e.pending, fn)
}

func (e *Engine) changed() {
	e.layoutDirty = true
}

// flush delivers queued events in order, then active selection changes, then
// at most one layout event. Operations started by listeners queue behind the
// current batch.
func (e *Engine) flush() {
	if e.flushing {
		return
	}
	e.flushing = true
	defer func() { e.flushing = false }()

	for {
		e.trackActive()
		if len(e.pending) > 0 {
			fn := e.pending[0]
			e.pending = e.pending[1:]
			fn()
			continue
		}
		if e.layoutDirty {
			e.layoutDirty = false
			e.layoutChange.Emit(LayoutEvent{})
			continue
		}
		return
	}
}

func (e *Engine) trackActive() {
	if e.activeGroup != e.seenGroup {
		e.seenGroup = e.activeGroup
		ev := ActiveGroupEvent{Group: e.activeGroup}
		e.queue(func() { e.activeGroupCh.Emit(ev) })
	}
	panel := ""
	if g := e.groups[e.activeGroup]; g != nil {
		panel = g.active
	}
	if panel != e.seenPanel {
		e.seenPanel = panel
		ev := ActivePanelEvent{Panel: panel, Group: e.activeGroup}
		e.queue(func() { e.activePanel.Emit(ev) })
	}
}

func (e *Engine) clearListeners() {
	e.addPanel.Clear()
	e.removePanel.Clear()
	e.movePanel.Clear()
	e.activePanel.Clear()
	e.activeGroupCh.Clear()
	e.titleChange.Clear()
	e.addGroup.Clear()
	e.removeGroup.Clear()
	e.layoutChange.Clear()
}
