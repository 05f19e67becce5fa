// Package persist keeps a workspace's stored layout in step with a live
// engine. Layout changes mark the saver dirty; Flush writes the document.
package persist

import (
	"context"
	"io"
	"log/slog"

	"workbench/internal/dock"
	"workbench/internal/errors"
	"workbench/internal/layout"
)

// Engine is the part of dock.Engine the saver uses.
type Engine interface {
	ToJSON() *layout.Layout
	FromJSON(*layout.Layout) error
	OnDidLayoutChange(func(dock.LayoutEvent)) func()
}

// Store loads and saves a workspace layout.
type Store interface {
	LoadLayout(ctx context.Context, workspace string) (*layout.Layout, error)
	SaveLayout(ctx context.Context, workspace string, doc *layout.Layout) error
}

// Saver tracks whether the engine has unsaved layout changes.
type Saver struct {
	engine    Engine
	store     Store
	workspace string
	log       *slog.Logger

	dirty     bool
	suspended int
	saves     int
	dispose   func()
}

// New subscribes to engine layout changes. A nil logger discards.
func New(engine Engine, store Store, workspace string, log *slog.Logger) *Saver {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Saver{engine: engine, store: store, workspace: workspace, log: log.With("workspace", workspace)}
	s.dispose = engine.OnDidLayoutChange(func(dock.LayoutEvent) {
		if s.suspended == 0 {
			s.dirty = true
		}
	})
	return s
}

// Workspace returns the workspace id being saved.
func (s *Saver) Workspace() string { return s.workspace }

// Dirty reports whether there are changes not yet written.
func (s *Saver) Dirty() bool { return s.dirty }

// Saves returns the number of successful writes.
func (s *Saver) Saves() int { return s.saves }

// Suspend stops change tracking until the returned func is called. Calls
// nest.
func (s *Saver) Suspend() (resume func()) {
	s.suspended++
	done := false
	return func() {
		if !done {
			done = true
			s.suspended--
		}
	}
}

// Flush writes the current layout if it changed since the last write.
func (s *Saver) Flush(ctx context.Context) error {
	if !s.dirty {
		return nil
	}
	return s.Save(ctx)
}

// Save writes the current layout unconditionally.
func (s *Saver) Save(ctx context.Context) error {
	if err := s.store.SaveLayout(ctx, s.workspace, s.engine.ToJSON()); err != nil {
		s.log.Error("saving layout failed", "error", err)
		return err
	}
	s.dirty = false
	s.saves++
	s.log.Debug("layout saved", "saves", s.saves)
	return nil
}

// Restore loads the stored layout into the engine without marking it dirty.
// It reports whether a layout was applied. A workspace with nothing stored
// returns false and no error. A layout whose panels fail to mount is still
// applied; the mount error is returned alongside true.
func (s *Saver) Restore(ctx context.Context) (bool, error) {
	doc, err := s.store.LoadLayout(ctx, s.workspace)
	if errors.Is(err, errors.KindNotFound) {
		s.log.Info("no stored layout")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	resume := s.Suspend()
	defer resume()
	if err := s.engine.FromJSON(doc); err != nil {
		if errors.Is(err, errors.KindMount) {
			s.log.Warn("layout restored with mount errors", "error", err)
			return true, err
		}
		s.log.Error("stored layout rejected", "error", err)
		return false, err
	}
	s.log.Info("layout restored")
	return true, nil
}

// Close flushes pending changes and unsubscribes from the engine.
func (s *Saver) Close(ctx context.Context) error {
	err := s.Flush(ctx)
	if s.dispose != nil {
		s.dispose()
		s.dispose = nil
	}
	return err
}
