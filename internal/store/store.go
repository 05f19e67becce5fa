// Package store keeps per-workspace state in SQLite. Values are opaque
// blobs keyed by (workspace, key); the editor layout lives under LayoutKey.
package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"workbench/internal/errors"
	"workbench/internal/layout"
)

// LayoutKey is the state key of the serialized editor layout.
const LayoutKey = "layout.editor"

// Workspace is a named set of state.
type Workspace struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is a SQLite-backed state store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the store at path and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.StoreOpenFailed(path, err)
	}
	if err := runMigrations(path); err != nil {
		return nil, errors.StoreOpenFailed(path, fmt.Errorf("migrate: %w", err))
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.StoreOpenFailed(path, err)
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.StoreOpenFailed(path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// CreateWorkspace adds a workspace with a generated id.
func (s *Store) CreateWorkspace(ctx context.Context, name string) (Workspace, error) {
	ws := Workspace{ID: uuid.NewString(), Name: name, CreatedAt: now()}
	ws.UpdatedAt = ws.CreatedAt
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workspaces (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		ws.ID, ws.Name, ws.CreatedAt, ws.UpdatedAt)
	if err != nil {
		return Workspace{}, errors.E(errors.Op("store.CreateWorkspace"), errors.KindIO, err)
	}
	return ws, nil
}

// EnsureWorkspace returns the workspace with id, creating it (named after
// its id) if it does not exist.
func (s *Store) EnsureWorkspace(ctx context.Context, id string) (Workspace, error) {
	const op = errors.Op("store.EnsureWorkspace")
	if id == "" {
		return Workspace{}, errors.E(op, errors.KindInvalid, "empty workspace id")
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error { return ensureWorkspace(ctx, tx, id) })
	if err != nil {
		return Workspace{}, errors.E(op, errors.KindIO, err)
	}
	return s.Workspace(ctx, id)
}

func ensureWorkspace(ctx context.Context, tx *sql.Tx, id string) error {
	t := now()
	_, err := tx.ExecContext(ctx,
		`INSERT INTO workspaces (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`, id, id, t, t)
	return err
}

// Workspace returns one workspace.
func (s *Store) Workspace(ctx context.Context, id string) (Workspace, error) {
	const op = errors.Op("store.Workspace")
	var ws Workspace
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM workspaces WHERE id = ?`, id).
		Scan(&ws.ID, &ws.Name, &ws.CreatedAt, &ws.UpdatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return Workspace{}, errors.E(op, errors.KindNotFound, fmt.Sprintf("workspace %s not found", id))
	}
	if err != nil {
		return Workspace{}, errors.E(op, errors.KindIO, err)
	}
	return ws, nil
}

// Workspaces lists all workspaces, most recently updated first.
func (s *Store) Workspaces(ctx context.Context) ([]Workspace, error) {
	const op = errors.Op("store.Workspaces")
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM workspaces ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, errors.E(op, errors.KindIO, err)
	}
	defer rows.Close()

	var out []Workspace
	for rows.Next() {
		var ws Workspace
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
			return nil, errors.E(op, errors.KindIO, err)
		}
		out = append(out, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.E(op, errors.KindIO, err)
	}
	return out, nil
}

// DeleteWorkspace removes a workspace and all of its state.
func (s *Store) DeleteWorkspace(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workspaces WHERE id = ?`, id)
	if err != nil {
		return errors.E(errors.Op("store.DeleteWorkspace"), errors.KindIO, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.E(errors.Op("store.DeleteWorkspace"), errors.KindNotFound, fmt.Sprintf("workspace %s not found", id))
	}
	return nil
}

// Get returns the value stored under (workspace, key).
func (s *Store) Get(ctx context.Context, workspace, key string) ([]byte, error) {
	const op = errors.Op("store.Get")
	var v []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM state WHERE workspace_id = ? AND key = ?`, workspace, key).Scan(&v)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.E(op, errors.KindNotFound, fmt.Sprintf("no %s stored for workspace %s", key, workspace))
	}
	if err != nil {
		return nil, errors.E(op, errors.KindIO, err)
	}
	return v, nil
}

// Put stores value under (workspace, key), creating the workspace if needed.
func (s *Store) Put(ctx context.Context, workspace, key string, value []byte) error {
	const op = errors.Op("store.Put")
	if workspace == "" || key == "" {
		return errors.E(op, errors.KindInvalid, "empty workspace or key")
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureWorkspace(ctx, tx, workspace); err != nil {
			return err
		}
		t := now()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO state (workspace_id, key, value, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(workspace_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			workspace, key, value, t); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE workspaces SET updated_at = ? WHERE id = ?`, t, workspace)
		return err
	})
	if err != nil {
		return errors.E(op, errors.KindIO, err)
	}
	return nil
}

// Delete removes (workspace, key). Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, workspace, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE workspace_id = ? AND key = ?`, workspace, key)
	if err != nil {
		return errors.E(errors.Op("store.Delete"), errors.KindIO, err)
	}
	return nil
}

// LoadLayout decodes the layout stored for workspace. A missing layout
// returns a KindNotFound error.
func (s *Store) LoadLayout(ctx context.Context, workspace string) (*layout.Layout, error) {
	data, err := s.Get(ctx, workspace, LayoutKey)
	if errors.Is(err, errors.KindNotFound) {
		return nil, errors.LayoutNotFound(workspace)
	}
	if err != nil {
		return nil, err
	}
	doc, err := layout.Decode(data)
	if err != nil {
		return nil, errors.E(errors.Op("store.LoadLayout"), errors.KindInvalid, err)
	}
	return doc, nil
}

// SaveLayout encodes doc and stores it for workspace.
func (s *Store) SaveLayout(ctx context.Context, workspace string, doc *layout.Layout) error {
	data, err := layout.Encode(doc)
	if err != nil {
		return errors.E(errors.Op("store.SaveLayout"), errors.KindInvalid, err)
	}
	return s.Put(ctx, workspace, LayoutKey, data)
}
