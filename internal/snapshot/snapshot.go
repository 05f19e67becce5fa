// Package snapshot saves layouts as JSON files so they can be shared,
// inspected and imported into another workspace.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"workbench/internal/errors"
	"workbench/internal/layout"
)

// DirEnv overrides the snapshot directory (for testing).
const DirEnv = "WORKBENCH_SNAPSHOT_DIR"

const ext = ".json"

// Store reads and writes named snapshots in a directory.
// Layout: <dir>/<name>.json
type Store struct {
	dir string
}

// Info describes a stored snapshot.
type Info struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// NewStore creates a store rooted at dir, or at $WORKBENCH_SNAPSHOT_DIR when
// set.
func NewStore(dir string) *Store {
	if env := os.Getenv(DirEnv); env != "" {
		dir = env
	}
	return &Store{dir: dir}
}

// Dir returns the snapshot directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the file path of a snapshot by name. Names are normalized:
// lowercase, spaces become hyphens.
func (s *Store) Path(name string) string {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
	normalized = strings.TrimSuffix(normalized, ext)
	return filepath.Join(s.dir, normalized+ext)
}

// Save validates doc and writes it under name, replacing any snapshot with
// the same name.
func (s *Store) Save(name string, doc *layout.Layout) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.E(errors.Op("snapshot.Save"), errors.KindInvalid, "empty snapshot name")
	}
	path := s.Path(name)
	if err := WriteFile(path, doc); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads and validates the snapshot called name.
func (s *Store) Load(name string) (*layout.Layout, error) {
	return ReadFile(s.Path(name))
}

// Delete removes a snapshot.
func (s *Store) Delete(name string) error {
	if err := os.Remove(s.Path(name)); err != nil {
		if os.IsNotExist(err) {
			return errors.E(errors.Op("snapshot.Delete"), errors.KindNotFound, fmt.Sprintf("snapshot %s not found", name))
		}
		return errors.E(errors.Op("snapshot.Delete"), errors.KindIO, err)
	}
	return nil
}

// List returns stored snapshots sorted by name. A missing directory yields
// an empty list.
func (s *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.E(errors.Op("snapshot.List"), errors.KindIO, err)
	}
	var out []Info
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{
			Name:    strings.TrimSuffix(e.Name(), ext),
			Path:    filepath.Join(s.dir, e.Name()),
			ModTime: fi.ModTime(),
			Size:    fi.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ReadFile decodes and validates a layout document at path.
func ReadFile(path string) (*layout.Layout, error) {
	const op = errors.Op("snapshot.ReadFile")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.E(op, errors.KindNotFound, fmt.Sprintf("snapshot %s not found", path))
	}
	if err != nil {
		return nil, errors.E(op, errors.KindIO, err)
	}
	doc, err := layout.Decode(data)
	if err != nil {
		return nil, errors.E(op, errors.KindInvalid, path, err)
	}
	if err := layout.Validate(doc); err != nil {
		return nil, errors.E(op, errors.KindInvalid, path, err)
	}
	return doc, nil
}

// WriteFile validates doc and writes it to path atomically.
func WriteFile(path string, doc *layout.Layout) error {
	const op = errors.Op("snapshot.WriteFile")
	if err := layout.Validate(doc); err != nil {
		return errors.E(op, errors.KindInvalid, err)
	}
	data, err := layout.Encode(doc)
	if err != nil {
		return errors.E(op, errors.KindInvalid, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.E(op, errors.KindIO, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return errors.E(op, errors.KindIO, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return errors.E(op, errors.KindIO, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.E(op, errors.KindIO, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.E(op, errors.KindIO, err)
	}
	return nil
}
