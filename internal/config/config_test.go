package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workbench/internal/errors"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("WORKBENCH_CONFIG", "")
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.5, c.Dock.SplitRatio)
	assert.Equal(t, 0.2, c.Dock.EdgeFraction)
	assert.Equal(t, 1, c.Dock.EdgeMinPx)
	assert.Equal(t, 1, c.Dock.HeaderHeight)
	assert.Equal(t, "onlyWhenVisible", c.Dock.DefaultRenderer)
	assert.Equal(t, "redock", c.Dock.PopoutClose)
	assert.Equal(t, filepath.Join(home, ".local", "share", "workbench", "workbench.db"), c.Store.Path)
	assert.True(t, c.UI.Autosave)
	assert.Equal(t, "default", c.UI.Workspace)
	assert.Empty(t, c.OTel.Endpoint)
}

func TestLoad_FileAndEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[dock]
split_ratio = 0.3
header_height = 2

[store]
path = "/tmp/wb.db"
`), 0o644))
	t.Setenv("WORKBENCH_DOCK_HEADER_HEIGHT", "3")
	t.Setenv("WORKBENCH_LOG_DEBUG", "true")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.3, c.Dock.SplitRatio)
	assert.Equal(t, 3, c.Dock.HeaderHeight, "env wins over the file")
	assert.Equal(t, "/tmp/wb.db", c.Store.Path)
	assert.True(t, c.Log.Debug)
}

func TestLoad_ConfigEnvVarSelectsFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "alt.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\nworkspace = \"alt\"\n"), 0o644))
	t.Setenv("WORKBENCH_CONFIG", path)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "alt", c.UI.Workspace)
}

func TestLoad_Errors(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Equal(t, errors.KindConfig, errors.GetKind(err), "an explicit file must exist")

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[dock]\nsplit_ratio = 1.5\n"), 0o644))
	_, err = Load(bad)
	assert.Equal(t, errors.KindInvalid, errors.GetKind(err))

	t.Setenv("WORKBENCH_DOCK_DEFAULT_RENDERER", "sometimes")
	_, err = Load("")
	assert.Equal(t, errors.KindInvalid, errors.GetKind(err))
}

func TestSave_RoundTrip(t *testing.T) {
	isolate(t)
	c, err := Load("")
	require.NoError(t, err)
	c.Dock.SplitRatio = 0.4
	c.UI.Workspace = "ws-1"

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, Save(path, c))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, again)
}
