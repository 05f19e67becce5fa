package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workbench/internal/errors"
	"workbench/internal/snapshot"
)

const twoGroups = `{
	"grid": {"root": {"type": "branch", "data": [
		{"type": "leaf", "size": 1, "data": {"views": ["a", "b"], "activeView": "b", "id": "1"}},
		{"type": "leaf", "size": 1, "data": {"views": ["c"], "id": "2"}}
	]}, "width": 100, "height": 20, "orientation": "HORIZONTAL"},
	"panels": {
		"a": {"id": "a", "contentComponent": "text"},
		"b": {"id": "b", "contentComponent": "text"},
		"c": {"id": "c", "contentComponent": "text"}
	},
	"activeGroup": "2"
}`

// testEnv points config, store and snapshots at a temp dir.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("WORKBENCH_CONFIG", filepath.Join(dir, "config.toml"))
	t.Setenv("WORKBENCH_STORE_PATH", filepath.Join(dir, "wb.db"))
	t.Setenv("WORKBENCH_SNAPSHOT_DIR", filepath.Join(dir, "layouts"))
	t.Setenv("WORKBENCH_LOG_PATH", filepath.Join(dir, "wb.log"))
	return dir
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLayoutValidate(t *testing.T) {
	dir := testEnv(t)
	good := writeFile(t, dir, "good.json", twoGroups)
	bad := writeFile(t, dir, "bad.json", `{"grid":{"root":{"type":"leaf","data":{"views":["x"]}}},"panels":{}}`)

	out, err := runCmd(t, "layout", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "ok (2 groups, 3 panels)")

	_, err = runCmd(t, "layout", "validate", bad)
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalid, errors.GetKind(err))
}

func TestLayoutRender(t *testing.T) {
	dir := testEnv(t)
	file := writeFile(t, dir, "l.json", twoGroups)

	out, err := runCmd(t, "layout", "render", file)
	require.NoError(t, err)
	assert.Contains(t, out, "50x20@0,0")
	assert.Contains(t, out, "50x20@50,0")
	assert.Contains(t, out, "a,b")

	out, err = runCmd(t, "layout", "render", file, "--width", "40", "--height", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "20x10@20,0")
}

func TestLayoutImportExport(t *testing.T) {
	dir := testEnv(t)
	file := writeFile(t, dir, "l.json", twoGroups)

	out, err := runCmd(t, "layout", "import", "--workspace", "proj", file)
	require.NoError(t, err)
	assert.Contains(t, out, "imported")

	out, err = runCmd(t, "workspaces")
	require.NoError(t, err)
	assert.Contains(t, out, "proj")

	exported := filepath.Join(dir, "out.json")
	_, err = runCmd(t, "layout", "export", "-w", "proj", "-o", exported)
	require.NoError(t, err)
	doc, err := snapshot.ReadFile(exported)
	require.NoError(t, err)
	assert.Len(t, doc.Panels, 3)

	out, err = runCmd(t, "layout", "export", "-w", "proj")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "layouts", "proj.json"))

	out, err = runCmd(t, "layout", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "proj")

	// A bare name resolves to a snapshot.
	_, err = runCmd(t, "layout", "import", "-w", "other", "proj")
	require.NoError(t, err)
	_, err = runCmd(t, "layout", "import", "-w", "other", "missing")
	assert.ErrorContains(t, err, "neither a file nor a snapshot")

	_, err = runCmd(t, "layout", "export", "-w", "nobody")
	assert.Equal(t, errors.KindNotFound, errors.GetKind(err))

	_, err = runCmd(t, "workspaces", "delete", "other")
	require.NoError(t, err)
	out, err = runCmd(t, "workspaces")
	require.NoError(t, err)
	assert.NotContains(t, out, "other")
}

func TestConfigInit(t *testing.T) {
	dir := testEnv(t)
	path := filepath.Join(dir, "written.toml")

	out, err := runCmd(t, "config", "init", "--config", path, "-w", "mine")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)
	assert.FileExists(t, path)

	out, err = runCmd(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "mine")
}
