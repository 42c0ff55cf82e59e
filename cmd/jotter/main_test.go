package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/jotter/pkg/core"
)

// run executes the CLI with fresh flag values and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// in returns the global flags pointing at a fresh data dir.
func in(t *testing.T, backend string) func(args ...string) []string {
	dir := t.TempDir()
	return func(args ...string) []string {
		return append(args, "--data-dir", dir, "--backend", backend)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "jotter version "))
}

func TestCRUD(t *testing.T) {
	for _, backend := range []string{"file", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			with := in(t, backend)

			out, err := run(t, with("create", "--title", "Groceries", "--content", "milk, eggs")...)
			require.NoError(t, err)
			id := strings.TrimSpace(out)
			require.NotEmpty(t, id)

			out, err = run(t, with("list")...)
			require.NoError(t, err)
			assert.Equal(t, id+"  Groceries\n", out)

			out, err = run(t, with("get", id)...)
			require.NoError(t, err)
			assert.Equal(t, "# Groceries\n\nmilk, eggs\n", out)

			_, err = run(t, with("update", id, "--title", "Shopping")...)
			require.NoError(t, err)

			out, err = run(t, with("get", id, "--json")...)
			require.NoError(t, err)
			var n core.Note
			require.NoError(t, json.Unmarshal([]byte(out), &n))
			assert.Equal(t, "Shopping", n.Title)
			assert.Equal(t, "milk, eggs", n.Content, "update merges only the given fields")
			assert.True(t, n.UpdatedAt.After(n.CreatedAt))

			out, err = run(t, with("search", "EGGS")...)
			require.NoError(t, err)
			assert.Contains(t, out, id)

			out, err = run(t, with("search", "bread")...)
			require.NoError(t, err)
			assert.Empty(t, out)

			out, err = run(t, with("delete", id)...)
			require.NoError(t, err)
			assert.Equal(t, "Note deleted: "+id+"\n", out)

			out, err = run(t, with("delete", id)...)
			require.NoError(t, err)
			assert.Equal(t, "No such note: "+id+"\n", out)

			out, err = run(t, with("list")...)
			require.NoError(t, err)
			assert.Empty(t, out)
		})
	}
}

func TestGetMissing(t *testing.T) {
	with := in(t, "file")
	_, err := run(t, with("get", "nope")...)
	require.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, 2, exitCode(err))
}

func TestUpdateNeedsFields(t *testing.T) {
	with := in(t, "file")
	_, err := run(t, with("update", "whatever")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")
	assert.Equal(t, 1, exitCode(err))
}

func TestUpdateMissing(t *testing.T) {
	with := in(t, "file")
	_, err := run(t, with("update", "missing-id", "--content", "x")...)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestListYAML(t *testing.T) {
	with := in(t, "file")
	_, err := run(t, with("create", "--id", "one", "--title", "First")...)
	require.NoError(t, err)

	out, err := run(t, with("list", "--yaml")...)
	require.NoError(t, err)
	var notes []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "one", notes[0]["id"])
	assert.Equal(t, "First", notes[0]["title"])
}

func TestOpen(t *testing.T) {
	with := in(t, "file")
	_, err := run(t, with("create", "--id", "abc 123", "--title", "Spaced")...)
	require.NoError(t, err)
	_, err = run(t, with("create", "--id", "later", "--title", "Newest")...)
	require.NoError(t, err)
	// touching "later" makes it strictly the most recent
	_, err = run(t, with("update", "later", "--content", "x")...)
	require.NoError(t, err)

	out, err := run(t, with("open", "/note/abc%20123")...)
	require.NoError(t, err)
	assert.Equal(t, "/note/abc%20123\nabc 123  Spaced\n", out)

	// home keeps the selection (the newest note after loading)
	out, err = run(t, with("open", "/")...)
	require.NoError(t, err)
	assert.Equal(t, "/\nlater  Newest\n", out)

	out, err = run(t, with("open", "/note/ghost")...)
	require.NoError(t, err)
	assert.Equal(t, "/note/ghost\nghost  (not found)\n", out)
}

func TestStatus(t *testing.T) {
	with := in(t, "memory")
	out, err := run(t, with("status", "--json")...)
	require.NoError(t, err)

	var status map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	for _, key := range []string{"kv-store", "repository", "entity-store", "session", "route-synchronizer"} {
		assert.Contains(t, status, key)
	}
	assert.Equal(t, "memory", status["backend"])
}

func TestWatchUnsupported(t *testing.T) {
	with := in(t, "memory")
	_, err := run(t, with("watch")...)
	require.ErrorIs(t, err, core.ErrWatchUnsupported)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "init", dir, "--backend", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized empty jotter project")

	data, err := os.ReadFile(filepath.Join(dir, "jotter.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sqlite")
	_, err = os.Stat(filepath.Join(dir, ".jotter"))
	require.NoError(t, err)

	_, err = run(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")

	_, err = run(t, "init", t.TempDir(), "--backend", "redis")
	require.Error(t, err)
}
