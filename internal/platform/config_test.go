package platform_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jotter/internal/platform"
)

func TestLoadConfig_Missing(t *testing.T) {
	c, err := platform.LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, platform.Config{}, c)
}

func TestConfig_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	want := platform.DefaultConfig()
	want.Backend = platform.BackendSQLite
	require.NoError(t, want.Save(dir))

	got, err := platform.LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":    "namespace: [unclosed\n",
		"bad backend": "backend: redis\n",
		"bad level":   "log_level: chatty\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, platform.ConfigFileName), []byte(body), 0644))
			_, err := platform.LoadConfig(dir)
			assert.Error(t, err)
		})
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := platform.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestConfig_DataPath(t *testing.T) {
	root := filepath.Join(string(os.PathSeparator), "proj")
	assert.Equal(t, filepath.Join(root, platform.SystemDir), platform.Config{}.DataPath(root))
	assert.Equal(t, filepath.Join(root, "data"), platform.Config{DataDir: "data"}.DataPath(root))

	abs := filepath.Join(string(os.PathSeparator), "var", "notes")
	assert.Equal(t, abs, platform.Config{DataDir: abs}.DataPath(root))
}
