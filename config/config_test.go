package config

import (
	"bytes"
	"log/slog"
	"mindgraph/layout"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	engine, err := cfg.LayoutEngine()
	require.NoError(t, err)
	assert.Equal(t, "layered", engine.StrategyName())
	assert.Equal(t, 100*time.Millisecond, cfg.PanDuration())

	opts, err := cfg.MutationOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 2)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[layout]
strategy = "columns"
direction = "TB"
rank_sep = 40

[growth]
cascade = "subtree"

[keys]
"Delete" = "delete"
"Backspace" = "none"

[log]
level = "debug"
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "columns", cfg.Layout.Strategy)
	assert.Equal(t, "TB", cfg.Layout.Direction)
	assert.Equal(t, 40.0, cfg.Layout.RankSep)
	assert.Equal(t, 50.0, cfg.Layout.NodeSep, "unset keys keep defaults")
	assert.Equal(t, "subtree", cfg.Growth.Cascade)
	assert.Equal(t, 200.0, cfg.Growth.Offset)
	assert.Equal(t, map[string]string{"Delete": "delete", "Backspace": "none"}, cfg.Keys)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	engine, err := cfg.LayoutEngine()
	require.NoError(t, err)
	assert.Equal(t, "columns", engine.StrategyName())
}

func TestLoadYAML(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.yml"} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, `
layout:
  direction: RL
viewport:
  pan_millis: 0
keys:
  KeyL: grow-right
`)
			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "RL", cfg.Layout.Direction)
			assert.Equal(t, "layered", cfg.Layout.Strategy)
			assert.Equal(t, time.Duration(0), cfg.PanDuration())
			assert.Equal(t, "grow-right", cfg.Keys["KeyL"])
		})
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeFile(t, "bad.toml", "[layout]\nspacing = 3\n"))
	assert.ErrorContains(t, err, "unknown key")

	_, err = Load(writeFile(t, "bad.yaml", "layout:\n  spacing: 3\n"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"strategy":  "[layout]\nstrategy = \"force\"\n",
		"direction": "[layout]\ndirection = \"diagonal\"\n",
		"spacing":   "[layout]\nnode_sep = -1\n",
		"cascade":   "[growth]\ncascade = \"everything\"\n",
		"pan":       "[viewport]\npan_millis = -5\n",
		"level":     "[log]\nlevel = \"chatty\"\n",
		"format":    "[log]\nformat = \"xml\"\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.toml", content))
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err, "an explicit path must exist")

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "mindgraph"), 0o755))
	require.NoError(t, os.WriteFile(DefaultPath(), []byte("[growth]\noffset = 120\n"), 0o644))

	assert.Equal(t, filepath.Join(dir, "mindgraph", "config.toml"), DefaultPath())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 120.0, cfg.Growth.Offset)
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Layout.Direction = layout.TopToBottom.String()
	cfg.Keys["Delete"] = "delete"

	for _, format := range []Format{FormatTOML, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, cfg.Write(&buf, format))
			back, err := Parse(buf.Bytes(), format)
			require.NoError(t, err)
			assert.Equal(t, cfg, back)
		})
	}
}

func TestNodeSize(t *testing.T) {
	cfg := Default()
	cfg.Layout.DefaultWidth = 240
	cfg.Layout.DefaultHeight = 0
	assert.Equal(t, 240.0, cfg.NodeSize().Width)
	assert.Equal(t, float64(layout.DefaultNodeHeight), cfg.NodeSize().Height, "unset height falls back")
}
