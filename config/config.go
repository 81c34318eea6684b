// Package config loads editor settings.
//
// Settings come from a TOML or YAML file, picked by extension. Without an
// explicit path the file at $XDG_CONFIG_HOME/mindgraph/config.toml is used if
// it exists; otherwise the defaults apply.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mindgraph/core"
	"mindgraph/layout"
	"mindgraph/mutation"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds every editor setting.
type Config struct {
	Layout   LayoutConfig      `toml:"layout" yaml:"layout" json:"layout"`
	Growth   GrowthConfig      `toml:"growth" yaml:"growth" json:"growth"`
	Viewport ViewportConfig    `toml:"viewport" yaml:"viewport" json:"viewport"`
	Keys     map[string]string `toml:"keys" yaml:"keys" json:"keys"` // Chord -> command, "none" unbinds
	Log      LogConfig         `toml:"log" yaml:"log" json:"log"`
}

// LayoutConfig selects and tunes the layout strategy.
type LayoutConfig struct {
	Strategy      string  `toml:"strategy" yaml:"strategy" json:"strategy"`    // "layered" or "columns"
	Direction     string  `toml:"direction" yaml:"direction" json:"direction"` // LR, RL, TB, BT
	RankSep       float64 `toml:"rank_sep" yaml:"rank_sep" json:"rank_sep"`
	NodeSep       float64 `toml:"node_sep" yaml:"node_sep" json:"node_sep"`
	DefaultWidth  float64 `toml:"default_width" yaml:"default_width" json:"default_width"`
	DefaultHeight float64 `toml:"default_height" yaml:"default_height" json:"default_height"`
}

// GrowthConfig controls structural edits.
type GrowthConfig struct {
	Offset  float64 `toml:"offset" yaml:"offset" json:"offset"`
	Cascade string  `toml:"cascade" yaml:"cascade" json:"cascade"` // incident, orphans, subtree
}

// ViewportConfig controls camera animation.
type ViewportConfig struct {
	PanMillis int `toml:"pan_millis" yaml:"pan_millis" json:"pan_millis"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level" json:"level"`    // debug, info, warn, error
	Format string `toml:"format" yaml:"format" json:"format"` // text or json
}

// Default returns the default configuration.
func Default() *Config {
	opts := layout.DefaultOptions()
	return &Config{
		Layout: LayoutConfig{
			Strategy:      layout.KindLayered.String(),
			Direction:     opts.Direction.String(),
			RankSep:       opts.RankSep,
			NodeSep:       opts.NodeSep,
			DefaultWidth:  opts.DefaultWidth,
			DefaultHeight: opts.DefaultHeight,
		},
		Growth: GrowthConfig{
			Offset:  mutation.DefaultOffset,
			Cascade: mutation.CascadeIncident.String(),
		},
		Viewport: ViewportConfig{PanMillis: 100},
		Keys:     map[string]string{},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Dir returns the mindgraph config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "mindgraph")
}

// DefaultPath returns the config file used when no path is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the configuration. An empty path falls back to DefaultPath, and
// a missing default file yields the defaults. The result is validated.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Format is a config file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Parse decodes data on top of the defaults and validates the result.
func Parse(data []byte, format Format) (*Config, error) {
	cfg := Default()
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parse config: unknown key %q", undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	if cfg.Keys == nil {
		cfg.Keys = map[string]string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Write encodes the configuration.
func (c *Config) Write(w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(c)
	}
	return fmt.Errorf("unsupported config format %q", format)
}

// Validate checks every setting that a component would otherwise reject later.
func (c *Config) Validate() error {
	var errs []error
	if _, err := layout.ParseKind(c.Layout.Strategy); err != nil {
		errs = append(errs, err)
	}
	if _, err := layout.ParseDirection(c.Layout.Direction); err != nil {
		errs = append(errs, err)
	}
	if c.Layout.RankSep < 0 || c.Layout.NodeSep < 0 {
		errs = append(errs, errors.New("layout spacing must not be negative"))
	}
	if c.Layout.DefaultWidth < 0 || c.Layout.DefaultHeight < 0 {
		errs = append(errs, errors.New("default node size must not be negative"))
	}
	if c.Growth.Offset < 0 {
		errs = append(errs, errors.New("growth offset must not be negative"))
	}
	if _, err := mutation.ParseCascade(c.Growth.Cascade); err != nil {
		errs = append(errs, err)
	}
	if c.Viewport.PanMillis < 0 {
		errs = append(errs, errors.New("viewport pan_millis must not be negative"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// LayoutEngine builds the configured layout engine.
func (c *Config) LayoutEngine() (*layout.Engine, error) {
	kind, err := layout.ParseKind(c.Layout.Strategy)
	if err != nil {
		return nil, err
	}
	dir, err := layout.ParseDirection(c.Layout.Direction)
	if err != nil {
		return nil, err
	}
	return layout.NewEngine(kind, layout.Options{
		Direction:     dir,
		RankSep:       c.Layout.RankSep,
		NodeSep:       c.Layout.NodeSep,
		DefaultWidth:  c.Layout.DefaultWidth,
		DefaultHeight: c.Layout.DefaultHeight,
	})
}

// NodeSize returns the size of unmeasured nodes, shared by layout, camera and
// drawing.
func (c *Config) NodeSize() core.Size {
	size := core.Size{Width: c.Layout.DefaultWidth, Height: c.Layout.DefaultHeight}
	if size.Width <= 0 {
		size.Width = layout.DefaultNodeWidth
	}
	if size.Height <= 0 {
		size.Height = layout.DefaultNodeHeight
	}
	return size
}

// MutationOptions returns the growth settings as mutator options.
func (c *Config) MutationOptions() ([]mutation.Option, error) {
	cascade, err := mutation.ParseCascade(c.Growth.Cascade)
	if err != nil {
		return nil, err
	}
	return []mutation.Option{mutation.WithOffset(c.Growth.Offset), mutation.WithCascade(cascade)}, nil
}

// PanDuration returns the camera animation length.
func (c *Config) PanDuration() time.Duration {
	return time.Duration(c.Viewport.PanMillis) * time.Millisecond
}

// SlogLevel parses the level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	name := l.Level
	if name == "" {
		name = "info"
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", l.Level)
	}
	return level, nil
}
