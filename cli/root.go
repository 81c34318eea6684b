// Package cli wires the editor together behind cobra commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"mindgraph/config"
	"mindgraph/controls"
	"mindgraph/core"
	"mindgraph/factory"
	"mindgraph/keymap"
	"mindgraph/mutation"
	"mindgraph/store"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "text" | "json" | "yaml"
	ConfigPath string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mindgraph",
		Short: "Keyboard-driven mind map editor",
		Long: `mindgraph grows a mind map from the keyboard. Every structural edit is
laid out again automatically and the view follows the focused node.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "",
		"config file (default $XDG_CONFIG_HOME/mindgraph/config.toml)")

	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewKeysCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// loadConfig reads the config file named by the global flag.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// newLogger builds the slog logger for cfg. --verbose forces debug level.
func newLogger(opts *RootOptions, cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
}

// keyMap returns the reference bindings with the config overrides applied.
func keyMap(cfg *config.Config) (*keymap.Map, error) {
	keys := keymap.Reference()
	if err := keys.Apply(cfg.Keys); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid key binding", err)
	}
	return keys, nil
}

// editor is the assembled core: store, mutator and controls.
type editor struct {
	store    *store.Store
	controls *controls.Controls
}

// newEditor builds a one-node graph and the controls around it. The root
// node is created by the same factory as every later node.
func newEditor(cfg *config.Config, f *factory.Factory, v controls.Viewport, logger *slog.Logger) (*editor, error) {
	engine, err := cfg.LayoutEngine()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid layout settings", err)
	}
	mutOpts, err := cfg.MutationOptions()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid growth settings", err)
	}

	root := f.NewNode(factory.WithSelected(true))
	laid, err := engine.Run([]core.Node{root}, nil)
	if err != nil {
		return nil, fmt.Errorf("lay out root: %w", err)
	}
	st, err := store.New(laid.Nodes, laid.Edges)
	if err != nil {
		return nil, err
	}

	m := mutation.New(st, f, mutOpts...)
	c := controls.New(st, m, engine, v, controls.WithLogger(logger))
	return &editor{store: st, controls: c}, nil
}
