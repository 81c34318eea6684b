package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mindgraph/demo"
	"mindgraph/factory"
	"mindgraph/terminal"
	"mindgraph/viewport"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
)

// newScreen is replaced in tests.
var newScreen = tcell.NewScreen

// EditOptions holds flags for the edit command.
type EditOptions struct {
	*RootOptions
	LogFile string
	Demo    string
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Open the interactive editor",
		Long: `Open the interactive editor on a new one-node map.

Keys (defaults, see "mindgraph keys"):
  Tab / Shift+Tab      grow right / left
  Enter / Shift+Enter  grow down / up
  Arrows               move focus, repeat to cycle through siblings
  Backspace            delete the focused node
  Space                edit the label, Escape or Enter to finish
  Ctrl+C               quit

Examples:
  mindgraph edit
  mindgraph edit --log-file /tmp/mindgraph.log --verbose
  mindgraph edit --demo demo.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.LogFile, "log-file", "", "write logs to this file (the terminal is busy drawing)")
	cmd.Flags().StringVar(&opts.Demo, "demo", "", "play a key script into the editor")

	return cmd
}

func runEdit(opts *EditOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	keys, err := keyMap(cfg)
	if err != nil {
		return err
	}

	var script *demo.Script
	if opts.Demo != "" {
		if script, err = demo.LoadScript(opts.Demo); err != nil {
			return WrapExitError(ExitCommandError, "failed to load demo", err)
		}
	}

	var logOut io.Writer = io.Discard
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open log file", err)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := newLogger(opts.RootOptions, cfg, logOut)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid log settings", err)
	}

	screen, err := newScreen()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open terminal", err)
	}
	if err := screen.Init(); err != nil {
		return WrapExitError(ExitCommandError, "failed to initialise terminal", err)
	}
	defer screen.Fini()

	cam := viewport.NewCamera(
		viewport.WithDuration(cfg.PanDuration()),
		viewport.WithNodeSize(cfg.NodeSize()),
		terminal.Frames(screen),
	)
	ed, err := newEditor(cfg, factory.Default, cam, logger)
	if err != nil {
		return err
	}
	session := terminal.NewSession(screen, ed.store, ed.controls, cam, keys,
		terminal.WithLogger(logger), terminal.WithNodeSize(cfg.NodeSize()))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if script != nil {
		go func() {
			if err := demo.Inject(ctx, screen, script); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("demo stopped", "error", err)
			}
		}()
	}

	logger.Info("editor started", "layout", cfg.Layout.Strategy, "direction", cfg.Layout.Direction)
	err = session.Run(ctx)
	logger.Info("editor closed", slog.Int("nodes", len(ed.store.Nodes())))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
