package cli

import (
	"fmt"
	"io"
	"mindgraph/canvas"
	"mindgraph/core"
	"mindgraph/demo"
	"mindgraph/factory"
	"mindgraph/viewport"
	"os"

	"github.com/spf13/cobra"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	IDs          string // "sequence" or "uuid"
	ScriptFormat string // Overrides detection by extension
	Realtime     bool
	Picture      bool
	Example      bool
}

// ReplayResult is the graph a script leaves behind.
type ReplayResult struct {
	Script   string      `json:"script" yaml:"script"`
	Steps    int         `json:"steps" yaml:"steps"`
	Total    int         `json:"total" yaml:"total"`
	Commands []string    `json:"commands" yaml:"commands"`
	Focus    string      `json:"focus,omitempty" yaml:"focus,omitempty"`
	Nodes    []core.Node `json:"nodes" yaml:"nodes"`
	Edges    []core.Edge `json:"edges" yaml:"edges"`
	Error    string      `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [script]",
		Short: "Run a key script without a terminal and print the result",
		Long: `Replay a key script against a fresh one-node map and print the resulting graph.

The script is read from the file argument, or from stdin when the argument is
missing or "-". Files ending in .json or .yaml are structured scripts; anything
else uses the line format:

  key Tab
  key Space
  text Hello
  key Escape

Exit codes:
  0 - Every step ran
  1 - A step was rejected; the graph so far is still printed
  2 - Command error (bad script, config, flags)

Examples:
  mindgraph replay demo.json
  printf 'key Tab\nkey Enter\n' | mindgraph replay
  mindgraph replay demo.keys --format json
  mindgraph replay --example > demo.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.IDs, "ids", "sequence", "node id scheme (sequence|uuid)")
	cmd.Flags().StringVar(&opts.ScriptFormat, "script-format", "", "script syntax (json|yaml|lines), detected from the extension by default")
	cmd.Flags().BoolVar(&opts.Realtime, "realtime", false, "honour the delays in the script")
	cmd.Flags().BoolVar(&opts.Picture, "picture", true, "draw the graph in text output")
	cmd.Flags().BoolVar(&opts.Example, "example", false, "print an example script and exit")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command, args []string) error {
	if opts.Example {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), demo.Example())
		return err
	}

	script, err := readScript(opts, cmd, args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	logger, err := newLogger(opts.RootOptions, cfg, cmd.ErrOrStderr())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid log settings", err)
	}
	keys, err := keyMap(cfg)
	if err != nil {
		return err
	}

	var f *factory.Factory
	switch opts.IDs {
	case "sequence":
		f = factory.New(factory.Sequence("n"))
	case "uuid":
		f = factory.New(nil)
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid id scheme %q: must be sequence or uuid", opts.IDs))
	}

	ed, err := newEditor(cfg, f, viewport.Noop{}, logger)
	if err != nil {
		return err
	}

	logger.Info("replaying script", "script", script.Name, "steps", len(script.Commands))
	player := demo.NewPlayer(ed.controls, ed.store, keys, demo.WithLogger(logger), demo.WithRealtime(opts.Realtime))
	report, playErr := player.Play(cmd.Context(), script)

	g := ed.store.Snapshot()
	result := ReplayResult{
		Script:   script.Name,
		Steps:    report.Steps,
		Total:    len(script.Commands),
		Commands: report.Commands,
		Nodes:    g.Nodes,
		Edges:    g.Edges,
	}
	if focus, ok := g.Selected(); ok {
		result.Focus = focus.ID
	}
	if playErr != nil {
		result.Error = playErr.Error()
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	err = out.Success(result, func(w io.Writer) error {
		return printReplay(w, result, g, opts.Picture, cfg.NodeSize())
	})
	if err != nil {
		return err
	}
	if playErr != nil {
		return WrapExitError(ExitFailure, "replay stopped", playErr)
	}
	return nil
}

func readScript(opts *ReplayOptions, cmd *cobra.Command, args []string) (*demo.Script, error) {
	name := "-"
	if len(args) == 1 {
		name = args[0]
	}

	format := demo.Format(opts.ScriptFormat)
	switch format {
	case "", demo.FormatJSON, demo.FormatYAML, demo.FormatLines:
	default:
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid script format %q", opts.ScriptFormat))
	}

	if name != "-" && format == "" {
		script, err := demo.LoadScript(name)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load script", err)
		}
		return script, nil
	}

	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
		if format == "" {
			format = demo.FormatLines
		}
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read script", err)
	}
	script, err := demo.Parse(data, format)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to parse script", err)
	}
	if script.Name == "" {
		script.Name = name
	}
	return script, nil
}

// printReplay writes the text report. Unmeasured nodes are drawn at nodeSize.
func printReplay(w io.Writer, result ReplayResult, g core.Graph, picture bool, nodeSize core.Size) error {
	fmt.Fprintf(w, "%s  %s  %d/%d steps\n", mark(result.Error == ""), styleAccent.Sprint(result.Script), result.Steps, result.Total)
	if result.Error != "" {
		styleBad.Fprintln(w, "  "+result.Error)
	}
	fmt.Fprintln(w)

	if picture && len(g.Nodes) > 0 {
		pic, err := canvas.Picture(g, canvas.WithNodeSize(nodeSize))
		if err != nil {
			return err
		}
		fmt.Fprintln(w, pic)
		fmt.Fprintln(w)
	}

	rows := make([][]string, len(g.Nodes))
	for i, n := range g.Nodes {
		focus := ""
		if n.Selected {
			focus = "*"
		}
		rows[i] = []string{focus, n.ID, n.Label(), fmt.Sprintf("(%g, %g)", n.Position.X, n.Position.Y)}
	}
	table(w, []string{"", "NODE", "LABEL", "POSITION"}, rows)

	if len(g.Edges) > 0 {
		fmt.Fprintln(w)
		rows = make([][]string, len(g.Edges))
		for i, e := range g.Edges {
			src, _ := e.SourceSide()
			tgt, _ := e.TargetSide()
			rows[i] = []string{e.ID, e.Source + " → " + e.Target, src.String() + " → " + tgt.String()}
		}
		table(w, []string{"EDGE", "LINK", "HANDLES"}, rows)
	}
	return nil
}
