package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// KeyBinding is one row of the keys listing.
type KeyBinding struct {
	Chord   string `json:"chord" yaml:"chord"`
	Command string `json:"command" yaml:"command"`
}

// NewKeysCommand creates the keys command.
func NewKeysCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the active key bindings",
		Long: `List the key bindings after applying the [keys] overrides from the config file.

Examples:
  mindgraph keys
  mindgraph keys --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			keys, err := keyMap(cfg)
			if err != nil {
				return err
			}

			var out []KeyBinding
			for _, b := range keys.Bindings() {
				out = append(out, KeyBinding{Chord: b.Chord.String(), Command: b.Command.String()})
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Success(out, func(w io.Writer) error {
				rows := make([][]string, len(out))
				for i, b := range out {
					rows[i] = []string{b.Chord, b.Command}
				}
				table(w, []string{"KEY", "COMMAND"}, rows)
				return nil
			})
		},
	}
}
