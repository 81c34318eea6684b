package cli

import (
	"fmt"
	"io"
	"mindgraph/config"

	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	var path bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults and the config file are merged.
Text output is TOML, suitable as a starting config file.

Examples:
  mindgraph config > ~/.config/mindgraph/config.toml
  mindgraph config --format yaml
  mindgraph config --path`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path {
				p := rootOpts.ConfigPath
				if p == "" {
					p = config.DefaultPath()
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), p)
				return err
			}

			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			switch rootOpts.Format {
			case "yaml":
				return cfg.Write(cmd.OutOrStdout(), config.FormatYAML)
			default:
				f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
				return f.Success(cfg, func(w io.Writer) error {
					return cfg.Write(w, config.FormatTOML)
				})
			}
		},
	}

	cmd.Flags().BoolVar(&path, "path", false, "print the config file path instead")
	return cmd
}
