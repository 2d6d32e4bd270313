package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hilrig/hilrig/internal/config"
	"github.com/hilrig/hilrig/internal/rig"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Config string
}

// NewListCommand creates the list command. It never touches hardware:
// groups are compiled in and the configuration, when given, is only
// summarized.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered test groups without running them",
		Args:  cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listGroups(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "also summarize this configuration")

	return cmd
}

func listGroups(cmd *cobra.Command, opts *ListOptions) error {
	out := cmd.OutOrStdout()

	groups := rig.Registered()
	fmt.Fprintf(out, "Registered test groups (%d):\n", len(groups))
	for _, g := range groups {
		fmt.Fprintf(out, "  %s (%d tests)\n", g.Name(), len(g.Tests()))
		for _, t := range g.Tests() {
			fmt.Fprintf(out, "    - %s\n", t.Name())
		}
	}

	if opts.Config != "" {
		cfg, err := config.Load(opts.Config)
		if err != nil {
			return WrapExitError(ExitCommandError, "loading configuration", err)
		}
		fmt.Fprintf(out, "\nConfiguration %s: %d protocols, %d peripherals\n",
			opts.Config, len(cfg.Protocols), len(cfg.Peripherals))
	}
	return nil
}
