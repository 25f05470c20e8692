// Package cmd implements the scenic CLI commands.
//
// The command structure follows standard Go CLI patterns with a root
// command that dispatches to subcommands (validate, ops).
package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0-dev"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	NoColor bool
	Kinds   []string
}

// defaultKinds are the node kinds of the built-in stage engine.
var defaultKinds = []string{"container", "sprite", "text"}

// NewRootCommand creates the root command for the scenic CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "scenic",
		Short:   "Scenic - declarative scene graphs for Go",
		Version: Version,
		Long: `Scenic reconciles declarative scene descriptions into retained
scene graphs. The CLI works on YAML scene documents: it validates them
against a set of node kinds and shows the host operations a re-render
would perform.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.NoColor || !isatty.IsTerminal(os.Stdout.Fd()) {
				color.NoColor = true
			}
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().StringSliceVar(&opts.Kinds, "kinds", defaultKinds, "node kinds accepted by the dry-run host")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewOpsCommand(opts))

	return cmd
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "scenic: %v\n", err)
		os.Exit(1)
	}
}
