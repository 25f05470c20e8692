package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zwade/scenic/pkg/reconciler"
	"github.com/zwade/scenic/pkg/scenefile"
	"github.com/zwade/scenic/pkg/scenetest"
)

// NewOpsCommand creates the ops command.
func NewOpsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ops <old.yaml> <new.yaml>",
		Short: "Show the host operations a re-render would perform",
		Long: `Ops mounts the old scene document, then re-renders it as the new one
and prints the operations the host received for the transition. This is
the minimal diff the engine computes: untouched nodes produce no
operations at all.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOps(cmd, rootOpts, args[0], args[1])
		},
	}
	return cmd
}

func runOps(cmd *cobra.Command, opts *RootOptions, oldPath, newPath string) error {
	oldTree, err := scenefile.Load(oldPath)
	if err != nil {
		return fmt.Errorf("parse %s: %w", oldPath, err)
	}
	newTree, err := scenefile.Load(newPath)
	if err != nil {
		return fmt.Errorf("parse %s: %w", newPath, err)
	}

	rec := scenetest.NewRecorder(opts.Kinds...)
	root, err := reconciler.Mount(rec.Table(), "container", rec.NewContainer(), oldTree)
	if err != nil {
		return fmt.Errorf("mount %s: %w", oldPath, err)
	}
	defer root.Unmount()

	rec.Reset()
	if err := root.UpdateSync(newTree); err != nil {
		return fmt.Errorf("render %s: %w", newPath, err)
	}

	out := cmd.OutOrStdout()
	ops := rec.OpStrings()
	if len(ops) == 0 {
		fmt.Fprintln(out, "no operations (scenes are equivalent)")
		return nil
	}
	for _, op := range ops {
		opColor(op).Fprintln(out, op)
	}
	return nil
}

// opColor picks a color per operation verb: additions green, prop
// changes yellow, removals red.
func opColor(op string) *color.Color {
	switch {
	case strings.HasPrefix(op, "create"), strings.HasPrefix(op, "attachChild"):
		return color.New(color.FgGreen)
	case strings.HasPrefix(op, "applyProps"):
		return color.New(color.FgYellow)
	case strings.HasPrefix(op, "detachChild"), strings.HasPrefix(op, "dispose"):
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}
