package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zwade/scenic/pkg/errors"
	"github.com/zwade/scenic/pkg/reconciler"
	"github.com/zwade/scenic/pkg/scenefile"
	"github.com/zwade/scenic/pkg/scenetest"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	showOps := false

	cmd := &cobra.Command{
		Use:   "validate <scene.yaml>",
		Short: "Validate a scene document with a dry-run mount",
		Long: `Validate parses a YAML scene document and mounts it onto a recording
host. Unknown kinds and commit failures are reported per node path;
unknown properties are reported as diagnostics without failing the run.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, args[0], showOps)
		},
	}

	cmd.Flags().BoolVar(&showOps, "ops", false, "print the host operations the mount performed")
	return cmd
}

func runValidate(cmd *cobra.Command, opts *RootOptions, path string, showOps bool) error {
	tree, err := scenefile.Load(path)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	diags := &collectHandler{}
	prev := errors.SetHandler(diags)
	defer errors.SetHandler(prev)

	rec := scenetest.NewRecorder(opts.Kinds...)
	root, mountErr := reconciler.Mount(rec.Table(), "container", rec.NewContainer(), tree)
	if root != nil {
		defer root.Unmount()
	}

	out := cmd.OutOrStdout()
	if showOps {
		for _, op := range rec.OpStrings() {
			fmt.Fprintln(out, op)
		}
	}
	for _, d := range diags.reported {
		color.New(color.FgYellow).Fprintf(out, "warning: %v\n", d)
	}
	if mountErr != nil {
		color.New(color.FgRed).Fprintf(out, "invalid: %s\n", path)
		return mountErr
	}

	color.New(color.FgGreen).Fprintf(out, "valid: %s (%d nodes)\n", path, tree.Count())
	return nil
}

// collectHandler gathers non-fatal diagnostics during a dry run.
type collectHandler struct {
	reported []error
}

func (h *collectHandler) HandleDiagnostic(err error) {
	h.reported = append(h.reported, err)
}
