package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-libdesugar"
	"github.com/albertocavalcante/go-libdesugar/descriptor"
	"github.com/albertocavalcante/go-libdesugar/diag"
)

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <spec>",
		Short: "Check a specification for consistency",
		Long: `Validate loads a specification, merges the flag groups that apply at the
configured API level and mode, and checks the result for consistency.

Warnings are printed but do not fail the command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printDiagnostics(out, session.Diagnostics())
			s := session.Specification()
			fmt.Fprintf(out, "%s: ok (%d rewrite, %d maintain, %d retarget, %d backport, %d emulated)\n",
				args[0],
				len(s.RewriteRules()),
				len(s.MaintainedPrefixes()),
				len(s.RetargetRules()),
				len(s.BackportRules()),
				len(s.EmulatedInterfaces()))
			return nil
		},
	}
}

func printDiagnostics(w io.Writer, ds []diag.Diagnostic) {
	for _, d := range ds {
		fmt.Fprintln(w, d)
	}
}

func newRenameCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <spec> <type>...",
		Short: "Show how type names are renamed",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, arg := range args[1:] {
				t, err := descriptor.NewTypeName(arg)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %s\n", t, session.Rename(t))
			}
			return nil
		},
	}
}

func newExportCommand(a *app) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export <spec>",
		Short: "Write the flattened specification as canonical JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.load(args[0])
			if err != nil {
				return err
			}
			data, err := session.Export()
			if err != nil {
				return err
			}
			return writeOutput(cmd, outPath, data)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newDiffCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "diff <old-spec> <new-spec>",
		Short: "Compare the rules of two specifications",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldSession, err := a.load(args[0])
			if err != nil {
				return err
			}
			newSession, err := a.load(args[1])
			if err != nil {
				return err
			}
			diff := libdesugar.DiffSpecifications(oldSession.Specification(), newSession.Specification())

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(diff)
			}
			if diff.IsEmpty() {
				fmt.Fprintln(out, "no differences")
				return nil
			}
			fmt.Fprint(out, diff)
			fmt.Fprintf(out, "%d change(s)\n", diff.TotalChanges())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the diff as JSON")
	return cmd
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
