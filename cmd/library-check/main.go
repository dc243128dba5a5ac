// Command library-check validates a clause library override directory, or
// scaffolds one from the embedded library.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dpshade/contract-desk/internal/library"
)

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "library-check",
		Short:         "Validate or scaffold a contract-desk library directory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(validateCommand(out), scaffoldCommand(out))
	return root
}

func validateCommand(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [dir]",
		Short: "Load the embedded library with the overrides in dir and report problems",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			// LoadWithOverrides validates the merged result
			lib, err := library.LoadWithOverrides(dir)
			if err != nil {
				return err
			}
			if dir == "" {
				if err := lib.Validate(); err != nil {
					return err
				}
				dir = "embedded library"
			}
			fmt.Fprintf(out, "%s: ok\n", dir)
			fmt.Fprintf(out, "  %d contract types, %d templates, %d clauses\n", len(lib.ContractTypes), len(lib.Templates), len(lib.Clauses))
			fmt.Fprintf(out, "  %d drafts, %d positions, %d playbook steps\n", len(lib.Drafts), len(lib.Positions), len(lib.Playbook))
			return nil
		},
	}
}

func scaffoldCommand(out io.Writer) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "scaffold <dir>",
		Short: "Write the embedded library into dir for editing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := library.Scaffold(args[0], force)
			if err != nil {
				return err
			}
			for _, path := range written {
				fmt.Fprintln(out, "wrote", path)
			}
			if len(written) == 0 {
				fmt.Fprintln(out, "nothing to write; use --force to overwrite")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}
