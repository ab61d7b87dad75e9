package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/compiler"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
}

// CheckReport is the JSON payload for an accepted query.
type CheckReport struct {
	Query     string `json:"query"`
	Canonical string `json:"canonical"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <query>",
		Short: "Compile a query without touching the filesystem",
		Long: `Parse and typecheck a query.

Prints the canonical form on success. A rejected query renders its
diagnostic with the offending offset and exits 2.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	return cmd
}

func runCheck(opts *CheckOptions, queryText string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	tree, err := compiler.Compile(queryText)
	if err != nil {
		return renderQueryError(formatter, queryText, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(CheckReport{Query: queryText, Canonical: tree.String()})
	}
	fmt.Fprintf(formatter.Writer, "✓ query ok\n  %s\n", tree.String())
	return nil
}
