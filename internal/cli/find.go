package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/compiler"
	"github.com/roach88/sift/internal/walker"
)

// FindOptions holds flags for the find command.
type FindOptions struct {
	*RootOptions
	TraversalOptions
	MaxResults int
}

// FindReport is the JSON payload for a completed find run.
type FindReport struct {
	Query     string         `json:"query"`
	Roots     []string       `json:"roots"`
	Matches   []walker.Match `json:"matches"`
	Matched   int            `json:"matched"`
	Evaluated int            `json:"evaluated"`
	Skipped   int            `json:"skipped"`
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "find <query> [path...]",
		Short: "Walk roots and print entities matching the query",
		Long: `Walk one or more roots and print every entity the query matches.

Text mode streams paths as workers finish; JSON mode emits one report
with the matches and run counters. Exit code 1 means the query ran and
nothing matched.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(opts, args[0], args[1:], cmd)
		},
	}

	addTraversalFlags(cmd, &opts.TraversalOptions)
	cmd.Flags().IntVar(&opts.MaxResults, "max-results", 0, "stop enumerating after this many matches")

	return cmd
}

func runFind(opts *FindOptions, queryText string, roots []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if len(roots) == 0 {
		roots = []string{"."}
	}

	wopts := opts.merge(opts.Config, cmd.Flags())
	wopts.MaxResults = opts.MaxResults

	// The walker's decode ceiling and the compiled preconditions must
	// agree, so compile with the merged value.
	tree, err := compiler.CompileWithConfig(queryText, compiler.Config{
		MaxDocumentBytes: wopts.MaxDocumentBytes,
	})
	if err != nil {
		return renderQueryError(formatter, queryText, err)
	}
	formatter.VerboseLog("query: %s", tree.String())

	var matches []walker.Match
	emit := func(m walker.Match) {
		if formatter.Format == "json" {
			matches = append(matches, m)
			return
		}
		fmt.Fprintln(formatter.Writer, m.Path)
	}

	res, err := walker.New(tree, wopts).Walk(cmd.Context(), roots, emit)
	if err != nil {
		return WrapExitError(ExitCommandError, "walk aborted", err)
	}

	if formatter.Format == "json" {
		if matches == nil {
			matches = []walker.Match{}
		}
		if err := formatter.Success(FindReport{
			Query:     tree.String(),
			Roots:     roots,
			Matches:   matches,
			Matched:   res.Matched,
			Evaluated: res.Evaluated,
			Skipped:   res.Skipped,
		}); err != nil {
			return err
		}
	}

	if res.Matched == 0 {
		fmt.Fprintln(formatter.GetErrWriter(), "no matches")
		return NewExitError(ExitFailure, "no matches")
	}
	return nil
}
