package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/compiler"
	"github.com/roach88/sift/internal/expr"
	"github.com/roach88/sift/internal/predicate"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	MaxDocBytes int64
}

// PhaseCounts tallies predicates per evaluation phase, synthetic
// preconditions included.
type PhaseCounts struct {
	Name       int `json:"name"`
	Metadata   int `json:"metadata"`
	Structured int `json:"structured"`
	Content    int `json:"content"`
}

// ExplainReport is the JSON payload for an explained query.
type ExplainReport struct {
	Query     string      `json:"query"`
	Canonical string      `json:"canonical"`
	Phases    PhaseCounts `json:"phases"`
	Tree      string      `json:"tree"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <query>",
		Short: "Show the compiled plan for a query",
		Long: `Compile a query and print its evaluation plan: the canonical form,
the typed tree with each predicate's phase, and predicate counts per
phase. Structured predicates show the extension and size preconditions
compilation adds around them. Nothing touches the filesystem.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.MaxDocBytes, "max-document-bytes", 0, "structured decode ceiling in bytes")

	return cmd
}

func runExplain(opts *ExplainOptions, queryText string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	tree, err := compiler.CompileWithConfig(queryText, compiler.Config{
		MaxDocumentBytes: opts.MaxDocBytes,
	})
	if err != nil {
		return renderQueryError(formatter, queryText, err)
	}

	counts := countPhases(tree)

	if formatter.Format == "json" {
		rendered := &strings.Builder{}
		writePlanTree(rendered, tree, "")
		return formatter.Success(ExplainReport{
			Query:     queryText,
			Canonical: tree.String(),
			Phases:    counts,
			Tree:      rendered.String(),
		})
	}

	fmt.Fprintf(formatter.Writer, "canonical: %s\n\n", tree.String())
	fmt.Fprintln(formatter.Writer, "tree:")
	writePlanTree(formatter.Writer, tree, "  ")
	fmt.Fprintf(formatter.Writer, "\nphases: name=%d metadata=%d structured=%d content=%d\n",
		counts.Name, counts.Metadata, counts.Structured, counts.Content)
	return nil
}

func countPhases(tree expr.Expr) PhaseCounts {
	var counts PhaseCounts
	expr.Leaves(tree, func(p predicate.Predicate) {
		switch p.Phase() {
		case predicate.PhaseName:
			counts.Name++
		case predicate.PhaseMetadata:
			counts.Metadata++
		case predicate.PhaseStructured:
			counts.Structured++
		case predicate.PhaseContent:
			counts.Content++
		}
	})
	return counts
}

// writePlanTree renders the typed tree one node per line, leaves tagged
// with their evaluation phase.
func writePlanTree(w io.Writer, e expr.Expr, indent string) {
	switch n := e.(type) {
	case expr.And:
		fmt.Fprintf(w, "%sand\n", indent)
		for _, op := range n.Exprs {
			writePlanTree(w, op, indent+"  ")
		}
	case expr.Or:
		fmt.Fprintf(w, "%sor\n", indent)
		for _, op := range n.Exprs {
			writePlanTree(w, op, indent+"  ")
		}
	case expr.Not:
		fmt.Fprintf(w, "%snot\n", indent)
		writePlanTree(w, n.Inner, indent+"  ")
	case expr.Leaf:
		fmt.Fprintf(w, "%s%s [%s]\n", indent, n.Pred.String(), n.Pred.Phase())
	default:
		fmt.Fprintf(w, "%s%s\n", indent, e.String())
	}
}
