package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/compiler"
	"github.com/roach88/sift/internal/walker"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	TraversalOptions
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <query> [path...]",
		Short: "Re-evaluate entities as they change",
		Long: `Watch the roots and evaluate every created or modified entity
against the query, printing matches as events arrive. Directories
created during the watch are picked up. Runs until interrupted.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, args[0], args[1:], cmd)
		},
	}

	addTraversalFlags(cmd, &opts.TraversalOptions)

	return cmd
}

func runWatch(opts *WatchOptions, queryText string, roots []string, cmd *cobra.Command) error {
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

	tree, err := compiler.CompileWithConfig(queryText, compiler.Config{
		MaxDocumentBytes: wopts.MaxDocumentBytes,
	})
	if err != nil {
		return renderQueryError(formatter, queryText, err)
	}

	watcher, err := walker.NewWatcher(tree, wopts, roots)
	if err != nil {
		return WrapExitError(ExitCommandError, "watch setup failed", err)
	}
	defer watcher.Close()

	ctx := cmd.Context()
	if err := watcher.Start(ctx); err != nil {
		return WrapExitError(ExitCommandError, "watch setup failed", err)
	}
	formatter.VerboseLog("watching %v for %s", roots, tree.String())

	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			if formatter.Format == "json" {
				_ = formatter.Success(m)
			} else {
				fmt.Fprintln(formatter.Writer, m.Path)
			}
		}
	}
}
