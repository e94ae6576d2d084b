package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/history"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Name string // show the latest SQL recorded for this statement
}

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	Entries []history.Entry `json:"entries"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <db>",
		Short: "List recorded compilations",
		Long: `List the compilations recorded by "compile --history" in sequence order.

With --name, prints the SQL of the latest compilation of that statement.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "show the latest SQL for a statement name")

	return cmd
}

func runHistory(opts *HistoryOptions, path string, cmd *cobra.Command) error {
	log := opts.logger(cmd)
	formatter := &OutputFormatter{
		Format: opts.Format,
		Writer: cmd.OutOrStdout(),
	}

	fail := func(err error) error {
		_ = formatter.Error(CLIError{Code: ErrCodeHistoryFailed, Message: err.Error()})
		return WrapExitError(ExitCommandError, "reading history", err)
	}

	store, err := history.Open(path)
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	ctx := cmd.Context()

	if opts.Name != "" {
		entry, found, err := store.Latest(ctx, opts.Name)
		if err != nil {
			return fail(err)
		}
		if !found {
			_ = formatter.Error(CLIError{
				Code:    ErrCodeNotFound,
				Message: fmt.Sprintf("no compilation recorded for %q", opts.Name),
				Name:    opts.Name,
			})
			return NewExitError(ExitFailure, fmt.Sprintf("no compilation recorded for %q", opts.Name))
		}
		if formatter.JSON() {
			return formatter.Success(HistoryResult{Entries: []history.Entry{entry}})
		}
		fmt.Fprintln(formatter.Writer, entry.SQL)
		return nil
	}

	entries, err := store.Entries(ctx)
	if err != nil {
		return fail(err)
	}
	log.Debugf("read %d history entries from %s", len(entries), path)

	if formatter.JSON() {
		return formatter.Success(HistoryResult{Entries: entries})
	}

	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "No compilations recorded")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tKIND\tNAME\tSPEC HASH\tID")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.Seq, e.Kind, e.Name, e.SpecHash, e.ID)
	}
	return tw.Flush()
}
