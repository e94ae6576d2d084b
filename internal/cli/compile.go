package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/history"
	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/specfile"
	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewspec"
	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewsql"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output  string // output file path
	History string // history database path
}

// CompileResult is the JSON payload of a successful compile.
type CompileResult struct {
	Statements []CompiledStatement `json:"statements"`
}

// CompiledStatement is one compiled statement with its SQL.
type CompiledStatement struct {
	File     string   `json:"file"`
	Kind     string   `json:"kind"`
	Name     string   `json:"name"`
	SQL      []string `json:"sql"`
	Recorded *bool    `json:"recorded,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <path>",
		Short: "Compile search condition specs to PostgreSQL",
		Long: `Compile CUE or YAML search condition specs to PostgreSQL.

Each statement becomes a CREATE OR REPLACE VIEW statement, followed by its
CREATE INDEX statements when indexing is enabled. Statements are printed in
file and declaration order, separated by a blank line.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.History, "history", "", "record compilations in this SQLite database")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	log := opts.logger(cmd)
	formatter := &OutputFormatter{
		Format: opts.Format,
		Writer: cmd.OutOrStdout(),
	}

	entries, loadErr := loadSpecs(path, log)
	if loadErr != nil {
		_ = formatter.Error(*loadErr)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
	}

	compiler := viewsql.NewCompiler()
	result := CompileResult{Statements: make([]CompiledStatement, 0, len(entries))}
	var errs []CLIError
	for _, entry := range entries {
		sql, err := compileEntry(compiler, entry)
		if err != nil {
			errs = append(errs, compileCLIErrors(entry, err)...)
			continue
		}
		log.WithFields(logrus.Fields{
			"name":       entry.Statement.StatementName(),
			"statements": len(sql),
		}).Debug("compiled")
		result.Statements = append(result.Statements, CompiledStatement{
			File: entry.File,
			Kind: viewspec.Kind(entry.Statement),
			Name: entry.Statement.StatementName(),
			SQL:  sql,
		})
	}

	if len(errs) > 0 {
		_ = formatter.Errors("✗ Compilation failed", errs)
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	if opts.History != "" {
		if err := recordHistory(cmd.Context(), opts.History, entries, result.Statements, log); err != nil {
			_ = formatter.Error(CLIError{Code: ErrCodeHistoryFailed, Message: err.Error()})
			return WrapExitError(ExitCommandError, "recording history", err)
		}
	}

	script := compiledScript(result.Statements)

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(script+"\n"), 0644); err != nil {
			_ = formatter.Error(CLIError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("writing output file: %v", err)})
			return WrapExitError(ExitCommandError, "writing output file", err)
		}
		log.WithField("file", opts.Output).Debug("wrote script")
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "✓ Compiled %d statement(s) to %s\n", len(result.Statements), opts.Output)
		return nil
	}
	if script != "" {
		fmt.Fprintln(formatter.Writer, script)
	}
	return nil
}

// compiledScript joins every statement's SQL into one script.
func compiledScript(stmts []CompiledStatement) string {
	var all []string
	for _, s := range stmts {
		all = append(all, s.SQL...)
	}
	return viewsql.Join(all)
}

// recordHistory stores every compiled statement. Entries and compiled
// statements are parallel, as compile stops before this on any error.
func recordHistory(ctx context.Context, path string, entries []specfile.Entry, compiled []CompiledStatement, log *logrus.Logger) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	for i := range compiled {
		entry, inserted, err := store.Record(ctx, entries[i].Statement, strings.Join(compiled[i].SQL, viewsql.StatementSeparator))
		if err != nil {
			return fmt.Errorf("recording %s: %w", compiled[i].Name, err)
		}
		recorded := inserted
		compiled[i].Recorded = &recorded

		fields := logrus.Fields{"name": entry.Name, "seq": entry.Seq}
		if inserted {
			log.WithFields(fields).Info("recorded")
		} else {
			log.WithFields(fields).Info("unchanged")
		}
	}
	return nil
}
