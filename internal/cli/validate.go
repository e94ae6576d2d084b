package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewspec"
	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewsql"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool       `json:"valid"`
	Statements int        `json:"statements"`
	Errors     []CLIError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate specs without printing SQL",
		Long: `Validate CUE or YAML search condition specs without printing SQL.

Reports every structural problem (missing names, unknown operators, bad
limits) and, for structurally valid statements, unresolvable aliases and
CTE columns. Exits with status 1 when any statement is invalid.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
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
	result := ValidationResult{Valid: true, Statements: len(entries)}
	for _, entry := range entries {
		if verrs := viewspec.Validate(entry.Statement); len(verrs) > 0 {
			result.Errors = append(result.Errors, validationCLIErrors(entry, verrs)...)
			continue
		}
		// Reference checks only run once the statement is well formed.
		if _, err := compileEntry(compiler, entry); err != nil {
			result.Errors = append(result.Errors, compileCLIErrors(entry, err)...)
		}
	}
	result.Valid = len(result.Errors) == 0

	log.WithField("errors", len(result.Errors)).Debug("validation finished")

	if formatter.JSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Fprintf(formatter.Writer, "✓ All %d statement(s) valid\n", result.Statements)
	} else {
		_ = formatter.Errors("✗ Validation failed", result.Errors)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}
	return nil
}
