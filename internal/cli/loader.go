package cli

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/specfile"
	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewspec"
	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewsql"
)

// Error codes used by CLI commands in addition to the loader's E00x and
// the validator's E1xx codes.
const (
	ErrCodeGeneric       = specfile.ErrCodeGeneric
	ErrCodeNotFound      = specfile.ErrCodeNotFound
	ErrCodeWriteFailed   = "E007" // Output file write error
	ErrCodeHistoryFailed = "E008" // History store error
	ErrCodeCompileFailed = "E200" // Unresolvable reference during compile
)

// loadSpecs loads every statement under path.
func loadSpecs(path string, log *logrus.Logger) ([]specfile.Entry, *CLIError) {
	entries, err := specfile.Load(path)
	if err != nil {
		e := loadCLIError(err)
		return nil, &e
	}

	files := make(map[string]bool)
	for _, entry := range entries {
		files[entry.File] = true
		log.WithFields(logrus.Fields{
			"file": entry.File,
			"kind": viewspec.Kind(entry.Statement),
			"name": entry.Statement.StatementName(),
		}).Debug("loaded statement")
	}
	log.Debugf("loaded %d statement(s) from %d file(s) in %s", len(entries), len(files), path)

	return entries, nil
}

// loadCLIError converts a loader error, keeping its position.
func loadCLIError(err error) CLIError {
	var loadErr *specfile.LoadError
	if errors.As(err, &loadErr) {
		return CLIError{
			Code:    loadErr.Code,
			Message: loadErr.Message,
			Field:   loadErr.Field,
			File:    loadErr.File,
			Line:    loadErr.Line,
		}
	}
	return CLIError{Code: ErrCodeGeneric, Message: err.Error()}
}

// validationCLIErrors converts structural validation errors of one entry.
func validationCLIErrors(entry specfile.Entry, errs viewspec.ValidationErrors) []CLIError {
	out := make([]CLIError, len(errs))
	for i, e := range errs {
		out[i] = CLIError{
			Code:    e.Code,
			Message: e.Message,
			Field:   e.Field,
			File:    entry.File,
			Name:    entry.Statement.StatementName(),
		}
	}
	return out
}

// compileCLIErrors converts a compile error of one entry. Validation
// errors expand to one CLIError each.
func compileCLIErrors(entry specfile.Entry, err error) []CLIError {
	var verrs viewspec.ValidationErrors
	if errors.As(err, &verrs) {
		return validationCLIErrors(entry, verrs)
	}
	return []CLIError{{
		Code:    ErrCodeCompileFailed,
		Message: err.Error(),
		File:    entry.File,
		Name:    entry.Statement.StatementName(),
	}}
}

// compileEntry compiles one loaded statement.
func compileEntry(compiler *viewsql.Compiler, entry specfile.Entry) ([]string, error) {
	return compiler.Compile(entry.Statement)
}
