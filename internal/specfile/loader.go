// Package specfile loads viewspec statements from CUE and YAML spec files.
package specfile

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewspec"
)

// Extensions recognised as spec files.
const (
	ExtCUE  = ".cue"
	ExtYAML = ".yaml"
	ExtYML  = ".yml"
)

// Entry is a statement with the file it was loaded from.
type Entry struct {
	File      string
	Statement viewspec.Statement
}

// Load loads path, which may be a spec file or a directory of spec files.
func Load(path string) ([]Entry, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing path: %v", err)}
	}
	if info.IsDir() {
		return LoadDir(path)
	}

	stmts, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return entries(path, stmts), nil
}

// LoadFile loads one spec file, selecting the decoder by extension.
func LoadFile(path string) ([]viewspec.Statement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, File: path, Message: err.Error()}
	}

	switch filepath.Ext(path) {
	case ExtCUE:
		return LoadCUEBytes(path, data)
	case ExtYAML, ExtYML:
		return LoadYAML(path, bytes.NewReader(data))
	default:
		return nil, &LoadError{Code: ErrCodeGeneric, File: path, Message: "unsupported spec file extension"}
	}
}

// LoadDir loads every spec file under dir. Files are visited in lexical
// path order so the statement order is stable across runs.
func LoadDir(dir string) ([]Entry, error) {
	files, err := FindSpecFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no spec files found in %s", dir)}
	}

	var all []Entry
	for _, file := range files {
		stmts, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		all = append(all, entries(file, stmts)...)
	}
	return all, nil
}

// FindSpecFiles walks dir and returns the sorted paths of all spec files.
func FindSpecFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ExtCUE, ExtYAML, ExtYML:
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

func entries(file string, stmts []viewspec.Statement) []Entry {
	out := make([]Entry, len(stmts))
	for i, stmt := range stmts {
		out[i] = Entry{File: file, Statement: stmt}
	}
	return out
}
