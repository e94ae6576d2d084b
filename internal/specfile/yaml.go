package specfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/viewspec"
)

// yamlChangelog is the top level of a YAML spec file:
//
//	changes:
//	  - createSearchCondition:
//	      name: person_search
//	      indexing: true
//	      table:
//	        - name: person
//	          alias: p
//	          column:
//	            - name: last_name
//	              searchType: startsWith
//	  - dropSearchCondition:
//	      name: old_search
type yamlChangelog struct {
	Changes []yaml.Node `yaml:"changes"`
}

// yamlView accepts indexing and limit as any scalar.
type yamlView struct {
	Name     string                   `yaml:"name"`
	CTEs     []viewspec.CTESpec       `yaml:"cte"`
	Tables   []viewspec.TableSpec     `yaml:"table"`
	Joins    []viewspec.JoinSpec      `yaml:"join"`
	Where    []viewspec.ConditionSpec `yaml:"where"`
	Indexing any                      `yaml:"indexing"`
	Limit    any                      `yaml:"limit"`
}

type yamlSimpleSearchCondition struct {
	Name         string              `yaml:"name"`
	Table        viewspec.TableSpec  `yaml:"table"`
	SearchColumn viewspec.ColumnSpec `yaml:"searchColumn"`
	Indexing     any                 `yaml:"indexing"`
	Limit        any                 `yaml:"limit"`
}

type yamlDropSearchCondition struct {
	Name string `yaml:"name"`
}

type yamlManyToMany struct {
	MainTableName      string `yaml:"mainTableName"`
	MainTableKeyField  string `yaml:"mainTableKeyField"`
	ReferenceTableName string `yaml:"referenceTableName"`
	ReferenceKeysArray string `yaml:"referenceKeysArray"`
}

// LoadYAML decodes statements from a YAML changelog. filename is used for
// error positions. Statements are returned in document order.
func LoadYAML(filename string, r io.Reader) ([]viewspec.Statement, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, File: filename, Message: err.Error()}
	}

	// Reject unknown top-level fields (catches typos like "change:").
	// Statement bodies are decoded strictly by decodeStrict.
	var changelog yamlChangelog
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&changelog); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Code: ErrCodeParseFailed, File: filename, Message: fmt.Sprintf("failed to parse YAML: %v", err)}
	}

	var stmts []viewspec.Statement
	for i, change := range changelog.Changes {
		field := fmt.Sprintf("changes[%d]", i)
		if change.Kind != yaml.MappingNode || len(change.Content) != 2 {
			return nil, yamlError(filename, ErrCodeWrongType, field, "each change must be a map with exactly one statement kind", &change)
		}

		kind, body := change.Content[0].Value, change.Content[1]
		stmt, err := decodeYAMLChange(kind, body)
		if err != nil {
			var loadErr *LoadError
			if errors.As(err, &loadErr) {
				loadErr.File = filename
				return nil, loadErr
			}
			return nil, yamlError(filename, ErrCodeWrongType, field+"."+kind, err.Error(), body)
		}
		stmts = append(stmts, normalizeStatement(stmt))
	}
	return stmts, nil
}

func decodeYAMLChange(kind string, body *yaml.Node) (viewspec.Statement, error) {
	switch kind {
	case viewspec.KindCreateSearchCondition:
		var v yamlView
		if err := decodeStrict(body, &v); err != nil {
			return nil, err
		}
		indexing, err := cast.ToBoolE(v.Indexing)
		if err != nil {
			return nil, fmt.Errorf("indexing: %w", err)
		}
		limit, err := cast.ToStringE(v.Limit)
		if err != nil {
			return nil, fmt.Errorf("limit: %w", err)
		}
		return viewspec.CreateSearchCondition{View: viewspec.ViewSpec{
			Name:     v.Name,
			CTEs:     v.CTEs,
			Tables:   v.Tables,
			Joins:    v.Joins,
			Where:    v.Where,
			Indexing: indexing,
			Limit:    limit,
		}}, nil

	case viewspec.KindCreateSimpleSearchCondition:
		var s yamlSimpleSearchCondition
		if err := decodeStrict(body, &s); err != nil {
			return nil, err
		}
		indexing, err := cast.ToBoolE(s.Indexing)
		if err != nil {
			return nil, fmt.Errorf("indexing: %w", err)
		}
		limit, err := cast.ToStringE(s.Limit)
		if err != nil {
			return nil, fmt.Errorf("limit: %w", err)
		}
		return viewspec.CreateSimpleSearchCondition{
			Name:         s.Name,
			Table:        s.Table,
			SearchColumn: s.SearchColumn,
			Indexing:     indexing,
			Limit:        limit,
		}, nil

	case viewspec.KindDropSearchCondition:
		var d yamlDropSearchCondition
		if err := decodeStrict(body, &d); err != nil {
			return nil, err
		}
		return viewspec.DropSearchCondition{Name: d.Name}, nil

	case viewspec.KindCreateManyToMany:
		var m yamlManyToMany
		if err := decodeStrict(body, &m); err != nil {
			return nil, err
		}
		return viewspec.CreateManyToMany{
			MainTableName:      m.MainTableName,
			MainTableKeyField:  m.MainTableKeyField,
			ReferenceTableName: m.ReferenceTableName,
			ReferenceKeysArray: m.ReferenceKeysArray,
		}, nil

	default:
		return nil, &LoadError{
			Code:    ErrCodeUnknownKey,
			Field:   kind,
			Message: fmt.Sprintf("unknown statement kind %q", kind),
			Line:    body.Line,
			Column:  body.Column,
		}
	}
}

// decodeStrict decodes a statement body rejecting unknown fields at any
// depth. yaml.Node.Decode does not honour KnownFields, so the node is
// re-encoded and decoded again through a strict decoder.
func decodeStrict(body *yaml.Node, v any) error {
	data, err := yaml.Marshal(body)
	if err != nil {
		return err
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	err = decoder.Decode(v)

	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		for _, msg := range typeErr.Errors {
			// Line numbers refer to the re-encoded body; report the body position.
			if _, rest, ok := strings.Cut(msg, ": "); ok && strings.HasPrefix(msg, "line ") {
				msg = rest
			}
			if strings.Contains(msg, "not found in type") {
				return &LoadError{Code: ErrCodeUnknownKey, Message: msg, Line: body.Line, Column: body.Column}
			}
		}
	}
	return err
}

func yamlError(filename, code, field, msg string, n *yaml.Node) *LoadError {
	return &LoadError{
		Code:    code,
		Field:   field,
		Message: msg,
		File:    filename,
		Line:    n.Line,
		Column:  n.Column,
	}
}
