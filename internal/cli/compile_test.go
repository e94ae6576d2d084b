package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	specsDir      = filepath.Join("..", "..", "testdata", "specs")
	invalidDir    = filepath.Join("..", "..", "testdata", "invalid")
	unresolvedDir = filepath.Join("..", "..", "testdata", "unresolved")
)

const (
	personView  = "CREATE OR REPLACE VIEW person_search_v AS SELECT p.id, p.last_name, a.city FROM person AS p LEFT JOIN address AS a ON (p.id = a.person_id) ORDER BY p.last_name ASC LIMIT 10;"
	personIndex = "CREATE INDEX IF NOT EXISTS ix_person__last_name ON person (last_name text_pattern_ops);"
	cityIndex   = "CREATE INDEX IF NOT EXISTS ix_address__city ON address (city);"
	dropLegacy  = "DROP VIEW IF EXISTS legacy_person_search_v;"
)

// runCommand executes a subcommand through the root so global flags apply.
func runCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCompileValidSpecs(t *testing.T) {
	out, _, err := runCommand(t, "compile", specsDir)
	require.NoError(t, err)

	want := personView + "\n\n" + personIndex + "\n\n" + cityIndex + "\n\n" + dropLegacy + "\n"
	assert.Equal(t, want, out)
}

func TestCompileValidSpecsJSON(t *testing.T) {
	out, _, err := runCommand(t, "--format", "json", "compile", specsDir)
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   CompileResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Statements, 2)

	first := resp.Data.Statements[0]
	assert.Equal(t, "createSearchCondition", first.Kind)
	assert.Equal(t, "person_search", first.Name)
	assert.Equal(t, []string{personView, personIndex, cityIndex}, first.SQL)
	assert.Nil(t, first.Recorded)

	second := resp.Data.Statements[1]
	assert.Equal(t, "dropSearchCondition", second.Kind)
	assert.Equal(t, []string{dropLegacy}, second.SQL)
}

func TestCompileSingleFile(t *testing.T) {
	out, _, err := runCommand(t, "compile", filepath.Join(specsDir, "retire.yaml"))
	require.NoError(t, err)
	assert.Equal(t, dropLegacy+"\n", out)
}

func TestCompileOutputToFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "views.sql")

	out, _, err := runCommand(t, "compile", specsDir, "--output", outputFile)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Compiled 2 statement(s) to "+outputFile)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), personView)
	assert.Contains(t, string(data), dropLegacy)
}

func TestCompileWithHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	_, stderr, err := runCommand(t, "compile", specsDir, "--history", db)
	require.NoError(t, err)
	assert.Contains(t, stderr, "msg=recorded")
	assert.Contains(t, stderr, "name=person_search")

	// Compiling unchanged specs again records nothing new.
	out, stderr, err := runCommand(t, "--format", "json", "compile", specsDir, "--history", db)
	require.NoError(t, err)
	assert.Contains(t, stderr, "msg=unchanged")
	assert.NotContains(t, stderr, "msg=recorded")

	var resp struct {
		Data CompileResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	for _, s := range resp.Data.Statements {
		require.NotNil(t, s.Recorded, s.Name)
		assert.False(t, *s.Recorded, s.Name)
	}
}

func TestCompileValidationErrors(t *testing.T) {
	out, _, err := runCommand(t, "compile", invalidDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "✗ Compilation failed")
	assert.Contains(t, out, "E103")
	assert.Contains(t, out, "broken_search")
}

func TestCompileUnresolvedReference(t *testing.T) {
	out, _, err := runCommand(t, "--format", "json", "compile", unresolvedDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeCompileFailed, resp.Error.Code)
	assert.Equal(t, "orphan_search", resp.Error.Name)
	assert.Contains(t, resp.Error.Message, "x")
}

func TestCompileNonexistentPath(t *testing.T) {
	out, _, err := runCommand(t, "compile", "/nonexistent/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E005")
}

func TestCompileEmptyDirectory(t *testing.T) {
	out, _, err := runCommand(t, "--format", "json", "compile", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E003", resp.Error.Code)
}

func TestCompileWithoutRoot(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(specsDir, "retire.yaml")})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, dropLegacy+"\n", buf.String())
}
