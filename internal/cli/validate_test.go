package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidSpecs(t *testing.T) {
	out, _, err := runCommand(t, "validate", specsDir)
	require.NoError(t, err)
	assert.Equal(t, "✓ All 2 statement(s) valid\n", out)
}

func TestValidateValidSpecsJSON(t *testing.T) {
	out, _, err := runCommand(t, "--format", "json", "validate", specsDir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 2, resp.Data.Statements)
	assert.Empty(t, resp.Data.Errors)
}

func TestValidateInvalidSpecs(t *testing.T) {
	out, _, err := runCommand(t, "validate", invalidDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "bad_column.cue")
	assert.Contains(t, out, "E103 broken_search")
	assert.Contains(t, out, "fuzzy")
}

func TestValidateInvalidSpecsJSON(t *testing.T) {
	out, _, err := runCommand(t, "--format", "json", "validate", invalidDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, "E103", resp.Data.Errors[0].Code)
	assert.Equal(t, "broken_search", resp.Data.Errors[0].Name)
}

func TestValidateReportsUnresolvedReferences(t *testing.T) {
	out, _, err := runCommand(t, "validate", unresolvedDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeCompileFailed+" orphan_search")
}

func TestValidateNonexistentPath(t *testing.T) {
	_, _, err := runCommand(t, "validate", "/nonexistent/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
