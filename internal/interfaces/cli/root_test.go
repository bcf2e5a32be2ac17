package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

func runCommand(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errBuf bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errBuf)
	if stdin != "" {
		cmd.SetIn(strings.NewReader(stdin))
	}
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errBuf.String(), err
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "analyze")
	assert.Contains(t, names, "serve")
}

func TestRootCommandVersion(t *testing.T) {
	stdout, _, err := runCommand(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, Version)
}

func TestAnalyzeCommandCleanText(t *testing.T) {
	stdout, _, err := runCommand(t, "", "analyze", "Yo tengo un libro.")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Puntuación: 100.0")
	assert.Contains(t, stdout, "Sin errores detectados")
}

func TestAnalyzeCommandReportsIssues(t *testing.T) {
	stdout, _, err := runCommand(t, "", "analyze", "Yo tiene un libro.")
	require.NoError(t, err)

	assert.Contains(t, stdout, "GRAM-001")
	assert.Contains(t, stdout, "tengo")
}

func TestAnalyzeCommandJSONOutput(t *testing.T) {
	stdout, _, err := runCommand(t, "", "analyze", "--json", "Yo tengo un libro.")
	require.NoError(t, err)

	var result analysis.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, "Yo tengo un libro.", result.Text)
	assert.Equal(t, 100.0, result.Score)
	assert.NotEmpty(t, result.SubmissionID)
}

func TestAnalyzeCommandReadsStdin(t *testing.T) {
	stdout, _, err := runCommand(t, "Yo tengo un libro.\n", "analyze", "--json")
	require.NoError(t, err)

	var result analysis.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, 100.0, result.Score)
}

func TestAnalyzeCommandRejectsEmptyInput(t *testing.T) {
	_, _, err := runCommand(t, "   \n", "analyze")
	require.Error(t, err)
}

func TestAnalyzerOf(t *testing.T) {
	assert.Equal(t, "rules", analyzerOf("rules:abc123"))
	assert.Equal(t, "morphology", analyzerOf("morphology:deadbeef"))
	assert.Equal(t, "unknown", analyzerOf("noseparator"))
	assert.Equal(t, "unknown", analyzerOf(":leading"))
}
