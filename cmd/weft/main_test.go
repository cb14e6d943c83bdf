package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	var out bytes.Buffer

	err := run(&out, nil)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "weft [options] [PIPELINE_PATH]")
}

func TestRun_MalformedPipelineReturnsError(t *testing.T) {
	path := writeFixture(t, "main.hcl", `
component "print" "A" {
  arguments {
// Missing closing braces
`)
	var out bytes.Buffer

	err := run(&out, []string{"-p", path, "-modules-path", ""})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestRun_ValidateOnly(t *testing.T) {
	path := writeFixture(t, "main.hcl", `
component_def "print" {
  lifecycle {
    on_run = "OnRunPrint"
  }
  input "input" {
    type    = map(string)
    default = {}
  }
}

component "print" "hello" {
  arguments {
    input = { msg = "hi" }
  }
}
`)
	var out bytes.Buffer

	err := run(&out, []string{"-p", path, "-modules-path", "", "-validate-only", "-log-format", "text"})

	require.NoError(t, err)
	assert.True(t, strings.Contains(out.String(), "Pipeline is valid"), "expected validation message, got: %s", out.String())
}

func TestRun_UnknownComponentTypeFailsValidation(t *testing.T) {
	path := writeFixture(t, "main.hcl", `
component "does_not_exist" "x" {
  arguments {
    whatever = 1
  }
}
`)
	var out bytes.Buffer

	err := run(&out, []string{"-p", path, "-modules-path", "", "-validate-only"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline validation failed")
}
