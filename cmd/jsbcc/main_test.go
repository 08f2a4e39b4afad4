package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/deepnoodle-ai/risor/v2/pkg/bytecode"
	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/require"
)

const (
	validScript   = "let x = 1\nlet y = x + 41\n"
	invalidScript = "let x = 1\nlet = 2\n"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	homedir.DisableCache = true
	t.Setenv("HOME", dir)
	t.Setenv("USERPROFILE", dir)
	t.Setenv(envConfigFile, "")
	t.Setenv("JSBCC_EXTENSION", "")
	t.Setenv("JSBCC_LOG_LEVEL", "")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestNoArgumentsPrintsUsage(t *testing.T) {
	dir := isolate(t)

	res := runCLI(t, "")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "Usage: jsbcc input_file [byte_code_file]")
	require.Empty(t, res.stdout)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestCompileSingleFile(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "main.js", validScript)
	output := filepath.Join(dir, "main.jsc")

	res := runCLI(t, "", input)
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "Input file: "+input+"\n")
	require.Contains(t, res.stdout, "Done! Output file: "+output+"\n")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	code, err := bytecode.Unmarshal(data)
	require.NoError(t, err)
	require.True(t, code.InstructionCount() > 0)
}

func TestCompileFileWithoutExtension(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "script", validScript)

	res := runCLI(t, "", input)
	require.Equal(t, 0, res.code, res.stderr)
	require.FileExists(t, filepath.Join(dir, "script.jsc"))
}

func TestCompileExplicitOutput(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "main.js", validScript)
	output := filepath.Join(dir, "build.out")

	res := runCLI(t, "", input, output)
	require.Equal(t, 0, res.code, res.stderr)
	require.FileExists(t, output)
	require.NoFileExists(t, filepath.Join(dir, "main.jsc"))
}

func TestCompileInvalidFile(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "bad.js", invalidScript)

	res := runCLI(t, "", input)
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stdout, "Compiled "+input+" fails!")
	require.Contains(t, res.stderr, "Error! "+input+" line:2 msg:")
	require.NoFileExists(t, filepath.Join(dir, "bad.jsc"))
}

func TestCompileInvalidFileLeavesExistingOutput(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "bad.js", invalidScript)
	output := writeFile(t, dir, "bad.jsc", "previous")

	res := runCLI(t, "", input)
	require.Equal(t, 1, res.code)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Equal(t, "previous", string(data))
}

func TestUnknownFlagIsTreatedAsPath(t *testing.T) {
	isolate(t)

	res := runCLI(t, "", "--help")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stdout, "Input file: --help\n")
	require.Contains(t, res.stderr, "Failed to read --help")
}

func TestPipeMode(t *testing.T) {
	dir := isolate(t)
	a := writeFile(t, dir, "a.js", validScript)
	b := writeFile(t, dir, "b.js", "let greeting = \"hi\"\n")
	missing := filepath.Join(dir, "missing.js")

	stdin := strings.Join([]string{a, "", missing, "", b, ""}, "\n")
	res := runCLI(t, stdin, "-p")
	require.Equal(t, 0, res.code, res.stderr)

	require.FileExists(t, filepath.Join(dir, "a.jsc"))
	require.FileExists(t, filepath.Join(dir, "b.jsc"))
	require.NoFileExists(t, filepath.Join(dir, "missing.jsc"))
	require.Equal(t, 3, strings.Count(res.stdout, "Input file: "))
	require.Equal(t, 2, strings.Count(res.stdout, "Done! Output file: "))
}

func TestPipeModeLogsBatchFailures(t *testing.T) {
	dir := isolate(t)
	good := writeFile(t, dir, "good.js", validScript)
	missing := filepath.Join(dir, "missing.js")

	res := runCLI(t, good+"\n"+missing+"\n", "-p")
	require.Equal(t, 0, res.code)
	require.Contains(t, res.stderr, "batch finished with failures")
	require.Contains(t, res.stderr, `"processed":2`)
	require.Contains(t, res.stderr, `"failed":1`)
	require.Contains(t, res.stderr, "1 error occurred")
	require.Contains(t, res.stderr, "read failed: "+missing)
}

func TestPipeModeWithoutFailuresLogsNothing(t *testing.T) {
	dir := isolate(t)
	good := writeFile(t, dir, "good.js", validScript)

	res := runCLI(t, good+"\n", "-p")
	require.Equal(t, 0, res.code)
	require.NotContains(t, res.stderr, "batch finished with failures")
}

func TestPipeModeWithInvalidScript(t *testing.T) {
	dir := isolate(t)
	good := writeFile(t, dir, "good.js", validScript)
	bad := writeFile(t, dir, "bad.js", invalidScript)

	res := runCLI(t, bad+"\n"+good+"\n", "-p")
	require.Equal(t, 0, res.code)
	require.FileExists(t, filepath.Join(dir, "good.jsc"))
	require.NoFileExists(t, filepath.Join(dir, "bad.jsc"))
}

func TestPipeModeEmptyInput(t *testing.T) {
	isolate(t)

	res := runCLI(t, "", "-p")
	require.Equal(t, 0, res.code)
	require.Empty(t, res.stdout)
}

func TestPipeModeReadinessFailure(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	code := execute([]string{"-p"}, iotest.ErrReader(errors.New("bad fd")), &stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "Failed to read from pipe")
	require.Empty(t, stdout.String())
}

func TestExtensionFromEnvironment(t *testing.T) {
	dir := isolate(t)
	t.Setenv("JSBCC_EXTENSION", ".rbc")
	input := writeFile(t, dir, "main.js", validScript)

	res := runCLI(t, "", input)
	require.Equal(t, 0, res.code, res.stderr)
	require.FileExists(t, filepath.Join(dir, "main.rbc"))
}

func TestConfigFile(t *testing.T) {
	dir := isolate(t)
	cfg := writeFile(t, dir, "jsbcc.yaml", "extension: .out\nglobals:\n  answer: 42\n")
	t.Setenv(envConfigFile, cfg)
	input := writeFile(t, dir, "main.js", "let x = answer + 1\n")

	res := runCLI(t, "", input)
	require.Equal(t, 0, res.code, res.stderr)
	require.FileExists(t, filepath.Join(dir, "main.out"))
}

func TestConfigFileInHome(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, ".jsbcc.yaml", "extension: .home\n")
	input := writeFile(t, dir, "main.js", validScript)

	res := runCLI(t, "", input)
	require.Equal(t, 0, res.code, res.stderr)
	require.FileExists(t, filepath.Join(dir, "main.home"))
}

func TestMissingConfigFile(t *testing.T) {
	dir := isolate(t)
	t.Setenv(envConfigFile, filepath.Join(dir, "nope.yaml"))
	input := writeFile(t, dir, "main.js", validScript)

	res := runCLI(t, "", input)
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "read config")
}

func TestInvalidLogLevel(t *testing.T) {
	dir := isolate(t)
	t.Setenv("JSBCC_LOG_LEVEL", "loud")
	input := writeFile(t, dir, "main.js", validScript)

	res := runCLI(t, "", input)
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "invalid log-level")
	require.NoFileExists(t, filepath.Join(dir, "main.jsc"))
}

func TestNoColorLeavesGlobalColorState(t *testing.T) {
	dir := isolate(t)
	prev := color.NoColor
	t.Cleanup(func() { color.NoColor = prev })
	color.NoColor = false

	t.Setenv("JSBCC_NO_COLOR", "true")
	input := writeFile(t, dir, "bad.js", invalidScript)

	res := runCLI(t, "", input)
	require.Equal(t, 1, res.code)
	require.NotContains(t, res.stderr, "\x1b[")
	require.False(t, color.NoColor)
}
