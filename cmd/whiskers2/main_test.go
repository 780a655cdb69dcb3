package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backwardspy/whiskers2"
	"github.com/backwardspy/whiskers2/internal/engine"
	"github.com/backwardspy/whiskers2/internal/matrix"
)

func resetFlags() {
	flagFlavor = ""
	flagHexCaps = false
	flagHexPrefix = ""
	flagColorOverrides = ""
	flagColorOverridesFile = ""
	flagOverrides = ""
	flagOverridesFile = ""
	flagDryRun = false
	flagOutputDir = ""
	flagCheck = ""
	flagFormat = "json"
	flagFmtCheck = false
	flagLogLevel = "info"
	flagLogJSON = false
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const singleTemplate = `---
whiskers:
  version: "2.0.0"
accent: mauve
---
{{ .flavor.Name }} {{ .base.Hex }} {{ (index .flavor.Colors .accent).Hex }}
`

const matrixTemplate = `---
whiskers:
  version: "2.0.0"
  matrix:
    - flavor
    - variant: [normal, no-italics]
  filename: "themes/{{ .flavor.Identifier }}-{{ .variant }}.conf"
---
bg={{ .flavor.Colors.base.Hex }}
`

func TestRenderSingle(t *testing.T) {
	path := writeFile(t, t.TempDir(), "single.tera", singleTemplate)

	out, _, err := execute(t, path, "--flavor", "mocha", "--hex-prefix", "#")
	require.NoError(t, err)
	assert.Equal(t, "Mocha #1e1e2e #cba6f7\n", out)
}

func TestRenderSingleWithOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "single.tera", singleTemplate)
	overridesFile := writeFile(t, dir, "overrides.yaml", "accent: blue\n")

	out, _, err := execute(t, "render", path, "-f", "Latte", "--hex-caps",
		"--overrides-file", overridesFile, "--overrides", `{"accent": "red"}`)
	require.NoError(t, err)
	assert.Equal(t, "Latte EFF1F5 D20F39\n", out)
}

func TestRenderSingleColorOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "single.tera", singleTemplate)
	colorFile := writeFile(t, dir, "colors.hcl", `mocha {
  base = mix(palette.mocha.base, "#000000", 1)
}
`)

	out, _, err := execute(t, path, "-f", "mocha",
		"--color-overrides-file", colorFile,
		"--color-overrides", `{"all": {"mauve": "#123456"}}`)
	require.NoError(t, err)
	assert.Equal(t, "Mocha 000000 123456\n", out)
}

func TestRenderSingleCheck(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "single.tera", singleTemplate)
	expected := writeFile(t, dir, "expected.txt", "Mocha 1e1e2e cba6f7\n")

	_, _, err := execute(t, path, "-f", "mocha", "--check", expected)
	require.NoError(t, err)

	stale := writeFile(t, dir, "stale.txt", "Mocha 000000 cba6f7\n")
	_, _, err = execute(t, path, "-f", "mocha", "--check", stale)
	assert.True(t, errors.Is(err, engine.ErrCheckMismatch), "error = %v", err)
}

func TestRenderMissingVersionWarns(t *testing.T) {
	path := writeFile(t, t.TempDir(), "plain.tera", "{{ .red.Hex }}\n")

	out, stderr, err := execute(t, path, "-f", "frappe", "--log-json")
	require.NoError(t, err)
	assert.Equal(t, "e78284\n", out)
	assert.Contains(t, stderr, "no whiskers version requirement")
	assert.Contains(t, stderr, `"level":"warn"`)
}

func TestRenderIncompatibleVersion(t *testing.T) {
	path := writeFile(t, t.TempDir(), "old.tera", "---\nwhiskers:\n  version: \"1.0.0\"\n---\nx")
	_, _, err := execute(t, path)
	assert.Error(t, err)
}

func TestRenderMatrix(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "matrix.tera", matrixTemplate)
	outDir := filepath.Join(dir, "out")

	_, _, err := execute(t, path, "--output-dir", outDir)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(outDir, "themes"))
	require.NoError(t, err)
	assert.Len(t, entries, 8)

	content, err := os.ReadFile(filepath.Join(outDir, "themes", "latte-no-italics.conf"))
	require.NoError(t, err)
	assert.Equal(t, "bg=eff1f5\n", string(content))
}

func TestRenderMatrixSingleFlavorDryRun(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "matrix.tera", matrixTemplate)
	outDir := filepath.Join(dir, "out")

	_, stderr, err := execute(t, path, "--output-dir", outDir, "--dry-run", "-f", "macchiato", "--log-json")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "would write 10 bytes into "+filepath.Join(outDir, "themes", "macchiato-normal.conf"))
	assert.Contains(t, lines[1], "macchiato-no-italics.conf")

	_, err = os.Stat(outDir)
	assert.True(t, os.IsNotExist(err), "dry run created %s", outDir)
}

func TestRenderMatrixCheckRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "matrix.tera", matrixTemplate)
	_, _, err := execute(t, path, "--check", filepath.Join(dir, "x"))
	assert.Error(t, err)
}

func TestRenderMatrixFlavorNotDeclared(t *testing.T) {
	path := writeFile(t, t.TempDir(), "matrix.tera", `---
whiskers:
  version: "2.0.0"
  matrix:
    - flavor: [latte, mocha]
  filename: "{{ .flavor.Identifier }}"
---
x`)
	_, _, err := execute(t, path, "--dry-run", "-f", "frappe")
	assert.True(t, errors.Is(err, matrix.ErrFlavorNotInMatrix), "error = %v", err)
}

func TestRenderUnknownFlavorFlag(t *testing.T) {
	path := writeFile(t, t.TempDir(), "single.tera", singleTemplate)
	_, _, err := execute(t, path, "-f", "espresso")
	assert.Error(t, err)
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "matrix.tera", matrixTemplate)

	out, _, err := execute(t, "check", path)
	require.NoError(t, err)
	assert.Equal(t, "matrix.tera: ok, renders 8 files\n", out)

	out, _, err = execute(t, "check", path, "-f", "mocha")
	require.NoError(t, err)
	assert.Equal(t, "matrix.tera: ok, renders 2 files\n", out)

	broken := writeFile(t, dir, "broken.tera", "{{ if }}")
	_, _, err = execute(t, "check", broken)
	assert.Error(t, err)
}

func TestPaletteCommand(t *testing.T) {
	out, _, err := execute(t, "palette", "--format", "yaml", "--hex-prefix", "#")
	require.NoError(t, err)
	assert.Contains(t, out, "mocha:")
	assert.Contains(t, out, "#cba6f7")

	out, _, err = execute(t, "palette", "-o", "hcl")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "latte {"), "output = %q", out[:min(len(out), 20)])

	_, _, err = execute(t, "palette", "-o", "toml")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, whiskers2.Version+"\n", out)
}

func TestFmtCommand(t *testing.T) {
	dir := t.TempDir()
	messy := writeFile(t, dir, "messy.hcl", "mocha{base=\"#000000\"}\n")
	tidy := writeFile(t, dir, "tidy.hcl", "mocha {\n  base = \"#000000\"\n}\n")

	out, _, err := execute(t, "fmt", "--check", messy, tidy)
	assert.True(t, errors.Is(err, errUnformatted), "error = %v", err)
	assert.Equal(t, messy+"\n", out)

	out, _, err = execute(t, "fmt", messy, tidy)
	require.NoError(t, err)
	assert.Equal(t, messy+"\n", out)

	data, err := os.ReadFile(messy)
	require.NoError(t, err)
	assert.Equal(t, "mocha { base = \"#000000\" }\n", string(data))
}
