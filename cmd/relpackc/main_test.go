package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/relpack/artifact"
)

const animalColors = "Animal/Color,Red,Green,Blue\nCat,,x,\nDog,x,,x\n"

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_GoSource(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "AnimalColor.csv")
	writeFile(t, in, animalColors)
	out := filepath.Join(dir, "gen")

	code, stdout, stderr := runCLI(t, "-in", in, "-name", "colors.AnimalColor", "-o", out, "-ordinals", "-verify")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "colors.AnimalColor -> AnimalColor.go")

	src, err := os.ReadFile(filepath.Join(out, "AnimalColor.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "package colors")
	assert.Contains(t, string(src), "func LookupAnimalColor(")
}

func TestRun_Binary(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "AnimalColor.csv")
	writeFile(t, in, animalColors)

	code, _, stderr := runCLI(t, "-in", in, "-format", "binary", "-compression", "lz4", "-o", dir)
	require.Equal(t, 0, code, stderr)

	f, err := artifact.Open(filepath.Join(dir, "AnimalColor.rpk"))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "AnimalColor", f.Artifact().Name)
	assert.True(t, f.Lookup(1, 2))
}

func TestRun_Diagnostics(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "Broken.csv")
	writeFile(t, in, "Animal/Color,Red\nCat\n")

	code, _, stderr := runCLI(t, "-in", in, "-o", dir)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, in+":1:0-2: RPK003 error: invalid csv row")
	assert.Contains(t, stderr, "1 of 1 document(s) failed")
}

func TestRun_Config(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Maps", "AnimalColor.csv"), animalColors)
	writeFile(t, filepath.Join(dir, "relpack.yaml"), `
files:
  - path: Maps/AnimalColor.csv
    file_type: Map
    file_format: Csv
    type_name: colors.AnimalColor
output:
  format: json
  indent: true
store:
  kind: local
  path: gen
log_level: error
`)

	code, stdout, stderr := runCLI(t, "-config", filepath.Join(dir, "relpack.yaml"))
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "AnimalColor.json")

	_, err := os.Stat(filepath.Join(dir, "gen", "AnimalColor.json"))
	require.NoError(t, err)
	current, err := os.ReadFile(filepath.Join(dir, "gen", "CURRENT"))
	require.NoError(t, err)
	assert.Equal(t, "MANIFEST-000001.json", string(current))
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "one of -config or -in is required")

	code, _, _ = runCLI(t, "-bogus")
	assert.Equal(t, 2, code)

	code, _, stderr = runCLI(t, "-in", "x.csv", "-format", "rust")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "output.format")

	code, _, stderr = runCLI(t, "-config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "missing.yaml")
}

func TestRun_GlobWithoutName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "AnimalColor.csv"), animalColors)
	writeFile(t, filepath.Join(dir, "PlantColor.csv"), "Plant/Color,Red,Green\nFern,,x\n")
	out := filepath.Join(dir, "gen")

	code, _, stderr := runCLI(t, "-in", filepath.Join(dir, "*.csv"), "-format", "binary", "-o", out)
	require.Equal(t, 0, code, stderr)

	for _, name := range []string{"AnimalColor", "PlantColor"} {
		f, err := artifact.Open(filepath.Join(out, name+".rpk"))
		require.NoError(t, err, name)
		assert.Equal(t, name, f.Artifact().Name)
		require.NoError(t, f.Close())
	}
}

func TestRun_GlobWithSingleName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "AnimalColor.csv"), animalColors)

	code, _, stderr := runCLI(t, "-in", filepath.Join(dir, "*.csv"), "-name", "colors.AnimalColor")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "ns.*")
}
