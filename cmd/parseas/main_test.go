package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/parseas/load"
)

func run(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := execute(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestCheck_OK(t *testing.T) {
	good := writeFile(t, "ids.json", []byte(`["1", 2, "3"]`))
	yml := writeFile(t, "ids.yaml", []byte("- 4\n- '5'\n"))

	code, out, _ := run(t, "", "check", "--shape", "[]int", good, yml)
	assert.Equal(t, 0, code)
	assert.Equal(t, "ok "+good+"\nok "+yml+"\n", out)
}

func TestCheck_Issues(t *testing.T) {
	bad := writeFile(t, "bad.json", []byte(`["a", 2]`))

	code, out, errOut := run(t, "", "check", "--shape", "[]int", bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "FAIL "+bad+": 1 issue(s)")
	assert.Contains(t, out, "root.0: invalid_type")
	assert.Contains(t, errOut, "1 of 1 inputs failed")
}

func TestCheck_Stdin(t *testing.T) {
	code, out, _ := run(t, "a: 1\nb: '2'\n", "check", "--shape", "map[string]int", "--protocol", "yaml", "-")
	assert.Equal(t, 0, code)
	assert.Equal(t, "ok -\n", out)

	code, out, _ = run(t, "not json", "check", "--shape", "any", "-")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "decode error")
}

func TestCheck_GobRequiresAllowUnsafe(t *testing.T) {
	b, err := load.EncodeGob([]any{1, 2})
	require.NoError(t, err)
	path := writeFile(t, "ids.gob", b)

	code, out, _ := run(t, "", "check", "--shape", "[]int", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "unsafe protocol")

	code, out, _ = run(t, "", "check", "--shape", "[]int", "--allow-unsafe", path)
	assert.Equal(t, 0, code, out)
}

func TestCheck_MissingFile(t *testing.T) {
	code, out, _ := run(t, "", "check", "--shape", "int", filepath.Join(t.TempDir(), "nope.json"))
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "file error")
}

func TestCheck_BadShape(t *testing.T) {
	code, _, errOut := run(t, "", "check", "--shape", "chan int", "-")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "syntax error")
}

func TestCheck_ConfigAndStats(t *testing.T) {
	cfg := writeFile(t, "parseas.yaml", []byte("cache_size: 8\njobs: 2\nload:\n  protocol: yaml\n"))
	in := writeFile(t, "data.txt", []byte("[1, 2]"))

	code, out, errOut := run(t, "", "--config", cfg, "--stats", "check", "--shape", "[]int", in, in)
	assert.Equal(t, 0, code, out)
	assert.Contains(t, errOut, "parseas_schema_cache_capacity 8")
	assert.Contains(t, errOut, "parseas_schema_cache_misses_total 1")
	assert.Contains(t, errOut, "parseas_schema_cache_hits_total 1")
}

func TestSchema(t *testing.T) {
	code, out, _ := run(t, "", "schema", "--shape", "[]int")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, `"title": "ParsingModel[[]int]"`)
	assert.Contains(t, out, `"type": "array"`)

	code, out, _ = run(t, "", "schema", "--shape", "map[string]bool", "--type-name", "Flags")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, `"title": "Flags"`)
}
