package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunFromJSON(t *testing.T) {
	code, out, _ := runCLI(t, `{"a":[1,2.5]}`, "from-json")
	require.Equal(t, 0, code)
	assert.Equal(t, "a:1:{s:1:\"a\";a:2:{i:0;i:1;i:1;d:2.5;}}\n", out)
}

func TestRunFromJSONObjects(t *testing.T) {
	code, out, _ := runCLI(t, `{"a":1}`, "from-json", "--objects")
	require.Equal(t, 0, code)
	assert.Equal(t, "O:8:\"stdClass\":1:{s:1:\"a\";i:1;}\n", out)
}

func TestRunFromYAMLFile(t *testing.T) {
	path := writeFile(t, "in.yaml", "- &x 1\n- *x\n")
	code, out, _ := runCLI(t, "", "from-yaml", path)
	require.Equal(t, 0, code)
	assert.Equal(t, "a:2:{i:0;i:1;i:1;R:2;}\n", out)
}

func TestRunMaxDepth(t *testing.T) {
	code, _, errOut := runCLI(t, `[[[1]]]`, "from-json", "--max-depth", "2")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "maximum depth exceeded")
}

func TestRunConfigFile(t *testing.T) {
	cfg := writeFile(t, "phpser.toml", "objects_as_stdclass = true\nmax_depth = 4\n")

	code, out, _ := runCLI(t, `{"a":{}}`, "from-json", "--config", cfg)
	require.Equal(t, 0, code)
	assert.Equal(t, "O:8:\"stdClass\":1:{s:1:\"a\";O:8:\"stdClass\":0:{}}\n", out)

	// Flags override the file.
	code, out, _ = runCLI(t, `{"a":{}}`, "from-json", "-c", cfg, "--objects=false")
	require.Equal(t, 0, code)
	assert.Equal(t, "a:1:{s:1:\"a\";a:0:{}}\n", out)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = loadConfig(writeFile(t, "bad.toml", "max_depth = \"deep\"\n"))
	assert.Error(t, err)

	_, err = loadConfig(writeFile(t, "unknown.toml", "colour = \"blue\"\n"))
	assert.ErrorContains(t, err, "unknown key")

	_, err = loadConfig(writeFile(t, "neg.toml", "max_depth = -1\n"))
	assert.ErrorContains(t, err, "must not be negative")
}

func TestRunErrors(t *testing.T) {
	code, _, errOut := runCLI(t, "")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Usage:")

	code, _, errOut = runCLI(t, "", "to-xml")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown command: to-xml")

	code, _, errOut = runCLI(t, `{`, "from-json")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid JSON")

	code, _, _ = runCLI(t, "", "from-json", "--no-such-flag")
	assert.Equal(t, 1, code)

	code, _, _ = runCLI(t, "", "from-json", filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, 1, code)
}

func TestRunVersion(t *testing.T) {
	code, out, _ := runCLI(t, "", "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "phpser "+libVersion+"\n", out)
}

func TestRunDigest(t *testing.T) {
	code, out, _ := runCLI(t, `[1]`, "from-json", "--digest")
	require.Equal(t, 0, code)

	want := sha256.Sum256([]byte("a:1:{i:0;i:1;}"))
	assert.Equal(t, hex.EncodeToString(want[:])+"\n", out)
}
