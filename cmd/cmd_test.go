package cmd

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"post-sieve/core/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	refJSONL    = `{"id":"a","user":null,"timestamp":null,"text":"hi"}` + "\n"
	targetJSONL = `{"id":"a","user":null,"timestamp":null,"text":"bye"}` + "\n" +
		`{"id":"b","user":"bob","timestamp":null,"text":"remote ml role"}` + "\n"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "error")
	RootCmd.SetArgs(args)
	return RootCmd.Execute()
}

func fixtures(t *testing.T) (dir, ref, target string) {
	t.Helper()
	dir = t.TempDir()
	ref = filepath.Join(dir, "ref.jsonl")
	target = filepath.Join(dir, "target.jsonl")
	require.NoError(t, os.WriteFile(ref, []byte(refJSONL), 0o644))
	require.NoError(t, os.WriteFile(target, []byte(targetJSONL), 0o644))
	return dir, ref, target
}

func TestDiffCommand(t *testing.T) {
	dir, ref, target := fixtures(t)
	out := filepath.Join(dir, "diff.jsonl")

	require.NoError(t, execute(t, "diff", ref, target, out, "--config-dir", dir))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestDiffCommand_MissingInput(t *testing.T) {
	dir, ref, _ := fixtures(t)

	err := execute(t, "diff", ref, filepath.Join(dir, "missing.jsonl"), filepath.Join(dir, "out.jsonl"), "--config-dir", dir)
	assert.ErrorIs(t, err, source.ErrNotFound)
}

func TestDiffCommand_Args(t *testing.T) {
	dir, ref, _ := fixtures(t)
	assert.Error(t, execute(t, "diff", ref, "--config-dir", dir))
}

func TestClassifyCommand(t *testing.T) {
	dir, _, target := fixtures(t)
	out := filepath.Join(dir, "matches.jsonl")
	t.Setenv("ORACLE_PROVIDER", "echo")
	t.Setenv("ORACLE_ECHO_KEYWORDS", "remote")

	require.NoError(t, execute(t, "classify", target, "-o", out, "-w", "2", "--config-dir", dir))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":"b"`)
	assert.NotContains(t, string(data), `"id":"a"`)
}

func TestClassifyCommand_InvalidWorkers(t *testing.T) {
	dir, _, target := fixtures(t)
	t.Setenv("ORACLE_PROVIDER", "echo")

	err := execute(t, "classify", target, "-w", "0", "--config-dir", dir)
	assert.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	dir, ref, target := fixtures(t)
	out := filepath.Join(dir, "matches.jsonl")
	diffOut := filepath.Join(dir, "diff.jsonl")
	t.Setenv("ORACLE_PROVIDER", "echo")
	t.Setenv("ORACLE_ECHO_KEYWORDS", "bye")

	require.NoError(t, execute(t, "run", ref, target, "-o", out, "--diff-output", diffOut, "-w", "1", "--config-dir", dir))

	matches, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(matches), "\n"))
	assert.Contains(t, string(matches), `"text":"bye"`)

	diffed, err := os.ReadFile(diffOut)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(diffed), "\n"))
}

func TestRunCommand_MissingInput(t *testing.T) {
	dir, _, target := fixtures(t)
	t.Setenv("ORACLE_PROVIDER", "echo")

	err := execute(t, "run", filepath.Join(dir, "gone.jsonl"), target, "--config-dir", dir)
	assert.ErrorIs(t, err, source.ErrNotFound)
}

func TestNewServer(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ORACLE_PROVIDER", "echo")
	t.Setenv("SERVER_API_KEY", "secret")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "error")
	configDir = dir

	a, err := bootstrap(true, nil)
	require.NoError(t, err)
	srv := newServer(a)

	resp, err := srv.Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Ray-ID"))

	resp, err = srv.Test(httptest.NewRequest("POST", "/v1/classify", strings.NewReader(targetJSONL)))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	req := httptest.NewRequest("POST", "/v1/classify", strings.NewReader(targetJSONL))
	req.Header.Set("X-API-Key", "secret")
	resp, err = srv.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"submitted":2`)
}
