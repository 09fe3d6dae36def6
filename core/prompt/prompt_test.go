package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"post-sieve/core/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_EmbedsRecordOnLastLine(t *testing.T) {
	out, err := Default().Build(record.Record{ID: "42", Text: "Remote ML role\nNYC hours"})
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	last := lines[len(lines)-1]
	assert.JSONEq(t, `{"id":"42","user":null,"timestamp":null,"text":"Remote ML role\nNYC hours"}`, last)
	assert.Contains(t, out, `"MATCHES" or "DOES NOT MATCH"`)
}

func TestNew_CustomTemplate(t *testing.T) {
	b, err := New("Post {{.ID}}: {{.Record}}")
	require.NoError(t, err)

	out, err := b.Build(record.Record{ID: "7", Text: "hi"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Post 7: {"))
}

func TestNew_InvalidTemplate(t *testing.T) {
	_, err := New("{{.Record")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	b, err := Load("")
	require.NoError(t, err)
	assert.NotNil(t, b)

	path := filepath.Join(t.TempDir(), "prompt.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("Classify:\n{{.Record}}\n"), 0o644))
	b, err = Load(path)
	require.NoError(t, err)
	out, err := b.Build(record.Record{ID: "1"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Classify:\n{"))
	assert.False(t, strings.HasSuffix(out, "\n"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.tmpl"))
	assert.Error(t, err)
}
