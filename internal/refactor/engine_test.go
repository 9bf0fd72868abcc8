package refactor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cfn-refactor/internal/config"
	"github.com/mvp-joe/cfn-refactor/internal/protocol"
)

// Test Plan for Engine:
// - Actions() offers single and all-occurrences extraction for a repeated literal
// - Actions() honors extract.offer_all_occurrences
// - Actions() is empty for keys, non-templates and out-of-range positions
// - Extract() returns ErrNothingToExtract when nothing applies
// - ExtractFile() previews without touching the file, and rewrites it with write=true
// - UpdateConfig() changes the fallback prefix and editor settings live

const occurrencesYAML = `Resources:
  BucketA:
    Type: AWS::S3::Bucket
    Properties:
      BucketName: my-test-bucket
  BucketB:
    Type: AWS::S3::Bucket
    Properties:
      BucketName: my-test-bucket
`

// Column of the value on "      BucketName: my-test-bucket".
var bucketValue = protocol.Position{Line: 4, Character: 18}

func newEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestActions_RepeatedLiteral(t *testing.T) {
	t.Parallel()
	e := newEngine(t, nil)

	actions, err := e.Actions(context.Background(), Request{
		URI:      "file:///stack/template.yaml",
		Content:  occurrencesYAML,
		Position: bucketValue,
	})
	require.NoError(t, err)
	require.Len(t, actions, 2)

	assert.Equal(t, TitleExtract, actions[0].Title)
	assert.False(t, actions[0].AllOccurrences)
	assert.Equal(t, "BucketABucketName", actions[0].ParameterName)
	assert.Len(t, actions[0].Edit.Changes["file:///stack/template.yaml"], 2)

	assert.Equal(t, TitleExtractAllOccurrences, actions[1].Title)
	assert.True(t, actions[1].AllOccurrences)
	assert.Len(t, actions[1].Edit.Changes["file:///stack/template.yaml"], 3)
}

func TestActions_AllOccurrencesDisabled(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Extract.OfferAllOccurrences = false
	e := newEngine(t, cfg)

	actions, err := e.Actions(context.Background(), Request{
		URI:      "file:///stack/template.yaml",
		Content:  occurrencesYAML,
		Position: bucketValue,
	})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, TitleExtract, actions[0].Title)
}

func TestActions_NothingOffered(t *testing.T) {
	t.Parallel()
	e := newEngine(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  Request
	}{
		{"key position", Request{URI: "file:///a.yaml", Content: occurrencesYAML, Position: protocol.Position{Line: 4, Character: 8}}},
		{"not a template", Request{URI: "file:///notes.txt", LanguageID: "plaintext", Content: "hello", Position: protocol.Position{}}},
		{"past the end", Request{URI: "file:///a.yaml", Content: occurrencesYAML, Position: protocol.Position{Line: 40}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			actions, err := e.Actions(ctx, tt.req)
			require.NoError(t, err)
			assert.Empty(t, actions)
		})
	}
}

func TestExtract_NothingToExtract(t *testing.T) {
	t.Parallel()
	e := newEngine(t, nil)

	_, err := e.Extract(context.Background(), Request{
		URI:      "file:///a.yaml",
		Content:  occurrencesYAML,
		Position: protocol.Position{Line: 2, Character: 4},
	}, false)
	assert.ErrorIs(t, err, ErrNothingToExtract)

	_, err = e.Extract(context.Background(), Request{URI: "file:///a.txt", Content: "plain"}, false)
	assert.ErrorIs(t, err, ErrNotATemplate)
}

func TestExtractFile(t *testing.T) {
	t.Parallel()
	e := newEngine(t, nil)
	path := filepath.Join(t.TempDir(), "template.yaml")
	require.NoError(t, os.WriteFile(path, []byte(occurrencesYAML), 0600))

	preview, err := e.ExtractFile(context.Background(), path, bucketValue, true, false)
	require.NoError(t, err)
	assert.False(t, preview.Applied)
	assert.Equal(t, path, preview.Path)
	unchanged, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, occurrencesYAML, string(unchanged))

	applied, err := e.ExtractFile(context.Background(), path, bucketValue, true, true)
	require.NoError(t, err)
	assert.True(t, applied.Applied)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(written)
	assert.True(t, strings.HasPrefix(out, "Parameters:\n  BucketABucketName:\n"))
	assert.Equal(t, 2, strings.Count(out, "BucketName: !Ref BucketABucketName"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = e.ExtractFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), bucketValue, false, false)
	assert.Error(t, err)
}

func TestUpdateConfig(t *testing.T) {
	t.Parallel()
	e := newEngine(t, nil)
	assert.Equal(t, 2, e.EditorSettings().TabSize)

	cfg := config.Default()
	cfg.Extract.FallbackPrefix = "Extracted"
	cfg.Editor.TabSize = 4
	require.NoError(t, e.UpdateConfig(cfg))
	assert.Equal(t, 4, e.EditorSettings().TabSize)

	action, err := e.Extract(context.Background(), Request{
		URI:      "file:///list.yaml",
		Content:  "Resources:\n  - listed\n",
		Position: protocol.Position{Line: 1, Character: 4},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "Extracted1", action.ParameterName)

	bad := config.Default()
	bad.Documents.JSONPatterns = []string{"[oops"}
	assert.ErrorIs(t, e.UpdateConfig(bad), config.ErrInvalidPattern)
	assert.Equal(t, 4, e.EditorSettings().TabSize)
}
