package documents

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cfn-refactor/internal/config"
	"github.com/mvp-joe/cfn-refactor/internal/protocol"
	"github.com/mvp-joe/cfn-refactor/internal/syntax"
)

// Test Plan for Documents:
// - Detect() prefers language id, then path globs, then content sniffing
// - NewTypeDetector() rejects patterns that do not compile
// - PathFromURI()/URIFromPath() handle file URIs and bare paths
// - Store.Open()/Get()/Close()/Count() track snapshots
// - Store.Apply() handles full replacement and incremental UTF-16 ranges in order
// - Store.Apply() fails for unknown documents and bad ranges
// - Store is safe under concurrent use

func newDetector(t *testing.T) *TypeDetector {
	t.Helper()
	d, err := NewTypeDetector(config.Default().Documents)
	require.NoError(t, err)
	return d
}

func TestDetect(t *testing.T) {
	t.Parallel()
	d := newDetector(t)

	tests := []struct {
		name       string
		uri        string
		languageID string
		content    string
		want       syntax.DocumentType
	}{
		{"language id wins", "file:///tmp/a.txt", "yaml", "{}", syntax.DocumentTypeYAML},
		{"cloudformation language id", "file:///tmp/a", "cloudformation-json", "", syntax.DocumentTypeJSON},
		{"json glob", "file:///work/stack/template.json", "", "", syntax.DocumentTypeJSON},
		{"yml glob", "file:///work/stack/template.yml", "", "", syntax.DocumentTypeYAML},
		{"relative path", "template.yaml", "", "", syntax.DocumentTypeYAML},
		{"sniff json", "untitled:Untitled-1", "", "\n  {\"Resources\": {}}", syntax.DocumentTypeJSON},
		{"sniff yaml", "file:///tmp/template.cfn", "", "# stack\nResources:\n  A:\n    Type: X\n", syntax.DocumentTypeYAML},
		{"unknown", "file:///tmp/notes.txt", "plaintext", "hello", syntax.DocumentTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, d.Detect(tt.uri, tt.languageID, tt.content))
		})
	}
}

func TestNewTypeDetector_InvalidPattern(t *testing.T) {
	t.Parallel()
	_, err := NewTypeDetector(config.DocumentsConfig{JSONPatterns: []string{"[broken"}})
	assert.ErrorIs(t, err, config.ErrInvalidPattern)
}

func TestPathFromURI(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "/tmp/my template.yaml", PathFromURI("file:///tmp/my%20template.yaml"))
	assert.Equal(t, "relative/a.json", PathFromURI("relative/a.json"))
	assert.Equal(t, "", PathFromURI("untitled:Untitled-1"))

	uri := URIFromPath("/tmp/my template.yaml")
	assert.Equal(t, "file:///tmp/my%20template.yaml", uri)
	assert.Equal(t, "/tmp/my template.yaml", PathFromURI(uri))
}

func TestStore_OpenGetClose(t *testing.T) {
	t.Parallel()
	s := NewStore(newDetector(t))

	doc := s.Open("file:///a.yaml", "", 1, "Resources: {}\n")
	assert.Equal(t, syntax.DocumentTypeYAML, doc.Type)
	assert.Equal(t, 1, s.Count())

	got, ok := s.Get("file:///a.yaml")
	require.True(t, ok)
	assert.Equal(t, doc, got)

	s.Close("file:///a.yaml")
	_, ok = s.Get("file:///a.yaml")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Count())
}

func TestStore_Apply(t *testing.T) {
	t.Parallel()
	s := NewStore(newDetector(t))
	s.Open("file:///a.yaml", "yaml", 1, "Name: 😀old\nNext: x\n")

	rng := func(sl, sc, el, ec int) *protocol.Range {
		return &protocol.Range{
			Start: protocol.Position{Line: sl, Character: sc},
			End:   protocol.Position{Line: el, Character: ec},
		}
	}

	// The emoji is two UTF-16 units, so "old" spans columns 8-11.
	doc, err := s.Apply("file:///a.yaml", 2, []Change{
		{Range: rng(0, 8, 0, 11), Text: "new"},
		{Range: rng(1, 6, 1, 7), Text: "y"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Name: 😀new\nNext: y\n", doc.Text)
	assert.Equal(t, int32(2), doc.Version)

	doc, err = s.Apply("file:///a.yaml", 3, []Change{{Text: "Resources: {}\n"}})
	require.NoError(t, err)
	assert.Equal(t, "Resources: {}\n", doc.Text)

	_, err = s.Apply("file:///a.yaml", 4, []Change{{Range: rng(9, 0, 9, 1), Text: "x"}})
	assert.ErrorIs(t, err, protocol.ErrPositionOutOfRange)

	_, err = s.Apply("file:///a.yaml", 4, []Change{{Range: rng(0, 5, 0, 1), Text: "x"}})
	assert.Error(t, err)

	_, err = s.Apply("file:///missing.yaml", 1, nil)
	assert.ErrorIs(t, err, ErrDocumentNotOpen)
}

func TestStore_ApplyDetectsLateType(t *testing.T) {
	t.Parallel()
	s := NewStore(newDetector(t))
	s.Open("untitled:1", "", 1, "")

	doc, err := s.Apply("untitled:1", 2, []Change{{Text: "{\"Resources\": {}}"}})
	require.NoError(t, err)
	assert.Equal(t, syntax.DocumentTypeJSON, doc.Type)
}

func TestStore_Concurrent(t *testing.T) {
	t.Parallel()
	s := NewStore(newDetector(t))
	s.Open("file:///a.json", "json", 0, "")

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Apply("file:///a.json", int32(i), []Change{{Text: "{}"}})
			assert.NoError(t, err)
			_, _ = s.Get("file:///a.json")
		}()
	}
	wg.Wait()

	doc, ok := s.Get("file:///a.json")
	require.True(t, ok)
	assert.Equal(t, "{}", doc.Text)
}
