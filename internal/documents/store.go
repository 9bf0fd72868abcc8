// Package documents tracks the templates an editor has open.
package documents

import (
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/mvp-joe/cfn-refactor/internal/protocol"
	"github.com/mvp-joe/cfn-refactor/internal/syntax"
)

// ErrDocumentNotOpen is returned when a change arrives for an unknown URI.
var ErrDocumentNotOpen = errors.New("document not open")

// Document is a snapshot of an open template.
type Document struct {
	URI        string
	LanguageID string
	Version    int32
	Text       string
	Type       syntax.DocumentType
}

// Change is one textDocument/didChange content change. A nil Range replaces
// the whole document.
type Change struct {
	Range *protocol.Range
	Text  string
}

// Detector types a document. *TypeDetector implements it.
type Detector interface {
	Detect(uri, languageID, content string) syntax.DocumentType
}

// Store holds open documents keyed by URI. Safe for concurrent use.
type Store struct {
	detector Detector

	mu   sync.RWMutex
	docs map[string]*Document
}

// NewStore returns an empty store that types documents with detector.
func NewStore(detector Detector) *Store {
	return &Store{
		detector: detector,
		docs:     make(map[string]*Document),
	}
}

// Open records a newly opened document and returns its snapshot.
func (s *Store) Open(uri, languageID string, version int32, text string) Document {
	doc := &Document{
		URI:        uri,
		LanguageID: languageID,
		Version:    version,
		Text:       text,
		Type:       s.detector.Detect(uri, languageID, text),
	}

	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()

	return *doc
}

// Apply applies content changes in order and bumps the version.
func (s *Store) Apply(uri string, version int32, changes []Change) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[uri]
	if !ok {
		return Document{}, errors.Wrapf(ErrDocumentNotOpen, "%s", uri)
	}

	text := doc.Text
	for i, change := range changes {
		next, err := applyChange(text, change)
		if err != nil {
			return Document{}, errors.Wrapf(err, "change %d of %s", i, uri)
		}
		text = next
	}

	doc.Text = text
	doc.Version = version
	// The language id is fixed for the document's lifetime; a file that only
	// became recognizable by content can still gain a type here.
	if doc.Type == syntax.DocumentTypeUnknown {
		doc.Type = s.detector.Detect(uri, doc.LanguageID, text)
	}
	return *doc, nil
}

func applyChange(text string, change Change) (string, error) {
	if change.Range == nil {
		return change.Text, nil
	}
	lines := protocol.NewLineIndex(text)
	start, err := lines.OffsetAt(change.Range.Start)
	if err != nil {
		return "", err
	}
	end, err := lines.OffsetAt(change.Range.End)
	if err != nil {
		return "", err
	}
	if end < start {
		return "", errors.Newf("change range %s ends before it starts", change.Range)
	}
	return text[:start] + change.Text + text[end:], nil
}

// Close forgets a document.
func (s *Store) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get returns a snapshot of an open document.
func (s *Store) Get(uri string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[uri]
	if !ok {
		return Document{}, false
	}
	return *doc, true
}

// Count returns the number of open documents.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
