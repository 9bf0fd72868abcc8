// Package refactor wires the extraction core to documents and configuration.
// The CLI, the MCP tool and the language server all go through an Engine.
package refactor

// Implementation Plan:
// 1. NewEngine builds the type detector, the cached structure analyzer and the provider from config
// 2. Actions parses a document and returns every applicable extraction (LSP code actions)
// 3. Extract returns one extraction, single or all occurrences (CLI, MCP)
// 4. ExtractFile reads a template from disk, extracts, and optionally writes the result back
// 5. UpdateConfig swaps editor settings and extract options at runtime (config file watch)

import (
	"context"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"

	"github.com/mvp-joe/cfn-refactor/internal/config"
	"github.com/mvp-joe/cfn-refactor/internal/documents"
	"github.com/mvp-joe/cfn-refactor/internal/edits"
	"github.com/mvp-joe/cfn-refactor/internal/extract"
	"github.com/mvp-joe/cfn-refactor/internal/logger"
	"github.com/mvp-joe/cfn-refactor/internal/protocol"
	"github.com/mvp-joe/cfn-refactor/internal/syntax"
	"github.com/mvp-joe/cfn-refactor/internal/template"
)

const (
	TitleExtract               = "Extract to parameter"
	TitleExtractAllOccurrences = "Extract all occurrences to parameter"
)

var (
	// ErrNothingToExtract means the position holds no extractable literal.
	ErrNothingToExtract = errors.New("no extractable literal at position")

	// ErrNotATemplate means the document is neither JSON nor YAML.
	ErrNotATemplate = errors.New("document is not a JSON or YAML template")
)

// Request identifies a cursor position in a template.
type Request struct {
	URI        string
	LanguageID string
	Content    string
	// Type overrides detection when known (documents opened in an editor).
	Type     syntax.DocumentType
	Position protocol.Position
	// Range is the editor selection; it is only used for logging.
	Range *protocol.Range
}

// Action is one extraction ready to apply.
type Action struct {
	Title          string                      `json:"title"`
	AllOccurrences bool                        `json:"all_occurrences"`
	ParameterName  string                      `json:"parameter_name"`
	Parameter      extract.ParameterDefinition `json:"parameter"`
	Edit           *protocol.WorkspaceEdit     `json:"edit"`
}

// FileResult is the outcome of ExtractFile.
type FileResult struct {
	Action
	Path    string `json:"path"`
	Applied bool   `json:"applied"`
}

// Engine runs extractions against documents. Safe for concurrent use.
type Engine struct {
	structure *template.StructureAnalyzer
	logger    *log.Logger

	mu       sync.RWMutex
	cfg      *config.Config
	detector *documents.TypeDetector
	provider *extract.Provider
}

// NewEngine builds an engine from cfg. A nil logger discards output.
func NewEngine(cfg *config.Config, l *log.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if l == nil {
		l = logger.Discard()
	}

	structure, err := template.NewStructureAnalyzer(cfg.Documents.StructureCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create structure analyzer")
	}

	e := &Engine{structure: structure, logger: l}
	if err := e.UpdateConfig(cfg); err != nil {
		structure.Close()
		return nil, err
	}
	return e, nil
}

// UpdateConfig applies a new configuration. The structure cache keeps its
// original size until restart.
func (e *Engine) UpdateConfig(cfg *config.Config) error {
	detector, err := documents.NewTypeDetector(cfg.Documents)
	if err != nil {
		return err
	}
	provider := extract.NewProvider(e.structure,
		extract.WithLogger(e.logger),
		extract.WithFallbackPrefix(cfg.Extract.FallbackPrefix),
	)

	e.mu.Lock()
	e.cfg = cfg
	e.detector = detector
	e.provider = provider
	e.mu.Unlock()
	return nil
}

// Close releases the structure cache.
func (e *Engine) Close() {
	e.structure.Close()
}

// Detect types a document with the current configuration's patterns.
func (e *Engine) Detect(uri, languageID, content string) syntax.DocumentType {
	_, detector, _ := e.snapshot()
	return detector.Detect(uri, languageID, content)
}

func (e *Engine) snapshot() (*config.Config, *documents.TypeDetector, *extract.Provider) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg, e.detector, e.provider
}

// EditorSettings returns the configured formatting options.
func (e *Engine) EditorSettings() extract.EditorSettings {
	cfg, _, _ := e.snapshot()
	return editorSettings(cfg.Editor)
}

func editorSettings(cfg config.EditorConfig) extract.EditorSettings {
	return extract.EditorSettings{
		TabSize:           cfg.TabSize,
		InsertSpaces:      cfg.InsertSpaces,
		DetectIndentation: cfg.DetectIndentation,
	}
}

// session is a parsed document with its cursor context.
type session struct {
	tree     *syntax.Tree
	ctx      *template.Context
	rng      protocol.Range
	cfg      *config.Config
	provider *extract.Provider
}

func (e *Engine) open(ctx context.Context, req Request) (*session, error) {
	cfg, detector, provider := e.snapshot()

	docType := req.Type
	if docType == syntax.DocumentTypeUnknown {
		docType = detector.Detect(req.URI, req.LanguageID, req.Content)
	}
	if docType == syntax.DocumentTypeUnknown {
		return nil, errors.Wrapf(ErrNotATemplate, "%s", req.URI)
	}

	tree, err := syntax.Parse(ctx, []byte(req.Content), docType)
	if err != nil {
		return nil, err
	}

	tctx, err := template.ContextAt(tree, req.Position)
	if err != nil {
		tree.Close()
		return nil, err
	}

	rng := protocol.Range{Start: req.Position, End: req.Position}
	if req.Range != nil {
		rng = *req.Range
	}
	return &session{tree: tree, ctx: tctx, rng: rng, cfg: cfg, provider: provider}, nil
}

func (s *session) close() { s.tree.Close() }

func (s *session) single(uri string) *Action {
	result := s.provider.GenerateExtraction(s.ctx, s.rng, editorSettings(s.cfg.Editor), uri)
	if result == nil {
		return nil
	}
	return &Action{
		Title:         TitleExtract,
		ParameterName: result.ParameterName,
		Parameter:     result.ParameterDefinition,
		Edit:          s.provider.CreateWorkspaceEdit(uri, result),
	}
}

func (s *session) all(uri string) (*Action, error) {
	result := s.provider.GenerateAllOccurrencesExtraction(s.ctx, s.rng, editorSettings(s.cfg.Editor), uri)
	if result == nil {
		return nil, nil
	}
	edit, err := s.provider.CreateAllOccurrencesWorkspaceEdit(uri, result)
	if err != nil {
		return nil, err
	}
	return &Action{
		Title:          TitleExtractAllOccurrences,
		AllOccurrences: true,
		ParameterName:  result.ParameterName,
		Parameter:      result.ParameterDefinition,
		Edit:           edit,
	}, nil
}

// Actions returns the extractions available at req.Position: none, the
// single extraction, or both when the literal repeats and the all-occurrences
// action is enabled. Documents that are not templates yield no actions.
func (e *Engine) Actions(ctx context.Context, req Request) ([]Action, error) {
	s, err := e.open(ctx, req)
	if err != nil {
		if errors.Is(err, ErrNotATemplate) || errors.Is(err, protocol.ErrPositionOutOfRange) {
			return nil, nil
		}
		return nil, err
	}
	defer s.close()

	if !s.provider.CanExtract(s.ctx) {
		return nil, nil
	}

	single := s.single(req.URI)
	if single == nil {
		return nil, nil
	}
	actions := []Action{*single}

	if s.cfg.Extract.OfferAllOccurrences && s.provider.HasMultipleOccurrences(s.ctx) {
		all, err := s.all(req.URI)
		if err != nil {
			e.logger.Warn("all occurrences edit rejected", "uri", req.URI, "error", err)
		} else if all != nil {
			actions = append(actions, *all)
		}
	}
	return actions, nil
}

// Extract returns one extraction at req.Position, or ErrNothingToExtract.
func (e *Engine) Extract(ctx context.Context, req Request, allOccurrences bool) (*Action, error) {
	s, err := e.open(ctx, req)
	if err != nil {
		return nil, err
	}
	defer s.close()

	var action *Action
	if allOccurrences {
		action, err = s.all(req.URI)
		if err != nil {
			return nil, err
		}
	} else {
		action = s.single(req.URI)
	}
	if action == nil {
		return nil, errors.Wrapf(ErrNothingToExtract, "%s at %s", req.URI, req.Position)
	}
	return action, nil
}

// ExtractFile extracts at pos in the template at path. When write is set the
// edits are applied and the file is rewritten in place.
func (e *Engine) ExtractFile(ctx context.Context, path string, pos protocol.Position, allOccurrences, write bool) (*FileResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	uri := documents.URIFromPath(path)
	action, err := e.Extract(ctx, Request{URI: uri, Content: string(content), Position: pos}, allOccurrences)
	if err != nil {
		return nil, err
	}

	result := &FileResult{Action: *action, Path: path}
	if !write {
		return result, nil
	}

	updated, err := edits.Apply(string(content), action.Edit.Changes[uri])
	if err != nil {
		return nil, errors.Wrap(err, "failed to apply edits")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", path)
	}
	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", path)
	}
	result.Applied = true

	e.logger.Info("extracted parameter", "path", path, "parameter", action.ParameterName, "edits", len(action.Edit.Changes[uri]))
	return result, nil
}
