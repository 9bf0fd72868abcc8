package lsp

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/tliron/glsp"
	lsp "github.com/tliron/glsp/protocol_3_16"

	"github.com/mvp-joe/cfn-refactor/internal/documents"
	"github.com/mvp-joe/cfn-refactor/internal/logger"
	"github.com/mvp-joe/cfn-refactor/internal/refactor"
)

// Handler implements the LSP methods the server registers.
type Handler struct {
	engine  *refactor.Engine
	docs    *documents.Store
	logger  *log.Logger
	version string
}

// NewHandler creates a handler. A nil logger discards output.
func NewHandler(engine *refactor.Engine, docs *documents.Store, l *log.Logger, version string) *Handler {
	if l == nil {
		l = logger.Discard()
	}
	return &Handler{engine: engine, docs: docs, logger: l, version: version}
}

// Initialize advertises incremental sync and refactor.extract code actions.
func (h *Handler) Initialize(_ *glsp.Context, params *lsp.InitializeParams) (any, error) {
	if params.ClientInfo != nil {
		h.logger.Info("client connected", "client", params.ClientInfo.Name)
	}

	syncKind := lsp.TextDocumentSyncKindIncremental
	capabilities := lsp.ServerCapabilities{
		TextDocumentSync: lsp.TextDocumentSyncOptions{
			OpenClose: lo.ToPtr(true),
			Change:    &syncKind,
		},
		CodeActionProvider: lsp.CodeActionOptions{
			CodeActionKinds: []lsp.CodeActionKind{lsp.CodeActionKindRefactorExtract},
		},
	}

	return lsp.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &lsp.InitializeResultServerInfo{
			Name:    Name,
			Version: lo.ToPtr(h.version),
		},
	}, nil
}

// Initialized is a no-op acknowledgement.
func (h *Handler) Initialized(_ *glsp.Context, _ *lsp.InitializedParams) error {
	return nil
}

// Shutdown logs how many documents were still open.
func (h *Handler) Shutdown(_ *glsp.Context) error {
	h.logger.Info("shutting down", "open_documents", h.docs.Count())
	return nil
}

// SetTrace records the client's trace level.
func (h *Handler) SetTrace(_ *glsp.Context, params *lsp.SetTraceParams) error {
	lsp.SetTraceValue(params.Value)
	return nil
}

func (h *Handler) TextDocumentDidOpen(_ *glsp.Context, params *lsp.DidOpenTextDocumentParams) error {
	item := params.TextDocument
	doc := h.docs.Open(item.URI, item.LanguageID, int32(item.Version), item.Text)
	h.logger.Debug("document opened", "uri", doc.URI, "type", doc.Type)
	return nil
}

func (h *Handler) TextDocumentDidChange(_ *glsp.Context, params *lsp.DidChangeTextDocumentParams) error {
	changes := lo.FilterMap(params.ContentChanges, func(raw any, _ int) (documents.Change, bool) {
		return toChange(raw)
	})
	_, err := h.docs.Apply(params.TextDocument.URI, int32(params.TextDocument.Version), changes)
	if err != nil {
		h.logger.Warn("failed to apply document change", "uri", params.TextDocument.URI, "error", err)
	}
	return err
}

func (h *Handler) TextDocumentDidClose(_ *glsp.Context, params *lsp.DidCloseTextDocumentParams) error {
	h.docs.Close(params.TextDocument.URI)
	return nil
}

// TextDocumentCodeAction offers "Extract to parameter" and, when the literal
// repeats, "Extract all occurrences to parameter" for the literal at the
// start of the requested range.
func (h *Handler) TextDocumentCodeAction(_ *glsp.Context, params *lsp.CodeActionParams) (any, error) {
	if !wantsExtract(params.Context.Only) {
		return nil, nil
	}

	doc, ok := h.docs.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	selection := fromRange(params.Range)
	actions, err := h.engine.Actions(context.Background(), refactor.Request{
		URI:        doc.URI,
		LanguageID: doc.LanguageID,
		Content:    doc.Text,
		Type:       doc.Type,
		Position:   selection.Start,
		Range:      &selection,
	})
	if err != nil {
		h.logger.Debug("code action failed", "uri", doc.URI, "error", err)
		return nil, nil
	}
	if len(actions) == 0 {
		return nil, nil
	}

	return lo.Map(actions, func(a refactor.Action, _ int) lsp.CodeAction {
		return toCodeAction(a)
	}), nil
}

// wantsExtract reports whether a code action filter admits refactor.extract.
// An empty filter admits everything.
func wantsExtract(only []lsp.CodeActionKind) bool {
	if len(only) == 0 {
		return true
	}
	return lo.ContainsBy(only, func(kind lsp.CodeActionKind) bool {
		k := string(kind)
		return k == string(lsp.CodeActionKindRefactorExtract) ||
			strings.HasPrefix(string(lsp.CodeActionKindRefactorExtract), k+".")
	})
}
