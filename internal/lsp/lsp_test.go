package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	lsp "github.com/tliron/glsp/protocol_3_16"

	"github.com/mvp-joe/cfn-refactor/internal/config"
	"github.com/mvp-joe/cfn-refactor/internal/refactor"
)

// Test Plan for LSP Handler:
// - Initialize advertises incremental sync and refactor.extract code actions
// - didOpen + codeAction on a repeated literal offers both extract actions
// - Code action edits are converted to LSP ranges under the document URI
// - didChange applies incremental and full changes before the next codeAction
// - The Only filter suppresses actions for other kinds and admits "refactor"
// - Unknown and closed documents yield no actions

const uri = "file:///stack/template.yaml"

const templateYAML = `Resources:
  BucketA:
    Type: AWS::S3::Bucket
    Properties:
      BucketName: my-test-bucket
  BucketB:
    Type: AWS::S3::Bucket
    Properties:
      BucketName: my-test-bucket
`

func newHandler(t *testing.T) *Handler {
	t.Helper()
	engine, err := refactor.NewEngine(config.Default(), nil)
	require.NoError(t, err)
	t.Cleanup(engine.Close)
	return NewServer(engine, nil, "test").GetHandler()
}

func pos(line, character int) lsp.Position {
	return lsp.Position{Line: lsp.UInteger(line), Character: lsp.UInteger(character)}
}

func open(t *testing.T, h *Handler, text string) {
	t.Helper()
	require.NoError(t, h.TextDocumentDidOpen(&glsp.Context{}, &lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: uri, LanguageID: "yaml", Version: 1, Text: text},
	}))
}

func codeActions(t *testing.T, h *Handler, at lsp.Position, only ...lsp.CodeActionKind) []lsp.CodeAction {
	t.Helper()
	result, err := h.TextDocumentCodeAction(&glsp.Context{}, &lsp.CodeActionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri},
		Range:        lsp.Range{Start: at, End: at},
		Context:      lsp.CodeActionContext{Only: only},
	})
	require.NoError(t, err)
	if result == nil {
		return nil
	}
	actions, ok := result.([]lsp.CodeAction)
	require.True(t, ok, "unexpected result type %T", result)
	return actions
}

func TestInitialize(t *testing.T) {
	t.Parallel()
	h := newHandler(t)

	result, err := h.Initialize(&glsp.Context{}, &lsp.InitializeParams{})
	require.NoError(t, err)

	res, ok := result.(lsp.InitializeResult)
	require.True(t, ok)
	require.NotNil(t, res.ServerInfo)
	assert.Equal(t, Name, res.ServerInfo.Name)

	sync, ok := res.Capabilities.TextDocumentSync.(lsp.TextDocumentSyncOptions)
	require.True(t, ok)
	require.NotNil(t, sync.Change)
	assert.Equal(t, lsp.TextDocumentSyncKindIncremental, *sync.Change)

	actions, ok := res.Capabilities.CodeActionProvider.(lsp.CodeActionOptions)
	require.True(t, ok)
	assert.Equal(t, []lsp.CodeActionKind{lsp.CodeActionKindRefactorExtract}, actions.CodeActionKinds)

	assert.NoError(t, h.Initialized(&glsp.Context{}, &lsp.InitializedParams{}))
	assert.NoError(t, h.SetTrace(&glsp.Context{}, &lsp.SetTraceParams{Value: lsp.TraceValueOff}))
	assert.NoError(t, h.Shutdown(&glsp.Context{}))
}

func TestCodeAction_RepeatedLiteral(t *testing.T) {
	t.Parallel()
	h := newHandler(t)
	open(t, h, templateYAML)

	actions := codeActions(t, h, pos(4, 20))
	require.Len(t, actions, 2)

	assert.Equal(t, refactor.TitleExtract, actions[0].Title)
	assert.Equal(t, refactor.TitleExtractAllOccurrences, actions[1].Title)
	for _, a := range actions {
		require.NotNil(t, a.Kind)
		assert.Equal(t, lsp.CodeActionKindRefactorExtract, *a.Kind)
		require.NotNil(t, a.Edit)
	}

	single := actions[0].Edit.Changes[uri]
	require.Len(t, single, 2)
	assert.Equal(t, lsp.TextEdit{
		Range:   lsp.Range{Start: pos(4, 18), End: pos(4, 32)},
		NewText: "!Ref BucketABucketName",
	}, single[1])

	assert.Len(t, actions[1].Edit.Changes[uri], 3)
}

func TestCodeAction_AfterChanges(t *testing.T) {
	t.Parallel()
	h := newHandler(t)
	open(t, h, templateYAML)

	// Rename the second bucket's value so the literal no longer repeats.
	rng := lsp.Range{Start: pos(8, 18), End: pos(8, 32)}
	require.NoError(t, h.TextDocumentDidChange(&glsp.Context{}, &lsp.DidChangeTextDocumentParams{
		TextDocument:   lsp.VersionedTextDocumentIdentifier{TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: uri}, Version: 2},
		ContentChanges: []any{lsp.TextDocumentContentChangeEvent{Range: &rng, Text: "other-bucket"}},
	}))

	actions := codeActions(t, h, pos(4, 20))
	require.Len(t, actions, 1)
	assert.Equal(t, refactor.TitleExtract, actions[0].Title)

	require.NoError(t, h.TextDocumentDidChange(&glsp.Context{}, &lsp.DidChangeTextDocumentParams{
		TextDocument:   lsp.VersionedTextDocumentIdentifier{TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: uri}, Version: 3},
		ContentChanges: []any{lsp.TextDocumentContentChangeEventWhole{Text: "Resources:\n  A:\n    Type: X\n"}},
	}))
	assert.Empty(t, codeActions(t, h, pos(4, 20)))
}

func TestCodeAction_OnlyFilter(t *testing.T) {
	t.Parallel()
	h := newHandler(t)
	open(t, h, templateYAML)

	assert.Empty(t, codeActions(t, h, pos(4, 20), lsp.CodeActionKindQuickFix))
	assert.Len(t, codeActions(t, h, pos(4, 20), lsp.CodeActionKindRefactor), 2)
	assert.Len(t, codeActions(t, h, pos(4, 20), lsp.CodeActionKindRefactorExtract), 2)
}

func TestCodeAction_UnknownAndClosedDocuments(t *testing.T) {
	t.Parallel()
	h := newHandler(t)

	assert.Empty(t, codeActions(t, h, pos(4, 20)))

	open(t, h, templateYAML)
	require.NoError(t, h.TextDocumentDidClose(&glsp.Context{}, &lsp.DidCloseTextDocumentParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri},
	}))
	assert.Empty(t, codeActions(t, h, pos(4, 20)))
}

func TestChangeForUnknownDocument(t *testing.T) {
	t.Parallel()
	h := newHandler(t)

	err := h.TextDocumentDidChange(&glsp.Context{}, &lsp.DidChangeTextDocumentParams{
		TextDocument:   lsp.VersionedTextDocumentIdentifier{TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: "file:///nope.yaml"}, Version: 1},
		ContentChanges: []any{lsp.TextDocumentContentChangeEventWhole{Text: "x"}},
	})
	assert.Error(t, err)
}
