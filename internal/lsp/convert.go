package lsp

import (
	"github.com/samber/lo"
	lsp "github.com/tliron/glsp/protocol_3_16"

	"github.com/mvp-joe/cfn-refactor/internal/documents"
	"github.com/mvp-joe/cfn-refactor/internal/protocol"
	"github.com/mvp-joe/cfn-refactor/internal/refactor"
)

func fromPosition(p lsp.Position) protocol.Position {
	return protocol.Position{Line: int(p.Line), Character: int(p.Character)}
}

func fromRange(r lsp.Range) protocol.Range {
	return protocol.Range{Start: fromPosition(r.Start), End: fromPosition(r.End)}
}

func toPosition(p protocol.Position) lsp.Position {
	return lsp.Position{Line: lsp.UInteger(p.Line), Character: lsp.UInteger(p.Character)}
}

func toRange(r protocol.Range) lsp.Range {
	return lsp.Range{Start: toPosition(r.Start), End: toPosition(r.End)}
}

func toTextEdits(edits []protocol.TextEdit) []lsp.TextEdit {
	return lo.Map(edits, func(e protocol.TextEdit, _ int) lsp.TextEdit {
		return lsp.TextEdit{Range: toRange(e.Range), NewText: e.NewText}
	})
}

func toWorkspaceEdit(edit *protocol.WorkspaceEdit) *lsp.WorkspaceEdit {
	if edit == nil {
		return nil
	}
	return &lsp.WorkspaceEdit{
		Changes: lo.MapEntries(edit.Changes, func(uri string, edits []protocol.TextEdit) (lsp.DocumentUri, []lsp.TextEdit) {
			return lsp.DocumentUri(uri), toTextEdits(edits)
		}),
	}
}

func toCodeAction(a refactor.Action) lsp.CodeAction {
	kind := lsp.CodeActionKindRefactorExtract
	return lsp.CodeAction{
		Title: a.Title,
		Kind:  &kind,
		Edit:  toWorkspaceEdit(a.Edit),
	}
}

// toChange accepts both shapes glsp decodes content changes into.
func toChange(raw any) (documents.Change, bool) {
	switch c := raw.(type) {
	case lsp.TextDocumentContentChangeEvent:
		return rangedChange(c.Range, c.Text), true
	case *lsp.TextDocumentContentChangeEvent:
		return rangedChange(c.Range, c.Text), true
	case lsp.TextDocumentContentChangeEventWhole:
		return documents.Change{Text: c.Text}, true
	case *lsp.TextDocumentContentChangeEventWhole:
		return documents.Change{Text: c.Text}, true
	default:
		return documents.Change{}, false
	}
}

func rangedChange(r *lsp.Range, text string) documents.Change {
	if r == nil {
		return documents.Change{Text: text}
	}
	converted := fromRange(*r)
	return documents.Change{Range: &converted, Text: text}
}
