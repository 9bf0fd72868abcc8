package syntax

// Implementation Plan:
// 1. Parse - pick the grammar for the document type and run tree-sitter over the source
// 2. Tree - owns the tree-sitter tree, source bytes, line index and grammar adapter
// 3. Text/Range/NodeAt - node text, UTF-16 ranges and cursor lookup
// 4. Walk/Contains - traversal helpers shared by section search and the occurrence finder

import (
	"context"

	"github.com/cockroachdb/errors"
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/cfn-refactor/internal/protocol"
)

// Tree is a parsed template snapshot. It is read-only after Parse and must be
// closed when no longer needed.
type Tree struct {
	tree    *sitter.Tree
	Root    *sitter.Node
	Source  []byte
	Type    DocumentType
	Grammar Grammar
	Lines   *protocol.LineIndex
}

// Parse parses source as a template of the given document type.
func Parse(ctx context.Context, source []byte, docType DocumentType) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grammar, err := GrammarFor(docType)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(grammar.Language()); err != nil {
		return nil, errors.Wrapf(err, "failed to load %s grammar", docType)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, errors.Wrapf(ErrParseFailed, "%s document of %d bytes", docType, len(source))
	}

	return &Tree{
		tree:    tree,
		Root:    tree.RootNode(),
		Source:  source,
		Type:    docType,
		Grammar: grammar,
		Lines:   protocol.NewLineIndex(string(source)),
	}, nil
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Content returns the full document text.
func (t *Tree) Content() string {
	return string(t.Source)
}

// Text returns the source text covered by n.
func (t *Tree) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(t.Source[n.StartByte():n.EndByte()])
}

// Range returns the LSP range of n.
func (t *Tree) Range(n *sitter.Node) protocol.Range {
	if n == nil {
		return protocol.Range{}
	}
	return protocol.Range{
		Start: t.positionAt(int(n.StartByte())),
		End:   t.positionAt(int(n.EndByte())),
	}
}

// positionAt converts an offset taken from the tree itself, which is always
// within the source.
func (t *Tree) positionAt(offset int) protocol.Position {
	pos, err := t.Lines.PositionAt(offset)
	if err != nil {
		return protocol.Position{}
	}
	return pos
}

// NodeAt returns the smallest named node covering pos.
func (t *Tree) NodeAt(pos protocol.Position) (*sitter.Node, error) {
	offset, err := t.Lines.OffsetAt(pos)
	if err != nil {
		return nil, err
	}
	node := t.Root.NamedDescendantForByteRange(uint(offset), uint(offset))
	if node == nil {
		return nil, errors.Wrapf(protocol.ErrPositionOutOfRange, "no node at %s", pos)
	}
	return node, nil
}

// Walk visits nodes in pre-order. Returning false from visit skips the node's children.
func Walk(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		Walk(node.Child(i), visit)
	}
}

// Contains reports whether inner lies within outer.
func Contains(outer, inner *sitter.Node) bool {
	if outer == nil || inner == nil {
		return false
	}
	return outer.StartByte() <= inner.StartByte() && inner.EndByte() <= outer.EndByte()
}

// SameNode reports whether a and b are the same node of one tree.
func SameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Id() == b.Id()
}

// namedChildren returns the named children of n, skipping comments.
func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// childrenOfKind returns the direct children of n with the given kind.
func childrenOfKind(n *sitter.Node, kind string) []*sitter.Node {
	if n == nil {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child != nil && child.Kind() == kind {
			out = append(out, child)
		}
	}
	return out
}
