package template

import (
	"github.com/cockroachdb/errors"
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/cfn-refactor/internal/protocol"
	"github.com/mvp-joe/cfn-refactor/internal/syntax"
)

// Context describes what sits under the cursor in a template: the syntax
// node, the property path leading to it and the entity it belongs to.
type Context struct {
	Tree         *syntax.Tree
	SyntaxNode   *sitter.Node
	DocumentType syntax.DocumentType
	Position     protocol.Position

	// Section is the top-level section the node belongs to, e.g. "Resources".
	Section string

	// LogicalID is the resource, output or parameter name owning the node.
	LogicalID string

	PropertyPath []syntax.PathSegment

	isKey bool
}

// ContextAt resolves the context of the node under pos.
func ContextAt(tree *syntax.Tree, pos protocol.Position) (*Context, error) {
	if tree == nil {
		return nil, errors.New("nil syntax tree")
	}
	node, err := tree.NodeAt(pos)
	if err != nil {
		return nil, err
	}
	ctx := NewContext(tree, node)
	ctx.Position = pos
	return ctx, nil
}

// NewContext builds the context of a specific node.
func NewContext(tree *syntax.Tree, node *sitter.Node) *Context {
	path, isKey := tree.PropertyPath(node)

	ctx := &Context{
		Tree:         tree,
		SyntaxNode:   node,
		DocumentType: tree.Type,
		PropertyPath: path,
		isKey:        isKey,
	}
	if node != nil {
		ctx.Position = tree.Range(node).Start
	}
	if len(path) > 0 && !path[0].IsIndex {
		ctx.Section = path[0].Key
	}
	if len(path) > 1 && !path[1].IsIndex {
		ctx.LogicalID = path[1].Key
	}
	return ctx
}

// IsValue reports whether the cursor is on a value rather than a mapping key.
func (c *Context) IsValue() bool {
	return c.SyntaxNode != nil && !c.isKey
}

// IsKey reports whether the cursor is on a mapping key.
func (c *Context) IsKey() bool {
	return c.isKey
}

// PropertyName returns the innermost property key below the entity, skipping
// sequence indices. It is empty when the node is directly under the entity.
func (c *Context) PropertyName() string {
	for i := len(c.PropertyPath) - 1; i >= 2; i-- {
		if seg := c.PropertyPath[i]; !seg.IsIndex {
			return seg.Key
		}
	}
	return ""
}

// RootEntityText returns the source text of the entity (resource, output, ...) owning the node.
func (c *Context) RootEntityText() string {
	if len(c.PropertyPath) < 2 || c.PropertyPath[1].Pair == nil {
		return ""
	}
	return c.Tree.Text(c.PropertyPath[1].Pair)
}

// DocumentText returns the whole template text.
func (c *Context) DocumentText() string {
	return c.Tree.Content()
}

// PathString renders the property path for logs and tool output.
func (c *Context) PathString() string {
	return syntax.FormatPath(c.PropertyPath)
}
