package extract

// Implementation Plan:
// 1. Normalize the node so string-content tokens widen to the quoted string
// 2. Classify through the grammar adapter and convert to a Go value
//    (numbers that fail to parse are not literals)
// 3. Arrays collect primitive children, skipping calls, mappings and nested arrays
// 4. Reference kind walks ancestors to the root, memoized per node id

import (
	"strconv"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/cfn-refactor/internal/cfn"
	"github.com/mvp-joe/cfn-refactor/internal/syntax"
)

// LiteralValueDetector classifies syntax nodes as literals. A detector caches
// reference lookups by node id, so use one per tree.
type LiteralValueDetector struct {
	refs map[uintptr]cfn.ReferenceKind
}

// NewLiteralValueDetector returns a detector with an empty reference cache.
func NewLiteralValueDetector() *LiteralValueDetector {
	return &LiteralValueDetector{refs: make(map[uintptr]cfn.ReferenceKind)}
}

// DetectLiteralValue returns the literal at node, or nil when node is not one.
func (d *LiteralValueDetector) DetectLiteralValue(tree *syntax.Tree, node *sitter.Node) *LiteralValueInfo {
	if tree == nil || node == nil || node.IsError() || node.IsMissing() {
		return nil
	}

	n := tree.Grammar.Normalize(node)
	value, typ, ok := d.literalOf(tree, n)
	if !ok {
		return nil
	}

	return &LiteralValueInfo{
		Value:       value,
		Type:        typ,
		Range:       tree.Range(n),
		IsReference: d.ReferenceKind(tree, n) != cfn.ReferenceNone,
		Node:        n,
	}
}

func (d *LiteralValueDetector) literalOf(tree *syntax.Tree, n *sitter.Node) (any, LiteralType, bool) {
	c := tree.Grammar.Classify(n, tree.Source)
	switch c.Variant {
	case syntax.VariantString:
		return c.Text, LiteralString, true
	case syntax.VariantNumber:
		f, err := strconv.ParseFloat(c.Text, 64)
		if err != nil {
			return nil, 0, false
		}
		return f, LiteralNumber, true
	case syntax.VariantBoolean:
		return c.Bool, LiteralBoolean, true
	case syntax.VariantArray:
		return d.arrayValues(tree, c.Elements), LiteralArray, true
	default:
		return nil, 0, false
	}
}

// arrayValues keeps only the primitive elements of an array.
func (d *LiteralValueDetector) arrayValues(tree *syntax.Tree, elements []*sitter.Node) []any {
	g := tree.Grammar
	values := make([]any, 0, len(elements))
	for _, el := range elements {
		if _, isCall := g.IntrinsicName(el, tree.Source); isCall || g.IsMapping(el) || g.IsSequence(el) {
			continue
		}
		value, typ, ok := d.literalOf(tree, g.Normalize(el))
		if !ok || typ == LiteralArray {
			continue
		}
		values = append(values, value)
	}
	return values
}

// ReferenceKind reports whether n is, or sits anywhere inside, a Ref, GetAtt
// or Condition construct. Other intrinsic functions are not references.
func (d *LiteralValueDetector) ReferenceKind(tree *syntax.Tree, n *sitter.Node) cfn.ReferenceKind {
	var chain []uintptr
	kind := cfn.ReferenceNone

	for cur := n; cur != nil; cur = cur.Parent() {
		if cached, ok := d.refs[cur.Id()]; ok {
			kind = cached
			break
		}
		chain = append(chain, cur.Id())
		if k := ownReferenceKind(tree, cur); k != cfn.ReferenceNone {
			kind = k
			break
		}
	}

	for _, id := range chain {
		d.refs[id] = kind
	}
	return kind
}

// ownReferenceKind looks at n alone, ignoring its ancestors.
func ownReferenceKind(tree *syntax.Tree, n *sitter.Node) cfn.ReferenceKind {
	if name, ok := tree.Grammar.IntrinsicName(n, tree.Source); ok {
		if k := cfn.ReferenceKindOf(name); k != cfn.ReferenceNone {
			return k
		}
	}
	if key, ok := tree.Grammar.BlockPairKey(n, tree.Source); ok {
		return cfn.ReferenceKindOf(key)
	}
	return cfn.ReferenceNone
}
