package extract

import (
	"slices"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/cfn-refactor/internal/cfn"
	"github.com/mvp-joe/cfn-refactor/internal/protocol"
	"github.com/mvp-joe/cfn-refactor/internal/syntax"
)

// FindAllOccurrences returns the ranges of every non-reference literal under
// Resources and Outputs equal to target, in document order. Mapping keys are
// never matched, and the walk does not descend into a matched literal.
func FindAllOccurrences(tree *syntax.Tree, detector *LiteralValueDetector, target any, targetType LiteralType) []protocol.Range {
	if tree == nil {
		return nil
	}
	if detector == nil {
		detector = NewLiteralValueDetector()
	}

	g := tree.Grammar
	var ranges []protocol.Range

	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if pair, ok := g.PairOf(n, tree.Source); ok {
			visit(pair.Value)
			return
		}
		// Tokens that widen to their parent were already judged with it.
		if syntax.SameNode(g.Normalize(n), n) {
			if info := detector.DetectLiteralValue(tree, n); info != nil {
				if !info.IsReference && info.Type == targetType && literalEqual(info.Value, target) {
					ranges = append(ranges, info.Range)
					return
				}
			}
		}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			visit(n.NamedChild(i))
		}
	}

	sections := tree.FindTopLevelSections(cfn.ExtractableSections...)
	for _, name := range cfn.ExtractableSections {
		if section, ok := sections[name]; ok {
			visit(section.Pair.Value)
		}
	}

	slices.SortFunc(ranges, func(a, b protocol.Range) int {
		return protocol.ComparePositions(a.Start, b.Start)
	})
	return ranges
}

// literalEqual compares detector values; arrays compare element by element.
func literalEqual(a, b any) bool {
	as, aIsSlice := a.([]any)
	bs, bIsSlice := b.([]any)
	if aIsSlice || bIsSlice {
		return aIsSlice && bIsSlice && slices.Equal(as, bs)
	}
	return a == b
}
