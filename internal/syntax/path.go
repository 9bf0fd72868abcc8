package syntax

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// PropertyPath resolves the chain of mapping keys and sequence indices that
// leads from the document root to n. isKey reports whether n sits in the key
// position of its nearest enclosing mapping entry.
func (t *Tree) PropertyPath(n *sitter.Node) (path []PathSegment, isKey bool) {
	if n == nil {
		return nil, false
	}

	nearestPair := true
	child := n
	for cur := n.Parent(); cur != nil; child, cur = cur, cur.Parent() {
		if pair, ok := t.Grammar.PairOf(cur, t.Source); ok {
			if nearestPair && Contains(pair.KeyNode, child) {
				isKey = true
			}
			nearestPair = false
			path = append(path, PathSegment{Key: pair.Key, Pair: pair.Node})
			continue
		}
		if t.Grammar.IsSequence(cur) {
			if idx := indexOfItem(t.Grammar.Items(cur), child); idx >= 0 {
				path = append(path, PathSegment{Index: idx, IsIndex: true})
			}
		}
	}

	// Segments were collected leaf first.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, isKey
}

// IsKeyPosition reports whether n is, or is inside, the key of its nearest mapping entry.
func (t *Tree) IsKeyPosition(n *sitter.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent() {
		parent := cur.Parent()
		if parent == nil {
			return false
		}
		if pair, ok := t.Grammar.PairOf(parent, t.Source); ok {
			return Contains(pair.KeyNode, n)
		}
	}
	return false
}

// indexOfItem finds the element whose span overlaps the ancestor we walked up from.
// Elements are unwrapped, so they may be narrower or wider than that ancestor.
func indexOfItem(items []*sitter.Node, child *sitter.Node) int {
	for i, item := range items {
		if item.StartByte() < child.EndByte() && child.StartByte() < item.EndByte() {
			return i
		}
		if item.StartByte() == child.StartByte() && item.EndByte() == child.EndByte() {
			return i
		}
	}
	return -1
}
