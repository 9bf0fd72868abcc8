package syntax

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// FindTopLevelSections locates the named top-level sections with a search
// bounded by the grammar's section depth. The search does not descend into a
// matched entry, and stops once every name has been found.
func (t *Tree) FindTopLevelSections(names ...string) map[string]Section {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	found := make(map[string]Section, len(names))
	maxDepth := t.Grammar.SectionSearchDepth()

	var search func(n *sitter.Node, depth int)
	search = func(n *sitter.Node, depth int) {
		if n == nil || depth > maxDepth || len(found) == len(wanted) {
			return
		}
		if pair, ok := t.Grammar.PairOf(n, t.Source); ok {
			if wanted[pair.Key] {
				if _, seen := found[pair.Key]; !seen {
					found[pair.Key] = Section{Name: pair.Key, Pair: pair}
				}
			}
			// Section entries only occur at one level; nested entries are never sections.
			return
		}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			search(n.NamedChild(i), depth+1)
		}
	}
	search(t.Root, 0)

	return found
}

// TopLevelPairs returns the entries of the root mapping in document order.
func (t *Tree) TopLevelPairs() []Pair {
	root := t.RootMapping()
	if root == nil {
		return nil
	}
	return t.Grammar.Pairs(root, t.Source)
}

// RootMapping returns the mapping node holding the template's top-level entries.
func (t *Tree) RootMapping() *sitter.Node {
	var mapping *sitter.Node
	Walk(t.Root, func(n *sitter.Node) bool {
		switch {
		case mapping != nil:
			return false
		case t.Grammar.IsMapping(n):
			mapping = t.Grammar.Unwrap(n)
			return false
		case t.Grammar.IsSequence(n):
			return false
		}
		return true
	})
	return mapping
}
