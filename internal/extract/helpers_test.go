package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cfn-refactor/internal/syntax"
	"github.com/mvp-joe/cfn-refactor/internal/template"
)

func parseTemplate(t *testing.T, src string, docType syntax.DocumentType) *syntax.Tree {
	t.Helper()
	tree, err := syntax.Parse(context.Background(), []byte(src), docType)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

// contextAt resolves the cursor context at the nth (0-based) occurrence of needle.
func contextAt(t *testing.T, tree *syntax.Tree, needle string, nth int) *template.Context {
	t.Helper()
	src := tree.Content()
	offset := -1
	for i, from := 0, 0; i <= nth; i++ {
		idx := strings.Index(src[from:], needle)
		require.GreaterOrEqual(t, idx, 0, "occurrence %d of %q not found", i, needle)
		offset = from + idx
		from = offset + len(needle)
	}
	pos, err := tree.Lines.PositionAt(offset)
	require.NoError(t, err)
	ctx, err := template.ContextAt(tree, pos)
	require.NoError(t, err)
	return ctx
}

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	analyzer, err := template.NewStructureAnalyzer(16)
	require.NoError(t, err)
	t.Cleanup(analyzer.Close)
	return NewProvider(analyzer)
}
