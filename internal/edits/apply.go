package edits

import (
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/mvp-joe/cfn-refactor/internal/protocol"
)

type resolvedEdit struct {
	start, end int
	text       string
}

// Apply applies edits to content as one transaction. Positions refer to the
// original content; edits are validated first and nothing is applied if any
// edit is invalid.
func Apply(content string, edits []protocol.TextEdit) (string, error) {
	if len(edits) == 0 {
		return content, nil
	}
	if err := ValidateWorkspaceEdit(CreateWorkspaceEdit("inline", edits...)); err != nil {
		return "", err
	}

	lines := protocol.NewLineIndex(content)
	resolved := make([]resolvedEdit, 0, len(edits))
	for _, e := range SortForApply(edits) {
		start, err := lines.OffsetAt(e.Range.Start)
		if err != nil {
			return "", errors.Wrapf(err, "edit at %s", e.Range)
		}
		end, err := lines.OffsetAt(e.Range.End)
		if err != nil {
			return "", errors.Wrapf(err, "edit at %s", e.Range)
		}
		resolved = append(resolved, resolvedEdit{start: start, end: end, text: e.NewText})
	}

	// Descending by start. At a shared start the replacement goes first so an
	// insertion there lands before the replaced text whatever the input order.
	slices.SortStableFunc(resolved, func(a, b resolvedEdit) int {
		if a.start != b.start {
			return b.start - a.start
		}
		return b.end - a.end
	})

	var b strings.Builder
	b.Grow(len(content))
	cursor := len(content)
	parts := make([]string, 0, 2*len(resolved)+1)
	for _, r := range resolved {
		parts = append(parts, content[r.end:cursor], r.text)
		cursor = r.start
	}
	parts = append(parts, content[:cursor])
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteString(parts[i])
	}
	return b.String(), nil
}
