// Package edits assembles text edits into validated workspace edits and
// applies them to document text.
package edits

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/mvp-joe/cfn-refactor/internal/protocol"
)

var (
	// ErrInvalidWorkspaceEdit marks every structural validation failure.
	ErrInvalidWorkspaceEdit = errors.New("invalid workspace edit")

	// ErrConflictingEdits marks overlapping edits within one document.
	ErrConflictingEdits = errors.New("conflicting text edits")
)

// CreateWorkspaceEdit wraps edits for one document as-is. The caller must
// supply edits that do not overlap; no sorting or validation happens here.
func CreateWorkspaceEdit(uri string, edits ...protocol.TextEdit) *protocol.WorkspaceEdit {
	return &protocol.WorkspaceEdit{
		Changes: map[string][]protocol.TextEdit{
			uri: slices.Clone(edits),
		},
	}
}

// CreateWorkspaceEditFromEdits orders edits for bottom-up application and
// validates the result.
func CreateWorkspaceEditFromEdits(uri string, edits []protocol.TextEdit) (*protocol.WorkspaceEdit, error) {
	edit := &protocol.WorkspaceEdit{
		Changes: map[string][]protocol.TextEdit{
			uri: SortForApply(edits),
		},
	}
	if err := ValidateWorkspaceEdit(edit); err != nil {
		return nil, err
	}
	return edit, nil
}

// SortForApply returns a copy of edits ordered by descending start position.
func SortForApply(edits []protocol.TextEdit) []protocol.TextEdit {
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, protocol.CompareForApply)
	return sorted
}

// MergeWorkspaceEdits unions the edits every input holds for uri, then orders
// and validates them. Edits for other documents are dropped.
func MergeWorkspaceEdits(uri string, inputs ...*protocol.WorkspaceEdit) (*protocol.WorkspaceEdit, error) {
	var merged []protocol.TextEdit
	for _, in := range inputs {
		if in == nil {
			continue
		}
		merged = append(merged, in.Changes[uri]...)
	}
	return CreateWorkspaceEditFromEdits(uri, merged)
}

// ValidateWorkspaceEdit rejects edits that could not be applied safely:
// missing changes, empty document keys, empty edit lists, negative
// positions, inverted ranges and overlapping edits.
func ValidateWorkspaceEdit(edit *protocol.WorkspaceEdit) error {
	if edit == nil || edit.Changes == nil {
		return errors.Mark(errors.New("workspace edit has no changes"), ErrInvalidWorkspaceEdit)
	}

	for uri, edits := range edit.Changes {
		if uri == "" {
			return errors.Mark(errors.New("workspace edit has an empty document uri"), ErrInvalidWorkspaceEdit)
		}
		if len(edits) == 0 {
			return errors.Mark(errors.Newf("workspace edit for %s has no text edits", uri), ErrInvalidWorkspaceEdit)
		}
		for i, e := range edits {
			if err := validateRange(e.Range); err != nil {
				return errors.Mark(errors.Wrapf(err, "edit %d for %s", i, uri), ErrInvalidWorkspaceEdit)
			}
		}
		if err := checkOverlaps(edits); err != nil {
			return err
		}
	}
	return nil
}

func validateRange(r protocol.Range) error {
	for _, p := range []protocol.Position{r.Start, r.End} {
		if p.Line < 0 || p.Character < 0 {
			return errors.Newf("negative position %s in range %s", p, r)
		}
	}
	if protocol.ComparePositions(r.End, r.Start) < 0 {
		return errors.Newf("range end precedes start: %s", r)
	}
	return nil
}

func checkOverlaps(edits []protocol.TextEdit) error {
	for i := 0; i < len(edits); i++ {
		for j := i + 1; j < len(edits); j++ {
			a, b := edits[i].Range, edits[j].Range
			if protocol.Overlaps(a, b) {
				err := errors.Newf("Conflicting text edits detected: %s overlaps %s", a, b)
				return errors.Mark(errors.Mark(err, ErrConflictingEdits), ErrInvalidWorkspaceEdit)
			}
		}
	}
	return nil
}
