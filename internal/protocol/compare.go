package protocol

// ComparePositions orders positions by line, then character.
// It returns -1 if a is before b, 1 if a is after b, and 0 if they are equal.
func ComparePositions(a, b Position) int {
	switch {
	case a.Line < b.Line:
		return -1
	case a.Line > b.Line:
		return 1
	case a.Character < b.Character:
		return -1
	case a.Character > b.Character:
		return 1
	default:
		return 0
	}
}

// CompareForApply orders edits so that applying them in sequence never shifts
// the coordinates of an edit that comes later: descending start line, then
// descending start character.
func CompareForApply(a, b TextEdit) int {
	return ComparePositions(b.Range.Start, a.Range.Start)
}

// Overlaps reports whether two ranges conflict. Ranges that merely touch do
// not overlap, but two insertions at the same position always do since the
// order of their inserted text would be undefined.
func Overlaps(a, b Range) bool {
	if a.IsEmpty() && b.IsEmpty() {
		return a.Start == b.Start
	}
	if ComparePositions(a.End, b.Start) <= 0 || ComparePositions(b.End, a.Start) <= 0 {
		return false
	}
	return true
}
