package protocol

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// ErrPositionOutOfRange indicates a position or offset outside the document.
var ErrPositionOutOfRange = errors.New("position out of range")

// LineIndex converts between byte offsets and LSP positions for one text snapshot.
type LineIndex struct {
	text       string
	lineStarts []int
}

// NewLineIndex indexes the line starts of text. Lines are separated by "\n";
// a preceding "\r" stays part of the line it terminates.
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, lineStarts: starts}
}

// LineCount returns the number of lines, counting a trailing empty line.
func (li *LineIndex) LineCount() int {
	return len(li.lineStarts)
}

// LineStart returns the byte offset where line begins.
func (li *LineIndex) LineStart(line int) (int, error) {
	if line < 0 || line >= len(li.lineStarts) {
		return 0, errors.Wrapf(ErrPositionOutOfRange, "line %d (document has %d lines)", line, len(li.lineStarts))
	}
	return li.lineStarts[line], nil
}

// lineEnd returns the byte offset of the end of line's content, excluding the newline.
func (li *LineIndex) lineEnd(line int) int {
	if line+1 < len(li.lineStarts) {
		return li.lineStarts[line+1] - 1
	}
	return len(li.text)
}

// PositionAt converts a byte offset into a position.
func (li *LineIndex) PositionAt(offset int) (Position, error) {
	if offset < 0 || offset > len(li.text) {
		return Position{}, errors.Wrapf(ErrPositionOutOfRange, "offset %d (document length %d)", offset, len(li.text))
	}
	line := sort.Search(len(li.lineStarts), func(i int) bool { return li.lineStarts[i] > offset }) - 1
	return Position{Line: line, Character: utf16Len(li.text[li.lineStarts[line]:offset])}, nil
}

// OffsetAt converts a position into a byte offset. A character past the end
// of its line is clamped to the line end.
func (li *LineIndex) OffsetAt(pos Position) (int, error) {
	if pos.Character < 0 {
		return 0, errors.Wrapf(ErrPositionOutOfRange, "negative character in %s", pos)
	}
	start, err := li.LineStart(pos.Line)
	if err != nil {
		return 0, err
	}
	end := li.lineEnd(pos.Line)

	units := 0
	offset := start
	for offset < end && units < pos.Character {
		r, size := utf8.DecodeRuneInString(li.text[offset:])
		units += utf16.RuneLen(r)
		offset += size
	}
	return offset, nil
}

// PointPosition converts a tree-sitter style row and byte column into a position.
func (li *LineIndex) PointPosition(row, byteColumn int) (Position, error) {
	start, err := li.LineStart(row)
	if err != nil {
		return Position{}, err
	}
	return li.PositionAt(start + byteColumn)
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if size := utf16.RuneLen(r); size > 0 {
			n += size
		} else {
			n++
		}
	}
	return n
}
