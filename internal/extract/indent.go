package extract

import (
	"strings"

	"github.com/mvp-joe/cfn-refactor/internal/syntax"
)

const defaultTabSize = 2

// indentUnit returns one level of indentation for generated text. With
// DetectIndentation set, the document's own smallest indentation wins over
// the configured tab size.
func indentUnit(docType syntax.DocumentType, settings EditorSettings, content string) string {
	size := settings.TabSize
	if size <= 0 {
		size = defaultTabSize
	}
	useTabs := docType == syntax.DocumentTypeJSON && !settings.InsertSpaces

	if settings.DetectIndentation {
		if detected, tabs, ok := detectIndent(content); ok {
			if tabs && docType == syntax.DocumentTypeJSON {
				return "\t"
			}
			if !tabs {
				return strings.Repeat(" ", detected)
			}
		}
	}

	if useTabs {
		return "\t"
	}
	return strings.Repeat(" ", size)
}

// detectIndent finds the smallest positive leading indentation among
// non-blank lines. tabs is true when that line is indented with a tab.
func detectIndent(content string) (width int, tabs bool, ok bool) {
	for line := range strings.SplitSeq(content, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lead := line[:len(line)-len(trimmed)]
		if lead == "" {
			continue
		}
		if lead[0] == '\t' {
			if !ok {
				return 1, true, true
			}
			continue
		}
		n := len(lead) - len(strings.TrimLeft(lead, " "))
		if n > 0 && (!ok || n < width) {
			width, ok = n, true
		}
	}
	return width, false, ok
}
