package syntax

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Grammar adapts one tree-sitter grammar to the template model. Everything
// above this interface is grammar-agnostic.
type Grammar interface {
	// Language returns the tree-sitter language for parsing.
	Language() *sitter.Language

	// Normalize widens a string-content token to its enclosing string node so
	// edits replace the full quoted literal.
	Normalize(n *sitter.Node) *sitter.Node

	// Classify maps a node to a closed set of variants.
	Classify(n *sitter.Node, src []byte) Classification

	// IntrinsicName returns the long-form name of the intrinsic function n
	// represents: a single-key mapping whose key is a function name, or a
	// tagged YAML node.
	IntrinsicName(n *sitter.Node, src []byte) (string, bool)

	// BlockPairKey returns the key of n when n is a block-style mapping entry
	// whose key alone marks its value as a function argument. Only YAML has these.
	BlockPairKey(n *sitter.Node, src []byte) (string, bool)

	// PairOf returns the key/value parts of n when n is a mapping entry.
	PairOf(n *sitter.Node, src []byte) (Pair, bool)

	// Pairs returns the entries of a mapping node, unwrapping wrapper nodes first.
	Pairs(n *sitter.Node, src []byte) []Pair

	// IsMapping reports whether n (after unwrapping) is a mapping.
	IsMapping(n *sitter.Node) bool

	// IsSequence reports whether n is a sequence node.
	IsSequence(n *sitter.Node) bool

	// Items returns the unwrapped elements of a sequence node.
	Items(n *sitter.Node) []*sitter.Node

	// Unwrap descends through untagged wrapper nodes to the value they hold.
	Unwrap(n *sitter.Node) *sitter.Node

	// SectionSearchDepth bounds the tree depth searched for top-level sections.
	SectionSearchDepth() int
}

// GrammarFor returns the grammar adapter for a document type.
func GrammarFor(docType DocumentType) (Grammar, error) {
	switch docType {
	case DocumentTypeJSON:
		return jsonGrammar{}, nil
	case DocumentTypeYAML:
		return yamlGrammar{}, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedDocumentType, "%q", docType)
	}
}

func nodeText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return string(src[n.StartByte():n.EndByte()])
}

// decodeEscapes resolves backslash escapes shared by JSON strings and YAML
// double-quoted scalars. Unknown escapes are kept verbatim.
func decodeEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '0':
			b.WriteByte(0)
		case '"', '\\', '/':
			b.WriteByte(s[i])
		case 'u':
			if i+4 < len(s) {
				if r, err := strconv.ParseUint(s[i+1:i+5], 16, 32); err == nil {
					var buf [utf8.UTFMax]byte
					n := utf8.EncodeRune(buf[:], rune(r))
					b.Write(buf[:n])
					i += 4
					continue
				}
			}
			b.WriteString(`\u`)
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// unquote strips one leading and trailing quote character if both are present.
func unquote(s string, quote byte) string {
	if len(s) >= 2 && s[0] == quote && s[len(s)-1] == quote {
		return s[1 : len(s)-1]
	}
	return s
}
