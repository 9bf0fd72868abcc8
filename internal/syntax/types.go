package syntax

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

var (
	// ErrUnsupportedDocumentType indicates a document that is neither JSON nor YAML.
	ErrUnsupportedDocumentType = errors.New("unsupported document type")

	// ErrParseFailed indicates tree-sitter produced no tree for the source.
	ErrParseFailed = errors.New("failed to parse template")
)

// DocumentType identifies the grammar a template is written in.
type DocumentType int

const (
	DocumentTypeUnknown DocumentType = iota
	DocumentTypeJSON
	DocumentTypeYAML
)

func (d DocumentType) String() string {
	switch d {
	case DocumentTypeJSON:
		return "json"
	case DocumentTypeYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// ParseDocumentType maps a language identifier ("json", "yaml", "yml") to a DocumentType.
func ParseDocumentType(s string) DocumentType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "cloudformation-json":
		return DocumentTypeJSON
	case "yaml", "yml", "cloudformation-yaml":
		return DocumentTypeYAML
	default:
		return DocumentTypeUnknown
	}
}

// Variant is the grammar-independent shape of a syntax node.
type Variant int

const (
	VariantUnrecognized Variant = iota
	VariantString
	VariantNumber
	VariantBoolean
	VariantArray
)

func (v Variant) String() string {
	switch v {
	case VariantString:
		return "string"
	case VariantNumber:
		return "number"
	case VariantBoolean:
		return "boolean"
	case VariantArray:
		return "array"
	default:
		return "unrecognized"
	}
}

// Classification is what a grammar adapter knows about a single node.
type Classification struct {
	Variant Variant

	// Text is the decoded string for VariantString and the raw token for VariantNumber.
	Text string

	// Bool holds the value of a VariantBoolean.
	Bool bool

	// Elements are the unwrapped element nodes of a VariantArray.
	Elements []*sitter.Node
}

// Pair is one key/value entry of a mapping. Value is nil for a key with no value.
type Pair struct {
	Node    *sitter.Node
	Key     string
	KeyNode *sitter.Node
	Value   *sitter.Node
}

// Section is a top-level template section located by FindTopLevelSections.
type Section struct {
	Name string
	Pair Pair
}

// PathSegment is one step of a property path: a mapping key or a sequence index.
type PathSegment struct {
	Key     string
	Index   int
	IsIndex bool

	// Pair is the mapping entry this segment came from; nil for index segments.
	Pair *sitter.Node
}

func (s PathSegment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// FormatPath renders a property path as "Resources/Bucket/Properties/Tags/0".
func FormatPath(path []PathSegment) string {
	parts := make([]string, len(path))
	for i, seg := range path {
		parts[i] = seg.String()
	}
	return strings.Join(parts, "/")
}
