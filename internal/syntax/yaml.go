package syntax

import (
	"regexp"
	"strings"

	tree_sitter_yaml "github.com/tree-sitter-grammars/tree-sitter-yaml/bindings/go"
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/cfn-refactor/internal/cfn"
)

var yamlLanguage = sitter.NewLanguage(tree_sitter_yaml.Language())

// YAML node kinds emitted by tree-sitter-yaml.
const (
	yamlBlockNode         = "block_node"
	yamlFlowNode          = "flow_node"
	yamlBlockMapping      = "block_mapping"
	yamlBlockMappingPair  = "block_mapping_pair"
	yamlFlowMapping       = "flow_mapping"
	yamlFlowPair          = "flow_pair"
	yamlBlockSequence     = "block_sequence"
	yamlBlockSequenceItem = "block_sequence_item"
	yamlFlowSequence      = "flow_sequence"
	yamlPlainScalar       = "plain_scalar"
	yamlDoubleQuoteScalar = "double_quote_scalar"
	yamlSingleQuoteScalar = "single_quote_scalar"
	yamlEscapeSequence    = "escape_sequence"
	yamlTag               = "tag"
	yamlAnchor            = "anchor"
	yamlComment           = "comment"
)

// Typed tokens that tree-sitter-yaml nests inside a plain_scalar.
var yamlScalarTokens = map[string]bool{
	"string_scalar":  true,
	"integer_scalar": true,
	"float_scalar":   true,
	"boolean_scalar": true,
	"null_scalar":    true,
}

// stream → document → block_node → block_mapping → block_mapping_pair
const yamlSectionSearchDepth = 5

// Untagged plain scalars follow the YAML 1.1 resolution rules CloudFormation applies.
var (
	yamlNumberPattern = regexp.MustCompile(`^-?\d+(\.\d*)?$`)
	yamlBooleanWords  = map[string]bool{
		"true": true, "yes": true, "on": true,
		"false": false, "no": false, "off": false,
	}
)

// IsYAMLBoolean reports whether an untagged plain scalar resolves to a boolean.
func IsYAMLBoolean(s string) bool {
	_, ok := yamlBooleanWords[strings.ToLower(s)]
	return ok
}

// IsYAMLNumber reports whether an untagged plain scalar resolves to a number.
func IsYAMLNumber(s string) bool {
	return yamlNumberPattern.MatchString(s)
}

type yamlGrammar struct{}

func (yamlGrammar) Language() *sitter.Language { return yamlLanguage }

func (yamlGrammar) SectionSearchDepth() int { return yamlSectionSearchDepth }

func (yamlGrammar) Normalize(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	parent := n.Parent()
	if parent == nil {
		return n
	}
	switch {
	case yamlScalarTokens[n.Kind()] && parent.Kind() == yamlPlainScalar:
		return parent
	case n.Kind() == yamlEscapeSequence && parent.Kind() == yamlDoubleQuoteScalar:
		return parent
	}
	return n
}

func (g yamlGrammar) Classify(n *sitter.Node, src []byte) Classification {
	if n == nil || n.IsError() || n.IsMissing() {
		return Classification{}
	}
	switch n.Kind() {
	case yamlPlainScalar:
		text := nodeText(n, src)
		if value, ok := yamlBooleanWords[strings.ToLower(text)]; ok {
			return Classification{Variant: VariantBoolean, Text: text, Bool: value}
		}
		if IsYAMLNumber(text) {
			return Classification{Variant: VariantNumber, Text: text}
		}
		return Classification{Variant: VariantString, Text: text}
	case yamlDoubleQuoteScalar, yamlSingleQuoteScalar:
		return Classification{Variant: VariantString, Text: g.scalarText(n, src)}
	case yamlFlowSequence, yamlBlockSequence:
		return Classification{Variant: VariantArray, Elements: g.Items(n)}
	default:
		return Classification{}
	}
}

func (g yamlGrammar) IntrinsicName(n *sitter.Node, src []byte) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Kind() {
	case yamlFlowNode, yamlBlockNode:
		if tag := tagOf(n); tag != nil {
			return cfn.TagFunction(nodeText(tag, src))
		}
	case yamlFlowMapping, yamlBlockMapping:
		pairs := g.Pairs(n, src)
		if len(pairs) == 1 && cfn.IsIntrinsicFunction(pairs[0].Key) {
			return pairs[0].Key, true
		}
	}
	return "", false
}

func (g yamlGrammar) BlockPairKey(n *sitter.Node, src []byte) (string, bool) {
	if n == nil || n.Kind() != yamlBlockMappingPair {
		return "", false
	}
	p, ok := g.PairOf(n, src)
	if !ok || p.KeyNode == nil {
		return "", false
	}
	return p.Key, true
}

func (g yamlGrammar) PairOf(n *sitter.Node, src []byte) (Pair, bool) {
	if n == nil || (n.Kind() != yamlBlockMappingPair && n.Kind() != yamlFlowPair) {
		return Pair{}, false
	}
	key := n.ChildByFieldName("key")
	return Pair{
		Node:    n,
		Key:     g.scalarText(g.Unwrap(key), src),
		KeyNode: key,
		Value:   n.ChildByFieldName("value"),
	}, true
}

func (g yamlGrammar) Pairs(n *sitter.Node, src []byte) []Pair {
	n = g.Unwrap(n)
	if n == nil {
		return nil
	}
	var kind string
	switch n.Kind() {
	case yamlBlockMapping:
		kind = yamlBlockMappingPair
	case yamlFlowMapping:
		kind = yamlFlowPair
	default:
		return nil
	}
	var pairs []Pair
	for _, child := range childrenOfKind(n, kind) {
		if p, ok := g.PairOf(child, src); ok {
			pairs = append(pairs, p)
		}
	}
	return pairs
}

func (g yamlGrammar) IsMapping(n *sitter.Node) bool {
	n = g.Unwrap(n)
	return n != nil && (n.Kind() == yamlBlockMapping || n.Kind() == yamlFlowMapping)
}

func (yamlGrammar) IsSequence(n *sitter.Node) bool {
	return n != nil && (n.Kind() == yamlFlowSequence || n.Kind() == yamlBlockSequence)
}

func (g yamlGrammar) Items(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	var items []*sitter.Node
	switch n.Kind() {
	case yamlFlowSequence:
		for _, child := range childrenOfKind(n, yamlFlowNode) {
			items = append(items, g.Unwrap(child))
		}
	case yamlBlockSequence:
		for _, item := range childrenOfKind(n, yamlBlockSequenceItem) {
			if value := valueChild(item); value != nil {
				items = append(items, g.Unwrap(value))
			}
		}
	}
	return items
}

// Unwrap descends through flow_node/block_node wrappers. Tagged wrappers are
// returned as-is since the tag changes the meaning of the value.
func (yamlGrammar) Unwrap(n *sitter.Node) *sitter.Node {
	for n != nil && (n.Kind() == yamlFlowNode || n.Kind() == yamlBlockNode) {
		if tagOf(n) != nil {
			return n
		}
		inner := valueChild(n)
		if inner == nil {
			return n
		}
		n = inner
	}
	return n
}

func (yamlGrammar) scalarText(n *sitter.Node, src []byte) string {
	text := nodeText(n, src)
	if n == nil {
		return text
	}
	switch n.Kind() {
	case yamlDoubleQuoteScalar:
		return decodeEscapes(unquote(text, '"'))
	case yamlSingleQuoteScalar:
		return strings.ReplaceAll(unquote(text, '\''), "''", "'")
	default:
		return text
	}
}

// tagOf returns the tag child of a wrapper node.
func tagOf(n *sitter.Node) *sitter.Node {
	if tags := childrenOfKind(n, yamlTag); len(tags) > 0 {
		return tags[0]
	}
	return nil
}

// valueChild returns the last named child that is not decoration.
func valueChild(n *sitter.Node) *sitter.Node {
	var value *sitter.Node
	for _, child := range namedChildren(n) {
		switch child.Kind() {
		case yamlTag, yamlAnchor, yamlComment:
			continue
		}
		value = child
	}
	return value
}
