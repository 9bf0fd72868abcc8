package syntax

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_json "github.com/tree-sitter/tree-sitter-json/bindings/go"

	"github.com/mvp-joe/cfn-refactor/internal/cfn"
)

var jsonLanguage = sitter.NewLanguage(tree_sitter_json.Language())

// JSON node kinds emitted by tree-sitter-json.
const (
	jsonObject         = "object"
	jsonPair           = "pair"
	jsonArray          = "array"
	jsonString         = "string"
	jsonStringContent  = "string_content"
	jsonEscapeSequence = "escape_sequence"
	jsonNumber         = "number"
	jsonTrue           = "true"
	jsonFalse          = "false"
)

// document → object → pair
const jsonSectionSearchDepth = 3

type jsonGrammar struct{}

func (jsonGrammar) Language() *sitter.Language { return jsonLanguage }

func (jsonGrammar) SectionSearchDepth() int { return jsonSectionSearchDepth }

func (jsonGrammar) Normalize(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case jsonStringContent, jsonEscapeSequence:
		if parent := n.Parent(); parent != nil && parent.Kind() == jsonString {
			return parent
		}
	}
	return n
}

func (g jsonGrammar) Classify(n *sitter.Node, src []byte) Classification {
	if n == nil || n.IsError() || n.IsMissing() {
		return Classification{}
	}
	switch n.Kind() {
	case jsonString:
		return Classification{Variant: VariantString, Text: decodeEscapes(unquote(nodeText(n, src), '"'))}
	case jsonNumber:
		return Classification{Variant: VariantNumber, Text: nodeText(n, src)}
	case jsonTrue:
		return Classification{Variant: VariantBoolean, Text: "true", Bool: true}
	case jsonFalse:
		return Classification{Variant: VariantBoolean, Text: "false", Bool: false}
	case jsonArray:
		return Classification{Variant: VariantArray, Elements: g.Items(n)}
	default:
		return Classification{}
	}
}

func (g jsonGrammar) IntrinsicName(n *sitter.Node, src []byte) (string, bool) {
	if n == nil || n.Kind() != jsonObject {
		return "", false
	}
	pairs := g.Pairs(n, src)
	if len(pairs) != 1 || !cfn.IsIntrinsicFunction(pairs[0].Key) {
		return "", false
	}
	return pairs[0].Key, true
}

func (jsonGrammar) BlockPairKey(*sitter.Node, []byte) (string, bool) {
	return "", false
}

func (jsonGrammar) PairOf(n *sitter.Node, src []byte) (Pair, bool) {
	if n == nil || n.Kind() != jsonPair {
		return Pair{}, false
	}
	key := n.ChildByFieldName("key")
	return Pair{
		Node:    n,
		Key:     decodeEscapes(unquote(nodeText(key, src), '"')),
		KeyNode: key,
		Value:   n.ChildByFieldName("value"),
	}, true
}

func (g jsonGrammar) Pairs(n *sitter.Node, src []byte) []Pair {
	if n == nil || n.Kind() != jsonObject {
		return nil
	}
	var pairs []Pair
	for _, child := range childrenOfKind(n, jsonPair) {
		if p, ok := g.PairOf(child, src); ok {
			pairs = append(pairs, p)
		}
	}
	return pairs
}

func (jsonGrammar) IsMapping(n *sitter.Node) bool {
	return n != nil && n.Kind() == jsonObject
}

func (jsonGrammar) IsSequence(n *sitter.Node) bool {
	return n != nil && n.Kind() == jsonArray
}

func (jsonGrammar) Items(n *sitter.Node) []*sitter.Node {
	if n == nil || n.Kind() != jsonArray {
		return nil
	}
	return namedChildren(n)
}

func (jsonGrammar) Unwrap(n *sitter.Node) *sitter.Node {
	return n
}
