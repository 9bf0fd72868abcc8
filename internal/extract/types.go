// Package extract implements the "extract literal to parameter" refactoring
// for CloudFormation templates written in JSON or YAML.
package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/cfn-refactor/internal/protocol"
)

// LiteralType is the semantic type of a detected literal.
type LiteralType int

const (
	LiteralString LiteralType = iota + 1
	LiteralNumber
	LiteralBoolean
	LiteralArray
)

func (t LiteralType) String() string {
	switch t {
	case LiteralString:
		return "STRING"
	case LiteralNumber:
		return "NUMBER"
	case LiteralBoolean:
		return "BOOLEAN"
	case LiteralArray:
		return "ARRAY"
	default:
		return "UNKNOWN"
	}
}

// LiteralValueInfo describes one literal found in a template.
//
// Value holds a string, float64, bool, or []any of those.
type LiteralValueInfo struct {
	Value       any
	Type        LiteralType
	Range       protocol.Range
	IsReference bool

	// Node is the normalized syntax node the range was taken from.
	Node *sitter.Node
}

// CloudFormation parameter types produced by type inference.
const (
	ParameterTypeString             = "String"
	ParameterTypeNumber             = "Number"
	ParameterTypeCommaDelimitedList = "CommaDelimitedList"
)

// ParameterDefinition is the declaration inserted under Parameters.
type ParameterDefinition struct {
	Type          string   `json:"Type"`
	Default       any      `json:"Default,omitempty"`
	Description   string   `json:"Description"`
	AllowedValues []string `json:"AllowedValues,omitempty"`
}

// EditorSettings are the formatting options of the requesting editor.
type EditorSettings struct {
	TabSize           int  `json:"tabSize"`
	InsertSpaces      bool `json:"insertSpaces"`
	DetectIndentation bool `json:"detectIndentation"`
}

// DefaultEditorSettings matches the usual CloudFormation template style.
func DefaultEditorSettings() EditorSettings {
	return EditorSettings{TabSize: 2, InsertSpaces: true, DetectIndentation: true}
}

// ExtractToParameterResult is a complete single-occurrence extraction.
type ExtractToParameterResult struct {
	ParameterName          string              `json:"parameterName"`
	ParameterDefinition    ParameterDefinition `json:"parameterDefinition"`
	ReplacementEdit        protocol.TextEdit   `json:"replacementEdit"`
	ParameterInsertionEdit protocol.TextEdit   `json:"parameterInsertionEdit"`
}

// Edits returns the insertion edit followed by the replacement edit.
func (r *ExtractToParameterResult) Edits() []protocol.TextEdit {
	return []protocol.TextEdit{r.ParameterInsertionEdit, r.ReplacementEdit}
}

// ExtractAllOccurrencesResult is a complete all-occurrences extraction.
type ExtractAllOccurrencesResult struct {
	ParameterName          string              `json:"parameterName"`
	ParameterDefinition    ParameterDefinition `json:"parameterDefinition"`
	ReplacementEdits       []protocol.TextEdit `json:"replacementEdits"`
	ParameterInsertionEdit protocol.TextEdit   `json:"parameterInsertionEdit"`
}

// Edits returns the insertion edit followed by every replacement edit.
func (r *ExtractAllOccurrencesResult) Edits() []protocol.TextEdit {
	return append([]protocol.TextEdit{r.ParameterInsertionEdit}, r.ReplacementEdits...)
}
