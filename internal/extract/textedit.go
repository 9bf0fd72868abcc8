package extract

// Implementation Plan:
// 1. Derive the indent unit once from editor settings (and the document, when detection is on)
// 2. Render the parameter block for JSON or YAML, opening a new Parameters section when needed
// 3. Render the Ref replacement for the literal's range
// 4. Serialize scalars: JSON strings always quoted, YAML strings quoted only when ambiguous

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/cfn-refactor/internal/cfn"
	"github.com/mvp-joe/cfn-refactor/internal/protocol"
	"github.com/mvp-joe/cfn-refactor/internal/syntax"
	"github.com/mvp-joe/cfn-refactor/internal/template"
)

// TextEditGenerator renders declaration and reference text for one document.
type TextEditGenerator struct {
	docType syntax.DocumentType
	indent  string
}

// NewTextEditGenerator derives the indent unit for a document. YAML always
// indents with spaces; JSON honors InsertSpaces.
func NewTextEditGenerator(docType syntax.DocumentType, settings EditorSettings, content string) *TextEditGenerator {
	return &TextEditGenerator{docType: docType, indent: indentUnit(docType, settings, content)}
}

// Indent returns the indent unit in use.
func (g *TextEditGenerator) Indent() string {
	return g.indent
}

// ParameterInsertionEdit renders the declaration of name as an insertion at pos.
func (g *TextEditGenerator) ParameterInsertionEdit(name string, def ParameterDefinition, pos protocol.Position, point template.InsertionPoint) protocol.TextEdit {
	var text string
	if g.docType == syntax.DocumentTypeJSON {
		text = g.jsonInsertion(name, def, point)
	} else {
		text = g.yamlInsertion(name, def, point)
	}
	return protocol.TextEdit{
		Range:   protocol.Range{Start: pos, End: pos},
		NewText: text,
	}
}

// LiteralReplacementEdit replaces the literal at rng with a reference to name.
func (g *TextEditGenerator) LiteralReplacementEdit(name string, rng protocol.Range) protocol.TextEdit {
	return protocol.TextEdit{Range: rng, NewText: g.Reference(name)}
}

// Reference renders a Ref to name in the document's syntax.
func (g *TextEditGenerator) Reference(name string) string {
	if g.docType == syntax.DocumentTypeJSON {
		return fmt.Sprintf(`{"Ref": %s}`, jsonString(name))
	}
	return "!Ref " + name
}

func (g *TextEditGenerator) jsonInsertion(name string, def ParameterDefinition, point template.InsertionPoint) string {
	block := g.jsonParameterBlock(name, def)
	switch {
	case point.WithinExistingSection && point.SectionEmpty:
		return "\n" + block + "\n" + g.indent
	case point.WithinExistingSection:
		return ",\n" + block
	default:
		return fmt.Sprintf("%s: {\n%s\n%s},\n%s", jsonString(cfn.SectionParameters), block, g.indent, g.indent)
	}
}

func (g *TextEditGenerator) jsonParameterBlock(name string, def ParameterDefinition) string {
	entry := strings.Repeat(g.indent, 2)
	prop := strings.Repeat(g.indent, 3)

	props := []string{prop + `"Type": ` + jsonString(def.Type)}
	if def.Default != nil {
		props = append(props, prop+`"Default": `+jsonValue(def.Default))
	}
	props = append(props, prop+`"Description": `+jsonString(def.Description))
	if len(def.AllowedValues) > 0 {
		values := make([]string, len(def.AllowedValues))
		for i, v := range def.AllowedValues {
			values[i] = jsonString(v)
		}
		props = append(props, prop+`"AllowedValues": [`+strings.Join(values, ", ")+"]")
	}

	return fmt.Sprintf("%s%s: {\n%s\n%s}", entry, jsonString(name), strings.Join(props, ",\n"), entry)
}

func (g *TextEditGenerator) yamlInsertion(name string, def ParameterDefinition, point template.InsertionPoint) string {
	block := g.yamlParameterBlock(name, def)
	switch {
	case point.WithinExistingSection:
		return "\n" + block
	case point.BeforeAnchor:
		return cfn.SectionParameters + ":\n" + block + "\n\n"
	default:
		return "\n" + cfn.SectionParameters + ":\n" + block
	}
}

func (g *TextEditGenerator) yamlParameterBlock(name string, def ParameterDefinition) string {
	entry := g.indent
	prop := strings.Repeat(g.indent, 2)
	item := strings.Repeat(g.indent, 3)

	var b strings.Builder
	b.WriteString(entry + name + ":\n")
	b.WriteString(prop + "Type: " + def.Type)
	if def.Default != nil {
		b.WriteString("\n" + prop + "Default: " + yamlValue(def))
	}
	b.WriteString("\n" + prop + "Description: " + yamlString(def.Description))
	if len(def.AllowedValues) > 0 {
		b.WriteString("\n" + prop + "AllowedValues:")
		for _, v := range def.AllowedValues {
			b.WriteString("\n" + item + "- " + yamlString(v))
		}
	}
	return b.String()
}

func jsonValue(v any) string {
	switch val := v.(type) {
	case float64:
		return formatNumber(val)
	case bool:
		return fmt.Sprint(val)
	default:
		return jsonString(stringify(val))
	}
}

func yamlValue(def ParameterDefinition) string {
	switch val := def.Default.(type) {
	case float64:
		return formatNumber(val)
	case bool:
		return fmt.Sprint(val)
	}
	s := stringify(def.Default)
	if def.Type == ParameterTypeCommaDelimitedList {
		return quote(s)
	}
	return yamlString(s)
}

func jsonString(s string) string {
	return quote(s)
}

// yamlString leaves s bare unless a YAML parser could read it as something
// other than the same string.
func yamlString(s string) string {
	if needsYAMLQuotes(s) {
		return quote(s)
	}
	return s
}

const yamlIndicators = "!&*|>@`#%{}[],"

func needsYAMLQuotes(s string) bool {
	if s == "" || syntax.IsYAMLBoolean(s) || syntax.IsYAMLNumber(s) {
		return true
	}
	if strings.ContainsAny(s[:1], yamlIndicators) {
		return true
	}
	switch strings.ToLower(s) {
	case "null", "~":
		return true
	}
	if strings.TrimSpace(s) != s || strings.HasPrefix(s, "- ") || strings.HasPrefix(s, "? ") ||
		strings.HasPrefix(s, "'") || strings.HasPrefix(s, "\"") {
		return true
	}
	if strings.Contains(s, ": ") || strings.Contains(s, " #") || strings.HasSuffix(s, ":") {
		return true
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f || r == '"' || r == '\'' {
			return true
		}
	}
	return false
}

// quote renders s as a double-quoted string valid in both JSON and YAML.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
