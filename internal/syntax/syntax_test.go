package syntax

import (
	"context"
	"strings"
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cfn-refactor/internal/protocol"
)

// Test Plan for Syntax Adapters:
// - Parse() rejects unknown document types
// - FindTopLevelSections() locates Resources/Outputs in JSON and YAML
// - FindTopLevelSections() ignores nested keys with section names
// - Classify() maps JSON strings, numbers, booleans and arrays to variants
// - Classify() applies YAML 1.1 plain-scalar resolution (yes/on/42/1.5)
// - Classify() unquotes YAML single and double quoted scalars
// - IntrinsicName() recognizes JSON single-key objects and YAML tags
// - PropertyPath() resolves keys and sequence indices, and flags key positions

const jsonTemplate = `{
  "AWSTemplateFormatVersion": "2010-09-09",
  "Resources": {
    "MyBucket": {
      "Type": "AWS::S3::Bucket",
      "Properties": {
        "BucketName": "my-\"bucket\"",
        "Ports": [80, 443],
        "Versioned": true,
        "Arn": {"Fn::GetAtt": ["Other", "Arn"]},
        "Outputs": "not-a-section"
      }
    }
  },
  "Outputs": {
    "Name": {"Value": {"Ref": "MyBucket"}}
  }
}
`

const yamlTemplate = `AWSTemplateFormatVersion: "2010-09-09"
Resources:
  MyBucket:
    Type: AWS::S3::Bucket
    Properties:
      BucketName: 'it''s'
      Enabled: yes
      Count: 42
      Ratio: 1.5
      Quoted: "a\tb"
      SecurityGroupIds:
        - sg-1
        - sg-2
      Arn: !GetAtt Other.Arn
Outputs:
  Name:
    Value: !Ref MyBucket
`

func parse(t *testing.T, src string, docType DocumentType) *Tree {
	t.Helper()
	tree, err := Parse(context.Background(), []byte(src), docType)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

// nodeAtText returns the normalized node covering the first occurrence of needle.
func nodeAtText(t *testing.T, tree *Tree, needle string) *sitter.Node {
	t.Helper()
	offset := strings.Index(tree.Content(), needle)
	require.GreaterOrEqual(t, offset, 0, "needle %q not found", needle)
	pos, err := tree.Lines.PositionAt(offset)
	require.NoError(t, err)
	node, err := tree.NodeAt(pos)
	require.NoError(t, err)
	return tree.Grammar.Normalize(node)
}

func TestParse_UnknownDocumentType(t *testing.T) {
	t.Parallel()

	_, err := Parse(context.Background(), []byte("{}"), DocumentTypeUnknown)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedDocumentType)
}

func TestParseDocumentType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DocumentTypeJSON, ParseDocumentType("JSON"))
	assert.Equal(t, DocumentTypeYAML, ParseDocumentType("yml"))
	assert.Equal(t, DocumentTypeYAML, ParseDocumentType("cloudformation-yaml"))
	assert.Equal(t, DocumentTypeUnknown, ParseDocumentType("toml"))
}

func TestFindTopLevelSections(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name    string
		src     string
		docType DocumentType
	}{
		{"json", jsonTemplate, DocumentTypeJSON},
		{"yaml", yamlTemplate, DocumentTypeYAML},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tree := parse(t, tc.src, tc.docType)

			sections := tree.FindTopLevelSections("Resources", "Outputs", "Parameters")
			require.Len(t, sections, 2)
			assert.Contains(t, sections, "Resources")
			assert.Contains(t, sections, "Outputs")

			// The nested "Outputs" property must not shadow the real section.
			outputs := sections["Outputs"]
			assert.Equal(t, 0, int(tree.Range(outputs.Pair.Node).Start.Character))
			assert.True(t, tree.Grammar.IsMapping(outputs.Pair.Value))
		})
	}
}

func TestTopLevelPairs(t *testing.T) {
	t.Parallel()

	tree := parse(t, yamlTemplate, DocumentTypeYAML)
	var keys []string
	for _, p := range tree.TopLevelPairs() {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"AWSTemplateFormatVersion", "Resources", "Outputs"}, keys)
}

func TestClassify_JSON(t *testing.T) {
	t.Parallel()
	tree := parse(t, jsonTemplate, DocumentTypeJSON)

	str := tree.Grammar.Classify(nodeAtText(t, tree, `my-\"bucket`), tree.Source)
	assert.Equal(t, VariantString, str.Variant)
	assert.Equal(t, `my-"bucket"`, str.Text)

	num := tree.Grammar.Classify(nodeAtText(t, tree, "443"), tree.Source)
	assert.Equal(t, VariantNumber, num.Variant)
	assert.Equal(t, "443", num.Text)

	b := tree.Grammar.Classify(nodeAtText(t, tree, "true"), tree.Source)
	assert.Equal(t, VariantBoolean, b.Variant)
	assert.True(t, b.Bool)

	// "[" is anonymous, so the lookup lands on the array itself.
	arr := tree.Grammar.Classify(nodeAtText(t, tree, "[80"), tree.Source)
	require.Equal(t, VariantArray, arr.Variant)
	assert.Len(t, arr.Elements, 2)
}

func TestClassify_YAMLPlainScalars(t *testing.T) {
	t.Parallel()
	tree := parse(t, yamlTemplate, DocumentTypeYAML)

	tests := []struct {
		needle  string
		variant Variant
		text    string
	}{
		{"yes", VariantBoolean, "yes"},
		{"42", VariantNumber, "42"},
		{"1.5", VariantNumber, "1.5"},
		{"AWS::S3::Bucket", VariantString, "AWS::S3::Bucket"},
		{"'it''s'", VariantString, "it's"},
		{`"a\tb"`, VariantString, "a\tb"},
	}
	for _, tt := range tests {
		c := tree.Grammar.Classify(nodeAtText(t, tree, tt.needle), tree.Source)
		assert.Equal(t, tt.variant, c.Variant, tt.needle)
		assert.Equal(t, tt.text, c.Text, tt.needle)
	}
}

func TestYAMLScalarPredicates(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"true", "False", "YES", "no", "On", "off"} {
		assert.True(t, IsYAMLBoolean(s), s)
	}
	assert.False(t, IsYAMLBoolean("y"))

	for _, s := range []string{"0", "-12", "3.", "3.14"} {
		assert.True(t, IsYAMLNumber(s), s)
	}
	for _, s := range []string{"1e5", ".5", "0x1F", "12a"} {
		assert.False(t, IsYAMLNumber(s), s)
	}
}

func TestIntrinsicName(t *testing.T) {
	t.Parallel()

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		tree := parse(t, jsonTemplate, DocumentTypeJSON)
		sections := tree.FindTopLevelSections("Outputs")
		var names []string
		Walk(sections["Outputs"].Pair.Node, func(n *sitter.Node) bool {
			if name, ok := tree.Grammar.IntrinsicName(n, tree.Source); ok {
				names = append(names, name)
			}
			return true
		})
		assert.Equal(t, []string{"Ref"}, names)
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()
		tree := parse(t, yamlTemplate, DocumentTypeYAML)
		var names []string
		Walk(tree.Root, func(n *sitter.Node) bool {
			if name, ok := tree.Grammar.IntrinsicName(n, tree.Source); ok {
				names = append(names, name)
			}
			return true
		})
		assert.Equal(t, []string{"Fn::GetAtt", "Ref"}, names)
	})
}

func TestPropertyPath(t *testing.T) {
	t.Parallel()

	t.Run("json value", func(t *testing.T) {
		t.Parallel()
		tree := parse(t, jsonTemplate, DocumentTypeJSON)
		path, isKey := tree.PropertyPath(nodeAtText(t, tree, "443"))
		assert.False(t, isKey)
		assert.Equal(t, "Resources/MyBucket/Properties/Ports/1", FormatPath(path))
	})

	t.Run("json key", func(t *testing.T) {
		t.Parallel()
		tree := parse(t, jsonTemplate, DocumentTypeJSON)
		path, isKey := tree.PropertyPath(nodeAtText(t, tree, `"Versioned"`))
		assert.True(t, isKey)
		assert.Equal(t, "Resources/MyBucket/Properties/Versioned", FormatPath(path))
	})

	t.Run("yaml sequence item", func(t *testing.T) {
		t.Parallel()
		tree := parse(t, yamlTemplate, DocumentTypeYAML)
		path, isKey := tree.PropertyPath(nodeAtText(t, tree, "sg-2"))
		assert.False(t, isKey)
		assert.Equal(t, "Resources/MyBucket/Properties/SecurityGroupIds/1", FormatPath(path))
	})

	t.Run("yaml key", func(t *testing.T) {
		t.Parallel()
		tree := parse(t, yamlTemplate, DocumentTypeYAML)
		node := nodeAtText(t, tree, "Count")
		assert.True(t, tree.IsKeyPosition(node))
	})
}

func TestTreeRange_UsesUTF16Columns(t *testing.T) {
	t.Parallel()

	tree := parse(t, "Resources:\n  A:\n    Name: \"😀x\"\n", DocumentTypeYAML)
	node := nodeAtText(t, tree, "\"😀x\"")
	rng := tree.Range(node)
	assert.Equal(t, protocol.Position{Line: 2, Character: 10}, rng.Start)
	assert.Equal(t, protocol.Position{Line: 2, Character: 15}, rng.End)
}
