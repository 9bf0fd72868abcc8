package template

// Implementation Plan:
// 1. AnalyzeTree - locate the Parameters section, collect names, pick the insertion point
// 2. StructureAnalyzer - parse raw content and cache the analysis per uri + content hash
// 3. ExistingParameterNames / ParameterInsertionPoint - the two collaborator queries

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"maps"

	"github.com/cockroachdb/errors"
	"github.com/maypok86/otter"

	"github.com/mvp-joe/cfn-refactor/internal/cfn"
	"github.com/mvp-joe/cfn-refactor/internal/protocol"
	"github.com/mvp-joe/cfn-refactor/internal/syntax"
)

var (
	// ErrNoTemplateRoot indicates the document has no top-level mapping.
	ErrNoTemplateRoot = errors.New("template has no top-level mapping")

	// ErrNoInsertionAnchor indicates there is no section a new Parameters section could precede.
	ErrNoInsertionAnchor = errors.New("no section to anchor a new Parameters section")

	// ErrUnsupportedParametersSection indicates a Parameters section whose layout cannot be spliced.
	ErrUnsupportedParametersSection = errors.New("unsupported Parameters section layout")
)

// DefaultStructureCacheSize is used when a non-positive cache size is configured.
const DefaultStructureCacheSize = 256

// InsertionPoint is where a new parameter declaration goes.
type InsertionPoint struct {
	// Offset is a byte offset into the document.
	Offset int

	// WithinExistingSection is true when splicing into an existing Parameters section.
	WithinExistingSection bool

	// SectionEmpty is true when the existing section has no entries yet.
	SectionEmpty bool

	// BeforeAnchor is true when a new section is inserted in front of an
	// existing top-level entry rather than after one.
	BeforeAnchor bool
}

// TemplateStructureInfo is computed once per extraction.
type TemplateStructureInfo struct {
	DocumentType         syntax.DocumentType
	HasParametersSection bool
	SectionRange         *protocol.Range
	InsertionPoint       InsertionPoint
	ParameterNames       map[string]struct{}
}

// AnalyzeTree inspects a parsed template.
func AnalyzeTree(tree *syntax.Tree) (*TemplateStructureInfo, error) {
	if tree.RootMapping() == nil {
		return nil, ErrNoTemplateRoot
	}

	info := &TemplateStructureInfo{
		DocumentType:   tree.Type,
		ParameterNames: map[string]struct{}{},
	}

	section, ok := tree.FindTopLevelSections(cfn.SectionParameters)[cfn.SectionParameters]
	if !ok {
		point, err := newSectionInsertionPoint(tree)
		if err != nil {
			return nil, err
		}
		info.InsertionPoint = point
		return info, nil
	}

	rng := tree.Range(section.Pair.Node)
	info.HasParametersSection = true
	info.SectionRange = &rng

	point, names, err := existingSectionInsertionPoint(tree, section.Pair)
	if err != nil {
		return nil, err
	}
	info.InsertionPoint = point
	info.ParameterNames = names
	return info, nil
}

func existingSectionInsertionPoint(tree *syntax.Tree, section syntax.Pair) (InsertionPoint, map[string]struct{}, error) {
	names := map[string]struct{}{}
	point := InsertionPoint{WithinExistingSection: true}

	value := section.Value
	if value == nil {
		if tree.Type == syntax.DocumentTypeJSON {
			return point, nil, errors.Wrap(ErrUnsupportedParametersSection, "Parameters has no value")
		}
		// A bare "Parameters:" key.
		point.Offset = int(section.Node.EndByte())
		point.SectionEmpty = true
		return point, names, nil
	}

	if !tree.Grammar.IsMapping(value) {
		return point, nil, errors.Wrapf(ErrUnsupportedParametersSection, "Parameters is a %s", value.Kind())
	}

	pairs := tree.Grammar.Pairs(value, tree.Source)
	for _, p := range pairs {
		names[p.Key] = struct{}{}
	}

	mapping := tree.Grammar.Unwrap(value)
	switch {
	case len(pairs) > 0 && mapping.Kind() != "flow_mapping":
		point.Offset = int(pairs[len(pairs)-1].Node.EndByte())
	case len(pairs) == 0 && tree.Type == syntax.DocumentTypeJSON:
		open := mapping.Child(0)
		if open == nil {
			return point, nil, errors.Wrap(ErrUnsupportedParametersSection, "Parameters object has no opening brace")
		}
		point.Offset = int(open.EndByte())
		point.SectionEmpty = true
	default:
		return point, nil, errors.Wrap(ErrUnsupportedParametersSection, "flow-style Parameters mapping")
	}
	return point, names, nil
}

func newSectionInsertionPoint(tree *syntax.Tree) (InsertionPoint, error) {
	pairs := tree.TopLevelPairs()

	anchor := -1
	for i, p := range pairs {
		if !cfn.HeaderSections[p.Key] {
			anchor = i
			break
		}
	}
	if anchor < 0 {
		return InsertionPoint{}, ErrNoInsertionAnchor
	}

	if tree.Type == syntax.DocumentTypeYAML && anchor > 0 {
		return InsertionPoint{Offset: int(pairs[anchor-1].Node.EndByte())}, nil
	}
	return InsertionPoint{Offset: int(pairs[anchor].Node.StartByte()), BeforeAnchor: true}, nil
}

// StructureAnalyzer answers template-structure queries on raw content and
// caches the results per document snapshot.
type StructureAnalyzer struct {
	cache otter.Cache[string, *TemplateStructureInfo]
}

// NewStructureAnalyzer creates an analyzer holding up to cacheSize analyses.
func NewStructureAnalyzer(cacheSize int) (*StructureAnalyzer, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultStructureCacheSize
	}
	cache, err := otter.MustBuilder[string, *TemplateStructureInfo](cacheSize).Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build structure cache")
	}
	return &StructureAnalyzer{cache: cache}, nil
}

// Close releases the cache.
func (a *StructureAnalyzer) Close() {
	a.cache.Close()
}

// AnalyzeStructure parses content and returns its structure, using the cache when possible.
// The returned value is shared and must not be modified.
func (a *StructureAnalyzer) AnalyzeStructure(content string, docType syntax.DocumentType, uri string) (*TemplateStructureInfo, error) {
	key := cacheKey(content, docType, uri)
	if info, ok := a.cache.Get(key); ok {
		return info, nil
	}

	tree, err := syntax.Parse(context.Background(), []byte(content), docType)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	info, err := AnalyzeTree(tree)
	if err != nil {
		return nil, errors.Wrapf(err, "analyzing %s", uri)
	}
	a.cache.Set(key, info)
	return info, nil
}

// ExistingParameterNames returns the names declared under Parameters.
func (a *StructureAnalyzer) ExistingParameterNames(content string, docType syntax.DocumentType, uri string) (map[string]struct{}, error) {
	info, err := a.AnalyzeStructure(content, docType, uri)
	if err != nil {
		return nil, err
	}
	return maps.Clone(info.ParameterNames), nil
}

// ParameterInsertionPoint returns where a new parameter declaration goes.
func (a *StructureAnalyzer) ParameterInsertionPoint(content string, docType syntax.DocumentType, uri string) (InsertionPoint, error) {
	info, err := a.AnalyzeStructure(content, docType, uri)
	if err != nil {
		return InsertionPoint{}, err
	}
	return info.InsertionPoint, nil
}

func cacheKey(content string, docType syntax.DocumentType, uri string) string {
	sum := sha256.Sum256([]byte(content))
	return uri + "|" + docType.String() + "|" + hex.EncodeToString(sum[:])
}
