package extract

// Implementation Plan:
// 1. CanExtract - cheap gate: section, value position, literal, not a reference
// 2. prepare - detection, structure analysis, naming, type inference, insertion edit
// 3. GenerateExtraction / GenerateAllOccurrencesExtraction - add replacement edit(s)
// 4. HasMultipleOccurrences - decides whether the all-occurrences action is offered
// 5. Failures and panics become nil results and are logged at debug level

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"

	"github.com/mvp-joe/cfn-refactor/internal/cfn"
	"github.com/mvp-joe/cfn-refactor/internal/edits"
	"github.com/mvp-joe/cfn-refactor/internal/protocol"
	"github.com/mvp-joe/cfn-refactor/internal/syntax"
	"github.com/mvp-joe/cfn-refactor/internal/template"
)

// errNotExtractable is returned by prepare when the gate rejects the context.
var errNotExtractable = errors.New("no extractable literal at position")

// TemplateStructure answers the structural questions an extraction needs.
// *template.StructureAnalyzer implements it.
type TemplateStructure interface {
	ExistingParameterNames(content string, docType syntax.DocumentType, uri string) (map[string]struct{}, error)
	ParameterInsertionPoint(content string, docType syntax.DocumentType, uri string) (template.InsertionPoint, error)
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithLogger sets the logger for swallowed failures.
func WithLogger(logger *log.Logger) ProviderOption {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithFallbackPrefix sets the name prefix used when no property or resource name is usable.
func WithFallbackPrefix(prefix string) ProviderOption {
	return func(p *Provider) {
		if prefix != "" {
			p.fallbackPrefix = prefix
		}
	}
}

// Provider orchestrates extract-to-parameter refactorings. It holds no
// per-document state and is safe for concurrent use when each call gets its
// own Context.
type Provider struct {
	structure      TemplateStructure
	logger         *log.Logger
	fallbackPrefix string
}

// NewProvider creates a provider backed by the given structure collaborator.
func NewProvider(structure TemplateStructure, opts ...ProviderOption) *Provider {
	p := &Provider{
		structure:      structure,
		logger:         log.New(io.Discard),
		fallbackPrefix: DefaultFallbackPrefix,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CanExtract reports whether the literal under the cursor can become a parameter.
func (p *Provider) CanExtract(ctx *template.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logPanic(ctx, "", r)
			ok = false
		}
	}()
	return p.detect(ctx, NewLiteralValueDetector()) != nil
}

// detect applies the eligibility gate and returns the literal under the cursor.
// The order keeps the common hover-over-nothing case cheap.
func (p *Provider) detect(ctx *template.Context, detector *LiteralValueDetector) *LiteralValueInfo {
	if ctx == nil || ctx.Tree == nil {
		return nil
	}
	if !cfn.IsExtractableSection(ctx.Section) || !ctx.IsValue() {
		return nil
	}
	info := detector.DetectLiteralValue(ctx.Tree, ctx.SyntaxNode)
	if info == nil || info.IsReference {
		return nil
	}
	return info
}

type extraction struct {
	detector  *LiteralValueDetector
	literal   *LiteralValueInfo
	name      string
	def       ParameterDefinition
	generator *TextEditGenerator
	insertion protocol.TextEdit
}

func (p *Provider) prepare(ctx *template.Context, settings EditorSettings, uri string) (*extraction, error) {
	detector := NewLiteralValueDetector()
	literal := p.detect(ctx, detector)
	if literal == nil {
		return nil, errNotExtractable
	}

	content := ctx.DocumentText()
	existing, err := p.structure.ExistingParameterNames(content, ctx.DocumentType, uri)
	if err != nil {
		return nil, errors.Wrap(err, "reading existing parameter names")
	}
	point, err := p.structure.ParameterInsertionPoint(content, ctx.DocumentType, uri)
	if err != nil {
		return nil, errors.Wrap(err, "locating parameter insertion point")
	}
	at, err := ctx.Tree.Lines.PositionAt(point.Offset)
	if err != nil {
		return nil, errors.Wrapf(err, "insertion offset %d", point.Offset)
	}

	name := GenerateParameterName(NameRequest{
		PropertyName:   ctx.PropertyName(),
		ResourceName:   ctx.LogicalID,
		ExistingNames:  existing,
		FallbackPrefix: p.fallbackPrefix,
	})
	def := InferParameterType(literal.Type, literal.Value)
	generator := NewTextEditGenerator(ctx.DocumentType, settings, content)

	return &extraction{
		detector:  detector,
		literal:   literal,
		name:      name,
		def:       def,
		generator: generator,
		insertion: generator.ParameterInsertionEdit(name, def, at, point),
	}, nil
}

// GenerateExtraction replaces the literal under the cursor with a reference to
// a new parameter. It returns nil when extraction is not possible; rng is only
// used for diagnostics.
func (p *Provider) GenerateExtraction(ctx *template.Context, rng protocol.Range, settings EditorSettings, uri string) (result *ExtractToParameterResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logPanic(ctx, uri, r)
			result = nil
		}
	}()

	x, err := p.prepare(ctx, settings, uri)
	if err != nil {
		p.logFailure(ctx, rng, uri, err)
		return nil
	}

	return &ExtractToParameterResult{
		ParameterName:          x.name,
		ParameterDefinition:    x.def,
		ReplacementEdit:        x.generator.LiteralReplacementEdit(x.name, x.literal.Range),
		ParameterInsertionEdit: x.insertion,
	}
}

// GenerateAllOccurrencesExtraction replaces every equal literal under
// Resources and Outputs with a reference to one new parameter.
func (p *Provider) GenerateAllOccurrencesExtraction(ctx *template.Context, rng protocol.Range, settings EditorSettings, uri string) (result *ExtractAllOccurrencesResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logPanic(ctx, uri, r)
			result = nil
		}
	}()

	x, err := p.prepare(ctx, settings, uri)
	if err != nil {
		p.logFailure(ctx, rng, uri, err)
		return nil
	}

	ranges := FindAllOccurrences(ctx.Tree, x.detector, x.literal.Value, x.literal.Type)
	if !slices.Contains(ranges, x.literal.Range) {
		ranges = append(ranges, x.literal.Range)
		slices.SortFunc(ranges, func(a, b protocol.Range) int {
			return protocol.ComparePositions(a.Start, b.Start)
		})
	}

	replacements := make([]protocol.TextEdit, len(ranges))
	for i, r := range ranges {
		replacements[i] = x.generator.LiteralReplacementEdit(x.name, r)
	}

	return &ExtractAllOccurrencesResult{
		ParameterName:          x.name,
		ParameterDefinition:    x.def,
		ReplacementEdits:       replacements,
		ParameterInsertionEdit: x.insertion,
	}
}

// HasMultipleOccurrences reports whether the literal under the cursor occurs
// more than once, which is when the all-occurrences action is worth offering.
func (p *Provider) HasMultipleOccurrences(ctx *template.Context) (multiple bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logPanic(ctx, "", r)
			multiple = false
		}
	}()

	detector := NewLiteralValueDetector()
	literal := p.detect(ctx, detector)
	if literal == nil {
		return false
	}
	return len(FindAllOccurrences(ctx.Tree, detector, literal.Value, literal.Type)) > 1
}

// CreateWorkspaceEdit wraps a single extraction's two edits. They are
// disjoint by construction, so no ordering or validation is applied.
func (p *Provider) CreateWorkspaceEdit(uri string, result *ExtractToParameterResult) *protocol.WorkspaceEdit {
	return edits.CreateWorkspaceEdit(uri, result.Edits()...)
}

// CreateAllOccurrencesWorkspaceEdit orders and validates an all-occurrences extraction.
func (p *Provider) CreateAllOccurrencesWorkspaceEdit(uri string, result *ExtractAllOccurrencesResult) (*protocol.WorkspaceEdit, error) {
	return edits.CreateWorkspaceEditFromEdits(uri, result.Edits())
}

// ValidateWorkspaceEdit is the strict gate; its errors are never swallowed.
func (p *Provider) ValidateWorkspaceEdit(edit *protocol.WorkspaceEdit) error {
	return edits.ValidateWorkspaceEdit(edit)
}

func (p *Provider) logFailure(ctx *template.Context, rng protocol.Range, uri string, err error) {
	if errors.Is(err, errNotExtractable) {
		return
	}
	p.logger.Debug("extract to parameter unavailable",
		"uri", uri,
		"line", ctx.Position.Line,
		"character", ctx.Position.Character,
		"range", rng.String(),
		"error", err,
	)
}

func (p *Provider) logPanic(ctx *template.Context, uri string, recovered any) {
	var line, character int
	if ctx != nil {
		line, character = ctx.Position.Line, ctx.Position.Character
	}
	p.logger.Debug("extract to parameter recovered from panic",
		"uri", uri,
		"line", line,
		"character", character,
		"panic", recovered,
	)
}
