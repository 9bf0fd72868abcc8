package documents

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gobwas/glob"

	"github.com/mvp-joe/cfn-refactor/internal/config"
	"github.com/mvp-joe/cfn-refactor/internal/syntax"
)

// TypeDetector decides whether a document is a JSON or YAML template.
//
// Implementation Plan:
// 1. A language id the editor sent wins ("json", "yaml", "cloudformation-yaml", ...)
// 2. Otherwise the file path is matched against the configured globs
// 3. Otherwise the content is sniffed: a leading '{' is JSON, a top-level
//    template key is YAML
type TypeDetector struct {
	json []glob.Glob
	yaml []glob.Glob
}

// NewTypeDetector compiles the configured document patterns.
func NewTypeDetector(cfg config.DocumentsConfig) (*TypeDetector, error) {
	jsonGlobs, err := compileAll(cfg.JSONPatterns)
	if err != nil {
		return nil, err
	}
	yamlGlobs, err := compileAll(cfg.YAMLPatterns)
	if err != nil {
		return nil, err
	}
	return &TypeDetector{json: jsonGlobs, yaml: yamlGlobs}, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, errors.Wrapf(config.ErrInvalidPattern, "%q: %v", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Detect returns the document type for uri, or DocumentTypeUnknown.
func (d *TypeDetector) Detect(uri, languageID, content string) syntax.DocumentType {
	if t := syntax.ParseDocumentType(languageID); t != syntax.DocumentTypeUnknown {
		return t
	}

	if path := PathFromURI(uri); path != "" {
		slashed := filepath.ToSlash(path)
		if matchAny(d.json, slashed) {
			return syntax.DocumentTypeJSON
		}
		if matchAny(d.yaml, slashed) {
			return syntax.DocumentTypeYAML
		}
	}

	return sniff(content)
}

func matchAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

var yamlTemplateKeys = []string{"AWSTemplateFormatVersion:", "Resources:", "Parameters:", "Transform:"}

func sniff(content string) syntax.DocumentType {
	trimmed := strings.TrimLeft(content, " \t\r\n\uFEFF")
	if strings.HasPrefix(trimmed, "{") {
		return syntax.DocumentTypeJSON
	}
	for line := range strings.SplitSeq(content, "\n") {
		for _, key := range yamlTemplateKeys {
			if strings.HasPrefix(line, key) {
				return syntax.DocumentTypeYAML
			}
		}
	}
	return syntax.DocumentTypeUnknown
}

// PathFromURI returns the filesystem path of a file:// URI, or the input
// unchanged when it has no scheme. Other schemes yield "".
func PathFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "file":
		return filepath.FromSlash(u.Path)
	case "":
		return uri
	default:
		return ""
	}
}

// URIFromPath builds a file:// URI for an absolute or relative path.
func URIFromPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}
