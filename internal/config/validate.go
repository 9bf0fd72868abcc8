package config

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/gobwas/glob"
)

const maxTabSize = 16

var (
	// ErrInvalidTabSize indicates a tab size outside 1..16
	ErrInvalidTabSize = errors.New("invalid tab size")

	// ErrInvalidLogLevel indicates a level charmbracelet/log cannot parse
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrEmptyFallbackPrefix indicates a missing or unusable parameter name prefix
	ErrEmptyFallbackPrefix = errors.New("empty fallback prefix")

	// ErrInvalidCacheSize indicates a non-positive structure cache size
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrInvalidPattern indicates a document glob that does not compile
	ErrInvalidPattern = errors.New("invalid document pattern")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateEditor(&cfg.Editor); err != nil {
		errs = append(errs, err)
	}
	if err := validateExtract(&cfg.Extract); err != nil {
		errs = append(errs, err)
	}
	if err := validateDocuments(&cfg.Documents); err != nil {
		errs = append(errs, err)
	}
	if err := validateLog(&cfg.Log); err != nil {
		errs = append(errs, err)
	}

	return joinErrors(errs)
}

func validateEditor(cfg *EditorConfig) error {
	if cfg.TabSize <= 0 || cfg.TabSize > maxTabSize {
		return errors.Wrapf(ErrInvalidTabSize, "tab_size must be between 1 and %d, got %d", maxTabSize, cfg.TabSize)
	}
	return nil
}

func validateExtract(cfg *ExtractConfig) error {
	prefix := strings.TrimSpace(cfg.FallbackPrefix)
	if prefix == "" {
		return errors.Wrap(ErrEmptyFallbackPrefix, "fallback_prefix is required")
	}
	// Names are built from ASCII letters and digits only; a prefix with none
	// of them would silently fall back to the default.
	if strings.IndexFunc(prefix, isASCIIAlnum) < 0 {
		return errors.Wrapf(ErrEmptyFallbackPrefix, "fallback_prefix %q has no letters or digits", cfg.FallbackPrefix)
	}
	return nil
}

func validateDocuments(cfg *DocumentsConfig) error {
	var errs []error

	if cfg.StructureCacheSize <= 0 {
		errs = append(errs, errors.Wrapf(ErrInvalidCacheSize, "structure_cache_size must be positive, got %d", cfg.StructureCacheSize))
	}

	for _, pattern := range append(append([]string{}, cfg.JSONPatterns...), cfg.YAMLPatterns...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, errors.Wrapf(ErrInvalidPattern, "%q: %v", pattern, err))
		}
	}

	return joinErrors(errs)
}

func validateLog(cfg *LogConfig) error {
	if _, err := log.ParseLevel(cfg.Level); err != nil {
		return errors.Wrapf(ErrInvalidLogLevel, "level %q (valid: debug, info, warn, error, fatal)", cfg.Level)
	}
	return nil
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// joinErrors combines multiple errors into a single error with clear formatting.
// The result still matches every joined sentinel with errors.Is.
func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}

	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return &validationError{
		msg:  "validation failed:\n  - " + strings.Join(msgs, "\n  - "),
		errs: errs,
	}
}

type validationError struct {
	msg  string
	errs []error
}

func (e *validationError) Error() string   { return e.msg }
func (e *validationError) Unwrap() []error { return e.errs }
