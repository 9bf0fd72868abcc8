package config

// Config represents the complete cfn-refactor configuration.
// It can be loaded from .cfn-refactor/config.yml with environment variable overrides.
type Config struct {
	Editor    EditorConfig    `yaml:"editor" mapstructure:"editor"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Documents DocumentsConfig `yaml:"documents" mapstructure:"documents"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// EditorConfig mirrors the formatting options an editor sends with a request.
// Used by the CLI and MCP surfaces, and by the LSP server until the client says otherwise.
type EditorConfig struct {
	TabSize           int  `yaml:"tab_size" mapstructure:"tab_size"`
	InsertSpaces      bool `yaml:"insert_spaces" mapstructure:"insert_spaces"`
	DetectIndentation bool `yaml:"detect_indentation" mapstructure:"detect_indentation"` // prefer the document's own indent
}

// ExtractConfig tunes the extract-to-parameter refactoring.
type ExtractConfig struct {
	FallbackPrefix      string `yaml:"fallback_prefix" mapstructure:"fallback_prefix"`             // name stem when no property/resource name is usable
	OfferAllOccurrences bool   `yaml:"offer_all_occurrences" mapstructure:"offer_all_occurrences"` // offer the all-occurrences code action
}

// DocumentsConfig decides which files are templates and how much analysis is cached.
type DocumentsConfig struct {
	JSONPatterns       []string `yaml:"json_patterns" mapstructure:"json_patterns"`
	YAMLPatterns       []string `yaml:"yaml_patterns" mapstructure:"yaml_patterns"`
	StructureCacheSize int      `yaml:"structure_cache_size" mapstructure:"structure_cache_size"`
}

// LogConfig configures the stderr logger.
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
	Timestamps bool   `yaml:"timestamps" mapstructure:"timestamps"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			TabSize:           2,
			InsertSpaces:      true,
			DetectIndentation: true,
		},
		Extract: ExtractConfig{
			FallbackPrefix:      "Parameter",
			OfferAllOccurrences: true,
		},
		Documents: DocumentsConfig{
			JSONPatterns:       []string{"**/*.json", "*.json"},
			YAMLPatterns:       []string{"**/*.yaml", "**/*.yml", "*.yaml", "*.yml"},
			StructureCacheSize: 256,
		},
		Log: LogConfig{
			Level:      "info",
			Timestamps: false,
		},
	}
}
