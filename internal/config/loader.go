package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	// DirName is the per-project directory holding config.yml.
	DirName = ".cfn-refactor"

	// EnvPrefix prefixes every environment override (CFNREFACTOR_EDITOR_TAB_SIZE).
	EnvPrefix = "CFNREFACTOR"
)

// ErrNoConfigFile is returned by Watch when Load found no file to watch.
var ErrNoConfigFile = errors.New("no config file to watch")

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)

	// Watch calls onChange with a freshly loaded and validated config every
	// time the file found by Load is written. Load must be called first.
	Watch(onChange func(*Config, error)) error

	// ConfigFileUsed returns the path of the file read by Load, or "".
	ConfigFileUsed() string
}

// LoaderOption configures a Loader.
type LoaderOption func(*loader)

// WithConfigFile reads the given file instead of searching rootDir/.cfn-refactor.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) {
		l.configFile = path
	}
}

type loader struct {
	rootDir    string
	configFile string

	mu sync.Mutex
	v  *viper.Viper
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string, opts ...LoaderOption) Loader {
	l := &loader{rootDir: rootDir}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CFNREFACTOR_*)
// 2. Config file (.cfn-refactor/config.yml or .cfn-refactor/config.yaml, or --config)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, DirName))
	}

	// Replace . with _ in env var names (e.g., CFNREFACTOR_EDITOR_TAB_SIZE)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvVars(v)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.v = v
	l.mu.Unlock()

	return cfg, nil
}

func (l *loader) ConfigFileUsed() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.v == nil {
		return ""
	}
	return l.v.ConfigFileUsed()
}

func (l *loader) Watch(onChange func(*Config, error)) error {
	l.mu.Lock()
	v := l.v
	l.mu.Unlock()

	if v == nil {
		return errors.New("config not loaded: call Load before Watch")
	}
	if v.ConfigFileUsed() == "" {
		return ErrNoConfigFile
	}

	v.OnConfigChange(func(event fsnotify.Event) {
		// Editors often save by rename+create; removals leave nothing to read.
		if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
			return
		}
		if err := v.ReadInConfig(); err != nil {
			onChange(nil, errors.Wrapf(err, "failed to reload %s", event.Name))
			return
		}
		onChange(decode(v))
	})
	v.WatchConfig()
	return nil
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// bindEnvVars binds environment variables to config keys.
func bindEnvVars(v *viper.Viper) {
	for _, key := range []string{
		"editor.tab_size",
		"editor.insert_spaces",
		"editor.detect_indentation",
		"extract.fallback_prefix",
		"extract.offer_all_occurrences",
		"documents.json_patterns",
		"documents.yaml_patterns",
		"documents.structure_cache_size",
		"log.level",
		"log.timestamps",
	} {
		_ = v.BindEnv(key)
	}
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("editor.tab_size", defaults.Editor.TabSize)
	v.SetDefault("editor.insert_spaces", defaults.Editor.InsertSpaces)
	v.SetDefault("editor.detect_indentation", defaults.Editor.DetectIndentation)

	v.SetDefault("extract.fallback_prefix", defaults.Extract.FallbackPrefix)
	v.SetDefault("extract.offer_all_occurrences", defaults.Extract.OfferAllOccurrences)

	v.SetDefault("documents.json_patterns", defaults.Documents.JSONPatterns)
	v.SetDefault("documents.yaml_patterns", defaults.Documents.YAMLPatterns)
	v.SetDefault("documents.structure_cache_size", defaults.Documents.StructureCacheSize)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.timestamps", defaults.Log.Timestamps)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get working directory")
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
