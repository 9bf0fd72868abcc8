package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/cfn-refactor/internal/config"
	"github.com/mvp-joe/cfn-refactor/internal/logger"
	"github.com/mvp-joe/cfn-refactor/internal/refactor"
)

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cfn-refactor",
	Short: "Extract hard-coded CloudFormation values into template parameters",
	Long: `cfn-refactor replaces a literal in a CloudFormation template (JSON or YAML)
with a reference to a new entry in the template's Parameters section.

It runs as a one-shot command (extract), as a language server offering
"Extract to parameter" code actions (lsp), or as an MCP server (mcp).

Configuration is read from .cfn-refactor/config.yml in the current directory
and can be overridden with CFNREFACTOR_* environment variables.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .cfn-refactor/config.yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
}

// runtime bundles what every command needs.
type runtime struct {
	root   string
	loader config.Loader
	logger *log.Logger
	engine *refactor.Engine
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get current directory")
	}
	return loadRuntime(wd, cfgFile, logLevel, cmd.ErrOrStderr())
}

func loadRuntime(root, configFile, level string, logOut io.Writer) (*runtime, error) {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	loader := config.NewLoader(root, opts...)

	cfg, err := loader.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	applyLogLevel(cfg, level)

	l, err := logger.New(cfg.Log, logOut)
	if err != nil {
		return nil, err
	}
	if used := loader.ConfigFileUsed(); used != "" {
		l.Debug("using config file", "path", used)
	}

	engine, err := refactor.NewEngine(cfg, l)
	if err != nil {
		return nil, err
	}

	return &runtime{root: root, loader: loader, logger: l, engine: engine}, nil
}

func applyLogLevel(cfg *config.Config, level string) {
	if level != "" {
		cfg.Log.Level = level
	}
}

// reload is the config watch callback: it applies a reloaded configuration
// to the engine and logger, keeping the previous one when the file is invalid.
func (rt *runtime) reload(cfg *config.Config, err error) {
	if err != nil {
		rt.logger.Warn("ignoring config change", "error", err)
		return
	}
	applyLogLevel(cfg, logLevel)

	if err := rt.engine.UpdateConfig(cfg); err != nil {
		rt.logger.Warn("ignoring config change", "error", err)
		return
	}
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		rt.logger.SetLevel(level)
	}
	rt.logger.Info("configuration reloaded", "tab_size", cfg.Editor.TabSize, "fallback_prefix", cfg.Extract.FallbackPrefix)
}

func (rt *runtime) close() {
	rt.engine.Close()
}
