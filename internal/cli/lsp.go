package cli

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/cfn-refactor/internal/config"
	"github.com/mvp-joe/cfn-refactor/internal/lsp"
)

var lspTCP string

// lspCmd represents the lsp command
var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Start the language server",
	Long: `Start a Language Server Protocol server offering "Extract to parameter"
and "Extract all occurrences to parameter" code actions for CloudFormation
templates.

The server communicates over stdio unless --tcp is given. Editor settings
(tab size, spaces) come from the configuration file, which is watched and
reloaded on change.

Examples:
  cfn-refactor lsp
  cfn-refactor lsp --tcp 127.0.0.1:7998`,
	RunE: runLSP,
}

func init() {
	rootCmd.AddCommand(lspCmd)
	lspCmd.Flags().StringVar(&lspTCP, "tcp", "", "listen on a TCP address instead of stdio")
}

func runLSP(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.loader.Watch(rt.reload); err != nil && !errors.Is(err, config.ErrNoConfigFile) {
		rt.logger.Warn("config file will not be reloaded", "error", err)
	}

	server := lsp.NewServer(rt.engine, rt.logger, Version)
	if lspTCP != "" {
		rt.logger.Info("starting language server", "tcp", lspTCP)
		return server.RunTCP(lspTCP)
	}
	rt.logger.Info("starting language server on stdio")
	return server.RunStdio()
}
