package cli

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/cfn-refactor/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for parameter extraction",
	Long: `Start the Model Context Protocol (MCP) server that lets LLM-powered coding
assistants extract literals from CloudFormation templates into parameters.

The MCP server:
- Provides the cfn_extract_to_parameter tool
- Resolves relative template paths against the current directory
- Communicates via stdio (standard MCP transport)

Example:
  cfn-refactor mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	server := mcp.NewServer(rt.engine, rt.root, Version, rt.logger)
	if err := server.Serve(cmd.Context()); err != nil {
		return errors.Wrap(err, "MCP server error")
	}
	return nil
}
