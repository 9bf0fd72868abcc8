package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Build information, overridden with -ldflags "-X github.com/mvp-joe/cfn-refactor/internal/cli.Version=...".
	// Version is also reported as the LSP and MCP server version.
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

// versionCmd prints the build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cfn-refactor",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "cfn-refactor %s\n", Version)
		fmt.Fprintf(out, "Git commit: %s\n", GitCommit)
		fmt.Fprintf(out, "Build date: %s\n", BuildDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
