package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the gmail-mcp application
var rootCmd = &cobra.Command{
	Use:   "gmail-mcp",
	Short: "MCP server exposing Gmail tools for AI assistants",
	Long: `gmail-mcp is a Model Context Protocol (MCP) server that exposes Gmail
to AI assistants: listing and searching emails, reading decoded message
bodies, sending and replying with attachments, managing labels and drafts,
and downloading attachments.

Multiple Google accounts are supported through per-account OAuth tokens.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gmail-mcp version %s\n", version)
		},
	}
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gmail-mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
