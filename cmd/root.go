package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the attache application
var rootCmd = &cobra.Command{
	Use:   "attache",
	Short: "Personal assistant MCP server for Google mail, calendar, and contacts",
	Long: `attache is an MCP (Model Context Protocol) server that gives AI
assistants mediated access to a Google account.

Connections are established through a browser OAuth flow, and every
action with outside effects (sending mail, changing the calendar,
editing contacts) must be approved before it runs. Executed actions
are written to an append-only audit log.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "attache version %s\n" .Version}}`)

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
}
