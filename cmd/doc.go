// Package cmd implements the command-line interface for attache.
//
// This package provides the following commands:
//   - serve: Start the MCP server with its sidecar HTTP listener
//   - version: Display version information
//
// The serve command is the default command when no subcommand is
// specified.
package cmd
