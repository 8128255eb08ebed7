package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xvierd/pomodore/internal/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server for integration with AI assistants.
The server communicates over stdio and drives the running daemon: it can read
the timer state and settings, start, pause, resume, skip and stop timers, and
change settings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemonClient(cmd.Context())
		if err != nil {
			return err
		}

		// stdout carries the protocol; nothing else may be printed there.
		server := mcp.NewServer(client, Version)
		if err := server.Start(); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}
