package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xvierd/pomodore/internal/adapters/tui"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current status",
	Long:  `Display the daemon's current timer, session count and cycle progress.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := daemonClient(ctx)
		if err != nil {
			return err
		}
		state, err := client.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("failed to get current state: %w", err)
		}
		return printState(cmd.OutOrStdout(), state)
	},
}

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Attach the timer UI to the running daemon",
	Long: `Attach the full-screen timer to the running daemon. Quitting the UI leaves
the daemon and its timer running. Without a terminal, every state change
is printed instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := setupSignalHandler()
		defer stop()

		client, err := daemonClient(ctx)
		if err != nil {
			return err
		}

		if isInteractive() && !jsonOutput {
			if err := logToFile(); err != nil {
				return err
			}
			return tui.Run(ctx, client, tui.Options{
				Theme:        &app.config.Theme,
				EditSettings: tui.EditSettings,
				AltScreen:    true,
			})
		}

		states, err := client.Watch(ctx)
		if err != nil {
			return err
		}
		for state := range states {
			if err := printState(cmd.OutOrStdout(), state); err != nil {
				return err
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		return errors.New("daemon closed the connection")
	},
}
