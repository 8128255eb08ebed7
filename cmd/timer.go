package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/xvierd/pomodore/internal/adapters/control"
	"github.com/xvierd/pomodore/internal/adapters/tui"
	"github.com/xvierd/pomodore/internal/domain"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start [work|short_break|long_break]",
	Short: "Start a timer",
	Long: `Start a timer on the running daemon. Without an argument an interactive
picker is shown on a terminal, otherwise a work session starts.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := daemonClient(ctx)
		if err != nil {
			return err
		}

		mode := domain.ModeWork
		switch {
		case len(args) == 1:
			mode, err = domain.ParseMode(args[0])
			if err != nil {
				return err
			}
		case isInteractive() && !jsonOutput:
			state, err := client.Snapshot(ctx)
			if err != nil {
				return err
			}
			picked, ok := tui.PickMode(state.Settings, &app.config.Theme)
			if !ok {
				return nil
			}
			mode = picked
		}

		return sendCommand(ctx, cmd.OutOrStdout(), client, domain.CommandRequest{Command: domain.CmdStart, Mode: mode})
	},
}

// pauseCmd represents the pause command
var pauseCmd = newTimerCommand("pause", "Pause the running timer", domain.CmdPause)

// resumeCmd represents the resume command
var resumeCmd = newTimerCommand("resume", "Resume a paused timer", domain.CmdResume)

// stopCmd represents the stop command
var stopCmd = newTimerCommand("stop", "Stop the timer and reset the cycle", domain.CmdStop)

// skipCmd represents the skip command
var skipCmd = newTimerCommand("skip", "Skip to the next interval", domain.CmdSkip)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send <command> [mode]",
	Short: "Send a raw command to the daemon",
	Long: `Send one of START, PAUSE, RESUME, STOP or SKIP to the daemon. Commands are
case-insensitive; START takes an optional timer mode.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		command, err := domain.ParseCommand(args[0])
		if err != nil {
			return err
		}
		req := domain.CommandRequest{Command: command}
		if len(args) == 2 {
			req.Mode = domain.TimerMode(args[1])
		}

		client, err := daemonClient(cmd.Context())
		if err != nil {
			return err
		}
		return sendCommand(cmd.Context(), cmd.OutOrStdout(), client, req)
	},
}

func newTimerCommand(use, short string, command domain.Command) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := daemonClient(cmd.Context())
			if err != nil {
				return err
			}
			return sendCommand(cmd.Context(), cmd.OutOrStdout(), client, domain.CommandRequest{Command: command})
		},
	}
}

func sendCommand(ctx context.Context, w io.Writer, client *control.Client, req domain.CommandRequest) error {
	state, err := client.Dispatch(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to send %s: %w", req.Command, err)
	}
	return printState(w, state)
}

// printState writes state as JSON or as the one-shot status summary.
func printState(w io.Writer, state domain.PomodoroState) error {
	if !jsonOutput {
		tui.ShowStatus(w, state)
		return nil
	}
	data, err := json.MarshalIndent(control.FromState(state), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
