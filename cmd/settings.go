package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xvierd/pomodore/internal/adapters/control"
	"github.com/xvierd/pomodore/internal/adapters/storage"
	"github.com/xvierd/pomodore/internal/adapters/tui"
	"github.com/xvierd/pomodore/internal/domain"
)

// settingsCmd represents the settings command
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change timer settings",
	Long: `Show or change the timer settings: interval durations, sessions until a
long break, sessions per cycle and whether to keep the screen on.

Changes go through the running daemon when there is one, so it picks
them up immediately. Settings cannot change while a timer is running or
paused.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return settingsShowCmd.RunE(cmd, args)
	},
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := currentSettings(cmd.Context())
		if err != nil {
			return err
		}
		return printSettings(cmd.OutOrStdout(), settings)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long:  "Change one setting. Keys: " + strings.Join(domain.SettingsKeys, ", ") + ".\nDurations are in minutes.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		settings, err := currentSettings(ctx)
		if err != nil {
			return err
		}
		next, err := settings.Set(args[0], args[1])
		if err != nil {
			return err
		}
		saved, err := saveSettings(ctx, next)
		if err != nil {
			return err
		}
		return printSettings(cmd.OutOrStdout(), saved)
	},
}

var settingsEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the settings in a form",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		settings, err := currentSettings(ctx)
		if err != nil {
			return err
		}
		next, ok, err := tui.EditSettings(settings)
		if err != nil || !ok {
			return err
		}
		saved, err := saveSettings(ctx, next)
		if err != nil {
			return err
		}
		return printSettings(cmd.OutOrStdout(), saved)
	},
}

var settingsExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the settings as YAML",
	Long:  `Write the settings as YAML to file, or to stdout when no file is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := currentSettings(cmd.Context())
		if err != nil {
			return err
		}

		if len(args) == 0 {
			return storage.ExportSettings(cmd.OutOrStdout(), settings)
		}

		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", args[0], err)
		}
		if err := storage.ExportSettings(f, settings); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Settings exported to %s\n", args[0])
		return nil
	},
}

var settingsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import settings from YAML",
	Long:  `Read settings from a YAML file. Missing or invalid values fall back to defaults.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()

		settings, err := storage.ImportSettings(f)
		if err != nil {
			return err
		}
		saved, err := saveSettings(cmd.Context(), settings)
		if err != nil {
			return err
		}
		return printSettings(cmd.OutOrStdout(), saved)
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsEditCmd)
	settingsCmd.AddCommand(settingsExportCmd)
	settingsCmd.AddCommand(settingsImportCmd)
}

// currentSettings reads the settings from the daemon, or from the local
// store when no daemon is running.
func currentSettings(ctx context.Context) (domain.Settings, error) {
	client, err := daemonClient(ctx)
	if errors.Is(err, control.ErrDaemonNotRunning) {
		return app.settings.Load(ctx)
	}
	if err != nil {
		return domain.Settings{}, err
	}
	state, err := client.Snapshot(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	return state.Settings, nil
}

// saveSettings stores settings through the daemon when it is running so
// its state picks them up, or directly otherwise.
func saveSettings(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	client, err := daemonClient(ctx)
	if errors.Is(err, control.ErrDaemonNotRunning) {
		return app.settings.Update(ctx, settings)
	}
	if err != nil {
		return domain.Settings{}, err
	}
	state, err := client.UpdateSettings(ctx, settings)
	if errors.Is(err, domain.ErrTimerActive) {
		return domain.Settings{}, fmt.Errorf("%w: stop the timer first", err)
	}
	if err != nil {
		return domain.Settings{}, err
	}
	return state.Settings, nil
}

func printSettings(w io.Writer, s domain.Settings) error {
	if jsonOutput {
		data, err := json.MarshalIndent(control.FromSettings(s), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal settings: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	fmt.Fprintln(w, "⚙ Settings")
	fmt.Fprintf(w, "   Work:                  %d min\n", s.WorkDurationMinutes)
	fmt.Fprintf(w, "   Short break:           %d min\n", s.ShortBreakDurationMinutes)
	fmt.Fprintf(w, "   Long break:            %d min\n", s.LongBreakDurationMinutes)
	fmt.Fprintf(w, "   Sessions until long:   %d\n", s.SessionsUntilLongBreak)
	fmt.Fprintf(w, "   Sessions per cycle:    %d\n", s.TotalCycles)
	fmt.Fprintf(w, "   Keep screen on:        %t\n", s.KeepScreenOn)
	return nil
}
