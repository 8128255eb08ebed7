package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"github.com/xvierd/pomodore/internal/adapters/tray"
	"github.com/xvierd/pomodore/internal/adapters/tui"
	"github.com/xvierd/pomodore/internal/domain"
)

var (
	runHeadless bool
	runTray     bool
	runMode     string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the timer daemon",
	Long: `Run the timer daemon in the foreground. Other pomodore commands talk to
it over the control endpoint (control.address in the config file).

On a terminal the daemon shows the full-screen timer; use --headless to
log status changes instead, or --tray to show them in the system tray.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := setupSignalHandler()
		defer stop()

		var mode domain.TimerMode
		if runMode != "" {
			m, err := domain.ParseMode(runMode)
			if err != nil {
				return err
			}
			mode = m
		}

		if runTray || (app.config.Status.Tray && !cmd.Flags().Changed("tray")) {
			return runWithTray(ctx, mode)
		}
		return runDaemon(ctx, cmd.OutOrStdout(), mode, !runHeadless && isInteractive())
	},
}

func init() {
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "Do not show the timer UI, even on a terminal")
	runCmd.Flags().BoolVar(&runTray, "tray", false, "Show the status in the system tray (default: status.tray)")
	runCmd.Flags().StringVar(&runMode, "start", "", "Start a timer right away: work, short_break or long_break")
}

// isInteractive reports whether stdin and stdout are both terminals.
func isInteractive() bool {
	return term.IsTerminal(os.Stdin.Fd()) && term.IsTerminal(os.Stdout.Fd())
}

// runDaemon runs the daemon until ctx is done, with the TUI attached when
// withTUI is set. A non-empty mode is started immediately.
func runDaemon(ctx context.Context, w io.Writer, mode domain.TimerMode, withTUI bool) error {
	if withTUI {
		if err := logToFile(); err != nil {
			return err
		}
	}

	d, err := startDaemon(ctx, daemonOptions{})
	if err != nil {
		return err
	}
	if mode != "" {
		d.controller.StartTimer(mode)
	}

	if !withTUI {
		fmt.Fprintf(w, "🍅 Pomodore daemon listening on %s\n", d.addr)
		fmt.Fprintln(w, "   Press Ctrl+C to stop")
		err := d.Wait(ctx)
		return errors.Join(err, d.Close())
	}

	err = tui.Run(ctx, d.controller, tui.Options{
		Theme:        &app.config.Theme,
		EditSettings: tui.EditSettings,
		AltScreen:    true,
	})
	return errors.Join(err, d.Close())
}

// runWithTray runs the daemon behind a system tray indicator. The tray
// event loop owns the calling goroutine until the user quits.
func runWithTray(ctx context.Context, mode domain.TimerMode) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var current atomic.Pointer[daemon]
	errs := make(chan error, 1)

	callbacks := tray.Callbacks{
		OnCommand: func(req domain.CommandRequest) {
			d := current.Load()
			if d == nil {
				return
			}
			if _, err := d.controller.Dispatch(ctx, req); err != nil {
				app.logger.Warn("tray command failed", "command", req.Command, "error", err)
			}
		},
		OnQuit: cancel,
	}

	ready := func(m *tray.Manager) {
		d, err := startDaemon(ctx, daemonOptions{display: m})
		if err != nil {
			errs <- err
			tray.Quit()
			return
		}
		current.Store(d)
		if mode != "" {
			d.controller.StartTimer(mode)
		}
		go func() {
			errs <- d.Wait(ctx)
			tray.Quit()
		}()
	}

	tray.Run(nil, callbacks, ready, nil)

	cancel()
	var err error
	if d := current.Load(); d != nil {
		err = d.Close()
	}
	select {
	case werr := <-errs:
		err = errors.Join(werr, err)
	default:
	}
	return err
}

// runQuickStart backs the bare "pomodore" command: attach to a running
// daemon, or pick a timer and run one in-process.
func runQuickStart(cmd *cobra.Command, args []string) error {
	if !isInteractive() {
		return cmd.Help()
	}

	ctx, stop := setupSignalHandler()
	defer stop()

	if client, err := daemonClient(ctx); err == nil {
		if err := logToFile(); err != nil {
			return err
		}
		return tui.Run(ctx, client, tui.Options{
			Theme:        &app.config.Theme,
			EditSettings: tui.EditSettings,
			AltScreen:    true,
		})
	}

	for {
		settings, err := app.settings.Load(ctx)
		if err != nil {
			return err
		}

		items := append(tui.ModeItems(settings), tui.PickerItem{Label: "Settings", Desc: "Edit durations and cycle length"})
		res := tui.RunPicker("Pomodore:", items, &app.config.Theme)
		if res.Aborted {
			return nil
		}
		if res.Index < len(domain.ValidModes) {
			return runDaemon(ctx, cmd.OutOrStdout(), domain.ValidModes[res.Index], true)
		}

		next, ok, err := tui.EditSettings(settings)
		if err != nil {
			return err
		}
		if ok {
			if _, err := app.settings.Update(ctx, next); err != nil {
				return err
			}
		}
	}
}
