package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/xvierd/pomodore/internal/config"
	"github.com/xvierd/pomodore/internal/domain"
	"github.com/xvierd/pomodore/internal/ports"
)

// Options configures Run.
type Options struct {
	Theme *config.ThemeConfig
	// EditSettings runs when the user presses [e]. It returns the settings
	// to save, or false if the user backed out.
	EditSettings func(domain.Settings) (domain.Settings, bool, error)
	// AltScreen switches to the alternate screen buffer.
	AltScreen bool
}

// Run attaches the TUI to commander and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, commander ports.SessionCommander, opts Options) error {
	for {
		wantsSettings, state, err := runOnce(ctx, commander, opts)
		if err != nil || !wantsSettings {
			return err
		}
		if opts.EditSettings == nil {
			continue
		}
		next, ok, err := opts.EditSettings(state.Settings)
		if err != nil {
			return err
		}
		if ok {
			if _, err := commander.UpdateSettings(ctx, next); err != nil && !errors.Is(err, domain.ErrTimerActive) {
				return fmt.Errorf("failed to save settings: %w", err)
			}
		}
	}
}

func runOnce(ctx context.Context, commander ports.SessionCommander, opts Options) (bool, domain.PomodoroState, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	states, err := commander.Watch(watchCtx)
	if err != nil {
		return false, domain.PomodoroState{}, err
	}
	// Watch always sends the current state first.
	initial, ok := <-states
	if !ok {
		return false, domain.PomodoroState{}, errors.New("session closed before the first state")
	}

	model := NewModel(watchCtx, commander, states, initial, opts.Theme)

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	final, err := tea.NewProgram(model, programOpts...).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return false, domain.PomodoroState{}, fmt.Errorf("failed to run TUI: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return false, domain.PomodoroState{}, nil
	}
	return m.WantsSettings, m.State(), nil
}

// ShowStatus prints a one-shot summary of state.
func ShowStatus(w io.Writer, state domain.PomodoroState) {
	mode := domain.DisplayMode(state.Timer)
	switch t := state.Timer.(type) {
	case domain.Running:
		fmt.Fprintf(w, "🍅 %s running\n", mode.Label())
		fmt.Fprintf(w, "   Remaining: %s of %s\n", domain.FormatClock(t.Remaining), domain.FormatClock(t.Total))
		fmt.Fprintf(w, "   Progress: %.0f%%\n", domain.Progress(t)*100)
	case domain.Paused:
		fmt.Fprintf(w, "⏸ %s paused\n", mode.Label())
		fmt.Fprintf(w, "   Remaining: %s of %s\n", domain.FormatClock(t.Remaining), domain.FormatClock(t.Total))
	case domain.Completed:
		fmt.Fprintf(w, "✔ %s finished\n", t.Mode.Label())
	default:
		fmt.Fprintln(w, "No timer running.")
	}
	fmt.Fprintf(w, "   Session: %d of %d (%d completed)\n",
		state.CurrentSession, state.Settings.TotalCycles, state.CompletedSessions)
	if state.CelebrationDue() {
		fmt.Fprintln(w, "\n🎉 Cycle complete!")
	}
}
