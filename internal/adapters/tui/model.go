// Package tui provides the terminal user interface implementation
// using the Bubbletea framework.
package tui

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/xvierd/pomodore/internal/config"
	"github.com/xvierd/pomodore/internal/domain"
	"github.com/xvierd/pomodore/internal/ports"
)

// CelebrationTicks is how many seconds the cycle banner stays up.
const CelebrationTicks = 5

// resolveTheme fills any empty string fields in the given ThemeConfig with defaults.
// If theme is nil, returns the full default theme.
func resolveTheme(theme *config.ThemeConfig) config.ThemeConfig {
	defaults := config.DefaultThemeConfig()
	if theme == nil {
		return defaults
	}
	resolved := *theme
	rv := reflect.ValueOf(&resolved).Elem()
	dv := reflect.ValueOf(defaults)
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.String() == "" {
			f.SetString(dv.Field(i).String())
		}
	}
	return resolved
}

// tickMsg drives the celebration countdown.
type tickMsg time.Time

// stateMsg carries a state pushed by the session.
type stateMsg domain.PomodoroState

// closedMsg is sent when the state stream ends.
type closedMsg struct{}

// commandResultMsg carries the outcome of a dispatched command.
type commandResultMsg struct {
	state domain.PomodoroState
	err   error
}

// Model represents the TUI state.
type Model struct {
	ctx       context.Context
	commander ports.SessionCommander
	states    <-chan domain.PomodoroState
	state     domain.PomodoroState
	theme     config.ThemeConfig
	progress  progress.Model
	width     int
	height    int
	lastErr   error

	celebrationTicks int
	celebrated       bool

	// WantsSettings signals that the user asked to edit settings; the
	// caller runs the settings form and restarts the TUI.
	WantsSettings bool
}

// NewModel creates a new TUI model. states is the session's state stream.
func NewModel(ctx context.Context, commander ports.SessionCommander, states <-chan domain.PomodoroState, initial domain.PomodoroState, theme *config.ThemeConfig) Model {
	m := Model{
		ctx:       ctx,
		commander: commander,
		states:    states,
		state:     initial,
		theme:     resolveTheme(theme),
		progress:  progress.New(progress.WithDefaultGradient()),
	}
	if initial.CelebrationDue() {
		m.celebrationTicks = CelebrationTicks
	}
	return m
}

// State returns the last state the model rendered.
func (m Model) State() domain.PomodoroState {
	return m.state
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	if m.celebrationTicks > 0 {
		return tea.Batch(waitForState(m.states), tickCmd())
	}
	return waitForState(m.states)
}

// waitForState returns a tea.Cmd that blocks on the next pushed state.
func waitForState(states <-chan domain.PomodoroState) tea.Cmd {
	if states == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-states
		if !ok {
			return closedMsg{}
		}
		return stateMsg(s)
	}
}

func (m Model) dispatch(cmd domain.Command, mode domain.TimerMode) tea.Cmd {
	return func() tea.Msg {
		s, err := m.commander.Dispatch(m.ctx, domain.CommandRequest{Command: cmd, Mode: mode})
		return commandResultMsg{state: s, err: err}
	}
}

// markCelebrationShown tells the session, local or remote, that the banner
// ran so the next attach does not replay it.
func (m Model) markCelebrationShown() tea.Cmd {
	return func() tea.Msg {
		s, err := m.commander.MarkCelebrationShown(m.ctx)
		return commandResultMsg{state: s, err: err}
	}
}

// celebrate starts the banner countdown if the state calls for it.
func (m *Model) celebrate() tea.Cmd {
	if !m.state.CelebrationDue() {
		// Only a fresh cycle re-arms the banner; the marked state keeps it off.
		if !m.state.CelebrationShown {
			m.celebrated = false
		}
		return nil
	}
	if m.celebrationTicks > 0 || m.celebrated {
		return nil
	}
	m.celebrationTicks = CelebrationTicks
	return tickCmd()
}

// getThemeColor returns the color for the current state.
func (m Model) getThemeColor() lipgloss.Color {
	return lipgloss.Color(themeColor(m.theme, m.state.Theme()))
}

func themeColor(theme config.ThemeConfig, key domain.ThemeKey) string {
	switch key {
	case domain.ThemeShortBreak:
		return theme.ColorShortBreak
	case domain.ThemeLongBreak:
		return theme.ColorLongBreak
	case domain.ThemePaused:
		return theme.ColorPaused
	case domain.ThemeCelebration:
		return theme.ColorCelebration
	default:
		return theme.ColorWork
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 4

	case stateMsg:
		m.state = domain.PomodoroState(msg)
		return m, tea.Batch(waitForState(m.states), m.celebrate())

	case commandResultMsg:
		m.lastErr = msg.err
		if msg.err == nil {
			m.state = msg.state
		}
		return m, m.celebrate()

	case closedMsg:
		return m, tea.Quit

	case tickMsg:
		if m.celebrationTicks == 0 {
			return m, nil
		}
		m.celebrationTicks--
		if m.celebrationTicks > 0 {
			return m, tickCmd()
		}
		m.celebrated = true
		m.state = m.state.MarkCelebrationShown()
		return m, m.markCelebrationShown()
	}

	var cmd tea.Cmd
	newProgress, cmd := m.progress.Update(msg)
	if p, ok := newProgress.(progress.Model); ok {
		m.progress = p
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	controls := m.state.Controls()
	m.lastErr = nil

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "s", "1":
		if controls.Start {
			return m, m.dispatch(domain.CmdStart, domain.ModeWork)
		}
	case "2":
		if controls.Start {
			return m, m.dispatch(domain.CmdStart, domain.ModeShortBreak)
		}
	case "3":
		if controls.Start {
			return m, m.dispatch(domain.CmdStart, domain.ModeLongBreak)
		}
	case "p", " ":
		if controls.Pause {
			return m, m.dispatch(domain.CmdPause, "")
		}
		if controls.Resume {
			return m, m.dispatch(domain.CmdResume, "")
		}
	case "r":
		if controls.Resume {
			return m, m.dispatch(domain.CmdResume, "")
		}
	case "x":
		if controls.Stop {
			return m, m.dispatch(domain.CmdStop, "")
		}
	case "k":
		if controls.Skip {
			return m, m.dispatch(domain.CmdSkip, "")
		}
	case "e":
		if controls.EditSettings {
			m.WantsSettings = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(m.getThemeColor()).MarginBottom(1)
	sections = append(sections, titleStyle.Render(fmt.Sprintf("%s Pomodore", m.theme.IconApp)))

	if m.celebrationTicks > 0 {
		sections = m.viewCelebration(sections)
	} else {
		sections = m.viewTimer(sections)
	}

	if m.lastErr != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorWork))
		sections = append(sections, "", errStyle.Render("Error: "+m.lastErr.Error()))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) viewCelebration(sections []string) []string {
	bannerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#000000")).
		Background(lipgloss.Color(m.theme.ColorCelebration)).
		Padding(1, 4)
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	sections = append(sections, "")
	sections = append(sections, bannerStyle.Render("🎉 Cycle complete!"))
	sections = append(sections, "")
	sections = append(sections, helpStyle.Render(fmt.Sprintf("%d of %d sessions done. Take a well-earned rest.",
		m.state.CompletedSessions, m.state.Settings.TotalCycles)))
	return sections
}

func (m Model) viewTimer(sections []string) []string {
	color := m.getThemeColor()
	statusStyle := lipgloss.NewStyle().Foreground(color)
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	mode := domain.DisplayMode(m.state.Timer)
	remaining := m.state.Settings.Duration(mode)
	status := "Ready"
	switch t := m.state.Timer.(type) {
	case domain.Running:
		remaining = t.Remaining
		status = "Running"
	case domain.Paused:
		remaining = t.Remaining
		status = "Paused"
	case domain.Completed:
		remaining = 0
		status = "Finished"
	}

	sections = append(sections, statusStyle.Render(fmt.Sprintf("%s (%s)", mode.Label(), status)))
	sections = append(sections, "")
	sections = append(sections, renderBigTime(domain.FormatClock(remaining), color, m.width))

	if _, paused := m.state.Timer.(domain.Paused); paused {
		pauseBadge := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color(m.theme.ColorPaused)).
			Padding(0, 1).
			Render(fmt.Sprintf("%s PAUSED", m.theme.IconPaused))
		sections = append(sections, "", pauseBadge)
	}

	sections = append(sections, "")
	pbar := progress.New(progress.WithSolidFill(string(color)), progress.WithoutPercentage())
	pbar.Width = m.width - 4
	sections = append(sections, pbar.ViewAs(domain.Progress(m.state.Timer)))

	sections = append(sections, helpStyle.Render(fmt.Sprintf("Session %d of %d · %d completed",
		m.state.CurrentSession, m.state.Settings.TotalCycles, m.state.CompletedSessions)))

	controls := m.state.Controls()
	if controls.KeepAwake {
		sections = append(sections, helpStyle.Render("☀ keeping screen on"))
	}

	sections = append(sections, "")
	sections = append(sections, helpStyle.Render(helpLine(controls)))
	return sections
}

func helpLine(c domain.Controls) string {
	switch {
	case c.Pause:
		return "[p]ause  s[k]ip  [x] stop  [q]uit"
	case c.Resume:
		return "[r]esume  s[k]ip  [x] stop  [q]uit"
	default:
		return "[s]tart  [2] short break  [3] long break  [e]dit settings  [q]uit"
	}
}

// tickCmd creates a command that sends a tick message.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
