package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/xvierd/pomodore/internal/config"
	"github.com/xvierd/pomodore/internal/domain"
)

// PickerItem represents one option in the picker.
type PickerItem struct {
	Label string
	Desc  string
}

// PickerResult holds the outcome of a picker interaction.
type PickerResult struct {
	Index   int
	Aborted bool
}

type pickerModel struct {
	title   string
	items   []PickerItem
	cursor  int
	aborted bool
	theme   config.ThemeConfig
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter":
			return m, tea.Quit
		case "ctrl+c", "esc", "q":
			m.aborted = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorWork))
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorWork)).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  "+m.title) + "\n\n")

	for i, item := range m.items {
		if i == m.cursor {
			b.WriteString(activeStyle.Render(fmt.Sprintf("  ▸ %-12s %s", item.Label, item.Desc)) + "\n")
		} else {
			b.WriteString(dimStyle.Render(fmt.Sprintf("    %-12s %s", item.Label, item.Desc)) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  ↑/↓ navigate · enter select · esc back") + "\n")

	return b.String()
}

// RunPicker launches an interactive arrow-key picker and returns the selected index.
func RunPicker(title string, items []PickerItem, theme *config.ThemeConfig) PickerResult {
	m := pickerModel{
		title: title,
		items: items,
		theme: resolveTheme(theme),
	}

	result, err := tea.NewProgram(m).Run()
	if err != nil {
		return PickerResult{Aborted: true}
	}

	final := result.(pickerModel)
	if final.aborted {
		return PickerResult{Aborted: true}
	}
	return PickerResult{Index: final.cursor}
}

// ModeItems lists the timer modes with their configured durations.
func ModeItems(settings domain.Settings) []PickerItem {
	items := make([]PickerItem, len(domain.ValidModes))
	for i, mode := range domain.ValidModes {
		items[i] = PickerItem{
			Label: mode.Label(),
			Desc:  fmt.Sprintf("%d min", int(settings.Duration(mode).Minutes())),
		}
	}
	return items
}

// PickMode asks the user which interval to start.
func PickMode(settings domain.Settings, theme *config.ThemeConfig) (domain.TimerMode, bool) {
	res := RunPicker("Start which timer?", ModeItems(settings), theme)
	if res.Aborted {
		return "", false
	}
	return domain.ValidModes[res.Index], true
}
