// Package tray shows the status indicator in the system tray, with one
// menu entry per timer command.
package tray

import (
	"sync"

	"fyne.io/systray"
	"github.com/xvierd/pomodore/internal/domain"
	"github.com/xvierd/pomodore/internal/ports"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnCommand func(domain.CommandRequest)
	OnQuit    func()
}

// menuItem is the part of *systray.MenuItem the manager drives.
type menuItem interface {
	SetTitle(title string)
	Show()
	Hide()
}

// Manager keeps the tray title and menu in line with the status view.
// It implements ports.StatusDisplay.
type Manager struct {
	callbacks  Callbacks
	setTitle   func(string)
	setTooltip func(string)

	mu         sync.Mutex
	statusItem menuItem
	actions    map[domain.Command]menuItem
	startItem  menuItem
}

var _ ports.StatusDisplay = (*Manager)(nil)

var actionTitles = map[domain.Command]string{
	domain.CmdPause:  "Pause",
	domain.CmdResume: "Resume",
	domain.CmdSkip:   "Skip",
	domain.CmdStop:   "Stop",
}

// Run starts the tray event loop and blocks until Quit. It must be
// called from the main goroutine. ready receives the manager once the
// menu exists.
func Run(icon []byte, callbacks Callbacks, ready func(*Manager), exit func()) {
	systray.Run(func() {
		if len(icon) > 0 {
			systray.SetIcon(icon)
		}
		m := newSystrayManager(callbacks)
		if ready != nil {
			ready(m)
		}
	}, exit)
}

// Quit stops the tray event loop.
func Quit() {
	systray.Quit()
}

func newSystrayManager(callbacks Callbacks) *Manager {
	m := &Manager{
		callbacks:  callbacks,
		setTitle:   systray.SetTitle,
		setTooltip: systray.SetTooltip,
		actions:    make(map[domain.Command]menuItem),
	}

	status := systray.AddMenuItem("Idle", "Current timer")
	status.Disable()
	m.statusItem = status
	systray.AddSeparator()

	start := systray.AddMenuItem("Start work", "Start a work session")
	m.startItem = start
	go m.listen(start.ClickedCh, domain.CommandRequest{Command: domain.CmdStart, Mode: domain.ModeWork})

	for _, cmd := range []domain.Command{domain.CmdPause, domain.CmdResume, domain.CmdSkip, domain.CmdStop} {
		item := systray.AddMenuItem(actionTitles[cmd], "")
		item.Hide()
		m.actions[cmd] = item
		go m.listen(item.ClickedCh, domain.CommandRequest{Command: cmd})
	}

	systray.AddSeparator()
	quit := systray.AddMenuItem("Quit", "Quit pomodore")
	go func() {
		for range quit.ClickedCh {
			if m.callbacks.OnQuit != nil {
				m.callbacks.OnQuit()
			}
		}
	}()

	m.idle()
	return m
}

func (m *Manager) listen(clicks <-chan struct{}, req domain.CommandRequest) {
	for range clicks {
		m.trigger(req)
	}
}

func (m *Manager) trigger(req domain.CommandRequest) {
	if m.callbacks.OnCommand != nil {
		m.callbacks.OnCommand(req)
	}
}

// Render implements ports.StatusDisplay.
func (m *Manager) Render(view ports.StatusView) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clock := domain.FormatClock(view.Remaining)
	m.setTitle(clock)
	m.setTooltip(view.Title + " " + view.Text)
	m.statusItem.SetTitle(view.Title + " " + clock)

	m.startItem.Hide()
	for cmd, item := range m.actions {
		item.Hide()
		for _, offered := range view.Actions {
			if offered == cmd {
				item.Show()
			}
		}
	}
	return nil
}

// Clear implements ports.StatusDisplay.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idle()
	return nil
}

func (m *Manager) idle() {
	m.setTitle("")
	m.setTooltip("pomodore")
	m.statusItem.SetTitle("Idle")
	m.startItem.Show()
	for _, item := range m.actions {
		item.Hide()
	}
}
