// Package notification provides desktop notification utilities.
package notification

import (
	"fmt"

	"github.com/gen2brain/beeep"
	"github.com/xvierd/pomodore/internal/config"
	"github.com/xvierd/pomodore/internal/domain"
	"github.com/xvierd/pomodore/internal/ports"
)

// Notifier handles desktop notifications.
type Notifier struct {
	cfg    *config.NotificationConfig
	notify func(title, message string) error
	beep   func() error
}

var _ ports.Notifier = (*Notifier)(nil)

// New creates a new notifier with the given configuration.
func New(cfg *config.NotificationConfig) *Notifier {
	return &Notifier{
		cfg: cfg,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		beep: func() error {
			return beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
		},
	}
}

// Notify displays a desktop notification if enabled.
func (n *Notifier) Notify(title, message string) error {
	if !n.IsEnabled() {
		return nil
	}
	if err := n.notify(title, message); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	if n.cfg.Sound {
		if err := n.beep(); err != nil {
			return fmt.Errorf("failed to play sound: %w", err)
		}
	}
	return nil
}

// IntervalFinished implements ports.Notifier.
func (n *Notifier) IntervalFinished(c domain.Completion) error {
	title, message := Message(c)
	return n.Notify(title, message)
}

// Message returns the notification text for a finished interval.
func Message(c domain.Completion) (title, message string) {
	switch {
	case c.CycleFinished:
		return "🎉 Cycle Complete!", "You finished every work session in this cycle. Well done."
	case c.Mode == domain.ModeWork:
		next := domain.DisplayMode(c.Next)
		return "🍅 Pomodoro Complete!", fmt.Sprintf("Great job! Time for a %s.", labelLower(next))
	default:
		return "☕ Break Over!", fmt.Sprintf("Your %s is complete. Ready to focus?", labelLower(c.Mode))
	}
}

func labelLower(m domain.TimerMode) string {
	switch m {
	case domain.ModeLongBreak:
		return "long break"
	case domain.ModeShortBreak:
		return "short break"
	default:
		return "work session"
	}
}

// IsEnabled returns true if notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.cfg != nil && n.cfg.Enabled
}
