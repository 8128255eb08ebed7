package background

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xvierd/pomodore/internal/ports"
)

// LogDisplay writes status changes to a logger. It is used when the daemon
// runs without a tray.
type LogDisplay struct {
	logger *slog.Logger
	last   string
}

// NewLogDisplay creates a display that logs through logger.
func NewLogDisplay(logger *slog.Logger) *LogDisplay {
	return &LogDisplay{logger: logger}
}

// Render logs the view once per whole minute and on every title change.
func (d *LogDisplay) Render(view ports.StatusView) error {
	minute := fmt.Sprintf("%s/%d", view.Title, view.Remaining/time.Minute)
	if minute == d.last {
		return nil
	}
	d.last = minute
	d.logger.Info("status", "title", view.Title, "remaining", view.Text, "actions", view.Actions)
	return nil
}

// Clear implements ports.StatusDisplay.
func (d *LogDisplay) Clear() error {
	if d.last != "" {
		d.logger.Info("status cleared")
	}
	d.last = ""
	return nil
}
