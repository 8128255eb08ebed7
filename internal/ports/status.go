package ports

import (
	"time"

	"github.com/xvierd/pomodore/internal/domain"
)

// StatusReporter is the background process that keeps the status
// indicator current. It only ever sees timer snapshots sent as commands.
// This is a driven port (implemented by adapters).
type StatusReporter interface {
	// Start begins showing a countdown.
	Start(state domain.TimerState)

	// Update resynchronises a countdown that is already shown.
	Update(state domain.TimerState)

	// Pause freezes the shown countdown.
	Pause(state domain.TimerState)

	// Stop clears the indicator.
	Stop()
}

// StatusView is what the status indicator renders.
type StatusView struct {
	Title     string
	Text      string
	Mode      domain.TimerMode
	Remaining time.Duration
	Total     time.Duration
	Paused    bool
	// Actions are the commands offered as buttons, in display order.
	Actions []domain.Command
}

// StatusDisplay draws the status indicator.
// This is a driven port (implemented by adapters).
type StatusDisplay interface {
	Render(view StatusView) error
	Clear() error
}

// Notifier announces finished intervals to the user.
// This is a driven port (implemented by adapters).
type Notifier interface {
	IntervalFinished(c domain.Completion) error
}
