package ports

import (
	"context"

	"github.com/xvierd/pomodore/internal/domain"
)

// SessionCommander drives a pomodoro session, either in-process or in a
// running daemon.
// This is a driving port (implemented by the session controller and the
// control client).
type SessionCommander interface {
	// Snapshot returns the current state.
	Snapshot(ctx context.Context) (domain.PomodoroState, error)

	// Dispatch applies a command and returns the resulting state.
	Dispatch(ctx context.Context, req domain.CommandRequest) (domain.PomodoroState, error)

	// UpdateSettings persists new settings. It fails with
	// domain.ErrTimerActive while a countdown is running or paused.
	UpdateSettings(ctx context.Context, settings domain.Settings) (domain.PomodoroState, error)

	// MarkCelebrationShown records that the end-of-cycle banner was
	// displayed so later attaches do not replay it.
	MarkCelebrationShown(ctx context.Context) (domain.PomodoroState, error)

	// Watch streams every published state until ctx is done.
	Watch(ctx context.Context) (<-chan domain.PomodoroState, error)
}
