package services

import (
	"context"
	"fmt"

	"github.com/xvierd/pomodore/internal/domain"
	"github.com/xvierd/pomodore/internal/ports"
)

// StatusBridge feeds the background status reporter from controller
// state changes. The reporter never reads the controller state itself.
type StatusBridge struct {
	reporter ports.StatusReporter
	last     domain.TimerState
}

// NewStatusBridge creates a bridge that forwards to reporter.
func NewStatusBridge(reporter ports.StatusReporter) *StatusBridge {
	return &StatusBridge{reporter: reporter, last: domain.Idle{}}
}

// Run forwards every state from states until ctx is done or the channel
// closes. The reporter is stopped on exit.
func (b *StatusBridge) Run(ctx context.Context, states <-chan domain.PomodoroState) {
	defer b.reporter.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-states:
			if !ok {
				return
			}
			b.Observe(s.Timer)
		}
	}
}

// Observe translates one timer state into at most one reporter command.
// Plain ticks within the same interval send nothing: the reporter keeps
// its own time.
func (b *StatusBridge) Observe(ts domain.TimerState) {
	prev := b.last
	b.last = ts

	switch cur := ts.(type) {
	case domain.Running:
		switch p := prev.(type) {
		case domain.Running:
			if p.Mode != cur.Mode || p.Total != cur.Total || cur.Remaining > p.Remaining {
				b.reporter.Start(cur)
			}
		case domain.Paused:
			if p.Mode == cur.Mode && p.Total == cur.Total {
				b.reporter.Update(cur)
			} else {
				b.reporter.Start(cur)
			}
		case domain.Idle, domain.Completed, nil:
			b.reporter.Start(cur)
		default:
			panic(fmt.Sprintf("services: unhandled timer state %T", prev))
		}
	case domain.Paused:
		if prev != ts {
			b.reporter.Pause(cur)
		}
	case domain.Idle, domain.Completed:
		switch prev.(type) {
		case domain.Idle, domain.Completed:
		default:
			b.reporter.Stop()
		}
	default:
		panic(fmt.Sprintf("services: unhandled timer state %T", ts))
	}
}
