// Package background implements the status reporter: a detached actor
// that keeps the status indicator in step with wall-clock time.
package background

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xvierd/pomodore/internal/domain"
	"github.com/xvierd/pomodore/internal/ports"
)

type commandKind int

const (
	cmdStart commandKind = iota
	cmdUpdate
	cmdPause
	cmdStop
)

type command struct {
	kind  commandKind
	state domain.TimerState
}

// Options tunes a Reporter.
type Options struct {
	// RefreshInterval is how often a running countdown is redrawn.
	// Defaults to one second.
	RefreshInterval time.Duration

	// Now is the wall clock. Defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

// Reporter receives timer snapshots as commands and redraws a
// ports.StatusDisplay. All mutable state is owned by the Run goroutine.
type Reporter struct {
	display ports.StatusDisplay
	cmds    chan command
	done    chan struct{}
	refresh time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

var _ ports.StatusReporter = (*Reporter)(nil)

// New creates a reporter that draws on display. Call Run to start it.
func New(display ports.StatusDisplay, opts Options) *Reporter {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Reporter{
		display: display,
		cmds:    make(chan command, 16),
		done:    make(chan struct{}),
		refresh: opts.RefreshInterval,
		now:     opts.Now,
		logger:  opts.Logger,
	}
}

// Start implements ports.StatusReporter.
func (r *Reporter) Start(state domain.TimerState) { r.send(command{kind: cmdStart, state: state}) }

// Update implements ports.StatusReporter.
func (r *Reporter) Update(state domain.TimerState) { r.send(command{kind: cmdUpdate, state: state}) }

// Pause implements ports.StatusReporter.
func (r *Reporter) Pause(state domain.TimerState) { r.send(command{kind: cmdPause, state: state}) }

// Stop implements ports.StatusReporter.
func (r *Reporter) Stop() { r.send(command{kind: cmdStop}) }

func (r *Reporter) send(c command) {
	select {
	case r.cmds <- c:
	case <-r.done:
	}
}

// Remaining derives what is left of a countdown from elapsed wall-clock
// time. It never goes below zero.
func Remaining(initial time.Duration, startedAt, now time.Time) time.Duration {
	remaining := initial - now.Sub(startedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// countdown is the reporter's private copy of a running interval.
type countdown struct {
	mode      domain.TimerMode
	total     time.Duration
	initial   time.Duration
	startedAt time.Time
}

// Run processes commands until ctx is done. The display is cleared on exit.
func (r *Reporter) Run(ctx context.Context) error {
	defer close(r.done)

	var (
		active  *countdown
		ticker  *time.Ticker
		refresh <-chan time.Time
	)
	stopRefresh := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			refresh = nil
		}
	}
	defer stopRefresh()

	for {
		select {
		case <-ctx.Done():
			r.clear()
			return nil

		case c := <-r.cmds:
			stopRefresh()
			active = nil

			switch c.kind {
			case cmdStart, cmdUpdate:
				switch s := c.state.(type) {
				case domain.Running:
					active = &countdown{mode: s.Mode, total: s.Total, initial: s.Remaining, startedAt: r.now()}
					if r.draw(active) > 0 {
						ticker = time.NewTicker(r.refresh)
						refresh = ticker.C
					}
				case domain.Paused:
					r.render(View(s.Mode, s.Remaining, s.Total, true))
				case domain.Idle, domain.Completed, nil:
					r.clear()
				default:
					return fmt.Errorf("unhandled timer state %T", s)
				}
			case cmdPause:
				if mode, remaining, total, ok := domain.Countdown(c.state); ok {
					r.render(View(mode, remaining, total, true))
				}
			case cmdStop:
				r.clear()
			}

		case <-refresh:
			if active == nil || r.draw(active) == 0 {
				stopRefresh()
			}
		}
	}
}

// draw renders the derived remaining time and returns it.
func (r *Reporter) draw(c *countdown) time.Duration {
	remaining := Remaining(c.initial, c.startedAt, r.now())
	r.render(View(c.mode, remaining, c.total, false))
	return remaining
}

func (r *Reporter) render(view ports.StatusView) {
	if err := r.display.Render(view); err != nil {
		r.logger.Warn("status render failed", "error", err)
	}
}

func (r *Reporter) clear() {
	if err := r.display.Clear(); err != nil {
		r.logger.Warn("status clear failed", "error", err)
	}
}

// View builds the indicator content for a countdown.
func View(mode domain.TimerMode, remaining, total time.Duration, paused bool) ports.StatusView {
	view := ports.StatusView{
		Title:     mode.Label(),
		Text:      domain.FormatClock(remaining) + " remaining",
		Mode:      mode,
		Remaining: remaining,
		Total:     total,
		Paused:    paused,
	}
	if paused {
		view.Title = mode.Label() + " (Paused)"
		view.Actions = []domain.Command{domain.CmdResume, domain.CmdSkip, domain.CmdStop}
	} else {
		view.Actions = []domain.Command{domain.CmdPause, domain.CmdSkip, domain.CmdStop}
	}
	return view
}
