package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/xvierd/pomodore/internal/domain"
	"github.com/xvierd/pomodore/internal/ports"
)

// ControllerOptions tunes a SessionController.
type ControllerOptions struct {
	// TickInterval is how often the tick loop fires. Each tick always
	// removes domain.TickStep from the countdown. Defaults to one second.
	TickInterval time.Duration

	// AutoContinue starts the next work session as soon as a break ends.
	AutoContinue bool

	Notifier ports.Notifier
	Logger   *slog.Logger
}

// SessionController owns the pomodoro state and drives it with a
// fixed-step tick loop. It implements ports.SessionCommander.
type SessionController struct {
	settings     *SettingsService
	states       *Broadcaster[domain.PomodoroState]
	tickInterval time.Duration
	autoContinue bool
	notifier     ports.Notifier
	logger       *slog.Logger

	// settingsMu orders commands against UpdateSettings. It is taken
	// before mu.
	settingsMu sync.Mutex

	mu         sync.Mutex
	state      domain.PomodoroState
	generation uint64
	stopLoop   context.CancelFunc
	closed     bool
	loops      sync.WaitGroup
}

var _ ports.SessionCommander = (*SessionController)(nil)

// NewSessionController loads the stored settings and returns an Idle
// controller.
func NewSessionController(ctx context.Context, settings *SettingsService, opts ControllerOptions) (*SessionController, error) {
	initial, err := settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = domain.TickStep
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c := &SessionController{
		settings:     settings,
		states:       NewBroadcaster[domain.PomodoroState](),
		tickInterval: opts.TickInterval,
		autoContinue: opts.AutoContinue,
		notifier:     opts.Notifier,
		logger:       opts.Logger,
		state:        domain.NewPomodoroState(initial),
	}
	settings.OnChange(c.settingsChanged)
	return c, nil
}

// State returns the current state.
func (c *SessionController) State() domain.PomodoroState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe returns a channel that receives every published state.
func (c *SessionController) Subscribe(buffer int) (<-chan domain.PomodoroState, func()) {
	return c.states.Subscribe(buffer)
}

// StartTimer begins a countdown for mode.
func (c *SessionController) StartTimer(mode domain.TimerMode) domain.PomodoroState {
	return c.apply("start", func(s domain.PomodoroState) domain.PomodoroState { return s.Start(mode) })
}

// PauseTimer freezes the running countdown.
func (c *SessionController) PauseTimer() domain.PomodoroState {
	return c.apply("pause", domain.PomodoroState.Pause)
}

// ResumeTimer continues a paused countdown.
func (c *SessionController) ResumeTimer() domain.PomodoroState {
	return c.apply("resume", domain.PomodoroState.Resume)
}

// StopTimer abandons the countdown and resets the cycle.
func (c *SessionController) StopTimer() domain.PomodoroState {
	return c.apply("stop", domain.PomodoroState.Stop)
}

// SkipToNext ends the current interval early.
func (c *SessionController) SkipToNext() domain.PomodoroState {
	return c.apply("skip", domain.PomodoroState.Skip)
}

// MarkCelebrationShown records that the cycle celebration was displayed.
// It implements ports.SessionCommander.
func (c *SessionController) MarkCelebrationShown(context.Context) (domain.PomodoroState, error) {
	return c.apply("celebration_shown", domain.PomodoroState.MarkCelebrationShown), nil
}

// Dispatch applies a command from the shared vocabulary. A request that
// fails to parse leaves the state untouched and publishes nothing.
func (c *SessionController) Dispatch(_ context.Context, req domain.CommandRequest) (domain.PomodoroState, error) {
	return c.transition(strings.ToLower(string(req.Command)), req.Apply)
}

// UpdateSettings persists settings through the settings service. The
// state picks them up from the service's change notification.
func (c *SessionController) UpdateSettings(ctx context.Context, settings domain.Settings) (domain.PomodoroState, error) {
	// Commands wait on settingsMu, so no timer can start between the
	// check and the save.
	c.settingsMu.Lock()
	defer c.settingsMu.Unlock()

	if domain.IsActive(c.State().Timer) {
		return c.State(), domain.ErrTimerActive
	}
	if _, err := c.settings.Update(ctx, settings); err != nil {
		return c.State(), err
	}
	return c.State(), nil
}

// Snapshot implements ports.SessionCommander.
func (c *SessionController) Snapshot(context.Context) (domain.PomodoroState, error) {
	return c.State(), nil
}

// Watch implements ports.SessionCommander. The current state is sent first.
func (c *SessionController) Watch(ctx context.Context) (<-chan domain.PomodoroState, error) {
	updates, unsubscribe := c.Subscribe(4)
	out := make(chan domain.PomodoroState, 4)
	out <- c.State()

	go func() {
		defer close(out)
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case s, ok := <-updates:
				if !ok {
					return
				}
				select {
				case out <- s:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close stops the tick loop and closes all subscriptions.
func (c *SessionController) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancelLoopLocked()
	c.mu.Unlock()

	c.loops.Wait()
	c.states.Close()
}

func (c *SessionController) settingsChanged(settings domain.Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = c.state.WithSettings(settings)
	c.states.Publish(c.state)
}

// apply performs one atomic transition, adjusts the tick loop and
// publishes the result.
func (c *SessionController) apply(action string, fn func(domain.PomodoroState) domain.PomodoroState) domain.PomodoroState {
	next, _ := c.transition(action, func(s domain.PomodoroState) (domain.PomodoroState, error) {
		return fn(s), nil
	})
	return next
}

// transition is apply for fallible transitions. On error nothing changes.
func (c *SessionController) transition(action string, fn func(domain.PomodoroState) (domain.PomodoroState, error)) (domain.PomodoroState, error) {
	c.settingsMu.Lock()
	defer c.settingsMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state
	next, err := fn(prev)
	if err != nil {
		return prev, err
	}
	c.state = next
	c.syncLoopLocked(prev, next)
	c.states.Publish(next)

	c.logger.Debug("timer command",
		"action", action,
		"from", prev.Timer.Kind(),
		"to", next.Timer.Kind(),
		"session", next.CurrentSession,
		"completed", next.CompletedSessions,
	)
	return next, nil
}

// syncLoopLocked keeps exactly one tick loop alive while the timer runs.
func (c *SessionController) syncLoopLocked(prev, next domain.PomodoroState) {
	if _, running := next.Timer.(domain.Running); !running {
		c.cancelLoopLocked()
		return
	}
	if _, wasRunning := prev.Timer.(domain.Running); wasRunning && prev.Timer == next.Timer {
		return
	}
	c.startLoopLocked()
}

func (c *SessionController) startLoopLocked() {
	c.cancelLoopLocked()
	if c.closed {
		return
	}
	c.generation++
	ctx, cancel := context.WithCancel(context.Background())
	c.stopLoop = cancel
	c.loops.Add(1)
	go c.runLoop(ctx, c.generation)
}

func (c *SessionController) cancelLoopLocked() {
	if c.stopLoop != nil {
		c.stopLoop()
		c.stopLoop = nil
	}
	c.generation++
}

func (c *SessionController) runLoop(ctx context.Context, generation uint64) {
	defer c.loops.Done()

	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if !c.tick(generation) {
			return
		}
	}
}

// tick applies one fixed step. It returns false once this loop should exit.
func (c *SessionController) tick(generation uint64) bool {
	c.mu.Lock()
	if generation != c.generation {
		c.mu.Unlock()
		return false
	}
	if _, running := c.state.Timer.(domain.Running); !running {
		c.mu.Unlock()
		return false
	}

	next, done := c.state.Tick(domain.TickStep)
	if done == nil {
		c.state = next
		c.states.Publish(next)
		c.mu.Unlock()
		return true
	}

	if _, ended := next.Timer.(domain.Completed); ended && c.autoContinue {
		next = next.Start(domain.ModeWork)
	}
	prev := c.state
	c.state = next
	c.syncLoopLocked(prev, next)
	c.states.Publish(next)
	c.mu.Unlock()

	c.logger.Info("interval finished",
		"mode", done.Mode,
		"cycle_finished", done.CycleFinished,
		"next", next.Timer.Kind(),
		"completed", next.CompletedSessions,
	)
	if c.notifier != nil {
		if err := c.notifier.IntervalFinished(*done); err != nil {
			c.logger.Warn("notification failed", "error", err)
		}
	}
	return false
}
