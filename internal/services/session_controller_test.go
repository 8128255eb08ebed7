package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/pomodore/internal/domain"
)

const (
	fastTick = 2 * time.Millisecond
	waitFor  = 3 * time.Second
)

func TestSessionController_StartsIdle(t *testing.T) {
	c, _ := newTestController(t, domain.DefaultSettings(), ControllerOptions{})

	s := c.State()
	assert.Equal(t, domain.Idle{}, s.Timer)
	assert.Equal(t, 1, s.CurrentSession)
	assert.Equal(t, domain.DefaultSettings(), s.Settings)
}

func TestSessionController_TickLoopDecrementsFixedStep(t *testing.T) {
	c, _ := newTestController(t, domain.DefaultSettings(), ControllerOptions{TickInterval: 20 * time.Millisecond})
	updates, unsubscribe := c.Subscribe(16)
	defer unsubscribe()

	c.StartTimer(domain.ModeWork)

	first := <-updates
	assert.Equal(t, domain.Running{Mode: domain.ModeWork, Remaining: 25 * time.Minute, Total: 25 * time.Minute}, first.Timer)

	select {
	case next := <-updates:
		r, ok := next.Timer.(domain.Running)
		require.True(t, ok)
		assert.Equal(t, 25*time.Minute-time.Second, r.Remaining)
	case <-time.After(waitFor):
		t.Fatal("no tick published")
	}
}

func TestSessionController_WorkCompletionStartsBreak(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.WorkDurationMinutes = 1
	notifier := &recordingNotifier{}
	c, _ := newTestController(t, settings, ControllerOptions{TickInterval: fastTick, Notifier: notifier})

	c.StartTimer(domain.ModeWork)

	require.Eventually(t, func() bool { return len(notifier.completions()) == 1 }, waitFor, fastTick)
	s := c.State()
	assert.Equal(t, domain.ModeShortBreak, domain.DisplayMode(s.Timer))
	assert.Equal(t, 1, s.CompletedSessions)
	assert.Equal(t, 2, s.CurrentSession)
	assert.Equal(t, domain.ModeWork, notifier.completions()[0].Mode)

	// The break keeps counting in a fresh loop.
	require.Eventually(t, func() bool {
		_, remaining, total, ok := domain.Countdown(c.State().Timer)
		return ok && remaining < total
	}, waitFor, fastTick)
}

func TestSessionController_BreakCompletionStaysCompleted(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.ShortBreakDurationMinutes = 0
	notifier := &recordingNotifier{}
	c, _ := newTestController(t, settings, ControllerOptions{TickInterval: fastTick, Notifier: notifier})

	c.StartTimer(domain.ModeShortBreak)

	require.Eventually(t, func() bool { return len(notifier.completions()) == 1 }, waitFor, fastTick)
	assert.Equal(t, domain.Completed{Mode: domain.ModeShortBreak}, c.State().Timer)

	time.Sleep(10 * fastTick)
	assert.Len(t, notifier.completions(), 1)
}

func TestSessionController_AutoContinueAfterBreak(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.ShortBreakDurationMinutes = 0
	c, _ := newTestController(t, settings, ControllerOptions{TickInterval: fastTick, AutoContinue: true})

	c.StartTimer(domain.ModeShortBreak)

	require.Eventually(t, func() bool {
		return domain.DisplayMode(c.State().Timer) == domain.ModeWork && domain.IsActive(c.State().Timer)
	}, waitFor, fastTick)
}

func TestSessionController_FinalSessionFinishesCycle(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.WorkDurationMinutes = 0
	settings.TotalCycles = 1
	notifier := &recordingNotifier{}
	c, _ := newTestController(t, settings, ControllerOptions{TickInterval: fastTick, Notifier: notifier})

	c.StartTimer(domain.ModeWork)

	require.Eventually(t, func() bool { return len(notifier.completions()) == 1 }, waitFor, fastTick)
	s := c.State()
	assert.True(t, notifier.completions()[0].CycleFinished)
	assert.Equal(t, domain.Idle{}, s.Timer)
	assert.True(t, s.CelebrationDue())

	s, err := c.MarkCelebrationShown(context.Background())
	require.NoError(t, err)
	assert.False(t, s.CelebrationDue())
}

func TestSessionController_PauseStopsLoop(t *testing.T) {
	c, _ := newTestController(t, domain.DefaultSettings(), ControllerOptions{TickInterval: fastTick})

	c.StartTimer(domain.ModeWork)
	require.Eventually(t, func() bool {
		_, remaining, total, _ := domain.Countdown(c.State().Timer)
		return remaining < total
	}, waitFor, fastTick)

	paused := c.PauseTimer()
	time.Sleep(20 * fastTick)
	assert.Equal(t, paused, c.State())

	resumed := c.ResumeTimer()
	_, remaining, _, _ := domain.Countdown(paused.Timer)
	assert.Equal(t, domain.Running{Mode: domain.ModeWork, Remaining: remaining, Total: 25 * time.Minute}, resumed.Timer)
}

func TestSessionController_StopResets(t *testing.T) {
	c, _ := newTestController(t, domain.DefaultSettings(), ControllerOptions{TickInterval: time.Hour})

	c.StartTimer(domain.ModeWork)
	c.SkipToNext()
	s := c.StopTimer()

	assert.Equal(t, domain.Idle{}, s.Timer)
	assert.Equal(t, 1, s.CurrentSession)
	assert.Equal(t, 0, s.CompletedSessions)
}

func TestSessionController_Dispatch(t *testing.T) {
	c, _ := newTestController(t, domain.DefaultSettings(), ControllerOptions{TickInterval: time.Hour})
	ctx := context.Background()

	s, err := c.Dispatch(ctx, domain.CommandRequest{Command: domain.CmdStart, Mode: domain.ModeLongBreak})
	require.NoError(t, err)
	assert.Equal(t, domain.Running{Mode: domain.ModeLongBreak, Remaining: 15 * time.Minute, Total: 15 * time.Minute}, s.Timer)

	s, err = c.Dispatch(ctx, domain.CommandRequest{Command: domain.CmdPause})
	require.NoError(t, err)
	assert.Equal(t, domain.KindPaused, s.Timer.Kind())

	s, err = c.Dispatch(ctx, domain.CommandRequest{Command: domain.CmdPause})
	require.NoError(t, err)
	assert.Equal(t, domain.KindPaused, s.Timer.Kind())

	s, err = c.Dispatch(ctx, domain.CommandRequest{Command: domain.CmdSkip})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeWork, domain.DisplayMode(s.Timer))

	_, err = c.Dispatch(ctx, domain.CommandRequest{Command: "REWIND"})
	assert.True(t, errors.Is(err, domain.ErrUnknownCommand))
}

func TestSessionController_RejectedDispatchPublishesNothing(t *testing.T) {
	c, _ := newTestController(t, domain.DefaultSettings(), ControllerOptions{TickInterval: time.Hour})
	updates, unsubscribe := c.Subscribe(4)
	defer unsubscribe()
	ctx := context.Background()

	before := c.State()
	s, err := c.Dispatch(ctx, domain.CommandRequest{Command: domain.CmdStart, Mode: "nap"})
	assert.True(t, errors.Is(err, domain.ErrUnknownMode))
	assert.Equal(t, before, s)

	_, err = c.Dispatch(ctx, domain.CommandRequest{Command: "REWIND"})
	assert.True(t, errors.Is(err, domain.ErrUnknownCommand))

	select {
	case got := <-updates:
		t.Fatalf("rejected command published %v", got.Timer)
	case <-time.After(20 * fastTick):
	}
}

func TestSessionController_SettingsNeverChangeUnderARunningTimer(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		c, _ := newTestController(t, domain.DefaultSettings(), ControllerOptions{TickInterval: time.Hour})

		updated := domain.DefaultSettings()
		updated.WorkDurationMinutes = 50

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.StartTimer(domain.ModeWork)
		}()
		go func() {
			defer wg.Done()
			_, _ = c.UpdateSettings(ctx, updated)
		}()
		wg.Wait()

		s := c.State()
		r, ok := s.Timer.(domain.Running)
		require.True(t, ok)
		assert.Equal(t, s.Settings.Duration(domain.ModeWork), r.Total,
			"running timer and its settings disagree on iteration %d", i)
	}
}

func TestSessionController_UpdateSettings(t *testing.T) {
	c, svc := newTestController(t, domain.DefaultSettings(), ControllerOptions{TickInterval: time.Hour})
	ctx := context.Background()

	updated := domain.DefaultSettings()
	updated.WorkDurationMinutes = 50
	s, err := c.UpdateSettings(ctx, updated)
	require.NoError(t, err)
	assert.Equal(t, 50, s.Settings.WorkDurationMinutes)

	stored, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, stored.WorkDurationMinutes)

	c.StartTimer(domain.ModeWork)
	assert.Equal(t, 50*time.Minute, c.State().Timer.(domain.Running).Total)

	updated.WorkDurationMinutes = 10
	_, err = c.UpdateSettings(ctx, updated)
	assert.True(t, errors.Is(err, domain.ErrTimerActive))
	assert.Equal(t, 50, c.State().Settings.WorkDurationMinutes)
}

func TestSessionController_Watch(t *testing.T) {
	c, _ := newTestController(t, domain.DefaultSettings(), ControllerOptions{TickInterval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())

	states, err := c.Watch(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.Idle{}, (<-states).Timer)
	c.StartTimer(domain.ModeWork)
	assert.Equal(t, domain.KindRunning, (<-states).Timer.Kind())

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-states:
			return !ok
		default:
			return false
		}
	}, waitFor, fastTick)
}
