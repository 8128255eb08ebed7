package control

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/pomodore/internal/adapters/storage"
	"github.com/xvierd/pomodore/internal/domain"
	"github.com/xvierd/pomodore/internal/services"
)

func setupDaemon(t *testing.T) (*services.SessionController, *Client) {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := storage.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	settings := services.NewSettingsService(store, logger)
	// A long tick interval keeps countdowns frozen for deterministic asserts.
	controller, err := services.NewSessionController(ctx, settings, services.ControllerOptions{
		TickInterval: time.Hour,
		Logger:       logger,
	})
	require.NoError(t, err)
	t.Cleanup(controller.Close)

	srv := httptest.NewServer(NewServer(controller, logger).Handler())
	t.Cleanup(srv.Close)

	return controller, NewClient(strings.TrimPrefix(srv.URL, "http://"))
}

func TestClient_DispatchDrivesDaemon(t *testing.T) {
	controller, client := setupDaemon(t)
	ctx := context.Background()

	state, err := client.Dispatch(ctx, domain.CommandRequest{Command: domain.CmdStart, Mode: domain.ModeShortBreak})
	require.NoError(t, err)
	assert.Equal(t, domain.Running{Mode: domain.ModeShortBreak, Remaining: 5 * time.Minute, Total: 5 * time.Minute}, state.Timer)
	assert.Equal(t, controller.State(), state)

	state, err = client.Dispatch(ctx, domain.CommandRequest{Command: domain.CmdPause})
	require.NoError(t, err)
	assert.Equal(t, domain.KindPaused, state.Timer.Kind())

	snapshot, err := client.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, state, snapshot)
}

func TestClient_ErrorsKeepTheirIdentity(t *testing.T) {
	_, client := setupDaemon(t)
	ctx := context.Background()

	_, err := client.Dispatch(ctx, domain.CommandRequest{Command: "JUMP"})
	assert.ErrorIs(t, err, domain.ErrUnknownCommand)

	_, err = client.Dispatch(ctx, domain.CommandRequest{Command: domain.CmdStart, Mode: "nap"})
	assert.ErrorIs(t, err, domain.ErrUnknownMode)

	_, err = client.Dispatch(ctx, domain.CommandRequest{Command: domain.CmdStart})
	require.NoError(t, err)
	_, err = client.UpdateSettings(ctx, domain.DefaultSettings())
	assert.ErrorIs(t, err, domain.ErrTimerActive)
}

func TestClient_UpdateSettings(t *testing.T) {
	controller, client := setupDaemon(t)

	s := domain.DefaultSettings()
	s.WorkDurationMinutes = 50
	s.KeepScreenOn = true

	state, err := client.UpdateSettings(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, s, state.Settings)
	assert.Equal(t, s, controller.State().Settings)
}

func TestClient_Watch(t *testing.T) {
	controller, client := setupDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	states, err := client.Watch(ctx)
	require.NoError(t, err)

	first := <-states
	assert.Equal(t, domain.Idle{}, first.Timer)

	controller.StartTimer(domain.ModeWork)

	select {
	case next := <-states:
		assert.Equal(t, domain.KindRunning, next.Timer.Kind())
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not deliver the started state")
	}

	cancel()
	for range states {
	}
}

func TestClient_MarkCelebrationShownSticksAcrossAttaches(t *testing.T) {
	controller, client := setupDaemon(t)
	ctx := context.Background()

	settings := domain.DefaultSettings()
	settings.TotalCycles = 1
	_, err := client.UpdateSettings(ctx, settings)
	require.NoError(t, err)
	_, err = client.Dispatch(ctx, domain.CommandRequest{Command: domain.CmdStart})
	require.NoError(t, err)
	state, err := client.Dispatch(ctx, domain.CommandRequest{Command: domain.CmdSkip})
	require.NoError(t, err)
	require.True(t, state.CelebrationDue())

	state, err = client.MarkCelebrationShown(ctx)
	require.NoError(t, err)
	assert.True(t, state.CelebrationShown)
	assert.False(t, controller.State().CelebrationDue())

	// A later watcher starts from the marked state.
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	states, err := client.Watch(watchCtx)
	require.NoError(t, err)
	first := <-states
	assert.False(t, first.CelebrationDue())
	cancel()
	for range states {
	}
}

func TestClient_DaemonNotRunning(t *testing.T) {
	srv := httptest.NewServer(nil)
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	client := NewClient(addr)
	_, err := client.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrDaemonNotRunning)
	assert.False(t, client.Available(context.Background()))
}

func TestStateDTO_RoundTripsEveryKind(t *testing.T) {
	settings := domain.DefaultSettings()
	states := []domain.TimerState{
		domain.Idle{},
		domain.Running{Mode: domain.ModeWork, Remaining: 90 * time.Second, Total: 25 * time.Minute},
		domain.Paused{Mode: domain.ModeLongBreak, Remaining: time.Minute, Total: 15 * time.Minute},
		domain.Completed{Mode: domain.ModeShortBreak},
	}
	for _, ts := range states {
		in := domain.PomodoroState{Timer: ts, CurrentSession: 2, CompletedSessions: 1, Settings: settings}
		out, err := FromState(in).ToState()
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}

	_, err := StateDTO{Kind: "Sleeping"}.ToState()
	assert.Error(t, err)
}
