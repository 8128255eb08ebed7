package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xvierd/pomodore/internal/adapters/storage"
	"github.com/xvierd/pomodore/internal/domain"
	"github.com/xvierd/pomodore/internal/ports"
)

func setupTestStorage(t *testing.T) ports.Storage {
	t.Helper()
	store, err := storage.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.Completion
}

func (n *recordingNotifier) IntervalFinished(c domain.Completion) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, c)
	return nil
}

func (n *recordingNotifier) completions() []domain.Completion {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Completion(nil), n.events...)
}

type recordingReporter struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingReporter) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recordingReporter) Start(s domain.TimerState)  { r.record("start %s", describe(s)) }
func (r *recordingReporter) Update(s domain.TimerState) { r.record("update %s", describe(s)) }
func (r *recordingReporter) Pause(s domain.TimerState)  { r.record("pause %s", describe(s)) }
func (r *recordingReporter) Stop()                      { r.record("stop") }

func (r *recordingReporter) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func describe(s domain.TimerState) string {
	mode, remaining, _, _ := domain.Countdown(s)
	return fmt.Sprintf("%s/%s", mode, domain.FormatClock(remaining))
}

func newTestController(t *testing.T, settings domain.Settings, opts ControllerOptions) (*SessionController, *SettingsService) {
	t.Helper()
	store := setupTestStorage(t)
	ctx := context.Background()
	require.NoError(t, store.Settings().Save(ctx, settings))

	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	svc := NewSettingsService(store, opts.Logger)
	c, err := NewSessionController(ctx, svc, opts)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, svc
}
