package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/xvierd/pomodore/internal/domain"
	"github.com/xvierd/pomodore/internal/ports"
)

// SettingsService owns settings persistence and tells listeners about
// every successful change.
type SettingsService struct {
	storage ports.Storage
	logger  *slog.Logger

	mu        sync.Mutex
	listeners []func(domain.Settings)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(storage ports.Storage, logger *slog.Logger) *SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsService{storage: storage, logger: logger}
}

// OnChange registers fn to be called with the new settings after each
// successful update.
func (s *SettingsService) OnChange(fn func(domain.Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Load returns the stored settings.
func (s *SettingsService) Load(ctx context.Context) (domain.Settings, error) {
	settings, err := s.storage.Settings().Load(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings.Normalize(), nil
}

// Update normalizes and persists settings, then notifies listeners.
func (s *SettingsService) Update(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	settings = settings.Normalize()
	if err := s.storage.Settings().Save(ctx, settings); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	s.logger.Info("settings updated",
		"work", settings.WorkDurationMinutes,
		"short_break", settings.ShortBreakDurationMinutes,
		"long_break", settings.LongBreakDurationMinutes,
		"sessions_until_long_break", settings.SessionsUntilLongBreak,
		"total_cycles", settings.TotalCycles,
	)

	s.mu.Lock()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(settings)
	}
	return settings, nil
}
