package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/pomodore/internal/domain"
)

func TestSettingsService_UpdateNotifiesListeners(t *testing.T) {
	svc := NewSettingsService(setupTestStorage(t), discardLogger())
	ctx := context.Background()

	var seen []domain.Settings
	svc.OnChange(func(s domain.Settings) { seen = append(seen, s) })

	saved, err := svc.Update(ctx, domain.Settings{WorkDurationMinutes: 40, TotalCycles: 0, SessionsUntilLongBreak: 2})
	require.NoError(t, err)

	assert.Equal(t, 4, saved.TotalCycles)
	require.Len(t, seen, 1)
	assert.Equal(t, saved, seen[0])

	loaded, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}
