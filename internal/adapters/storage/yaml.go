package storage

import (
	"fmt"
	"io"

	"github.com/xvierd/pomodore/internal/domain"
	"gopkg.in/yaml.v3"
)

type yamlSettings struct {
	WorkDurationMinutes       int  `yaml:"work_duration_minutes"`
	ShortBreakDurationMinutes int  `yaml:"short_break_duration_minutes"`
	LongBreakDurationMinutes  int  `yaml:"long_break_duration_minutes"`
	SessionsUntilLongBreak    int  `yaml:"sessions_until_long_break"`
	TotalCycles               int  `yaml:"total_cycles"`
	KeepScreenOn              bool `yaml:"keep_screen_on"`
}

// ExportSettings writes settings as YAML.
func ExportSettings(w io.Writer, settings domain.Settings) error {
	serialized, err := yaml.Marshal(yamlSettings{
		WorkDurationMinutes:       settings.WorkDurationMinutes,
		ShortBreakDurationMinutes: settings.ShortBreakDurationMinutes,
		LongBreakDurationMinutes:  settings.LongBreakDurationMinutes,
		SessionsUntilLongBreak:    settings.SessionsUntilLongBreak,
		TotalCycles:               settings.TotalCycles,
		KeepScreenOn:              settings.KeepScreenOn,
	})
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}
	if _, err := w.Write(serialized); err != nil {
		return fmt.Errorf("write settings yaml: %w", err)
	}
	return nil
}

// ImportSettings reads YAML settings. Fields that are missing or not valid
// fall back to their defaults, the same as the key-value store.
func ImportSettings(r io.Reader) (domain.Settings, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("read settings yaml: %w", err)
	}

	var fields map[string]any
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return domain.Settings{}, fmt.Errorf("parse settings yaml: %w", err)
	}

	values := make(map[string]string, len(fields))
	for key, v := range fields {
		if v == nil {
			continue
		}
		values[key] = fmt.Sprint(v)
	}
	return domain.SettingsFromMap(values), nil
}
