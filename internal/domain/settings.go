package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
)

// Settings keys as stored in the key-value settings record.
const (
	KeyWorkDuration           = "work_duration_minutes"
	KeyShortBreakDuration     = "short_break_duration_minutes"
	KeyLongBreakDuration      = "long_break_duration_minutes"
	KeySessionsUntilLongBreak = "sessions_until_long_break"
	KeyTotalCycles            = "total_cycles"
	KeyKeepScreenOn           = "keep_screen_on"
)

// SettingsKeys lists every persisted settings key in a stable order.
var SettingsKeys = []string{
	KeyWorkDuration,
	KeyShortBreakDuration,
	KeyLongBreakDuration,
	KeySessionsUntilLongBreak,
	KeyTotalCycles,
	KeyKeepScreenOn,
}

// Settings holds the user-editable pomodoro configuration.
type Settings struct {
	WorkDurationMinutes       int
	ShortBreakDurationMinutes int
	LongBreakDurationMinutes  int
	SessionsUntilLongBreak    int
	TotalCycles               int
	KeepScreenOn              bool
}

// DefaultSettings returns the standard pomodoro configuration.
func DefaultSettings() Settings {
	return Settings{
		WorkDurationMinutes:       25,
		ShortBreakDurationMinutes: 5,
		LongBreakDurationMinutes:  15,
		SessionsUntilLongBreak:    4,
		TotalCycles:               4,
		KeepScreenOn:              false,
	}
}

// Duration returns the configured length of an interval.
func (s Settings) Duration(mode TimerMode) time.Duration {
	var minutes int
	switch mode {
	case ModeShortBreak:
		minutes = s.ShortBreakDurationMinutes
	case ModeLongBreak:
		minutes = s.LongBreakDurationMinutes
	default:
		minutes = s.WorkDurationMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// NextBreakMode picks the break that follows the given number of
// completed work sessions.
func (s Settings) NextBreakMode(completedSessions int) TimerMode {
	if s.SessionsUntilLongBreak > 0 && completedSessions%s.SessionsUntilLongBreak == 0 {
		return ModeLongBreak
	}
	return ModeShortBreak
}

// Normalize replaces out-of-range values with their defaults.
// Durations must be non-negative; the two counters must be at least 1.
func (s Settings) Normalize() Settings {
	d := DefaultSettings()
	if s.WorkDurationMinutes < 0 {
		s.WorkDurationMinutes = d.WorkDurationMinutes
	}
	if s.ShortBreakDurationMinutes < 0 {
		s.ShortBreakDurationMinutes = d.ShortBreakDurationMinutes
	}
	if s.LongBreakDurationMinutes < 0 {
		s.LongBreakDurationMinutes = d.LongBreakDurationMinutes
	}
	if s.SessionsUntilLongBreak < 1 {
		s.SessionsUntilLongBreak = d.SessionsUntilLongBreak
	}
	if s.TotalCycles < 1 {
		s.TotalCycles = d.TotalCycles
	}
	return s
}

// ToMap flattens settings into their key-value record form.
func (s Settings) ToMap() map[string]string {
	return map[string]string{
		KeyWorkDuration:           strconv.Itoa(s.WorkDurationMinutes),
		KeyShortBreakDuration:     strconv.Itoa(s.ShortBreakDurationMinutes),
		KeyLongBreakDuration:      strconv.Itoa(s.LongBreakDurationMinutes),
		KeySessionsUntilLongBreak: strconv.Itoa(s.SessionsUntilLongBreak),
		KeyTotalCycles:            strconv.Itoa(s.TotalCycles),
		KeyKeepScreenOn:           strconv.FormatBool(s.KeepScreenOn),
	}
}

// SettingsFromMap builds settings from a key-value record. Missing or
// unparseable fields silently fall back to their defaults.
func SettingsFromMap(values map[string]string) Settings {
	d := DefaultSettings()
	return Settings{
		WorkDurationMinutes:       ParseMinutes(values[KeyWorkDuration], d.WorkDurationMinutes),
		ShortBreakDurationMinutes: ParseMinutes(values[KeyShortBreakDuration], d.ShortBreakDurationMinutes),
		LongBreakDurationMinutes:  ParseMinutes(values[KeyLongBreakDuration], d.LongBreakDurationMinutes),
		SessionsUntilLongBreak:    ParseCount(values[KeySessionsUntilLongBreak], d.SessionsUntilLongBreak),
		TotalCycles:               ParseCount(values[KeyTotalCycles], d.TotalCycles),
		KeepScreenOn:              parseBool(values[KeyKeepScreenOn], d.KeepScreenOn),
	}
}

// ParseMinutes parses a non-negative integer, returning fallback otherwise.
func ParseMinutes(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// ParseCount parses a positive integer, returning fallback otherwise.
func ParseCount(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func parseBool(raw string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return b
}

// Set returns s with one key changed. Values that do not parse fall back
// to the default for that key.
func (s Settings) Set(key, value string) (Settings, error) {
	if !slices.Contains(SettingsKeys, key) {
		if matches := fuzzy.Find(key, SettingsKeys); len(matches) > 0 {
			return s, fmt.Errorf("%w %q (did you mean %s?)", ErrUnknownSetting, key, matches[0].Str)
		}
		return s, fmt.Errorf("%w %q", ErrUnknownSetting, key)
	}
	values := s.ToMap()
	values[key] = value
	return SettingsFromMap(values), nil
}
