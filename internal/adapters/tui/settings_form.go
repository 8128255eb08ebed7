package tui

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/xvierd/pomodore/internal/domain"
)

// settingsFields holds the form's string-backed values.
type settingsFields struct {
	work, shortBreak, longBreak string
	untilLong, cycles           string
	keepScreenOn                bool
}

func newSettingsFields(s domain.Settings) settingsFields {
	return settingsFields{
		work:         strconv.Itoa(s.WorkDurationMinutes),
		shortBreak:   strconv.Itoa(s.ShortBreakDurationMinutes),
		longBreak:    strconv.Itoa(s.LongBreakDurationMinutes),
		untilLong:    strconv.Itoa(s.SessionsUntilLongBreak),
		cycles:       strconv.Itoa(s.TotalCycles),
		keepScreenOn: s.KeepScreenOn,
	}
}

func (f settingsFields) settings() domain.Settings {
	return domain.SettingsFromMap(map[string]string{
		domain.KeyWorkDuration:           f.work,
		domain.KeyShortBreakDuration:     f.shortBreak,
		domain.KeyLongBreakDuration:      f.longBreak,
		domain.KeySessionsUntilLongBreak: f.untilLong,
		domain.KeyTotalCycles:            f.cycles,
		domain.KeyKeepScreenOn:           strconv.FormatBool(f.keepScreenOn),
	})
}

// EditSettings shows the settings form seeded with current. It returns
// false if the user aborted.
func EditSettings(current domain.Settings) (domain.Settings, bool, error) {
	f := newSettingsFields(current)

	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Work duration (minutes)").Value(&f.work).Validate(validateNonNegativeInt),
		huh.NewInput().Title("Short break (minutes)").Value(&f.shortBreak).Validate(validateNonNegativeInt),
		huh.NewInput().Title("Long break (minutes)").Value(&f.longBreak).Validate(validateNonNegativeInt),
		huh.NewInput().Title("Sessions until long break").Value(&f.untilLong).Validate(validatePositiveInt),
		huh.NewInput().Title("Sessions per cycle").Value(&f.cycles).Validate(validatePositiveInt),
		huh.NewConfirm().Title("Keep the screen on while a timer runs?").Value(&f.keepScreenOn),
	)).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return current, false, nil
	}
	if err != nil {
		return current, false, fmt.Errorf("settings form: %w", err)
	}
	return f.settings(), true, nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

func validateNonNegativeInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("must be a non-negative integer")
	}
	return nil
}
