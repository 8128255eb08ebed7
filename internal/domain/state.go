// Package domain contains the pomodoro timer engine: the timer state
// machine, session and cycle counting, and the duration policy.
// Everything here is pure and free of I/O.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// Common domain errors.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownMode    = errors.New("unknown timer mode")
	ErrTimerActive    = errors.New("timer is active")
	ErrUnknownSetting = errors.New("unknown setting")
)

// TickStep is the fixed amount each tick removes from a running countdown.
const TickStep = time.Second

// PomodoroState is the complete application state owned by the session
// controller. Transitions return a new value and never mutate the receiver.
type PomodoroState struct {
	Timer             TimerState
	CurrentSession    int
	CompletedSessions int
	Settings          Settings
	CelebrationShown  bool
}

// Completion describes an interval that finished during a transition.
type Completion struct {
	Mode TimerMode
	// CycleFinished is set when the last work session of the cycle ended.
	CycleFinished bool
	// Next is the state the timer moved on to.
	Next TimerState
}

// NewPomodoroState returns the initial Idle state.
func NewPomodoroState(settings Settings) PomodoroState {
	return PomodoroState{
		Timer:          Idle{},
		CurrentSession: 1,
		Settings:       settings.Normalize(),
	}
}

// WithSettings replaces the settings without touching the timer.
func (s PomodoroState) WithSettings(settings Settings) PomodoroState {
	s.Settings = settings.Normalize()
	return s
}

// Start begins a countdown for mode from Idle or Completed.
// Starting while Idle after a full cycle resets the cycle counters first.
// It is a no-op while a countdown is running or paused.
func (s PomodoroState) Start(mode TimerMode) PomodoroState {
	switch s.Timer.(type) {
	case Running, Paused:
		return s
	case Idle, nil:
		if s.CompletedSessions >= s.Settings.TotalCycles {
			s.CurrentSession = 1
			s.CompletedSessions = 0
			s.CelebrationShown = false
		}
	case Completed:
	default:
		panic(fmt.Sprintf("domain: unhandled timer state %T", s.Timer))
	}
	return s.begin(mode)
}

// Pause freezes a running countdown.
func (s PomodoroState) Pause() PomodoroState {
	if r, ok := s.Timer.(Running); ok {
		s.Timer = Paused(r)
	}
	return s
}

// Resume continues a paused countdown.
func (s PomodoroState) Resume() PomodoroState {
	if p, ok := s.Timer.(Paused); ok {
		s.Timer = Running(p)
	}
	return s
}

// Stop abandons the countdown and resets the cycle.
func (s PomodoroState) Stop() PomodoroState {
	if !IsActive(s.Timer) {
		return s
	}
	s.Timer = Idle{}
	s.CurrentSession = 1
	s.CompletedSessions = 0
	s.CelebrationShown = false
	return s
}

// Skip ends the current interval early. Skipping work counts it as
// completed; skipping a break goes straight to work.
func (s PomodoroState) Skip() PomodoroState {
	mode, _, _, ok := Countdown(s.Timer)
	if !ok {
		return s
	}
	if mode.IsBreak() {
		return s.begin(ModeWork)
	}

	completed := s.CompletedSessions + 1
	s.CompletedSessions = completed
	if completed >= s.Settings.TotalCycles {
		s.Timer = Idle{}
		s.CurrentSession = completed
		return s
	}
	s.CurrentSession++
	return s.begin(s.Settings.NextBreakMode(completed))
}

// Tick removes step from a running countdown and completes it when
// nothing is left. The returned Completion is nil unless an interval ended.
func (s PomodoroState) Tick(step time.Duration) (PomodoroState, *Completion) {
	r, ok := s.Timer.(Running)
	if !ok {
		return s, nil
	}
	remaining := r.Remaining - step
	if remaining > 0 {
		r.Remaining = remaining
		s.Timer = r
		return s, nil
	}
	return s.Complete()
}

// Complete finishes a running countdown.
func (s PomodoroState) Complete() (PomodoroState, *Completion) {
	r, ok := s.Timer.(Running)
	if !ok {
		return s, nil
	}
	if r.Mode.IsBreak() {
		s.Timer = Completed{Mode: r.Mode}
		return s, &Completion{Mode: r.Mode, Next: s.Timer}
	}

	completed := s.CompletedSessions + 1
	s.CompletedSessions = completed
	if completed >= s.Settings.TotalCycles {
		s.Timer = Idle{}
		s.CurrentSession = completed
		s.CelebrationShown = false
		return s, &Completion{Mode: r.Mode, CycleFinished: true, Next: s.Timer}
	}

	// Completed(work) is superseded by the next break within the same update.
	s.CurrentSession++
	s = s.begin(s.Settings.NextBreakMode(completed))
	return s, &Completion{Mode: r.Mode, Next: s.Timer}
}

// MarkCelebrationShown records that the cycle celebration was displayed.
func (s PomodoroState) MarkCelebrationShown() PomodoroState {
	s.CelebrationShown = true
	return s
}

// CelebrationDue reports whether the one-shot cycle celebration should fire.
func (s PomodoroState) CelebrationDue() bool {
	_, idle := s.Timer.(Idle)
	return idle &&
		s.CompletedSessions > 0 &&
		s.CompletedSessions >= s.Settings.TotalCycles &&
		!s.CelebrationShown
}

func (s PomodoroState) begin(mode TimerMode) PomodoroState {
	d := s.Settings.Duration(mode)
	s.Timer = Running{Mode: mode, Remaining: d, Total: d}
	return s
}

// Controls lists which user actions are available in a given state.
type Controls struct {
	Start        bool
	Pause        bool
	Resume       bool
	Stop         bool
	Skip         bool
	EditSettings bool
	// KeepAwake asks the display to stay on while a countdown is active.
	KeepAwake bool
}

// Controls derives the enabled actions from the timer state and settings.
func (s PomodoroState) Controls() Controls {
	switch s.Timer.(type) {
	case Running:
		return Controls{Pause: true, Stop: true, Skip: true, KeepAwake: s.Settings.KeepScreenOn}
	case Paused:
		return Controls{Resume: true, Stop: true, Skip: true, KeepAwake: s.Settings.KeepScreenOn}
	case Idle, Completed, nil:
		return Controls{Start: true, EditSettings: true}
	default:
		panic(fmt.Sprintf("domain: unhandled timer state %T", s.Timer))
	}
}

// ThemeKey names the colour scheme for a state.
type ThemeKey string

const (
	ThemeWork        ThemeKey = "work"
	ThemeShortBreak  ThemeKey = "short_break"
	ThemeLongBreak   ThemeKey = "long_break"
	ThemePaused      ThemeKey = "paused"
	ThemeCelebration ThemeKey = "celebration"
)

// Theme picks the colour scheme for the current state.
func (s PomodoroState) Theme() ThemeKey {
	if s.CelebrationDue() {
		return ThemeCelebration
	}
	if _, paused := s.Timer.(Paused); paused {
		return ThemePaused
	}
	switch DisplayMode(s.Timer) {
	case ModeShortBreak:
		return ThemeShortBreak
	case ModeLongBreak:
		return ThemeLongBreak
	default:
		return ThemeWork
	}
}
