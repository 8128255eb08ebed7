package domain

import (
	"fmt"
	"time"
)

// TimerMode identifies what kind of interval the timer is counting down.
type TimerMode string

const (
	ModeWork       TimerMode = "work"
	ModeShortBreak TimerMode = "short_break"
	ModeLongBreak  TimerMode = "long_break"
)

// ValidModes lists every supported timer mode.
var ValidModes = []TimerMode{
	ModeWork,
	ModeShortBreak,
	ModeLongBreak,
}

// ParseMode converts a string into a TimerMode.
// An empty string selects ModeWork.
func ParseMode(s string) (TimerMode, error) {
	if s == "" {
		return ModeWork, nil
	}
	m := TimerMode(s)
	for _, valid := range ValidModes {
		if m == valid {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w %q: must be one of work, short_break, long_break", ErrUnknownMode, s)
}

// Label returns a human-readable label used by the status indicator.
func (m TimerMode) Label() string {
	switch m {
	case ModeWork:
		return "Work"
	case ModeShortBreak:
		return "Short Break"
	case ModeLongBreak:
		return "Long Break"
	default:
		return "Unknown"
	}
}

// IsBreak returns true for both break modes.
func (m TimerMode) IsBreak() bool {
	return m == ModeShortBreak || m == ModeLongBreak
}

// StateKind names the active TimerState variant.
type StateKind string

const (
	KindIdle      StateKind = "idle"
	KindRunning   StateKind = "running"
	KindPaused    StateKind = "paused"
	KindCompleted StateKind = "completed"
)

// TimerState is a closed sum type. The only implementations are
// Idle, Running, Paused and Completed.
type TimerState interface {
	Kind() StateKind
	timerState()
}

// Idle means no countdown is active.
type Idle struct{}

// Running is an active countdown. 0 <= Remaining <= Total.
type Running struct {
	Mode      TimerMode
	Remaining time.Duration
	Total     time.Duration
}

// Paused is a frozen countdown. 0 <= Remaining <= Total.
type Paused struct {
	Mode      TimerMode
	Remaining time.Duration
	Total     time.Duration
}

// Completed marks an interval that just finished.
type Completed struct {
	Mode TimerMode
}

func (Idle) Kind() StateKind      { return KindIdle }
func (Running) Kind() StateKind   { return KindRunning }
func (Paused) Kind() StateKind    { return KindPaused }
func (Completed) Kind() StateKind { return KindCompleted }

func (Idle) timerState()      {}
func (Running) timerState()   {}
func (Paused) timerState()    {}
func (Completed) timerState() {}

// Countdown extracts the countdown fields of a Running or Paused state.
// ok is false for Idle and Completed.
func Countdown(ts TimerState) (mode TimerMode, remaining, total time.Duration, ok bool) {
	switch s := ts.(type) {
	case Running:
		return s.Mode, s.Remaining, s.Total, true
	case Paused:
		return s.Mode, s.Remaining, s.Total, true
	case Idle, Completed, nil:
		return "", 0, 0, false
	default:
		panic(fmt.Sprintf("domain: unhandled timer state %T", ts))
	}
}

// IsActive returns true while a countdown is running or paused.
func IsActive(ts TimerState) bool {
	_, _, _, ok := Countdown(ts)
	return ok
}

// DisplayMode returns the mode whose label and colours should be shown.
// Idle shows the work mode.
func DisplayMode(ts TimerState) TimerMode {
	switch s := ts.(type) {
	case Running:
		return s.Mode
	case Paused:
		return s.Mode
	case Completed:
		return s.Mode
	case Idle, nil:
		return ModeWork
	default:
		panic(fmt.Sprintf("domain: unhandled timer state %T", ts))
	}
}

// Progress returns the elapsed fraction of a countdown (0.0 to 1.0).
func Progress(ts TimerState) float64 {
	switch s := ts.(type) {
	case Running:
		return fraction(s.Remaining, s.Total)
	case Paused:
		return fraction(s.Remaining, s.Total)
	case Completed:
		return 1
	case Idle, nil:
		return 0
	default:
		panic(fmt.Sprintf("domain: unhandled timer state %T", ts))
	}
}

func fraction(remaining, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(total-remaining) / float64(total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
