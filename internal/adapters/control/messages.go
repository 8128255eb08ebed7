// Package control exposes a running session over a localhost WebSocket so
// other processes (CLI commands, the MCP server) can drive it.
package control

import (
	"errors"
	"fmt"
	"time"

	"github.com/xvierd/pomodore/internal/domain"
)

// Path is the WebSocket endpoint served by the daemon.
const Path = "/control"

// MessageType tags every envelope.
type MessageType string

const (
	TypeCommand          MessageType = "command"
	TypeSettings         MessageType = "settings"
	TypeSnapshot         MessageType = "snapshot"
	TypeCelebrationShown MessageType = "celebration_shown"
	TypeWatch            MessageType = "watch"
	TypeState            MessageType = "state"
	TypeError            MessageType = "error"
)

// Request is sent by clients.
type Request struct {
	Type     MessageType    `json:"type"`
	Command  domain.Command `json:"command,omitempty"`
	Mode     string         `json:"mode,omitempty"`
	Settings *SettingsDTO   `json:"settings,omitempty"`
}

// Response is sent by the server.
type Response struct {
	Type  MessageType `json:"type"`
	State *StateDTO   `json:"state,omitempty"`
	Error string      `json:"error,omitempty"`
	Code  string      `json:"code,omitempty"`
}

// SettingsDTO is the wire form of domain.Settings.
type SettingsDTO struct {
	WorkDurationMinutes       int  `json:"work_duration_minutes"`
	ShortBreakDurationMinutes int  `json:"short_break_duration_minutes"`
	LongBreakDurationMinutes  int  `json:"long_break_duration_minutes"`
	SessionsUntilLongBreak    int  `json:"sessions_until_long_break"`
	TotalCycles               int  `json:"total_cycles"`
	KeepScreenOn              bool `json:"keep_screen_on"`
}

// StateDTO is the wire form of domain.PomodoroState.
type StateDTO struct {
	Kind              domain.StateKind `json:"kind"`
	Mode              domain.TimerMode `json:"mode,omitempty"`
	RemainingMillis   int64            `json:"time_remaining_millis"`
	TotalMillis       int64            `json:"total_time_millis"`
	CurrentSession    int              `json:"current_session"`
	CompletedSessions int              `json:"completed_sessions"`
	CelebrationShown  bool             `json:"celebration_shown"`
	Settings          SettingsDTO      `json:"settings"`
}

// FromSettings maps domain settings to the wire form.
func FromSettings(s domain.Settings) SettingsDTO {
	return SettingsDTO{
		WorkDurationMinutes:       s.WorkDurationMinutes,
		ShortBreakDurationMinutes: s.ShortBreakDurationMinutes,
		LongBreakDurationMinutes:  s.LongBreakDurationMinutes,
		SessionsUntilLongBreak:    s.SessionsUntilLongBreak,
		TotalCycles:               s.TotalCycles,
		KeepScreenOn:              s.KeepScreenOn,
	}
}

// ToSettings maps the wire form back to domain settings.
func (d SettingsDTO) ToSettings() domain.Settings {
	return domain.Settings{
		WorkDurationMinutes:       d.WorkDurationMinutes,
		ShortBreakDurationMinutes: d.ShortBreakDurationMinutes,
		LongBreakDurationMinutes:  d.LongBreakDurationMinutes,
		SessionsUntilLongBreak:    d.SessionsUntilLongBreak,
		TotalCycles:               d.TotalCycles,
		KeepScreenOn:              d.KeepScreenOn,
	}
}

// FromState maps a state snapshot to the wire form.
func FromState(s domain.PomodoroState) StateDTO {
	dto := StateDTO{
		Kind:              s.Timer.Kind(),
		CurrentSession:    s.CurrentSession,
		CompletedSessions: s.CompletedSessions,
		CelebrationShown:  s.CelebrationShown,
		Settings:          FromSettings(s.Settings),
	}
	switch t := s.Timer.(type) {
	case domain.Running:
		dto.Mode, dto.RemainingMillis, dto.TotalMillis = t.Mode, t.Remaining.Milliseconds(), t.Total.Milliseconds()
	case domain.Paused:
		dto.Mode, dto.RemainingMillis, dto.TotalMillis = t.Mode, t.Remaining.Milliseconds(), t.Total.Milliseconds()
	case domain.Completed:
		dto.Mode = t.Mode
	case domain.Idle:
	default:
		panic(fmt.Sprintf("control: unhandled timer state %T", t))
	}
	return dto
}

// ToState maps the wire form back to a state snapshot.
func (d StateDTO) ToState() (domain.PomodoroState, error) {
	s := domain.PomodoroState{
		CurrentSession:    d.CurrentSession,
		CompletedSessions: d.CompletedSessions,
		CelebrationShown:  d.CelebrationShown,
		Settings:          d.Settings.ToSettings(),
	}
	remaining := time.Duration(d.RemainingMillis) * time.Millisecond
	total := time.Duration(d.TotalMillis) * time.Millisecond

	switch d.Kind {
	case domain.KindIdle:
		s.Timer = domain.Idle{}
	case domain.KindRunning:
		s.Timer = domain.Running{Mode: d.Mode, Remaining: remaining, Total: total}
	case domain.KindPaused:
		s.Timer = domain.Paused{Mode: d.Mode, Remaining: remaining, Total: total}
	case domain.KindCompleted:
		s.Timer = domain.Completed{Mode: d.Mode}
	default:
		return s, fmt.Errorf("unknown timer state kind %q", d.Kind)
	}
	return s, nil
}

var errorCodes = map[string]error{
	"timer_active":    domain.ErrTimerActive,
	"unknown_command": domain.ErrUnknownCommand,
	"unknown_mode":    domain.ErrUnknownMode,
	"unknown_setting": domain.ErrUnknownSetting,
}

func errorResponse(err error) Response {
	resp := Response{Type: TypeError, Error: err.Error()}
	for code, sentinel := range errorCodes {
		if errors.Is(err, sentinel) {
			resp.Code = code
			break
		}
	}
	return resp
}

// remoteError rebuilds an error from a response so errors.Is keeps working
// across the process boundary.
func remoteError(resp Response) error {
	if sentinel, ok := errorCodes[resp.Code]; ok {
		if resp.Error == sentinel.Error() {
			return sentinel
		}
		return fmt.Errorf("%w: %s", sentinel, resp.Error)
	}
	return errors.New(resp.Error)
}
