// Package mcp exposes the pomodoro timer as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/xvierd/pomodore/internal/domain"
	"github.com/xvierd/pomodore/internal/ports"
)

// Server implements the MCP server using mark3labs/mcp-go.
type Server struct {
	server    *server.MCPServer
	commander ports.SessionCommander
	version   string
}

// NewServer creates a new MCP server instance backed by commander.
func NewServer(commander ports.SessionCommander, version string) *Server {
	s := &Server{
		commander: commander,
		version:   version,
	}

	s.server = server.NewMCPServer(
		"pomodore",
		version,
		server.WithLogging(),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.server.AddTool(
		mcp.NewTool(
			"get_timer_state",
			mcp.WithDescription("Get the pomodoro timer state: mode, remaining time, session counters and available actions"),
		),
		s.handleGetTimerState,
	)

	modes := make([]string, 0, len(domain.ValidModes))
	for _, m := range domain.ValidModes {
		modes = append(modes, string(m))
	}
	s.server.AddTool(
		mcp.NewTool(
			"start_timer",
			mcp.WithDescription("Start a countdown. Does nothing while a timer is already running or paused"),
			mcp.WithString(
				"mode",
				mcp.Description("Interval to start (default: work)"),
				mcp.Enum(modes...),
			),
		),
		s.handleStartTimer,
	)

	s.server.AddTool(
		mcp.NewTool("pause_timer", mcp.WithDescription("Pause the running countdown")),
		s.commandHandler(domain.CmdPause),
	)
	s.server.AddTool(
		mcp.NewTool("resume_timer", mcp.WithDescription("Resume a paused countdown")),
		s.commandHandler(domain.CmdResume),
	)
	s.server.AddTool(
		mcp.NewTool("stop_timer", mcp.WithDescription("Stop the countdown and reset the cycle")),
		s.commandHandler(domain.CmdStop),
	)
	s.server.AddTool(
		mcp.NewTool("skip_timer", mcp.WithDescription("End the current interval early and move to the next one")),
		s.commandHandler(domain.CmdSkip),
	)

	s.server.AddTool(
		mcp.NewTool("get_settings", mcp.WithDescription("Get the pomodoro settings")),
		s.handleGetSettings,
	)

	s.server.AddTool(
		mcp.NewTool(
			"update_settings",
			mcp.WithDescription("Change one setting. Rejected while a timer is running or paused"),
			mcp.WithString(
				"key",
				mcp.Required(),
				mcp.Description("Setting to change"),
				mcp.Enum(domain.SettingsKeys...),
			),
			mcp.WithString(
				"value",
				mcp.Required(),
				mcp.Description("New value. Durations are whole minutes, keep_screen_on is true or false"),
			),
		),
		s.handleUpdateSettings,
	)
}

// Start serves MCP requests over stdio until stdin closes.
func (s *Server) Start() error {
	return server.ServeStdio(s.server)
}

func (s *Server) handleGetTimerState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := s.commander.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get timer state: %w", err)
	}
	return stateResult(state)
}

func (s *Server) handleStartTimer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode, err := domain.ParseMode(request.GetString("mode", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	state, err := s.commander.Dispatch(ctx, domain.CommandRequest{Command: domain.CmdStart, Mode: mode})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start timer: %v", err)), nil
	}
	return stateResult(state)
}

func (s *Server) commandHandler(cmd domain.Command) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		state, err := s.commander.Dispatch(ctx, domain.CommandRequest{Command: cmd})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to %s timer: %v", strings.ToLower(string(cmd)), err)), nil
		}
		return stateResult(state)
	}
}

func (s *Server) handleGetSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := s.commander.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return jsonResult(settingsMap(state.Settings))
}

func (s *Server) handleUpdateSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError("key is required: " + err.Error()), nil
	}
	value, err := request.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError("value is required: " + err.Error()), nil
	}

	current, err := s.commander.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	next, err := current.Settings.Set(key, value)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	state, err := s.commander.UpdateSettings(ctx, next)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update settings: %v", err)), nil
	}
	return jsonResult(settingsMap(state.Settings))
}

func stateResult(state domain.PomodoroState) (*mcp.CallToolResult, error) {
	result := map[string]interface{}{
		"state":              string(state.Timer.Kind()),
		"current_session":    state.CurrentSession,
		"completed_sessions": state.CompletedSessions,
		"total_cycles":       state.Settings.TotalCycles,
	}

	if mode, remaining, total, ok := domain.Countdown(state.Timer); ok {
		result["mode"] = string(mode)
		result["remaining"] = domain.FormatClock(remaining)
		result["remaining_seconds"] = int(remaining.Seconds())
		result["total_seconds"] = int(total.Seconds())
		result["progress"] = domain.Progress(state.Timer)
	} else if c, isCompleted := state.Timer.(domain.Completed); isCompleted {
		result["mode"] = string(c.Mode)
	}

	controls := state.Controls()
	enabled := map[domain.Command]bool{
		domain.CmdStart:  controls.Start,
		domain.CmdPause:  controls.Pause,
		domain.CmdResume: controls.Resume,
		domain.CmdStop:   controls.Stop,
		domain.CmdSkip:   controls.Skip,
	}
	actions := []string{}
	for _, cmd := range domain.Commands {
		if enabled[cmd] {
			actions = append(actions, string(cmd))
		}
	}
	result["actions"] = actions
	result["keep_awake"] = controls.KeepAwake

	return jsonResult(result)
}

func settingsMap(s domain.Settings) map[string]interface{} {
	return map[string]interface{}{
		domain.KeyWorkDuration:           s.WorkDurationMinutes,
		domain.KeyShortBreakDuration:     s.ShortBreakDurationMinutes,
		domain.KeyLongBreakDuration:      s.LongBreakDurationMinutes,
		domain.KeySessionsUntilLongBreak: s.SessionsUntilLongBreak,
		domain.KeyTotalCycles:            s.TotalCycles,
		domain.KeyKeepScreenOn:           s.KeepScreenOn,
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
