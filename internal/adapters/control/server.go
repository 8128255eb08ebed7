package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/xvierd/pomodore/internal/domain"
	"github.com/xvierd/pomodore/internal/ports"
)

// Server accepts control connections and forwards them to a commander.
type Server struct {
	commander ports.SessionCommander
	logger    *slog.Logger
}

// NewServer creates a control server for commander.
func NewServer(commander ports.SessionCommander, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{commander: commander, logger: logger}
}

// Handler returns the HTTP handler serving Path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, s.handleConn)
	return mux
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("control server listening", "addr", ln.Addr().String())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down control server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("control server failed: %w", err)
	}
}

func (s *Server) handleConn(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("control accept failed", "error", err)
		return
	}
	defer func() { _ = c.CloseNow() }()

	id := uuid.NewString()
	logger := s.logger.With("conn", id)
	logger.Debug("control connection opened", "remote", r.RemoteAddr)

	ctx := r.Context()
	for {
		var req Request
		if err := wsjson.Read(ctx, c, &req); err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				logger.Debug("control connection closed", "error", err)
			}
			return
		}

		if req.Type == TypeWatch {
			s.watch(ctx, c, logger)
			return
		}

		resp := s.handle(ctx, req)
		if resp.Type == TypeError {
			logger.Info("control request rejected", "type", req.Type, "command", req.Command, "error", resp.Error)
		}
		if err := wsjson.Write(ctx, c, resp); err != nil {
			logger.Debug("control write failed", "error", err)
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, req Request) Response {
	var (
		state domain.PomodoroState
		err   error
	)
	switch req.Type {
	case TypeSnapshot:
		state, err = s.commander.Snapshot(ctx)
	case TypeCommand:
		state, err = s.commander.Dispatch(ctx, domain.CommandRequest{
			Command: req.Command,
			Mode:    domain.TimerMode(req.Mode),
		})
	case TypeSettings:
		if req.Settings == nil {
			return errorResponse(errors.New("settings message without settings"))
		}
		state, err = s.commander.UpdateSettings(ctx, req.Settings.ToSettings())
	case TypeCelebrationShown:
		state, err = s.commander.MarkCelebrationShown(ctx)
	default:
		return errorResponse(fmt.Errorf("unknown message type %q", req.Type))
	}
	if err != nil {
		return errorResponse(err)
	}
	dto := FromState(state)
	return Response{Type: TypeState, State: &dto}
}

// watch streams every state until the peer goes away.
func (s *Server) watch(ctx context.Context, c *websocket.Conn, logger *slog.Logger) {
	ctx = c.CloseRead(ctx)
	states, err := s.commander.Watch(ctx)
	if err != nil {
		_ = wsjson.Write(ctx, c, errorResponse(err))
		return
	}
	for state := range states {
		dto := FromState(state)
		if err := wsjson.Write(ctx, c, Response{Type: TypeState, State: &dto}); err != nil {
			logger.Debug("watch write failed", "error", err)
			return
		}
	}
	_ = c.Close(websocket.StatusNormalClosure, "")
}
