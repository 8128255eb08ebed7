package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/xvierd/pomodore/internal/domain"
	"github.com/xvierd/pomodore/internal/ports"
)

// ErrDaemonNotRunning is returned when nothing listens on the control address.
var ErrDaemonNotRunning = errors.New("pomodore daemon is not running")

// Client talks to a daemon's control server. It implements
// ports.SessionCommander, so callers do not care which process owns the timer.
type Client struct {
	url         string
	dialTimeout time.Duration
}

var _ ports.SessionCommander = (*Client)(nil)

// NewClient creates a client for the daemon listening on addr (host:port).
func NewClient(addr string) *Client {
	return &Client{url: "ws://" + addr + Path, dialTimeout: 2 * time.Second}
}

// Available reports whether a daemon answers on the control address.
func (c *Client) Available(ctx context.Context) bool {
	_, err := c.Snapshot(ctx)
	return err == nil
}

// Snapshot implements ports.SessionCommander.
func (c *Client) Snapshot(ctx context.Context) (domain.PomodoroState, error) {
	return c.roundTrip(ctx, Request{Type: TypeSnapshot})
}

// Dispatch implements ports.SessionCommander.
func (c *Client) Dispatch(ctx context.Context, req domain.CommandRequest) (domain.PomodoroState, error) {
	return c.roundTrip(ctx, Request{Type: TypeCommand, Command: req.Command, Mode: string(req.Mode)})
}

// UpdateSettings implements ports.SessionCommander.
func (c *Client) UpdateSettings(ctx context.Context, settings domain.Settings) (domain.PomodoroState, error) {
	dto := FromSettings(settings)
	return c.roundTrip(ctx, Request{Type: TypeSettings, Settings: &dto})
}

// MarkCelebrationShown records on the daemon that the banner was shown.
func (c *Client) MarkCelebrationShown(ctx context.Context) (domain.PomodoroState, error) {
	return c.roundTrip(ctx, Request{Type: TypeCelebrationShown})
}

// Watch implements ports.SessionCommander. The channel closes when ctx is
// done or the daemon goes away.
func (c *Client) Watch(ctx context.Context) (<-chan domain.PomodoroState, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	if err := wsjson.Write(ctx, conn, Request{Type: TypeWatch}); err != nil {
		_ = conn.CloseNow()
		return nil, fmt.Errorf("failed to send watch request: %w", err)
	}

	out := make(chan domain.PomodoroState, 4)
	go func() {
		defer close(out)
		defer func() { _ = conn.CloseNow() }()
		for {
			var resp Response
			if err := wsjson.Read(ctx, conn, &resp); err != nil {
				return
			}
			if resp.Type != TypeState || resp.State == nil {
				return
			}
			state, err := resp.State.ToState()
			if err != nil {
				return
			}
			select {
			case out <- state:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDaemonNotRunning, err)
	}
	return conn, nil
}

func (c *Client) roundTrip(ctx context.Context, req Request) (domain.PomodoroState, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return domain.PomodoroState{}, err
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	if err := wsjson.Write(ctx, conn, req); err != nil {
		return domain.PomodoroState{}, fmt.Errorf("failed to send %s request: %w", req.Type, err)
	}
	var resp Response
	if err := wsjson.Read(ctx, conn, &resp); err != nil {
		return domain.PomodoroState{}, fmt.Errorf("failed to read %s response: %w", req.Type, err)
	}

	switch resp.Type {
	case TypeState:
		if resp.State == nil {
			return domain.PomodoroState{}, errors.New("state response without state")
		}
		return resp.State.ToState()
	case TypeError:
		return domain.PomodoroState{}, remoteError(resp)
	default:
		return domain.PomodoroState{}, fmt.Errorf("unexpected response type %q", resp.Type)
	}
}
