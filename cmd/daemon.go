package cmd

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/xvierd/pomodore/internal/adapters/background"
	"github.com/xvierd/pomodore/internal/adapters/control"
	"github.com/xvierd/pomodore/internal/adapters/notification"
	"github.com/xvierd/pomodore/internal/domain"
	"github.com/xvierd/pomodore/internal/ports"
	"github.com/xvierd/pomodore/internal/services"
)

// daemon is one running timer: the session controller, the background
// status reporter fed by it, and the control endpoint other commands use.
type daemon struct {
	controller *services.SessionController
	addr       string

	done   <-chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
	errs   chan error
}

type daemonOptions struct {
	// display shows the status. Defaults to a log display.
	display ports.StatusDisplay
	// listener serves the control endpoint. Defaults to listening on the
	// configured control address.
	listener net.Listener
}

func startDaemon(ctx context.Context, opts daemonOptions) (*daemon, error) {
	logger := app.logger

	controller, err := services.NewSessionController(ctx, app.settings, services.ControllerOptions{
		TickInterval: domain.TickStep,
		AutoContinue: app.config.Timer.AutoContinue,
		Notifier:     notification.New(&app.config.Notifications),
		Logger:       logger.With("component", "controller"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	ln := opts.listener
	if ln == nil {
		ln, err = net.Listen("tcp", app.config.Control.Address)
		if err != nil {
			controller.Close()
			return nil, fmt.Errorf("failed to listen on %s (is another daemon running?): %w",
				app.config.Control.Address, err)
		}
	}

	display := opts.display
	if display == nil {
		display = background.NewLogDisplay(logger.With("component", "status"))
	}
	reporter := background.New(display, background.Options{
		RefreshInterval: time.Second,
		Logger:          logger.With("component", "reporter"),
	})
	bridge := services.NewStatusBridge(reporter)
	states, unsubscribe := controller.Subscribe(1)
	server := control.NewServer(controller, logger.With("component", "control"))

	ctx, cancel := context.WithCancel(ctx)
	d := &daemon{
		controller: controller,
		addr:       ln.Addr().String(),
		done:       ctx.Done(),
		cancel:     cancel,
		errs:       make(chan error, 2),
	}

	d.wg.Add(3)
	go func() {
		defer d.wg.Done()
		if err := reporter.Run(ctx); err != nil {
			d.fail(fmt.Errorf("status reporter: %w", err))
		}
	}()
	go func() {
		defer d.wg.Done()
		defer unsubscribe()
		bridge.Run(ctx, states)
	}()
	go func() {
		defer d.wg.Done()
		if err := server.Serve(ctx, ln); err != nil {
			d.fail(err)
		}
	}()

	logger.Info("daemon started", "addr", d.addr)
	return d, nil
}

func (d *daemon) fail(err error) {
	select {
	case d.errs <- err:
	default:
	}
	d.cancel()
}

// Wait blocks until ctx is done, the daemon is closed, or a daemon
// component fails.
func (d *daemon) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case err := <-d.errs:
		return err
	case <-d.done:
		select {
		case err := <-d.errs:
			return err
		default:
			return nil
		}
	}
}

// Close stops every component and waits for them to exit.
func (d *daemon) Close() error {
	d.cancel()
	d.controller.Close()
	d.wg.Wait()
	app.logger.Info("daemon stopped")

	select {
	case err := <-d.errs:
		return err
	default:
		return nil
	}
}
