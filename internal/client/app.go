// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-conn-sync/internal/logger"
	"github.com/MKhiriev/go-conn-sync/internal/service"
	"github.com/MKhiriev/go-conn-sync/internal/workers"
)

// App is the sync client process. Without arguments it runs an initial sync
// and then the background workers until a termination signal arrives. With
// arguments it executes one command (see [Commands]) and exits.
type App struct {
	services *service.ClientServices
	workers  *workers.Workers
	commands *Commands
	args     []string
	// closers run in order once Run returns.
	closers []func()
	logger  *logger.Logger
}

// NewApp assembles the client. closers are called on shutdown, typically the
// notification dispatcher first and the storages last.
func NewApp(services *service.ClientServices, jobs *workers.Workers, args []string, out io.Writer, logger *logger.Logger, closers ...func()) (*App, error) {
	if services == nil || services.Sync == nil {
		return nil, errNoSyncEngine
	}
	if services.Entities == nil {
		return nil, errNoEntityService
	}
	if jobs == nil {
		jobs = workers.NewWorkers()
	}
	if out == nil {
		out = os.Stdout
	}

	return &App{
		services: services,
		workers:  jobs,
		commands: NewCommands(services.Sync, services.Entities, out),
		args:     args,
		closers:  closers,
		logger:   logger,
	}, nil
}

// Run blocks until the command finishes or, in daemon mode, until SIGINT,
// SIGTERM or SIGQUIT.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	ctx = a.logger.WithContext(ctx)
	defer a.shutdown()

	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	if len(a.args) > 0 {
		return a.commands.Execute(ctx, a.args)
	}

	a.logger.Info().
		Str("device_id", a.services.Identity.ID).
		Str("device_name", a.services.Identity.Name).
		Msg("sync client started")

	if _, err := a.services.Sync.SyncNow(ctx); err != nil {
		a.logger.Warn().Err(err).Str("func", "App.run").Msg("initial sync failed")
	}

	if err := a.workers.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	a.logger.Info().Msg("sync client stopped")
	return nil
}

func (a *App) shutdown() {
	for _, c := range a.closers {
		if c != nil {
			c()
		}
	}
}
