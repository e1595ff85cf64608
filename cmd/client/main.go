// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MKhiriev/go-conn-sync/internal/adapter"
	"github.com/MKhiriev/go-conn-sync/internal/client"
	"github.com/MKhiriev/go-conn-sync/internal/config"
	"github.com/MKhiriev/go-conn-sync/internal/logger"
	"github.com/MKhiriev/go-conn-sync/internal/notify"
	"github.com/MKhiriev/go-conn-sync/internal/service"
	"github.com/MKhiriev/go-conn-sync/internal/store"
	"github.com/MKhiriev/go-conn-sync/internal/workers"
	"github.com/MKhiriev/go-conn-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	printBuildInfo(buildInfo)

	cfg, err := config.GetClientConfig()
	if err != nil {
		logger.NewLogger("go-conn-sync").Fatal().Err(err).Msg("error getting configs")
	}

	log, err := logger.NewClientLogger("go-conn-sync", logger.FileOptions{
		Level:      cfg.Log.Level,
		Output:     cfg.Log.Output,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		logger.NewLogger("go-conn-sync").Fatal().Err(err).Msg("error creating logger")
	}

	ctx := log.WithContext(context.Background())

	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}

	transport, err := adapter.NewHTTPTransport(cfg.Adapter, cfg.App, buildInfo.UserAgent(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("create sync transport")
	}

	dispatcher := notify.NewDispatcher(notify.Multi{notify.NewConsoleSink(os.Stdout), notify.NewLogSink(log)}, notify.DefaultQueueSize, log)

	services, err := service.NewClientServices(ctx, storages, transport, dispatcher, cfg.App.DeviceName,
		service.NewSyncOptions(cfg.Sync, cfg.Adapter), log)
	if err != nil {
		log.Fatal().Err(err).Msg("create client services")
	}

	jobs := workers.NewWorkers(
		workers.NewSyncWorker(services.Sync, cfg.Workers, cfg.Sync, log),
		workers.NewConnectivityWorker(transport, services.Sync, cfg.Workers.ProbeInterval, cfg.Adapter.RequestTimeout, log),
	)

	var app client.Client
	app, err = client.NewApp(services, jobs, cfg.Args, os.Stdout, log,
		dispatcher.Close,
		func() {
			if err := storages.Close(); err != nil {
				log.Error().Err(err).Msg("close local storage")
			}
		},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
}

func printBuildInfo(info models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", info.BuildVersion())
	fmt.Printf("Build date: %s\n", info.BuildDate())
	fmt.Printf("Build commit: %s\n", info.BuildCommit())
}
