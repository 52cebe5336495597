// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

// Package main is the rehearsal service API that provides a RESTful API for
// managing band rehearsal schedules and handles NATS messages for the
// rehearsal service.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/bandroom/rehearsal-service/internal/handlers"
	"github.com/bandroom/rehearsal-service/internal/infrastructure/messaging"
	"github.com/bandroom/rehearsal-service/internal/logging"
	"github.com/bandroom/rehearsal-service/internal/service"
)

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Set up the JWT validator used to authenticate API callers.
	jwtAuth, err := setupJWTAuth()
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up JWT authentication")
		os.Exit(1)
	}

	// Initialize email service (independent of NATS)
	emailService, err := setupEmailService(env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up email service")
		return
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	// Get the key-value stores for the service.
	repos, err := getKeyValueStores(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	// Initialize services
	serviceConfig := service.ServiceConfig{
		DefaultAttending: env.DefaultAttending,
	}
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	authService := service.NewAuthService(jwtAuth)
	recurrenceService := service.NewRecurrenceService()
	responseSyncService := service.NewResponseSyncService(
		repos.Band,
		repos.Occurrence,
		repos.Response,
		messageBuilder,
		serviceConfig,
	)
	rehearsalService := service.NewRehearsalService(
		repos.Band,
		repos.Occurrence,
		repos.Response,
		recurrenceService,
		responseSyncService,
		messageBuilder,
		serviceConfig,
	)
	schedulingService := service.NewSchedulingService(
		repos.Band,
		rehearsalService,
		responseSyncService,
		emailService,
		serviceConfig,
	)

	// Initialize handlers
	bandEventHandler := handlers.NewBandEventHandler(rehearsalService, responseSyncService)
	rehearsalHandler := handlers.NewRehearsalHandler(rehearsalService)

	svc := NewRehearsalsAPI(
		authService,
		schedulingService,
		bandEventHandler,
		rehearsalHandler,
	)

	httpServer := setupHTTPServer(flags, svc, &gracefulCloseWG)

	// Create NATS subscriptions for the service.
	err = createNatsSubscriptions(ctx, svc, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		return
	}

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)
}
