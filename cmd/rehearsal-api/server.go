// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bandroom/rehearsal-service/internal/logging"
	"github.com/bandroom/rehearsal-service/internal/middleware"
)

// setupHTTPServer configures and starts the HTTP server
func setupHTTPServer(flags flags, svc *RehearsalsAPI, gracefulCloseWG *sync.WaitGroup) *http.Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLoggerMiddleware())

	router.Get("/livez", svc.Livez)
	router.Get("/readyz", svc.Readyz)

	router.Route("/bands/{bandUID}", func(r chi.Router) {
		r.Post("/rehearsals", svc.CreateRehearsal)
		r.Get("/rehearsals", svc.ListRehearsals)
		r.Post("/auto-manage", svc.AutoManage)
		r.Get("/responses", svc.ListResponses)
		r.Post("/responses/reconcile", svc.ReconcileResponses)
		r.Post("/summary-email", svc.SendSummaryEmail)
	})
	router.Route("/rehearsals/{occurrenceUID}", func(r chi.Router) {
		r.Get("/", svc.GetRehearsal)
		r.Put("/", svc.UpdateRehearsal)
		r.Delete("/", svc.DeleteRehearsal)
		r.Get("/responses", svc.ListOccurrenceResponses)
	})
	router.Put("/responses/{responseUID}", svc.UpdateResponse)

	// Set up http listener in a goroutine using provided command line parameters.
	var addr string
	if flags.Bind == "*" {
		addr = ":" + flags.Port
	} else {
		addr = flags.Bind + ":" + flags.Port
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	gracefulCloseWG.Add(1)
	go func() {
		slog.With("addr", addr).Debug("starting http server, listening on port " + flags.Port)
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.With(logging.ErrKey, err).Error("http listener error")
			os.Exit(1)
		}
		// Because ErrServerClosed is *immediately* returned when Shutdown is
		// called, not when when Shutdown completes, this must not yet decrement
		// the wait group.
	}()

	return httpServer
}
