// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/bandroom/rehearsal-service/internal/domain"
	"github.com/bandroom/rehearsal-service/internal/domain/models"
	"github.com/bandroom/rehearsal-service/internal/infrastructure/auth"
	"github.com/bandroom/rehearsal-service/internal/infrastructure/email"
	"github.com/bandroom/rehearsal-service/internal/infrastructure/messaging"
	"github.com/bandroom/rehearsal-service/internal/infrastructure/store"
	"github.com/bandroom/rehearsal-service/internal/logging"
)

// setupJWTAuth configures JWT authentication for the service
func setupJWTAuth() (*auth.JWTAuth, error) {
	jwtAuthConfig := auth.JWTAuthConfig{
		JWKSURL:            os.Getenv("JWKS_URL"),
		Audience:           os.Getenv("JWT_AUDIENCE"),
		MockLocalPrincipal: os.Getenv("JWT_AUTH_DISABLED_MOCK_LOCAL_PRINCIPAL"),
	}
	return auth.NewJWTAuth(jwtAuthConfig)
}

// setupEmailService selects the email backend from the environment. With SMTP
// disabled the no-op service keeps summary requests from failing.
func setupEmailService(env environment) (domain.EmailService, error) {
	if !env.Email.Enabled {
		slog.Info("SMTP disabled, using no-op email service")
		return email.NewNoOpService(), nil
	}

	return email.NewSMTPService(email.SMTPConfig{
		Host:     env.Email.Host,
		Port:     env.Email.Port,
		From:     env.Email.From,
		Username: env.Email.Username,
		Password: env.Email.Password,
	})
}

// setupNATS establishes the NATS connection used for storage, messaging and
// subscriptions. An unexpected connection close shuts the service down.
func setupNATS(ctx context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	slog.With("nats_url", env.NatsURL).DebugContext(ctx, "connecting to NATS")

	gracefulCloseWG.Add(1)
	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.DrainTimeout(25*time.Second),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.InfoContext(ctx, "connected to NATS server")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.ErrorContext(ctx, "async NATS error",
					logging.ErrKey, err, "subject", s.Subject, "queue", s.Queue)
				return
			}
			slog.ErrorContext(ctx, "async NATS error outside subscription", logging.ErrKey, err)
		}),
		nats.ClosedHandler(func(conn *nats.Conn) {
			slog.InfoContext(ctx, "NATS connection closed", logging.ErrKey, conn.LastError())
			gracefulCloseWG.Done()
			// A close not initiated by shutdown is fatal.
			select {
			case done <- os.Interrupt:
			default:
			}
		}),
	)
	if err != nil {
		gracefulCloseWG.Done()
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", env.NatsURL, err)
	}

	return natsConn, nil
}

// repositories holds the NATS KV backed repositories of the service.
type repositories struct {
	Occurrence *store.NatsOccurrenceRepository
	Response   *store.NatsResponseRepository
	Band       *store.NatsBandRepository
}

// getKeyValueStores binds the KV buckets the service depends on, creating the
// buckets it owns when they do not exist yet. The bands bucket is owned by the
// bands service and must already exist.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	occurrenceKV, err := ensureKeyValueStore(ctx, js, store.KVStoreNameOccurrences)
	if err != nil {
		return nil, err
	}
	responseKV, err := ensureKeyValueStore(ctx, js, store.KVStoreNameResponses)
	if err != nil {
		return nil, err
	}
	bandKV, err := js.KeyValue(ctx, store.KVStoreNameBands)
	if err != nil {
		return nil, fmt.Errorf("failed to bind to KV bucket %s: %w", store.KVStoreNameBands, err)
	}

	return &repositories{
		Occurrence: store.NewNatsOccurrenceRepository(occurrenceKV),
		Response:   store.NewNatsResponseRepository(responseKV),
		Band:       store.NewNatsBandRepository(bandKV),
	}, nil
}

func ensureKeyValueStore(ctx context.Context, js jetstream.JetStream, bucket string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, bucket)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, fmt.Errorf("failed to bind to KV bucket %s: %w", bucket, err)
	}

	slog.InfoContext(ctx, "creating KV bucket", "bucket", bucket)
	kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  bucket,
		History: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create KV bucket %s: %w", bucket, err)
	}
	return kv, nil
}

// createNatsSubscriptions sets up the queue subscriptions for the subjects
// this service consumes.
func createNatsSubscriptions(ctx context.Context, svc *RehearsalsAPI, natsConn *nats.Conn) error {
	subscriptions := map[string]domain.MessageHandler{
		models.BandMemberAddedSubject:     svc.bandEventHandler,
		models.BandMemberRemovedSubject:   svc.bandEventHandler,
		models.BandDeletedSubject:         svc.bandEventHandler,
		models.RehearsalAutoManageSubject: svc.rehearsalHandler,
	}

	for subject, handler := range subscriptions {
		_, err := natsConn.QueueSubscribe(subject, models.RehearsalsAPIQueue, func(msg *nats.Msg) {
			handler.HandleMessage(ctx, messaging.NewNatsMessage(msg))
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		slog.With("subject", subject, "queue", models.RehearsalsAPIQueue).
			DebugContext(ctx, "subscribed to NATS subject")
	}

	return nil
}

// gracefulShutdown drains the HTTP server and the NATS connection, waiting
// for both to finish before returning.
func gracefulShutdown(httpServer *http.Server, natsConn *nats.Conn, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	slog.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down http server")
	}
	gracefulCloseWG.Done()

	if natsConn != nil && !natsConn.IsClosed() {
		// Drain flushes in-flight messages and invokes the closed handler,
		// which releases the remaining wait group slot.
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
			natsConn.Close()
		}
	}

	gracefulCloseWG.Wait()
	slog.Info("shutdown complete")
}
