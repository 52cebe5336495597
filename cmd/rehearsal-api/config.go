// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"

	"github.com/nats-io/nats.go"

	"github.com/bandroom/rehearsal-service/internal/logging"
	"github.com/bandroom/rehearsal-service/pkg/utils"
)

// flags are the command line flags for the rehearsal service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the rehearsal service.
type environment struct {
	Port             string
	NatsURL          string
	DefaultAttending bool
	Email            emailConfig
}

// emailConfig holds SMTP configuration for schedule summary emails.
type emailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// parseFlags parses command line flags for the rehearsal service
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the rehearsal service
func parseEnv() environment {
	port := utils.CoalesceString(os.Getenv("PORT"), "8080")
	natsURL := utils.CoalesceString(os.Getenv("NATS_URL"), nats.DefaultURL)

	// New responses default to attending unless explicitly disabled.
	defaultAttending := os.Getenv("DEFAULT_ATTENDING") != "false"

	return environment{
		Port:             port,
		NatsURL:          natsURL,
		DefaultAttending: defaultAttending,
		Email:            parseEmailConfig(),
	}
}

// parseEmailConfig parses SMTP configuration from environment variables
func parseEmailConfig() emailConfig {
	enabled := os.Getenv("SMTP_ENABLED") == "true"

	host := utils.CoalesceString(os.Getenv("SMTP_HOST"), "localhost")

	port := 587
	if portRaw := os.Getenv("SMTP_PORT"); portRaw != "" {
		parsed, err := strconv.Atoi(portRaw)
		if err != nil {
			slog.With(logging.ErrKey, err, "port", portRaw).Error("invalid SMTP_PORT provided, using default")
		} else {
			port = parsed
		}
	}

	from := utils.CoalesceString(os.Getenv("SMTP_FROM"), "noreply@bandroom.app")

	return emailConfig{
		Enabled:  enabled,
		Host:     host,
		Port:     port,
		From:     from,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
	}
}
