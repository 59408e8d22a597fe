package main

import (
	"database/sql"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Dosada05/event-brackets/brackets"
	"github.com/Dosada05/event-brackets/config"
	"github.com/Dosada05/event-brackets/db"
	"github.com/Dosada05/event-brackets/metrics"
	"github.com/Dosada05/event-brackets/repositories"
	"github.com/Dosada05/event-brackets/services"
)

type app struct {
	db             *sql.DB
	hub            *brackets.Hub
	metrics        *metrics.Service
	bracketService services.BracketService
}

// newApp connects to the database and wires repositories and services. hub may be nil
// for one-shot CLI commands that have nobody to notify.
func newApp(cfg *config.Config, logger *slog.Logger, hub *brackets.Hub, reg prometheus.Registerer) (*app, error) {
	dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBConnectTimeout)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	resultRepo := repositories.NewPostgresMatchResultRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)

	metricsSvc := metrics.NewService(reg)

	var notifier services.Notifier
	if hub != nil {
		notifier = hub
	}

	bracketService := services.NewBracketService(
		repositories.NewTxRunner(dbConn),
		tournamentRepo,
		participantRepo,
		resultRepo,
		matchRepo,
		notifier,
		metricsSvc,
		logger,
	)

	return &app{
		db:             dbConn,
		hub:            hub,
		metrics:        metricsSvc,
		bracketService: bracketService,
	}, nil
}

func (a *app) Close(logger *slog.Logger) {
	if err := a.db.Close(); err != nil {
		logger.Error("failed to close database connection", slog.Any("error", err))
		return
	}
	logger.Info("database connection closed")
}
