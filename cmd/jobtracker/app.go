package main

import (
	"fmt"
	"net/http"

	"github.com/justsurfingit/job-tracker-client/internal/api"
	"github.com/justsurfingit/job-tracker-client/internal/auth"
	"github.com/justsurfingit/job-tracker-client/internal/config"
	"github.com/justsurfingit/job-tracker-client/internal/database"
	"github.com/justsurfingit/job-tracker-client/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app is everything a command needs, built once per invocation.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	anon    *api.Client // login, signup and token refresh
	client  *api.Client // authenticated through session
	session *auth.Session
}

var current *app

// setup wires config, logging, the local store and the API client.
func setup(cmd *cobra.Command) (*app, error) {
	if current != nil {
		return current, nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogLevel, verbose)
	if err != nil {
		return nil, err
	}
	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}

	anon, err := api.New(cfg.APIURL,
		api.WithLogger(log),
		api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
	)
	if err != nil {
		return nil, err
	}

	session := auth.NewSession(db, anon, log)
	if err := session.Hydrate(); err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	current = &app{
		cfg:     cfg,
		log:     log,
		db:      db,
		anon:    anon,
		client:  anon.WithTokenSource(session),
		session: session,
	}
	log.Debug("Client ready", zap.String("api", cfg.APIURL), zap.String("command", cmd.CommandPath()))
	return current, nil
}

// setupAuthed is setup for commands that need a logged-in user.
func setupAuthed(cmd *cobra.Command) (*app, auth.Identity, error) {
	a, err := setup(cmd)
	if err != nil {
		return nil, auth.Identity{}, err
	}
	id, err := a.session.Identity()
	if err != nil {
		return nil, auth.Identity{}, err
	}
	return a, id, nil
}

func (a *app) close() {
	_ = a.log.Sync()
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
