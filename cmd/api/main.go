// Applicant tracking service: job postings, applications with resume
// artifacts, status workflow with email notifications, and admin analytics.
//
// @title        TalentDesk ATS API
// @version      1.0
// @description  Applicant tracking system: jobs, applications, resumes, analytics.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talentdesk/ats-system/internal/api"
	"github.com/talentdesk/ats-system/internal/infrastructure/db/mongo"
	"github.com/talentdesk/ats-system/internal/infrastructure/db/redis"
	"github.com/talentdesk/ats-system/internal/infrastructure/notify"
	"github.com/talentdesk/ats-system/internal/infrastructure/queue"
	"github.com/talentdesk/ats-system/internal/infrastructure/storage"
	"github.com/talentdesk/ats-system/internal/pkg/config"
	"github.com/talentdesk/ats-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Env == "development"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	resumes, err := storage.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("resume store init failed")
	}

	notifier := notify.NewSMTPNotifier(cfg.SMTP, log)
	dedup := redis.NewNotifyDedup(rdb)
	dispatcher := queue.NewDispatcher(0, notifier, dedup, log)
	dispatcher.Start(ctx)

	e := api.NewRouter(cfg, db, rdb, resumes, dispatcher, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		os.Exit(1)
	}
}
