package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pagoa/brewops/internal/auth"
	"github.com/pagoa/brewops/internal/config"
	"github.com/pagoa/brewops/internal/domain/costs"
	"github.com/pagoa/brewops/internal/domain/finished"
	"github.com/pagoa/brewops/internal/domain/history"
	"github.com/pagoa/brewops/internal/domain/materials"
	"github.com/pagoa/brewops/internal/domain/production"
	"github.com/pagoa/brewops/internal/domain/recipes"
	"github.com/pagoa/brewops/internal/domain/reports"
	"github.com/pagoa/brewops/internal/domain/sales"
	"github.com/pagoa/brewops/internal/domain/users"
	"github.com/pagoa/brewops/internal/infra/db"
	httpx "github.com/pagoa/brewops/internal/infra/http"
	"github.com/pagoa/brewops/internal/infra/logger"
	"github.com/pagoa/brewops/internal/infra/notify"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	materialsRepo := materials.NewRepo(pool)
	recipesRepo := recipes.NewRepo(pool)
	operationsRepo := production.NewRepo(pool)
	finishedRepo := finished.NewRepo(pool)
	historyRepo := history.NewRepo(pool)
	salesRepo := sales.NewRepo(pool)
	costsRepo := costs.NewRepo(pool)
	reportsSvc := reports.NewService(reports.NewRepo(pool))
	usersRepo := users.NewRepo(pool)

	tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.AdminChatID, log)
	if err != nil {
		log.Error("telegram init failed", "err", err)
		return
	}
	// Assign through the interface only when configured, otherwise the
	// service would see a non-nil interface holding a nil *Telegram.
	var notifier production.Notifier
	if tg != nil {
		notifier = tg
		log.Info("low-stock alerts enabled", "chat_id", cfg.Telegram.AdminChatID)
	}

	productionSvc := production.NewService(
		operationsRepo, recipesRepo, materialsRepo, finishedRepo, historyRepo, notifier, log)

	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, httpx.Deps{
		Log:        log,
		Materials:  materialsRepo,
		Recipes:    recipesRepo,
		Production: productionSvc,
		Operations: operationsRepo,
		Finished:   finishedRepo,
		History:    historyRepo,
		Sales:      salesRepo,
		Costs:      costsRepo,
		Reports:    reportsSvc,
		Users:      usersRepo,
		Tokens:     tokens,
	})
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
