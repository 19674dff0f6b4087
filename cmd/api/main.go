package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/liefhq/injury-api/config"
	"github.com/liefhq/injury-api/internal/handler"
	authHandler "github.com/liefhq/injury-api/internal/handler/auth"
	reportHandler "github.com/liefhq/injury-api/internal/handler/report"
	"github.com/liefhq/injury-api/internal/middleware"
	"github.com/liefhq/injury-api/internal/repository/postgres"
	"github.com/liefhq/injury-api/internal/router"
	authService "github.com/liefhq/injury-api/internal/service/auth"
	reportService "github.com/liefhq/injury-api/internal/service/report"
	"github.com/liefhq/injury-api/internal/ui"
	"github.com/liefhq/injury-api/pkg/logger"
)

func main() {
	logger.Setup(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	reportRepo := postgres.NewReportRepository(db)

	reportSvc := reportService.NewService(reportRepo)
	authSvc := authService.NewService(cfg.Auth)

	sessionMiddleware := middleware.NewSessionMiddleware(authSvc)

	h := handler.NewHandler()
	reportH := reportHandler.NewHandler(reportSvc)
	authH := authHandler.NewHandler(authSvc)
	uiH, err := ui.NewHandler(reportSvc)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize UI")
	}

	r := router.NewRouter(sessionMiddleware, reportH, authH, uiH, h, router.Config{
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		CORSConfig:     middleware.DefaultCORSConfig(),
		MetricsPrefix:  "injury_api",
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
