package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"finrag-orchestrator/internal/adapter/qa_http"
	"finrag-orchestrator/internal/di"
	"finrag-orchestrator/internal/infra"
	"finrag-orchestrator/internal/infra/config"
	"finrag-orchestrator/internal/infra/logger"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.New()
	slog.SetDefault(log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	dbPool, err := infra.NewPostgresDB(context.Background(), dsn)
	if err != nil {
		log.Error("failed to connect to db", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	components := di.NewApplicationComponents(cfg, dbPool, log)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	handler := qa_http.NewHandler(components.AnswerUsecase, components.RetrieveUsecase, cfg.YearMin, cfg.YearMax)
	e.POST("/v1/qa/answer", handler.Answer)
	e.POST("/v1/qa/retrieve", handler.Retrieve)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/readyz", func(c echo.Context) error {
		if err := dbPool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "db down", "error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info("starting server", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}
