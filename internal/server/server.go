package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mudhay027/ritaitutor/config"
	"github.com/mudhay027/ritaitutor/internal/store"
	"github.com/mudhay027/ritaitutor/internal/tutor"
)

// Run wires the pipeline together and serves the HTTP control surface.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging. Internal
	// detail stays server-side; the caller sees an opaque failure.
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if code == http.StatusInternalServerError {
			msg = "internal server error"
		}
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	if cfg.Telemetry.Enabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	ctx := context.Background()
	dsn, err := cfg.Storage.Postgres.DSN()
	if err != nil {
		return err
	}
	if err := Migrate("file://migrations", dsn, "up", 0); err != nil {
		baseLogger.Printf("migrate: %v", err)
	}

	st, err := store.NewWithDSN(ctx, dsn)
	if err != nil {
		return err
	}

	cache := tutor.NewRetrievalCache(cfg.Storage.Redis, cfg.Retrieval.CacheTTL, nil)
	retriever := tutor.NewRetrievalClient(cfg.Retrieval, cache, nil)
	generator := tutor.NewGenerationClient(cfg.Gemini, nil)
	orch := tutor.NewOrchestrator(retriever, generator, st, cfg.Retrieval.TopK, nil)

	api := e.Group("/api")
	ah := &AIHandler{Orchestrator: orch}
	ah.Register(api.Group("/ai"))
	ih := &IndexHandler{Retrieval: retriever, Logger: log.New(log.Writer(), "[INDEX] ", log.LstdFlags)}
	ih.Register(api.Group("/index"))

	return e.Start(cfg.Server.Address)
}
