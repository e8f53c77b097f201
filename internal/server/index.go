package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mudhay027/ritaitutor/internal/tutor"
)

// IndexService is the slice of the retrieval client the operational
// endpoints need.
type IndexService interface {
	Status(ctx context.Context) tutor.IndexStatus
	TriggerRebuild(ctx context.Context) error
}

// IndexHandler exposes operational endpoints for the external passage index.
type IndexHandler struct {
	Retrieval IndexService
	Logger    *log.Logger
}

func (h *IndexHandler) Register(g *echo.Group) {
	g.GET("/status", h.status)
	g.POST("/rebuild", h.rebuild)
}

func (h *IndexHandler) status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Retrieval.Status(c.Request().Context()))
}

// rebuild fires the index rebuild and returns immediately. The rebuild runs
// on its own context, detached from this request; failure is logged, never
// surfaced to the caller, and never retried.
func (h *IndexHandler) rebuild(c echo.Context) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := h.Retrieval.TriggerRebuild(ctx); err != nil {
			h.Logger.Printf("rebuild failed: %v", err)
		}
	}()
	return c.JSON(http.StatusAccepted, map[string]string{"status": "rebuild triggered"})
}
