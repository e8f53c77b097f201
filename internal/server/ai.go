package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mudhay027/ritaitutor/internal/tutor"
)

// AnswerService is the orchestrator surface the handlers need.
type AnswerService interface {
	Answer(ctx context.Context, q tutor.Question) (tutor.Answer, error)
	Revise(ctx context.Context, previousAnswer, request string) string
}

// AIHandler exposes the ask and revise operations.
type AIHandler struct {
	Orchestrator AnswerService
}

func (h *AIHandler) Register(g *echo.Group) {
	g.POST("/ask", h.ask)
	g.POST("/modify", h.modify)
}

func (h *AIHandler) ask(c echo.Context) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question required")
	}

	q := tutor.Question{Text: req.Question, ActivePDF: req.ActivePdf, SessionID: req.SessionID}
	ans, err := h.Orchestrator.Answer(c.Request().Context(), q)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, AskResponse{
		Answer:     ans.Text,
		Source:     ans.Sources,
		UsedChunks: ans.Passages,
	})
}

func (h *AIHandler) modify(c echo.Context) error {
	var req ModifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	answer := h.Orchestrator.Revise(c.Request().Context(), req.PreviousAnswer, req.Request)
	return c.JSON(http.StatusOK, ModifyResponse{Answer: answer})
}
