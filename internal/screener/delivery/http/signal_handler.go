package http

import (
	"net/http"
	"time"

	"golang-stock-screener/internal/screener/repository"
	"golang-stock-screener/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SignalHandler serves stored screening results.
type SignalHandler struct {
	signalRepo repository.SignalRepository
	logger     *logger.Logger
}

// NewSignalHandler creates a new SignalHandler.
func NewSignalHandler(signalRepo repository.SignalRepository, logger *logger.Logger) *SignalHandler {
	return &SignalHandler{signalRepo: signalRepo, logger: logger}
}

// RegisterRoutes registers the signal routes to the Echo group.
func (h *SignalHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetSignals)
}

// GetSignals returns the signals for one date (default today), best score
// first.
func (h *SignalHandler) GetSignals(c echo.Context) error {
	date := time.Now()
	if raw := c.QueryParam("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		date = parsed
	}

	signals, err := h.signalRepo.GetByDate(c.Request().Context(), date)
	if err != nil {
		h.logger.Error("Failed to get signals", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get signals"})
	}
	return c.JSON(http.StatusOK, signals)
}
