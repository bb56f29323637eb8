package http

import (
	"net/http"
	"strconv"

	"golang-stock-screener/internal/screener/repository"
	"golang-stock-screener/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalysisHandler serves run history, weight history, and weekly analyses.
type AnalysisHandler struct {
	runStatsRepo repository.RunStatsRepository
	weightRepo   repository.WeightConfigRepository
	weeklyRepo   repository.WeeklyAnalysisRepository
	logger       *logger.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(
	runStatsRepo repository.RunStatsRepository,
	weightRepo repository.WeightConfigRepository,
	weeklyRepo repository.WeeklyAnalysisRepository,
	logger *logger.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		runStatsRepo: runStatsRepo,
		weightRepo:   weightRepo,
		weeklyRepo:   weeklyRepo,
		logger:       logger,
	}
}

// RegisterRoutes registers the analysis routes to the Echo group.
func (h *AnalysisHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/runs", h.GetRuns)
	g.GET("/weights", h.GetWeightHistory)
	g.GET("/weekly", h.GetWeeklyAnalyses)
}

// GetRuns returns recent run statistics.
func (h *AnalysisHandler) GetRuns(c echo.Context) error {
	stats, err := h.runStatsRepo.GetRecent(c.Request().Context(), limitParam(c, 20))
	if err != nil {
		h.logger.Error("Failed to get run stats", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get run stats"})
	}
	return c.JSON(http.StatusOK, stats)
}

// GetWeightHistory returns stored weight configurations, newest first.
func (h *AnalysisHandler) GetWeightHistory(c echo.Context) error {
	rows, err := h.weightRepo.GetHistory(c.Request().Context(), limitParam(c, 20))
	if err != nil {
		h.logger.Error("Failed to get weight history", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get weight history"})
	}
	return c.JSON(http.StatusOK, rows)
}

// GetWeeklyAnalyses returns recent optimizer windows.
func (h *AnalysisHandler) GetWeeklyAnalyses(c echo.Context) error {
	rows, err := h.weeklyRepo.GetRecent(c.Request().Context(), limitParam(c, 12))
	if err != nil {
		h.logger.Error("Failed to get weekly analyses", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get weekly analyses"})
	}
	return c.JSON(http.StatusOK, rows)
}

func limitParam(c echo.Context, fallback int) int {
	raw := c.QueryParam("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
