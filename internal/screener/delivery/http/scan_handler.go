package http

import (
	"encoding/json"
	"net/http"

	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/internal/screener/dto"
	"golang-stock-screener/pkg/common"
	"golang-stock-screener/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// ScanHandler accepts on-demand scan requests and enqueues them on the
// same stream the scheduler feeds, so manual and scheduled scans share the
// single-consumer serialization.
type ScanHandler struct {
	cfg         *config.Config
	redisClient *redis.Client
	logger      *logger.Logger
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(cfg *config.Config, redisClient *redis.Client, logger *logger.Logger) *ScanHandler {
	return &ScanHandler{cfg: cfg, redisClient: redisClient, logger: logger}
}

// RegisterRoutes registers the scan routes to the Echo group.
func (h *ScanHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.TriggerScan)
}

// TriggerScan enqueues a scan request.
func (h *ScanHandler) TriggerScan(c echo.Context) error {
	var req dto.StreamDataScanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}
	if req.ScanType != common.ScanTypePriority && req.ScanType != common.ScanTypeExtended {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scan_type must be priority or extended"})
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	if err := h.redisClient.XAdd(c.Request().Context(), &redis.XAddArgs{
		Stream: common.RedisStreamScanRequest,
		Values: map[string]interface{}{"payload": payload},
		MaxLen: h.cfg.Redis.StreamMaxLen,
	}).Err(); err != nil {
		h.logger.Error("Failed to enqueue scan request", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to enqueue scan request"})
	}

	return c.JSON(http.StatusAccepted, echo.Map{"status": "queued", "scan_type": req.ScanType})
}
