package service

import (
	"context"
	"encoding/json"
	"time"

	"golang-stock-screener/internal/screener/dto"
	"golang-stock-screener/pkg/common"
	"golang-stock-screener/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ScanConsumerService drains scan requests off the redis stream and hands
// them to the screening service one at a time.
type ScanConsumerService interface {
	ProcessScanRequest(ctx context.Context)
}

type scanConsumerService struct {
	redisClient *redis.Client
	screening   ScreeningService
	log         *logger.Logger
}

func NewScanConsumerService(redisClient *redis.Client, screening ScreeningService, log *logger.Logger) ScanConsumerService {
	return &scanConsumerService{
		redisClient: redisClient,
		screening:   screening,
		log:         log,
	}
}

// ProcessScanRequest dequeues and runs a single scan request.
func (s *scanConsumerService) ProcessScanRequest(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamScanRequest, ">"},
		Count:    1,
		Block:    2 * time.Second,
		NoAck:    true,
	}).Result()

	if err != nil {
		if err == context.Canceled || err == context.DeadlineExceeded || err == redis.Nil {
			return
		}
		s.log.Error("failed to read from scan stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]
	payload, ok := message.Values["payload"].(string)
	if !ok {
		s.log.Error("field 'payload' not found or not a string in stream message",
			logger.StringField("message_id", message.ID))
		return
	}

	var req dto.StreamDataScanRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		s.log.Error("failed to unmarshal scan request",
			logger.ErrorField(err),
			logger.StringField("message_id", message.ID))
		return
	}

	s.log.InfoContext(ctx, "processing scan request",
		logger.StringField("scan_type", req.ScanType),
		logger.StringField("message_id", message.ID))

	if _, err := s.screening.RunScan(ctx, req); err != nil {
		s.log.ErrorContext(ctx, "scan request failed",
			logger.StringField("scan_type", req.ScanType),
			logger.ErrorField(err))
	}
}
