package consumer

import (
	"context"
	"sync"
	"time"

	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/internal/screener/service"
	"golang-stock-screener/pkg/common"
	"golang-stock-screener/pkg/logger"
	"golang-stock-screener/pkg/utils"
)

// RedisConsumer manages the consumption of scan requests from the redis
// stream.
type RedisConsumer struct {
	cfg         *config.Config
	scanService service.ScanConsumerService
	logger      *logger.Logger
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(cfg *config.Config, scanService service.ScanConsumerService, log *logger.Logger) *RedisConsumer {
	return &RedisConsumer{
		cfg:         cfg,
		scanService: scanService,
		logger:      log,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the consumer's processing loop.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started")
	c.registerStreamHandler(ctx, c.scanService.ProcessScanRequest, common.RedisStreamScanRequest, c.cfg.Screener.RedisStreamTimeout)
}

func (c *RedisConsumer) registerStreamHandler(ctx context.Context, fn func(ctx context.Context), streamName string, timeout time.Duration) {
	c.logger.Info("Registering stream handler", logger.StringField("stream", streamName))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping")
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}
		}
	})
}

// Stop gracefully shuts down the consumer.
func (c *RedisConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
