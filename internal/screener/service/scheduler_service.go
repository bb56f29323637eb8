package service

import (
	"context"
	"encoding/json"

	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/internal/screener/dto"
	"golang-stock-screener/pkg/common"
	"golang-stock-screener/pkg/logger"
	"golang-stock-screener/pkg/utils"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// SchedulerService drives the recurring screener jobs: scan requests go
// through the redis stream so the consumer serializes them, while tracking,
// reporting, and the weekly analysis run in-process.
type SchedulerService interface {
	Start(ctx context.Context) error
	Stop()
}

type schedulerService struct {
	cfg         *config.Config
	log         *logger.Logger
	redisClient *redis.Client
	tracking    TrackingService
	report      ReportService
	optimizer   OptimizerService
	cron        *cron.Cron
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	redisClient *redis.Client,
	tracking TrackingService,
	report ReportService,
	optimizer OptimizerService,
) SchedulerService {
	return &schedulerService{
		cfg:         cfg,
		log:         log,
		redisClient: redisClient,
		tracking:    tracking,
		report:      report,
		optimizer:   optimizer,
		cron:        cron.New(),
	}
}

func (s *schedulerService) Start(ctx context.Context) error {
	schedules := s.cfg.Scheduler

	jobs := []struct {
		spec string
		name string
		run  func()
	}{
		{schedules.PriorityScanCron, "priority scan", func() {
			s.publishScanRequest(ctx, common.ScanTypePriority)
		}},
		{schedules.ExtendedScanCron, "extended scan", func() {
			s.publishScanRequest(ctx, common.ScanTypeExtended)
		}},
		{schedules.TrackingCron, "outcome tracking", func() {
			if _, err := s.tracking.UpdateOutcomes(ctx); err != nil {
				s.log.ErrorContext(ctx, "outcome tracking failed", logger.ErrorField(err))
			}
		}},
		{schedules.DailyReportCron, "daily report", func() {
			if _, err := s.report.SendDailyReport(ctx, utils.TimeNowET()); err != nil {
				s.log.ErrorContext(ctx, "daily report failed", logger.ErrorField(err))
			}
		}},
		{schedules.WeeklyCron, "weekly analysis", func() {
			if _, err := s.optimizer.RunWeeklyAnalysis(ctx, utils.TruncateToDate(utils.TimeNowET())); err != nil {
				s.log.ErrorContext(ctx, "weekly analysis failed", logger.ErrorField(err))
			}
		}},
	}

	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		name := job.name
		run := job.run
		if _, err := s.cron.AddFunc(job.spec, func() {
			s.log.Info("scheduled job starting", logger.StringField("job", name))
			run()
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.log.Info("scheduler started")
	return nil
}

func (s *schedulerService) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *schedulerService) publishScanRequest(ctx context.Context, scanType string) {
	payload, err := json.Marshal(dto.StreamDataScanRequest{ScanType: scanType, Notify: true})
	if err != nil {
		s.log.ErrorContext(ctx, "failed to marshal scan request", logger.ErrorField(err))
		return
	}
	if err := s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamScanRequest,
		Values: map[string]interface{}{"payload": payload},
		MaxLen: s.cfg.Redis.StreamMaxLen,
	}).Err(); err != nil {
		s.log.ErrorContext(ctx, "failed to enqueue scan request", logger.ErrorField(err))
		return
	}
	s.log.InfoContext(ctx, "scan request published", logger.StringField("scan_type", scanType))
}
