package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/internal/screener/dto"
	"golang-stock-screener/internal/screener/repository"
	"golang-stock-screener/internal/screener/scorer"
	"golang-stock-screener/pkg/common"
	"golang-stock-screener/pkg/logger"
	"golang-stock-screener/pkg/telegram"

	"github.com/redis/go-redis/v9"
)

// ScreeningService runs one full scan over a stock universe.
type ScreeningService interface {
	RunScan(ctx context.Context, req dto.StreamDataScanRequest) (*entity.RunStats, error)
}

type screeningService struct {
	cfg          *config.Config
	log          *logger.Logger
	redisClient  *redis.Client
	stocksRepo   repository.StocksRepository
	marketData   repository.MarketDataRepository
	signalRepo   repository.SignalRepository
	runStatsRepo repository.RunStatsRepository
	weightRepo   repository.WeightConfigRepository
	notifier     telegram.Notifier
}

func NewScreeningService(
	cfg *config.Config,
	log *logger.Logger,
	redisClient *redis.Client,
	stocksRepo repository.StocksRepository,
	marketData repository.MarketDataRepository,
	signalRepo repository.SignalRepository,
	runStatsRepo repository.RunStatsRepository,
	weightRepo repository.WeightConfigRepository,
	notifier telegram.Notifier,
) ScreeningService {
	return &screeningService{
		cfg:          cfg,
		log:          log,
		redisClient:  redisClient,
		stocksRepo:   stocksRepo,
		marketData:   marketData,
		signalRepo:   signalRepo,
		runStatsRepo: runStatsRepo,
		weightRepo:   weightRepo,
		notifier:     notifier,
	}
}

// scanProgress accumulates counters shared across scan workers.
type scanProgress struct {
	mu         sync.Mutex
	processed  int
	successful int
	failed     int
	signals    []scorer.Signal
}

func (p *scanProgress) record(sig *scorer.Signal, err error) (processed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed++
	if err != nil {
		p.failed++
	} else {
		p.successful++
		if sig != nil {
			p.signals = append(p.signals, *sig)
		}
	}
	return p.processed
}

func (s *screeningService) RunScan(ctx context.Context, req dto.StreamDataScanRequest) (*entity.RunStats, error) {
	scanType := req.ScanType
	if scanType != common.ScanTypeExtended {
		scanType = common.ScanTypePriority
	}

	lockKey := fmt.Sprintf(common.RedisKeyScanLock, scanType)
	locked, err := s.redisClient.SetNX(ctx, lockKey, time.Now().Format(time.RFC3339), s.cfg.Screener.ScanLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire scan lock: %w", err)
	}
	if !locked {
		s.log.WarnContext(ctx, "scan already in progress, skipping", logger.StringField("scan_type", scanType))
		return nil, nil
	}
	defer func() {
		if err := s.redisClient.Del(context.Background(), lockKey).Err(); err != nil {
			s.log.ErrorContext(ctx, "failed to release scan lock", logger.ErrorField(err))
		}
	}()

	stocks, workers, err := s.universe(ctx, scanType, req.Limit)
	if err != nil {
		return nil, err
	}

	weightCfg, err := s.weightRepo.GetLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load weight config: %w", err)
	}

	startedAt := time.Now()
	s.log.InfoContext(ctx, "starting scan",
		logger.StringField("scan_type", scanType),
		logger.IntField("total_stocks", len(stocks)),
		logger.IntField("workers", workers))

	progress := &scanProgress{}
	jobs := make(chan entity.Stock)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for stock := range jobs {
				sig, err := s.scanSymbol(ctx, stock, weightCfg)
				if err != nil {
					s.log.DebugContext(ctx, "symbol scan failed",
						logger.StringField("symbol", stock.Symbol),
						logger.ErrorField(err))
				}
				processed := progress.record(sig, err)
				if processed%100 == 0 {
					s.log.InfoContext(ctx, "scan progress",
						logger.StringField("scan_type", scanType),
						logger.IntField("processed", processed),
						logger.IntField("total", len(stocks)))
				}
			}
		}()
	}

feed:
	for _, stock := range stocks {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- stock:
		}
	}
	close(jobs)
	wg.Wait()

	runtime := time.Since(startedAt)
	signals := progress.signals
	sort.SliceStable(signals, func(i, j int) bool {
		if signals[i].Score != signals[j].Score {
			return signals[i].Score > signals[j].Score
		}
		return signals[i].Symbol < signals[j].Symbol
	})

	rows, highScore := s.toEntities(signals)
	if err := s.signalRepo.CreateBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to persist signals: %w", err)
	}

	stats := &entity.RunStats{
		ScanType:         scanType,
		TotalStocks:      len(stocks),
		ProcessedStocks:  progress.processed,
		SuccessfulStocks: progress.successful,
		FailedStocks:     progress.failed,
		SignalsFound:     len(signals),
		HighScoreCount:   highScore,
		StartedAt:        startedAt,
		CompletedAt:      startedAt.Add(runtime),
		RuntimeSeconds:   runtime.Seconds(),
	}
	if err := s.runStatsRepo.Create(ctx, stats, s.cfg.Screener.RunStatsRetention); err != nil {
		s.log.ErrorContext(ctx, "failed to persist run stats", logger.ErrorField(err))
	}

	s.log.InfoContext(ctx, "scan completed",
		logger.StringField("scan_type", scanType),
		logger.IntField("signals_found", len(signals)),
		logger.IntField("failed", progress.failed),
		logger.Float64Field("runtime_seconds", runtime.Seconds()))

	if runtime > s.cfg.Screener.RunWarnDuration {
		s.log.WarnContext(ctx, "scan exceeded expected runtime",
			logger.StringField("scan_type", scanType),
			logger.Float64Field("runtime_seconds", runtime.Seconds()))
		if req.Notify && s.notifier != nil {
			if err := s.notifier.SendMessage(telegram.FormatLongRunWarning(scanType, runtime, len(stocks))); err != nil {
				s.log.ErrorContext(ctx, "failed to send long-run warning", logger.ErrorField(err))
			}
		}
	}

	if req.Notify && s.notifier != nil {
		if err := s.notifier.SendMessage(telegram.FormatScanSummary(scanType, signals, stats)); err != nil {
			s.log.ErrorContext(ctx, "failed to send scan summary", logger.ErrorField(err))
		}
	}

	return stats, nil
}

// universe resolves the stock list and worker width for a scan type.
func (s *screeningService) universe(ctx context.Context, scanType string, limit int) ([]entity.Stock, int, error) {
	if scanType == common.ScanTypeExtended {
		if limit <= 0 || limit > s.cfg.Screener.ExtendedScanLimit {
			limit = s.cfg.Screener.ExtendedScanLimit
		}
		stocks, err := s.stocksRepo.GetStocks(ctx, limit)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to load stock universe: %w", err)
		}
		return stocks, s.cfg.Screener.ExtendedWorkers, nil
	}

	stocks, err := s.stocksRepo.GetPriorityStocks(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load priority stocks: %w", err)
	}
	return stocks, s.cfg.Screener.PriorityWorkers, nil
}

func (s *screeningService) scanSymbol(ctx context.Context, stock entity.Stock, cfg scorer.WeightConfig) (*scorer.Signal, error) {
	series, err := s.marketData.GetHistoricalBars(ctx, dto.GetBarsParam{
		Symbol:   stock.Symbol,
		Range:    "1y",
		Interval: "1d",
	})
	if err != nil {
		return nil, err
	}

	name := series.Name
	if name == "" {
		name = stock.Name
	}
	price := series.MarketPrice
	if price <= 0 && len(series.Bars) > 0 {
		price = series.Bars[len(series.Bars)-1].Close
	}

	return scorer.Score(scorer.Input{
		Symbol:    stock.Symbol,
		Name:      name,
		Closes:    series.Closes(),
		Highs:     series.Highs(),
		Lows:      series.Lows(),
		Volumes:   series.Volumes(),
		Price:     price,
		Timestamp: time.Now(),
	}, cfg), nil
}

func (s *screeningService) toEntities(signals []scorer.Signal) ([]entity.Signal, int) {
	rows := make([]entity.Signal, 0, len(signals))
	highScore := 0
	for _, sig := range signals {
		if sig.Score >= 70 {
			highScore++
		}
		tags, err := json.Marshal(sig.Tags)
		if err != nil {
			s.log.Error("failed to encode signal tags", logger.ErrorField(err), logger.StringField("symbol", sig.Symbol))
			continue
		}
		rows = append(rows, entity.Signal{
			ScanTime:      sig.Timestamp,
			Symbol:        sig.Symbol,
			Name:          sig.Name,
			Price:         sig.Price,
			ChangePercent: sig.ChangePercent,
			Volume:        sig.Volume,
			AvgVolume:     sig.AvgVolume,
			Signals:       tags,
			Score:         sig.Score,
			QualityGrade:  sig.QualityGrade,
			TrendStrength: sig.TrendStrength,
		})
	}
	return rows, highScore
}
