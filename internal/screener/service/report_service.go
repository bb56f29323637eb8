package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/internal/screener/repository"
	"golang-stock-screener/pkg/logger"
	"golang-stock-screener/pkg/telegram"
)

// Signals at or above this score count toward the high-score bucket.
const highScoreThreshold = 70

// How many symbols the daily summary lists.
const topStockCount = 5

// ReportService builds the end-of-day digest over all scans of one date.
type ReportService interface {
	SendDailyReport(ctx context.Context, date time.Time) (*entity.DailySummary, error)
}

type reportService struct {
	cfg         *config.Config
	log         *logger.Logger
	signalRepo  repository.SignalRepository
	summaryRepo repository.DailySummaryRepository
	notifier    telegram.Notifier
}

func NewReportService(
	cfg *config.Config,
	log *logger.Logger,
	signalRepo repository.SignalRepository,
	summaryRepo repository.DailySummaryRepository,
	notifier telegram.Notifier,
) ReportService {
	return &reportService{
		cfg:         cfg,
		log:         log,
		signalRepo:  signalRepo,
		summaryRepo: summaryRepo,
		notifier:    notifier,
	}
}

// topStock is one entry in the persisted top-stock list.
type topStock struct {
	Symbol string `json:"symbol"`
	Score  int    `json:"score"`
	Grade  string `json:"grade"`
}

func (r *reportService) SendDailyReport(ctx context.Context, date time.Time) (*entity.DailySummary, error) {
	signals, err := r.signalRepo.GetByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load signals for report: %w", err)
	}

	summary := &entity.DailySummary{
		SummaryDate:  time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
		TotalSignals: len(signals),
	}

	// Signals arrive ordered by score, so the first occurrence of each
	// symbol is also its best signal of the day.
	seen := map[string]bool{}
	var top []topStock
	totalScore := 0
	for _, sig := range signals {
		totalScore += sig.Score
		if sig.Score >= highScoreThreshold {
			summary.HighScoreCount++
		}
		if seen[sig.Symbol] {
			continue
		}
		seen[sig.Symbol] = true
		summary.UniqueStocks++
		if len(top) < topStockCount {
			top = append(top, topStock{Symbol: sig.Symbol, Score: sig.Score, Grade: sig.QualityGrade})
		}
	}
	if len(signals) > 0 {
		summary.AvgScore = float64(totalScore) / float64(len(signals))
	}
	if summary.TopStocks, err = json.Marshal(top); err != nil {
		return nil, fmt.Errorf("failed to encode top stocks: %w", err)
	}

	if r.notifier != nil {
		if err := r.notifier.SendMessage(telegram.FormatDailyReport(summary, signals)); err != nil {
			r.log.ErrorContext(ctx, "failed to send daily report", logger.ErrorField(err))
		} else {
			summary.NotificationSent = true
		}
	}

	if err := r.summaryRepo.Upsert(ctx, summary); err != nil {
		return nil, fmt.Errorf("failed to persist daily summary: %w", err)
	}

	r.log.InfoContext(ctx, "daily report generated",
		logger.StringField("date", summary.SummaryDate.Format("2006-01-02")),
		logger.IntField("total_signals", summary.TotalSignals),
		logger.IntField("unique_stocks", summary.UniqueStocks))

	return summary, nil
}
