package telegram

import (
	"testing"
	"time"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/dto"
	"golang-stock-screener/internal/screener/scorer"

	"github.com/stretchr/testify/assert"
)

func TestFormatScanSummaryGroupsByGrade(t *testing.T) {
	signals := []scorer.Signal{
		{Symbol: "AAA", Price: 50, ChangePercent: 2.5, Score: 85, QualityGrade: scorer.GradeA, Tags: []string{scorer.TagMAGoldenCross}},
		{Symbol: "BBB", Price: 20, ChangePercent: 1.0, Score: 55, QualityGrade: scorer.GradeB, Tags: []string{scorer.TagBreakout20d}},
	}
	stats := &entity.RunStats{TotalStocks: 100, FailedStocks: 3, RuntimeSeconds: 42}

	msg := FormatScanSummary("priority", signals, stats)
	assert.Contains(t, msg, "Priority scan completed")
	assert.Contains(t, msg, "Grade A")
	assert.Contains(t, msg, "Grade B")
	assert.Contains(t, msg, "AAA")
	assert.Contains(t, msg, scorer.TagMAGoldenCross)
	assert.NotContains(t, msg, "Grade C")
}

func TestFormatScanSummaryNoSignals(t *testing.T) {
	stats := &entity.RunStats{TotalStocks: 100, RuntimeSeconds: 10}
	msg := FormatScanSummary("extended", nil, stats)
	assert.Contains(t, msg, "No signals found")
}

func TestFormatWeeklyReport(t *testing.T) {
	analysis := &entity.WeeklyAnalysis{
		WeekStart:         time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		WeekEnd:           time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		TotalSignals:      25,
		SuccessfulSignals: 19,
		AccuracyRate:      76,
		AvgReturn:         2.56,
	}
	typeStats := []dto.SignalTypeStats{
		{SignalType: "ma_golden_cross", Samples: 25, Accuracy: 76, AvgReturn: 2.56},
	}
	adjustments := []dto.WeightAdjustment{
		{SignalType: "rsi_reversal", OldWeight: 20, NewWeight: 15, Reason: "0.0% accuracy over 6 samples"},
	}

	msg := FormatWeeklyReport(analysis, typeStats, adjustments)
	assert.Contains(t, msg, "Weekly analysis")
	assert.Contains(t, msg, "Accuracy: 76.0%")
	assert.Contains(t, msg, "ma_golden_cross")
	assert.Contains(t, msg, "rsi_reversal: 20 → 15")
}

func TestFormatWeeklyReportNoAdjustments(t *testing.T) {
	analysis := &entity.WeeklyAnalysis{
		WeekStart: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		WeekEnd:   time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
	}
	msg := FormatWeeklyReport(analysis, nil, nil)
	assert.Contains(t, msg, "No weight adjustments")
}
