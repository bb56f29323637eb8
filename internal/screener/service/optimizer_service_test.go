package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/internal/screener/dto"
	"golang-stock-screener/internal/screener/scorer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSignalRepo struct {
	signals []entity.Signal
}

func (f *fakeSignalRepo) CreateBatch(ctx context.Context, signals []entity.Signal) error {
	f.signals = append(f.signals, signals...)
	return nil
}

func (f *fakeSignalRepo) GetByDate(ctx context.Context, date time.Time) ([]entity.Signal, error) {
	return f.signals, nil
}

func (f *fakeSignalRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]entity.Signal, error) {
	return f.signals, nil
}

type fakeWeightRepo struct {
	current scorer.WeightConfig
	saved   []scorer.WeightConfig
	notes   []string
}

func (f *fakeWeightRepo) GetLatest(ctx context.Context) (scorer.WeightConfig, error) {
	if len(f.saved) > 0 {
		return f.saved[len(f.saved)-1], nil
	}
	return f.current, nil
}

func (f *fakeWeightRepo) Save(ctx context.Context, cfg scorer.WeightConfig, accuracyRate *float64, notes string) error {
	f.saved = append(f.saved, cfg)
	f.notes = append(f.notes, notes)
	return nil
}

func (f *fakeWeightRepo) GetHistory(ctx context.Context, limit int) ([]entity.WeightConfigHistory, error) {
	return nil, nil
}

type fakeWeeklyRepo struct {
	rows []entity.WeeklyAnalysis
}

func (f *fakeWeeklyRepo) Create(ctx context.Context, analysis *entity.WeeklyAnalysis) error {
	f.rows = append(f.rows, *analysis)
	return nil
}

func (f *fakeWeeklyRepo) GetByWindow(ctx context.Context, weekStart, weekEnd time.Time) (*entity.WeeklyAnalysis, error) {
	for i := range f.rows {
		if f.rows[i].WeekStart.Equal(weekStart) && f.rows[i].WeekEnd.Equal(weekEnd) {
			return &f.rows[i], nil
		}
	}
	return nil, nil
}

func (f *fakeWeeklyRepo) GetRecent(ctx context.Context, limit int) ([]entity.WeeklyAnalysis, error) {
	return f.rows, nil
}

func optimizerConfig() *config.Config {
	return &config.Config{
		Optimizer: config.Optimizer{
			MinSignals:          10,
			MinTypeSamples:      5,
			MaxAdjustment:       5,
			MinWeight:           5,
			MaxWeight:           35,
			AutoApply:           true,
			LowAccuracyPct:      30.0,
			HighAccuracyPct:     80.0,
			IncreaseAccuracyPct: 70.0,
			IncreaseReturnPct:   5.0,
			OverfitSampleSize:   20,
			StatsWindowDays:     14,
		},
	}
}

// windowFixture builds a resolved week: 25 signals tagged with the MA
// golden cross at 76% accuracy, 6 of which also carry the RSI 50-cross tag
// and all of those fail.
func windowFixture(t *testing.T, weekEnd time.Time) (*fakeSignalRepo, *fakeTrackingRepo) {
	t.Helper()
	signalRepo := &fakeSignalRepo{}
	trackingRepo := &fakeTrackingRepo{}

	day := weekEnd.AddDate(0, 0, -3)
	for i := 0; i < 25; i++ {
		tags := []string{scorer.TagMAGoldenCross}
		success := i < 22
		ret := 4.0
		if i >= 19 {
			tags = append(tags, scorer.TagRSICrossing50)
			success = false
			ret = -2.0
		}
		raw, err := json.Marshal(tags)
		require.NoError(t, err)

		id := int64(i + 1)
		signalRepo.signals = append(signalRepo.signals, entity.Signal{
			ID: id, ScanTime: day, Symbol: "SYM", Score: 60, Signals: raw,
		})
		ok := success
		trackingRepo.pending = append(trackingRepo.pending, entity.TrackingRecord{
			SignalID: id, Symbol: "SYM", Day7Change: &ret, IsSuccessful: &ok,
		})
	}
	return signalRepo, trackingRepo
}

func TestRunWeeklyAnalysisAdjustsWeights(t *testing.T) {
	weekEnd := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	signalRepo, trackingRepo := windowFixture(t, weekEnd)
	weightRepo := &fakeWeightRepo{current: scorer.DefaultWeightConfig()}
	weeklyRepo := &fakeWeeklyRepo{}

	svc := NewOptimizerService(optimizerConfig(), testLogger(t), signalRepo, trackingRepo, weightRepo, weeklyRepo, nil)

	analysis, err := svc.RunWeeklyAnalysis(context.Background(), weekEnd)
	require.NoError(t, err)
	require.NotNil(t, analysis)

	assert.Equal(t, 25, analysis.TotalSignals)
	// 25 MA samples, 22 successes minus the 3 that also fail via RSI.
	assert.Equal(t, 19, analysis.SuccessfulSignals)

	require.Len(t, weightRepo.saved, 1)
	applied := weightRepo.saved[0]
	// 76% MA accuracy clears the increase cutoff but its 2.56% average
	// return does not: unchanged.
	assert.Equal(t, 30, applied.Weights[scorer.SignalMAGoldenCross])
	// 0% RSI accuracy over 6 samples: one bounded step down.
	assert.Equal(t, 15, applied.Weights[scorer.SignalRSIReversal])

	var adjustments []dto.WeightAdjustment
	require.NoError(t, json.Unmarshal(analysis.ModelAdjustments, &adjustments))
	require.Len(t, adjustments, 1)
	assert.Equal(t, scorer.SignalRSIReversal, adjustments[0].SignalType)
	assert.Equal(t, 20, adjustments[0].OldWeight)
	assert.Equal(t, 15, adjustments[0].NewWeight)
}

func TestRunWeeklyAnalysisIdempotent(t *testing.T) {
	weekEnd := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	signalRepo, trackingRepo := windowFixture(t, weekEnd)
	weightRepo := &fakeWeightRepo{current: scorer.DefaultWeightConfig()}
	weeklyRepo := &fakeWeeklyRepo{}

	svc := NewOptimizerService(optimizerConfig(), testLogger(t), signalRepo, trackingRepo, weightRepo, weeklyRepo, nil)

	_, err := svc.RunWeeklyAnalysis(context.Background(), weekEnd)
	require.NoError(t, err)
	_, err = svc.RunWeeklyAnalysis(context.Background(), weekEnd)
	require.NoError(t, err)

	// Second run hits the stored window and changes nothing.
	assert.Len(t, weeklyRepo.rows, 1)
	assert.Len(t, weightRepo.saved, 1)
}

func TestRunWeeklyAnalysisInsufficientSignals(t *testing.T) {
	weekEnd := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	signalRepo := &fakeSignalRepo{}
	trackingRepo := &fakeTrackingRepo{}

	ret := 4.0
	ok := true
	raw, err := json.Marshal([]string{scorer.TagMAGoldenCross})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		id := int64(i + 1)
		signalRepo.signals = append(signalRepo.signals, entity.Signal{ID: id, Signals: raw})
		trackingRepo.pending = append(trackingRepo.pending, entity.TrackingRecord{
			SignalID: id, Day7Change: &ret, IsSuccessful: &ok,
		})
	}

	weightRepo := &fakeWeightRepo{current: scorer.DefaultWeightConfig()}
	weeklyRepo := &fakeWeeklyRepo{}
	svc := NewOptimizerService(optimizerConfig(), testLogger(t), signalRepo, trackingRepo, weightRepo, weeklyRepo, nil)

	analysis, err := svc.RunWeeklyAnalysis(context.Background(), weekEnd)
	require.NoError(t, err)

	assert.Empty(t, weightRepo.saved)
	assert.Contains(t, analysis.AnalysisNotes, "below")
	// 3/3 successful reads as implausibly high accuracy.
	assert.Contains(t, analysis.AnalysisNotes, "sample bias")
	// And 3 resolved signals is far short of a reliable sample.
	assert.Contains(t, analysis.AnalysisNotes, "reliable")
}

func TestRunWeeklyAnalysisIncreasesWeight(t *testing.T) {
	weekEnd := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	signalRepo := &fakeSignalRepo{}
	trackingRepo := &fakeTrackingRepo{}
	raw, err := json.Marshal([]string{scorer.TagMAGoldenCross})
	require.NoError(t, err)
	for i := 0; i < 25; i++ {
		ok := i < 21
		ret := 7.0
		if !ok {
			ret = -1.0
		}
		id := int64(i + 1)
		signalRepo.signals = append(signalRepo.signals, entity.Signal{ID: id, Score: 75, Signals: raw})
		trackingRepo.pending = append(trackingRepo.pending, entity.TrackingRecord{
			SignalID: id, Day7Change: &ret, IsSuccessful: &ok,
		})
	}

	weightRepo := &fakeWeightRepo{current: scorer.DefaultWeightConfig()}
	weeklyRepo := &fakeWeeklyRepo{}
	svc := NewOptimizerService(optimizerConfig(), testLogger(t), signalRepo, trackingRepo, weightRepo, weeklyRepo, nil)

	analysis, err := svc.RunWeeklyAnalysis(context.Background(), weekEnd)
	require.NoError(t, err)

	require.Len(t, weightRepo.saved, 1)
	// 84% accuracy and a 5.72% average return over 25 samples: one step up.
	assert.Equal(t, 35, weightRepo.saved[0].Weights[scorer.SignalMAGoldenCross])

	// 84% overall accuracy is flagged even on a full sample.
	assert.Contains(t, analysis.AnalysisNotes, "sample bias")
}

func TestRunWeeklyAnalysisFlagsNonDiscriminatingBands(t *testing.T) {
	weekEnd := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	signalRepo := &fakeSignalRepo{}
	trackingRepo := &fakeTrackingRepo{}
	raw, err := json.Marshal([]string{scorer.TagMAGoldenCross})
	require.NoError(t, err)

	add := func(id int64, score int, success bool) {
		ret := 4.0
		if !success {
			ret = -1.0
		}
		ok := success
		signalRepo.signals = append(signalRepo.signals, entity.Signal{ID: id, Score: score, Signals: raw})
		trackingRepo.pending = append(trackingRepo.pending, entity.TrackingRecord{
			SignalID: id, Day7Change: &ret, IsSuccessful: &ok,
		})
	}
	// High band converts at 41.7%, low band at 50%.
	for i := 0; i < 12; i++ {
		add(int64(i+1), 75, i < 5)
	}
	for i := 0; i < 8; i++ {
		add(int64(i+13), 20, i < 4)
	}

	weightRepo := &fakeWeightRepo{current: scorer.DefaultWeightConfig()}
	weeklyRepo := &fakeWeeklyRepo{}
	svc := NewOptimizerService(optimizerConfig(), testLogger(t), signalRepo, trackingRepo, weightRepo, weeklyRepo, nil)

	analysis, err := svc.RunWeeklyAnalysis(context.Background(), weekEnd)
	require.NoError(t, err)

	assert.Contains(t, analysis.AnalysisNotes, "not discriminating")
	assert.Contains(t, analysis.AnalysisNotes, "review the high score threshold")
}

func TestRunWeeklyAnalysisIncreasesWeightOnSmallSample(t *testing.T) {
	weekEnd := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	signalRepo := &fakeSignalRepo{}
	trackingRepo := &fakeTrackingRepo{}
	raw, err := json.Marshal([]string{scorer.TagMAGoldenCross})
	require.NoError(t, err)
	for i := 0; i < 12; i++ {
		ok := i < 10
		ret := 8.0
		if !ok {
			ret = -1.0
		}
		id := int64(i + 1)
		signalRepo.signals = append(signalRepo.signals, entity.Signal{ID: id, Score: 65, Signals: raw})
		trackingRepo.pending = append(trackingRepo.pending, entity.TrackingRecord{
			SignalID: id, Day7Change: &ret, IsSuccessful: &ok,
		})
	}

	weightRepo := &fakeWeightRepo{current: scorer.DefaultWeightConfig()}
	weeklyRepo := &fakeWeeklyRepo{}
	svc := NewOptimizerService(optimizerConfig(), testLogger(t), signalRepo, trackingRepo, weightRepo, weeklyRepo, nil)

	_, err = svc.RunWeeklyAnalysis(context.Background(), weekEnd)
	require.NoError(t, err)

	// 83% accuracy and a 6.5% average return on 12 samples clears the
	// per-type minimum; no larger sample is required for an increase.
	require.Len(t, weightRepo.saved, 1)
	assert.Equal(t, 35, weightRepo.saved[0].Weights[scorer.SignalMAGoldenCross])
}

func TestRunWeeklyAnalysisWeightFloor(t *testing.T) {
	weekEnd := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	signalRepo := &fakeSignalRepo{}
	trackingRepo := &fakeTrackingRepo{}
	raw, err := json.Marshal([]string{scorer.TagRSICrossing50})
	require.NoError(t, err)
	bad := false
	ret := -3.0
	for i := 0; i < 12; i++ {
		id := int64(i + 1)
		signalRepo.signals = append(signalRepo.signals, entity.Signal{ID: id, Signals: raw})
		trackingRepo.pending = append(trackingRepo.pending, entity.TrackingRecord{
			SignalID: id, Day7Change: &ret, IsSuccessful: &bad,
		})
	}

	current := scorer.DefaultWeightConfig()
	current.Weights[scorer.SignalRSIReversal] = 7
	weightRepo := &fakeWeightRepo{current: current}
	weeklyRepo := &fakeWeeklyRepo{}
	svc := NewOptimizerService(optimizerConfig(), testLogger(t), signalRepo, trackingRepo, weightRepo, weeklyRepo, nil)

	_, err = svc.RunWeeklyAnalysis(context.Background(), weekEnd)
	require.NoError(t, err)

	require.Len(t, weightRepo.saved, 1)
	// 7 - 5 would cross the floor; the step clamps to it.
	assert.Equal(t, 5, weightRepo.saved[0].Weights[scorer.SignalRSIReversal])
}
