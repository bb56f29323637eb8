package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/internal/screener/dto"
	"golang-stock-screener/internal/screener/repository"
	"golang-stock-screener/internal/screener/scorer"
	"golang-stock-screener/pkg/logger"
	"golang-stock-screener/pkg/telegram"

	"github.com/montanaflynn/stats"
)

// OptimizerService analyzes a closed week of signal outcomes and adjusts
// scoring weights within bounded steps.
type OptimizerService interface {
	// RunWeeklyAnalysis analyzes the week ending at weekEnd (exclusive).
	// Re-running for an already analyzed window is a no-op.
	RunWeeklyAnalysis(ctx context.Context, weekEnd time.Time) (*entity.WeeklyAnalysis, error)
}

type optimizerService struct {
	cfg          *config.Config
	log          *logger.Logger
	signalRepo   repository.SignalRepository
	trackingRepo repository.TrackingRepository
	weightRepo   repository.WeightConfigRepository
	weeklyRepo   repository.WeeklyAnalysisRepository
	notifier     telegram.Notifier
}

func NewOptimizerService(
	cfg *config.Config,
	log *logger.Logger,
	signalRepo repository.SignalRepository,
	trackingRepo repository.TrackingRepository,
	weightRepo repository.WeightConfigRepository,
	weeklyRepo repository.WeeklyAnalysisRepository,
	notifier telegram.Notifier,
) OptimizerService {
	return &optimizerService{
		cfg:          cfg,
		log:          log,
		signalRepo:   signalRepo,
		trackingRepo: trackingRepo,
		weightRepo:   weightRepo,
		weeklyRepo:   weeklyRepo,
		notifier:     notifier,
	}
}

// Lower bound of the medium score band; highScoreThreshold bounds the
// high band.
const mediumScoreThreshold = 40

// The high band must beat the low band by this margin to count the
// scoring as discriminating.
const bandSpreadPct = 10.0

// A high band converting below this rate suggests the score threshold
// needs review.
const highBandReviewPct = 50.0

// Risk/reward is flagged when the average max loss is deeper than
// riskRewardLossPct while the average 7-day return stays under
// riskRewardReturnPct.
const (
	riskRewardLossPct   = -10.0
	riskRewardReturnPct = 3.0
)

// outcome pairs a signal with its resolved tracking record.
type outcome struct {
	signal   entity.Signal
	tracking *entity.TrackingRecord
}

func (o outcome) resolved() bool {
	return o.tracking != nil && o.tracking.IsSuccessful != nil
}

func (o outcome) successful() bool {
	return o.resolved() && *o.tracking.IsSuccessful
}

func (o outcome) day7Return() (float64, bool) {
	if o.tracking == nil || o.tracking.Day7Change == nil {
		return 0, false
	}
	return *o.tracking.Day7Change, true
}

func (s *optimizerService) RunWeeklyAnalysis(ctx context.Context, weekEnd time.Time) (*entity.WeeklyAnalysis, error) {
	weekEnd = time.Date(weekEnd.Year(), weekEnd.Month(), weekEnd.Day(), 0, 0, 0, 0, weekEnd.Location())
	weekStart := weekEnd.AddDate(0, 0, -7)

	existing, err := s.weeklyRepo.GetByWindow(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to check analysis window: %w", err)
	}
	if existing != nil {
		s.log.InfoContext(ctx, "window already analyzed, skipping",
			logger.StringField("week_start", weekStart.Format("2006-01-02")),
			logger.StringField("week_end", weekEnd.Format("2006-01-02")))
		return existing, nil
	}

	weekOutcomes, err := s.loadOutcomes(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	// Overall accuracy and the overfitting checks read a wider tracking
	// window than the analyzed week itself.
	statsStart := weekEnd.AddDate(0, 0, -s.cfg.Optimizer.StatsWindowDays)
	statsOutcomes, err := s.loadOutcomes(ctx, statsStart, weekEnd)
	if err != nil {
		return nil, err
	}

	analysis := &entity.WeeklyAnalysis{
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
	}

	resolved := make([]outcome, 0, len(statsOutcomes))
	var returns []float64
	for _, o := range statsOutcomes {
		analysis.TotalSignals++
		if o.successful() {
			analysis.SuccessfulSignals++
		}
		if o.resolved() {
			resolved = append(resolved, o)
		}
		if r, ok := o.day7Return(); ok {
			returns = append(returns, r)
		}
	}
	if len(resolved) > 0 {
		analysis.AccuracyRate = float64(analysis.SuccessfulSignals) / float64(len(resolved)) * 100
	}
	if len(returns) > 0 {
		if mean, err := stats.Mean(returns); err == nil {
			analysis.AvgReturn = mean
		}
	}

	s.setPerformers(analysis, weekOutcomes)

	weekResolved := make([]outcome, 0, len(weekOutcomes))
	for _, o := range weekOutcomes {
		if o.resolved() {
			weekResolved = append(weekResolved, o)
		}
	}

	typeStats := s.perTypeStats(weekResolved)
	bandStats := scoreBandStats(resolved)
	notes := s.overfittingNotes(analysis.AccuracyRate, len(resolved), typeStats, bandStats)
	notes = append(notes, s.riskRewardNotes(resolved)...)

	var adjustments []dto.WeightAdjustment
	if len(resolved) < s.cfg.Optimizer.MinSignals {
		notes = append(notes, fmt.Sprintf("only %d resolved signals, below the %d needed for weight adjustment",
			len(resolved), s.cfg.Optimizer.MinSignals))
	} else {
		adjustments, err = s.adjustWeights(ctx, analysis.AccuracyRate, typeStats)
		if err != nil {
			return nil, err
		}
	}

	analysis.AnalysisNotes = joinNotes(notes)
	if analysis.ModelAdjustments, err = json.Marshal(adjustments); err != nil {
		return nil, fmt.Errorf("failed to encode adjustments: %w", err)
	}

	if err := s.weeklyRepo.Create(ctx, analysis); err != nil {
		return nil, fmt.Errorf("failed to persist weekly analysis: %w", err)
	}

	s.log.InfoContext(ctx, "weekly analysis completed",
		logger.IntField("total_signals", analysis.TotalSignals),
		logger.IntField("resolved", len(resolved)),
		logger.Float64Field("accuracy_rate", analysis.AccuracyRate),
		logger.IntField("adjustments", len(adjustments)))

	if s.notifier != nil {
		if err := s.notifier.SendMessage(telegram.FormatWeeklyReport(analysis, typeStats, adjustments)); err != nil {
			s.log.ErrorContext(ctx, "failed to send weekly report", logger.ErrorField(err))
		}
	}

	return analysis, nil
}

func (s *optimizerService) loadOutcomes(ctx context.Context, weekStart, weekEnd time.Time) ([]outcome, error) {
	signals, err := s.signalRepo.GetByDateRange(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load window signals: %w", err)
	}

	ids := make([]int64, len(signals))
	for i, sig := range signals {
		ids[i] = sig.ID
	}
	records, err := s.trackingRepo.GetBySignalIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracking records: %w", err)
	}
	bySignal := make(map[int64]*entity.TrackingRecord, len(records))
	for i := range records {
		bySignal[records[i].SignalID] = &records[i]
	}

	outcomes := make([]outcome, len(signals))
	for i, sig := range signals {
		outcomes[i] = outcome{signal: sig, tracking: bySignal[sig.ID]}
	}
	return outcomes, nil
}

func (s *optimizerService) setPerformers(analysis *entity.WeeklyAnalysis, outcomes []outcome) {
	var best, worst *outcome
	var bestReturn, worstReturn float64
	for i := range outcomes {
		r, ok := outcomes[i].day7Return()
		if !ok {
			continue
		}
		if best == nil || r > bestReturn {
			best, bestReturn = &outcomes[i], r
		}
		if worst == nil || r < worstReturn {
			worst, worstReturn = &outcomes[i], r
		}
	}
	if best != nil {
		analysis.BestPerformer, _ = json.Marshal(dto.PerformerRef{
			Symbol: best.signal.Symbol, Score: best.signal.Score, Return: bestReturn,
		})
	}
	if worst != nil {
		analysis.WorstPerformer, _ = json.Marshal(dto.PerformerRef{
			Symbol: worst.signal.Symbol, Score: worst.signal.Score, Return: worstReturn,
		})
	}
}

// perTypeStats buckets resolved outcomes by the scoring rule behind each
// stored tag. A signal carrying three tags contributes one sample to each
// of the three rules.
func (s *optimizerService) perTypeStats(resolved []outcome) []dto.SignalTypeStats {
	type agg struct {
		samples   int
		successes int
		returns   []float64
	}
	byType := map[string]*agg{}

	for _, o := range resolved {
		var tags []string
		if err := json.Unmarshal(o.signal.Signals, &tags); err != nil {
			s.log.Error("failed to decode stored tags",
				logger.ErrorField(err),
				logger.StringField("symbol", o.signal.Symbol))
			continue
		}
		seen := map[string]bool{}
		for _, tag := range tags {
			signalType, ok := scorer.SignalTypeForTag(tag)
			if !ok || seen[signalType] {
				continue
			}
			seen[signalType] = true
			a := byType[signalType]
			if a == nil {
				a = &agg{}
				byType[signalType] = a
			}
			a.samples++
			if o.successful() {
				a.successes++
			}
			if r, ok := o.day7Return(); ok {
				a.returns = append(a.returns, r)
			}
		}
	}

	out := make([]dto.SignalTypeStats, 0, len(byType))
	for signalType, a := range byType {
		st := dto.SignalTypeStats{
			SignalType: signalType,
			Samples:    a.samples,
			Successes:  a.successes,
			Accuracy:   float64(a.successes) / float64(a.samples) * 100,
		}
		if len(a.returns) > 0 {
			if mean, err := stats.Mean(a.returns); err == nil {
				st.AvgReturn = mean
			}
		}
		if len(a.returns) > 1 {
			if sd, err := stats.StandardDeviation(a.returns); err == nil {
				st.StdDevReturn = sd
			}
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SignalType < out[j].SignalType })
	return out
}

// scoreBandStats buckets resolved outcomes into high/medium/low score
// bands so the high band's accuracy can be checked against the rest.
func scoreBandStats(resolved []outcome) map[string]dto.ScoreBandStats {
	type agg struct {
		samples   int
		successes int
	}
	byBand := map[string]*agg{}
	for _, o := range resolved {
		band := "low"
		switch {
		case o.signal.Score >= highScoreThreshold:
			band = "high"
		case o.signal.Score >= mediumScoreThreshold:
			band = "medium"
		}
		a := byBand[band]
		if a == nil {
			a = &agg{}
			byBand[band] = a
		}
		a.samples++
		if o.successful() {
			a.successes++
		}
	}

	out := make(map[string]dto.ScoreBandStats, len(byBand))
	for band, a := range byBand {
		out[band] = dto.ScoreBandStats{
			Band:     band,
			Samples:  a.samples,
			Accuracy: float64(a.successes) / float64(a.samples) * 100,
		}
	}
	return out
}

// overfittingNotes flags suspicious windows: very high accuracy on a thin
// sample is treated as likely overfit rather than genuine edge.
func (s *optimizerService) overfittingNotes(accuracy float64, resolved int, typeStats []dto.SignalTypeStats, bands map[string]dto.ScoreBandStats) []string {
	var notes []string
	if resolved > 0 {
		switch {
		case accuracy > s.cfg.Optimizer.HighAccuracyPct:
			notes = append(notes, fmt.Sprintf("accuracy %.1f%% is implausibly high, suspected sample bias", accuracy))
		case accuracy < s.cfg.Optimizer.LowAccuracyPct:
			notes = append(notes, fmt.Sprintf("overall accuracy %.1f%% is below the %.0f%% floor, recalibration needed", accuracy, s.cfg.Optimizer.LowAccuracyPct))
		}
	}
	if resolved > 0 && resolved < s.cfg.Optimizer.OverfitSampleSize {
		notes = append(notes, fmt.Sprintf("only %d resolved signals, below the %d needed for a reliable read", resolved, s.cfg.Optimizer.OverfitSampleSize))
	}
	for _, st := range typeStats {
		if st.Samples < s.cfg.Optimizer.MinTypeSamples {
			continue
		}
		if st.Accuracy > s.cfg.Optimizer.HighAccuracyPct && st.Samples < s.cfg.Optimizer.OverfitSampleSize {
			notes = append(notes, fmt.Sprintf("%s: %.1f%% accuracy on %d samples, treat with caution", st.SignalType, st.Accuracy, st.Samples))
		}
	}

	high, hasHigh := bands["high"]
	low, hasLow := bands["low"]
	if hasHigh && hasLow && high.Accuracy > 0 && low.Accuracy > 0 && high.Accuracy < low.Accuracy+bandSpreadPct {
		notes = append(notes, fmt.Sprintf("high band accuracy %.1f%% is not meaningfully above low band %.1f%%, scoring is not discriminating", high.Accuracy, low.Accuracy))
	}
	if hasHigh && high.Samples >= s.cfg.Optimizer.MinTypeSamples && high.Accuracy < highBandReviewPct {
		notes = append(notes, fmt.Sprintf("high score band accuracy %.1f%% is below %.0f%%, review the high score threshold", high.Accuracy, highBandReviewPct))
	}
	return notes
}

// riskRewardNotes flags windows with a deep average drawdown and little
// average 7-day return to show for it.
func (s *optimizerService) riskRewardNotes(resolved []outcome) []string {
	var returns, losses []float64
	for _, o := range resolved {
		if r, ok := o.day7Return(); ok {
			returns = append(returns, r)
		}
		if o.tracking.MaxLoss != nil {
			losses = append(losses, *o.tracking.MaxLoss)
		}
	}
	if len(returns) == 0 || len(losses) == 0 {
		return nil
	}
	avgReturn, err := stats.Mean(returns)
	if err != nil {
		return nil
	}
	avgLoss, err := stats.Mean(losses)
	if err != nil {
		return nil
	}
	if avgLoss < riskRewardLossPct && avgReturn < riskRewardReturnPct {
		return []string{fmt.Sprintf("poor risk/reward: avg return %.1f%% against avg max loss %.1f%%", avgReturn, avgLoss)}
	}
	return nil
}

// adjustWeights nudges rule weights toward performance: one bounded step
// per rule per window, clamped to the configured weight band.
func (s *optimizerService) adjustWeights(ctx context.Context, accuracy float64, typeStats []dto.SignalTypeStats) ([]dto.WeightAdjustment, error) {
	current, err := s.weightRepo.GetLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load current weight config: %w", err)
	}

	next := current.Clone()
	var adjustments []dto.WeightAdjustment

	for _, st := range typeStats {
		if st.Samples < s.cfg.Optimizer.MinTypeSamples {
			continue
		}
		oldWeight, ok := next.Weights[st.SignalType]
		if !ok {
			continue
		}

		delta := 0
		reason := ""
		switch {
		case st.Accuracy > s.cfg.Optimizer.IncreaseAccuracyPct && st.AvgReturn > s.cfg.Optimizer.IncreaseReturnPct:
			delta = s.cfg.Optimizer.MaxAdjustment
			reason = fmt.Sprintf("%.1f%% accuracy, %+.1f%% avg return over %d samples", st.Accuracy, st.AvgReturn, st.Samples)
		case st.Accuracy < s.cfg.Optimizer.LowAccuracyPct:
			delta = -s.cfg.Optimizer.MaxAdjustment
			reason = fmt.Sprintf("%.1f%% accuracy over %d samples", st.Accuracy, st.Samples)
		default:
			continue
		}

		newWeight := clamp(oldWeight+delta, s.cfg.Optimizer.MinWeight, s.cfg.Optimizer.MaxWeight)
		if newWeight == oldWeight {
			continue
		}
		next.Weights[st.SignalType] = newWeight
		adjustments = append(adjustments, dto.WeightAdjustment{
			SignalType: st.SignalType,
			OldWeight:  oldWeight,
			NewWeight:  newWeight,
			Accuracy:   st.Accuracy,
			Samples:    st.Samples,
			Reason:     reason,
		})
	}

	if len(adjustments) == 0 {
		return nil, nil
	}
	if !s.cfg.Optimizer.AutoApply {
		s.log.InfoContext(ctx, "weight adjustments suggested but auto-apply is off",
			logger.IntField("suggestions", len(adjustments)))
		return adjustments, nil
	}

	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("adjusted weight config invalid: %w", err)
	}
	notes := fmt.Sprintf("weekly optimizer: %d weight(s) adjusted", len(adjustments))
	if err := s.weightRepo.Save(ctx, next, &accuracy, notes); err != nil {
		return nil, fmt.Errorf("failed to save adjusted weight config: %w", err)
	}
	s.log.InfoContext(ctx, "weight config updated",
		logger.IntField("adjustments", len(adjustments)),
		logger.Float64Field("window_accuracy", accuracy))
	return adjustments, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func joinNotes(notes []string) string {
	out := ""
	for i, n := range notes {
		if i > 0 {
			out += "; "
		}
		out += n
	}
	return out
}
