package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/internal/screener/dto"
	"golang-stock-screener/internal/screener/repository"
	"golang-stock-screener/pkg/logger"
	"golang-stock-screener/pkg/utils"
)

// Trading-session offsets tracked after a signal fires.
var trackedDays = []int{1, 3, 5, 7}

// TrackingService fills in post-signal outcome data for open tracking
// records.
type TrackingService interface {
	UpdateOutcomes(ctx context.Context) (updated int, err error)
}

type trackingService struct {
	cfg          *config.Config
	log          *logger.Logger
	trackingRepo repository.TrackingRepository
	marketData   repository.MarketDataRepository
}

func NewTrackingService(
	cfg *config.Config,
	log *logger.Logger,
	trackingRepo repository.TrackingRepository,
	marketData repository.MarketDataRepository,
) TrackingService {
	return &trackingService{
		cfg:          cfg,
		log:          log,
		trackingRepo: trackingRepo,
		marketData:   marketData,
	}
}

func (t *trackingService) UpdateOutcomes(ctx context.Context) (int, error) {
	lookback := time.Duration(t.cfg.Tracker.LookbackDays) * 24 * time.Hour
	records, err := t.trackingRepo.GetPending(ctx, lookback, t.cfg.Tracker.RefreshStaleness)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending tracking records: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	t.log.InfoContext(ctx, "updating signal outcomes", logger.IntField("pending", len(records)))

	updated := 0
	for _, record := range records {
		if err := t.updateRecord(ctx, &record); err != nil {
			if errors.Is(err, repository.ErrDataUnavailable) {
				t.log.DebugContext(ctx, "no outcome data yet",
					logger.StringField("symbol", record.Symbol))
				continue
			}
			t.log.ErrorContext(ctx, "failed to update tracking record",
				logger.StringField("symbol", record.Symbol),
				logger.ErrorField(err))
			continue
		}
		updated++
	}

	t.log.InfoContext(ctx, "signal outcomes updated", logger.IntField("updated", updated))
	return updated, nil
}

func (t *trackingService) updateRecord(ctx context.Context, record *entity.TrackingRecord) error {
	series, err := t.marketData.GetHistoricalBars(ctx, dto.GetBarsParam{
		Symbol:   record.Symbol,
		Range:    "3mo",
		Interval: "1d",
	})
	if err != nil {
		return err
	}

	signalDate := utils.TruncateToDate(record.SignalDate)
	idx := -1
	for i, bar := range series.Bars {
		if !utils.TruncateToDate(bar.Timestamp).Before(signalDate) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: no bars on or after signal date", repository.ErrDataUnavailable)
	}

	base := record.SignalPrice
	if base <= 0 {
		return fmt.Errorf("invalid signal price %f", base)
	}

	update := entity.TrackingRecord{ID: record.ID}
	for _, day := range trackedDays {
		barIdx := idx + day
		if barIdx >= len(series.Bars) {
			break
		}
		price := series.Bars[barIdx].Close
		change := (price - base) / base * 100
		switch day {
		case 1:
			update.Day1Price, update.Day1Change = &price, &change
		case 3:
			update.Day3Price, update.Day3Change = &price, &change
		case 5:
			update.Day5Price, update.Day5Change = &price, &change
		case 7:
			update.Day7Price, update.Day7Change = &price, &change
		}
	}

	// Max excursion over the tracked window, signal session included.
	end := idx + 7
	if end >= len(series.Bars) {
		end = len(series.Bars) - 1
	}
	if end > idx {
		maxGain := (series.Bars[idx].High - base) / base * 100
		maxLoss := (series.Bars[idx].Low - base) / base * 100
		for i := idx + 1; i <= end; i++ {
			gain := (series.Bars[i].High - base) / base * 100
			loss := (series.Bars[i].Low - base) / base * 100
			if gain > maxGain {
				maxGain = gain
			}
			if loss < maxLoss {
				maxLoss = loss
			}
		}
		update.MaxGain, update.MaxLoss = &maxGain, &maxLoss
	}

	if success, ok := t.evaluateSuccess(record, &update); ok {
		update.IsSuccessful = &success
	}

	return t.trackingRepo.Update(ctx, &update)
}

// evaluateSuccess applies the outcome policy: once the day-7 change is
// known it alone decides; max gain only stands in while day 7 is still
// pending. A record already marked successful is never downgraded.
func (t *trackingService) evaluateSuccess(record *entity.TrackingRecord, update *entity.TrackingRecord) (bool, bool) {
	if record.IsSuccessful != nil && *record.IsSuccessful {
		return false, false
	}

	day7 := update.Day7Change
	if day7 == nil {
		day7 = record.Day7Change
	}

	if day7 != nil {
		return *day7 >= t.cfg.Tracker.SuccessDay7Pct, true
	}

	maxGain := update.MaxGain
	if maxGain == nil {
		maxGain = record.MaxGain
	}
	if maxGain != nil && *maxGain >= t.cfg.Tracker.SuccessMaxGain {
		return true, true
	}
	return false, false
}
