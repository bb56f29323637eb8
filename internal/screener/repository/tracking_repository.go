package repository

import (
	"context"
	"time"

	"golang-stock-screener/internal/entity"

	"gorm.io/gorm"
)

type TrackingRepository interface {
	// GetPending returns records inside the lookback window that still
	// miss day-7 data or have not been refreshed within the staleness
	// horizon.
	GetPending(ctx context.Context, lookback time.Duration, staleness time.Duration) ([]entity.TrackingRecord, error)
	GetBySignalIDs(ctx context.Context, signalIDs []int64) ([]entity.TrackingRecord, error)
	// Update writes only the fields set on the record; nil pointers leave
	// previously stored values untouched.
	Update(ctx context.Context, record *entity.TrackingRecord) error
}

type trackingRepository struct {
	db *gorm.DB
}

func NewTrackingRepository(db *gorm.DB) TrackingRepository {
	return &trackingRepository{db: db}
}

func (t *trackingRepository) GetPending(ctx context.Context, lookback time.Duration, staleness time.Duration) ([]entity.TrackingRecord, error) {
	var records []entity.TrackingRecord
	cutoff := time.Now().Add(-lookback)
	staleBefore := time.Now().Add(-staleness)
	err := t.db.WithContext(ctx).
		Where("signal_date >= ?", cutoff).
		Where("day7_price IS NULL OR updated_at IS NULL OR updated_at < ?", staleBefore).
		Order("signal_date asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (t *trackingRepository) GetBySignalIDs(ctx context.Context, signalIDs []int64) ([]entity.TrackingRecord, error) {
	if len(signalIDs) == 0 {
		return nil, nil
	}
	var records []entity.TrackingRecord
	err := t.db.WithContext(ctx).
		Where("signal_id IN ?", signalIDs).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (t *trackingRepository) Update(ctx context.Context, record *entity.TrackingRecord) error {
	updates := map[string]interface{}{}
	setFloat := func(col string, v *float64) {
		if v != nil {
			updates[col] = *v
		}
	}
	setFloat("day1_price", record.Day1Price)
	setFloat("day1_change", record.Day1Change)
	setFloat("day3_price", record.Day3Price)
	setFloat("day3_change", record.Day3Change)
	setFloat("day5_price", record.Day5Price)
	setFloat("day5_change", record.Day5Change)
	setFloat("day7_price", record.Day7Price)
	setFloat("day7_change", record.Day7Change)
	setFloat("max_gain", record.MaxGain)
	setFloat("max_loss", record.MaxLoss)
	if record.IsSuccessful != nil {
		updates["is_successful"] = *record.IsSuccessful
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	return t.db.WithContext(ctx).
		Model(&entity.TrackingRecord{}).
		Where("id = ?", record.ID).
		Updates(updates).Error
}
