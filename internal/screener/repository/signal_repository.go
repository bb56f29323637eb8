package repository

import (
	"context"
	"time"

	"golang-stock-screener/internal/entity"

	"gorm.io/gorm"
)

type SignalRepository interface {
	// CreateBatch persists the signals and seeds one tracking record per
	// signal in a single transaction.
	CreateBatch(ctx context.Context, signals []entity.Signal) error
	GetByDate(ctx context.Context, date time.Time) ([]entity.Signal, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]entity.Signal, error)
}

type signalRepository struct {
	db *gorm.DB
}

func NewSignalRepository(db *gorm.DB) SignalRepository {
	return &signalRepository{db: db}
}

func (s *signalRepository) CreateBatch(ctx context.Context, signals []entity.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&signals).Error; err != nil {
			return err
		}
		records := make([]entity.TrackingRecord, 0, len(signals))
		for _, sig := range signals {
			records = append(records, entity.TrackingRecord{
				SignalID:    sig.ID,
				Symbol:      sig.Symbol,
				SignalDate:  sig.ScanTime,
				SignalPrice: sig.Price,
				SignalScore: sig.Score,
			})
		}
		return tx.Create(&records).Error
	})
}

func (s *signalRepository) GetByDate(ctx context.Context, date time.Time) ([]entity.Signal, error) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return s.GetByDateRange(ctx, start, start.AddDate(0, 0, 1))
}

func (s *signalRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]entity.Signal, error) {
	var signals []entity.Signal
	err := s.db.WithContext(ctx).
		Where("scan_time >= ? AND scan_time < ?", start, end).
		Order("score desc, symbol asc").
		Find(&signals).Error
	if err != nil {
		return nil, err
	}
	return signals, nil
}
