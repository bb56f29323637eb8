package repository

import (
	"context"
	"errors"
	"time"

	"golang-stock-screener/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DailySummaryRepository interface {
	Upsert(ctx context.Context, summary *entity.DailySummary) error
	GetByDate(ctx context.Context, date time.Time) (*entity.DailySummary, error)
}

type dailySummaryRepository struct {
	db *gorm.DB
}

func NewDailySummaryRepository(db *gorm.DB) DailySummaryRepository {
	return &dailySummaryRepository{db: db}
}

func (d *dailySummaryRepository) Upsert(ctx context.Context, summary *entity.DailySummary) error {
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "summary_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_signals", "unique_stocks", "top_stocks",
			"avg_score", "high_score_count", "notification_sent",
		}),
	}).Create(summary).Error
}

func (d *dailySummaryRepository) GetByDate(ctx context.Context, date time.Time) (*entity.DailySummary, error) {
	var row entity.DailySummary
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	err := d.db.WithContext(ctx).
		Where("summary_date >= ? AND summary_date < ?", start, start.AddDate(0, 0, 1)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
