package repository

import (
	"context"
	"errors"
	"time"

	"golang-stock-screener/internal/entity"

	"gorm.io/gorm"
)

type WeeklyAnalysisRepository interface {
	Create(ctx context.Context, analysis *entity.WeeklyAnalysis) error
	// GetByWindow returns the analysis stored for the window, or nil when
	// the window has not been analyzed yet.
	GetByWindow(ctx context.Context, weekStart, weekEnd time.Time) (*entity.WeeklyAnalysis, error)
	GetRecent(ctx context.Context, limit int) ([]entity.WeeklyAnalysis, error)
}

type weeklyAnalysisRepository struct {
	db *gorm.DB
}

func NewWeeklyAnalysisRepository(db *gorm.DB) WeeklyAnalysisRepository {
	return &weeklyAnalysisRepository{db: db}
}

func (w *weeklyAnalysisRepository) Create(ctx context.Context, analysis *entity.WeeklyAnalysis) error {
	return w.db.WithContext(ctx).Create(analysis).Error
}

func (w *weeklyAnalysisRepository) GetByWindow(ctx context.Context, weekStart, weekEnd time.Time) (*entity.WeeklyAnalysis, error) {
	var row entity.WeeklyAnalysis
	err := w.db.WithContext(ctx).
		Where("week_start = ? AND week_end = ?", weekStart, weekEnd).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (w *weeklyAnalysisRepository) GetRecent(ctx context.Context, limit int) ([]entity.WeeklyAnalysis, error) {
	var rows []entity.WeeklyAnalysis
	query := w.db.WithContext(ctx).Order("week_end desc, id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
