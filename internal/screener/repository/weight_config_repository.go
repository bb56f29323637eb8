package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/scorer"

	"gorm.io/gorm"
)

type WeightConfigRepository interface {
	// GetLatest returns the most recent stored configuration, or the
	// built-in default when none has been stored yet.
	GetLatest(ctx context.Context) (scorer.WeightConfig, error)
	Save(ctx context.Context, cfg scorer.WeightConfig, accuracyRate *float64, notes string) error
	GetHistory(ctx context.Context, limit int) ([]entity.WeightConfigHistory, error)
}

type weightConfigRepository struct {
	db *gorm.DB
}

func NewWeightConfigRepository(db *gorm.DB) WeightConfigRepository {
	return &weightConfigRepository{db: db}
}

func (w *weightConfigRepository) GetLatest(ctx context.Context) (scorer.WeightConfig, error) {
	var row entity.WeightConfigHistory
	err := w.db.WithContext(ctx).Order("effective_date desc, id desc").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return scorer.DefaultWeightConfig(), nil
	}
	if err != nil {
		return scorer.WeightConfig{}, err
	}

	var cfg scorer.WeightConfig
	if err := json.Unmarshal(row.Params, &cfg); err != nil {
		return scorer.WeightConfig{}, fmt.Errorf("failed to decode stored weight config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return scorer.WeightConfig{}, fmt.Errorf("stored weight config invalid: %w", err)
	}
	return cfg, nil
}

func (w *weightConfigRepository) Save(ctx context.Context, cfg scorer.WeightConfig, accuracyRate *float64, notes string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid weight config: %w", err)
	}
	params, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode weight config: %w", err)
	}
	row := entity.WeightConfigHistory{
		EffectiveDate: time.Now(),
		Params:        params,
		AccuracyRate:  accuracyRate,
		Notes:         notes,
	}
	return w.db.WithContext(ctx).Create(&row).Error
}

func (w *weightConfigRepository) GetHistory(ctx context.Context, limit int) ([]entity.WeightConfigHistory, error) {
	var rows []entity.WeightConfigHistory
	query := w.db.WithContext(ctx).Order("effective_date desc, id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
