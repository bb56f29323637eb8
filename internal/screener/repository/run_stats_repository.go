package repository

import (
	"context"

	"golang-stock-screener/internal/entity"

	"gorm.io/gorm"
)

type RunStatsRepository interface {
	// Create inserts the run record and prunes history beyond the
	// retention count.
	Create(ctx context.Context, stats *entity.RunStats, retention int) error
	GetRecent(ctx context.Context, limit int) ([]entity.RunStats, error)
}

type runStatsRepository struct {
	db *gorm.DB
}

func NewRunStatsRepository(db *gorm.DB) RunStatsRepository {
	return &runStatsRepository{db: db}
}

func (r *runStatsRepository) Create(ctx context.Context, stats *entity.RunStats, retention int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(stats).Error; err != nil {
			return err
		}
		if retention <= 0 {
			return nil
		}
		return tx.Exec(`DELETE FROM run_stats WHERE id NOT IN (SELECT id FROM run_stats ORDER BY started_at DESC, id DESC LIMIT ?)`, retention).Error
	})
}

func (r *runStatsRepository) GetRecent(ctx context.Context, limit int) ([]entity.RunStats, error) {
	var stats []entity.RunStats
	query := r.db.WithContext(ctx).Order("started_at desc, id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
