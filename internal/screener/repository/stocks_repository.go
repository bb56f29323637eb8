package repository

import (
	"context"

	"golang-stock-screener/internal/entity"

	"gorm.io/gorm"
)

type StocksRepository interface {
	GetStocks(ctx context.Context, limit int) ([]entity.Stock, error)
	GetPriorityStocks(ctx context.Context) ([]entity.Stock, error)
}

type stocksRepository struct {
	db *gorm.DB
}

func NewStocksRepository(db *gorm.DB) StocksRepository {
	return &stocksRepository{db: db}
}

func (s *stocksRepository) GetStocks(ctx context.Context, limit int) ([]entity.Stock, error) {
	var stocks []entity.Stock
	query := s.db.WithContext(ctx).Order("symbol asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

func (s *stocksRepository) GetPriorityStocks(ctx context.Context) ([]entity.Stock, error) {
	var stocks []entity.Stock
	if err := s.db.WithContext(ctx).Where("priority = ?", true).Order("symbol asc").Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}
