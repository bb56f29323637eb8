package entity

import (
	"time"

	"gorm.io/gorm"
)

// Stock is one member of the screening universe. Priority stocks belong to
// the small index subset scanned hourly; the extended scan covers everything.
type Stock struct {
	ID        uint           `gorm:"primaryKey"`
	Symbol    string         `gorm:"not null;uniqueIndex"`
	Name      string         `gorm:"not null"`
	Priority  bool           `gorm:"not null;default:false"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Stock) TableName() string {
	return "stocks"
}
