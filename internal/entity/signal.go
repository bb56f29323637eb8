package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Signal is one emitted screening result for a symbol at a point in time.
// The Signals column carries the ordered tag list as a JSON array.
type Signal struct {
	ID            int64          `json:"id"`
	ScanTime      time.Time      `gorm:"not null;index" json:"scan_time"`
	Symbol        string         `gorm:"not null;index" json:"symbol"`
	Name          string         `json:"name"`
	Price         float64        `json:"price"`
	ChangePercent float64        `json:"change_percent"`
	Volume        int64          `json:"volume"`
	AvgVolume     float64        `json:"avg_volume"`
	Signals       datatypes.JSON `gorm:"type:jsonb" json:"signals"`
	Score         int            `json:"score"`
	QualityGrade  string         `json:"quality_grade"`
	TrendStrength string         `json:"trend_strength"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (Signal) TableName() string {
	return "screening_results"
}
