package entity

import (
	"time"

	"gorm.io/datatypes"
)

// DailySummary aggregates one calendar day of screening results.
type DailySummary struct {
	ID               int64          `json:"id"`
	SummaryDate      time.Time      `gorm:"not null;uniqueIndex" json:"summary_date"`
	TotalSignals     int            `json:"total_signals"`
	UniqueStocks     int            `json:"unique_stocks"`
	TopStocks        datatypes.JSON `gorm:"type:jsonb" json:"top_stocks"`
	AvgScore         float64        `json:"avg_score"`
	HighScoreCount   int            `json:"high_score_count"`
	NotificationSent bool           `json:"notification_sent"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (DailySummary) TableName() string {
	return "daily_summaries"
}
