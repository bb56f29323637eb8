package entity

import "time"

// RunStats is the audit record of one orchestrator invocation.
type RunStats struct {
	ID               int64     `json:"id"`
	ScanType         string    `gorm:"not null" json:"scan_type"`
	TotalStocks      int       `json:"total_stocks"`
	ProcessedStocks  int       `json:"processed_stocks"`
	SuccessfulStocks int       `json:"successful_stocks"`
	FailedStocks     int       `json:"failed_stocks"`
	SignalsFound     int       `json:"signals_found"`
	HighScoreCount   int       `json:"high_score_count"`
	StartedAt        time.Time `gorm:"not null" json:"started_at"`
	CompletedAt      time.Time `json:"completed_at"`
	RuntimeSeconds   float64   `json:"runtime_seconds"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RunStats) TableName() string {
	return "run_stats"
}
