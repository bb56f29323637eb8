package entity

import (
	"time"

	"gorm.io/datatypes"
)

// WeeklyAnalysis persists one optimizer window. A row existing for a window
// also marks that window as already applied, so re-running the optimizer on
// the same frozen data makes no further adjustment.
type WeeklyAnalysis struct {
	ID                int64          `json:"id"`
	WeekStart         time.Time      `gorm:"not null" json:"week_start"`
	WeekEnd           time.Time      `gorm:"not null;index" json:"week_end"`
	TotalSignals      int            `json:"total_signals"`
	SuccessfulSignals int            `json:"successful_signals"`
	AccuracyRate      float64        `json:"accuracy_rate"`
	AvgReturn         float64        `json:"avg_return"`
	BestPerformer     datatypes.JSON `gorm:"type:jsonb" json:"best_performer"`
	WorstPerformer    datatypes.JSON `gorm:"type:jsonb" json:"worst_performer"`
	AnalysisNotes     string         `json:"analysis_notes"`
	ModelAdjustments  datatypes.JSON `gorm:"type:jsonb" json:"model_adjustments"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (WeeklyAnalysis) TableName() string {
	return "weekly_analyses"
}
