package entity

import (
	"time"

	"gorm.io/datatypes"
)

// WeightConfigHistory is one historized scoring configuration. Params holds
// the full serialized WeightConfig; AccuracyRate is the accuracy measured
// under the configuration this row replaced.
type WeightConfigHistory struct {
	ID            int64          `json:"id"`
	EffectiveDate time.Time      `gorm:"not null;index" json:"effective_date"`
	Params        datatypes.JSON `gorm:"type:jsonb;not null" json:"params"`
	AccuracyRate  *float64       `json:"accuracy_rate"`
	Notes         string         `json:"notes"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (WeightConfigHistory) TableName() string {
	return "weight_config_history"
}
