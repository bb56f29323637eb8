package entity

import "time"

// TrackingRecord follows one Signal forward in time. Day-offset fields are
// pointers because they fill in as trading sessions elapse; a nil field means
// "not yet known", and updates only ever set fields, never clear them.
type TrackingRecord struct {
	ID           int64      `json:"id"`
	SignalID     int64      `gorm:"not null;index" json:"signal_id"`
	Symbol       string     `gorm:"not null;index" json:"symbol"`
	SignalDate   time.Time  `gorm:"not null;index" json:"signal_date"`
	SignalPrice  float64    `json:"signal_price"`
	SignalScore  int        `json:"signal_score"`
	Day1Price    *float64   `json:"day1_price"`
	Day1Change   *float64   `json:"day1_change"`
	Day3Price    *float64   `json:"day3_price"`
	Day3Change   *float64   `json:"day3_change"`
	Day5Price    *float64   `json:"day5_price"`
	Day5Change   *float64   `json:"day5_change"`
	Day7Price    *float64   `json:"day7_price"`
	Day7Change   *float64   `json:"day7_change"`
	MaxGain      *float64   `json:"max_gain"`
	MaxLoss      *float64   `json:"max_loss"`
	IsSuccessful *bool      `json:"is_successful"`
	UpdatedAt    *time.Time `json:"updated_at"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (TrackingRecord) TableName() string {
	return "performance_tracking"
}
