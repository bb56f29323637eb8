package dto

// SignalTypeStats aggregates outcomes for one scoring rule over a window.
type SignalTypeStats struct {
	SignalType   string  `json:"signal_type"`
	Samples      int     `json:"samples"`
	Successes    int     `json:"successes"`
	Accuracy     float64 `json:"accuracy"`
	AvgReturn    float64 `json:"avg_return"`
	StdDevReturn float64 `json:"std_dev_return"`
}

// ScoreBandStats aggregates outcomes for one score band (high/medium/low).
type ScoreBandStats struct {
	Band     string  `json:"band"`
	Samples  int     `json:"samples"`
	Accuracy float64 `json:"accuracy"`
}

// WeightAdjustment is one bounded change to a rule weight.
type WeightAdjustment struct {
	SignalType string  `json:"signal_type"`
	OldWeight  int     `json:"old_weight"`
	NewWeight  int     `json:"new_weight"`
	Accuracy   float64 `json:"accuracy"`
	Samples    int     `json:"samples"`
	Reason     string  `json:"reason"`
}

// PerformerRef names the best or worst signal of an analysis window.
type PerformerRef struct {
	Symbol string  `json:"symbol"`
	Score  int     `json:"score"`
	Return float64 `json:"return"`
}
