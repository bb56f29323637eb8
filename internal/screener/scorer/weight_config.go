package scorer

import "fmt"

// Signal-type keys used in the weight map, by the optimizer's lookup table,
// and as the persisted identity of each scoring rule.
const (
	SignalMAGoldenCross     = "ma_golden_cross"
	SignalMACDGoldenCross   = "macd_golden_cross"
	SignalRSIReversal       = "rsi_reversal"
	SignalVolumeSurge       = "volume_surge"
	SignalPriceBreakout52w  = "price_breakout_52w"
	SignalPriceBreakout20d  = "price_breakout_20d"
	SignalTrendContinuation = "trend_continuation"
	SignalOBVConfirm        = "obv_confirm"
)

// WeightKeys lists every weight-map key a valid configuration must carry.
var WeightKeys = []string{
	SignalMAGoldenCross,
	SignalMACDGoldenCross,
	SignalRSIReversal,
	SignalVolumeSurge,
	SignalPriceBreakout52w,
	SignalPriceBreakout20d,
	SignalTrendContinuation,
	SignalOBVConfirm,
}

// TrendBonus holds the score adjustments per trend classification. Declining
// is expected to be negative.
type TrendBonus struct {
	StrongUp  int `json:"strong_up" mapstructure:"strong_up"`
	SteadyUp  int `json:"steady_up" mapstructure:"steady_up"`
	MildUp    int `json:"mild_up" mapstructure:"mild_up"`
	Declining int `json:"declining" mapstructure:"declining"`
}

// WeightConfig parameterizes the scorer completely. The original screener
// shipped progressively stricter "versions"; here a stricter (denoised)
// screener is just a WeightConfig with higher thresholds.
type WeightConfig struct {
	MinScore         int     `json:"min_score" mapstructure:"min_score"`
	MinPrice         float64 `json:"min_price" mapstructure:"min_price"`
	MaxPrice         float64 `json:"max_price" mapstructure:"max_price"`
	MinAvgVolume     float64 `json:"min_avg_volume" mapstructure:"min_avg_volume"`
	VolumeSurgeRatio float64 `json:"volume_surge_ratio" mapstructure:"volume_surge_ratio"`
	TrendConfirmDays int     `json:"trend_confirm_days" mapstructure:"trend_confirm_days"`

	MAShortPeriod int     `json:"ma_short_period" mapstructure:"ma_short_period"`
	MALongPeriod  int     `json:"ma_long_period" mapstructure:"ma_long_period"`
	RSIOversold   float64 `json:"rsi_oversold" mapstructure:"rsi_oversold"`
	RSIOverbought float64 `json:"rsi_overbought" mapstructure:"rsi_overbought"`

	Weights    map[string]int `json:"weights" mapstructure:"weights"`
	TrendBonus TrendBonus     `json:"trend_bonus" mapstructure:"trend_bonus"`
}

// DefaultWeightConfig returns the denoised baseline configuration.
func DefaultWeightConfig() WeightConfig {
	return WeightConfig{
		MinScore:         40,
		MinPrice:         5.0,
		MaxPrice:         1000.0,
		MinAvgVolume:     1_000_000,
		VolumeSurgeRatio: 1.8,
		TrendConfirmDays: 3,
		MAShortPeriod:    20,
		MALongPeriod:     50,
		RSIOversold:      30,
		RSIOverbought:    70,
		Weights: map[string]int{
			SignalMAGoldenCross:     30,
			SignalMACDGoldenCross:   25,
			SignalRSIReversal:       20,
			SignalVolumeSurge:       15,
			SignalPriceBreakout52w:  20,
			SignalPriceBreakout20d:  10,
			SignalTrendContinuation: 15,
			SignalOBVConfirm:        10,
		},
		TrendBonus: TrendBonus{
			StrongUp:  15,
			SteadyUp:  10,
			MildUp:    5,
			Declining: -10,
		},
	}
}

// Clone deep-copies the configuration, so a run keeps scoring under the
// weights it started with even if a new config is applied meanwhile.
func (c WeightConfig) Clone() WeightConfig {
	out := c
	out.Weights = make(map[string]int, len(c.Weights))
	for k, v := range c.Weights {
		out.Weights[k] = v
	}
	return out
}

// Validate rejects malformed configurations; a rejected config must leave
// the previous one in effect, so callers validate before swapping.
func (c WeightConfig) Validate() error {
	if c.MinPrice < 0 || c.MaxPrice <= c.MinPrice {
		return fmt.Errorf("invalid price band [%f, %f]", c.MinPrice, c.MaxPrice)
	}
	if c.MinAvgVolume < 0 {
		return fmt.Errorf("min_avg_volume must be non-negative")
	}
	if c.VolumeSurgeRatio <= 0 {
		return fmt.Errorf("volume_surge_ratio must be positive")
	}
	if c.TrendConfirmDays < 1 {
		return fmt.Errorf("trend_confirm_days must be at least 1")
	}
	if c.MAShortPeriod < 2 || c.MALongPeriod <= c.MAShortPeriod {
		return fmt.Errorf("invalid MA periods %d/%d", c.MAShortPeriod, c.MALongPeriod)
	}
	if c.RSIOversold <= 0 || c.RSIOverbought <= c.RSIOversold || c.RSIOverbought >= 100 {
		return fmt.Errorf("invalid RSI thresholds %f/%f", c.RSIOversold, c.RSIOverbought)
	}
	for _, key := range WeightKeys {
		w, ok := c.Weights[key]
		if !ok {
			return fmt.Errorf("missing weight for %s", key)
		}
		if w < 0 {
			return fmt.Errorf("weight for %s must be non-negative, got %d", key, w)
		}
	}
	return nil
}
