package scorer

import "strings"

// Human-readable tag prefixes. Parameterized tags (RSI values, surge ratios,
// breakout percentages) append their detail after the prefix, so the prefix
// is the stable identity used for classification.
const (
	TagMAGoldenCross      = "MA golden cross"
	TagBullishMAAlignment = "bullish MA alignment"
	TagMACDGoldenCross    = "MACD golden cross"
	TagMACDAcceleration   = "MACD bullish acceleration"
	TagRSIOversoldRebound = "RSI oversold rebound"
	TagRSICrossing50      = "RSI crossing 50"
	TagVolumeSurge        = "volume surge"
	TagBreakout52w        = "52w high breakout"
	TagNear52wHigh        = "near 52w high"
	TagBreakout20d        = "20d high breakout"
	TagOBVRising          = "OBV rising"
	TagStrongUptrend      = "strong uptrend"
	TagSteadyUptrend      = "steady uptrend"
	TagMildUptrend        = "mild uptrend"
)

// tagSignalTypes maps tag prefixes to weight-map keys. It is deliberately a
// flat lookup table rather than scattered conditionals so the optimizer's
// tag classification stays independently testable.
var tagSignalTypes = []struct {
	prefix     string
	signalType string
}{
	{TagMAGoldenCross, SignalMAGoldenCross},
	{TagBullishMAAlignment, SignalTrendContinuation},
	{TagMACDGoldenCross, SignalMACDGoldenCross},
	{TagMACDAcceleration, SignalMACDGoldenCross},
	{TagRSIOversoldRebound, SignalRSIReversal},
	{TagRSICrossing50, SignalRSIReversal},
	{TagVolumeSurge, SignalVolumeSurge},
	{TagBreakout52w, SignalPriceBreakout52w},
	{TagNear52wHigh, SignalPriceBreakout52w},
	{TagBreakout20d, SignalPriceBreakout20d},
	{TagStrongUptrend, SignalTrendContinuation},
	{TagSteadyUptrend, SignalTrendContinuation},
	{TagMildUptrend, SignalTrendContinuation},
	{TagOBVRising, SignalOBVConfirm},
}

// SignalTypeForTag resolves a tag string to its weight-map key. Unknown tags
// report ok=false and are excluded from per-type statistics.
func SignalTypeForTag(tag string) (string, bool) {
	for _, entry := range tagSignalTypes {
		if strings.HasPrefix(tag, entry.prefix) {
			return entry.signalType, true
		}
	}
	return "", false
}
