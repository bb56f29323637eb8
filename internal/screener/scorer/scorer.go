// Package scorer converts a symbol's indicator series into a weighted
// composite signal. Scoring is a pure function of its inputs: identical
// input and configuration always produce an identical Signal.
package scorer

import (
	"fmt"
	"strings"
	"time"

	"golang-stock-screener/internal/screener/indicator"
)

// MinRequiredBars is the minimum series length for a scoring attempt.
const MinRequiredBars = 60

// Net change above which a near-daily uptrend counts as strong.
const trendStrongChangePct = 3.0

// Trend classifications.
const (
	TrendStrongUp     = "strong_up"
	TrendSteadyUp     = "steady_up"
	TrendMildUp       = "mild_up"
	TrendChoppy       = "choppy"
	TrendDeclining    = "declining"
	TrendInsufficient = "insufficient_data"
)

// Quality grades. Grade D exists conceptually but is never emitted: the
// minimum-score gate removes it first.
const (
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"
)

// Signal is the scorer's output for one symbol at one point in time.
type Signal struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	ChangePercent float64   `json:"change_percent"`
	Volume        int64     `json:"volume"`
	AvgVolume     float64   `json:"avg_volume"`
	Tags          []string  `json:"tags"`
	Score         int       `json:"score"`
	QualityGrade  string    `json:"quality_grade"`
	TrendStrength string    `json:"trend_strength"`
	Timestamp     time.Time `json:"timestamp"`
}

// Input carries one symbol's series into a scoring call.
type Input struct {
	Symbol    string
	Name      string
	Closes    []float64
	Highs     []float64
	Lows      []float64
	Volumes   []int64
	Price     float64 // most recent market price; falls back to the last close
	Timestamp time.Time
}

// Score evaluates one symbol against the configuration and returns either a
// Signal or nil for "no signal". Insufficient history, a failed filter gate,
// or a sub-threshold score all yield nil; none of them are errors.
func Score(in Input, cfg WeightConfig) *Signal {
	if len(in.Closes) < MinRequiredBars {
		return nil
	}

	price := in.Price
	if price == 0 {
		price = in.Closes[len(in.Closes)-1]
	}
	if price < cfg.MinPrice || price > cfg.MaxPrice {
		return nil
	}

	avgVolume := trailingAvgVolume(in.Volumes, 20)
	if avgVolume < cfg.MinAvgVolume {
		return nil
	}

	var tags []string
	score := 0
	addRule := func(weight int, tag string) {
		tags = append(tags, tag)
		score += weight
	}

	// 1. Moving-average golden cross, or sustained bullish alignment.
	maShort := indicator.SMA(in.Closes, cfg.MAShortPeriod)
	maLong := indicator.SMA(in.Closes, cfg.MALongPeriod)
	if len(maShort) >= 3 && len(maLong) >= 3 {
		maShort = maShort[len(maShort)-len(maLong):]
		s, l := maShort, maLong
		switch {
		case last(s) > last(l) && prev(s, 1) <= prev(l, 1) && risingClose(in.Closes):
			addRule(cfg.Weights[SignalMAGoldenCross], TagMAGoldenCross)
		case last(s) > last(l) && last(s) > prev(s, 1) && prev(s, 1) > prev(s, 2):
			addRule(cfg.Weights[SignalTrendContinuation], TagBullishMAAlignment)
		}
	}

	// 2. MACD golden cross, or positive MACD with an expanding histogram.
	macdLine, signalLine, histogram := indicator.MACD(in.Closes)
	if len(macdLine) >= 3 && len(signalLine) >= 3 {
		switch {
		case last(macdLine) > last(signalLine) &&
			prev(macdLine, 1) <= prev(signalLine, 1) &&
			last(macdLine) > prev(macdLine, 1):
			addRule(cfg.Weights[SignalMACDGoldenCross], TagMACDGoldenCross)
		case last(macdLine) > 0 && len(histogram) >= 2 &&
			last(histogram) > prev(histogram, 1) && prev(histogram, 1) > 0:
			addRule(cfg.Weights[SignalMACDGoldenCross]/2, TagMACDAcceleration)
		}
	}

	// 3. RSI rebound out of the oversold zone, or a confirmed 50-cross.
	rsi := indicator.RSI(in.Closes, 14)
	if len(rsi) >= 3 {
		current := last(rsi)
		switch {
		case len(rsi) >= 5 && minOf(rsi[len(rsi)-5:len(rsi)-1]) < cfg.RSIOversold &&
			current > cfg.RSIOversold && current > prev(rsi, 1):
			addRule(cfg.Weights[SignalRSIReversal], fmt.Sprintf("%s (%.0f)", TagRSIOversoldRebound, current))
		case prev(rsi, 1) < 50 && current > 50 &&
			current > prev(rsi, 1) && prev(rsi, 1) > prev(rsi, 2):
			addRule(cfg.Weights[SignalRSIReversal]/2, fmt.Sprintf("%s (%.0f)", TagRSICrossing50, current))
		}
	}

	// 4. Volume surge. Sub-threshold surges score nothing.
	var volumeRatio float64
	if len(in.Volumes) >= 2 && avgVolume > 0 {
		volumeRatio = float64(last(in.Volumes)) / avgVolume
	}
	if volumeRatio >= cfg.VolumeSurgeRatio {
		addRule(cfg.Weights[SignalVolumeSurge], fmt.Sprintf("%s %.1fx", TagVolumeSurge, volumeRatio))
	}

	// 5. Breakouts near the trailing 52-week and 20-session highs.
	if len(in.Highs) >= 20 {
		high52w := maxOf(tail(in.Highs, 250))
		var ratio52w float64
		if high52w > 0 {
			ratio52w = price / high52w
		}
		switch {
		case ratio52w >= 0.98:
			addRule(cfg.Weights[SignalPriceBreakout52w], fmt.Sprintf("%s (%.1f%%)", TagBreakout52w, ratio52w*100))
		case ratio52w >= 0.92:
			addRule(cfg.Weights[SignalPriceBreakout52w]/2, fmt.Sprintf("%s (%.1f%%)", TagNear52wHigh, ratio52w*100))
		}

		high20d := maxOf(tail(in.Highs, 20))
		if price >= high20d*0.99 {
			addRule(cfg.Weights[SignalPriceBreakout20d], TagBreakout20d)
		}
	}

	// 6. OBV confirmation: above its 10-period mean and rising for 3 points.
	obv := indicator.OBV(in.Closes, in.Volumes)
	if len(obv) >= 10 {
		obvMean := meanOf(tail(obv, 10))
		if last(obv) > obvMean*1.05 && last(obv) > prev(obv, 1) && prev(obv, 1) > prev(obv, 2) {
			addRule(cfg.Weights[SignalOBVConfirm], TagOBVRising)
		}
	}

	// 7. Trend-strength bonus or penalty.
	trend, bonus := ClassifyTrend(in.Closes, cfg.TrendConfirmDays, cfg.TrendBonus)
	if bonus > 0 {
		tags = append(tags, trendTag(trend))
	}
	score += bonus

	if len(tags) == 0 || score < cfg.MinScore {
		return nil
	}

	prevClose := in.Closes[len(in.Closes)-2]
	var changePercent float64
	if prevClose > 0 {
		changePercent = (price - prevClose) / prevClose * 100
	}

	var volume int64
	if len(in.Volumes) > 0 {
		volume = last(in.Volumes)
	}

	return &Signal{
		Symbol:        in.Symbol,
		Name:          in.Name,
		Price:         price,
		ChangePercent: changePercent,
		Volume:        volume,
		AvgVolume:     avgVolume,
		Tags:          tags,
		Score:         score,
		QualityGrade:  grade(tags, score, cfg.MinScore),
		TrendStrength: trend,
		Timestamp:     in.Timestamp,
	}
}

// ClassifyTrend buckets the last days+1 closes by up-day count and net
// percentage change, returning the label and its configured bonus.
func ClassifyTrend(closes []float64, days int, bonus TrendBonus) (string, int) {
	if len(closes) < days+1 {
		return TrendInsufficient, 0
	}
	recent := closes[len(closes)-days-1:]

	upDays := 0
	for i := 1; i < len(recent); i++ {
		if recent[i] > recent[i-1] {
			upDays++
		}
	}

	var totalChange float64
	if recent[0] > 0 {
		totalChange = (recent[len(recent)-1] - recent[0]) / recent[0] * 100
	}

	switch {
	case upDays >= days-1 && totalChange > trendStrongChangePct:
		return TrendStrongUp, bonus.StrongUp
	case upDays >= days-1 && totalChange > 0:
		return TrendSteadyUp, bonus.SteadyUp
	case upDays >= days/2+1:
		return TrendMildUp, bonus.MildUp
	case upDays <= 1:
		return TrendDeclining, bonus.Declining
	default:
		return TrendChoppy, 0
	}
}

// grade assigns the quality grade. Strong tags are the cross / 52w-breakout /
// volume-surge family.
func grade(tags []string, score, minScore int) string {
	strong := 0
	for _, tag := range tags {
		if IsStrongTag(tag) {
			strong++
		}
	}
	switch {
	case strong >= 2 && score >= 70:
		return GradeA
	case strong >= 1 && score >= 50:
		return GradeB
	default:
		return GradeC
	}
}

// IsStrongTag reports whether a tag belongs to the strong-signal family.
func IsStrongTag(tag string) bool {
	return strings.Contains(tag, "golden cross") ||
		strings.Contains(tag, "52w high") ||
		strings.HasPrefix(tag, TagVolumeSurge)
}

func trendTag(trend string) string {
	switch trend {
	case TrendStrongUp:
		return TagStrongUptrend
	case TrendSteadyUp:
		return TagSteadyUptrend
	default:
		return TagMildUptrend
	}
}

func trailingAvgVolume(volumes []int64, window int) float64 {
	if len(volumes) == 0 {
		return 0
	}
	if len(volumes) > window {
		volumes = volumes[len(volumes)-window:]
	}
	var sum float64
	for _, v := range volumes {
		sum += float64(v)
	}
	return sum / float64(len(volumes))
}

func last[T any](s []T) T {
	return s[len(s)-1]
}

func prev[T any](s []T, n int) T {
	return s[len(s)-1-n]
}

func risingClose(closes []float64) bool {
	return closes[len(closes)-1] > closes[len(closes)-2]
}

func tail(s []float64, n int) []float64 {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}

func minOf(s []float64) float64 {
	m := s[0]
	for _, v := range s[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(s []float64) float64 {
	m := s[0]
	for _, v := range s[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func meanOf(s []float64) float64 {
	var sum float64
	for _, v := range s {
		sum += v
	}
	return sum / float64(len(s))
}
