package scorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildBullishSeries produces 60 daily bars: a slow decline into a steady
// recovery, a short pullback, and a high-volume pop on the final bar. The
// final bar lifts the 20-day MA across the 50-day MA and MACD across its
// signal line at the same time.
func buildBullishSeries() ([]float64, []float64, []float64, []int64) {
	closes := make([]float64, 0, 60)
	for i := 0; i < 30; i++ {
		closes = append(closes, 100.0-float64(i)*0.5)
	}
	x := closes[len(closes)-1]
	for i := 0; i < 25; i++ {
		x += 0.2
		closes = append(closes, x)
	}
	for i := 0; i < 4; i++ {
		x -= 0.8
		closes = append(closes, x)
	}
	closes = append(closes, x+5.0)

	highs := make([]float64, len(closes))
	lows := make([]float64, len(closes))
	maxHigh := 0.0
	for i, c := range closes {
		highs[i] = c * 1.01
		lows[i] = c * 0.99
		if highs[i] > maxHigh {
			maxHigh = highs[i]
		}
	}
	// One old spike keeps the last bar well below the 52-week and
	// 20-day breakout thresholds.
	highs[44] = maxHigh * 1.4

	volumes := make([]int64, len(closes))
	for i := range volumes {
		volumes[i] = 1_000_000
	}
	// 19 bars at 1,000,000 plus this bar averages 1,085,714.3 so the
	// surge ratio lands on 2.50 exactly.
	volumes[len(volumes)-1] = 2_714_286

	return closes, highs, lows, volumes
}

func crossConfig() WeightConfig {
	cfg := DefaultWeightConfig()
	cfg.Weights = map[string]int{
		SignalMAGoldenCross:     30,
		SignalMACDGoldenCross:   25,
		SignalRSIReversal:       0,
		SignalVolumeSurge:       15,
		SignalPriceBreakout52w:  0,
		SignalPriceBreakout20d:  0,
		SignalTrendContinuation: 0,
		SignalOBVConfirm:        0,
	}
	cfg.TrendBonus = TrendBonus{}
	return cfg
}

func TestScoreBullishCrossover(t *testing.T) {
	closes, highs, lows, volumes := buildBullishSeries()
	in := Input{
		Symbol:    "AAPL",
		Name:      "Apple Inc.",
		Closes:    closes,
		Highs:     highs,
		Lows:      lows,
		Volumes:   volumes,
		Price:     closes[len(closes)-1],
		Timestamp: time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC),
	}

	sig := Score(in, crossConfig())
	require.NotNil(t, sig)

	assert.Equal(t, []string{TagMAGoldenCross, TagMACDGoldenCross, TagVolumeSurge + " 2.5x"}, sig.Tags)
	assert.Equal(t, 70, sig.Score)
	assert.Equal(t, "A", sig.QualityGrade)
	assert.Equal(t, "AAPL", sig.Symbol)
	assert.InDelta(t, 5.7274, sig.ChangePercent, 0.001)
	assert.Equal(t, int64(2_714_286), sig.Volume)
	assert.InDelta(t, 1_085_714.3, sig.AvgVolume, 1.0)
}

func TestScoreDeterministic(t *testing.T) {
	closes, highs, lows, volumes := buildBullishSeries()
	in := Input{
		Symbol:  "AAPL",
		Closes:  closes,
		Highs:   highs,
		Lows:    lows,
		Volumes: volumes,
		Price:   closes[len(closes)-1],
	}
	cfg := crossConfig()

	first := Score(in, cfg)
	second := Score(in, cfg)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Tags, second.Tags)
	assert.Equal(t, first.QualityGrade, second.QualityGrade)
}

func TestScoreInsufficientBars(t *testing.T) {
	closes, highs, lows, volumes := buildBullishSeries()
	n := MinRequiredBars - 1
	in := Input{
		Symbol:  "NEWIPO",
		Closes:  closes[:n],
		Highs:   highs[:n],
		Lows:    lows[:n],
		Volumes: volumes[:n],
		Price:   closes[n-1],
	}
	assert.Nil(t, Score(in, DefaultWeightConfig()))
}

func TestScorePriceBandGate(t *testing.T) {
	closes, highs, lows, volumes := buildBullishSeries()
	for i := range closes {
		closes[i] /= 50
		highs[i] /= 50
		lows[i] /= 50
	}
	in := Input{
		Symbol:  "PENNY",
		Closes:  closes,
		Highs:   highs,
		Lows:    lows,
		Volumes: volumes,
		Price:   closes[len(closes)-1],
	}
	assert.Nil(t, Score(in, crossConfig()))
}

func TestScoreVolumeGate(t *testing.T) {
	closes, highs, lows, volumes := buildBullishSeries()
	for i := range volumes {
		volumes[i] /= 100
	}
	in := Input{
		Symbol:  "THIN",
		Closes:  closes,
		Highs:   highs,
		Lows:    lows,
		Volumes: volumes,
		Price:   closes[len(closes)-1],
	}
	assert.Nil(t, Score(in, crossConfig()))
}

func TestScoreBelowMinScore(t *testing.T) {
	closes, highs, lows, volumes := buildBullishSeries()
	cfg := crossConfig()
	cfg.Weights[SignalMAGoldenCross] = 5
	cfg.Weights[SignalMACDGoldenCross] = 5
	cfg.Weights[SignalVolumeSurge] = 5
	cfg.MinScore = 40

	in := Input{
		Symbol:  "WEAK",
		Closes:  closes,
		Highs:   highs,
		Lows:    lows,
		Volumes: volumes,
		Price:   closes[len(closes)-1],
	}
	assert.Nil(t, Score(in, cfg))
}

func TestScoreFlatSeriesNoSignal(t *testing.T) {
	closes := make([]float64, 80)
	highs := make([]float64, 80)
	lows := make([]float64, 80)
	volumes := make([]int64, 80)
	for i := range closes {
		closes[i] = 50.0
		highs[i] = 50.5
		lows[i] = 49.5
		volumes[i] = 2_000_000
	}
	in := Input{
		Symbol:  "FLAT",
		Closes:  closes,
		Highs:   highs,
		Lows:    lows,
		Volumes: volumes,
		Price:   50.0,
	}
	assert.Nil(t, Score(in, DefaultWeightConfig()))
}

func TestClassifyTrend(t *testing.T) {
	cfg := DefaultWeightConfig()

	up := make([]float64, 30)
	for i := range up {
		up[i] = 100 + float64(i)*4
	}
	label, bonus := ClassifyTrend(up, cfg.TrendConfirmDays, cfg.TrendBonus)
	assert.Equal(t, TrendStrongUp, label)
	assert.Equal(t, 15, bonus)

	down := make([]float64, 30)
	for i := range down {
		down[i] = 100 - float64(i)*2
	}
	label, bonus = ClassifyTrend(down, cfg.TrendConfirmDays, cfg.TrendBonus)
	assert.Equal(t, TrendDeclining, label)
	assert.Equal(t, -10, bonus)

	label, bonus = ClassifyTrend([]float64{100, 101}, cfg.TrendConfirmDays, cfg.TrendBonus)
	assert.Equal(t, TrendInsufficient, label)
	assert.Equal(t, 0, bonus)
}

func TestIsStrongTag(t *testing.T) {
	assert.True(t, IsStrongTag(TagMAGoldenCross))
	assert.True(t, IsStrongTag(TagMACDGoldenCross))
	assert.True(t, IsStrongTag(TagBreakout52w))
	assert.True(t, IsStrongTag(TagVolumeSurge+" 2.5x"))
	assert.False(t, IsStrongTag(TagRSICrossing50))
	assert.False(t, IsStrongTag(TagOBVRising))
}

func TestSignalTypeForTag(t *testing.T) {
	cases := map[string]string{
		TagMAGoldenCross:         SignalMAGoldenCross,
		TagBullishMAAlignment:    SignalTrendContinuation,
		TagMACDGoldenCross:       SignalMACDGoldenCross,
		TagMACDAcceleration:      SignalMACDGoldenCross,
		TagRSIOversoldRebound:    SignalRSIReversal,
		TagRSICrossing50:         SignalRSIReversal,
		TagVolumeSurge + " 2.5x": SignalVolumeSurge,
		TagBreakout52w:           SignalPriceBreakout52w,
		TagNear52wHigh:           SignalPriceBreakout52w,
		TagBreakout20d:           SignalPriceBreakout20d,
		TagOBVRising:             SignalOBVConfirm,
		TagStrongUptrend:         SignalTrendContinuation,
	}
	for tag, want := range cases {
		got, ok := SignalTypeForTag(tag)
		require.True(t, ok, tag)
		assert.Equal(t, want, got, tag)
	}

	_, ok := SignalTypeForTag("something else")
	assert.False(t, ok)
}

func TestWeightConfigValidate(t *testing.T) {
	cfg := DefaultWeightConfig()
	assert.NoError(t, cfg.Validate())

	bad := DefaultWeightConfig()
	bad.MinPrice = -1
	assert.Error(t, bad.Validate())

	bad = DefaultWeightConfig()
	bad.MAShortPeriod = bad.MALongPeriod
	assert.Error(t, bad.Validate())

	bad = DefaultWeightConfig()
	bad.Weights[SignalMAGoldenCross] = -5
	assert.Error(t, bad.Validate())

	bad = DefaultWeightConfig()
	delete(bad.Weights, SignalOBVConfirm)
	assert.Error(t, bad.Validate())
}

func TestWeightConfigClone(t *testing.T) {
	cfg := DefaultWeightConfig()
	clone := cfg.Clone()
	clone.Weights[SignalMAGoldenCross] = 99
	assert.Equal(t, 30, cfg.Weights[SignalMAGoldenCross])
}
