// Package indicator provides pure technical-indicator transforms over
// price/volume series. Every function returns an empty slice when the input
// is too short for the indicator to be defined; callers treat that as
// "indicator unavailable", not as an error.
package indicator

// SMA returns the simple moving average with the given period. The result is
// aligned to the trailing end of prices: result[i] covers
// prices[i : i+period].
func SMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}
	sma := make([]float64, 0, len(prices)-period+1)
	var sum float64
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			sma = append(sma, sum/float64(period))
		}
	}
	return sma
}

// EMA returns the exponential moving average with the given period, seeded
// with the SMA of the first period points.
func EMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}
	multiplier := 2.0 / float64(period+1)

	var seed float64
	for _, p := range prices[:period] {
		seed += p
	}
	seed /= float64(period)

	ema := make([]float64, 0, len(prices)-period+1)
	ema = append(ema, seed)
	for _, p := range prices[period:] {
		prev := ema[len(ema)-1]
		ema = append(ema, (p-prev)*multiplier+prev)
	}
	return ema
}

// MACD returns the MACD line (EMA12-EMA26), its 9-period signal line, and
// the histogram (line minus signal), all aligned to the shortest series.
// Fewer than 26 input points yields empty results; fewer than 34 yields a
// MACD line but no signal or histogram.
func MACD(prices []float64) (line, signal, histogram []float64) {
	if len(prices) < 26 {
		return nil, nil, nil
	}
	ema12 := EMA(prices, 12)
	ema26 := EMA(prices, 26)
	ema12 = ema12[len(ema12)-len(ema26):]

	line = make([]float64, len(ema26))
	for i := range ema26 {
		line[i] = ema12[i] - ema26[i]
	}

	if len(line) < 9 {
		return line, nil, nil
	}
	signal = EMA(line, 9)
	line = line[len(line)-len(signal):]

	histogram = make([]float64, len(signal))
	for i := range signal {
		histogram[i] = line[i] - signal[i]
	}
	return line, signal, histogram
}

// RSI returns the relative strength index over the trailing period deltas.
// When the average loss in a window is zero, RSI is 100 for that point.
func RSI(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period+1 {
		return nil
	}
	rsi := make([]float64, 0, len(prices)-period)
	for i := period; i < len(prices); i++ {
		var avgGain, avgLoss float64
		for j := i - period + 1; j <= i; j++ {
			change := prices[j] - prices[j-1]
			if change > 0 {
				avgGain += change
			} else {
				avgLoss += -change
			}
		}
		avgGain /= float64(period)
		avgLoss /= float64(period)

		if avgLoss == 0 {
			rsi = append(rsi, 100)
			continue
		}
		rs := avgGain / avgLoss
		rsi = append(rsi, 100-(100/(1+rs)))
	}
	return rsi
}

// OBV returns the on-balance volume: a running sum starting at zero that
// adds volume on an up close, subtracts on a down close, and holds flat on
// an unchanged close. Mismatched or too-short inputs yield an empty result.
func OBV(prices []float64, volumes []int64) []float64 {
	if len(prices) != len(volumes) || len(prices) < 2 {
		return nil
	}
	obv := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		switch {
		case prices[i] > prices[i-1]:
			obv[i] = obv[i-1] + float64(volumes[i])
		case prices[i] < prices[i-1]:
			obv[i] = obv[i-1] - float64(volumes[i])
		default:
			obv[i] = obv[i-1]
		}
	}
	return obv
}
