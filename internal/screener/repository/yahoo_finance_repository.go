package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/internal/screener/dto"
	"golang-stock-screener/pkg/logger"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// ErrDataUnavailable marks symbols the data provider has no usable bars
// for. Callers count these as failed symbols without aborting the run.
var ErrDataUnavailable = errors.New("market data unavailable")

type MarketDataRepository interface {
	GetHistoricalBars(ctx context.Context, param dto.GetBarsParam) (*dto.PriceSeries, error)
}

type yahooFinanceRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	cache          *gocache.Cache
}

func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) MarketDataRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.YahooFinance.MaxRequestPerMinute)
	return &yahooFinanceRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: cfg.YahooFinance.RequestTimeout,
		},
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		cache:          gocache.New(cfg.YahooFinance.CacheTTL, 2*cfg.YahooFinance.CacheTTL),
	}
}

func (r *yahooFinanceRepository) GetHistoricalBars(ctx context.Context, param dto.GetBarsParam) (*dto.PriceSeries, error) {
	cacheKey := fmt.Sprintf("%s:%s:%s", param.Symbol, param.Range, param.Interval)
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.(*dto.PriceSeries), nil
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s",
		r.cfg.YahooFinance.BaseURL, param.Symbol, param.Range, param.Interval)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, param.Symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, param.Symbol)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var chart dto.YahooChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("failed to decode chart response: %w", err)
	}

	series, err := chartToSeries(param.Symbol, &chart)
	if err != nil {
		return nil, err
	}

	r.log.DebugContext(ctx, "fetched historical bars",
		logger.StringField("symbol", param.Symbol),
		logger.IntField("bars", len(series.Bars)))

	r.cache.Set(cacheKey, series, gocache.DefaultExpiration)
	return series, nil
}

// chartToSeries flattens the chart payload into a PriceSeries, dropping
// sessions where any OHLCV column is null (halts, partial rows).
func chartToSeries(symbol string, chart *dto.YahooChartResponse) (*dto.PriceSeries, error) {
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrDataUnavailable, symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s: empty result", ErrDataUnavailable, symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: %s: no quote data", ErrDataUnavailable, symbol)
	}
	quote := result.Indicators.Quote[0]

	name := result.Meta.LongName
	if name == "" {
		name = result.Meta.ShortName
	}

	series := &dto.PriceSeries{
		Symbol:      symbol,
		Name:        name,
		MarketPrice: result.Meta.RegularMarketPrice,
		Bars:        make([]dto.Bar, 0, len(result.Timestamp)),
	}

	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) ||
			i >= len(quote.Close) || i >= len(quote.Volume) {
			break
		}
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil ||
			quote.Close[i] == nil || quote.Volume[i] == nil {
			continue
		}
		series.Bars = append(series.Bars, dto.Bar{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      *quote.Open[i],
			High:      *quote.High[i],
			Low:       *quote.Low[i],
			Close:     *quote.Close[i],
			Volume:    *quote.Volume[i],
		})
	}

	if len(series.Bars) == 0 {
		return nil, fmt.Errorf("%w: %s: no complete bars", ErrDataUnavailable, symbol)
	}
	return series, nil
}
