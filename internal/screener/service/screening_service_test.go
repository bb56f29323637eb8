package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/internal/screener/scorer"
	"golang-stock-screener/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStocksRepo struct {
	all      []entity.Stock
	priority []entity.Stock
}

func (f *fakeStocksRepo) GetStocks(ctx context.Context, limit int) ([]entity.Stock, error) {
	if limit > 0 && limit < len(f.all) {
		return f.all[:limit], nil
	}
	return f.all, nil
}

func (f *fakeStocksRepo) GetPriorityStocks(ctx context.Context) ([]entity.Stock, error) {
	return f.priority, nil
}

func TestScanProgressConcurrentCounts(t *testing.T) {
	progress := &scanProgress{}

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			switch {
			case i%10 == 0:
				progress.record(nil, errors.New("fetch failed"))
			case i%5 == 0:
				progress.record(&scorer.Signal{Symbol: "SYM", Score: 50}, nil)
			default:
				progress.record(nil, nil)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, progress.processed)
	assert.Equal(t, 20, progress.failed)
	assert.Equal(t, 180, progress.successful)
	assert.Len(t, progress.signals, 20)
}

func TestUniverseSelection(t *testing.T) {
	stocks := make([]entity.Stock, 50)
	for i := range stocks {
		stocks[i] = entity.Stock{Symbol: "SYM"}
	}
	repo := &fakeStocksRepo{
		all:      stocks,
		priority: stocks[:8],
	}
	svc := &screeningService{
		cfg: &config.Config{Screener: config.Screener{
			PriorityWorkers:   10,
			ExtendedWorkers:   15,
			ExtendedScanLimit: 30,
		}},
		stocksRepo: repo,
	}

	got, workers, err := svc.universe(context.Background(), common.ScanTypePriority, 0)
	require.NoError(t, err)
	assert.Len(t, got, 8)
	assert.Equal(t, 10, workers)

	got, workers, err = svc.universe(context.Background(), common.ScanTypeExtended, 0)
	require.NoError(t, err)
	assert.Len(t, got, 30)
	assert.Equal(t, 15, workers)

	// A request above the ceiling is clamped to it.
	got, _, err = svc.universe(context.Background(), common.ScanTypeExtended, 100)
	require.NoError(t, err)
	assert.Len(t, got, 30)

	got, _, err = svc.universe(context.Background(), common.ScanTypeExtended, 12)
	require.NoError(t, err)
	assert.Len(t, got, 12)
}

func TestToEntitiesPreservesOrderAndTags(t *testing.T) {
	svc := &screeningService{log: testLogger(t)}
	now := time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC)

	signals := []scorer.Signal{
		{Symbol: "AAA", Score: 85, Tags: []string{scorer.TagMAGoldenCross, scorer.TagVolumeSurge + " 2.1x"}, Timestamp: now},
		{Symbol: "BBB", Score: 70, Tags: []string{scorer.TagBreakout20d}, Timestamp: now},
		{Symbol: "CCC", Score: 45, Tags: []string{scorer.TagRSICrossing50}, Timestamp: now},
	}

	rows, highScore := svc.toEntities(signals)
	require.Len(t, rows, 3)
	assert.Equal(t, 2, highScore)
	assert.Equal(t, "AAA", rows[0].Symbol)
	assert.Equal(t, "CCC", rows[2].Symbol)

	var tags []string
	require.NoError(t, json.Unmarshal(rows[0].Signals, &tags))
	assert.Equal(t, []string{scorer.TagMAGoldenCross, scorer.TagVolumeSurge + " 2.1x"}, tags)
}
