package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewStateDefaults(t *testing.T) {
	state := NewViewState()
	assert.Equal(t, SectionOverview, state.ActiveSection())
	assert.Equal(t, DefaultPredictionDays, state.PredictionDays())
	assert.False(t, state.IsLoading())
	assert.False(t, state.timerActive())
	_, ok := state.StockData()
	assert.False(t, ok)
}

func TestSetCachedSnapshotRejectsOlderSequence(t *testing.T) {
	state := NewViewState()
	now := time.Now()
	newer, older := demoStock(120), demoStock(100)

	require.True(t, state.SetCachedSnapshot(KindStockData, newer, 2, now))
	assert.False(t, state.SetCachedSnapshot(KindStockData, older, 1, now))

	stock, ok := state.StockData()
	require.True(t, ok)
	assert.Same(t, newer, stock)
	assert.False(t, state.SetCachedSnapshot(KindStockData, nil, 3, now))
}

func TestLoadingCountsOverlappingLoads(t *testing.T) {
	state := NewViewState()
	state.SetLoading(true)
	state.SetLoading(true)
	state.SetLoading(false)
	assert.True(t, state.IsLoading())
	state.SetLoading(false)
	state.SetLoading(false)
	assert.False(t, state.IsLoading())
}

func TestViewStateSettingsClamp(t *testing.T) {
	state := NewViewState()
	state.SetPredictionDays(0)
	assert.Equal(t, DefaultPredictionDays, state.PredictionDays())
	state.SetPredictionDays(14)
	assert.Equal(t, 14, state.PredictionDays())
	state.SetTimeframe(-3)
	assert.Equal(t, 0, state.Timeframe())
}

func TestReplaceSnapshotKeepsSequence(t *testing.T) {
	state := NewViewState()
	now := time.Now()
	state.replaceSnapshot(KindStockData, demoStock(1))
	_, ok := state.StockData()
	assert.False(t, ok, "replace must not create entries")

	state.SetCachedSnapshot(KindStockData, demoStock(100), 5, now)
	state.replaceSnapshot(KindStockData, demoStock(101))
	assert.False(t, state.SetCachedSnapshot(KindStockData, demoStock(99), 4, now))
	stock, _ := state.StockData()
	assert.Equal(t, 101.0, *stock.CurrentPrice)
}

func TestViewWritesOnlyMountedBindings(t *testing.T) {
	view := NewView(BindingCurrentPrice)
	view.setGeneration(3)
	view.Write(BindingCurrentPrice, Text{Value: "$1.00"})
	view.Write(BindingMarketCap, Text{Value: "$2.00"})

	assert.Equal(t, []string{BindingCurrentPrice}, view.Bindings())
	assert.Equal(t, []string{BindingCurrentPrice}, view.drainWritten())
	assert.Empty(t, view.drainWritten())
	assert.Equal(t, uint64(3), view.Regions()[BindingCurrentPrice].Generation)
	_, ok := view.Read(BindingMarketCap)
	assert.False(t, ok)
}
