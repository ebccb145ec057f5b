package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/goliatone/go-stockdash/components/dashboard"
)

func TestDemoDataIsDeterministic(t *testing.T) {
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a := DemoData(end, 60, 42)
	b := DemoData(end, 60, 42)
	assert.Equal(t, a, b)

	for _, kind := range dashboard.Kinds() {
		if _, ok := a[kind]; !ok {
			t.Fatalf("missing demo snapshot for %s", kind)
		}
	}
	stock := a[dashboard.KindStockData].(*dashboard.StockData)
	assert.Len(t, stock.ChartData.Prices, 60)
	assert.Len(t, stock.ChartData.Dates, 60)
	assert.Equal(t, "2024-02-29", stock.ChartData.Dates[59])
	assert.Equal(t, stock.ChartData.Prices[59], *stock.CurrentPrice)
}

func TestMockClientTrimsPredictionHorizon(t *testing.T) {
	client := NewMockClient(DemoData(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 30, 1))
	snap, err := client.Fetch(context.Background(), dashboard.Request{
		Kind:   dashboard.KindPredictions,
		Params: map[string]string{"days": "5"},
	})
	require.NoError(t, err)
	pred := snap.(*dashboard.Predictions)
	assert.Len(t, pred.Dates, 5)
	assert.Len(t, pred.Hybrid, 5)
	assert.Len(t, pred.ConfidenceIntervals.Lower, 5)
}

func TestMockClientReturnsCopies(t *testing.T) {
	client := NewMockClient(MockData{
		dashboard.KindCorrelationMatrix: &dashboard.CorrelationMatrix{Labels: []string{"Close"}, Data: [][]float64{{1}}},
	})
	first, err := client.Fetch(context.Background(), dashboard.Request{Kind: dashboard.KindCorrelationMatrix})
	require.NoError(t, err)
	first.(*dashboard.CorrelationMatrix).Data[0][0] = 0

	second, err := client.Fetch(context.Background(), dashboard.Request{Kind: dashboard.KindCorrelationMatrix})
	require.NoError(t, err)
	assert.Equal(t, 1.0, second.(*dashboard.CorrelationMatrix).Data[0][0])
}

func TestMockClientFailures(t *testing.T) {
	client := NewMockClient(nil)
	_, err := client.Fetch(context.Background(), dashboard.Request{Kind: dashboard.KindNewsSentiment})
	assert.Error(t, err)

	boom := errors.New("backend down")
	client.Set(&dashboard.NewsSentiment{Dates: []string{"2024-01-01"}, SentimentScores: []float64{0.4}})
	client.Fail(dashboard.KindNewsSentiment, boom)
	_, err = client.Fetch(context.Background(), dashboard.Request{Kind: dashboard.KindNewsSentiment})
	assert.ErrorIs(t, err, boom)

	client.Fail(dashboard.KindNewsSentiment, nil)
	snap, err := client.Fetch(context.Background(), dashboard.Request{Kind: dashboard.KindNewsSentiment})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.4}, snap.(*dashboard.NewsSentiment).SentimentScores)
}

func TestMockClientDrivesDashboard(t *testing.T) {
	client := NewMockClient(DemoData(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 45, 7))
	driver, err := dashboard.NewDriver(dashboard.Options{Client: client})
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })

	require.NoError(t, driver.Navigate(context.Background(), dashboard.SectionOverview))
	view := driver.View()
	assert.Equal(t, dashboard.SectionOverview, view.Section)
	assert.NotNil(t, view.Region(dashboard.BindingCurrentPrice))
	assert.NotEmpty(t, driver.ChartHandles())
}

func TestMockClientHoldGatesFetches(t *testing.T) {
	client := NewMockClient(DemoData(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 10, 3))
	release := client.Hold(dashboard.KindStockData)

	done := make(chan error, 1)
	go func() {
		_, err := client.Fetch(context.Background(), dashboard.Request{Kind: dashboard.KindStockData})
		done <- err
	}()
	select {
	case <-done:
		t.Fatalf("fetch returned while held")
	case <-time.After(20 * time.Millisecond):
	}
	release()
	release()
	require.NoError(t, <-done)
}
