package market

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/goliatone/go-stockdash/components/dashboard"
)

func TestHTTPClientFetchStockData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/stock-data" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("expected auth header, got %s", got)
		}
		_, _ = w.Write([]byte(`{"current_price":248.5,"price_change":-1.2,"chart_data":{"dates":["2024-01-01"],"prices":[248.5]}}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL + "/", APIKey: "secret"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	snap, err := client.Fetch(context.Background(), dashboard.Request{Kind: dashboard.KindStockData})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	stock, ok := snap.(*dashboard.StockData)
	if !ok {
		t.Fatalf("unexpected snapshot %T", snap)
	}
	require.NotNil(t, stock.CurrentPrice)
	assert.Equal(t, 248.5, *stock.CurrentPrice)
	assert.Equal(t, []string{"2024-01-01"}, stock.ChartData.Dates)
}

func TestHTTPClientForwardsPredictionDays(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/predictions", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("days"))
		_, _ = w.Write([]byte(`{"dates":["2024-01-06"],"lstm":[1],"arima":[2],"hybrid":[3],"confidence_intervals":{"upper":[4],"lower":[2]}}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	require.NoError(t, err)
	snap, err := client.Fetch(context.Background(), dashboard.Request{
		Kind:   dashboard.KindPredictions,
		Params: map[string]string{"days": "7"},
	})
	require.NoError(t, err)
	pred := snap.(*dashboard.Predictions)
	assert.Equal(t, []float64{3}, pred.Hybrid)
}

func TestHTTPClientReportsRemoteErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not trained", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	require.NoError(t, err)
	_, err = client.Fetch(context.Background(), dashboard.Request{Kind: dashboard.KindModelPerformance})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "model not trained")
}

func TestHTTPClientRejectsMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[1,2,3]`))
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	require.NoError(t, err)
	_, err = client.Fetch(context.Background(), dashboard.Request{Kind: dashboard.KindCorrelationMatrix})
	assert.Error(t, err)
}

func TestHTTPClientHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.Fetch(ctx, dashboard.Request{Kind: dashboard.KindStockData})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPClient(HTTPConfig{}); err == nil {
		t.Fatalf("expected error without base url")
	}
}

func TestHTTPClientTypedEndpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/model-performance":
			_, _ = w.Write([]byte(`{"LSTM":{"RMSE":5.0},"ARIMA":{"RMSE":6.3},"Hybrid":{"RMSE":4.3}}`))
		case "/api/predictions":
			assert.Equal(t, "3", r.URL.Query().Get("days"))
			_, _ = w.Write([]byte(`{"dates":["a","b","c"],"lstm":[1,2,3],"arima":[1,2,3],"hybrid":[1,2,3],"confidence_intervals":{"upper":[2,3,4],"lower":[0,1,2]}}`))
		case "/api/trading-signals":
			_, _ = w.Write([]byte(`{"signals":[{"type":"BUY","indicator":"RSI","strength":"Strong","message":"oversold"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	require.NoError(t, err)
	ctx := context.Background()

	models, err := client.ModelPerformance(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(models.Models))
	for _, m := range models.Models {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"LSTM", "ARIMA", "Hybrid"}, names)

	pred, err := client.Predictions(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, pred.Dates, 3)

	signals, err := client.TradingSignals(ctx)
	require.NoError(t, err)
	require.Len(t, signals.Signals, 1)
	assert.Equal(t, "BUY", signals.Signals[0].Type)

	_, err = client.NewsSentiment(ctx)
	assert.Error(t, err)
}
