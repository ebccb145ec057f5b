package market

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	dashboard "github.com/goliatone/go-stockdash/components/dashboard"
)

// MockData seeds deterministic snapshots for tests or local demos.
type MockData map[dashboard.Kind]dashboard.Snapshot

// MockClient implements dashboard.DataClient using in-memory fixtures.
type MockClient struct {
	mu    sync.RWMutex
	data  MockData
	errs  map[dashboard.Kind]error
	gates map[dashboard.Kind]chan struct{}
}

var _ dashboard.DataClient = (*MockClient)(nil)

// NewMockClient builds a mock client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	c := &MockClient{
		data:  MockData{},
		errs:  map[dashboard.Kind]error{},
		gates: map[dashboard.Kind]chan struct{}{},
	}
	for kind, snap := range data {
		c.data[kind] = snap
	}
	return c
}

// Set replaces the fixture for kind.
func (c *MockClient) Set(snap dashboard.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[snap.Kind()] = snap
}

// Fail makes every fetch of kind return err until cleared with a nil err.
func (c *MockClient) Fail(kind dashboard.Kind, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.errs, kind)
		return
	}
	c.errs[kind] = err
}

// Hold blocks fetches of kind until the returned release func is called.
func (c *MockClient) Hold(kind dashboard.Kind) (release func()) {
	gate := make(chan struct{})
	c.mu.Lock()
	c.gates[kind] = gate
	c.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			if c.gates[kind] == gate {
				delete(c.gates, kind)
			}
			c.mu.Unlock()
			close(gate)
		})
	}
}

// Fetch returns a copy of the configured snapshot. Prediction requests are
// trimmed to the requested horizon.
func (c *MockClient) Fetch(ctx context.Context, req dashboard.Request) (dashboard.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	gate := c.gates[req.Kind]
	c.mu.RUnlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.errs[req.Kind]; err != nil {
		return nil, err
	}
	snap, ok := c.data[req.Kind]
	if !ok {
		return nil, fmt.Errorf("market: no mock data for %s", req.Kind)
	}
	out, err := clone(snap)
	if err != nil {
		return nil, err
	}
	if pred, ok := out.(*dashboard.Predictions); ok {
		if days := req.Days(); days > 0 {
			trimPredictions(pred, days)
		}
	}
	return out, nil
}

func clone(snap dashboard.Snapshot) (dashboard.Snapshot, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("market: clone %s: %w", snap.Kind(), err)
	}
	return dashboard.DecodeSnapshot(snap.Kind(), data)
}

func trimPredictions(p *dashboard.Predictions, days int) {
	cut := func(values []float64) []float64 {
		if len(values) > days {
			return values[:days]
		}
		return values
	}
	if len(p.Dates) > days {
		p.Dates = p.Dates[:days]
	}
	p.LSTM = cut(p.LSTM)
	p.ARIMA = cut(p.ARIMA)
	p.Hybrid = cut(p.Hybrid)
	p.ConfidenceIntervals.Upper = cut(p.ConfidenceIntervals.Upper)
	p.ConfidenceIntervals.Lower = cut(p.ConfidenceIntervals.Lower)
}

// DemoData generates a plausible price history ending the day before end,
// plus a matching set of indicator, model, and sentiment snapshots. The same
// seed always produces the same data.
func DemoData(end time.Time, days int, seed uint64) MockData {
	if days < 2 {
		days = 2
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	start := end.UTC().Truncate(24*time.Hour).AddDate(0, 0, -days)

	chart := dashboard.ChartData{}
	price := 240.0
	for i := 0; i < days; i++ {
		price = math.Max(1, price*(1+(rng.Float64()-0.5)*0.06))
		spread := price * rng.Float64() * 0.03
		chart.Dates = append(chart.Dates, start.AddDate(0, 0, i).Format(time.DateOnly))
		chart.Prices = append(chart.Prices, round2(price))
		chart.Highs = append(chart.Highs, round2(price+spread))
		chart.Lows = append(chart.Lows, round2(price-spread))
		chart.Volumes = append(chart.Volumes, math.Round(60e6+rng.Float64()*60e6))
		chart.Volatility = append(chart.Volatility, round4(0.01+rng.Float64()*0.04))
		chart.RSI = append(chart.RSI, round2(20+rng.Float64()*60))
		chart.MA10 = append(chart.MA10, movingAverage(chart.Prices, 10))
		chart.MA30 = append(chart.MA30, movingAverage(chart.Prices, 30))
		chart.MA50 = append(chart.MA50, movingAverage(chart.Prices, 50))
	}

	last := chart.Prices[days-1]
	prev := chart.Prices[days-2]
	rsi := chart.RSI[days-1]
	volatility := chart.Volatility[days-1]
	stock := &dashboard.StockData{
		CurrentPrice:   dashboard.Float(last),
		PriceChange:    dashboard.Float(round2(last - prev)),
		PriceChangePct: dashboard.Float(round2((last - prev) / prev * 100)),
		Volume:         dashboard.Float(chart.Volumes[days-1]),
		High52w:        dashboard.Float(maxOf(chart.Highs)),
		Low52w:         dashboard.Float(minOf(chart.Lows)),
		MarketCap:      dashboard.Float(last * 3.19e9),
		RSI:            dashboard.Float(rsi),
		Volatility:     dashboard.Float(volatility),
		ChartData:      chart,
	}

	indicators := &dashboard.TechnicalIndicators{
		RSI:             dashboard.Float(rsi),
		Volatility:      dashboard.Float(volatility),
		SupportLevel:    dashboard.Float(minOf(chart.Lows)),
		ResistanceLevel: dashboard.Float(maxOf(chart.Highs)),
		MA10:            dashboard.Float(chart.MA10[days-1]),
		MA30:            dashboard.Float(chart.MA30[days-1]),
		MA50:            dashboard.Float(chart.MA50[days-1]),
		VolumeRatio:     dashboard.Float(round2(0.5 + rng.Float64())),
		PriceMomentum:   dashboard.Float(round2((last - chart.Prices[0]) / chart.Prices[0] * 100)),
	}

	predictions := &dashboard.Predictions{}
	drift := last
	for i := 0; i < 30; i++ {
		drift *= 1 + (rng.Float64()-0.48)*0.02
		predictions.Dates = append(predictions.Dates, end.UTC().AddDate(0, 0, i+1).Format(time.DateOnly))
		predictions.LSTM = append(predictions.LSTM, round2(drift*(1+(rng.Float64()-0.5)*0.01)))
		predictions.ARIMA = append(predictions.ARIMA, round2(drift*(1+(rng.Float64()-0.5)*0.015)))
		predictions.Hybrid = append(predictions.Hybrid, round2(drift))
		band := drift * (0.02 + float64(i)*0.002)
		predictions.ConfidenceIntervals.Upper = append(predictions.ConfidenceIntervals.Upper, round2(drift+band))
		predictions.ConfidenceIntervals.Lower = append(predictions.ConfidenceIntervals.Lower, round2(drift-band))
	}

	models := &dashboard.ModelPerformance{}
	for _, name := range []string{"LSTM", "ARIMA", "Hybrid"} {
		mse := 10 + rng.Float64()*40
		models.Models = append(models.Models, dashboard.ModelMetrics{
			Name: name,
			MSE:  dashboard.Float(round4(mse)),
			MAE:  dashboard.Float(round4(math.Sqrt(mse) * 0.8)),
			RMSE: dashboard.Float(round4(math.Sqrt(mse))),
			R2:   dashboard.Float(round4(rng.Float64()*1.2 - 0.2)),
			MAPE: dashboard.Float(round4(1 + rng.Float64()*4)),
		})
	}

	labels := []string{"Close", "Volume", "RSI", "Volatility", "Sentiment"}
	matrix := make([][]float64, len(labels))
	for i := range matrix {
		matrix[i] = make([]float64, len(labels))
	}
	for i := range labels {
		matrix[i][i] = 1
		for j := i + 1; j < len(labels); j++ {
			v := round2(rng.Float64()*2 - 1)
			matrix[i][j], matrix[j][i] = v, v
		}
	}

	sentiment := &dashboard.NewsSentiment{}
	for i := max(0, days-14); i < days; i++ {
		sentiment.Dates = append(sentiment.Dates, chart.Dates[i])
		sentiment.SentimentScores = append(sentiment.SentimentScores, round2(rng.Float64()*2-1))
		sentiment.NewsCount = append(sentiment.NewsCount, 1+rng.IntN(20))
	}
	sentiment.RecentHeadlines = []string{
		"Quarterly deliveries beat analyst estimates",
		"New gigafactory expansion announced",
		"Regulators open review of driver assistance features",
		"Energy storage deployments hit record high",
		"Price cuts announced across model lineup",
	}

	signals := &dashboard.TradingSignals{}
	switch {
	case rsi > 70:
		signals.Signals = append(signals.Signals, dashboard.TradingSignal{Type: "SELL", Indicator: "RSI", Strength: "Strong", Message: "RSI indicates overbought conditions"})
	case rsi < 30:
		signals.Signals = append(signals.Signals, dashboard.TradingSignal{Type: "BUY", Indicator: "RSI", Strength: "Strong", Message: "RSI indicates oversold conditions"})
	}
	if chart.MA10[days-1] > chart.MA30[days-1] {
		signals.Signals = append(signals.Signals, dashboard.TradingSignal{Type: "BUY", Indicator: "MA Crossover", Strength: "Medium", Message: "Short-term average above long-term average"})
	} else {
		signals.Signals = append(signals.Signals, dashboard.TradingSignal{Type: "SELL", Indicator: "MA Crossover", Strength: "Medium", Message: "Short-term average below long-term average"})
	}

	return MockData{
		dashboard.KindStockData:           stock,
		dashboard.KindTechnicalIndicators: indicators,
		dashboard.KindPredictions:         predictions,
		dashboard.KindModelPerformance:    models,
		dashboard.KindCorrelationMatrix:   &dashboard.CorrelationMatrix{Labels: labels, Data: matrix},
		dashboard.KindNewsSentiment:       sentiment,
		dashboard.KindTradingSignals:      signals,
	}
}

func movingAverage(values []float64, window int) float64 {
	if len(values) < window {
		window = len(values)
	}
	sum := 0.0
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return round2(sum / float64(window))
}

func maxOf(values []float64) float64 {
	out := values[0]
	for _, v := range values[1:] {
		out = math.Max(out, v)
	}
	return out
}

func minOf(values []float64) float64 {
	out := values[0]
	for _, v := range values[1:] {
		out = math.Min(out, v)
	}
	return out
}

func round2(v float64) float64 { return roundTo(v, 2) }
func round4(v float64) float64 { return roundTo(v, 4) }

func roundTo(v float64, places int) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	return f
}
