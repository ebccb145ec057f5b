package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"
)

func demoStock(price float64) *StockData {
	return &StockData{
		CurrentPrice:   Float(price),
		PriceChange:    Float(5),
		PriceChangePct: Float(4.76),
		Volume:         Float(87358900),
		High52w:        Float(299.29),
		Low52w:         Float(138.8),
		MarketCap:      Float(1.25e9),
		ChartData: ChartData{
			Dates:   []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"},
			Prices:  []float64{100, 102, 101, 105, price},
			MA10:    []float64{99, 100, 101, 102, 103},
			MA30:    []float64{98, 99, 100, 101, 102},
			Volumes: []float64{1000, 2500, 1800, 3200, 87358900},
			RSI:     []float64{0, 45, 55, 60, 72},
		},
	}
}

func demoIndicators() *TechnicalIndicators {
	return &TechnicalIndicators{
		RSI:             Float(72.5),
		Volatility:      Float(0.031),
		SupportLevel:    Float(180),
		ResistanceLevel: Float(260),
	}
}

func demoSignals() *TradingSignals {
	return &TradingSignals{Signals: []TradingSignal{
		{Type: "SELL", Indicator: "RSI", Strength: "Strong", Message: "RSI indicates overbought conditions"},
	}}
}

func demoModels() *ModelPerformance {
	return &ModelPerformance{Models: []ModelMetrics{
		{Name: "LSTM", MSE: Float(25.4), MAE: Float(3.9), RMSE: Float(5.04), R2: Float(0.12), MAPE: Float(2.1)},
		{Name: "ARIMA", MSE: Float(40.2), MAE: Float(5.1), RMSE: Float(6.34), R2: Float(-0.1), MAPE: Float(3.3)},
		{Name: "Hybrid", MSE: Float(18.7), MAE: Float(3.2), RMSE: Float(4.32), R2: Float(0.35), MAPE: Float(1.8)},
	}}
}

func demoPredictions(days int) *Predictions {
	p := &Predictions{}
	for i := 0; i < days; i++ {
		p.Dates = append(p.Dates, time.Date(2024, 1, 6+i, 0, 0, 0, 0, time.UTC).Format(time.DateOnly))
		p.LSTM = append(p.LSTM, 110+float64(i))
		p.ARIMA = append(p.ARIMA, 109+float64(i))
		p.Hybrid = append(p.Hybrid, 111+float64(i))
		p.ConfidenceIntervals.Upper = append(p.ConfidenceIntervals.Upper, 115+float64(i))
		p.ConfidenceIntervals.Lower = append(p.ConfidenceIntervals.Lower, 105+float64(i))
	}
	return p
}

func demoCorrelation() *CorrelationMatrix {
	return &CorrelationMatrix{
		Labels: []string{"Close", "Volume"},
		Data:   [][]float64{{1, 0.2}, {0.2, 1}},
	}
}

func demoSentiment() *NewsSentiment {
	return &NewsSentiment{
		Dates:           []string{"2024-01-04", "2024-01-05"},
		SentimentScores: []float64{0.1, -0.3},
		RecentHeadlines: []string{"Deliveries beat estimates", "New factory announced"},
	}
}

func demoResults() Results {
	return Results{
		KindStockData:           demoStock(110),
		KindTechnicalIndicators: demoIndicators(),
		KindTradingSignals:      demoSignals(),
		KindModelPerformance:    demoModels(),
		KindPredictions:         demoPredictions(5),
		KindCorrelationMatrix:   demoCorrelation(),
		KindNewsSentiment:       demoSentiment(),
	}
}

// fakeClient serves fixtures, counts calls, and can hold a kind until its gate closes.
type fakeClient struct {
	mu       sync.Mutex
	snaps    map[Kind]Snapshot
	errs     map[Kind]error
	gates    map[Kind]chan struct{}
	calls    map[Kind]int
	requests []Request
}

func newFakeClient() *fakeClient {
	c := &fakeClient{
		snaps: make(map[Kind]Snapshot),
		errs:  make(map[Kind]error),
		gates: make(map[Kind]chan struct{}),
		calls: make(map[Kind]int),
	}
	for kind, snap := range demoResults() {
		c.snaps[kind] = snap
	}
	return c
}

func (c *fakeClient) Fetch(ctx context.Context, req Request) (Snapshot, error) {
	c.mu.Lock()
	c.calls[req.Kind]++
	c.requests = append(c.requests, req)
	gate := c.gates[req.Kind]
	c.mu.Unlock()
	if gate != nil {
		<-gate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.errs[req.Kind]; err != nil {
		return nil, err
	}
	if req.Kind == KindPredictions && req.Days() > 0 {
		return demoPredictions(req.Days()), nil
	}
	snap, ok := c.snaps[req.Kind]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s", req.Kind)
	}
	return snap, nil
}

func (c *fakeClient) set(kind Kind, snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps[kind] = snap
}

func (c *fakeClient) fail(kind Kind, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs[kind] = err
}

func (c *fakeClient) hold(kind Kind) chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	gate := make(chan struct{})
	c.gates[kind] = gate
	return gate
}

func (c *fakeClient) release(kind Kind) {
	c.mu.Lock()
	gate := c.gates[kind]
	delete(c.gates, kind)
	c.mu.Unlock()
	if gate != nil {
		close(gate)
	}
}

func (c *fakeClient) callCount(kind Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[kind]
}

func (c *fakeClient) lastRequest(kind Kind) (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.requests) - 1; i >= 0; i-- {
		if c.requests[i].Kind == kind {
			return c.requests[i], true
		}
	}
	return Request{}, false
}

// fakeBackend tracks live handles per mount.
type fakeBackend struct {
	mu        sync.Mutex
	next      int
	live      map[string]*ChartHandle
	created   int
	destroyed int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{live: make(map[string]*ChartHandle)}
}

func (b *fakeBackend) CreateOrReplace(mountID string, data Dataset) (*ChartHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.created++
	h := &ChartHandle{ID: fmt.Sprintf("h-%d", b.next), MountID: mountID, Dataset: data, Markup: "<div></div>", Animate: true}
	b.live[mountID] = h
	return h, nil
}

func (b *fakeBackend) Destroy(h *ChartHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyed++
	if cur, ok := b.live[h.MountID]; ok && cur.ID == h.ID {
		delete(b.live, h.MountID)
	}
	return nil
}

func (b *fakeBackend) MutateLastPoint(h *ChartHandle, value float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	values := h.Dataset.Series[0].Values
	values[len(values)-1] = value
	h.Revision++
	h.Animate = false
	return nil
}

func (b *fakeBackend) liveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live)
}

// recordingHook keeps every published event.
type recordingHook struct {
	mu     sync.Mutex
	events []ViewEvent
}

func (h *recordingHook) ViewUpdated(_ context.Context, event ViewEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHook) count(reason string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, e := range h.events {
		if e.Reason == reason {
			n++
		}
	}
	return n
}
