package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Snapshot is the immutable result of one successful fetch.
type Snapshot interface {
	Kind() Kind
}

// StockData is the primary snapshot shared across sections.
type StockData struct {
	CurrentPrice   *float64  `json:"current_price,omitempty"`
	PriceChange    *float64  `json:"price_change,omitempty"`
	PriceChangePct *float64  `json:"price_change_pct,omitempty"`
	Volume         *float64  `json:"volume,omitempty"`
	High52w        *float64  `json:"high_52w,omitempty"`
	Low52w         *float64  `json:"low_52w,omitempty"`
	MarketCap      *float64  `json:"market_cap,omitempty"`
	RSI            *float64  `json:"rsi,omitempty"`
	Volatility     *float64  `json:"volatility,omitempty"`
	ChartData      ChartData `json:"chart_data"`
}

// ChartData carries the aligned daily series behind the price, volume, and history views.
type ChartData struct {
	Dates      []string  `json:"dates"`
	Prices     []float64 `json:"prices"`
	MA10       []float64 `json:"ma_10,omitempty"`
	MA30       []float64 `json:"ma_30,omitempty"`
	MA50       []float64 `json:"ma_50,omitempty"`
	Volumes    []float64 `json:"volumes,omitempty"`
	RSI        []float64 `json:"rsi,omitempty"`
	Highs      []float64 `json:"highs,omitempty"`
	Lows       []float64 `json:"lows,omitempty"`
	Volatility []float64 `json:"volatility,omitempty"`
}

func (*StockData) Kind() Kind { return KindStockData }

// withCurrentPrice returns a copy carrying a new current price and last close.
func (s *StockData) withCurrentPrice(price float64) *StockData {
	next := *s
	next.CurrentPrice = &price
	prices := append([]float64(nil), s.ChartData.Prices...)
	if len(prices) > 0 {
		prices[len(prices)-1] = price
	}
	next.ChartData.Prices = prices
	return &next
}

// Predictions holds the per-model forecasts for the configured horizon.
type Predictions struct {
	Dates               []string            `json:"dates"`
	LSTM                []float64           `json:"lstm"`
	ARIMA               []float64           `json:"arima"`
	Hybrid              []float64           `json:"hybrid"`
	ConfidenceIntervals ConfidenceIntervals `json:"confidence_intervals"`
}

// ConfidenceIntervals bounds the hybrid forecast.
type ConfidenceIntervals struct {
	Upper []float64 `json:"upper"`
	Lower []float64 `json:"lower"`
}

func (*Predictions) Kind() Kind { return KindPredictions }

// ModelMetrics are the error metrics reported for one model.
type ModelMetrics struct {
	Name string   `json:"-"`
	MSE  *float64 `json:"MSE,omitempty"`
	MAE  *float64 `json:"MAE,omitempty"`
	RMSE *float64 `json:"RMSE,omitempty"`
	R2   *float64 `json:"R2,omitempty"`
	MAPE *float64 `json:"MAPE,omitempty"`
}

// ModelPerformance maps model names to metrics, keeping the backend's key order.
type ModelPerformance struct {
	Models []ModelMetrics
}

func (*ModelPerformance) Kind() Kind { return KindModelPerformance }

// UnmarshalJSON decodes the name -> metrics object preserving key order.
func (m *ModelPerformance) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("dashboard: model performance must be an object")
	}
	models := make([]ModelMetrics, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("dashboard: model performance key %v", tok)
		}
		var metrics ModelMetrics
		if err := dec.Decode(&metrics); err != nil {
			return fmt.Errorf("dashboard: model %s: %w", name, err)
		}
		metrics.Name = name
		models = append(models, metrics)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	m.Models = models
	return nil
}

// MarshalJSON writes the models back as an ordered object.
func (m ModelPerformance) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, model := range m.Models {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(model.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(model)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// TechnicalIndicators is the latest indicator readout.
type TechnicalIndicators struct {
	RSI             *float64 `json:"rsi,omitempty"`
	Volatility      *float64 `json:"volatility,omitempty"`
	SupportLevel    *float64 `json:"support_level,omitempty"`
	ResistanceLevel *float64 `json:"resistance_level,omitempty"`
	MA10            *float64 `json:"ma_10,omitempty"`
	MA30            *float64 `json:"ma_30,omitempty"`
	MA50            *float64 `json:"ma_50,omitempty"`
	VolumeRatio     *float64 `json:"volume_ratio,omitempty"`
	PriceMomentum   *float64 `json:"price_momentum,omitempty"`
}

func (*TechnicalIndicators) Kind() Kind { return KindTechnicalIndicators }

// CorrelationMatrix is a square feature correlation matrix with values in [-1, 1].
type CorrelationMatrix struct {
	Labels []string    `json:"labels"`
	Data   [][]float64 `json:"data"`
}

func (*CorrelationMatrix) Kind() Kind { return KindCorrelationMatrix }

// NewsSentiment carries the daily sentiment series and latest headlines.
type NewsSentiment struct {
	Dates           []string  `json:"dates"`
	SentimentScores []float64 `json:"sentiment_scores"`
	NewsCount       []int     `json:"news_count,omitempty"`
	RecentHeadlines []string  `json:"recent_headlines"`
}

func (*NewsSentiment) Kind() Kind { return KindNewsSentiment }

// TradingSignal is one rule-based signal.
type TradingSignal struct {
	Type      string `json:"type"`
	Indicator string `json:"indicator"`
	Strength  string `json:"strength"`
	Message   string `json:"message"`
}

// TradingSignals wraps the active signals.
type TradingSignals struct {
	Signals []TradingSignal `json:"signals"`
}

func (*TradingSignals) Kind() Kind { return KindTradingSignals }

// NewSnapshot returns an empty snapshot value for decoding the given kind.
func NewSnapshot(kind Kind) (Snapshot, error) {
	switch kind {
	case KindStockData:
		return &StockData{}, nil
	case KindPredictions:
		return &Predictions{}, nil
	case KindModelPerformance:
		return &ModelPerformance{}, nil
	case KindTechnicalIndicators:
		return &TechnicalIndicators{}, nil
	case KindCorrelationMatrix:
		return &CorrelationMatrix{}, nil
	case KindNewsSentiment:
		return &NewsSentiment{}, nil
	case KindTradingSignals:
		return &TradingSignals{}, nil
	default:
		return nil, fmt.Errorf("dashboard: unknown snapshot kind %q", kind)
	}
}

// DecodeSnapshot decodes a backend payload into the snapshot for kind.
func DecodeSnapshot(kind Kind, data []byte) (Snapshot, error) {
	snap, err := NewSnapshot(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("dashboard: decode %s: %w", kind, err)
	}
	return snap, nil
}

// Float returns a pointer to v for optional snapshot fields.
func Float(v float64) *float64 { return &v }
