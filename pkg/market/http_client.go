package market

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	dashboard "github.com/goliatone/go-stockdash/components/dashboard"
)

// HTTPConfig configures the HTTP market data client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPClient reads dashboard snapshots from the analytics backend over REST.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ dashboard.DataClient = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the backend at cfg.BaseURL.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("market: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("market: invalid base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{
		baseURL: base,
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// Fetch GETs the endpoint for req.Kind and decodes the matching snapshot.
func (c *HTTPClient) Fetch(ctx context.Context, req dashboard.Request) (dashboard.Snapshot, error) {
	body, err := c.get(ctx, c.endpoint(req))
	if err != nil {
		return nil, err
	}
	snap, err := dashboard.DecodeSnapshot(req.Kind, body)
	if err != nil {
		return nil, fmt.Errorf("market: %w", err)
	}
	return snap, nil
}

func (c *HTTPClient) endpoint(req dashboard.Request) string {
	target := c.baseURL + req.Kind.Path()
	if len(req.Params) == 0 {
		return target
	}
	query := url.Values{}
	for key, value := range req.Params {
		query.Set(key, value)
	}
	return target + "?" + query.Encode()
}

func (c *HTTPClient) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("market: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("market: remote error %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("market: read response: %w", err)
	}
	return body, nil
}

// StockData fetches the primary price snapshot.
func (c *HTTPClient) StockData(ctx context.Context) (*dashboard.StockData, error) {
	return fetchAs[*dashboard.StockData](ctx, c, dashboard.Request{Kind: dashboard.KindStockData})
}

// Predictions fetches forecasts for the next days trading days.
func (c *HTTPClient) Predictions(ctx context.Context, days int) (*dashboard.Predictions, error) {
	req := dashboard.Request{Kind: dashboard.KindPredictions}
	if days > 0 {
		req.Params = map[string]string{"days": strconv.Itoa(days)}
	}
	return fetchAs[*dashboard.Predictions](ctx, c, req)
}

// ModelPerformance fetches per-model error metrics.
func (c *HTTPClient) ModelPerformance(ctx context.Context) (*dashboard.ModelPerformance, error) {
	return fetchAs[*dashboard.ModelPerformance](ctx, c, dashboard.Request{Kind: dashboard.KindModelPerformance})
}

// TechnicalIndicators fetches the latest indicator readout.
func (c *HTTPClient) TechnicalIndicators(ctx context.Context) (*dashboard.TechnicalIndicators, error) {
	return fetchAs[*dashboard.TechnicalIndicators](ctx, c, dashboard.Request{Kind: dashboard.KindTechnicalIndicators})
}

// CorrelationMatrix fetches the feature correlation matrix.
func (c *HTTPClient) CorrelationMatrix(ctx context.Context) (*dashboard.CorrelationMatrix, error) {
	return fetchAs[*dashboard.CorrelationMatrix](ctx, c, dashboard.Request{Kind: dashboard.KindCorrelationMatrix})
}

// NewsSentiment fetches the sentiment series and headlines.
func (c *HTTPClient) NewsSentiment(ctx context.Context) (*dashboard.NewsSentiment, error) {
	return fetchAs[*dashboard.NewsSentiment](ctx, c, dashboard.Request{Kind: dashboard.KindNewsSentiment})
}

// TradingSignals fetches the active rule-based signals.
func (c *HTTPClient) TradingSignals(ctx context.Context) (*dashboard.TradingSignals, error) {
	return fetchAs[*dashboard.TradingSignals](ctx, c, dashboard.Request{Kind: dashboard.KindTradingSignals})
}

func fetchAs[T dashboard.Snapshot](ctx context.Context, c *HTTPClient, req dashboard.Request) (T, error) {
	var zero T
	snap, err := c.Fetch(ctx, req)
	if err != nil {
		return zero, err
	}
	typed, ok := snap.(T)
	if !ok {
		return zero, fmt.Errorf("market: unexpected snapshot %T for %s", snap, req.Kind)
	}
	return typed, nil
}
