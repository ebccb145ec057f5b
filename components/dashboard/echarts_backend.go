package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/google/uuid"
)

const (
	defaultChartHeight     = "360px"
	defaultSparklineHeight = "60px"
	defaultChartCacheTTL   = 5 * time.Minute
)

// EChartsBackend renders chart handles as go-echarts markup.
type EChartsBackend struct {
	cache      RenderCache
	theme      string
	assetsHost string

	mu   sync.Mutex
	live map[string]string
}

// EChartsBackendOption customizes backend behavior.
type EChartsBackendOption func(*EChartsBackend)

// WithChartCache injects a render cache; nil disables caching.
func WithChartCache(cache RenderCache) EChartsBackendOption {
	return func(b *EChartsBackend) {
		b.cache = cache
	}
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsBackendOption {
	return func(b *EChartsBackend) {
		if theme != "" {
			b.theme = theme
		}
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) EChartsBackendOption {
	return func(b *EChartsBackend) {
		b.assetsHost = host
	}
}

// NewEChartsBackend builds the default chart backend.
func NewEChartsBackend(options ...EChartsBackendOption) *EChartsBackend {
	b := &EChartsBackend{
		cache: NewChartCache(defaultChartCacheTTL),
		theme: types.ThemeWesteros,
		live:  make(map[string]string),
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

// CreateOrReplace draws data on mountID, releasing whatever was live there.
func (b *EChartsBackend) CreateOrReplace(mountID string, data Dataset) (*ChartHandle, error) {
	if len(data.Series) == 0 {
		return nil, fmt.Errorf("dashboard: chart %s has no series", mountID)
	}
	handle := &ChartHandle{
		ID:      uuid.NewString(),
		MountID: mountID,
		Dataset: data,
		Animate: true,
	}
	markup, err := b.markup(handle)
	if err != nil {
		return nil, err
	}
	handle.Markup = markup
	b.mu.Lock()
	b.live[mountID] = handle.ID
	b.mu.Unlock()
	return handle, nil
}

// Destroy releases the handle. Destroying a stale handle is a no-op.
func (b *EChartsBackend) Destroy(h *ChartHandle) error {
	if h == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.live[h.MountID] == h.ID {
		delete(b.live, h.MountID)
	}
	return nil
}

// MutateLastPoint rewrites the last value of the first series and redraws without animation.
func (b *EChartsBackend) MutateLastPoint(h *ChartHandle, value float64) error {
	if h == nil || len(h.Dataset.Series) == 0 {
		return ErrNoChartHandle
	}
	b.mu.Lock()
	live := b.live[h.MountID] == h.ID
	b.mu.Unlock()
	if !live {
		return fmt.Errorf("dashboard: chart %s handle %s was destroyed", h.MountID, h.ID)
	}
	values := h.Dataset.Series[0].Values
	if len(values) == 0 {
		return fmt.Errorf("dashboard: chart %s has no points", h.MountID)
	}
	values[len(values)-1] = value
	h.Revision++
	h.Animate = false
	markup, err := b.markup(h)
	if err != nil {
		return err
	}
	h.Markup = markup
	return nil
}

// Live reports the handle currently bound to mountID.
func (b *EChartsBackend) Live(mountID string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.live[mountID]
	return id, ok
}

func (b *EChartsBackend) markup(h *ChartHandle) (string, error) {
	render := func() (string, error) {
		return b.render(h.MountID, h.Dataset)
	}
	if b.cache == nil {
		return render()
	}
	return b.cache.GetOrRender(h.MountID, configHash(h.Dataset), render)
}

func (b *EChartsBackend) render(mountID string, data Dataset) (string, error) {
	switch data.Type {
	case ChartBar:
		return b.renderBarChart(mountID, data)
	case ChartLine, "":
		return b.renderLineChart(mountID, data)
	default:
		return "", fmt.Errorf("dashboard: unsupported chart type: %s", data.Type)
	}
}

func (b *EChartsBackend) renderBarChart(mountID string, data Dataset) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(b.globalChartOptions(mountID, data)...)
	if data.SecondAxis != "" {
		bar.ExtendYAxis(opts.YAxis{Name: data.SecondAxis})
	}
	bar.SetXAxis(data.Labels)
	for _, s := range data.Series {
		bar.AddSeries(s.Name, toBarData(data.Labels, s.Values), charts.WithBarChartOpts(opts.BarChart{YAxisIndex: s.Axis}))
	}
	return renderChart(bar)
}

func (b *EChartsBackend) renderLineChart(mountID string, data Dataset) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(b.globalChartOptions(mountID, data)...)
	line.SetXAxis(data.Labels)
	for _, s := range data.Series {
		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(s.Smooth)}),
		}
		if s.Dashed {
			seriesOpts = append(seriesOpts, charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))
		}
		line.AddSeries(s.Name, toLineData(data.Labels, s.Values), seriesOpts...)
	}
	return renderChart(line)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (b *EChartsBackend) globalChartOptions(mountID string, data Dataset) []charts.GlobalOpts {
	height := data.Height
	if height == "" {
		height = defaultChartHeight
		if data.Compact {
			height = defaultSparklineHeight
		}
	}
	initOpts := opts.Initialization{
		ChartID: "chart_" + strings.ReplaceAll(mountID, "-", ""),
		Theme:   b.theme,
		Width:   "100%",
		Height:  height,
	}
	if b.assetsHost != "" {
		initOpts.AssetsHost = b.assetsHost
	}
	yAxis := opts.YAxis{Scale: opts.Bool(true)}
	if data.YMin != nil {
		yAxis.Min = *data.YMin
	}
	if data.YMax != nil {
		yAxis.Max = *data.YMax
	}
	if data.Compact {
		yAxis.Show = opts.Bool(false)
		return []charts.GlobalOpts{
			charts.WithInitializationOpts(initOpts),
			charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
			charts.WithXAxisOpts(opts.XAxis{Show: opts.Bool(false)}),
			charts.WithYAxisOpts(yAxis),
		}
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: data.Title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithToolboxOpts(opts.Toolbox{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(yAxis),
	}
}

func toBarData(labels []string, values []float64) []opts.BarData {
	data := make([]opts.BarData, len(values))
	for i, value := range values {
		data[i] = opts.BarData{Name: labelAt(labels, i), Value: value}
	}
	return data
}

func toLineData(labels []string, values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, value := range values {
		data[i] = opts.LineData{Name: labelAt(labels, i), Value: value}
	}
	return data
}

func labelAt(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return ""
}
