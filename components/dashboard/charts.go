package dashboard

import (
	"fmt"
	"sort"
)

// Chart mount points.
const (
	MountMainStockChart       = "main-stock-chart"
	MountPriceSparkline       = "price-sparkline"
	MountVolumeChart          = "volume-chart"
	MountSentimentChart       = "sentiment-chart"
	MountModelComparisonChart = "model-comparison-chart"
	MountPredictionChart      = "prediction-chart"

	// PrimaryChart is the only mount that accepts live ticks.
	PrimaryChart = MountMainStockChart
)

// ChartType selects the chart widget.
type ChartType string

const (
	ChartLine ChartType = "line"
	ChartBar  ChartType = "bar"
)

// Series is one named data series.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
	// Axis selects the y-axis (0 primary, 1 secondary).
	Axis   int  `json:"axis,omitempty"`
	Dashed bool `json:"dashed,omitempty"`
	Smooth bool `json:"smooth,omitempty"`
}

// Dataset is everything a backend needs to draw a chart.
type Dataset struct {
	Type       ChartType `json:"type"`
	Title      string    `json:"title,omitempty"`
	Labels     []string  `json:"labels"`
	Series     []Series  `json:"series"`
	YMin       *float64  `json:"y_min,omitempty"`
	YMax       *float64  `json:"y_max,omitempty"`
	SecondAxis string    `json:"second_axis,omitempty"`
	Height     string    `json:"height,omitempty"`
	// Compact hides axes, legend, and toolbox (sparklines).
	Compact bool `json:"compact,omitempty"`
}

// clone deep-copies the series values so handles never alias snapshot slices.
func (d Dataset) clone() Dataset {
	out := d
	out.Labels = append([]string(nil), d.Labels...)
	out.Series = make([]Series, len(d.Series))
	for i, s := range d.Series {
		s.Values = append([]float64(nil), s.Values...)
		out.Series[i] = s
	}
	return out
}

// ChartHandle is the live resource bound to one mount point.
type ChartHandle struct {
	ID       string
	MountID  string
	Dataset  Dataset
	Markup   string
	Revision int
	Animate  bool
}

// ChartBackend is the narrow contract any chart library has to satisfy.
type ChartBackend interface {
	CreateOrReplace(mountID string, data Dataset) (*ChartHandle, error)
	Destroy(h *ChartHandle) error
	MutateLastPoint(h *ChartHandle, value float64) error
}

// ChartRenderer owns the chart handles of one dashboard and keeps one per mount.
type ChartRenderer struct {
	backend ChartBackend
	surface Surface
	handles map[string]*ChartHandle
}

// NewChartRenderer builds a renderer writing chart markup into surface.
func NewChartRenderer(backend ChartBackend, surface Surface) *ChartRenderer {
	return &ChartRenderer{
		backend: backend,
		surface: surface,
		handles: make(map[string]*ChartHandle),
	}
}

// Render destroys any existing chart on mountID and draws data in its place.
func (r *ChartRenderer) Render(mountID string, data Dataset) error {
	if r.surface != nil && !r.surface.Has(mountID) {
		return nil
	}
	if existing, ok := r.handles[mountID]; ok {
		delete(r.handles, mountID)
		if err := r.backend.Destroy(existing); err != nil {
			return fmt.Errorf("dashboard: destroy chart %s: %w", mountID, err)
		}
	}
	handle, err := r.backend.CreateOrReplace(mountID, data.clone())
	if err != nil {
		return fmt.Errorf("dashboard: render chart %s: %w", mountID, err)
	}
	r.handles[mountID] = handle
	r.publish(handle)
	return nil
}

// Tick replaces the last point of the primary chart without animation.
func (r *ChartRenderer) Tick(value float64) error {
	handle, ok := r.handles[PrimaryChart]
	if !ok {
		return ErrNoChartHandle
	}
	if err := r.backend.MutateLastPoint(handle, value); err != nil {
		return fmt.Errorf("dashboard: tick chart %s: %w", PrimaryChart, err)
	}
	r.publish(handle)
	return nil
}

// Handle returns the live handle for mountID.
func (r *ChartRenderer) Handle(mountID string) (*ChartHandle, bool) {
	h, ok := r.handles[mountID]
	return h, ok
}

// Handles lists mounts with a live chart.
func (r *ChartRenderer) Handles() []string {
	out := make([]string, 0, len(r.handles))
	for mount := range r.handles {
		out = append(out, mount)
	}
	sort.Strings(out)
	return out
}

// DestroyAll releases every live chart.
func (r *ChartRenderer) DestroyAll() error {
	var first error
	for mount, handle := range r.handles {
		if err := r.backend.Destroy(handle); err != nil && first == nil {
			first = err
		}
		delete(r.handles, mount)
	}
	return first
}

func (r *ChartRenderer) publish(h *ChartHandle) {
	if r.surface == nil {
		return
	}
	r.surface.Write(h.MountID, ChartMarkup{
		HandleID: h.ID,
		Markup:   h.Markup,
		Revision: h.Revision,
		Animate:  h.Animate,
	})
}
