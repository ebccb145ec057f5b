package dashboard

import (
	"sort"
	"time"
)

// Surface is the set of named regions renderers write into.
type Surface interface {
	Has(binding string) bool
	Write(binding string, content any)
	Read(binding string) (any, bool)
}

// Region is one rendered binding.
type Region struct {
	Binding    string    `json:"binding"`
	Content    any       `json:"content,omitempty"`
	Generation uint64    `json:"generation"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// View is the in-memory Surface backing one dashboard instance. Only bindings that
// were mounted exist; writes to anything else are dropped.
type View struct {
	regions    map[string]*Region
	generation uint64
	now        func() time.Time
	written    []string
}

// NewView mounts the given bindings.
func NewView(bindings ...string) *View {
	v := &View{
		regions: make(map[string]*Region, len(bindings)),
		now:     time.Now,
	}
	for _, binding := range bindings {
		v.Mount(binding)
	}
	return v
}

// Mount adds a binding to the view.
func (v *View) Mount(binding string) {
	if binding == "" {
		return
	}
	if _, ok := v.regions[binding]; !ok {
		v.regions[binding] = &Region{Binding: binding}
	}
}

// Has reports whether binding is mounted.
func (v *View) Has(binding string) bool {
	_, ok := v.regions[binding]
	return ok
}

// Write replaces the content of a mounted binding.
func (v *View) Write(binding string, content any) {
	region, ok := v.regions[binding]
	if !ok {
		return
	}
	region.Content = content
	region.Generation = v.generation
	region.UpdatedAt = v.now()
	v.written = append(v.written, binding)
}

// Read returns the content of a binding.
func (v *View) Read(binding string) (any, bool) {
	region, ok := v.regions[binding]
	if !ok || region.Content == nil {
		return nil, false
	}
	return region.Content, true
}

// Bindings lists mounted bindings in lexical order.
func (v *View) Bindings() []string {
	out := make([]string, 0, len(v.regions))
	for binding := range v.regions {
		out = append(out, binding)
	}
	sort.Strings(out)
	return out
}

// Regions returns a copy of every region keyed by binding.
func (v *View) Regions() map[string]Region {
	out := make(map[string]Region, len(v.regions))
	for binding, region := range v.regions {
		out[binding] = *region
	}
	return out
}

func (v *View) setGeneration(gen uint64) {
	v.generation = gen
}

// drainWritten returns the bindings written since the last drain.
func (v *View) drainWritten() []string {
	out := v.written
	v.written = nil
	return out
}

// Text is a single formatted value with an optional styling class.
type Text struct {
	Value string `json:"value"`
	Class string `json:"class,omitempty"`
}

// Meter is an indicator bar fill.
type Meter struct {
	Percent float64 `json:"percent"`
	Class   string  `json:"class,omitempty"`
}

// Column is a table header.
type Column struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Sortable bool   `json:"sortable"`
}

// Cell is one rendered table cell.
type Cell struct {
	Text  string `json:"text"`
	Class string `json:"class,omitempty"`
	Badge bool   `json:"badge,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// Row is a table row. Index is the row's position when the table was built.
type Row struct {
	Index int    `json:"index"`
	Class string `json:"class,omitempty"`
	Cells []Cell `json:"cells"`
}

// Table is a tabular region with its current sort state.
type Table struct {
	Columns   []Column      `json:"columns"`
	Rows      []Row         `json:"rows"`
	SortBy    int           `json:"sort_by"`
	SortOrder SortDirection `json:"sort_order,omitempty"`
}

// CorrelationCell is one cell of the correlation grid.
type CorrelationCell struct {
	Row     string  `json:"row"`
	Column  string  `json:"column"`
	Value   float64 `json:"value"`
	Text    string  `json:"text"`
	Title   string  `json:"title"`
	Class   string  `json:"class"`
	Opacity float64 `json:"opacity"`
}

// CorrelationGrid is the rendered correlation heatmap.
type CorrelationGrid struct {
	Labels []string            `json:"labels"`
	Cells  [][]CorrelationCell `json:"cells"`
}

// Cell returns the cell at (row, column) by label.
func (g CorrelationGrid) Cell(row, column string) (CorrelationCell, bool) {
	for i, label := range g.Labels {
		if label != row || i >= len(g.Cells) {
			continue
		}
		for _, cell := range g.Cells[i] {
			if cell.Column == column {
				return cell, true
			}
		}
	}
	return CorrelationCell{}, false
}

// SignalItem is one rendered trading signal.
type SignalItem struct {
	Type      string `json:"type"`
	Class     string `json:"class"`
	Indicator string `json:"indicator"`
	Strength  string `json:"strength"`
	Message   string `json:"message"`
}

// SignalList renders the trading signals panel; Empty is shown when there are none.
type SignalList struct {
	Items []SignalItem `json:"items"`
	Empty string       `json:"empty,omitempty"`
}

// Headlines is the recent news list.
type Headlines struct {
	Items []string `json:"items"`
}

// Insight is one icon + title + body block.
type Insight struct {
	Icon       string `json:"icon"`
	Title      string `json:"title"`
	TitleClass string `json:"title_class,omitempty"`
	Body       string `json:"body"`
}

// InsightList is an insight panel.
type InsightList struct {
	Items []Insight `json:"items"`
}

// ChartMarkup is what a chart mount displays.
type ChartMarkup struct {
	HandleID string `json:"handle_id"`
	Markup   string `json:"markup"`
	Revision int    `json:"revision"`
	Animate  bool   `json:"animate"`
}
