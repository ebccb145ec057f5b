package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ettle/strcase"
)

// Kind identifies one backend endpoint and the snapshot it returns.
type Kind string

const (
	KindStockData           Kind = "stock-data"
	KindPredictions         Kind = "predictions"
	KindModelPerformance    Kind = "model-performance"
	KindTechnicalIndicators Kind = "technical-indicators"
	KindCorrelationMatrix   Kind = "correlation-matrix"
	KindNewsSentiment       Kind = "news-sentiment"
	KindTradingSignals      Kind = "trading-signals"
)

// Kinds lists every snapshot kind in endpoint order.
func Kinds() []Kind {
	return []Kind{
		KindStockData,
		KindPredictions,
		KindModelPerformance,
		KindTechnicalIndicators,
		KindCorrelationMatrix,
		KindNewsSentiment,
		KindTradingSignals,
	}
}

// Path returns the backend endpoint path for the kind.
func (k Kind) Path() string {
	return "/api/" + string(k)
}

// Section is one of the six dashboard views. Exactly one is active at a time.
type Section string

const (
	SectionOverview    Section = "overview"
	SectionAnalysis    Section = "analysis"
	SectionModels      Section = "models"
	SectionPredictions Section = "predictions"
	SectionDataTables  Section = "data-tables"
	SectionInsights    Section = "insights"
)

// Sections returns the navigation order.
func Sections() []Section {
	return []Section{
		SectionOverview,
		SectionAnalysis,
		SectionModels,
		SectionPredictions,
		SectionDataTables,
		SectionInsights,
	}
}

// ParseSection normalizes user input ("Data Tables", "data_tables") into a known section.
func ParseSection(raw string) (Section, error) {
	section := Section(strcase.ToKebab(strings.TrimSpace(raw)))
	for _, known := range Sections() {
		if known == section {
			return section, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSection, raw)
}

// Title renders the section for navigation labels.
func (s Section) Title() string {
	words := strings.Split(strcase.ToKebab(string(s)), "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Request describes one Data Client call.
type Request struct {
	Kind   Kind
	Params map[string]string
}

// Days returns the prediction horizon carried by the request.
func (r Request) Days() int {
	if r.Params == nil {
		return 0
	}
	days, err := strconv.Atoi(r.Params["days"])
	if err != nil {
		return 0
	}
	return days
}

// key identifies the request for single-flight and cache bookkeeping.
func (r Request) key() string {
	if len(r.Params) == 0 {
		return string(r.Kind)
	}
	if days := r.Days(); days > 0 {
		return fmt.Sprintf("%s?days=%d", r.Kind, days)
	}
	return string(r.Kind)
}

// DataClient performs one backend fetch per call. Implementations must not retry or cache.
type DataClient interface {
	Fetch(ctx context.Context, req Request) (Snapshot, error)
}

// DataClientFunc adapts plain functions into DataClients.
type DataClientFunc func(ctx context.Context, req Request) (Snapshot, error)

// Fetch implements DataClient.
func (f DataClientFunc) Fetch(ctx context.Context, req Request) (Snapshot, error) {
	return f(ctx, req)
}

// FetchError is returned for any failed backend call.
type FetchError struct {
	Kind Kind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("dashboard: fetch %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ViewEvent is published whenever the view changes.
type ViewEvent struct {
	ID         string    `json:"id"`
	Section    Section   `json:"section"`
	Reason     string    `json:"reason"`
	Generation uint64    `json:"generation"`
	Bindings   []string  `json:"bindings,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// RefreshHook receives view change notifications (broadcast, notifications, etc.).
type RefreshHook interface {
	ViewUpdated(ctx context.Context, event ViewEvent) error
}

// RefreshHooks fans an event out to several hooks, returning the first error.
type RefreshHooks []RefreshHook

// ViewUpdated implements RefreshHook.
func (hooks RefreshHooks) ViewUpdated(ctx context.Context, event ViewEvent) error {
	var first error
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook.ViewUpdated(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Notification is a user-visible toast.
type Notification struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Section   Section   `json:"section,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
