package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultRefreshInterval drives auto-refresh of the active section.
	DefaultRefreshInterval = 5 * time.Minute
	// DefaultLiveInterval drives the simulated live price tick.
	DefaultLiveInterval = 30 * time.Second

	maxNotifications = 20
	reasonLiveTick   = "live-tick"
)

// Options configures a Driver.
type Options struct {
	Client          DataClient
	Charts          ChartBackend
	Registry        *Registry
	Manifest        *ViewManifest
	Hook            RefreshHook
	Telemetry       Telemetry
	Logger          *zerolog.Logger
	Clock           clockwork.Clock
	RefreshInterval time.Duration
	LiveInterval    time.Duration
	// PriceSource returns the next simulated price from the last one.
	PriceSource    func(last float64) float64
	Company        string
	PredictionDays int
	Timeframe      int
}

// Driver is the navigation and auto-refresh loop of one dashboard instance. Its mutex
// serializes every access to view state and renderers; fetches run outside it.
type Driver struct {
	mu         sync.Mutex
	state      *ViewState
	view       *View
	charts     *ChartRenderer
	controller *SectionController
	registry   *Registry
	flight     singleflight.Group

	hook      RefreshHook
	telemetry Telemetry
	logger    zerolog.Logger
	clock     clockwork.Clock

	refreshInterval time.Duration
	liveInterval    time.Duration
	price           func(float64) float64
	company         string

	live          *tickerLoop
	notifications []Notification
	visible       bool
}

// NewDriver wires a driver with safe defaults.
func NewDriver(opts Options) (*Driver, error) {
	if opts.Client == nil {
		return nil, errNilDataClient
	}
	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	manifest := opts.Manifest
	if manifest == nil {
		manifest = DefaultViewManifest(registry)
	}
	view, err := manifest.NewView(registry)
	if err != nil {
		return nil, err
	}
	backend := opts.Charts
	if backend == nil {
		backend = NewEChartsBackend()
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	view.now = clock.Now
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	refresh := opts.RefreshInterval
	if refresh <= 0 {
		refresh = DefaultRefreshInterval
	}
	live := opts.LiveInterval
	if live <= 0 {
		live = DefaultLiveInterval
	}
	price := opts.PriceSource
	if price == nil {
		price = RandomWalk
	}

	state := NewViewState()
	state.SetPredictionDays(opts.PredictionDays)
	state.SetTimeframe(opts.Timeframe)

	charts := NewChartRenderer(backend, view)
	return &Driver{
		state:           state,
		view:            view,
		charts:          charts,
		controller:      NewSectionController(opts.Client, registry, charts, view),
		registry:        registry,
		hook:            opts.Hook,
		telemetry:       normalizeTelemetry(opts.Telemetry),
		logger:          logger.With().Str("component", "driver").Logger(),
		clock:           clock,
		refreshInterval: refresh,
		liveInterval:    live,
		price:           price,
		company:         opts.Company,
		visible:         true,
	}, nil
}

// Navigate makes section active and loads it.
func (d *Driver) Navigate(ctx context.Context, section Section) error {
	plan, err := d.controller.Plan(section)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.state.SetActiveSection(section)
	gen, pc := d.beginLoad()
	d.mu.Unlock()
	return d.runLoad(ctx, plan, gen, pc, "navigate")
}

// Refresh reloads the active section. It is not held back by an in-flight load;
// a repeat load of the same section joins the one already running.
func (d *Driver) Refresh(ctx context.Context) error {
	d.mu.Lock()
	section := d.state.ActiveSection()
	d.mu.Unlock()
	plan, err := d.controller.Plan(section)
	if err != nil {
		return err
	}
	d.mu.Lock()
	gen, pc := d.beginLoad()
	d.mu.Unlock()
	return d.runLoad(ctx, plan, gen, pc, "refresh")
}

// AutoRefreshTick reloads the active section unless a load is already in flight.
// It reports whether a load ran.
func (d *Driver) AutoRefreshTick(ctx context.Context) bool {
	d.mu.Lock()
	if d.state.IsLoading() {
		d.mu.Unlock()
		d.logger.Debug().Msg("auto-refresh skipped, load in flight")
		return false
	}
	plan, err := d.controller.Plan(d.state.ActiveSection())
	if err != nil {
		d.mu.Unlock()
		return false
	}
	gen, pc := d.beginLoad()
	d.mu.Unlock()
	if err := d.runLoad(ctx, plan, gen, pc, "auto-refresh"); err != nil {
		d.logger.Warn().Err(err).Msg("auto-refresh failed")
	}
	return true
}

// GeneratePredictions stores a new horizon and reloads the predictions section. While
// another section is active only the horizon is stored; the next predictions load uses it.
func (d *Driver) GeneratePredictions(ctx context.Context, days int) error {
	plan, err := d.controller.Plan(SectionPredictions)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.state.SetPredictionDays(days)
	if active := d.state.ActiveSection(); active != SectionPredictions {
		d.mu.Unlock()
		d.logger.Debug().Str("active", string(active)).Int("days", days).Msg("prediction horizon stored for next load")
		return nil
	}
	gen, pc := d.beginLoad()
	d.mu.Unlock()
	return d.runLoad(ctx, plan, gen, pc, "predictions")
}

// SetTimeframe limits the main chart to the trailing points and reloads overview when active.
func (d *Driver) SetTimeframe(ctx context.Context, points int) error {
	d.mu.Lock()
	d.state.SetTimeframe(points)
	active := d.state.ActiveSection()
	d.mu.Unlock()
	if active != SectionOverview {
		return nil
	}
	return d.Refresh(ctx)
}

// beginLoad issues a new generation and raises the loading flag. Caller holds d.mu.
func (d *Driver) beginLoad() (uint64, PlanContext) {
	gen := d.state.nextGeneration()
	d.state.SetLoading(true)
	return gen, d.planContext()
}

func (d *Driver) planContext() PlanContext {
	return PlanContext{
		Company:   d.company,
		Timeframe: d.state.Timeframe(),
		Days:      d.state.PredictionDays(),
	}
}

func flightKey(plan SectionPlan, pc PlanContext) string {
	key := string(plan.Section)
	for _, req := range plan.Requirements {
		if req.Params != nil {
			key += "|" + req.request(pc).key()
		}
	}
	return key
}

// runLoad fetches the plan (joining an identical in-flight load) and renders it if
// gen is still current. Superseded loads only update the cache.
func (d *Driver) runLoad(ctx context.Context, plan SectionPlan, gen uint64, pc PlanContext, reason string) error {
	defer func() {
		d.mu.Lock()
		d.state.SetLoading(false)
		d.mu.Unlock()
	}()

	log := d.logger.With().Str("section", string(plan.Section)).Uint64("generation", gen).Str("reason", reason).Logger()
	log.Debug().Msg("section load started")

	v, _, shared := d.flight.Do(flightKey(plan, pc), func() (any, error) {
		d.mu.Lock()
		jobs, reused := d.controller.prepare(plan, d.state, pc)
		d.mu.Unlock()
		fetched, err := d.controller.fetch(context.WithoutCancel(ctx), jobs)
		return loadResult{Fetched: fetched, Reused: reused, Err: err}, nil
	})
	res := v.(loadResult)

	event, err := d.commit(ctx, plan, gen, res, reason, log)
	if shared {
		log.Debug().Msg("joined in-flight load")
	}
	if event != nil {
		d.publish(ctx, *event)
	}
	return err
}

func (d *Driver) commit(ctx context.Context, plan SectionPlan, gen uint64, res loadResult, reason string, log zerolog.Logger) (*ViewEvent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	for _, f := range res.Fetched {
		d.state.SetCachedSnapshot(f.Kind, f.Snapshot, f.Seq, now)
	}

	if gen != d.state.generation {
		log.Info().Msg("section load superseded, cached without rendering")
		d.telemetry.Record(ctx, "dashboard.section.superseded", map[string]any{
			"section":    plan.Section,
			"generation": gen,
			"error":      errorString(res.Err),
		})
		return nil, nil
	}

	d.view.setGeneration(gen)
	if res.Err != nil {
		log.Warn().Err(res.Err).Msg("section load failed")
		d.notifyLocked("error", plan.Section, fmt.Sprintf("Failed to update %s section", plan.Section.Title()))
		d.telemetry.Record(ctx, "dashboard.section.failed", map[string]any{
			"section": plan.Section,
			"error":   res.Err.Error(),
		})
		event := d.eventLocked(plan.Section, gen, reason)
		event.Error = res.Err.Error()
		return &event, res.Err
	}

	pc := d.planContext()
	if err := d.controller.Render(plan, res.results(), pc); err != nil {
		log.Warn().Err(err).Msg("section rendered with chart errors")
	}
	d.state.updatedAt = now
	d.view.Write(BindingLastUpdated, Text{Value: FormatClock(now)})
	log.Info().Int("fetched", len(res.Fetched)).Int("reused", len(res.Reused)).Msg("section loaded")
	d.telemetry.Record(ctx, "dashboard.section.load", map[string]any{
		"section":    plan.Section,
		"generation": gen,
		"reason":     reason,
	})
	event := d.eventLocked(plan.Section, gen, reason)
	return &event, nil
}

// LiveTick replaces the last price on the primary chart and the price card. It fails
// with ErrNoChartHandle until overview has rendered the chart once.
func (d *Driver) LiveTick(ctx context.Context, value float64) error {
	d.mu.Lock()
	if err := d.charts.Tick(value); err != nil {
		d.mu.Unlock()
		return err
	}
	if stock, ok := d.state.StockData(); ok {
		d.state.replaceSnapshot(KindStockData, stock.withCurrentPrice(value))
	}
	d.view.Write(BindingCurrentPrice, Text{Value: FormatCurrency(value)})
	event := d.eventLocked(d.state.ActiveSection(), d.state.generation, reasonLiveTick)
	d.mu.Unlock()

	d.telemetry.Record(ctx, "dashboard.live.tick", map[string]any{"price": value})
	d.publish(ctx, event)
	return nil
}

// StartAutoRefresh stops any running refresh timer and starts a new one.
func (d *Driver) StartAutoRefresh(interval time.Duration) {
	if interval <= 0 {
		interval = d.refreshInterval
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.timer.halt()
	d.state.timer = d.startLoop(interval, func(ctx context.Context) {
		d.AutoRefreshTick(ctx)
	})
	d.logger.Debug().Dur("interval", interval).Msg("auto-refresh started")
}

// StopAutoRefresh cancels the refresh timer.
func (d *Driver) StopAutoRefresh() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.timer.halt()
	d.state.timer = nil
}

// AutoRefreshActive reports whether a refresh timer is running.
func (d *Driver) AutoRefreshActive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.timerActive()
}

// StartLiveUpdates starts the simulated live price tick, replacing any running one.
func (d *Driver) StartLiveUpdates(interval time.Duration) {
	if interval <= 0 {
		interval = d.liveInterval
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.live.halt()
	d.live = d.startLoop(interval, d.simulateTick)
}

// StopLiveUpdates stops the live tick.
func (d *Driver) StopLiveUpdates() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.live.halt()
	d.live = nil
}

func (d *Driver) simulateTick(ctx context.Context) {
	d.mu.Lock()
	stock, ok := d.state.StockData()
	d.mu.Unlock()
	if !ok || stock.CurrentPrice == nil {
		return
	}
	if err := d.LiveTick(ctx, d.price(*stock.CurrentPrice)); err != nil && !errors.Is(err, ErrNoChartHandle) {
		d.logger.Warn().Err(err).Msg("live tick failed")
	}
}

// SetVisibility stops the timers when hidden; when shown it restarts them and runs
// one refresh tick right away.
func (d *Driver) SetVisibility(ctx context.Context, visible bool) {
	d.mu.Lock()
	wasVisible := d.visible
	d.visible = visible
	d.mu.Unlock()
	if !visible {
		d.StopAutoRefresh()
		d.StopLiveUpdates()
		return
	}
	d.StartAutoRefresh(d.refreshInterval)
	d.StartLiveUpdates(d.liveInterval)
	if !wasVisible {
		d.logger.Debug().Msg("dashboard visible again")
	}
	d.AutoRefreshTick(ctx)
}

// Close stops every timer and releases chart handles.
func (d *Driver) Close() error {
	d.StopAutoRefresh()
	d.StopLiveUpdates()
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.charts.DestroyAll()
}

// SortTable toggles the sort of a table region on column.
func (d *Driver) SortTable(ctx context.Context, binding string, column int) (Table, error) {
	d.mu.Lock()
	content, ok := d.view.Read(binding)
	table, isTable := content.(Table)
	if !ok || !isTable {
		d.mu.Unlock()
		return Table{}, fmt.Errorf("%w: %s", ErrUnknownBinding, binding)
	}
	if column < 0 || column >= len(table.Columns) {
		d.mu.Unlock()
		return Table{}, fmt.Errorf("dashboard: table %s has no column %d", binding, column)
	}
	sorted := ToggleSort(table, column)
	d.view.Write(binding, sorted)
	event := d.eventLocked(d.state.ActiveSection(), d.state.generation, "sort")
	d.mu.Unlock()
	d.publish(ctx, event)
	return sorted, nil
}

// Notify raises a user-visible notification.
func (d *Driver) Notify(ctx context.Context, level, message string) {
	d.mu.Lock()
	d.notifyLocked(level, d.state.ActiveSection(), message)
	event := d.eventLocked(d.state.ActiveSection(), d.state.generation, "notification")
	d.mu.Unlock()
	d.publish(ctx, event)
}

func (d *Driver) notifyLocked(level string, section Section, message string) {
	n := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Section:   section,
		Message:   message,
		Timestamp: d.clock.Now(),
	}
	d.notifications = append(d.notifications, n)
	if len(d.notifications) > maxNotifications {
		d.notifications = d.notifications[len(d.notifications)-maxNotifications:]
	}
	d.logger.Warn().Str("level", level).Str("section", string(section)).Msg(message)
}

func (d *Driver) eventLocked(section Section, gen uint64, reason string) ViewEvent {
	return ViewEvent{
		ID:         uuid.NewString(),
		Section:    section,
		Reason:     reason,
		Generation: gen,
		Bindings:   d.view.drainWritten(),
		Timestamp:  d.clock.Now(),
	}
}

func (d *Driver) publish(ctx context.Context, event ViewEvent) {
	if d.hook == nil {
		return
	}
	if err := d.hook.ViewUpdated(ctx, event); err != nil {
		d.logger.Warn().Err(err).Str("event", event.ID).Msg("refresh hook failed")
	}
}

// ActiveSection returns the section currently shown.
func (d *Driver) ActiveSection() Section {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.ActiveSection()
}

// IsLoading reports whether a load is in flight.
func (d *Driver) IsLoading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.IsLoading()
}

// ChartHandles lists mounts with a live chart.
func (d *Driver) ChartHandles() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.charts.Handles()
}

// CachedSnapshot returns the latest snapshot of kind.
func (d *Driver) CachedSnapshot(kind Kind) (Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.CachedSnapshot(kind)
}

// Registry returns the section registry.
func (d *Driver) Registry() *Registry {
	return d.registry
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
