package dashboard

import "time"

const (
	// DefaultPredictionDays is the horizon used until the viewer picks another one.
	DefaultPredictionDays = 5
	// DefaultTimeframe limits the main chart to the last N points; zero shows everything.
	DefaultTimeframe = 0
)

// ViewState holds the per-dashboard mutable state. It does no locking of its own;
// the Driver serializes access.
type ViewState struct {
	active     Section
	cache      map[Kind]cachedSnapshot
	loading    int
	generation uint64
	sequence   uint64
	timer      *tickerLoop
	days       int
	timeframe  int
	updatedAt  time.Time
}

type cachedSnapshot struct {
	snapshot  Snapshot
	seq       uint64
	fetchedAt time.Time
}

// NewViewState starts on the overview section with an empty cache.
func NewViewState() *ViewState {
	return &ViewState{
		active:    SectionOverview,
		cache:     make(map[Kind]cachedSnapshot),
		days:      DefaultPredictionDays,
		timeframe: DefaultTimeframe,
	}
}

// ActiveSection returns the section currently shown.
func (s *ViewState) ActiveSection() Section {
	return s.active
}

// SetActiveSection switches the active section without loading anything.
func (s *ViewState) SetActiveSection(section Section) {
	s.active = section
}

// CachedSnapshot returns the latest snapshot for kind.
func (s *ViewState) CachedSnapshot(kind Kind) (Snapshot, bool) {
	entry, ok := s.cache[kind]
	if !ok || entry.snapshot == nil {
		return nil, false
	}
	return entry.snapshot, true
}

// SetCachedSnapshot stores snap unless a snapshot from a later fetch is already cached.
func (s *ViewState) SetCachedSnapshot(kind Kind, snap Snapshot, seq uint64, at time.Time) bool {
	if snap == nil {
		return false
	}
	if current, ok := s.cache[kind]; ok && current.seq > seq {
		return false
	}
	s.cache[kind] = cachedSnapshot{snapshot: snap, seq: seq, fetchedAt: at}
	return true
}

// replaceSnapshot swaps the cached snapshot for kind, keeping its sequence number.
func (s *ViewState) replaceSnapshot(kind Kind, snap Snapshot) {
	entry, ok := s.cache[kind]
	if !ok || snap == nil {
		return
	}
	entry.snapshot = snap
	s.cache[kind] = entry
}

// StockData returns the cached primary snapshot.
func (s *ViewState) StockData() (*StockData, bool) {
	snap, ok := s.CachedSnapshot(KindStockData)
	if !ok {
		return nil, false
	}
	stock, ok := snap.(*StockData)
	return stock, ok
}

// IsLoading reports whether any section load is in flight.
func (s *ViewState) IsLoading() bool {
	return s.loading > 0
}

// SetLoading marks the start (true) or end (false) of one load. Overlapping manual
// refreshes are counted so the flag only clears when the last one completes.
func (s *ViewState) SetLoading(loading bool) {
	if loading {
		s.loading++
		return
	}
	if s.loading > 0 {
		s.loading--
	}
}

// PredictionDays is the current forecast horizon.
func (s *ViewState) PredictionDays() int {
	return s.days
}

// SetPredictionDays stores the horizon, falling back to the default for non-positive values.
func (s *ViewState) SetPredictionDays(days int) {
	if days <= 0 {
		days = DefaultPredictionDays
	}
	s.days = days
}

// Timeframe is the number of trailing points shown on the main chart.
func (s *ViewState) Timeframe() int {
	return s.timeframe
}

// SetTimeframe sets the trailing window; zero or less shows the full series.
func (s *ViewState) SetTimeframe(points int) {
	if points < 0 {
		points = 0
	}
	s.timeframe = points
}

// UpdatedAt is when the last load completed.
func (s *ViewState) UpdatedAt() time.Time {
	return s.updatedAt
}

func (s *ViewState) nextGeneration() uint64 {
	s.generation++
	return s.generation
}

func (s *ViewState) nextSequence() uint64 {
	s.sequence++
	return s.sequence
}

func (s *ViewState) timerActive() bool {
	return s.timer != nil
}
