package dashboard

import "time"

// SectionLink is one navigation entry.
type SectionLink struct {
	ID     Section `json:"id"`
	Title  string  `json:"title"`
	Active bool    `json:"active"`
}

// ViewPayload is the serializable state of the whole dashboard.
type ViewPayload struct {
	Section        Section           `json:"section"`
	Sections       []SectionLink     `json:"sections"`
	Loading        bool              `json:"loading"`
	Generation     uint64            `json:"generation"`
	UpdatedAt      time.Time         `json:"updated_at,omitempty"`
	PredictionDays int               `json:"prediction_days"`
	Timeframe      int               `json:"timeframe"`
	Regions        map[string]Region `json:"regions"`
	Charts         []string          `json:"charts"`
	Notifications  []Notification    `json:"notifications,omitempty"`
}

// Region returns the content of binding, or nil.
func (p ViewPayload) Region(binding string) any {
	region, ok := p.Regions[binding]
	if !ok {
		return nil
	}
	return region.Content
}

// View snapshots the dashboard for transports and templates.
func (d *Driver) View() ViewPayload {
	d.mu.Lock()
	defer d.mu.Unlock()
	active := d.state.ActiveSection()
	links := make([]SectionLink, 0, len(Sections()))
	for _, plan := range d.registry.Plans() {
		links = append(links, SectionLink{ID: plan.Section, Title: plan.Section.Title(), Active: plan.Section == active})
	}
	return ViewPayload{
		Section:        active,
		Sections:       links,
		Loading:        d.state.IsLoading(),
		Generation:     d.state.generation,
		UpdatedAt:      d.state.UpdatedAt(),
		PredictionDays: d.state.PredictionDays(),
		Timeframe:      d.state.Timeframe(),
		Regions:        d.view.Regions(),
		Charts:         d.charts.Handles(),
		Notifications:  append([]Notification(nil), d.notifications...),
	}
}

// Notifications returns the most recent notifications, oldest first.
func (d *Driver) Notifications() []Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Notification(nil), d.notifications...)
}
