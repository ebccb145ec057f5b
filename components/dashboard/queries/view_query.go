package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-stockdash/components/dashboard"
)

// ViewInput optionally narrows the payload to a few bindings.
type ViewInput struct {
	Bindings []string
}

type viewService interface {
	View() dashboard.ViewPayload
}

// ViewQuery returns the serializable dashboard state.
type ViewQuery struct {
	service viewService
}

// NewViewQuery builds the query.
func NewViewQuery(service viewService) *ViewQuery {
	return &ViewQuery{service: service}
}

var _ gocommand.Querier[ViewInput, dashboard.ViewPayload] = (*ViewQuery)(nil)

// Query snapshots the view, keeping only the requested bindings when any are given.
func (q *ViewQuery) Query(_ context.Context, input ViewInput) (dashboard.ViewPayload, error) {
	if q.service == nil {
		return dashboard.ViewPayload{}, errors.New("view query requires service")
	}
	payload := q.service.View()
	if len(input.Bindings) == 0 {
		return payload, nil
	}
	regions := make(map[string]dashboard.Region, len(input.Bindings))
	for _, binding := range input.Bindings {
		if region, ok := payload.Regions[binding]; ok {
			regions[binding] = region
		}
	}
	payload.Regions = regions
	return payload, nil
}
