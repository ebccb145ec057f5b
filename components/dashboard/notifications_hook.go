package dashboard

import (
	"context"
	"slices"
)

// NotificationsClient is the slice of an external notifier the hook needs.
type NotificationsClient interface {
	PublishDashboardEvent(ctx context.Context, channel string, event ViewEvent) error
}

// NotificationsHook forwards view events to an external notifications client.
// Live ticks are skipped unless listed in Reasons.
type NotificationsHook struct {
	Client       NotificationsClient
	Channel      string
	Reasons      []string
	FailuresOnly bool
}

// ViewUpdated publishes the events the hook is configured for.
func (h *NotificationsHook) ViewUpdated(ctx context.Context, event ViewEvent) error {
	if h == nil || h.Client == nil || !h.forwards(event) {
		return nil
	}
	channel := h.Channel
	if channel == "" {
		channel = "dashboard"
	}
	return h.Client.PublishDashboardEvent(ctx, channel, event)
}

func (h *NotificationsHook) forwards(event ViewEvent) bool {
	if h.FailuresOnly && event.Error == "" {
		return false
	}
	if len(h.Reasons) > 0 {
		return slices.Contains(h.Reasons, event.Reason)
	}
	return event.Reason != reasonLiveTick
}
