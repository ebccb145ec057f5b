package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// SetVisibilityInput reports whether the page is visible.
type SetVisibilityInput struct {
	Visible bool `json:"visible"`
}

type visibilitySetter interface {
	SetVisibility(ctx context.Context, visible bool)
}

// SetVisibilityCommand pauses or resumes refresh timers.
type SetVisibilityCommand struct {
	service   visibilitySetter
	telemetry Telemetry
}

// NewSetVisibilityCommand creates the command.
func NewSetVisibilityCommand(service visibilitySetter, telemetry Telemetry) *SetVisibilityCommand {
	return &SetVisibilityCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetVisibilityInput] = (*SetVisibilityCommand)(nil)

// Execute forwards the visibility change.
func (c *SetVisibilityCommand) Execute(ctx context.Context, msg SetVisibilityInput) error {
	if c.service == nil {
		return errors.New("visibility command requires service")
	}
	c.service.SetVisibility(ctx, msg.Visible)
	c.telemetry.Record(ctx, "dashboard.command.visibility", map[string]any{
		"visible": msg.Visible,
	})
	return nil
}
