package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RefreshInput reloads the active section.
type RefreshInput struct{}

type refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshCommand reloads the active section on demand.
type RefreshCommand struct {
	service   refresher
	telemetry Telemetry
}

// NewRefreshCommand creates the command.
func NewRefreshCommand(service refresher, telemetry Telemetry) *RefreshCommand {
	return &RefreshCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshInput] = (*RefreshCommand)(nil)

// Execute reloads the active section.
func (c *RefreshCommand) Execute(ctx context.Context, _ RefreshInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if err := c.service.Refresh(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.refresh", nil)
	return nil
}
