package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
)

// SetTimeframeInput limits the main chart to the trailing points; zero shows all.
type SetTimeframeInput struct {
	Points int `json:"points"`
}

type timeframeSetter interface {
	SetTimeframe(ctx context.Context, points int) error
}

// SetTimeframeCommand changes the main chart window.
type SetTimeframeCommand struct {
	service   timeframeSetter
	telemetry Telemetry
}

// NewSetTimeframeCommand creates the command.
func NewSetTimeframeCommand(service timeframeSetter, telemetry Telemetry) *SetTimeframeCommand {
	return &SetTimeframeCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetTimeframeInput] = (*SetTimeframeCommand)(nil)

// Execute validates and applies the timeframe.
func (c *SetTimeframeCommand) Execute(ctx context.Context, msg SetTimeframeInput) error {
	if c.service == nil {
		return errors.New("timeframe command requires service")
	}
	if msg.Points < 0 {
		return fmt.Errorf("%w: points must not be negative, got %d", ErrInvalidInput, msg.Points)
	}
	if err := c.service.SetTimeframe(ctx, msg.Points); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.timeframe", map[string]any{
		"points": msg.Points,
	})
	return nil
}
