package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
)

// MaxPredictionDays bounds the forecast horizon a viewer may request.
const MaxPredictionDays = 30

// GeneratePredictionsInput carries the requested horizon.
type GeneratePredictionsInput struct {
	Days int `json:"days"`
}

type predictor interface {
	GeneratePredictions(ctx context.Context, days int) error
}

// GeneratePredictionsCommand reloads forecasts for a new horizon.
type GeneratePredictionsCommand struct {
	service   predictor
	telemetry Telemetry
}

// NewGeneratePredictionsCommand creates the command.
func NewGeneratePredictionsCommand(service predictor, telemetry Telemetry) *GeneratePredictionsCommand {
	return &GeneratePredictionsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[GeneratePredictionsInput] = (*GeneratePredictionsCommand)(nil)

// Execute validates the horizon and regenerates predictions.
func (c *GeneratePredictionsCommand) Execute(ctx context.Context, msg GeneratePredictionsInput) error {
	if c.service == nil {
		return errors.New("predictions command requires service")
	}
	if msg.Days < 1 || msg.Days > MaxPredictionDays {
		return fmt.Errorf("%w: days must be between 1 and %d, got %d", ErrInvalidInput, MaxPredictionDays, msg.Days)
	}
	if err := c.service.GeneratePredictions(ctx, msg.Days); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.predictions", map[string]any{
		"days": msg.Days,
	})
	return nil
}
