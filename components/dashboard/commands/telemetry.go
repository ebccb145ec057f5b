package commands

import (
	"context"
	"errors"
)

// ErrInvalidInput marks command payloads rejected before reaching the driver.
var ErrInvalidInput = errors.New("invalid command input")

// Telemetry allows commands to emit structured events.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}
