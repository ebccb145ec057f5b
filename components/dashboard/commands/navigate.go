package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-stockdash/components/dashboard"
)

// NavigateInput names the section to show.
type NavigateInput struct {
	Section string `json:"section"`
}

type navigator interface {
	Navigate(ctx context.Context, section dashboard.Section) error
}

// NavigateCommand switches the active section and loads it.
type NavigateCommand struct {
	service   navigator
	telemetry Telemetry
}

// NewNavigateCommand creates the command.
func NewNavigateCommand(service navigator, telemetry Telemetry) *NavigateCommand {
	return &NavigateCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[NavigateInput] = (*NavigateCommand)(nil)

// Execute validates the section and navigates to it.
func (c *NavigateCommand) Execute(ctx context.Context, msg NavigateInput) error {
	if c.service == nil {
		return errors.New("navigate command requires service")
	}
	section, err := dashboard.ParseSection(msg.Section)
	if err != nil {
		return err
	}
	if err := c.service.Navigate(ctx, section); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.navigate", map[string]any{
		"section": section,
	})
	return nil
}
