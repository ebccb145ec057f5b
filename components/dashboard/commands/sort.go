package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-stockdash/components/dashboard"
)

// SortTableInput toggles the sort of one table column.
type SortTableInput struct {
	Table  string `json:"table"`
	Column int    `json:"column"`
}

type tableSorter interface {
	SortTable(ctx context.Context, binding string, column int) (dashboard.Table, error)
}

// SortTableCommand toggles table sorting.
type SortTableCommand struct {
	service   tableSorter
	telemetry Telemetry
}

// NewSortTableCommand creates the command.
func NewSortTableCommand(service tableSorter, telemetry Telemetry) *SortTableCommand {
	return &SortTableCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SortTableInput] = (*SortTableCommand)(nil)

// Execute toggles the sort on the requested column.
func (c *SortTableCommand) Execute(ctx context.Context, msg SortTableInput) error {
	if c.service == nil {
		return errors.New("sort command requires service")
	}
	if msg.Table == "" {
		return fmt.Errorf("%w: sort requires table", ErrInvalidInput)
	}
	table, err := c.service.SortTable(ctx, msg.Table, msg.Column)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.sort", map[string]any{
		"table":  msg.Table,
		"column": msg.Column,
		"order":  table.SortOrder,
	})
	return nil
}
