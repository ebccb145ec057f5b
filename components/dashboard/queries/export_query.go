package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-stockdash/components/dashboard"
)

// ExportInput requests the downloadable snapshot.
type ExportInput struct{}

type exportService interface {
	Export(ctx context.Context) (dashboard.ExportDocument, error)
}

// ExportQuery builds the export document.
type ExportQuery struct {
	service exportService
}

// NewExportQuery builds the query.
func NewExportQuery(service exportService) *ExportQuery {
	return &ExportQuery{service: service}
}

var _ gocommand.Querier[ExportInput, dashboard.ExportDocument] = (*ExportQuery)(nil)

// Query returns the export document or dashboard.ErrNoExportData.
func (q *ExportQuery) Query(ctx context.Context, _ ExportInput) (dashboard.ExportDocument, error) {
	if q.service == nil {
		return dashboard.ExportDocument{}, errors.New("export query requires service")
	}
	return q.service.Export(ctx)
}
