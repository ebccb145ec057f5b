package dashboard

import "errors"

var (
	// ErrUnknownSection is returned for navigation targets outside the six sections.
	ErrUnknownSection = errors.New("dashboard: unknown section")
	// ErrNoChartHandle is returned when a live tick arrives before the primary chart exists.
	ErrNoChartHandle = errors.New("dashboard: primary chart has not been rendered")
	// ErrNoExportData is returned when exporting before any stock data was fetched.
	ErrNoExportData = errors.New("dashboard: no data available to export")
	// ErrUnknownBinding is returned when sorting a region that is not a table.
	ErrUnknownBinding = errors.New("dashboard: unknown table binding")
	errNilDataClient  = errors.New("dashboard: data client is required")
)
