package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-stockdash/components/dashboard"
	"github.com/goliatone/go-stockdash/components/dashboard/commands"
	"github.com/goliatone/go-stockdash/components/dashboard/queries"
)

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	Navigate     gocommand.Commander[commands.NavigateInput]
	Refresh      gocommand.Commander[commands.RefreshInput]
	Predictions  gocommand.Commander[commands.GeneratePredictionsInput]
	Timeframe    gocommand.Commander[commands.SetTimeframeInput]
	Visibility   gocommand.Commander[commands.SetVisibilityInput]
	Sort         gocommand.Commander[commands.SortTableInput]
	View         gocommand.Querier[queries.ViewInput, dashboard.ViewPayload]
	Export       gocommand.Querier[queries.ExportInput, dashboard.ExportDocument]
	ExportPrefix string
}

// NewHandlers wires every handler to one driver.
func NewHandlers(driver *dashboard.Driver, telemetry commands.Telemetry, exportPrefix string) *Handlers {
	return &Handlers{
		Navigate:     commands.NewNavigateCommand(driver, telemetry),
		Refresh:      commands.NewRefreshCommand(driver, telemetry),
		Predictions:  commands.NewGeneratePredictionsCommand(driver, telemetry),
		Timeframe:    commands.NewSetTimeframeCommand(driver, telemetry),
		Visibility:   commands.NewSetVisibilityCommand(driver, telemetry),
		Sort:         commands.NewSortTableCommand(driver, telemetry),
		View:         queries.NewViewQuery(driver),
		Export:       queries.NewExportQuery(driver),
		ExportPrefix: exportPrefix,
	}
}

// StatusFor maps dashboard errors onto HTTP status codes.
func StatusFor(err error) int {
	var fetchErr *dashboard.FetchError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, dashboard.ErrUnknownSection), errors.Is(err, commands.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrUnknownBinding), errors.Is(err, dashboard.ErrNoExportData):
		return http.StatusNotFound
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) HandleNavigate(w http.ResponseWriter, r *http.Request, section string) {
	if err := h.Navigate.Execute(r.Context(), commands.NavigateInput{Section: section}); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	h.writeView(w, r)
}

func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Refresh.Execute(r.Context(), commands.RefreshInput{}); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) HandleGeneratePredictions(w http.ResponseWriter, r *http.Request) {
	var payload commands.GeneratePredictionsInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Predictions.Execute(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) HandleSetTimeframe(w http.ResponseWriter, r *http.Request) {
	var payload commands.SetTimeframeInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Timeframe.Execute(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleSetVisibility(w http.ResponseWriter, r *http.Request) {
	var payload commands.SetVisibilityInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Visibility.Execute(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleSortTable(w http.ResponseWriter, r *http.Request, table string) {
	column, err := strconv.Atoi(r.URL.Query().Get("column"))
	if err != nil {
		http.Error(w, "column must be an integer", http.StatusBadRequest)
		return
	}
	if err := h.Sort.Execute(r.Context(), commands.SortTableInput{Table: table, Column: column}); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	h.writeView(w, r, table)
}

func (h *Handlers) HandleView(w http.ResponseWriter, r *http.Request) {
	h.writeView(w, r, r.URL.Query()["binding"]...)
}

func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Export.Query(r.Context(), queries.ExportInput{})
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename(h.ExportPrefix)+`"`)
	if err := doc.Encode(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handlers) writeView(w http.ResponseWriter, r *http.Request, bindings ...string) {
	if h.View == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	payload, err := h.View.Query(r.Context(), queries.ViewInput{Bindings: bindings})
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

// Executor runs dashboard actions for transports that are not net/http based.
type Executor interface {
	Navigate(ctx context.Context, section string) (dashboard.ViewPayload, error)
	Refresh(ctx context.Context) error
	GeneratePredictions(ctx context.Context, days int) error
	SetTimeframe(ctx context.Context, points int) error
	SetVisibility(ctx context.Context, visible bool) error
	SortTable(ctx context.Context, table string, column int) (dashboard.ViewPayload, error)
	View(ctx context.Context, bindings ...string) (dashboard.ViewPayload, error)
	Export(ctx context.Context) (dashboard.ExportDocument, error)
	ExportFilename(doc dashboard.ExportDocument) string
}

// CommandExecutor adapts Handlers into an Executor.
type CommandExecutor struct {
	Handlers *Handlers
}

var _ Executor = CommandExecutor{}

func (e CommandExecutor) Navigate(ctx context.Context, section string) (dashboard.ViewPayload, error) {
	if err := e.Handlers.Navigate.Execute(ctx, commands.NavigateInput{Section: section}); err != nil {
		return dashboard.ViewPayload{}, err
	}
	return e.View(ctx)
}

func (e CommandExecutor) Refresh(ctx context.Context) error {
	return e.Handlers.Refresh.Execute(ctx, commands.RefreshInput{})
}

func (e CommandExecutor) GeneratePredictions(ctx context.Context, days int) error {
	return e.Handlers.Predictions.Execute(ctx, commands.GeneratePredictionsInput{Days: days})
}

func (e CommandExecutor) SetTimeframe(ctx context.Context, points int) error {
	return e.Handlers.Timeframe.Execute(ctx, commands.SetTimeframeInput{Points: points})
}

func (e CommandExecutor) SetVisibility(ctx context.Context, visible bool) error {
	return e.Handlers.Visibility.Execute(ctx, commands.SetVisibilityInput{Visible: visible})
}

func (e CommandExecutor) SortTable(ctx context.Context, table string, column int) (dashboard.ViewPayload, error) {
	if err := e.Handlers.Sort.Execute(ctx, commands.SortTableInput{Table: table, Column: column}); err != nil {
		return dashboard.ViewPayload{}, err
	}
	return e.View(ctx, table)
}

func (e CommandExecutor) View(ctx context.Context, bindings ...string) (dashboard.ViewPayload, error) {
	return e.Handlers.View.Query(ctx, queries.ViewInput{Bindings: bindings})
}

func (e CommandExecutor) Export(ctx context.Context) (dashboard.ExportDocument, error) {
	return e.Handlers.Export.Query(ctx, queries.ExportInput{})
}

func (e CommandExecutor) ExportFilename(doc dashboard.ExportDocument) string {
	return doc.Filename(e.Handlers.ExportPrefix)
}
