package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-stockdash/components/dashboard"
	"github.com/goliatone/go-stockdash/components/dashboard/commands"
	"github.com/goliatone/go-stockdash/components/dashboard/queries"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

type stubQuerier[I, O any] struct {
	last  I
	out   O
	err   error
	calls int
}

func (s *stubQuerier[I, O]) Query(ctx context.Context, input I) (O, error) {
	s.last = input
	s.calls++
	return s.out, s.err
}

func TestHandleNavigateReturnsView(t *testing.T) {
	nav := &stubCommander[commands.NavigateInput]{}
	view := &stubQuerier[queries.ViewInput, dashboard.ViewPayload]{out: dashboard.ViewPayload{Section: dashboard.SectionAnalysis}}
	api := &Handlers{Navigate: nav, View: view}

	req := httptest.NewRequest(http.MethodPost, "/sections/analysis", nil)
	rec := httptest.NewRecorder()
	api.HandleNavigate(rec, req, "analysis")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	assert.Equal(t, "analysis", nav.last.Section)
	assert.Contains(t, rec.Body.String(), `"analysis"`)
}

func TestHandleNavigateUnknownSection(t *testing.T) {
	nav := &stubCommander[commands.NavigateInput]{err: fmt.Errorf("navigate: %w", dashboard.ErrUnknownSection)}
	api := &Handlers{Navigate: nav}
	req := httptest.NewRequest(http.MethodPost, "/sections/nope", nil)
	rec := httptest.NewRecorder()
	api.HandleNavigate(rec, req, "nope")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleRefresh(t *testing.T) {
	refresh := &stubCommander[commands.RefreshInput]{}
	api := &Handlers{Refresh: refresh}
	rec := httptest.NewRecorder()
	api.HandleRefresh(rec, httptest.NewRequest(http.MethodPost, "/refresh", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if refresh.calls != 1 {
		t.Fatalf("expected refresh to execute")
	}
}

func TestHandleRefreshBackendFailure(t *testing.T) {
	refresh := &stubCommander[commands.RefreshInput]{err: &dashboard.FetchError{Kind: dashboard.KindStockData, Err: errors.New("boom")}}
	api := &Handlers{Refresh: refresh}
	rec := httptest.NewRecorder()
	api.HandleRefresh(rec, httptest.NewRequest(http.MethodPost, "/refresh", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleGeneratePredictions(t *testing.T) {
	predict := &stubCommander[commands.GeneratePredictionsInput]{}
	api := &Handlers{Predictions: predict}
	req := httptest.NewRequest(http.MethodPost, "/predictions", strings.NewReader(`{"days":7}`))
	rec := httptest.NewRecorder()
	api.HandleGeneratePredictions(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 7, predict.last.Days)
}

func TestHandleGeneratePredictionsRejectsInvalidInput(t *testing.T) {
	predict := &stubCommander[commands.GeneratePredictionsInput]{err: fmt.Errorf("%w: days out of range", commands.ErrInvalidInput)}
	api := &Handlers{Predictions: predict}

	rec := httptest.NewRecorder()
	api.HandleGeneratePredictions(rec, httptest.NewRequest(http.MethodPost, "/predictions", strings.NewReader(`{"days":90}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	api.HandleGeneratePredictions(rec, httptest.NewRequest(http.MethodPost, "/predictions", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, predict.calls)
}

func TestHandleSetTimeframe(t *testing.T) {
	timeframe := &stubCommander[commands.SetTimeframeInput]{}
	api := &Handlers{Timeframe: timeframe}
	req := httptest.NewRequest(http.MethodPost, "/timeframe", strings.NewReader(`{"points":30}`))
	rec := httptest.NewRecorder()
	api.HandleSetTimeframe(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	assert.Equal(t, 30, timeframe.last.Points)
}

func TestHandleSetVisibility(t *testing.T) {
	visibility := &stubCommander[commands.SetVisibilityInput]{}
	api := &Handlers{Visibility: visibility}
	req := httptest.NewRequest(http.MethodPost, "/visibility", strings.NewReader(`{"visible":true}`))
	rec := httptest.NewRecorder()
	api.HandleSetVisibility(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	assert.True(t, visibility.last.Visible)
}

func TestHandleSortTable(t *testing.T) {
	sorter := &stubCommander[commands.SortTableInput]{}
	view := &stubQuerier[queries.ViewInput, dashboard.ViewPayload]{}
	api := &Handlers{Sort: sorter, View: view}

	req := httptest.NewRequest(http.MethodPost, "/tables/historical-data-table/sort?column=2", nil)
	rec := httptest.NewRecorder()
	api.HandleSortTable(rec, req, "historical-data-table")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, commands.SortTableInput{Table: "historical-data-table", Column: 2}, sorter.last)
	assert.Equal(t, []string{"historical-data-table"}, view.last.Bindings)
}

func TestHandleSortTableErrors(t *testing.T) {
	sorter := &stubCommander[commands.SortTableInput]{err: dashboard.ErrUnknownBinding}
	api := &Handlers{Sort: sorter}

	rec := httptest.NewRecorder()
	api.HandleSortTable(rec, httptest.NewRequest(http.MethodPost, "/tables/x/sort?column=abc", nil), "x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, sorter.calls)

	rec = httptest.NewRecorder()
	api.HandleSortTable(rec, httptest.NewRequest(http.MethodPost, "/tables/x/sort?column=0", nil), "x")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleViewFiltersBindings(t *testing.T) {
	view := &stubQuerier[queries.ViewInput, dashboard.ViewPayload]{out: dashboard.ViewPayload{Generation: 3}}
	api := &Handlers{View: view}
	req := httptest.NewRequest(http.MethodGet, "/_view?binding=current-price&binding=rsi-value", nil)
	rec := httptest.NewRecorder()
	api.HandleView(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"current-price", "rsi-value"}, view.last.Bindings)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestHandleExport(t *testing.T) {
	now := time.Date(2024, 3, 1, 14, 5, 0, 0, time.UTC)
	doc := dashboard.NewExportDocument(&dashboard.StockData{CurrentPrice: dashboard.Float(250)}, dashboard.SectionOverview, now)
	export := &stubQuerier[queries.ExportInput, dashboard.ExportDocument]{out: doc}
	api := &Handlers{Export: export, ExportPrefix: "tesla"}

	rec := httptest.NewRecorder()
	api.HandleExport(rec, httptest.NewRequest(http.MethodGet, "/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="tesla-stock-data-2024-03-01.json"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), `"current_section": "overview"`)
}

func TestHandleExportWithoutData(t *testing.T) {
	export := &stubQuerier[queries.ExportInput, dashboard.ExportDocument]{err: dashboard.ErrNoExportData}
	api := &Handlers{Export: export}
	rec := httptest.NewRecorder()
	api.HandleExport(rec, httptest.NewRequest(http.MethodGet, "/export", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusOK, StatusFor(nil))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("other")))
	assert.Equal(t, http.StatusBadGateway, StatusFor(fmt.Errorf("load: %w", &dashboard.FetchError{Kind: dashboard.KindPredictions, Err: errors.New("down")})))
}

func TestCommandExecutorNavigate(t *testing.T) {
	nav := &stubCommander[commands.NavigateInput]{}
	view := &stubQuerier[queries.ViewInput, dashboard.ViewPayload]{out: dashboard.ViewPayload{Section: dashboard.SectionModels}}
	exec := CommandExecutor{Handlers: &Handlers{Navigate: nav, View: view, ExportPrefix: "tsla"}}

	payload, err := exec.Navigate(context.Background(), "models")
	require.NoError(t, err)
	assert.Equal(t, dashboard.SectionModels, payload.Section)
	assert.Equal(t, 1, view.calls)

	nav.err = dashboard.ErrUnknownSection
	_, err = exec.Navigate(context.Background(), "bad")
	assert.ErrorIs(t, err, dashboard.ErrUnknownSection)
	assert.Equal(t, 1, view.calls)
}
