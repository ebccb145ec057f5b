package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-stockdash/components/dashboard"
	"github.com/goliatone/go-stockdash/components/dashboard/commands"
	"github.com/goliatone/go-stockdash/components/dashboard/httpapi"
)

// Config wires go-router with the dashboard controller, actions, and hooks.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *dashboard.Controller
	API        httpapi.Executor
	Broadcast  *dashboard.BroadcastHook
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML        string
	View        string
	Section     string
	Refresh     string
	Predictions string
	Timeframe   string
	Visibility  string
	Sort        string
	Export      string
	WebSocket   string
}

// Register mounts dashboard routes (HTML, JSON, actions, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/dashboard"
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(ctx.Context(), &buf); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.View, router.WrapHandler(func(ctx router.Context) error {
		payload, err := cfg.Controller.Payload(ctx.Context())
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, routes RouteConfig) {
	r.Post(routes.Section, router.WrapHandler(func(ctx router.Context) error {
		payload, err := api.Navigate(ctx.Context(), ctx.Param("section"))
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Refresh(ctx.Context()); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "refreshed"})
	}))

	r.Post(routes.Predictions, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.GeneratePredictionsInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.GeneratePredictions(ctx.Context(), payload.Days); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]int{"days": payload.Days})
	}))

	r.Post(routes.Timeframe, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SetTimeframeInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.SetTimeframe(ctx.Context(), payload.Points); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]int{"points": payload.Points})
	}))

	r.Post(routes.Visibility, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SetVisibilityInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.SetVisibility(ctx.Context(), payload.Visible); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]bool{"visible": payload.Visible})
	}))

	r.Post(routes.Sort, router.WrapHandler(func(ctx router.Context) error {
		var payload struct {
			Column int `json:"column"`
		}
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		view, err := api.SortTable(ctx.Context(), ctx.Param("table"), payload.Column)
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, view)
	}))

	r.Get(routes.Export, router.WrapHandler(func(ctx router.Context) error {
		doc, err := api.Export(ctx.Context())
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		body, err := doc.Bytes()
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "application/json")
		ctx.SetHeader("Content-Disposition", `attachment; filename="`+api.ExportFilename(doc)+`"`)
		return ctx.Send(body)
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/"
	}
	if routes.View == "" {
		routes.View = "/_view"
	}
	if routes.Section == "" {
		routes.Section = "/sections/:section"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/refresh"
	}
	if routes.Predictions == "" {
		routes.Predictions = "/predictions"
	}
	if routes.Timeframe == "" {
		routes.Timeframe = "/timeframe"
	}
	if routes.Visibility == "" {
		routes.Visibility = "/visibility"
	}
	if routes.Sort == "" {
		routes.Sort = "/tables/:table/sort"
	}
	if routes.Export == "" {
		routes.Export = "/export"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
