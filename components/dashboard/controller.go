package dashboard

import (
	"context"
	"errors"
	"io"

	"github.com/ettle/strcase"
)

// ViewSource is the part of the driver the page needs.
type ViewSource interface {
	View() ViewPayload
}

// ControllerOptions configures a Controller.
type ControllerOptions struct {
	Source     ViewSource
	Renderer   Renderer
	Template   string
	Title      string
	AssetsHost string
	BasePath   string
}

// Controller renders the dashboard page.
type Controller struct {
	source     ViewSource
	renderer   Renderer
	template   string
	title      string
	assetsHost string
	basePath   string
}

// NewController wires the view source into a controller.
func NewController(opts ControllerOptions) *Controller {
	tpl := opts.Template
	if tpl == "" {
		tpl = "dashboard"
	}
	title := opts.Title
	if title == "" {
		title = "Tesla Stock Dashboard"
	}
	base := opts.BasePath
	if base == "" {
		base = "/dashboard"
	}
	return &Controller{
		source:     opts.Source,
		renderer:   opts.Renderer,
		template:   tpl,
		title:      title,
		assetsHost: opts.AssetsHost,
		basePath:   base,
	}
}

// Payload returns the current view.
func (c *Controller) Payload(ctx context.Context) (ViewPayload, error) {
	if c.source == nil {
		return ViewPayload{}, errors.New("dashboard: controller requires a view source")
	}
	return c.source.View(), nil
}

// RenderTemplate writes the dashboard page to out.
func (c *Controller) RenderTemplate(ctx context.Context, out io.Writer) error {
	if c.renderer == nil {
		return errors.New("dashboard: controller requires a renderer")
	}
	payload, err := c.Payload(ctx)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render(c.template, c.templateData(payload), out)
	return err
}

// Region keys are snake_case so templates can address them.
func (c *Controller) templateData(payload ViewPayload) map[string]any {
	regions := make(map[string]any, len(payload.Regions))
	for binding, region := range payload.Regions {
		regions[strcase.ToSnake(binding)] = region.Content
	}
	return map[string]any{
		"title":         c.title,
		"base_path":     c.basePath,
		"echarts_js":    EChartsScriptURL(c.assetsHost),
		"section":       string(payload.Section),
		"sections":      payload.Sections,
		"regions":       regions,
		"loading":       payload.Loading,
		"days":          payload.PredictionDays,
		"notifications": payload.Notifications,
	}
}
