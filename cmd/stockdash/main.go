package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-stockdash/components/dashboard"
	"github.com/goliatone/go-stockdash/components/dashboard/gorouter"
	"github.com/goliatone/go-stockdash/components/dashboard/httpapi"
	"github.com/goliatone/go-stockdash/pkg/market"
)

type cli struct {
	Config   string `type:"path" short:"c" env:"STOCKDASH_CONFIG" help:"Path to a YAML config file."`
	LogLevel string `name:"log-level" env:"STOCKDASH_LOG_LEVEL" help:"Override the configured log level."`

	Serve    serveCmd    `cmd:"" default:"withargs" help:"Serve the dashboard over HTTP."`
	Export   exportCmd   `cmd:"" help:"Fetch stock data once and write the export document."`
	Sections sectionsCmd `cmd:"" help:"List dashboard sections and the bindings they own."`
}

type serveCmd struct {
	BackendURL string        `name:"backend-url" env:"STOCKDASH_BACKEND_URL" help:"Analytics backend base URL."`
	Listen     string        `env:"STOCKDASH_LISTEN" help:"Address to listen on."`
	Mock       bool          `help:"Serve generated demo data instead of calling the backend."`
	Seed       uint64        `default:"1" help:"Seed for generated demo data."`
	Refresh    time.Duration `help:"Override the auto-refresh interval."`
}

type exportCmd struct {
	BackendURL string `name:"backend-url" env:"STOCKDASH_BACKEND_URL" help:"Analytics backend base URL."`
	Out        string `type:"path" short:"o" help:"Write to this file instead of <symbol>-stock-data-<day>.json; use - for stdout."`
	Mock       bool   `help:"Export generated demo data."`
	Seed       uint64 `default:"1" help:"Seed for generated demo data."`
}

type sectionsCmd struct{}

type appContext struct {
	cfg    dashboard.Config
	logger zerolog.Logger
}

func main() {
	var app cli
	kctx := kong.Parse(&app,
		kong.Name("stockdash"),
		kong.Description("Stock dashboard server and tools."),
		kong.UsageOnError(),
	)
	cfg, err := dashboard.LoadConfig(app.Config)
	kctx.FatalIfErrorf(err)
	level := cfg.LogLevel
	if app.LogLevel != "" {
		level = app.LogLevel
	}
	logger, err := dashboard.NewConsoleLogger(level)
	kctx.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))
	err = kctx.Run(&appContext{cfg: cfg, logger: logger})
	kctx.FatalIfErrorf(err)
}

func (c *serveCmd) Run(ctx context.Context, app *appContext) error {
	cfg := app.cfg
	if c.BackendURL != "" {
		cfg.BackendURL = c.BackendURL
	}
	if c.Listen != "" {
		cfg.Listen = c.Listen
	}
	if c.Refresh > 0 {
		cfg.RefreshInterval = c.Refresh
	}
	logger := app.logger.With().Str("instance", uuid.NewString()).Logger()

	client, err := newClient(cfg, c.Mock, c.Seed)
	if err != nil {
		return err
	}
	broadcast := dashboard.NewBroadcastHook()
	defer broadcast.Close()
	driver, err := newDriver(cfg, client, broadcast, &logger)
	if err != nil {
		return err
	}
	defer driver.Close()

	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("stockdash: templates: %w", err)
	}
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Source:     driver,
		Renderer:   renderer,
		Title:      cfg.Company() + " Stock Dashboard",
		AssetsHost: cfg.AssetsHost,
		BasePath:   "/dashboard",
	})
	telemetry := dashboard.LogTelemetry{Logger: logger}
	executor := httpapi.CommandExecutor{Handlers: httpapi.NewHandlers(driver, telemetry, cfg.ExportPrefix())}

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: controller,
		API:        executor,
		Broadcast:  broadcast,
		BasePath:   "/dashboard",
	}); err != nil {
		return fmt.Errorf("stockdash: register routes: %w", err)
	}

	if err := driver.Navigate(ctx, dashboard.SectionOverview); err != nil {
		logger.Warn().Err(err).Msg("initial load failed")
	}
	driver.StartAutoRefresh(cfg.RefreshInterval)
	driver.StartLiveUpdates(cfg.LiveInterval)

	errs := make(chan error, 1)
	go func() { errs <- server.Serve(cfg.Listen) }()
	logger.Info().
		Str("listen", cfg.Listen).
		Str("backend", cfg.BackendURL).
		Bool("mock", c.Mock).
		Msgf("dashboard ready: http://localhost%s/dashboard/", cfg.Listen)

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		return nil
	}
}

func (c *exportCmd) Run(ctx context.Context, app *appContext) error {
	cfg := app.cfg
	if c.BackendURL != "" {
		cfg.BackendURL = c.BackendURL
	}
	client, err := newClient(cfg, c.Mock, c.Seed)
	if err != nil {
		return err
	}
	driver, err := newDriver(cfg, client, nil, &app.logger)
	if err != nil {
		return err
	}
	defer driver.Close()

	if err := driver.Navigate(ctx, dashboard.SectionOverview); err != nil {
		return err
	}
	doc, err := driver.Export(ctx)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	target := c.Out
	if target == "" {
		target = doc.Filename(cfg.ExportPrefix())
	}
	if target != "-" {
		f, err := os.Create(target)
		if err != nil {
			return fmt.Errorf("stockdash: create export: %w", err)
		}
		defer f.Close()
		out = f
		app.logger.Info().Str("file", target).Msg("export written")
	}
	return doc.Encode(out)
}

func (c *sectionsCmd) Run(app *appContext) error {
	reg := dashboard.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tTITLE\tFETCHES\tBINDINGS")
	for _, plan := range reg.Plans() {
		kinds := make([]string, 0, len(plan.Requirements))
		for _, req := range plan.Requirements {
			kinds = append(kinds, string(req.Kind))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			plan.Section,
			plan.Section.Title(),
			strings.Join(kinds, ","),
			strings.Join(plan.Bindings(), ","),
		)
	}
	return w.Flush()
}

func newClient(cfg dashboard.Config, mock bool, seed uint64) (dashboard.DataClient, error) {
	if mock {
		return market.NewMockClient(market.DemoData(time.Now(), 90, seed)), nil
	}
	return market.NewHTTPClient(market.HTTPConfig{
		BaseURL: cfg.BackendURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.HTTPTimeout,
	})
}

func newDriver(cfg dashboard.Config, client dashboard.DataClient, hook dashboard.RefreshHook, logger *zerolog.Logger) (*dashboard.Driver, error) {
	var manifest *dashboard.ViewManifest
	if cfg.Manifest != "" {
		doc, err := dashboard.ReadManifest(cfg.Manifest)
		if err != nil {
			return nil, err
		}
		manifest = doc
	}
	return dashboard.NewDriver(dashboard.Options{
		Client: client,
		Charts: dashboard.NewEChartsBackend(
			dashboard.WithChartTheme(cfg.ChartTheme),
			dashboard.WithChartAssetsHost(cfg.AssetsHost),
		),
		Manifest:        manifest,
		Hook:            hook,
		Telemetry:       dashboard.LogTelemetry{Logger: *logger},
		Logger:          logger,
		RefreshInterval: cfg.RefreshInterval,
		LiveInterval:    cfg.LiveInterval,
		Company:         cfg.Company(),
		PredictionDays:  cfg.PredictionDays,
		Timeframe:       cfg.Timeframe,
	})
}
