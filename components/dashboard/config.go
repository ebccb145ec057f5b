package dashboard

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var configSchema []byte

// Config holds the settings of one dashboard process.
type Config struct {
	BackendURL      string        `yaml:"backend_url" json:"backend_url"`
	APIKey          string        `yaml:"api_key" json:"-"`
	HTTPTimeout     time.Duration `yaml:"http_timeout" json:"http_timeout"`
	RefreshInterval time.Duration `yaml:"refresh_interval" json:"refresh_interval"`
	LiveInterval    time.Duration `yaml:"live_interval" json:"live_interval"`
	PredictionDays  int           `yaml:"prediction_days" json:"prediction_days"`
	Timeframe       int           `yaml:"timeframe" json:"timeframe"`
	ChartTheme      string        `yaml:"chart_theme" json:"chart_theme"`
	AssetsHost      string        `yaml:"assets_host" json:"assets_host"`
	Listen          string        `yaml:"listen" json:"listen"`
	LogLevel        string        `yaml:"log_level" json:"log_level"`
	Symbol          string        `yaml:"symbol" json:"symbol"`
	Manifest        string        `yaml:"manifest" json:"manifest"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.BackendURL == "" {
		c.BackendURL = "http://localhost:5000"
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 10 * time.Second
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
	if c.LiveInterval <= 0 {
		c.LiveInterval = DefaultLiveInterval
	}
	if c.PredictionDays <= 0 {
		c.PredictionDays = DefaultPredictionDays
	}
	if c.Listen == "" {
		c.Listen = ":9876"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Symbol == "" {
		c.Symbol = "TSLA"
	}
}

// Company is the display name derived from the ticker.
func (c Config) Company() string {
	if strings.EqualFold(c.Symbol, "TSLA") || c.Symbol == "" {
		return "Tesla"
	}
	return strings.ToUpper(c.Symbol)
}

// ExportPrefix is the lower-case file prefix of exports.
func (c Config) ExportPrefix() string {
	return strings.ToLower(c.Company())
}

// LoadConfig reads a YAML config file. An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return Config{}, fmt.Errorf("dashboard: read config %s: %w", path, err)
	}
	cfg, err := DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("dashboard: config %s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig validates the document against the embedded schema and decodes it.
func DecodeConfig(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("dashboard: read config: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("dashboard: parse config: %w", err)
	}
	if err := validateConfig(raw); err != nil {
		return Config{}, err
	}
	var cfg Config
	if len(bytes.TrimSpace(data)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("dashboard: decode config: %w", err)
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

var (
	configSchemaOnce     sync.Once
	configSchemaCompiled *jsonschema.Schema
	configSchemaErr      error
)

func compiledConfigSchema() (*jsonschema.Schema, error) {
	configSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		const name = "config.schema.json"
		if err := compiler.AddResource(name, bytes.NewReader(configSchema)); err != nil {
			configSchemaErr = fmt.Errorf("dashboard: load config schema: %w", err)
			return
		}
		configSchemaCompiled, configSchemaErr = compiler.Compile(name)
		if configSchemaErr != nil {
			configSchemaErr = fmt.Errorf("dashboard: compile config schema: %w", configSchemaErr)
		}
	})
	return configSchemaCompiled, configSchemaErr
}

func validateConfig(raw map[string]any) error {
	schema, err := compiledConfigSchema()
	if err != nil {
		return err
	}
	payload := map[string]any{}
	if raw != nil {
		data, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("dashboard: marshal config: %w", err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("dashboard: normalize config: %w", err)
		}
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("dashboard: config failed validation: %w", err)
	}
	return nil
}
