package dashboard

import (
	core "github.com/goliatone/go-stockdash/components/dashboard"
)

// Driver exposes the underlying components/dashboard.Driver type.
type Driver = core.Driver

// Options re-export for convenience.
type Options = core.Options

// Config re-export for convenience.
type Config = core.Config

// Section re-export for convenience.
type Section = core.Section

// ViewPayload re-export for convenience.
type ViewPayload = core.ViewPayload

// NewDriver proxies to the internal constructor.
func NewDriver(opts Options) (*Driver, error) {
	return core.NewDriver(opts)
}

// LoadConfig proxies to the internal config loader.
func LoadConfig(path string) (Config, error) {
	return core.LoadConfig(path)
}
