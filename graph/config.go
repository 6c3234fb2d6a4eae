// config.go - Graph-Konfiguration: ueberschreibbare Optionen fuer
// Speicherart, Speicherlayout, lokale Arbeitsgruppengroesse,
// Prepack-Schwellwerte, Deskriptor-Pool-Sicherheitsfaktor,
// Abfragepool-Aktivierung, dynamische Formen und einen externen Adapter.
package graph

import (
	"log/slog"

	"github.com/vkcompute/graph/gpu"
	"github.com/vkcompute/graph/layout"
)

const (
	defaultPrepackThresholdNBytes        = 10 << 20 // 10 MiB
	defaultPrepackInitialThresholdNBytes = 10 << 20 // 10 MiB
	defaultDescriptorSafetyFactor        = 1.25
	prepackSubmitAndWaitCutoffNBytes     = 500 << 20 // 500 MiB
	minSupportedAPIVersion               = "1.0.0"
)

// Config holds every configurable knob of the graph.
type Config struct {
	Layout layout.Overrides

	PrepackThresholdNBytes        int64
	PrepackInitialThresholdNBytes int64

	DescriptorPoolSafetyFactor float64

	EnableQuerypool bool

	ExpectDynamicShapes bool

	ExternalAdapter gpu.Adapter

	Logger *slog.Logger

	CommandPoolInitialSize int
	CommandPoolBatchSize   int
}

// Option mutates a Config; graph.New(opts...) applies them over defaults,
// following a named/defaulted envconfig style expressed here as an
// in-process options API rather than environment variables since this
// configuration surface is in-process, not process-level.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		PrepackThresholdNBytes:        defaultPrepackThresholdNBytes,
		PrepackInitialThresholdNBytes: defaultPrepackInitialThresholdNBytes,
		DescriptorPoolSafetyFactor:    defaultDescriptorSafetyFactor,
		CommandPoolInitialSize:        4,
		CommandPoolBatchSize:          4,
	}
}

func WithLayoutOverrides(ov layout.Overrides) Option {
	return func(c *Config) { c.Layout = ov }
}

func WithPrepackThresholdNBytes(n int64) Option {
	return func(c *Config) { c.PrepackThresholdNBytes = n }
}

func WithPrepackInitialThresholdNBytes(n int64) Option {
	return func(c *Config) { c.PrepackInitialThresholdNBytes = n }
}

func WithDescriptorPoolSafetyFactor(f float64) Option {
	return func(c *Config) { c.DescriptorPoolSafetyFactor = f }
}

func WithQuerypool(enabled bool) Option {
	return func(c *Config) { c.EnableQuerypool = enabled }
}

func WithExpectDynamicShapes(enabled bool) Option {
	return func(c *Config) { c.ExpectDynamicShapes = enabled }
}

func WithExternalAdapter(a gpu.Adapter) Option {
	return func(c *Config) { c.ExternalAdapter = a }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

func WithCommandPoolSizing(initial, batch int) Option {
	return func(c *Config) { c.CommandPoolInitialSize, c.CommandPoolBatchSize = initial, batch }
}
