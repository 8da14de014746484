package host

import (
	"log/slog"

	"github.com/reglet-dev/sieve/hostfuncs"
	sievewazero "github.com/reglet-dev/sieve/infrastructure/wazero"
)

// executorConfig holds configuration for the Executor.
type executorConfig struct {
	hosts            *hostfuncs.Registry
	logger           *slog.Logger
	custom           []sievewazero.CustomHandler
	memoryLimitPages uint32
	maxRequestSize   uint32
	wasi             bool
}

func defaultExecutorConfig() executorConfig {
	return executorConfig{
		maxRequestSize: hostfuncs.DefaultMaxRequestSize,
	}
}

// Option defines a functional option for configuring the Executor.
type Option func(*executorConfig)

// WithHostFunctions configures the executor with a host function registry.
// Allowed host names are materialized from it on first use.
func WithHostFunctions(registry *hostfuncs.Registry) Option {
	return func(c *executorConfig) {
		c.hosts = registry
	}
}

// WithCustomHandler adds a raw wazero host function.
func WithCustomHandler(h sievewazero.CustomHandler) Option {
	return func(c *executorConfig) {
		c.custom = append(c.custom, h)
	}
}

// WithWASI backs "wasi_snapshot_preview1" with wazero's WASI implementation.
func WithWASI(enabled bool) Option {
	return func(c *executorConfig) {
		c.wasi = enabled
	}
}

// WithMemoryLimitPages caps each guest memory at pages * 64KiB.
// Zero keeps the wazero default.
func WithMemoryLimitPages(pages uint32) Option {
	return func(c *executorConfig) {
		c.memoryLimitPages = pages
	}
}

// WithMaxRequestSize sets the maximum host call request size.
func WithMaxRequestSize(size uint32) Option {
	return func(c *executorConfig) {
		c.maxRequestSize = size
	}
}

// WithExecutorLogger sets the logger. Defaults to slog.Default().
func WithExecutorLogger(logger *slog.Logger) Option {
	return func(c *executorConfig) {
		c.logger = logger
	}
}
