package backend

import (
	"os"
	"strconv"

	"github.com/born-ml/ndarray/internal/parallel"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvDevice  = "NDARRAY_DEVICE"
	EnvThreads = "NDARRAY_THREADS"
)

// DefaultDeviceName is used when no default device is configured.
const DefaultDeviceName = "cpu:0"

// Config holds the settings shared by every backend created from a Context.
type Config struct {
	DefaultDevice string          // Device name such as "cpu:0".
	Parallel      parallel.Config // Host kernel parallelism.
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		DefaultDevice: DefaultDeviceName,
		Parallel:      parallel.DefaultConfig(),
	}
}

// ConfigFromEnv returns DefaultConfig overridden by NDARRAY_DEVICE and NDARRAY_THREADS.
// NDARRAY_THREADS=1 disables host parallelism.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if dev := os.Getenv(EnvDevice); dev != "" {
		cfg.DefaultDevice = dev
	}
	if s := os.Getenv(EnvThreads); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			cfg.Parallel.NumWorkers = n
			cfg.Parallel.Enabled = n > 1
		}
	}
	return cfg
}

// Option configures a Context.
type Option func(*Config)

// WithDefaultDevice sets the default device name.
func WithDefaultDevice(name string) Option {
	return func(c *Config) {
		c.DefaultDevice = name
	}
}

// WithParallel sets host kernel parallelism.
func WithParallel(p parallel.Config) Option {
	return func(c *Config) {
		c.Parallel = p
	}
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}
