package backend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndarray/internal/backend"
	"github.com/born-ml/ndarray/internal/backend/cpu"
	"github.com/born-ml/ndarray/internal/backend/mock"
	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(backend.EnvDevice, "mock:0")
	t.Setenv(backend.EnvThreads, "1")

	cfg := backend.ConfigFromEnv()
	assert.Equal(t, "mock:0", cfg.DefaultDevice)
	assert.Equal(t, 1, cfg.Parallel.NumWorkers)
	assert.False(t, cfg.Parallel.Enabled)

	t.Setenv(backend.EnvDevice, "")
	t.Setenv(backend.EnvThreads, "bogus")
	cfg = backend.ConfigFromEnv()
	assert.Equal(t, backend.DefaultDeviceName, cfg.DefaultDevice)
	assert.Equal(t, parallel.DefaultConfig(), cfg.Parallel)
}

func TestRegister_Duplicate(t *testing.T) {
	assert.Contains(t, backend.Registered(), cpu.Name)
	assert.Panics(t, func() {
		backend.Register(cpu.Name, func(*backend.Context) (tensor.Backend, error) { return cpu.New(), nil })
	})

	mock.Register()
	assert.NotPanics(t, mock.Register)
	assert.Contains(t, backend.Registered(), mock.Name)
}

func TestContext_Device(t *testing.T) {
	ctx := backend.NewContext()

	d, err := ctx.Device("cpu:0")
	require.NoError(t, err)
	assert.Equal(t, "cpu:0", d.Name())

	// Backends are created once per context.
	again, err := ctx.Device("cpu")
	require.NoError(t, err)
	assert.Same(t, d, again)

	_, err = ctx.Device("cpu:3")
	assert.ErrorIs(t, err, tensor.ErrDevice)
	_, err = ctx.Device("tpu:0")
	assert.ErrorIs(t, err, tensor.ErrDevice)
	_, err = ctx.Device("cpu:x")
	assert.ErrorIs(t, err, tensor.ErrDevice)

	other := backend.NewContext()
	d2, err := other.Device("cpu:0")
	require.NoError(t, err)
	assert.False(t, tensor.SameDevice(d, d2))
}

func TestContext_DefaultDevice(t *testing.T) {
	mock.Register()
	ctx := backend.NewContext(backend.WithDefaultDevice("mock:0"))

	d, err := ctx.DefaultDevice()
	require.NoError(t, err)
	assert.Equal(t, mock.Name, d.Backend().Name())

	host, err := ctx.Device("cpu:0")
	require.NoError(t, err)
	ctx.SetDefaultDevice(host)
	d, err = ctx.DefaultDevice()
	require.NoError(t, err)
	assert.Same(t, host, d)

	bad := backend.NewContext(backend.WithDefaultDevice("nowhere:0"))
	_, err = bad.DefaultDevice()
	assert.ErrorIs(t, err, tensor.ErrDevice)
}

func TestContext_Options(t *testing.T) {
	p := parallel.Sequential()
	ctx := backend.NewContext(backend.WithParallel(p))
	assert.Equal(t, p, ctx.Config().Parallel)
	assert.Equal(t, backend.DefaultDeviceName, ctx.Config().DefaultDevice)

	cfg := backend.Config{DefaultDevice: "cpu:0", Parallel: p}
	assert.Equal(t, cfg, backend.NewContext(backend.WithConfig(cfg)).Config())
}
