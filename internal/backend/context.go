// Package backend keeps the registry of backend factories and the Context
// that instantiates backends and resolves device names.
package backend

import (
	"slices"
	"sync"

	"golang.org/x/exp/maps"
	"k8s.io/klog/v2"

	"github.com/born-ml/ndarray/internal/tensor"
)

// Factory creates a backend for a context.
type Factory func(ctx *Context) (tensor.Backend, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes a backend available under name. Backend packages call it
// from init. Registering the same name twice panics.
func Register(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, dup := factories[name]; dup {
		panic("backend: Register called twice for " + name)
	}
	factories[name] = f
}

// Registered returns the names of all registered backends, sorted.
func Registered() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := maps.Keys(factories)
	slices.Sort(names)
	return names
}

// Context owns backend instances and the default device.
// Backends are created lazily on first use and live as long as the context.
type Context struct {
	cfg Config

	mu            sync.Mutex
	backends      map[string]tensor.Backend
	defaultDevice tensor.Device
}

// NewContext creates a context configured by opts applied over DefaultConfig.
func NewContext(opts ...Option) *Context {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Context{
		cfg:      cfg,
		backends: make(map[string]tensor.Backend),
	}
}

var defaultContext = sync.OnceValue(func() *Context {
	return NewContext(WithConfig(ConfigFromEnv()))
})

// Default returns the process wide context configured from the environment.
func Default() *Context {
	return defaultContext()
}

// Config returns the context configuration.
func (c *Context) Config() Config {
	return c.cfg
}

// Backend returns the named backend, creating it on first use.
func (c *Context) Backend(name string) (tensor.Backend, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.backends[name]; ok {
		return b, nil
	}

	factoriesMu.RLock()
	f, ok := factories[name]
	factoriesMu.RUnlock()
	if !ok {
		return nil, tensor.DeviceErrorf("backend %q is not registered (registered: %v)", name, Registered())
	}

	b, err := f(c)
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("backend %q created with %d device(s)", name, b.DeviceCount())
	c.backends[name] = b
	return b, nil
}

// Device resolves a device name such as "cpu:0".
func (c *Context) Device(name string) (tensor.Device, error) {
	backendName, index, err := tensor.ParseDeviceName(name)
	if err != nil {
		return nil, err
	}
	b, err := c.Backend(backendName)
	if err != nil {
		return nil, err
	}
	return b.Device(index)
}

// DefaultDevice returns the device set by SetDefaultDevice, or the configured one.
func (c *Context) DefaultDevice() (tensor.Device, error) {
	c.mu.Lock()
	d := c.defaultDevice
	c.mu.Unlock()
	if d != nil {
		return d, nil
	}
	d, err := c.Device(c.cfg.DefaultDevice)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if c.defaultDevice == nil {
		c.defaultDevice = d
	}
	d = c.defaultDevice
	c.mu.Unlock()
	return d, nil
}

// SetDefaultDevice overrides the default device.
func (c *Context) SetDefaultDevice(d tensor.Device) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultDevice = d
}
