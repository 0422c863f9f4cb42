package kernels

import (
	"reflect"
	"slices"
	"sync"

	"github.com/born-ml/ndarray/internal/tensor"
	"golang.org/x/exp/maps"
)

// Table holds one backend's kernel implementations, keyed by operation name.
// Tables are filled once while the backend is constructed and only read afterwards.
type Table struct {
	backend string
	mu      sync.RWMutex
	impls   map[string]any
}

// NewTable creates an empty table for the named backend.
func NewTable(backend string) *Table {
	return &Table{
		backend: backend,
		impls:   make(map[string]any),
	}
}

// Register stores fn as the implementation of the named operation.
// It fails when the operation is not in the catalog or fn does not have the
// catalog signature.
func Register[F any](t *Table, name string, fn F) error {
	want, ok := catalog[name]
	if !ok {
		return tensor.DeviceErrorf("backend %q: unknown operation %q", t.backend, name)
	}
	if got := reflect.TypeOf(fn); got != want {
		return tensor.DeviceErrorf("backend %q: operation %s has type %v, want %v", t.backend, name, got, want)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.impls[name] = fn
	return nil
}

// MustRegister is like Register but panics on error.
// It is meant for backend constructors, where a mismatch is a programming error.
func MustRegister[F any](t *Table, name string, fn F) {
	if err := Register(t, name, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the implementation of the named operation.
func (t *Table) Lookup(name string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fn, ok := t.impls[name]
	return fn, ok
}

// Names returns the registered operation names in sorted order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := maps.Keys(t.impls)
	slices.Sort(names)
	return names
}

// Missing returns the catalog operations the table does not implement, sorted.
func (t *Table) Missing() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var missing []string
	names := maps.Keys(catalog)
	slices.Sort(names)
	for _, name := range names {
		if _, ok := t.impls[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// resolve looks up the named operation on the backend of dev and asserts its type.
func resolve[F any](dev tensor.Device, name string) (F, error) {
	var zero F
	if dev == nil {
		return zero, tensor.DeviceErrorf("%s: no device", name)
	}
	b := dev.Backend()
	impl, ok := b.Kernel(name)
	if !ok {
		return zero, tensor.DeviceErrorf("backend %q does not implement %s", b.Name(), name)
	}
	fn, ok := impl.(F)
	if !ok {
		return zero, tensor.DeviceErrorf("backend %q: operation %s has type %T, want %T", b.Name(), name, impl, zero)
	}
	return fn, nil
}
