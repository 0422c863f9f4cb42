// Package cpu implements the default host backend. Every cpu device computes
// on Go-managed host memory; kernels run synchronously and split large loops
// with internal/parallel.
package cpu

import (
	"github.com/born-ml/ndarray/internal/backend"
	"github.com/born-ml/ndarray/internal/kernels"
	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
)

// Name is the backend name used in device names ("cpu:0").
const Name = "cpu"

func init() {
	backend.Register(Name, func(ctx *backend.Context) (tensor.Backend, error) {
		return New(WithParallel(ctx.Config().Parallel)), nil
	})
}

// CPUBackend implements the kernel catalog on host memory.
type CPUBackend struct {
	devices  []*Device
	table    *kernels.Table
	parallel parallel.Config
}

// Option configures a CPUBackend.
type Option func(*CPUBackend)

// WithParallel sets the loop splitting configuration.
func WithParallel(cfg parallel.Config) Option {
	return func(b *CPUBackend) {
		b.parallel = cfg
	}
}

// WithDevices sets the number of host devices. Each device is an independent
// execution target; transfers between them copy.
func WithDevices(n int) Option {
	return func(b *CPUBackend) {
		b.devices = make([]*Device, max(n, 1))
	}
}

// New creates a CPU backend with one device unless WithDevices says otherwise.
func New(opts ...Option) *CPUBackend {
	b := &CPUBackend{
		devices:  make([]*Device, 1),
		parallel: parallel.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(b)
	}
	for i := range b.devices {
		b.devices[i] = &Device{backend: b, index: i}
	}
	b.table = b.registerKernels()
	return b
}

// Name returns the backend name.
func (b *CPUBackend) Name() string {
	return Name
}

// DeviceCount returns the number of host devices.
func (b *CPUBackend) DeviceCount() int {
	return len(b.devices)
}

// Device returns the device with the given index.
func (b *CPUBackend) Device(index int) (tensor.Device, error) {
	if index < 0 || index >= len(b.devices) {
		return nil, tensor.DeviceErrorf("%s backend has %d device(s), no index %d", Name, len(b.devices), index)
	}
	return b.devices[index], nil
}

// MustDevice is like Device but panics on error.
func (b *CPUBackend) MustDevice(index int) *Device {
	if index < 0 || index >= len(b.devices) {
		panic(tensor.DeviceErrorf("%s backend has %d device(s), no index %d", Name, len(b.devices), index))
	}
	return b.devices[index]
}

// SupportsTransfer reports whether data can move between src and dst.
// Host devices exchange data with each other and with any device whose
// buffers are host addressable or that implements the copy itself.
func (b *CPUBackend) SupportsTransfer(src, dst tensor.Device) bool {
	return src != nil && dst != nil && (src.Backend() == tensor.Backend(b) || dst.Backend() == tensor.Backend(b))
}

// Kernel returns the implementation of the named operation.
func (b *CPUBackend) Kernel(name string) (any, bool) {
	return b.table.Lookup(name)
}

// Kernels returns the kernel table.
func (b *CPUBackend) Kernels() *kernels.Table {
	return b.table
}

func (b *CPUBackend) registerKernels() *kernels.Table {
	t := kernels.NewTable(Name)
	kernels.MustRegister(t, kernels.OpFill, kernels.FillFunc(b.fill))
	kernels.MustRegister(t, kernels.OpCopy, kernels.UnaryFunc(b.copy))
	kernels.MustRegister(t, kernels.OpAsType, kernels.UnaryFunc(b.asType))
	kernels.MustRegister(t, kernels.OpAdd, kernels.BinaryFunc(b.add))
	kernels.MustRegister(t, kernels.OpMul, kernels.BinaryFunc(b.mul))
	kernels.MustRegister(t, kernels.OpDivide, kernels.BinaryFunc(b.divide))
	kernels.MustRegister(t, kernels.OpSum, kernels.ReduceFunc(b.sum))
	kernels.MustRegister(t, kernels.OpAMax, kernels.ReduceFunc(b.amax))
	kernels.MustRegister(t, kernels.OpExp, kernels.UnaryFunc(b.exp))
	kernels.MustRegister(t, kernels.OpLog, kernels.UnaryFunc(b.log))
	kernels.MustRegister(t, kernels.OpTanh, kernels.UnaryFunc(b.tanh))
	kernels.MustRegister(t, kernels.OpSqrt, kernels.UnaryFunc(b.sqrt))
	kernels.MustRegister(t, kernels.OpSquare, kernels.UnaryFunc(b.square))
	kernels.MustRegister(t, kernels.OpIsNan, kernels.UnaryFunc(b.isNan))
	kernels.MustRegister(t, kernels.OpIsInf, kernels.UnaryFunc(b.isInf))
	kernels.MustRegister(t, kernels.OpArange, kernels.ArangeFunc(b.arange))
	kernels.MustRegister(t, kernels.OpIdentity, kernels.IdentityFunc(b.identity))
	kernels.MustRegister(t, kernels.OpEye, kernels.EyeFunc(b.eye))
	kernels.MustRegister(t, kernels.OpDiagflat, kernels.DiagflatFunc(b.diagflat))
	kernels.MustRegister(t, kernels.OpLinspace, kernels.LinspaceFunc(b.linspace))
	kernels.MustRegister(t, kernels.OpIfLessElseASSA, kernels.IfElseASSAFunc(b.ifLessElseASSA))
	kernels.MustRegister(t, kernels.OpIfGreaterElseASSA, kernels.IfElseASSAFunc(b.ifGreaterElseASSA))
	kernels.MustRegister(t, kernels.OpIfGreaterElseAAAA, kernels.IfElseAAAAFunc(b.ifGreaterElseAAAA))
	return t
}

// checkOperands verifies that every operand is a host view on one of this
// backend's devices.
func (b *CPUBackend) checkOperands(op string, operands ...*tensor.RawTensor) error {
	for i, x := range operands {
		if x.Device() == nil || x.Device().Backend() != tensor.Backend(b) {
			return tensor.DeviceErrorf("%s: operand %d is not on a %s device", op, i, Name)
		}
		if x.Buffer() == nil || x.Buffer().Bytes() == nil {
			return tensor.DeviceErrorf("%s: operand %d has no host memory", op, i)
		}
	}
	return nil
}
