package cpu_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndarray/internal/backend/cpu"
	"github.com/born-ml/ndarray/internal/backend/mock"
	"github.com/born-ml/ndarray/internal/kernels"
	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
)

func newRaw(t *testing.T, dev tensor.Device, dt tensor.DataType, shape tensor.Shape, data ...float64) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.AllocRaw(shape, dt, dev)
	require.NoError(t, err)
	host := r.Buffer().Bytes()
	for i, v := range data {
		tensor.PutElement(host[r.ByteOffsetAt(i):], dt, tensor.FloatScalar(v))
	}
	return r
}

func read(r *tensor.RawTensor) []float64 {
	host := r.Buffer().Bytes()
	out := make([]float64, 0, r.NumElements())
	for _, off := range r.ByteOffsets() {
		out = append(out, tensor.Element(host[off:], r.DType()).Float64())
	}
	return out
}

// transposed returns a (cols, rows) view of the contiguous 2-D r.
func transposed(t *testing.T, r *tensor.RawTensor) *tensor.RawTensor {
	t.Helper()
	s := r.Strides().Dims()
	st, err := tensor.NewStrides(s[1], s[0])
	require.NoError(t, err)
	v, err := r.WithLayout(tensor.Shape{r.Shape()[1], r.Shape()[0]}, st, r.Offset())
	require.NoError(t, err)
	return v
}

func TestBackend_Devices(t *testing.T) {
	b := cpu.New(cpu.WithDevices(2))
	assert.Equal(t, cpu.Name, b.Name())
	assert.Equal(t, 2, b.DeviceCount())

	d1, err := b.Device(1)
	require.NoError(t, err)
	assert.Equal(t, "cpu:1", d1.Name())
	_, err = b.Device(2)
	assert.ErrorIs(t, err, tensor.ErrDevice)
	assert.Panics(t, func() { b.MustDevice(-1) })

	assert.Empty(t, b.Kernels().Missing())
	assert.True(t, b.SupportsTransfer(b.MustDevice(0), d1))
	m, _ := mock.New(1).Device(0)
	assert.True(t, b.SupportsTransfer(m, d1))
	assert.False(t, b.SupportsTransfer(nil, d1))
}

func TestDevice_Memory(t *testing.T) {
	b := cpu.New(cpu.WithDevices(2))
	d0, d1 := b.MustDevice(0), b.MustDevice(1)

	src, err := d0.FromHostMemory([]byte{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	dst, err := d0.Allocate(4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, dst.Bytes())

	require.NoError(t, d0.MemoryCopyFrom(dst, 1, src, 2, 3))
	assert.Equal(t, []byte{0, 3, 4, 5}, dst.Bytes())
	assert.ErrorIs(t, d0.MemoryCopyFrom(dst, 2, src, 0, 3), tensor.ErrDimension)

	// Buffers of another device are rejected.
	other, _ := d1.Allocate(4)
	assert.ErrorIs(t, d0.MemoryCopyFrom(other, 0, src, 0, 1), tensor.ErrDevice)

	moved, err := d0.TransferDataTo(d1, src, 4, 2)
	require.NoError(t, err)
	assert.Same(t, tensor.Device(d1), moved.Device())
	assert.Equal(t, []byte{5, 6}, moved.Bytes())

	_, err = d0.Allocate(-1)
	assert.ErrorIs(t, err, tensor.ErrResource)
	assert.NoError(t, d0.Synchronize())
}

func TestDevice_TransferToMock(t *testing.T) {
	d := cpu.New().MustDevice(0)
	m, err := mock.New(1).Device(0)
	require.NoError(t, err)

	src, _ := d.FromHostMemory([]byte{9, 8, 7})
	out, err := d.TransferDataTo(m, src, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "mock:0", out.Device().Name())
	assert.Equal(t, []byte{8, 7}, out.Bytes())

	back, err := d.TransferDataFrom(m, out, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{8, 7}, back.Bytes())
}

func TestKernels_Arith(t *testing.T) {
	for _, dt := range []tensor.DataType{tensor.Float16, tensor.Float32, tensor.Float64, tensor.Int32, tensor.Int8} {
		t.Run(dt.String(), func(t *testing.T) {
			d := cpu.New().MustDevice(0)
			a := newRaw(t, d, dt, tensor.Shape{2, 2}, 1, 2, 3, 4)
			b := newRaw(t, d, dt, tensor.Shape{2, 2}, 5, 6, 7, 8)
			out := newRaw(t, d, dt, tensor.Shape{2, 2})

			require.NoError(t, kernels.Add(a, b, out))
			assert.Equal(t, []float64{6, 8, 10, 12}, read(out))
			require.NoError(t, kernels.Mul(a, b, out))
			assert.Equal(t, []float64{5, 12, 21, 32}, read(out))

			// Non-contiguous operands take the strided path.
			require.NoError(t, kernels.Add(transposed(t, a), b, out))
			assert.Equal(t, []float64{6, 9, 9, 12}, read(out))
		})
	}
}

func TestKernels_BoolArith(t *testing.T) {
	d := cpu.New().MustDevice(0)
	a := newRaw(t, d, tensor.Bool, tensor.Shape{4}, 0, 0, 1, 1)
	b := newRaw(t, d, tensor.Bool, tensor.Shape{4}, 0, 1, 0, 1)
	out := newRaw(t, d, tensor.Bool, tensor.Shape{4})

	require.NoError(t, kernels.Add(a, b, out))
	assert.Equal(t, []float64{0, 1, 1, 1}, read(out))
	require.NoError(t, kernels.Mul(a, b, out))
	assert.Equal(t, []float64{0, 0, 0, 1}, read(out))
}

func TestKernels_Divide(t *testing.T) {
	d := cpu.New().MustDevice(0)
	for _, dt := range []tensor.DataType{tensor.Float32, tensor.Float64} {
		a := newRaw(t, d, dt, tensor.Shape{3}, 1, 3, -2)
		b := newRaw(t, d, dt, tensor.Shape{3}, 4, 0.5, 8)
		out := newRaw(t, d, dt, tensor.Shape{3})
		require.NoError(t, kernels.Divide(a, b, out), dt)
		assert.Equal(t, []float64{0.25, 6, -0.25}, read(out), dt)
	}

	// Integers truncate; a zero divisor gives zero.
	a := newRaw(t, d, tensor.Int32, tensor.Shape{4}, 7, -7, 5, 1)
	b := newRaw(t, d, tensor.Int32, tensor.Shape{4}, 2, 2, 0, 1)
	out := newRaw(t, d, tensor.Int32, tensor.Shape{4})
	require.NoError(t, kernels.Divide(a, b, out))
	assert.Equal(t, []float64{3, -3, 0, 1}, read(out))

	p := newRaw(t, d, tensor.Bool, tensor.Shape{1}, 1)
	assert.ErrorIs(t, kernels.Divide(p, p, p), tensor.ErrDtype)
}

func TestKernels_Parallel(t *testing.T) {
	cfg := parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}
	d := cpu.New(cpu.WithParallel(cfg)).MustDevice(0)

	n := 1000
	data := make([]float64, n)
	for i := range data {
		data[i] = float64(i)
	}
	a := newRaw(t, d, tensor.Float32, tensor.Shape{n}, data...)
	out := newRaw(t, d, tensor.Float32, tensor.Shape{n})
	require.NoError(t, kernels.Add(a, a, out))
	require.NoError(t, kernels.Square(out, out))

	got := read(out)
	for i := range got {
		require.Equal(t, float64(4*i*i), got[i], "element %d", i)
	}
}

func TestKernels_Copy(t *testing.T) {
	d := cpu.New().MustDevice(0)
	a := newRaw(t, d, tensor.Int16, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	out := newRaw(t, d, tensor.Int16, tensor.Shape{3, 2})

	require.NoError(t, kernels.Copy(transposed(t, a), out))
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, read(out))
	assert.True(t, out.IsContiguous())

	f := newRaw(t, d, tensor.Float16, tensor.Shape{3, 2})
	require.NoError(t, kernels.AsType(out, f))
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, read(f))

	b := newRaw(t, d, tensor.Bool, tensor.Shape{3, 2})
	require.NoError(t, kernels.Fill(f, tensor.FloatScalar(0.5)))
	require.NoError(t, kernels.AsType(f, b))
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 1}, read(b))
}

func TestKernels_Math(t *testing.T) {
	d := cpu.New().MustDevice(0)
	x := newRaw(t, d, tensor.Float64, tensor.Shape{3}, 0.5, 1, 4)
	out := newRaw(t, d, tensor.Float64, tensor.Shape{3})

	tests := []struct {
		name string
		fn   func(x, out *tensor.RawTensor) error
		want func(float64) float64
	}{
		{"Exp", kernels.Exp, math.Exp},
		{"Log", kernels.Log, math.Log},
		{"Tanh", kernels.Tanh, math.Tanh},
		{"Sqrt", kernels.Sqrt, math.Sqrt},
		{"Square", kernels.Square, func(v float64) float64 { return v * v }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.fn(x, out))
			want := []float64{tt.want(0.5), tt.want(1), tt.want(4)}
			if diff := cmp.Diff(want, read(out), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	ints := newRaw(t, d, tensor.Int64, tensor.Shape{2}, -3, 4)
	require.NoError(t, kernels.Square(ints, ints))
	assert.Equal(t, []float64{9, 16}, read(ints))
}

func TestKernels_Predicates(t *testing.T) {
	d := cpu.New().MustDevice(0)
	x := newRaw(t, d, tensor.Float32, tensor.Shape{4}, 1, math.NaN(), math.Inf(1), math.Inf(-1))
	out := newRaw(t, d, tensor.Bool, tensor.Shape{4})

	require.NoError(t, kernels.IsNan(x, out))
	assert.Equal(t, []float64{0, 1, 0, 0}, read(out))
	require.NoError(t, kernels.IsInf(x, out))
	assert.Equal(t, []float64{0, 0, 1, 1}, read(out))

	ints := newRaw(t, d, tensor.Int32, tensor.Shape{4}, 1, 2, 3, 4)
	require.NoError(t, kernels.IsNan(ints, out))
	assert.Equal(t, []float64{0, 0, 0, 0}, read(out))
}

func TestKernels_Reduce(t *testing.T) {
	d := cpu.New().MustDevice(0)
	a := newRaw(t, d, tensor.Float64, tensor.Shape{2, 3}, 1, 5, 3, 4, 2, 6)

	rows := newRaw(t, d, tensor.Float64, tensor.Shape{2})
	require.NoError(t, kernels.Sum(a, []int{1}, rows))
	assert.Equal(t, []float64{9, 12}, read(rows))

	cols := newRaw(t, d, tensor.Float64, tensor.Shape{3})
	require.NoError(t, kernels.Sum(a, []int{0}, cols))
	assert.Equal(t, []float64{5, 7, 9}, read(cols))
	require.NoError(t, kernels.AMax(a, []int{-2}, cols))
	assert.Equal(t, []float64{4, 5, 6}, read(cols))

	all := newRaw(t, d, tensor.Float64, tensor.Shape{})
	require.NoError(t, kernels.Sum(a, []int{0, 1}, all))
	assert.Equal(t, []float64{21}, read(all))
	require.NoError(t, kernels.Sum(transposed(t, a), []int{0, 1}, all))
	assert.Equal(t, []float64{21}, read(all))

	// Reducing the transposed view over its first axis sums the original rows.
	require.NoError(t, kernels.Sum(transposed(t, a), []int{0}, rows))
	assert.Equal(t, []float64{9, 12}, read(rows))

	ints := newRaw(t, d, tensor.Int32, tensor.Shape{2, 2}, -1, -7, -3, -2)
	imax := newRaw(t, d, tensor.Int32, tensor.Shape{2})
	require.NoError(t, kernels.AMax(ints, []int{1}, imax))
	assert.Equal(t, []float64{-1, -2}, read(imax))

	// Sum over no axes copies.
	same := newRaw(t, d, tensor.Float64, tensor.Shape{2, 3})
	require.NoError(t, kernels.Sum(a, nil, same))
	assert.Equal(t, read(a), read(same))

	// Sum of an empty array is zero.
	empty := newRaw(t, d, tensor.Float64, tensor.Shape{0, 2})
	zero := newRaw(t, d, tensor.Float64, tensor.Shape{2}, 3, 3)
	require.NoError(t, kernels.Sum(empty, []int{0}, zero))
	assert.Equal(t, []float64{0, 0}, read(zero))
}

func TestKernels_Creation(t *testing.T) {
	d := cpu.New().MustDevice(0)

	r := newRaw(t, d, tensor.Int64, tensor.Shape{4})
	require.NoError(t, kernels.Arange(tensor.IntScalar(3), tensor.IntScalar(-2), r))
	assert.Equal(t, []float64{3, 1, -1, -3}, read(r))

	f := newRaw(t, d, tensor.Float32, tensor.Shape{3})
	require.NoError(t, kernels.Arange(tensor.FloatScalar(0), tensor.FloatScalar(0.5), f))
	assert.Equal(t, []float64{0, 0.5, 1}, read(f))

	id := newRaw(t, d, tensor.Float32, tensor.Shape{3, 3}, 9, 9, 9, 9, 9, 9, 9, 9, 9)
	require.NoError(t, kernels.Identity(id))
	assert.Equal(t, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}, read(id))

	require.NoError(t, kernels.Eye(-1, id))
	assert.Equal(t, []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, read(id))

	v := newRaw(t, d, tensor.Float32, tensor.Shape{2}, 4, 5)
	require.NoError(t, kernels.Diagflat(v, 1, id))
	assert.Equal(t, []float64{0, 4, 0, 0, 0, 5, 0, 0, 0}, read(id))

	ls := newRaw(t, d, tensor.Float64, tensor.Shape{5})
	require.NoError(t, kernels.Linspace(-1, 1, ls))
	assert.Equal(t, []float64{-1, -0.5, 0, 0.5, 1}, read(ls))

	one := newRaw(t, d, tensor.Float64, tensor.Shape{1})
	require.NoError(t, kernels.Linspace(2, 8, one))
	assert.Equal(t, []float64{2}, read(one))
}

func TestKernels_IfElse(t *testing.T) {
	d := cpu.New().MustDevice(0)
	x := newRaw(t, d, tensor.Float32, tensor.Shape{4}, -2, 0, 1, 3)
	neg := newRaw(t, d, tensor.Float32, tensor.Shape{4}, 10, 20, 30, 40)
	out := newRaw(t, d, tensor.Float32, tensor.Shape{4})

	require.NoError(t, kernels.IfLessElseASSA(x, tensor.FloatScalar(0), tensor.FloatScalar(0), x, out))
	assert.Equal(t, []float64{0, 0, 1, 3}, read(out))

	require.NoError(t, kernels.IfGreaterElseASSA(x, tensor.FloatScalar(0.5), tensor.FloatScalar(-1), neg, out))
	assert.Equal(t, []float64{10, 20, -1, -1}, read(out))

	y := newRaw(t, d, tensor.Float32, tensor.Shape{4}, 0, 0, 2, 2)
	pos := newRaw(t, d, tensor.Float32, tensor.Shape{4}, 1, 1, 1, 1)
	zero := newRaw(t, d, tensor.Float32, tensor.Shape{4})
	require.NoError(t, kernels.IfGreaterElseAAAA(x, y, pos, zero, out))
	assert.Equal(t, []float64{0, 0, 0, 1}, read(out))
}

func TestKernels_RejectForeignOperands(t *testing.T) {
	b := cpu.New()
	m, err := mock.New(1).Device(0)
	require.NoError(t, err)
	foreign := newRaw(t, m, tensor.Float32, tensor.Shape{2})

	fn, ok := b.Kernel(kernels.OpFill)
	require.True(t, ok)
	err = fn.(kernels.FillFunc)(foreign, tensor.FloatScalar(1))
	assert.ErrorIs(t, err, tensor.ErrDevice)
}
