// Package array implements the n-dimensional array handle: strided data on a
// device plus autograd nodes for any number of independent graphs.
//
// An *Array exclusively owns one body. Copy always allocates a new buffer;
// View, AsConstant(CopyKindView) and same-device ToDevice return arrays that
// share the buffer, and writes through one are visible through the others.
package array

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/born-ml/ndarray/internal/autodiff"
	"github.com/born-ml/ndarray/internal/tensor"
)

// Node is the autograd node type stored on arrays.
type Node = autodiff.Node[*Array]

// Array is a handle to one array body.
type Array struct {
	body *body
}

// body is the unit of aliasing: layout, buffer reference and graph nodes.
type body struct {
	raw   *tensor.RawTensor
	nodes map[autodiff.GraphID]*Node
	ref   *bufferRef
}

// bufferRef releases the body's buffer reference exactly once, either through
// Release or when the body's view becomes unreachable.
type bufferRef struct {
	once sync.Once
	buf  *tensor.Buffer
}

func (r *bufferRef) release() {
	r.once.Do(func() {
		if r.buf != nil {
			r.buf.Release()
		}
	})
}

// wrap builds an array around raw. The array takes over one reference of
// raw's buffer, which the caller must already hold.
func wrap(raw *tensor.RawTensor) *Array {
	ref := &bufferRef{buf: raw.Buffer()}
	b := &body{
		raw:   raw,
		nodes: make(map[autodiff.GraphID]*Node),
		ref:   ref,
	}
	// Tied to the view, not the body: kernels and callers of Raw hold the
	// view after the handle may be gone.
	runtime.AddCleanup(raw, func(r *bufferRef) { r.release() }, ref)
	return &Array{body: b}
}

// FromRaw wraps an existing view; the array takes an additional reference on
// its buffer.
func FromRaw(raw *tensor.RawTensor) *Array {
	raw.Buffer().Retain()
	return wrap(raw)
}

// Raw returns the strided view used by kernels. The view keeps the buffer
// reference of a alive for as long as it is reachable, unless a is released
// explicitly.
func (a *Array) Raw() *tensor.RawTensor {
	return a.body.raw
}

// Shape returns the array's shape.
func (a *Array) Shape() tensor.Shape {
	return a.body.raw.Shape()
}

// Strides returns the byte strides.
func (a *Array) Strides() tensor.Strides {
	return a.body.raw.Strides()
}

// DType returns the element type.
func (a *Array) DType() tensor.DataType {
	return a.body.raw.DType()
}

// Device returns the device holding the data.
func (a *Array) Device() tensor.Device {
	return a.body.raw.Device()
}

// Buffer returns the underlying buffer.
func (a *Array) Buffer() *tensor.Buffer {
	return a.body.raw.Buffer()
}

// Offset returns the byte offset of the first element in the buffer.
func (a *Array) Offset() int {
	return a.body.raw.Offset()
}

// Ndim returns the rank.
func (a *Array) Ndim() int {
	return a.body.raw.Ndim()
}

// NumElements returns the total number of elements.
func (a *Array) NumElements() int {
	return a.body.raw.NumElements()
}

// TotalBytes returns the packed size of the elements in bytes.
func (a *Array) TotalBytes() int {
	return a.body.raw.ByteSize()
}

// ElementBytes returns the size of one element.
func (a *Array) ElementBytes() int {
	return a.DType().Size()
}

// IsContiguous reports whether the array is row-major and packed.
func (a *Array) IsContiguous() bool {
	return a.body.raw.IsContiguous()
}

// GraphIDs returns the graphs the array participates in, sorted.
func (a *Array) GraphIDs() []autodiff.GraphID {
	return autodiff.SortedGraphIDs(a.body.nodes)
}

// Node returns the array's node for graph, or nil.
func (a *Array) Node(graph autodiff.GraphID) *Node {
	return a.body.nodes[graph]
}

// Release drops the array's reference on its buffer. The array must not be
// used afterwards. Calling Release is optional; unreachable arrays release
// their reference when collected.
func (a *Array) Release() {
	a.body.ref.release()
}

// String returns a short description, without element values.
func (a *Array) String() string {
	return fmt.Sprintf("Array[%s]%v on %s", a.DType(), a.Shape(), deviceName(a.Device()))
}

// Aliased reports whether a and b share a buffer and their reachable byte
// ranges overlap.
func Aliased(a, b *Array) bool {
	if a.Buffer() != b.Buffer() {
		return false
	}
	alo, ahi, aok := a.Strides().Span(a.Shape())
	blo, bhi, bok := b.Strides().Span(b.Shape())
	if !aok || !bok {
		return false
	}
	aStart, aEnd := a.Offset()+alo, a.Offset()+ahi+a.ElementBytes()
	bStart, bEnd := b.Offset()+blo, b.Offset()+bhi+b.ElementBytes()
	return aStart < bEnd && bStart < aEnd
}

func deviceName(d tensor.Device) string {
	if d == nil {
		return "<nil>"
	}
	return d.Name()
}
