package array

import (
	"github.com/born-ml/ndarray/internal/autodiff"
	"github.com/born-ml/ndarray/internal/kernels"
	"github.com/born-ml/ndarray/internal/tensor"
)

// CopyKind selects whether AsConstant shares or duplicates the data.
type CopyKind int

const (
	// CopyKindCopy allocates a new buffer.
	CopyKindCopy CopyKind = iota
	// CopyKindView shares the source buffer.
	CopyKindView
)

// String implements fmt.Stringer.
func (k CopyKind) String() string {
	if k == CopyKindView {
		return "view"
	}
	return "copy"
}

// copyConst copies a into a new contiguous array on the same device without
// recording the operation.
func (a *Array) copyConst() (*Array, error) {
	out, err := EmptyLike(a, a.Device())
	if err != nil {
		return nil, err
	}
	if err := kernels.Copy(a.Raw(), out.Raw()); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// Copy returns a contiguous deep copy of a. The copy takes part in every graph
// a does and passes gradients back to a unchanged.
func (a *Array) Copy() (*Array, error) {
	out, err := a.copyConst()
	if err != nil {
		return nil, err
	}
	if err := connect("copy", out, nil, Input{Array: a}); err != nil {
		return nil, err
	}
	return out, nil
}

// View returns an array sharing a's buffer and layout, detached from every graph.
func (a *Array) View() *Array {
	return FromRaw(a.Raw())
}

// AsConstant returns an array holding a's values that is detached from the
// given graphs, or from all graphs when none is given. Graphs not listed stay
// attached through a pass-through node.
func (a *Array) AsConstant(kind CopyKind, graphs ...autodiff.GraphID) (*Array, error) {
	var out *Array
	if kind == CopyKindView {
		out = a.View()
	} else {
		var err error
		if out, err = a.copyConst(); err != nil {
			return nil, err
		}
	}
	if len(graphs) == 0 {
		return out, nil
	}
	if err := connect("as_constant", out, graphs, Input{Array: a}); err != nil {
		return nil, err
	}
	return out, nil
}

// ToDevice returns a on dev. On the same device the result shares a's buffer;
// otherwise the data is transferred into a new contiguous buffer. Graph
// attachments are kept and gradients flow back to a's device.
func (a *Array) ToDevice(dev tensor.Device) (*Array, error) {
	if tensor.SameDevice(a.Device(), dev) {
		out := a.View()
		if err := connect("to_device", out, nil, Input{Array: a}); err != nil {
			return nil, err
		}
		return out, nil
	}
	out, err := a.transfer(dev)
	if err != nil {
		return nil, err
	}
	src := a.Device()
	back := func(g *Array) (*Array, error) {
		return g.transfer(src)
	}
	if err := connect("to_device", out, nil, Input{Array: a, Backward: back}); err != nil {
		return nil, err
	}
	return out, nil
}

// transfer moves a's elements onto another device without recording anything.
func (a *Array) transfer(dev tensor.Device) (*Array, error) {
	src := a
	if !a.IsContiguous() {
		c, err := a.copyConst()
		if err != nil {
			return nil, err
		}
		defer c.Release()
		src = c
	}
	from := src.Device()
	size := src.TotalBytes()

	var (
		buf *tensor.Buffer
		err error
	)
	switch {
	case from.Backend().SupportsTransfer(from, dev):
		buf, err = from.TransferDataTo(dev, src.Buffer(), src.Offset(), size)
	case dev.Backend().SupportsTransfer(from, dev):
		buf, err = dev.TransferDataFrom(from, src.Buffer(), src.Offset(), size)
	default:
		return nil, tensor.DeviceErrorf("no transfer path from %s to %s", from.Name(), dev.Name())
	}
	if err != nil {
		return nil, err
	}
	strides, err := tensor.ContiguousStrides(a.Shape(), a.ElementBytes())
	if err != nil {
		buf.Release()
		return nil, err
	}
	raw, err := tensor.NewRawTensor(a.Shape(), strides, a.DType(), dev, buf, 0)
	if err != nil {
		buf.Release()
		return nil, err
	}
	return wrap(raw), nil
}

// Fill sets every element of a to value in place.
func (a *Array) Fill(value any) error {
	v, err := tensor.ToScalar(value)
	if err != nil {
		return err
	}
	return kernels.Fill(a.Raw(), v)
}
