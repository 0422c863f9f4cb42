package array

import (
	"github.com/born-ml/ndarray/internal/kernels"
	"github.com/born-ml/ndarray/internal/tensor"
)

type binaryKernel func(a, b, out *tensor.RawTensor) error

// binaryConst applies k to x and y into a new array on x's device without
// recording the operation.
func binaryConst(k binaryKernel, x, y *Array) (*Array, error) {
	out, err := EmptyLike(x, x.Device())
	if err != nil {
		return nil, err
	}
	if err := k(x.Raw(), y.Raw(), out.Raw()); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// scaledBy returns a backward function multiplying the output gradient by a
// captured value.
func scaledBy(v *Array) BackwardFunc {
	return func(g *Array) (*Array, error) {
		return binaryConst(kernels.Mul, g, v)
	}
}

// dividedBy returns a backward function dividing the output gradient by a
// captured value.
func dividedBy(v *Array) BackwardFunc {
	return func(g *Array) (*Array, error) {
		return binaryConst(kernels.Divide, g, v)
	}
}

// Add returns a + b. Both arrays must have the same shape, dtype and device.
func Add(a, b *Array) (*Array, error) {
	out, err := binaryConst(kernels.Add, a, b)
	if err != nil {
		return nil, err
	}
	if err := connect("add", out, nil, Input{Array: a}, Input{Array: b}); err != nil {
		return nil, err
	}
	return out, nil
}

// IAdd adds b to a in place.
func (a *Array) IAdd(b *Array) error {
	if err := kernels.Add(a.Raw(), b.Raw(), a.Raw()); err != nil {
		return err
	}
	return connect("iadd", a, nil, Input{Array: a}, Input{Array: b})
}

// Mul returns the elementwise product a * b.
func Mul(a, b *Array) (*Array, error) {
	aIn, bIn, err := mulInputs(a, b)
	if err != nil {
		return nil, err
	}
	out, err := binaryConst(kernels.Mul, a, b)
	if err != nil {
		return nil, err
	}
	if err := connect("mul", out, nil, aIn, bIn); err != nil {
		return nil, err
	}
	return out, nil
}

// IMul multiplies a by b in place.
func (a *Array) IMul(b *Array) error {
	aIn, bIn, err := mulInputs(a, b)
	if err != nil {
		return err
	}
	if err := kernels.Mul(a.Raw(), b.Raw(), a.Raw()); err != nil {
		return err
	}
	return connect("imul", a, nil, aIn, bIn)
}

// mulInputs captures the values each side of a product needs for its
// gradient. A value is copied only when the other side can receive a gradient,
// so later writes to a or b do not change what backward sees.
func mulInputs(a, b *Array) (Input, Input, error) {
	aIn, bIn := Input{Array: a}, Input{Array: b}
	if a.requiresAnyGrad() {
		snap, err := b.copyConst()
		if err != nil {
			return Input{}, Input{}, err
		}
		aIn.Backward = scaledBy(snap)
	}
	if b.requiresAnyGrad() {
		snap, err := a.copyConst()
		if err != nil {
			return Input{}, Input{}, err
		}
		bIn.Backward = scaledBy(snap)
	}
	return aIn, bIn, nil
}

// Divide returns the elementwise quotient a / b.
func Divide(a, b *Array) (*Array, error) {
	out, err := binaryConst(kernels.Divide, a, b)
	if err != nil {
		return nil, err
	}
	aIn, bIn := Input{Array: a}, Input{Array: b}
	if a.requiresAnyGrad() || b.requiresAnyGrad() {
		den, err := b.copyConst()
		if err != nil {
			return nil, err
		}
		aIn.Backward = dividedBy(den)
		if b.requiresAnyGrad() {
			q, err := out.copyConst()
			if err != nil {
				return nil, err
			}
			// d(a/b)/db = -(a/b)/b
			bIn.Backward = func(g *Array) (*Array, error) {
				gq, err := binaryConst(kernels.Mul, g, q)
				if err != nil {
					return nil, err
				}
				defer gq.Release()
				r, err := binaryConst(kernels.Divide, gq, den)
				if err != nil {
					return nil, err
				}
				defer r.Release()
				return scaleConst(r, -1)
			}
		}
	}
	if err := connect("divide", out, nil, aIn, bIn); err != nil {
		return nil, err
	}
	return out, nil
}
