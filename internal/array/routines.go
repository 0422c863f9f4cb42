package array

import (
	"github.com/born-ml/ndarray/internal/kernels"
	"github.com/born-ml/ndarray/internal/tensor"
)

type unaryKernel func(x, out *tensor.RawTensor) error

// unaryConst applies k to x into a new array of dtype without recording it.
func unaryConst(k unaryKernel, x *Array, dtype tensor.DataType) (*Array, error) {
	out, err := Empty(x.Shape(), dtype, x.Device())
	if err != nil {
		return nil, err
	}
	if err := k(x.Raw(), out.Raw()); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// scaleConst returns c * x without recording it.
func scaleConst(x *Array, c float64) (*Array, error) {
	cs, err := FullLike(x, c, x.Device())
	if err != nil {
		return nil, err
	}
	defer cs.Release()
	return binaryConst(kernels.Mul, x, cs)
}

// recordUnary connects out to x through backward, computing backward's
// captured value only when x takes part in a graph.
func recordUnary(name string, x, out *Array, backward func() (BackwardFunc, error)) (*Array, error) {
	in := Input{Array: x}
	if x.requiresAnyGrad() {
		bw, err := backward()
		if err != nil {
			return nil, err
		}
		in.Backward = bw
	}
	if err := connect(name, out, nil, in); err != nil {
		return nil, err
	}
	return out, nil
}

// Sum adds the elements of a over axes, or over all axes when none is given.
// Reduced axes are removed from the result shape.
func Sum(a *Array, axes ...int) (*Array, error) {
	sorted, err := reductionAxes(kernels.OpSum, a, axes)
	if err != nil {
		return nil, err
	}
	out, err := Empty(kernels.ReducedShape(a.Shape(), sorted), a.DType(), a.Device())
	if err != nil {
		return nil, err
	}
	if err := kernels.Sum(a.Raw(), sorted, out.Raw()); err != nil {
		out.Release()
		return nil, err
	}
	shape := a.Shape()
	return recordUnary("sum", a, out, func() (BackwardFunc, error) {
		return func(g *Array) (*Array, error) {
			return broadcastConst(g, sorted, shape)
		}, nil
	})
}

// AMax returns the maximum of a over axes, or over all axes when none is
// given. Every element equal to the maximum receives the gradient.
func AMax(a *Array, axes ...int) (*Array, error) {
	sorted, err := reductionAxes(kernels.OpAMax, a, axes)
	if err != nil {
		return nil, err
	}
	out, err := Empty(kernels.ReducedShape(a.Shape(), sorted), a.DType(), a.Device())
	if err != nil {
		return nil, err
	}
	if err := kernels.AMax(a.Raw(), sorted, out.Raw()); err != nil {
		out.Release()
		return nil, err
	}
	return recordUnary("amax", a, out, func() (BackwardFunc, error) {
		x, err := a.copyConst()
		if err != nil {
			return nil, err
		}
		m, err := broadcastConst(out, sorted, a.Shape())
		if err != nil {
			return nil, err
		}
		return func(g *Array) (*Array, error) {
			gb, err := broadcastConst(g, sorted, x.Shape())
			if err != nil {
				return nil, err
			}
			defer gb.Release()
			zeros, err := ZerosLike(gb, gb.Device())
			if err != nil {
				return nil, err
			}
			defer zeros.Release()
			res, err := EmptyLike(gb, gb.Device())
			if err != nil {
				return nil, err
			}
			// max > x ? 0 : g
			if err := kernels.IfGreaterElseAAAA(m.Raw(), x.Raw(), zeros.Raw(), gb.Raw(), res.Raw()); err != nil {
				res.Release()
				return nil, err
			}
			return res, nil
		}, nil
	})
}

func reductionAxes(op string, a *Array, axes []int) ([]int, error) {
	if len(axes) == 0 {
		axes = make([]int, a.Ndim())
		for i := range axes {
			axes[i] = i
		}
	}
	return kernels.NormalizeAxes(op, axes, a.Ndim())
}

// broadcastConst expands g, whose shape is shape without axes, back to shape
// by repeating it along axes. The repetition is a zero-stride view that is
// then copied into a contiguous array.
func broadcastConst(g *Array, axes []int, shape tensor.Shape) (*Array, error) {
	dims := make([]int, len(shape))
	j := 0
	for i := range shape {
		if containsInt(axes, i) {
			continue
		}
		step, err := g.Strides().At(j)
		if err != nil {
			return nil, err
		}
		dims[i] = step
		j++
	}
	strides, err := tensor.NewStrides(dims...)
	if err != nil {
		return nil, err
	}
	raw, err := g.Raw().WithLayout(shape, strides, g.Offset())
	if err != nil {
		return nil, err
	}
	view := FromRaw(raw)
	defer view.Release()
	return view.copyConst()
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// Exp returns e^x.
func Exp(x *Array) (*Array, error) {
	out, err := unaryConst(kernels.Exp, x, x.DType())
	if err != nil {
		return nil, err
	}
	return recordUnary("exp", x, out, func() (BackwardFunc, error) {
		y, err := out.copyConst()
		if err != nil {
			return nil, err
		}
		return scaledBy(y), nil
	})
}

// Log returns the natural logarithm of x.
func Log(x *Array) (*Array, error) {
	out, err := unaryConst(kernels.Log, x, x.DType())
	if err != nil {
		return nil, err
	}
	return recordUnary("log", x, out, func() (BackwardFunc, error) {
		v, err := x.copyConst()
		if err != nil {
			return nil, err
		}
		return dividedBy(v), nil
	})
}

// Sqrt returns the square root of x.
func Sqrt(x *Array) (*Array, error) {
	out, err := unaryConst(kernels.Sqrt, x, x.DType())
	if err != nil {
		return nil, err
	}
	return recordUnary("sqrt", x, out, func() (BackwardFunc, error) {
		twice, err := scaleConst(out, 2)
		if err != nil {
			return nil, err
		}
		return dividedBy(twice), nil
	})
}

// Tanh returns the hyperbolic tangent of x.
func Tanh(x *Array) (*Array, error) {
	out, err := unaryConst(kernels.Tanh, x, x.DType())
	if err != nil {
		return nil, err
	}
	return recordUnary("tanh", x, out, func() (BackwardFunc, error) {
		// 1 - y^2
		y2, err := unaryConst(kernels.Square, out, out.DType())
		if err != nil {
			return nil, err
		}
		defer y2.Release()
		neg, err := scaleConst(y2, -1)
		if err != nil {
			return nil, err
		}
		defer neg.Release()
		ones, err := OnesLike(out, out.Device())
		if err != nil {
			return nil, err
		}
		defer ones.Release()
		d, err := binaryConst(kernels.Add, ones, neg)
		if err != nil {
			return nil, err
		}
		return scaledBy(d), nil
	})
}

// Square returns x * x.
func Square(x *Array) (*Array, error) {
	out, err := unaryConst(kernels.Square, x, x.DType())
	if err != nil {
		return nil, err
	}
	return recordUnary("square", x, out, func() (BackwardFunc, error) {
		twice, err := scaleConst(x, 2)
		if err != nil {
			return nil, err
		}
		return scaledBy(twice), nil
	})
}

// Relu returns max(x, 0).
func Relu(x *Array) (*Array, error) {
	out, err := EmptyLike(x, x.Device())
	if err != nil {
		return nil, err
	}
	zero := tensor.ScalarOf(0)
	if err := kernels.IfLessElseASSA(x.Raw(), zero, zero, x.Raw(), out.Raw()); err != nil {
		out.Release()
		return nil, err
	}
	return recordUnary("relu", x, out, func() (BackwardFunc, error) {
		mask, err := x.copyConst()
		if err != nil {
			return nil, err
		}
		return func(g *Array) (*Array, error) {
			res, err := EmptyLike(g, g.Device())
			if err != nil {
				return nil, err
			}
			if err := kernels.IfLessElseASSA(mask.Raw(), zero, zero, g.Raw(), res.Raw()); err != nil {
				res.Release()
				return nil, err
			}
			return res, nil
		}, nil
	})
}

// Maximum returns the elementwise maximum of a and b. Where the two are equal
// the gradient goes to b.
func Maximum(a, b *Array) (*Array, error) {
	out, err := EmptyLike(a, a.Device())
	if err != nil {
		return nil, err
	}
	if err := kernels.IfGreaterElseAAAA(a.Raw(), b.Raw(), a.Raw(), b.Raw(), out.Raw()); err != nil {
		out.Release()
		return nil, err
	}
	if !a.requiresAnyGrad() && !b.requiresAnyGrad() {
		return out, nil
	}
	x1, err := a.copyConst()
	if err != nil {
		return nil, err
	}
	x2, err := b.copyConst()
	if err != nil {
		return nil, err
	}
	pick := func(first bool) BackwardFunc {
		return func(g *Array) (*Array, error) {
			zeros, err := ZerosLike(g, g.Device())
			if err != nil {
				return nil, err
			}
			defer zeros.Release()
			pos, neg := g, zeros
			if !first {
				pos, neg = zeros, g
			}
			res, err := EmptyLike(g, g.Device())
			if err != nil {
				return nil, err
			}
			if err := kernels.IfGreaterElseAAAA(x1.Raw(), x2.Raw(), pos.Raw(), neg.Raw(), res.Raw()); err != nil {
				res.Release()
				return nil, err
			}
			return res, nil
		}
	}
	if err := connect("maximum", out, nil, Input{Array: a, Backward: pick(true)}, Input{Array: b, Backward: pick(false)}); err != nil {
		return nil, err
	}
	return out, nil
}

// AsType converts a to dtype. Unless copy is set, a itself is returned when it
// already has dtype. Gradients are converted back to a's dtype.
func (a *Array) AsType(dtype tensor.DataType, copy bool) (*Array, error) {
	if a.DType() == dtype && !copy {
		return a, nil
	}
	out, err := unaryConst(kernels.AsType, a, dtype)
	if err != nil {
		return nil, err
	}
	src := a.DType()
	return recordUnary("astype", a, out, func() (BackwardFunc, error) {
		return func(g *Array) (*Array, error) {
			return unaryConst(kernels.AsType, g, src)
		}, nil
	})
}

// IsNan reports which elements of x are NaN.
func IsNan(x *Array) (*Array, error) {
	return unaryConst(kernels.IsNan, x, tensor.Bool)
}

// IsInf reports which elements of x are infinite.
func IsInf(x *Array) (*Array, error) {
	return unaryConst(kernels.IsInf, x, tensor.Bool)
}
