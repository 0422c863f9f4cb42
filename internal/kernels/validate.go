package kernels

import (
	"go.uber.org/multierr"

	"github.com/born-ml/ndarray/internal/tensor"
)

// checkDevices verifies that every operand lives on dev.
// All offending operands are reported together.
func checkDevices(op string, dev tensor.Device, operands ...*tensor.RawTensor) error {
	var err error
	for i, x := range operands {
		if x == nil {
			err = multierr.Append(err, tensor.DeviceErrorf("%s: operand %d is nil", op, i))
			continue
		}
		if !tensor.SameDevice(x.Device(), dev) {
			err = multierr.Append(err, tensor.DeviceErrorf("%s: operand %d is on %s, executing on %s",
				op, i, deviceName(x.Device()), deviceName(dev)))
		}
	}
	return err
}

func deviceName(d tensor.Device) string {
	if d == nil {
		return "<nil>"
	}
	return d.Name()
}

func checkSameShape(op string, want tensor.Shape, operands ...*tensor.RawTensor) error {
	var err error
	for i, x := range operands {
		if x == nil {
			continue // reported by checkDevices
		}
		if !x.Shape().Equal(want) {
			err = multierr.Append(err, tensor.DimensionErrorf("%s: operand %d has shape %v, want %v", op, i, x.Shape(), want))
		}
	}
	return err
}

func checkSameDtype(op string, want tensor.DataType, operands ...*tensor.RawTensor) error {
	var err error
	for i, x := range operands {
		if x == nil {
			continue
		}
		if x.DType() != want {
			err = multierr.Append(err, tensor.DtypeErrorf("%s: operand %d has dtype %s, want %s", op, i, x.DType(), want))
		}
	}
	return err
}

func checkSquare(op string, out *tensor.RawTensor) error {
	if out == nil {
		return nil
	}
	s := out.Shape()
	if s.Ndim() != 2 || s[0] != s[1] {
		return tensor.DimensionErrorf("%s: output must be a square 2-D array, got shape %v", op, s)
	}
	return nil
}

func checkFloat(op string, x *tensor.RawTensor) error {
	if x != nil && !x.DType().IsFloat() {
		return tensor.DtypeErrorf("%s: requires a floating point dtype, got %s", op, x.DType())
	}
	return nil
}

// NormalizeAxes validates axes against ndim and returns them sorted without duplicates.
func NormalizeAxes(op string, axes []int, ndim int) ([]int, error) {
	seen := make([]bool, ndim)
	for _, a := range axes {
		if a < 0 {
			a += ndim
		}
		if a < 0 || a >= ndim {
			return nil, tensor.DimensionErrorf("%s: axis %d out of range for rank %d", op, a, ndim)
		}
		if seen[a] {
			return nil, tensor.DimensionErrorf("%s: duplicate axis %d", op, a)
		}
		seen[a] = true
	}
	sorted := make([]int, 0, len(axes))
	for a, ok := range seen {
		if ok {
			sorted = append(sorted, a)
		}
	}
	return sorted, nil
}

// ReducedShape returns shape with the given axes removed.
func ReducedShape(shape tensor.Shape, axes []int) tensor.Shape {
	out := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		if !containsAxis(axes, i) {
			out = append(out, d)
		}
	}
	return out
}

func containsAxis(axes []int, axis int) bool {
	for _, a := range axes {
		if a == axis {
			return true
		}
	}
	return false
}
