package tensor

import (
	"github.com/pkg/errors"
)

// Error kinds reported by arrays, kernels and devices.
// Callers test for a kind with errors.Is.
var (
	// ErrDimension reports shape, rank or layout mismatches.
	ErrDimension = errors.New("dimension error")
	// ErrDtype reports element type mismatches.
	ErrDtype = errors.New("dtype error")
	// ErrDevice reports operands on incompatible devices or a backend missing a kernel.
	ErrDevice = errors.New("device error")
	// ErrGraph reports gradient access for a graph without an attached node.
	ErrGraph = errors.New("graph error")
	// ErrResource reports allocation failures and backend faults.
	ErrResource = errors.New("resource exhausted")
)

// DimensionErrorf returns an ErrDimension with a formatted message.
func DimensionErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrDimension, format, args...)
}

// DtypeErrorf returns an ErrDtype with a formatted message.
func DtypeErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrDtype, format, args...)
}

// DeviceErrorf returns an ErrDevice with a formatted message.
func DeviceErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrDevice, format, args...)
}

// GraphErrorf returns an ErrGraph with a formatted message.
func GraphErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrGraph, format, args...)
}

// ResourceErrorf returns an ErrResource with a formatted message.
func ResourceErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrResource, format, args...)
}
