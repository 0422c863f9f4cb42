// Package tensor provides the value types shared by arrays, kernels and devices:
// data types, shapes, strided layouts, scalars, reference-counted buffers and the
// device contract.
package tensor

import (
	"fmt"

	"github.com/x448/float16"
)

// DType is a constraint for Go element types that map onto a DataType.
type DType interface {
	~bool | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | float16.Float16 | ~float32 | ~float64
}

// DataType represents runtime type information for array elements.
type DataType int

// Supported data types.
const (
	Bool DataType = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Float16
	Float32
	Float64
)

// Kind groups data types by how kernels compute on them.
type Kind int

// Data type kinds.
const (
	KindBool Kind = iota
	KindInt
	KindUInt
	KindFloat
)

// Size returns the byte size of one element.
func (dt DataType) Size() int {
	switch dt {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Float16:
		return 2
	case Int32, Float32:
		return 4
	case Int64, Float64:
		return 8
	default:
		panic(fmt.Sprintf("unknown data type %d", int(dt)))
	}
}

// Kind returns the kind of the data type.
func (dt DataType) Kind() Kind {
	switch dt {
	case Bool:
		return KindBool
	case Int8, Int16, Int32, Int64:
		return KindInt
	case Uint8:
		return KindUInt
	default:
		return KindFloat
	}
}

// IsFloat reports whether the data type is a floating point type.
func (dt DataType) IsFloat() bool {
	return dt.Kind() == KindFloat
}

// Valid reports whether dt is one of the supported data types.
func (dt DataType) Valid() bool {
	return dt >= Bool && dt <= Float64
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Bool:
		return "bool"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Float16:
		return "float16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// DataTypeOf returns the DataType matching the Go type T.
func DataTypeOf[T DType]() DataType {
	var dummy T
	switch any(dummy).(type) {
	case bool:
		return Bool
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case float16.Float16:
		return Float16
	case float32:
		return Float32
	case float64:
		return Float64
	default:
		panic(fmt.Sprintf("unsupported element type %T", dummy))
	}
}
