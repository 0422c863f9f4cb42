package tensor

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/x448/float16"
)

// Scalar is a single dtype-agnostic numeric value used as a kernel parameter.
type Scalar struct {
	kind Kind
	b    bool
	i    int64
	f    float64
}

// BoolScalar returns a boolean scalar.
func BoolScalar(v bool) Scalar { return Scalar{kind: KindBool, b: v} }

// IntScalar returns an integer scalar.
func IntScalar(v int64) Scalar { return Scalar{kind: KindInt, i: v} }

// FloatScalar returns a floating point scalar.
func FloatScalar(v float64) Scalar { return Scalar{kind: KindFloat, f: v} }

// ScalarOf converts a Go numeric value into a Scalar.
// It panics on non-numeric values.
func ScalarOf(v any) Scalar {
	s, err := ToScalar(v)
	if err != nil {
		panic(err.Error())
	}
	return s
}

// ToScalar converts a Go numeric value into a Scalar. Unsupported types are a
// DtypeError.
func ToScalar(v any) (Scalar, error) {
	switch x := v.(type) {
	case Scalar:
		return x, nil
	case bool:
		return BoolScalar(x), nil
	case int:
		return IntScalar(int64(x)), nil
	case int8:
		return IntScalar(int64(x)), nil
	case int16:
		return IntScalar(int64(x)), nil
	case int32:
		return IntScalar(int64(x)), nil
	case int64:
		return IntScalar(x), nil
	case uint8:
		return IntScalar(int64(x)), nil
	case float16.Float16:
		return FloatScalar(float64(x.Float32())), nil
	case float32:
		return FloatScalar(float64(x)), nil
	case float64:
		return FloatScalar(x), nil
	default:
		return Scalar{}, DtypeErrorf("unsupported scalar type %T", v)
	}
}

// Kind returns the kind of the stored value.
func (s Scalar) Kind() Kind {
	return s.kind
}

// Float64 returns the value as float64.
func (s Scalar) Float64() float64 {
	switch s.kind {
	case KindBool:
		if s.b {
			return 1
		}
		return 0
	case KindInt, KindUInt:
		return float64(s.i)
	default:
		return s.f
	}
}

// Int64 returns the value as int64, truncating floats.
func (s Scalar) Int64() int64 {
	switch s.kind {
	case KindBool:
		if s.b {
			return 1
		}
		return 0
	case KindInt, KindUInt:
		return s.i
	default:
		return int64(s.f)
	}
}

// Bool returns whether the value is non-zero.
func (s Scalar) Bool() bool {
	switch s.kind {
	case KindBool:
		return s.b
	case KindInt, KindUInt:
		return s.i != 0
	default:
		return s.f != 0
	}
}

// String formats the value.
func (s Scalar) String() string {
	switch s.kind {
	case KindBool:
		return strconv.FormatBool(s.b)
	case KindInt, KindUInt:
		return strconv.FormatInt(s.i, 10)
	default:
		return strconv.FormatFloat(s.f, 'g', -1, 64)
	}
}

// PutElement encodes v as dt into the first dt.Size() bytes of dst.
func PutElement(dst []byte, dt DataType, v Scalar) {
	switch dt {
	case Bool:
		if v.Bool() {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
	case Int8:
		dst[0] = byte(int8(v.Int64()))
	case Uint8:
		dst[0] = uint8(v.Int64())
	case Int16:
		binary.LittleEndian.PutUint16(dst, uint16(int16(v.Int64())))
	case Int32:
		binary.LittleEndian.PutUint32(dst, uint32(int32(v.Int64())))
	case Int64:
		binary.LittleEndian.PutUint64(dst, uint64(v.Int64()))
	case Float16:
		binary.LittleEndian.PutUint16(dst, float16.Fromfloat32(float32(v.Float64())).Bits())
	case Float32:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(v.Float64())))
	case Float64:
		binary.LittleEndian.PutUint64(dst, math.Float64bits(v.Float64()))
	default:
		panic(fmt.Sprintf("unknown data type %d", int(dt)))
	}
}

// Element decodes the first dt.Size() bytes of src as dt.
func Element(src []byte, dt DataType) Scalar {
	switch dt {
	case Bool:
		return BoolScalar(src[0] != 0)
	case Int8:
		return IntScalar(int64(int8(src[0])))
	case Uint8:
		return IntScalar(int64(src[0]))
	case Int16:
		return IntScalar(int64(int16(binary.LittleEndian.Uint16(src))))
	case Int32:
		return IntScalar(int64(int32(binary.LittleEndian.Uint32(src))))
	case Int64:
		return IntScalar(int64(binary.LittleEndian.Uint64(src)))
	case Float16:
		return FloatScalar(float64(float16.Frombits(binary.LittleEndian.Uint16(src)).Float32()))
	case Float32:
		return FloatScalar(float64(math.Float32frombits(binary.LittleEndian.Uint32(src))))
	case Float64:
		return FloatScalar(math.Float64frombits(binary.LittleEndian.Uint64(src)))
	default:
		panic(fmt.Sprintf("unknown data type %d", int(dt)))
	}
}
