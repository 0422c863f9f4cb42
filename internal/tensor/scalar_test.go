package tensor_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/x448/float16"

	"github.com/born-ml/ndarray/internal/tensor"
)

func TestScalarConversions(t *testing.T) {
	assert.Equal(t, 2.0, tensor.IntScalar(2).Float64())
	assert.Equal(t, int64(-3), tensor.FloatScalar(-3.7).Int64())
	assert.True(t, tensor.FloatScalar(0.5).Bool())
	assert.Equal(t, 1.0, tensor.BoolScalar(true).Float64())
	assert.Equal(t, tensor.KindFloat, tensor.ScalarOf(float32(1)).Kind())
	assert.Equal(t, tensor.KindInt, tensor.ScalarOf(int16(1)).Kind())
	assert.Equal(t, "1.5", tensor.FloatScalar(1.5).String())
	assert.Panics(t, func() { tensor.ScalarOf("x") })
}

// TestElementEncoding tests little-endian encoding for every dtype.
func TestElementEncoding(t *testing.T) {
	tests := []struct {
		dt   tensor.DataType
		in   tensor.Scalar
		want float64
	}{
		{tensor.Bool, tensor.IntScalar(5), 1},
		{tensor.Int8, tensor.IntScalar(-7), -7},
		{tensor.Int16, tensor.IntScalar(-300), -300},
		{tensor.Int32, tensor.IntScalar(1 << 20), 1 << 20},
		{tensor.Int64, tensor.IntScalar(-1 << 40), -1 << 40},
		{tensor.Uint8, tensor.IntScalar(200), 200},
		{tensor.Float16, tensor.FloatScalar(1.5), 1.5},
		{tensor.Float32, tensor.FloatScalar(0.25), 0.25},
		{tensor.Float64, tensor.FloatScalar(math.Pi), math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.dt.String(), func(t *testing.T) {
			buf := make([]byte, tt.dt.Size())
			tensor.PutElement(buf, tt.dt, tt.in)
			assert.Equal(t, tt.want, tensor.Element(buf, tt.dt).Float64())
		})
	}

	buf := make([]byte, 2)
	tensor.PutElement(buf, tensor.Float16, tensor.FloatScalar(2))
	assert.Equal(t, float16.Fromfloat32(2).Bits(), uint16(buf[0])|uint16(buf[1])<<8)
}
