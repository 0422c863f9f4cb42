package serialization

import (
	"github.com/born-ml/ndarray/internal/tensor"
)

// Header keys.
const (
	MetadataKey = "__metadata__"
	ChecksumKey = "sha256"
)

// Entry describes one array in the SafeTensors header.
type Entry struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// Size returns the byte length of the entry's data.
func (e Entry) Size() int64 {
	return e.DataOffsets[1] - e.DataOffsets[0]
}

var safeTensorsDTypes = map[tensor.DataType]string{
	tensor.Bool:    "BOOL",
	tensor.Int8:    "I8",
	tensor.Int16:   "I16",
	tensor.Int32:   "I32",
	tensor.Int64:   "I64",
	tensor.Uint8:   "U8",
	tensor.Float16: "F16",
	tensor.Float32: "F32",
	tensor.Float64: "F64",
}

// dtypeToSafeTensors converts a DataType to its SafeTensors name.
func dtypeToSafeTensors(dt tensor.DataType) (string, error) {
	s, ok := safeTensorsDTypes[dt]
	if !ok {
		return "", tensor.DtypeErrorf("no SafeTensors name for %s", dt)
	}
	return s, nil
}

// safeTensorsToDtype converts a SafeTensors dtype name to a DataType.
func safeTensorsToDtype(s string) (tensor.DataType, error) {
	for dt, name := range safeTensorsDTypes {
		if name == s {
			return dt, nil
		}
	}
	return 0, tensor.DtypeErrorf("unsupported SafeTensors dtype %q", s)
}
