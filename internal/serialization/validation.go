package serialization

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/born-ml/ndarray/internal/tensor"
)

// Validation limits for security and resource protection.
const (
	MaxHeaderSize = 100 * 1024 * 1024 // 100MB
	MaxEntryCount = 100_000
	MaxNameLength = 4096
)

// ValidateName rejects names with path components or null bytes.
func ValidateName(name string) error {
	switch {
	case name == "" || name == MetadataKey:
		return &ValidationError{Type: "invalid_name", Entry: name, Details: "reserved or empty name"}
	case len(name) > MaxNameLength:
		return &ValidationError{
			Type:    "name_too_long",
			Entry:   name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxNameLength),
		}
	case strings.Contains(name, ".."):
		return &ValidationError{Type: "invalid_name", Entry: name, Details: "contains '..'"}
	case strings.ContainsAny(name, "/\\"):
		return &ValidationError{Type: "invalid_name", Entry: name, Details: "contains path separator (/ or \\)"}
	case strings.Contains(name, "\x00"):
		return &ValidationError{Type: "invalid_name", Entry: name, Details: "contains null byte"}
	}
	return nil
}

// ValidateEntries checks names, shapes, sizes and offsets of every entry
// against a data section of dataSize bytes. Regions must not overlap.
func ValidateEntries(entries map[string]Entry, dataSize int64) error {
	if len(entries) > MaxEntryCount {
		return &ValidationError{
			Type:    "too_many_entries",
			Details: fmt.Sprintf("got %d, max %d", len(entries), MaxEntryCount),
		}
	}
	names := make([]string, 0, len(entries))
	for name, e := range entries {
		if err := ValidateName(name); err != nil {
			return err
		}
		if err := validateEntry(name, e, dataSize); err != nil {
			return err
		}
		names = append(names, name)
	}

	slices.SortFunc(names, func(a, b string) int {
		return cmp.Compare(entries[a].DataOffsets[0], entries[b].DataOffsets[0])
	})
	for i := 1; i < len(names); i++ {
		prev, cur := entries[names[i-1]], entries[names[i]]
		if prev.DataOffsets[1] > cur.DataOffsets[0] {
			return &ValidationError{
				Type:    "offset_overlap",
				Entry:   names[i-1],
				Entry2:  names[i],
				Details: fmt.Sprintf("regions %v and %v overlap", prev.DataOffsets, cur.DataOffsets),
			}
		}
	}
	return nil
}

func validateEntry(name string, e Entry, dataSize int64) error {
	dt, err := safeTensorsToDtype(e.DType)
	if err != nil {
		return err
	}
	begin, end := e.DataOffsets[0], e.DataOffsets[1]
	if begin < 0 || end < begin {
		return &ValidationError{Type: "negative_offset", Entry: name, Details: fmt.Sprintf("offsets %v", e.DataOffsets)}
	}
	if end > dataSize {
		return &ValidationError{
			Type:    "out_of_bounds",
			Entry:   name,
			Details: fmt.Sprintf("end %d > data_size %d", end, dataSize),
		}
	}
	if len(e.Shape) > tensor.MaxNdim {
		return &ValidationError{Type: "invalid_shape", Entry: name, Details: fmt.Sprintf("rank %d > %d", len(e.Shape), tensor.MaxNdim)}
	}
	n := int64(1)
	for _, d := range e.Shape {
		if d < 0 {
			return &ValidationError{Type: "invalid_shape", Entry: name, Details: fmt.Sprintf("negative dimension in %v", e.Shape)}
		}
		if d > 0 && n > math.MaxInt64/d {
			return tensor.DimensionErrorf("entry %q: shape %v overflows the element count", name, e.Shape)
		}
		n *= d
	}
	if n > math.MaxInt64/int64(dt.Size()) {
		return tensor.DimensionErrorf("entry %q: shape %v of %s overflows the byte size", name, e.Shape, e.DType)
	}
	if want := n * int64(dt.Size()); want != e.Size() {
		return &ValidationError{
			Type:    "size_mismatch",
			Entry:   name,
			Details: fmt.Sprintf("shape %v of %s needs %d bytes, got %d", e.Shape, e.DType, want, e.Size()),
		}
	}
	return nil
}
