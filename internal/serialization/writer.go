package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"slices"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"k8s.io/klog/v2"

	"github.com/born-ml/ndarray/internal/array"
)

// Write stores the values of arrays in SafeTensors format.
// Non-contiguous and device arrays are packed through the host.
func Write(w io.Writer, arrays map[string]*array.Array, metadata map[string]string) error {
	names := maps.Keys(arrays)
	slices.Sort(names)

	var data bytes.Buffer
	header := make(map[string]any, len(arrays)+1)
	for _, name := range names {
		if err := ValidateName(name); err != nil {
			return err
		}
		a := arrays[name]
		dtype, err := dtypeToSafeTensors(a.DType())
		if err != nil {
			return err
		}
		packed, err := a.HostBytes()
		if err != nil {
			return errors.Wrapf(err, "read %q", name)
		}
		shape := make([]int64, a.Ndim())
		for i, d := range a.Shape() {
			shape[i] = int64(d)
		}
		begin := int64(data.Len())
		data.Write(packed)
		header[name] = Entry{
			DType:       dtype,
			Shape:       shape,
			DataOffsets: [2]int64{begin, int64(data.Len())},
		}
	}

	meta := make(map[string]string, len(metadata)+1)
	maps.Copy(meta, metadata)
	meta[ChecksumKey] = ComputeChecksum(data.Bytes())
	header[MetadataKey] = meta

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "marshal header")
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return errors.Wrap(err, "write header size")
	}
	if _, err := w.Write(headerJSON); err != nil {
		return errors.Wrap(err, "write header")
	}
	if _, err := w.Write(data.Bytes()); err != nil {
		return errors.Wrap(err, "write data")
	}
	klog.V(2).Infof("serialization: wrote %d arrays, %d data bytes", len(arrays), data.Len())
	return nil
}

// WriteFile stores arrays in a new file at path.
func WriteFile(path string, arrays map[string]*array.Array, metadata map[string]string) (err error) {
	//nolint:gosec // G304: the path is chosen by the caller
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create file")
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(f, arrays, metadata)
}
