package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/ndarray/internal/array"
	"github.com/born-ml/ndarray/internal/tensor"
)

// Read loads every array of a SafeTensors stream onto dev, or the default
// device when dev is nil, and returns them with the file metadata.
// The checksum is verified when the metadata carries one.
func Read(r io.Reader, dev tensor.Device) (map[string]*array.Array, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, errors.Wrap(err, "read header size")
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, errors.Wrapf(ErrHeaderTooLarge, "%d bytes", headerSize)
	}
	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, nil, errors.Wrap(err, "read header")
	}
	entries, metadata, err := parseHeader(headerJSON)
	if err != nil {
		return nil, nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read data")
	}
	if err := ValidateEntries(entries, int64(len(data))); err != nil {
		return nil, nil, err
	}
	if sum, ok := metadata[ChecksumKey]; ok {
		if err := ValidateChecksum(data, sum); err != nil {
			return nil, nil, err
		}
	}

	arrays := make(map[string]*array.Array, len(entries))
	for name, e := range entries {
		a, err := load(e, data, dev)
		if err != nil {
			for _, loaded := range arrays {
				loaded.Release()
			}
			return nil, nil, errors.Wrapf(err, "load %q", name)
		}
		arrays[name] = a
	}
	klog.V(2).Infof("serialization: read %d arrays, %d data bytes", len(arrays), len(data))
	return arrays, metadata, nil
}

// ReadFile loads the arrays stored at path.
func ReadFile(path string, dev tensor.Device) (map[string]*array.Array, map[string]string, error) {
	//nolint:gosec // G304: the path is chosen by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open file")
	}
	defer f.Close()
	return Read(f, dev)
}

func parseHeader(headerJSON []byte) (map[string]Entry, map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &raw); err != nil {
		return nil, nil, errors.Wrap(ErrInvalidFile, err.Error())
	}
	var metadata map[string]string
	entries := make(map[string]Entry, len(raw))
	for name, msg := range raw {
		if name == MetadataKey {
			if err := json.Unmarshal(msg, &metadata); err != nil {
				return nil, nil, errors.Wrapf(ErrInvalidFile, "metadata: %v", err)
			}
			continue
		}
		var e Entry
		if err := json.Unmarshal(msg, &e); err != nil {
			return nil, nil, errors.Wrapf(ErrInvalidFile, "entry %q: %v", name, err)
		}
		entries[name] = e
	}
	return entries, metadata, nil
}

// load copies one entry's bytes into a new array on dev.
func load(e Entry, data []byte, dev tensor.Device) (*array.Array, error) {
	dt, err := safeTensorsToDtype(e.DType)
	if err != nil {
		return nil, err
	}
	shape := make(tensor.Shape, len(e.Shape))
	for i, d := range e.Shape {
		shape[i] = int(d)
	}
	return array.FromBuffer(shape, dt, bytes.Clone(data[e.DataOffsets[0]:e.DataOffsets[1]]), dev)
}
