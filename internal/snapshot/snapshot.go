// Package snapshot implements the msgpack+zstd encoding behind
// Cache.SnapshotExport, a domain-stack extra giving
// klauspost/compress a home once the teacher's Redis-bound usage of
// it is dropped (cross-process distribution is out of scope).
package snapshot

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Export msgpack-encodes snapshot then compresses it with zstd.
func Export(snapshot map[string]any) ([]byte, error) {
	encoded, err := msgpack.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(encoded); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Import reverses Export, for tooling that consumes a dumped snapshot.
func Import(blob []byte) (map[string]any, error) {
	r, err := zstd.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	decoded, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := msgpack.Unmarshal(decoded, &out); err != nil {
		return nil, err
	}
	return out, nil
}
