package evfs

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/klauspost/compress/zstd"
)

// compressMetadataFields replaces *metadata with nil and *blob with its
// zstd-compressed JSON encoding when compress is true, setting *compressed
// so the read path knows to reverse it. A nil or empty metadata map is left
// alone; compressing an empty map would only add overhead.
func compressMetadataFields(compress bool, metadata *map[string]any, blob *[]byte, compressed *bool) error {
	if !compress || len(*metadata) == 0 {
		return nil
	}

	raw, err := json.Marshal(*metadata)
	if err != nil {
		return newError(ErrCorruption, "", "marshal metadata", err)
	}

	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return newError(ErrCorruption, "", "open zstd writer", err)
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return newError(ErrCorruption, "", "compress metadata", err)
	}
	if err := w.Close(); err != nil {
		return newError(ErrCorruption, "", "close zstd writer", err)
	}

	*blob = buf.Bytes()
	*compressed = true
	*metadata = nil
	return nil
}

// decompressMetadataFields reverses compressMetadataFields: when compressed
// is set, it inflates blob back into metadata and clears blob. A record
// written with CompressMetadata off has compressed false and blob nil, so
// this is a no-op for it.
func decompressMetadataFields(metadata *map[string]any, blob *[]byte, compressed bool) error {
	if !compressed {
		return nil
	}

	r, err := zstd.NewReader(bytes.NewReader(*blob))
	if err != nil {
		return newError(ErrCorruption, "", "open zstd reader", err)
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return newError(ErrCorruption, "", "decompress metadata", err)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return newError(ErrCorruption, "", "unmarshal decompressed metadata", err)
	}

	*metadata = out
	*blob = nil
	return nil
}
