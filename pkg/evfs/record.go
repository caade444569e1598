package evfs

import "time"

// FolderRecord is the decrypted payload of a folder's `.folder` sidecar
// (§6.3). Path is filled in from the requested logical path at read time,
// never persisted as canonical truth.
type FolderRecord struct {
	Name     string         `json:"name"`
	Path     string         `json:"path"`
	Type     string         `json:"type"`
	Created  time.Time      `json:"created"`
	Modified time.Time      `json:"modified"`
	Accessed time.Time      `json:"accessed"`
	Metadata map[string]any `json:"metadata"`

	// Compressed and MetadataZstd implement CompressMetadata (§11.2):
	// when set, Metadata travels as a zstd-compressed JSON blob in
	// MetadataZstd instead, and is repopulated on read.
	Compressed   bool   `json:"compressed,omitempty"`
	MetadataZstd []byte `json:"metadata_zstd,omitempty"`
}

// FileDataMetadata carries the chunk-offset index over the
// aggregate-header blob (§6.3: "offsets[i] is the byte position of chunk
// i's encrypted header inside the aggregate-header blob's plaintext").
type FileDataMetadata struct {
	Offsets []int `json:"offsets"`
	Format  int   `json:"format"`
}

// FileDataBytes tracks the plaintext and ciphertext-plus-overhead byte
// totals written so far.
type FileDataBytes struct {
	Decrypted uint64 `json:"decrypted"`
	Encrypted uint64 `json:"encrypted"`
}

// FileData is the content-addressing portion of a FileRecord.
type FileData struct {
	UID      string           `json:"uid"`
	Bytes    FileDataBytes    `json:"bytes"`
	Chunks   int              `json:"chunks"`
	Format   int              `json:"format"`
	Metadata FileDataMetadata `json:"metadata"`
}

// FileRecord is the decrypted payload of a file's hashed sidecar (§6.3).
// Path is filled in from the requested logical path at read time.
type FileRecord struct {
	Name      string         `json:"name"`
	Extension string         `json:"extension"`
	Path      string         `json:"path"`
	Type      string         `json:"type"`
	Created   time.Time      `json:"created"`
	Modified  time.Time      `json:"modified"`
	Accessed  time.Time      `json:"accessed"`
	Data      FileData       `json:"data"`
	Metadata  map[string]any `json:"metadata"`

	// Compressed and MetadataZstd mirror FolderRecord's CompressMetadata
	// plumbing.
	Compressed   bool   `json:"compressed,omitempty"`
	MetadataZstd []byte `json:"metadata_zstd,omitempty"`
}

const (
	recordTypeFolder = "folder"
	recordTypeFile   = "file"
)
