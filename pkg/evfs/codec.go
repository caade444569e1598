package evfs

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/marmos91/veilfs/pkg/evfs/vpath"
)

// readFolderRecord fetches and decrypts the folder record at hashedPath,
// binding the envelope AAD to the hashed path so a swapped sidecar
// (even one encrypted under the same key) fails to decrypt.
func (c *Core) readFolderRecord(ctx context.Context, hashedPath string) (FolderRecord, error) {
	var rec FolderRecord

	r, err := c.tree.GetRecord(ctx, hashedPath)
	if err != nil {
		return rec, translateStorageErr(hashedPath, err)
	}
	defer r.Close()

	ciphertext, err := io.ReadAll(r)
	if err != nil {
		return rec, wrapIO(hashedPath, err)
	}

	plaintext, err := c.envelope.Open(ciphertext, []byte(hashedPath))
	if err != nil {
		return rec, wrapCrypto(hashedPath, err)
	}
	if err := json.Unmarshal(plaintext, &rec); err != nil {
		return rec, newError(ErrCorruption, hashedPath, "unmarshal folder record", err)
	}
	if err := decompressMetadataFields(&rec.Metadata, &rec.MetadataZstd, rec.Compressed); err != nil {
		return rec, err
	}
	return rec, nil
}

func (c *Core) writeFolderRecord(ctx context.Context, hashedPath string, rec FolderRecord) error {
	if err := compressMetadataFields(c.cfg.CompressMetadata, &rec.Metadata, &rec.MetadataZstd, &rec.Compressed); err != nil {
		return err
	}
	plaintext, err := json.Marshal(rec)
	if err != nil {
		return newError(ErrCorruption, hashedPath, "marshal folder record", err)
	}
	ciphertext, err := c.envelope.Seal(plaintext, []byte(hashedPath))
	if err != nil {
		return wrapCrypto(hashedPath, err)
	}
	if err := c.tree.SetRecord(ctx, hashedPath, bytes.NewReader(ciphertext)); err != nil {
		return translateStorageErr(hashedPath, err)
	}
	return nil
}

func (c *Core) readFileRecord(ctx context.Context, hashedPath string) (FileRecord, error) {
	var rec FileRecord

	r, err := c.tree.GetRecord(ctx, hashedPath)
	if err != nil {
		return rec, translateStorageErr(hashedPath, err)
	}
	defer r.Close()

	ciphertext, err := io.ReadAll(r)
	if err != nil {
		return rec, wrapIO(hashedPath, err)
	}

	plaintext, err := c.envelope.Open(ciphertext, []byte(hashedPath))
	if err != nil {
		return rec, wrapCrypto(hashedPath, err)
	}
	if err := json.Unmarshal(plaintext, &rec); err != nil {
		return rec, newError(ErrCorruption, hashedPath, "unmarshal file record", err)
	}
	if err := decompressMetadataFields(&rec.Metadata, &rec.MetadataZstd, rec.Compressed); err != nil {
		return rec, err
	}
	return rec, nil
}

func (c *Core) writeFileRecord(ctx context.Context, hashedPath string, rec FileRecord) error {
	if err := compressMetadataFields(c.cfg.CompressMetadata, &rec.Metadata, &rec.MetadataZstd, &rec.Compressed); err != nil {
		return err
	}
	plaintext, err := json.Marshal(rec)
	if err != nil {
		return newError(ErrCorruption, hashedPath, "marshal file record", err)
	}
	ciphertext, err := c.envelope.Seal(plaintext, []byte(hashedPath))
	if err != nil {
		return wrapCrypto(hashedPath, err)
	}
	if err := c.tree.SetRecord(ctx, hashedPath, bytes.NewReader(ciphertext)); err != nil {
		return translateStorageErr(hashedPath, err)
	}
	return nil
}

// writeNameRecord persists the name-recovery sidecar for a hashed
// component, encrypted under the envelope key with the hashed component
// itself as AAD (§3 Name-recovery sidecar).
func (c *Core) writeNameRecord(ctx context.Context, hashedToken, plaintextName string) error {
	ciphertext, err := c.envelope.Seal([]byte(plaintextName), []byte(hashedToken))
	if err != nil {
		return wrapCrypto(hashedToken, err)
	}
	if err := c.lookup.PutNameRecord(ctx, hashedToken, ciphertext); err != nil {
		return translateStorageErr(hashedToken, err)
	}
	return nil
}

func (c *Core) readNameRecord(ctx context.Context, hashedToken string) (string, error) {
	ciphertext, err := c.lookup.GetNameRecord(ctx, hashedToken)
	if err != nil {
		return "", translateStorageErr(hashedToken, err)
	}
	plaintext, err := c.envelope.Open(ciphertext, []byte(hashedToken))
	if err != nil {
		return "", wrapCrypto(hashedToken, err)
	}
	return string(plaintext), nil
}

// readFileRecordAt decrypts the record bytes currently stored at
// storagePath using aadPath as the envelope AAD. The two differ only
// around a rename: storagePath is where the adapter physically relocated
// the bytes to, aadPath is the path they were last sealed under.
func (c *Core) readFileRecordAt(ctx context.Context, storagePath, aadPath string) (FileRecord, error) {
	var rec FileRecord
	r, err := c.tree.GetRecord(ctx, storagePath)
	if err != nil {
		return rec, translateStorageErr(storagePath, err)
	}
	defer r.Close()
	ciphertext, err := io.ReadAll(r)
	if err != nil {
		return rec, wrapIO(storagePath, err)
	}
	plaintext, err := c.envelope.Open(ciphertext, []byte(aadPath))
	if err != nil {
		return rec, wrapCrypto(storagePath, err)
	}
	if err := json.Unmarshal(plaintext, &rec); err != nil {
		return rec, newError(ErrCorruption, storagePath, "unmarshal file record", err)
	}
	if err := decompressMetadataFields(&rec.Metadata, &rec.MetadataZstd, rec.Compressed); err != nil {
		return rec, err
	}
	return rec, nil
}

// readFolderRecordAt is readFileRecordAt's folder-record counterpart.
func (c *Core) readFolderRecordAt(ctx context.Context, storagePath, aadPath string) (FolderRecord, error) {
	var rec FolderRecord
	r, err := c.tree.GetRecord(ctx, storagePath)
	if err != nil {
		return rec, translateStorageErr(storagePath, err)
	}
	defer r.Close()
	ciphertext, err := io.ReadAll(r)
	if err != nil {
		return rec, wrapIO(storagePath, err)
	}
	plaintext, err := c.envelope.Open(ciphertext, []byte(aadPath))
	if err != nil {
		return rec, wrapCrypto(storagePath, err)
	}
	if err := json.Unmarshal(plaintext, &rec); err != nil {
		return rec, newError(ErrCorruption, storagePath, "unmarshal folder record", err)
	}
	if err := decompressMetadataFields(&rec.Metadata, &rec.MetadataZstd, rec.Compressed); err != nil {
		return rec, err
	}
	return rec, nil
}

// reencryptRecordAAD rebinds a record ciphertext already sitting at
// storagePath (moved there by a native adapter-level rename) from its old
// AAD to a new one, without touching the plaintext. Used for descendant
// records under a renamed folder, whose own fields never change but whose
// hashed path — and therefore AAD — gained a new ancestor segment.
func (c *Core) reencryptRecordAAD(ctx context.Context, storagePath, oldAAD, newAAD string) error {
	r, err := c.tree.GetRecord(ctx, storagePath)
	if err != nil {
		return translateStorageErr(storagePath, err)
	}
	defer r.Close()
	ciphertext, err := io.ReadAll(r)
	if err != nil {
		return wrapIO(storagePath, err)
	}
	plaintext, err := c.envelope.Open(ciphertext, []byte(oldAAD))
	if err != nil {
		return wrapCrypto(storagePath, err)
	}
	resealed, err := c.envelope.Seal(plaintext, []byte(newAAD))
	if err != nil {
		return wrapCrypto(storagePath, err)
	}
	if err := c.tree.SetRecord(ctx, storagePath, bytes.NewReader(resealed)); err != nil {
		return translateStorageErr(storagePath, err)
	}
	return nil
}

// peekRecordType decrypts the record at hashedPath just far enough to
// learn whether it is a file or a folder record, without committing to
// either shape. Used by callers (clear, the orphan sweep) that walk the
// tree generically before deciding which record type to parse fully.
func (c *Core) peekRecordType(ctx context.Context, hashedPath string) (string, error) {
	r, err := c.tree.GetRecord(ctx, hashedPath)
	if err != nil {
		return "", translateStorageErr(hashedPath, err)
	}
	defer r.Close()
	ciphertext, err := io.ReadAll(r)
	if err != nil {
		return "", wrapIO(hashedPath, err)
	}
	plaintext, err := c.envelope.Open(ciphertext, []byte(hashedPath))
	if err != nil {
		return "", wrapCrypto(hashedPath, err)
	}
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(plaintext, &probe); err != nil {
		return "", newError(ErrCorruption, hashedPath, "unmarshal record type", err)
	}
	return probe.Type, nil
}

// hashedLeaf returns the final path component of a hashed vpath.Path, the
// token used to key a name-recovery sidecar.
func hashedLeaf(p vpath.Path) string {
	parts := p.Parts()
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
