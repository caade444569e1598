package evfs

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/marmos91/veilfs/pkg/evfs/storage"
	"github.com/marmos91/veilfs/pkg/evfs/vpath"
)

// ListEntry is one yielded item of ListFolder's enumeration. Exactly one
// of Folder/File is set on success; Err is set on a per-entry failure,
// in which case enumeration of the remaining children still continues
// (§4.8.14: "errors on individual children are yielded as error items
// and do not terminate the enumeration").
type ListEntry struct {
	Folder *FolderRecord
	File   *FileRecord
	Err    error
}

const folderSidecarSuffix = ".folder"

// ListFolder implements §4.8.14: under a read turn, enumerates the
// hashed children of folderPath, skips bare hashed subdirectories (they
// carry no name of their own; their `.folder` sidecar sibling does), and
// for every sidecar resolves its plaintext name via the Lookup Store's
// name-recovery record before decrypting and yielding the full record.
func (c *Core) ListFolder(ctx context.Context, folderPath string) ([]ListEntry, error) {
	ps, err := c.resolve(folderPath, vpath.Folder)
	if err != nil {
		return nil, err
	}

	turn, err := c.locks.GetTurn(ctx, ps.Unhashed.String(), false)
	if err != nil {
		return nil, wrapAborted(folderPath)
	}
	defer turn.End()

	children, err := c.tree.ListFolder(ctx, ps.Hashed.String())
	if err != nil {
		return nil, translateStorageErr(folderPath, err)
	}

	var entries []ListEntry
	for _, child := range children {
		select {
		case <-ctx.Done():
			return entries, wrapAborted(folderPath)
		default:
		}

		kind, err := c.tree.Exists(ctx, child)
		if err != nil {
			entries = append(entries, ListEntry{Err: translateStorageErr(child, err)})
			continue
		}
		if kind != storage.FileEntry {
			continue // bare hashed subdirectory; its sidecar is a sibling entry
		}

		entry, err := c.readListEntry(ctx, ps.Unhashed.String(), child)
		if err != nil {
			entries = append(entries, ListEntry{Err: err})
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *Core) readListEntry(ctx context.Context, parentUnhashed, childHashed string) (ListEntry, error) {
	token := lastComponent(childHashed)

	sidecarName, err := c.readNameRecord(ctx, token)
	if err != nil {
		return ListEntry{}, err
	}

	r, err := c.tree.GetRecord(ctx, childHashed)
	if err != nil {
		return ListEntry{}, translateStorageErr(childHashed, err)
	}
	defer r.Close()

	ciphertext, err := io.ReadAll(r)
	if err != nil {
		return ListEntry{}, wrapIO(childHashed, err)
	}
	plaintext, err := c.envelope.Open(ciphertext, []byte(childHashed))
	if err != nil {
		return ListEntry{}, wrapCrypto(childHashed, err)
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(plaintext, &probe); err != nil {
		return ListEntry{}, newError(ErrCorruption, childHashed, "unmarshal record type", err)
	}

	switch probe.Type {
	case recordTypeFolder:
		var rec FolderRecord
		if err := json.Unmarshal(plaintext, &rec); err != nil {
			return ListEntry{}, newError(ErrCorruption, childHashed, "unmarshal folder record", err)
		}
		name := strings.TrimSuffix(sidecarName, folderSidecarSuffix)
		rec.Path = parentUnhashed + name + "/"
		return ListEntry{Folder: &rec}, nil
	case recordTypeFile:
		var rec FileRecord
		if err := json.Unmarshal(plaintext, &rec); err != nil {
			return ListEntry{}, newError(ErrCorruption, childHashed, "unmarshal file record", err)
		}
		rec.Path = parentUnhashed + sidecarName
		return ListEntry{File: &rec}, nil
	default:
		return ListEntry{}, newError(ErrCorruption, childHashed, "unknown record type "+probe.Type, nil)
	}
}

func lastComponent(hashedPath string) string {
	trimmed := strings.TrimSuffix(hashedPath, "/")
	idx := strings.LastIndex(trimmed, "/")
	return trimmed[idx+1:]
}
