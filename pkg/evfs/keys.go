package evfs

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/marmos91/veilfs/pkg/evfs/crypto"
	"github.com/marmos91/veilfs/pkg/evfs/naming"
	"github.com/marmos91/veilfs/pkg/evfs/storage"
)

const keysRecordName = "keys"

// keysRecordPayload is the encrypted payload of the root's "keys" file:
// the persistent AEAD/HMAC key material generated once on first init and
// reused on every subsequent open (§3 Keys).
type keysRecordPayload struct {
	AEADKey string `json:"aeadKey"`
	HMACKey string `json:"hmacKey"`
}

// loadOrGenerateKeys implements §4.8.1 phase 1: derive the intermediate
// envelope/naming keys, compute the root directory name from them,
// create the root folder if absent, then open or create the keys-record.
// On first use it generates fresh persistent key material; thereafter it
// decrypts and returns the material already on disk.
func loadOrGenerateKeys(ctx context.Context, adapter storage.Adapter, derivationKey []byte, cfg Config) (rootPath string, persistent crypto.KeyMaterial, err error) {
	intermediate, err := crypto.DeriveIntermediateKeys(derivationKey, cfg.CryptLabel, cfg.HMACLabel)
	if err != nil {
		return "", crypto.KeyMaterial{}, wrapCrypto("", err)
	}

	intermediateHasher := naming.New(intermediate.HMACKey[:])
	rootToken, err := intermediateHasher.Hash("root")
	if err != nil {
		return "", crypto.KeyMaterial{}, wrapCrypto("", err)
	}
	rootPath = "/" + rootToken + "/"

	if kind, err := adapter.Exists(ctx, rootPath); err != nil {
		return "", crypto.KeyMaterial{}, wrapIO(rootPath, err)
	} else if kind == storage.NoEntry {
		if err := adapter.CreateFolder(ctx, rootPath); err != nil && err != storage.ErrAlreadyExists {
			return "", crypto.KeyMaterial{}, wrapIO(rootPath, err)
		}
	}

	envelope, err := crypto.NewEnvelope(intermediate.AEADKey)
	if err != nil {
		return "", crypto.KeyMaterial{}, wrapCrypto(rootPath, err)
	}

	keysPath := rootPath + keysRecordName
	kind, err := adapter.Exists(ctx, keysPath)
	if err != nil {
		return "", crypto.KeyMaterial{}, wrapIO(keysPath, err)
	}

	if kind == storage.NoEntry {
		return generateAndPersistKeys(ctx, adapter, envelope, rootPath, keysPath)
	}
	return loadPersistedKeys(ctx, adapter, envelope, rootPath, keysPath)
}

func generateAndPersistKeys(ctx context.Context, adapter storage.Adapter, envelope *crypto.Envelope, rootPath, keysPath string) (string, crypto.KeyMaterial, error) {
	persistent, err := crypto.GenerateKeyMaterial()
	if err != nil {
		return "", crypto.KeyMaterial{}, wrapCrypto(keysPath, err)
	}

	payload := keysRecordPayload{
		AEADKey: hex.EncodeToString(persistent.AEADKey[:]),
		HMACKey: hex.EncodeToString(persistent.HMACKey[:]),
	}
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", crypto.KeyMaterial{}, newError(ErrCorruption, keysPath, "marshal keys record", err)
	}
	ciphertext, err := envelope.Seal(plaintext, []byte(keysRecordName))
	if err != nil {
		return "", crypto.KeyMaterial{}, wrapCrypto(keysPath, err)
	}

	if err := adapter.CreateFile(ctx, keysPath); err != nil && err != storage.ErrAlreadyExists {
		return "", crypto.KeyMaterial{}, wrapIO(keysPath, err)
	}
	if err := adapter.SetFileData(ctx, keysPath, bytes.NewReader(ciphertext)); err != nil {
		return "", crypto.KeyMaterial{}, wrapIO(keysPath, err)
	}
	return rootPath, persistent, nil
}

func loadPersistedKeys(ctx context.Context, adapter storage.Adapter, envelope *crypto.Envelope, rootPath, keysPath string) (string, crypto.KeyMaterial, error) {
	var persistent crypto.KeyMaterial

	r, err := adapter.GetFileData(ctx, keysPath)
	if err != nil {
		return "", persistent, wrapIO(keysPath, err)
	}
	defer r.Close()

	ciphertext, err := io.ReadAll(r)
	if err != nil {
		return "", persistent, wrapIO(keysPath, err)
	}

	plaintext, err := envelope.Open(ciphertext, []byte(keysRecordName))
	if err != nil {
		return "", persistent, wrapCrypto(keysPath, err)
	}

	var payload keysRecordPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return "", persistent, newError(ErrCorruption, keysPath, "unmarshal keys record", err)
	}

	aeadKey, err := hex.DecodeString(payload.AEADKey)
	if err != nil || len(aeadKey) != crypto.KeySize {
		return "", persistent, newError(ErrCorruption, keysPath, "malformed AEAD key in keys record", err)
	}
	hmacKey, err := hex.DecodeString(payload.HMACKey)
	if err != nil || len(hmacKey) != crypto.KeySize {
		return "", persistent, newError(ErrCorruption, keysPath, "malformed HMAC key in keys record", err)
	}

	copy(persistent.AEADKey[:], aeadKey)
	copy(persistent.HMACKey[:], hmacKey)
	return rootPath, persistent, nil
}
