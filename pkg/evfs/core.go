// Package evfs implements the File System Core (§4.8): the orchestrator
// that drives the Lock Manager, Crypto Envelope, Name Hasher, Tree Store,
// and Lookup Store to expose ordinary folder/file operations over an
// encrypted, name-obfuscated, chunked-content namespace.
//
// Architecture:
//
//	Core
//	 ├── lock.Manager     per-path turns + global drain
//	 ├── crypto.Envelope  small-buffer AEAD for records and sidecars
//	 ├── crypto.StreamCipher  chunked content AEAD
//	 ├── naming.Hasher    deterministic path-component hashing
//	 ├── tree.Store       hashed folder hierarchy + sidecars
//	 └── lookup.Store     content blobs + name-recovery sidecars
//
// Every public operation acquires the turn(s) its semantics require,
// validates preconditions, performs the work, and releases its turn(s)
// on every exit path, including cancellation.
package evfs

import (
	"context"

	"github.com/google/uuid"

	"github.com/marmos91/veilfs/internal/logger"
	"github.com/marmos91/veilfs/pkg/evfs/crypto"
	"github.com/marmos91/veilfs/pkg/evfs/lock"
	"github.com/marmos91/veilfs/pkg/evfs/lookup"
	"github.com/marmos91/veilfs/pkg/evfs/naming"
	"github.com/marmos91/veilfs/pkg/evfs/storage"
	"github.com/marmos91/veilfs/pkg/evfs/tree"
	"github.com/marmos91/veilfs/pkg/evfs/vpath"
)

// Core is the encrypted virtual file system's public entry point. A
// single Core owns all shared resources (the adapter, the key material,
// and the lock manager's turner map) for the lifetime of the process.
type Core struct {
	adapter storage.Adapter
	cfg     Config

	rootPath string

	hasher *naming.Hasher
	keyMat crypto.KeyMaterial

	envelope *crypto.Envelope
	stream   *crypto.StreamCipher

	tree   *tree.Store
	lookup *lookup.Store

	locks *lock.Manager
}

// Init implements §4.8.1: derives keys, materializes the root folder and
// keys-record, imports the persistent key material, and opens the Tree
// and Lookup Store subfolders. On any step failure no partial Core is
// returned; the adapter may retain created directories, which a
// subsequent Init call will find and reuse.
func Init(ctx context.Context, adapter storage.Adapter, derivationKey []byte, cfg Config) (*Core, error) {
	if err := cfg.validate(); err != nil {
		logger.ErrorCtx(ctx, "init: invalid configuration", logger.Err(err))
		return nil, err
	}

	rootPath, keyMat, err := loadOrGenerateKeys(ctx, adapter, derivationKey, cfg)
	if err != nil {
		logger.ErrorCtx(ctx, "init: key material setup failed", logger.Err(err))
		return nil, err
	}

	var hasher *naming.Hasher
	if cfg.PlainTextMode && cfg.AllowPlainTextMode {
		hasher = naming.NewPlainText()
	} else {
		hasher = naming.New(keyMat.HMACKey[:])
	}

	envelope, err := crypto.NewEnvelope(keyMat.AEADKey)
	if err != nil {
		return nil, wrapCrypto(rootPath, err)
	}
	streamCipher, err := crypto.NewStreamCipher(keyMat)
	if err != nil {
		return nil, wrapCrypto(rootPath, err)
	}

	treeToken, err := hasher.Hash("tree")
	if err != nil {
		return nil, wrapCrypto(rootPath, err)
	}
	lookupToken, err := hasher.Hash("lookup")
	if err != nil {
		return nil, wrapCrypto(rootPath, err)
	}

	treeStore := tree.New(adapter, rootPath+treeToken+"/")
	if err := treeStore.Init(ctx); err != nil {
		return nil, wrapIO(rootPath, err)
	}
	lookupStore := lookup.New(adapter, hasher, rootPath+lookupToken+"/")
	if err := lookupStore.Init(ctx); err != nil {
		return nil, wrapIO(rootPath, err)
	}

	logger.InfoCtx(ctx, "evfs core initialized", logger.Operation("init"), logger.Path(rootPath))

	return &Core{
		adapter:  adapter,
		cfg:      cfg,
		rootPath: rootPath,
		hasher:   hasher,
		keyMat:   keyMat,
		envelope: envelope,
		stream:   streamCipher,
		tree:     treeStore,
		lookup:   lookupStore,
		locks:    lock.NewManager(nil),
	}, nil
}

// InitWithMetrics is Init with an explicit lock.Metrics recorder (nil is
// valid and disables turn-wait observation).
func InitWithMetrics(ctx context.Context, adapter storage.Adapter, derivationKey []byte, cfg Config, metrics lock.Metrics) (*Core, error) {
	c, err := Init(ctx, adapter, derivationKey, cfg)
	if err != nil {
		return nil, err
	}
	c.locks = lock.NewManager(metrics)
	return c, nil
}

// resolve parses and hashes a logical path, translating vpath's errors
// into the Core's error taxonomy.
func (c *Core) resolve(raw string, kind vpath.Kind) (vpath.PathSet, error) {
	p, err := vpath.Parse(raw)
	if err != nil {
		return vpath.PathSet{}, newError(ErrInvalidPath, raw, err.Error(), err)
	}
	if p.Kind() != kind {
		return vpath.PathSet{}, newError(ErrInvalidPath, raw, "path kind mismatch", nil)
	}
	ps, err := vpath.Resolve(p, c.hasher.Hash)
	if err != nil {
		return vpath.PathSet{}, wrapCrypto(raw, err)
	}
	return ps, nil
}

func newFileUID() string {
	return uuid.New().String()
}

func translateStorageErr(path string, err error) error {
	switch err {
	case nil:
		return nil
	case storage.ErrNotExist:
		return newError(ErrNotFound, path, "path does not exist", err)
	case storage.ErrAlreadyExists:
		return newError(ErrAlreadyExists, path, "path already exists", err)
	case storage.ErrClosed:
		return wrapIO(path, err)
	default:
		return wrapIO(path, err)
	}
}
