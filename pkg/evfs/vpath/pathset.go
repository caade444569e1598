package vpath

import "strings"

// HashFunc deterministically maps a single plaintext path component to a
// filesystem-safe, case-stable token. Implementations live in
// pkg/evfs/naming; vpath only depends on the function shape to avoid an
// import cycle between path resolution and naming.
type HashFunc func(component string) (string, error)

// PathSet is the paired (unhashed, hashed) representation of a logical
// path that flows through the rest of the core (§3 PathSet).
type PathSet struct {
	// Unhashed is the client-visible logical path.
	Unhashed Path

	// Hashed is the per-component keyed-hash path used in storage.
	Hashed Path

	// FilePathSet is set only when Unhashed is a folder path; it
	// addresses the folder's "<name>.folder" metadata sidecar, a file
	// sibling of the hashed folder directory.
	FilePathSet *PathSet
}

// sidecarSuffix is appended to a folder's plaintext name, and the result
// hashed, to form its metadata sidecar's hashed leaf component, matching
// the storage layout in §6.2.
const sidecarSuffix = ".folder"

// Resolve computes the PathSet for a logical path, hashing each component
// independently with hash. The root path resolves to itself on both sides
// and carries no FilePathSet (§4.1: "Root folder ... never has a sidecar").
func Resolve(p Path, hash HashFunc) (PathSet, error) {
	if p.IsRoot() {
		return PathSet{Unhashed: Root, Hashed: Root}, nil
	}

	hashedParts := make([]string, len(p.parts))
	for i, part := range p.parts {
		token, err := hash(part)
		if err != nil {
			return PathSet{}, err
		}
		hashedParts[i] = token
	}

	hashedRaw := "/" + strings.Join(hashedParts, "/")
	if p.kind == Folder {
		hashedRaw += "/"
	}
	hashedPath := Path{raw: hashedRaw, kind: p.kind, parts: hashedParts}

	ps := PathSet{Unhashed: p, Hashed: hashedPath}

	if p.kind == Folder {
		sidecarToken, err := hash(p.Name() + sidecarSuffix)
		if err != nil {
			return PathSet{}, err
		}
		parentHashedParts := hashedParts[:len(hashedParts)-1]
		sidecarRaw := "/" + strings.Join(append(append([]string{}, parentHashedParts...), sidecarToken), "/")
		sidecarHashed := Path{raw: sidecarRaw, kind: File, parts: append(append([]string{}, parentHashedParts...), sidecarToken)}
		ps.FilePathSet = &PathSet{
			Unhashed: mustChild(p.Parent(), p.Name()+sidecarSuffix),
			Hashed:   sidecarHashed,
		}
	}

	return ps, nil
}

func mustChild(parent Path, name string) Path {
	raw := parent.raw + name
	parts := append(append([]string{}, parent.parts...), name)
	return Path{raw: raw, kind: File, parts: parts}
}
