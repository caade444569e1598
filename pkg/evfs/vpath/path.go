// Package vpath parses and models the logical paths clients of the
// encrypted virtual file system address: absolute, slash-separated, with
// a terminal slash distinguishing folders from files.
package vpath

import (
	"strings"
)

// Kind distinguishes a folder path from a file path.
type Kind int

const (
	// Folder paths end with "/" and have no extension.
	Folder Kind = iota
	// File paths have a name and an optional extension.
	File
)

// Path is a parsed, validated logical path.
//
// Root is the special path "/": it has no parent, no name, and is always
// a Folder.
type Path struct {
	raw   string
	kind  Kind
	parts []string // path components, root-to-leaf, excluding the root itself
}

// Root is the well-known root folder path.
var Root = Path{raw: "/", kind: Folder, parts: nil}

// Parse validates and parses an absolute logical path.
//
// A folder path must end in "/"; a file path must not. Empty components
// ("//"), "." and ".." components, and components containing a NUL byte
// are rejected as traversal or malformed input.
func Parse(raw string) (Path, error) {
	if raw == "" || raw[0] != '/' {
		return Path{}, &InvalidPathError{Path: raw, Reason: "path must be absolute"}
	}
	if raw == "/" {
		return Root, nil
	}

	kind := File
	trimmed := raw[1:]
	if strings.HasSuffix(trimmed, "/") {
		kind = Folder
		trimmed = strings.TrimSuffix(trimmed, "/")
	}
	if trimmed == "" {
		// raw was exactly "/" handled above; this covers pathological
		// inputs like "//".
		return Path{}, &InvalidPathError{Path: raw, Reason: "empty path component"}
	}

	parts := strings.Split(trimmed, "/")
	for _, p := range parts {
		if err := validateComponent(p); err != nil {
			return Path{}, &InvalidPathError{Path: raw, Reason: err.Error()}
		}
	}

	return Path{raw: normalize(raw, kind), kind: kind, parts: parts}, nil
}

func normalize(raw string, kind Kind) string {
	if kind == Folder && !strings.HasSuffix(raw, "/") {
		return raw + "/"
	}
	return raw
}

func validateComponent(p string) error {
	if p == "" {
		return componentError("empty path component")
	}
	if p == "." || p == ".." {
		return componentError("traversal component not allowed")
	}
	if strings.ContainsRune(p, 0) {
		return componentError("component contains NUL byte")
	}
	if strings.ContainsAny(p, "/") {
		return componentError("component contains separator")
	}
	return nil
}

type componentError string

func (e componentError) Error() string { return string(e) }

// String returns the canonical string form of the path.
func (p Path) String() string { return p.raw }

// IsRoot reports whether this is the root folder.
func (p Path) IsRoot() bool { return p.raw == "/" }

// Kind reports whether the path names a folder or a file.
func (p Path) Kind() Kind { return p.kind }

// Parts returns the path components, root-to-leaf. The root path returns
// an empty, non-nil slice.
func (p Path) Parts() []string {
	out := make([]string, len(p.parts))
	copy(out, p.parts)
	return out
}

// Name returns the leaf component's full name (for a file, including its
// extension; for a folder, the folder name). Root's name is "".
func (p Path) Name() string {
	if len(p.parts) == 0 {
		return ""
	}
	return p.parts[len(p.parts)-1]
}

// Extension returns the file extension (without the leading dot), or ""
// if the path is a folder or the file has no extension.
func (p Path) Extension() string {
	if p.kind != File {
		return ""
	}
	name := p.Name()
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}
	return name[idx+1:]
}

// Stem returns the leaf name without its extension for files, or the full
// name for folders.
func (p Path) Stem() string {
	if p.kind != File {
		return p.Name()
	}
	name := p.Name()
	ext := p.Extension()
	if ext == "" {
		return name
	}
	return strings.TrimSuffix(name, "."+ext)
}

// Parent returns the parent folder path. Root's parent is Root itself.
func (p Path) Parent() Path {
	if p.IsRoot() || len(p.parts) == 0 {
		return Root
	}
	if len(p.parts) == 1 {
		return Root
	}
	parentParts := p.parts[:len(p.parts)-1]
	return Path{raw: "/" + strings.Join(parentParts, "/") + "/", kind: Folder, parts: parentParts}
}

// Child constructs the file or folder path for a child component of a
// folder path. It is an error to call Child on a file path.
func (p Path) Child(name string, kind Kind) (Path, error) {
	if p.kind != Folder {
		return Path{}, &InvalidPathError{Path: p.raw, Reason: "cannot address a child of a file path"}
	}
	if err := validateComponent(name); err != nil {
		return Path{}, &InvalidPathError{Path: name, Reason: err.Error()}
	}
	parts := append(append([]string{}, p.parts...), name)
	raw := "/" + strings.Join(parts, "/")
	if kind == Folder {
		raw += "/"
	}
	return Path{raw: raw, kind: kind, parts: parts}, nil
}

// WithName returns a copy of p with its leaf component renamed to name,
// keeping the same kind and parent.
func (p Path) WithName(name string) (Path, error) {
	return p.Parent().Child(name, p.kind)
}

// InvalidPathError reports a malformed logical path.
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return "invalid path " + quote(e.Path) + ": " + e.Reason
}

func quote(s string) string { return "\"" + s + "\"" }
