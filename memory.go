// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// MemoryFS is a set of named in-memory files that open as sources.
// Sources opened from one MemoryFS resolve companions within it.
type MemoryFS struct {
	// log is handed to every opened source.
	log Logger
	// files maps cleaned names to contents.
	files map[string][]byte
}

// NewMemoryFS returns an empty in-memory file set.
func NewMemoryFS(log Logger) *MemoryFS {
	return &MemoryFS{log: mustLogger(log), files: make(map[string][]byte)}
}

// Add stores data under name, replacing any previous content.
// Data is not copied.
func (m *MemoryFS) Add(name string, data []byte) {
	m.files[cleanMemoryName(name)] = data
}

// Open opens a stored file as a source. The size hint is ignored.
func (m *MemoryFS) Open(name string, _ int) (*MemorySource, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if len(name) > PathLimit {
		return nil, fmt.Errorf("%w: %d bytes", ErrNameTooLong, len(name))
	}

	data, ok := m.files[cleanMemoryName(name)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	return &MemorySource{
		base: base{log: m.log},
		fsys: m,
		name: name,
		data: data,
	}, nil
}

// cleanMemoryName maps both separators to one canonical key.
func cleanMemoryName(name string) string {
	return path.Clean(strings.ReplaceAll(name, `\`, `/`))
}

// MemorySource is a leaf source over a byte slice.
type MemorySource struct {
	base
	// fsys resolves companions.
	fsys *MemoryFS
	// name is reported by Name.
	name string
	// data is the full content.
	data []byte
}

// NewMemory returns a source over data in a file set of its own.
// The name is not validated; opening companions of a source with an empty
// or oversized name fails like MemoryFS.Open does.
func NewMemory(name string, data []byte) *MemorySource {
	m := NewMemoryFS(nil)
	m.Add(name, data)
	return &MemorySource{
		base: base{log: m.log},
		fsys: m,
		name: name,
		data: data,
	}
}

// ReadAt reads up to len(p) bytes at off.
func (ms *MemorySource) ReadAt(p []byte, off int64) (int, error) {
	n, err := ms.checkRead(p, off, int64(len(ms.data)))
	if err != nil || n == 0 {
		return 0, err
	}

	got := copy(p[:n], ms.data[off:])
	return finishRead(got, len(p), nil)
}

// Size returns content length.
func (ms *MemorySource) Size() int64 { return int64(len(ms.data)) }

// Name returns assigned name.
func (ms *MemorySource) Name() string { return ms.name }

// Open opens a companion from the same file set.
func (ms *MemorySource) Open(name string, bufSize int) (Source, error) {
	if ms.closed {
		return nil, ErrClosed
	}

	sf, err := ms.fsys.Open(name, bufSize)
	if err != nil {
		return nil, err
	}

	sf.log = ms.Logger()
	if name == ms.name {
		sf.streamIndex = ms.streamIndex
	}

	return sf, nil
}

// Close releases the data reference.
func (ms *MemorySource) Close() error {
	ms.closed = true
	ms.data = nil
	return nil
}
