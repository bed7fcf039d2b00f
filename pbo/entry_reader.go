// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package pbo

import (
	"fmt"
	"io"

	"github.com/woozymasta/streamfile"
)

// findEntryByName resolves one entry by normalized path.
func (a *Archive) findEntryByName(name string) *EntryInfo {
	lookupName := NormalizePath(name)
	for i := range a.entries {
		if NormalizePath(a.entries[i].Path) == lookupName {
			return &a.entries[i]
		}
	}

	return nil
}

// entryName returns the name reported by an opened entry source.
// Entry paths are joined to the archive directory, so companions of the
// entry resolve next to the archive.
func (a *Archive) entryName(info *EntryInfo) string {
	return streamfile.Dir(a.sf.Name()) + NormalizePath(info.Path)
}

// openEntryByInfo builds the adapter stack for already resolved entry metadata:
// wrap, clamp to stored payload, optional LZSS, optional buffer, rename.
func (a *Archive) openEntryByInfo(info *EntryInfo, name string) (streamfile.Source, error) {
	if info == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	c := streamfile.WrapChain(a.sf).Clamp(int64(info.Offset), int64(info.DataSize))
	if info.IsCompressed() {
		c = c.Then(func(sf streamfile.Source) (streamfile.Source, error) {
			return streamfile.NewLZSSDecompressor(sf, streamfile.LZSSConfig{
				CompressedSize:   int64(info.DataSize),
				DecompressedSize: int64(info.OriginalSize),
			})
		})
	}
	if a.opts.BufferSize > 0 {
		c = c.Buffer(a.opts.BufferSize)
	}

	sf, err := c.Rename(a.entryName(info)).Source()
	if err != nil {
		return nil, fmt.Errorf("open entry %s: %w", name, err)
	}

	a.log.Debugf("pbo %s: opened entry %s at 0x%x+0x%x", a.sf.Name(), info.Path, info.Offset, info.DataSize)
	return sf, nil
}

// OpenEntry opens named entry as a source.
// The source yields decompressed content for LZSS-compressed entries and
// reports the entry path joined to the archive directory as its name.
// Closing it leaves the archive open.
func (a *Archive) OpenEntry(name string) (streamfile.Source, error) {
	if a == nil {
		return nil, ErrNilArchive
	}
	if a.closed {
		return nil, ErrClosed
	}

	return a.openEntryByInfo(a.findEntryByName(name), name)
}

// OpenEntryInfo opens entry source by already resolved metadata.
func (a *Archive) OpenEntryInfo(info EntryInfo) (streamfile.Source, error) {
	if a == nil {
		return nil, ErrNilArchive
	}
	if a.closed {
		return nil, ErrClosed
	}

	name := info.Path
	if name == "" {
		name = "<unknown>"
	}

	return a.openEntryByInfo(&info, name)
}

// ReadEntry reads full (decompressed) content of the named entry.
func (a *Archive) ReadEntry(name string) ([]byte, error) {
	sf, err := a.OpenEntry(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = sf.Close() }()

	data := make([]byte, sf.Size())
	n, err := sf.ReadAt(data, 0)
	if err != nil && (err != io.EOF || n != len(data)) {
		return nil, fmt.Errorf("read entry %s: %w", name, err)
	}

	return data, nil
}
