// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import "fmt"

// RenameSource reports a different name than its inner source.
// Parsers selected by extension see the fake name.
type RenameSource struct {
	base
	inner Source
	name  string
}

// NewRename reports name instead of the inner name. The rename owns inner.
func NewRename(inner Source, name string) (*RenameSource, error) {
	if inner == nil {
		return nil, ErrNilSource
	}
	if name == "" {
		return nil, ErrEmptyName
	}
	if len(name) > PathLimit {
		return nil, fmt.Errorf("%w: %d bytes", ErrNameTooLong, len(name))
	}

	rs := &RenameSource{inner: inner, name: name}
	rs.inherit(inner)
	return rs, nil
}

// NewRenameExt reports the inner name with its extension replaced by ext.
// Names without extension get ".ext" appended.
func NewRenameExt(inner Source, ext string) (*RenameSource, error) {
	if inner == nil {
		return nil, ErrNilSource
	}

	return NewRename(inner, SwapExtension(inner.Name(), ext))
}

// ReadAt forwards to inner.
func (rs *RenameSource) ReadAt(p []byte, off int64) (int, error) {
	if rs.closed {
		return 0, ErrClosed
	}

	return rs.inner.ReadAt(p, off)
}

// Size forwards to inner.
func (rs *RenameSource) Size() int64 { return rs.inner.Size() }

// Name returns the fake name.
func (rs *RenameSource) Name() string { return rs.name }

// Open maps the fake name back to the inner name and re-applies the rename.
// Other names are resolved by inner.
func (rs *RenameSource) Open(name string, bufSize int) (Source, error) {
	if rs.closed {
		return nil, ErrClosed
	}
	if name != rs.name {
		return rs.inner.Open(name, bufSize)
	}

	sf, err := rs.inner.Open(rs.inner.Name(), bufSize)
	if err != nil {
		return nil, err
	}

	reopened, err := NewRename(sf, rs.name)
	if err != nil {
		_ = sf.Close()
		return nil, err
	}

	return reopened, nil
}

// Close closes inner source.
func (rs *RenameSource) Close() error {
	if rs.closed {
		return nil
	}

	rs.closed = true
	return rs.inner.Close()
}
