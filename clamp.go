// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"fmt"
	"io"
)

// ClampSource exposes the window [start, start+size) of an inner source at offset 0.
type ClampSource struct {
	base
	inner Source
	start int64
	size  int64
}

// NewClamp windows inner to size bytes starting at start. The clamp owns inner.
func NewClamp(inner Source, start, size int64) (*ClampSource, error) {
	if inner == nil {
		return nil, ErrNilSource
	}

	total := inner.Size()
	if start < 0 || size < 0 || start > total || size > total-start {
		return nil, fmt.Errorf("%w: clamp 0x%x+0x%x over 0x%x in %s", ErrInvalidRange, start, size, total, inner.Name())
	}

	cs := &ClampSource{inner: inner, start: start, size: size}
	cs.inherit(inner)
	return cs, nil
}

// ReadAt reads up to len(p) bytes at window offset off.
func (cs *ClampSource) ReadAt(p []byte, off int64) (int, error) {
	n, err := cs.checkRead(p, off, cs.size)
	if err != nil || n == 0 {
		return 0, err
	}

	got, err := cs.inner.ReadAt(p[:n], cs.start+off)
	if got == n && err == io.EOF {
		err = nil
	}

	return finishRead(got, len(p), err)
}

// Size returns window size.
func (cs *ClampSource) Size() int64 { return cs.size }

// Name returns inner name.
func (cs *ClampSource) Name() string { return cs.inner.Name() }

// Open reopens companions; own name yields a clamp of the reopened inner with the same window.
func (cs *ClampSource) Open(name string, bufSize int) (Source, error) {
	if cs.closed {
		return nil, ErrClosed
	}

	sf, err := cs.inner.Open(name, bufSize)
	if err != nil {
		return nil, err
	}
	if name != cs.Name() {
		return sf, nil
	}

	reopened, err := NewClamp(sf, cs.start, cs.size)
	if err != nil {
		_ = sf.Close()
		return nil, err
	}

	return reopened, nil
}

// Close closes inner source.
func (cs *ClampSource) Close() error {
	if cs.closed {
		return nil
	}

	cs.closed = true
	return cs.inner.Close()
}
