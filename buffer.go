// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import "io"

// BufferSource caches reads of an inner source in one aligned window.
// It is meant to sit above adapters whose reads are expensive.
type BufferSource struct {
	base
	inner Source
	win   *window
	size  int64
}

// NewBuffer wraps inner with a read window of bufSize bytes, or DefaultBufferSize when zero.
// The buffer owns inner. Inner size is sampled once.
func NewBuffer(inner Source, bufSize int) (*BufferSource, error) {
	if inner == nil {
		return nil, ErrNilSource
	}

	bs := &BufferSource{inner: inner, win: newWindow(bufSize), size: inner.Size()}
	bs.inherit(inner)
	return bs, nil
}

// ReadAt reads up to len(p) bytes at off.
func (bs *BufferSource) ReadAt(p []byte, off int64) (int, error) {
	n, err := bs.checkRead(p, off, bs.size)
	if err != nil {
		if err == io.EOF {
			bs.log.Debugf("read over size of %s: offset 0x%x, size 0x%x", bs.Name(), off, bs.size)
		}

		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	got, err := bs.win.readAt(p[:n], off, bs.size, bs.inner.ReadAt)
	return finishRead(got, len(p), err)
}

// Size returns inner size sampled at construction.
func (bs *BufferSource) Size() int64 { return bs.size }

// Name returns inner name.
func (bs *BufferSource) Name() string { return bs.inner.Name() }

// Open reopens companions; own name yields a buffered reopen of the inner stack.
func (bs *BufferSource) Open(name string, bufSize int) (Source, error) {
	if bs.closed {
		return nil, ErrClosed
	}

	sf, err := bs.inner.Open(name, bufSize)
	if err != nil {
		return nil, err
	}
	if name != bs.Name() {
		return sf, nil
	}

	reopened, err := NewBuffer(sf, len(bs.win.buf))
	if err != nil {
		_ = sf.Close()
		return nil, err
	}

	return reopened, nil
}

// Close closes inner source.
func (bs *BufferSource) Close() error {
	if bs.closed {
		return nil
	}

	bs.closed = true
	return bs.inner.Close()
}
