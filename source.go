// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"io"
)

// Stream layout limits and defaults.
const (
	// DefaultBufferSize is used when a buffer size hint of zero is passed.
	DefaultBufferSize = 0x8000
	// PathLimit is the maximum accepted path length in bytes.
	PathLimit = 0x8000
)

// Source is a random-access byte view with a name.
//
// ReadAt follows io.ReaderAt: fewer bytes than requested always come with a
// non-nil error, and io.EOF marks the end of the view. Parsers treat a short
// read as a normal termination signal.
//
// Open resolves a companion file relative to this source. Adapters that
// transform data apply the same transform when the requested name is their
// own name, so reopening a stack yields an independent identical stack.
//
// Sources are not safe for concurrent use. Closing a source closes the inner
// source it owns.
type Source interface {
	io.ReaderAt
	io.Closer

	// Size returns logical size in bytes.
	Size() int64
	// Name returns display path. Adapters may rename.
	Name() string
	// Open opens a companion by path with a buffer size hint.
	Open(name string, bufSize int) (Source, error)
	// StreamIndex returns the subsong number attached to this view.
	StreamIndex() int
	// SetStreamIndex attaches a subsong number to this view.
	SetStreamIndex(index int)
}

// base holds state every adapter carries along the stack.
type base struct {
	// log receives diagnostics; copied from inner source.
	log Logger
	// streamIndex is the subsong number; copied from inner source.
	streamIndex int
	// closed reports whether Close was already called.
	closed bool
}

// inherit copies carried state from inner.
func (b *base) inherit(inner Source) {
	b.log = loggerOf(inner)
	b.streamIndex = inner.StreamIndex()
}

// StreamIndex returns the subsong number attached to this view.
func (b *base) StreamIndex() int { return b.streamIndex }

// SetStreamIndex attaches a subsong number to this view.
func (b *base) SetStreamIndex(index int) { b.streamIndex = index }

// Logger returns diagnostics logger of this view.
func (b *base) Logger() Logger { return mustLogger(b.log) }

// SetLogger replaces diagnostics logger of this view.
// Adapters built on top afterwards inherit it.
func (b *base) SetLogger(l Logger) { b.log = mustLogger(l) }

// checkRead validates common read preconditions and clips p to size.
// It returns clipped length and a terminal error when nothing can be read.
func (b *base) checkRead(p []byte, off, size int64) (int, error) {
	if b.closed {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrNegativeOffset
	}
	if off >= size {
		if len(p) == 0 {
			return 0, nil
		}

		return 0, io.EOF
	}

	n := len(p)
	if rest := size - off; int64(n) > rest {
		n = int(rest)
	}

	return n, nil
}

// finishRead turns a clipped read into io.ReaderAt results.
func finishRead(n, want int, err error) (int, error) {
	if n < want && err == nil {
		err = io.EOF
	}
	if n == want && err == io.EOF {
		err = nil
	}

	return n, err
}
