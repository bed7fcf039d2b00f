// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

// WrapSource forwards every operation to an inner source it does not own.
// Closing it leaves the inner source open. Use it to stack adapters
// over a source that still belongs to someone else.
type WrapSource struct {
	base
	inner Source
}

// NewWrap returns a non-owning view of inner.
func NewWrap(inner Source) (*WrapSource, error) {
	if inner == nil {
		return nil, ErrNilSource
	}

	ws := &WrapSource{inner: inner}
	ws.inherit(inner)
	return ws, nil
}

// ReadAt forwards to inner.
func (ws *WrapSource) ReadAt(p []byte, off int64) (int, error) {
	if ws.closed {
		return 0, ErrClosed
	}

	return ws.inner.ReadAt(p, off)
}

// Size forwards to inner.
func (ws *WrapSource) Size() int64 { return ws.inner.Size() }

// Name forwards to inner.
func (ws *WrapSource) Name() string { return ws.inner.Name() }

// Open forwards to inner. The opened source is owned by the caller.
func (ws *WrapSource) Open(name string, bufSize int) (Source, error) {
	if ws.closed {
		return nil, ErrClosed
	}

	return ws.inner.Open(name, bufSize)
}

// Close marks the view closed without closing inner.
func (ws *WrapSource) Close() error {
	ws.closed = true
	return nil
}
