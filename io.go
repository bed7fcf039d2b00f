// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"errors"
	"fmt"
	"io"
)

// IOFuncs are the callbacks of a custom transform adapter over state S.
//
// Read receives a request already clipped to Size and returns the bytes
// produced; fewer bytes than requested end the stream at that point.
type IOFuncs[S any] struct {
	// Read produces transformed bytes at logical offset off. Required.
	Read func(inner Source, p []byte, off int64, state *S) (int, error)
	// Size returns logical size; nil means inner size. Called at most once per adapter.
	Size func(inner Source, state *S) int64
	// Init prepares state after it was copied; a failure aborts construction.
	Init func(inner Source, state *S) error
	// Close releases resources held by state.
	Close func(state *S)
}

// IOSource applies custom read and size callbacks over an inner source.
//
// State is copied by value on construction and again for every companion
// opened through it, so each adapter owns its own. Reference fields of S
// are shared by those copies unless Init replaces them.
type IOSource[S any] struct {
	base
	inner   Source
	funcs   IOFuncs[S]
	initial S
	state   S
	size    int64
	// sized reports whether size was computed; zero is a valid size.
	sized bool
}

// NewIO builds a custom transform adapter that owns inner.
// On error inner is left open for the caller.
func NewIO[S any](inner Source, state S, funcs IOFuncs[S]) (*IOSource[S], error) {
	if inner == nil {
		return nil, ErrNilSource
	}
	if funcs.Read == nil {
		return nil, fmt.Errorf("%w: read callback is required", ErrInvalidConfig)
	}

	s := &IOSource[S]{inner: inner, funcs: funcs, initial: state, state: state}
	s.inherit(inner)
	if funcs.Init != nil {
		if err := funcs.Init(inner, &s.state); err != nil {
			if funcs.Close != nil {
				funcs.Close(&s.state)
			}

			return nil, fmt.Errorf("init %s: %w", inner.Name(), err)
		}
	}

	return s, nil
}

// ReadAt reads up to len(p) transformed bytes at off.
func (s *IOSource[S]) ReadAt(p []byte, off int64) (int, error) {
	n, err := s.checkRead(p, off, s.Size())
	if err != nil || n == 0 {
		return 0, err
	}

	got, err := s.funcs.Read(s.inner, p[:n], off, &s.state)
	if got < 0 {
		got = 0
	}
	if got > n {
		got = n
	}
	if got < n && err != nil && !isEOF(err) {
		s.log.Debugf("transform read of %s at 0x%x stopped: %v", s.Name(), off, err)
	}

	return finishRead(got, len(p), err)
}

// Size returns logical size, computing it on first use.
func (s *IOSource[S]) Size() int64 {
	if s.sized {
		return s.size
	}

	if s.funcs.Size != nil {
		s.size = s.funcs.Size(s.inner, &s.state)
	} else {
		s.size = s.inner.Size()
	}
	if s.size < 0 {
		s.size = 0
	}

	s.sized = true
	return s.size
}

// Name returns inner name.
func (s *IOSource[S]) Name() string { return s.inner.Name() }

// Open opens name through inner and applies the same transform
// with a fresh copy of the initial state.
func (s *IOSource[S]) Open(name string, bufSize int) (Source, error) {
	if s.closed {
		return nil, ErrClosed
	}

	sf, err := s.inner.Open(name, bufSize)
	if err != nil {
		return nil, err
	}

	reopened, err := NewIO(sf, s.initial, s.funcs)
	if err != nil {
		_ = sf.Close()
		return nil, err
	}

	return reopened, nil
}

// State returns the live state, for callbacks and tests.
func (s *IOSource[S]) State() *S { return &s.state }

// Close releases state, then closes inner.
func (s *IOSource[S]) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true
	if s.funcs.Close != nil {
		s.funcs.Close(&s.state)
	}

	var zero S
	s.state = zero
	return s.inner.Close()
}

// isEOF reports end-of-stream errors.
func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
