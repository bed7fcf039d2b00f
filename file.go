// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// FileSource is a leaf source backed by a platform file.
type FileSource struct {
	base
	// file is nil once a small file was read fully into the window.
	file *os.File
	// win caches the last aligned read.
	win *window
	// name is the path used to open the file.
	name string
	// opts are defaults passed to companions.
	opts FileOptions
	// size is cached on open.
	size int64
}

// OpenFile opens path with a read window of bufSize bytes.
func OpenFile(path string, bufSize int) (*FileSource, error) {
	return OpenFileWithOptions(path, FileOptions{BufferSize: bufSize})
}

// OpenFileWithOptions opens path using explicit file options.
func OpenFileWithOptions(path string, opts FileOptions) (*FileSource, error) {
	if path == "" {
		return nil, ErrEmptyName
	}
	if len(path) > PathLimit {
		return nil, fmt.Errorf("%w: %d bytes", ErrNameTooLong, len(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	fs, err := NewFile(f, path, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return fs, nil
}

// NewFile builds a source over an already open file and takes ownership of f.
// name is reported by Name and used to resolve companions.
// On error f is left open for the caller.
func NewFile(f *os.File, name string, opts FileOptions) (*FileSource, error) {
	if f == nil {
		return nil, ErrNilSource
	}

	opts.applyDefaults()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	size := fi.Size()
	if size < 0 {
		return nil, fmt.Errorf("%w: unknown file size %d", ErrInvalidRange, size)
	}

	fs := &FileSource{
		base: base{log: opts.Logger},
		file: f,
		win:  newWindow(opts.BufferSize),
		name: name,
		opts: opts,
		size: size,
	}

	if size <= int64(len(fs.win.buf)) {
		if err := fs.slurp(); err != nil {
			return nil, err
		}
	}

	return fs, nil
}

// slurp reads a small file fully into the window and releases the handle.
func (fs *FileSource) slurp() error {
	n, err := fs.file.ReadAt(fs.win.buf[:fs.size], 0)
	if int64(n) != fs.size {
		if err == nil {
			err = fmt.Errorf("short read %d of %d", n, fs.size)
		}

		return fmt.Errorf("read small file: %w", err)
	}

	fs.win.offset = 0
	fs.win.valid = n
	err = fs.file.Close()
	fs.file = nil
	if err != nil {
		return fmt.Errorf("close small file: %w", err)
	}

	return nil
}

// ReadAt reads up to len(p) bytes at off.
func (fs *FileSource) ReadAt(p []byte, off int64) (int, error) {
	n, err := fs.checkRead(p, off, fs.size)
	if err != nil {
		if err == io.EOF {
			fs.log.Debugf("read over size of %s: offset 0x%x, size 0x%x", fs.name, off, fs.size)
		}

		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	var fill fillFunc
	if fs.file != nil {
		fill = fs.file.ReadAt
	}

	got, err := fs.win.readAt(p[:n], off, fs.size, fill)
	return finishRead(got, len(p), err)
}

// Size returns file size cached at open.
func (fs *FileSource) Size() int64 { return fs.size }

// Name returns path used to open the file.
func (fs *FileSource) Name() string { return fs.name }

// Open opens a companion file.
// Opening own name duplicates the descriptor when allowed, then falls back to a fresh open.
func (fs *FileSource) Open(name string, bufSize int) (Source, error) {
	if fs.closed {
		return nil, ErrClosed
	}

	opts := fs.opts
	opts.BufferSize = bufSize
	opts.Logger = fs.Logger()

	if name == fs.name && fs.file != nil && opts.dupAllowed() {
		reopened, err := fs.reopenDup(opts)
		if err == nil {
			reopened.streamIndex = fs.streamIndex
			return reopened, nil
		}

		fs.log.Debugf("descriptor reuse for %s failed, opening by path: %v", fs.name, err)
	}

	companion, err := OpenFileWithOptions(name, opts)
	if err != nil {
		return nil, err
	}
	if name == fs.name {
		companion.streamIndex = fs.streamIndex
	}

	return companion, nil
}

// reopenDup builds an independent source over a duplicated descriptor.
func (fs *FileSource) reopenDup(opts FileOptions) (*FileSource, error) {
	f, err := dupFile(fs.file, fs.name)
	if err != nil {
		return nil, err
	}

	reopened, err := NewFile(f, fs.name, opts)
	if err != nil {
		return nil, errors.Join(err, f.Close())
	}

	return reopened, nil
}

// Close releases the file handle.
func (fs *FileSource) Close() error {
	if fs.closed {
		return nil
	}

	fs.closed = true
	fs.win = nil
	if fs.file == nil {
		return nil
	}

	err := fs.file.Close()
	fs.file = nil
	return err
}
