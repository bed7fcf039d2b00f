// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import "io"

// fillFunc reads len(p) bytes of backing data at absolute offset off.
type fillFunc func(p []byte, off int64) (int, error)

// window is a single aligned read-through cache.
//
// A refill always starts at a multiple of the window capacity, so a request
// that straddles an aligned boundary costs exactly two refills.
type window struct {
	// buf holds cached bytes; its length is the window capacity.
	buf []byte
	// offset is absolute position of buf[0].
	offset int64
	// valid is number of cached bytes in buf.
	valid int
	// refills counts backing reads, exposed for diagnostics.
	refills int
}

// newWindow allocates a window with capacity size, or DefaultBufferSize.
func newWindow(size int) *window {
	if size <= 0 {
		size = DefaultBufferSize
	}

	return &window{buf: make([]byte, size)}
}

// contains reports whether absolute offset off is cached.
func (w *window) contains(off int64) bool {
	return w.valid > 0 && off >= w.offset && off < w.offset+int64(w.valid)
}

// readAt copies bytes at off into p, refilling from fill as needed.
// total is logical size of the backing data; p must already be clipped to it.
// fill may be nil when the window already holds all data.
func (w *window) readAt(p []byte, off, total int64, fill fillFunc) (int, error) {
	done := 0
	for done < len(p) {
		if w.contains(off) {
			n := copy(p[done:], w.buf[off-w.offset:w.valid])
			done += n
			off += int64(n)
			continue
		}

		if fill == nil || off >= total {
			return done, io.EOF
		}

		capacity := int64(len(w.buf))
		start := off - off%capacity
		want := capacity
		if rest := total - start; rest < want {
			want = rest
		}

		n, err := fill(w.buf[:want], start)
		w.offset = start
		w.valid = n
		w.refills++
		if n == 0 || !w.contains(off) {
			w.valid = 0
			if err == nil {
				err = io.EOF
			}

			return done, err
		}
	}

	return done, nil
}

// reset drops cached bytes.
func (w *window) reset() {
	w.offset = 0
	w.valid = 0
}
