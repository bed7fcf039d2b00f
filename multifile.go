// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// MultiSource concatenates inner sources into one logical stream.
// Name and stream index come from the first segment.
type MultiSource struct {
	base
	inners []Source
	// starts holds logical start of every segment plus total size at the end.
	starts []int64
}

// NewMulti concatenates inners in order and takes ownership of all of them.
// Segment sizes are sampled once.
func NewMulti(inners []Source) (*MultiSource, error) {
	if len(inners) == 0 {
		return nil, fmt.Errorf("%w: no segments", ErrInvalidConfig)
	}

	starts := make([]int64, len(inners)+1)
	for i, sf := range inners {
		if sf == nil {
			return nil, fmt.Errorf("%w: segment %d", ErrNilSource, i)
		}

		starts[i+1] = starts[i] + sf.Size()
	}

	ms := &MultiSource{inners: append([]Source(nil), inners...), starts: starts}
	ms.inherit(inners[0])
	return ms, nil
}

// ReadAt reads up to len(p) bytes at off, spanning segment boundaries.
func (ms *MultiSource) ReadAt(p []byte, off int64) (int, error) {
	n, err := ms.checkRead(p, off, ms.Size())
	if err != nil || n == 0 {
		return 0, err
	}

	// first segment whose end is past off
	seg := sort.Search(len(ms.inners), func(i int) bool { return ms.starts[i+1] > off })
	done := 0
	for done < n && seg < len(ms.inners) {
		local := off - ms.starts[seg]
		chunk := ms.starts[seg+1] - off
		if rest := int64(n - done); chunk > rest {
			chunk = rest
		}

		got, rerr := ms.inners[seg].ReadAt(p[done:done+int(chunk)], local)
		done += got
		off += int64(got)
		if int64(got) < chunk {
			if rerr == nil {
				rerr = io.EOF
			}

			return finishRead(done, len(p), rerr)
		}

		seg++
	}

	return finishRead(done, len(p), nil)
}

// Size returns sum of segment sizes.
func (ms *MultiSource) Size() int64 { return ms.starts[len(ms.starts)-1] }

// Name returns first segment name.
func (ms *MultiSource) Name() string { return ms.inners[0].Name() }

// Open resolves companions through the first segment.
// Own name reopens every segment and concatenates them again.
func (ms *MultiSource) Open(name string, bufSize int) (Source, error) {
	if ms.closed {
		return nil, ErrClosed
	}
	if name != ms.Name() {
		return ms.inners[0].Open(name, bufSize)
	}

	reopened := make([]Source, 0, len(ms.inners))
	for _, sf := range ms.inners {
		seg, err := sf.Open(sf.Name(), bufSize)
		if err != nil {
			closeAll(reopened)
			return nil, fmt.Errorf("reopen segment %s: %w", sf.Name(), err)
		}

		reopened = append(reopened, seg)
	}

	out, err := NewMulti(reopened)
	if err != nil {
		closeAll(reopened)
		return nil, err
	}

	return out, nil
}

// Close closes every segment and joins their errors.
func (ms *MultiSource) Close() error {
	if ms.closed {
		return nil
	}

	ms.closed = true
	return closeAll(ms.inners)
}

// closeAll closes sources in order and joins errors.
func closeAll(sources []Source) error {
	var errs []error
	for _, sf := range sources {
		if sf == nil {
			continue
		}
		if err := sf.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
