// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"bytes"
	"fmt"
)

// ChunkOptions controls id/size chunk scanning.
type ChunkOptions struct {
	// MaxSize bounds the scanned area from start; zero scans to end of source.
	MaxSize int64 `json:"max_size,omitempty" yaml:"max_size,omitempty"`
	// BigEndianSize reads chunk sizes as big-endian.
	BigEndianSize bool `json:"big_endian_size,omitempty" yaml:"big_endian_size,omitempty"`
	// FullChunkSize means stored sizes include the 8-byte chunk header.
	FullChunkSize bool `json:"full_chunk_size,omitempty" yaml:"full_chunk_size,omitempty"`
	// ZeroSizeEnd treats an empty chunk as end marker.
	ZeroSizeEnd bool `json:"zero_size_end,omitempty" yaml:"zero_size_end,omitempty"`
}

// FindChunk scans id/size chunk pairs from start and returns payload offset
// and stored size of the first chunk with the given id.
func FindChunk(sf Source, id BlockID, start int64, opts ChunkOptions) (int64, int64, error) {
	if sf == nil {
		return 0, 0, ErrNilSource
	}

	total := sf.Size()
	limit := total
	if opts.MaxSize > 0 && start+opts.MaxSize < total {
		limit = start + opts.MaxSize
	}

	allOnes := []byte{0xff, 0xff, 0xff, 0xff}
	ord := byteOrder(opts.BigEndianSize)
	for off := start; off < limit; {
		var head [8]byte
		if err := readFixed(sf, head[:], off); err != nil {
			break
		}
		if bytes.Equal(head[0:4], allOnes) || bytes.Equal(head[4:8], allOnes) {
			break
		}

		size := int64(ord.Uint32(head[4:8]))
		if BlockID(head[0:4]) == id {
			return off + 8, size, nil
		}
		if size == 0 && opts.ZeroSizeEnd {
			break
		}

		step := 8 + size
		if opts.FullChunkSize {
			step = size
		}
		if step <= 0 {
			break
		}

		off += step
	}

	return 0, 0, fmt.Errorf("%w: %q in %s", ErrChunkNotFound, id, sf.Name())
}
