// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/woozymasta/lzss"
)

// LZSSConfig configures an LZSS region decompressor.
type LZSSConfig struct {
	// CompressionStart is size of the uncompressed prefix copied through.
	CompressionStart int64 `json:"compression_start,omitempty" yaml:"compression_start,omitempty"`
	// CompressedSize is compressed byte count; zero means until end of inner.
	CompressedSize int64 `json:"compressed_size,omitempty" yaml:"compressed_size,omitempty"`
	// DecompressedSize is decoded byte count.
	DecompressedSize int64 `json:"decompressed_size" yaml:"decompressed_size"`
}

// LZSSState holds a lazily decoded LZSS region.
type LZSSState struct {
	cfg     LZSSConfig
	decoded []byte
	err     error
	end     int64
}

// NewLZSSDecompressor exposes the prefix of inner followed by the decoded LZSS region.
// The region is decoded in full on first access, since the codec cannot resume.
// The adapter owns inner.
func NewLZSSDecompressor(inner Source, cfg LZSSConfig) (*IOSource[LZSSState], error) {
	if inner == nil {
		return nil, ErrNilSource
	}

	total := inner.Size()
	if cfg.CompressionStart < 0 || cfg.CompressionStart > total || cfg.DecompressedSize < 0 || cfg.CompressedSize < 0 {
		return nil, fmt.Errorf("%w: lzss prefix 0x%x, output 0x%x over 0x%x", ErrInvalidConfig, cfg.CompressionStart, cfg.DecompressedSize, total)
	}
	if uint64(cfg.DecompressedSize) > uint64(math.MaxInt) {
		return nil, fmt.Errorf("%w: lzss output 0x%x", ErrInvalidRange, cfg.DecompressedSize)
	}

	end := total
	if cfg.CompressedSize > 0 && cfg.CompressionStart+cfg.CompressedSize < total {
		end = cfg.CompressionStart + cfg.CompressedSize
	}

	return NewIO(inner, LZSSState{cfg: cfg, end: end}, IOFuncs[LZSSState]{
		Read: lzssRead,
		Size: func(_ Source, st *LZSSState) int64 { return st.cfg.CompressionStart + st.cfg.DecompressedSize },
		Init: func(_ Source, st *LZSSState) error {
			st.decoded = nil
			st.err = nil
			return nil
		},
		Close: func(st *LZSSState) { st.decoded = nil },
	})
}

// decode decodes the compressed region once.
func (st *LZSSState) decode(inner Source) error {
	if st.decoded != nil || st.err != nil {
		return st.err
	}

	start := st.cfg.CompressionStart
	var out bytes.Buffer
	out.Grow(int(st.cfg.DecompressedSize))

	src := io.NewSectionReader(inner, start, st.end-start)
	if _, err := lzss.DecompressToWriter(&out, src, int(st.cfg.DecompressedSize), nil); err != nil {
		st.err = fmt.Errorf("%w: lzss region of %s: %w", ErrDecompress, inner.Name(), err)
		loggerOf(inner).Warnf("%v", st.err)
		return st.err
	}

	st.decoded = out.Bytes()
	return nil
}

func lzssRead(inner Source, p []byte, off int64, st *LZSSState) (int, error) {
	done := 0
	prefix := st.cfg.CompressionStart
	if off < prefix {
		want := min(int64(len(p)), prefix-off)
		n, err := inner.ReadAt(p[:want], off)
		done += n
		off += int64(n)
		if int64(n) != want {
			return done, eofOr(err)
		}
	}

	if done == len(p) {
		return done, nil
	}
	if err := st.decode(inner); err != nil {
		return done, err
	}

	rel := off - prefix
	if rel >= int64(len(st.decoded)) {
		return done, io.EOF
	}

	done += copy(p[done:], st.decoded[rel:])
	return done, nil
}
