// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"fmt"
	"io"

	"github.com/woozymasta/streamfile/internal/lz4mg"
)

// lz4BufferSize is size of compressed input and decoded output blocks.
const lz4BufferSize = 0x10000

// LZ4Config configures an LZ4 block stream decompressor.
//
// The inner stream holds CompressionStart bytes copied through as they are,
// followed by compressed data. Output is the copied prefix followed by
// DecompressedSize decoded bytes.
type LZ4Config struct {
	// CompressionStart is size of the uncompressed prefix.
	CompressionStart int64 `json:"compression_start,omitempty" yaml:"compression_start,omitempty"`
	// CompressedSize is compressed byte count; zero means until end of inner.
	CompressedSize int64 `json:"compressed_size,omitempty" yaml:"compressed_size,omitempty"`
	// DecompressedSize is decoded byte count. Required, since the format has no end marker.
	DecompressedSize int64 `json:"decompressed_size" yaml:"decompressed_size"`
}

// LZ4State is the decoding position of an LZ4 decompressor.
type LZ4State struct {
	cfg         LZ4Config
	dec         *lz4mg.Decoder
	src         []byte
	dst         []byte
	physicalEnd int64
	logicalSize int64
	// physical is next inner offset to read.
	physical int64
	// blockStart is logical offset of dst[0]; negative forces a restart.
	blockStart int64
	blockLen   int
	srcPos     int
	srcLen     int
}

// NewLZ4Decompressor exposes decoded content of an LZ4 block stream.
// Reads before the current block restart decoding from the beginning.
// The adapter owns inner.
func NewLZ4Decompressor(inner Source, cfg LZ4Config) (*IOSource[LZ4State], error) {
	if inner == nil {
		return nil, ErrNilSource
	}

	total := inner.Size()
	if cfg.CompressionStart < 0 || cfg.CompressionStart > total || cfg.DecompressedSize <= 0 || cfg.CompressedSize < 0 {
		return nil, fmt.Errorf("%w: lz4 prefix 0x%x, output 0x%x over 0x%x", ErrInvalidConfig, cfg.CompressionStart, cfg.DecompressedSize, total)
	}

	end := total
	if cfg.CompressedSize > 0 && cfg.CompressionStart+cfg.CompressedSize < total {
		end = cfg.CompressionStart + cfg.CompressedSize
	}

	st := LZ4State{
		cfg:         cfg,
		physicalEnd: end,
		logicalSize: cfg.CompressionStart + cfg.DecompressedSize,
	}

	return NewIO(inner, st, IOFuncs[LZ4State]{
		Read: lz4Read,
		Size: func(_ Source, st *LZ4State) int64 { return st.logicalSize },
		Init: func(_ Source, st *LZ4State) error {
			// copies share nothing with the source they were cloned from
			st.dec = new(lz4mg.Decoder)
			st.src = make([]byte, lz4BufferSize)
			st.dst = make([]byte, lz4BufferSize)
			st.blockStart = -1
			return nil
		},
		Close: func(st *LZ4State) {
			st.dec = nil
			st.src = nil
			st.dst = nil
		},
	})
}

// restart rewinds to the beginning of the stream.
func (st *LZ4State) restart() {
	st.dec.Reset()
	st.physical = 0
	st.blockStart = 0
	st.blockLen = 0
	st.srcPos = 0
	st.srcLen = 0
}

// nextBlock produces the block following the current one.
func (st *LZ4State) nextBlock(inner Source) error {
	st.blockStart += int64(st.blockLen)
	st.blockLen = 0

	for st.blockLen == 0 {
		if st.blockStart >= st.logicalSize {
			return io.EOF
		}

		if st.physical < st.cfg.CompressionStart {
			want := min(st.cfg.CompressionStart-st.physical, int64(len(st.dst)))
			n, err := inner.ReadAt(st.dst[:want], st.physical)
			st.physical += int64(n)
			st.blockLen = n
			if n == 0 {
				return eofOr(err)
			}

			continue
		}

		if st.srcLen == 0 {
			want := min(st.physicalEnd-st.physical, int64(len(st.src)))
			if want <= 0 {
				return io.EOF
			}

			n, err := inner.ReadAt(st.src[:want], st.physical)
			if n == 0 {
				return eofOr(err)
			}

			st.physical += int64(n)
			st.srcPos = 0
			st.srcLen = n
		}

		out, in, err := st.dec.Decompress(st.dst, st.src[st.srcPos:st.srcPos+st.srcLen])
		st.srcPos += in
		st.srcLen -= in
		if err != nil {
			return fmt.Errorf("%w: lz4 block at 0x%x: %w", ErrDecompress, st.physical, err)
		}

		st.blockLen = int(min(int64(out), st.logicalSize-st.blockStart))
	}

	return nil
}

func lz4Read(inner Source, p []byte, off int64, st *LZ4State) (int, error) {
	if st.blockStart < 0 || off < st.blockStart {
		st.restart()
	}

	done := 0
	for done < len(p) {
		if off >= st.blockStart+int64(st.blockLen) {
			if err := st.nextBlock(inner); err != nil {
				return done, err
			}

			continue
		}

		n := copy(p[done:], st.dst[off-st.blockStart:st.blockLen])
		done += n
		off += int64(n)
	}

	return done, nil
}

// eofOr returns err, or io.EOF when err is nil.
func eofOr(err error) error {
	if err == nil {
		return io.EOF
	}

	return err
}
