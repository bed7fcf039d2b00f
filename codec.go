// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
)

// codecBlockSize is size of the decoded block kept for repeated reads.
const codecBlockSize = 0x10000

// NewReaderFunc opens a decompressing reader over compressed input.
type NewReaderFunc func(r io.Reader) (io.ReadCloser, error)

// StreamCodecConfig configures a streaming decompressor adapter.
type StreamCodecConfig struct {
	// NewReader opens the decoder. Required.
	NewReader NewReaderFunc `json:"-" yaml:"-"`
	// CompressionStart is size of the uncompressed prefix copied through.
	CompressionStart int64 `json:"compression_start,omitempty" yaml:"compression_start,omitempty"`
	// CompressedSize is compressed byte count; zero means until end of inner.
	CompressedSize int64 `json:"compressed_size,omitempty" yaml:"compressed_size,omitempty"`
	// DecompressedSize is decoded byte count; zero decodes the stream once to find it.
	DecompressedSize int64 `json:"decompressed_size,omitempty" yaml:"decompressed_size,omitempty"`
}

// StreamCodecState is the decoding position of a streaming decompressor.
type StreamCodecState struct {
	cfg StreamCodecConfig
	r   io.ReadCloser
	buf []byte
	end int64
	// pos is decoded offset of the next byte r yields.
	pos      int64
	bufStart int64
	bufLen   int
}

// NewStreamCodec exposes the prefix of inner followed by the decoded region,
// using any io.Reader based decoder. Reads before the cached block reopen the
// decoder from the start of the region. The adapter owns inner.
func NewStreamCodec(inner Source, cfg StreamCodecConfig) (*IOSource[StreamCodecState], error) {
	if inner == nil {
		return nil, ErrNilSource
	}
	if cfg.NewReader == nil {
		return nil, fmt.Errorf("%w: decoder constructor is required", ErrInvalidConfig)
	}

	total := inner.Size()
	if cfg.CompressionStart < 0 || cfg.CompressionStart > total || cfg.CompressedSize < 0 || cfg.DecompressedSize < 0 {
		return nil, fmt.Errorf("%w: codec prefix 0x%x over 0x%x", ErrInvalidConfig, cfg.CompressionStart, total)
	}

	end := total
	if cfg.CompressedSize > 0 && cfg.CompressionStart+cfg.CompressedSize < total {
		end = cfg.CompressionStart + cfg.CompressedSize
	}

	return NewIO(inner, StreamCodecState{cfg: cfg, end: end}, IOFuncs[StreamCodecState]{
		Read: codecRead,
		Size: codecSize,
		Init: func(_ Source, st *StreamCodecState) error {
			st.r = nil
			st.buf = make([]byte, codecBlockSize)
			st.bufLen = 0
			return nil
		},
		Close: func(st *StreamCodecState) { st.closeReader() },
	})
}

// NewZlibDecompressor exposes a zlib region of inner.
func NewZlibDecompressor(inner Source, cfg StreamCodecConfig) (*IOSource[StreamCodecState], error) {
	cfg.NewReader = zlib.NewReader
	return NewStreamCodec(inner, cfg)
}

// NewDeflateDecompressor exposes a raw deflate region of inner.
func NewDeflateDecompressor(inner Source, cfg StreamCodecConfig) (*IOSource[StreamCodecState], error) {
	cfg.NewReader = func(r io.Reader) (io.ReadCloser, error) { return flate.NewReader(r), nil }
	return NewStreamCodec(inner, cfg)
}

// closeReader releases the current decoder.
func (st *StreamCodecState) closeReader() {
	if st.r != nil {
		_ = st.r.Close()
		st.r = nil
	}
}

// rewind opens a fresh decoder at the start of the region.
func (st *StreamCodecState) rewind(inner Source) error {
	st.closeReader()
	start := st.cfg.CompressionStart
	r, err := st.cfg.NewReader(io.NewSectionReader(inner, start, st.end-start))
	if err != nil {
		return fmt.Errorf("%w: open decoder for %s: %w", ErrDecompress, inner.Name(), err)
	}

	st.r = r
	st.pos = 0
	st.bufStart = 0
	st.bufLen = 0
	return nil
}

// fill decodes the next block into buf.
func (st *StreamCodecState) fill(inner Source) error {
	n, err := io.ReadFull(st.r, st.buf)
	st.bufStart = st.pos
	st.bufLen = n
	st.pos += int64(n)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF):
		if n == 0 {
			return io.EOF
		}

		return nil
	default:
		loggerOf(inner).Warnf("decoder of %s failed at 0x%x: %v", inner.Name(), st.pos, err)
		return fmt.Errorf("%w: %w", ErrDecompress, err)
	}
}

func codecRead(inner Source, p []byte, off int64, st *StreamCodecState) (int, error) {
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

	for done < len(p) {
		rel := off - prefix
		if st.bufLen > 0 && rel >= st.bufStart && rel < st.bufStart+int64(st.bufLen) {
			n := copy(p[done:], st.buf[rel-st.bufStart:st.bufLen])
			done += n
			off += int64(n)
			continue
		}

		if st.r == nil || rel < st.bufStart {
			if st.r != nil {
				loggerOf(inner).Debugf("decoder of %s: restart for 0x%x", inner.Name(), off)
			}
			if err := st.rewind(inner); err != nil {
				return done, err
			}
		}

		if err := st.fill(inner); err != nil {
			return done, err
		}
	}

	return done, nil
}

// codecSize returns configured size or decodes the region once to count it.
func codecSize(inner Source, st *StreamCodecState) int64 {
	if st.cfg.DecompressedSize > 0 {
		return st.cfg.CompressionStart + st.cfg.DecompressedSize
	}

	if err := st.rewind(inner); err != nil {
		loggerOf(inner).Warnf("%v", err)
		return st.cfg.CompressionStart
	}

	n, err := io.Copy(io.Discard, st.r)
	if err != nil {
		loggerOf(inner).Warnf("decoder of %s: size pass stopped at 0x%x: %v", inner.Name(), n, err)
	}

	st.closeReader()
	return st.cfg.CompressionStart + n
}
