// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// switchOpusHeader is the big-endian length field value that marks a full
// Nintendo Opus header in place of a frame; its size is stored at +0x10.
const switchOpusHeader = 0x01000080

// FrameConfig configures deinterleaving of variable-size frames,
// with one frame per stream in round-robin order.
// Every frame starts with a 32-bit big-endian payload length and stays whole in the output.
type FrameConfig struct {
	// StreamStart is offset of the first frame of stream 0.
	StreamStart int64 `json:"stream_start,omitempty" yaml:"stream_start,omitempty"`
	// StreamSize bounds the frame area; zero means until end of inner.
	StreamSize int64 `json:"stream_size,omitempty" yaml:"stream_size,omitempty"`
	// HeaderSize is frame header size added to the stored length; zero means 0x08.
	HeaderSize int64 `json:"header_size,omitempty" yaml:"header_size,omitempty"`
	// Size is known logical size; zero walks the frames once to find it.
	Size int64 `json:"size,omitempty" yaml:"size,omitempty"`
	// Streams is number of interleaved streams.
	Streams int `json:"streams" yaml:"streams"`
	// Stream selects the exposed stream.
	Stream int `json:"stream" yaml:"stream"`
}

// FrameState is the forward walker of a frame deinterleaver.
type FrameState struct {
	cfg         FrameConfig
	physicalEnd int64
	physical    int64
	logical     int64
	skip        int
	started     bool
}

// NewFrameDeinterleaver exposes the frames of one stream of a
// variable-frame interleaved stream. The adapter owns inner.
func NewFrameDeinterleaver(inner Source, cfg FrameConfig) (*IOSource[FrameState], error) {
	if inner == nil {
		return nil, ErrNilSource
	}
	if cfg.HeaderSize <= 0 {
		cfg.HeaderSize = 0x08
	}

	total := inner.Size()
	if cfg.Streams <= 0 || cfg.Stream < 0 || cfg.Stream >= cfg.Streams || cfg.StreamStart < 0 || cfg.StreamStart > total {
		return nil, fmt.Errorf("%w: stream %d of %d at 0x%x", ErrInvalidConfig, cfg.Stream, cfg.Streams, cfg.StreamStart)
	}

	end := total
	if cfg.StreamSize > 0 && cfg.StreamStart+cfg.StreamSize < total {
		end = cfg.StreamStart + cfg.StreamSize
	}

	return NewIO(inner, FrameState{cfg: cfg, physicalEnd: end}, IOFuncs[FrameState]{
		Read: framesRead,
		Size: framesSize,
	})
}

// restart rewinds to the first frame of the selected stream.
func (st *FrameState) restart() {
	st.physical = st.cfg.StreamStart
	st.logical = 0
	st.skip = st.cfg.Stream
	st.started = true
}

// next moves past a frame of the selected stream.
func (st *FrameState) next(size int64) {
	st.physical += size
	st.logical += size
	st.skip = st.cfg.Streams - 1
}

// frameSize returns full size of the frame at physical offset.
func (st *FrameState) frameSize(inner Source) (int64, error) {
	length, err := ReadU32BE(inner, st.physical)
	if err != nil {
		return 0, err
	}

	if length == switchOpusHeader {
		length, err = ReadU32LE(inner, st.physical+0x10)
		if err != nil {
			return 0, err
		}
	}

	size := int64(length) + st.cfg.HeaderSize
	if st.physical+size > st.physicalEnd {
		return 0, fmt.Errorf("%w: frame at 0x%x size 0x%x past stream end 0x%x", ErrCorruptBlock, st.physical, size, st.physicalEnd)
	}

	return size, nil
}

func framesRead(inner Source, p []byte, off int64, st *FrameState) (int, error) {
	if !st.started || off < st.logical {
		st.restart()
	}

	done := 0
	for done < len(p) {
		if st.physical >= st.physicalEnd {
			return done, io.EOF
		}

		size, err := st.frameSize(inner)
		if err != nil {
			return done, err
		}

		if st.skip > 0 {
			st.physical += size
			st.skip--
			continue
		}

		if off >= st.logical+size {
			st.next(size)
			continue
		}

		intra := off - st.logical
		want := size - intra
		if rest := int64(len(p) - done); want > rest {
			want = rest
		}

		n, err := inner.ReadAt(p[done:done+int(want)], st.physical+intra)
		done += n
		off += int64(n)
		if int64(n) != want {
			if err == nil {
				err = io.EOF
			}

			return done, err
		}

		if intra+int64(n) == size {
			st.next(size)
		}
	}

	return done, nil
}

// framesSize returns known size or walks all frames once.
func framesSize(inner Source, st *FrameState) int64 {
	if st.cfg.Size > 0 {
		return st.cfg.Size
	}

	var probe [1]byte
	st.started = false
	_, err := framesRead(inner, probe[:], math.MaxInt64, st)
	if err != nil && !errors.Is(err, io.EOF) {
		loggerOf(inner).Warnf("frame stream %s: size walk stopped at 0x%x: %v", inner.Name(), st.physical, err)
	}

	size := st.logical
	st.started = false
	return size
}
