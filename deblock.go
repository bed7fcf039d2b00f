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

// BlockFunc describes the block at st.PhysicalOffset by setting
// st.BlockSize, st.SkipSize and st.DataSize. A zero DataSize skips the block.
// Returning ErrEndOfBlocks ends the stream; other errors end it with ErrCorruptBlock.
type BlockFunc func(inner Source, st *DeblockState) error

// BlockReadFunc post-processes p, the bytes just copied from the current block
// starting consumed bytes into its payload.
type BlockReadFunc func(p []byte, st *DeblockState, consumed int64)

// DeblockConfig configures the generic block walker.
type DeblockConfig struct {
	// Block describes one block; nil uses fixed ChunkSize blocks with SkipSize headers.
	Block BlockFunc `json:"-" yaml:"-"`
	// PostRead optionally transforms payload bytes after they are read.
	PostRead BlockReadFunc `json:"-" yaml:"-"`
	// StreamStart is physical offset of the first block.
	StreamStart int64 `json:"stream_start,omitempty" yaml:"stream_start,omitempty"`
	// StreamSize bounds the physical block area; zero means until end of inner.
	StreamSize int64 `json:"stream_size,omitempty" yaml:"stream_size,omitempty"`
	// ChunkSize is fixed block size used by the default block callback.
	ChunkSize int64 `json:"chunk_size,omitempty" yaml:"chunk_size,omitempty"`
	// SkipSize is fixed block header size used by the default block callback.
	SkipSize int64 `json:"skip_size,omitempty" yaml:"skip_size,omitempty"`
	// LogicalSize is a known output size; zero means walk all blocks once to find it.
	LogicalSize int64 `json:"logical_size,omitempty" yaml:"logical_size,omitempty"`
	// StepStart is number of blocks skipped before the first block of this stream.
	StepStart int `json:"step_start,omitempty" yaml:"step_start,omitempty"`
	// StepCount takes one block out of every StepCount blocks; zero or one takes all.
	StepCount int `json:"step_count,omitempty" yaml:"step_count,omitempty"`
}

// DeblockState is the walker position shared with block callbacks.
type DeblockState struct {
	// PhysicalOffset is inner offset of the current block.
	PhysicalOffset int64
	// LogicalOffset is output offset of the current block payload.
	LogicalOffset int64
	// BlockSize is full size of the current block including headers.
	BlockSize int64
	// SkipSize is number of bytes before payload in the current block.
	SkipSize int64
	// DataSize is payload size of the current block.
	DataSize int64
	// PrevDataEnd is inner offset right after the previous payload, or zero.
	PrevDataEnd int64
	// PrevDataSize is payload size of the previous block, or zero.
	PrevDataSize int64
	// BlockIndex counts blocks walked since the last restart.
	BlockIndex int

	cfg         DeblockConfig
	log         Logger
	physicalEnd int64
	stepCount   int
	stepReset   int
	// ready reports whether the current block was described by the callback.
	ready bool
}

// StreamEnd returns inner offset where the block area ends.
func (st *DeblockState) StreamEnd() int64 { return st.physicalEnd }

// Logger returns diagnostics logger of the walker.
func (st *DeblockState) Logger() Logger { return mustLogger(st.log) }

// NewDeblocker exposes the payload of a block-structured inner stream as one contiguous stream.
// The deblocker owns inner.
func NewDeblocker(inner Source, cfg DeblockConfig) (*IOSource[DeblockState], error) {
	if inner == nil {
		return nil, ErrNilSource
	}

	if cfg.Block == nil {
		if cfg.ChunkSize <= 0 || cfg.SkipSize < 0 || cfg.SkipSize >= cfg.ChunkSize {
			return nil, fmt.Errorf("%w: fixed blocks need chunk size above skip size", ErrInvalidConfig)
		}

		cfg.Block = fixedBlock(cfg.ChunkSize, cfg.SkipSize)
	}

	total := inner.Size()
	if cfg.StreamStart < 0 || cfg.StreamStart > total || cfg.StepStart < 0 || cfg.StepCount < 0 {
		return nil, fmt.Errorf("%w: deblock start 0x%x, step %d/%d over 0x%x", ErrInvalidConfig, cfg.StreamStart, cfg.StepStart, cfg.StepCount, total)
	}

	physicalSize := cfg.StreamSize
	if physicalSize <= 0 || physicalSize > total-cfg.StreamStart {
		physicalSize = total - cfg.StreamStart
	}

	st := DeblockState{
		cfg:           cfg,
		log:           loggerOf(inner),
		physicalEnd:   cfg.StreamStart + physicalSize,
		LogicalOffset: -1,
	}
	if cfg.StepCount > 1 {
		st.stepReset = cfg.StepCount - 1
	}

	return NewIO(inner, st, IOFuncs[DeblockState]{
		Read: deblockRead,
		Size: deblockSize,
		Init: func(inner Source, st *DeblockState) error {
			st.log = loggerOf(inner)
			return nil
		},
	})
}

// fixedBlock returns a callback for blocks of constant size.
func fixedBlock(chunkSize, skipSize int64) BlockFunc {
	return func(_ Source, st *DeblockState) error {
		st.BlockSize = chunkSize
		st.SkipSize = skipSize
		st.DataSize = chunkSize - skipSize
		return nil
	}
}

// restart rewinds the walker to the first block.
func (st *DeblockState) restart() {
	st.PhysicalOffset = st.cfg.StreamStart
	st.LogicalOffset = 0
	st.BlockSize = 0
	st.SkipSize = 0
	st.DataSize = 0
	st.PrevDataEnd = 0
	st.PrevDataSize = 0
	st.BlockIndex = 0
	st.stepCount = st.cfg.StepStart
	st.ready = false
}

// advance moves past the current block.
func (st *DeblockState) advance() {
	if st.DataSize > 0 {
		st.PrevDataEnd = st.PhysicalOffset + st.SkipSize + st.DataSize
		st.PrevDataSize = st.DataSize
		st.LogicalOffset += st.DataSize
	}

	st.PhysicalOffset += st.BlockSize
	st.DataSize = 0
	st.BlockIndex++
	st.ready = false
	st.stepCount = st.stepReset
}

// describe runs the block callback for the current physical offset.
func (st *DeblockState) describe(inner Source) error {
	st.BlockSize = 0
	st.SkipSize = 0
	st.DataSize = 0

	err := st.cfg.Block(inner, st)
	if errors.Is(err, ErrEndOfBlocks) {
		return io.EOF
	}
	if err != nil {
		st.log.Warnf("deblock %s: block at 0x%x: %v", inner.Name(), st.PhysicalOffset, err)
		return fmt.Errorf("%w: block at 0x%x: %w", ErrCorruptBlock, st.PhysicalOffset, err)
	}
	if st.BlockSize <= 0 {
		st.log.Warnf("deblock %s: block size not set at 0x%x", inner.Name(), st.PhysicalOffset)
		return fmt.Errorf("%w: block size not set at 0x%x", ErrCorruptBlock, st.PhysicalOffset)
	}
	if st.DataSize < 0 || st.SkipSize < 0 {
		return fmt.Errorf("%w: negative sizes at 0x%x", ErrCorruptBlock, st.PhysicalOffset)
	}

	st.ready = true
	return nil
}

// deblockRead walks blocks forward to off and copies payload bytes.
// Offsets before the current block restart the walk from the first block.
func deblockRead(inner Source, p []byte, off int64, st *DeblockState) (int, error) {
	if st.LogicalOffset < 0 || off < st.LogicalOffset {
		if st.LogicalOffset > 0 {
			st.log.Debugf("deblock %s: restart for 0x%x, current 0x%x", inner.Name(), off, st.LogicalOffset)
		}

		st.restart()
	}

	done := 0
	for done < len(p) {
		if st.PhysicalOffset >= st.physicalEnd {
			return done, io.EOF
		}

		if !st.ready {
			if err := st.describe(inner); err != nil {
				return done, err
			}
		}

		if st.stepCount > 0 {
			st.stepCount--
			st.PhysicalOffset += st.BlockSize
			st.ready = false
			continue
		}

		if st.DataSize == 0 || off >= st.LogicalOffset+st.DataSize {
			st.advance()
			continue
		}

		consumed := off - st.LogicalOffset
		want := st.DataSize - consumed
		if rest := int64(len(p) - done); want > rest {
			want = rest
		}

		dst := p[done : done+int(want)]
		n, err := inner.ReadAt(dst, st.PhysicalOffset+st.SkipSize+consumed)
		if st.cfg.PostRead != nil && n > 0 {
			st.cfg.PostRead(dst[:n], st, consumed)
		}

		done += n
		off += int64(n)
		if int64(n) != want || n == 0 {
			if err == nil {
				err = io.EOF
			}

			return done, err
		}
	}

	return done, nil
}

// deblockSize returns configured size or walks every block once.
func deblockSize(inner Source, st *DeblockState) int64 {
	if st.cfg.LogicalSize > 0 {
		return st.cfg.LogicalSize
	}

	var probe [1]byte
	st.LogicalOffset = -1
	_, _ = deblockRead(inner, probe[:], math.MaxInt64, st) //nolint:errcheck // walk ends on stream end
	size := st.LogicalOffset
	st.LogicalOffset = -1
	return size
}
