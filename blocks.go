// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"bytes"
	"fmt"
)

// BlockLayout describes the header of a multi-channel block.
//
// A block starts with one entry per channel (start entry, frame count,
// samples to discard, samples), followed by per-frame seek entries of every
// channel, then per-channel extra entries. The header is padded to HeaderAlign
// and channel payloads follow in channel order.
type BlockLayout struct {
	// ChannelEntrySize is size of one channel entry; zero means 0x10.
	ChannelEntrySize int64 `json:"channel_entry_size,omitempty" yaml:"channel_entry_size,omitempty"`
	// SeekEntrySize is size of one seek entry per channel frame.
	SeekEntrySize int64 `json:"seek_entry_size,omitempty" yaml:"seek_entry_size,omitempty"`
	// ExtraEntrySize is size of one per-channel extra entry.
	ExtraEntrySize int64 `json:"extra_entry_size,omitempty" yaml:"extra_entry_size,omitempty"`
	// HeaderAlign pads header size to a multiple of this value; zero means no padding.
	HeaderAlign int64 `json:"header_align,omitempty" yaml:"header_align,omitempty"`
	// FrameSize is fixed channel frame size; zero reads a 16-bit size at extra entry offset 0x04.
	FrameSize int64 `json:"frame_size,omitempty" yaml:"frame_size,omitempty"`
}

// LayoutXMA2 is the block layout of XMA2 music streams.
func LayoutXMA2() BlockLayout {
	return BlockLayout{ChannelEntrySize: 0x10, SeekEntrySize: 0x04, HeaderAlign: 0x800, FrameSize: 0x800}
}

// LayoutVorbis is the block layout of Vorbis music streams.
func LayoutVorbis() BlockLayout {
	return BlockLayout{ChannelEntrySize: 0x18, SeekEntrySize: 0x04, HeaderAlign: 0x800, FrameSize: 0x800}
}

// LayoutATRAC9 is the block layout of ATRAC9 music streams; frame size comes from extra entries.
func LayoutATRAC9() BlockLayout {
	return BlockLayout{ChannelEntrySize: 0x10, ExtraEntrySize: 0x70}
}

// BlockConfig configures a multi-channel block deblocker for one channel.
type BlockConfig struct {
	// Layout describes the block header.
	Layout BlockLayout `json:"layout" yaml:"layout"`
	// StreamStart is offset of the first block.
	StreamStart int64 `json:"stream_start,omitempty" yaml:"stream_start,omitempty"`
	// StreamSize bounds the block area; zero means until end of inner.
	StreamSize int64 `json:"stream_size,omitempty" yaml:"stream_size,omitempty"`
	// BlockSize is fixed block size; zero derives it from the header rounded up to BlockAlign.
	BlockSize int64 `json:"block_size,omitempty" yaml:"block_size,omitempty"`
	// BlockAlign rounds derived block sizes; zero means 0x800.
	BlockAlign int64 `json:"block_align,omitempty" yaml:"block_align,omitempty"`
	// MaxRepeat bounds repeated data search at block starts; zero means 0x800.
	MaxRepeat int64 `json:"max_repeat,omitempty" yaml:"max_repeat,omitempty"`
	// RepeatStep is granularity of repeated data lengths; zero means the channel frame size.
	RepeatStep int64 `json:"repeat_step,omitempty" yaml:"repeat_step,omitempty"`
	// Channels is number of channels per block.
	Channels int `json:"channels" yaml:"channels"`
	// Channel selects the exposed channel.
	Channel int `json:"channel" yaml:"channel"`
	// BigEndian reads header fields as big-endian.
	BigEndian bool `json:"big_endian,omitempty" yaml:"big_endian,omitempty"`
}

// maxBlockChannels bounds header tables.
const maxBlockChannels = 32

// applyDefaults fills zero-valued block options with defaults.
func (cfg *BlockConfig) applyDefaults() {
	if cfg.Layout.ChannelEntrySize == 0 {
		cfg.Layout.ChannelEntrySize = 0x10
	}
	if cfg.BlockAlign <= 0 {
		cfg.BlockAlign = 0x800
	}
	if cfg.MaxRepeat <= 0 {
		cfg.MaxRepeat = 0x800
	}
}

// channelBlock is derived layout of one channel inside a block.
type channelBlock struct {
	frames    int64
	frameSize int64
	discard   int32
	start     int64
	size      int64
}

// NewBlockDeblocker exposes one channel of a multi-channel block stream.
// The deblocker owns inner.
func NewBlockDeblocker(inner Source, cfg BlockConfig) (*IOSource[DeblockState], error) {
	cfg.applyDefaults()
	if cfg.Channels <= 0 || cfg.Channels > maxBlockChannels || cfg.Channel < 0 || cfg.Channel >= cfg.Channels {
		return nil, fmt.Errorf("%w: channel %d of %d", ErrInvalidConfig, cfg.Channel, cfg.Channels)
	}
	if cfg.Layout.ChannelEntrySize < 0x08 {
		return nil, fmt.Errorf("%w: channel entry size 0x%x", ErrInvalidConfig, cfg.Layout.ChannelEntrySize)
	}

	block := func(inner Source, st *DeblockState) error {
		chans, headerEnd, err := readChannelBlocks(inner, st.PhysicalOffset, &cfg)
		if err != nil {
			return err
		}

		ch := chans[cfg.Channel]
		st.BlockSize = cfg.BlockSize
		if st.BlockSize <= 0 {
			st.BlockSize = alignUp(headerEnd, cfg.BlockAlign)
		}
		st.SkipSize = ch.start
		st.DataSize = ch.size

		if ch.discard != 0 && st.PrevDataSize > 0 && ch.size > 0 {
			step := cfg.RepeatStep
			if step <= 0 {
				step = ch.frameSize
			}

			repeat, err := findRepeat(inner, st.PrevDataEnd, st.PrevDataSize, st.PhysicalOffset+ch.start, ch.size, cfg.MaxRepeat, step)
			if err != nil {
				return err
			}
			if repeat == 0 {
				st.Logger().Debugf("block stream %s: block at 0x%x discards %d samples without repeated data",
					inner.Name(), st.PhysicalOffset, ch.discard)
			}

			st.SkipSize += repeat
			st.DataSize -= repeat
		}

		return nil
	}

	return NewDeblocker(inner, DeblockConfig{
		Block:       block,
		StreamStart: cfg.StreamStart,
		StreamSize:  cfg.StreamSize,
	})
}

// readChannelBlocks parses the block header at offset.
// It returns per-channel layout and block-relative end of the last channel payload.
func readChannelBlocks(inner Source, offset int64, cfg *BlockConfig) ([]channelBlock, int64, error) {
	layout := cfg.Layout
	ord := byteOrder(cfg.BigEndian)

	table := make([]byte, layout.ChannelEntrySize*int64(cfg.Channels))
	if err := readFixed(inner, table, offset); err != nil {
		return nil, 0, fmt.Errorf("channel table: %w", err)
	}

	chans := make([]channelBlock, cfg.Channels)
	pos := int64(len(table))
	for ch := range chans {
		entry := table[int64(ch)*layout.ChannelEntrySize:]
		frames := int32(ord.Uint32(entry[0x04:])) //nolint:gosec // signed field
		if frames < 0 {
			return nil, 0, fmt.Errorf("channel %d frame count %d", ch, frames)
		}

		chans[ch].frames = int64(frames)
		chans[ch].discard = int32(ord.Uint32(entry[0x08:])) //nolint:gosec // signed field
		pos += chans[ch].frames * layout.SeekEntrySize
	}

	for ch := range chans {
		frameSize := layout.FrameSize
		if frameSize <= 0 {
			v, err := ReadU16(inner, offset+pos+0x04, cfg.BigEndian)
			if err != nil {
				return nil, 0, fmt.Errorf("channel %d frame size: %w", ch, err)
			}

			frameSize = int64(v)
		}

		chans[ch].frameSize = frameSize
		chans[ch].size = chans[ch].frames * frameSize
		pos += layout.ExtraEntrySize
	}

	if layout.HeaderAlign > 0 {
		pos = alignUp(pos, layout.HeaderAlign)
	}

	for ch := range chans {
		chans[ch].start = pos
		pos += chans[ch].size
	}

	return chans, pos, nil
}

// findRepeat returns length of the longest tail of the previous payload,
// ending at prevEnd, that reappears at the head of the current payload at curStart.
// Only whole multiples of step are matched.
func findRepeat(inner Source, prevEnd, prevSize, curStart, curSize, maxRepeat, step int64) (int64, error) {
	if step <= 0 {
		return 0, nil
	}

	window := min(maxRepeat, prevSize, curSize)
	window -= window % step
	if window <= 0 {
		return 0, nil
	}

	tail := make([]byte, window)
	head := make([]byte, window)
	if err := readFixed(inner, tail, prevEnd-window); err != nil {
		return 0, fmt.Errorf("previous payload tail: %w", err)
	}
	if err := readFixed(inner, head, curStart); err != nil {
		return 0, fmt.Errorf("payload head: %w", err)
	}

	for r := window; r > 0; r -= step {
		if bytes.Equal(tail[window-r:], head[:r]) {
			return r, nil
		}
	}

	return 0, nil
}

// alignUp rounds v up to a multiple of align.
func alignUp(v, align int64) int64 {
	if align <= 1 {
		return v
	}
	if rem := v % align; rem != 0 {
		return v + align - rem
	}

	return v
}
