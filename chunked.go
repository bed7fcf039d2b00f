// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"errors"
	"fmt"
	"io"
	"slices"
)

// BlockID is a four-character block identifier.
type BlockID [4]byte

// MakeBlockID builds an id from up to four characters, padding with zero bytes.
func MakeBlockID(s string) BlockID {
	var id BlockID
	copy(id[:], s)
	return id
}

// String returns id characters with zero padding removed.
func (id BlockID) String() string {
	end := len(id)
	for end > 0 && id[end-1] == 0 {
		end--
	}

	return string(id[:end])
}

// ChunkCodec selects per-block payload overhead of a chunked audio stream.
type ChunkCodec int

// Chunked stream codecs.
const (
	// ChunkCodecPCM blocks carry payload right after id and size.
	ChunkCodecPCM ChunkCodec = iota
	// ChunkCodecSampled blocks carry a 32-bit sample count before payload.
	ChunkCodecSampled
	// ChunkCodecChannelOffsets blocks carry a sample count and one 32-bit offset per channel.
	ChunkCodecChannelOffsets
)

// chunkOverhead is header size of a data block: base plus perChannel for every channel.
type chunkOverhead struct {
	base       int64
	perChannel int64
}

// chunkOverheads is indexed by ChunkCodec.
var chunkOverheads = [...]chunkOverhead{
	ChunkCodecPCM:            {base: 0x08},
	ChunkCodecSampled:        {base: 0x0c},
	ChunkCodecChannelOffsets: {base: 0x0c, perChannel: 0x04},
}

// Default block ids of chunked audio streams.
var (
	defaultChunkDataIDs   = []BlockID{MakeBlockID("DATA"), MakeBlockID("SCDl")}
	defaultChunkHeaderIDs = []BlockID{MakeBlockID("HEAD"), MakeBlockID("SCHl"), MakeBlockID("SCCl"), MakeBlockID("SCLl")}
	defaultChunkEndIDs    = []BlockID{MakeBlockID("END"), MakeBlockID("END "), MakeBlockID("SCEl")}
)

// ChunkConfig configures a chunked audio stream deblocker.
//
// Every block starts with a 4-byte id and a 4-byte size that includes those
// eight bytes. Header blocks are skipped, data blocks yield payload after the
// codec overhead, end blocks and unknown ids stop the stream.
type ChunkConfig struct {
	// DataIDs are ids of payload blocks; nil uses DATA and SCDl.
	DataIDs []BlockID `json:"-" yaml:"-"`
	// HeaderIDs are ids of header-only blocks; nil uses HEAD, SCHl, SCCl and SCLl.
	HeaderIDs []BlockID `json:"-" yaml:"-"`
	// EndIDs are ids that end the stream; nil uses "END\x00", "END " and SCEl.
	EndIDs []BlockID `json:"-" yaml:"-"`
	// StreamStart is offset of the first block.
	StreamStart int64 `json:"stream_start,omitempty" yaml:"stream_start,omitempty"`
	// StreamSize bounds the block area; zero means until end of inner.
	StreamSize int64 `json:"stream_size,omitempty" yaml:"stream_size,omitempty"`
	// Codec selects data block overhead.
	Codec ChunkCodec `json:"codec,omitempty" yaml:"codec,omitempty"`
	// Channels is channel count used by per-channel overheads.
	Channels int `json:"channels,omitempty" yaml:"channels,omitempty"`
	// BigEndian reads block sizes as big-endian.
	BigEndian bool `json:"big_endian,omitempty" yaml:"big_endian,omitempty"`
}

// applyDefaults fills zero-valued chunk options with defaults.
func (cfg *ChunkConfig) applyDefaults() {
	if cfg.DataIDs == nil {
		cfg.DataIDs = defaultChunkDataIDs
	}
	if cfg.HeaderIDs == nil {
		cfg.HeaderIDs = defaultChunkHeaderIDs
	}
	if cfg.EndIDs == nil {
		cfg.EndIDs = defaultChunkEndIDs
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
}

// overhead returns data block header size.
func (cfg *ChunkConfig) overhead() (int64, error) {
	if cfg.Codec < 0 || int(cfg.Codec) >= len(chunkOverheads) {
		return 0, fmt.Errorf("%w: unknown chunk codec %d", ErrInvalidConfig, cfg.Codec)
	}

	o := chunkOverheads[cfg.Codec]
	return o.base + o.perChannel*int64(cfg.Channels), nil
}

// NewChunkDeblocker exposes payload of a chunked audio stream. The deblocker owns inner.
func NewChunkDeblocker(inner Source, cfg ChunkConfig) (*IOSource[DeblockState], error) {
	cfg.applyDefaults()

	overhead, err := cfg.overhead()
	if err != nil {
		return nil, err
	}

	block := func(inner Source, st *DeblockState) error {
		var head [8]byte
		if err := readFixed(inner, head[:], st.PhysicalOffset); err != nil {
			// fewer than eight bytes left is a clean end
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return ErrEndOfBlocks
			}

			return err
		}

		id := BlockID(head[0:4])
		size := int64(byteOrder(cfg.BigEndian).Uint32(head[4:8]))

		switch {
		case slices.Contains(cfg.EndIDs, id):
			return ErrEndOfBlocks
		case slices.Contains(cfg.HeaderIDs, id):
			if size < 8 {
				return fmt.Errorf("header block %q size 0x%x", id, size)
			}

			st.BlockSize = size
			st.SkipSize = size
			return nil
		case slices.Contains(cfg.DataIDs, id):
			if size < overhead {
				return fmt.Errorf("data block %q size 0x%x below overhead 0x%x", id, size, overhead)
			}

			st.BlockSize = size
			st.SkipSize = overhead
			st.DataSize = size - overhead
			if end := st.StreamEnd(); st.PhysicalOffset+size > end {
				st.DataSize = max(end-st.PhysicalOffset-overhead, 0)
				st.Logger().Warnf("chunked stream %s: block at 0x%x size 0x%x truncated to 0x%x payload bytes",
					inner.Name(), st.PhysicalOffset, size, st.DataSize)
			}

			return nil
		default:
			return fmt.Errorf("unknown block id %q", id)
		}
	}

	return NewDeblocker(inner, DeblockConfig{
		Block:       block,
		StreamStart: cfg.StreamStart,
		StreamSize:  cfg.StreamSize,
	})
}
