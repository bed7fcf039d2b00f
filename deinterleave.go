// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"fmt"
	"io"
)

// InterleaveConfig configures fixed-segment deinterleaving of one channel.
type InterleaveConfig struct {
	// StreamStart is offset of the first segment of channel 0.
	StreamStart int64 `json:"stream_start,omitempty" yaml:"stream_start,omitempty"`
	// Interleave is segment size of one channel.
	Interleave int64 `json:"interleave" yaml:"interleave"`
	// Stride is distance between segments of one channel; zero means Channels*Interleave.
	Stride int64 `json:"stride,omitempty" yaml:"stride,omitempty"`
	// Size is logical channel size; zero derives it from inner size.
	Size int64 `json:"size,omitempty" yaml:"size,omitempty"`
	// Channels is number of interleaved channels.
	Channels int `json:"channels" yaml:"channels"`
	// Channel selects the exposed channel.
	Channel int `json:"channel" yaml:"channel"`
}

// NewDeinterleaver exposes one channel of a fixed-segment interleaved stream.
// Offsets map back to inner offsets directly, so reads never restart.
// The adapter owns inner.
func NewDeinterleaver(inner Source, cfg InterleaveConfig) (*IOSource[InterleaveConfig], error) {
	if inner == nil {
		return nil, ErrNilSource
	}
	if cfg.Interleave <= 0 || cfg.Channels <= 0 || cfg.Channel < 0 || cfg.Channel >= cfg.Channels || cfg.StreamStart < 0 {
		return nil, fmt.Errorf("%w: interleave 0x%x, channel %d of %d", ErrInvalidConfig, cfg.Interleave, cfg.Channel, cfg.Channels)
	}
	if cfg.Stride == 0 {
		cfg.Stride = cfg.Interleave * int64(cfg.Channels)
	}
	if cfg.Stride < cfg.Interleave {
		return nil, fmt.Errorf("%w: stride 0x%x below interleave 0x%x", ErrInvalidConfig, cfg.Stride, cfg.Interleave)
	}

	derived := deinterleavedSize(inner.Size(), &cfg)
	if cfg.Size <= 0 {
		cfg.Size = derived
	}
	if cfg.Size > derived {
		return nil, fmt.Errorf("%w: channel size 0x%x exceeds available 0x%x", ErrInvalidRange, cfg.Size, derived)
	}

	return NewIO(inner, cfg, IOFuncs[InterleaveConfig]{
		Read: deinterleaveRead,
		Size: func(_ Source, cfg *InterleaveConfig) int64 { return cfg.Size },
	})
}

// physical maps logical offset off to inner offset.
func (cfg *InterleaveConfig) physical(off int64) int64 {
	return cfg.StreamStart + (off/cfg.Interleave)*cfg.Stride + int64(cfg.Channel)*cfg.Interleave + off%cfg.Interleave
}

// deinterleavedSize returns bytes available for the configured channel.
func deinterleavedSize(total int64, cfg *InterleaveConfig) int64 {
	avail := total - cfg.StreamStart - int64(cfg.Channel)*cfg.Interleave
	if avail <= 0 {
		return 0
	}

	return (avail/cfg.Stride)*cfg.Interleave + min(avail%cfg.Stride, cfg.Interleave)
}

func deinterleaveRead(inner Source, p []byte, off int64, cfg *InterleaveConfig) (int, error) {
	done := 0
	for done < len(p) {
		want := cfg.Interleave - off%cfg.Interleave
		if rest := int64(len(p) - done); want > rest {
			want = rest
		}

		n, err := inner.ReadAt(p[done:done+int(want)], cfg.physical(off))
		done += n
		off += int64(n)
		if int64(n) != want {
			if err == nil {
				err = io.EOF
			}

			return done, err
		}
	}

	return done, nil
}
