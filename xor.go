// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import "fmt"

// XORConfig configures a position-keyed XOR decryptor.
type XORConfig struct {
	// Key is applied cyclically by absolute logical offset.
	Key []byte `json:"key" yaml:"key"`
	// Start is first encrypted offset; earlier bytes pass through.
	Start int64 `json:"start,omitempty" yaml:"start,omitempty"`
	// Size is encrypted byte count; zero means until end.
	Size int64 `json:"size,omitempty" yaml:"size,omitempty"`
}

// XORBytes applies key to p in place, where p holds bytes at offset off.
// The operation is its own inverse.
func XORBytes(p []byte, off int64, key []byte) {
	if len(key) == 0 {
		return
	}

	k := int(off % int64(len(key)))
	for i := range p {
		p[i] ^= key[k]
		k++
		if k == len(key) {
			k = 0
		}
	}
}

// NewXORDecryptor exposes inner with every byte at offset k XORed with key[k%len(key)].
// The adapter owns inner.
func NewXORDecryptor(inner Source, key []byte) (*IOSource[XORConfig], error) {
	return NewXORRegion(inner, XORConfig{Key: key})
}

// NewXORRegion exposes inner with XOR applied only inside the configured region.
// The adapter owns inner.
func NewXORRegion(inner Source, cfg XORConfig) (*IOSource[XORConfig], error) {
	if len(cfg.Key) == 0 {
		return nil, fmt.Errorf("%w: empty xor key", ErrInvalidKey)
	}
	if cfg.Start < 0 || cfg.Size < 0 {
		return nil, fmt.Errorf("%w: xor region 0x%x+0x%x", ErrInvalidRange, cfg.Start, cfg.Size)
	}

	cfg.Key = append([]byte(nil), cfg.Key...)
	return NewIO(inner, cfg, IOFuncs[XORConfig]{Read: xorRead})
}

func xorRead(inner Source, p []byte, off int64, cfg *XORConfig) (int, error) {
	n, err := inner.ReadAt(p, off)

	lo := max(off, cfg.Start)
	hi := off + int64(n)
	if cfg.Size > 0 {
		hi = min(hi, cfg.Start+cfg.Size)
	}
	if lo < hi {
		XORBytes(p[lo-off:hi-off], lo, cfg.Key)
	}

	return n, err
}
