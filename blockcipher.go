// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/blowfish"
	"golang.org/x/crypto/xtea"
)

// defaultCipherCache is size of the decrypted window kept between reads.
const defaultCipherCache = 0x800

// BlockCipherConfig configures an ECB block decryptor.
type BlockCipherConfig struct {
	// Cipher decrypts single blocks. Required.
	Cipher cipher.Block `json:"-" yaml:"-"`
	// Start is first encrypted offset; earlier bytes pass through.
	Start int64 `json:"start,omitempty" yaml:"start,omitempty"`
	// Size is encrypted byte count; zero means until end of inner.
	// A trailing partial block is stored in plain form.
	Size int64 `json:"size,omitempty" yaml:"size,omitempty"`
	// CacheSize is decrypted window size, rounded down to whole blocks; zero means 0x800.
	CacheSize int `json:"cache_size,omitempty" yaml:"cache_size,omitempty"`
}

// BlockCipherState caches the last decrypted window.
type BlockCipherState struct {
	cfg   BlockCipherConfig
	cache []byte
	// cacheStart is region offset of cache[0]; negative means empty.
	cacheStart int64
	cacheLen   int
	end        int64
}

// NewBlockDecryptor exposes inner with the configured region decrypted block by block.
// The adapter owns inner.
func NewBlockDecryptor(inner Source, cfg BlockCipherConfig) (*IOSource[BlockCipherState], error) {
	if inner == nil {
		return nil, ErrNilSource
	}
	if cfg.Cipher == nil {
		return nil, fmt.Errorf("%w: block cipher is required", ErrInvalidKey)
	}

	total := inner.Size()
	if cfg.Start < 0 || cfg.Start > total || cfg.Size < 0 {
		return nil, fmt.Errorf("%w: cipher region 0x%x+0x%x over 0x%x", ErrInvalidRange, cfg.Start, cfg.Size, total)
	}

	bs := cfg.Cipher.BlockSize()
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCipherCache
	}
	cfg.CacheSize -= cfg.CacheSize % bs
	if cfg.CacheSize == 0 {
		cfg.CacheSize = bs
	}

	end := total
	if cfg.Size > 0 && cfg.Start+cfg.Size < total {
		end = cfg.Start + cfg.Size
	}

	return NewIO(inner, BlockCipherState{cfg: cfg, end: end}, IOFuncs[BlockCipherState]{
		Read: blockCipherRead,
		Init: func(_ Source, st *BlockCipherState) error {
			st.cache = make([]byte, st.cfg.CacheSize)
			st.cacheStart = -1
			st.cacheLen = 0
			return nil
		},
		Close: func(st *BlockCipherState) { st.cache = nil },
	})
}

// NewBlowfishDecryptor exposes inner with [start, start+size) decrypted with Blowfish in ECB mode.
func NewBlowfishDecryptor(inner Source, key []byte, start, size int64) (*IOSource[BlockCipherState], error) {
	c, err := blowfish.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: blowfish: %w", ErrInvalidKey, err)
	}

	return NewBlockDecryptor(inner, BlockCipherConfig{Cipher: c, Start: start, Size: size})
}

// NewXTEADecryptor exposes inner with [start, start+size) decrypted with XTEA in ECB mode.
func NewXTEADecryptor(inner Source, key []byte, start, size int64) (*IOSource[BlockCipherState], error) {
	c, err := xtea.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: xtea: %w", ErrInvalidKey, err)
	}

	return NewBlockDecryptor(inner, BlockCipherConfig{Cipher: c, Start: start, Size: size})
}

// load decrypts the aligned window containing region offset rel.
func (st *BlockCipherState) load(inner Source, rel int64) error {
	capacity := int64(len(st.cache))
	start := rel - rel%capacity
	want := min(capacity, st.end-st.cfg.Start-start)

	n, err := inner.ReadAt(st.cache[:want], st.cfg.Start+start)
	st.cacheStart = start
	st.cacheLen = n
	if int64(n) != want {
		st.cacheLen = 0
		return eofOr(err)
	}

	bs := st.cfg.Cipher.BlockSize()
	whole := n - n%bs
	for i := 0; i < whole; i += bs {
		st.cfg.Cipher.Decrypt(st.cache[i:i+bs], st.cache[i:i+bs])
	}

	return nil
}

func blockCipherRead(inner Source, p []byte, off int64, st *BlockCipherState) (int, error) {
	done := 0
	if off < st.cfg.Start || off >= st.end {
		// plain bytes before and after the region
		limit := int64(len(p))
		if off < st.cfg.Start {
			limit = min(limit, st.cfg.Start-off)
		}

		n, err := inner.ReadAt(p[:limit], off)
		done += n
		off += int64(n)
		if int64(n) != limit || done == len(p) {
			return done, err
		}
	}

	for done < len(p) && off < st.end {
		rel := off - st.cfg.Start
		if st.cacheLen == 0 || rel < st.cacheStart || rel >= st.cacheStart+int64(st.cacheLen) {
			if err := st.load(inner, rel); err != nil {
				return done, err
			}
		}

		n := copy(p[done:], st.cache[rel-st.cacheStart:st.cacheLen])
		done += n
		off += int64(n)
	}

	if done < len(p) {
		n, err := inner.ReadAt(p[done:], off)
		return done + n, err
	}

	return done, nil
}
