// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import "fmt"

// chainSkipChunk is the unit of discarded reads when a chain cipher seeks forward.
const chainSkipChunk = 0x1000

// ChainKey holds the sub-keys of a chained XOR cipher.
type ChainKey struct {
	// Start is the initial 15-bit key state.
	Start uint16 `json:"start" yaml:"start"`
	// Mult is the odd state multiplier.
	Mult uint16 `json:"mult" yaml:"mult"`
	// Add is the odd state increment.
	Add uint16 `json:"add" yaml:"add"`
}

// DeriveChainKey splits a 64-bit key code into chain cipher sub-keys.
// The code is decremented first, wrapping at zero.
func DeriveChainKey(keycode uint64) ChainKey {
	keycode--

	return ChainKey{
		Start: uint16((keycode >> 27) & 0x7fff),       //nolint:gosec // masked to 15 bits
		Mult:  uint16(((keycode >> 12) & 0x7ffc) | 1), //nolint:gosec // masked to 15 bits
		Add:   uint16(((keycode << 1) & 0x7fff) | 1),  //nolint:gosec // masked to 15 bits
	}
}

// next advances key state k after plaintext byte plain.
func (key ChainKey) next(k uint16, plain byte) uint16 {
	return (k*key.Mult + key.Add + uint16(plain)) & 0x7fff
}

// ChainEncrypt encrypts p in place from the start of the stream.
func ChainEncrypt(key ChainKey, p []byte) {
	k := key.Start
	for i, plain := range p {
		p[i] = plain ^ byte(k)
		k = key.next(k, plain)
	}
}

// ChainDecrypt decrypts p in place from the start of the stream.
func ChainDecrypt(key ChainKey, p []byte) {
	chainDecrypt(key, key.Start, p)
}

// chainDecrypt decrypts p starting at key state k and returns the following state.
func chainDecrypt(key ChainKey, k uint16, p []byte) uint16 {
	for i, c := range p {
		plain := c ^ byte(k)
		p[i] = plain
		k = key.next(k, plain)
	}

	return k
}

// ChainConfig configures a chained XOR decryptor.
type ChainConfig struct {
	// Key holds derived sub-keys.
	Key ChainKey `json:"key" yaml:"key"`
	// Start is first encrypted offset; earlier bytes pass through.
	Start int64 `json:"start,omitempty" yaml:"start,omitempty"`
}

// ChainState is the key position of a chained decryptor.
type ChainState struct {
	cfg ChainConfig
	// pos is region offset of the next byte the state k decrypts.
	pos int64
	k   uint16
}

// NewChainDecryptor exposes inner decrypted with a chained XOR cipher whose
// key state depends on every previous plaintext byte. Forward reads decrypt
// and discard the gap; backward reads restart from the region start.
// The adapter owns inner.
func NewChainDecryptor(inner Source, cfg ChainConfig) (*IOSource[ChainState], error) {
	if cfg.Key.Mult&1 == 0 || cfg.Key.Add&1 == 0 {
		return nil, fmt.Errorf("%w: chain multiplier and increment must be odd", ErrInvalidKey)
	}
	if cfg.Start < 0 {
		return nil, fmt.Errorf("%w: chain start 0x%x", ErrInvalidRange, cfg.Start)
	}

	return NewIO(inner, ChainState{cfg: cfg, k: cfg.Key.Start}, IOFuncs[ChainState]{Read: chainRead})
}

// seek advances key state to region offset rel.
func (st *ChainState) seek(inner Source, rel int64) error {
	if rel < st.pos {
		loggerOf(inner).Debugf("chain cipher %s: restart for 0x%x, current 0x%x", inner.Name(), rel, st.pos)
		st.pos = 0
		st.k = st.cfg.Key.Start
	}

	var scratch [chainSkipChunk]byte
	for st.pos < rel {
		want := min(rel-st.pos, chainSkipChunk)
		n, err := inner.ReadAt(scratch[:want], st.cfg.Start+st.pos)
		st.k = chainDecrypt(st.cfg.Key, st.k, scratch[:n])
		st.pos += int64(n)
		if int64(n) != want {
			return eofOr(err)
		}
	}

	return nil
}

func chainRead(inner Source, p []byte, off int64, st *ChainState) (int, error) {
	done := 0
	if off < st.cfg.Start {
		want := min(int64(len(p)), st.cfg.Start-off)
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

	if err := st.seek(inner, off-st.cfg.Start); err != nil {
		return done, err
	}

	n, err := inner.ReadAt(p[done:], off)
	st.k = chainDecrypt(st.cfg.Key, st.k, p[done:done+n])
	st.pos += int64(n)
	return done + n, err
}
