// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// readFixed reads exactly len(p) bytes at off.
func readFixed(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}

	return fmt.Errorf("read %d bytes at 0x%x: %w", len(p), off, err)
}

// byteOrder maps a big-endian flag to binary.ByteOrder.
func byteOrder(bigEndian bool) binary.ByteOrder {
	if bigEndian {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// ReadU8 reads an unsigned byte at off.
func ReadU8(r io.ReaderAt, off int64) (uint8, error) {
	var b [1]byte
	if err := readFixed(r, b[:], off); err != nil {
		return 0, err
	}

	return b[0], nil
}

// ReadS8 reads a signed byte at off.
func ReadS8(r io.ReaderAt, off int64) (int8, error) {
	v, err := ReadU8(r, off)
	return int8(v), err //nolint:gosec // two's complement reinterpretation
}

// ReadU16 reads a 16-bit value at off in the given byte order.
func ReadU16(r io.ReaderAt, off int64, bigEndian bool) (uint16, error) {
	var b [2]byte
	if err := readFixed(r, b[:], off); err != nil {
		return 0, err
	}

	return byteOrder(bigEndian).Uint16(b[:]), nil
}

// ReadU24 reads a 24-bit value at off in the given byte order.
func ReadU24(r io.ReaderAt, off int64, bigEndian bool) (uint32, error) {
	var b [3]byte
	if err := readFixed(r, b[:], off); err != nil {
		return 0, err
	}

	if bigEndian {
		return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
	}

	return uint32(b[2])<<16 | uint32(b[1])<<8 | uint32(b[0]), nil
}

// ReadU32 reads a 32-bit value at off in the given byte order.
func ReadU32(r io.ReaderAt, off int64, bigEndian bool) (uint32, error) {
	var b [4]byte
	if err := readFixed(r, b[:], off); err != nil {
		return 0, err
	}

	return byteOrder(bigEndian).Uint32(b[:]), nil
}

// ReadU64 reads a 64-bit value at off in the given byte order.
func ReadU64(r io.ReaderAt, off int64, bigEndian bool) (uint64, error) {
	var b [8]byte
	if err := readFixed(r, b[:], off); err != nil {
		return 0, err
	}

	return byteOrder(bigEndian).Uint64(b[:]), nil
}

// ReadS16 reads a signed 16-bit value at off.
func ReadS16(r io.ReaderAt, off int64, bigEndian bool) (int16, error) {
	v, err := ReadU16(r, off, bigEndian)
	return int16(v), err //nolint:gosec // two's complement reinterpretation
}

// ReadS32 reads a signed 32-bit value at off.
func ReadS32(r io.ReaderAt, off int64, bigEndian bool) (int32, error) {
	v, err := ReadU32(r, off, bigEndian)
	return int32(v), err //nolint:gosec // two's complement reinterpretation
}

// ReadS64 reads a signed 64-bit value at off.
func ReadS64(r io.ReaderAt, off int64, bigEndian bool) (int64, error) {
	v, err := ReadU64(r, off, bigEndian)
	return int64(v), err //nolint:gosec // two's complement reinterpretation
}

// ReadF32 reads an IEEE-754 single at off.
func ReadF32(r io.ReaderAt, off int64, bigEndian bool) (float32, error) {
	v, err := ReadU32(r, off, bigEndian)
	return math.Float32frombits(v), err
}

// ReadF64 reads an IEEE-754 double at off.
func ReadF64(r io.ReaderAt, off int64, bigEndian bool) (float64, error) {
	v, err := ReadU64(r, off, bigEndian)
	return math.Float64frombits(v), err
}

// Convenience shorthands for the common fixed orders.

// ReadU16LE reads a little-endian 16-bit value at off.
func ReadU16LE(r io.ReaderAt, off int64) (uint16, error) { return ReadU16(r, off, false) }

// ReadU16BE reads a big-endian 16-bit value at off.
func ReadU16BE(r io.ReaderAt, off int64) (uint16, error) { return ReadU16(r, off, true) }

// ReadU32LE reads a little-endian 32-bit value at off.
func ReadU32LE(r io.ReaderAt, off int64) (uint32, error) { return ReadU32(r, off, false) }

// ReadU32BE reads a big-endian 32-bit value at off.
func ReadU32BE(r io.ReaderAt, off int64) (uint32, error) { return ReadU32(r, off, true) }

// ReadU64LE reads a little-endian 64-bit value at off.
func ReadU64LE(r io.ReaderAt, off int64) (uint64, error) { return ReadU64(r, off, false) }

// ReadU64BE reads a big-endian 64-bit value at off.
func ReadU64BE(r io.ReaderAt, off int64) (uint64, error) { return ReadU64(r, off, true) }

// GuessBigEndian32 reports whether the 32-bit field at off is more plausible
// as big-endian. Header fields such as sizes and counts are small numbers,
// so the interpretation giving the smaller value wins; ties pick little-endian.
func GuessBigEndian32(r io.ReaderAt, off int64) (bool, error) {
	var b [4]byte
	if err := readFixed(r, b[:], off); err != nil {
		return false, err
	}

	return binary.BigEndian.Uint32(b[:]) < binary.LittleEndian.Uint32(b[:]), nil
}
