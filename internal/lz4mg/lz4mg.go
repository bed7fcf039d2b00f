// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

// Package lz4mg implements a resumable decoder of the LZ4 block format.
//
// The decoder works as a state machine over a circular 64 KiB window, so
// input and output may be supplied in pieces of any size. The block format
// has no end marker; callers stop once the expected output size is decoded.
package lz4mg

import "errors"

// Format constants.
const (
	// WindowSize is the match window size.
	WindowSize = 1 << 16

	windowBytes    = 2
	minMatchLen    = 4
	varlenMark     = 15
	varlenContinue = 255
)

// ErrCorrupt means a sequence refers outside of the decoded window.
var ErrCorrupt = errors.New("lz4mg: corrupt sequence")

type state uint8

const (
	readToken state = iota
	readLiteral
	copyLiteral
	readOffset
	readMatch
	setMatch
	copyMatch
)

// Decoder holds decoding state between calls. The zero value is ready to use.
type Decoder struct {
	window     [WindowSize]byte
	literalLen int
	offsetCur  int
	offset     int
	matchLen   int
	matchPos   int
	windowPos  int
	state      state
	token      byte
}

// Reset discards all state, including the window.
func (d *Decoder) Reset() {
	*d = Decoder{}
}

// push appends one decoded byte to the window.
func (d *Decoder) push(b byte) {
	d.window[d.windowPos] = b
	d.windowPos++
	if d.windowPos == WindowSize {
		d.windowPos = 0
	}
}

// Decompress decodes from src into dst until src is exhausted or dst is full.
// It returns number of bytes written to dst and consumed from src.
// Decoding resumes from the same point on the next call.
func (d *Decoder) Decompress(dst, src []byte) (int, int, error) {
	dstPos, srcPos := 0, 0

	for {
		switch d.state {
		case readToken:
			if srcPos >= len(src) {
				return dstPos, srcPos, nil
			}

			d.token = src[srcPos]
			srcPos++
			d.literalLen = int(d.token >> 4)
			if d.literalLen == varlenMark {
				d.state = readLiteral
			} else {
				d.state = copyLiteral
			}

		case readLiteral:
			for {
				if srcPos >= len(src) {
					return dstPos, srcPos, nil
				}

				next := src[srcPos]
				srcPos++
				d.literalLen += int(next)
				if next != varlenContinue {
					break
				}
			}

			d.state = copyLiteral

		case copyLiteral:
			for d.literalLen > 0 {
				if srcPos >= len(src) || dstPos >= len(dst) {
					return dstPos, srcPos, nil
				}

				b := src[srcPos]
				srcPos++
				dst[dstPos] = b
				dstPos++
				d.push(b)
				d.literalLen--
			}

			// a stream ends here, after the last literals
			d.offsetCur = 0
			d.offset = 0
			d.state = readOffset

		case readOffset:
			for d.offsetCur < windowBytes {
				if srcPos >= len(src) {
					return dstPos, srcPos, nil
				}

				d.offset |= int(src[srcPos]) << (d.offsetCur * 8)
				srcPos++
				d.offsetCur++
			}

			if d.offset == 0 {
				return dstPos, srcPos, ErrCorrupt
			}

			d.matchLen = int(d.token & 0x0f)
			if d.matchLen == varlenMark {
				d.state = readMatch
			} else {
				d.state = setMatch
			}

		case readMatch:
			for {
				if srcPos >= len(src) {
					return dstPos, srcPos, nil
				}

				next := src[srcPos]
				srcPos++
				d.matchLen += int(next)
				if next != varlenContinue {
					break
				}
			}

			d.state = setMatch

		case setMatch:
			d.matchLen += minMatchLen
			d.matchPos = d.windowPos - d.offset
			if d.matchPos < 0 {
				d.matchPos += WindowSize
			}

			d.state = copyMatch

		case copyMatch:
			for d.matchLen > 0 {
				if dstPos >= len(dst) {
					return dstPos, srcPos, nil
				}

				b := d.window[d.matchPos]
				d.matchPos++
				if d.matchPos == WindowSize {
					d.matchPos = 0
				}

				dst[dstPos] = b
				dstPos++
				d.push(b)
				d.matchLen--
			}

			d.state = readToken

		default:
			return dstPos, srcPos, ErrCorrupt
		}
	}
}
