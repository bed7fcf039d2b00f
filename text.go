// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
)

// readUpTo reads at most n bytes at off; a short read at end of data is not an error.
func readUpTo(r io.ReaderAt, off int64, n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}

	buf := make([]byte, n)
	got, err := r.ReadAt(buf, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if got == 0 {
		return nil, io.ErrUnexpectedEOF
	}

	return buf[:got], nil
}

// textByte reports whether b may appear in a header string.
// Besides ASCII, a range of Windows-1252 codes used by some games is accepted.
func textByte(b byte) bool {
	return b >= 0x20 && b <= 0xF0
}

// ReadString reads a zero-terminated string of at most maxSize bytes at off.
// A string that fills maxSize without terminator is returned as is.
func ReadString(r io.ReaderAt, off int64, maxSize int) (string, error) {
	raw, err := readUpTo(r, off, maxSize)
	if err != nil {
		return "", fmt.Errorf("read string at 0x%x: %w", off, err)
	}

	end := bytes.IndexByte(raw, 0)
	switch {
	case end >= 0:
		raw = raw[:end]
	case len(raw) < maxSize:
		return "", fmt.Errorf("read string at 0x%x: %w", off, io.ErrUnexpectedEOF)
	}

	for i, b := range raw {
		if !textByte(b) {
			return "", fmt.Errorf("%w: byte 0x%02x at 0x%x", ErrInvalidString, b, off+int64(i))
		}
	}

	return string(raw), nil
}

// ReadStringSize reads a fixed-size string field of size bytes at off.
// Bytes after the first zero are ignored.
func ReadStringSize(r io.ReaderAt, off int64, size int) (string, error) {
	raw := make([]byte, size)
	if err := readFixed(r, raw, off); err != nil {
		return "", fmt.Errorf("read string at 0x%x: %w", off, err)
	}
	if end := bytes.IndexByte(raw, 0); end >= 0 {
		raw = raw[:end]
	}

	for i, b := range raw {
		if !textByte(b) {
			return "", fmt.Errorf("%w: byte 0x%02x at 0x%x", ErrInvalidString, b, off+int64(i))
		}
	}

	return string(raw), nil
}

// ReadStringUTF16 reads a zero-terminated UTF-16 string of at most maxChars
// code units at off and returns it as UTF-8.
func ReadStringUTF16(r io.ReaderAt, off int64, maxChars int, bigEndian bool) (string, error) {
	raw, err := readUpTo(r, off, maxChars*2)
	if err != nil {
		return "", fmt.Errorf("read utf-16 string at 0x%x: %w", off, err)
	}
	raw = raw[:len(raw)&^1]

	terminated := false
	for i := 0; i < len(raw); i += 2 {
		if raw[i] == 0 && raw[i+1] == 0 {
			raw = raw[:i]
			terminated = true
			break
		}
	}
	if !terminated && len(raw) < maxChars*2 {
		return "", fmt.Errorf("read utf-16 string at 0x%x: %w", off, io.ErrUnexpectedEOF)
	}

	order := unicode.LittleEndian
	if bigEndian {
		order = unicode.BigEndian
	}

	out, err := unicode.UTF16(order, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: decode utf-16 at 0x%x: %w", ErrInvalidString, off, err)
	}
	for _, b := range out {
		if b < 0x20 {
			return "", fmt.Errorf("%w: control character 0x%02x at 0x%x", ErrInvalidString, b, off)
		}
	}

	return string(out), nil
}

// ReadStringUTF16LE reads a zero-terminated little-endian UTF-16 string.
func ReadStringUTF16LE(r io.ReaderAt, off int64, maxChars int) (string, error) {
	return ReadStringUTF16(r, off, maxChars, false)
}

// ReadStringUTF16BE reads a zero-terminated big-endian UTF-16 string.
func ReadStringUTF16BE(r io.ReaderAt, off int64, maxChars int) (string, error) {
	return ReadStringUTF16(r, off, maxChars, true)
}

// ReadBOM returns size of the byte order mark at the start of sf, or zero.
func ReadBOM(sf Source) int64 {
	var head [3]byte
	n, _ := sf.ReadAt(head[:], 0)

	switch {
	case n >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF:
		return 3
	case n >= 2 && (head[0] == 0xFF && head[1] == 0xFE || head[0] == 0xFE && head[1] == 0xFF):
		return 2
	default:
		return 0
	}
}

// TextReader splits a region of a source into lines ended by LF, CRLF or CR.
type TextReader struct {
	sc     *bufio.Scanner
	offset int64
	next   int64
}

// NewTextReader reads lines of sf from offset up to maxOffset; zero maxOffset
// means end of sf. Lines longer than bufSize bytes fail with bufio.ErrTooLong.
func NewTextReader(sf Source, offset, maxOffset int64, bufSize int) (*TextReader, error) {
	if sf == nil {
		return nil, ErrNilSource
	}
	if maxOffset <= 0 || maxOffset > sf.Size() {
		maxOffset = sf.Size()
	}
	if offset < 0 || offset > maxOffset {
		return nil, fmt.Errorf("%w: text at 0x%x over 0x%x in %s", ErrInvalidRange, offset, maxOffset, sf.Name())
	}
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	tr := &TextReader{offset: offset, next: offset}
	tr.sc = bufio.NewScanner(io.NewSectionReader(sf, offset, maxOffset-offset))
	tr.sc.Buffer(make([]byte, 0, min(bufSize, 4096)), bufSize)
	tr.sc.Split(tr.split)
	return tr, nil
}

// split cuts one line and records the offset after its terminator.
func (tr *TextReader) split(data []byte, atEOF bool) (int, []byte, error) {
	if len(data) == 0 {
		return 0, nil, nil
	}

	i := bytes.IndexAny(data, "\r\n")
	if i < 0 {
		if !atEOF {
			return 0, nil, nil
		}

		tr.next += int64(len(data))
		return len(data), data, nil
	}

	advance := i + 1
	if data[i] == '\r' {
		if i+1 == len(data) && !atEOF {
			// LF may follow in the next read
			return 0, nil, nil
		}
		if i+1 < len(data) && data[i+1] == '\n' {
			advance++
		}
	}

	tr.next += int64(advance)
	return advance, data[:i], nil
}

// Line returns the next line without its terminator, or io.EOF after the last one.
func (tr *TextReader) Line() (string, error) {
	if !tr.sc.Scan() {
		if err := tr.sc.Err(); err != nil {
			return "", fmt.Errorf("read line at 0x%x: %w", tr.offset, err)
		}

		return "", io.EOF
	}

	tr.offset = tr.next
	return tr.sc.Text(), nil
}

// Offset returns position right after the last returned line.
func (tr *TextReader) Offset() int64 { return tr.offset }

// ReadLine reads one line of at most maxLen bytes at off.
// It returns the line and the number of bytes consumed including the terminator.
func ReadLine(sf Source, off int64, maxLen int) (string, int64, error) {
	tr, err := NewTextReader(sf, off, 0, maxLen)
	if err != nil {
		return "", 0, err
	}

	line, err := tr.Line()
	if err != nil {
		return "", 0, err
	}

	return line, tr.Offset() - off, nil
}
