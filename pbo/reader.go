// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package pbo

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/woozymasta/streamfile"
)

const (
	// readerScanChunkSize is a chunk size used by null-terminated string scanner.
	readerScanChunkSize = 256
	// readerEntryBufferSize is read window size used while scanning the entry table.
	readerEntryBufferSize = 64 * 1024
)

// Archive is a parsed PBO index over a byte source.
// Entries open as adapter stacks over the same source.
type Archive struct {
	// sf is the archive byte source, owned by Archive.
	sf streamfile.Source
	// log receives parse and open diagnostics.
	log streamfile.Logger
	// headers are kept in parse order for deterministic behavior.
	headers []HeaderPair
	// entries stores parsed immutable entry metadata.
	entries []EntryInfo
	// opts are reader options with defaults applied.
	opts ReaderOptions
	// dataStart is absolute offset of first payload byte.
	dataStart int64
	// sha1Trailer stores optional trailer hash when present.
	sha1Trailer [shaSize]byte
	// hasTrailer reports whether trailing 0x00 + SHA1 was detected.
	hasTrailer bool
	// closed reports whether Close was already called.
	closed bool
}

// Open opens PBO file by path and parses index/header structures.
func Open(path string) (*Archive, error) {
	return OpenWithOptions(path, ReaderOptions{})
}

// OpenWithOptions opens PBO file by path and parses index/header structures using explicit reader options.
func OpenWithOptions(path string, opts ReaderOptions) (*Archive, error) {
	sf, err := streamfile.OpenFileWithOptions(path, streamfile.FileOptions{Logger: opts.Logger})
	if err != nil {
		return nil, fmt.Errorf("open PBO: %w", err)
	}

	a, err := NewArchive(sf, opts)
	if err != nil {
		_ = sf.Close()
		return nil, err
	}

	return a, nil
}

// NewArchive parses a PBO index from sf.
// On success the archive owns sf; on failure sf is left open.
func NewArchive(sf streamfile.Source, opts ReaderOptions) (*Archive, error) {
	if sf == nil {
		return nil, streamfile.ErrNilSource
	}

	opts.applyDefaults()
	log := opts.Logger
	if log == nil {
		log = streamfile.LoggerOf(sf)
	}

	a := &Archive{sf: sf, log: log, opts: opts}
	if err := a.parse(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", sf.Name(), err)
	}

	return a, nil
}

// Entries returns a copy of parsed entries.
func (a *Archive) Entries() []EntryInfo {
	if a == nil {
		return nil
	}

	entries := make([]EntryInfo, len(a.entries))
	copy(entries, a.entries)
	return entries
}

// Headers returns parsed headers in original order.
func (a *Archive) Headers() []HeaderPair {
	if a == nil {
		return nil
	}

	out := make([]HeaderPair, len(a.headers))
	copy(out, a.headers)
	return out
}

// Prefix returns normalized "prefix" header value, or an empty string.
func (a *Archive) Prefix() string {
	if a == nil {
		return ""
	}

	for _, h := range a.headers {
		if h.Key == "prefix" {
			return NormalizePrefixHeader(h.Value)
		}
	}

	return ""
}

// DataStart returns absolute offset of first payload byte.
func (a *Archive) DataStart() int64 {
	if a == nil {
		return 0
	}

	return a.dataStart
}

// SHA1Trailer returns parsed 20-byte trailer hash when present.
func (a *Archive) SHA1Trailer() ([shaSize]byte, bool) {
	if a == nil || !a.hasTrailer {
		var z [shaSize]byte
		return z, false
	}

	return a.sha1Trailer, true
}

// Close closes the archive source. Entry sources opened earlier become unreadable.
func (a *Archive) Close() error {
	if a == nil || a.closed {
		return nil
	}

	a.closed = true
	return a.sf.Close()
}

// parse reads and validates PBO structure from the archive source.
func (a *Archive) parse() error {
	size := a.sf.Size()
	headers, off, err := parseHeaderSection(a.sf)
	if err != nil {
		return err
	}
	a.headers = headers

	entries, entriesEnd, err := parseEntries(a.sf, off, size)
	if err != nil {
		return err
	}

	a.dataStart = entriesEnd
	if err := resolveEntryOffsets(entries, entriesEnd, size, a.opts.OffsetMode); err != nil {
		return err
	}
	if a.opts.EnableJunkFilter {
		kept := filterJunkEntries(entries)
		if dropped := len(entries) - len(kept); dropped > 0 {
			a.log.Debugf("pbo %s: dropped %d junk entries", a.sf.Name(), dropped)
		}
		entries = kept
	}
	a.entries = entries

	if size-entriesEnd >= shaSize+1 {
		var tail [shaSize + 1]byte
		if _, err := a.sf.ReadAt(tail[:], size-int64(len(tail))); err == nil && tail[0] == 0x00 {
			a.hasTrailer = true
			copy(a.sha1Trailer[:], tail[1:])
		}
	}

	return nil
}

// parseHeaderSection parses the "Vers" record and key-value header pairs
// and returns the entry table offset.
func parseHeaderSection(sf streamfile.Source) ([]HeaderPair, int64, error) {
	if sf.Size() < headerSize {
		return nil, 0, fmt.Errorf("%w: short header", ErrInvalidHeader)
	}

	// an empty name followed by the "Vers" mime marks the header record
	first, err := streamfile.ReadU8(sf, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	mime, err := streamfile.ReadU32LE(sf, 1)
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	if first != 0 || MimeType(mime) != MimeHeader {
		return nil, 0, ErrInvalidHeader
	}

	headers := make([]HeaderPair, 0, 4)
	off := int64(headerSize)
	for {
		key, n, err := readNullTerminated(sf, off)
		if err != nil {
			return nil, 0, fmt.Errorf("read header key: %w", err)
		}

		off += int64(n)
		if key == "" {
			return headers, off, nil
		}

		value, n, err := readNullTerminated(sf, off)
		if err != nil {
			return nil, 0, fmt.Errorf("read header value: %w", err)
		}

		off += int64(n)
		headers = append(headers, HeaderPair{Key: key, Value: value})
	}
}

// parseEntries parses entry records from the index table and returns payload start offset.
// The table is scanned through a buffered non-owning view of sf.
func parseEntries(sf streamfile.Source, tableOffset int64, size int64) ([]EntryInfo, int64, error) {
	if tableOffset >= size {
		return nil, 0, fmt.Errorf("read entry filename: %w", io.EOF)
	}

	view, err := streamfile.WrapChain(sf).Buffer(readerEntryBufferSize).Source()
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = view.Close() }()

	entries := make([]EntryInfo, 0, estimateEntryCapacity(size-tableOffset))
	off := tableOffset
	for {
		filename, n, err := readNullTerminated(view, off)
		if err != nil {
			return nil, 0, fmt.Errorf("read entry filename: %w", err)
		}

		off += int64(n)
		if len(filename) > maxNameLen {
			return nil, 0, ErrFileNameTooLong
		}

		var fields [fieldsSize]byte
		if _, err := view.ReadAt(fields[:], off); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}

			return nil, 0, fmt.Errorf("read entry fields: %w", err)
		}

		off += fieldsSize
		e := decodeEntry(filename, fields[:])
		if e == (EntryInfo{}) {
			return entries, off, nil
		}

		entries = append(entries, e)
	}
}

// decodeEntry builds entry metadata from the five little-endian fields after its name.
func decodeEntry(path string, fields []byte) EntryInfo {
	le := binary.LittleEndian
	return EntryInfo{
		Path:         path,
		MimeType:     MimeType(le.Uint32(fields[0:4])),
		OriginalSize: le.Uint32(fields[4:8]),
		Offset:       le.Uint32(fields[8:12]),
		TimeStamp:    le.Uint32(fields[12:16]),
		DataSize:     le.Uint32(fields[16:20]),
	}
}

// estimateEntryCapacity returns a conservative initial capacity for parsed entry metadata.
func estimateEntryCapacity(remainingBytes int64) int {
	const (
		minCap = 16
		maxCap = 8192
		// remainingBytes includes payload region
		avgEntryBytes = 512
	)

	return int(min(max(remainingBytes/avgEntryBytes, minCap), maxCap))
}

// resolveEntryOffsets fills entry offsets according to mode and checks payload bounds.
func resolveEntryOffsets(entries []EntryInfo, dataStart int64, totalSize int64, mode OffsetMode) error {
	var stored bool
	switch mode {
	case OffsetModeSequential:
	case OffsetModeStoredCompat:
		stored, _ = applyStoredOffsets(entries, dataStart, totalSize)
	case OffsetModeStoredStrict:
		var err error
		if stored, err = applyStoredOffsets(entries, dataStart, totalSize); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidEntryOffset, err)
		}
	default:
		return fmt.Errorf("%w: unknown offset mode %q", ErrInvalidEntryOffset, mode)
	}

	if !stored {
		if err := packOffsets(entries, dataStart); err != nil {
			return err
		}
	}

	for _, e := range entries {
		switch {
		case int64(e.Offset) < dataStart:
			return fmt.Errorf("%w: entry %s offset before data start", ErrInvalidEntryOffset, e.Path)
		case int64(e.Offset)+int64(e.DataSize) > totalSize:
			return fmt.Errorf("%w: entry %s payload out of file bounds", ErrInvalidEntryOffset, e.Path)
		}
	}

	return nil
}

// packOffsets lays entries out back to back starting at dataStart.
func packOffsets(entries []EntryInfo, dataStart int64) error {
	if dataStart < 0 || dataStart > math.MaxUint32 {
		return fmt.Errorf("%w: data start offset %d", ErrSizeOverflow, dataStart)
	}

	pos := uint64(dataStart)
	for i := range entries {
		entries[i].Offset = uint32(pos) //nolint:gosec // pos stays below 4 GiB
		pos += uint64(entries[i].DataSize)
		if pos > math.MaxUint32 {
			return fmt.Errorf("%w: entry %s size would exceed 4 GiB", ErrSizeOverflow, entries[i].Path)
		}
	}

	return nil
}

// applyStoredOffsets uses offsets written in the index when any is non-zero.
// Both relative and absolute interpretations are tried; entries are left
// untouched unless one of them fits the file.
func applyStoredOffsets(entries []EntryInfo, dataStart int64, totalSize int64) (bool, error) {
	if !slices.ContainsFunc(entries, func(e EntryInfo) bool { return e.Offset != 0 }) {
		return false, nil
	}

	// a first offset below dataStart can only be relative
	bases := []int64{dataStart, 0}
	if int64(entries[0].Offset) >= dataStart {
		bases = []int64{0, dataStart}
	}

	var firstErr error
	for _, base := range bases {
		resolved, err := storedOffsets(entries, base, dataStart, totalSize)
		if err == nil {
			for i := range entries {
				entries[i].Offset = resolved[i]
			}

			return true, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	return false, fmt.Errorf("stored offsets are malformed: %w", firstErr)
}

// storedOffsets shifts stored offsets by base and checks they are ordered and in bounds.
func storedOffsets(entries []EntryInfo, base, dataStart, totalSize int64) ([]uint32, error) {
	out := make([]uint32, len(entries))
	var prev int64
	for i, e := range entries {
		off := int64(e.Offset) + base
		switch {
		case off < dataStart:
			return nil, fmt.Errorf("entry %s offset before data start", e.Path)
		case off > math.MaxUint32:
			return nil, fmt.Errorf("entry %s offset out of range", e.Path)
		case off < prev:
			return nil, fmt.Errorf("entry %s offset is not monotonic", e.Path)
		case off+int64(e.DataSize) > totalSize:
			return nil, fmt.Errorf("entry %s payload out of file bounds", e.Path)
		}

		out[i] = uint32(off) //nolint:gosec // bounded above
		prev = off
	}

	return out, nil
}

// filterJunkEntries removes malformed or unusable entries from parsed table.
func filterJunkEntries(entries []EntryInfo) []EntryInfo {
	filtered := make([]EntryInfo, 0, len(entries))
	for i := range entries {
		e := entries[i]
		if e.DataSize == 0 {
			continue
		}
		if e.MimeType == MimeCompress && e.OriginalSize == 0 {
			continue
		}
		if _, err := checkEntryPath(e.Path); err != nil {
			continue
		}

		filtered = append(filtered, e)
	}

	return filtered
}

// readNullTerminated reads a zero-terminated string from ReaderAt starting at offset.
func readNullTerminated(ra io.ReaderAt, offset int64) (string, int, error) {
	total := 0
	var out []byte

	var chunk [readerScanChunkSize]byte
	for {
		n, err := ra.ReadAt(chunk[:], offset+int64(total))
		if n > 0 {
			part := chunk[:n]
			if idx := bytes.IndexByte(part, 0); idx >= 0 {
				out = append(out, part[:idx]...)
				return string(out), total + idx + 1, nil
			}

			out = append(out, part...)
			total += n
		}

		if err != nil {
			return "", 0, err
		}

		if n == 0 {
			return "", 0, io.EOF
		}
	}
}
