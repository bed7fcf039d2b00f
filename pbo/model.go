// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package pbo

import "github.com/woozymasta/streamfile"

// Internal binary layout and format limits.
const (
	headerSize = 21  // fixed PBO header size in bytes
	shaSize    = 20  // SHA1 digest size in trailer
	fieldsSize = 20  // entry record fields after the name
	maxNameLen = 512 // max entry filename length
)

// MimeType is the 4-byte PBO entry type (stored little-endian).
type MimeType uint32

// PBO entry mime constants.
const (
	// MimeHeader marks the first header record ("Vers").
	MimeHeader MimeType = 0x56657273
	// MimeCompress marks LZSS-compressed data ("Cprs").
	MimeCompress MimeType = 0x43707273
	// MimeEncoded marks VBS-encrypted data ("Enco").
	MimeEncoded MimeType = 0x456e6372
	// MimeNil marks uncompressed or terminator entry.
	MimeNil MimeType = 0x00000000
)

// EntryInfo describes a single parsed PBO entry.
type EntryInfo struct {
	// Path is the entry path as stored in archive index.
	Path string `json:"path" yaml:"path"`
	// Offset is byte offset of entry payload.
	Offset uint32 `json:"offset" yaml:"offset"`
	// DataSize is stored payload size in bytes.
	DataSize uint32 `json:"data_size" yaml:"data_size"`
	// OriginalSize is uncompressed size for compressed entries; zero otherwise.
	OriginalSize uint32 `json:"original_size,omitempty" yaml:"original_size,omitempty"`
	// TimeStamp is Unix timestamp from entry record.
	TimeStamp uint32 `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	// MimeType stores entry mime marker.
	MimeType MimeType `json:"mime_type,omitempty" yaml:"mime_type,omitempty"`
}

// IsCompressed reports whether this entry is stored with LZSS compression.
func (e *EntryInfo) IsCompressed() bool {
	return e.MimeType == MimeCompress || (e.OriginalSize != 0 && e.DataSize < e.OriginalSize)
}

// Size returns size of the entry as seen by readers.
func (e *EntryInfo) Size() int64 {
	if e.IsCompressed() {
		return int64(e.OriginalSize)
	}

	return int64(e.DataSize)
}

// HeaderPair is a PBO header key-value pair in stored order.
type HeaderPair struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// OffsetMode controls how the index resolves payload offsets from the entry table.
type OffsetMode string

// Offset resolution modes.
const (
	// OffsetModeSequential ignores stored index offsets and derives payload offsets sequentially.
	OffsetModeSequential OffsetMode = "sequential"
	// OffsetModeStoredCompat tries to use non-zero stored offsets and falls back to sequential on malformed data.
	OffsetModeStoredCompat OffsetMode = "stored_compat"
	// OffsetModeStoredStrict requires stored non-zero offsets to be valid and fails otherwise.
	OffsetModeStoredStrict OffsetMode = "stored_strict"
)

// ReaderOptions configures index parse compatibility behavior.
type ReaderOptions struct {
	// Logger receives parse diagnostics; nil inherits the logger of the source.
	Logger streamfile.Logger `json:"-" yaml:"-"`
	// OffsetMode controls whether stored index offsets are used.
	OffsetMode OffsetMode `json:"offset_mode,omitempty" yaml:"offset_mode,omitempty"`
	// BufferSize is the read buffer placed under opened entries; zero means no extra buffer.
	BufferSize int `json:"buffer_size,omitempty" yaml:"buffer_size,omitempty"`
	// EnableJunkFilter drops malformed/mangled entries from visible entry list.
	EnableJunkFilter bool `json:"enable_junk_filter,omitempty" yaml:"enable_junk_filter,omitempty"`
}

// applyDefaults fills zero-valued reader options with defaults.
func (opts *ReaderOptions) applyDefaults() {
	if opts.OffsetMode == "" {
		opts.OffsetMode = OffsetModeSequential
	}
	if opts.BufferSize < 0 {
		opts.BufferSize = 0
	}
}
