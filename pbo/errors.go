// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package pbo

import "errors"

// Sentinel errors for PBO index operations. Use errors.Is in callers.
var (
	// ErrInvalidHeader means the source is missing or has a bad PBO header.
	ErrInvalidHeader = errors.New("invalid PBO file: missing or bad header")
	// ErrFileNameTooLong means the entry filename exceeds the maximum length.
	ErrFileNameTooLong = errors.New("entry filename exceeds maximum length")
	// ErrNilArchive means the archive is nil.
	ErrNilArchive = errors.New("archive is nil")
	// ErrEntryNotFound means the entry is not found.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrClosed means the archive is already closed.
	ErrClosed = errors.New("archive already closed")
	// ErrSizeOverflow means the size exceeds the uint32 or 4 GiB PBO limit.
	ErrSizeOverflow = errors.New("size exceeds uint32 or 4 GiB PBO limit")
	// ErrInvalidEntryPath means an entry path is empty or escapes the archive root.
	ErrInvalidEntryPath = errors.New("invalid entry path")
	// ErrInvalidEntryOffset means one or more entry offsets are malformed for selected reader policy.
	ErrInvalidEntryOffset = errors.New("invalid entry offset")
)
