// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import "errors"

// Sentinel errors for stream operations. Use errors.Is in callers.
//
// Reaching the end of a view is not an error: ReadAt reports it with io.EOF
// together with the short byte count, following the io.ReaderAt contract.
var (
	// ErrNilSource means a required inner source is nil.
	ErrNilSource = errors.New("source is nil")
	// ErrClosed means the source is already closed.
	ErrClosed = errors.New("source already closed")
	// ErrNegativeOffset means a read was requested at a negative offset.
	ErrNegativeOffset = errors.New("negative read offset")
	// ErrInvalidRange means a window does not fit into its inner source.
	ErrInvalidRange = errors.New("range outside of source bounds")
	// ErrInvalidConfig means adapter configuration is inconsistent.
	ErrInvalidConfig = errors.New("invalid adapter configuration")
	// ErrNameTooLong means a path exceeds PathLimit.
	ErrNameTooLong = errors.New("path exceeds maximum length")
	// ErrEmptyName means a companion name is empty.
	ErrEmptyName = errors.New("empty file name")
	// ErrCorruptBlock means a block walker met a header it cannot follow.
	ErrCorruptBlock = errors.New("corrupt block layout")
	// ErrDecompress means compressed payload could not be decoded.
	ErrDecompress = errors.New("decompression failed")
	// ErrInvalidKey means an encryption key is empty or malformed.
	ErrInvalidKey = errors.New("invalid encryption key")
	// ErrRelativePath means a companion path leaves the source directory.
	ErrRelativePath = errors.New("relative or absolute companion path not allowed")
	// ErrCompanionDenied means a companion path is excluded by access rules.
	ErrCompanionDenied = errors.New("companion path denied by rules")
	// ErrChunkNotFound means the requested chunk id is not present.
	ErrChunkNotFound = errors.New("chunk not found")
	// ErrInvalidString means a header string holds bytes that are not text.
	ErrInvalidString = errors.New("invalid string data")
	// ErrUnsupported means the operation is not available on this platform.
	ErrUnsupported = errors.New("operation not supported")
)

// ErrEndOfBlocks is returned by a BlockFunc to end a block stream cleanly.
var ErrEndOfBlocks = errors.New("end of blocks")
