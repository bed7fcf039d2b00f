// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package pbo

import (
	"fmt"
	"path"
	"strings"
)

// NormalizePath converts an archive/internal path to normalized slash-separated form.
// It trims spaces, accepts both "/" and "\", removes leading "./" and "/", and cleans "." segments.
func NormalizePath(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, `\`, `/`)
	raw = strings.TrimPrefix(raw, "./")
	raw = strings.TrimPrefix(raw, "/")
	raw = path.Clean("/" + raw)
	raw = strings.TrimPrefix(raw, "/")
	if raw == "." {
		return ""
	}

	return strings.TrimSuffix(raw, "/")
}

// NormalizePrefixHeader normalizes PBO "prefix" header value to "\" separators.
func NormalizePrefixHeader(raw string) string {
	normalized := NormalizePath(raw)
	if normalized == "" {
		return ""
	}

	return strings.ReplaceAll(normalized, "/", `\`)
}

// checkEntryPath normalizes an entry path and rejects absolute or traversal inputs.
func checkEntryPath(entryPath string) (string, error) {
	raw := strings.TrimSpace(entryPath)
	if raw == "" || strings.ContainsRune(raw, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryPath, entryPath)
	}
	if strings.HasPrefix(raw, `/`) || strings.HasPrefix(raw, `\`) {
		return "", fmt.Errorf("%w: %q is absolute", ErrInvalidEntryPath, entryPath)
	}

	raw = strings.ReplaceAll(raw, `\`, `/`)
	if hasDrivePrefix(raw) {
		return "", fmt.Errorf("%w: %q has drive prefix", ErrInvalidEntryPath, entryPath)
	}

	parts := strings.Split(raw, `/`)
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", fmt.Errorf("%w: %q escapes root", ErrInvalidEntryPath, entryPath)
		default:
			clean = append(clean, part)
		}
	}
	if len(clean) == 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryPath, entryPath)
	}

	return strings.Join(clean, `/`), nil
}

// hasDrivePrefix reports whether path starts with drive-root prefix like C:/.
func hasDrivePrefix(path string) bool {
	if len(path) < 3 {
		return false
	}

	b := path[0]
	return ((b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')) && path[1] == ':' && path[2] == '/'
}
