// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import "strings"

// Path helpers accept both "/" and "\" separators, since names reported by
// sources may come from archives authored on any platform.

// lastSeparator returns index of the last path separator, or -1.
func lastSeparator(name string) int {
	return strings.LastIndexAny(name, `/\`)
}

// Filename returns name without directory part.
func Filename(name string) string {
	return name[lastSeparator(name)+1:]
}

// Dir returns directory part of name including the trailing separator,
// or an empty string when name has no directory.
func Dir(name string) string {
	return name[:lastSeparator(name)+1]
}

// Ext returns extension of name without the dot, or an empty string.
// Dots inside directory names are ignored.
func Ext(name string) string {
	file := Filename(name)
	idx := strings.LastIndexByte(file, '.')
	if idx < 0 {
		return ""
	}

	return file[idx+1:]
}

// Basename returns file name without directory and extension.
func Basename(name string) string {
	file := Filename(name)
	if idx := strings.LastIndexByte(file, '.'); idx >= 0 {
		return file[:idx]
	}

	return file
}

// SwapExtension replaces the extension of name with ext.
// Extensionless names get ".ext" appended; an empty ext removes the extension.
func SwapExtension(name, ext string) string {
	file := Filename(name)
	idx := strings.LastIndexByte(file, '.')
	if idx < 0 {
		if ext == "" {
			return name
		}

		return name + "." + ext
	}

	stem := name[:len(name)-len(file)+idx]
	if ext == "" {
		return stem
	}

	return stem + "." + ext
}

// HasExtension reports whether the extension of name matches one of the
// comma-separated exts, ignoring case.
// An empty entry, as in "adx," or ",adx", matches extensionless names.
func HasExtension(name, exts string) bool {
	ext := Ext(name)
	for cmp := range strings.SplitSeq(exts, ",") {
		if strings.EqualFold(ext, cmp) {
			return true
		}
	}

	return false
}

// CheckExtensions reports whether the name of sf has one of the comma-separated exts.
func CheckExtensions(sf Source, exts string) bool {
	if sf == nil {
		return false
	}

	return HasExtension(sf.Name(), exts)
}
