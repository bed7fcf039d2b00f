// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

// OpenSubfile exposes [start, start+size) of sf as a standalone file
// reporting ext as its extension, for handing embedded data to another parser.
// An empty ext keeps the original name. sf is not consumed.
func OpenSubfile(sf Source, start, size int64, ext string) (Source, error) {
	c := WrapChain(sf).Clamp(start, size)
	if ext != "" {
		c = c.RenameExt(ext)
	}

	return c.Source()
}

// OpenNamedSubfile exposes [start, start+size) of sf under an explicit name.
// sf is not consumed.
func OpenNamedSubfile(sf Source, start, size int64, name string) (Source, error) {
	return WrapChain(sf).Clamp(start, size).Rename(name).Source()
}
