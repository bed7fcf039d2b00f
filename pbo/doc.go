// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

/*
Package pbo indexes PBO (Packed Bank of files) archives over a
streamfile.Source and opens each entry as an adapter stack, so inner
parsers read entries as standalone files.

An entry opens as wrap -> clamp(payload) -> [LZSS] -> [buffer] -> rename.
The wrap keeps the archive source alive when an entry is closed, and the
rename reports the entry path joined to the archive directory, so
extension dispatch and companion lookup see the entry name.

# Reading

	a, err := pbo.Open("addons/sounds.pbo")
	if err != nil {
	    return err
	}
	defer a.Close()
	for _, e := range a.Entries() {
	    sf, err := a.OpenEntryInfo(e)
	    if err != nil {
	        return err
	    }
	    // hand sf to a parser selected by streamfile.Ext(sf.Name())
	    _ = sf.Close()
	}

Any source works, including nested archives and in-memory images:

	inner, err := outer.OpenEntry("data/inner.pbo")
	if err != nil {
	    return err
	}
	a, err := pbo.NewArchive(inner, pbo.ReaderOptions{
	    OffsetMode:       pbo.OffsetModeStoredCompat,
	    EnableJunkFilter: true,
	})
	if err != nil {
	    _ = inner.Close()
	    return err
	}
	defer a.Close()
*/
package pbo
