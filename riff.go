// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// riffHeaderSize is size of the "RIFF", size and form type fields.
const riffHeaderSize = 12

// RIFFForm returns the form type of a RIFF source, such as "WAVE".
func RIFFForm(sf Source) (string, error) {
	if sf == nil {
		return "", ErrNilSource
	}

	p := riff.New(io.NewSectionReader(sf, 0, sf.Size()))
	if err := p.ParseHeaders(); err != nil {
		return "", fmt.Errorf("parse RIFF header of %s: %w", sf.Name(), err)
	}

	return string(p.Format[:]), nil
}

// FindRIFFChunk returns payload offset and size of the first top-level chunk
// with the given id in a RIFF source.
func FindRIFFChunk(sf Source, id string) (int64, int64, error) {
	if _, err := RIFFForm(sf); err != nil {
		return 0, 0, err
	}

	want := MakeBlockID(id)
	total := sf.Size()
	for off := int64(riffHeaderSize); off+8 <= total; {
		ch, err := riff.New(io.NewSectionReader(sf, off, total-off)).NextChunk()
		if err != nil {
			break
		}

		size := int64(ch.Size)
		if BlockID(ch.ID) == want {
			if off+8+size > total {
				size = total - off - 8
			}

			return off + 8, size, nil
		}

		off += 8 + size + size&1
	}

	return 0, 0, fmt.Errorf("%w: RIFF %q in %s", ErrChunkNotFound, id, sf.Name())
}

// OpenRIFFChunk opens the payload of a top-level RIFF chunk as a subfile
// named with ext. sf is not consumed.
func OpenRIFFChunk(sf Source, id, ext string) (Source, error) {
	off, size, err := FindRIFFChunk(sf, id)
	if err != nil {
		return nil, err
	}

	return OpenSubfile(sf, off, size, ext)
}
