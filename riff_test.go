package streamfile

import (
	"encoding/binary"
	"errors"
	"testing"
)

// riffFile builds a RIFF image of form with the given chunks.
func riffFile(form string, chunks ...[]byte) []byte {
	body := join(chunks...)
	out := make([]byte, 12, 12+len(body))
	copy(out, "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(4+len(body))) //nolint:gosec // test sizes
	copy(out[8:], form)
	return append(out, body...)
}

func TestRIFFChunks(t *testing.T) {
	t.Parallel()

	raw := riffFile("WAVE",
		chunkBlock("fmt ", 16, make([]byte, 16), false),
		chunkBlock("LIST", 4, []byte("INFO"), false),
		chunkBlock("data", 8, []byte("samples!"), false),
	)
	sf := NewMemory("music/track.wav", raw)
	defer func() { _ = sf.Close() }()

	form, err := RIFFForm(sf)
	if err != nil {
		t.Fatalf("RIFFForm: %v", err)
	}
	if form != "WAVE" {
		t.Fatalf("form=%q, want WAVE", form)
	}

	off, size, err := FindRIFFChunk(sf, "data")
	if err != nil {
		t.Fatalf("FindRIFFChunk: %v", err)
	}
	if off != 12+24+12+8 || size != 8 {
		t.Fatalf("data chunk off=%d size=%d", off, size)
	}

	sub, err := OpenRIFFChunk(sf, "data", "pcm")
	if err != nil {
		t.Fatalf("OpenRIFFChunk: %v", err)
	}
	defer func() { _ = sub.Close() }()

	if sub.Name() != "music/track.pcm" {
		t.Fatalf("Name=%q, want music/track.pcm", sub.Name())
	}
	mustEqual(t, "data", readAll(t, sub), []byte("samples!"))

	if _, _, err := FindRIFFChunk(sf, "smpl"); !errors.Is(err, ErrChunkNotFound) {
		t.Fatalf("missing chunk err=%v, want ErrChunkNotFound", err)
	}
}

func TestRIFFChunks_TruncatedPayload(t *testing.T) {
	t.Parallel()

	raw := riffFile("WAVE", chunkBlock("data", 0x100, []byte("short"), false))
	off, size, err := FindRIFFChunk(NewMemory("a.wav", raw), "data")
	if err != nil {
		t.Fatalf("FindRIFFChunk: %v", err)
	}
	if off != 20 || size != 5 {
		t.Fatalf("off=%d size=%d, want 20 5", off, size)
	}
}

func TestRIFFForm_NotRIFF(t *testing.T) {
	t.Parallel()

	if _, err := RIFFForm(NewMemory("a.bin", []byte("OggS\x00\x02\x00\x00\x00\x00\x00\x00"))); err == nil {
		t.Fatal("expected error for non-RIFF data")
	}
	if _, err := RIFFForm(nil); !errors.Is(err, ErrNilSource) {
		t.Fatalf("nil err=%v, want ErrNilSource", err)
	}
}
