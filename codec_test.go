package streamfile

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// codecPlain returns n bytes of mildly compressible data.
func codecPlain(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i/3) ^ byte(i>>9)
	}

	return out
}

func zlibPack(t *testing.T, plain []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(plain); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}

	return buf.Bytes()
}

func TestZlibDecompressor(t *testing.T) {
	t.Parallel()

	plain := codecPlain(0x24000)
	prefix := []byte("ZLIBHEAD")
	raw := join(prefix, zlibPack(t, plain), []byte("trailer"))

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	inner := NewMemory("a.z", raw)
	inner.SetLogger(log)

	d, err := NewZlibDecompressor(inner, StreamCodecConfig{
		CompressionStart: int64(len(prefix)),
		CompressedSize:   int64(len(raw) - len(prefix) - len("trailer")),
	})
	if err != nil {
		t.Fatalf("NewZlibDecompressor: %v", err)
	}
	defer func() { _ = d.Close() }()

	want := join(prefix, plain)
	if d.Size() != int64(len(want)) {
		t.Fatalf("Size=0x%x, want 0x%x", d.Size(), len(want))
	}
	mustEqual(t, "full", readAll(t, d), want)

	// across the prefix boundary
	buf := make([]byte, 0x20)
	if _, err := d.ReadAt(buf, 4); err != nil {
		t.Fatalf("ReadAt boundary: %v", err)
	}
	mustEqual(t, "boundary", buf, want[4:0x24])

	// forward, then backward to an earlier block
	late := make([]byte, 0x100)
	if _, err := d.ReadAt(late, 0x22000); err != nil {
		t.Fatalf("ReadAt late: %v", err)
	}
	mustEqual(t, "late", late, want[0x22000:0x22100])

	hook.Reset()
	early := make([]byte, 0x100)
	if _, err := d.ReadAt(early, 0x100); err != nil {
		t.Fatalf("ReadAt early: %v", err)
	}
	mustEqual(t, "early", early, want[0x100:0x200])
	if len(hook.AllEntries()) == 0 {
		t.Fatal("decoder restart must be logged")
	}
}

func TestDeflateDecompressor_KnownSize(t *testing.T) {
	t.Parallel()

	plain := codecPlain(0x5000)
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestSpeed)
	if err != nil {
		t.Fatalf("flate.NewWriter: %v", err)
	}
	if _, err := w.Write(plain); err != nil {
		t.Fatalf("flate write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("flate close: %v", err)
	}

	d, err := NewDeflateDecompressor(NewMemory("a.bin", buf.Bytes()), StreamCodecConfig{DecompressedSize: 0x4000})
	if err != nil {
		t.Fatalf("NewDeflateDecompressor: %v", err)
	}
	defer func() { _ = d.Close() }()

	if d.Size() != 0x4000 {
		t.Fatalf("Size=0x%x, want 0x4000", d.Size())
	}
	mustEqual(t, "clipped to known size", readAll(t, d), plain[:0x4000])

	n, err := d.ReadAt(make([]byte, 8), 0x3FFC)
	if n != 4 || !errors.Is(err, io.EOF) {
		t.Fatalf("tail n=%d err=%v, want 4, io.EOF", n, err)
	}
}

func TestStreamCodec_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewStreamCodec(NewMemory("a", nil), StreamCodecConfig{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("missing decoder err=%v, want ErrInvalidConfig", err)
	}

	d, err := NewZlibDecompressor(NewMemory("a.z", []byte("not zlib data at all")), StreamCodecConfig{DecompressedSize: 16})
	if err != nil {
		t.Fatalf("NewZlibDecompressor: %v", err)
	}
	defer func() { _ = d.Close() }()

	if _, err := d.ReadAt(make([]byte, 16), 0); !errors.Is(err, ErrDecompress) {
		t.Fatalf("bad header err=%v, want ErrDecompress", err)
	}
}
