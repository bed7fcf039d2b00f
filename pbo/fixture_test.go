package pbo

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/lzss"
)

// fixtureEntry describes one entry of a handcrafted PBO.
type fixtureEntry struct {
	name string
	data []byte
	// compress stores data as LZSS with the Cprs mime.
	compress bool
}

// buildPBO assembles a PBO image with sequential payloads.
func buildPBO(t *testing.T, headers []HeaderPair, entries []fixtureEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[1:5], uint32(MimeHeader))
	_, _ = buf.Write(header)
	for _, h := range headers {
		_, _ = buf.WriteString(h.Key + "\x00" + h.Value + "\x00")
	}
	_ = buf.WriteByte(0)

	payloads := make([][]byte, 0, len(entries))
	for _, e := range entries {
		stored := e.data
		fields := make([]byte, fieldsSize)
		if e.compress {
			packed, err := lzss.Compress(e.data, lzss.DefaultCompressOptions())
			if err != nil {
				t.Fatalf("lzss.Compress %s: %v", e.name, err)
			}

			stored = packed
			binary.LittleEndian.PutUint32(fields[0:4], uint32(MimeCompress))
			binary.LittleEndian.PutUint32(fields[4:8], uint32(len(e.data)))
		}

		binary.LittleEndian.PutUint32(fields[16:20], uint32(len(stored)))
		_, _ = buf.WriteString(e.name + "\x00")
		_, _ = buf.Write(fields)
		payloads = append(payloads, stored)
	}

	_ = buf.WriteByte(0)
	_, _ = buf.Write(make([]byte, fieldsSize))
	for _, p := range payloads {
		_, _ = buf.Write(p)
	}

	return buf.Bytes()
}

// writePBO stores a PBO image in a temp dir and returns its path.
func writePBO(t *testing.T, raw []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "manual.pbo")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write pbo: %v", err)
	}

	return path
}

// absoluteOffsetsPBO builds a PBO where payloads start at stored absolute offsets with gaps.
func absoluteOffsetsPBO(t *testing.T) ([]byte, uint32, uint32) {
	t.Helper()

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[1:5], uint32(MimeHeader))

	var table bytes.Buffer
	writeEntry := func(name string) int {
		_, _ = table.WriteString(name)
		_ = table.WriteByte(0)
		fieldPos := table.Len()
		_, _ = table.Write(make([]byte, fieldsSize))
		return fieldPos
	}

	fieldPosA := writeEntry("a.txt")
	fieldPosB := writeEntry("b.txt")
	_ = table.WriteByte(0)
	_, _ = table.Write(make([]byte, fieldsSize))

	raw := make([]byte, 0, 256)
	raw = append(raw, header...)
	raw = append(raw, 0x00)
	tableBase := len(raw)
	raw = append(raw, table.Bytes()...)
	dataStart := len(raw)

	firstOffset := uint32(dataStart + 16)
	secondOffset := firstOffset + uint32(len("hello")+7)

	binary.LittleEndian.PutUint32(raw[tableBase+fieldPosA+8:], firstOffset)
	binary.LittleEndian.PutUint32(raw[tableBase+fieldPosA+16:], uint32(len("hello")))
	binary.LittleEndian.PutUint32(raw[tableBase+fieldPosB+8:], secondOffset)
	binary.LittleEndian.PutUint32(raw[tableBase+fieldPosB+16:], uint32(len("world")))

	region := make([]byte, int(secondOffset)+len("world")-dataStart)
	copy(region[int(firstOffset)-dataStart:], "hello")
	copy(region[int(secondOffset)-dataStart:], "world")
	raw = append(raw, region...)

	return raw, firstOffset, secondOffset
}

// malformedStoredOffsetPBO builds a PBO with an out-of-file stored offset.
func malformedStoredOffsetPBO(t *testing.T) []byte {
	t.Helper()

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[1:5], uint32(MimeHeader))

	var table bytes.Buffer
	_, _ = table.WriteString("a.txt")
	_ = table.WriteByte(0)
	fieldPos := table.Len()
	_, _ = table.Write(make([]byte, fieldsSize))
	_ = table.WriteByte(0)
	_, _ = table.Write(make([]byte, fieldsSize))

	raw := make([]byte, 0, 128)
	raw = append(raw, header...)
	raw = append(raw, 0x00)
	tableBase := len(raw)
	raw = append(raw, table.Bytes()...)

	binary.LittleEndian.PutUint32(raw[tableBase+fieldPos+8:], 0xFFFFFFF0)
	binary.LittleEndian.PutUint32(raw[tableBase+fieldPos+16:], uint32(len("hello")))
	return append(raw, "hello"...)
}
