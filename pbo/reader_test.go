package pbo

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/woozymasta/streamfile"
)

func TestOpen_InvalidHeader(t *testing.T) {
	t.Parallel()

	path := writePBO(t, []byte("not a pbo header\x00\x00\x00\x00\x00\x00"))
	_, err := Open(path)
	if !errors.Is(err, ErrInvalidHeader) {
		t.Fatalf("expected ErrInvalidHeader, got %v", err)
	}
}

func TestOpen_EmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.pbo")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestOpen_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "missing.pbo"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestOpen_ManualPBO(t *testing.T) {
	t.Parallel()

	raw := buildPBO(t, []HeaderPair{{Key: "prefix", Value: `addon/sub\`}, {Key: "version", Value: "1"}},
		[]fixtureEntry{{name: "a.txt", data: []byte("hello")}})

	a, err := Open(writePBO(t, raw))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = a.Close() }()

	entries := a.Entries()
	if len(entries) != 1 {
		t.Fatalf("len(entries)=%d, want 1", len(entries))
	}
	if entries[0].Path != "a.txt" || entries[0].DataSize != 5 {
		t.Fatalf("entry: path=%q dataSize=%d", entries[0].Path, entries[0].DataSize)
	}

	headers := a.Headers()
	if len(headers) != 2 || headers[1].Key != "version" || headers[1].Value != "1" {
		t.Fatalf("headers=%v", headers)
	}
	if got := a.Prefix(); got != `addon\sub` {
		t.Fatalf("Prefix=%q, want %q", got, `addon\sub`)
	}

	data, err := a.ReadEntry("a.txt")
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("data=%q, want hello", data)
	}
}

func TestNewArchive_NilSource(t *testing.T) {
	t.Parallel()

	if _, err := NewArchive(nil, ReaderOptions{}); !errors.Is(err, streamfile.ErrNilSource) {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
}

func TestNewArchive_StoredOffsetCompatReadsGappedPayload(t *testing.T) {
	t.Parallel()

	raw, firstOffset, secondOffset := absoluteOffsetsPBO(t)

	seq, err := NewArchive(streamfile.NewMemory("gaps.pbo", raw), ReaderOptions{})
	if err != nil {
		t.Fatalf("NewArchive sequential: %v", err)
	}
	defer func() { _ = seq.Close() }()

	got, err := seq.ReadEntry("a.txt")
	if err != nil {
		t.Fatalf("ReadEntry sequential: %v", err)
	}
	if bytes.Equal(got, []byte("hello")) {
		t.Fatal("sequential mode unexpectedly read stored-offset payload")
	}

	compat, err := NewArchive(streamfile.NewMemory("gaps.pbo", raw), ReaderOptions{OffsetMode: OffsetModeStoredCompat})
	if err != nil {
		t.Fatalf("NewArchive compat: %v", err)
	}
	defer func() { _ = compat.Close() }()

	entries := compat.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries)=%d, want 2", len(entries))
	}
	if entries[0].Offset != firstOffset || entries[1].Offset != secondOffset {
		t.Fatalf("offsets=[%d, %d], want [%d, %d]", entries[0].Offset, entries[1].Offset, firstOffset, secondOffset)
	}

	for name, want := range map[string]string{"a.txt": "hello", "b.txt": "world"} {
		got, err := compat.ReadEntry(name)
		if err != nil {
			t.Fatalf("ReadEntry %s: %v", name, err)
		}
		if string(got) != want {
			t.Fatalf("%s=%q, want %q", name, got, want)
		}
	}
}

func TestNewArchive_StoredOffsetStrictRejectsMalformed(t *testing.T) {
	t.Parallel()

	raw := malformedStoredOffsetPBO(t)

	compat, err := NewArchive(streamfile.NewMemory("bad.pbo", raw), ReaderOptions{OffsetMode: OffsetModeStoredCompat})
	if err != nil {
		t.Fatalf("NewArchive compat: %v", err)
	}
	defer func() { _ = compat.Close() }()

	got, err := compat.ReadEntry("a.txt")
	if err != nil {
		t.Fatalf("ReadEntry compat: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("compat payload=%q, want hello", got)
	}

	sf := streamfile.NewMemory("bad.pbo", raw)
	_, err = NewArchive(sf, ReaderOptions{OffsetMode: OffsetModeStoredStrict})
	if !errors.Is(err, ErrInvalidEntryOffset) {
		t.Fatalf("expected ErrInvalidEntryOffset, got %v", err)
	}
	if _, err := sf.ReadAt(make([]byte, 1), 0); err != nil {
		t.Fatalf("source after failed parse: %v", err)
	}
	_ = sf.Close()
}

func TestNewArchive_UnknownOffsetMode(t *testing.T) {
	t.Parallel()

	raw := buildPBO(t, nil, []fixtureEntry{{name: "a.txt", data: []byte("x")}})
	_, err := NewArchive(streamfile.NewMemory("a.pbo", raw), ReaderOptions{OffsetMode: "bogus"})
	if !errors.Is(err, ErrInvalidEntryOffset) {
		t.Fatalf("expected ErrInvalidEntryOffset, got %v", err)
	}
}

func TestNewArchive_JunkFilter(t *testing.T) {
	t.Parallel()

	raw := buildPBO(t, nil, []fixtureEntry{
		{name: "keep1.txt", data: []byte("hello")},
		{name: "zero.bin"},
		{name: "../evil.txt", data: []byte("bad")},
		{name: "keep2.txt", data: []byte("world")},
	})

	plain, err := NewArchive(streamfile.NewMemory("junk.pbo", raw), ReaderOptions{})
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	defer func() { _ = plain.Close() }()
	if n := len(plain.Entries()); n != 4 {
		t.Fatalf("default entries=%d, want 4", n)
	}

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	filtered, err := NewArchive(streamfile.NewMemory("junk.pbo", raw), ReaderOptions{EnableJunkFilter: true, Logger: log})
	if err != nil {
		t.Fatalf("NewArchive filtered: %v", err)
	}
	defer func() { _ = filtered.Close() }()

	entries := filtered.Entries()
	if len(entries) != 2 || entries[0].Path != "keep1.txt" || entries[1].Path != "keep2.txt" {
		t.Fatalf("filtered entries=%v", entries)
	}
	if hook.LastEntry() == nil {
		t.Fatal("expected junk filter diagnostic")
	}

	got, err := filtered.ReadEntry("keep2.txt")
	if err != nil {
		t.Fatalf("ReadEntry keep2.txt: %v", err)
	}
	if string(got) != "world" {
		t.Fatalf("keep2.txt=%q, want world", got)
	}
}

func TestNewArchive_MalformedEntryTable(t *testing.T) {
	t.Parallel()

	raw := make([]byte, headerSize)
	raw[1], raw[2], raw[3], raw[4] = 's', 'r', 'e', 'V'
	raw = append(raw, 0x00, 'a', 0x00, 0x01, 0x02, 0x03)

	if _, err := NewArchive(streamfile.NewMemory("broken.pbo", raw), ReaderOptions{}); err == nil {
		t.Fatal("expected error for truncated entry table")
	}
}

func TestNewArchive_NameTooLong(t *testing.T) {
	t.Parallel()

	raw := buildPBO(t, nil, []fixtureEntry{{name: string(bytes.Repeat([]byte("n"), maxNameLen+1)), data: []byte("x")}})
	if _, err := NewArchive(streamfile.NewMemory("long.pbo", raw), ReaderOptions{}); !errors.Is(err, ErrFileNameTooLong) {
		t.Fatalf("expected ErrFileNameTooLong, got %v", err)
	}
}

func TestArchive_SHA1Trailer(t *testing.T) {
	t.Parallel()

	raw := buildPBO(t, nil, []fixtureEntry{{name: "a.txt", data: []byte("hello")}})
	sum := sha1.Sum(raw)
	signed := append(append(append([]byte{}, raw...), 0x00), sum[:]...)

	a, err := NewArchive(streamfile.NewMemory("signed.pbo", signed), ReaderOptions{})
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	defer func() { _ = a.Close() }()

	got, ok := a.SHA1Trailer()
	if !ok {
		t.Fatal("trailer not detected")
	}
	if got != sum {
		t.Fatalf("trailer=%x, want %x", got, sum)
	}

	data, err := a.ReadEntry("a.txt")
	if err != nil || string(data) != "hello" {
		t.Fatalf("ReadEntry=%q, %v", data, err)
	}
}

func TestArchive_Close(t *testing.T) {
	t.Parallel()

	raw := buildPBO(t, nil, []fixtureEntry{{name: "a.txt", data: []byte("hello")}})
	a, err := NewArchive(streamfile.NewMemory("a.pbo", raw), ReaderOptions{})
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := a.OpenEntry("a.txt"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}

	var nilArchive *Archive
	if _, err := nilArchive.OpenEntry("a.txt"); !errors.Is(err, ErrNilArchive) {
		t.Fatalf("expected ErrNilArchive, got %v", err)
	}
}
