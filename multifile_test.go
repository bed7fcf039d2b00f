package streamfile

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestMulti_SpanningRead(t *testing.T) {
	t.Parallel()

	a := bytes.Repeat([]byte{0xA}, 0x100)
	b := bytes.Repeat([]byte{0xB}, 0x200)
	c := bytes.Repeat([]byte{0xC}, 0x100)
	ms, err := NewMulti([]Source{NewMemory("a.bin", a), NewMemory("b.bin", b), NewMemory("c.bin", c)})
	if err != nil {
		t.Fatalf("NewMulti: %v", err)
	}
	defer func() { _ = ms.Close() }()

	if ms.Size() != 0x400 || ms.Name() != "a.bin" {
		t.Fatalf("Size=0x%x Name=%q", ms.Size(), ms.Name())
	}

	buf := make([]byte, 0x2B0)
	if _, err := ms.ReadAt(buf, 0x80); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}

	want := append(append(append([]byte{}, a[0x80:]...), b...), c[:0x30]...)
	mustEqual(t, "three segments", buf, want)

	// 0x250 bytes at 0x80 end inside the second segment
	if _, err := ms.ReadAt(buf[:0x250], 0x80); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	mustEqual(t, "two segments", buf[:0x250], want[:0x250])

	n, err := ms.ReadAt(buf, 0x3F0)
	if n != 0x10 || !errors.Is(err, io.EOF) {
		t.Fatalf("tail n=0x%x err=%v", n, err)
	}
}

func TestMulti_OwnershipAndReopen(t *testing.T) {
	t.Parallel()

	a := &closeTracker{MemorySource: NewMemory("a.bin", pattern(8))}
	b := &closeTracker{MemorySource: NewMemory("b.bin", pattern(8))}
	ms, err := NewMulti([]Source{a, b})
	if err != nil {
		t.Fatalf("NewMulti: %v", err)
	}

	self, err := ms.Open("a.bin", 0)
	if err != nil {
		t.Fatalf("Open self: %v", err)
	}
	if self.Size() != 16 {
		t.Fatalf("reopen Size=%d, want 16", self.Size())
	}
	_ = self.Close()

	if err := ms.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if a.closes != 1 || b.closes != 1 {
		t.Fatalf("closes a=%d b=%d, want 1 each", a.closes, b.closes)
	}
}

func TestMulti_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewMulti(nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("empty: err=%v", err)
	}
	if _, err := NewMulti([]Source{NewMemory("a", nil), nil}); !errors.Is(err, ErrNilSource) {
		t.Fatalf("nil segment: err=%v", err)
	}
}
