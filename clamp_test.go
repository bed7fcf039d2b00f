package streamfile

import (
	"errors"
	"io"
	"testing"
)

func TestClamp_Window(t *testing.T) {
	t.Parallel()

	data := pattern(0x1000)
	cs, err := NewClamp(NewMemory("a.bin", data), 0x100, 0x80)
	if err != nil {
		t.Fatalf("NewClamp: %v", err)
	}
	defer func() { _ = cs.Close() }()

	if cs.Size() != 0x80 {
		t.Fatalf("Size=0x%x, want 0x80", cs.Size())
	}
	mustEqual(t, "window", readAll(t, cs), data[0x100:0x180])

	buf := make([]byte, 0x20)
	n, err := cs.ReadAt(buf, 0x70)
	if n != 0x10 || !errors.Is(err, io.EOF) {
		t.Fatalf("clipped read n=0x%x err=%v", n, err)
	}
	mustEqual(t, "clipped", buf[:n], data[0x170:0x180])
}

func TestClamp_InvalidRange(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		start, size int64
	}{
		{name: "negative start", start: -1, size: 1},
		{name: "negative size", start: 0, size: -1},
		{name: "start past end", start: 0x11, size: 0},
		{name: "size past end", start: 8, size: 9},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			inner := NewMemory("a.bin", pattern(0x10))
			if _, err := NewClamp(inner, tc.start, tc.size); !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("err=%v, want ErrInvalidRange", err)
			}
			if _, err := inner.ReadAt(make([]byte, 1), 0); err != nil {
				t.Fatalf("failed constructor must leave inner open: %v", err)
			}
		})
	}
}

func TestClamp_OpenSelfReclamps(t *testing.T) {
	t.Parallel()

	m := NewMemoryFS(nil)
	m.Add("a.bin", pattern(0x100))
	m.Add("a.txt", []byte("side"))
	inner, _ := m.Open("a.bin", 0)

	cs, err := NewClamp(inner, 0x10, 0x20)
	if err != nil {
		t.Fatalf("NewClamp: %v", err)
	}
	defer func() { _ = cs.Close() }()

	self, err := cs.Open("a.bin", 0)
	if err != nil {
		t.Fatalf("Open self: %v", err)
	}
	if self.Size() != 0x20 {
		t.Fatalf("reopen Size=0x%x, want 0x20", self.Size())
	}
	mustEqual(t, "reopen", readAll(t, self), pattern(0x100)[0x10:0x30])

	side, err := cs.Open("a.txt", 0)
	if err != nil {
		t.Fatalf("Open companion: %v", err)
	}
	if side.Size() != 4 {
		t.Fatalf("companion must not be clamped: Size=%d", side.Size())
	}
}
