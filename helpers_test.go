package streamfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// countingSource records reads forwarded to a memory source.
type countingSource struct {
	*MemorySource
	reads   int
	offsets []int64
}

func newCounting(name string, data []byte) *countingSource {
	return &countingSource{MemorySource: NewMemory(name, data)}
}

func (cs *countingSource) ReadAt(p []byte, off int64) (int, error) {
	cs.reads++
	cs.offsets = append(cs.offsets, off)
	return cs.MemorySource.ReadAt(p, off)
}

// closeTracker reports whether Close reached it.
type closeTracker struct {
	*MemorySource
	closes int
}

func (ct *closeTracker) Close() error {
	ct.closes++
	return ct.MemorySource.Close()
}

// pattern returns n bytes where each byte is its offset modulo 251.
func pattern(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i % 251)
	}

	return out
}

// writeFile stores data in a temp dir under name and returns the path.
func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}

	return path
}

// readAll reads the full view of sf through ReadAt.
func readAll(t *testing.T, sf Source) []byte {
	t.Helper()

	out := make([]byte, sf.Size())
	n, err := sf.ReadAt(out, 0)
	if n != len(out) {
		t.Fatalf("ReadAt full view of %s: n=%d of %d: %v", sf.Name(), n, len(out), err)
	}

	return out
}

// mustEqual fails when got differs from want.
func mustEqual(t *testing.T, what string, got, want []byte) {
	t.Helper()

	if !bytes.Equal(got, want) {
		t.Fatalf("%s mismatch: got %d bytes %x..., want %d bytes %x...", what, len(got), head(got), len(want), head(want))
	}
}

func head(p []byte) []byte {
	if len(p) > 16 {
		return p[:16]
	}

	return p
}
