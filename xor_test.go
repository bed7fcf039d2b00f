package streamfile

import (
	"errors"
	"testing"
)

func TestXORDecryptor_RoundTrip(t *testing.T) {
	t.Parallel()

	plain := pattern(0x300)
	key := []byte{0x13, 0x37, 0xC0, 0xDE, 0x42}
	enc := append([]byte(nil), plain...)
	XORBytes(enc, 0, key)

	d, err := NewXORDecryptor(NewMemory("a.bin", enc), key)
	if err != nil {
		t.Fatalf("NewXORDecryptor: %v", err)
	}
	defer func() { _ = d.Close() }()

	mustEqual(t, "full", readAll(t, d), plain)

	// key phase follows absolute offset
	for _, off := range []int64{1, 4, 5, 0x101, 0x2FF} {
		buf := make([]byte, min(0x20, int64(len(plain))-off))
		if _, err := d.ReadAt(buf, off); err != nil {
			t.Fatalf("ReadAt(0x%x): %v", off, err)
		}
		mustEqual(t, "partial", buf, plain[off:off+int64(len(buf))])
	}
}

func TestXORBytes_Involution(t *testing.T) {
	t.Parallel()

	data := pattern(100)
	buf := append([]byte(nil), data...)
	XORBytes(buf, 7, []byte("key"))
	XORBytes(buf, 7, []byte("key"))
	mustEqual(t, "twice", buf, data)

	XORBytes(buf, 0, nil)
	mustEqual(t, "empty key", buf, data)
}

func TestXORRegion(t *testing.T) {
	t.Parallel()

	plain := pattern(0x80)
	key := []byte{0xAA, 0x55}
	enc := append([]byte(nil), plain...)
	XORBytes(enc[0x10:0x30], 0x10, key)

	d, err := NewXORRegion(NewMemory("a.bin", enc), XORConfig{Key: key, Start: 0x10, Size: 0x20})
	if err != nil {
		t.Fatalf("NewXORRegion: %v", err)
	}
	defer func() { _ = d.Close() }()

	mustEqual(t, "region", readAll(t, d), plain)

	buf := make([]byte, 0x10)
	if _, err := d.ReadAt(buf, 0x28); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	mustEqual(t, "region edge", buf, plain[0x28:0x38])
}

func TestXORDecryptor_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewXORDecryptor(NewMemory("a", nil), nil); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("empty key err=%v, want ErrInvalidKey", err)
	}
	if _, err := NewXORRegion(NewMemory("a", nil), XORConfig{Key: []byte{1}, Start: -1}); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("negative start err=%v, want ErrInvalidRange", err)
	}
	if _, err := NewXORDecryptor(nil, []byte{1}); !errors.Is(err, ErrNilSource) {
		t.Fatalf("nil err=%v, want ErrNilSource", err)
	}
}

func TestXORDecryptor_KeyCopied(t *testing.T) {
	t.Parallel()

	key := []byte{0x01}
	d, err := NewXORDecryptor(NewMemory("a", []byte{0x01, 0x01}), key)
	if err != nil {
		t.Fatalf("NewXORDecryptor: %v", err)
	}
	defer func() { _ = d.Close() }()

	key[0] = 0xFF
	mustEqual(t, "decrypted", readAll(t, d), []byte{0, 0})
}
