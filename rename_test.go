package streamfile

import (
	"errors"
	"testing"
)

func TestRename_NameAndReopen(t *testing.T) {
	t.Parallel()

	m := NewMemoryFS(nil)
	m.Add("dir/bank.bin", pattern(64))
	m.Add("dir/bank.txth", []byte("codec = PCM16LE"))
	inner, _ := m.Open("dir/bank.bin", 0)

	rs, err := NewRenameExt(inner, "ogg")
	if err != nil {
		t.Fatalf("NewRenameExt: %v", err)
	}
	defer func() { _ = rs.Close() }()

	if rs.Name() != "dir/bank.ogg" {
		t.Fatalf("Name=%q, want dir/bank.ogg", rs.Name())
	}
	if !CheckExtensions(rs, "wav,ogg") {
		t.Fatal("renamed extension must drive dispatch")
	}

	self, err := rs.Open("dir/bank.ogg", 0)
	if err != nil {
		t.Fatalf("Open fake name: %v", err)
	}
	if self.Name() != "dir/bank.ogg" || self.Size() != 64 {
		t.Fatalf("reopen Name=%q Size=%d", self.Name(), self.Size())
	}

	txth, err := OpenByExtension(rs, "txth")
	if err != nil {
		t.Fatalf("companion through rename: %v", err)
	}
	if txth.Size() != int64(len("codec = PCM16LE")) {
		t.Fatalf("companion Size=%d", txth.Size())
	}
}

func TestRename_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewRename(nil, "x"); !errors.Is(err, ErrNilSource) {
		t.Fatalf("nil inner: err=%v", err)
	}
	if _, err := NewRename(NewMemory("a", nil), ""); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("empty name: err=%v", err)
	}
	if _, err := NewRename(NewMemory("a", nil), string(make([]byte, PathLimit+1))); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("long name: err=%v", err)
	}
}
