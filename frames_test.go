package streamfile

import (
	"encoding/binary"
	"errors"
	"testing"
)

// opusFrame builds a frame with a big-endian payload length and a 4-byte final range.
func opusFrame(payload []byte) []byte {
	out := make([]byte, 8, 8+len(payload))
	binary.BigEndian.PutUint32(out, uint32(len(payload))) //nolint:gosec // test sizes
	return append(out, payload...)
}

func TestFrameDeinterleaver_RoundRobin(t *testing.T) {
	t.Parallel()

	s0 := [][]byte{opusFrame([]byte("aaaa")), opusFrame([]byte("bb")), opusFrame([]byte("c"))}
	s1 := [][]byte{opusFrame([]byte("xxxxxx")), opusFrame([]byte("yyy")), opusFrame([]byte("zzzzzzzz"))}

	var raw []byte
	for i := range s0 {
		raw = append(raw, s0[i]...)
		raw = append(raw, s1[i]...)
	}

	testCases := []struct {
		stream int
		want   []byte
	}{
		{stream: 0, want: join(s0...)},
		{stream: 1, want: join(s1...)},
	}

	for _, tc := range testCases {
		d, err := NewFrameDeinterleaver(NewMemory("a.opus", raw), FrameConfig{Streams: 2, Stream: tc.stream})
		if err != nil {
			t.Fatalf("NewFrameDeinterleaver(%d): %v", tc.stream, err)
		}

		if d.Size() != int64(len(tc.want)) {
			t.Fatalf("stream %d Size=%d, want %d", tc.stream, d.Size(), len(tc.want))
		}
		mustEqual(t, "stream", readAll(t, d), tc.want)

		// forward then backward partial reads
		late := make([]byte, 5)
		if _, err := d.ReadAt(late, int64(len(tc.want)-5)); err != nil {
			t.Fatalf("late ReadAt: %v", err)
		}
		mustEqual(t, "late", late, tc.want[len(tc.want)-5:])

		early := make([]byte, 6)
		if _, err := d.ReadAt(early, 3); err != nil {
			t.Fatalf("early ReadAt: %v", err)
		}
		mustEqual(t, "early after restart", early, tc.want[3:9])
		_ = d.Close()
	}
}

func TestFrameDeinterleaver_SwitchHeader(t *testing.T) {
	t.Parallel()

	header := make([]byte, 0x20)
	binary.BigEndian.PutUint32(header, 0x01000080)
	binary.LittleEndian.PutUint32(header[0x10:], 0x18)

	frame := opusFrame([]byte("payload"))
	raw := join(header, frame)

	d, err := NewFrameDeinterleaver(NewMemory("a.lopus", raw), FrameConfig{Streams: 1})
	if err != nil {
		t.Fatalf("NewFrameDeinterleaver: %v", err)
	}
	defer func() { _ = d.Close() }()

	mustEqual(t, "stream", readAll(t, d), raw)
}

func TestFrameDeinterleaver_FramePastEnd(t *testing.T) {
	t.Parallel()

	raw := join(opusFrame([]byte("ok")), opusFrame(make([]byte, 0x40))[:0x10])
	d, err := NewFrameDeinterleaver(NewMemory("a.opus", raw), FrameConfig{Streams: 1})
	if err != nil {
		t.Fatalf("NewFrameDeinterleaver: %v", err)
	}
	defer func() { _ = d.Close() }()

	if d.Size() != 10 {
		t.Fatalf("Size=%d, want 10", d.Size())
	}
	mustEqual(t, "whole frames", readAll(t, d), raw[:10])
}

func TestFrameDeinterleaver_InvalidConfig(t *testing.T) {
	t.Parallel()

	for _, cfg := range []FrameConfig{
		{},
		{Streams: 2, Stream: 2},
		{Streams: 1, StreamStart: 0x100},
	} {
		if _, err := NewFrameDeinterleaver(NewMemory("a", pattern(0x10)), cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%+v: err=%v, want ErrInvalidConfig", cfg, err)
		}
	}
}
