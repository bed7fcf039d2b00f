package streamfile

import "testing"

func TestPathHelpers(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name                        string
		in                          string
		file, dir, ext, base, swapd string
	}{
		{name: "plain", in: "song.adx", file: "song.adx", dir: "", ext: "adx", base: "song", swapd: "song.ogg"},
		{name: "slash", in: "music/bgm/song.adx", file: "song.adx", dir: "music/bgm/", ext: "adx", base: "song", swapd: "music/bgm/song.ogg"},
		{name: "backslash", in: `C:\bgm\song.hca`, file: "song.hca", dir: `C:\bgm\`, ext: "hca", base: "song", swapd: `C:\bgm\song.ogg`},
		{name: "no ext", in: "dir.v2/track", file: "track", dir: "dir.v2/", ext: "", base: "track", swapd: "dir.v2/track.ogg"},
		{name: "double ext", in: "a.tar.gz", file: "a.tar.gz", dir: "", ext: "gz", base: "a.tar", swapd: "a.tar.ogg"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := Filename(tc.in); got != tc.file {
				t.Fatalf("Filename=%q, want %q", got, tc.file)
			}
			if got := Dir(tc.in); got != tc.dir {
				t.Fatalf("Dir=%q, want %q", got, tc.dir)
			}
			if got := Ext(tc.in); got != tc.ext {
				t.Fatalf("Ext=%q, want %q", got, tc.ext)
			}
			if got := Basename(tc.in); got != tc.base {
				t.Fatalf("Basename=%q, want %q", got, tc.base)
			}
			if got := SwapExtension(tc.in, "ogg"); got != tc.swapd {
				t.Fatalf("SwapExtension=%q, want %q", got, tc.swapd)
			}
		})
	}
}

func TestSwapExtension_Remove(t *testing.T) {
	t.Parallel()

	if got := SwapExtension("a/b.wav", ""); got != "a/b" {
		t.Fatalf("got %q, want a/b", got)
	}
	if got := SwapExtension("a/b", ""); got != "a/b" {
		t.Fatalf("got %q, want a/b", got)
	}
}

func TestHasExtension(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		exts string
		want bool
	}{
		{name: "x.ADX", exts: "adx,hca", want: true},
		{name: "x.hca", exts: "adx,hca", want: true},
		{name: "x.ogg", exts: "adx,hca", want: false},
		{name: "noext", exts: "adx,", want: true},
		{name: "noext", exts: "adx", want: false},
		{name: "x.adx", exts: "", want: false},
	}

	for _, tc := range testCases {
		if got := HasExtension(tc.name, tc.exts); got != tc.want {
			t.Fatalf("HasExtension(%q, %q)=%v, want %v", tc.name, tc.exts, got, tc.want)
		}
	}

	if CheckExtensions(nil, "adx") {
		t.Fatal("nil source must not match")
	}
}
