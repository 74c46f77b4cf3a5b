package media

import (
	"strings"
	"testing"
)

func TestIsSupportedExtIsCaseInsensitive(t *testing.T) {
	for _, ext := range []string{".mp3", ".WAV", ".Flac", ".ogg"} {
		if !IsSupportedExt(ext) {
			t.Fatalf("expected %s to be supported", ext)
		}
	}
	for _, ext := range []string{".aac", ".m4a", ".txt", ""} {
		if IsSupportedExt(ext) {
			t.Fatalf("expected %s to be unsupported", ext)
		}
	}
}

func TestSupportedExtsListMatchesTable(t *testing.T) {
	list := SupportedExtsList()
	for ext := range audioExts {
		if !strings.Contains(list, ext) {
			t.Fatalf("expected supported ext list to include %s, got %q", ext, list)
		}
	}
}

func TestImageMIME(t *testing.T) {
	cases := map[string]string{
		"cover.JPG":    "image/jpeg",
		"/a/b/art.png": "image/png",
		"x.webp":       "image/webp",
		"notes.txt":    "",
	}
	for path, want := range cases {
		if got := ImageMIME(path); got != want {
			t.Fatalf("ImageMIME(%q) = %q, want %q", path, got, want)
		}
	}
	if !IsImageExt(".jpeg") || IsImageExt(".gif") {
		t.Fatal("unexpected IsImageExt result")
	}
}
