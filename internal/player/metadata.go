package player

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
)

// Metadata holds song information and embedded cover art.
type Metadata struct {
	Title       string
	Artist      string
	Album       string
	Artwork     []byte
	ArtworkMIME string
}

// HasArtwork reports whether cover art was found.
func (m Metadata) HasArtwork() bool { return len(m.Artwork) > 0 }

// ReadMetadata reads tags and cover art. ID3v2 is tried first for MP3s,
// dhowden/tag covers FLAC/OGG and anything id3v2 misses, and the filename is
// the title of last resort.
func ReadMetadata(path string) Metadata {
	var m Metadata
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		m = readID3(path)
	}
	if m.Title == "" || !m.HasArtwork() {
		m = merge(m, readGeneric(path))
	}
	if m.Title == "" {
		base := filepath.Base(path)
		m.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return m
}

func readID3(path string) Metadata {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Metadata{}
	}
	defer t.Close()

	m := Metadata{
		Title:  strings.TrimSpace(t.Title()),
		Artist: strings.TrimSpace(t.Artist()),
		Album:  strings.TrimSpace(t.Album()),
	}
	pics := t.GetFrames(t.CommonID("Attached picture"))
	var fallback *id3v2.PictureFrame
	for _, f := range pics {
		pic, ok := f.(id3v2.PictureFrame)
		if !ok || len(pic.Picture) == 0 {
			continue
		}
		if pic.PictureType == id3v2.PTFrontCover {
			m.Artwork, m.ArtworkMIME = pic.Picture, pic.MimeType
			return m
		}
		if fallback == nil {
			fallback = &pic
		}
	}
	if fallback != nil {
		m.Artwork, m.ArtworkMIME = fallback.Picture, fallback.MimeType
	}
	return m
}

func readGeneric(path string) Metadata {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}
	}
	defer f.Close()

	t, err := tag.ReadFrom(f)
	if err != nil {
		return Metadata{}
	}
	m := Metadata{
		Title:  strings.TrimSpace(t.Title()),
		Artist: strings.TrimSpace(t.Artist()),
		Album:  strings.TrimSpace(t.Album()),
	}
	if pic := t.Picture(); pic != nil && len(pic.Data) > 0 {
		m.Artwork = bytes.Clone(pic.Data)
		m.ArtworkMIME = pic.MIMEType
	}
	return m
}

// merge fills empty fields of a from b.
func merge(a, b Metadata) Metadata {
	if a.Title == "" {
		a.Title = b.Title
	}
	if a.Artist == "" {
		a.Artist = b.Artist
	}
	if a.Album == "" {
		a.Album = b.Album
	}
	if !a.HasArtwork() {
		a.Artwork, a.ArtworkMIME = b.Artwork, b.ArtworkMIME
	}
	return a
}
