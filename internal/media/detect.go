package media

import (
	"path/filepath"
	"strings"
)

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
}

var imageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// IsSupportedExt returns true if the extension is a playable audio format.
func IsSupportedExt(ext string) bool {
	return audioExts[strings.ToLower(ext)]
}

// IsImageExt returns true if the extension is a decodable artwork image.
func IsImageExt(ext string) bool {
	_, ok := imageExts[strings.ToLower(ext)]
	return ok
}

// ImageMIME returns the MIME type for an artwork file, or "".
func ImageMIME(path string) string {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// SupportedExtsList returns a human-readable list of playable formats.
func SupportedExtsList() string {
	return ".mp3, .wav, .flac, .ogg"
}
