package model

import (
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type MediaKind string

const (
	KindDocument MediaKind = "document"
	KindVideo    MediaKind = "video"
	KindAudio    MediaKind = "audio"
	KindPhoto    MediaKind = "photo"
)

func (k MediaKind) Valid() bool {
	switch k {
	case KindDocument, KindVideo, KindAudio, KindPhoto:
		return true
	}

	return false
}

// DeriveFormat turns whatever Telegram told us about a file into a short
// format label like "mp4" or "pdf". The MIME type wins over the file name,
// and if neither is usable we fall back to a per-kind default.
func DeriveFormat(kind MediaKind, mimeType, fileName string) string {
	if mimeType != "" {
		if m := mimetype.Lookup(mimeType); m != nil && m.Extension() != "" {
			return strings.TrimPrefix(m.Extension(), ".")
		}
	}

	if ext := strings.TrimPrefix(path.Ext(fileName), "."); ext != "" {
		return strings.ToLower(ext)
	}

	switch kind {
	case KindVideo:
		return "mp4"
	case KindAudio:
		return "mp3"
	case KindPhoto:
		return "jpg"
	}

	return string(kind)
}
