// Package blob stores uploaded file content and hands back a stable
// reference path under the uploads namespace.
package blob

import (
	"context"
	"io"
	"path"
	"strings"
)

// PublicPrefix is the URL namespace every blob reference lives under.
const PublicPrefix = "/uploads"

// Store persists binary content.
type Store interface {
	// Put stores size bytes read from r and returns the reference path
	// ("/uploads/<name>") for a file originally called filename.
	Put(ctx context.Context, filename string, r io.Reader, size int64) (string, error)
}

func publicRef(name string) string {
	return path.Join(PublicPrefix, name)
}

// contentType returns the MIME type for a lower-case extension without the dot
func contentType(ext string) string {
	switch strings.ToLower(ext) {
	case "jpg", "jpeg", "jfif":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "mp4":
		return "video/mp4"
	case "avi":
		return "video/x-msvideo"
	case "mov":
		return "video/quicktime"
	case "mp3":
		return "audio/mpeg"
	case "wav":
		return "audio/wav"
	case "ogg":
		return "audio/ogg"
	case "pdf":
		return "application/pdf"
	case "doc":
		return "application/msword"
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "ppt":
		return "application/vnd.ms-powerpoint"
	case "pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case "xls":
		return "application/vnd.ms-excel"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
