package chat

import (
	"charla/server/internal/models"
	"charla/server/internal/utils"
)

var extensionKinds = map[string]models.Kind{
	"jpg": models.KindImage, "jpeg": models.KindImage, "png": models.KindImage,
	"gif": models.KindImage, "webp": models.KindImage, "jfif": models.KindImage,

	"mp3": models.KindAudio, "wav": models.KindAudio, "ogg": models.KindAudio,

	"mp4": models.KindVideo, "avi": models.KindVideo, "mov": models.KindVideo,

	"pdf": models.KindDocument, "doc": models.KindDocument, "docx": models.KindDocument,
	"ppt": models.KindDocument, "pptx": models.KindDocument,
	"xls": models.KindDocument, "xlsx": models.KindDocument,
}

// KindFromFilename derives a blob's kind from its extension.
func KindFromFilename(filename string) models.Kind {
	if kind, ok := extensionKinds[utils.Extension(filename)]; ok {
		return kind
	}
	return models.KindOther
}
