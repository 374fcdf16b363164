package models

import "strings"

// Kind is the content type of a message.
type Kind string

const (
	KindText     Kind = "text"
	KindImage    Kind = "image"
	KindAudio    Kind = "audio"
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
	KindOther    Kind = "other"
)

// legacy client spellings
var kindAliases = map[string]Kind{
	"texto":     KindText,
	"imagen":    KindImage,
	"documento": KindDocument,
	"otro":      KindOther,
}

// ParseKind normalizes a client supplied kind. An empty value means text.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return KindText, true
	}
	switch k := Kind(s); k {
	case KindText, KindImage, KindAudio, KindVideo, KindDocument, KindOther:
		return k, true
	}
	k, ok := kindAliases[s]
	return k, ok
}
