package chat

import (
	"io"
	"strings"

	"charla/server/internal/apperr"
	"charla/server/internal/models"
)

// Identity is the user a request claims to act as. It is supplied by the
// client and is not authenticated.
type Identity struct {
	UserID int64
}

// Request is one of DirectSend, GroupSend or Upload.
type Request interface {
	Validate() error
	isRequest()
}

// DirectSend sends a message to one user.
type DirectSend struct {
	From    Identity
	To      int64
	Content string
	Kind    models.Kind
}

// GroupSend sends a message to a group.
type GroupSend struct {
	From    Identity
	Group   int64
	Content string
	Kind    models.Kind
}

// Upload stores a file and sends a reference to it. Exactly one of To and
// Group is set.
type Upload struct {
	From     Identity
	To       int64
	Group    int64
	Filename string
	File     io.Reader
	Size     int64
}

func (DirectSend) isRequest() {}
func (GroupSend) isRequest()  {}
func (Upload) isRequest()     {}

func (r DirectSend) Validate() error {
	if r.From.UserID <= 0 {
		return apperr.Validation("sender is required")
	}
	if r.To <= 0 {
		return apperr.Validation("recipient is required")
	}
	return validateContent(r.Content, r.Kind)
}

func (r GroupSend) Validate() error {
	if r.From.UserID <= 0 {
		return apperr.Validation("sender is required")
	}
	if r.Group <= 0 {
		return apperr.Validation("group is required")
	}
	return validateContent(r.Content, r.Kind)
}

func (r Upload) Validate() error {
	if r.File == nil || r.Size <= 0 {
		return apperr.Upload("No file uploaded")
	}
	if r.From.UserID <= 0 {
		return apperr.Validation("sender is required")
	}
	return validateTarget(r.To, r.Group)
}

func validateContent(content string, kind models.Kind) error {
	if strings.TrimSpace(content) == "" {
		return apperr.Validation("content is required")
	}
	if _, ok := models.ParseKind(string(kind)); !ok {
		return apperr.Validation("unknown message kind %q", kind)
	}
	return nil
}

func validateTarget(to, group int64) error {
	switch {
	case to > 0 && group > 0:
		return apperr.Validation("a message goes to either a recipient or a group, not both")
	case to <= 0 && group <= 0:
		return apperr.Validation("recipient or group is required")
	}
	return nil
}
