// Package chat is the single write and fan-out path for messages. Every
// message, whether it arrives over REST or the realtime channel and whether
// it is text or an uploaded file, is persisted, re-read with its sender's
// name and only then broadcast.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"

	"charla/server/internal/apperr"
	"charla/server/internal/blob"
	"charla/server/internal/models"
)

// Event names shared by the realtime channel and the event publisher.
const (
	EventDirectMessage = "direct-message"
	EventGroupMessage  = "group-message"
)

// MessageStore is the persistence contract the router writes through.
type MessageStore interface {
	InsertDirect(ctx context.Context, senderID, recipientID int64, content string, kind models.Kind) (int64, error)
	InsertGroup(ctx context.Context, senderID, groupID int64, content string, kind models.Kind) (int64, error)
	FetchEnriched(ctx context.Context, messageID int64) (*models.EnrichedMessage, error)
}

// Broadcaster delivers records to every live connection.
type Broadcaster interface {
	BroadcastDirect(msg *models.EnrichedMessage)
	BroadcastGroup(msg *models.EnrichedMessage)
}

// Publisher receives a copy of every delivered message.
type Publisher interface {
	Publish(ctx context.Context, event string, msg *models.EnrichedMessage) error
}

// Router persists and fans out messages.
type Router struct {
	store       MessageStore
	blobs       blob.Store
	broadcaster Broadcaster
	publisher   Publisher
}

// NewRouter creates a Router. publisher may be nil.
func NewRouter(store MessageStore, blobs blob.Store, broadcaster Broadcaster, publisher Publisher) *Router {
	return &Router{
		store:       store,
		blobs:       blobs,
		broadcaster: broadcaster,
		publisher:   publisher,
	}
}

// Dispatch validates req and routes it to the matching send operation.
func (r *Router) Dispatch(ctx context.Context, req Request) (*models.EnrichedMessage, error) {
	switch req := req.(type) {
	case DirectSend:
		return r.SendDirect(ctx, req)
	case GroupSend:
		return r.SendGroup(ctx, req)
	case Upload:
		return r.UploadAndSend(ctx, req)
	default:
		return nil, apperr.Validation("unsupported request %T", req)
	}
}

// SendDirect persists a direct message and broadcasts it as a
// direct-message event.
func (r *Router) SendDirect(ctx context.Context, req DirectSend) (*models.EnrichedMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	kind, _ := models.ParseKind(string(req.Kind))

	// an accepted send completes even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	id, err := r.store.InsertDirect(ctx, req.From.UserID, req.To, req.Content, kind)
	if err != nil {
		return nil, apperr.Classify("insert direct message", err)
	}
	return r.deliver(ctx, id)
}

// SendGroup persists a group message and broadcasts it as a group-message
// event. Membership of the sender is not checked.
func (r *Router) SendGroup(ctx context.Context, req GroupSend) (*models.EnrichedMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	kind, _ := models.ParseKind(string(req.Kind))

	ctx = context.WithoutCancel(ctx)

	id, err := r.store.InsertGroup(ctx, req.From.UserID, req.Group, req.Content, kind)
	if err != nil {
		return nil, apperr.Classify("insert group message", err)
	}
	return r.deliver(ctx, id)
}

// UploadAndSend stores the file, derives the kind from its extension and
// sends the blob reference through the direct or group path.
func (r *Router) UploadAndSend(ctx context.Context, req Upload) (*models.EnrichedMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)

	ref, err := r.blobs.Put(ctx, req.Filename, req.File, req.Size)
	if err != nil {
		log.Printf("Failed to store upload %q from user %d: %v", req.Filename, req.From.UserID, err)
		return nil, apperr.Persistence("store upload", err)
	}

	kind := KindFromFilename(req.Filename)
	if req.Group > 0 {
		return r.SendGroup(ctx, GroupSend{From: req.From, Group: req.Group, Content: ref, Kind: kind})
	}
	return r.SendDirect(ctx, DirectSend{From: req.From, To: req.To, Content: ref, Kind: kind})
}

// deliver reads back the persisted row with its sender name and emits it as
// a group-message or direct-message event depending on the stored row.
func (r *Router) deliver(ctx context.Context, id int64) (*models.EnrichedMessage, error) {
	msg, err := r.store.FetchEnriched(ctx, id)
	if err != nil {
		log.Printf("Message %d was stored but could not be read back: %v", id, err)
		if errors.Is(err, apperr.ErrResourceExhausted) {
			return nil, err
		}
		return nil, apperr.Persistence(fmt.Sprintf("read back message %d", id), err)
	}

	event := EventDirectMessage
	if msg.IsGroup() {
		event = EventGroupMessage
		r.broadcaster.BroadcastGroup(msg)
	} else {
		r.broadcaster.BroadcastDirect(msg)
	}

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, event, msg); err != nil {
			log.Printf("Failed to publish %s %d: %v", event, msg.ID, err)
		}
	}

	return msg, nil
}
