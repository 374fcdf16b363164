package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"charla/server/internal/models"
)

// memStore is an in-memory MessageStore with an optional simulated outage.
type memStore struct {
	mu       sync.Mutex
	users    map[int64]string
	messages []models.Message
	down     bool
	ctxErrs  []error
}

func newMemStore() *memStore {
	return &memStore{users: map[int64]string{1: "Ana", 2: "Beto", 3: "Carla"}}
}

func (s *memStore) insert(ctx context.Context, msg models.Message) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	if s.down {
		return 0, errors.New("connection refused")
	}
	msg.ID = int64(len(s.messages) + 1)
	msg.Timestamp = time.Now()
	s.messages = append(s.messages, msg)
	return msg.ID, nil
}

func (s *memStore) InsertDirect(ctx context.Context, senderID, recipientID int64, content string, kind models.Kind) (int64, error) {
	return s.insert(ctx, models.Message{SenderID: senderID, RecipientID: &recipientID, Content: content, Kind: kind})
}

func (s *memStore) InsertGroup(ctx context.Context, senderID, groupID int64, content string, kind models.Kind) (int64, error) {
	return s.insert(ctx, models.Message{SenderID: senderID, GroupID: &groupID, Content: content, Kind: kind})
}

func (s *memStore) FetchEnriched(_ context.Context, id int64) (*models.EnrichedMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.messages {
		if m.ID == id {
			return &models.EnrichedMessage{Message: m, SenderName: s.users[m.SenderID]}, nil
		}
	}
	return nil, fmt.Errorf("message %d missing", id)
}

func (s *memStore) directHistory(a, b int64) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Message
	for _, m := range s.messages {
		if m.RecipientID == nil {
			continue
		}
		if (m.SenderID == a && *m.RecipientID == b) || (m.SenderID == b && *m.RecipientID == a) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

type recordedEvent struct {
	event string
	msg   *models.EnrichedMessage
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordingBroadcaster) BroadcastDirect(msg *models.EnrichedMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{EventDirectMessage, msg})
}

func (b *recordingBroadcaster) BroadcastGroup(msg *models.EnrichedMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{EventGroupMessage, msg})
}

type memBlobs struct {
	names []string
	data  []string
	err   error
}

func (b *memBlobs) Put(_ context.Context, filename string, r io.Reader, _ int64) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.names = append(b.names, filename)
	b.data = append(b.data, string(data))
	return "/uploads/1700000000000-abcd1234-" + filename, nil
}

type recordingPublisher struct {
	events []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event string, _ *models.EnrichedMessage) error {
	p.events = append(p.events, event)
	return p.err
}
