package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/neighborjob/marketplace/internal/model"
)

const (
	// ConversationIDPrefix is prepended to a job id to form its
	// conversation id.
	ConversationIDPrefix = "c_"

	// SeedMessageID identifies the opening message of every conversation.
	SeedMessageID = "init"

	// PlaceholderLastMessage is the lastMessage of a fresh conversation. It
	// intentionally differs from the seeded message text.
	PlaceholderLastMessage = "Interested in the job."
)

// ConversationID returns the conversation id for a job.
func ConversationID(jobID string) string {
	return ConversationIDPrefix + jobID
}

// SeedMessageText is the opening line a seeker sends on a new thread.
func SeedMessageText(jobTitle string) string {
	return fmt.Sprintf("Hi! Thanks for showing interest in \"%s\". When can you start?", jobTitle)
}

// ConversationStore keeps at most one conversation per job, newest first.
//
// Pointers handed out by FindByJob, GetOrCreate and AppendMessage are live:
// later appends are visible through them. Use Get or ListFor for copies
// that are safe to read while other goroutines write.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations []*model.Conversation
	now           func() time.Time
	newID         func() string
}

// NewConversationStore creates an empty store. A nil now uses time.Now.
func NewConversationStore(now func() time.Time) *ConversationStore {
	if now == nil {
		now = time.Now
	}
	return &ConversationStore{
		now:   now,
		newID: func() string { return uuid.Must(uuid.NewV7()).String() },
	}
}

// FindByJob returns the conversation attached to jobID.
func (s *ConversationStore) FindByJob(jobID string) (*model.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findByJobLocked(jobID)
}

func (s *ConversationStore) findByJobLocked(jobID string) (*model.Conversation, bool) {
	for _, c := range s.conversations {
		if c.JobID == jobID {
			return c, true
		}
	}
	return nil, false
}

func (s *ConversationStore) findLocked(id string) (*model.Conversation, bool) {
	for _, c := range s.conversations {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// GetOrCreate returns the conversation for job, creating it when none
// exists, and records viewerID as a member. The created flag reports which
// path was taken. The messages of an existing conversation are untouched.
func (s *ConversationStore) GetOrCreate(job model.Job, viewerID string) (conv *model.Conversation, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.findByJobLocked(job.ID); ok {
		addMember(existing, viewerID)
		return existing, false
	}

	conv = &model.Conversation{
		ID:                ConversationID(job.ID),
		JobID:             job.ID,
		JobTitle:          job.Title,
		ParticipantID:     job.SeekerID,
		ParticipantName:   job.SeekerName,
		ParticipantAvatar: job.SeekerAvatar,
		InitiatorID:       viewerID,
		Messages: []model.ChatMessage{
			{
				ID:        SeedMessageID,
				SenderID:  job.SeekerID,
				Text:      SeedMessageText(job.Title),
				Timestamp: s.now().UnixMilli(),
			},
		},
		LastMessage: PlaceholderLastMessage,
	}
	addMember(conv, viewerID)

	s.conversations = append([]*model.Conversation{conv}, s.conversations...)

	return conv, true
}

// AppendMessage adds a message from senderID to the conversation and
// updates its lastMessage.
func (s *ConversationStore) AppendMessage(conversationID, senderID, text string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.findLocked(conversationID)
	if !ok {
		return nil, fmt.Errorf("conversation %q: %w", conversationID, ErrNotFound)
	}

	conv.Messages = append(conv.Messages, model.ChatMessage{
		ID:        s.newID(),
		SenderID:  senderID,
		Text:      text,
		Timestamp: s.now().UnixMilli(),
	})
	conv.LastMessage = text
	addMember(conv, senderID)

	return conv, nil
}

func addMember(conv *model.Conversation, viewerID string) {
	if viewerID == "" || conv.HasMember(viewerID) {
		return
	}
	conv.MemberIDs = append(conv.MemberIDs, viewerID)
}

// Get returns a copy of the conversation with the given id.
func (s *ConversationStore) Get(id string) (model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.findLocked(id)
	if !ok {
		return model.Conversation{}, fmt.Errorf("conversation %q: %w", id, ErrNotFound)
	}
	return conv.Clone(), nil
}

// ListFor returns copies of the conversations viewerID takes part in,
// newest first.
func (s *ConversationStore) ListFor(viewerID string) []model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		if c.HasMember(viewerID) {
			out = append(out, c.Clone())
		}
	}
	return out
}
