package model

// ChatMessage is a single message in a conversation. Immutable once created.
type ChatMessage struct {
	ID        string `json:"id"`
	SenderID  string `json:"senderId"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Conversation is the chat thread attached to a job.
type Conversation struct {
	ID                string        `json:"id"`
	JobID             string        `json:"jobId"`
	JobTitle          string        `json:"jobTitle"`
	ParticipantID     string        `json:"participantId"`
	ParticipantName   string        `json:"participantName"`
	ParticipantAvatar string        `json:"participantAvatar"`
	InitiatorID       string        `json:"initiatorId"`
	// MemberIDs lists every viewer who opened or wrote in the thread.
	MemberIDs         []string      `json:"memberIds"`
	Messages          []ChatMessage `json:"messages"`
	LastMessage       string        `json:"lastMessage,omitempty"`
}

// HasMember reports whether viewerID takes part in the conversation.
func (c *Conversation) HasMember(viewerID string) bool {
	if c.ParticipantID == viewerID {
		return true
	}
	for _, id := range c.MemberIDs {
		if id == viewerID {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no message storage with c.
func (c *Conversation) Clone() Conversation {
	out := *c
	out.Messages = make([]ChatMessage, len(c.Messages))
	copy(out.Messages, c.Messages)
	out.MemberIDs = append([]string(nil), c.MemberIDs...)
	return out
}

// SendMessageRequest is the request to send a message.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// ListConversationsResponse is the response for listing conversations.
type ListConversationsResponse struct {
	Conversations []Conversation `json:"conversations"`
	Total         int            `json:"total"`
}
