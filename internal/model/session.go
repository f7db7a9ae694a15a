package model

// Mode is the viewer's role context.
type Mode string

const (
	// ModeWork browses jobs posted by others.
	ModeWork Mode = "work"
	// ModeHire manages the viewer's own postings.
	ModeHire Mode = "hire"
)

// Valid reports whether m is work or hire.
func (m Mode) Valid() bool {
	return m == ModeWork || m == ModeHire
}

// Viewer is the identity of the user making a request.
type Viewer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Session is the per-viewer UI state held by the server.
type Session struct {
	ViewerID             string        `json:"viewerId"`
	Location             Coordinate    `json:"location"`
	Mode                 Mode          `json:"mode"`
	ActiveConversationID string        `json:"activeConversationId,omitempty"`
	ActiveConversation   *Conversation `json:"activeConversation,omitempty"`
}

// SetModeRequest is the request to switch modes.
type SetModeRequest struct {
	Mode Mode `json:"mode"`
}
