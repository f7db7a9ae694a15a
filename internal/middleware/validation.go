package middleware

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	maxMessageLength     = 4000
	maxTitleLength       = 120
	maxDescriptionLength = 2000
	maxSearchLength      = 200
	maxIDLength          = 64
)

// ValidateMessageText validates chat message text.
func ValidateMessageText(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("text cannot be empty")
	}
	if len(text) > maxMessageLength {
		return errors.New("text exceeds maximum length")
	}
	if !utf8.ValidString(text) {
		return errors.New("text must be valid UTF-8")
	}
	return nil
}

// ValidateTitle validates a job title.
func ValidateTitle(title string) error {
	if len(title) > maxTitleLength {
		return errors.New("title exceeds maximum length")
	}
	if !utf8.ValidString(title) {
		return errors.New("title must be valid UTF-8")
	}
	return nil
}

// ValidateDescription validates a job description.
func ValidateDescription(description string) error {
	if len(description) > maxDescriptionLength {
		return errors.New("description exceeds maximum length")
	}
	if !utf8.ValidString(description) {
		return errors.New("description must be valid UTF-8")
	}
	return nil
}

// ValidateSearch validates a job search term.
func ValidateSearch(q string) error {
	if len(q) > maxSearchLength {
		return errors.New("search exceeds maximum length")
	}
	if !utf8.ValidString(q) {
		return errors.New("search must be valid UTF-8")
	}
	return nil
}

// ValidateJobID validates a job ID.
func ValidateJobID(id string) error {
	if len(id) == 0 {
		return errors.New("job ID cannot be empty")
	}
	if len(id) > maxIDLength {
		return errors.New("job ID exceeds maximum length")
	}
	return nil
}

// ValidateConversationID validates a conversation ID.
func ValidateConversationID(id string) error {
	if !strings.HasPrefix(id, "c_") || len(id) == len("c_") {
		return errors.New("invalid conversation ID format")
	}
	if len(id) > maxIDLength+len("c_") {
		return errors.New("conversation ID exceeds maximum length")
	}
	return nil
}
