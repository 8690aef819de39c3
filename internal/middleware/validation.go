package middleware

import (
	"errors"
	"unicode/utf8"
)

// ValidateQuery validates the free-text query of a conversational request.
func ValidateQuery(query string) error {
	if len(query) == 0 {
		return errors.New("query cannot be empty")
	}
	if len(query) > 10000 {
		return errors.New("query exceeds maximum length")
	}
	if !utf8.ValidString(query) {
		return errors.New("query must be valid UTF-8")
	}
	return nil
}

// ValidateThreadID validates a client-supplied thread ID. Thread IDs are
// opaque, so only shape constraints apply.
func ValidateThreadID(id string) error {
	if len(id) > 128 {
		return errors.New("thread ID exceeds maximum length")
	}
	if !utf8.ValidString(id) {
		return errors.New("thread ID must be valid UTF-8")
	}
	return nil
}
