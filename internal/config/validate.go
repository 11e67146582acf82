package config

import (
	"fmt"

	"github.com/chattersys/chatter/internal/moderation"
	"github.com/chattersys/chatter/internal/protocol"
)

// ValidateModerationPatterns loads and compiles the moderation pattern file
// at path, returning a wrapped error instead of a usable result when the
// file is missing or malformed. Callers that want to run with the built-in
// defaults instead should call moderation.DefaultPatterns directly rather
// than reaching for this helper.
func ValidateModerationPatterns(path string) ([]moderation.Pattern, error) {
	patterns, err := moderation.LoadPatternsFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: invalid moderation patterns file %s: %w", path, err)
	}
	return patterns, nil
}

// ValidateMessageSchema compiles the JSON Schema at path into a reusable
// Validator, failing with a wrapped error on a missing or malformed schema.
func ValidateMessageSchema(path string) (*protocol.Validator, error) {
	v, err := protocol.LoadValidator(path)
	if err != nil {
		return nil, fmt.Errorf("config: invalid message schema %s: %w", path, err)
	}
	return v, nil
}
