package util

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ValidateUUID parses value as a UUID after trimming whitespace. The
// field name is woven into the error for the caller's message.
func ValidateUUID(field, value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, fmt.Errorf("%s is empty", field)
	}
	id, err := uuid.Parse(trimmed)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID: %w", field, err)
	}
	return id, nil
}
