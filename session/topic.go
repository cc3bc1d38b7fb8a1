package session

import (
	"strings"

	"github.com/google/uuid"
)

// TopicID identifies an agenda topic for the lifetime of a session.
// It is assigned at creation and survives reordering and retitling.
type TopicID string

// NoTopic marks an unassigned transcript line.
const NoTopic TopicID = ""

// Topic is one agenda item (TOP) of the meeting.
type Topic struct {
	ID    TopicID `json:"id"`
	Title string  `json:"title"`
}

// NewTopic creates a topic with a fresh stable ID.
func NewTopic(title string) Topic {
	return Topic{ID: TopicID(uuid.NewString()), Title: title}
}

// IsValid reports whether the topic takes part in downstream processing.
// Topics with a blank title are kept in the list for editing but excluded
// from summarization.
func (t Topic) IsValid() bool {
	return strings.TrimSpace(t.Title) != ""
}

// ValidTopics returns the non-blank topics in list order.
func ValidTopics(topics []Topic) []Topic {
	valid := make([]Topic, 0, len(topics))
	for _, t := range topics {
		if t.IsValid() {
			valid = append(valid, t)
		}
	}
	return valid
}
