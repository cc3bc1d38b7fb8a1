package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/sitzungslab/minutes/api"
)

// Session is the explicit workflow store for one minutes session,
// replacing ambient per-step state. It is owned by a single controller
// and passed by reference to the orchestration components.
type Session struct {
	// ID identifies this workflow session.
	ID string

	mu           sync.RWMutex
	jobID        string
	transcript   []api.TranscriptLine
	assignments  []TopicID
	topics       []Topic
	speakerNames map[string]string

	// Summaries is the shared summary store written by the pipeline and
	// regeneration. It carries its own lock.
	Summaries *SummaryStore
}

// New creates an empty session.
func New() *Session {
	return &Session{
		ID:           uuid.NewString(),
		speakerNames: make(map[string]string),
		Summaries:    NewSummaryStore(),
	}
}

// SetJob records the transcription job handle for this session.
func (s *Session) SetJob(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobID = jobID
}

// JobID returns the transcription job handle, empty if none.
func (s *Session) JobID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobID
}

// SetTranscript installs a new transcript and resets every assignment to
// unassigned. The transcript is treated as immutable afterwards.
func (s *Session) SetTranscript(lines []api.TranscriptLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = make([]api.TranscriptLine, len(lines))
	copy(s.transcript, lines)
	s.assignments = make([]TopicID, len(lines))
}

// Transcript returns a copy of the transcript lines.
func (s *Session) Transcript() []api.TranscriptLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.TranscriptLine, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Len returns the transcript length.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transcript)
}

// --- Topics ---

// AddTopic appends a topic with a fresh stable ID and returns it.
func (s *Session) AddTopic(title string) Topic {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := NewTopic(title)
	s.topics = append(s.topics, t)
	return t
}

// RetitleTopic changes a topic's title. The ID, and with it every
// assignment and summary referring to the topic, stays untouched.
func (s *Session) RetitleTopic(id TopicID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.topics {
		if s.topics[i].ID == id {
			s.topics[i].Title = title
			return nil
		}
	}
	return fmt.Errorf("session: unknown topic %s", id)
}

// RemoveTopic deletes a topic and unassigns every line that pointed at
// it. Its summary entry, if any, is dropped as well.
func (s *Session) RemoveTopic(id TopicID) error {
	s.mu.Lock()
	found := false
	topics := s.topics[:0]
	for _, t := range s.topics {
		if t.ID == id {
			found = true
			continue
		}
		topics = append(topics, t)
	}
	s.topics = topics
	if found {
		for i, a := range s.assignments {
			if a == id {
				s.assignments[i] = NoTopic
			}
		}
	}
	s.mu.Unlock()

	if !found {
		return fmt.Errorf("session: unknown topic %s", id)
	}
	s.Summaries.Delete(id)
	return nil
}

// Topics returns a copy of all topics in list order, blank ones included.
func (s *Session) Topics() []Topic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Topic, len(s.topics))
	copy(out, s.topics)
	return out
}

// ValidTopics returns the non-blank topics in list order.
func (s *Session) ValidTopics() []Topic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ValidTopics(s.topics)
}

// --- Assignments ---

// ToggleAssign assigns a line to a topic, or clears the assignment when
// the line already points at that topic. Toggling twice restores the
// original state.
func (s *Session) ToggleAssign(lineIndex int, id TopicID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lineIndex < 0 || lineIndex >= len(s.assignments) {
		return fmt.Errorf("session: line index %d out of range [0,%d)", lineIndex, len(s.assignments))
	}
	if s.assignments[lineIndex] == id {
		s.assignments[lineIndex] = NoTopic
	} else {
		s.assignments[lineIndex] = id
	}
	return nil
}

// RangeAssign assigns every line in the inclusive range to a topic,
// overwriting prior assignments. The bounds may be given in either order.
func (s *Session) RangeAssign(from, to int, id TopicID) error {
	if from > to {
		from, to = to, from
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if from < 0 || to >= len(s.assignments) {
		return fmt.Errorf("session: range [%d,%d] out of bounds [0,%d)", from, to, len(s.assignments))
	}
	for i := from; i <= to; i++ {
		s.assignments[i] = id
	}
	return nil
}

// Assignment returns the topic a line is assigned to, NoTopic if none.
func (s *Session) Assignment(lineIndex int) TopicID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if lineIndex < 0 || lineIndex >= len(s.assignments) {
		return NoTopic
	}
	return s.assignments[lineIndex]
}

// Assignments returns a copy of the full assignment sequence.
func (s *Session) Assignments() []TopicID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TopicID, len(s.assignments))
	copy(out, s.assignments)
	return out
}

// LinesForTopic returns, in transcript order, every line assigned to the
// topic.
func (s *Session) LinesForTopic(id TopicID) []api.TranscriptLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []api.TranscriptLine
	for i, a := range s.assignments {
		if a == id && a != NoTopic {
			out = append(out, s.transcript[i])
		}
	}
	return out
}

// --- Speaker names ---

// SetSpeakerName maps a raw diarization label to a display name. The
// stored transcript keeps the raw label; the mapping is applied only
// when text leaves the session for summarization.
func (s *Session) SetSpeakerName(raw, display string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speakerNames[raw] = display
}

// SpeakerNames returns a copy of the name mapping.
func (s *Session) SpeakerNames() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.speakerNames))
	for k, v := range s.speakerNames {
		out[k] = v
	}
	return out
}

// Reset clears everything except the session ID, for the back-to-upload
// transition. The summary store is emptied in place so its pointer
// never changes over the session's lifetime.
func (s *Session) Reset() {
	s.mu.Lock()
	s.jobID = ""
	s.transcript = nil
	s.assignments = nil
	s.topics = nil
	s.speakerNames = make(map[string]string)
	s.mu.Unlock()
	s.Summaries.Clear()
}
