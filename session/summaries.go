package session

import (
	"sync"
	"unicode/utf8"
)

// PlaceholderText is the sentinel published to a topic's summary slot
// while its remote call is in flight, so observers can render an
// in-progress state.
const PlaceholderText = "Zusammenfassung wird erstellt …"

// SummaryState describes the lifecycle of one topic's summary entry.
type SummaryState int

const (
	// SummaryPending means the placeholder is published and the remote
	// call has not resolved yet.
	SummaryPending SummaryState = iota
	// SummaryDone means the entry holds produced summary text.
	SummaryDone
	// SummaryFailed means the entry holds a formatted error string.
	SummaryFailed
)

// SummaryEntry is the terminal or in-progress value for one topic.
type SummaryEntry struct {
	State SummaryState
	Text  string
}

// SummaryStore maps topics to their summary entries. All writes go
// through one mutex; a bulk pipeline run and a later regeneration share
// this store, so unsynchronized access would be a data race.
type SummaryStore struct {
	mu      sync.RWMutex
	entries map[TopicID]SummaryEntry
}

// NewSummaryStore creates an empty summary store.
func NewSummaryStore() *SummaryStore {
	return &SummaryStore{entries: make(map[TopicID]SummaryEntry)}
}

// SetPlaceholder publishes the in-progress sentinel for a topic.
func (s *SummaryStore) SetPlaceholder(id TopicID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = SummaryEntry{State: SummaryPending, Text: PlaceholderText}
}

// SetSummary replaces a topic's entry with produced summary text.
func (s *SummaryStore) SetSummary(id TopicID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = SummaryEntry{State: SummaryDone, Text: text}
}

// SetError replaces a topic's entry with a formatted error string.
func (s *SummaryStore) SetError(id TopicID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = SummaryEntry{State: SummaryFailed, Text: text}
}

// Get returns a topic's entry and whether one exists.
func (s *SummaryStore) Get(id TopicID) (SummaryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// Clear removes all entries. The store pointer stays stable, so a
// goroutine still holding a reference keeps writing into the live
// store rather than a discarded one.
func (s *SummaryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[TopicID]SummaryEntry)
}

// Delete removes a topic's entry, if any.
func (s *SummaryStore) Delete(id TopicID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len returns the number of entries.
func (s *SummaryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns a copy of all entries.
func (s *SummaryStore) Snapshot() map[TopicID]SummaryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[TopicID]SummaryEntry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// CharCount sums the character length of every entry's text, error
// strings included. Counted in runes, not bytes, so umlauts in German
// summaries count once.
func (s *SummaryStore) CharCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, e := range s.entries {
		total += utf8.RuneCountInString(e.Text)
	}
	return total
}
