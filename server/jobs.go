package server

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sitzungslab/minutes/api"
	"github.com/sitzungslab/minutes/logger"
)

// job is the server-side record of one transcription job.
type job struct {
	ID         string
	Status     api.JobStatus
	Progress   int
	Message    string
	Transcript []api.TranscriptLine
	AudioPath  string
	Error      string
	CreatedAt  time.Time
}

// jobStore is an in-memory, insertion-ordered job table bounded by age
// and count. Expiring a job also removes its audio file from disk.
type jobStore struct {
	mu       sync.Mutex
	jobs     map[string]*job
	order    []string
	maxAge   time.Duration
	maxCount int
	log      *logger.Logger
}

func newJobStore(maxAge time.Duration, maxCount int, log *logger.Logger) *jobStore {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &jobStore{
		jobs:     make(map[string]*job),
		maxAge:   maxAge,
		maxCount: maxCount,
		log:      log.WithComponent("jobs"),
	}
}

// Create registers a new pending job and returns its id.
func (s *jobStore) Create(audioPath string) string {
	id := uuid.New().String()

	s.mu.Lock()
	s.jobs[id] = &job{
		ID:        id,
		Status:    api.StatusPending,
		Message:   "Audio hochgeladen",
		AudioPath: audioPath,
		CreatedAt: time.Now(),
	}
	s.order = append(s.order, id)
	s.mu.Unlock()

	return id
}

// Snapshot returns the wire representation of a job.
func (s *jobStore) Snapshot(id string) (api.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return api.Job{}, false
	}

	out := api.Job{
		JobID:    j.ID,
		Status:   j.Status,
		Progress: j.Progress,
		Message:  j.Message,
		Error:    j.Error,
	}
	if j.Transcript != nil {
		out.Transcript = append([]api.TranscriptLine(nil), j.Transcript...)
	}
	if j.AudioPath != "" {
		if _, err := os.Stat(j.AudioPath); err == nil {
			out.AudioURL = "/api/audio/" + j.ID
		}
	}
	return out, true
}

// AudioPath returns a job's audio file path.
func (s *jobStore) AudioPath(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return "", false
	}
	return j.AudioPath, true
}

// SetAudioPath records where a job's uploaded audio was stored.
func (s *jobStore) SetAudioPath(id, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		j.AudioPath = path
	}
}

// SetProgress moves a job to processing with the given checkpoint.
func (s *jobStore) SetProgress(id string, progress int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		j.Status = api.StatusProcessing
		j.Progress = progress
		j.Message = message
	}
}

// Complete marks a job done and attaches the transcript.
func (s *jobStore) Complete(id string, transcript []api.TranscriptLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		j.Status = api.StatusCompleted
		j.Progress = 100
		j.Message = "Transkription abgeschlossen"
		j.Transcript = transcript
	}
}

// Fail marks a job failed with the given error text.
func (s *jobStore) Fail(id string, errText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		j.Status = api.StatusFailed
		j.Error = errText
		j.Message = "Fehler: " + errText
	}
}

// Cleanup removes jobs past maxAge and, after that, the oldest jobs
// beyond maxCount. Returns how many were removed.
func (s *jobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0

	keep := s.order[:0]
	for _, id := range s.order {
		j, ok := s.jobs[id]
		if !ok {
			continue
		}
		if now.Sub(j.CreatedAt) > s.maxAge {
			s.removeLocked(j)
			removed++
			continue
		}
		keep = append(keep, id)
	}
	s.order = keep

	for len(s.order) > s.maxCount {
		oldest := s.order[0]
		s.order = s.order[1:]
		if j, ok := s.jobs[oldest]; ok {
			s.removeLocked(j)
			removed++
		}
	}

	if removed > 0 {
		s.log.Info("Cleaned up old jobs", logger.Fields(
			"removed", removed,
			"remaining", len(s.jobs),
		))
	}
	return removed
}

// Len returns the number of stored jobs.
func (s *jobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *jobStore) removeLocked(j *job) {
	if j.AudioPath != "" {
		if err := os.Remove(j.AudioPath); err != nil && !os.IsNotExist(err) {
			s.log.Warn("Failed to remove audio file", logger.ErrorFields("cleanup", err))
		}
	}
	delete(s.jobs, j.ID)
}
