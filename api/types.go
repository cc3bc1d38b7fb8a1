package api

// JobStatus is the lifecycle state of a transcription job.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether the status is a final state.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// TranscriptLine is one diarized utterance of the transcript.
// Lines are immutable once produced; their index position is the
// correlation key for topic assignments.
type TranscriptLine struct {
	// Speaker is the raw diarization label (e.g. "SPEAKER_00").
	Speaker string `json:"speaker"`
	// Text is the transcribed utterance.
	Text string `json:"text"`
	// Start is the utterance start time in seconds.
	Start float64 `json:"start"`
	// End is the utterance end time in seconds.
	End float64 `json:"end"`
}

// Job is the server-side handle for a transcription task.
type Job struct {
	JobID    string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Progress int       `json:"progress"`
	Message  string    `json:"message"`
	// Transcript is set once the job completes.
	Transcript []TranscriptLine `json:"transcript,omitempty"`
	// AudioURL points to the stored upload for playback, if still available.
	AudioURL string `json:"audio_url,omitempty"`
	// Error holds the failure reason for failed jobs.
	Error string `json:"error,omitempty"`
}

// LLMOptions selects the summarization model and its instructions.
// Loaded once at session start and passed explicitly to every
// summarization and extraction call.
type LLMOptions struct {
	// Model is the remote model id (e.g. "qwen3:8b"). Empty uses the
	// server default.
	Model string `json:"model,omitempty" yaml:"model" mapstructure:"model"`
	// SystemPrompt is prepended to every summarization request. Empty
	// uses the server default.
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt" mapstructure:"system_prompt"`
}

// SummarizeRequest asks for minutes of a single agenda topic.
type SummarizeRequest struct {
	TopTitle     string           `json:"top_title" binding:"required"`
	Lines        []TranscriptLine `json:"lines" binding:"required"`
	Model        string           `json:"model,omitempty"`
	SystemPrompt string           `json:"system_prompt,omitempty"`
}

// SummarizeResponse is the produced summary and the server-side
// generation time.
type SummarizeResponse struct {
	Summary         string  `json:"summary"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// ExtractTOPsResponse lists the agenda item titles found in a PDF.
type ExtractTOPsResponse struct {
	TOPs []string `json:"tops"`
}

// SessionReport is the aggregate telemetry record posted once per
// completed summarization run.
type SessionReport struct {
	JobID                        string  `json:"job_id" binding:"required"`
	TopCount                     int     `json:"top_count"`
	ProtocolCharCount            int     `json:"protocol_char_count"`
	SummarizationDurationSeconds float64 `json:"summarization_duration_seconds"`
	LLMModel                     string  `json:"llm_model"`
	SystemPrompt                 string  `json:"system_prompt"`
}

// ErrorResponse is the uniform non-2xx body of the backend.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
