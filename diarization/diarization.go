// Package diarization defines the speaker diarization provider
// interface. Backends answer the question "who spoke when" with a list
// of speaker turns; transcript text is attached elsewhere by overlap
// matching.
package diarization

import (
	"context"

	"github.com/sitzungslab/minutes/provider"
)

// Request holds parameters for a diarization call.
type Request struct {
	// AudioPath is the path to the audio file to diarize.
	AudioPath string `json:"audio_path"`
	// NumSpeakers is the exact number of speakers (0 = auto-detect).
	NumSpeakers int `json:"num_speakers,omitempty"`
	// MinSpeakers is the minimum expected number of speakers.
	MinSpeakers int `json:"min_speakers,omitempty"`
	// MaxSpeakers is the maximum expected number of speakers.
	MaxSpeakers int `json:"max_speakers,omitempty"`
}

// Result holds the output of a diarization call.
type Result struct {
	// Turns contains speaker-attributed time ranges.
	Turns []Turn `json:"turns"`
	// NumSpeakers is the number of distinct speakers detected.
	NumSpeakers int `json:"num_speakers"`
}

// Turn is one contiguous stretch of speech by a single speaker.
type Turn struct {
	// Speaker is the diarization label (e.g. "SPEAKER_00").
	Speaker string `json:"speaker"`
	// Start is the turn start time in seconds.
	Start float64 `json:"start"`
	// End is the turn end time in seconds.
	End float64 `json:"end"`
}

// Provider is the interface diarization backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Diarize sends audio for speaker diarization and returns the turns.
	Diarize(ctx context.Context, req Request) (*Result, error)
}

// Registry holds the known diarization backend factories.
var Registry = provider.NewRegistry[Provider]()
