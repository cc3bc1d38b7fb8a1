package transcription

import (
	"context"

	"github.com/sitzungslab/minutes/provider"
)

// Provider is the interface transcription backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Transcribe sends audio for transcription and returns time-aligned
	// segments without speaker labels.
	Transcribe(ctx context.Context, req Request) (*Result, error)
}

// Registry holds the known transcription backend factories.
var Registry = provider.NewRegistry[Provider]()
