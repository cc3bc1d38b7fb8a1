package llm

import (
	"context"

	"github.com/sitzungslab/minutes/provider"
)

// Provider is the interface chat backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Chat sends a chat request and returns the full response.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// Registry holds the known chat backend factories.
var Registry = provider.NewRegistry[Provider]()
