// Package provider implements a small generic framework for swappable
// backends: transcription engines, diarization engines, and chat models
// all plug in behind the same Provider interface.
//
// Each backend package registers a named Factory in its domain registry;
// configuration selects which factory to instantiate at startup.
// Availability is probed with IsAvailable so the HTTP health endpoint
// can report which engines are ready without issuing real work.
//
//	reg := provider.NewRegistry[llm.Provider]()
//	reg.RegisterFactory("ollama", ollama.Factory())
//	p, err := reg.Create("ollama", map[string]any{"model": "qwen3:8b"})
package provider
