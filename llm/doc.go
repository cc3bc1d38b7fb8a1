// Package llm defines the chat interface for language model backends
// and the German prompts used to turn agenda item transcripts into
// meeting minutes.
//
// Backends implement the Provider interface and register a factory in
// the Registry. The only built-in backend is Ollama (subpackage
// ollama), matching the local-first deployment model: no audio or
// transcript text ever leaves the machine.
package llm
