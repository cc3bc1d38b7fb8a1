// Package api defines the wire contract of the minutes backend and a
// typed HTTP client for it: audio upload, transcription job status,
// per-TOP summarization, agenda (TOP) extraction from PDF, health, and
// session telemetry.
//
// Error shape: every non-2xx response carries a JSON body with a single
// "detail" field holding a user-facing message. The client surfaces that
// message verbatim as a *ServerError; failures without any response are
// *TransportError.
package api
