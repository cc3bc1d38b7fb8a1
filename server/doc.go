// Package server implements the HTTP backend for the minutes
// generator: audio upload and asynchronous transcription jobs, audio
// streaming for playback, per-agenda-item summarization, agenda
// extraction from invitation PDFs, and anonymous telemetry ingestion.
//
// The server is backed by Gin with h2c support so HTTP/2 clients work
// without TLS. Jobs live in an in-memory store bounded by age and
// count; uploaded audio is kept on disk for playback until its job
// expires.
package server
