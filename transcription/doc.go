// Package transcription defines the speech-to-text provider interface
// and the post-processing that turns raw time-aligned segments into
// speaker-attributed transcript lines.
//
// The built-in backend (subpackage whisper) talks to a faster-whisper
// HTTP sidecar. Diarization runs separately (package diarization); the
// two result streams are joined here by time overlap.
package transcription
