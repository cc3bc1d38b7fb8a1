// Package httpclient is the HTTP transport used by every remote call in
// the minutes system: audio upload, job status polling, summarization,
// TOP extraction, telemetry, and the sidecar providers.
//
// The client distinguishes connection-level failures (no response) from
// server responses with an error status; callers rely on that split to
// decide what to surface to the user. Retry is configurable but disabled
// by default since job submission must stay at-most-once.
package httpclient
