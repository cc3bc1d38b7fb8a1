// Package resilience provides retry with exponential backoff for calls to
// the minutes backend and its sidecars. Retry is opt-in: submission and
// polling are deliberately single-shot (at-most-once job submission, the
// poll loop is its own retry), so only idempotent reads should enable it.
package resilience
