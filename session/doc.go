// Package session holds the mutable state of one minutes workflow: the
// immutable transcript, the line-to-topic assignments, the agenda topics,
// user-chosen speaker display names, and the per-topic summaries.
//
// One Session is created when a workflow starts, reset when the user goes
// back to upload, and discarded when the workflow ends. Topics carry
// stable IDs so that reordering, retitling, or removing a topic never
// silently remaps another topic's assignments or summaries. All state is
// guarded by the session's own locks, so a regeneration touching the
// summary store can never interleave half-written state with a reader.
package session
