// Package logger provides structured logging for the minutes services,
// backed by zerolog. Components obtain a tagged sub-logger via
// WithComponent; long-running operations attach job and session IDs so
// log lines from one workflow can be correlated.
package logger
