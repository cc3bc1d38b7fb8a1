package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sitzungslab/minutes/httpclient"
)

// TransportError is a network-level failure: the backend never produced
// a response. Callers surface a generic message instead of the raw cause.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response from the backend. Detail carries the
// server-supplied user-facing message and is surfaced verbatim.
type ServerError struct {
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("backend error (HTTP %d): %s", e.StatusCode, e.Detail)
}

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsServer reports whether err is a backend error response.
func IsServer(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// classify converts an httpclient failure into the api error taxonomy.
// Responses with a body get their detail message extracted; an
// undecodable body falls back to a generic HTTP-status message.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var clientErr *httpclient.Error
	if !errors.As(err, &clientErr) {
		return &TransportError{Err: err}
	}

	if clientErr.StatusCode == 0 {
		// No response was received.
		return &TransportError{Err: clientErr}
	}

	detail := extractDetail(clientErr.Body)
	if detail == "" {
		detail = fmt.Sprintf("Unerwarteter Serverfehler (HTTP %d)", clientErr.StatusCode)
	}
	return &ServerError{StatusCode: clientErr.StatusCode, Detail: detail}
}

// extractDetail decodes the uniform {"detail": ...} error body.
func extractDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return ""
	}
	return er.Detail
}
