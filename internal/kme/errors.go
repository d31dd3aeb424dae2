package kme

import "fmt"

// APIError represents an HTTP error from the KME.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("KME error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("KME error %d", e.StatusCode)
}

// NetworkError represents a transport-level failure after the retry
// budget was exhausted.
type NetworkError struct {
	Err     error
	URL     string
	Attempt int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ShortKeyError is returned when the KME supplies less key material than
// was requested.
type ShortKeyError struct {
	Requested int
	Received  int
}

func (e *ShortKeyError) Error() string {
	return fmt.Sprintf("KME returned %d key bits, requested %d", e.Received, e.Requested)
}
