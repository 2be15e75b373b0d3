package datastore

import "fmt"

// NetworkError reports a transport failure or a non-success HTTP status from the upstream
// API. StatusCode is zero when no response was received.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("datastore request %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("datastore request %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedResponseError reports a response body that could not be decoded or does not
// have the expected shape.
type MalformedResponseError struct {
	URL string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("datastore response %s: malformed: %v", e.URL, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
