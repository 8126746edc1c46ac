package cache

import "fmt"

// RefreshError reports a failed refresh of a slot that has never been written
type RefreshError struct {
	Key string
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("failed to refresh %s with no cached payload: %v", e.Key, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// ParseError reports a cached payload that could not be decoded
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to decode cached %s: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
