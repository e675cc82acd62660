package domain

import "fmt"

// TransportError covers connection, authentication and remote exit failures
type TransportError struct {
	Target string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("transport: %v", e.Err)
	}
	return fmt.Sprintf("transport %s: %v", e.Target, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// PayloadFormatError means the remote output is not a list of guest objects
type PayloadFormatError struct {
	Reason string
	Err    error
}

func (e *PayloadFormatError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("malformed vmadm payload: %s", e.Reason)
	}
	return fmt.Sprintf("malformed vmadm payload: %s: %v", e.Reason, e.Err)
}

func (e *PayloadFormatError) Unwrap() error { return e.Err }

// IncompleteRecordError means a guest cannot produce a usable inventory entry.
// Index is the position of the record in the payload.
type IncompleteRecordError struct {
	Index  int
	Name   string
	Reason string
}

func (e *IncompleteRecordError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("guest record %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("guest record %d (%s): %s", e.Index, e.Name, e.Reason)
}

// ConsistencyError is an internal invariant violation in the assembled inventory
type ConsistencyError struct {
	Reason string
}

func (e *ConsistencyError) Error() string {
	return "inventory consistency: " + e.Reason
}

// HostNotFoundError means no guest in the payload resolves to Name
type HostNotFoundError struct {
	Name string
}

func (e *HostNotFoundError) Error() string {
	return fmt.Sprintf("no guest named %q", e.Name)
}
