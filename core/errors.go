package core

import "errors"

// Sentinel errors for the event-handling taxonomy. Handlers decide per
// class whether to notify the initiator, but none of these ever mutates
// state or reaches the rest of the room.
var (
	// ErrNotFound covers absent presentations, slides, and users. Events
	// hitting it are dropped silently room-wise.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the caller's role does not permit
	// the requested mutation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMalformed is returned for inbound payloads that fail schema
	// validation before any state is touched.
	ErrMalformed = errors.New("malformed payload")

	// ErrNotJoined is returned for room-scoped events from a connection
	// that never joined a presentation.
	ErrNotJoined = errors.New("connection not joined to a presentation")
)
