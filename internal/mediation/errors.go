package mediation

import "errors"

var (
	// ErrValidation covers malformed input: unknown kind, empty payload,
	// self-targeted requests.
	ErrValidation = errors.New("invalid request")
	// ErrUnauthorized means the actor lacks the capability for the edge,
	// not that the edge is absent from the graph.
	ErrUnauthorized = errors.New("actor not allowed")
	// ErrInvalidTransition means the requested edge does not exist.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrStaleState means the request moved between the actor's read and
	// write. Callers should re-read and retry.
	ErrStaleState = errors.New("request state changed concurrently")
	// ErrDuplicatePending means a non-terminal request for the same
	// (kind, requester, target) already exists.
	ErrDuplicatePending = errors.New("duplicate pending request")
	ErrRequestNotFound  = errors.New("request not found")
)
