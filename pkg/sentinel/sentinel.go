package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors with the right
// message for the client.
//
// These represent factual states about the registration table, not validation
// failures. For bad input use pkg/domain-errors directly.
var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrDuplicatePhone  = errors.New("phone already registered")
	ErrCapacityReached = errors.New("capacity reached")
)
