package core

import "errors"

// Configuration errors: fatal at startup, surfaced to the driver.
var (
	ErrEmptyGraph      = errors.New("topology: empty graph")
	ErrUnknownPolicy   = errors.New("scenario: unknown routing policy identifier")
	ErrBadISPMembers   = errors.New("scenario: ISP member sets must partition the node set")
	ErrUnknownNode     = errors.New("scenario: reference to unknown node")
	ErrEmptyScenario   = errors.New("scenario: no ISPs configured")
)

// Invariant violations: fatal, the simulator aborts rather than
// produce untrusted metrics.
var (
	ErrInvariantViolation = errors.New("invariant violation")
	ErrReleaseNotHeld     = errors.New("release of slots not held by this allocation")
	ErrNegativeTime       = errors.New("negative simulation time")
)
