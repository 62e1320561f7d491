package domain

import "errors"

// Build errors.
var (
	// ErrUnknownKind is returned for a node discriminator outside the six known kinds.
	ErrUnknownKind = errors.New("unknown node kind")
	// ErrCapabilityUnavailable is returned when a leaf names a capability missing from the build catalog.
	ErrCapabilityUnavailable = errors.New("capability not available")
	// ErrMalformedNode is returned for a description record that cannot be interpreted.
	ErrMalformedNode = errors.New("malformed node")
)

// Configuration errors. These never abort a tick.
var (
	// ErrCapabilityNotFound is reported when a leaf cannot resolve its capability at tick time.
	ErrCapabilityNotFound = errors.New("capability not found")
	// ErrDuplicateCapability is reported when two providers declare the same name.
	ErrDuplicateCapability = errors.New("duplicate capability name")
	// ErrEmptyCapabilityName is reported when a provider declares an empty name.
	ErrEmptyCapabilityName = errors.New("empty capability name")
	// ErrCapabilityPanic is reported when a capability panics during a tick.
	ErrCapabilityPanic = errors.New("capability panicked")
	// ErrInvalidStatus is reported for a status outside Success, Failure and Running.
	ErrInvalidStatus = errors.New("invalid status")
)

// Driver errors.
var (
	// ErrNoTree is returned when activating without a tree or with a tree lacking a root.
	ErrNoTree = errors.New("no behavior tree")
	// ErrNotActive is returned when ticking a driver that was never activated.
	ErrNotActive = errors.New("driver not active")
	// ErrSnapshotNotFound is returned by snapshot stores for unknown agents.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)
