package common

import "errors"

var (
	// ErrInvalidConfig marks a configuration that cannot start a run.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrGridCapacity is returned when the population does not fit on the grid.
	ErrGridCapacity = errors.New("population exceeds grid capacity")
	// ErrMissingCapability is returned when an archetype is asked to do
	// something it does not implement, e.g. a source asked to share.
	// This is distinct from a user agent declining to share.
	ErrMissingCapability = errors.New("archetype does not implement operation")
	ErrInvalidNews       = errors.New("invalid news attributes")
	ErrSnapshotMismatch  = errors.New("snapshot does not match server population")
)
