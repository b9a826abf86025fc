package config

import "errors"

var (
	// ErrRecoveryNonTransactional is returned when recovery is enabled on a
	// non-transactional cache.
	ErrRecoveryNonTransactional = errors.New("config: recovery requires a transactional cache")

	// ErrRecoveryWithSynchronization is returned when recovery is enabled while the
	// transaction enlists through synchronization.
	ErrRecoveryWithSynchronization = errors.New("config: recovery is not supported with synchronization enlistment")

	// ErrIndexingDisabled is returned when indexed types are declared but indexing is off.
	ErrIndexingDisabled = errors.New("config: indexed types declared while indexing is disabled")

	// ErrInvalid is returned for malformed configuration values.
	ErrInvalid = errors.New("config: invalid configuration")
)
