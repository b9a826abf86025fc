package config

import (
	"fmt"
)

// DefaultRecoveryInfoCacheName is the cache holding recovery information when no
// name is configured.
const DefaultRecoveryInfoCacheName = "__recoveryInfoCacheName__"

// RecoveryValidator decides whether a recovery setting is compatible with the
// transaction setup it runs under.
type RecoveryValidator interface {
	ValidateRecovery(enabled bool, mode TransactionMode, useSynchronization bool) error
}

// RecoveryValidatorFunc adapts a function to RecoveryValidator.
type RecoveryValidatorFunc func(enabled bool, mode TransactionMode, useSynchronization bool) error

func (f RecoveryValidatorFunc) ValidateRecovery(enabled bool, mode TransactionMode, useSynchronization bool) error {
	return f(enabled, mode, useSynchronization)
}

// DefaultRecoveryValidator rejects recovery on non-transactional caches and with
// synchronization enlistment. Disabled recovery is always valid.
var DefaultRecoveryValidator RecoveryValidator = RecoveryValidatorFunc(
	func(enabled bool, mode TransactionMode, useSynchronization bool) error {
		if !enabled {
			return nil
		}
		if mode == NonTransactional {
			return ErrRecoveryNonTransactional
		}
		if useSynchronization {
			return ErrRecoveryWithSynchronization
		}
		return nil
	})

// Recovery is an immutable recovery configuration. Obtain one from NewRecovery.
type Recovery struct {
	enabled       bool
	infoCacheName string
}

// Enabled reports whether recovery is on.
func (r Recovery) Enabled() bool { return r.enabled }

// InfoCacheName returns the name of the cache holding recovery information.
func (r Recovery) InfoCacheName() string {
	if r.infoCacheName == "" {
		return DefaultRecoveryInfoCacheName
	}
	return r.infoCacheName
}

func (r Recovery) String() string {
	return fmt.Sprintf("Recovery{enabled=%t, infoCacheName=%s}", r.enabled, r.InfoCacheName())
}

type recoveryOptions struct {
	enabled       bool
	infoCacheName string
	validator     RecoveryValidator
}

// RecoveryOption configures NewRecovery.
type RecoveryOption func(*recoveryOptions)

// WithRecoveryEnabled turns recovery on or off. Default: off.
func WithRecoveryEnabled(enabled bool) RecoveryOption {
	return func(o *recoveryOptions) {
		o.enabled = enabled
	}
}

// WithRecoveryInfoCacheName sets the recovery info cache name.
func WithRecoveryInfoCacheName(name string) RecoveryOption {
	return func(o *recoveryOptions) {
		o.infoCacheName = name
	}
}

// WithRecoveryValidator replaces DefaultRecoveryValidator.
func WithRecoveryValidator(v RecoveryValidator) RecoveryOption {
	return func(o *recoveryOptions) {
		o.validator = v
	}
}

// NewRecovery builds a validated Recovery for the given transaction setup.
func NewRecovery(tx Transaction, optFns ...RecoveryOption) (Recovery, error) {
	o := recoveryOptions{validator: DefaultRecoveryValidator}
	for _, fn := range optFns {
		fn(&o)
	}

	if o.validator != nil {
		if err := o.validator.ValidateRecovery(o.enabled, tx.Mode, tx.UseSynchronization); err != nil {
			return Recovery{}, err
		}
	}

	return Recovery{
		enabled:       o.enabled,
		infoCacheName: o.infoCacheName,
	}, nil
}
