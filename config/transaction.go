package config

import (
	"fmt"
	"strings"
)

// TransactionMode is the transactional mode of a cache.
type TransactionMode uint8

const (
	NonTransactional TransactionMode = iota
	Transactional
)

func (m TransactionMode) String() string {
	switch m {
	case NonTransactional:
		return "non_transactional"
	case Transactional:
		return "transactional"
	default:
		return fmt.Sprintf("TransactionMode(%d)", uint8(m))
	}
}

// ParseTransactionMode parses "transactional" or "non_transactional" ("" is the latter).
func ParseTransactionMode(s string) (TransactionMode, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "", "non_transactional", "none":
		return NonTransactional, nil
	case "transactional":
		return Transactional, nil
	default:
		return 0, fmt.Errorf("%w: unknown transaction mode %q", ErrInvalid, s)
	}
}

// Transaction is the transaction setup a recovery configuration is validated against.
type Transaction struct {
	Mode               TransactionMode
	UseSynchronization bool
}
