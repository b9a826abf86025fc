// Package config holds immutable configuration values and the file loader used by
// the quarry CLI and server.
//
// Values that carry cross-field rules (Recovery, Indexing) can only be obtained
// from their constructors, which validate everything up front:
//
//	rec, err := config.NewRecovery(config.Transaction{Mode: config.Transactional},
//	    config.WithRecoveryEnabled(true),
//	)
//
// Files are read with viper (YAML, JSON or TOML) and every key can be overridden
// from the environment with the QUARRY_ prefix, e.g. QUARRY_SERVER_ADDR.
package config
