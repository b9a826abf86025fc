package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/quarry/catalog"
	"github.com/hupe1980/quarry/value"
	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix for overrides.
const EnvPrefix = "QUARRY"

// File is the on-disk configuration of the CLI and server.
type File struct {
	Types       []TypeSpec        `mapstructure:"types"`
	Data        string            `mapstructure:"data"`
	Snapshot    SnapshotConfig    `mapstructure:"snapshot"`
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Resources   ResourceConfig    `mapstructure:"resources"`
	Indexing    IndexingConfig    `mapstructure:"indexing"`
	Transaction TransactionConfig `mapstructure:"transaction"`
	Recovery    RecoveryConfig    `mapstructure:"recovery"`
}

// TypeSpec declares a document entity type.
type TypeSpec struct {
	Name   string      `mapstructure:"name"`
	Fields []FieldSpec `mapstructure:"fields"`
}

// FieldSpec declares one field of a TypeSpec.
type FieldSpec struct {
	Name string `mapstructure:"name"`
	Type string `mapstructure:"type"`
	// Stored defaults to true.
	Stored *bool `mapstructure:"stored"`
}

// SnapshotConfig selects the blob store used for snapshots.
type SnapshotConfig struct {
	// Backend is one of "local", "s3" or "minio". Empty disables snapshots.
	Backend     string `mapstructure:"backend"`
	Path        string `mapstructure:"path"`
	Bucket      string `mapstructure:"bucket"`
	Prefix      string `mapstructure:"prefix"`
	Region      string `mapstructure:"region"`
	Endpoint    string `mapstructure:"endpoint"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
	Secure      bool   `mapstructure:"secure"`
	Compression string `mapstructure:"compression"`
	// CommitTable enables the DynamoDB CURRENT pointer for the s3 backend.
	CommitTable string `mapstructure:"commit_table"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// ResourceConfig mirrors resource.Config.
type ResourceConfig struct {
	MaxOpenCursors       int64   `mapstructure:"max_open_cursors"`
	QueriesPerSecond     float64 `mapstructure:"queries_per_second"`
	QueryBurst           int     `mapstructure:"query_burst"`
	MaxBackgroundWorkers int64   `mapstructure:"max_background_workers"`
	IOLimitBytesPerSec   int64   `mapstructure:"io_limit_bytes_per_sec"`
}

// IndexingConfig is the file form of Indexing.
type IndexingConfig struct {
	Enabled    bool              `mapstructure:"enabled"`
	Types      []string          `mapstructure:"types"`
	Properties map[string]string `mapstructure:"properties"`
}

// TransactionConfig is the file form of Transaction.
type TransactionConfig struct {
	Mode               string `mapstructure:"mode"`
	UseSynchronization bool   `mapstructure:"use_synchronization"`
}

// RecoveryConfig is the file form of Recovery.
type RecoveryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	InfoCacheName string `mapstructure:"info_cache_name"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data", "")
	v.SetDefault("snapshot.backend", "")
	v.SetDefault("snapshot.path", "")
	v.SetDefault("snapshot.bucket", "")
	v.SetDefault("snapshot.prefix", "")
	v.SetDefault("snapshot.region", "")
	v.SetDefault("snapshot.endpoint", "")
	v.SetDefault("snapshot.access_key", "")
	v.SetDefault("snapshot.secret_key", "")
	v.SetDefault("snapshot.secure", false)
	v.SetDefault("snapshot.compression", "zstd")
	v.SetDefault("snapshot.commit_table", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("resources.max_open_cursors", 0)
	v.SetDefault("resources.queries_per_second", 0)
	v.SetDefault("resources.query_burst", 0)
	v.SetDefault("resources.max_background_workers", 4)
	v.SetDefault("resources.io_limit_bytes_per_sec", 0)
	v.SetDefault("indexing.enabled", true)
	v.SetDefault("transaction.mode", "non_transactional")
	v.SetDefault("transaction.use_synchronization", false)
	v.SetDefault("recovery.enabled", false)
	v.SetDefault("recovery.info_cache_name", DefaultRecoveryInfoCacheName)
}

// Load reads the configuration file at path (optional; "" uses defaults and the
// environment only) and validates it.
func Load(path string) (*File, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks every section and the cross-field rules.
func (f *File) Validate() error {
	if _, err := f.TransactionSetup(); err != nil {
		return err
	}
	if _, err := f.RecoverySetup(); err != nil {
		return err
	}
	idx, err := f.IndexingSetup()
	if err != nil {
		return err
	}

	declared := make(map[string]struct{}, len(f.Types))
	for _, t := range f.Types {
		if _, err := t.Descriptors(); err != nil {
			return err
		}
		if _, dup := declared[t.Name]; dup {
			return fmt.Errorf("%w: type %q declared twice", ErrInvalid, t.Name)
		}
		declared[t.Name] = struct{}{}
	}
	for _, t := range idx.IndexedTypes() {
		if _, ok := declared[t]; !ok {
			return fmt.Errorf("%w: indexed type %q is not declared", ErrInvalid, t)
		}
	}

	switch f.Snapshot.Backend {
	case "":
	case "local":
		if f.Snapshot.Path == "" {
			return fmt.Errorf("%w: snapshot.path is required for the local backend", ErrInvalid)
		}
	case "s3", "minio":
		if f.Snapshot.Bucket == "" {
			return fmt.Errorf("%w: snapshot.bucket is required for the %s backend", ErrInvalid, f.Snapshot.Backend)
		}
		if f.Snapshot.Backend == "minio" && f.Snapshot.Endpoint == "" {
			return fmt.Errorf("%w: snapshot.endpoint is required for the minio backend", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown snapshot backend %q", ErrInvalid, f.Snapshot.Backend)
	}

	switch strings.ToLower(f.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, f.Log.Format)
	}
	return nil
}

// TransactionSetup returns the transaction section as a Transaction.
func (f *File) TransactionSetup() (Transaction, error) {
	mode, err := ParseTransactionMode(f.Transaction.Mode)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{Mode: mode, UseSynchronization: f.Transaction.UseSynchronization}, nil
}

// RecoverySetup returns the validated recovery section.
func (f *File) RecoverySetup() (Recovery, error) {
	tx, err := f.TransactionSetup()
	if err != nil {
		return Recovery{}, err
	}
	return NewRecovery(tx,
		WithRecoveryEnabled(f.Recovery.Enabled),
		WithRecoveryInfoCacheName(f.Recovery.InfoCacheName),
	)
}

// IndexingSetup returns the validated indexing section.
func (f *File) IndexingSetup() (Indexing, error) {
	return NewIndexing(f.Indexing.Enabled, f.Indexing.Types, f.Indexing.Properties)
}

// Descriptors turns the declared fields into catalog descriptors over value.Document entities.
func (t TypeSpec) Descriptors() ([]catalog.FieldDescriptor, error) {
	if t.Name == "" {
		return nil, fmt.Errorf("%w: type without name", ErrInvalid)
	}
	if len(t.Fields) == 0 {
		return nil, fmt.Errorf("%w: type %q has no fields", ErrInvalid, t.Name)
	}

	out := make([]catalog.FieldDescriptor, 0, len(t.Fields))
	for _, fs := range t.Fields {
		typ, err := value.ParseType(fs.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalid, t.Name, fs.Name, err)
		}
		d := catalog.DocumentField(fs.Name, typ)
		if fs.Stored != nil {
			d = d.WithStored(*fs.Stored)
		}
		out = append(out, d)
	}
	return out, nil
}

// RegisterTypes registers every declared type that indexing covers on cat as a
// document type with the given codec (nil means the default codec).
func (f *File) RegisterTypes(cat *catalog.Catalog, c catalog.EntityCodec) error {
	idx, err := f.IndexingSetup()
	if err != nil {
		return err
	}
	if c == nil {
		c = catalog.DocumentCodec(nil)
	}

	for _, t := range f.Types {
		if !idx.Indexes(t.Name) {
			continue
		}
		fields, err := t.Descriptors()
		if err != nil {
			return err
		}
		if err := cat.Register(t.Name, fields, catalog.WithEntityCodec(c)); err != nil {
			return err
		}
	}
	return nil
}
