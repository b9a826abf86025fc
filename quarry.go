package quarry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hupe1980/quarry/blobstore"
	"github.com/hupe1980/quarry/catalog"
	"github.com/hupe1980/quarry/executor"
	"github.com/hupe1980/quarry/index/inverted"
	"github.com/hupe1980/quarry/query"
	"github.com/hupe1980/quarry/resource"
	"github.com/hupe1980/quarry/snapshot"
)

// DB indexes registered entity types and answers projection queries over them.
// It is safe for concurrent use.
type DB struct {
	cat      *catalog.Catalog
	ix       *inverted.Index
	compiler *query.Compiler
	exec     *executor.Executor
	rc       *resource.Controller

	codec       catalog.EntityCodec
	store       blobstore.BlobStore
	compression snapshot.Compression

	logger  *Logger
	metrics MetricsCollector

	closed atomic.Bool
}

// Stats is a point-in-time view of a DB.
type Stats struct {
	Types       int
	Entities    int
	Terms       int
	OpenCursors int64
}

// New creates an empty DB.
func New(optFns ...Option) (*DB, error) {
	o := applyOptions(optFns)

	var rc *resource.Controller
	if o.resourceConfig != nil {
		rc = resource.NewController(*o.resourceConfig)
	}

	cat := catalog.New()
	ix := inverted.New(cat)

	return &DB{
		cat:      cat,
		ix:       ix,
		compiler: query.NewCompiler(cat, ix),
		exec: executor.New(ix,
			executor.WithController(rc),
			executor.WithObserver(cursorObserver{mc: o.metricsCollector}),
		),
		rc:          rc,
		codec:       catalog.DocumentCodec(o.codec),
		store:       o.blobStore,
		compression: o.snapshotCompression,
		logger:      o.logger,
		metrics:     o.metricsCollector,
	}, nil
}

// Register declares an entity type. Types must be registered before entities of
// the type are put or queried.
func (db *DB) Register(typ string, fields []catalog.FieldDescriptor, opts ...catalog.RegisterOption) error {
	if db.closed.Load() {
		return ErrClosed
	}
	return db.cat.Register(typ, fields, opts...)
}

// RegisterDocument declares a type whose entities are value.Document maps,
// persisted with the codec configured through WithCodec.
func (db *DB) RegisterDocument(typ string, fields []catalog.FieldDescriptor) error {
	return db.Register(typ, fields, catalog.WithEntityCodec(db.codec))
}

// Put indexes entity under key, replacing any previous entity with that key.
func (db *DB) Put(ctx context.Context, typ, key string, entity any) error {
	if db.closed.Load() {
		return ErrClosed
	}

	start := time.Now()
	err := db.ix.Put(ctx, typ, key, entity)
	db.metrics.RecordPut(time.Since(start), err)
	db.logger.LogPut(ctx, typ, key, err)
	return err
}

// Delete removes the entity stored under key and reports whether it existed.
func (db *DB) Delete(ctx context.Context, typ, key string) (bool, error) {
	if db.closed.Load() {
		return false, ErrClosed
	}

	start := time.Now()
	found := db.ix.Delete(typ, key)
	db.metrics.RecordDelete(time.Since(start), found)
	db.logger.LogDelete(ctx, typ, key, found)
	return found, nil
}

// Get returns the entity stored under key.
func (db *DB) Get(typ, key string) (any, bool) {
	if db.closed.Load() {
		return nil, false
	}
	return db.ix.Get(typ, key)
}

// Len returns the number of entities of typ.
func (db *DB) Len(typ string) int {
	return db.ix.Len(typ)
}

// Stats returns index statistics.
func (db *DB) Stats() Stats {
	s := db.ix.Stats()
	return Stats{
		Types:       s.Types,
		Entities:    s.Entities,
		Terms:       s.Terms,
		OpenCursors: s.OpenCursors,
	}
}

// OpenCursors returns the number of cursors not yet released.
func (db *DB) OpenCursors() int64 {
	return db.ix.OpenCursors()
}

// Catalog returns the type catalog.
func (db *DB) Catalog() *catalog.Catalog {
	return db.cat
}

// Logger returns the configured logger.
func (db *DB) Logger() *Logger {
	return db.logger
}

// Resources returns the resource controller, or nil if no limits are configured.
func (db *DB) Resources() *resource.Controller {
	return db.rc
}

// BlobStore returns the snapshot store, or nil if none is configured.
func (db *DB) BlobStore() blobstore.BlobStore {
	return db.store
}
