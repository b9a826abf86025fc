package quarry

import (
	"log/slog"

	"github.com/hupe1980/quarry/blobstore"
	"github.com/hupe1980/quarry/codec"
	"github.com/hupe1980/quarry/resource"
	"github.com/hupe1980/quarry/snapshot"
)

type options struct {
	codec               codec.Codec
	metricsCollector    MetricsCollector
	logger              *Logger
	resourceConfig      *resource.Config
	blobStore           blobstore.BlobStore
	snapshotCompression snapshot.Compression
}

// Option configures New.
type Option func(*options)

// WithCodec sets the codec used for document types registered through
// RegisterDocument.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &quarry.BasicMetricsCollector{}
//	db, _ := quarry.New(quarry.WithMetricsCollector(metrics))
//	// ... use db ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Tuples: %d\n", stats.QueryCount, stats.TuplesReturned)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := quarry.NewJSONLogger(slog.LevelInfo)
//	db, _ := quarry.New(quarry.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceConfig bounds open cursors, query admission rate and snapshot IO.
//
//	db, _ := quarry.New(quarry.WithResourceConfig(resource.Config{
//	    MaxOpenCursors:   64,
//	    QueriesPerSecond: 500,
//	}))
func WithResourceConfig(cfg resource.Config) Option {
	return func(o *options) {
		o.resourceConfig = &cfg
	}
}

// WithBlobStore sets the store used by SaveSnapshot and LoadSnapshot.
func WithBlobStore(store blobstore.BlobStore) Option {
	return func(o *options) {
		o.blobStore = store
	}
}

// WithSnapshotCompression sets the segment compression of SaveSnapshot.
// Default: zstd.
func WithSnapshotCompression(c snapshot.Compression) Option {
	return func(o *options) {
		o.snapshotCompression = c
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:               codec.Default,
		metricsCollector:    NoopMetricsCollector{},
		logger:              NoopLogger(),
		snapshotCompression: snapshot.CompressionZSTD,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
