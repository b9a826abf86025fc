package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/hupe1980/quarry"
	"github.com/hupe1980/quarry/blobstore"
	"github.com/hupe1980/quarry/blobstore/minio"
	"github.com/hupe1980/quarry/blobstore/s3"
	"github.com/hupe1980/quarry/config"
	"github.com/hupe1980/quarry/loader"
	"github.com/hupe1980/quarry/resource"
	"github.com/hupe1980/quarry/snapshot"
)

// app is a DB built from a configuration file.
type app struct {
	cfg    *config.File
	db     *quarry.DB
	logger *quarry.Logger
}

type appOptions struct {
	data     string
	metrics  quarry.MetricsCollector
	skipLoad bool
}

func newLogger(lc config.LogConfig) (*quarry.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(lc.Format, "json") {
		return quarry.NewLogger(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return quarry.NewLogger(slog.NewTextHandler(os.Stderr, opts)), nil
}

func newBlobStore(ctx context.Context, sc config.SnapshotConfig) (blobstore.BlobStore, error) {
	switch sc.Backend {
	case "":
		return nil, nil
	case "local":
		return blobstore.NewLocalStore(sc.Path), nil
	case "minio":
		return minio.Dial(minio.Config{
			Endpoint:  sc.Endpoint,
			AccessKey: sc.AccessKey,
			SecretKey: sc.SecretKey,
			Region:    sc.Region,
			Secure:    sc.Secure,
			Bucket:    sc.Bucket,
			Prefix:    sc.Prefix,
		})
	case "s3":
		opts := []s3.Option{s3.WithPrefix(sc.Prefix), s3.WithRegion(sc.Region)}
		if sc.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(sc.Endpoint))
		}
		store, err := s3.New(ctx, sc.Bucket, opts...)
		if err != nil {
			return nil, err
		}
		if sc.CommitTable == "" {
			return store, nil
		}

		var loadOpts []func(*awsconfig.LoadOptions) error
		if sc.Region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(sc.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		baseURI := "s3://" + sc.Bucket + "/" + sc.Prefix
		return s3.NewDDBCommitStore(store, dynamodb.NewFromConfig(awsCfg), sc.CommitTable, baseURI), nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", sc.Backend)
	}
}

func openApp(ctx context.Context, path string, o appOptions) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	store, err := newBlobStore(ctx, cfg.Snapshot)
	if err != nil {
		return nil, err
	}
	compression, err := snapshot.ParseCompression(cfg.Snapshot.Compression)
	if err != nil {
		return nil, err
	}

	opts := []quarry.Option{
		quarry.WithLogger(logger),
		quarry.WithSnapshotCompression(compression),
		quarry.WithResourceConfig(resource.Config{
			MaxOpenCursors:       cfg.Resources.MaxOpenCursors,
			QueriesPerSecond:     cfg.Resources.QueriesPerSecond,
			QueryBurst:           cfg.Resources.QueryBurst,
			MaxBackgroundWorkers: cfg.Resources.MaxBackgroundWorkers,
			IOLimitBytesPerSec:   cfg.Resources.IOLimitBytesPerSec,
		}),
	}
	if store != nil {
		opts = append(opts, quarry.WithBlobStore(store))
	}
	if o.metrics != nil {
		opts = append(opts, quarry.WithMetricsCollector(o.metrics))
	}

	db, err := quarry.New(opts...)
	if err != nil {
		return nil, err
	}
	if err := cfg.RegisterTypes(db.Catalog(), nil); err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &app{cfg: cfg, db: db, logger: logger}
	if o.skipLoad {
		return a, nil
	}
	if err := a.recover(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	data := o.data
	if data == "" {
		data = cfg.Data
	}
	if data != "" {
		if err := a.loadData(ctx, data); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return a, nil
}

// recover restores the current snapshot when recovery is enabled.
func (a *app) recover(ctx context.Context) error {
	rec, err := a.cfg.RecoverySetup()
	if err != nil {
		return err
	}
	if !rec.Enabled() || a.cfg.Snapshot.Backend == "" {
		return nil
	}

	a.logger.InfoContext(ctx, "recovering from snapshot", "recovery", rec.String())
	err = a.db.LoadLatestSnapshot(ctx)
	if errors.Is(err, quarry.ErrNoSnapshot) {
		a.logger.InfoContext(ctx, "no snapshot to recover from")
		return nil
	}
	return err
}

func (a *app) loadData(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	stats, err := loader.Load(ctx, f, a.db.Catalog(), a.db, loader.Options{Controller: a.db.Resources()})
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	a.logger.InfoContext(ctx, "dataset loaded", "path", path, "records", stats.Records)
	return nil
}

func (a *app) Close() error {
	return a.db.Close()
}
