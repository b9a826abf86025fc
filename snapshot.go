package quarry

import (
	"context"
	"fmt"

	"github.com/hupe1980/quarry/index/inverted"
	"github.com/hupe1980/quarry/snapshot"
)

// SaveSnapshot writes every registered type's entities to the blob store as
// snapshot name and makes it the current snapshot. Every type must have an
// entity codec.
func (db *DB) SaveSnapshot(ctx context.Context, name string) (*snapshot.Manifest, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	if db.store == nil {
		return nil, ErrNoBlobStore
	}

	m, err := db.saveSnapshot(ctx, name)
	records := 0
	if m != nil {
		records = m.Records()
	}
	db.logger.LogSnapshot(ctx, "save", name, records, err)
	return m, err
}

func (db *DB) saveSnapshot(ctx context.Context, name string) (*snapshot.Manifest, error) {
	types := db.cat.Types()
	sets := make([]snapshot.Set, 0, len(types))

	for _, typ := range types {
		c, err := db.cat.Codec(typ)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("%w: %q", ErrNoCodec, typ)
		}

		set := snapshot.Set{Type: typ, Codec: c.Name()}
		for key, entity := range db.ix.Scan(typ) {
			payload, err := c.Encode(entity)
			if err != nil {
				return nil, fmt.Errorf("quarry: encode %s %q: %w", typ, key, err)
			}
			set.Records = append(set.Records, snapshot.Record{Key: key, Payload: payload})
		}
		sets = append(sets, set)
	}

	return snapshot.Write(ctx, db.store, name, sets, snapshot.Options{
		Compression: db.compression,
		Controller:  db.rc,
	})
}

// LoadSnapshot replaces the indexed entities with the contents of snapshot
// name. Every type in the snapshot must be registered with the codec it was
// saved with. Nothing is replaced if reading, decoding or indexing fails.
func (db *DB) LoadSnapshot(ctx context.Context, name string) error {
	if db.closed.Load() {
		return ErrClosed
	}
	if db.store == nil {
		return ErrNoBlobStore
	}

	_, sets, err := snapshot.Read(ctx, db.store, name)
	if err == nil {
		err = db.restore(ctx, sets)
	}
	db.logger.LogSnapshot(ctx, "load", name, countRecords(sets), err)
	return err
}

// LoadLatestSnapshot loads the current snapshot. It returns ErrNoSnapshot if
// none was saved.
func (db *DB) LoadLatestSnapshot(ctx context.Context) error {
	if db.closed.Load() {
		return ErrClosed
	}
	if db.store == nil {
		return ErrNoBlobStore
	}

	name, err := snapshot.Current(ctx, db.store)
	if err != nil {
		return err
	}
	return db.LoadSnapshot(ctx, name)
}

func (db *DB) restore(ctx context.Context, sets []snapshot.Set) error {
	var entries []inverted.Entry
	for _, set := range sets {
		c, err := db.cat.Codec(set.Type)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: %q", ErrNoCodec, set.Type)
		}
		if set.Codec != "" && set.Codec != c.Name() {
			return fmt.Errorf("%w: %s was saved with %q, registered codec is %q", ErrCodecMismatch, set.Type, set.Codec, c.Name())
		}
		for _, rec := range set.Records {
			entity, err := c.Decode(rec.Payload)
			if err != nil {
				return fmt.Errorf("quarry: decode %s %q: %w", set.Type, rec.Key, err)
			}
			entries = append(entries, inverted.Entry{Type: set.Type, Key: rec.Key, Entity: entity})
		}
	}
	return db.ix.Replace(ctx, entries)
}

func countRecords(sets []snapshot.Set) int {
	n := 0
	for _, s := range sets {
		n += len(s.Records)
	}
	return n
}
