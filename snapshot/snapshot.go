package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/hupe1980/quarry/blobstore"
	"github.com/hupe1980/quarry/resource"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoCodec is returned when an entity type has no registered codec.
	ErrNoCodec = errors.New("snapshot: entity type has no codec")
	// ErrCorrupt is returned when a segment or manifest fails validation.
	ErrCorrupt = errors.New("snapshot: corrupt data")
	// ErrNoSnapshot is returned by ReadCurrent when no snapshot was committed.
	ErrNoSnapshot = errors.New("snapshot: no current snapshot")
	// ErrCodecMismatch is returned when a segment was encoded with another codec
	// than the one registered for its type.
	ErrCodecMismatch = errors.New("snapshot: codec mismatch")
	// ErrInvalidName is returned for empty or path-like snapshot names.
	ErrInvalidName = errors.New("snapshot: invalid name")
)

// Options configures Write.
type Options struct {
	Compression Compression
	// Controller bounds segment concurrency and IO throughput. Nil means unlimited.
	Controller *resource.Controller
	// Now is used for the manifest timestamp. Defaults to time.Now.
	Now func() time.Time
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." || name == CurrentFileName {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func segmentPath(name, typ string) string {
	return path.Join(name, url.PathEscape(typ)+".seg")
}

func manifestPath(name string) string {
	return path.Join(name, ManifestFileName)
}

// Write stores sets as snapshot name and makes it CURRENT.
func Write(ctx context.Context, store blobstore.BlobStore, name string, sets []Set, opts Options) (*Manifest, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	seen := make(map[string]struct{}, len(sets))
	for _, s := range sets {
		if _, dup := seen[s.Type]; dup {
			return nil, fmt.Errorf("snapshot: duplicate set for type %q", s.Type)
		}
		seen[s.Type] = struct{}{}
	}

	rc := opts.Controller
	segments := make([]SegmentInfo, len(sets))

	g, gctx := errgroup.WithContext(ctx)
	for i, set := range sets {
		g.Go(func() error {
			if err := rc.AcquireBackground(gctx); err != nil {
				return err
			}
			defer rc.ReleaseBackground()

			body := encodeRecords(set.Records)
			block, err := compressBlock(body, opts.Compression)
			if err != nil {
				return fmt.Errorf("snapshot: compress %s: %w", set.Type, err)
			}
			if err := rc.AcquireIO(gctx, len(block)); err != nil {
				return err
			}

			p := segmentPath(name, set.Type)
			if err := store.Put(gctx, p, block); err != nil {
				return fmt.Errorf("snapshot: write segment %s: %w", p, err)
			}

			segments[i] = SegmentInfo{
				Type:     set.Type,
				Path:     p,
				Records:  len(set.Records),
				Bytes:    int64(len(block)),
				Checksum: checksum(body),
				Codec:    set.Codec,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(segments, func(i, j int) bool { return segments[i].Type < segments[j].Type })

	m := &Manifest{
		Version:     CurrentVersion,
		ID:          uuid.NewString(),
		Name:        name,
		CreatedAt:   opts.Now().UTC(),
		Compression: opts.Compression.String(),
		Segments:    segments,
	}

	data, err := gojson.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode manifest: %w", err)
	}
	if err := store.Put(ctx, manifestPath(name), data); err != nil {
		return nil, fmt.Errorf("snapshot: write manifest: %w", err)
	}
	if err := store.Put(ctx, CurrentFileName, []byte(name)); err != nil {
		return nil, fmt.Errorf("snapshot: commit: %w", err)
	}
	return m, nil
}

// ReadManifest loads the manifest of snapshot name.
func ReadManifest(ctx context.Context, store blobstore.BlobStore, name string) (*Manifest, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	data, err := blobstore.Get(ctx, store, manifestPath(name))
	if err != nil {
		return nil, fmt.Errorf("snapshot: read manifest %s: %w", name, err)
	}

	var m Manifest
	if err := gojson.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest %s: %v", ErrCorrupt, name, err)
	}
	if m.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: unsupported manifest version %d", ErrCorrupt, m.Version)
	}
	return &m, nil
}

// Read loads snapshot name. Sets are returned in manifest (type name) order.
func Read(ctx context.Context, store blobstore.BlobStore, name string) (*Manifest, []Set, error) {
	m, err := ReadManifest(ctx, store, name)
	if err != nil {
		return nil, nil, err
	}

	c, err := ParseCompression(m.Compression)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	sets := make([]Set, len(m.Segments))

	g, gctx := errgroup.WithContext(ctx)
	for i, seg := range m.Segments {
		g.Go(func() error {
			block, err := blobstore.Get(gctx, store, seg.Path)
			if err != nil {
				return fmt.Errorf("snapshot: read segment %s: %w", seg.Path, err)
			}
			body, err := decompressBlock(block, c)
			if err != nil {
				return fmt.Errorf("segment %s: %w", seg.Path, err)
			}
			if checksum(body) != seg.Checksum {
				return fmt.Errorf("%w: segment %s checksum mismatch", ErrCorrupt, seg.Path)
			}
			records, err := decodeRecords(body)
			if err != nil {
				return fmt.Errorf("segment %s: %w", seg.Path, err)
			}
			if len(records) != seg.Records {
				return fmt.Errorf("%w: segment %s has %d records, manifest says %d", ErrCorrupt, seg.Path, len(records), seg.Records)
			}
			sets[i] = Set{Type: seg.Type, Codec: seg.Codec, Records: records}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return m, sets, nil
}

// Current returns the name of the latest committed snapshot.
func Current(ctx context.Context, store blobstore.BlobStore) (string, error) {
	data, err := blobstore.Get(ctx, store, CurrentFileName)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return "", ErrNoSnapshot
		}
		return "", fmt.Errorf("snapshot: read %s: %w", CurrentFileName, err)
	}
	return string(bytes.TrimSpace(data)), nil
}

// ReadCurrent loads the snapshot CURRENT points to.
func ReadCurrent(ctx context.Context, store blobstore.BlobStore) (*Manifest, []Set, error) {
	name, err := Current(ctx, store)
	if err != nil {
		return nil, nil, err
	}
	return Read(ctx, store, name)
}

// List returns the names of all snapshots with a manifest, sorted.
func List(ctx context.Context, store blobstore.BlobStore) ([]string, error) {
	blobs, err := store.List(ctx, "")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, b := range blobs {
		dir, file := path.Split(b)
		if file == ManifestFileName && dir != "" {
			names = append(names, strings.TrimSuffix(dir, "/"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes snapshot name. CURRENT is left untouched.
func Delete(ctx context.Context, store blobstore.BlobStore, name string) error {
	if err := validName(name); err != nil {
		return err
	}

	blobs, err := store.List(ctx, name+"/")
	if err != nil {
		return err
	}
	// Manifest last so a partial delete is still recognisable by List.
	sort.SliceStable(blobs, func(i, j int) bool {
		return path.Base(blobs[j]) == ManifestFileName && path.Base(blobs[i]) != ManifestFileName
	})
	for _, b := range blobs {
		if err := store.Delete(ctx, b); err != nil {
			return err
		}
	}
	return nil
}
