package snapshot

import (
	"time"
)

const (
	// ManifestFileName is the per-snapshot manifest blob.
	ManifestFileName = "MANIFEST"
	// CurrentFileName is the pointer to the latest snapshot.
	CurrentFileName = "CURRENT"
	// CurrentVersion is the manifest format version written by this package.
	CurrentVersion = 1
)

// Manifest describes a completed snapshot.
type Manifest struct {
	Version     int           `json:"version"`
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	CreatedAt   time.Time     `json:"created_at"`
	Compression string        `json:"compression"`
	Segments    []SegmentInfo `json:"segments"`
}

// SegmentInfo describes a single segment.
type SegmentInfo struct {
	Type     string `json:"type"`
	Path     string `json:"path"` // Relative to the store root
	Records  int    `json:"records"`
	Bytes    int64  `json:"bytes"` // Stored size
	Checksum uint32 `json:"crc32c"` // Of the uncompressed body
	Codec    string `json:"codec,omitempty"`
}

// Records returns the total record count across segments.
func (m *Manifest) Records() int {
	n := 0
	for _, s := range m.Segments {
		n += s.Records
	}
	return n
}
