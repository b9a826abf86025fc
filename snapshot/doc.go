// Package snapshot persists entity sets to a blobstore.BlobStore and reads them back.
//
// A snapshot named N is laid out as
//
//	N/<type>.seg   one compressed segment per entity type
//	N/MANIFEST     JSON description of the segments
//	CURRENT        name of the latest completed snapshot
//
// Segments are written first and in parallel, then the manifest, then CURRENT, so
// a reader that follows CURRENT never sees a half-written snapshot.
//
// Segment layout (before compression):
//
//	[count u32] { [keyLen u32][key][payloadLen u32][payload] } * count
//
// The compressed block carries an 8-byte header [uncompressed u32][compressed u32];
// compressed == 0 means the body is stored raw.
package snapshot
