// Package inverted provides an in-memory index engine backed by roaring-bitmap
// posting lists.
//
// Every field of every registered entity type is indexed when an entity is put,
// stored or not. Each field keeps three kinds of posting lists: exact value keys
// (whole values and array elements), analysed tokens of string values, and a
// presence list of non-null values. Predicates parsed by ParsePredicate are
// resolved to a private bitmap, and cursors walk that bitmap in ascending
// document id order.
//
// Re-putting a key assigns a fresh document id, so match order follows the
// insertion order of the current version of each entity.
package inverted
