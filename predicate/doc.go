// Package predicate implements the predicate language used after WHERE.
//
// The language is a small Lucene-like syntax:
//
//	bar:bar1                 term (analysed for strings)
//	bar:'bar one'            quoted term
//	bar:ba*                  token prefix
//	count:>3  count:<=10     comparisons
//	count:[1 TO 5]           inclusive range ({} for exclusive bounds, * for open)
//	bar:*                    field has a non-null value
//	*                        every entity
//	a:x AND (b:y OR -c:z)    boolean structure; juxtaposition means AND
//
// Parse produces an AST. Engines evaluate it against their own posting lists;
// Eval evaluates it directly against field values and serves as the reference
// semantics.
package predicate
