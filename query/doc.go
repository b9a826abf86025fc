// Package query compiles projection queries into immutable plans.
//
//	SELECT f1[, f2, ...] FROM TypeName [WHERE predicate]
//
// Keywords are case-insensitive; type and field names are case-sensitive. The
// select list is kept verbatim: order is preserved and duplicates are allowed, so
// callers can rely on tuple positions. The text after WHERE is handed unchanged to
// the configured index.PredicateParser; without WHERE the plan matches every
// entity of the type.
package query
