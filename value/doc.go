// Package value provides the typed field values carried by entities and result tuples.
//
// A Value is a small discriminated union. Strings are interned with Go's unique
// package so that repeated field values (tags, categories, status codes) are stored
// once and compared by handle.
//
//	v := value.String("bar1")
//	n := value.Int(42)
//	doc := value.Document{"bar": v, "count": n}
//
// Every field descriptor declares a storage Type. Type.Accepts reports whether a
// concrete Kind may be stored in a field of that type; Null is accepted everywhere.
package value
