// Package loader bulk-loads newline-delimited JSON records into an entity sink.
//
// Each line is one record:
//
//	{"type": "Foo", "key": "1", "fields": {"bar": "bar1", "baz": 1}}
//
// The fields object is validated against a JSON Schema derived from the catalog
// descriptors of the record's type, then decoded into a value.Document. Validation
// and decoding run on a worker pool; records still reach the sink in input order.
package loader
