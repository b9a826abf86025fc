// Package catalog holds the registered entity types and their field descriptors.
//
// Entity types are declared explicitly at startup: each type name maps to an
// ordered list of descriptors, and every descriptor carries the accessor used to
// read the field from an entity. The catalog never inspects entity structure.
//
//	cat := catalog.New()
//	err := cat.Register("Foo", []catalog.FieldDescriptor{
//	    catalog.StringField("bar", func(f Foo) string { return f.Bar }),
//	    catalog.StringField("baz", func(f Foo) string { return f.Baz }),
//	})
//
// Declaration order is kept for listing and validation only. Queries choose their
// own projection order.
package catalog
