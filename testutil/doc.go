// Package testutil provides testing utilities for quarry.
//
// This package is intended for use in tests only.
//
// # Fixtures
//
//	cat := catalog.New()
//	testutil.RegisterFoo(cat)                 // Foo{Bar, Baz}
//	foos := testutil.NewRNG(seed).Foos(100)   // random Foo entities
//
// # Scripted matcher
//
// Matcher is an index.Matcher over a fixed entity list. It can fail on demand
// and counts open cursors, which makes resource leaks observable:
//
//	m := &testutil.Matcher{Type: testutil.FooType, Entities: testutil.Entities(foos...)}
//	m.FailAt = 3
package testutil
