// Package quarry is an embedded engine for projection queries over indexed entities.
//
// Entity types are registered with field descriptors; entities are indexed under a
// key; queries select a subset of stored fields from the entities matching a
// predicate and return them as tuples.
//
// # Quick Start
//
//	db, _ := quarry.New()
//	defer db.Close()
//
//	_ = db.Register("Foo", []catalog.FieldDescriptor{
//	    catalog.StringField("bar", func(f Foo) string { return f.Bar }),
//	    catalog.IntField("baz", func(f Foo) int64 { return f.Baz }),
//	}, catalog.WithEntityCodec(catalog.TypedCodec[Foo](nil)))
//
//	_ = db.Put(ctx, "Foo", "1", Foo{Bar: "bar1", Baz: 1})
//
//	q, _ := db.Query("SELECT bar, baz FROM Foo WHERE bar:'bar1'")
//	tuples, _ := q.List(ctx)
//
// # Execution Modes
//
// A query runs in one of three modes that always agree on content and order:
//
//	tuples, err := q.List(ctx)           // materialized
//
//	it, err := q.Iterator(ctx)           // lazy, must be closed
//	defer it.Close()
//	for it.HasNext() {
//	    t, err := it.Next()
//	}
//
//	for t, err := range q.Stream(ctx) {  // range-over-func, released on break
//	}
//
// Every mode compiles a fresh plan, so a Query can be reused and shared.
//
// # Predicates
//
// The WHERE clause uses a small Lucene-like language, see package predicate:
//
//	bar:'bar1' AND baz:[1 TO 10]
//	bar:ba* OR NOT baz:3
//
// # Snapshots
//
// With a blob store configured (WithBlobStore), SaveSnapshot writes every type's
// entities with its registered codec and LoadSnapshot restores them:
//
//	db, _ := quarry.New(quarry.WithBlobStore(blobstore.NewLocalStore("./snapshots")))
//	_ = db.SaveSnapshot(ctx, "nightly")
//	_ = db.LoadLatestSnapshot(ctx)
package quarry
