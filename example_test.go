package quarry_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/quarry"
	"github.com/hupe1980/quarry/blobstore"
	"github.com/hupe1980/quarry/catalog"
	"github.com/hupe1980/quarry/value"
)

type Foo struct {
	Bar string `json:"bar"`
	Baz string `json:"baz"`
}

func fooFields() []catalog.FieldDescriptor {
	return []catalog.FieldDescriptor{
		catalog.StringField("bar", func(f Foo) string { return f.Bar }),
		catalog.StringField("baz", func(f Foo) string { return f.Baz }),
	}
}

// Example demonstrates registering a type and projecting two of its fields.
func Example() {
	ctx := context.Background()

	db, err := quarry.New()
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Register("Foo", fooFields()); err != nil {
		log.Fatal(err)
	}
	_ = db.Put(ctx, "Foo", "1", Foo{Bar: "bar1", Baz: "baz1"})
	_ = db.Put(ctx, "Foo", "2", Foo{Bar: "bar2", Baz: "baz2"})

	q, err := db.Query("SELECT baz, bar FROM Foo WHERE bar:'bar1'")
	if err != nil {
		log.Fatal(err)
	}

	tuples, err := q.List(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, t := range tuples {
		fmt.Println(t)
	}
	// Output: ["baz1", "bar1"]
}

// ExampleQuery_Iterator demonstrates lazy execution with explicit release.
func ExampleQuery_Iterator() {
	ctx := context.Background()

	db, _ := quarry.New()
	defer db.Close()

	_ = db.Register("Foo", fooFields())
	for i := range 3 {
		_ = db.Put(ctx, "Foo", fmt.Sprint(i), Foo{Bar: fmt.Sprintf("bar%d", i), Baz: "baz"})
	}

	q, _ := db.Query("SELECT bar FROM Foo WHERE baz:baz")
	it, err := q.Iterator(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer it.Close()

	for it.HasNext() {
		t, err := it.Next()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(t.Interfaces()...)
	}
	// Output:
	// bar0
	// bar1
	// bar2
}

// ExampleQuery_Stream demonstrates range-over-func execution.
func ExampleQuery_Stream() {
	ctx := context.Background()

	db, _ := quarry.New()
	defer db.Close()

	_ = db.Register("Foo", fooFields())
	for i := range 10 {
		_ = db.Put(ctx, "Foo", fmt.Sprint(i), Foo{Bar: fmt.Sprintf("bar%d", i), Baz: "baz"})
	}

	q, _ := db.Query("SELECT bar FROM Foo")
	for t, err := range q.Stream(ctx, quarry.WithOffset(2), quarry.WithMaxResults(2)) {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(t)
	}
	fmt.Println("open cursors:", db.OpenCursors())
	// Output:
	// ["bar2"]
	// ["bar3"]
	// open cursors: 0
}

// ExampleDB_SaveSnapshot demonstrates persisting document entities.
func ExampleDB_SaveSnapshot() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	fields := []catalog.FieldDescriptor{
		catalog.DocumentField("title", value.TypeString),
		catalog.DocumentField("year", value.TypeInt),
	}

	src, _ := quarry.New(quarry.WithBlobStore(store))
	_ = src.RegisterDocument("Book", fields)
	_ = src.Put(ctx, "Book", "dune", value.Document{"title": value.String("Dune"), "year": value.Int(1965)})
	if _, err := src.SaveSnapshot(ctx, "nightly"); err != nil {
		log.Fatal(err)
	}

	dst, _ := quarry.New(quarry.WithBlobStore(store))
	_ = dst.RegisterDocument("Book", fields)
	if err := dst.LoadLatestSnapshot(ctx); err != nil {
		log.Fatal(err)
	}

	q, _ := dst.Query("SELECT title, year FROM Book WHERE year:>1900")
	tuples, _ := q.List(ctx)
	fmt.Println(tuples)
	// Output: [["Dune", 1965]]
}

// ExampleQuery_Plan demonstrates inspecting a compiled plan.
func ExampleQuery_Plan() {
	db, _ := quarry.New()
	defer db.Close()

	_ = db.Register("Foo", fooFields())

	q, _ := db.Query("SELECT bar, bar FROM Foo")
	fmt.Println(q.Fields())
	fmt.Print(q.Plan().Explain())
	// Output:
	// [bar bar]
	// Project [bar, bar]
	//   Match Foo (all)
}
