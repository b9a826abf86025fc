package loader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	gojson "github.com/goccy/go-json"
	"github.com/hupe1980/quarry/resource"
	"github.com/hupe1980/quarry/value"
	"github.com/panjf2000/ants/v2"
	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrInvalidRecord is matched by every RecordError.
	ErrInvalidRecord = errors.New("loader: invalid record")
	// ErrSchema is returned when the fields object violates the type's schema.
	ErrSchema = errors.New("schema validation failed")
)

// RecordError reports the input line of the first bad record.
type RecordError struct {
	Line  int
	cause error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("loader: line %d: %v", e.Line, e.cause)
}

func (e *RecordError) Unwrap() error { return e.cause }

func (e *RecordError) Is(target error) bool { return target == ErrInvalidRecord }

// Sink receives decoded records. *quarry.DB satisfies it.
type Sink interface {
	Put(ctx context.Context, typ, key string, entity any) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, typ, key string, entity any) error

func (f SinkFunc) Put(ctx context.Context, typ, key string, entity any) error {
	return f(ctx, typ, key, entity)
}

// Options configures Load.
type Options struct {
	// Workers is the decoding pool size. Default: 4.
	Workers int
	// Window is how many records are decoded ahead of the sink. Default: 256.
	Window int
	// MaxLineBytes bounds a single record. Default: 4MB.
	MaxLineBytes int
	// Controller throttles reading from the input. Nil means unlimited.
	Controller *resource.Controller
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.Window <= 0 {
		o.Window = 256
	}
	if o.MaxLineBytes <= 0 {
		o.MaxLineBytes = 4 * 1024 * 1024
	}
	return o
}

// Stats summarises a load.
type Stats struct {
	Records int
	PerType map[string]int
}

type envelope struct {
	Type   string            `json:"type"`
	Key    string            `json:"key"`
	Fields gojson.RawMessage `json:"fields"`
}

type job struct {
	line   int
	data   []byte
	typ    string
	key    string
	entity value.Document
	err    error
}

// Load reads NDJSON records from r, validates and decodes them, and hands them to
// sink in input order. The first bad record aborts the load with a *RecordError;
// records before it have already been delivered.
func Load(ctx context.Context, r io.Reader, cat Catalog, sink Sink, opts Options) (Stats, error) {
	opts = opts.withDefaults()
	stats := Stats{PerType: make(map[string]int)}

	pool, err := ants.NewPool(opts.Workers)
	if err != nil {
		return stats, fmt.Errorf("loader: create pool: %w", err)
	}
	defer pool.Release()

	sc := newSchemas(cat)

	if opts.Controller != nil {
		r = resource.NewRateLimitedReader(ctx, r, opts.Controller)
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), opts.MaxLineBytes)

	line := 0
	batch := make([]*job, 0, opts.Window)

	flush := func() error {
		var wg sync.WaitGroup
		for _, j := range batch {
			wg.Add(1)
			if err := pool.Submit(func() {
				defer wg.Done()
				j.decode(sc)
			}); err != nil {
				wg.Done()
				j.err = err
			}
		}
		wg.Wait()

		for _, j := range batch {
			if j.err != nil {
				return &RecordError{Line: j.line, cause: j.err}
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := sink.Put(ctx, j.typ, j.key, j.entity); err != nil {
				return &RecordError{Line: j.line, cause: err}
			}
			stats.Records++
			stats.PerType[j.typ]++
		}
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		batch = append(batch, &job{line: line, data: bytes.Clone(text)})
		if len(batch) == opts.Window {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, &RecordError{Line: line + 1, cause: err}
	}
	if err := flush(); err != nil {
		return stats, err
	}
	return stats, nil
}

func (j *job) decode(sc *schemas) {
	defer func() {
		if r := recover(); r != nil {
			j.err = fmt.Errorf("panic while decoding: %v", r)
		}
	}()

	var env envelope
	if err := gojson.Unmarshal(j.data, &env); err != nil {
		j.err = fmt.Errorf("malformed record: %w", err)
		return
	}
	if env.Type == "" {
		j.err = errors.New(`missing "type"`)
		return
	}
	if env.Key == "" {
		j.err = errors.New(`missing "key"`)
		return
	}
	if len(env.Fields) == 0 || string(env.Fields) == "null" {
		env.Fields = gojson.RawMessage("{}")
	}

	schema, err := sc.get(env.Type)
	if err != nil {
		j.err = err
		return
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(env.Fields))
	if err != nil {
		j.err = fmt.Errorf("%w: %v", ErrSchema, err)
		return
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		j.err = fmt.Errorf("%w: %s", ErrSchema, strings.Join(msgs, "; "))
		return
	}

	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(env.Fields))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		j.err = fmt.Errorf("malformed fields: %w", err)
		return
	}

	doc, err := value.DocumentFromAny(fields)
	if err != nil {
		j.err = err
		return
	}

	j.typ, j.key, j.entity = env.Type, env.Key, doc
}
