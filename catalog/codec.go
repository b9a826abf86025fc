package catalog

import (
	"fmt"

	"github.com/hupe1980/quarry/codec"
	"github.com/hupe1980/quarry/value"
)

// EntityCodec converts entities of one type to bytes and back.
type EntityCodec interface {
	// Name identifies the underlying codec. Snapshots record it per segment and
	// refuse to decode a segment written under another name.
	Name() string
	Encode(entity any) ([]byte, error)
	Decode(data []byte) (any, error)
}

// DocumentCodec encodes value.Document entities with c (codec.Default if nil).
func DocumentCodec(c codec.Codec) EntityCodec {
	if c == nil {
		c = codec.Default
	}
	return documentCodec{c: c}
}

type documentCodec struct {
	c codec.Codec
}

func (dc documentCodec) Name() string { return dc.c.Name() }

func (dc documentCodec) Encode(entity any) ([]byte, error) {
	doc, ok := entity.(value.Document)
	if !ok {
		return nil, fmt.Errorf("%w: want value.Document, got %T", ErrEntityType, entity)
	}
	return dc.c.Marshal(doc)
}

func (dc documentCodec) Decode(data []byte) (any, error) {
	var doc value.Document
	if err := dc.c.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// TypedCodec encodes entities of Go type T with c (codec.Default if nil).
// Decoded entities are values of type T, matching accessors built with Field[T].
func TypedCodec[T any](c codec.Codec) EntityCodec {
	if c == nil {
		c = codec.Default
	}
	return typedCodec[T]{c: c}
}

type typedCodec[T any] struct {
	c codec.Codec
}

func (tc typedCodec[T]) Name() string { return tc.c.Name() }

func (tc typedCodec[T]) Encode(entity any) ([]byte, error) {
	e, ok := entity.(T)
	if !ok {
		var zero T
		return nil, fmt.Errorf("%w: want %T, got %T", ErrEntityType, zero, entity)
	}
	return tc.c.Marshal(e)
}

func (tc typedCodec[T]) Decode(data []byte) (any, error) {
	var e T
	if err := tc.c.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return e, nil
}
