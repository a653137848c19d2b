// Package domain contains the contracts shared by every kvdoc component.
//
// This package defines the interfaces that must be implemented by adapters
// (converters, stores, codecs and key generators), the ordered mapping used as
// the intermediate representation of documents and the error types returned
// by the library.
package domain

import (
	"context"
	"iter"
)

// Converter translates a single property value between its runtime form and
// the primitive form stored in a [Mapping].
type Converter interface {
	// Serialize converts a runtime value to a primitive value.
	Serialize(any) (any, error)
	// Deserialize converts a primitive value back to its runtime form. A
	// nil result means the value is absent.
	Deserialize(any) (any, error)
}

// Mapping is the ordered, string-keyed intermediate representation of a
// document. Keys are iterated in insertion order, and setting an existing key
// keeps its original position. Values are primitives, nested mappings or
// []any sequences. Mapping is not concurrency safe.
type Mapping interface {
	// Get returns the value under the given key, or nil if unset.
	Get(string) any
	// Set sets the value under the given key.
	Set(string, any)
	// Unset removes the given key.
	Unset(string)
	// Has reports whether a value is set under the given key.
	Has(string) bool
	// Len returns the number of keys in the mapping.
	Len() int
	// Keys returns the keys in insertion order.
	Keys() iter.Seq[string]
	// Iter returns the key-value pairs in insertion order.
	Iter() iter.Seq2[string, any]
}

// Store is the external key-value store holding one encoded document per
// key.
type Store interface {
	// Set writes value under key. The returned bool is the store
	// acknowledgement; false means the write did not succeed.
	Set(ctx context.Context, key string, value []byte) (bool, error)
	// Get reads the value under key. The returned bool reports whether the
	// key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

// Codec converts mappings to the wire format written to a [Store] and back.
type Codec interface {
	// ContentType returns the MIME type of the encoded data.
	ContentType() string
	// Encode converts a mapping to bytes.
	Encode(Mapping) ([]byte, error)
	// Decode converts bytes back to a mapping. The encoded data must hold
	// an object at the top level.
	Decode([]byte) (Mapping, error)
}

// KeyGenerator produces new unique document keys.
type KeyGenerator interface {
	// GenerateKey returns a new key.
	GenerateKey() (string, error)
}

// KeyGeneratorFunc is an adapter to allow the use of ordinary functions as
// [KeyGenerator].
type KeyGeneratorFunc func() (string, error)

// GenerateKey implements [KeyGenerator].
func (f KeyGeneratorFunc) GenerateKey() (string, error) {
	return f()
}

// MappingFactory represents a function that constructs empty [Mapping]
// instances.
type MappingFactory = func() Mapping
