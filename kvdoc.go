// Package kvdoc maps structured documents to entries of a key-value store.
//
// Document types are described by explicit schemas. A schema declares, in
// order, the properties of the type, each bound to a converter or to another
// document type, and its collections of nested documents. Schemas are
// declared in a [Registry], which lets them reference each other by name,
// including before the referenced type is declared.
//
// A [Mapper] saves document instances under their keys, encoded with a
// [Codec], and finds them back:
//
//	reg := kvdoc.NewRegistry()
//	person, _ := reg.Define("Person",
//		kvdoc.WithProperty("name", kvdoc.TagString),
//		kvdoc.WithCollection("pets", "Pet"),
//		kvdoc.WithKeyGenerator(kvdoc.NewUUID()),
//	)
//	_, _ = reg.Define("Pet", kvdoc.WithProperty("name", kvdoc.TagString))
//
//	m := kvdoc.NewMapper()
//	doc := person.New()
//	_ = doc.Set("name", "Ann")
//	key, _ := m.Save(ctx, doc)
//	found, _ := m.Find(ctx, person, key)
package kvdoc

import (
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/converter"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/keygen"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/mapper"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/model"
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

// Built-in converter tags, usable as property references.
const (
	TagString  = converter.TagString
	TagInteger = converter.TagInteger
	TagFloat   = converter.TagFloat
	TagDate    = converter.TagDate
)

var (
	// ErrUnresolvableType is wrapped by [ErrSchema] when a property
	// reference is neither a converter nor a document type.
	ErrUnresolvableType = domain.ErrUnresolvableType
	// ErrNotDocumentType is returned when a value expected to be a document
	// of a given type is not one.
	ErrNotDocumentType = domain.ErrNotDocumentType
	// ErrNoKeyGenerator is returned when a key is needed for a document
	// whose schema has no key generator.
	ErrNoKeyGenerator = domain.ErrNoKeyGenerator
	// ErrNotFound is returned by [Mapper.Load] when no document is stored
	// under the given key.
	ErrNotFound = domain.ErrNotFound
	// ErrTargetNil is returned when a nil value is given where a target is
	// required.
	ErrTargetNil = domain.ErrTargetNil
	// ErrNonPointer is returned when decoding into a value that is not a
	// pointer.
	ErrNonPointer = domain.ErrNonPointer
)

// ErrSchema is returned when a schema member cannot be resolved.
type ErrSchema = domain.ErrSchema

// ErrDeclaration is returned when a schema declaration is invalid.
type ErrDeclaration = domain.ErrDeclaration

// ErrConversion is returned when a converter cannot convert a value.
type ErrConversion = domain.ErrConversion

// ErrStoreWrite is returned when the store does not acknowledge a write.
type ErrStoreWrite = domain.ErrStoreWrite

// ErrUnknownField is returned when accessing a name the schema does not
// declare.
type ErrUnknownField = domain.ErrUnknownField

// ErrDecode wraps errors of decoding documents into Go values.
type ErrDecode = domain.ErrDecode

// ErrCodec is returned when stored data cannot be decoded.
type ErrCodec = domain.ErrCodec

// Converter translates a property value between its runtime and primitive
// forms.
type Converter = domain.Converter

// Mapping is the ordered intermediate representation of a document.
type Mapping = domain.Mapping

// Store is the key-value store documents are saved to.
type Store = domain.Store

// Codec converts mappings to stored bytes and back.
type Codec = domain.Codec

// KeyGenerator produces new document keys.
type KeyGenerator = domain.KeyGenerator

// Schema describes a document type.
type Schema = model.Schema

// Document is an instance of a document type.
type Document = model.Document

// Registry holds schemas that reference each other by name.
type Registry = model.Registry

// Mapper saves documents to a [Store] and finds them back.
type Mapper = mapper.Mapper

// SchemaOption configures a schema declaration.
type SchemaOption = model.Option

// RegistryOption configures a [Registry].
type RegistryOption = model.RegistryOption

// MapperOption configures a [Mapper].
type MapperOption = mapper.Option

// Fallback policies for unresolvable property references.
const (
	FallbackFail        = model.FallbackFail
	FallbackPassthrough = model.FallbackPassthrough
)

// NewRegistry returns an empty [Registry]. Options available:
//
// - [WithFallback]: sets the policy for unresolvable property references.
func NewRegistry(options ...RegistryOption) *Registry {
	return model.NewRegistry(options...)
}

// WithFallback sets the policy for unresolvable property references.
func WithFallback(f model.Fallback) RegistryOption {
	return model.WithFallback(f)
}

// NewSchema declares a standalone schema, which cannot reference other
// schemas by name.
func NewSchema(name string, options ...SchemaOption) (*Schema, error) {
	return model.NewSchema(name, options...)
}

// WithProperty declares a property bound to a converter tag, a [Converter], a
// *[Schema] or the name of a schema.
func WithProperty(name string, ref any) SchemaOption {
	return model.WithProperty(name, ref)
}

// WithPair declares a property converted by a pair of functions.
func WithPair(name string, serialize, deserialize func(any) (any, error)) SchemaOption {
	return model.WithPair(name, serialize, deserialize)
}

// WithCollection declares an ordered collection of documents.
func WithCollection(name string, ref any) SchemaOption {
	return model.WithCollection(name, ref)
}

// WithKeyGenerator sets the generator of new document keys.
func WithKeyGenerator(g KeyGenerator) SchemaOption {
	return model.WithKeyGenerator(g)
}

// WithKeyFunc sets a function as generator of new document keys.
func WithKeyFunc(f func() string) SchemaOption {
	return model.WithKeyFunc(f)
}

// NewUUID returns a [KeyGenerator] of random UUIDs.
func NewUUID() KeyGenerator {
	return keygen.NewUUID()
}

// NewRandomKey returns a [KeyGenerator] of random alphanumeric keys.
func NewRandomKey() KeyGenerator {
	return keygen.NewRandom()
}

// NewMapper returns a new [Mapper]. Options available:
//
// - [WithStore]: sets the store. Defaults to an in-memory store.
//
// - [WithCodec]: sets the stored format. Defaults to JSON.
func NewMapper(options ...MapperOption) *Mapper {
	return mapper.NewMapper(options...)
}

// WithStore sets the store used by a [Mapper].
func WithStore(s Store) MapperOption {
	return mapper.WithStore(s)
}

// WithCodec sets the codec used by a [Mapper].
func WithCodec(c Codec) MapperOption {
	return mapper.WithCodec(c)
}
