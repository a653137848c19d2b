// Package model contains document schemas, their resolution and document
// instances.
//
// A schema declares, in order, the properties and collections of a document
// type and how its keys are generated. Property types are referenced by
// built-in converter tag, by converter value, by *Schema or by the name of
// another schema in the same [Registry]. References are bound once, by
// [Schema.Resolve], before the schema is first used.
package model

import (
	"errors"
	"sync/atomic"

	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/converter"
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
	"github.com/vinicius-lino-figueiredo/kvdoc/pkg/ctxsync"
)

// KeyField is the mapping entry holding a top-level document key. It cannot be
// declared as a property or collection.
const KeyField = "key"

type memberKind uint8

const (
	kindProperty memberKind = iota + 1
	kindCollection
)

type member struct {
	name string
	ref  any
}

// Binding is a resolved property: exactly one of Converter and Schema is set.
type Binding struct {
	Name      string
	Converter domain.Converter
	Schema    *Schema
}

// Embedded reports whether the property holds a nested document.
func (b Binding) Embedded() bool {
	return b.Schema != nil
}

// Element is a resolved collection with its element document type.
type Element struct {
	Name   string
	Schema *Schema
}

// Schema describes a document type. It is immutable once created, except for
// its resolution tables, which are written once by [Schema.Resolve].
type Schema struct {
	name        string
	properties  []member
	collections []member
	members     map[string]memberKind
	keyGen      domain.KeyGenerator
	registry    *Registry
	errs        []error

	mu         *ctxsync.Mutex
	resolved   atomic.Bool
	bindings   []Binding
	elements   []Element
	bindingIdx map[string]int
	elementIdx map[string]int
}

// NewSchema declares a standalone schema. Standalone schemas resolve names
// against the built-in converters and their own name only; use
// [Registry.Define] to reference other schemas by name.
func NewSchema(name string, options ...Option) (*Schema, error) {
	s := newSchema(name)
	for _, option := range options {
		option(s)
	}
	if err := errors.Join(s.errs...); err != nil {
		return nil, err
	}
	s.errs = nil
	return s, nil
}

func newSchema(name string) *Schema {
	s := &Schema{
		name:    name,
		members: make(map[string]memberKind),
		mu:      ctxsync.NewMutex(),
	}
	if name == "" {
		s.errs = append(s.errs, domain.ErrDeclaration{Reason: "type name cannot be empty"})
	}
	return s
}

func (s *Schema) declare(name string, kind memberKind, ref any) {
	var reason string
	switch _, dup := s.members[name]; {
	case name == "":
		reason = "name cannot be empty"
	case name == KeyField:
		reason = "name is reserved for the document key"
	case dup:
		reason = "declared more than once"
	case ref == nil:
		reason = "type reference cannot be nil"
	}
	if reason != "" {
		s.errs = append(s.errs, domain.ErrDeclaration{Type: s.name, Member: name, Reason: reason})
		return
	}

	s.members[name] = kind
	if kind == kindProperty {
		s.properties = append(s.properties, member{name: name, ref: ref})
	} else {
		s.collections = append(s.collections, member{name: name, ref: ref})
	}
}

// Name returns the type name.
func (s *Schema) Name() string {
	return s.name
}

// KeyGenerator returns the declared key generator, or nil.
func (s *Schema) KeyGenerator() domain.KeyGenerator {
	return s.keyGen
}

// Resolved reports whether the schema was already resolved.
func (s *Schema) Resolved() bool {
	return s.resolved.Load()
}

// Bindings returns the resolved properties in declaration order. It returns
// nil before resolution. The returned slice must not be modified.
func (s *Schema) Bindings() []Binding {
	if !s.resolved.Load() {
		return nil
	}
	return s.bindings
}

// Elements returns the resolved collections in declaration order. It returns
// nil before resolution. The returned slice must not be modified.
func (s *Schema) Elements() []Element {
	if !s.resolved.Load() {
		return nil
	}
	return s.elements
}

// Binding returns the resolved property with the given name.
func (s *Schema) Binding(name string) (Binding, bool) {
	if !s.resolved.Load() {
		return Binding{}, false
	}
	n, ok := s.bindingIdx[name]
	if !ok {
		return Binding{}, false
	}
	return s.bindings[n], true
}

// Element returns the resolved collection with the given name.
func (s *Schema) Element(name string) (Element, bool) {
	if !s.resolved.Load() {
		return Element{}, false
	}
	n, ok := s.elementIdx[name]
	if !ok {
		return Element{}, false
	}
	return s.elements[n], true
}

// Properties returns the declared property names in declaration order.
func (s *Schema) Properties() []string {
	return names(s.properties)
}

// Collections returns the declared collection names in declaration order.
func (s *Schema) Collections() []string {
	return names(s.collections)
}

func names(members []member) []string {
	res := make([]string, len(members))
	for n, m := range members {
		res[n] = m.name
	}
	return res
}

// HasProperty reports whether name is a declared property.
func (s *Schema) HasProperty(name string) bool {
	return s.members[name] == kindProperty
}

// HasCollection reports whether name is a declared collection.
func (s *Schema) HasCollection(name string) bool {
	return s.members[name] == kindCollection
}

// New returns a new empty instance of the document type. Its collections are
// empty and no key is generated until requested.
func (s *Schema) New() *Document {
	d := &Document{
		schema:      s,
		values:      make(map[string]any, len(s.properties)),
		collections: make(map[string][]*Document, len(s.collections)),
	}
	for _, c := range s.collections {
		d.collections[c.name] = []*Document{}
	}
	return d
}

// Option configures a [Schema] declaration through the functional options
// pattern.
type Option func(*Schema)

// WithProperty declares a property. The reference can be a built-in tag (see
// [converter.Lookup]), a [domain.Converter], a *Schema or the name of another
// schema.
func WithProperty(name string, ref any) Option {
	return func(s *Schema) {
		s.declare(name, kindProperty, ref)
	}
}

// WithPair declares a property converted by a pair of user functions. Both
// functions are required.
func WithPair(name string, serialize, deserialize converter.Func) Option {
	return func(s *Schema) {
		p, err := converter.NewPair(serialize, deserialize)
		if err != nil {
			s.errs = append(s.errs, domain.ErrDeclaration{Type: s.name, Member: name, Reason: err.Error()})
			return
		}
		s.declare(name, kindProperty, p)
	}
}

// WithCollection declares an ordered collection of documents. The reference
// can be a *Schema or the name of another schema.
func WithCollection(name string, ref any) Option {
	return func(s *Schema) {
		s.declare(name, kindCollection, ref)
	}
}

// WithKeyGenerator sets the generator used for new document keys.
func WithKeyGenerator(g domain.KeyGenerator) Option {
	return func(s *Schema) {
		s.keyGen = g
	}
}

// WithKeyFunc sets a plain function as key generator.
func WithKeyFunc(f func() string) Option {
	return func(s *Schema) {
		if f == nil {
			s.keyGen = nil
			return
		}
		s.keyGen = domain.KeyGeneratorFunc(func() (string, error) { return f(), nil })
	}
}
