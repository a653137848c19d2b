package model

import (
	"fmt"
	"slices"

	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

// Document is an instance of a document type. Property values are tracked
// with explicit presence, so a zero value is kept apart from an absent one.
// Document is not concurrency safe.
type Document struct {
	schema      *Schema
	key         string
	hasKey      bool
	values      map[string]any
	collections map[string][]*Document
}

// Schema returns the document type.
func (d *Document) Schema() *Schema {
	return d.schema
}

// Key returns the document key. The first call asks the schema key generator
// for a new key; later calls return the same one.
func (d *Document) Key() (string, error) {
	if d.hasKey {
		return d.key, nil
	}
	g := d.schema.keyGen
	if g == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrNoKeyGenerator, d.schema.name)
	}
	k, err := g.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("generating key for %s: %w", d.schema.name, err)
	}
	d.SetKey(k)
	return k, nil
}

// SetKey assigns the document key.
func (d *Document) SetKey(k string) {
	d.key, d.hasKey = k, true
}

// HasKey reports whether the document already has a key.
func (d *Document) HasKey() bool {
	return d.hasKey
}

// Set assigns a property value. A nil value, including a nil *Document, makes
// the property absent.
func (d *Document) Set(name string, v any) error {
	if !d.schema.HasProperty(name) {
		return domain.ErrUnknownField{Type: d.schema.name, Field: name}
	}
	if doc, ok := v.(*Document); v == nil || ok && doc == nil {
		delete(d.values, name)
		return nil
	}
	d.values[name] = v
	return nil
}

// Unset makes a property absent.
func (d *Document) Unset(name string) error {
	return d.Set(name, nil)
}

// Get returns a property value and whether it is present. Undeclared names are
// never present.
func (d *Document) Get(name string) (any, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Has reports whether a property value is present.
func (d *Document) Has(name string) bool {
	_, ok := d.values[name]
	return ok
}

// Collection returns the documents of a collection in insertion order. The
// slice is shared with the document.
func (d *Document) Collection(name string) ([]*Document, error) {
	if !d.schema.HasCollection(name) {
		return nil, domain.ErrUnknownField{Type: d.schema.name, Field: name}
	}
	return d.collections[name], nil
}

// Append adds documents at the end of a collection.
func (d *Document) Append(name string, docs ...*Document) error {
	if !d.schema.HasCollection(name) {
		return domain.ErrUnknownField{Type: d.schema.name, Field: name}
	}
	d.collections[name] = append(d.collections[name], docs...)
	return nil
}

// SetCollection replaces the documents of a collection. A nil slice empties
// it.
func (d *Document) SetCollection(name string, docs []*Document) error {
	if !d.schema.HasCollection(name) {
		return domain.ErrUnknownField{Type: d.schema.name, Field: name}
	}
	if docs == nil {
		docs = []*Document{}
	}
	d.collections[name] = slices.Clone(docs)
	return nil
}

// Value returns a typed property value. The bool is false when the value is
// absent or holds another type.
func Value[T any](d *Document, name string) (T, bool) {
	v, ok := d.values[name]
	if !ok {
		return *new(T), false
	}
	t, ok := v.(T)
	return t, ok
}
