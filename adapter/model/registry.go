package model

import (
	"context"
	"errors"
	"sync"

	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/converter"
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

// Fallback is the policy applied to property references that are neither a
// converter nor a document type.
type Fallback uint8

const (
	// FallbackFail makes resolution fail with a [domain.ErrSchema].
	FallbackFail Fallback = iota
	// FallbackPassthrough binds the property to [converter.Passthrough],
	// storing values as they are.
	FallbackPassthrough
)

// Registry holds schemas by name so they can reference each other, including
// before the referenced schema is declared. Schemas are kept in declaration
// order. Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	schemas  map[string]*Schema
	order    []*Schema
	fallback Fallback
}

// RegistryOption configures a [Registry] through the functional options
// pattern.
type RegistryOption func(*Registry)

// WithFallback sets the policy for unresolvable property references. Defaults
// to [FallbackFail]. Collections never fall back.
func WithFallback(f Fallback) RegistryOption {
	return func(r *Registry) {
		r.fallback = f
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(options ...RegistryOption) *Registry {
	r := &Registry{
		schemas:  make(map[string]*Schema),
		fallback: FallbackFail,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Define declares a schema and registers it under its name. Names must be
// unique and cannot shadow a built-in converter tag.
func (r *Registry) Define(name string, options ...Option) (*Schema, error) {
	s := newSchema(name)
	s.registry = r
	for _, option := range options {
		option(s)
	}
	if err := errors.Join(s.errs...); err != nil {
		return nil, err
	}
	s.errs = nil

	if _, ok := converter.Lookup(name); ok {
		return nil, domain.ErrDeclaration{Type: name, Reason: "type name is a built-in converter tag"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schemas[name]; ok {
		return nil, domain.ErrDeclaration{Type: name, Reason: "type already defined"}
	}
	r.schemas[name] = s
	r.order = append(r.order, s)
	return s, nil
}

// Lookup returns the schema registered under name.
func (r *Registry) Lookup(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// Schemas returns the registered schemas in declaration order.
func (r *Registry) Schemas() []*Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]*Schema, len(r.order))
	copy(res, r.order)
	return res
}

// Resolve resolves every registered schema in declaration order. Errors of all
// schemas are joined.
func (r *Registry) Resolve(ctx context.Context) error {
	var errs []error
	for _, s := range r.Schemas() {
		if err := s.Resolve(ctx); err != nil {
			if ctx.Err() != nil {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
