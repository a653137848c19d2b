package model

import (
	"context"
	"errors"
	"time"

	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/converter"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/signal"
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

// Resolve binds every declared property to a converter or document type and
// every collection to its element document type, in declaration order.
//
// Resolution happens at most once. Calls on a resolved schema return nil
// right away, and concurrent callers wait for the one running. A failed
// resolution publishes nothing, so the schema stays unresolved and the same
// error is returned on the next call.
func (s *Schema) Resolve(ctx context.Context) error {
	if s.resolved.Load() {
		return nil
	}
	if err := s.mu.LockWithContext(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()
	if s.resolved.Load() {
		return nil
	}

	start := time.Now()
	err := s.resolve()
	signal.ResolveComplete(ctx, s.name, time.Since(start), err)
	return err
}

func (s *Schema) resolve() error {
	var errs []error

	bindings := make([]Binding, 0, len(s.properties))
	bindingIdx := make(map[string]int, len(s.properties))
	for _, p := range s.properties {
		b, err := s.bindProperty(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		bindingIdx[p.name] = len(bindings)
		bindings = append(bindings, b)
	}

	elements := make([]Element, 0, len(s.collections))
	elementIdx := make(map[string]int, len(s.collections))
	for _, c := range s.collections {
		e, err := s.bindCollection(c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		elementIdx[c.name] = len(elements)
		elements = append(elements, e)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	s.bindings, s.bindingIdx = bindings, bindingIdx
	s.elements, s.elementIdx = elements, elementIdx
	s.resolved.Store(true)
	return nil
}

func (s *Schema) bindProperty(p member) (Binding, error) {
	switch t := p.ref.(type) {
	case domain.Converter:
		return Binding{Name: p.name, Converter: t}, nil
	case *Schema:
		if t == nil {
			return s.fallback(p, domain.ErrNotDocumentType)
		}
		return Binding{Name: p.name, Schema: t}, nil
	case string:
		if c, ok := converter.Lookup(t); ok {
			return Binding{Name: p.name, Converter: c}, nil
		}
		if sch, ok := s.lookup(t); ok {
			return Binding{Name: p.name, Schema: sch}, nil
		}
		return s.fallback(p, domain.ErrUnresolvableType)
	default:
		return s.fallback(p, domain.ErrNotDocumentType)
	}
}

func (s *Schema) fallback(p member, reason error) (Binding, error) {
	if s.registry != nil && s.registry.fallback == FallbackPassthrough {
		return Binding{Name: p.name, Converter: converter.Passthrough{}}, nil
	}
	return Binding{}, domain.ErrSchema{Type: s.name, Member: p.name, Ref: p.ref, Reason: reason}
}

// bindCollection never falls back: elements must be documents.
func (s *Schema) bindCollection(c member) (Element, error) {
	switch t := c.ref.(type) {
	case *Schema:
		if t != nil {
			return Element{Name: c.name, Schema: t}, nil
		}
	case string:
		if _, ok := converter.Lookup(t); ok {
			break
		}
		if sch, ok := s.lookup(t); ok {
			return Element{Name: c.name, Schema: sch}, nil
		}
		return Element{}, domain.ErrSchema{Type: s.name, Member: c.name, Ref: c.ref, Reason: domain.ErrUnresolvableType}
	}
	return Element{}, domain.ErrSchema{Type: s.name, Member: c.name, Ref: c.ref, Reason: domain.ErrNotDocumentType}
}

func (s *Schema) lookup(name string) (*Schema, bool) {
	if s.registry != nil {
		return s.registry.Lookup(name)
	}
	if name == s.name {
		return s, true
	}
	return nil, false
}
