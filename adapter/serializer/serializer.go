// Package serializer contains the engine turning document instances into
// ordered mappings.
package serializer

import (
	"context"
	"fmt"

	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/converter"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/data"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/model"
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

// Serializer converts [model.Document] values to [domain.Mapping].
type Serializer struct {
	mappingFactory domain.MappingFactory
}

// NewSerializer returns a new Serializer.
func NewSerializer(options ...Option) *Serializer {
	s := &Serializer{
		mappingFactory: data.NewMapping,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Serialize resolves the document schema and returns its mapping. The key is
// written first, under [model.KeyField], only when embedKey is true. Present
// properties follow in declaration order, then every collection, empty or not.
// Nested documents never carry their key.
func (s *Serializer) Serialize(ctx context.Context, doc *model.Document, embedKey bool) (domain.Mapping, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if doc == nil {
		return nil, domain.ErrTargetNil
	}

	sch := doc.Schema()
	if err := sch.Resolve(ctx); err != nil {
		return nil, err
	}

	res := s.mappingFactory()

	if embedKey {
		k, err := doc.Key()
		if err != nil {
			return nil, err
		}
		res.Set(model.KeyField, k)
	}

	for _, b := range sch.Bindings() {
		v, ok := doc.Get(b.Name)
		if !ok {
			continue
		}
		out, err := s.property(ctx, b, v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", sch.Name(), b.Name, err)
		}
		res.Set(b.Name, out)
	}

	for _, e := range sch.Elements() {
		docs, err := doc.Collection(e.Name)
		if err != nil {
			return nil, err
		}
		items := make([]any, 0, len(docs))
		for n, item := range docs {
			m, err := s.nested(ctx, e.Schema, item)
			if err != nil {
				return nil, fmt.Errorf("%s.%s[%d]: %w", sch.Name(), e.Name, n, err)
			}
			items = append(items, m)
		}
		res.Set(e.Name, items)
	}

	return res, nil
}

func (s *Serializer) property(ctx context.Context, b model.Binding, v any) (any, error) {
	if !b.Embedded() {
		out, err := b.Converter.Serialize(v)
		return out, converter.Wrap(b.Converter, v, err)
	}
	return s.nested(ctx, b.Schema, v)
}

// nested serializes a sub-document, checking it belongs to the bound schema.
func (s *Serializer) nested(ctx context.Context, sch *model.Schema, v any) (domain.Mapping, error) {
	doc, ok := v.(*model.Document)
	if !ok || doc == nil || doc.Schema() != sch {
		return nil, domain.ErrConversion{Converter: sch.Name(), Value: v, Err: domain.ErrNotDocumentType}
	}
	return s.Serialize(ctx, doc, false)
}
