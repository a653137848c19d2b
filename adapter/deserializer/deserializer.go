// Package deserializer contains the engine rebuilding document instances from
// ordered mappings.
package deserializer

import (
	"context"
	"fmt"

	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/converter"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/model"
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

// NewDeserializer returns a new instance of Deserializer.
func NewDeserializer() *Deserializer {
	return &Deserializer{}
}

// Deserializer converts [domain.Mapping] values to [model.Document].
type Deserializer struct{}

// Deserialize resolves schema and returns a new document filled from m.
// Entries are read in mapping order; names the schema does not declare are
// ignored, and so is [model.KeyField], which is handled by the caller.
// Collections are only replaced when the entry holds a sequence.
func (d *Deserializer) Deserialize(ctx context.Context, schema *model.Schema, m domain.Mapping) (*model.Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if schema == nil || m == nil {
		return nil, domain.ErrTargetNil
	}
	if err := schema.Resolve(ctx); err != nil {
		return nil, err
	}

	doc := schema.New()
	for k, v := range m.Iter() {
		if b, ok := schema.Binding(k); ok {
			val, err := d.property(ctx, b, v)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", schema.Name(), k, err)
			}
			if err := doc.Set(k, val); err != nil {
				return nil, err
			}
			continue
		}
		if e, ok := schema.Element(k); ok {
			seq, ok := v.([]any)
			if !ok {
				continue
			}
			docs := make([]*model.Document, 0, len(seq))
			for n, item := range seq {
				sub, err := d.nested(ctx, e.Schema, item)
				if err != nil {
					return nil, fmt.Errorf("%s.%s[%d]: %w", schema.Name(), k, n, err)
				}
				docs = append(docs, sub)
			}
			if err := doc.SetCollection(k, docs); err != nil {
				return nil, err
			}
		}
	}
	return doc, nil
}

func (d *Deserializer) property(ctx context.Context, b model.Binding, v any) (any, error) {
	if !b.Embedded() {
		out, err := b.Converter.Deserialize(v)
		return out, converter.Wrap(b.Converter, v, err)
	}
	if v == nil {
		return nil, nil
	}
	return d.nested(ctx, b.Schema, v)
}

func (d *Deserializer) nested(ctx context.Context, sch *model.Schema, v any) (*model.Document, error) {
	m, ok := v.(domain.Mapping)
	if !ok {
		return nil, domain.ErrConversion{Converter: sch.Name(), Value: v, Err: domain.ErrNotDocumentType}
	}
	return d.Deserialize(ctx, sch, m)
}
