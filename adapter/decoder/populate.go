package decoder

import (
	"context"
	"slices"
	"strings"

	"github.com/goccy/go-reflect"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/model"
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

// Populate sets the document values found in source, a struct or a map with
// string keys, or a pointer to one. Names are matched exactly first and then
// ignoring case. Values of embedded properties and collection elements can be
// documents or anything Populate accepts. Declared names missing from source
// are left untouched; a nil value makes a property absent.
func (d *Decoder) Populate(ctx context.Context, source any, doc *model.Document) error {
	if source == nil || doc == nil {
		return domain.ErrTargetNil
	}
	sch := doc.Schema()
	if err := sch.Resolve(ctx); err != nil {
		return err
	}

	fields, err := d.fields(source)
	if err != nil {
		return err
	}

	if k, ok := fields.lookup(model.KeyField); ok {
		if key, ok := k.(string); ok && key != "" {
			doc.SetKey(key)
		}
	}

	for _, b := range sch.Bindings() {
		v, ok := fields.lookup(b.Name)
		if !ok {
			continue
		}
		if b.Embedded() {
			if v, err = d.child(ctx, b.Schema, v); err != nil {
				return err
			}
		}
		if err := doc.Set(b.Name, v); err != nil {
			return err
		}
	}

	for _, e := range sch.Elements() {
		v, ok := fields.lookup(e.Name)
		if !ok {
			continue
		}
		docs, err := d.children(ctx, e.Schema, v)
		if err != nil {
			return err
		}
		if err := doc.SetCollection(e.Name, docs); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) child(ctx context.Context, sch *model.Schema, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if sub, ok := v.(*model.Document); ok {
		if sub == nil {
			return nil, nil
		}
		return sub, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && rv.IsNil() {
		return nil, nil
	}
	sub := sch.New()
	if err := d.Populate(ctx, v, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (d *Decoder) children(ctx context.Context, sch *model.Schema, v any) ([]*model.Document, error) {
	if docs, ok := v.([]*model.Document); ok {
		return slices.Clone(docs), nil
	}
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, domain.ErrDecode{Source: v, Target: sch.Name()}
	}
	docs := make([]*model.Document, 0, rv.Len())
	for i := range rv.Len() {
		sub, err := d.child(ctx, sch, rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		if sub == nil {
			continue
		}
		docs = append(docs, sub.(*model.Document))
	}
	return docs, nil
}

type fieldSet map[string]any

func (f fieldSet) lookup(name string) (any, bool) {
	if v, ok := f[name]; ok {
		return v, true
	}
	for k, v := range f {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func (d *Decoder) fields(source any) (fieldSet, error) {
	v := reflect.ValueOf(source)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, domain.ErrTargetNil
		}
		v = v.Elem()
	}

	res := make(fieldSet)
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, domain.ErrDecode{Source: source, Target: res}
		}
		for _, k := range v.MapKeys() {
			res[k.String()] = v.MapIndex(k).Interface()
		}
	case reflect.Struct:
		t := v.Type()
		for i := range v.NumField() {
			f := t.Field(i)
			if f.PkgPath != "" {
				continue
			}
			name, opts, _ := strings.Cut(f.Tag.Get(d.tagName), ",")
			if name == "-" {
				continue
			}
			if name == "" {
				name = f.Name
			}
			fv := v.Field(i)
			if opts == "omitempty" && fv.IsZero() {
				continue
			}
			res[name] = fv.Interface()
		}
	default:
		return nil, domain.ErrDecode{Source: source, Target: res}
	}
	return res, nil
}
