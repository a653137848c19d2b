// Package decoder moves document values in and out of plain Go values, like
// tagged structs and maps.
package decoder

import (
	"fmt"

	"github.com/goccy/go-reflect"
	"github.com/mitchellh/mapstructure"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/model"
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

// DefaultTagName is the struct tag naming document fields.
const DefaultTagName = "kvdoc"

var docReflectType = reflect.TypeOf((*model.Document)(nil))

// Decoder converts [model.Document] values to and from Go values.
type Decoder struct {
	tagName string
}

// NewDecoder returns a new Decoder.
func NewDecoder(options ...Option) *Decoder {
	d := &Decoder{tagName: DefaultTagName}
	for _, option := range options {
		option(d)
	}
	return d
}

// Decode copies the document values into target, which must be a pointer.
// Struct fields are matched by tag, or by name ignoring case. The document key
// is available as [model.KeyField].
func (d *Decoder) Decode(doc *model.Document, target any) error {
	if target == nil {
		return domain.ErrTargetNil
	}

	value := reflect.ValueNoEscapeOf(target)
	if value.Kind() != reflect.Ptr {
		return domain.ErrNonPointer
	}
	if doc == nil {
		return domain.ErrDecode{Source: doc, Target: target}
	}

	if value.Type().Elem() == docReflectType {
		value.Elem().Set(reflect.ValueOf(doc))
		return nil
	}

	source := ToMap(doc)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: d.tagName,
		Result:  target,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(source); err != nil {
		errDec := domain.ErrDecode{Source: source, Target: target}
		return fmt.Errorf("%w: %w", errDec, err)
	}
	return nil
}

// ToMap returns the present values of doc as a plain map. Nested documents
// become maps too, and collections become []any of maps.
func ToMap(doc *model.Document) map[string]any {
	sch := doc.Schema()
	res := make(map[string]any)
	if doc.HasKey() {
		k, _ := doc.Key()
		res[model.KeyField] = k
	}
	for _, name := range sch.Properties() {
		v, ok := doc.Get(name)
		if !ok {
			continue
		}
		if sub, ok := v.(*model.Document); ok {
			v = ToMap(sub)
		}
		res[name] = v
	}
	for _, name := range sch.Collections() {
		docs, _ := doc.Collection(name)
		l := make([]any, len(docs))
		for n, item := range docs {
			l[n] = ToMap(item)
		}
		res[name] = l
	}
	return res
}
