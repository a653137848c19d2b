// Package converter contains the built-in [domain.Converter] implementations
// and the lookup of built-in converters by tag.
package converter

import (
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

// Built-in converter tags accepted as property type references.
const (
	TagString  = "string"
	TagInteger = "integer"
	TagFloat   = "float"
	TagDate    = "date"
)

var builtins = map[string]domain.Converter{
	TagString:  String{},
	TagInteger: Integer{},
	TagFloat:   Float{},
	TagDate:    Date{},
}

// Lookup returns the built-in converter registered under tag.
func Lookup(tag string) (domain.Converter, bool) {
	c, ok := builtins[tag]
	return c, ok
}

// Tags returns the built-in tags.
func Tags() []string {
	return []string{TagString, TagInteger, TagFloat, TagDate}
}

func convErr(name string, v any, err error) error {
	return domain.ErrConversion{Converter: name, Value: v, Err: err}
}
