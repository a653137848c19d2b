package converter

import (
	"errors"

	"github.com/goccy/go-reflect"

	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

// ErrIncompletePair is returned by [NewPair] when one of the functions is
// missing.
var ErrIncompletePair = errors.New("a pair converter needs both a serializer and a deserializer")

// Func is a single conversion step supplied by the user.
type Func func(any) (any, error)

// Pair implements [domain.Converter] wrapping two user-supplied functions. It
// is never returned by [Lookup].
type Pair struct {
	serialize   Func
	deserialize Func
}

// NewPair returns a [Pair] using the given functions. Both are required.
func NewPair(serialize, deserialize Func) (*Pair, error) {
	if serialize == nil || deserialize == nil {
		return nil, ErrIncompletePair
	}
	return &Pair{serialize: serialize, deserialize: deserialize}, nil
}

// Serialize implements [domain.Converter].
func (p *Pair) Serialize(v any) (any, error) {
	return p.serialize(v)
}

// Deserialize implements [domain.Converter].
func (p *Pair) Deserialize(v any) (any, error) {
	return p.deserialize(v)
}

// Passthrough implements [domain.Converter] returning values unchanged. It is
// bound to unresolved property types only when a permissive fallback is
// configured.
type Passthrough struct{}

// Serialize implements [domain.Converter].
func (Passthrough) Serialize(v any) (any, error) { return v, nil }

// Deserialize implements [domain.Converter].
func (Passthrough) Deserialize(v any) (any, error) { return v, nil }

// Name returns a printable name for a converter, used in error messages.
func Name(c domain.Converter) string {
	switch c.(type) {
	case String:
		return TagString
	case Integer:
		return TagInteger
	case Float:
		return TagFloat
	case Date:
		return TagDate
	case *Pair:
		return "pair"
	case Passthrough:
		return "passthrough"
	default:
		return reflect.TypeOf(c).String()
	}
}

// Wrap returns err as a [domain.ErrConversion] naming c, unless it already is
// one. A nil err is returned as is.
func Wrap(c domain.Converter, v any, err error) error {
	if err == nil {
		return nil
	}
	if errors.As(err, new(domain.ErrConversion)) {
		return err
	}
	return domain.ErrConversion{Converter: Name(c), Value: v, Err: err}
}
