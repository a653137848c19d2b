// Package data contains the default [domain.Mapping] implementation.
package data

import (
	"fmt"
	"iter"
	"reflect"
	"slices"

	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

// M implements [domain.Mapping] keeping keys in insertion order. Setting an
// existing key replaces the value in place.
type M struct {
	keys []string
	vals map[string]any
}

// NewMapping returns a new empty [domain.Mapping].
func NewMapping() domain.Mapping {
	return newM(0)
}

func newM(size int) *M {
	return &M{
		keys: make([]string, 0, size),
		vals: make(map[string]any, size),
	}
}

// Of builds a mapping from alternating keys and values, in order. It panics if
// the number of arguments is odd or a key is not a string, so it is meant for
// literals.
func Of(kv ...any) *M {
	if len(kv)%2 != 0 {
		panic("data: odd number of arguments")
	}
	m := newM(len(kv) / 2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("data: key %v is not a string", kv[i]))
		}
		m.Set(k, kv[i+1])
	}
	return m
}

// Copy returns a deep copy of any [domain.Mapping] as *M. Nested mappings and
// sequences are copied too.
func Copy(src domain.Mapping) *M {
	if src == nil {
		return newM(0)
	}
	dst := newM(src.Len())
	for k, v := range src.Iter() {
		dst.Set(k, copyAny(v))
	}
	return dst
}

func copyAny(v any) any {
	switch t := v.(type) {
	case domain.Mapping:
		return Copy(t)
	case []any:
		l := make([]any, len(t))
		for n, itm := range t {
			l[n] = copyAny(itm)
		}
		return l
	default:
		return v
	}
}

// Get implements [domain.Mapping].
func (m *M) Get(k string) any {
	return m.vals[k]
}

// Set implements [domain.Mapping].
func (m *M) Set(k string, v any) {
	if _, ok := m.vals[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.vals[k] = v
}

// Unset implements [domain.Mapping].
func (m *M) Unset(k string) {
	if _, ok := m.vals[k]; !ok {
		return
	}
	delete(m.vals, k)
	m.keys = slices.DeleteFunc(m.keys, func(s string) bool { return s == k })
}

// Has implements [domain.Mapping].
func (m *M) Has(k string) bool {
	_, ok := m.vals[k]
	return ok
}

// Len implements [domain.Mapping].
func (m *M) Len() int {
	return len(m.keys)
}

// Keys implements [domain.Mapping].
func (m *M) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, k := range m.keys {
			if !yield(k) {
				return
			}
		}
	}
}

// Iter implements [domain.Mapping].
func (m *M) Iter() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range m.keys {
			if !yield(k, m.vals[k]) {
				return
			}
		}
	}
}

// Equal reports whether both mappings hold the same keys, in the same order,
// with equal values. Nested mappings are compared recursively.
func Equal(a, b domain.Mapping) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Len() != b.Len() {
		return false
	}
	ak := slices.Collect(a.Keys())
	bk := slices.Collect(b.Keys())
	if !slices.Equal(ak, bk) {
		return false
	}
	for _, k := range ak {
		if !equalAny(a.Get(k), b.Get(k)) {
			return false
		}
	}
	return true
}

func equalAny(a, b any) bool {
	switch ta := a.(type) {
	case domain.Mapping:
		tb, ok := b.(domain.Mapping)
		return ok && Equal(ta, tb)
	case []any:
		tb, ok := b.([]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for n := range ta {
			if !equalAny(ta[n], tb[n]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}
