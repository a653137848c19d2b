package data

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

var (
	// ErrTrailingData is returned when there are unskippable bytes after
	// the JSON data structure in the content ends.
	ErrTrailingData = errors.New("trailing data after JSON")
	// ErrExpectedObject is returned when the top level JSON value is not
	// an object.
	ErrExpectedObject = errors.New("expected JSON object")
)

// MarshalJSON implements [json.Marshaler], writing keys in insertion order.
func (m *M) MarshalJSON() ([]byte, error) {
	buf := bytes.NewBuffer(append(make([]byte, 0, 256), '{'))
	n := 0
	for k, v := range m.Iter() {
		if n > 0 {
			_ = buf.WriteByte(',')
		}
		b, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		_, _ = buf.Write(b)
		_ = buf.WriteByte(':')

		if b, err = json.Marshal(jsonValue(v)); err != nil {
			return nil, err
		}
		_, _ = buf.Write(b)
		n++
	}
	_ = buf.WriteByte('}')
	return buf.Bytes(), nil
}

// jsonValue makes sure foreign mapping implementations are written in order
// too.
func jsonValue(v any) any {
	switch t := v.(type) {
	case *M:
		return t
	case domain.Mapping:
		return Copy(t)
	case []any:
		l := make([]any, len(t))
		for n, itm := range t {
			l[n] = jsonValue(itm)
		}
		return l
	default:
		return v
	}
}

// UnmarshalJSON implements [json.Unmarshaler], keeping keys in the order they
// appear in the data. Numbers are kept as [json.Number].
func (m *M) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrExpectedObject
	}

	res, err := readObject(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return ErrTrailingData
	}
	*m = *res
	return nil
}

// Number converts a [json.Number] to int64 when it is integral and to float64
// otherwise. Numbers fitting neither are returned as text.
func Number(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// ParseJSON reads a JSON object into a new mapping.
func ParseJSON(b []byte) (*M, error) {
	m := newM(0)
	if err := m.UnmarshalJSON(b); err != nil {
		return nil, err
	}
	return m, nil
}

func readObject(dec *json.Decoder) (*M, error) {
	m := newM(0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		k, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %v", tok)
		}
		v, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		m.Set(k, v)
	}
	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return m, nil
}

func readArray(dec *json.Decoder) ([]any, error) {
	l := make([]any, 0)
	for dec.More() {
		v, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		l = append(l, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return l, nil
}

func readValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return readObject(dec)
		case '[':
			return readArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
		}
	default:
		return t, nil
	}
}
