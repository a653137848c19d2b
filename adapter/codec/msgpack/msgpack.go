// Package msgpack provides a MessagePack [domain.Codec] implementation keeping
// the order of mapping keys.
package msgpack

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/data"
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// ContentType is the MIME type of the encoded data.
const ContentType = "application/msgpack"

// msgpackCodec implements domain.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() domain.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return ContentType
}

// Encode writes m as a MessagePack map. Maps are written entry by entry so the
// key order survives.
func (c *msgpackCodec) Encode(m domain.Mapping) ([]byte, error) {
	if m == nil {
		return nil, domain.ErrTargetNil
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := writeMapping(enc, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeMapping(enc *msgpack.Encoder, m domain.Mapping) error {
	if err := enc.EncodeMapLen(m.Len()); err != nil {
		return err
	}
	for k, v := range m.Iter() {
		if err := enc.EncodeString(k); err != nil {
			return err
		}
		if err := writeValue(enc, v); err != nil {
			return err
		}
	}
	return nil
}

func writeValue(enc *msgpack.Encoder, v any) error {
	switch t := v.(type) {
	case domain.Mapping:
		return writeMapping(enc, t)
	case []any:
		if err := enc.EncodeArrayLen(len(t)); err != nil {
			return err
		}
		for _, itm := range t {
			if err := writeValue(enc, itm); err != nil {
				return err
			}
		}
		return nil
	case json.Number:
		return enc.Encode(data.Number(t))
	default:
		return enc.Encode(v)
	}
}

// Decode reads a MessagePack map. Integers are decoded as int64 or uint64 and
// floats as float64.
func (c *msgpackCodec) Decode(b []byte) (domain.Mapping, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(b))

	code, err := dec.PeekCode()
	if err != nil {
		return nil, c.err("invalid document", err)
	}
	if !isMap(code) {
		return nil, domain.ErrCodec{ContentType: ContentType, Reason: "expected map"}
	}

	m, err := readMapping(dec)
	if err != nil {
		return nil, c.err("invalid document", err)
	}
	if _, err := dec.PeekCode(); err == nil {
		return nil, domain.ErrCodec{ContentType: ContentType, Reason: "trailing data after map"}
	}
	return m, nil
}

func (c *msgpackCodec) err(reason string, err error) error {
	errCodec := domain.ErrCodec{ContentType: ContentType, Reason: reason}
	return fmt.Errorf("%w: %w", errCodec, err)
}

func readMapping(dec *msgpack.Decoder) (domain.Mapping, error) {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	m := data.NewMapping()
	for range max(n, 0) {
		k, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}
		v, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		m.Set(k, v)
	}
	return m, nil
}

func readValue(dec *msgpack.Decoder) (any, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case isMap(code):
		return readMapping(dec)
	case isArray(code):
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		l := make([]any, 0, max(n, 0))
		for range max(n, 0) {
			v, err := readValue(dec)
			if err != nil {
				return nil, err
			}
			l = append(l, v)
		}
		return l, nil
	default:
		return dec.DecodeInterfaceLoose()
	}
}

func isMap(c byte) bool {
	return msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32
}

func isArray(c byte) bool {
	return msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32
}
