// Package json provides a JSON [domain.Codec] implementation keeping the
// order of mapping keys.
package json

import (
	"encoding/json"
	"fmt"

	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/data"
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

// ContentType is the MIME type of the encoded data.
const ContentType = "application/json"

// jsonCodec implements domain.Codec for JSON.
type jsonCodec struct{}

// New returns a JSON codec.
func New() domain.Codec {
	return &jsonCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return ContentType
}

// Encode writes m as a JSON object.
func (c *jsonCodec) Encode(m domain.Mapping) ([]byte, error) {
	if m == nil {
		return nil, domain.ErrTargetNil
	}
	if _, ok := m.(*data.M); !ok {
		m = data.Copy(m)
	}
	return json.Marshal(m)
}

// Decode reads a JSON object. Numbers are kept as [json.Number] so integers
// do not lose precision.
func (c *jsonCodec) Decode(b []byte) (domain.Mapping, error) {
	m, err := data.ParseJSON(b)
	if err != nil {
		errCodec := domain.ErrCodec{ContentType: ContentType, Reason: "invalid document"}
		return nil, fmt.Errorf("%w: %w", errCodec, err)
	}
	return m, nil
}
