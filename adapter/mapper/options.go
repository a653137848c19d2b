package mapper

import (
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

// Option configures a [Mapper] through the functional options pattern.
type Option func(*Mapper)

// WithStore sets the store documents are written to. Defaults to a new
// in-memory store.
func WithStore(s domain.Store) Option {
	return func(m *Mapper) {
		if s != nil {
			m.store = s
		}
	}
}

// WithCodec sets the wire format of stored documents. Defaults to JSON.
func WithCodec(c domain.Codec) Option {
	return func(m *Mapper) {
		if c != nil {
			m.codec = c
		}
	}
}

// WithSerializer sets the engine converting documents to mappings.
func WithSerializer(s Serializer) Option {
	return func(m *Mapper) {
		if s != nil {
			m.serializer = s
		}
	}
}

// WithDeserializer sets the engine converting mappings to documents.
func WithDeserializer(d Deserializer) Option {
	return func(m *Mapper) {
		if d != nil {
			m.deserializer = d
		}
	}
}

// WithDecoder sets the decoder used by [Mapper.Load] and [Mapper.SaveValue].
func WithDecoder(d Decoder) Option {
	return func(m *Mapper) {
		if d != nil {
			m.decoder = d
		}
	}
}
