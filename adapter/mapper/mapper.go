// Package mapper saves documents to a key-value store and finds them back.
package mapper

import (
	"context"
	"fmt"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/codec/json"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/deserializer"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/model"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/serializer"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/signal"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/store/memory"
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

// Serializer converts documents to mappings.
type Serializer interface {
	Serialize(ctx context.Context, doc *model.Document, embedKey bool) (domain.Mapping, error)
}

// Deserializer converts mappings to documents.
type Deserializer interface {
	Deserialize(ctx context.Context, schema *model.Schema, m domain.Mapping) (*model.Document, error)
}

// Decoder copies document values into Go values and back.
type Decoder interface {
	Decode(doc *model.Document, target any) error
	Populate(ctx context.Context, source any, doc *model.Document) error
}

// Mapper links document instances to the entries of a [domain.Store].
type Mapper struct {
	store        domain.Store
	codec        domain.Codec
	serializer   Serializer
	deserializer Deserializer
	decoder      Decoder
}

// NewMapper returns a new Mapper.
func NewMapper(options ...Option) *Mapper {
	m := &Mapper{
		store:        memory.NewStore(),
		codec:        json.New(),
		serializer:   serializer.NewSerializer(),
		deserializer: deserializer.NewDeserializer(),
		decoder:      decoder.NewDecoder(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Store returns the store used by the mapper.
func (m *Mapper) Store() domain.Store {
	return m.store
}

// Codec returns the codec used by the mapper.
func (m *Mapper) Codec() domain.Codec {
	return m.codec
}

// Save writes doc under its key and returns the key. The schema must declare a
// key generator, even when doc already has a key. The document is fully
// serialized before anything is written.
func (m *Mapper) Save(ctx context.Context, doc *model.Document) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	if doc == nil {
		return "", domain.ErrTargetNil
	}

	start := time.Now()
	typeName := doc.Schema().Name()
	log := logging.GetFromContext(ctx).With("type", typeName)

	key, size, err := m.save(ctx, doc)
	signal.SaveComplete(ctx, typeName, key, m.codec.ContentType(), size, time.Since(start), err)
	if err != nil {
		log.Warn("failed to save document", "key", key, "err", err.Error())
		return "", err
	}

	log.Debug("document saved", "key", key, "size", size)
	return key, nil
}

func (m *Mapper) save(ctx context.Context, doc *model.Document) (string, int, error) {
	if doc.Schema().KeyGenerator() == nil {
		return "", 0, fmt.Errorf("%w: %s", domain.ErrNoKeyGenerator, doc.Schema().Name())
	}

	mapping, err := m.serializer.Serialize(ctx, doc, true)
	if err != nil {
		return "", 0, err
	}
	key, err := doc.Key()
	if err != nil {
		return "", 0, err
	}

	b, err := m.codec.Encode(mapping)
	if err != nil {
		return key, 0, err
	}

	ok, err := m.store.Set(ctx, key, b)
	if err != nil {
		return key, len(b), err
	}
	if !ok {
		return key, len(b), domain.ErrStoreWrite{Key: key}
	}
	return key, len(b), nil
}

// Find returns the document of the given schema stored under key. It returns
// nil and no error when nothing is stored there. The returned document key is
// the stored key entry when it is a string, or the lookup key otherwise.
func (m *Mapper) Find(ctx context.Context, schema *model.Schema, key string) (*model.Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if schema == nil {
		return nil, domain.ErrTargetNil
	}

	start := time.Now()
	log := logging.GetFromContext(ctx).With("type", schema.Name(), "key", key)

	doc, size, err := m.find(ctx, schema, key)
	signal.FindComplete(ctx, schema.Name(), key, m.codec.ContentType(), size, time.Since(start), err)
	if err != nil {
		log.Warn("failed to find document", "err", err.Error())
		return nil, err
	}

	if doc == nil {
		log.Debug("document not found")
		return nil, nil
	}
	log.Debug("document found", "size", size)
	return doc, nil
}

func (m *Mapper) find(ctx context.Context, schema *model.Schema, key string) (*model.Document, int, error) {
	b, ok, err := m.store.Get(ctx, key)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, nil
	}

	mapping, err := m.codec.Decode(b)
	if err != nil {
		return nil, len(b), err
	}
	doc, err := m.deserializer.Deserialize(ctx, schema, mapping)
	if err != nil {
		return nil, len(b), err
	}

	if k, ok := mapping.Get(model.KeyField).(string); ok {
		doc.SetKey(k)
	} else {
		doc.SetKey(key)
	}
	return doc, len(b), nil
}

// Load finds the document of the given schema stored under key and decodes it
// into target. It returns [domain.ErrNotFound] when nothing is stored there.
func (m *Mapper) Load(ctx context.Context, schema *model.Schema, key string, target any) error {
	doc, err := m.Find(ctx, schema, key)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	return m.decoder.Decode(doc, target)
}

// SaveValue builds a document of the given schema from source, a struct or a
// map with string keys, and saves it. It returns the key the document was
// saved under.
func (m *Mapper) SaveValue(ctx context.Context, schema *model.Schema, source any) (string, error) {
	if schema == nil {
		return "", domain.ErrTargetNil
	}
	doc := schema.New()
	if err := m.decoder.Populate(ctx, source, doc); err != nil {
		return "", err
	}
	return m.Save(ctx, doc)
}
