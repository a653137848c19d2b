package serializer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/converter"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/data"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/model"
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

var ctx = context.Background()

type SerializerTestSuite struct {
	suite.Suite
	s      *Serializer
	reg    *model.Registry
	person *model.Schema
	pet    *model.Schema
}

func (s *SerializerTestSuite) SetupTest() {
	s.s = NewSerializer()
	s.reg = model.NewRegistry()

	var err error
	s.person, err = s.reg.Define("Person",
		model.WithProperty("name", converter.TagString),
		model.WithProperty("age", converter.TagInteger),
		model.WithProperty("partner", "Person"),
		model.WithCollection("pets", "Pet"),
		model.WithKeyFunc(func() string { return "K1" }),
	)
	s.Require().NoError(err)
	s.pet, err = s.reg.Define("Pet",
		model.WithProperty("name", converter.TagString),
		model.WithKeyFunc(func() string { return "P1" }),
	)
	s.Require().NoError(err)
}

func (s *SerializerTestSuite) newPerson(name string, age int) *model.Document {
	d := s.person.New()
	s.Require().NoError(d.Set("name", name))
	s.Require().NoError(d.Set("age", age))
	return d
}

// Top level documents carry their key first, then properties in declaration
// order.
func (s *SerializerTestSuite) TestTopLevel() {
	m, err := s.s.Serialize(ctx, s.newPerson("Ann", 30), true)
	s.NoError(err)
	s.True(data.Equal(data.Of(
		"key", "K1",
		"name", "Ann",
		"age", int64(30),
		"pets", []any{},
	), m))
}

// Properties never assigned are omitted, not written as null.
func (s *SerializerTestSuite) TestAbsentOmitted() {
	d := s.person.New()
	s.NoError(d.Set("name", "Ann"))

	m, err := s.s.Serialize(ctx, d, false)
	s.NoError(err)
	s.False(m.Has("age"))
	s.False(m.Has("partner"))
	s.False(m.Has("key"))
	s.Equal([]string{"name", "pets"}, collect(m))
}

func (s *SerializerTestSuite) TestZeroValuesKept() {
	m, err := s.s.Serialize(ctx, s.newPerson("", 0), false)
	s.NoError(err)
	s.Equal("", m.Get("name"))
	s.Equal(int64(0), m.Get("age"))
}

// Collections are always written, empty or not.
func (s *SerializerTestSuite) TestCollections() {
	d := s.person.New()
	m, err := s.s.Serialize(ctx, d, false)
	s.NoError(err)
	s.Equal([]any{}, m.Get("pets"))

	rex, tom := s.pet.New(), s.pet.New()
	s.NoError(rex.Set("name", "Rex"))
	s.NoError(tom.Set("name", "Tom"))
	s.NoError(d.Append("pets", rex, tom))

	m, err = s.s.Serialize(ctx, d, false)
	s.NoError(err)
	pets, ok := m.Get("pets").([]any)
	s.Require().True(ok)
	s.Require().Len(pets, 2)
	s.True(data.Equal(data.Of("name", "Rex"), pets[0].(domain.Mapping)))
	s.True(data.Equal(data.Of("name", "Tom"), pets[1].(domain.Mapping)))
}

// Embedded documents never carry their own key, even when they have one.
func (s *SerializerTestSuite) TestEmbeddedWithoutKey() {
	d := s.newPerson("Ann", 30)
	partner := s.newPerson("Bob", 31)
	partner.SetKey("K2")
	s.NoError(d.Set("partner", partner))

	pet := s.pet.New()
	pet.SetKey("P9")
	s.NoError(d.Append("pets", pet))

	m, err := s.s.Serialize(ctx, d, true)
	s.NoError(err)

	b, err := json.Marshal(m)
	s.NoError(err)
	s.JSONEq(`{
		"key": "K1",
		"name": "Ann",
		"age": 30,
		"partner": {"name": "Bob", "age": 31, "pets": []},
		"pets": [{}]
	}`, string(b))
}

func (s *SerializerTestSuite) TestExactOutput() {
	sch, err := model.NewSchema("Person",
		model.WithProperty("name", converter.TagString),
		model.WithProperty("age", converter.TagInteger),
		model.WithKeyFunc(func() string { return "K1" }),
	)
	s.Require().NoError(err)
	d := sch.New()
	s.NoError(d.Set("name", "Ann"))
	s.NoError(d.Set("age", 30))

	m, err := s.s.Serialize(ctx, d, true)
	s.NoError(err)
	b, err := json.Marshal(m)
	s.NoError(err)
	s.Equal(`{"key":"K1","name":"Ann","age":30}`, string(b))
}

func (s *SerializerTestSuite) TestDate() {
	sch, err := model.NewSchema("Event", model.WithProperty("at", converter.TagDate))
	s.Require().NoError(err)
	d := sch.New()
	s.NoError(d.Set("at", time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)))

	m, err := s.s.Serialize(ctx, d, false)
	s.NoError(err)
	s.Equal("2024-05-06T07:08:09Z", m.Get("at"))
}

func (s *SerializerTestSuite) TestPair() {
	sch, err := model.NewSchema("Doc", model.WithPair("flag",
		func(v any) (any, error) {
			if v.(bool) {
				return "yes", nil
			}
			return "no", nil
		},
		func(v any) (any, error) { return v == "yes", nil },
	))
	s.Require().NoError(err)
	d := sch.New()
	s.NoError(d.Set("flag", false))

	m, err := s.s.Serialize(ctx, d, false)
	s.NoError(err)
	s.Equal("no", m.Get("flag"))
}

func (s *SerializerTestSuite) TestConversionError() {
	d := s.person.New()
	s.NoError(d.Set("age", "thirty"))

	_, err := s.s.Serialize(ctx, d, false)
	s.ErrorAs(err, &domain.ErrConversion{})

	boom := errors.New("boom")
	sch, err := model.NewSchema("Doc", model.WithPair("v",
		func(any) (any, error) { return nil, boom },
		func(v any) (any, error) { return v, nil },
	))
	s.Require().NoError(err)
	d = sch.New()
	s.NoError(d.Set("v", 1))
	_, err = s.s.Serialize(ctx, d, false)
	s.ErrorIs(err, boom)

	// User errors are reported as conversion errors of the pair.
	var convErr domain.ErrConversion
	s.Require().ErrorAs(err, &convErr)
	s.Equal("pair", convErr.Converter)
	s.Equal(1, convErr.Value)
}

// An embedded value must be a document of the bound type.
func (s *SerializerTestSuite) TestWrongNestedType() {
	d := s.person.New()
	s.NoError(d.Set("partner", "Bob"))
	_, err := s.s.Serialize(ctx, d, false)
	s.ErrorIs(err, domain.ErrNotDocumentType)

	s.NoError(d.Set("partner", s.pet.New()))
	_, err = s.s.Serialize(ctx, d, false)
	s.ErrorAs(err, &domain.ErrConversion{})

	s.NoError(d.Unset("partner"))
	s.NoError(d.Append("pets", s.person.New()))
	_, err = s.s.Serialize(ctx, d, false)
	s.ErrorIs(err, domain.ErrNotDocumentType)
}

func (s *SerializerTestSuite) TestResolutionError() {
	sch, err := s.reg.Define("Broken", model.WithCollection("items", converter.TagString))
	s.Require().NoError(err)

	_, err = s.s.Serialize(ctx, sch.New(), false)
	s.ErrorIs(err, domain.ErrNotDocumentType)
	s.ErrorAs(err, &domain.ErrSchema{})
}

// Keys are only required when they are embedded.
func (s *SerializerTestSuite) TestNoKeyGenerator() {
	sch, err := model.NewSchema("Doc", model.WithProperty("a", converter.TagString))
	s.Require().NoError(err)

	_, err = s.s.Serialize(ctx, sch.New(), true)
	s.ErrorIs(err, domain.ErrNoKeyGenerator)

	m, err := s.s.Serialize(ctx, sch.New(), false)
	s.NoError(err)
	s.Zero(m.Len())
}

func (s *SerializerTestSuite) TestNilDocument() {
	_, err := s.s.Serialize(ctx, nil, true)
	s.ErrorIs(err, domain.ErrTargetNil)
}

func (s *SerializerTestSuite) TestCanceledContext() {
	c, cancel := context.WithCancel(ctx)
	cancel()
	_, err := s.s.Serialize(c, s.newPerson("Ann", 30), true)
	s.ErrorIs(err, context.Canceled)
}

// Serializing does not change the document.
func (s *SerializerTestSuite) TestReadOnly() {
	d := s.newPerson("Ann", 30)
	_, err := s.s.Serialize(ctx, d, false)
	s.NoError(err)

	v, ok := d.Get("age")
	s.True(ok)
	s.Equal(30, v)
	s.False(d.HasKey())
}

func (s *SerializerTestSuite) TestMappingFactory() {
	calls := 0
	s.s = NewSerializer(WithMappingFactory(func() domain.Mapping {
		calls++
		return data.NewMapping()
	}))
	d := s.newPerson("Ann", 30)
	s.NoError(d.Append("pets", s.pet.New()))

	_, err := s.s.Serialize(ctx, d, true)
	s.NoError(err)
	s.Equal(2, calls)
}

func collect(m domain.Mapping) []string {
	var keys []string
	for k := range m.Keys() {
		keys = append(keys, k)
	}
	return keys
}

func TestSerializerTestSuite(t *testing.T) {
	suite.Run(t, new(SerializerTestSuite))
}
