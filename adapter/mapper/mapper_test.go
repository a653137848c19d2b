package mapper

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/codec/msgpack"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/codec/yaml"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/converter"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/data"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/keygen"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/model"
	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/store/memory"
	redisstore "github.com/vinicius-lino-figueiredo/kvdoc/adapter/store/redis"
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

var ctx = context.Background()

type storeMock struct {
	mock.Mock
}

func (s *storeMock) Set(ctx context.Context, key string, value []byte) (bool, error) {
	call := s.Called(ctx, key, value)
	return call.Bool(0), call.Error(1)
}

func (s *storeMock) Get(ctx context.Context, key string) ([]byte, bool, error) {
	call := s.Called(ctx, key)
	b, _ := call.Get(0).([]byte)
	return b, call.Bool(1), call.Error(2)
}

type Person struct {
	Key  string `kvdoc:"key"`
	Name string `kvdoc:"name"`
	Age  int    `kvdoc:"age"`
	Pets []struct {
		Name string `kvdoc:"name"`
	} `kvdoc:"pets"`
}

type MapperTestSuite struct {
	suite.Suite
	store  *memory.Store
	m      *Mapper
	person *model.Schema
	pet    *model.Schema
}

func (s *MapperTestSuite) SetupTest() {
	s.store = memory.NewStore()
	s.m = NewMapper(WithStore(s.store))

	reg := model.NewRegistry()
	var err error
	s.person, err = reg.Define("Person",
		model.WithProperty("name", converter.TagString),
		model.WithProperty("age", converter.TagInteger),
		model.WithCollection("pets", "Pet"),
		model.WithKeyGenerator(keygen.NewStatic("K1")),
	)
	s.Require().NoError(err)
	s.pet, err = reg.Define("Pet",
		model.WithProperty("name", converter.TagString),
	)
	s.Require().NoError(err)
}

func (s *MapperTestSuite) ann() *model.Document {
	doc := s.person.New()
	s.Require().NoError(doc.Set("name", "Ann"))
	s.Require().NoError(doc.Set("age", 30))
	return doc
}

func (s *MapperTestSuite) TestSave() {
	key, err := s.m.Save(ctx, s.ann())
	s.NoError(err)
	s.Equal("K1", key)

	b, ok, err := s.store.Get(ctx, "K1")
	s.NoError(err)
	s.True(ok)
	s.Equal(`{"key":"K1","name":"Ann","age":30,"pets":[]}`, string(b))
}

// A document that already has a key is saved under it.
func (s *MapperTestSuite) TestSaveExistingKey() {
	doc := s.ann()
	doc.SetKey("N1")

	key, err := s.m.Save(ctx, doc)
	s.NoError(err)
	s.Equal("N1", key)

	_, ok, err := s.store.Get(ctx, "K1")
	s.NoError(err)
	s.False(ok)
}

func (s *MapperTestSuite) TestSaveNoKeyGenerator() {
	sch, err := model.NewSchema("Note", model.WithProperty("text", converter.TagString))
	s.Require().NoError(err)

	_, err = s.m.Save(ctx, sch.New())
	s.ErrorIs(err, domain.ErrNoKeyGenerator)

	// A key set by hand does not replace the generator.
	doc := sch.New()
	doc.SetKey("N1")
	_, err = s.m.Save(ctx, doc)
	s.ErrorIs(err, domain.ErrNoKeyGenerator)
	s.Zero(s.store.Len())
}

// Nothing is written when serialization fails.
func (s *MapperTestSuite) TestSaveSerializationError() {
	doc := s.ann()
	s.Require().NoError(doc.Set("age", "thirty"))

	_, err := s.m.Save(ctx, doc)
	s.ErrorAs(err, &domain.ErrConversion{})
	s.Zero(s.store.Len())
}

func (s *MapperTestSuite) TestSaveNotAcknowledged() {
	st := new(storeMock)
	st.On("Set", mock.Anything, "K1", mock.Anything).Return(false, nil).Once()
	m := NewMapper(WithStore(st))

	_, err := m.Save(ctx, s.ann())
	s.ErrorIs(err, domain.ErrStoreWrite{Key: "K1"})
	st.AssertExpectations(s.T())
}

func (s *MapperTestSuite) TestSaveStoreError() {
	errStore := errors.New("store error")
	st := new(storeMock)
	st.On("Set", mock.Anything, "K1", mock.Anything).Return(false, errStore).Once()
	m := NewMapper(WithStore(st))

	_, err := m.Save(ctx, s.ann())
	s.ErrorIs(err, errStore)
}

func (s *MapperTestSuite) TestSaveNil() {
	_, err := s.m.Save(ctx, nil)
	s.ErrorIs(err, domain.ErrTargetNil)
}

func (s *MapperTestSuite) TestFind() {
	_, err := s.store.Set(ctx, "K1", []byte(`{"key":"K1","name":"Ann","pets":[{"name":"Rex"}]}`))
	s.Require().NoError(err)

	doc, err := s.m.Find(ctx, s.person, "K1")
	s.NoError(err)
	s.Require().NotNil(doc)

	key, err := doc.Key()
	s.NoError(err)
	s.Equal("K1", key)

	name, _ := model.Value[string](doc, "name")
	s.Equal("Ann", name)
	s.False(doc.Has("age"))

	pets, err := doc.Collection("pets")
	s.NoError(err)
	s.Require().Len(pets, 1)
	s.Same(s.pet, pets[0].Schema())
}

// The stored key entry wins over the lookup key.
func (s *MapperTestSuite) TestFindStoredKey() {
	_, err := s.store.Set(ctx, "K1", []byte(`{"key":"OTHER","name":"Ann"}`))
	s.Require().NoError(err)
	doc, err := s.m.Find(ctx, s.person, "K1")
	s.NoError(err)
	key, _ := doc.Key()
	s.Equal("OTHER", key)

	_, err = s.store.Set(ctx, "K2", []byte(`{"name":"Bob"}`))
	s.Require().NoError(err)
	doc, err = s.m.Find(ctx, s.person, "K2")
	s.NoError(err)
	key, _ = doc.Key()
	s.Equal("K2", key)
}

// A number stored in a string property is found as it is.
func (s *MapperTestSuite) TestFindNumericName() {
	_, err := s.store.Set(ctx, "K1", []byte(`{"key":"K1","name":12345}`))
	s.Require().NoError(err)

	doc, err := s.m.Find(ctx, s.person, "K1")
	s.NoError(err)
	s.Require().NotNil(doc)
	name, ok := doc.Get("name")
	s.True(ok)
	s.Equal(json.Number("12345"), name)
}

func (s *MapperTestSuite) TestFindIntegerOutOfRange() {
	_, err := s.store.Set(ctx, "K1", []byte(`{"key":"K1","age":"9223372036854775808"}`))
	s.Require().NoError(err)

	doc, err := s.m.Find(ctx, s.person, "K1")
	s.ErrorAs(err, &domain.ErrConversion{})
	s.Nil(doc)
}

func (s *MapperTestSuite) TestFindMissing() {
	doc, err := s.m.Find(ctx, s.person, "NOPE")
	s.NoError(err)
	s.Nil(doc)
}

func (s *MapperTestSuite) TestFindErrors() {
	_, err := s.store.Set(ctx, "K1", []byte(`[1,2]`))
	s.Require().NoError(err)
	_, err = s.m.Find(ctx, s.person, "K1")
	s.ErrorAs(err, &domain.ErrCodec{})

	_, err = s.store.Set(ctx, "K2", []byte(`{"age":"thirty"}`))
	s.Require().NoError(err)
	_, err = s.m.Find(ctx, s.person, "K2")
	s.ErrorAs(err, &domain.ErrConversion{})

	errStore := errors.New("store error")
	st := new(storeMock)
	st.On("Get", mock.Anything, "K1").Return(nil, false, errStore).Once()
	_, err = NewMapper(WithStore(st)).Find(ctx, s.person, "K1")
	s.ErrorIs(err, errStore)

	_, err = s.m.Find(ctx, nil, "K1")
	s.ErrorIs(err, domain.ErrTargetNil)
}

func (s *MapperTestSuite) TestCanceledContext() {
	c, cancel := context.WithCancel(ctx)
	cancel()
	_, err := s.m.Save(c, s.ann())
	s.ErrorIs(err, context.Canceled)
	_, err = s.m.Find(c, s.person, "K1")
	s.ErrorIs(err, context.Canceled)
}

func (s *MapperTestSuite) TestRoundTrip() {
	doc := s.ann()
	rex := s.pet.New()
	s.Require().NoError(rex.Set("name", "Rex"))
	s.Require().NoError(doc.Append("pets", rex))

	_, err := s.m.Save(ctx, doc)
	s.Require().NoError(err)

	res, err := s.m.Find(ctx, s.person, "K1")
	s.NoError(err)
	age, _ := model.Value[int64](res, "age")
	s.Equal(int64(30), age)
	pets, _ := res.Collection("pets")
	s.Require().Len(pets, 1)
	petName, _ := model.Value[string](pets[0], "name")
	s.Equal("Rex", petName)
}

func (s *MapperTestSuite) TestLoad() {
	doc := s.ann()
	rex := s.pet.New()
	s.Require().NoError(rex.Set("name", "Rex"))
	s.Require().NoError(doc.Append("pets", rex))
	_, err := s.m.Save(ctx, doc)
	s.Require().NoError(err)

	var p Person
	s.NoError(s.m.Load(ctx, s.person, "K1", &p))
	s.Equal("K1", p.Key)
	s.Equal("Ann", p.Name)
	s.Equal(30, p.Age)
	s.Require().Len(p.Pets, 1)
	s.Equal("Rex", p.Pets[0].Name)

	s.ErrorIs(s.m.Load(ctx, s.person, "NOPE", &p), domain.ErrNotFound)
	s.ErrorIs(s.m.Load(ctx, s.person, "K1", p), domain.ErrNonPointer)
}

func (s *MapperTestSuite) TestSaveValue() {
	src := Person{Name: "Ann", Age: 30}
	src.Pets = append(src.Pets, struct {
		Name string `kvdoc:"name"`
	}{Name: "Rex"})

	key, err := s.m.SaveValue(ctx, s.person, &src)
	s.NoError(err)
	s.Equal("K1", key)

	b, ok, err := s.store.Get(ctx, "K1")
	s.NoError(err)
	s.True(ok)
	s.Equal(`{"key":"K1","name":"Ann","age":30,"pets":[{"name":"Rex"}]}`, string(b))

	var p Person
	s.NoError(s.m.Load(ctx, s.person, key, &p))
	s.Equal("Ann", p.Name)
	s.Require().Len(p.Pets, 1)
	s.Equal("Rex", p.Pets[0].Name)
}

// A key found in source is kept.
func (s *MapperTestSuite) TestSaveValueMap() {
	key, err := s.m.SaveValue(ctx, s.person, map[string]any{
		"key":  "N1",
		"name": "Bob",
	})
	s.NoError(err)
	s.Equal("N1", key)

	doc, err := s.m.Find(ctx, s.person, "N1")
	s.NoError(err)
	s.Require().NotNil(doc)
	name, _ := model.Value[string](doc, "name")
	s.Equal("Bob", name)
}

func (s *MapperTestSuite) TestSaveValueErrors() {
	_, err := s.m.SaveValue(ctx, nil, Person{})
	s.ErrorIs(err, domain.ErrTargetNil)

	_, err = s.m.SaveValue(ctx, s.person, nil)
	s.ErrorIs(err, domain.ErrTargetNil)

	_, err = s.m.SaveValue(ctx, s.person, map[string]any{"age": "thirty"})
	s.ErrorAs(err, &domain.ErrConversion{})
	s.Zero(s.store.Len())
}

func (s *MapperTestSuite) TestCodecs() {
	for _, c := range []domain.Codec{msgpack.New(), yaml.New()} {
		s.Run(c.ContentType(), func() {
			m := NewMapper(WithCodec(c))
			s.Equal(c.ContentType(), m.Codec().ContentType())

			_, err := m.Save(ctx, s.ann())
			s.Require().NoError(err)

			b, ok, err := m.Store().Get(ctx, "K1")
			s.NoError(err)
			s.True(ok)
			stored, err := c.Decode(b)
			s.NoError(err)
			s.True(data.Equal(data.Of("key", "K1", "name", "Ann", "age", int64(30), "pets", []any{}), normalize(stored)))

			res, err := m.Find(ctx, s.person, "K1")
			s.NoError(err)
			age, _ := model.Value[int64](res, "age")
			s.Equal(int64(30), age)
		})
	}
}

func (s *MapperTestSuite) TestRedisStore() {
	srv, err := mr.Run()
	s.Require().NoError(err)
	defer srv.Close()
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	m := NewMapper(WithStore(redisstore.NewStore(client)))
	_, err = m.Save(ctx, s.ann())
	s.Require().NoError(err)

	raw, err := srv.Get(redisstore.DefaultPrefix + "K1")
	s.NoError(err)
	s.Equal(`{"key":"K1","name":"Ann","age":30,"pets":[]}`, raw)

	res, err := m.Find(ctx, s.person, "K1")
	s.NoError(err)
	name, _ := model.Value[string](res, "name")
	s.Equal("Ann", name)
}

// normalize turns every integer into int64, as codecs pick the smallest
// integer type they can.
func normalize(m domain.Mapping) domain.Mapping {
	res := data.NewMapping()
	for k, v := range m.Iter() {
		res.Set(k, normalizeValue(v))
	}
	return res
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case domain.Mapping:
		return normalize(t)
	case []any:
		l := make([]any, len(t))
		for n, item := range t {
			l[n] = normalizeValue(item)
		}
		return l
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	}
	return v
}

func TestMapperTestSuite(t *testing.T) {
	suite.Run(t, new(MapperTestSuite))
}
