package keygen

import (
	"github.com/google/uuid"
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
)

// NewUUID returns a [domain.KeyGenerator] generating random (version 4) UUIDs.
func NewUUID() domain.KeyGenerator {
	return domain.KeyGeneratorFunc(func() (string, error) {
		id, err := uuid.NewRandom()
		if err != nil {
			return "", err
		}
		return id.String(), nil
	})
}

// NewStatic returns a [domain.KeyGenerator] always returning key. It is meant
// for singleton documents and tests.
func NewStatic(key string) domain.KeyGenerator {
	return domain.KeyGeneratorFunc(func() (string, error) {
		return key, nil
	})
}
