package serializer

import "github.com/vinicius-lino-figueiredo/kvdoc/domain"

// Option configures a [Serializer] through the functional options pattern.
type Option func(*Serializer)

// WithMappingFactory sets the function creating the output mappings. Defaults
// to [data.NewMapping].
func WithMappingFactory(f domain.MappingFactory) Option {
	return func(s *Serializer) {
		s.mappingFactory = f
	}
}
