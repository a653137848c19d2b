package decoder

// Option configures a [Decoder] through the functional options pattern.
type Option func(*Decoder)

// WithTagName sets the struct tag naming document fields. Defaults to
// [DefaultTagName].
func WithTagName(name string) Option {
	return func(d *Decoder) {
		d.tagName = name
	}
}
