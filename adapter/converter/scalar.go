package converter

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-reflect"
	"github.com/mitchellh/mapstructure"
)

// DateLayout is the textual format dates are serialized with.
const DateLayout = time.RFC3339

var dateLayouts = []string{time.RFC3339Nano, time.DateOnly}

// Bounds of int64 as floats. The upper one is exclusive, as MaxInt64 has no
// exact float64 representation.
const (
	minInt64 = -9223372036854775808.0
	maxInt64 = 9223372036854775808.0
)

var (
	errNotIntegral = errors.New("not an integral number")
	errOutOfRange  = errors.New("out of the int64 range")
	errNotFinite   = errors.New("not a finite number")
)

// String implements [domain.Converter] for text values. Values other than nil
// pass through unchanged.
type String struct{}

// Serialize implements [domain.Converter].
func (String) Serialize(v any) (any, error) {
	return v, nil
}

// Deserialize implements [domain.Converter].
func (String) Deserialize(v any) (any, error) {
	return v, nil
}

// Integer implements [domain.Converter] for integer values. Values are
// normalised to int64; values out of the int64 range are conversion errors.
type Integer struct{}

// Serialize implements [domain.Converter]. Floats must hold an integral
// value.
func (Integer) Serialize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return integer(v, false)
}

// Deserialize implements [domain.Converter]. Empty text and nil are absent
// values. Fractions are truncated.
func (Integer) Deserialize(v any) (any, error) {
	if absent(v) {
		return nil, nil
	}
	switch t := v.(type) {
	case string:
		return parseInteger(t)
	case json.Number:
		return parseInteger(t.String())
	}
	return integer(v, true)
}

func integer(v any, truncate bool) (any, error) {
	rv := reflect.ValueNoEscapeOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, convErr(TagInteger, v, errOutOfRange)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if truncate {
			f = math.Trunc(f)
		}
		return integral(v, f)
	case reflect.String:
		if truncate {
			return parseInteger(rv.String())
		}
	}
	return nil, convErr(TagInteger, v, nil)
}

// integral converts f, which must be a whole number in the int64 range.
func integral(src any, f float64) (any, error) {
	if f != math.Trunc(f) {
		return nil, convErr(TagInteger, src, errNotIntegral)
	}
	if f < minInt64 || f >= maxInt64 {
		return nil, convErr(TagInteger, src, errOutOfRange)
	}
	return int64(f), nil
}

// Float implements [domain.Converter] for floating point values. Values are
// normalised to float64; NaN and infinities are conversion errors.
type Float struct{}

// Serialize implements [domain.Converter].
func (Float) Serialize(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float32:
		return finite(v, float64(t))
	case float64:
		return finite(v, t)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		var f float64
		if err := weakDecode(t, &f); err != nil {
			return nil, convErr(TagFloat, v, err)
		}
		return f, nil
	default:
		return nil, convErr(TagFloat, v, nil)
	}
}

// Deserialize implements [domain.Converter]. Empty text and nil are absent
// values.
func (Float) Deserialize(v any) (any, error) {
	if absent(v) {
		return nil, nil
	}
	var f float64
	if err := weakDecode(v, &f); err != nil {
		return nil, convErr(TagFloat, v, err)
	}
	return finite(v, f)
}

func finite(src any, f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, convErr(TagFloat, src, errNotFinite)
	}
	return f, nil
}

// Date implements [domain.Converter] for [time.Time] values, stored as
// RFC 3339 text.
type Date struct{}

// Serialize implements [domain.Converter].
func (Date) Serialize(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return t.Format(DateLayout), nil
	case *time.Time:
		if t == nil {
			return nil, nil
		}
		return t.Format(DateLayout), nil
	default:
		return nil, convErr(TagDate, v, nil)
	}
}

// Deserialize implements [domain.Converter]. Both RFC 3339 and date-only text
// are accepted; any other text, including an empty one, is an error.
func (Date) Deserialize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, convErr(TagDate, v, nil)
	}
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, convErr(TagDate, v, err)
}

// parseInteger reads decimal text. Text holding a fraction is truncated, like
// numeric input is.
func parseInteger(s string) (any, error) {
	t := strings.TrimSpace(s)
	i, err := strconv.ParseInt(t, 10, 64)
	if err == nil {
		return i, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return nil, convErr(TagInteger, s, errOutOfRange)
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return nil, convErr(TagInteger, s, err)
	}
	return integral(s, math.Trunc(f))
}

func absent(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// weakDecode uses mapstructure's weakly typed decoding, which accepts
// numeric text, json.Number and every numeric kind, but rejects anything
// that does not hold a number.
func weakDecode(src any, tgt any) error {
	switch src.(type) {
	case bool, []any, map[string]any:
		return errors.New("not a number")
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           tgt,
	})
	if err != nil {
		return err
	}
	return dec.Decode(src)
}
