package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvableType is wrapped by [ErrSchema] when a type reference
	// does not name any built-in converter or known document type.
	ErrUnresolvableType = errors.New("unresolvable type reference")
	// ErrNotDocumentType is wrapped by [ErrSchema] when a reference that
	// must be a document type is something else.
	ErrNotDocumentType = errors.New("not a document type")
	// ErrNoKeyGenerator is returned when a key is requested from a
	// document whose type declares no key generator.
	ErrNoKeyGenerator = errors.New("no key generator declared")
	// ErrNotFound is returned when a lookup that requires a result finds
	// nothing under the given key.
	ErrNotFound = errors.New("not found")
	// ErrTargetNil is returned when a nil target is passed to decode data
	// into.
	ErrTargetNil = errors.New("target interface is nil")
	// ErrNonPointer is returned when the target to decode data into is not
	// a pointer.
	ErrNonPointer = errors.New("target is not a pointer")
)

// ErrSchema is returned when a schema declaration cannot be resolved. It is
// fatal: the operation that triggered resolution is aborted.
type ErrSchema struct {
	// Type is the name of the schema being resolved.
	Type string
	// Member is the property or collection holding the reference.
	Member string
	// Ref is the offending type reference.
	Ref any
	// Reason is either [ErrUnresolvableType] or [ErrNotDocumentType].
	Reason error
}

// Error implements [error].
func (e ErrSchema) Error() string {
	return fmt.Sprintf("schema %s: member %q: %v: %v", e.Type, e.Member, e.Ref, e.Reason)
}

// Unwrap returns the reason, so errors.Is can be used with the sentinels.
func (e ErrSchema) Unwrap() error {
	return e.Reason
}

// ErrDeclaration is returned when a schema is declared with invalid members,
// like duplicate or reserved names, or an incomplete converter pair.
type ErrDeclaration struct {
	Type   string
	Member string
	Reason string
}

// Error implements [error].
func (e ErrDeclaration) Error() string {
	return fmt.Sprintf("schema %s: invalid member %q: %s", e.Type, e.Member, e.Reason)
}

// ErrConversion is returned when a value cannot be converted by the converter
// bound to a property.
type ErrConversion struct {
	Converter string
	Value     any
	Err       error
}

// Error implements [error].
func (e ErrConversion) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: cannot convert %#v", e.Converter, e.Value)
	}
	return fmt.Sprintf("%s: cannot convert %#v: %s", e.Converter, e.Value, e.Err.Error())
}

// Unwrap returns the underlying error, if any.
func (e ErrConversion) Unwrap() error {
	return e.Err
}

// ErrStoreWrite is returned when the store does not acknowledge a write.
type ErrStoreWrite struct {
	Key string
}

// Error implements [error].
func (e ErrStoreWrite) Error() string {
	return fmt.Sprintf("store did not acknowledge write of key %q", e.Key)
}

// ErrUnknownField is returned when a document is asked for a property or
// collection its schema does not declare.
type ErrUnknownField struct {
	Type  string
	Field string
}

// Error implements [error].
func (e ErrUnknownField) Error() string {
	return fmt.Sprintf("schema %s declares no field %q", e.Type, e.Field)
}

// ErrDecode is returned by decoders to wrap third party decoding errors.
type ErrDecode struct {
	Source any
	Target any
}

// Error implements [error].
func (e ErrDecode) Error() string {
	return fmt.Sprintf("cannot decode %T into %T", e.Source, e.Target)
}

// ErrCodec is returned when encoded data does not hold what a codec expects.
type ErrCodec struct {
	ContentType string
	Reason      string
}

// Error implements [error].
func (e ErrCodec) Error() string {
	return fmt.Sprintf("%s: %s", e.ContentType, e.Reason)
}
