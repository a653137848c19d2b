// Package signal declares the events emitted by kvdoc operations. Events are
// published through capitan, so any listener hooked to these signals can
// observe resolutions, saves and finds without kvdoc knowing about it.
package signal

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for kvdoc events.
var (
	SignalResolveComplete = capitan.NewSignal("kvdoc.resolve.complete", "Schema resolution finished")
	SignalSaveComplete    = capitan.NewSignal("kvdoc.save.complete", "Document save finished")
	SignalFindComplete    = capitan.NewSignal("kvdoc.find.complete", "Document find finished")
)

// Keys for typed event data.
var (
	KeyTypeName    = capitan.NewStringKey("type_name")
	KeyDocumentKey = capitan.NewStringKey("document_key")
	KeyContentType = capitan.NewStringKey("content_type")
	KeySize        = capitan.NewIntKey("size")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

// ResolveComplete emits an event when a schema resolution finishes.
func ResolveComplete(ctx context.Context, typeName string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalResolveComplete, fields...)
		return
	}
	capitan.Emit(ctx, SignalResolveComplete, fields...)
}

// SaveComplete emits an event when a save finishes.
func SaveComplete(ctx context.Context, typeName, key, contentType string, size int, duration time.Duration, err error) {
	fields := operationFields(typeName, key, contentType, size, duration)
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalSaveComplete, fields...)
		return
	}
	capitan.Emit(ctx, SignalSaveComplete, fields...)
}

// FindComplete emits an event when a find finishes. A find that hits no
// document is not an error.
func FindComplete(ctx context.Context, typeName, key, contentType string, size int, duration time.Duration, err error) {
	fields := operationFields(typeName, key, contentType, size, duration)
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalFindComplete, fields...)
		return
	}
	capitan.Emit(ctx, SignalFindComplete, fields...)
}

func operationFields(typeName, key, contentType string, size int, duration time.Duration) []capitan.Field {
	return []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyDocumentKey.Field(key),
		KeyContentType.Field(contentType),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
}
