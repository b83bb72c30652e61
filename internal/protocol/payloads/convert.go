package payloads

import (
	"fmt"
	"reflect"

	"github.com/danmuck/iacctl/internal/protocol"
	"github.com/danmuck/iacctl/internal/protocol/message"
	"github.com/danmuck/iacctl/internal/protocol/schema"
	"github.com/mitchellh/mapstructure"
)

// ToValue flattens a typed payload into map[string]any / []any / scalar form.
// Nil pointers and omitempty zero values are dropped.
func ToValue(v any) (any, error) {
	return normalize(reflect.ValueOf(v))
}

func normalize(rv reflect.Value) (any, error) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Invalid:
		return nil, nil
	case reflect.Struct:
		var flat map[string]any
		if err := mapstructure.Decode(rv.Interface(), &flat); err != nil {
			return nil, fmt.Errorf("payloads: %w", err)
		}
		return normalizeMap(flat)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("payloads: map key %s is not a string", rv.Type().Key())
		}
		flat := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			flat[iter.Key().String()] = iter.Value().Interface()
		}
		return normalizeMap(flat)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, nil
		}
		out := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			v, err := normalize(rv.Index(i))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	default:
		return rv.Interface(), nil
	}
}

func normalizeMap(flat map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(flat))
	for k, v := range flat {
		nv, err := normalize(reflect.ValueOf(v))
		if err != nil {
			return nil, fmt.Errorf("payloads: %s: %w", k, err)
		}
		if nv != nil {
			out[k] = nv
		}
	}
	return out, nil
}

// FromValue fills out, a pointer to one of the payload structs, from the
// generic form produced by field decoding.
func FromValue(value any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: false,
		ErrorUnused:      false,
	})
	if err != nil {
		return fmt.Errorf("payloads: %w", err)
	}
	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("%w: payloads: %v", protocol.ErrFieldTypeMismatch, err)
	}
	return nil
}

// NewMessage builds a message from a typed payload.
func NewMessage(reg *schema.Registry, t protocol.MessageType, protocolID string, typed any, opts ...message.Option) (message.Message, error) {
	value, err := ToValue(typed)
	if err != nil {
		return message.Message{}, err
	}
	return message.New(reg, t, protocolID, value, opts...)
}

// As decodes the payload of msg into a new T.
func As[T any](msg message.Message) (T, error) {
	var out T
	err := FromValue(msg.Payload, &out)
	return out, err
}
