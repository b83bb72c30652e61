// Package field converts JSON-like payload values to and from RLP item trees
// under the direction of a schema node.
package field

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/danmuck/iacctl/internal/protocol"
	"github.com/danmuck/iacctl/internal/protocol/schema"
	"github.com/mitchellh/mapstructure"
)

// Encode renders value as an RLP item tree following node. The root value is
// required.
func Encode(node schema.Node, value any) (any, error) {
	return encode(node, value, "", true)
}

// Decode is the inverse of Encode. Integers decode to int64, arrays to []any
// and objects to map[string]any.
func Decode(node schema.Node, item any) (any, error) {
	v, _, err := decode(node, item, "", true)
	return v, err
}

func encode(node schema.Node, value any, key string, required bool) (any, error) {
	if isAbsent(value) {
		if _, ok := node.(schema.Null); ok || !required {
			return []byte{}, nil
		}
		return nil, &protocol.MissingFieldError{Key: keyOf(key)}
	}

	switch n := node.(type) {
	case schema.String:
		s, ok := stringValue(value)
		if !ok {
			return nil, mismatch(key, n, value)
		}
		return []byte(s), nil

	case schema.HexString:
		s, ok := stringValue(value)
		if !ok {
			return nil, mismatch(key, n, value)
		}
		raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
		b, err := hex.DecodeString(raw)
		if err != nil {
			return nil, &protocol.FieldTypeMismatchError{Key: keyOf(key), Expected: n.Kind().String(), Actual: "invalid hex"}
		}
		return b, nil

	case schema.Integer:
		digits, ok := integerDigits(value)
		if !ok {
			return nil, mismatch(key, n, value)
		}
		return []byte(digits), nil

	case schema.Boolean:
		b, ok := value.(bool)
		if !ok {
			return nil, mismatch(key, n, value)
		}
		if b {
			return []byte("1"), nil
		}
		return []byte("0"), nil

	case schema.Null:
		return nil, mismatch(key, n, value)

	case *schema.Array:
		return encodeArray(n, value, key)

	case *schema.Object:
		return encodeObject(n, value, key)

	default:
		return nil, fmt.Errorf("%w: unsupported node %T at %s", protocol.ErrInvalidSchema, node, keyOf(key))
	}
}

func encodeArray(n *schema.Array, value any, key string) (any, error) {
	rv := reflect.Indirect(reflect.ValueOf(value))
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, mismatch(key, n, value)
	}
	if n.Positional() && rv.Len() != len(n.Items) {
		return nil, &protocol.FieldTypeMismatchError{
			Key:      keyOf(key),
			Expected: fmt.Sprintf("array[%d]", len(n.Items)),
			Actual:   fmt.Sprintf("array[%d]", rv.Len()),
		}
	}
	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		itemNode, ok := n.ItemAt(i)
		if !ok {
			return nil, fmt.Errorf("%w: array without item schema at %s", protocol.ErrInvalidSchema, keyOf(key))
		}
		item, err := encode(itemNode, rv.Index(i).Interface(), fmt.Sprintf("%s[%d]", key, i), true)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func encodeObject(n *schema.Object, value any, key string) (any, error) {
	props, ok := objectValue(value)
	if !ok {
		return nil, mismatch(key, n, value)
	}
	if err := checkUndeclared(n, props, key); err != nil {
		return nil, err
	}
	keys := n.Keys()
	out := make([]any, 0, len(keys))
	for _, name := range keys {
		item, err := encode(n.Properties[name], props[name], join(key, name), n.IsRequired(name))
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// checkUndeclared rejects values under keys the object does not declare.
// Nil values carry nothing on the wire and are ignored.
func checkUndeclared(n *schema.Object, props map[string]any, key string) error {
	var extra []string
	for name, v := range props {
		if _, ok := n.Properties[name]; !ok && !isAbsent(v) {
			extra = append(extra, name)
		}
	}
	if len(extra) == 0 {
		return nil
	}
	slices.Sort(extra)
	return &protocol.FieldTypeMismatchError{
		Key:      join(key, extra[0]),
		Expected: "undeclared property",
		Actual:   KindOf(props[extra[0]]),
	}
}

// decode returns the value and whether the field was present on the wire.
func decode(node schema.Node, item any, key string, required bool) (any, bool, error) {
	if b, ok := Bytes(item); ok && len(b) == 0 {
		switch node.(type) {
		case schema.Null:
			return nil, true, nil
		case schema.String:
			if required {
				return "", true, nil
			}
			return nil, false, nil
		case schema.HexString:
			if required {
				return "0x", true, nil
			}
			return nil, false, nil
		default:
			if required {
				return nil, false, &protocol.MissingFieldError{Key: keyOf(key)}
			}
			return nil, false, nil
		}
	}

	switch n := node.(type) {
	case schema.String:
		b, ok := Bytes(item)
		if !ok {
			return nil, false, wireMismatch(key, n, item)
		}
		return string(b), true, nil

	case schema.HexString:
		b, ok := Bytes(item)
		if !ok {
			return nil, false, wireMismatch(key, n, item)
		}
		return "0x" + hex.EncodeToString(b), true, nil

	case schema.Integer:
		b, ok := Bytes(item)
		if !ok {
			return nil, false, wireMismatch(key, n, item)
		}
		v, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return nil, false, &protocol.FieldTypeMismatchError{Key: keyOf(key), Expected: n.Kind().String(), Actual: fmt.Sprintf("%q", b)}
		}
		return v, true, nil

	case schema.Boolean:
		b, ok := Bytes(item)
		if !ok {
			return nil, false, wireMismatch(key, n, item)
		}
		switch string(b) {
		case "1":
			return true, true, nil
		case "0":
			return false, true, nil
		default:
			return nil, false, &protocol.FieldTypeMismatchError{Key: keyOf(key), Expected: n.Kind().String(), Actual: fmt.Sprintf("%q", b)}
		}

	case schema.Null:
		return nil, false, wireMismatch(key, n, item)

	case *schema.Array:
		list, ok := List(item)
		if !ok {
			return nil, false, wireMismatch(key, n, item)
		}
		if n.Positional() && len(list) != len(n.Items) {
			return nil, false, &protocol.FieldTypeMismatchError{
				Key:      keyOf(key),
				Expected: fmt.Sprintf("array[%d]", len(n.Items)),
				Actual:   fmt.Sprintf("array[%d]", len(list)),
			}
		}
		out := make([]any, 0, len(list))
		for i, elem := range list {
			itemNode, ok := n.ItemAt(i)
			if !ok {
				return nil, false, fmt.Errorf("%w: array without item schema at %s", protocol.ErrInvalidSchema, keyOf(key))
			}
			v, _, err := decode(itemNode, elem, fmt.Sprintf("%s[%d]", key, i), true)
			if err != nil {
				return nil, false, err
			}
			out = append(out, v)
		}
		return out, true, nil

	case *schema.Object:
		list, ok := List(item)
		if !ok {
			return nil, false, wireMismatch(key, n, item)
		}
		keys := n.Keys()
		if len(list) != len(keys) {
			return nil, false, &protocol.FieldTypeMismatchError{
				Key:      keyOf(key),
				Expected: fmt.Sprintf("object[%d]", len(keys)),
				Actual:   fmt.Sprintf("array[%d]", len(list)),
			}
		}
		out := make(map[string]any, len(keys))
		for i, name := range keys {
			v, present, err := decode(n.Properties[name], list[i], join(key, name), n.IsRequired(name))
			if err != nil {
				return nil, false, err
			}
			if present {
				out[name] = v
			}
		}
		return out, true, nil

	default:
		return nil, false, fmt.Errorf("%w: unsupported node %T at %s", protocol.ErrInvalidSchema, node, keyOf(key))
	}
}

func isAbsent(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func stringValue(value any) (string, bool) {
	rv := reflect.Indirect(reflect.ValueOf(value))
	if rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}

func integerDigits(value any) (string, bool) {
	if n, ok := value.(json.Number); ok {
		v, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return "", false
		}
		return strconv.FormatInt(v, 10), true
	}
	rv := reflect.Indirect(reflect.ValueOf(value))
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		// decoded integers are int64
		if rv.Uint() > math.MaxInt64 {
			return "", false
		}
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			return "", false
		}
		return strconv.FormatInt(int64(f), 10), true
	default:
		return "", false
	}
}

// objectValue accepts string-keyed maps and structs. Structs are flattened
// with their mapstructure tags.
func objectValue(value any) (map[string]any, bool) {
	if m, ok := value.(map[string]any); ok {
		return m, true
	}
	rv := reflect.Indirect(reflect.ValueOf(value))
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, true
	case reflect.Struct:
		out := make(map[string]any)
		if err := mapstructure.Decode(rv.Interface(), &out); err != nil {
			return nil, false
		}
		return out, true
	default:
		return nil, false
	}
}

func mismatch(key string, node schema.Node, value any) error {
	return &protocol.FieldTypeMismatchError{Key: keyOf(key), Expected: node.Kind().String(), Actual: KindOf(value)}
}

func wireMismatch(key string, node schema.Node, item any) error {
	actual := "bytes"
	if _, ok := List(item); ok {
		actual = "list"
	}
	return &protocol.FieldTypeMismatchError{Key: keyOf(key), Expected: node.Kind().String(), Actual: actual}
}

// KindOf names the JSON kind of a Go value for error messages.
func KindOf(value any) string {
	if isAbsent(value) {
		return "null"
	}
	if _, ok := value.(json.Number); ok {
		return "number"
	}
	rv := reflect.Indirect(reflect.ValueOf(value))
	switch rv.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func join(key, name string) string {
	if key == "" {
		return name
	}
	return key + "." + name
}

func keyOf(key string) string {
	if key == "" {
		return "<root>"
	}
	return key
}
