package schema

import "sort"

// Kind enumerates the field-type descriptors a schema can contain.
type Kind int

const (
	KindString Kind = iota + 1
	KindHexString
	KindInteger
	KindBoolean
	KindNull
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindHexString:
		return "hexString"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindNull:
		return "null"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Node is one field-type descriptor. The set of implementations is closed:
// String, HexString, Integer, Boolean, Null, *Array and *Object.
type Node interface {
	Kind() Kind
	node()
}

type String struct{}

type HexString struct{}

// Integer covers both "integer" and "number" documents; values travel as
// base-10 digits.
type Integer struct{}

type Boolean struct{}

type Null struct{}

// Array holds either one Item schema applied to every element, or a
// positional Items list.
type Array struct {
	Item  Node
	Items []Node
}

// Object has a fixed property set. Encoding order is the sorted property
// names, independent of declaration order.
type Object struct {
	Properties map[string]Node
	Required   map[string]bool
}

func (String) Kind() Kind    { return KindString }
func (HexString) Kind() Kind { return KindHexString }
func (Integer) Kind() Kind   { return KindInteger }
func (Boolean) Kind() Kind   { return KindBoolean }
func (Null) Kind() Kind      { return KindNull }
func (*Array) Kind() Kind    { return KindArray }
func (*Object) Kind() Kind   { return KindObject }

func (String) node()    {}
func (HexString) node() {}
func (Integer) node()   {}
func (Boolean) node()   {}
func (Null) node()      {}
func (*Array) node()    {}
func (*Object) node()   {}

// ArrayOf builds a homogeneous array schema.
func ArrayOf(item Node) *Array {
	return &Array{Item: item}
}

// TupleOf builds a positional array schema.
func TupleOf(items ...Node) *Array {
	return &Array{Items: items}
}

// ObjectOf builds an object schema; properties not named in required are
// optional.
func ObjectOf(properties map[string]Node, required ...string) *Object {
	req := make(map[string]bool, len(required))
	for _, name := range required {
		req[name] = true
	}
	if properties == nil {
		properties = map[string]Node{}
	}
	return &Object{Properties: properties, Required: req}
}

// Keys returns the property names in wire order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.Properties))
	for k := range o.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (o *Object) IsRequired(name string) bool {
	return o.Required[name]
}

// ItemAt returns the schema for element i, or false when a positional array
// has no schema at that index.
func (a *Array) ItemAt(i int) (Node, bool) {
	if a.Items != nil {
		if i < 0 || i >= len(a.Items) {
			return nil, false
		}
		return a.Items[i], true
	}
	if a.Item == nil {
		return nil, false
	}
	return a.Item, true
}

// Positional reports whether the array uses a per-index schema list.
func (a *Array) Positional() bool {
	return a.Items != nil
}
