package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danmuck/iacctl/internal/protocol"
)

const definitionsPrefix = "#/definitions/"

// maxRefDepth bounds $ref chains; recursive layouts cannot be encoded anyway.
const maxRefDepth = 32

type document struct {
	Ref         string               `json:"$ref"`
	Type        string               `json:"type"`
	Format      string               `json:"format"`
	Properties  map[string]*document `json:"properties"`
	Required    []string             `json:"required"`
	Items       json.RawMessage      `json:"items"`
	Definitions map[string]*document `json:"definitions"`
}

// ParseDocument converts a JSON schema document into a Node tree.
//
// The accepted subset is what the IAC layouts use: type (string, hexString,
// integer, number, boolean, null, array, object), properties, required,
// items (single schema or positional list), format "hex" on strings, and
// $ref into the root definitions.
func ParseDocument(data []byte) (Node, error) {
	var root document
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", protocol.ErrInvalidSchema, err)
	}
	p := parser{definitions: root.Definitions}
	return p.node(&root, "", 0)
}

type parser struct {
	definitions map[string]*document
}

func (p parser) node(doc *document, path string, depth int) (Node, error) {
	if doc == nil {
		return nil, invalid(path, "empty schema")
	}
	if doc.Ref != "" {
		if depth >= maxRefDepth {
			return nil, invalid(path, "reference chain too deep at "+doc.Ref)
		}
		name, ok := strings.CutPrefix(doc.Ref, definitionsPrefix)
		if !ok {
			return nil, invalid(path, "unsupported reference "+doc.Ref)
		}
		target, ok := p.definitions[name]
		if !ok {
			return nil, invalid(path, "unknown definition "+name)
		}
		return p.node(target, path, depth+1)
	}

	switch doc.Type {
	case "string":
		if doc.Format == "hex" {
			return HexString{}, nil
		}
		return String{}, nil
	case "hexString":
		return HexString{}, nil
	case "integer", "number":
		return Integer{}, nil
	case "boolean":
		return Boolean{}, nil
	case "null":
		return Null{}, nil
	case "array":
		return p.array(doc, path, depth)
	case "object":
		return p.object(doc, path, depth)
	case "":
		return nil, invalid(path, "missing type")
	default:
		return nil, invalid(path, "unsupported type "+doc.Type)
	}
}

func (p parser) array(doc *document, path string, depth int) (Node, error) {
	raw := bytes.TrimSpace(doc.Items)
	if len(raw) == 0 {
		return nil, invalid(path, "array without items")
	}
	if raw[0] == '[' {
		var list []*document
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, invalid(path, err.Error())
		}
		items := make([]Node, 0, len(list))
		for i, item := range list {
			n, err := p.node(item, fmt.Sprintf("%s[%d]", path, i), depth)
			if err != nil {
				return nil, err
			}
			items = append(items, n)
		}
		return TupleOf(items...), nil
	}
	var item document
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, invalid(path, err.Error())
	}
	n, err := p.node(&item, path+"[]", depth)
	if err != nil {
		return nil, err
	}
	return ArrayOf(n), nil
}

func (p parser) object(doc *document, path string, depth int) (Node, error) {
	props := make(map[string]Node, len(doc.Properties))
	for name, prop := range doc.Properties {
		n, err := p.node(prop, join(path, name), depth)
		if err != nil {
			return nil, err
		}
		props[name] = n
	}
	for _, name := range doc.Required {
		if _, ok := props[name]; !ok {
			return nil, invalid(path, "required property "+name+" is not declared")
		}
	}
	return ObjectOf(props, doc.Required...), nil
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func invalid(path, reason string) error {
	if path == "" {
		path = "<root>"
	}
	return fmt.Errorf("%w: %s: %s", protocol.ErrInvalidSchema, path, reason)
}
