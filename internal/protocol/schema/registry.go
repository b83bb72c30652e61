package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danmuck/iacctl/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Key identifies one schema. An empty Protocol is the generic layout for the
// message type.
type Key struct {
	Type     protocol.MessageType
	Protocol string
}

func (k Key) String() string {
	if k.Protocol == "" {
		return k.Type.String()
	}
	return k.Type.String() + "/" + k.Protocol
}

// Entry pairs a key with its layout for NewRegistry.
type Entry struct {
	Key  Key
	Node Node
}

// Builder collects schemas during start-up. Keys are write-once.
type Builder struct {
	entries map[Key]Node
}

func NewBuilder() *Builder {
	return &Builder{entries: make(map[Key]Node)}
}

// Register adds node under (messageType, protocolID). protocolID may be
// empty for the generic layout.
func (b *Builder) Register(messageType protocol.MessageType, node Node, protocolID string) error {
	if node == nil {
		return fmt.Errorf("%w: nil schema for %s", protocol.ErrInvalidSchema, messageType)
	}
	key := Key{Type: messageType, Protocol: normalizeProtocol(protocolID)}
	if _, ok := b.entries[key]; ok {
		log.Error().Stringer("key", key).Msg("schema.Register duplicate")
		return fmt.Errorf("%w: %s", protocol.ErrDuplicateSchema, key)
	}
	b.entries[key] = node
	log.Trace().Stringer("key", key).Msg("schema.Register")
	return nil
}

// Build freezes the collected schemas. The builder can keep registering
// afterwards without affecting the returned registry.
func (b *Builder) Build() *Registry {
	entries := make(map[Key]Node, len(b.entries))
	for k, v := range b.entries {
		entries[k] = v
	}
	return &Registry{entries: entries}
}

// Registry is the immutable (type, protocol) -> layout table. It is safe for
// concurrent use.
type Registry struct {
	entries map[Key]Node
}

// NewRegistry builds a registry from entries; a repeated key fails.
func NewRegistry(entries ...Entry) (*Registry, error) {
	b := NewBuilder()
	for _, e := range entries {
		if err := b.Register(e.Key.Type, e.Node, e.Key.Protocol); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// Resolve prefers the exact (type, protocol) layout and falls back to the
// generic one.
func (r *Registry) Resolve(messageType protocol.MessageType, protocolID string) (Node, error) {
	protocolID = normalizeProtocol(protocolID)
	if protocolID != "" {
		if n, ok := r.entries[Key{Type: messageType, Protocol: protocolID}]; ok {
			return n, nil
		}
	}
	if n, ok := r.entries[Key{Type: messageType}]; ok {
		return n, nil
	}
	return nil, fmt.Errorf("%w: %s", protocol.ErrSchemaNotFound, Key{Type: messageType, Protocol: protocolID})
}

// Keys returns registered keys ordered by type then protocol.
func (r *Registry) Keys() []Key {
	keys := make([]Key, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].Protocol < keys[j].Protocol
	})
	return keys
}

func (r *Registry) Len() int {
	return len(r.entries)
}

func normalizeProtocol(id string) string {
	return strings.TrimSpace(id)
}
