// Package message models one IAC message and its wire generations.
package message

import (
	"fmt"
	"strings"
	"sync"

	"github.com/danmuck/iacctl/internal/protocol"
	"github.com/danmuck/iacctl/internal/protocol/field"
	"github.com/danmuck/iacctl/internal/protocol/schema"
	"github.com/google/uuid"
)

// Message is one logical unit: a type, the chain protocol it concerns and a
// schema-shaped payload. Payload holds the canonical value tree (maps with
// string keys, []any, string, int64, bool).
type Message struct {
	ID       string
	Type     protocol.MessageType
	Protocol string
	Payload  any
}

// IDGenerator issues message identifiers. It is consulted for new messages
// without an explicit id and for legacy frames that predate the id field.
type IDGenerator func() string

// DefaultIDGenerator returns random UUIDv4 strings.
func DefaultIDGenerator() string {
	return uuid.NewString()
}

// SequenceIDGenerator returns a deterministic generator yielding prefix1,
// prefix2, ... It is safe for concurrent use.
func SequenceIDGenerator(prefix string) IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

type options struct {
	id  string
	ids IDGenerator
}

type Option func(*options)

// WithID fixes the message identifier.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithIDGenerator replaces DefaultIDGenerator for this message.
func WithIDGenerator(ids IDGenerator) Option {
	return func(o *options) { o.ids = ids }
}

// New validates payload against the registered layout for (t, protocolID)
// and returns the message with its payload in canonical form. Object keys the
// layout does not declare are rejected with ErrFieldTypeMismatch.
func New(reg *schema.Registry, t protocol.MessageType, protocolID string, payload any, opts ...Option) (Message, error) {
	o := options{ids: DefaultIDGenerator}
	for _, opt := range opts {
		opt(&o)
	}
	protocolID = strings.TrimSpace(protocolID)

	node, err := reg.Resolve(t, protocolID)
	if err != nil {
		return Message{}, err
	}
	canonical, err := canonicalize(node, payload)
	if err != nil {
		return Message{}, fmt.Errorf("message %s/%s: %w", t, protocolID, err)
	}

	id := o.id
	if id == "" {
		id = o.ids()
	}
	return Message{ID: id, Type: t, Protocol: protocolID, Payload: canonical}, nil
}

// Fields renders the payload as the schema-ordered item tree.
func (m Message) Fields(reg *schema.Registry) (any, error) {
	node, err := reg.Resolve(m.Type, m.Protocol)
	if err != nil {
		return nil, err
	}
	item, err := field.Encode(node, m.Payload)
	if err != nil {
		return nil, fmt.Errorf("message %s/%s: %w", m.Type, m.Protocol, err)
	}
	return item, nil
}

func canonicalize(node schema.Node, payload any) (any, error) {
	item, err := field.Encode(node, payload)
	if err != nil {
		return nil, err
	}
	return field.Decode(node, item)
}
