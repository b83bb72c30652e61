package message

import (
	"fmt"
	"unicode/utf8"

	"github.com/danmuck/iacctl/internal/protocol"
	"github.com/danmuck/iacctl/internal/protocol/field"
	"github.com/danmuck/iacctl/internal/protocol/schema"
	"github.com/rs/zerolog/log"
)

const (
	// VersionLegacy frames carry [version, type, protocol, fields].
	VersionLegacy = 1
	// VersionCurrent frames append the message id:
	// [version, type, protocol, fields, id].
	VersionCurrent = 2
)

// Codec is one wire generation of the message array. Generations are selected
// by the envelope version; new generations are new implementations.
type Codec interface {
	Version() int
	Encode(reg *schema.Registry, msg Message) ([]any, error)
	Decode(reg *schema.Registry, item any, ids IDGenerator) (Message, error)
}

// CodecFor returns the codec for an envelope version.
func CodecFor(version int) (Codec, error) {
	switch version {
	case VersionLegacy:
		return LegacyCodec{}, nil
	case VersionCurrent:
		return CurrentCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", protocol.ErrUnsupportedVersion, version)
	}
}

// Current returns the codec used for new frames.
func Current() Codec {
	return CurrentCodec{}
}

// LegacyCodec reads and writes messages without an id. Decoding synthesizes
// one from the supplied generator.
type LegacyCodec struct{}

func (LegacyCodec) Version() int { return VersionLegacy }

func (c LegacyCodec) Encode(reg *schema.Registry, msg Message) ([]any, error) {
	fields, err := msg.Fields(reg)
	if err != nil {
		return nil, err
	}
	return []any{field.Digits(c.Version()), field.Digits(int(msg.Type)), []byte(msg.Protocol), fields}, nil
}

func (c LegacyCodec) Decode(reg *schema.Registry, item any, ids IDGenerator) (Message, error) {
	list, err := header(item, c.Version(), 4)
	if err != nil {
		return Message{}, err
	}
	msg, err := decodeBody(reg, list)
	if err != nil {
		return Message{}, err
	}
	if ids == nil {
		ids = DefaultIDGenerator
	}
	msg.ID = ids()
	log.Debug().Str("id", msg.ID).Stringer("type", msg.Type).Msg("message.LegacyCodec synthesized id")
	return msg, nil
}

// CurrentCodec carries the message id as the fifth element.
type CurrentCodec struct{}

func (CurrentCodec) Version() int { return VersionCurrent }

func (c CurrentCodec) Encode(reg *schema.Registry, msg Message) ([]any, error) {
	fields, err := msg.Fields(reg)
	if err != nil {
		return nil, err
	}
	return []any{
		field.Digits(c.Version()),
		field.Digits(int(msg.Type)),
		[]byte(msg.Protocol),
		fields,
		[]byte(msg.ID),
	}, nil
}

func (c CurrentCodec) Decode(reg *schema.Registry, item any, ids IDGenerator) (Message, error) {
	list, err := header(item, c.Version(), 5)
	if err != nil {
		return Message{}, err
	}
	msg, err := decodeBody(reg, list)
	if err != nil {
		return Message{}, err
	}
	id, err := utf8Element(list[4], "message id")
	if err != nil {
		return Message{}, err
	}
	if id == "" {
		if ids == nil {
			ids = DefaultIDGenerator
		}
		id = ids()
	}
	msg.ID = id
	return msg, nil
}

// header checks the list shape and the embedded generation number.
func header(item any, version, size int) ([]any, error) {
	list, ok := field.List(item)
	if !ok {
		return nil, fmt.Errorf("%w: message is not a list", protocol.ErrMalformedFrame)
	}
	if len(list) != size {
		return nil, fmt.Errorf("%w: message has %d elements, want %d for version %d",
			protocol.ErrMalformedFrame, len(list), size, version)
	}
	got, err := field.ParseDigits(list[0], "message version")
	if err != nil {
		return nil, err
	}
	if got != version {
		return nil, fmt.Errorf("%w: message version %d inside version %d envelope",
			protocol.ErrUnsupportedVersion, got, version)
	}
	return list, nil
}

// decodeBody reads type, protocol and fields (elements 1..3).
func decodeBody(reg *schema.Registry, list []any) (Message, error) {
	typ, err := field.ParseDigits(list[1], "message type")
	if err != nil {
		return Message{}, err
	}
	protocolID, err := utf8Element(list[2], "protocol")
	if err != nil {
		return Message{}, err
	}
	mt := protocol.MessageType(typ)
	node, err := reg.Resolve(mt, protocolID)
	if err != nil {
		return Message{}, err
	}
	payload, err := field.Decode(node, list[3])
	if err != nil {
		return Message{}, fmt.Errorf("message %s/%s: %w", mt, protocolID, err)
	}
	return Message{Type: mt, Protocol: protocolID, Payload: payload}, nil
}

func utf8Element(item any, name string) (string, error) {
	b, ok := field.Bytes(item)
	if !ok {
		return "", fmt.Errorf("%w: %s is a list", protocol.ErrMalformedFrame, name)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", protocol.ErrMalformedFrame, name)
	}
	return string(b), nil
}
