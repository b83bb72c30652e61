package frame

import (
	"fmt"
	"strings"

	"github.com/danmuck/iacctl/internal/protocol"
	"github.com/danmuck/iacctl/internal/protocol/field"
	"github.com/danmuck/iacctl/internal/protocol/message"
	"github.com/danmuck/iacctl/internal/protocol/payload"
	"github.com/danmuck/iacctl/internal/protocol/schema"
	"github.com/luxfi/geth/rlp"
)

// Envelope is the outer [version, payloadTag, payload] wrapper of one frame.
type Envelope struct {
	Version int
	Payload payload.Payload
}

func (e *Envelope) Tag() payload.Tag {
	return e.Payload.Tag()
}

// Encode renders the frame text: base58check(RLP([version, tag, payload])).
func (e *Envelope) Encode() (string, error) {
	items, err := e.Payload.Render()
	if err != nil {
		return "", err
	}
	raw, err := rlp.EncodeToBytes([]any{
		field.Digits(e.Version),
		field.Digits(int(e.Tag())),
		items,
	})
	if err != nil {
		return "", fmt.Errorf("frame: rlp encode: %w", err)
	}
	return CheckEncode(raw), nil
}

// Limits constrains decode memory use for untrusted scanner input.
type Limits struct {
	MaxFrameChars int
	MaxFrames     int
}

func DefaultLimits() Limits {
	return Limits{
		MaxFrameChars: 16 * 1024,
		MaxFrames:     1024,
	}
}

// rawFrame is a frame after base58check and RLP decoding, before the payload
// is interpreted.
type rawFrame struct {
	version int
	tag     payload.Tag
	body    any
}

func parseFrame(s string, limits Limits) (rawFrame, error) {
	if limits.MaxFrameChars > 0 && len(s) > limits.MaxFrameChars {
		return rawFrame{}, fmt.Errorf("%w: frame of %d chars exceeds %d",
			protocol.ErrMalformedFrame, len(s), limits.MaxFrameChars)
	}
	data, err := CheckDecode(s)
	if err != nil {
		return rawFrame{}, err
	}
	var items []any
	if err := rlp.DecodeBytes(data, &items); err != nil {
		return rawFrame{}, fmt.Errorf("%w: rlp: %v", protocol.ErrMalformedFrame, err)
	}
	if len(items) != 3 {
		return rawFrame{}, fmt.Errorf("%w: envelope has %d elements, want 3", protocol.ErrMalformedFrame, len(items))
	}
	version, err := field.ParseDigits(items[0], "envelope version")
	if err != nil {
		return rawFrame{}, err
	}
	tag, err := field.ParseDigits(items[1], "payload tag")
	if err != nil {
		return rawFrame{}, err
	}
	switch payload.Tag(tag) {
	case payload.TagFull, payload.TagChunked:
	default:
		return rawFrame{}, fmt.Errorf("%w: unknown payload tag %d", protocol.ErrMalformedFrame, tag)
	}
	return rawFrame{version: version, tag: payload.Tag(tag), body: items[2]}, nil
}

// ParseEnvelope decodes a single frame. Full payloads are parsed into
// messages with reg; ids backs legacy frames without message ids.
func ParseEnvelope(s string, reg *schema.Registry, ids message.IDGenerator) (*Envelope, error) {
	raw, err := parseFrame(strings.TrimSpace(s), DefaultLimits())
	if err != nil {
		return nil, err
	}
	return raw.envelope(reg, ids)
}

func (r rawFrame) envelope(reg *schema.Registry, ids message.IDGenerator) (*Envelope, error) {
	codec, err := message.CodecFor(r.version)
	if err != nil {
		return nil, err
	}
	switch r.tag {
	case payload.TagFull:
		full, err := payload.ParseFull(codec, reg, r.body, ids)
		if err != nil {
			return nil, err
		}
		return &Envelope{Version: r.version, Payload: full}, nil
	default:
		chunk, err := payload.ParseChunked(r.body)
		if err != nil {
			return nil, err
		}
		return &Envelope{Version: r.version, Payload: chunk}, nil
	}
}
