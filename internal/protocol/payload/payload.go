// Package payload holds the two transmission payload variants carried by an
// envelope: the full message list and one page of a chunked byte sequence.
package payload

import (
	"fmt"

	"github.com/danmuck/iacctl/internal/protocol"
	"github.com/danmuck/iacctl/internal/protocol/field"
	"github.com/danmuck/iacctl/internal/protocol/message"
	"github.com/danmuck/iacctl/internal/protocol/schema"
	"github.com/luxfi/geth/rlp"
)

// Tag is the payload type marker on the wire.
type Tag int

const (
	TagFull    Tag = 0
	TagChunked Tag = 1
)

func (t Tag) String() string {
	switch t {
	case TagFull:
		return "full"
	case TagChunked:
		return "chunked"
	default:
		return fmt.Sprintf("tag(%d)", int(t))
	}
}

// Payload renders itself as an RLP-codable item list.
type Payload interface {
	Tag() Tag
	Render() ([]any, error)
}

// Full is the complete ordered message list of one transmission.
type Full struct {
	Messages []message.Message

	codec    message.Codec
	registry *schema.Registry
}

// NewFull binds messages to the wire generation and layouts used to render
// them.
func NewFull(codec message.Codec, reg *schema.Registry, msgs []message.Message) *Full {
	return &Full{Messages: msgs, codec: codec, registry: reg}
}

func (*Full) Tag() Tag { return TagFull }

func (f *Full) Render() ([]any, error) {
	out := make([]any, 0, len(f.Messages))
	for i, msg := range f.Messages {
		item, err := f.codec.Encode(f.registry, msg)
		if err != nil {
			return nil, fmt.Errorf("payload: message %d: %w", i, err)
		}
		out = append(out, item)
	}
	return out, nil
}

// Bytes is the RLP encoding of Render; it is the sequence that gets split
// into pages.
func (f *Full) Bytes() ([]byte, error) {
	items, err := f.Render()
	if err != nil {
		return nil, err
	}
	return rlp.EncodeToBytes(items)
}

// ParseFull decodes a rendered message list.
func ParseFull(codec message.Codec, reg *schema.Registry, item any, ids message.IDGenerator) (*Full, error) {
	list, ok := field.List(item)
	if !ok {
		return nil, fmt.Errorf("%w: full payload is not a list", protocol.ErrMalformedFrame)
	}
	msgs := make([]message.Message, 0, len(list))
	for i, elem := range list {
		msg, err := codec.Decode(reg, elem, ids)
		if err != nil {
			return nil, fmt.Errorf("payload: message %d: %w", i, err)
		}
		msgs = append(msgs, msg)
	}
	return NewFull(codec, reg, msgs), nil
}

// ParseFullBytes decodes the RLP byte form produced by Full.Bytes.
func ParseFullBytes(codec message.Codec, reg *schema.Registry, raw []byte, ids message.IDGenerator) (*Full, error) {
	var item []any
	if err := rlp.DecodeBytes(raw, &item); err != nil {
		return nil, fmt.Errorf("%w: full payload: %v", protocol.ErrMalformedFrame, err)
	}
	return ParseFull(codec, reg, item, ids)
}

// Chunked is one page of a Full payload's byte form.
type Chunked struct {
	PageIndex  int
	TotalPages int
	Bytes      []byte
}

func (*Chunked) Tag() Tag { return TagChunked }

func (c *Chunked) Render() ([]any, error) {
	return []any{field.Digits(c.PageIndex), field.Digits(c.TotalPages), c.Bytes}, nil
}

// ParseChunked decodes [pageIndex, totalPages, bytes].
func ParseChunked(item any) (*Chunked, error) {
	list, ok := field.List(item)
	if !ok || len(list) != 3 {
		return nil, fmt.Errorf("%w: chunked payload must be a 3-element list", protocol.ErrMalformedFrame)
	}
	index, err := field.ParseDigits(list[0], "page index")
	if err != nil {
		return nil, err
	}
	total, err := field.ParseDigits(list[1], "total pages")
	if err != nil {
		return nil, err
	}
	if total == 0 || index >= total {
		return nil, fmt.Errorf("%w: page %d of %d", protocol.ErrMalformedFrame, index, total)
	}
	data, ok := field.Bytes(list[2])
	if !ok {
		return nil, fmt.Errorf("%w: page bytes is a list", protocol.ErrMalformedFrame)
	}
	return &Chunked{PageIndex: index, TotalPages: total, Bytes: data}, nil
}

// Split cuts raw into ceil(len/limit) contiguous pages of at most limit
// bytes. The last page may be shorter.
func Split(raw []byte, limit int) []*Chunked {
	if limit <= 0 || len(raw) == 0 {
		return []*Chunked{{PageIndex: 0, TotalPages: 1, Bytes: raw}}
	}
	total := (len(raw) + limit - 1) / limit
	pages := make([]*Chunked, 0, total)
	for i := 0; i < total; i++ {
		start := i * limit
		end := min(start+limit, len(raw))
		pages = append(pages, &Chunked{PageIndex: i, TotalPages: total, Bytes: raw[start:end]})
	}
	return pages
}
