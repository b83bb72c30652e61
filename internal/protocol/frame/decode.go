package frame

import (
	"fmt"
	"strings"

	"github.com/danmuck/iacctl/internal/protocol"
	"github.com/danmuck/iacctl/internal/protocol/message"
	"github.com/danmuck/iacctl/internal/protocol/payload"
	"github.com/danmuck/iacctl/internal/protocol/schema"
	"github.com/rs/zerolog/log"
)

// Decoder turns a batch of scanned frames back into messages. The zero value
// is not usable; Registry is required.
type Decoder struct {
	Registry *schema.Registry
	// IDs backs legacy frames that carry no message id. Nil selects
	// message.DefaultIDGenerator.
	IDs    message.IDGenerator
	Limits Limits
}

func NewDecoder(reg *schema.Registry, ids message.IDGenerator) *Decoder {
	return &Decoder{Registry: reg, IDs: ids, Limits: DefaultLimits()}
}

// DecodeFrames parses frames into envelopes. Identical frame strings are
// decoded once. Every envelope in the batch shares one payload tag and one
// version, and at most one Full frame is accepted.
func (d *Decoder) DecodeFrames(frames []string) ([]*Envelope, error) {
	raws, err := d.parseBatch(frames)
	if err != nil {
		return nil, err
	}
	out := make([]*Envelope, 0, len(raws))
	for _, raw := range raws {
		env, err := raw.envelope(d.Registry, d.IDs)
		if err != nil {
			return nil, err
		}
		out = append(out, env)
	}
	return out, nil
}

// Decode returns the messages carried by frames in encode-time order. A
// chunked batch with missing pages fails with
// *protocol.IncompleteTransmissionError; decode again once more frames are in.
func (d *Decoder) Decode(frames []string) ([]message.Message, error) {
	envs, err := d.DecodeFrames(frames)
	if err != nil {
		return nil, err
	}
	first := envs[0]
	if full, ok := first.Payload.(*payload.Full); ok {
		return full.Messages, nil
	}

	codec, err := message.CodecFor(first.Version)
	if err != nil {
		return nil, err
	}
	chunks := make([]*payload.Chunked, 0, len(envs))
	for _, env := range envs {
		chunks = append(chunks, env.Payload.(*payload.Chunked))
	}
	full, err := Reassemble(codec, d.Registry, chunks, d.IDs)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int("pages", chunks[0].TotalPages).
		Int("messages", len(full.Messages)).
		Msg("frame: reassembled transmission")
	return full.Messages, nil
}

func (d *Decoder) parseBatch(frames []string) ([]rawFrame, error) {
	seen := make(map[string]struct{}, len(frames))
	raws := make([]rawFrame, 0, len(frames))
	for _, f := range frames {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		if d.Limits.MaxFrames > 0 && len(seen) > d.Limits.MaxFrames {
			return nil, fmt.Errorf("%w: more than %d frames", protocol.ErrMalformedFrame, d.Limits.MaxFrames)
		}
		raw, err := parseFrame(f, d.Limits)
		if err != nil {
			return nil, err
		}
		raws = append(raws, raw)
	}
	if len(raws) == 0 {
		return nil, protocol.ErrNoFrames
	}

	first := raws[0]
	for _, raw := range raws[1:] {
		if raw.tag != first.tag {
			return nil, fmt.Errorf("%w: %s and %s", protocol.ErrMixedFrameTypes, first.tag, raw.tag)
		}
		if raw.version != first.version {
			return nil, fmt.Errorf("%w: %d and %d", protocol.ErrMixedVersions, first.version, raw.version)
		}
	}
	if first.tag == payload.TagFull && len(raws) > 1 {
		return nil, fmt.Errorf("%w: got %d", protocol.ErrMultipleFullFrames, len(raws))
	}
	return raws, nil
}

// DecodeFrames parses frames with default limits.
func DecodeFrames(frames []string, reg *schema.Registry, ids message.IDGenerator) ([]*Envelope, error) {
	return NewDecoder(reg, ids).DecodeFrames(frames)
}

// Decode returns the messages carried by frames with default limits.
func Decode(frames []string, reg *schema.Registry, ids message.IDGenerator) ([]message.Message, error) {
	return NewDecoder(reg, ids).Decode(frames)
}
