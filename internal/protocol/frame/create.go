package frame

import (
	"github.com/danmuck/iacctl/internal/protocol/message"
	"github.com/danmuck/iacctl/internal/protocol/payload"
	"github.com/danmuck/iacctl/internal/protocol/schema"
	"github.com/rs/zerolog/log"
)

// CreateEnvelopes packs msgs into a single Full envelope, or into one Chunked
// envelope per page when the Full byte form is longer than chunkLimit.
// chunkLimit <= 0 disables chunking.
func CreateEnvelopes(codec message.Codec, reg *schema.Registry, msgs []message.Message, chunkLimit int) ([]*Envelope, error) {
	full := payload.NewFull(codec, reg, msgs)
	raw, err := full.Bytes()
	if err != nil {
		return nil, err
	}
	if chunkLimit <= 0 || len(raw) <= chunkLimit {
		return []*Envelope{{Version: codec.Version(), Payload: full}}, nil
	}

	pages := payload.Split(raw, chunkLimit)
	out := make([]*Envelope, 0, len(pages))
	for _, page := range pages {
		out = append(out, &Envelope{Version: codec.Version(), Payload: page})
	}
	log.Debug().
		Int("bytes", len(raw)).
		Int("limit", chunkLimit).
		Int("pages", len(pages)).
		Msg("frame: chunked payload")
	return out, nil
}

// EncodeAll renders envelopes to frame strings in order.
func EncodeAll(envs []*Envelope) ([]string, error) {
	out := make([]string, 0, len(envs))
	for _, env := range envs {
		s, err := env.Encode()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
