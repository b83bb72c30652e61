// Package serializer is the entry point for turning messages into frames and
// back. It binds a schema registry, a wire version and an id source, and
// runs per-protocol validators on both directions.
package serializer

import (
	"fmt"
	"time"

	"github.com/danmuck/iacctl/internal/observability"
	"github.com/danmuck/iacctl/internal/protocol"
	"github.com/danmuck/iacctl/internal/protocol/deeplink"
	"github.com/danmuck/iacctl/internal/protocol/frame"
	"github.com/danmuck/iacctl/internal/protocol/message"
	"github.com/danmuck/iacctl/internal/protocol/schema"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Serializer struct {
	registry   *schema.Registry
	ids        message.IDGenerator
	version    int
	codec      message.Codec
	logger     zerolog.Logger
	validators map[string][]Validator
	limits     frame.Limits
	host       string
	param      string
}

type Option func(*Serializer)

func WithRegistry(reg *schema.Registry) Option {
	return func(s *Serializer) { s.registry = reg }
}

func WithIDGenerator(ids message.IDGenerator) Option {
	return func(s *Serializer) { s.ids = ids }
}

// WithVersion selects the envelope and message wire version used to encode.
// Decoding accepts every supported version regardless.
func WithVersion(version int) Option {
	return func(s *Serializer) { s.version = version }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Serializer) { s.logger = logger }
}

// WithValidator registers v for messages of protocolID. An empty protocolID
// applies v to every message.
func WithValidator(protocolID string, v Validator) Option {
	return func(s *Serializer) {
		s.validators[protocolID] = append(s.validators[protocolID], v)
	}
}

func WithLimits(limits frame.Limits) Option {
	return func(s *Serializer) { s.limits = limits }
}

func WithDeepLink(host, param string) Option {
	return func(s *Serializer) {
		s.host = host
		s.param = param
	}
}

func New(opts ...Option) (*Serializer, error) {
	s := &Serializer{
		ids:        message.DefaultIDGenerator,
		version:    message.VersionCurrent,
		logger:     log.Logger,
		validators: make(map[string][]Validator),
		limits:     frame.DefaultLimits(),
		host:       deeplink.DefaultHost,
		param:      deeplink.DefaultParam,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = message.DefaultIDGenerator
	}
	if s.registry == nil {
		reg, err := schema.Default()
		if err != nil {
			return nil, err
		}
		s.registry = reg
	}
	codec, err := message.CodecFor(s.version)
	if err != nil {
		return nil, err
	}
	s.codec = codec
	return s, nil
}

func (s *Serializer) Registry() *schema.Registry { return s.registry }

// NewMessage builds a message against the serializer's registry and id
// source. opts may pin an explicit id.
func (s *Serializer) NewMessage(t protocol.MessageType, protocolID string, payload any, opts ...message.Option) (message.Message, error) {
	opts = append([]message.Option{message.WithIDGenerator(s.ids)}, opts...)
	return message.New(s.registry, t, protocolID, payload, opts...)
}

// Serialize encodes msgs into frames. chunkLimit <= 0 always yields a single
// frame.
func (s *Serializer) Serialize(msgs []message.Message, chunkLimit int) ([]string, error) {
	start := time.Now()
	frames, err := s.serialize(msgs, chunkLimit)
	if err != nil {
		observability.RecordFailure("serialize", err, time.Since(start))
		s.logger.Warn().Err(err).Int("messages", len(msgs)).Msg("serialize failed")
		return nil, err
	}
	kind := "full"
	if len(frames) > 1 {
		kind = "chunked"
	}
	observability.RecordEncode(s.version, kind, len(frames), time.Since(start))
	s.logger.Debug().
		Int("messages", len(msgs)).
		Int("frames", len(frames)).
		Int("chunk_limit", chunkLimit).
		Int("version", s.version).
		Msg("serialized")
	return frames, nil
}

func (s *Serializer) serialize(msgs []message.Message, chunkLimit int) ([]string, error) {
	for _, msg := range msgs {
		if err := s.validate(msg); err != nil {
			return nil, err
		}
	}
	envs, err := frame.CreateEnvelopes(s.codec, s.registry, msgs, chunkLimit)
	if err != nil {
		return nil, err
	}
	return frame.EncodeAll(envs)
}

// Deserialize decodes frames in any order. When pages of a chunked batch are
// missing the error is a *protocol.IncompleteTransmissionError; call again
// with the frames gathered so far plus the new ones.
func (s *Serializer) Deserialize(frames []string) ([]message.Message, error) {
	start := time.Now()
	msgs, err := s.deserialize(frames)
	observability.RecordDecode(len(frames), time.Since(start), err)
	if err != nil {
		if incomplete, ok := protocol.IsIncomplete(err); ok {
			s.logger.Info().
				Ints("available", incomplete.AvailablePages).
				Ints("missing", incomplete.Missing()).
				Int("total", incomplete.TotalPages).
				Msg("transmission incomplete")
			return nil, err
		}
		observability.RecordFailure("deserialize", err, time.Since(start))
		s.logger.Warn().Err(err).Int("frames", len(frames)).Msg("deserialize failed")
		return nil, err
	}
	s.logger.Debug().Int("frames", len(frames)).Int("messages", len(msgs)).Msg("deserialized")
	return msgs, nil
}

func (s *Serializer) deserialize(frames []string) ([]message.Message, error) {
	dec := &frame.Decoder{Registry: s.registry, IDs: s.ids, Limits: s.limits}
	msgs, err := dec.Decode(frames)
	if err != nil {
		return nil, err
	}
	for _, msg := range msgs {
		if err := s.validate(msg); err != nil {
			return nil, err
		}
	}
	return msgs, nil
}

func (s *Serializer) SerializeToURL(msgs []message.Message, chunkLimit int) (string, error) {
	frames, err := s.Serialize(msgs, chunkLimit)
	if err != nil {
		return "", err
	}
	return deeplink.FramesToURL(frames, s.host, s.param), nil
}

func (s *Serializer) DeserializeURL(url string) ([]message.Message, error) {
	frames := deeplink.URLToFrames(url, s.param)
	if len(frames) == 0 {
		err := fmt.Errorf("%w: url has no %q parameter", protocol.ErrNoFrames, s.param)
		observability.RecordFailure("deserialize", err, 0)
		return nil, err
	}
	return s.Deserialize(frames)
}

func (s *Serializer) validate(msg message.Message) error {
	for _, key := range []string{"", msg.Protocol} {
		for _, v := range s.validators[key] {
			if err := v.Validate(msg); err != nil {
				return fmt.Errorf("%w: %s %s message %s: %w", protocol.ErrValidation, msg.Protocol, msg.Type, msg.ID, err)
			}
		}
		if msg.Protocol == "" {
			break
		}
	}
	return nil
}
