package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/danmuck/iacctl/internal/protocol"
	"github.com/danmuck/iacctl/internal/protocol/message"
	"github.com/danmuck/iacctl/internal/serializer"
)

// messageDoc is the JSON shape of a message on the command line. Type is
// either the kebab-case name or the wire integer.
type messageDoc struct {
	ID       string          `json:"id,omitempty"`
	Type     json.RawMessage `json:"type"`
	Protocol string          `json:"protocol"`
	Payload  any             `json:"payload"`
}

type messageOut struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Protocol string `json:"protocol"`
	Payload  any    `json:"payload"`
}

func readMessages(r io.Reader, s *serializer.Serializer) ([]message.Message, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var docs []messageDoc
	if err := dec.Decode(&docs); err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	msgs := make([]message.Message, 0, len(docs))
	for i, doc := range docs {
		t, err := parseType(doc.Type)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		var opts []message.Option
		if doc.ID != "" {
			opts = append(opts, message.WithID(doc.ID))
		}
		msg, err := s.NewMessage(t, doc.Protocol, doc.Payload, opts...)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func parseType(raw json.RawMessage) (protocol.MessageType, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, fmt.Errorf("type is required")
	}
	if raw[0] == '"' {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return 0, err
		}
		return protocol.ParseMessageType(name)
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("type %s: %w", raw, err)
	}
	t := protocol.MessageType(n)
	if !t.Valid() {
		return 0, fmt.Errorf("type %d is not a known message type", n)
	}
	return t, nil
}

func writeMessages(w io.Writer, msgs []message.Message) error {
	out := make([]messageOut, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageOut{ID: m.ID, Type: m.Type.String(), Protocol: m.Protocol, Payload: m.Payload})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
