package payload

import (
	"bytes"
	"testing"

	"github.com/danmuck/iacctl/internal/protocol"
	"github.com/danmuck/iacctl/internal/protocol/field"
	"github.com/danmuck/iacctl/internal/protocol/message"
	"github.com/danmuck/iacctl/internal/protocol/schema"
	"github.com/danmuck/iacctl/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

func TestSplitPages(t *testing.T) {
	testlog.Start(t)
	raw := bytes.Repeat([]byte{0xab}, 250)
	pages := Split(raw, 100)
	require.Len(t, pages, 3)
	for i, p := range pages {
		require.Equal(t, i, p.PageIndex)
		require.Equal(t, 3, p.TotalPages)
	}
	require.Len(t, pages[0].Bytes, 100)
	require.Len(t, pages[1].Bytes, 100)
	require.Len(t, pages[2].Bytes, 50)

	var joined []byte
	for _, p := range pages {
		joined = append(joined, p.Bytes...)
	}
	require.Equal(t, raw, joined)

	require.Len(t, Split(raw, 250), 1)
	require.Len(t, Split(raw, 0), 1)
}

func TestChunkedRenderParse(t *testing.T) {
	testlog.Start(t)
	c := &Chunked{PageIndex: 2, TotalPages: 6, Bytes: []byte{1, 2, 3}}
	require.Equal(t, TagChunked, c.Tag())
	item, err := c.Render()
	require.NoError(t, err)
	require.Equal(t, []any{[]byte("2"), []byte("6"), []byte{1, 2, 3}}, item)

	back, err := ParseChunked(any(item))
	require.NoError(t, err)
	require.Equal(t, c, back)
}

func TestParseChunkedRejectsBadPages(t *testing.T) {
	testlog.Start(t)
	cases := map[string]any{
		"bytes":        []byte("x"),
		"short":        []any{field.Digits(0), field.Digits(1)},
		"zero total":   []any{field.Digits(0), field.Digits(0), []byte{}},
		"out of range": []any{field.Digits(3), field.Digits(3), []byte{}},
		"list bytes":   []any{field.Digits(0), field.Digits(1), []any{}},
	}
	for name, item := range cases {
		_, err := ParseChunked(item)
		require.ErrorIs(t, err, protocol.ErrMalformedFrame, name)
	}
}

func TestFullBytesRoundTrip(t *testing.T) {
	testlog.Start(t)
	reg, err := schema.Default()
	require.NoError(t, err)

	var msgs []message.Message
	for _, text := range []string{"one", "two"} {
		m, err := message.New(reg, protocol.MessageSignResponse, "eth", map[string]any{
			"message":   text,
			"publicKey": "04ff",
			"signature": "0x1b",
		}, message.WithID("id-"+text))
		require.NoError(t, err)
		msgs = append(msgs, m)
	}

	full := NewFull(message.Current(), reg, msgs)
	require.Equal(t, TagFull, full.Tag())
	raw, err := full.Bytes()
	require.NoError(t, err)

	back, err := ParseFullBytes(message.Current(), reg, raw, nil)
	require.NoError(t, err)
	require.Equal(t, msgs, back.Messages)

	_, err = ParseFullBytes(message.Current(), reg, raw[:len(raw)-1], nil)
	require.ErrorIs(t, err, protocol.ErrMalformedFrame)
}
