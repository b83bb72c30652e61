package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/iacctl/internal/protocol"
	"github.com/danmuck/iacctl/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

const messagesJSON = `[
  {"id": "msg-1", "type": "message-sign-request", "protocol": "eth",
   "payload": {"message": "hello from the cold side", "publicKey": "03ab"}},
  {"id": "msg-2", "type": 5, "protocol": "eth",
   "payload": {"publicKey": "03ab", "transaction": {
     "nonce": "0x0a", "gasPrice": "0x04a817c800", "gasLimit": "0x5208",
     "to": "0xF5E54317822EBA2568236EFa7b08065eF15C5d42",
     "value": "0x0de0b6b3a7640000", "chainId": 1, "data": "0x"}}}
]`

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := newRootCommand()
	c.SetArgs(args)
	c.SetIn(strings.NewReader(stdin))
	c.SetOut(&stdout)
	c.SetErr(&stderr)
	err := c.Execute()
	return stdout.String(), stderr.String(), err
}

func messagesFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "messages.json")
	require.NoError(t, os.WriteFile(path, []byte(messagesJSON), 0o644))
	return path
}

func decodeOutput(t *testing.T, out string) []messageOut {
	t.Helper()
	var msgs []messageOut
	require.NoError(t, json.Unmarshal([]byte(out), &msgs))
	return msgs
}

func TestEncodeDecodeFrames(t *testing.T) {
	testlog.Start(t)
	out, _, err := run(t, "", "encode", "--in", messagesFile(t), "--chunk", "40")
	require.NoError(t, err)
	frames := strings.Fields(out)
	require.Greater(t, len(frames), 1)

	// reverse scan order
	for i, j := 0, len(frames)-1; i < j; i, j = i+1, j-1 {
		frames[i], frames[j] = frames[j], frames[i]
	}
	out, _, err = run(t, "", append([]string{"decode"}, frames...)...)
	require.NoError(t, err)
	msgs := decodeOutput(t, out)
	require.Len(t, msgs, 2)
	require.Equal(t, "msg-1", msgs[0].ID)
	require.Equal(t, "message-sign-request", msgs[0].Type)
	require.Equal(t, "msg-2", msgs[1].ID)
	require.Equal(t, "transaction-sign-request", msgs[1].Type)
	tx := msgs[1].Payload.(map[string]any)["transaction"].(map[string]any)
	require.Equal(t, float64(1), tx["chainId"])

	out, _, err = run(t, strings.Join(frames, "\n")+"\n", "decode")
	require.NoError(t, err)
	require.Len(t, decodeOutput(t, out), 2)
}

func TestEncodeDecodeURL(t *testing.T) {
	testlog.Start(t)
	out, _, err := run(t, messagesJSON, "encode", "--url", "--chunk", "0")
	require.NoError(t, err)
	link := strings.TrimSpace(out)
	require.True(t, strings.HasPrefix(link, "airgap-wallet://?d="))

	out, _, err = run(t, "", "decode", "--url", link)
	require.NoError(t, err)
	require.Len(t, decodeOutput(t, out), 2)
}

func TestDecodeReportsMissingPages(t *testing.T) {
	testlog.Start(t)
	out, _, err := run(t, "", "encode", "--in", messagesFile(t), "--chunk", "30")
	require.NoError(t, err)
	frames := strings.Fields(out)
	require.Greater(t, len(frames), 2)

	_, stderr, err := run(t, "", "decode", frames[0], frames[2])
	require.ErrorIs(t, err, protocol.ErrIncompleteTransmission)
	require.Contains(t, stderr, "missing pages [1")
}

func TestConfigInitValidateAndUse(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "iacctl.toml")
	out, _, err := run(t, "", "config", "init", path)
	require.NoError(t, err)
	require.Contains(t, out, path)

	_, _, err = run(t, "", "config", "init", path)
	require.Error(t, err)

	out, _, err = run(t, "", "config", "validate", path)
	require.NoError(t, err)
	require.Contains(t, out, "chunk_size=350")

	require.NoError(t, os.WriteFile(path, []byte("chunk_size = 0\nenvelope_version = 1\n"), 0o644))
	out, _, err = run(t, "", "--config", path, "encode", "--in", messagesFile(t))
	require.NoError(t, err)
	require.Len(t, strings.Fields(out), 1)
}

func TestSchemasListsBundledDocuments(t *testing.T) {
	testlog.Start(t)
	out, _, err := run(t, "", "schemas")
	require.NoError(t, err)
	require.Contains(t, out, "transaction-sign-request.btc.json")
	require.Contains(t, out, "metadata-request.json")
}

func TestParseType(t *testing.T) {
	testlog.Start(t)
	mt, err := parseType(json.RawMessage(`"account-share-response"`))
	require.NoError(t, err)
	require.Equal(t, protocol.AccountShareResponse, mt)

	mt, err = parseType(json.RawMessage(`6`))
	require.NoError(t, err)
	require.Equal(t, protocol.TransactionSignResponse, mt)

	_, err = parseType(json.RawMessage(`42`))
	require.Error(t, err)
	_, err = parseType(nil)
	require.Error(t, err)
}
