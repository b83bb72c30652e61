package schema

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/danmuck/iacctl/internal/protocol"
	"github.com/danmuck/iacctl/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

func TestRegisterResolveAndDuplicate(t *testing.T) {
	testlog.Start(t)
	b := NewBuilder()
	generic := ObjectOf(map[string]Node{"a": String{}}, "a")

	require.NoError(t, b.Register(protocol.TransactionSignResponse, generic, ""))
	err := b.Register(protocol.TransactionSignResponse, generic, "")
	require.ErrorIs(t, err, protocol.ErrDuplicateSchema)

	reg := b.Build()
	got, err := reg.Resolve(protocol.TransactionSignResponse, "")
	require.NoError(t, err)
	require.Same(t, generic, got)
}

func TestResolveFallsBackToGeneric(t *testing.T) {
	testlog.Start(t)
	generic := ObjectOf(map[string]Node{"transaction": String{}})
	btc := ObjectOf(map[string]Node{"transaction": String{}, "fee": String{}})

	reg, err := NewRegistry(
		Entry{Key: Key{Type: protocol.TransactionSignRequest}, Node: generic},
		Entry{Key: Key{Type: protocol.TransactionSignRequest, Protocol: "btc"}, Node: btc},
	)
	require.NoError(t, err)

	got, err := reg.Resolve(protocol.TransactionSignRequest, "btc")
	require.NoError(t, err)
	require.Same(t, btc, got)

	got, err = reg.Resolve(protocol.TransactionSignRequest, "eth")
	require.NoError(t, err)
	require.Same(t, generic, got)
}

func TestResolveMissingSchema(t *testing.T) {
	testlog.Start(t)
	reg, err := NewRegistry(Entry{
		Key:  Key{Type: protocol.MessageSignRequest, Protocol: "btc"},
		Node: ObjectOf(nil),
	})
	require.NoError(t, err)

	_, err = reg.Resolve(protocol.MessageSignRequest, "eth")
	require.ErrorIs(t, err, protocol.ErrSchemaNotFound)
	_, err = reg.Resolve(protocol.MessageSignResponse, "")
	require.True(t, errors.Is(err, protocol.ErrSchemaNotFound))
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	testlog.Start(t)
	key := Key{Type: protocol.MetadataRequest}
	_, err := NewRegistry(Entry{Key: key, Node: ObjectOf(nil)}, Entry{Key: key, Node: ObjectOf(nil)})
	require.ErrorIs(t, err, protocol.ErrDuplicateSchema)
}

func TestBuildIsolatesLaterRegistrations(t *testing.T) {
	testlog.Start(t)
	b := NewBuilder()
	require.NoError(t, b.Register(protocol.MetadataRequest, ObjectOf(nil), ""))
	reg := b.Build()
	require.NoError(t, b.Register(protocol.MetadataResponse, ObjectOf(nil), ""))

	require.Equal(t, 1, reg.Len())
	_, err := reg.Resolve(protocol.MetadataResponse, "")
	require.ErrorIs(t, err, protocol.ErrSchemaNotFound)
}

func TestDefaultRegistryCoversEveryMessageType(t *testing.T) {
	testlog.Start(t)
	reg, err := Default()
	require.NoError(t, err)
	for _, mt := range protocol.MessageTypes() {
		_, err := reg.Resolve(mt, "")
		require.NoError(t, err, mt.String())
	}

	btc, err := reg.Resolve(protocol.TransactionSignResponse, "btc")
	require.NoError(t, err)
	obj := btc.(*Object)
	require.Equal(t, []string{"accountIdentifier", "amount", "fee", "from", "to", "transaction"}, obj.Keys())
	require.True(t, obj.IsRequired("fee"))

	generic, err := reg.Resolve(protocol.TransactionSignResponse, "grs")
	require.NoError(t, err)
	require.False(t, generic.(*Object).IsRequired("fee"))
}

func TestLoadDocumentsFromFS(t *testing.T) {
	testlog.Start(t)
	fsys := fstest.MapFS{
		"message-sign-request.cosmos.json": {Data: []byte(`{"type":"object","properties":{"message":{"type":"string"}},"required":["message"]}`)},
		"README.md":                        {Data: []byte("ignored")},
	}
	b := NewBuilder()
	require.NoError(t, LoadDocuments(b, fsys))
	reg := b.Build()
	require.Equal(t, []Key{{Type: protocol.MessageSignRequest, Protocol: "cosmos"}}, reg.Keys())
}

func TestLoadDocumentsRejectsUnknownType(t *testing.T) {
	testlog.Start(t)
	fsys := fstest.MapFS{"wallet-sync.json": {Data: []byte(`{"type":"string"}`)}}
	err := LoadDocuments(NewBuilder(), fsys)
	require.ErrorIs(t, err, protocol.ErrInvalidSchema)
}

func TestDocumentNameRoundTrip(t *testing.T) {
	testlog.Start(t)
	for _, key := range []Key{
		{Type: protocol.AccountShareResponse},
		{Type: protocol.TransactionSignRequest, Protocol: "eth"},
	} {
		got, err := ParseDocumentName(DocumentName(key))
		require.NoError(t, err)
		require.Equal(t, key, got)
	}
}
