package field

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/danmuck/iacctl/internal/protocol"
	"github.com/danmuck/iacctl/internal/protocol/schema"
	"github.com/danmuck/iacctl/internal/testutil/testlog"
	"github.com/luxfi/geth/rlp"
	"github.com/stretchr/testify/require"
)

func signResponseSchema() *schema.Object {
	return schema.ObjectOf(map[string]schema.Node{
		"accountIdentifier": schema.String{},
		"transaction":       schema.String{},
		"from":              schema.ArrayOf(schema.String{}),
		"to":                schema.ArrayOf(schema.String{}),
		"amount":            schema.String{},
		"fee":               schema.String{},
	}, "accountIdentifier", "transaction")
}

func TestEncodeScalars(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name  string
		node  schema.Node
		value any
		want  []byte
	}{
		{"string", schema.String{}, "addr1", []byte("addr1")},
		{"hex", schema.HexString{}, "0xDEADbeef", []byte{0xde, 0xad, 0xbe, 0xef}},
		{"hex without prefix", schema.HexString{}, "ff", []byte{0xff}},
		{"empty hex", schema.HexString{}, "0x", []byte{}},
		{"int", schema.Integer{}, 2000, []byte("2000")},
		{"negative int64", schema.Integer{}, int64(-7), []byte("-7")},
		{"uint", schema.Integer{}, uint64(math.MaxInt64), []byte("9223372036854775807")},
		{"integral float", schema.Integer{}, 42.0, []byte("42")},
		{"json number", schema.Integer{}, json.Number("12"), []byte("12")},
		{"true", schema.Boolean{}, true, []byte("1")},
		{"false", schema.Boolean{}, false, []byte("0")},
		{"null", schema.Null{}, nil, []byte{}},
	}
	for _, tc := range cases {
		got, err := Encode(tc.node, tc.value)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.want, got, tc.name)
	}
}

func TestHexStringRoundTrip(t *testing.T) {
	testlog.Start(t)
	item, err := Encode(schema.HexString{}, "0x")
	require.NoError(t, err)
	require.Empty(t, item)
	v, err := Decode(schema.HexString{}, item)
	require.NoError(t, err)
	require.Equal(t, "0x", v)

	item, err = Encode(schema.HexString{}, "0xABCDEF01")
	require.NoError(t, err)
	v, err = Decode(schema.HexString{}, item)
	require.NoError(t, err)
	require.Equal(t, "0xabcdef01", v)
}

func TestEncodeTypeMismatchReportsKey(t *testing.T) {
	testlog.Start(t)
	node := schema.ObjectOf(map[string]schema.Node{
		"flags": schema.ArrayOf(schema.Boolean{}),
	}, "flags")
	_, err := Encode(node, map[string]any{"flags": []any{true, "yes"}})
	require.ErrorIs(t, err, protocol.ErrFieldTypeMismatch)

	var mismatch *protocol.FieldTypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	require.Equal(t, "flags[1]", mismatch.Key)
	require.Equal(t, "boolean", mismatch.Expected)
	require.Equal(t, "string", mismatch.Actual)
}

func TestEncodeRejectsInvalidValues(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name  string
		node  schema.Node
		value any
	}{
		{"odd hex", schema.HexString{}, "0xabc"},
		{"non hex", schema.HexString{}, "0xzz"},
		{"fractional", schema.Integer{}, 1.5},
		{"string integer", schema.Integer{}, "12"},
		{"bool as string", schema.Boolean{}, "true"},
		{"null with value", schema.Null{}, "x"},
		{"object from list", schema.ObjectOf(nil), []string{"a"}},
		{"array from string", schema.ArrayOf(schema.String{}), "a"},
		{"tuple length", schema.TupleOf(schema.String{}, schema.Integer{}), []any{"a"}},
		{"uint above int64", schema.Integer{}, uint64(math.MaxUint64)},
		{"json number above int64", schema.Integer{}, json.Number("18446744073709551615")},
		{"json number below int64", schema.Integer{}, json.Number("-9223372036854775809")},
		{"undeclared key", schema.ObjectOf(map[string]schema.Node{"a": schema.String{}}), map[string]any{"a": "x", "bogus": 1}},
	}
	for _, tc := range cases {
		_, err := Encode(tc.node, tc.value)
		require.ErrorIs(t, err, protocol.ErrFieldTypeMismatch, tc.name)
	}
}

func TestObjectEncodingIsSortedAndDeterministic(t *testing.T) {
	testlog.Start(t)
	node := signResponseSchema()

	a := map[string]any{}
	a["transaction"] = "00aa"
	a["accountIdentifier"] = "id"
	a["fee"] = "1"
	a["amount"] = "2"

	b := map[string]any{}
	b["amount"] = "2"
	b["fee"] = "1"
	b["accountIdentifier"] = "id"
	b["transaction"] = "00aa"

	ia, err := Encode(node, a)
	require.NoError(t, err)
	ib, err := Encode(node, b)
	require.NoError(t, err)

	ba, err := rlp.EncodeToBytes(ia)
	require.NoError(t, err)
	bb, err := rlp.EncodeToBytes(ib)
	require.NoError(t, err)
	require.Equal(t, ba, bb)

	// accountIdentifier, amount, fee, from, to, transaction
	list := ia.([]any)
	require.Equal(t, []byte("id"), list[0])
	require.Equal(t, []byte("2"), list[1])
	require.Equal(t, []byte("1"), list[2])
	require.Equal(t, []byte{}, list[3])
	require.Equal(t, []byte{}, list[4])
	require.Equal(t, []byte("00aa"), list[5])
}

func TestObjectRoundTripOmitsAbsentOptionals(t *testing.T) {
	testlog.Start(t)
	node := signResponseSchema()
	in := map[string]any{
		"accountIdentifier": "identifier",
		"transaction":       "000402040204100",
		"from":              []any{"addr1", "addr2"},
		"to":                []any{"addr3", ""},
	}
	item, err := Encode(node, in)
	require.NoError(t, err)

	raw, err := rlp.EncodeToBytes(item)
	require.NoError(t, err)
	var back any
	require.NoError(t, rlp.DecodeBytes(raw, &back))

	out, err := Decode(node, back)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestMissingRequiredField(t *testing.T) {
	testlog.Start(t)
	_, err := Encode(signResponseSchema(), map[string]any{"transaction": "x"})
	require.ErrorIs(t, err, protocol.ErrMissingField)

	var missing *protocol.MissingFieldError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, "accountIdentifier", missing.Key)
}

func TestBooleanEmptyBytesIsAbsent(t *testing.T) {
	testlog.Start(t)
	node := schema.ObjectOf(map[string]schema.Node{
		"isActive":            schema.Boolean{},
		"isExtendedPublicKey": schema.Boolean{},
	}, "isExtendedPublicKey")

	out, err := Decode(node, []any{[]byte{}, []byte("0")})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"isExtendedPublicKey": false}, out)

	_, err = Decode(node, []any{[]byte("1"), []byte{}})
	require.ErrorIs(t, err, protocol.ErrMissingField)
}

func TestDecodeIntegers(t *testing.T) {
	testlog.Start(t)
	v, err := Decode(schema.Integer{}, []byte("-12"))
	require.NoError(t, err)
	require.Equal(t, int64(-12), v)

	_, err = Decode(schema.Integer{}, []byte("1e3"))
	require.ErrorIs(t, err, protocol.ErrFieldTypeMismatch)
}

func TestIntegerBoundariesRoundTrip(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		value any
		want  int64
	}{
		{int64(math.MinInt64), math.MinInt64},
		{int64(math.MaxInt64), math.MaxInt64},
		{uint64(math.MaxInt64), math.MaxInt64},
		{json.Number("9223372036854775807"), math.MaxInt64},
		{json.Number("-9223372036854775808"), math.MinInt64},
		{0, 0},
	}
	for _, tc := range cases {
		item, err := Encode(schema.Integer{}, tc.value)
		require.NoError(t, err, "%v", tc.value)
		got, err := Decode(schema.Integer{}, item)
		require.NoError(t, err, "%v", tc.value)
		require.Equal(t, tc.want, got)
	}
}

func TestEncodeRejectsUndeclaredKeys(t *testing.T) {
	testlog.Start(t)
	node := schema.ObjectOf(map[string]schema.Node{
		"a":     schema.String{},
		"inner": schema.ObjectOf(map[string]schema.Node{"b": schema.String{}}),
	})

	_, err := Encode(node, map[string]any{"a": "x", "inner": map[string]any{"b": "y"}, "zeta": true, "bogus": 1})
	require.ErrorIs(t, err, protocol.ErrFieldTypeMismatch)
	var mismatch *protocol.FieldTypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	require.Equal(t, "bogus", mismatch.Key)
	require.Equal(t, "integer", mismatch.Actual)

	_, err = Encode(node, map[string]any{"a": "x", "inner": map[string]any{"b": "y", "c": "z"}})
	require.True(t, errors.As(err, &mismatch))
	require.Equal(t, "inner.c", mismatch.Key)

	// nil values carry nothing and are not reported
	_, err = Encode(node, map[string]any{"a": "x", "inner": map[string]any{"b": "y"}, "extra": nil})
	require.NoError(t, err)
}

func TestDecodeShapeMismatch(t *testing.T) {
	testlog.Start(t)
	_, err := Decode(schema.String{}, []any{[]byte("a")})
	require.ErrorIs(t, err, protocol.ErrFieldTypeMismatch)

	_, err = Decode(signResponseSchema(), []any{[]byte("a")})
	require.ErrorIs(t, err, protocol.ErrFieldTypeMismatch)

	_, err = Decode(schema.Boolean{}, []byte("2"))
	require.ErrorIs(t, err, protocol.ErrFieldTypeMismatch)
}

func TestTupleArrayUsesPositionalSchemas(t *testing.T) {
	testlog.Start(t)
	node := schema.TupleOf(schema.String{}, schema.Integer{}, schema.HexString{})
	item, err := Encode(node, []any{"m/44'/0'/0'", 7, "0x01"})
	require.NoError(t, err)
	require.Equal(t, []any{[]byte("m/44'/0'/0'"), []byte("7"), []byte{0x01}}, item)

	out, err := Decode(node, item)
	require.NoError(t, err)
	require.Equal(t, []any{"m/44'/0'/0'", int64(7), "0x01"}, out)
}

type output struct {
	Recipient      string `mapstructure:"recipient"`
	IsChange       bool   `mapstructure:"isChange"`
	Value          string `mapstructure:"value"`
	DerivationPath string `mapstructure:"derivationPath,omitempty"`
}

func TestEncodeAcceptsStructsAndTypedMaps(t *testing.T) {
	testlog.Start(t)
	node := schema.ObjectOf(map[string]schema.Node{
		"outs": schema.ArrayOf(schema.ObjectOf(map[string]schema.Node{
			"recipient":      schema.String{},
			"isChange":       schema.Boolean{},
			"value":          schema.String{},
			"derivationPath": schema.String{},
		}, "recipient", "isChange", "value")),
		"labels": schema.ObjectOf(map[string]schema.Node{"a": schema.String{}}),
	}, "outs")

	in := struct {
		Outs   []output          `mapstructure:"outs"`
		Labels map[string]string `mapstructure:"labels"`
	}{
		Outs:   []output{{Recipient: "1DMx", IsChange: true, Value: "10"}},
		Labels: map[string]string{"a": "b"},
	}
	item, err := Encode(node, in)
	require.NoError(t, err)

	out, err := Decode(node, item)
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"outs":   []any{map[string]any{"recipient": "1DMx", "isChange": true, "value": "10"}},
		"labels": map[string]any{"a": "b"},
	}, out)
}

func TestParseDigits(t *testing.T) {
	testlog.Start(t)
	n, err := ParseDigits(Digits(42), "page")
	require.NoError(t, err)
	require.Equal(t, 42, n)

	for _, bad := range []any{[]byte{}, []byte("-1"), []byte("4a"), []any{}} {
		_, err := ParseDigits(bad, "page")
		require.ErrorIs(t, err, protocol.ErrMalformedFrame)
	}
}
