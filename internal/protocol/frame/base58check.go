package frame

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/danmuck/iacctl/internal/protocol"
)

const checksumLen = 4

// CheckEncode renders payload as base58(payload || checksum) where checksum is
// the first four bytes of sha256(sha256(payload)). No version byte is
// prepended.
func CheckEncode(payload []byte) string {
	buf := make([]byte, 0, len(payload)+checksumLen)
	buf = append(buf, payload...)
	buf = append(buf, checksum(payload)...)
	return base58.Encode(buf)
}

// CheckDecode reverses CheckEncode. Invalid characters, short input and
// checksum mismatches are reported as ErrMalformedFrame.
func CheckDecode(s string) ([]byte, error) {
	raw := base58.Decode(s)
	if len(raw) <= checksumLen {
		return nil, fmt.Errorf("%w: invalid base58check string", protocol.ErrMalformedFrame)
	}
	data, sum := raw[:len(raw)-checksumLen], raw[len(raw)-checksumLen:]
	if !bytes.Equal(sum, checksum(data)) {
		return nil, fmt.Errorf("%w: base58check checksum mismatch", protocol.ErrMalformedFrame)
	}
	return data, nil
}

func checksum(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:checksumLen]
}
