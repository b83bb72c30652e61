package field

import (
	"fmt"
	"strconv"

	"github.com/danmuck/iacctl/internal/protocol"
)

// An item is one node of an RLP tree: either a []byte string or a []any list
// of items. rlp.DecodeBytes into an interface value yields the same shapes.

// Bytes returns item as a byte string.
func Bytes(item any) ([]byte, bool) {
	b, ok := item.([]byte)
	return b, ok
}

// List returns item as a list of items.
func List(item any) ([]any, bool) {
	l, ok := item.([]any)
	return l, ok
}

// Digits renders n as a base-10 byte string.
func Digits(n int) []byte {
	return []byte(strconv.Itoa(n))
}

// ParseDigits reads a non-negative base-10 integer from a byte-string item.
// Failures wrap ErrMalformedFrame; name identifies the element in messages.
func ParseDigits(item any, name string) (int, error) {
	b, ok := Bytes(item)
	if !ok {
		return 0, fmt.Errorf("%w: %s is a list, expected digits", protocol.ErrMalformedFrame, name)
	}
	if len(b) == 0 {
		return 0, fmt.Errorf("%w: %s is empty", protocol.ErrMalformedFrame, name)
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %s=%q is not decimal", protocol.ErrMalformedFrame, name, b)
		}
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", protocol.ErrMalformedFrame, name, err)
	}
	return n, nil
}
