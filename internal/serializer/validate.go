package serializer

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/danmuck/iacctl/internal/protocol"
	"github.com/danmuck/iacctl/internal/protocol/message"
	"github.com/danmuck/iacctl/internal/protocol/payloads"
)

type Validator interface {
	Validate(msg message.Message) error
}

type ValidatorFunc func(msg message.Message) error

func (f ValidatorFunc) Validate(msg message.Message) error { return f(msg) }

// BitcoinAddresses checks the from and to lists of Bitcoin transaction sign
// responses. Legacy addresses must pass base58check with a P2PKH or P2SH
// version byte; segwit addresses must be valid bech32 under the bc or tb
// prefix.
var BitcoinAddresses = ValidatorFunc(func(msg message.Message) error {
	if msg.Type != protocol.TransactionSignResponse {
		return nil
	}
	resp, err := payloads.As[payloads.TransactionSignResponse](msg)
	if err != nil {
		return err
	}
	for _, addr := range append(resp.From, resp.To...) {
		if err := checkBitcoinAddress(addr); err != nil {
			return err
		}
	}
	return nil
})

var bitcoinVersions = map[byte]bool{
	0x00: true, // p2pkh mainnet
	0x05: true, // p2sh mainnet
	0x6f: true, // p2pkh testnet
	0xc4: true, // p2sh testnet
}

func checkBitcoinAddress(addr string) error {
	lower := strings.ToLower(addr)
	if strings.HasPrefix(lower, "bc1") || strings.HasPrefix(lower, "tb1") {
		hrp, _, _, err := bech32.DecodeGeneric(addr)
		if err != nil {
			return fmt.Errorf("address %q: %w", addr, err)
		}
		if hrp != "bc" && hrp != "tb" {
			return fmt.Errorf("address %q: unexpected prefix %q", addr, hrp)
		}
		return nil
	}
	payload, version, err := base58.CheckDecode(addr)
	if err != nil {
		return fmt.Errorf("address %q: %w", addr, err)
	}
	if len(payload) != 20 || !bitcoinVersions[version] {
		return fmt.Errorf("address %q: not a p2pkh or p2sh address", addr)
	}
	return nil
}
