// Package payloads provides typed views of the registered message payloads.
// Values move between the structs here and the generic map form carried by
// message.Message through ToValue and FromValue.
package payloads

type MetadataRequest struct {
	CallbackURL string `mapstructure:"callbackURL,omitempty" json:"callbackURL,omitempty"`
}

type MetadataResponse struct {
	Name      string   `mapstructure:"name" json:"name"`
	Version   string   `mapstructure:"version" json:"version"`
	Protocols []string `mapstructure:"protocols,omitempty" json:"protocols,omitempty"`
}

type AccountShareRequest struct {
	DerivationPath string `mapstructure:"derivationPath,omitempty" json:"derivationPath,omitempty"`
	CallbackURL    string `mapstructure:"callbackURL,omitempty" json:"callbackURL,omitempty"`
}

type AccountShareResponse struct {
	PublicKey           string `mapstructure:"publicKey" json:"publicKey"`
	IsExtendedPublicKey bool   `mapstructure:"isExtendedPublicKey" json:"isExtendedPublicKey"`
	DerivationPath      string `mapstructure:"derivationPath" json:"derivationPath"`
	MasterFingerprint   string `mapstructure:"masterFingerprint,omitempty" json:"masterFingerprint,omitempty"`
	IsActive            *bool  `mapstructure:"isActive,omitempty" json:"isActive,omitempty"`
	GroupID             string `mapstructure:"groupId,omitempty" json:"groupId,omitempty"`
	GroupLabel          string `mapstructure:"groupLabel,omitempty" json:"groupLabel,omitempty"`
}

// TransactionSignRequest is the protocol-agnostic request whose transaction
// is an opaque serialized string.
type TransactionSignRequest struct {
	Transaction string `mapstructure:"transaction" json:"transaction"`
	PublicKey   string `mapstructure:"publicKey" json:"publicKey"`
	CallbackURL string `mapstructure:"callbackURL,omitempty" json:"callbackURL,omitempty"`
}

type BitcoinSignRequest struct {
	Transaction BitcoinTransaction `mapstructure:"transaction" json:"transaction"`
	PublicKey   string             `mapstructure:"publicKey" json:"publicKey"`
	CallbackURL string             `mapstructure:"callbackURL,omitempty" json:"callbackURL,omitempty"`
}

type BitcoinTransaction struct {
	Ins  []BitcoinInput  `mapstructure:"ins" json:"ins"`
	Outs []BitcoinOutput `mapstructure:"outs" json:"outs"`
}

type BitcoinInput struct {
	TxID           string `mapstructure:"txId" json:"txId"`
	Value          string `mapstructure:"value" json:"value"`
	Vout           int64  `mapstructure:"vout" json:"vout"`
	Address        string `mapstructure:"address" json:"address"`
	DerivationPath string `mapstructure:"derivationPath" json:"derivationPath"`
}

type BitcoinOutput struct {
	Recipient      string `mapstructure:"recipient" json:"recipient"`
	IsChange       bool   `mapstructure:"isChange" json:"isChange"`
	Value          string `mapstructure:"value" json:"value"`
	DerivationPath string `mapstructure:"derivationPath,omitempty" json:"derivationPath,omitempty"`
}

type EthereumSignRequest struct {
	Transaction EthereumTransaction `mapstructure:"transaction" json:"transaction"`
	PublicKey   string              `mapstructure:"publicKey" json:"publicKey"`
	CallbackURL string              `mapstructure:"callbackURL,omitempty" json:"callbackURL,omitempty"`
}

// EthereumTransaction quantities are 0x-prefixed hex strings.
type EthereumTransaction struct {
	Nonce    string `mapstructure:"nonce" json:"nonce"`
	GasPrice string `mapstructure:"gasPrice" json:"gasPrice"`
	GasLimit string `mapstructure:"gasLimit" json:"gasLimit"`
	To       string `mapstructure:"to" json:"to"`
	Value    string `mapstructure:"value" json:"value"`
	ChainID  int64  `mapstructure:"chainId" json:"chainId"`
	Data     string `mapstructure:"data" json:"data"`
}

type TezosSignRequest struct {
	Transaction TezosTransaction `mapstructure:"transaction" json:"transaction"`
	PublicKey   string           `mapstructure:"publicKey" json:"publicKey"`
	CallbackURL string           `mapstructure:"callbackURL,omitempty" json:"callbackURL,omitempty"`
}

type TezosTransaction struct {
	BinaryTransaction string `mapstructure:"binaryTransaction" json:"binaryTransaction"`
}

type TransactionSignResponse struct {
	AccountIdentifier string   `mapstructure:"accountIdentifier" json:"accountIdentifier"`
	Transaction       string   `mapstructure:"transaction" json:"transaction"`
	From              []string `mapstructure:"from,omitempty" json:"from,omitempty"`
	To                []string `mapstructure:"to,omitempty" json:"to,omitempty"`
	Amount            string   `mapstructure:"amount,omitempty" json:"amount,omitempty"`
	Fee               string   `mapstructure:"fee,omitempty" json:"fee,omitempty"`
}

type MessageSignRequest struct {
	Message     string `mapstructure:"message" json:"message"`
	PublicKey   string `mapstructure:"publicKey" json:"publicKey"`
	CallbackURL string `mapstructure:"callbackURL,omitempty" json:"callbackURL,omitempty"`
}

type MessageSignResponse struct {
	Message   string `mapstructure:"message" json:"message"`
	PublicKey string `mapstructure:"publicKey" json:"publicKey"`
	Signature string `mapstructure:"signature" json:"signature"`
}
