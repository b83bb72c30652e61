// Package protocol owns the inter-application (IAC) wire contract shared by
// the offline signer and the online wallet.
//
// Ownership boundary:
// - message type identifiers
// - error taxonomy for encode/decode
//
// Subpackages implement the layers: schema (field layouts), field (value
// codec), message (wire generations), payload (full/chunked), frame
// (envelopes, base58check, reassembly) and deeplink (URL transport).
package protocol
